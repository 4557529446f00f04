// Package backoff retries remote calls with exponentially growing, cancellable
// waits.
//
// Do is generic over the call's result so callers keep their concrete types.
// Classification defaults to IsTransient; anything else is returned to the
// caller untouched on the first failure. When the budget runs out the
// returned *RetriesExhaustedError matches services.ErrRetriesExhausted and the
// last underlying error under errors.Is.
package backoff
