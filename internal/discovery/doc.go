// Package discovery samples channels from YouTube.
//
// There is no "list all channels" endpoint, so the Sampler searches random
// short strings and keeps hits whose public subscriber count falls inside a
// band. Channels with hidden, missing, or unparsable counts are always
// rejected. Admission happens at most once per channel id, and a failed
// search or statistics batch only costs that attempt or batch.
package discovery
