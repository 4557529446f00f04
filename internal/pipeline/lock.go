package pipeline

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/gofrs/flock"
)

const lockSuffix = ".lock"

type lockMode int

const (
	lockExclusive lockMode = iota
	lockShared
)

type lockSpec struct {
	path string
	mode lockMode
}

// acquire takes every lock without blocking. On failure, locks already held
// are released.
func acquire(specs ...lockSpec) (func(), error) {
	held := make([]*flock.Flock, 0, len(specs))
	release := func() {
		for i := len(held) - 1; i >= 0; i-- {
			_ = held[i].Unlock()
		}
	}
	for _, spec := range specs {
		if spec.path == "" {
			continue
		}
		if err := os.MkdirAll(filepath.Dir(spec.path), 0o755); err != nil {
			release()
			return nil, fmt.Errorf("ensure lock directory: %w", err)
		}
		lock := flock.New(spec.path)
		var (
			ok  bool
			err error
		)
		if spec.mode == lockShared {
			ok, err = lock.TryRLock()
		} else {
			ok, err = lock.TryLock()
		}
		if err != nil {
			release()
			return nil, fmt.Errorf("acquire lock %s: %w", spec.path, err)
		}
		if !ok {
			release()
			return nil, fmt.Errorf("%s is locked by another ytharvest process", spec.path)
		}
		held = append(held, lock)
	}
	return release, nil
}
