package main

import (
	"fmt"
	"path/filepath"

	"github.com/gofrs/flock"
)

// lockDataDir takes an exclusive file lock on the data dir so two engine
// processes never share one sqlite database.
func lockDataDir(dataDir string) (func(), error) {
	fl := flock.New(filepath.Join(dataDir, "engine.lock"))
	ok, err := fl.TryLock()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", fl.Path(), err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s: held by another process", fl.Path())
	}
	return func() { _ = fl.Unlock() }, nil
}
