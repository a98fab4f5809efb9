package metadata

import "sync"

var (
	sharedMu sync.Mutex
	shared   *Config
)

// Shared returns the process-wide schema, loading it from path on first use.
// Subsequent calls return the cached configuration regardless of path; the
// loaded value is derived solely from on-disk content, so repeated loads are
// idempotent. An empty path selects the builtin schema.
func Shared(path string) (*Config, error) {
	sharedMu.Lock()
	defer sharedMu.Unlock()

	if shared != nil {
		return shared, nil
	}

	var (
		cfg *Config
		err error
	)
	if path == "" {
		cfg, err = Builtin()
	} else {
		cfg, err = Load(path)
	}
	if err != nil {
		return nil, err
	}

	shared = cfg
	return shared, nil
}

// Reset clears the shared schema for test isolation.
func Reset() {
	sharedMu.Lock()
	defer sharedMu.Unlock()
	shared = nil
}
