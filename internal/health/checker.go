// Package health provides on-demand service health checks: the storage
// layer and the data directory, probed when the health endpoint is hit.
package health

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/inertia-app/inertia/internal/infra/sqlite"
)

// Check defines a single named health probe.
type Check struct {
	Name    string
	CheckFn func(ctx context.Context) error
}

// Status represents the result of one probe.
type Status struct {
	Name      string    `json:"name"`
	Healthy   bool      `json:"healthy"`
	Error     string    `json:"error,omitempty"`
	CheckedAt time.Time `json:"checked_at"`
}

// Checker runs the standard probes on demand. Stateless: every call
// re-probes, so a recovered store reports healthy immediately.
type Checker struct {
	checks []Check
}

// NewChecker creates a checker over the record store and its data dir.
func NewChecker(db *sqlite.DB, dataDir string) *Checker {
	return &Checker{
		checks: []Check{
			{
				Name: "sqlite",
				CheckFn: func(ctx context.Context) error {
					return db.Ping()
				},
			},
			{
				Name: "store_read",
				CheckFn: func(ctx context.Context) error {
					// Exercises the full read path, not just the socket.
					_, err := db.GetRecord("_health", "1970-01-01")
					return err
				},
			},
			{
				Name: "data_dir",
				CheckFn: func(ctx context.Context) error {
					return checkDataDir(dataDir)
				},
			},
		},
	}
}

// RunAll executes every probe and returns their statuses.
func (c *Checker) RunAll(ctx context.Context) []Status {
	statuses := make([]Status, len(c.checks))
	for i, check := range c.checks {
		s := Status{
			Name:      check.Name,
			CheckedAt: time.Now(),
		}
		if err := check.CheckFn(ctx); err != nil {
			s.Healthy = false
			s.Error = err.Error()
		} else {
			s.Healthy = true
		}
		statuses[i] = s
	}
	return statuses
}

// Healthy reports whether every status passed.
func Healthy(statuses []Status) bool {
	for _, s := range statuses {
		if !s.Healthy {
			return false
		}
	}
	return true
}

// ─── Check Implementations ──────────────────────────────────────────────────

func checkDataDir(dir string) error {
	info, err := os.Stat(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil // Created lazily on first write
		}
		return fmt.Errorf("check data dir: %w", err)
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", dir)
	}
	return nil
}
