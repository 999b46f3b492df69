// Package admission bounds expensive model calls per student identity
// within a rolling window.
package admission

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/abhisek/algotutor/internal/logger"
)

// Limiter admits or rejects one hit for key. Every hit counts toward the
// window, rejected ones included.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
}

// Config is the window shape: at most Max hits per Window.
type Config struct {
	Max    int
	Window time.Duration
}

// DefaultConfig admits 3 calls per 10 minutes.
func DefaultConfig() Config {
	return Config{Max: 3, Window: 10 * time.Minute}
}

func (c Config) Validate() error {
	if c.Max < 1 {
		return fmt.Errorf("rate limit max must be at least 1, got %d", c.Max)
	}
	if c.Window <= 0 {
		return fmt.Errorf("rate limit window must be positive, got %s", c.Window)
	}
	return nil
}

// StudentKeyPrefix marks keys derived from a student identifier.
const StudentKeyPrefix = "student:"

// StudentKey is the limiter key for a student identifier.
func StudentKey(id string) string {
	return StudentKeyPrefix + id
}

// logKey hides the student identifier inside key.
func logKey(key string) string {
	if id, ok := strings.CutPrefix(key, StudentKeyPrefix); ok {
		return StudentKeyPrefix + logger.HashID(id)
	}
	return key
}

// Admit asks l about key and fails open: a limiter error is logged and the
// hit is admitted.
func Admit(ctx context.Context, l Limiter, key string, log *logger.Logger) bool {
	ok, err := l.Allow(ctx, key)
	if err != nil {
		if log != nil {
			log.Warn("admission limiter failed, admitting request", "key", logKey(key), "error", err)
		}
		return true
	}
	return ok
}
