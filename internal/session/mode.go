package session

import (
	"fmt"
	"sync/atomic"
)

// Mode reports whether an operation reached the store.
type Mode string

const (
	ModeOnline  Mode = "online"
	ModeOffline Mode = "offline"
)

// ModePolicy decides how a persistence failure affects later operations.
type ModePolicy string

const (
	// PolicyReprobe computes each operation's mode from its own
	// persistence calls. A recovered store is used again immediately.
	PolicyReprobe ModePolicy = "reprobe"

	// PolicySticky flips the process to offline on the first failure and
	// skips persistence until restart.
	PolicySticky ModePolicy = "sticky"
)

// ParseModePolicy accepts "reprobe" and "sticky"; empty selects reprobe.
func ParseModePolicy(s string) (ModePolicy, error) {
	switch ModePolicy(s) {
	case "", PolicyReprobe:
		return PolicyReprobe, nil
	case PolicySticky:
		return PolicySticky, nil
	}
	return "", fmt.Errorf("unknown mode policy %q (want reprobe or sticky)", s)
}

// modeGate holds the process-level view of the store.
type modeGate struct {
	policy  ModePolicy
	offline atomic.Bool
}

func newModeGate(p ModePolicy) *modeGate {
	if p == "" {
		p = PolicyReprobe
	}
	return &modeGate{policy: p}
}

// skip reports whether persistence should not be attempted at all.
func (g *modeGate) skip() bool {
	return g.policy == PolicySticky && g.offline.Load()
}

// observe records the outcome of an operation's persistence and returns
// the mode the operation reports.
func (g *modeGate) observe(err error) Mode {
	if err != nil {
		g.offline.Store(true)
		return ModeOffline
	}
	if g.policy == PolicyReprobe {
		g.offline.Store(false)
		return ModeOnline
	}
	if g.offline.Load() {
		return ModeOffline
	}
	return ModeOnline
}

func (g *modeGate) current() Mode {
	if g.offline.Load() {
		return ModeOffline
	}
	return ModeOnline
}
