package ai

import (
	"sync"
	"sync/atomic"
)

// Gate is the process-wide AI on/off switch. It starts enabled when a credential
// is configured and can only be turned off; a restart is needed to turn it back on.
type Gate struct {
	disabled atomic.Bool
	once     sync.Once
	reason   atomic.Value // string
}

// NewGate creates a gate, disabled from the start when no credential is configured
func NewGate(credentialConfigured bool) *Gate {
	g := &Gate{}
	if !credentialConfigured {
		g.Disable("no AI credential configured")
	}
	return g
}

// Enabled reports whether AI features may be used
func (g *Gate) Enabled() bool {
	return !g.disabled.Load()
}

// Disable switches AI features off. Only the first reason is kept.
func (g *Gate) Disable(reason string) {
	g.once.Do(func() {
		g.reason.Store(reason)
		g.disabled.Store(true)
	})
}

// Reason returns why the gate was disabled, empty while enabled
func (g *Gate) Reason() string {
	if r, ok := g.reason.Load().(string); ok {
		return r
	}
	return ""
}
