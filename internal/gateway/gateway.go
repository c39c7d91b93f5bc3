// Package gateway owns the session lifecycle: connect, drain transport
// events into the engine on a fixed tick, detect a dead connection, cool
// down, reconnect. The loop runs for process lifetime; only startup can
// fail fatally.
package gateway

import (
	"context"
	"log"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/mirrorlake/geobot/internal/bus"
	"github.com/mirrorlake/geobot/internal/engine"
)

const (
	defaultTick     = 15 * time.Second
	defaultCooldown = 30 * time.Second
)

// Transport is one live connection to the chat server.
type Transport interface {
	engine.Transport
	Drain() []bus.Event
	Dead() bool
	Close() error
}

// Connector establishes a new connection. Called on every (re)connect.
type Connector func() (Transport, error)

// Options tune the supervisor for tests; zero values mean defaults.
type Options struct {
	Tick     time.Duration
	Cooldown time.Duration
}

type Supervisor struct {
	connect  Connector
	eng      *engine.Engine
	tick     time.Duration
	cooldown time.Duration
}

func New(connect Connector, eng *engine.Engine) *Supervisor {
	return NewWithOptions(connect, eng, Options{})
}

func NewWithOptions(connect Connector, eng *engine.Engine, opts Options) *Supervisor {
	s := &Supervisor{
		connect:  connect,
		eng:      eng,
		tick:     opts.Tick,
		cooldown: opts.Cooldown,
	}
	if s.tick <= 0 {
		s.tick = defaultTick
	}
	if s.cooldown <= 0 {
		s.cooldown = defaultCooldown
	}
	return s
}

// Run drives the connect/listen/reconnect cycle until ctx is cancelled.
// Engine state (roster, pending lookups, throttle) survives reconnects.
func (s *Supervisor) Run(ctx context.Context) error {
	cr := cron.New()
	if _, err := cr.AddFunc("@hourly", func() {
		if n := s.eng.PruneThrottle(); n > 0 {
			log.Printf("[gateway] pruned %d expired throttle records", n)
		}
	}); err != nil {
		return err
	}
	cr.Start()
	defer cr.Stop()

	for {
		t, err := s.connect()
		if err != nil {
			log.Printf("[gateway] connect failed: %v", err)
			if !sleepCtx(ctx, s.cooldown) {
				return ctx.Err()
			}
			continue
		}

		log.Printf("[gateway] connected")
		s.eng.SetTransport(t)
		s.listen(ctx, t)
		_ = t.Close()

		if ctx.Err() != nil {
			return ctx.Err()
		}
		log.Printf("[gateway] disconnected, reconnecting in %s", s.cooldown)
		if !sleepCtx(ctx, s.cooldown) {
			return ctx.Err()
		}
	}
}

func (s *Supervisor) listen(ctx context.Context, t Transport) {
	ticker := time.NewTicker(s.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			// Drain before the dead check so events that arrived ahead
			// of a disconnect are still processed.
			for _, ev := range t.Drain() {
				s.eng.Handle(ev)
			}
			if t.Dead() {
				return
			}
		}
	}
}

func sleepCtx(ctx context.Context, d time.Duration) bool {
	select {
	case <-ctx.Done():
		return false
	case <-time.After(d):
		return true
	}
}
