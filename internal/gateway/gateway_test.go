package gateway

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/mirrorlake/geobot/internal/bus"
	"github.com/mirrorlake/geobot/internal/config"
	"github.com/mirrorlake/geobot/internal/engine"
)

type fakeConn struct {
	mu     sync.Mutex
	events []bus.Event
	dead   bool
	closed bool
	whois  []string
}

func (f *fakeConn) SendMessage(room, text string) error { return nil }
func (f *fakeConn) Join(room string) error              { return nil }
func (f *fakeConn) Nick() string                        { return "geobot" }

func (f *fakeConn) Whois(nick string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.whois = append(f.whois, nick)
	return nil
}

func (f *fakeConn) Drain() []bus.Event {
	f.mu.Lock()
	defer f.mu.Unlock()
	events := f.events
	f.events = nil
	// Once its initial events are consumed the connection reports dead,
	// pushing the supervisor into its reconnect path.
	f.dead = true
	return events
}

func (f *fakeConn) Dead() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.dead
}

func (f *fakeConn) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.closed = true
	return nil
}

func (f *fakeConn) whoisSeen() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.whois...)
}

func (f *fakeConn) isClosed() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.closed
}

func testEngine() *engine.Engine {
	return engine.New(config.ServerConfig{Address: "irc.example.net"}, nil, nil, nil)
}

func TestReconnectCycle(t *testing.T) {
	conns := []*fakeConn{
		{events: []bus.Event{bus.Joined{Room: "#town", Nick: "bob"}}},
		{},
	}
	var mu sync.Mutex
	dials := 0
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connect := func() (Transport, error) {
		mu.Lock()
		defer mu.Unlock()
		if dials >= len(conns) {
			cancel()
			return nil, errors.New("no more connections")
		}
		c := conns[dials]
		dials++
		return c, nil
	}

	s := NewWithOptions(connect, testEngine(), Options{
		Tick:     2 * time.Millisecond,
		Cooldown: 2 * time.Millisecond,
	})

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor did not cycle through connections")
	}

	mu.Lock()
	got := dials
	mu.Unlock()
	if got != 2 {
		t.Errorf("dialed %d times, want 2", got)
	}

	// The buffered join event was processed before the dead connection
	// was torn down: the engine's passive logging issued a lookup.
	whois := conns[0].whoisSeen()
	if len(whois) != 1 || whois[0] != "bob" {
		t.Errorf("conn1 whois = %v, want [bob]", whois)
	}
	if !conns[0].isClosed() {
		t.Error("dead connection was not closed")
	}
}

func TestConnectFailureRetries(t *testing.T) {
	var mu sync.Mutex
	dials := 0
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	connect := func() (Transport, error) {
		mu.Lock()
		defer mu.Unlock()
		dials++
		if dials >= 3 {
			cancel()
		}
		return nil, errors.New("connection refused")
	}

	s := NewWithOptions(connect, testEngine(), Options{
		Tick:     time.Millisecond,
		Cooldown: time.Millisecond,
	})

	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Fatalf("Run returned %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("supervisor stopped retrying")
	}

	mu.Lock()
	defer mu.Unlock()
	if dials < 3 {
		t.Errorf("dialed %d times, want at least 3", dials)
	}
}
