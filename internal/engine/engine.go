// Package engine correlates asynchronous identity lookups with the
// requests that triggered them, tracks room rosters, and produces the
// bot's replies. All state lives inside one Engine instance owned by the
// session loop; the engine itself starts no goroutines.
package engine

import (
	"fmt"
	"log"
	"math/rand"
	"strings"
	"sync"
	"time"

	"github.com/mirrorlake/geobot/internal/bus"
	"github.com/mirrorlake/geobot/internal/config"
	"github.com/mirrorlake/geobot/internal/geo"
	"github.com/mirrorlake/geobot/internal/identity"
	"github.com/mirrorlake/geobot/internal/pending"
	"github.com/mirrorlake/geobot/internal/roster"
	"github.com/mirrorlake/geobot/internal/store"
)

// throttleWindow is the minimum interval between background lookups for
// the same (server, room, identity).
const throttleWindow = time.Hour

// maxPeopleListed caps how many names a place query reply includes.
const maxPeopleListed = 11

// Transport is the command surface the engine needs from the live chat
// session.
type Transport interface {
	SendMessage(room, text string) error
	Whois(nick string) error
	Join(room string) error
	Nick() string
}

// Shortener shortens map URLs, best-effort.
type Shortener interface {
	Shorten(long string) (string, error)
}

// SightingStore persists observed locations and answers place queries.
type SightingStore interface {
	Append(store.Sighting) error
	FindPeopleIn(server, channel, place string) ([]string, error)
}

type Engine struct {
	server   string
	channels []string
	auth     *config.AuthConfig

	tr    Transport
	geo   geo.Resolver
	store SightingStore
	short Shortener

	roster  *roster.Roster
	pending *pending.Table

	throttleMu sync.Mutex
	throttle   map[string]time.Time

	now      func() time.Time
	randIntn func(int) int
}

func New(cfg config.ServerConfig, resolver geo.Resolver, st SightingStore, short Shortener) *Engine {
	return &Engine{
		server:   cfg.Address,
		channels: cfg.Channels,
		auth:     cfg.Auth,
		geo:      resolver,
		store:    st,
		short:    short,
		roster:   roster.New(),
		pending:  pending.NewTable(),
		throttle: make(map[string]time.Time),
		now:      time.Now,
		randIntn: rand.Intn,
	}
}

// SetTransport binds the engine to a live connection. Called by the
// session supervisor on every (re)connect; roster, pending and throttle
// state deliberately survive the swap.
func (e *Engine) SetTransport(t Transport) {
	e.tr = t
}

// Handle dispatches one transport event. Exhaustive over the bus event
// kinds; must only be called from the session loop.
func (e *Engine) Handle(ev bus.Event) {
	switch ev := ev.(type) {
	case bus.Welcome:
		e.handleWelcome()
	case bus.Joined:
		e.roster.Join(ev.Room, ev.Nick)
		e.observeActor(ev.Room, ev.Nick)
	case bus.Parted:
		e.roster.Part(ev.Room, ev.Nick)
	case bus.NamesReply:
		e.roster.Snapshot(ev.Room, ev.Nicks)
	case bus.Message:
		e.handleMessage(ev)
	case bus.WhoisUser:
		e.handleWhoisUser(ev)
	case bus.NoSuchNick:
		e.handleNoSuchNick(ev)
	case bus.Dead:
		// Reconnection is the supervisor's job.
	}
}

func (e *Engine) handleWelcome() {
	if e.auth != nil {
		e.send(e.auth.Handler, "identify "+e.auth.Password)
	}
	for _, room := range e.channels {
		if err := e.tr.Join(room); err != nil {
			log.Printf("[engine] join %s: %v", room, err)
		}
	}
}

func (e *Engine) handleMessage(ev bus.Message) {
	e.observeActor(ev.Room, ev.Sender)

	me := e.tr.Nick()
	if me == "" || !strings.HasPrefix(strings.ToLower(ev.Text), strings.ToLower(me)) {
		return
	}

	switch in := Parse(ev.Text).(type) {
	case PeopleInPlace:
		e.handlePlaceQuery(ev.Sender, ev.Room, in.Place)
	case Snack:
		e.handleSnack(ev.Sender, ev.Room)
	case NickQuery:
		e.handleNickQuery(ev.Sender, ev.Room, in.Text)
	}
}

// handleNickQuery walks the lookup precedence ladder: an address literal
// answers synchronously; a "where is X" or a roster-known token issues
// an asynchronous identity lookup; anything else gets the canned reply.
func (e *Engine) handleNickQuery(from, room, text string) {
	text = strings.TrimSuffix(text, "?")

	if m := addrRe.FindStringSubmatch(text); m != nil {
		e.replyWithLocation(m[1], m[1], pending.Record{From: from, Room: room})
		return
	}

	if m := whereIsRe.FindStringSubmatch(text); m != nil {
		e.issueLookup(m[1], from, room)
		return
	}

	if interrogativeRe.MatchString(text) {
		if who := e.scanRoster(room, text); who != "" {
			e.issueLookup(who, from, room)
			return
		}
	}

	e.send(room, fmt.Sprintf("I don't know who that is, %s. Are they in this channel?", from))
}

// scanRoster scans message tokens trailing-to-leading and returns the
// first roster member encountered (the one nearest the end of the
// message wins).
func (e *Engine) scanRoster(room, text string) string {
	tokens := strings.Fields(text)
	for i := len(tokens) - 1; i >= 0; i-- {
		tok := identity.Normalize(tokens[i])
		if tok != "" && e.roster.Contains(room, tok) {
			return tok
		}
	}
	return ""
}

func (e *Engine) issueLookup(raw, from, room string) {
	nick := identity.Normalize(raw)
	if nick == "" {
		return
	}
	if err := e.tr.Whois(nick); err != nil {
		log.Printf("[engine] whois %s: %v", nick, err)
	}
	e.pending.Put(pending.UserKey(nick), pending.Record{From: from, Room: room})
}

// observeActor is the passive logging trigger, called on every message
// and join. At most one background lookup per (server, room, identity)
// per throttle window.
func (e *Engine) observeActor(room, raw string) {
	nick := identity.Normalize(raw)
	if nick == "" {
		return
	}

	key := fmt.Sprintf("%s:%s:%s", e.server, room, nick)
	now := e.now()

	e.throttleMu.Lock()
	last, seen := e.throttle[key]
	if seen && now.Sub(last) < throttleWindow {
		e.throttleMu.Unlock()
		return
	}
	e.throttle[key] = now
	e.throttleMu.Unlock()

	if err := e.tr.Whois(nick); err != nil {
		log.Printf("[engine] whois %s: %v", nick, err)
	}
	e.pending.Put(pending.LogKey(nick), pending.Record{From: nick, Room: room})
}

// PruneThrottle removes throttle records older than the window. Expired
// records never affect admission decisions, so this only reclaims
// memory. Returns the number removed.
func (e *Engine) PruneThrottle() int {
	cutoff := e.now().Add(-throttleWindow)
	e.throttleMu.Lock()
	defer e.throttleMu.Unlock()
	removed := 0
	for key, stamp := range e.throttle {
		if stamp.Before(cutoff) {
			delete(e.throttle, key)
			removed++
		}
	}
	return removed
}

func (e *Engine) handleWhoisUser(ev bus.WhoisUser) {
	nick := identity.Normalize(ev.Nick)
	if nick == "" || ev.Host == "" {
		return
	}

	if rec, ok := e.pending.Take(pending.UserKey(nick)); ok {
		e.replyWithLocation(ev.Host, ev.Nick, rec)
		return
	}

	if rec, ok := e.pending.Take(pending.LogKey(nick)); ok {
		ip, res := e.geo.Resolve(ev.Host)
		if res == nil {
			return
		}
		sg := store.Sighting{
			Server:    e.server,
			Channel:   rec.Room,
			User:      rec.From,
			IP:        ip,
			Latitude:  res.Latitude,
			Longitude: res.Longitude,
			City:      res.City,
			Region:    res.Region,
			Country:   res.Country,
			Zip:       res.PostalCode,
		}
		if err := e.store.Append(sg); err != nil {
			log.Printf("[engine] log sighting for %s: %v", nick, err)
		}
	}
	// No pending record of either kind: a lookup this engine did not
	// originate, or one that already completed. Ignore.
}

func (e *Engine) handleNoSuchNick(ev bus.NoSuchNick) {
	nick := identity.Normalize(ev.Nick)
	if nick == "" {
		return
	}
	// Only user lookups get a reply; a pending background log for a
	// vanished nick expires silently.
	if rec, ok := e.pending.Take(pending.UserKey(nick)); ok {
		e.send(rec.Room, fmt.Sprintf("%s: I don't know where %s is from! (Are they cloaked?)", rec.From, ev.Nick))
	}
}

func (e *Engine) handlePlaceQuery(from, room, place string) {
	people, err := e.store.FindPeopleIn(e.server, room, place)
	if err != nil {
		log.Printf("[engine] place query %q: %v", place, err)
		people = nil
	}
	if len(people) > maxPeopleListed {
		people = people[:maxPeopleListed]
	}

	var names string
	switch len(people) {
	case 0:
		names = fmt.Sprintf("I don't know of anyone in %s!", place)
	case 1:
		names = people[0]
	default:
		last := people[len(people)-1]
		names = strings.Join(people[:len(people)-1], ", ") + " and " + last
	}
	e.send(room, fmt.Sprintf("%s: %s", from, names))
}

var snackQuips = []string{
	"We make good team!",
	"We must push little cart!",
	"I hear someone building diaper changing machine!",
	"WHO TOUCHED SASHA?",
}

func (e *Engine) handleSnack(from, room string) {
	e.send(room, fmt.Sprintf("%s: om nom nom. om nom!", from))
	e.send(room, snackQuips[e.randIntn(len(snackQuips))])
}

func (e *Engine) send(room, text string) {
	if err := e.tr.SendMessage(room, text); err != nil {
		log.Printf("[engine] send to %s: %v", room, err)
	}
}
