// Package roster tracks which identities are currently present in each
// room, fed incrementally from join, part and membership-snapshot events.
package roster

import (
	"sync"

	"github.com/mirrorlake/geobot/internal/identity"
)

// Roster is the per-room presence state. Rooms are created lazily on
// first event and kept for the session lifetime, possibly as empty sets.
type Roster struct {
	mu    sync.Mutex
	rooms map[string]map[string]struct{}
}

func New() *Roster {
	return &Roster{rooms: make(map[string]map[string]struct{})}
}

func (r *Roster) room(name string) map[string]struct{} {
	members, ok := r.rooms[name]
	if !ok {
		members = make(map[string]struct{})
		r.rooms[name] = members
	}
	return members
}

// Join records raw as present in room. Idempotent.
func (r *Roster) Join(room, raw string) {
	nick := identity.Normalize(raw)
	if nick == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.room(room)[nick] = struct{}{}
}

// Part removes raw from room. No-op when absent.
func (r *Roster) Part(room, raw string) {
	nick := identity.Normalize(raw)
	if nick == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.room(room), nick)
}

// Snapshot merges a membership listing into room. Snapshots arrive in
// fragments, so entries are unioned with what is already known, never
// replaced. Empty tokens are skipped.
func (r *Roster) Snapshot(room string, raws []string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	members := r.room(room)
	for _, raw := range raws {
		nick := identity.Normalize(raw)
		if nick == "" {
			continue
		}
		members[nick] = struct{}{}
	}
}

// Contains reports whether token names a known participant of room.
// Case-insensitive.
func (r *Roster) Contains(room, token string) bool {
	nick := identity.Normalize(token)
	if nick == "" {
		return false
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.rooms[room]
	if !ok {
		return false
	}
	_, present := members[nick]
	return present
}

// Size returns the number of known members of room.
func (r *Roster) Size(room string) int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.rooms[room])
}
