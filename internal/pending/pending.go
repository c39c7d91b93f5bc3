// Package pending is the correlation point between an outbound identity
// lookup and its eventual asynchronous reply: a table mapping correlation
// keys to the requester context that triggered the lookup.
package pending

import "sync"

// Reason records why a lookup was issued.
type Reason int

const (
	// UserLookup means a reply is owed to the requester in their room.
	UserLookup Reason = iota
	// BackgroundLog means no reply is owed; the result is persisted.
	BackgroundLog
)

// Key identifies one outstanding lookup. Nick must be normalized. A user
// lookup and a background log for the same nick are distinct keys, so
// completing one can never consume the other's record.
type Key struct {
	Nick   string
	Reason Reason
}

func UserKey(nick string) Key { return Key{Nick: nick, Reason: UserLookup} }
func LogKey(nick string) Key  { return Key{Nick: nick, Reason: BackgroundLog} }

// Record is the requester context for one pending lookup. For background
// logs From is the looked-up identity itself.
type Record struct {
	From string
	Room string
}

// Table holds at most one Record per Key. It is not persisted; a restart
// clears it. A lookup that never receives a reply lingers until its key
// is overwritten.
type Table struct {
	mu   sync.Mutex
	reqs map[Key]Record
}

func NewTable() *Table {
	return &Table{reqs: make(map[Key]Record)}
}

// Put records a pending lookup, unconditionally overwriting any earlier
// record under the same key. The earlier requester, if any, silently
// never receives a reply.
func (t *Table) Put(key Key, rec Record) {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.reqs[key] = rec
}

// Take fetches and removes the record for key. A miss is a normal
// outcome meaning no one is waiting for this identity.
func (t *Table) Take(key Key) (Record, bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	rec, ok := t.reqs[key]
	if ok {
		delete(t.reqs, key)
	}
	return rec, ok
}

// Len returns the number of outstanding lookups.
func (t *Table) Len() int {
	t.mu.Lock()
	defer t.mu.Unlock()
	return len(t.reqs)
}
