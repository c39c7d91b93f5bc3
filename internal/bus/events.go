// Package bus defines the closed set of events the transport delivers to
// the correlation engine, plus the bounded buffer they travel through.
// Dispatch is a type switch over Event, so adding an event kind is a
// compile-checked decision rather than a string-keyed handler lookup.
package bus

// Event is a sealed variant type; the concrete kinds below are the only
// implementations.
type Event interface{ isEvent() }

// Welcome fires once per connection when the server accepts the session.
type Welcome struct{}

// Joined fires when an identity enters a room.
type Joined struct {
	Room string
	Nick string
}

// Parted fires when an identity leaves a room.
type Parted struct {
	Room string
	Nick string
}

// Message is an inbound room message.
type Message struct {
	Sender string
	Room   string
	Text   string
}

// NamesReply is one fragment of a room membership snapshot.
type NamesReply struct {
	Room  string
	Nicks []string
}

// WhoisUser carries a resolved identity lookup: the nick as the server
// reported it (original casing) and its network host.
type WhoisUser struct {
	Nick string
	Host string
}

// NoSuchNick reports that an identity lookup found no such user.
type NoSuchNick struct {
	Nick string
}

// Dead reports that the transport connection is gone.
type Dead struct {
	Err error
}

func (Welcome) isEvent()    {}
func (Joined) isEvent()     {}
func (Parted) isEvent()     {}
func (Message) isEvent()    {}
func (NamesReply) isEvent() {}
func (WhoisUser) isEvent()  {}
func (NoSuchNick) isEvent() {}
func (Dead) isEvent()       {}
