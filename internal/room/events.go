package room

import (
	"github.com/mvidakovic/pricaona/internal/api"
	"github.com/mvidakovic/pricaona/internal/call"
)

// ChatMessage is one entry of the room's append-only chat log.
type ChatMessage struct {
	Sender       string
	Content      string
	Notification bool

	// Mine marks self-originated messages echoed back by the relay. The UI
	// labels them, it never suppresses them.
	Mine bool
}

// Event is what the session reports to its UI. Exactly one concrete type per
// occurrence; extend by adding a type, not by widening payloads.
type Event interface{ event() }

// ChatAppended carries one new chat log entry.
type ChatAppended struct{ Message ChatMessage }

// RosterUpdated carries a wholesale roster snapshot.
type RosterUpdated struct{ Participants []api.Participant }

// CallChanged reports the new call phase after a transition.
type CallChanged struct{ Phase call.Phase }

// CallRinging surfaces an incoming call before any transition the user must
// decide on.
type CallRinging struct {
	From   string
	Banner string
}

// CallError is a one-shot user-visible call failure (media acquisition,
// negotiation breakdown).
type CallError struct{ Reason string }

// Disconnected reports that the signaling channel dropped. The session is
// finished; no reconnect is attempted.
type Disconnected struct{}

func (ChatAppended) event()  {}
func (RosterUpdated) event() {}
func (CallChanged) event()   {}
func (CallRinging) event()   {}
func (CallError) event()     {}
func (Disconnected) event()  {}
