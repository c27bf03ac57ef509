// Package call models call progress for one participant. The machine is a
// pure state core: it decides transitions, the room session performs the
// side effects (sending envelopes, media, negotiation).
package call

// Phase is the externally visible call state.
type Phase int

const (
	Idle Phase = iota
	OutgoingPending
	IncomingPending
	Connected
)

func (p Phase) String() string {
	switch p {
	case Idle:
		return "idle"
	case OutgoingPending:
		return "calling"
	case IncomingPending:
		return "ringing"
	case Connected:
		return "connected"
	}
	return "unknown"
}

// Machine holds the call phase and the negotiation role for one room
// session. It is not safe for concurrent use; the session's event loop is
// its only caller.
type Machine struct {
	phase     Phase
	initiator bool
}

func NewMachine() *Machine {
	return &Machine{}
}

// Phase returns the current call phase.
func (m *Machine) Phase() Phase { return m.phase }

// Initiator reports whether this side proposes the negotiation offer.
// Meaningful only while a call is in progress.
func (m *Machine) Initiator() bool { return m.initiator }

// Active reports whether any call is in progress.
func (m *Machine) Active() bool { return m.phase != Idle }

// StartOutgoing handles the local start-call intent. Returns false if a call
// is already in progress; a second call never overrides the first.
func (m *Machine) StartOutgoing() bool {
	if m.phase != Idle {
		return false
	}
	m.phase = OutgoingPending
	m.initiator = true
	return true
}

// IncomingRequest handles a remote call-request. Requests arriving while not
// Idle are ignored.
func (m *Machine) IncomingRequest() bool {
	if m.phase != Idle {
		return false
	}
	m.phase = IncomingPending
	m.initiator = false
	return true
}

// Accept handles the local accept intent for a ringing call.
func (m *Machine) Accept() bool {
	if m.phase != IncomingPending {
		return false
	}
	m.phase = Connected
	m.initiator = false
	return true
}

// RemoteAccepted handles the remote call-accept. Accepts arriving while not
// OutgoingPending (duplicates, strays) are ignored.
func (m *Machine) RemoteAccepted() bool {
	if m.phase != OutgoingPending {
		return false
	}
	m.phase = Connected
	return true
}

// End returns to Idle from any phase. Returns false when already Idle, which
// makes hang-up idempotent no matter which side wins the race.
func (m *Machine) End() bool {
	if m.phase == Idle {
		return false
	}
	m.phase = Idle
	m.initiator = false
	return true
}
