// Package room owns one participant's visit to one room: the signaling
// channel, the chat log, the roster, the call state machine and the media
// manager. All state is mutated on a single event-loop goroutine; inbound
// envelopes, local intents and negotiation callbacks are serialized through
// it, so no envelope is ever handled concurrently with another.
package room

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pion/webrtc/v4"

	"github.com/mvidakovic/pricaona/internal/api"
	"github.com/mvidakovic/pricaona/internal/call"
	"github.com/mvidakovic/pricaona/internal/media"
	"github.com/mvidakovic/pricaona/internal/signaling"
)

// Transport is the signaling channel as the session sees it. Incoming is
// closed when the channel drops; no reconnect happens behind it.
type Transport interface {
	Send(env *signaling.Envelope)
	Incoming() <-chan *signaling.Envelope
	Close()
}

// Negotiator is one peer negotiation session.
type Negotiator interface {
	Start(initiator bool, local media.LocalStream) error
	AcceptPayload(data json.RawMessage) error
	Close() error
}

// NegotiationHooks are the session-side callbacks a new negotiator is wired
// to. They may be invoked from foreign goroutines.
type NegotiationHooks struct {
	OnPayload     func(data json.RawMessage)
	OnRemoteTrack func(track *webrtc.TrackRemote)
	OnConnected   func()
	OnFailure     func(err error)
}

// NegotiatorFactory builds the negotiation session for one call.
type NegotiatorFactory func(hooks NegotiationHooks) Negotiator

// MediaManager is the slice of the media resource manager the session uses.
type MediaManager interface {
	Acquire(ctx context.Context) (media.LocalStream, error)
	BindRemote(track *webrtc.TrackRemote)
	Release()
}

// Directory lists the current members of a room.
type Directory interface {
	Participants(ctx context.Context, roomID string) ([]api.Participant, error)
}

const rosterTimeout = 5 * time.Second

// Config assembles a session.
type Config struct {
	RoomID   string
	SelfID   string
	SelfName string

	Transport     Transport
	Media         MediaManager
	NewNegotiator NegotiatorFactory
	Directory     Directory
}

// Session is the coordinator for one room visit.
type Session struct {
	cfg Config
	log *slog.Logger

	// loop-owned state
	machine    *call.Machine
	negotiator Negotiator
	messages   []ChatMessage
	roster     []api.Participant

	intents chan func()
	events  chan Event
	done    chan struct{}
	stopped chan struct{}

	closeOnce sync.Once
}

// New creates a session over an already-connected transport.
func New(cfg Config) *Session {
	return &Session{
		cfg:     cfg,
		log:     slog.With("room", cfg.RoomID),
		machine: call.NewMachine(),
		intents: make(chan func(), 16),
		events:  make(chan Event, 64),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
}

// Start launches the event loop and the initial roster fetch. Channel
// establishment and the roster snapshot are independent requests; whichever
// finishes first is handled first.
func (s *Session) Start() {
	go s.run()
	s.refreshRoster()
}

// Events returns the UI-facing event stream. Closed when the session ends.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Phase reports the call phase for assertions and status displays. It posts
// through the loop so the read is ordered with pending events.
func (s *Session) Phase() call.Phase {
	result := make(chan call.Phase, 1)
	if !s.post(func() { result <- s.machine.Phase() }) {
		return call.Idle
	}
	select {
	case p := <-result:
		return p
	case <-s.stopped:
		return call.Idle
	}
}

// SendChat relays a chat message. The local log is appended only when the
// relay echoes it back, so everyone sees the same order.
func (s *Session) SendChat(content string) {
	if content == "" {
		return
	}
	s.post(func() {
		s.cfg.Transport.Send(signaling.NewChat(s.cfg.RoomID, s.cfg.SelfID, s.cfg.SelfName, content))
	})
}

// StartCall sends the call invitation. Ignored while a call is in progress.
func (s *Session) StartCall() {
	s.post(func() {
		if !s.machine.StartOutgoing() {
			return
		}
		content := fmt.Sprintf("%s zove na video poziv", s.cfg.SelfName)
		s.cfg.Transport.Send(signaling.NewCallRequest(s.cfg.RoomID, s.cfg.SelfID, s.cfg.SelfName, content))
		s.emit(CallChanged{Phase: call.OutgoingPending})
	})
}

// AcceptCall answers a ringing call. Ignored unless one is ringing.
func (s *Session) AcceptCall() {
	s.post(func() {
		if !s.machine.Accept() {
			return
		}
		s.cfg.Transport.Send(signaling.NewCallAccept(s.cfg.RoomID, s.cfg.SelfID, s.cfg.SelfName))
		s.beginNegotiation(false)
		s.emit(CallChanged{Phase: call.Connected})
	})
}

// EndCall hangs up the current call, if any.
func (s *Session) EndCall() {
	s.post(func() { s.endCall(true) })
}

// Leave exits the room. It blocks until the loop has released media, closed
// the negotiation session and closed the transport, so navigating away never
// leaks a camera.
func (s *Session) Leave() {
	s.closeOnce.Do(func() { close(s.done) })
	<-s.stopped
}

// post hands fn to the event loop. Returns false when the session already
// ended; late results (stale roster fetches, dangling callbacks) land here
// and are dropped.
func (s *Session) post(fn func()) bool {
	select {
	case s.intents <- fn:
		return true
	case <-s.done:
		return false
	}
}

func (s *Session) emit(ev Event) {
	select {
	case s.events <- ev:
	default:
		s.log.Warn("event channel full, dropping event")
	}
}

func (s *Session) run() {
	defer s.teardown()

	for {
		select {
		case <-s.done:
			return

		case env, ok := <-s.cfg.Transport.Incoming():
			if !ok {
				s.handleDisconnect()
				return
			}
			s.route(env)

		case fn := <-s.intents:
			fn()
		}
	}
}

// route classifies one inbound envelope. Chat and notifications land in the
// log unconditionally, self-echoes included; call control and negotiation
// payloads are acted on only when they come from the other side.
func (s *Session) route(env *signaling.Envelope) {
	if !env.Known() {
		s.log.Debug("unknown envelope dropped", "type", env.Type)
		return
	}

	switch env.Type {
	case signaling.TypeChat, signaling.TypeNotification:
		msg := ChatMessage{
			Sender:       env.Username,
			Content:      env.Content,
			Notification: env.Type == signaling.TypeNotification,
			Mine:         s.isSelf(env),
		}
		s.messages = append(s.messages, msg)
		s.emit(ChatAppended{Message: msg})
		if msg.Notification {
			// Membership changed; the transport carries no roster deltas,
			// so re-fetch the snapshot.
			s.refreshRoster()
		}

	case signaling.TypeCallRequest:
		if s.isSelf(env) {
			return
		}
		if s.machine.IncomingRequest() {
			s.emit(CallRinging{From: env.Username, Banner: env.Content})
			s.emit(CallChanged{Phase: call.IncomingPending})
		}

	case signaling.TypeCallAccept:
		if s.isSelf(env) {
			return
		}
		if s.machine.RemoteAccepted() {
			s.beginNegotiation(true)
			s.emit(CallChanged{Phase: call.Connected})
		}

	case signaling.TypeCallEnd:
		if s.isSelf(env) {
			return
		}
		if s.machine.End() {
			s.teardownCall()
			s.emit(CallChanged{Phase: call.Idle})
		}

	case signaling.TypeSignal:
		if env.From == s.cfg.SelfID {
			return
		}
		if s.negotiator == nil {
			s.log.Debug("negotiation payload without session dropped")
			return
		}
		if err := s.negotiator.AcceptPayload(env.Data); err != nil {
			s.log.Warn("negotiation payload failed", "err", err)
			s.failCall("negotiation failed")
		}
	}
}

func (s *Session) isSelf(env *signaling.Envelope) bool {
	if env.From != "" {
		return env.From == s.cfg.SelfID
	}
	return env.Username == s.cfg.SelfName
}

// beginNegotiation creates the negotiation session and kicks off media
// acquisition. Idempotent: a duplicate accept delivery finds the session
// already present and does nothing.
func (s *Session) beginNegotiation(initiator bool) {
	if s.negotiator != nil {
		return
	}

	var neg Negotiator
	neg = s.cfg.NewNegotiator(NegotiationHooks{
		OnPayload: func(data json.RawMessage) {
			s.cfg.Transport.Send(signaling.NewSignal(s.cfg.RoomID, s.cfg.SelfID, data))
		},
		OnRemoteTrack: func(track *webrtc.TrackRemote) {
			s.cfg.Media.BindRemote(track)
		},
		OnConnected: func() {
			s.log.Info("media connected")
		},
		OnFailure: func(err error) {
			s.post(func() {
				if s.negotiator != neg {
					return
				}
				s.log.Warn("peer connection failed", "err", err)
				s.failCall("call failed")
			})
		},
	})
	s.negotiator = neg

	// Media acquisition suspends on the hardware grant; run it off-loop and
	// re-check that this call is still the current one before acting.
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		stream, err := s.cfg.Media.Acquire(ctx)

		delivered := s.post(func() {
			if s.negotiator != neg {
				if stream != nil {
					stream.Stop()
				}
				return
			}
			if err != nil {
				s.log.Warn("media acquisition failed", "err", err)
				s.emit(CallError{Reason: "camera/microphone unavailable"})
				s.endCall(true)
				return
			}
			if err := neg.Start(initiator, stream); err != nil {
				s.log.Warn("negotiation start failed", "err", err)
				s.failCall("negotiation failed")
			}
		})
		if !delivered && stream != nil {
			stream.Stop()
		}
	}()
}

// endCall drives the Connected→Idle (or pending→Idle) transition from the
// local side. No-op when already Idle, so a second hang-up never sends a
// duplicate call-end.
func (s *Session) endCall(sendNotice bool) {
	if !s.machine.End() {
		return
	}
	if sendNotice {
		s.cfg.Transport.Send(signaling.NewCallEnd(s.cfg.RoomID, s.cfg.SelfID, s.cfg.SelfName))
	}
	s.teardownCall()
	s.emit(CallChanged{Phase: call.Idle})
}

// failCall tears down after a negotiation-level failure; equivalent to a
// remote hang-up, no echo sent.
func (s *Session) failCall(reason string) {
	if !s.machine.End() {
		return
	}
	s.teardownCall()
	s.emit(CallError{Reason: reason})
	s.emit(CallChanged{Phase: call.Idle})
}

// teardownCall releases media and destroys the negotiation session. Both are
// idempotent, so every exit path may run it.
func (s *Session) teardownCall() {
	s.cfg.Media.Release()
	if s.negotiator != nil {
		if err := s.negotiator.Close(); err != nil {
			s.log.Debug("closing negotiation session", "err", err)
		}
		s.negotiator = nil
	}
}

// handleDisconnect treats a dropped channel as a remote hang-up: back to
// Idle, media released, nothing sent.
func (s *Session) handleDisconnect() {
	if s.machine.End() {
		s.teardownCall()
		s.emit(CallChanged{Phase: call.Idle})
	}
	s.emit(Disconnected{})
}

// refreshRoster fetches the membership snapshot off-loop and applies it only
// if the session is still live (stale-response guard).
func (s *Session) refreshRoster() {
	if s.cfg.Directory == nil {
		return
	}
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), rosterTimeout)
		defer cancel()

		list, err := s.cfg.Directory.Participants(ctx, s.cfg.RoomID)
		if err != nil {
			s.log.Warn("roster fetch failed", "err", err)
			return
		}
		s.post(func() {
			s.roster = list
			s.emit(RosterUpdated{Participants: list})
		})
	}()
}

func (s *Session) teardown() {
	// Leaving the room releases everything regardless of how we got here.
	if s.machine.End() {
		s.emit(CallChanged{Phase: call.Idle})
	}
	s.cfg.Media.Release()
	if s.negotiator != nil {
		s.negotiator.Close()
		s.negotiator = nil
	}
	s.cfg.Transport.Close()
	s.closeOnce.Do(func() { close(s.done) })
	close(s.stopped)
	close(s.events)
}
