// Package rtc wraps the pion peer connection behind the narrow contract the
// room session needs: start a negotiation session, feed it inbound payloads,
// emit outbound payloads, surface the remote stream, destroy it. Payloads
// are opaque JSON blobs relayed over the signaling channel.
package rtc

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/pion/interceptor"
	"github.com/pion/webrtc/v4"
	"github.com/mvidakovic/pricaona/internal/media"
)

// ErrClosed is returned by operations on a destroyed session.
var ErrClosed = errors.New("negotiation session closed")

// Config carries the pieces the adapter needs to build a peer connection.
type Config struct {
	ICEServers []webrtc.ICEServer

	// Engine registers the capture codecs on the peer connection. When nil
	// the pion defaults are used (receive-only sessions).
	Engine *media.Engine
}

// Callbacks are invoked from pion goroutines; the receiver must hand them
// off to its own loop.
type Callbacks struct {
	// OnPayload fires for every locally-produced negotiation payload that
	// must be relayed to the remote peer.
	OnPayload func(data json.RawMessage)

	// OnRemoteTrack fires once per inbound media track.
	OnRemoteTrack func(track *webrtc.TrackRemote)

	// OnConnected fires when media starts flowing.
	OnConnected func()

	// OnFailure fires once when the connection fails; the session treats it
	// like a remote hang-up.
	OnFailure func(err error)
}

// payload is the negotiation payload exchanged between peers. Opaque to the
// signaling layer.
type payload struct {
	Type      string                   `json:"type"` // offer | answer | candidate
	SDP       string                   `json:"sdp,omitempty"`
	Candidate *webrtc.ICECandidateInit `json:"candidate,omitempty"`
}

// Peer is one negotiation session. At most one exists per call.
type Peer struct {
	cfg Config
	cb  Callbacks

	mu         sync.Mutex
	pc         *webrtc.PeerConnection
	pending    []json.RawMessage // payloads accepted before Start
	candidates []webrtc.ICECandidateInit
	remoteSet  bool
	closed     bool
	failed     bool
}

// New creates an idle negotiation session. No resources are held until Start.
func New(cfg Config, cb Callbacks) *Peer {
	return &Peer{cfg: cfg, cb: cb}
}

// Start builds the peer connection, attaches the local stream and, on the
// initiating side, produces the offer. Payloads accepted before Start are
// replayed in arrival order. A second Start while the session exists is a
// no-op, absorbing duplicate accept deliveries.
func (p *Peer) Start(initiator bool, local media.LocalStream) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return ErrClosed
	}
	if p.pc != nil {
		p.mu.Unlock()
		return nil
	}

	pc, err := p.newPeerConnection()
	if err != nil {
		p.mu.Unlock()
		return err
	}
	p.pc = pc
	queued := p.pending
	p.pending = nil
	p.mu.Unlock()

	tracks := 0
	if local != nil {
		for _, t := range local.Tracks() {
			if _, err := pc.AddTrack(t); err != nil {
				slog.Warn("adding local track", "err", err)
				continue
			}
			tracks++
		}
	}
	if tracks == 0 {
		// Still receive the remote side's media.
		for _, kind := range []webrtc.RTPCodecType{webrtc.RTPCodecTypeVideo, webrtc.RTPCodecTypeAudio} {
			if _, err := pc.AddTransceiverFromKind(kind, webrtc.RTPTransceiverInit{
				Direction: webrtc.RTPTransceiverDirectionRecvonly,
			}); err != nil {
				slog.Warn("adding recvonly transceiver", "err", err)
			}
		}
	}

	if initiator {
		offer, err := pc.CreateOffer(nil)
		if err != nil {
			return fmt.Errorf("create offer: %w", err)
		}
		if err := pc.SetLocalDescription(offer); err != nil {
			return fmt.Errorf("set local description: %w", err)
		}
		p.sendPayload(payload{Type: "offer", SDP: pc.LocalDescription().SDP})
	}

	for _, data := range queued {
		if err := p.handlePayload(data); err != nil {
			return err
		}
	}
	return nil
}

// AcceptPayload injects a payload produced by the remote peer. Payloads
// arriving before Start are queued and replayed once the session exists;
// dropping them would wedge the negotiation.
func (p *Peer) AcceptPayload(data json.RawMessage) error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	if p.pc == nil {
		p.pending = append(p.pending, data)
		p.mu.Unlock()
		return nil
	}
	p.mu.Unlock()

	return p.handlePayload(data)
}

// Close destroys the session. Idempotent.
func (p *Peer) Close() error {
	p.mu.Lock()
	if p.closed {
		p.mu.Unlock()
		return nil
	}
	p.closed = true
	pc := p.pc
	p.pc = nil
	p.pending = nil
	p.candidates = nil
	p.mu.Unlock()

	if pc != nil {
		return pc.Close()
	}
	return nil
}

func (p *Peer) newPeerConnection() (*webrtc.PeerConnection, error) {
	mediaEngine := &webrtc.MediaEngine{}
	if p.cfg.Engine != nil {
		p.cfg.Engine.Populate(mediaEngine)
	} else if err := mediaEngine.RegisterDefaultCodecs(); err != nil {
		return nil, err
	}

	registry := &interceptor.Registry{}
	if err := webrtc.RegisterDefaultInterceptors(mediaEngine, registry); err != nil {
		return nil, err
	}

	// Generous ICE timeouts so a brief NAT/relay hiccup does not end the call.
	se := webrtc.SettingEngine{}
	se.SetICETimeouts(30*time.Second, 120*time.Second, 2*time.Second)

	api := webrtc.NewAPI(
		webrtc.WithMediaEngine(mediaEngine),
		webrtc.WithInterceptorRegistry(registry),
		webrtc.WithSettingEngine(se),
	)

	pc, err := api.NewPeerConnection(webrtc.Configuration{ICEServers: p.cfg.ICEServers})
	if err != nil {
		return nil, fmt.Errorf("create peer connection: %w", err)
	}

	pc.OnICECandidate(func(c *webrtc.ICECandidate) {
		if c == nil {
			return
		}
		init := c.ToJSON()
		p.sendPayload(payload{Type: "candidate", Candidate: &init})
	})

	pc.OnTrack(func(track *webrtc.TrackRemote, _ *webrtc.RTPReceiver) {
		if p.cb.OnRemoteTrack != nil {
			p.cb.OnRemoteTrack(track)
		}
	})

	pc.OnConnectionStateChange(func(state webrtc.PeerConnectionState) {
		switch state {
		case webrtc.PeerConnectionStateConnected:
			if p.cb.OnConnected != nil {
				p.cb.OnConnected()
			}
		case webrtc.PeerConnectionStateFailed:
			p.fail(errors.New("peer connection failed"))
		}
	})

	return pc, nil
}

func (p *Peer) handlePayload(data json.RawMessage) error {
	var pl payload
	if err := json.Unmarshal(data, &pl); err != nil {
		return fmt.Errorf("parse negotiation payload: %w", err)
	}

	p.mu.Lock()
	pc := p.pc
	p.mu.Unlock()
	if pc == nil {
		return ErrClosed
	}

	switch pl.Type {
	case "offer":
		desc := webrtc.SessionDescription{Type: webrtc.SDPTypeOffer, SDP: pl.SDP}
		if err := pc.SetRemoteDescription(desc); err != nil {
			return fmt.Errorf("set remote offer: %w", err)
		}
		p.flushCandidates(pc)

		answer, err := pc.CreateAnswer(nil)
		if err != nil {
			return fmt.Errorf("create answer: %w", err)
		}
		if err := pc.SetLocalDescription(answer); err != nil {
			return fmt.Errorf("set local description: %w", err)
		}
		p.sendPayload(payload{Type: "answer", SDP: pc.LocalDescription().SDP})

	case "answer":
		desc := webrtc.SessionDescription{Type: webrtc.SDPTypeAnswer, SDP: pl.SDP}
		if err := pc.SetRemoteDescription(desc); err != nil {
			return fmt.Errorf("set remote answer: %w", err)
		}
		p.flushCandidates(pc)

	case "candidate":
		if pl.Candidate == nil {
			return nil
		}
		p.mu.Lock()
		if !p.remoteSet {
			// ICE candidates cannot be applied before the remote
			// description; hold them back.
			p.candidates = append(p.candidates, *pl.Candidate)
			p.mu.Unlock()
			return nil
		}
		p.mu.Unlock()
		if err := pc.AddICECandidate(*pl.Candidate); err != nil {
			return fmt.Errorf("add ICE candidate: %w", err)
		}

	default:
		slog.Debug("unknown negotiation payload dropped", "type", pl.Type)
	}
	return nil
}

func (p *Peer) flushCandidates(pc *webrtc.PeerConnection) {
	p.mu.Lock()
	p.remoteSet = true
	held := p.candidates
	p.candidates = nil
	p.mu.Unlock()

	for _, c := range held {
		if err := pc.AddICECandidate(c); err != nil {
			slog.Warn("replaying held ICE candidate", "err", err)
		}
	}
}

func (p *Peer) sendPayload(pl payload) {
	data, err := json.Marshal(pl)
	if err != nil {
		slog.Error("marshal negotiation payload", "err", err)
		return
	}
	if p.cb.OnPayload != nil {
		p.cb.OnPayload(data)
	}
}

func (p *Peer) fail(err error) {
	p.mu.Lock()
	if p.closed || p.failed {
		p.mu.Unlock()
		return
	}
	p.failed = true
	p.mu.Unlock()

	if p.cb.OnFailure != nil {
		p.cb.OnFailure(err)
	}
}
