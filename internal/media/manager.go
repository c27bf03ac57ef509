// Package media acquires local capture devices, binds local and remote
// streams to their display sinks, and guarantees release of everything it
// handed out, exactly once per call.
package media

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"

	"github.com/pion/mediadevices"
	"github.com/pion/rtp"
	"github.com/pion/webrtc/v4"
)

// LocalStream is the acquired local capture stream handed to negotiation.
type LocalStream interface {
	Tracks() []webrtc.TrackLocal
	Stop()
}

// deviceStream adapts a mediadevices stream to LocalStream.
type deviceStream struct {
	stream mediadevices.MediaStream
}

func (d *deviceStream) Tracks() []webrtc.TrackLocal {
	tracks := d.stream.GetTracks()
	out := make([]webrtc.TrackLocal, 0, len(tracks))
	for _, t := range tracks {
		out = append(out, t)
	}
	return out
}

func (d *deviceStream) Stop() {
	for _, t := range d.stream.GetTracks() {
		if err := t.Close(); err != nil {
			slog.Debug("closing local track", "err", err)
		}
	}
}

// Manager owns media acquisition and release for one room session. All
// methods are safe for concurrent use; Release is idempotent.
type Manager struct {
	engine *Engine

	localSink  *StatsSink
	remoteSink *StatsSink

	mu    sync.Mutex
	local LocalStream
	done  chan struct{} // closed on Release; stops remote readers
}

func NewManager(engine *Engine, localSink, remoteSink *StatsSink) *Manager {
	return &Manager{
		engine:     engine,
		localSink:  localSink,
		remoteSink: remoteSink,
	}
}

// Acquire opens camera and microphone and binds the local stream to its
// sink. The context covers the permission/hardware wait; a context cancelled
// mid-grant releases the stream instead of leaking it.
func (m *Manager) Acquire(ctx context.Context) (LocalStream, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	stream, err := m.engine.capture()
	if err != nil {
		return nil, err
	}
	local := &deviceStream{stream: stream}

	if ctx.Err() != nil {
		local.Stop()
		return nil, ctx.Err()
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	if m.local != nil {
		// A stream from a previous call survived; replace it cleanly.
		m.local.Stop()
	}
	m.local = local
	m.done = make(chan struct{})

	for _, t := range stream.GetTracks() {
		m.localSink.Bind(t.ID(), t.Kind().String())
	}
	return local, nil
}

// BindRemote attaches a remote track to the remote sink and drains it so the
// UI can show call liveness. The reader stops on Release or when the track
// ends.
func (m *Manager) BindRemote(track *webrtc.TrackRemote) {
	m.mu.Lock()
	done := m.done
	m.mu.Unlock()
	if done == nil {
		// No call in progress; a stray track is not bound.
		return
	}

	id := track.ID()
	m.remoteSink.Bind(id, track.Kind().String())

	go func() {
		for {
			select {
			case <-done:
				return
			default:
			}

			var pkt *rtp.Packet
			pkt, _, err := track.ReadRTP()
			if err != nil {
				if !errors.Is(err, io.EOF) {
					slog.Debug("remote track closed", "kind", track.Kind().String(), "err", err)
				}
				return
			}
			m.remoteSink.Sample(id, len(pkt.Payload))
		}
	}()
}

// Release stops every local track, stops remote readers and clears both sink
// bindings. Safe to call any number of times; a no-op when nothing is held.
func (m *Manager) Release() {
	m.mu.Lock()
	local := m.local
	done := m.done
	m.local = nil
	m.done = nil
	m.mu.Unlock()

	if done != nil {
		close(done)
	}
	if local != nil {
		local.Stop()
	}
	m.localSink.Clear()
	m.remoteSink.Clear()
}
