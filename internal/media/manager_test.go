package media

import (
	"testing"

	"github.com/pion/webrtc/v4"
	"github.com/stretchr/testify/require"
)

type fakeStream struct {
	stops int
}

func (f *fakeStream) Tracks() []webrtc.TrackLocal { return nil }
func (f *fakeStream) Stop()                       { f.stops++ }

func newHeldManager(local LocalStream) *Manager {
	m := NewManager(nil, NewStatsSink(), NewStatsSink())
	m.local = local
	m.done = make(chan struct{})
	m.localSink.Bind("cam0", "video")
	m.remoteSink.Bind("remote0", "video")
	return m
}

func TestRelease_IsIdempotent(t *testing.T) {
	req := require.New(t)
	stream := &fakeStream{}
	m := newHeldManager(stream)

	// Releasing any number of times stops tracks once and clears bindings
	m.Release()
	m.Release()
	m.Release()

	req.Equal(1, stream.stops)
	req.False(m.localSink.Bound())
	req.False(m.remoteSink.Bound())
}

func TestRelease_NothingHeld(t *testing.T) {
	req := require.New(t)
	m := NewManager(nil, NewStatsSink(), NewStatsSink())

	req.NotPanics(m.Release)
	req.NotPanics(m.Release)
}

func TestStatsSink_SampleAfterClearDropped(t *testing.T) {
	req := require.New(t)
	s := NewStatsSink()

	s.Bind("a", "audio")
	s.Sample("a", 120)
	s.Sample("a", 80)

	snap := s.Snapshot()
	req.Len(snap, 1)
	req.Equal(uint64(2), snap[0].Packets)
	req.Equal(uint64(200), snap[0].Bytes)

	// Samples racing a teardown must not resurrect the binding
	s.Clear()
	s.Sample("a", 50)
	req.Empty(s.Snapshot())
}
