package rtc

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestAcceptPayload_QueuedBeforeStart(t *testing.T) {
	req := require.New(t)
	p := New(Config{}, Callbacks{})

	// Given payloads racing ahead of the accept
	req.NoError(p.AcceptPayload(json.RawMessage(`{"type":"offer","sdp":"v=0"}`)))
	req.NoError(p.AcceptPayload(json.RawMessage(`{"type":"candidate","candidate":{"candidate":"c1"}}`)))

	// Then they are held, in order, for replay at Start
	p.mu.Lock()
	defer p.mu.Unlock()
	req.Len(p.pending, 2)
	req.JSONEq(`{"type":"offer","sdp":"v=0"}`, string(p.pending[0]))
}

func TestAcceptPayload_AfterCloseIgnored(t *testing.T) {
	req := require.New(t)
	p := New(Config{}, Callbacks{})

	req.NoError(p.Close())

	// A stray payload after teardown is dropped, not an error
	req.NoError(p.AcceptPayload(json.RawMessage(`{"type":"candidate"}`)))
	req.Empty(p.pending)
}

func TestClose_Idempotent(t *testing.T) {
	req := require.New(t)
	p := New(Config{}, Callbacks{})

	req.NoError(p.Close())
	req.NoError(p.Close())
}

func TestStart_AfterCloseRefused(t *testing.T) {
	req := require.New(t)
	p := New(Config{}, Callbacks{})

	req.NoError(p.Close())
	req.ErrorIs(p.Start(true, nil), ErrClosed)
}

func TestFail_FiresOnce(t *testing.T) {
	req := require.New(t)

	fired := 0
	p := New(Config{}, Callbacks{OnFailure: func(error) { fired++ }})

	p.fail(ErrClosed)
	p.fail(ErrClosed)
	req.Equal(1, fired)
}
