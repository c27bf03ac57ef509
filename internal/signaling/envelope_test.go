package signaling

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestEnvelope_WireFormat(t *testing.T) {
	req := require.New(t)

	// Given the call invitation the web client sends
	raw := []byte(`{"type":"call-request","username":"X","roomId":"r1","content":"X zove na video poziv"}`)

	var env Envelope
	req.NoError(json.Unmarshal(raw, &env))
	req.Equal(TypeCallRequest, env.Type)
	req.Equal("r1", env.RoomID)
	req.True(env.Known())

	// Then a sender without a participant id is keyed by display name
	req.Equal("X", env.SenderID())
}

func TestEnvelope_SenderIDPrefersFrom(t *testing.T) {
	req := require.New(t)

	env := NewCallEnd("r1", "u-123", "X")
	req.Equal("u-123", env.SenderID())
}

func TestEnvelope_SignalOmitsChatFields(t *testing.T) {
	req := require.New(t)

	env := NewSignal("r1", "u-123", json.RawMessage(`{"type":"offer","sdp":"v=0"}`))
	out, err := json.Marshal(env)
	req.NoError(err)

	var fields map[string]any
	req.NoError(json.Unmarshal(out, &fields))
	req.NotContains(fields, "username")
	req.NotContains(fields, "content")
	req.Equal("signal", fields["type"])
}

func TestEnvelope_UnknownType(t *testing.T) {
	req := require.New(t)

	env := Envelope{Type: "presence-v2", RoomID: "r1"}
	req.False(env.Known())
}
