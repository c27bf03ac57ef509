package ui

import (
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/mvidakovic/pricaona/internal/call"
	"github.com/mvidakovic/pricaona/internal/media"
	"github.com/mvidakovic/pricaona/internal/room"
)

type fakeController struct {
	chats   []string
	started int
	accepts int
	ends    int
	leaves  int
}

func (c *fakeController) SendChat(content string) { c.chats = append(c.chats, content) }
func (c *fakeController) StartCall()              { c.started++ }
func (c *fakeController) AcceptCall()             { c.accepts++ }
func (c *fakeController) EndCall()                { c.ends++ }
func (c *fakeController) Leave()                  { c.leaves++ }

func newTestModel(ctrl *fakeController) *ChatModel {
	events := make(chan room.Event)
	return NewChatModel(ctrl, events, "soba", "Anonimac", media.NewStatsSink(), media.NewStatsSink())
}

func TestSubmit_DispatchesSlashCommands(t *testing.T) {
	// Given a chat screen with pending input
	ctrl := &fakeController{}
	m := newTestModel(ctrl)

	// When each slash command is submitted
	for _, line := range []string{"/call", "/accept", "/end"} {
		m.input.SetValue(line)
		m.submit()
	}

	// Then each reaches the session exactly once and none leaks into chat
	require.Equal(t, 1, ctrl.started)
	require.Equal(t, 1, ctrl.accepts)
	require.Equal(t, 1, ctrl.ends)
	require.Empty(t, ctrl.chats)
}

func TestSubmit_PlainLineIsChat(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(ctrl)

	m.input.SetValue("  bok svima  ")
	m.submit()

	require.Equal(t, []string{"bok svima"}, ctrl.chats)
	require.Empty(t, m.input.Value())
}

func TestSubmit_EmptyLineIgnored(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(ctrl)

	m.input.SetValue("   ")
	m.submit()

	require.Empty(t, ctrl.chats)
	require.Zero(t, ctrl.started)
}

func TestHandleEvent_RingingThenConnectedClearsBanner(t *testing.T) {
	// Given an incoming call surfaced to the user
	ctrl := &fakeController{}
	m := newTestModel(ctrl)
	m.handleEvent(room.CallRinging{From: "Iva", Banner: "Iva zove na video poziv"})
	m.handleEvent(room.CallChanged{Phase: call.IncomingPending})
	require.NotEmpty(t, m.ringBanner)

	// When the call connects
	m.handleEvent(room.CallChanged{Phase: call.Connected})

	// Then the banner is gone and the phase is live
	require.Empty(t, m.ringBanner)
	require.Equal(t, call.Connected, m.phase)
}

func TestHandleEvent_CallErrorShownUntilNextAttempt(t *testing.T) {
	ctrl := &fakeController{}
	m := newTestModel(ctrl)

	m.handleEvent(room.CallError{Reason: "no capture device available"})
	require.Equal(t, "no capture device available", m.callErr)

	m.input.SetValue("/call")
	m.submit()
	require.Empty(t, m.callErr)
}
