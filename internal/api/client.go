// Package api is the thin client for the chat server's REST endpoints: the
// room directory and the per-room participant list.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"
)

// Room is one entry of the room directory.
type Room struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// Participant is one current member of a room.
type Participant struct {
	ID       string `json:"id"`
	Username string `json:"username"`
}

// Client issues REST requests against one server.
type Client struct {
	base string
	http *http.Client
}

// New creates a Client for the given http(s)://host base URL.
func New(base string) *Client {
	return &Client{
		base: base,
		http: &http.Client{Timeout: 10 * time.Second},
	}
}

// Rooms lists all rooms registered on the server.
func (c *Client) Rooms(ctx context.Context) ([]Room, error) {
	var rooms []Room
	if err := c.getJSON(ctx, "/websocket/getRooms", &rooms); err != nil {
		return nil, fmt.Errorf("list rooms: %w", err)
	}
	return rooms, nil
}

// Participants lists the current members of a room. Order is not meaningful.
func (c *Client) Participants(ctx context.Context, roomID string) ([]Participant, error) {
	var list []Participant
	path := "/websocket/getClients/" + url.PathEscape(roomID)
	if err := c.getJSON(ctx, path, &list); err != nil {
		return nil, fmt.Errorf("list participants of %s: %w", roomID, err)
	}
	return list, nil
}

// CreateRoom registers a new room on the server.
func (c *Client) CreateRoom(ctx context.Context, room Room) error {
	body, err := json.Marshal(room)
	if err != nil {
		return err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.base+"/websocket/createRoom", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("create room: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("create room: server returned %s", resp.Status)
	}
	return nil
}

func (c *Client) getJSON(ctx context.Context, path string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.base+path, nil)
	if err != nil {
		return err
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("server returned %s", resp.Status)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}
