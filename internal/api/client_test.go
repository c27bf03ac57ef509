package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestRooms(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/websocket/getRooms", r.URL.Path)
		json.NewEncoder(w).Encode([]Room{{ID: "r1", Name: "Dnevni boravak"}})
	}))
	defer srv.Close()

	rooms, err := New(srv.URL).Rooms(context.Background())
	req.NoError(err)
	req.Len(rooms, 1)
	req.Equal("Dnevni boravak", rooms[0].Name)
}

func TestParticipants(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal("/websocket/getClients/r1", r.URL.Path)
		json.NewEncoder(w).Encode([]Participant{
			{ID: "u1", Username: "Ana"},
			{ID: "u2", Username: "Ivan"},
		})
	}))
	defer srv.Close()

	list, err := New(srv.URL).Participants(context.Background(), "r1")
	req.NoError(err)
	req.Len(list, 2)
	req.Equal("u2", list[1].ID)
}

func TestParticipants_ServerError(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "boom", http.StatusInternalServerError)
	}))
	defer srv.Close()

	_, err := New(srv.URL).Participants(context.Background(), "r1")
	req.Error(err)
}

func TestCreateRoom(t *testing.T) {
	req := require.New(t)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		req.Equal(http.MethodPost, r.Method)
		req.Equal("/websocket/createRoom", r.URL.Path)
		var room Room
		req.NoError(json.NewDecoder(r.Body).Decode(&room))
		req.Equal("Kuhinja", room.Name)
		json.NewEncoder(w).Encode(room)
	}))
	defer srv.Close()

	err := New(srv.URL).CreateRoom(context.Background(), Room{ID: "r9", Name: "Kuhinja"})
	req.NoError(err)
}
