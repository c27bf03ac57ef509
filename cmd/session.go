package cmd

import (
	"context"
	"fmt"
	"time"

	pion "github.com/pion/webrtc/v4"

	"github.com/mvidakovic/pricaona/internal/api"
	"github.com/mvidakovic/pricaona/internal/config"
	"github.com/mvidakovic/pricaona/internal/identity"
	"github.com/mvidakovic/pricaona/internal/media"
	"github.com/mvidakovic/pricaona/internal/room"
	"github.com/mvidakovic/pricaona/internal/rtc"
	"github.com/mvidakovic/pricaona/internal/signaling"
)

var (
	flagDomain   string
	flagTLS      bool
	flagName     string
	flagSTUN     string
	flagTURN     string
	flagTURNUser string
	flagTURNPass string
)

const apiTimeout = 10 * time.Second

func apiContext() (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.Background(), apiTimeout)
}

// RoomContext bundles everything a joined room needs, torn down in one place.
type RoomContext struct {
	Config   *config.Config
	Identity identity.Identity
	Client   *signaling.Client
	Session  *room.Session

	LocalStats  *media.StatsSink
	RemoteStats *media.StatsSink
}

func LoadConfig() (*config.Config, error) {
	cfg, err := config.Load(config.Options{
		Domain:     flagDomain,
		TLS:        flagTLS,
		STUNServer: flagSTUN,
		TURNServer: flagTURN,
		TURNUser:   flagTURNUser,
		TURNPass:   flagTURNPass,
	})
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return cfg, nil
}

// NewRoomContext connects the signaling channel and assembles the session.
// The session is not started; the caller starts it once the UI is ready to
// drain events.
func NewRoomContext(cfg *config.Config, roomID string) (*RoomContext, error) {
	id, err := identity.Load(flagName)
	if err != nil {
		return nil, fmt.Errorf("load identity: %w", err)
	}

	client := signaling.NewClient(cfg.WebSocketBase(), roomID, id.ID, id.Username)
	if err := client.Connect(); err != nil {
		return nil, fmt.Errorf("connect to server: %w", err)
	}

	engine, err := media.NewEngine()
	if err != nil {
		client.Close()
		return nil, fmt.Errorf("init media engine: %w", err)
	}

	localStats := media.NewStatsSink()
	remoteStats := media.NewStatsSink()
	manager := media.NewManager(engine, localStats, remoteStats)

	factory := func(hooks room.NegotiationHooks) room.Negotiator {
		return rtc.New(
			rtc.Config{ICEServers: iceServers(cfg), Engine: engine},
			rtc.Callbacks{
				OnPayload:     hooks.OnPayload,
				OnRemoteTrack: hooks.OnRemoteTrack,
				OnConnected:   hooks.OnConnected,
				OnFailure:     hooks.OnFailure,
			},
		)
	}

	sess := room.New(room.Config{
		RoomID:        roomID,
		SelfID:        id.ID,
		SelfName:      id.Username,
		Transport:     client,
		Media:         manager,
		NewNegotiator: factory,
		Directory:     api.New(cfg.APIBase()),
	})

	return &RoomContext{
		Config:      cfg,
		Identity:    id,
		Client:      client,
		Session:     sess,
		LocalStats:  localStats,
		RemoteStats: remoteStats,
	}, nil
}

func iceServers(cfg *config.Config) []pion.ICEServer {
	servers := []pion.ICEServer{{URLs: cfg.GetSTUNServers()}}

	turnServers := cfg.GetTURNServers()
	if turnServers != nil {
		username, password := cfg.GetTURNCredentials()
		servers = append(servers, pion.ICEServer{
			URLs:       turnServers,
			Username:   username,
			Credential: password,
		})
	}

	return servers
}

// lookupRoomName resolves a room id to its display name, best effort. Falls
// back to the id when the directory is unreachable or the room is unlisted.
func lookupRoomName(cfg *config.Config, roomID string) string {
	ctx, cancel := apiContext()
	defer cancel()

	rooms, err := api.New(cfg.APIBase()).Rooms(ctx)
	if err != nil {
		return roomID
	}
	for _, r := range rooms {
		if r.ID == roomID {
			return r.Name
		}
	}
	return roomID
}
