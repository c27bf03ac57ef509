package cmd

import (
	"fmt"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/mvidakovic/pricaona/internal/ui"
)

var joinCmd = &cobra.Command{
	Use:     "join <room-id>",
	Aliases: []string{"j"},
	Short:   "Join a chat room",
	Long: `Join a chat room and start talking. Inside the room, type to chat and use
slash commands to manage calls:

  /call     invite the room to a one-to-one video call
  /accept   pick up an incoming call
  /end      hang up or decline
  /quit     leave the room

Examples:
  pricaona join 3f2a...
  pricaona join --name Iva 3f2a...
  pricaona join --domain chat.example.com --tls 3f2a...`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return joinRoom(args[0])
	},
}

func joinRoom(roomID string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	sp := ui.NewConnectionSpinner("Connecting to " + cfg.Domain + "...")
	sp.Start()
	rc, err := NewRoomContext(cfg, roomID)
	if err != nil {
		sp.Error("connection failed")
		return err
	}
	sp.Success(fmt.Sprintf("Connected as %s", rc.Identity.Username))

	roomName := lookupRoomName(cfg, roomID)

	rc.Session.Start()
	model := ui.NewChatModel(
		rc.Session,
		rc.Session.Events(),
		roomName,
		rc.Identity.Username,
		rc.LocalStats,
		rc.RemoteStats,
	)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		rc.Session.Leave()
		return fmt.Errorf("run chat: %w", err)
	}

	// Leave is idempotent; the UI normally triggered it already.
	rc.Session.Leave()
	return nil
}

func init() {
	rootCmd.AddCommand(joinCmd)

	joinCmd.Flags().StringVarP(&flagName, "name", "n", "", "Display name (persisted for next time)")
	joinCmd.Flags().StringVarP(&flagDomain, "domain", "d", "", "Chat server host[:port]")
	joinCmd.Flags().BoolVar(&flagTLS, "tls", false, "Use wss/https when talking to the server")
	joinCmd.Flags().StringVarP(&flagSTUN, "stun", "s", "", "Custom STUN server")
	joinCmd.Flags().StringVarP(&flagTURN, "turn", "t", "", "Custom TURN server")
	joinCmd.Flags().StringVarP(&flagTURNUser, "turn-user", "u", "", "TURN username")
	joinCmd.Flags().StringVarP(&flagTURNPass, "turn-pass", "p", "", "TURN password")
}
