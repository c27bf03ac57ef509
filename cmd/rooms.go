package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mvidakovic/pricaona/internal/api"
	"github.com/mvidakovic/pricaona/internal/ui"
)

var roomsCmd = &cobra.Command{
	Use:     "rooms",
	Aliases: []string{"ls"},
	Short:   "List the rooms on the server",
	RunE: func(cmd *cobra.Command, args []string) error {
		return listRooms()
	},
}

func listRooms() error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	stopSpinner := ui.RunSpinner("Fetching rooms...")
	defer stopSpinner()

	ctx, cancel := apiContext()
	defer cancel()

	rooms, err := api.New(cfg.APIBase()).Rooms(ctx)
	if err != nil {
		return fmt.Errorf("list rooms: %w", err)
	}
	stopSpinner()

	ui.RenderRoomTable(rooms)
	return nil
}

func init() {
	rootCmd.AddCommand(roomsCmd)

	roomsCmd.Flags().StringVarP(&flagDomain, "domain", "d", "", "Chat server host[:port]")
	roomsCmd.Flags().BoolVar(&flagTLS, "tls", false, "Use wss/https when talking to the server")
}
