package cmd

import (
	"fmt"
	"strings"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mvidakovic/pricaona/internal/api"
	"github.com/mvidakovic/pricaona/internal/ui"
)

var createCmd = &cobra.Command{
	Use:     "create <name>",
	Aliases: []string{"c"},
	Short:   "Create a new chat room",
	Long: `Create a new chat room on the server and print its id.

Examples:
  pricaona create dnevni-boravak
  pricaona create "Kava u pet"`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return createRoom(strings.Join(args, " "))
	},
}

func createRoom(name string) error {
	cfg, err := LoadConfig()
	if err != nil {
		return err
	}

	room := api.Room{ID: uuid.NewString(), Name: name}

	sp := ui.NewSimpleSpinner("Creating room...")
	sp.Start()

	ctx, cancel := apiContext()
	defer cancel()

	if err := api.New(cfg.APIBase()).CreateRoom(ctx, room); err != nil {
		sp.Error("room not created")
		return fmt.Errorf("create room: %w", err)
	}
	sp.Stop()

	ui.PrintRoomCreated(room)
	return nil
}

func init() {
	rootCmd.AddCommand(createCmd)

	createCmd.Flags().StringVarP(&flagDomain, "domain", "d", "", "Chat server host[:port]")
	createCmd.Flags().BoolVar(&flagTLS, "tls", false, "Use wss/https when talking to the server")
}
