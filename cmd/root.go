package cmd

import (
	"os"
	"os/signal"

	"github.com/spf13/cobra"

	"github.com/mvidakovic/pricaona/internal/ui"
	"github.com/mvidakovic/pricaona/internal/version"
)

// rootCmd represents the base command when called without any subcommands
var rootCmd = &cobra.Command{
	Use:     "pricaona",
	Short:   "Terminal chat rooms with opportunistic one-to-one video calls",
	Long:    `Pricaona is a command-line client for relay-based chat rooms. Any number of participants can exchange text messages in a room, and two of them can escalate to a direct WebRTC audio/video call while the chat keeps flowing. Media travels peer to peer; only text and call signaling pass through the relay.`,
	Version: version.Version,
}

// Execute adds all child commands to the root command and sets flags appropriately.
// This is called by main.main(). It only needs to happen once to the rootCmd.
func Execute() {
	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt)
	go func() {
		<-sig
		os.Exit(0)
	}()

	rootCmd.SilenceErrors = true
	rootCmd.SilenceUsage = true

	if err := rootCmd.Execute(); err != nil {
		ui.PrintError(err.Error())
		os.Exit(1)
	}
}
