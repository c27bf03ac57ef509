package main

import (
	"github.com/mvidakovic/pricaona/cmd"
	"github.com/mvidakovic/pricaona/internal/logging"
)

func main() {
	// Initialize logging
	logging.Init()
	cmd.Execute()
}
