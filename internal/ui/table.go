package ui

import (
	"fmt"
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"github.com/mvidakovic/pricaona/internal/api"
)

// RenderRoomTable prints the room directory to stdout.
func RenderRoomTable(rooms []api.Room) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.Style().Color.Header = text.Colors{text.FgHiGreen, text.Bold}

	t.AppendHeader(table.Row{"#", "Room", "ID"})
	for i, room := range rooms {
		t.AppendRow(table.Row{i + 1, room.Name, room.ID})
	}
	if len(rooms) == 0 {
		t.AppendRow(table.Row{"", "no rooms yet", ""})
	}
	t.Render()
}

// RenderParticipantTable prints a roster snapshot to stdout.
func RenderParticipantTable(participants []api.Participant) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)
	t.Style().Color.Header = text.Colors{text.FgHiGreen, text.Bold}

	t.AppendHeader(table.Row{"#", "Participant", "ID"})
	for i, p := range participants {
		t.AppendRow(table.Row{i + 1, p.Username, p.ID})
	}
	t.Render()
}

// PrintRoomCreated confirms a newly registered room.
func PrintRoomCreated(room api.Room) {
	PrintSuccessf("%s Room %s created (id %s)", IconRoom, BoldStyle.Render(room.Name), MutedStyle.Render(room.ID))
	fmt.Printf("  join it with: %s\n", BoldStyle.Render("pricaona join "+room.ID))
}
