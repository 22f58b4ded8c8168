// Package views renders the server's HTML pages. Components live in .templ
// files; run `templ generate` after editing them.
package views

import (
	"fmt"
	"strings"

	"github.com/Ko-stant/frontwatch/internal/protocol"
)

// StatusModel is everything the status page shows.
type StatusModel struct {
	Snapshot  protocol.GameSnapshot
	State     string
	Session   string
	Refreshes int64
	Clients   int
}

func statusLine(m StatusModel) string {
	return fmt.Sprintf("state=%s session=%s tick=%d refreshes=%d clients=%d",
		m.State, m.Session, m.Snapshot.Tick, m.Refreshes, m.Clients)
}

func tileLabel(t *protocol.TileSummary) string {
	if t == nil {
		return "-"
	}
	if t.OwnerName == "" {
		return fmt.Sprintf("(%d,%d)", t.X, t.Y)
	}
	return fmt.Sprintf("(%d,%d) %s", t.X, t.Y, t.OwnerName)
}

// allyNames lists partners whose pacts are still running.
func allyNames(s protocol.GameSnapshot, p protocol.PlayerRecord) string {
	active := s.ActiveAlliances(p)
	names := make([]string, 0, len(active))
	for _, a := range active {
		names = append(names, a.Partner)
	}
	return joinNames(names)
}

func joinNames(names []string) string {
	return strings.Join(names, ", ")
}

func flags(p protocol.PlayerRecord) string {
	var out []string
	if p.IsSelf {
		out = append(out, "you")
	}
	if p.Traitor {
		out = append(out, "traitor")
	}
	if p.Waiting {
		out = append(out, "waiting")
	}
	if p.Eliminated {
		out = append(out, "eliminated")
	}
	if p.Disconnected {
		out = append(out, "disconnected")
	}
	if p.TradeStopped {
		out = append(out, "embargo")
	}
	return strings.Join(out, " ")
}
