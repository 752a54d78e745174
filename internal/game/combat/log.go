package combat

import (
	"fmt"

	"github.com/cory-johannsen/tactics/internal/game/unit"
)

// Team selects the colour a log entry is rendered in.
type Team string

const (
	TeamPlayer  Team = "player"
	TeamEnemy   Team = "enemy"
	TeamNeutral Team = "neutral"
)

// TeamOf returns the team of u, or TeamNeutral for nil.
func TeamOf(u *unit.Unit) Team {
	switch {
	case u == nil:
		return TeamNeutral
	case u.Controller == unit.Player:
		return TeamPlayer
	default:
		return TeamEnemy
	}
}

// LogEntry is one structured combat-log line.
type LogEntry struct {
	Team    Team   `json:"team"`
	Message string `json:"message"`
	// Warning marks rejected content (unknown kinds, bad formulas) and failed gates.
	Warning bool `json:"warning,omitempty"`
}

// String returns the message.
func (e LogEntry) String() string { return e.Message }

func entry(u *unit.Unit, format string, args ...any) LogEntry {
	return LogEntry{Team: TeamOf(u), Message: fmt.Sprintf(format, args...)}
}

func warning(format string, args ...any) LogEntry {
	return LogEntry{Team: TeamNeutral, Message: fmt.Sprintf(format, args...), Warning: true}
}

// Messages returns the message text of every entry.
func Messages(entries []LogEntry) []string {
	out := make([]string, len(entries))
	for i, e := range entries {
		out[i] = e.Message
	}
	return out
}
