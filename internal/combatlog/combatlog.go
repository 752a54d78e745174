// Package combatlog renders battle logs for the terminal, coloured by team.
package combatlog

import (
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/cory-johannsen/tactics/internal/game/battle"
	"github.com/cory-johannsen/tactics/internal/game/combat"
)

// Printer styles log entries for one output stream.
type Printer struct {
	player  lipgloss.Style
	enemy   lipgloss.Style
	neutral lipgloss.Style
	warning lipgloss.Style
	header  lipgloss.Style
	victory lipgloss.Style
	defeat  lipgloss.Style
}

// NewPrinter returns a Printer whose colour profile is detected from out.
// Non-terminal writers receive plain text.
//
// Precondition: out is non-nil.
func NewPrinter(out io.Writer) *Printer {
	r := lipgloss.NewRenderer(out)
	return &Printer{
		player:  r.NewStyle().Foreground(lipgloss.Color("39")),
		enemy:   r.NewStyle().Foreground(lipgloss.Color("203")),
		neutral: r.NewStyle().Foreground(lipgloss.Color("250")),
		warning: r.NewStyle().Foreground(lipgloss.Color("214")).Italic(true),
		header:  r.NewStyle().Foreground(lipgloss.Color("243")).Bold(true),
		victory: r.NewStyle().Foreground(lipgloss.Color("34")).Bold(true),
		defeat:  r.NewStyle().Foreground(lipgloss.Color("196")).Bold(true),
	}
}

func (p *Printer) style(e combat.LogEntry) lipgloss.Style {
	if e.Warning {
		return p.warning
	}
	switch e.Team {
	case combat.TeamPlayer:
		return p.player
	case combat.TeamEnemy:
		return p.enemy
	default:
		return p.neutral
	}
}

// Entry renders one log line. Warnings carry a "! " prefix.
func (p *Printer) Entry(e combat.LogEntry) string {
	msg := e.Message
	if e.Warning {
		msg = "! " + msg
	}
	return p.style(e).Render(msg)
}

// Render renders entries one per line.
//
// Postcondition: the result has exactly len(entries) lines, each newline-terminated.
func (p *Printer) Render(entries []combat.LogEntry) string {
	var b strings.Builder
	for _, e := range entries {
		b.WriteString(p.Entry(e))
		b.WriteByte('\n')
	}
	return b.String()
}

// Turns renders every turn of a battle under a "tick N" header that is
// printed whenever the tick changes.
func (p *Printer) Turns(turns []battle.Turn) string {
	var b strings.Builder
	tick := -1
	for _, t := range turns {
		if t.Tick != tick {
			tick = t.Tick
			b.WriteString(p.header.Render(fmt.Sprintf("-- tick %d --", tick)))
			b.WriteByte('\n')
		}
		b.WriteString(p.Render(t.Log))
	}
	return b.String()
}

// Summary renders the outcome line and, on victory, the rewards.
func (p *Printer) Summary(res battle.Result) string {
	line := fmt.Sprintf("%s after %d ticks (%d turns)", outcomeTitle(res.Outcome), res.Ticks, len(res.Turns))
	switch res.Outcome {
	case battle.OutcomeVictory:
		line = p.victory.Render(line)
	case battle.OutcomeDefeat:
		line = p.defeat.Render(line)
	default:
		line = p.header.Render(line)
	}
	if res.Rewards == nil {
		return line + "\n"
	}
	items := "none"
	if len(res.Rewards.Items) > 0 {
		items = strings.Join(res.Rewards.Items, ", ")
	}
	return fmt.Sprintf("%s\nRewards: %d XP, %d gold, items: %s\n", line, res.Rewards.XP, res.Rewards.Gold, items)
}

func outcomeTitle(o battle.Outcome) string {
	switch o {
	case battle.OutcomeVictory:
		return "Victory"
	case battle.OutcomeDefeat:
		return "Defeat"
	default:
		return "Timeout"
	}
}
