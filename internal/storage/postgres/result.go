package postgres

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tactics/internal/game/battle"
	"github.com/cory-johannsen/tactics/internal/game/combat"
)

// StoredResult is one recorded battle.
type StoredResult struct {
	ID          int64
	EncounterID string
	Outcome     battle.Outcome
	Ticks       int
	Turns       int
	XP          int
	Gold        int
	Items       []string
	Log         []combat.LogEntry
	CreatedAt   time.Time
}

// ResultRepository records the outcomes of auto-resolved battles.
type ResultRepository struct {
	db *pgxpool.Pool
}

// NewResultRepository creates a ResultRepository backed by the given pool.
//
// Precondition: db must be a valid, open connection pool.
func NewResultRepository(db *pgxpool.Pool) *ResultRepository {
	return &ResultRepository{db: db}
}

// Record stores res against the encounter it was fought over.
//
// Precondition: encounterID is a saved encounter.
// Postcondition: Returns the new row id, or ErrEncounterNotFound when the
// encounter is not stored.
func (r *ResultRepository) Record(ctx context.Context, encounterID string, res battle.Result) (int64, error) {
	logJSON, err := json.Marshal(res.Log)
	if err != nil {
		return 0, fmt.Errorf("encoding battle log: %w", err)
	}
	xp, gold, items := 0, 0, []string{}
	if res.Rewards != nil {
		xp, gold = res.Rewards.XP, res.Rewards.Gold
		items = append(items, res.Rewards.Items...)
	}
	var id int64
	err = r.db.QueryRow(ctx, `
		INSERT INTO battle_results (encounter_id, outcome, ticks, turns, xp, gold, items, log)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id`,
		encounterID, string(res.Outcome), res.Ticks, len(res.Turns), xp, gold, items, logJSON,
	).Scan(&id)
	if err != nil {
		if isForeignKeyError(err) {
			return 0, ErrEncounterNotFound
		}
		return 0, fmt.Errorf("recording battle result: %w", err)
	}
	return id, nil
}

// ListByEncounter returns the recorded results of one encounter, oldest first.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *ResultRepository) ListByEncounter(ctx context.Context, encounterID string) ([]StoredResult, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, encounter_id, outcome, ticks, turns, xp, gold, items, log, created_at
		FROM battle_results WHERE encounter_id = $1 ORDER BY created_at ASC, id ASC`,
		encounterID,
	)
	if err != nil {
		return nil, fmt.Errorf("listing battle results: %w", err)
	}
	defer rows.Close()

	var out []StoredResult
	for rows.Next() {
		var (
			s       StoredResult
			outcome string
			logJSON []byte
		)
		if err := rows.Scan(&s.ID, &s.EncounterID, &outcome, &s.Ticks, &s.Turns,
			&s.XP, &s.Gold, &s.Items, &logJSON, &s.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning battle result: %w", err)
		}
		s.Outcome = battle.Outcome(outcome)
		if err := json.Unmarshal(logJSON, &s.Log); err != nil {
			return nil, fmt.Errorf("decoding battle log %d: %w", s.ID, err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}
