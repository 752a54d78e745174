package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/cory-johannsen/tactics/internal/game/encounter"
)

// ErrEncounterNotFound is returned when an encounter lookup yields no results.
var ErrEncounterNotFound = errors.New("encounter not found")

// EncounterSummary is one row of List.
type EncounterSummary struct {
	ID        string
	Name      string
	Tileset   string
	UpdatedAt time.Time
}

// EncounterRepository stores encounters as their id-referenced JSON projection.
type EncounterRepository struct {
	db   *pgxpool.Pool
	deps encounter.Deps
}

// NewEncounterRepository creates an EncounterRepository. Loaded encounters
// resolve enemy and equipment references through deps.
//
// Precondition: db must be a valid, open connection pool.
func NewEncounterRepository(db *pgxpool.Pool, deps encounter.Deps) *EncounterRepository {
	return &EncounterRepository{db: db, deps: deps}
}

// Save inserts e or replaces the stored copy with the same id.
//
// Postcondition: the stored record equals e.Record(), including a populated rewards cache.
func (r *EncounterRepository) Save(ctx context.Context, e *encounter.Encounter) error {
	data, err := encounter.Marshal(e)
	if err != nil {
		return fmt.Errorf("encoding encounter %q: %w", e.ID, err)
	}
	_, err = r.db.Exec(ctx, `
		INSERT INTO encounters (id, name, tileset, record)
		VALUES ($1, $2, $3, $4)
		ON CONFLICT (id) DO UPDATE
		SET name = EXCLUDED.name, tileset = EXCLUDED.tileset,
		    record = EXCLUDED.record, updated_at = NOW()`,
		e.ID, e.Name, e.Tileset, data,
	)
	if err != nil {
		return fmt.Errorf("saving encounter %q: %w", e.ID, err)
	}
	return nil
}

// Load returns the encounter stored under id.
//
// Postcondition: Returns ErrEncounterNotFound when no row matches.
func (r *EncounterRepository) Load(ctx context.Context, id string) (*encounter.Encounter, error) {
	var data []byte
	err := r.db.QueryRow(ctx, `SELECT record FROM encounters WHERE id = $1`, id).Scan(&data)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrEncounterNotFound
		}
		return nil, fmt.Errorf("loading encounter %q: %w", id, err)
	}
	e, err := encounter.Unmarshal(data, r.deps)
	if err != nil {
		return nil, fmt.Errorf("decoding encounter %q: %w", id, err)
	}
	return e, nil
}

// List returns every stored encounter ordered by id.
//
// Postcondition: Returns a slice (may be empty) or a non-nil error.
func (r *EncounterRepository) List(ctx context.Context) ([]EncounterSummary, error) {
	rows, err := r.db.Query(ctx, `SELECT id, name, tileset, updated_at FROM encounters ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("listing encounters: %w", err)
	}
	defer rows.Close()

	var out []EncounterSummary
	for rows.Next() {
		var s EncounterSummary
		if err := rows.Scan(&s.ID, &s.Name, &s.Tileset, &s.UpdatedAt); err != nil {
			return nil, fmt.Errorf("scanning encounter: %w", err)
		}
		out = append(out, s)
	}
	return out, rows.Err()
}

// Delete removes the encounter stored under id and its battle results.
//
// Postcondition: Returns ErrEncounterNotFound when no row matched.
func (r *EncounterRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM encounters WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("deleting encounter %q: %w", id, err)
	}
	if tag.RowsAffected() == 0 {
		return ErrEncounterNotFound
	}
	return nil
}
