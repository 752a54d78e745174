// Package main applies or rolls back the encounter and battle-result schema.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"
	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/config"
	"github.com/cory-johannsen/tactics/internal/observability"
)

// migrator is the part of *migrate.Migrate a plan drives.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Version() (uint, bool, error)
}

// plan is a validated migration request. A zero steps value means every
// pending migration in the chosen direction.
type plan struct {
	down  bool
	steps int
}

func (p plan) String() string {
	dir := "up"
	if p.down {
		dir = "down"
	}
	if p.steps == 0 {
		return dir + " (all)"
	}
	return fmt.Sprintf("%s %d", dir, p.steps)
}

// parsePlan validates the -direction and -steps flags.
//
// Postcondition: Returns a plan or a non-nil error naming the bad flag.
func parsePlan(direction string, steps int) (plan, error) {
	if steps < 0 {
		return plan{}, fmt.Errorf("invalid steps %d: must not be negative", steps)
	}
	switch direction {
	case "up":
		return plan{steps: steps}, nil
	case "down":
		return plan{down: true, steps: steps}, nil
	default:
		return plan{}, fmt.Errorf("invalid direction %q: must be 'up' or 'down'", direction)
	}
}

// apply runs p against m. changed is false when the schema was already where
// p would take it.
func (p plan) apply(m migrator) (changed bool, err error) {
	switch {
	case p.steps > 0 && p.down:
		err = m.Steps(-p.steps)
	case p.steps > 0:
		err = m.Steps(p.steps)
	case p.down:
		err = m.Down()
	default:
		err = m.Up()
	}
	if errors.Is(err, migrate.ErrNoChange) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("migrating %s: %w", p, err)
	}
	return true, nil
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	migrationsDir := flag.String("migrations", "migrations", "directory holding the numbered migration files")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	p, err := parsePlan(*direction, *steps)
	if err != nil {
		logger.Fatal("parsing flags", zap.Error(err))
	}

	m, err := migrate.New("file://"+*migrationsDir, cfg.Database.DSN())
	if err != nil {
		logger.Fatal("creating migrator", zap.String("migrations", *migrationsDir), zap.Error(err))
	}
	defer m.Close()

	changed, err := p.apply(m)
	if err != nil {
		logger.Fatal("migration failed", zap.Error(err))
	}

	version, dirty, verr := m.Version()
	if verr != nil && !errors.Is(verr, migrate.ErrNilVersion) {
		logger.Warn("reading schema version", zap.Error(verr))
	}
	logger.Info("schema migrated",
		zap.Stringer("plan", p),
		zap.Bool("changed", changed),
		zap.Uint("version", version),
		zap.Bool("dirty", dirty),
		zap.Duration("elapsed", time.Since(start)),
	)
}
