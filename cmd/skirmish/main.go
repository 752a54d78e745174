// Package main provides the skirmish binary, which auto-resolves one authored
// encounter against a party and prints the coloured combat log.
package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/cory-johannsen/tactics/internal/combatlog"
	"github.com/cory-johannsen/tactics/internal/config"
	"github.com/cory-johannsen/tactics/internal/game/battle"
	"github.com/cory-johannsen/tactics/internal/game/combat"
	"github.com/cory-johannsen/tactics/internal/game/content"
	"github.com/cory-johannsen/tactics/internal/game/dice"
	"github.com/cory-johannsen/tactics/internal/game/enemy"
	"github.com/cory-johannsen/tactics/internal/observability"
	"github.com/cory-johannsen/tactics/internal/scripting"
	"github.com/cory-johannsen/tactics/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file; empty = defaults and environment only")
	encounterID := flag.String("encounter", "", "id of the encounter to fight")
	partyID := flag.String("party", "heroes", "id of the party to deploy")
	seed := flag.Int64("seed", 0, "dice seed for a reproducible battle; 0 = cryptographic source")
	save := flag.Bool("save", false, "store the encounter and the battle result in PostgreSQL")
	list := flag.Bool("list", false, "list the loaded encounters and parties, then exit")
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

	var src dice.Source = dice.NewCryptoSource()
	if *seed != 0 {
		src = dice.NewSeededSource(*seed)
	}
	roller := dice.NewLoggedRoller(src, logger)

	opts := content.Options{
		Loot:           enemy.NewLootRoller(roller.Source()),
		MaxRewardItems: cfg.Rewards.MaxItems,
		Logger:         logger,
	}
	lib, err := content.Load(cfg.Content.Dir, opts)
	if err != nil {
		logger.Fatal("loading content", zap.String("dir", cfg.Content.Dir), zap.Error(err))
	}

	if *list {
		for _, e := range lib.Encounters.All() {
			fmt.Fprintf(os.Stdout, "encounter %-20s %s\n", e.ID, e.Name)
		}
		for _, p := range lib.Parties {
			fmt.Fprintf(os.Stdout, "party     %-20s %s (%d members)\n", p.ID, p.Name, len(p.Members))
		}
		return
	}

	if *encounterID == "" {
		log.Fatalf("-encounter is required (use -list to see the loaded encounters)")
	}
	enc, ok := lib.Encounters.Get(*encounterID)
	if !ok {
		logger.Fatal("unknown encounter", zap.String("encounter", *encounterID))
	}
	party, ok := lib.Party(*partyID)
	if !ok {
		logger.Fatal("unknown party", zap.String("party", *partyID))
	}
	units, err := lib.Deploy(party)
	if err != nil {
		logger.Fatal("deploying party", zap.String("party", *partyID), zap.Error(err))
	}
	battleLog := observability.ForBattle(logger, enc.ID, party.ID, *seed)

	eval := scripting.NewEvaluator(cfg.Scripting.InstructionLimit, roller, logger)
	defer eval.Close()

	aiReg, err := lib.AIRegistry(eval)
	if err != nil {
		logger.Fatal("building ai registry", zap.Error(err))
	}

	rules := cfg.Combat.HitRules()
	exec := combat.NewExecutor(rules, roller, eval, logger)
	b, err := battle.New(enc, units, battle.Deps{
		Executor: exec,
		Attacker: combat.NewAttacker(rules, roller, combat.NewReactionSystem(exec), logger),
		AI:       aiReg,
		Logger:   battleLog,
	}, cfg.Combat.ActionThreshold)
	if err != nil {
		logger.Fatal("starting battle", zap.String("encounter", enc.ID), zap.Error(err))
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	res, err := b.Run(ctx, cfg.Combat.MaxTicks)
	if err != nil {
		battleLog.Warn("battle interrupted", zap.Error(err))
	}

	printer := combatlog.NewPrinter(os.Stdout)
	fmt.Fprint(os.Stdout, printer.Turns(res.Turns))
	fmt.Fprint(os.Stdout, printer.Summary(res))

	if *save {
		if err := persist(ctx, cfg, logger, lib, enc.ID, res); err != nil {
			logger.Fatal("saving battle", zap.Error(err))
		}
	}

	battleLog.Info("skirmish finished",
		zap.String("outcome", string(res.Outcome)),
		zap.Int("ticks", res.Ticks),
		zap.Int("turns", len(res.Turns)),
		zap.Duration("elapsed", time.Since(start)),
	)
}

// persist stores the encounter projection and then the battle result.
func persist(ctx context.Context, cfg config.Config, logger *zap.Logger, lib *content.Library, encounterID string, res battle.Result) error {
	pool, err := postgres.NewPool(ctx, cfg.Database, logger)
	if err != nil {
		return fmt.Errorf("connecting to database: %w", err)
	}
	defer pool.Close()

	enc, _ := lib.Encounters.Get(encounterID)
	encRepo := postgres.NewEncounterRepository(pool.DB(), lib.EncounterDeps(content.Options{Logger: logger}))
	if err := encRepo.Save(ctx, enc); err != nil {
		return err
	}
	id, err := postgres.NewResultRepository(pool.DB()).Record(ctx, encounterID, res)
	if err != nil {
		return err
	}
	logger.Info("battle saved", zap.String("encounter", encounterID), zap.Int64("result_id", id))
	return nil
}
