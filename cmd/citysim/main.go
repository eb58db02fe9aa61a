// Command citysim serves a card-driven city building game over HTTP.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/google/uuid"
	"github.com/spf13/pflag"
	"go.uber.org/zap"

	"github.com/talgya/cardcity/internal/api"
	"github.com/talgya/cardcity/internal/catalog"
	"github.com/talgya/cardcity/internal/config"
	"github.com/talgya/cardcity/internal/engine"
	"github.com/talgya/cardcity/internal/logs"
	"github.com/talgya/cardcity/internal/persistence"
	"github.com/talgya/cardcity/internal/world"
)

func main() {
	var (
		cfgPath   = pflag.StringP("config", "c", "", "config file (default: search upward for "+config.DefaultRelPath+")")
		seed      = pflag.Int64("seed", 0, "world seed, overrides game.seed")
		load      = pflag.String("load", "", `resume a saved game by id, or "last"`)
		listSaves = pflag.Bool("list-saves", false, "print saved games and exit")
		validate  = pflag.Bool("validate", false, "check the citizen catalog and exit")
	)
	pflag.Parse()

	if *validate {
		os.Exit(runValidate())
	}

	loader, err := config.New(*cfgPath)
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	cfg, err := loader.Config()
	if err != nil {
		fmt.Fprintln(os.Stderr, "config:", err)
		os.Exit(1)
	}
	if pflag.CommandLine.Changed("seed") {
		cfg.Game.Seed = *seed
	}

	if err := logs.Init("citysim", cfg.Log); err != nil {
		fmt.Fprintln(os.Stderr, "logs:", err)
		os.Exit(1)
	}
	defer logs.Sync()
	logs.Info("citysim starting", zap.String("config", loader.File()))

	loader.Watch(func(c config.Config, err error) {
		if err != nil {
			logs.Warn("config reload rejected", zap.Error(err))
			return
		}
		logs.SetLevel(c.Log.Level)
		logs.Info("config reloaded", zap.String("log_level", c.Log.Level))
	})

	// ── Database ──────────────────────────────────────────────────────
	if dir := filepath.Dir(cfg.DB.Path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			logs.Fatal("create data dir", zap.Error(err))
		}
	}
	db, err := persistence.Open(cfg.DB.Path)
	if err != nil {
		logs.Fatal("failed to open database", zap.Error(err))
	}
	defer db.Close()
	logs.Info("database opened", zap.String("path", cfg.DB.Path))

	if *listSaves {
		printSaves(db)
		return
	}

	// ── Engine ────────────────────────────────────────────────────────
	eng, err := buildEngine(cfg.Game, db, *load)
	if err != nil {
		logs.Fatal("failed to prepare game", zap.Error(err))
	}
	for cat, n := range world.CategoryCounts(eng.Grid()) {
		logs.Debug("amenities", zap.Stringer("category", cat), zap.Int("count", n))
	}
	logs.Info("game ready",
		zap.Bool("started", eng.Started()),
		zap.Int64("seed", eng.Seed()),
		zap.Stringer("grid", eng.Grid()),
	)

	// ── API ───────────────────────────────────────────────────────────
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	srv := api.New(cfg.Server, eng, db)
	if err := srv.Run(ctx); err != nil {
		logs.Error("http server", zap.Error(err))
	}

	// Save on the way out so a restart can pick up with --load last.
	if final := srv.Engine(); final.Started() {
		if err := db.Save(final.State()); err != nil {
			logs.Error("final save failed", zap.Error(err))
		}
	}
	logs.Info("citysim stopped")
}

func engineConfig(g config.GameConfig) (engine.Config, error) {
	ec := engine.DefaultConfig()
	ec.Seed = g.Seed
	if g.Topology != "" {
		t, err := world.ParseTopology(g.Topology)
		if err != nil {
			return ec, err
		}
		ec.Topology = t
	}
	if g.LakeLevel != 0 {
		ec.LakeLevel = g.LakeLevel
	}
	if g.TrackLevel != 0 {
		ec.TrackLevel = g.TrackLevel
	}
	return ec, nil
}

func buildEngine(g config.GameConfig, db *persistence.DB, load string) (*engine.Engine, error) {
	ec, err := engineConfig(g)
	if err != nil {
		return nil, err
	}
	if load == "" {
		return engine.New(ec, nil), nil
	}

	var id uuid.UUID
	if load == "last" {
		id, err = db.LastSaved()
	} else {
		id, err = uuid.Parse(load)
	}
	if err != nil {
		return nil, fmt.Errorf("resolve save %q: %w", load, err)
	}
	st, err := db.Load(id)
	if err != nil {
		return nil, err
	}
	logs.Info("resuming saved game", zap.String("id", id.String()), zap.Int("day", st.Day))
	return engine.Restore(st, nil)
}

func printSaves(db *persistence.DB) {
	saves, err := db.List()
	if err != nil {
		logs.Fatal("list saves", zap.Error(err))
	}
	if len(saves) == 0 {
		fmt.Println("no saved games")
		return
	}
	for _, s := range saves {
		fmt.Printf("%s  %-24s  %3d districts  saved %s\n", s.ID, engine.Calendar(s.Day), s.Districts, s.Age)
	}
}

func runValidate() int {
	diags := catalog.Validate(catalog.Citizens())
	for _, d := range diags {
		fmt.Printf("%-20s %s\n", d.Kind, d.Message)
	}
	if len(diags) > 0 {
		return 1
	}
	fmt.Printf("%d citizens, %d actions: ok\n", len(catalog.Citizens()), len(catalog.Actions()))
	return 0
}
