// Package main runs the self-enchantment console. It wires configuration,
// logging, content, Lua miscast scripts and optional persistence around a
// single caster.
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/cory-johannsen/selfench/internal/config"
	"github.com/cory-johannsen/selfench/internal/console"
	"github.com/cory-johannsen/selfench/internal/game/command"
	"github.com/cory-johannsen/selfench/internal/game/dice"
	"github.com/cory-johannsen/selfench/internal/game/form"
	"github.com/cory-johannsen/selfench/internal/game/message"
	"github.com/cory-johannsen/selfench/internal/game/permabuff"
	"github.com/cory-johannsen/selfench/internal/game/player"
	"github.com/cory-johannsen/selfench/internal/game/selfench"
	"github.com/cory-johannsen/selfench/internal/game/spell"
	"github.com/cory-johannsen/selfench/internal/observability"
	"github.com/cory-johannsen/selfench/internal/scripting"
	"github.com/cory-johannsen/selfench/internal/server"
	"github.com/cory-johannsen/selfench/internal/storage/postgres"
)

// baseStats are the caster's untransformed attributes.
var baseStats = form.Stats{Str: 10, Int: 15, Dex: 12}

// healthInterval is how often the database is pinged while persistence is on.
const healthInterval = 30 * time.Second

// playerNamespace scopes the name-derived player IDs so a caster keeps the
// same ID across runs.
var playerNamespace = uuid.MustParse("5b1d7a8e-3c0f-4f4e-9a52-6f0a2d9c4e11")

// content is the static game data.
type content struct {
	book    *spell.Book
	catalog *permabuff.Catalog
	forms   *form.Rules
}

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	logger, err := observability.NewLogger(cfg.Logging)
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	if err := run(context.Background(), cfg, logger, os.Stdin, os.Stdout, start); err != nil {
		logger.Fatal("selfench exited with error", zap.Error(err))
	}
}

func run(ctx context.Context, cfg config.Config, logger *zap.Logger, stdin io.Reader, stdout io.Writer, start time.Time) error {
	data, err := loadContent(cfg.Content)
	if err != nil {
		return err
	}
	logger.Info("content loaded",
		zap.Int("spells", data.book.Len()),
		zap.String("spell_dir", cfg.Content.SpellDir),
		zap.String("permabuff_dir", cfg.Content.PermabuffDir),
		zap.String("form_dir", cfg.Content.FormDir),
	)

	dropDice, err := dice.Parse(cfg.Game.DropDice)
	if err != nil {
		return fmt.Errorf("parsing drop dice: %w", err)
	}

	src := dice.NewCryptoSource()
	if cfg.Game.Seed != 0 {
		src = dice.NewSeededSource(cfg.Game.Seed)
	}
	roller := dice.NewLoggedRoller(src, logger.Named("dice"))

	var sink message.Sink = console.NewWriterSink(stdout)
	if cfg.Logging.Level == "debug" {
		sink = message.Multi{sink, message.NewLogSink(logger.Named("transcript"))}
	}

	p := player.New(cfg.Game.PlayerName, cfg.Game.MaxHP, baseStats, sink)
	p.ID = uuid.NewSHA1(playerNamespace, []byte(p.Name))

	scripts := scripting.NewManager(roller, logger.Named("lua"))
	defer scripts.Close()
	if err := loadScripts(scripts, cfg.Content.ScriptDir, cfg.Game.LuaInstructionLimit, logger); err != nil {
		return err
	}
	scripts.BindPlayer(p, sink)

	in := bufio.NewScanner(stdin)
	caster := selfench.NewCaster(selfench.Deps{
		Player:   p,
		Book:     data.book,
		Checker:  spell.NewRollChecker(data.book, roller),
		Rand:     roller,
		Forms:    data.forms,
		Catalog:  data.catalog,
		Sink:     sink,
		Prompter: console.NewLinePrompter(in, stdout, data.book),
		Logger:   logger.Named("selfench"),
	})
	session := selfench.NewSession(caster, scripting.NewMiscastApplier(scripts, logger.Named("miscast")))

	lifecycle := server.NewLifecycle(logger)
	conCfg := console.Config{
		Session:  session,
		Book:     data.book,
		Registry: command.DefaultRegistry(),
		DropDice: dropDice,
		Logger:   logger.Named("console"),
	}

	if cfg.Game.Persistence {
		dbStart := time.Now()
		pool, err := postgres.NewPool(ctx, cfg.Database, logger.Named("postgres"))
		if err != nil {
			return fmt.Errorf("connecting to database: %w", err)
		}
		logger.Info("database connected",
			zap.String("host", cfg.Database.Host),
			zap.Int("port", cfg.Database.Port),
			zap.String("database", cfg.Database.Name),
			zap.Duration("elapsed", time.Since(dbStart)),
		)
		if err := pool.CheckSchema(ctx); err != nil {
			pool.Close()
			return fmt.Errorf("%w; run cmd/migrate first", err)
		}
		repo := postgres.NewBuffStateRepository(pool.DB())
		if err := restorePlayer(ctx, repo, p); err != nil {
			pool.Close()
			return err
		}
		conCfg.Store = repo

		lifecycle.Add("postgres", &server.FuncService{
			StartFn: func(ctx context.Context) error {
				return pool.Watch(ctx, healthInterval, logger.Named("postgres"))
			},
			StopFn: pool.Close,
		})
	}

	con := console.New(conCfg, in, stdout)
	lifecycle.Add("console", &server.FuncService{
		StartFn: con.Run,
		StopFn: func() {
			if conCfg.Store == nil {
				return
			}
			saveCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := conCfg.Store.Save(saveCtx, p.Snapshot()); err != nil {
				logger.Error("autosave failed", zap.Error(err))
				return
			}
			logger.Info("autosaved", zap.Stringer("player", p.ID))
		},
	})

	logger.Info("selfench initialized",
		zap.String("player", p.Name),
		zap.Bool("persistence", cfg.Game.Persistence),
		zap.Duration("startup", time.Since(start)),
	)
	return lifecycle.Run(ctx)
}

// loadContent reads each content directory, falling back to the built-in
// definitions when a directory is not configured.
func loadContent(cfg config.ContentConfig) (content, error) {
	data := content{
		book:    spell.DefaultBook(),
		catalog: permabuff.DefaultCatalog(),
		forms:   form.DefaultRules(),
	}
	var err error
	if cfg.SpellDir != "" {
		if data.book, err = spell.LoadDirectory(cfg.SpellDir); err != nil {
			return content{}, fmt.Errorf("loading spells: %w", err)
		}
	}
	if cfg.PermabuffDir != "" {
		if data.catalog, err = permabuff.LoadDirectory(cfg.PermabuffDir); err != nil {
			return content{}, fmt.Errorf("loading permabuffs: %w", err)
		}
	}
	if cfg.FormDir != "" {
		if data.forms, err = form.LoadDirectory(cfg.FormDir); err != nil {
			return content{}, fmt.Errorf("loading forms: %w", err)
		}
	}
	if err := data.catalog.CheckSpells(data.book); err != nil {
		return content{}, err
	}
	return data, nil
}

// loadScripts loads dir as the global scope and every subdirectory named
// after a spell as that spell's scope. Other subdirectories are skipped.
func loadScripts(mgr *scripting.Manager, dir string, limit int, logger *zap.Logger) error {
	if dir == "" {
		return nil
	}
	if err := mgr.LoadGlobal(dir, limit); err != nil {
		return err
	}
	entries, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("reading script dir %q: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		id, err := spell.ParseID(e.Name())
		if err != nil {
			logger.Warn("skipping script dir that names no spell", zap.String("dir", e.Name()))
			continue
		}
		if err := mgr.LoadScope(id.String(), filepath.Join(dir, e.Name()), limit); err != nil {
			return err
		}
		logger.Debug("spell scripts loaded", zap.Stringer("spell", id))
	}
	return nil
}

// buffStore is the slice of the repository restorePlayer needs.
type buffStore interface {
	Load(ctx context.Context, id uuid.UUID) (player.Snapshot, error)
}

// restorePlayer loads p's saved state if there is any.
func restorePlayer(ctx context.Context, store buffStore, p *player.Player) error {
	snap, err := store.Load(ctx, p.ID)
	if errors.Is(err, postgres.ErrSnapshotNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("loading saved player: %w", err)
	}
	if err := p.Restore(snap); err != nil {
		return fmt.Errorf("restoring saved player: %w", err)
	}
	return nil
}
