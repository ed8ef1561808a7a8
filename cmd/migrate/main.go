// Package main applies the buff-state schema migrations.
package main

import (
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	_ "github.com/golang-migrate/migrate/v4/source/file"

	"github.com/cory-johannsen/selfench/internal/config"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	sourceDir := flag.String("source", "migrations", "directory holding the migration files")
	direction := flag.String("direction", "up", "action: up, down, status or force")
	steps := flag.Int("steps", 0, "number of steps (0 = all); the target version for force")
	flag.Parse()

	// Persistence may be off in the file; migrating implies it is wanted.
	if os.Getenv("SELFENCH_GAME_PERSISTENCE") == "" {
		_ = os.Setenv("SELFENCH_GAME_PERSISTENCE", "true")
	}
	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}

	m, err := migrate.New("file://"+*sourceDir, cfg.Database.DSN())
	if err != nil {
		log.Fatalf("creating migrator: %v", err)
	}
	defer m.Close()

	err = apply(m, *direction, *steps)
	if err != nil && !errors.Is(err, migrate.ErrNoChange) {
		log.Fatalf("migration failed: %v", err)
	}

	version, dirty, _ := m.Version()
	elapsed := time.Since(start)

	if errors.Is(err, migrate.ErrNoChange) {
		fmt.Fprintf(os.Stdout, "no changes (version=%d dirty=%v) [%s]\n", version, dirty, elapsed)
	} else {
		fmt.Fprintf(os.Stdout, "migrated %s to version=%d dirty=%v [%s]\n", *direction, version, dirty, elapsed)
	}
}

// migrator is the part of *migrate.Migrate apply drives.
type migrator interface {
	Up() error
	Down() error
	Steps(n int) error
	Force(version int) error
}

// apply runs the requested action. steps > 0 limits how far up or down
// goes; force marks version steps as applied and clean, which is how a
// dirty schema is recovered after fixing a failed migration by hand.
func apply(m migrator, direction string, steps int) error {
	switch direction {
	case "up":
		if steps > 0 {
			return m.Steps(steps)
		}
		return m.Up()
	case "down":
		if steps > 0 {
			return m.Steps(-steps)
		}
		return m.Down()
	case "status":
		return migrate.ErrNoChange
	case "force":
		if steps < 1 {
			return fmt.Errorf("force needs -steps set to the version to mark clean")
		}
		return m.Force(steps)
	}
	return fmt.Errorf("invalid direction %q: must be up, down, status or force", direction)
}
