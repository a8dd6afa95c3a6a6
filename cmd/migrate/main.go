// Command migrate applies the embedded database migrations.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/Tinuva88/TCGFun/internal/config"
	"github.com/Tinuva88/TCGFun/internal/storage/postgres"
)

func main() {
	start := time.Now()

	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	direction := flag.String("direction", "up", "migration direction: up or down")
	steps := flag.Int("steps", 0, "number of steps (0 = all)")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	dsn := cfg.Database.DSN()

	var status postgres.MigrationStatus
	switch *direction {
	case "up":
		status, err = postgres.Migrate(dsn, *steps)
	case "down":
		if *steps > 0 {
			status, err = postgres.Migrate(dsn, -*steps)
		} else {
			err = postgres.MigrateDown(dsn)
		}
	default:
		log.Fatalf("invalid direction %q: must be 'up' or 'down'", *direction)
	}
	if err != nil {
		log.Fatalf("migration failed: %v", err)
	}

	elapsed := time.Since(start)
	switch {
	case *direction == "down" && *steps == 0:
		fmt.Fprintf(os.Stdout, "migrated down to an empty schema [%s]\n", elapsed)
	case !status.Changed:
		fmt.Fprintf(os.Stdout, "no changes (version=%d dirty=%v) [%s]\n", status.Version, status.Dirty, elapsed)
	default:
		fmt.Fprintf(os.Stdout, "migrated %s to version=%d dirty=%v [%s]\n", *direction, status.Version, status.Dirty, elapsed)
	}
}
