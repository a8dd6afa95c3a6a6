// Command import-content loads card set files and stores them in PostgreSQL,
// or writes them back out as normalized YAML when -output is given.
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

	"github.com/Tinuva88/TCGFun/internal/config"
	"github.com/Tinuva88/TCGFun/internal/importer"
	"github.com/Tinuva88/TCGFun/internal/observability"
	"github.com/Tinuva88/TCGFun/internal/storage/postgres"
)

func main() {
	configPath := flag.String("config", "configs/dev.yaml", "path to configuration file")
	format := flag.String("format", "yaml", "source format: yaml or json")
	sourceDir := flag.String("source", "", "set file directory (default: content.sets_dir)")
	outputDir := flag.String("output", "", "write normalized YAML here instead of the database")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, "import-content")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	var src importer.Source
	switch *format {
	case "yaml":
		src = importer.NewYAMLSource()
	case "json":
		src = importer.NewJSONSource()
	default:
		fmt.Fprintf(os.Stderr, "unknown format %q (supported: yaml, json)\n", *format)
		os.Exit(1)
	}
	dir := *sourceDir
	if dir == "" {
		dir = cfg.Content.SetsDir
	}

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	var sink importer.Sink
	if *outputDir != "" {
		sink = importer.DirSink{Dir: *outputDir}
	} else {
		pool, err := postgres.NewPool(ctx, cfg.Database)
		if err != nil {
			logger.Fatal("connecting to database", zap.Error(err))
		}
		defer pool.Close()
		sink = postgres.NewCatalogRepository(pool.DB())
	}

	start := time.Now()
	report, err := importer.New(src, sink, logger).Run(ctx, dir)
	if err != nil {
		logger.Fatal("import failed", zap.Error(err))
	}
	fmt.Printf("imported %d set(s), %d card(s), %d product(s) in %s\n",
		report.Sets, report.Cards, report.Products, time.Since(start).Round(time.Millisecond))
}
