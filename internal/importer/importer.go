// Package importer loads card sets from content files and stores them in a
// sink such as PostgreSQL or a normalized YAML directory.
package importer

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/Tinuva88/TCGFun/internal/catalog"
	"github.com/Tinuva88/TCGFun/internal/guarantee"
)

// Sink stores one set, replacing any previous version of it.
type Sink interface {
	SaveSet(ctx context.Context, s catalog.Set) error
}

// Report summarises an import run.
type Report struct {
	Sets     int
	Cards    int
	Products int
	// UnresolvedToppers lists box topper sources not found among the imported sets.
	UnresolvedToppers []string
}

// Importer orchestrates content import from a Source to a Sink.
type Importer struct {
	source Source
	sink   Sink
	logger *zap.Logger
}

// New constructs an Importer.
//
// Precondition: source, sink and logger must be non-nil.
// Postcondition: returns a non-nil Importer.
func New(source Source, sink Sink, logger *zap.Logger) *Importer {
	return &Importer{source: source, sink: sink, logger: logger}
}

// Run loads every set from sourceDir, checks that set and product ids are
// unique across sets, and saves each set to the sink.
//
// Precondition: sourceDir must satisfy the source's layout requirements.
// Postcondition: every set is stored, or an error is returned. Sets saved
// before a failing one stay stored.
func (imp *Importer) Run(ctx context.Context, sourceDir string) (Report, error) {
	overall := time.Now()

	sets, err := imp.source.Load(sourceDir)
	if err != nil {
		return Report{}, fmt.Errorf("loading source: %w", err)
	}
	reg, err := catalog.NewRegistry(sets...)
	if err != nil {
		return Report{}, fmt.Errorf("checking sets: %w", err)
	}
	imp.logger.Info("sets loaded", zap.Int("sets", len(sets)), zap.Duration("elapsed", time.Since(overall)))

	var report Report
	for _, s := range reg.Sets() {
		report.UnresolvedToppers = append(report.UnresolvedToppers, unresolvedToppers(s, reg)...)
	}
	for _, id := range report.UnresolvedToppers {
		imp.logger.Warn("box topper source not in import", zap.String("product", id))
	}

	for _, s := range reg.Sets() {
		if err := ctx.Err(); err != nil {
			return report, err
		}
		t0 := time.Now()
		if err := imp.sink.SaveSet(ctx, s); err != nil {
			return report, fmt.Errorf("saving set %q: %w", s.ID, err)
		}
		report.Sets++
		report.Cards += len(s.Cards)
		report.Products += len(s.Products)
		imp.logger.Info("set imported",
			zap.String("set", s.ID),
			zap.Int("cards", len(s.Cards)),
			zap.Int("products", len(s.Products)),
			zap.Duration("elapsed", time.Since(t0)),
		)
	}

	imp.logger.Info("import complete",
		zap.Int("sets", report.Sets),
		zap.Int("cards", report.Cards),
		zap.Duration("total", time.Since(overall)),
	)
	return report, nil
}

func unresolvedToppers(s catalog.Set, reg *catalog.Registry) []string {
	var out []string
	for _, p := range s.Products {
		cfg, ok := p.Guarantees()
		if !ok {
			continue
		}
		for _, r := range cfg.Rules {
			bt, ok := r.Kind.(guarantee.BoxTopper)
			if !ok || bt.SourcePackProductID == "" {
				continue
			}
			if _, err := reg.Product(bt.SourcePackProductID); err != nil {
				out = append(out, bt.SourcePackProductID)
			}
		}
	}
	return out
}

// DirSink writes each set as normalized YAML to <Dir>/<set id>.yaml.
type DirSink struct {
	Dir string
}

// SaveSet implements Sink. Output is re-parsed before writing so that only
// loadable files are produced.
func (d DirSink) SaveSet(_ context.Context, s catalog.Set) error {
	if err := os.MkdirAll(d.Dir, 0755); err != nil {
		return fmt.Errorf("creating output directory %s: %w", d.Dir, err)
	}
	data, err := yaml.Marshal(s)
	if err != nil {
		return fmt.Errorf("serialising set %q: %w", s.ID, err)
	}
	if _, err := catalog.LoadSetFromBytes(data); err != nil {
		return fmt.Errorf("set %q failed validation: %w", s.ID, err)
	}
	out := filepath.Join(d.Dir, FileName(s.ID)+".yaml")
	if err := os.WriteFile(out, data, 0644); err != nil {
		return fmt.Errorf("writing set %q to %s: %w", s.ID, out, err)
	}
	return nil
}
