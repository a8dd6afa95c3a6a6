// Command open opens a product and prints the pulls. It reads YAML content
// directly, or asks a running simulator when -remote is given.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"log"
	"os"
	"sort"
	"text/tabwriter"
	"time"

	"go.uber.org/zap"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/Tinuva88/TCGFun/internal/catalog"
	"github.com/Tinuva88/TCGFun/internal/collection"
	"github.com/Tinuva88/TCGFun/internal/config"
	"github.com/Tinuva88/TCGFun/internal/draw"
	"github.com/Tinuva88/TCGFun/internal/observability"
	"github.com/Tinuva88/TCGFun/internal/simulator"
)

func main() {
	configPath := flag.String("config", "", "optional configuration file (defaults and TCGFUN_ env otherwise)")
	productID := flag.String("product", "", "product id to open (required)")
	seed := flag.String("seed", "", "replay seed; empty draws from crypto/rand")
	setsDir := flag.String("sets", "", "set directory (default: content.sets_dir)")
	remote := flag.String("remote", "", "simulator gRPC address; empty opens locally")
	times := flag.Int("n", 1, "number of products to open")
	asJSON := flag.Bool("json", false, "print openings as JSON")
	flag.Parse()

	if *productID == "" || *times < 1 {
		fmt.Fprintln(os.Stderr, "usage: open -product <id> [-seed <s>] [-n <count>] [-sets <dir>] [-remote <addr>] [-json]")
		os.Exit(1)
	}

	cfg, err := loadConfig(*configPath)
	if err != nil {
		log.Fatalf("loading config: %v", err)
	}
	logger, err := observability.NewLogger(cfg.Logging, "open")
	if err != nil {
		log.Fatalf("creating logger: %v", err)
	}
	defer func() { _ = logger.Sync() }()

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	open, closeFn, err := opener(cfg, *setsDir, *remote, logger)
	if err != nil {
		logger.Fatal("preparing opener", zap.Error(err))
	}
	defer closeFn()

	for i := 0; i < *times; i++ {
		req := simulator.OpenRequest{ProductID: *productID, Owner: cfg.Simulator.DefaultOwner}
		if *seed != "" {
			req.Seed = *seed
			if *times > 1 {
				req.Seed = fmt.Sprintf("%s/%d", *seed, i)
			}
		}
		op, err := open(ctx, req)
		if err != nil {
			logger.Fatal("open failed", zap.String("product", *productID), zap.Error(err))
		}
		if *asJSON {
			enc := json.NewEncoder(os.Stdout)
			enc.SetIndent("", "  ")
			if err := enc.Encode(op); err != nil {
				logger.Fatal("encoding opening", zap.Error(err))
			}
			continue
		}
		printOpening(op)
	}
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.Load(path)
	}
	return config.LoadFromViper(config.NewViper())
}

type openFunc func(context.Context, simulator.OpenRequest) (simulator.Opening, error)

func opener(cfg config.Config, setsDir, remote string, logger *zap.Logger) (openFunc, func(), error) {
	if remote != "" {
		conn, err := grpc.NewClient(remote, grpc.WithTransportCredentials(insecure.NewCredentials()))
		if err != nil {
			return nil, nil, fmt.Errorf("dialing %s: %w", remote, err)
		}
		client := simulator.NewClient(conn)
		return client.Open, func() { _ = conn.Close() }, nil
	}

	if setsDir == "" {
		setsDir = cfg.Content.SetsDir
	}
	sets, err := catalog.LoadSets(setsDir)
	if err != nil {
		return nil, nil, err
	}
	reg, err := catalog.NewRegistry(sets...)
	if err != nil {
		return nil, nil, err
	}
	svc := simulator.NewService(reg,
		simulator.WithLogger(logger),
		simulator.WithEngine(draw.NewEngine(
			draw.WithLogger(logger.Named("draw")),
			draw.WithSlotAttempts(cfg.Simulator.SlotRetries),
		)),
	)
	return svc.Open, func() {}, nil
}

func printOpening(op simulator.Opening) {
	fmt.Printf("%s  %s (%s)  %d card(s)\n", op.ID, op.ProductID, op.ProductType, len(op.Cards))
	if op.Seed != "" {
		fmt.Printf("seed: %s\n", op.Seed)
	}

	tally := collection.Tally(op.Cards)
	entries := make([]collection.Entry, 0, len(tally))
	byRarity := make(map[string]int)
	for _, e := range tally {
		entries = append(entries, e)
		byRarity[e.RarityID] += e.Quantity
	}
	collection.SortEntries(entries)

	rarities := make([]string, 0, len(byRarity))
	for r := range byRarity {
		rarities = append(rarities, r)
	}
	sort.Strings(rarities)

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "RARITY\tCOUNT")
	for _, r := range rarities {
		fmt.Fprintf(w, "%s\t%d\n", r, byRarity[r])
	}
	fmt.Fprintln(w)
	fmt.Fprintln(w, "CARD\tNAME\tRARITY\tQTY")
	for _, e := range entries {
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\n", e.CardID, e.Name, e.RarityID, e.Quantity)
	}
	_ = w.Flush()

	for _, d := range op.Diagnostics {
		fmt.Printf("%s [%s] %s\n", d.Severity, d.Kind, d.Message)
	}
	fmt.Println()
}
