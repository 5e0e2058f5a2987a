package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/mattn/go-isatty"

	"archgen/internal/model"
	"archgen/internal/shape"
	"archgen/internal/storage"
	archapi "archgen/pkg/archgen"
)

const defaultDBPath = "archgen.db"

func main() {
	if err := run(context.Background(), os.Args[1:]); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string) error {
	if len(args) == 0 {
		return usageError("missing command")
	}

	switch args[0] {
	case "init":
		return runInit(ctx, args[1:])
	case "pools":
		return runPools(ctx, args[1:])
	case "generate":
		return runGenerate(ctx, args[1:])
	case "show":
		return runShow(ctx, args[1:])
	case "list":
		return runList(ctx, args[1:])
	case "export":
		return runExport(ctx, args[1:])
	case "report":
		return runReport(ctx, args[1:])
	default:
		return usageError(fmt.Sprintf("unknown command: %s", args[0]))
	}
}

func openClient(ctx context.Context, storeKind, dbPath string) (*archapi.Client, error) {
	client, err := archapi.New(archapi.Options{StoreKind: storeKind, DBPath: dbPath})
	if err != nil {
		return nil, err
	}
	if err := client.Init(ctx); err != nil {
		_ = client.Close()
		return nil, err
	}
	return client, nil
}

func runInit(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("init", flag.ContinueOnError)
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	fmt.Printf("initialized store=%s\n", *storeKind)
	return nil
}

func runPools(_ context.Context, args []string) error {
	fs := flag.NewFlagSet("pools", flag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}

	client, err := archapi.New(archapi.Options{StoreKind: "memory"})
	if err != nil {
		return err
	}
	pools, err := client.Pools()
	if err != nil {
		return err
	}
	for _, p := range pools {
		fmt.Printf("%s\n", p.Name)
		for _, line := range strings.Split(p.Description, "\n") {
			fmt.Printf("  %s\n", line)
		}
	}
	return nil
}

func runGenerate(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("generate", flag.ContinueOnError)
	configPath := fs.String("config", "", "optional generate config JSON path")
	inputShape := fs.String("input-shape", "", "input tensor shape including batch dimension, e.g. 1,3,32,32")
	depth := fs.Int("depth", 100, "number of operators")
	poolName := fs.String("pool", "bidirectional", "operator pool preset: bidirectional|dense|flatten")
	seed := fs.Int64("seed", 0, "rng seed (0 picks a time-based seed)")
	count := fs.Int("count", 1, "number of architectures to generate")
	workers := fs.Int("workers", 4, "worker count for batch generation")
	verbose := fs.Bool("verbose", false, "print every generation step")
	jsonOut := fs.Bool("json", false, "emit the generation summary as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}

	set := map[string]bool{}
	fs.Visit(func(f *flag.Flag) { set[f.Name] = true })

	req := archapi.GenerateRequest{
		Depth:   *depth,
		Pool:    *poolName,
		Seed:    *seed,
		Count:   *count,
		Workers: *workers,
	}
	if *configPath != "" {
		cfg, present, err := loadGenerateRequestFromConfig(*configPath)
		if err != nil {
			return fmt.Errorf("load config %s: %w", *configPath, err)
		}
		req = mergeGenerateRequest(cfg, present, req, set)
	}

	shapeFields := fs.Args()
	if *inputShape != "" {
		shapeFields = append([]string{*inputShape}, shapeFields...)
	}
	if len(shapeFields) > 0 {
		parsed, err := shape.Parse(shapeFields)
		if err != nil {
			return err
		}
		req.InitialShape = parsed
	}
	if len(req.InitialShape) == 0 {
		return errors.New("generate requires --input-shape")
	}
	if req.Depth < 0 {
		return errors.New("depth must be >= 0")
	}
	if req.Seed == 0 {
		req.Seed = time.Now().UnixNano()
	}

	if showProgress(*verbose, *jsonOut, req.Count, isatty.IsTerminal(os.Stderr.Fd())) {
		total := req.Depth
		req.OnStep = func(s model.Step) {
			fmt.Fprintf(os.Stderr, "step %d/%d %s %s -> %s\n", s.Index+1, total, s.Operator, s.Input, s.Output)
		}
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Generate(ctx, req)
	if err != nil {
		return err
	}

	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(summary)
	}

	fmt.Printf("input shape %s\n", shape.Shape(req.InitialShape))
	fmt.Printf("batch=%s pool=%s count=%d\n", summary.BatchID, summary.Pool, len(summary.Architectures))
	for _, item := range summary.Architectures {
		fmt.Printf("architecture=%s seed=%d final_shape=%s parameters=%s\n",
			item.ID, item.Seed, item.FinalShape, humanize.Comma(int64(item.Parameters)))
		fmt.Println(item.Model)
	}
	return nil
}

// showProgress decides whether step lines go to stderr: always with
// --verbose, otherwise only for a single plain-text run on a terminal stderr.
func showProgress(verbose, jsonOut bool, count int, stderrIsTerminal bool) bool {
	if verbose {
		return true
	}
	return !jsonOut && count == 1 && stderrIsTerminal
}

func runShow(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("show", flag.ContinueOnError)
	id := fs.String("id", "", "architecture id")
	jsonOut := fs.Bool("json", false, "emit the stored architecture record as JSON")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("show requires --id")
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	arch, err := client.Get(ctx, *id)
	if err != nil {
		return err
	}
	if *jsonOut {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(arch)
	}

	seq, err := client.Model(ctx, *id)
	if err != nil {
		return err
	}
	fmt.Printf("architecture=%s pool=%s seed=%d depth=%d\n", arch.ID, arch.Pool, arch.Seed, arch.Depth)
	fmt.Printf("shape %s -> %s parameters=%s\n", arch.InitialShape, arch.FinalShape, humanize.Comma(int64(arch.Parameters)))
	fmt.Println(seq.String())
	return nil
}

func runList(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("list", flag.ContinueOnError)
	limit := fs.Int("limit", 20, "max architectures to list")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *limit <= 0 {
		return errors.New("limit must be > 0")
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	ids, err := client.List(ctx)
	if err != nil {
		return err
	}
	if len(ids) > *limit {
		ids = ids[:*limit]
	}
	for _, id := range ids {
		arch, err := client.Get(ctx, id)
		if err != nil {
			return err
		}
		fmt.Printf("%s pool=%s depth=%d final_shape=%s parameters=%s created=%s\n",
			arch.ID, arch.Pool, arch.Depth, arch.FinalShape, humanize.Comma(int64(arch.Parameters)), arch.CreatedAtUTC)
	}
	return nil
}

func runExport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("export", flag.ContinueOnError)
	id := fs.String("id", "", "architecture id")
	outDir := fs.String("out", "exports", "export output directory")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *id == "" {
		return errors.New("export requires --id")
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	exported, err := client.Export(ctx, archapi.ExportRequest{ID: *id, OutDir: *outDir})
	if err != nil {
		return err
	}
	fmt.Printf("exported architecture=%s dir=%s\n", exported.ID, exported.Directory)
	return nil
}

func runReport(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("report", flag.ContinueOnError)
	batchID := fs.String("batch", "", "batch id")
	outDir := fs.String("out", "", "optional directory for the JSON report")
	storeKind := fs.String("store", storage.DefaultStoreKind(), "store backend: memory|sqlite")
	dbPath := fs.String("db-path", defaultDBPath, "sqlite database path")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *batchID == "" {
		return errors.New("report requires --batch")
	}

	client, err := openClient(ctx, *storeKind, *dbPath)
	if err != nil {
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	summary, err := client.Report(ctx, archapi.ReportRequest{BatchID: *batchID, OutDir: *outDir})
	if err != nil {
		return err
	}
	report := summary.Report
	fmt.Printf("batch=%s pool=%s depth=%d total=%d\n", report.BatchID, report.Pool, report.Depth, report.Total)
	fmt.Printf("parameters avg=%s std=%.1f min=%s max=%s\n",
		humanize.Commaf(report.Parameters.Avg), report.Parameters.Std,
		humanize.Comma(int64(report.Parameters.Min)), humanize.Comma(int64(report.Parameters.Max)))
	for _, item := range report.Operators {
		fmt.Printf("  %-10s %d\n", item.Operator, item.Count)
	}
	for _, item := range report.FinalRanks {
		fmt.Printf("  final rank %d: %d\n", item.Rank, item.Count)
	}
	if summary.Path != "" {
		fmt.Printf("report=%s\n", summary.Path)
	}
	return nil
}

func usageError(msg string) error {
	return fmt.Errorf("%s\nusage: archgenctl <init|pools|generate|show|list|export|report> [flags]", msg)
}
