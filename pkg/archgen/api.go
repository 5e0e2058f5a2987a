package archgen

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math/rand"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"

	"archgen/internal/generator"
	"archgen/internal/model"
	"archgen/internal/nn"
	"archgen/internal/pool"
	"archgen/internal/shape"
	"archgen/internal/stats"
	"archgen/internal/storage"
)

const (
	defaultDBPath     = "archgen.db"
	defaultExportsDir = "exports"
	defaultPool       = pool.PresetBidirectional
)

var ErrNotFound = errors.New("architecture not found")

type Options struct {
	StoreKind  string
	DBPath     string
	ExportsDir string
}

type Client struct {
	store      storage.Store
	exportsDir string
	now        func() time.Time
}

type GenerateRequest struct {
	InitialShape []int
	Depth        int
	// Pool names a preset; PoolSpec, when non-empty, builds a custom pool
	// from operator names keyed by rank and takes precedence.
	Pool     string
	PoolSpec map[int][]string
	Seed     int64
	Count    int
	Workers  int
	// OnStep observes the steps of single-architecture requests.
	OnStep func(model.Step)
}

type ArchitectureSummary struct {
	ID         string
	Seed       int64
	Operators  []string
	FinalShape shape.Shape
	Parameters int
	Model      string
}

type GenerateSummary struct {
	BatchID       string
	Pool          string
	Architectures []ArchitectureSummary
}

type PoolInfo struct {
	Name        string
	Description string
}

type ExportRequest struct {
	ID     string
	OutDir string
}

type ExportSummary struct {
	ID        string
	Directory string
}

type ReportRequest struct {
	BatchID string
	// OutDir, when set, receives <batch id>_report.json.
	OutDir string
}

type ReportSummary struct {
	Report stats.BatchReport
	Path   string
}

func New(opts Options) (*Client, error) {
	storeKind := opts.StoreKind
	if storeKind == "" {
		storeKind = storage.DefaultStoreKind()
	}
	dbPath := opts.DBPath
	if dbPath == "" {
		dbPath = defaultDBPath
	}
	exportsDir := opts.ExportsDir
	if exportsDir == "" {
		exportsDir = defaultExportsDir
	}

	store, err := storage.NewStore(storeKind, dbPath)
	if err != nil {
		return nil, err
	}
	return &Client{store: store, exportsDir: exportsDir, now: time.Now}, nil
}

func (c *Client) Init(ctx context.Context) error {
	return c.store.Init(ctx)
}

func (c *Client) Close() error {
	return storage.CloseIfSupported(c.store)
}

func (c *Client) Pools() ([]PoolInfo, error) {
	names := pool.Presets()
	out := make([]PoolInfo, 0, len(names))
	for _, name := range names {
		p, err := pool.Build(name)
		if err != nil {
			return nil, err
		}
		out = append(out, PoolInfo{Name: name, Description: p.Describe()})
	}
	return out, nil
}

// Generate samples req.Count architectures and persists each of them
// together with the batch record that groups them.
func (c *Client) Generate(ctx context.Context, req GenerateRequest) (GenerateSummary, error) {
	if req.Count <= 0 {
		req.Count = 1
	}
	if req.Workers <= 0 {
		req.Workers = 4
	}
	initial := shape.Shape(req.InitialShape).Clone()
	if err := initial.Validate(); err != nil {
		return GenerateSummary{}, err
	}
	p, err := resolvePool(req)
	if err != nil {
		return GenerateSummary{}, err
	}

	var archs []generator.Architecture
	if req.Count == 1 {
		arch, err := generator.Generate(ctx, generator.Config{
			InitialShape: initial,
			Depth:        req.Depth,
			Pool:         p,
			Rand:         rand.New(rand.NewSource(generator.RunSeed(req.Seed, 0))),
			OnStep:       req.OnStep,
		})
		if err != nil {
			return GenerateSummary{}, err
		}
		archs = []generator.Architecture{arch}
	} else {
		archs, err = generator.GenerateBatch(ctx, generator.BatchConfig{
			InitialShape: initial,
			Depth:        req.Depth,
			Pool:         p,
			Count:        req.Count,
			Workers:      req.Workers,
			Seed:         req.Seed,
		})
		if err != nil {
			return GenerateSummary{}, err
		}
	}

	createdAt := c.now().UTC().Format(time.RFC3339)
	batch := model.Batch{
		VersionedRecord: storage.CurrentVersion(),
		ID:              uuid.NewString(),
		Pool:            p.Name(),
		Seed:            req.Seed,
		Depth:           req.Depth,
		InitialShape:    initial,
		ArchitectureIDs: make([]string, 0, len(archs)),
		CreatedAtUTC:    createdAt,
	}
	summary := GenerateSummary{BatchID: batch.ID, Pool: p.Name()}
	for i, arch := range archs {
		seq := arch.Sequential()
		record := model.Architecture{
			VersionedRecord: storage.CurrentVersion(),
			ID:              uuid.NewString(),
			BatchID:         batch.ID,
			Pool:            p.Name(),
			Seed:            generator.RunSeed(req.Seed, i),
			Depth:           req.Depth,
			InitialShape:    initial,
			FinalShape:      arch.FinalShape,
			Steps:           arch.Steps,
			Parameters:      seq.ParameterCount(),
			CreatedAtUTC:    createdAt,
		}
		if err := c.store.SaveArchitecture(ctx, record); err != nil {
			return GenerateSummary{}, fmt.Errorf("save architecture %s: %w", record.ID, err)
		}
		batch.ArchitectureIDs = append(batch.ArchitectureIDs, record.ID)
		summary.Architectures = append(summary.Architectures, ArchitectureSummary{
			ID:         record.ID,
			Seed:       record.Seed,
			Operators:  arch.Operators(),
			FinalShape: arch.FinalShape,
			Parameters: record.Parameters,
			Model:      seq.String(),
		})
	}
	if err := c.store.SaveBatch(ctx, batch); err != nil {
		return GenerateSummary{}, fmt.Errorf("save batch %s: %w", batch.ID, err)
	}
	return summary, nil
}

func (c *Client) Get(ctx context.Context, id string) (model.Architecture, error) {
	arch, ok, err := c.store.GetArchitecture(ctx, id)
	if err != nil {
		return model.Architecture{}, err
	}
	if !ok {
		return model.Architecture{}, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return arch, nil
}

func (c *Client) Batch(ctx context.Context, id string) (model.Batch, error) {
	batch, ok, err := c.store.GetBatch(ctx, id)
	if err != nil {
		return model.Batch{}, err
	}
	if !ok {
		return model.Batch{}, fmt.Errorf("batch not found: %s", id)
	}
	return batch, nil
}

func (c *Client) List(ctx context.Context) ([]string, error) {
	return c.store.ListArchitectures(ctx)
}

// Model rebuilds the layer chain of a persisted architecture from its
// recorded params.
func (c *Client) Model(ctx context.Context, id string) (*nn.Sequential, error) {
	arch, err := c.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	rebuilt, err := generator.Rebuild(arch.InitialShape, arch.Steps)
	if err != nil {
		return nil, err
	}
	return rebuilt.Sequential(), nil
}

// Export writes architecture.json and model.txt under OutDir/ID.
func (c *Client) Export(ctx context.Context, req ExportRequest) (ExportSummary, error) {
	if req.ID == "" {
		return ExportSummary{}, errors.New("export requires an architecture id")
	}
	arch, err := c.Get(ctx, req.ID)
	if err != nil {
		return ExportSummary{}, err
	}
	seq, err := c.Model(ctx, req.ID)
	if err != nil {
		return ExportSummary{}, err
	}

	outDir := req.OutDir
	if outDir == "" {
		outDir = c.exportsDir
	}
	dir := filepath.Join(outDir, arch.ID)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return ExportSummary{}, err
	}

	payload, err := json.MarshalIndent(arch, "", "  ")
	if err != nil {
		return ExportSummary{}, err
	}
	if err := os.WriteFile(filepath.Join(dir, "architecture.json"), payload, 0o644); err != nil {
		return ExportSummary{}, err
	}
	if err := os.WriteFile(filepath.Join(dir, "model.txt"), []byte(seq.String()+"\n"), 0o644); err != nil {
		return ExportSummary{}, err
	}
	return ExportSummary{ID: arch.ID, Directory: dir}, nil
}

// Report aggregates parameter counts, operator usage and final ranks over
// every architecture of a stored batch.
func (c *Client) Report(ctx context.Context, req ReportRequest) (ReportSummary, error) {
	if req.BatchID == "" {
		return ReportSummary{}, errors.New("report requires a batch id")
	}
	batch, err := c.Batch(ctx, req.BatchID)
	if err != nil {
		return ReportSummary{}, err
	}
	archs := make([]model.Architecture, 0, len(batch.ArchitectureIDs))
	for _, id := range batch.ArchitectureIDs {
		arch, err := c.Get(ctx, id)
		if err != nil {
			return ReportSummary{}, err
		}
		archs = append(archs, arch)
	}
	report, err := stats.BuildBatchReport(batch, archs)
	if err != nil {
		return ReportSummary{}, err
	}
	report.GeneratedAt = c.now().UTC().Format(time.RFC3339)

	summary := ReportSummary{Report: report}
	if req.OutDir != "" {
		path, err := stats.WriteBatchReport(req.OutDir, report)
		if err != nil {
			return ReportSummary{}, err
		}
		summary.Path = path
	}
	return summary, nil
}

func resolvePool(req GenerateRequest) (*pool.Pool, error) {
	if len(req.PoolSpec) > 0 {
		name := req.Pool
		if name == "" {
			name = "custom"
		}
		return pool.FromSpec(name, req.PoolSpec)
	}
	name := req.Pool
	if name == "" {
		name = defaultPool
	}
	return pool.Build(name)
}
