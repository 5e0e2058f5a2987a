package stats

import (
	"encoding/json"
	"math"
	"os"
	"path/filepath"
	"testing"

	"archgen/internal/model"
	"archgen/internal/shape"
)

func reportFixture() (model.Batch, []model.Architecture) {
	batch := model.Batch{ID: "batch-1", Pool: "bidirectional", Depth: 2}
	archs := []model.Architecture{
		{
			ID:         "a",
			BatchID:    "batch-1",
			FinalShape: shape.Shape{1, 8},
			Parameters: 100,
			Steps:      []model.Step{{Operator: "dense"}, {Operator: "relu"}},
		},
		{
			ID:         "b",
			BatchID:    "batch-1",
			FinalShape: shape.Shape{1, 2, 2, 2},
			Parameters: 300,
			Steps:      []model.Step{{Operator: "dense"}, {Operator: "unflatten"}},
		},
	}
	return batch, archs
}

func TestBuildBatchReport(t *testing.T) {
	batch, archs := reportFixture()
	report, err := BuildBatchReport(batch, archs)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Total != 2 || report.Pool != "bidirectional" || report.Depth != 2 {
		t.Fatalf("unexpected report header: %+v", report)
	}
	if report.Parameters.Avg != 200 || report.Parameters.Min != 100 || report.Parameters.Max != 300 {
		t.Fatalf("unexpected parameter stats: %+v", report.Parameters)
	}
	if math.Abs(report.Parameters.Std-100) > 1e-9 {
		t.Fatalf("unexpected parameter std: %f", report.Parameters.Std)
	}
	if len(report.Operators) != 3 || report.Operators[0] != (OperatorCount{Operator: "dense", Count: 2}) {
		t.Fatalf("unexpected operator counts: %+v", report.Operators)
	}
	if report.Operators[1].Operator != "relu" || report.Operators[2].Operator != "unflatten" {
		t.Fatalf("expected ties ordered by name: %+v", report.Operators)
	}
	want := []RankCount{{Rank: 2, Count: 1}, {Rank: 4, Count: 1}}
	if len(report.FinalRanks) != 2 || report.FinalRanks[0] != want[0] || report.FinalRanks[1] != want[1] {
		t.Fatalf("unexpected final ranks: %+v", report.FinalRanks)
	}
}

func TestBuildBatchReportRejectsForeignArchitecture(t *testing.T) {
	batch, archs := reportFixture()
	archs[1].BatchID = "other"
	if _, err := BuildBatchReport(batch, archs); err == nil {
		t.Fatal("expected batch mismatch error")
	}
}

func TestBuildBatchReportEmpty(t *testing.T) {
	report, err := BuildBatchReport(model.Batch{ID: "empty"}, nil)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}
	if report.Total != 0 || len(report.Operators) != 0 {
		t.Fatalf("unexpected empty report: %+v", report)
	}
}

func TestWriteBatchReport(t *testing.T) {
	batch, archs := reportFixture()
	report, err := BuildBatchReport(batch, archs)
	if err != nil {
		t.Fatalf("build report: %v", err)
	}

	base := t.TempDir()
	path, err := WriteBatchReport(base, report)
	if err != nil {
		t.Fatalf("write report: %v", err)
	}
	if path != filepath.Join(base, "batch-1_report.json") {
		t.Fatalf("unexpected report path: %s", path)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read report: %v", err)
	}
	var decoded BatchReport
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("decode report: %v", err)
	}
	if decoded.GeneratedAt == "" || decoded.Total != 2 {
		t.Fatalf("unexpected decoded report: %+v", decoded)
	}

	if _, err := WriteBatchReport(base, BatchReport{}); err == nil {
		t.Fatal("expected missing batch id error")
	}
}
