package stats

import (
	"encoding/json"
	"fmt"
	"math"
	"os"
	"path/filepath"
	"sort"
	"time"

	"archgen/internal/model"
)

type OperatorCount struct {
	Operator string `json:"operator"`
	Count    int    `json:"count"`
}

type RankCount struct {
	Rank  int `json:"rank"`
	Count int `json:"count"`
}

type ParameterStats struct {
	Avg float64 `json:"avg"`
	Std float64 `json:"std"`
	Min int     `json:"min"`
	Max int     `json:"max"`
}

// BatchReport aggregates the architectures of one generation batch.
type BatchReport struct {
	BatchID     string          `json:"batch_id"`
	Pool        string          `json:"pool"`
	Depth       int             `json:"depth"`
	Total       int             `json:"total"`
	GeneratedAt string          `json:"generated_at_utc"`
	Parameters  ParameterStats  `json:"parameters"`
	Operators   []OperatorCount `json:"operators"`
	FinalRanks  []RankCount     `json:"final_ranks"`
}

func BuildBatchReport(batch model.Batch, archs []model.Architecture) (BatchReport, error) {
	report := BatchReport{
		BatchID: batch.ID,
		Pool:    batch.Pool,
		Depth:   batch.Depth,
		Total:   len(archs),
	}
	if len(archs) == 0 {
		return report, nil
	}

	params := make([]float64, 0, len(archs))
	operators := map[string]int{}
	ranks := map[int]int{}
	report.Parameters.Min = archs[0].Parameters
	report.Parameters.Max = archs[0].Parameters
	for _, arch := range archs {
		if arch.BatchID != batch.ID {
			return BatchReport{}, fmt.Errorf("architecture %s belongs to batch %q, not %q", arch.ID, arch.BatchID, batch.ID)
		}
		params = append(params, float64(arch.Parameters))
		if arch.Parameters < report.Parameters.Min {
			report.Parameters.Min = arch.Parameters
		}
		if arch.Parameters > report.Parameters.Max {
			report.Parameters.Max = arch.Parameters
		}
		for _, step := range arch.Steps {
			operators[step.Operator]++
		}
		ranks[arch.FinalShape.Rank()]++
	}
	report.Parameters.Avg, report.Parameters.Std = avgStd(params)

	for name, count := range operators {
		report.Operators = append(report.Operators, OperatorCount{Operator: name, Count: count})
	}
	sort.Slice(report.Operators, func(i, j int) bool {
		if report.Operators[i].Count != report.Operators[j].Count {
			return report.Operators[i].Count > report.Operators[j].Count
		}
		return report.Operators[i].Operator < report.Operators[j].Operator
	})
	for rank, count := range ranks {
		report.FinalRanks = append(report.FinalRanks, RankCount{Rank: rank, Count: count})
	}
	sort.Slice(report.FinalRanks, func(i, j int) bool {
		return report.FinalRanks[i].Rank < report.FinalRanks[j].Rank
	})
	return report, nil
}

// WriteBatchReport writes <batch id>_report.json under baseDir and returns its path.
func WriteBatchReport(baseDir string, report BatchReport) (string, error) {
	if report.BatchID == "" {
		return "", fmt.Errorf("report batch id is required")
	}
	if err := os.MkdirAll(baseDir, 0o755); err != nil {
		return "", err
	}
	if report.GeneratedAt == "" {
		report.GeneratedAt = time.Now().UTC().Format(time.RFC3339Nano)
	}
	path := filepath.Join(baseDir, report.BatchID+"_report.json")
	if err := writeJSON(path, report); err != nil {
		return "", err
	}
	return path, nil
}

func avgStd(values []float64) (float64, float64) {
	if len(values) == 0 {
		return 0, 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	avg := sum / float64(len(values))
	acc := 0.0
	for _, v := range values {
		acc += (v - avg) * (v - avg)
	}
	return avg, math.Sqrt(acc / float64(len(values)))
}

func writeJSON(path string, value any) error {
	data, err := json.MarshalIndent(value, "", "  ")
	if err != nil {
		return err
	}
	data = append(data, '\n')
	return os.WriteFile(path, data, 0o644)
}
