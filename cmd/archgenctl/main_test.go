package main

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"archgen/internal/shape"
	archapi "archgen/pkg/archgen"
)

func captureStdout(fn func() error) (string, error) {
	origStdout := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		return "", err
	}

	done := make(chan struct{})
	var buf bytes.Buffer
	go func() {
		_, _ = io.Copy(&buf, r)
		close(done)
	}()

	os.Stdout = w
	runErr := fn()
	_ = w.Close()
	os.Stdout = origStdout
	<-done
	_ = r.Close()
	return buf.String(), runErr
}

func TestRunRequiresCommand(t *testing.T) {
	if err := run(context.Background(), nil); err == nil || !strings.Contains(err.Error(), "usage:") {
		t.Fatalf("expected usage error, got %v", err)
	}
	if err := run(context.Background(), []string{"train"}); err == nil || !strings.Contains(err.Error(), "unknown command") {
		t.Fatalf("expected unknown command error, got %v", err)
	}
}

func TestGenerateJSONMemoryStore(t *testing.T) {
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"generate",
			"--store", "memory",
			"--input-shape", "1,3,32,32",
			"--depth", "5",
			"--pool", "flatten",
			"--seed", "42",
			"--json",
		})
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}

	var summary archapi.GenerateSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if summary.Pool != "flatten" || len(summary.Architectures) != 1 {
		t.Fatalf("unexpected summary: %+v", summary)
	}
	if got := len(summary.Architectures[0].Operators); got != 5 {
		t.Fatalf("expected 5 operators, got %d", got)
	}
}

func TestGenerateTextOutputWithPositionalShape(t *testing.T) {
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{
			"generate",
			"--store", "memory",
			"--depth", "3",
			"--pool", "dense",
			"--seed", "5",
			"1", "100",
		})
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	if !strings.Contains(out, "input shape [1 100]") || !strings.Contains(out, "Sequential(") {
		t.Fatalf("unexpected output:\n%s", out)
	}
}

func TestGenerateRequiresShape(t *testing.T) {
	err := run(context.Background(), []string{"generate", "--store", "memory", "--depth", "2"})
	if err == nil || !strings.Contains(err.Error(), "--input-shape") {
		t.Fatalf("expected missing shape error, got %v", err)
	}
	err = run(context.Background(), []string{"generate", "--store", "memory", "--input-shape", "1,0"})
	if err == nil {
		t.Fatal("expected invalid shape error")
	}
}

func TestGenerateFromConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generate.json")
	config := `{
		"input_shape": [2, 16],
		"depth": 4,
		"seed": 9,
		"count": 2,
		"pool_spec": {"2": ["dense", "sigmoid"]}
	}`
	if err := os.WriteFile(path, []byte(config), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"generate", "--store", "memory", "--config", path, "--depth", "6", "--json"})
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var summary archapi.GenerateSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	if len(summary.Architectures) != 2 {
		t.Fatalf("expected 2 architectures, got %d", len(summary.Architectures))
	}
	for _, item := range summary.Architectures {
		if len(item.Operators) != 6 {
			t.Fatalf("expected depth flag to override config, got %v", item.Operators)
		}
		for _, op := range item.Operators {
			if op != "dense" && op != "sigmoid" {
				t.Fatalf("unexpected operator %s", op)
			}
		}
	}
	if summary.Architectures[0].Seed != 9 || summary.Architectures[1].Seed != 10 {
		t.Fatalf("unexpected seeds: %+v", summary.Architectures)
	}
}

func TestParsePoolSpecErrors(t *testing.T) {
	if _, err := parsePoolSpec(map[string]any{"two": []any{"dense"}}); err == nil {
		t.Fatal("expected rank parse error")
	}
	if _, err := parsePoolSpec(map[string]any{"2": "dense"}); err == nil {
		t.Fatal("expected list error")
	}
	if _, err := parsePoolSpec(map[string]any{"2": []any{3.0}}); err == nil {
		t.Fatal("expected name type error")
	}
}

func TestPoolsCommand(t *testing.T) {
	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"pools"})
	})
	if err != nil {
		t.Fatalf("pools: %v", err)
	}
	for _, name := range []string{"bidirectional", "dense", "flatten", "rank 4: conv2d, relu, flatten"} {
		if !strings.Contains(out, name) {
			t.Fatalf("expected %q in output:\n%s", name, out)
		}
	}
}

func TestSubcommandsRequireIdentifiers(t *testing.T) {
	if err := run(context.Background(), []string{"show", "--store", "memory"}); err == nil {
		t.Fatal("expected missing id error")
	}
	if err := run(context.Background(), []string{"export", "--store", "memory"}); err == nil {
		t.Fatal("expected missing id error")
	}
	if err := run(context.Background(), []string{"report", "--store", "memory"}); err == nil {
		t.Fatal("expected missing batch error")
	}
	if err := run(context.Background(), []string{"list", "--store", "memory", "--limit", "0"}); err == nil {
		t.Fatal("expected limit error")
	}
}

func TestGenerateConfigDepthZeroIsKept(t *testing.T) {
	path := filepath.Join(t.TempDir(), "generate.json")
	if err := os.WriteFile(path, []byte(`{"input_shape": [1, 10], "depth": 0}`), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, present, err := loadGenerateRequestFromConfig(path)
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if !present["depth"] || present["seed"] {
		t.Fatalf("unexpected present keys: %v", present)
	}
	merged := mergeGenerateRequest(cfg, present, archapi.GenerateRequest{Depth: 100, Pool: "bidirectional", Count: 1, Workers: 4}, map[string]bool{})
	if merged.Depth != 0 || merged.Pool != "bidirectional" || merged.Count != 1 || merged.Workers != 4 {
		t.Fatalf("unexpected merged request: %+v", merged)
	}
	merged = mergeGenerateRequest(cfg, present, archapi.GenerateRequest{Depth: 7}, map[string]bool{"depth": true})
	if merged.Depth != 7 {
		t.Fatalf("expected explicit flag to win, got depth=%d", merged.Depth)
	}

	out, err := captureStdout(func() error {
		return run(context.Background(), []string{"generate", "--store", "memory", "--config", path, "--json"})
	})
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	var summary archapi.GenerateSummary
	if err := json.Unmarshal([]byte(out), &summary); err != nil {
		t.Fatalf("decode summary: %v\n%s", err, out)
	}
	item := summary.Architectures[0]
	if len(item.Operators) != 0 || !item.FinalShape.Equal(shape.Shape{1, 10}) || item.Model != "Sequential()" {
		t.Fatalf("expected empty architecture, got %+v", item)
	}
}

func TestShowProgress(t *testing.T) {
	cases := []struct {
		verbose, jsonOut bool
		count            int
		terminal         bool
		want             bool
	}{
		{verbose: true, jsonOut: true, count: 5, want: true},
		{count: 1, terminal: true, want: true},
		{count: 1, terminal: false, want: false},
		{jsonOut: true, count: 1, terminal: true, want: false},
		{count: 3, terminal: true, want: false},
	}
	for _, tc := range cases {
		if got := showProgress(tc.verbose, tc.jsonOut, tc.count, tc.terminal); got != tc.want {
			t.Fatalf("showProgress(%+v)=%t want %t", tc, got, tc.want)
		}
	}
}
