package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"

	archapi "archgen/pkg/archgen"
)

// loadGenerateRequestFromConfig also returns the keys present in the file,
// so explicit zero values can be told apart from missing ones.
func loadGenerateRequestFromConfig(path string) (archapi.GenerateRequest, map[string]bool, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return archapi.GenerateRequest{}, nil, err
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		return archapi.GenerateRequest{}, nil, err
	}
	present := make(map[string]bool, len(raw))
	for key := range raw {
		present[key] = true
	}

	var req archapi.GenerateRequest
	if v, ok := asIntSlice(raw["input_shape"]); ok {
		req.InitialShape = v
	}
	if v, ok := asInt(raw["depth"]); ok {
		req.Depth = v
	}
	if v, ok := asString(raw["pool"]); ok {
		req.Pool = v
	}
	if v, ok := asInt64(raw["seed"]); ok {
		req.Seed = v
	}
	if v, ok := asInt(raw["count"]); ok {
		req.Count = v
	}
	if v, ok := asInt(raw["workers"]); ok {
		req.Workers = v
	}
	if rawSpec, ok := raw["pool_spec"].(map[string]any); ok {
		spec, err := parsePoolSpec(rawSpec)
		if err != nil {
			return archapi.GenerateRequest{}, nil, err
		}
		req.PoolSpec = spec
	}
	return req, present, nil
}

// mergeGenerateRequest applies explicitly set flags on top of the config.
// Flag defaults only fill values the config file does not mention.
func mergeGenerateRequest(cfg archapi.GenerateRequest, present map[string]bool, flags archapi.GenerateRequest, set map[string]bool) archapi.GenerateRequest {
	out := cfg
	if set["depth"] || !present["depth"] {
		out.Depth = flags.Depth
	}
	if set["pool"] || (!present["pool"] && !present["pool_spec"]) {
		out.Pool = flags.Pool
	}
	if set["seed"] || !present["seed"] {
		out.Seed = flags.Seed
	}
	if set["count"] || !present["count"] {
		out.Count = flags.Count
	}
	if set["workers"] || !present["workers"] {
		out.Workers = flags.Workers
	}
	return out
}

// parsePoolSpec reads {"2": ["dense", "relu"], "4": [...]}.
func parsePoolSpec(raw map[string]any) (map[int][]string, error) {
	spec := make(map[int][]string, len(raw))
	for key, value := range raw {
		rank, err := strconv.Atoi(key)
		if err != nil {
			return nil, fmt.Errorf("pool_spec rank %q: %w", key, err)
		}
		items, ok := value.([]any)
		if !ok {
			return nil, fmt.Errorf("pool_spec rank %d: expected a list of operator names", rank)
		}
		for _, item := range items {
			name, ok := asString(item)
			if !ok {
				return nil, fmt.Errorf("pool_spec rank %d: operator names must be strings", rank)
			}
			spec[rank] = append(spec[rank], name)
		}
	}
	return spec, nil
}

func asString(v any) (string, bool) {
	s, ok := v.(string)
	return s, ok
}

func asInt(v any) (int, bool) {
	switch x := v.(type) {
	case int:
		return x, true
	case float64:
		return int(x), true
	default:
		return 0, false
	}
}

func asInt64(v any) (int64, bool) {
	switch x := v.(type) {
	case int64:
		return x, true
	case int:
		return int64(x), true
	case float64:
		return int64(x), true
	default:
		return 0, false
	}
}

func asIntSlice(v any) ([]int, bool) {
	items, ok := v.([]any)
	if !ok {
		return nil, false
	}
	out := make([]int, 0, len(items))
	for _, item := range items {
		n, ok := asInt(item)
		if !ok {
			return nil, false
		}
		out = append(out, n)
	}
	return out, true
}
