package storage

import (
	"archgen/internal/model"
	"archgen/internal/shape"
)

func sampleArchitecture(id string) model.Architecture {
	return model.Architecture{
		VersionedRecord: CurrentVersion(),
		ID:              id,
		BatchID:         "b1",
		Pool:            "flatten",
		Seed:            7,
		Depth:           2,
		InitialShape:    shape.Shape{1, 3, 8, 8},
		FinalShape:      shape.Shape{1, 16},
		Steps: []model.Step{
			{
				Index:    0,
				Operator: "conv2d",
				Input:    shape.Shape{1, 3, 8, 8},
				Output:   shape.Shape{1, 4, 2, 2},
				Params:   model.Params{Kind: model.KindConv2D, InChannels: 3, OutChannels: 4, KernelH: 7, KernelW: 7},
			},
			{
				Index:    1,
				Operator: "flatten",
				Input:    shape.Shape{1, 4, 2, 2},
				Output:   shape.Shape{1, 16},
				Params:   model.Params{Kind: model.KindFlatten},
			},
		},
		Parameters:   4*3*7*7 + 4,
		CreatedAtUTC: "2026-01-02T03:04:05Z",
	}
}
