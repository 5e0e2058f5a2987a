package model

import "archgen/internal/shape"

// VersionedRecord captures schema and codec evolution for persistent data.
type VersionedRecord struct {
	SchemaVersion int `json:"schema_version"`
	CodecVersion  int `json:"codec_version"`
}

// Parameter kinds, one per operator variant family.
const (
	KindDense      = "dense"
	KindActivation = "activation"
	KindConv2D     = "conv2d"
	KindFlatten    = "flatten"
	KindUnflatten  = "unflatten"
)

// Params is the hyperparameter record fixed by one ComputeDims call.
// A zero Params has no Kind and cannot be materialized.
type Params struct {
	Kind        string `json:"kind"`
	InFeatures  int    `json:"in_features,omitempty"`
	OutFeatures int    `json:"out_features,omitempty"`
	InChannels  int    `json:"in_channels,omitempty"`
	OutChannels int    `json:"out_channels,omitempty"`
	KernelH     int    `json:"kernel_h,omitempty"`
	KernelW     int    `json:"kernel_w,omitempty"`
	Dims        []int  `json:"dims,omitempty"`
	Activation  string `json:"activation,omitempty"`
}

type Step struct {
	Index    int         `json:"index"`
	Operator string      `json:"operator"`
	Input    shape.Shape `json:"input"`
	Output   shape.Shape `json:"output"`
	Params   Params      `json:"params"`
}

type Architecture struct {
	VersionedRecord
	ID           string      `json:"id"`
	BatchID      string      `json:"batch_id,omitempty"`
	Pool         string      `json:"pool"`
	Seed         int64       `json:"seed"`
	Depth        int         `json:"depth"`
	InitialShape shape.Shape `json:"initial_shape"`
	FinalShape   shape.Shape `json:"final_shape"`
	Steps        []Step      `json:"steps"`
	Parameters   int         `json:"parameters"`
	CreatedAtUTC string      `json:"created_at_utc"`
}

type Batch struct {
	VersionedRecord
	ID              string      `json:"id"`
	Pool            string      `json:"pool"`
	Seed            int64       `json:"seed"`
	Depth           int         `json:"depth"`
	InitialShape    shape.Shape `json:"initial_shape"`
	ArchitectureIDs []string    `json:"architecture_ids"`
	CreatedAtUTC    string      `json:"created_at_utc"`
}
