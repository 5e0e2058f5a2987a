package nn

import (
	"errors"
	"strings"
	"testing"

	"archgen/internal/shape"
)

func TestLinearOutputShapeAndParameters(t *testing.T) {
	l := NewLinear(100, 42, true)
	out, err := l.OutputShape(shape.Shape{8, 100})
	if err != nil {
		t.Fatalf("output shape: %v", err)
	}
	if !out.Equal(shape.Shape{8, 42}) {
		t.Fatalf("unexpected output: %v", out)
	}
	if l.ParameterCount() != 100*42+42 {
		t.Fatalf("unexpected parameter count: %d", l.ParameterCount())
	}
	if _, err := l.OutputShape(shape.Shape{8, 99}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected feature mismatch, got %v", err)
	}
	if _, err := l.OutputShape(shape.Shape{8, 1, 100}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected rank mismatch, got %v", err)
	}
	if got := l.String(); got != "Linear(in_features=100, out_features=42, bias=True)" {
		t.Fatalf("unexpected repr: %s", got)
	}
}

func TestConv2dFullKernelCollapsesSpatialDims(t *testing.T) {
	c := NewConv2d(3, 16, 32, 32)
	out, err := c.OutputShape(shape.Shape{1, 3, 32, 32})
	if err != nil {
		t.Fatalf("output shape: %v", err)
	}
	if !out.Equal(shape.Shape{1, 16, 1, 1}) {
		t.Fatalf("unexpected output: %v", out)
	}
	if _, err := c.OutputShape(shape.Shape{1, 3, 31, 32}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected oversize kernel error, got %v", err)
	}
	if c.ParameterCount() != 16*3*32*32+16 {
		t.Fatalf("unexpected parameter count: %d", c.ParameterCount())
	}
}

func TestActivationPreservesShape(t *testing.T) {
	a, err := NewActivation("relu")
	if err != nil {
		t.Fatalf("new activation: %v", err)
	}
	in := shape.Shape{2, 5, 7}
	out, err := a.OutputShape(in)
	if err != nil {
		t.Fatalf("output shape: %v", err)
	}
	if !out.Equal(in) {
		t.Fatalf("unexpected output: %v", out)
	}
	out[0] = 100
	if in[0] != 2 {
		t.Fatal("activation output aliases input")
	}
	if a.String() != "ReLU()" || a.Name() != "relu" {
		t.Fatalf("unexpected activation: %s", a)
	}
	if _, err := NewActivation("nope"); !errors.Is(err, ErrActivationNotFound) {
		t.Fatalf("expected not found, got %v", err)
	}
}

func TestFlattenUnflatten(t *testing.T) {
	flat, err := NewFlatten().OutputShape(shape.Shape{4, 3, 5, 7})
	if err != nil {
		t.Fatalf("flatten: %v", err)
	}
	if !flat.Equal(shape.Shape{4, 105}) {
		t.Fatalf("unexpected flatten output: %v", flat)
	}

	u := NewUnflatten(3, 5, 7)
	back, err := u.OutputShape(flat)
	if err != nil {
		t.Fatalf("unflatten: %v", err)
	}
	if !back.Equal(shape.Shape{4, 3, 5, 7}) {
		t.Fatalf("unexpected unflatten output: %v", back)
	}
	if _, err := NewFlatten().OutputShape(shape.Shape{1, 1e7, 1e7, 1e7}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected oversized flatten to fail, got %v", err)
	}
	if _, err := NewUnflatten(2, 2, 2).OutputShape(flat); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected factor mismatch, got %v", err)
	}
	if u.String() != "Unflatten(dim=1, unflattened_size=(3, 5, 7))" {
		t.Fatalf("unexpected repr: %s", u)
	}
}

func TestSequentialInferShapeAndString(t *testing.T) {
	relu, _ := NewActivation("relu")
	seq := NewSequential(
		NewConv2d(3, 8, 3, 3),
		relu,
		NewFlatten(),
		NewLinear(8*30*30, 10, true),
	)
	out, err := seq.InferShape(shape.Shape{2, 3, 32, 32})
	if err != nil {
		t.Fatalf("infer shape: %v", err)
	}
	if !out.Equal(shape.Shape{2, 10}) {
		t.Fatalf("unexpected final shape: %v", out)
	}
	if seq.Len() != 4 {
		t.Fatalf("unexpected length: %d", seq.Len())
	}
	want := (8*3*3*3 + 8) + (8*30*30*10 + 10)
	if seq.ParameterCount() != want {
		t.Fatalf("unexpected parameter count: got=%d want=%d", seq.ParameterCount(), want)
	}

	text := seq.String()
	if !strings.HasPrefix(text, "Sequential(\n  (0): Conv2d(3, 8") || !strings.Contains(text, "(1): ReLU()") {
		t.Fatalf("unexpected repr:\n%s", text)
	}

	if _, err := seq.InferShape(shape.Shape{2, 4, 32, 32}); !errors.Is(err, ErrShapeMismatch) {
		t.Fatalf("expected mismatch, got %v", err)
	}
	if NewSequential().String() != "Sequential()" {
		t.Fatal("unexpected empty repr")
	}
}
