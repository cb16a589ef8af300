package core

import (
	"errors"
	"math"
	"testing"
)

func TestGradientDescriptorValidate(t *testing.T) {
	stops := func(pos, opacity float64) []GradientStop {
		return []GradientStop{
			{Color: "#000000", Position: 0, Opacity: 1},
			{Color: "#ffffff", Position: pos, Opacity: opacity},
		}
	}
	tests := []struct {
		name string
		desc *GradientDescriptor
		ok   bool
	}{
		{"valid", &GradientDescriptor{Type: GradientLinear, Angle: 45, Stops: stops(100, 1)}, true},
		{"nil", nil, false},
		{"unknown type", &GradientDescriptor{Type: "diamond", Stops: stops(100, 1)}, false},
		{"one stop", &GradientDescriptor{Type: GradientRadial, Stops: stops(100, 1)[:1]}, false},
		{"position out of range", &GradientDescriptor{Type: GradientLinear, Stops: stops(120, 1)}, false},
		{"opacity out of range", &GradientDescriptor{Type: GradientLinear, Stops: stops(100, -0.5)}, false},
		{"NaN position", &GradientDescriptor{Type: GradientLinear, Stops: stops(math.NaN(), 1)}, false},
		{"NaN opacity", &GradientDescriptor{Type: GradientLinear, Stops: stops(100, math.NaN())}, false},
		{"infinite position", &GradientDescriptor{Type: GradientLinear, Stops: stops(math.Inf(1), 1)}, false},
		{"NaN angle", &GradientDescriptor{Type: GradientLinear, Angle: math.NaN(), Stops: stops(100, 1)}, false},
		{"infinite angle", &GradientDescriptor{Type: GradientConic, Angle: math.Inf(-1), Stops: stops(100, 1)}, false},
	}
	for _, tt := range tests {
		err := tt.desc.Validate()
		if tt.ok && err != nil {
			t.Errorf("%s: unexpected error: %v", tt.name, err)
		}
		if !tt.ok && !errors.Is(err, ErrInvalidGradient) {
			t.Errorf("%s: expected ErrInvalidGradient, got %v", tt.name, err)
		}
	}
}

func TestFinite(t *testing.T) {
	if !Finite() || !Finite(0, -1, 1e300) {
		t.Error("Finite values reported as non-finite")
	}
	if Finite(1, math.NaN()) || Finite(math.Inf(1)) {
		t.Error("Non-finite values reported as finite")
	}
}
