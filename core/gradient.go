package core

import "fmt"

type GradientType string

const (
	GradientLinear GradientType = "linear"
	GradientRadial GradientType = "radial"
	// GradientConic is rendered as a linear gradient along the same angle.
	GradientConic GradientType = "conic"
)

type (
	// GradientStop is one authoring stop. Position is in [0,100], Opacity in [0,1].
	GradientStop struct {
		Color    string  `json:"color"`
		Position float64 `json:"position"`
		Opacity  float64 `json:"opacity"`
	}

	// GradientDescriptor holds the authoring parameters of a gradient fill.
	GradientDescriptor struct {
		Type  GradientType   `json:"type"`
		Angle float64        `json:"angle"`
		Stops []GradientStop `json:"stops"`
	}

	// ColorStop is a realized stop with a normalized offset.
	ColorStop struct {
		Offset  float64 `json:"offset"`
		Color   string  `json:"color"`
		Opacity float64 `json:"opacity"`
	}

	// Gradient is the realized fill primitive in object-local coordinates.
	Gradient struct {
		Type  GradientType `json:"type"`
		X1    float64      `json:"x1"`
		Y1    float64      `json:"y1"`
		X2    float64      `json:"x2"`
		Y2    float64      `json:"y2"`
		R1    float64      `json:"r1,omitempty"`
		R2    float64      `json:"r2,omitempty"`
		Stops []ColorStop  `json:"stops"`
	}
)

// Validate checks the descriptor invariants.
func (d *GradientDescriptor) Validate() error {
	if d == nil {
		return fmt.Errorf("%w: nil gradient", ErrInvalidGradient)
	}
	switch d.Type {
	case GradientLinear, GradientRadial, GradientConic:
	default:
		return fmt.Errorf("%w: unknown type %q", ErrInvalidGradient, d.Type)
	}
	if !Finite(d.Angle) {
		return fmt.Errorf("%w: angle %v is not finite", ErrInvalidGradient, d.Angle)
	}
	if len(d.Stops) < 2 {
		return fmt.Errorf("%w: need at least 2 stops, got %d", ErrInvalidGradient, len(d.Stops))
	}
	for i, s := range d.Stops {
		if !Finite(s.Position) || s.Position < 0 || s.Position > 100 {
			return fmt.Errorf("%w: stop %d position %v outside [0,100]", ErrInvalidGradient, i, s.Position)
		}
		if !Finite(s.Opacity) || s.Opacity < 0 || s.Opacity > 1 {
			return fmt.Errorf("%w: stop %d opacity %v outside [0,1]", ErrInvalidGradient, i, s.Opacity)
		}
	}
	return nil
}

func (d *GradientDescriptor) Clone() *GradientDescriptor {
	if d == nil {
		return nil
	}
	c := *d
	c.Stops = append([]GradientStop(nil), d.Stops...)
	return &c
}
