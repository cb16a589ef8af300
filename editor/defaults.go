package editor

import (
	"time"

	"canvas-editor/core"
)

const (
	DefaultFillColor   = "rgba(0,0,0,1)"
	DefaultStrokeColor = "rgba(0,0,0,1)"
	DefaultStrokeWidth = 2
	DefaultFontFamily  = "Arial"
	DefaultFontSize    = 32
	DefaultFontWeight  = "400"
	DefaultFontStyle   = "normal"
	DefaultTextAlign   = "left"
	DefaultOpacity     = 1

	DefaultWorkspaceWidth  = 900
	DefaultWorkspaceHeight = 1200
	DefaultBackground      = "white"

	DefaultDebounce      = 500 * time.Millisecond
	DefaultHistoryLimit  = 50
	DefaultThumbnailSize = 64

	// DuplicateOffset is how far copies are shifted from their source.
	DuplicateOffset = 10

	// autoZoomRatio leaves a margin around the workspace when fitting it.
	autoZoomRatio = 0.85
)

var (
	workspaceShadow = core.Shadow{Color: "rgba(0,0,0,0.8)", Blur: 5}

	defaultGradient = core.GradientDescriptor{
		Type:  core.GradientLinear,
		Angle: 90,
		Stops: []core.GradientStop{
			{Color: "#000000", Position: 0, Opacity: 1},
			{Color: "#ffffff", Position: 100, Opacity: 1},
		},
	}
)

// Default object geometry.
const (
	rectSize     = 400
	circleRadius = 225
	triangleSize = 400
	lineLength   = 200
	iconSize     = 200
	chartWidth   = 400
	chartHeight  = 300
	textWidth    = 400
)
