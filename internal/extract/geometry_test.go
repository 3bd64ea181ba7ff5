package extract

import (
	"math"
	"testing"
)

func rectsClose(a, b Rect) bool {
	const eps = 1e-6
	return math.Abs(a.X-b.X) < eps &&
		math.Abs(a.Y-b.Y) < eps &&
		math.Abs(a.W-b.W) < eps &&
		math.Abs(a.H-b.H) < eps
}

func TestPixelFrame(t *testing.T) {
	tests := []struct {
		name   string
		box    NormalizedBox
		width  int
		height int
		want   Rect
	}{
		{
			name:   "reference conversion",
			box:    NormalizedBox{X: 0.1, Y: 0.2, W: 0.3, H: 0.1},
			width:  1000,
			height: 1000,
			want:   Rect{X: 100, Y: 700, W: 300, H: 100},
		},
		{
			name:   "full image box",
			box:    NormalizedBox{X: 0, Y: 0, W: 1, H: 1},
			width:  640,
			height: 480,
			want:   Rect{X: 0, Y: 0, W: 640, H: 480},
		},
		{
			name:   "top strip flips to y zero",
			box:    NormalizedBox{X: 0, Y: 0.9, W: 1, H: 0.1},
			width:  200,
			height: 100,
			want:   Rect{X: 0, Y: 0, W: 200, H: 10},
		},
		{
			name:   "non-square image",
			box:    NormalizedBox{X: 0.5, Y: 0.25, W: 0.25, H: 0.5},
			width:  800,
			height: 400,
			want:   Rect{X: 400, Y: 100, W: 200, H: 200},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := PixelFrame(tt.box, tt.width, tt.height)
			if !rectsClose(got, tt.want) {
				t.Errorf("got %+v, want %+v", got, tt.want)
			}
		})
	}
}
