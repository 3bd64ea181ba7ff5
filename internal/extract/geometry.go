package extract

// NormalizedBox is an axis-normalized bounding box as reported by vision
// providers: coordinates in [0,1] with the origin at the bottom-left of the
// image.
type NormalizedBox struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	W float64 `json:"w"`
	H float64 `json:"h"`
}

// PixelFrame converts a normalized bottom-left-origin box to a
// top-left-origin pixel rectangle for the given image dimensions.
func PixelFrame(n NormalizedBox, imageWidth, imageHeight int) Rect {
	w := float64(imageWidth)
	h := float64(imageHeight)
	return Rect{
		X: n.X * w,
		Y: (1 - n.Y - n.H) * h,
		W: n.W * w,
		H: n.H * h,
	}
}
