package extract

import "context"

// Image is the opaque payload handed to a text extractor: encoded bytes plus
// pixel dimensions. The core never decodes it itself.
type Image struct {
	Data   []byte
	Width  int
	Height int
}

// Rect is a top-left-origin rectangle in image pixel coordinates.
type Rect struct {
	X float64
	Y float64
	W float64
	H float64
}

// TextBoundingBox is one recognized fragment with its frame and confidence.
type TextBoundingBox struct {
	Text       string
	Frame      Rect
	Confidence float64
}

// OCRResult is the transient output of text extraction, consumed only by the
// processing pipeline.
//
// Confidence is taken from the first detected fragment, not an aggregate.
// Crude, but kept for compatibility with existing consumers.
type OCRResult struct {
	ExtractedText string
	Confidence    float64
	BoundingBoxes []TextBoundingBox
}

// TextExtractor is Stage 1: image -> recognized text plus per-fragment
// confidence. Implementations apply their own timeout and retry policy.
type TextExtractor interface {
	ExtractText(ctx context.Context, img Image) (OCRResult, error)
}
