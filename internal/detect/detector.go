// Package detect locates candidate faces in raster images using a pigo
// cascade classifier.
package detect

import (
	"fmt"
	"image"
	"os"

	pigo "github.com/esimov/pigo/core"
)

// Params are the cascade tuning knobs.
type Params struct {
	MinSize          int     // minimum face size in pixels
	MaxSize          int     // maximum face size in pixels
	ShiftFactor      float64 // detection window shift, fraction of size
	ScaleFactor      float64 // detection window growth per scale step
	QualityThreshold float32 // minimum cluster quality to keep a detection
}

// DefaultParams returns tuning values that work for typical webcam frames.
func DefaultParams() Params {
	return Params{
		MinSize:          60,
		MaxSize:          1000,
		ShiftFactor:      0.1,
		ScaleFactor:      1.1,
		QualityThreshold: 5.0,
	}
}

// Detector runs the pigo cascade over grayscale frames.
type Detector struct {
	classifier *pigo.Pigo
	params     Params
}

// New loads the binary cascade file and prepares a detector. A missing or
// unreadable cascade is a startup failure.
func New(cascadePath string, params Params) (*Detector, error) {
	data, err := os.ReadFile(cascadePath) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("reading cascade file %s: %w", cascadePath, err)
	}

	classifier, err := pigo.NewPigo().Unpack(data)
	if err != nil {
		return nil, fmt.Errorf("unpacking cascade file %s: %w", cascadePath, err)
	}

	return &Detector{classifier: classifier, params: params}, nil
}

// Detect returns the bounding boxes of candidate faces, in the classifier's
// native cluster order. Callers that need a single face take the first box;
// no re-ranking is applied. An empty slice means no face was detected.
func (d *Detector) Detect(img image.Image) []image.Rectangle {
	pixels, rows, cols := grayscale(img)

	cParams := pigo.CascadeParams{
		MinSize:     d.params.MinSize,
		MaxSize:     d.params.MaxSize,
		ShiftFactor: d.params.ShiftFactor,
		ScaleFactor: d.params.ScaleFactor,
		ImageParams: pigo.ImageParams{
			Pixels: pixels,
			Rows:   rows,
			Cols:   cols,
			Dim:    cols,
		},
	}

	dets := d.classifier.RunCascade(cParams, 0.0)
	dets = d.classifier.ClusterDetections(dets, 0.2)

	faces := make([]image.Rectangle, 0, len(dets))
	for _, det := range dets {
		if det.Q <= d.params.QualityThreshold {
			continue
		}
		x := det.Col - det.Scale/2
		y := det.Row - det.Scale/2
		faces = append(faces, image.Rect(x, y, x+det.Scale, y+det.Scale))
	}
	return faces
}

// grayscale converts an image to the 8-bit luminance plane pigo expects.
func grayscale(img image.Image) (pixels []uint8, rows, cols int) {
	bounds := img.Bounds()
	cols = bounds.Dx()
	rows = bounds.Dy()

	pixels = make([]uint8, rows*cols)
	for y := 0; y < rows; y++ {
		for x := 0; x < cols; x++ {
			r, g, b, _ := img.At(bounds.Min.X+x, bounds.Min.Y+y).RGBA()
			pixels[y*cols+x] = uint8((r*299 + g*587 + b*114) / 1000 / 256)
		}
	}
	return pixels, rows, cols
}
