package export

import (
	"regexp"
	"strings"
)

// Orientation of the PDF page.
type Orientation string

// Orientations
const (
	Portrait  Orientation = "portrait"
	Landscape Orientation = "landscape"
)

// Options are the fixed rendering settings for an export.
type Options struct {
	Filename     string
	MarginInches float64
	// Paper size in inches.
	PaperWidth  float64
	PaperHeight float64
	Orientation Orientation
	// RasterScale is the device scale factor used when rasterizing the page.
	RasterScale float64
	// ImageQuality is the JPEG quality in (0, 1].
	ImageQuality float64
}

// A4 paper in inches.
const (
	A4WidthInches  = 8.27
	A4HeightInches = 11.69
)

var whitespaceRun = regexp.MustCompile(`\s+`)

// Filename derives the download name from the full name.
func Filename(fullName string) string {
	return whitespaceRun.ReplaceAllString(fullName, "_") + "_Resume.pdf"
}

// DefaultOptions returns the export settings for fullName: no margin, A4 portrait,
// 2x raster scale, JPEG quality 0.98.
func DefaultOptions(fullName string) Options {
	return Options{
		Filename:     Filename(fullName),
		MarginInches: 0,
		PaperWidth:   A4WidthInches,
		PaperHeight:  A4HeightInches,
		Orientation:  Portrait,
		RasterScale:  2,
		ImageQuality: 0.98,
	}
}

// jpegQuality converts ImageQuality to the 0-100 scale used by screenshots.
func (o Options) jpegQuality() int64 {
	q := int64(o.ImageQuality*100 + 0.5)
	switch {
	case q <= 0:
		return 92
	case q > 100:
		return 100
	default:
		return q
	}
}

// viewport returns the CSS pixel size of the page at 96 dpi.
func (o Options) viewport() (int64, int64) {
	w, h := o.PaperWidth, o.PaperHeight
	if strings.EqualFold(string(o.Orientation), string(Landscape)) {
		w, h = h, w
	}
	return int64(w*96 + 0.5), int64(h*96 + 0.5)
}
