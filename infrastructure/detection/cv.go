//go:build detection

package detection

import (
	"fmt"
	"image"

	"gocv.io/x/gocv"
)

func loadTemplate(path string, scale float64) (gocv.Mat, error) {
	m := gocv.IMRead(path, gocv.IMReadGrayScale)
	if m.Empty() {
		m.Close()
		return gocv.NewMat(), fmt.Errorf("%w: %s", ErrMissingTemplate, path)
	}
	if scale == 1 {
		return m, nil
	}
	resized := gocv.NewMat()
	gocv.Resize(m, &resized, image.Point{}, scale, scale, gocv.InterpolationLinear)
	m.Close()
	return resized, nil
}

// matchScore returns the best normalized correlation of templ inside img
func matchScore(img, templ gocv.Mat) float64 {
	if templ.Empty() || img.Rows() < templ.Rows() || img.Cols() < templ.Cols() {
		return 0
	}
	result := gocv.NewMat()
	defer result.Close()
	mask := gocv.NewMat()
	defer mask.Close()

	gocv.MatchTemplate(img, templ, &result, gocv.TmCcoeffNormed, mask)
	_, maxVal, _, _ := gocv.MinMaxLoc(result)
	return float64(maxVal)
}

func toGray(m gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if m.Channels() == 1 {
		m.CopyTo(&gray)
		return gray
	}
	gocv.CvtColor(m, &gray, gocv.ColorBGRToGray)
	return gray
}

// whitePixels counts pixels above thresh
func whitePixels(gray gocv.Mat, thresh float64) int {
	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(gray, &bin, float32(thresh), 255, gocv.ThresholdBinary)
	return gocv.CountNonZero(bin)
}

// binarize thresholds a gray crop into dark text on white for OCR and
// returns the white-pixel count before inversion
func binarize(gray gocv.Mat, thresh float64) (image.Image, int, error) {
	bin := gocv.NewMat()
	defer bin.Close()
	gocv.Threshold(gray, &bin, float32(thresh), 255, gocv.ThresholdBinary)
	white := gocv.CountNonZero(bin)
	gocv.BitwiseNot(bin, &bin)

	img, err := bin.ToImage()
	if err != nil {
		return nil, white, fmt.Errorf("failed to convert crop: %w", err)
	}
	return img, white, nil
}

// cropImage copies a window of a frame out of native memory
func cropImage(m gocv.Mat, w Window) (image.Image, error) {
	roi := m.Region(w.Rect())
	defer roi.Close()
	c := roi.Clone()
	defer c.Close()
	return c.ToImage()
}

// imageToGray converts a crop back into a gray Mat
func imageToGray(img image.Image) (gocv.Mat, error) {
	m, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return gocv.NewMat(), err
	}
	defer m.Close()
	return toGray(m), nil
}
