package view

import (
	"image"
	"math"

	"gocv.io/x/gocv"
)

// Render applies rotation then center-crop zoom to a frame and returns a new
// Mat of the same size. The caller owns the returned Mat and must close it.
// Rotations under 0.1 degrees and zoom at 1.0 are identity passes.
func Render(frame *gocv.Mat, zoom, rotation float64) gocv.Mat {
	out := frame.Clone()

	w := out.Cols()
	h := out.Rows()
	if w == 0 || h == 0 {
		return out
	}

	if math.Abs(rotation) > 0.1 {
		center := image.Point{X: w / 2, Y: h / 2}
		m := gocv.GetRotationMatrix2D(center, rotation, 1.0)
		rotated := gocv.NewMat()
		gocv.WarpAffine(out, &rotated, m, image.Point{X: w, Y: h})
		m.Close()
		out.Close()
		out = rotated
	}

	if zoom > 1.0 {
		cropW := int(float64(w) / zoom)
		cropH := int(float64(h) / zoom)
		if cropW < 1 {
			cropW = 1
		}
		if cropH < 1 {
			cropH = 1
		}

		x1 := (w - cropW) / 2
		y1 := (h - cropH) / 2
		roi := out.Region(image.Rect(x1, y1, x1+cropW, y1+cropH))

		zoomed := gocv.NewMat()
		gocv.Resize(roi, &zoomed, image.Point{X: w, Y: h}, 0, 0, gocv.InterpolationLinear)
		roi.Close()
		out.Close()
		out = zoomed
	}

	return out
}
