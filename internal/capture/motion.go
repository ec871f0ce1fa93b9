package capture

import (
	"image"
	"sync"

	"gocv.io/x/gocv"
)

const (
	// blurKernel smooths sensor noise out of the grayscale frame before
	// differencing.
	blurKernel = 21
	// pixelDelta is how much a pixel must change between frames to count
	// as motion.
	pixelDelta = 25
)

// MotionDetector reports how much of the scene changed between consecutive
// frames. The pipeline uses it to keep the landmark model off while nothing
// moves in front of the camera.
type MotionDetector struct {
	mu        sync.Mutex
	threshold float64
	baseline  gocv.Mat
	primed    bool
}

// NewMotionDetector returns a detector that reports motion when more than
// threshold percent of pixels change.
func NewMotionDetector(threshold float64) *MotionDetector {
	return &MotionDetector{
		threshold: threshold,
		baseline:  gocv.NewMat(),
	}
}

// Detect compares frame against the previous one and returns whether the
// change exceeds the threshold, plus the percentage of pixels that moved.
// The first frame after construction or Reset only primes the baseline.
func (m *MotionDetector) Detect(frame *gocv.Mat) (bool, float64) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if frame == nil || frame.Empty() {
		return false, 0
	}

	blurred := grayBlur(frame)
	defer blurred.Close()

	if !m.primed {
		blurred.CopyTo(&m.baseline)
		m.primed = true
		return false, 0
	}

	diff := gocv.NewMat()
	defer diff.Close()
	gocv.AbsDiff(blurred, m.baseline, &diff)

	mask := gocv.NewMat()
	defer mask.Close()
	gocv.Threshold(diff, &mask, pixelDelta, 255, gocv.ThresholdBinary)

	changed := gocv.CountNonZero(mask)
	percent := float64(changed) / float64(mask.Rows()*mask.Cols()) * 100

	blurred.CopyTo(&m.baseline)

	return percent > m.threshold, percent
}

// Reset discards the baseline so the next frame primes it again. Used after
// camera reconnects, where the first frame from the new stream would
// otherwise register as a full-frame change.
func (m *MotionDetector) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.baseline.Empty() {
		m.baseline.Close()
		m.baseline = gocv.NewMat()
	}
	m.primed = false
}

// Close releases the baseline frame. Safe to call more than once.
func (m *MotionDetector) Close() {
	m.Reset()
}

// SetThreshold updates the motion threshold. Non-positive values are
// ignored.
func (m *MotionDetector) SetThreshold(threshold float64) {
	if threshold <= 0 {
		return
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.threshold = threshold
}

// grayBlur converts a frame to blurred grayscale for differencing. The
// caller owns the returned Mat.
func grayBlur(frame *gocv.Mat) gocv.Mat {
	gray := gocv.NewMat()
	if frame.Channels() > 1 {
		gocv.CvtColor(*frame, &gray, gocv.ColorBGRToGray)
	} else {
		frame.CopyTo(&gray)
	}

	blurred := gocv.NewMat()
	gocv.GaussianBlur(gray, &blurred, image.Pt(blurKernel, blurKernel), 0, 0, gocv.BorderDefault)
	gray.Close()
	return blurred
}
