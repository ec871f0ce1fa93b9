package capture

import (
	"testing"

	"gocv.io/x/gocv"
)

func TestNewMotionDetector(t *testing.T) {
	md := NewMotionDetector(1.5)
	defer md.Close()

	if md == nil {
		t.Fatal("NewMotionDetector returned nil")
	}
	if md.threshold != 1.5 {
		t.Errorf("threshold = %f, want 1.5", md.threshold)
	}
	if md.primed {
		t.Error("motion detector should not be primed before the first frame")
	}
}

func TestMotionDetector_NilAndEmptyFrames(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	detected, changePercent := md.Detect(nil)
	if detected || changePercent != 0 {
		t.Errorf("Detect(nil) = (%v, %f), want (false, 0)", detected, changePercent)
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame1.Close()
	frame2 := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame2.Close()

	// First frame only stores the baseline.
	detected, changePercent := md.Detect(&frame1)
	if detected {
		t.Error("first frame should not detect motion")
	}
	if changePercent != 0 {
		t.Errorf("first frame changePercent = %f, want 0", changePercent)
	}

	detected, changePercent = md.Detect(&frame2)
	if detected {
		t.Errorf("identical frames should not detect motion, changePercent = %f", changePercent)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	blackFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer blackFrame.Close()

	whiteFrame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer whiteFrame.Close()
	whiteFrame.SetTo(gocv.NewScalar(255, 255, 255, 0))

	md.Detect(&blackFrame)

	detected, changePercent := md.Detect(&whiteFrame)
	if !detected {
		t.Errorf("black to white should detect motion, changePercent = %f", changePercent)
	}
	if changePercent < 50.0 {
		t.Errorf("changePercent = %f, expected > 50%% for a full-frame change", changePercent)
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	if testing.Short() {
		t.Skip("skipping test that requires GoCV Mat creation")
	}

	md := NewMotionDetector(1.0)
	defer md.Close()

	frame := gocv.NewMatWithSize(480, 640, gocv.MatTypeCV8UC3)
	defer frame.Close()

	md.Detect(&frame)
	if !md.primed {
		t.Error("detector should be primed after first Detect")
	}

	md.Reset()
	if md.primed {
		t.Error("detector should not be primed after Reset")
	}
	if !md.baseline.Empty() {
		t.Error("baseline should be empty after Reset")
	}

	// The next frame becomes the new baseline.
	if detected, _ := md.Detect(&frame); detected {
		t.Error("first frame after Reset should not detect motion")
	}
}

func TestMotionDetector_SetThreshold(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	md.SetThreshold(5.0)
	if md.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0 after SetThreshold", md.threshold)
	}

	// Non-positive values are ignored.
	md.SetThreshold(0)
	md.SetThreshold(-1.0)
	if md.threshold != 5.0 {
		t.Errorf("threshold = %f, want 5.0 after invalid SetThreshold calls", md.threshold)
	}
}

func TestMotionDetector_CloseMultiple(t *testing.T) {
	md := NewMotionDetector(1.0)

	md.Close()
	md.Close()
}
