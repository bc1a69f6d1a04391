package capture

import (
	"image"
	"image/color"
	"testing"

	"gocv.io/x/gocv"
)

func TestNewMotionDetector(t *testing.T) {
	tests := []struct {
		name      string
		threshold float64
		want      float64
	}{
		{
			name:      "explicit threshold",
			threshold: 5.0,
			want:      5.0,
		},
		{
			name:      "zero selects default",
			threshold: 0,
			want:      DefaultMotionThreshold,
		},
		{
			name:      "negative selects default",
			threshold: -3,
			want:      DefaultMotionThreshold,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			md := NewMotionDetector(tt.threshold)
			defer md.Close()

			if got := md.Threshold(); got != tt.want {
				t.Errorf("Threshold() = %f, want %f", got, tt.want)
			}
			if md.primed {
				t.Error("motion detector should not be primed initially")
			}
		})
	}
}

func TestMotionDetector_NoMotion(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	frame1 := SolidFrame(640, 480, color.RGBA{A: 255})
	defer frame1.Close()
	frame2 := SolidFrame(640, 480, color.RGBA{A: 255})
	defer frame2.Close()

	detected, changed := md.Detect(&frame1)
	if detected || changed != 0 {
		t.Errorf("first frame = (%v, %f), want (false, 0)", detected, changed)
	}

	detected, changed = md.Detect(&frame2)
	if detected {
		t.Errorf("identical frames should not detect motion, changed = %f", changed)
	}
}

func TestMotionDetector_WithMotion(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	black := SolidFrame(640, 480, color.RGBA{A: 255})
	defer black.Close()
	white := SolidFrame(640, 480, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	defer white.Close()

	md.Detect(&black)
	detected, changed := md.Detect(&white)
	if !detected {
		t.Errorf("black to white should detect motion, changed = %f", changed)
	}
	if changed < 50.0 {
		t.Errorf("changed = %f, expected > 50%% for black to white transition", changed)
	}
}

func TestMotionDetector_PartialChange(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	before := SolidFrame(640, 480, color.RGBA{A: 255})
	defer before.Close()
	after := SolidFrame(640, 480, color.RGBA{A: 255})
	defer after.Close()
	gocv.Rectangle(&after, image.Rect(0, 0, 320, 480), color.RGBA{R: 255, G: 255, B: 255, A: 255}, -1)

	md.Detect(&before)
	detected, changed := md.Detect(&after)
	if !detected {
		t.Fatalf("half frame change should detect motion, changed = %f", changed)
	}
	if changed < 40 || changed > 60 {
		t.Errorf("changed = %f, want about 50", changed)
	}
}

func TestMotionDetector_Reset(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	black := SolidFrame(64, 48, color.RGBA{A: 255})
	defer black.Close()
	white := SolidFrame(64, 48, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	defer white.Close()

	md.Detect(&black)
	if !md.primed {
		t.Error("detector should be primed after first Detect")
	}

	md.Reset()
	if detected, _ := md.Detect(&white); detected {
		t.Error("first frame after Reset should not detect motion")
	}
}

func TestMotionDetector_SizeChangeReprimes(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	small := SolidFrame(320, 240, color.RGBA{A: 255})
	defer small.Close()
	wide := SolidFrame(640, 240, color.RGBA{R: 255, G: 255, B: 255, A: 255})
	defer wide.Close()

	md.Detect(&small)
	if detected, _ := md.Detect(&wide); detected {
		t.Error("a new aspect ratio should prime rather than compare")
	}
}

func TestMotionDetector_EmptyFrame(t *testing.T) {
	md := NewMotionDetector(1.0)
	defer md.Close()

	empty := gocv.NewMat()
	defer empty.Close()

	if detected, changed := md.Detect(&empty); detected || changed != 0 {
		t.Errorf("empty frame = (%v, %f), want (false, 0)", detected, changed)
	}
	if detected, _ := md.Detect(nil); detected {
		t.Error("nil frame should not detect motion")
	}
}

func TestMotionDetector_Close_Multiple(t *testing.T) {
	md := NewMotionDetector(1.0)

	// Close multiple times should not panic
	md.Close()
	md.Close()

	frame := SolidFrame(64, 48, color.RGBA{A: 255})
	defer frame.Close()
	if detected, _ := md.Detect(&frame); detected {
		t.Error("a closed detector should not report motion")
	}
}
