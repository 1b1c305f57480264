package decor

import (
	"strings"
	"testing"

	"github.com/motifhq/motif/pkg/errors"
)

const tiltDoc = `<svg xmlns="http://www.w3.org/2000/svg" viewBox="0 0 200 100" width="200" height="100">` +
	`<rect x="10" y="10" width="180" height="80" fill="none" stroke="#1a1a2e"/></svg>`

func TestTiltWrapsContentInRotationGroup(t *testing.T) {
	out, err := Tilt(tiltDoc, 15)
	if err != nil {
		t.Fatalf("Tilt: %v", err)
	}
	if !strings.Contains(out, `<g transform="rotate(15 100 50)">`) {
		t.Errorf("missing rotation group:\n%s", out)
	}
	if !strings.Contains(out, `</g></svg>`) {
		t.Errorf("content not wrapped to the end of the root:\n%s", out)
	}
}

func TestTiltGrowsViewBox(t *testing.T) {
	// A 90 degree turn of a 200x100 frame needs a 100x200 region around the
	// same center.
	out, err := Tilt(tiltDoc, 90)
	if err != nil {
		t.Fatalf("Tilt: %v", err)
	}
	if !strings.Contains(out, `viewBox="50 -50 100 200"`) {
		t.Errorf("viewBox not grown to the rotated bounding box:\n%s", out)
	}
}

func TestTiltZeroNoop(t *testing.T) {
	out, err := Tilt(tiltDoc, 0)
	if err != nil || out != tiltDoc {
		t.Errorf("zero tilt changed the document (err=%v)", err)
	}
}

func TestTiltRangeValidation(t *testing.T) {
	for _, deg := range []int{360, -360, 720} {
		out, err := Tilt(tiltDoc, deg)
		if err == nil {
			t.Errorf("Tilt(%d) accepted", deg)
		}
		if !errors.Is(err, errors.ErrCodeInvalidTilt) {
			t.Errorf("Tilt(%d) wrong code: %v", deg, err)
		}
		if out != tiltDoc {
			t.Errorf("Tilt(%d) modified the document on error", deg)
		}
	}
}

func TestTiltNegativeAngle(t *testing.T) {
	out, err := Tilt(tiltDoc, -30)
	if err != nil {
		t.Fatalf("Tilt: %v", err)
	}
	if !strings.Contains(out, `rotate(-30 `) {
		t.Errorf("negative angle not applied:\n%s", out)
	}
}
