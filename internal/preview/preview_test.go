package preview

import (
	"bytes"
	"errors"
	"image/png"
	"testing"

	"hexworld/internal/instance"

	"github.com/go-gl/mathgl/mgl32"
)

func near(a, b uint8) bool {
	d := int(a) - int(b)
	return d >= -2 && d <= 2
}

func twoHexes() *instance.Store {
	s := instance.NewStore(2)
	s.Set(0, mgl32.Translate3D(0, 1, 0).Mul4(mgl32.Scale3D(1, 1, 1)), mgl32.Vec3{1, 0, 0})
	s.Set(1, mgl32.Translate3D(1.5, 1, 0.866).Mul4(mgl32.Scale3D(1, 1, 1)), mgl32.Vec3{0, 0, 1})
	return s
}

func TestRenderPaintsHexCenters(t *testing.T) {
	opts := DefaultOptions()
	opts.PixelsPerHex = 10
	img, err := Render(twoHexes(), 2, opts)
	if err != nil {
		t.Fatal(err)
	}
	// bounds are [-1, 2.5] x [-1, 1.866] world units at 10 px/unit
	if got := img.Bounds().Dx(); got != 35 {
		t.Errorf("width = %d", got)
	}
	red := img.RGBAAt(10, 10)
	if !near(red.R, 255) || !near(red.G, 0) || !near(red.B, 0) {
		t.Errorf("first center = %v", red)
	}
	blue := img.RGBAAt(25, 18)
	if !near(blue.B, 255) || !near(blue.R, 0) {
		t.Errorf("second center = %v", blue)
	}
	if corner := img.RGBAAt(0, img.Bounds().Dy()-1); corner != opts.Background {
		t.Errorf("corner = %v, want background", corner)
	}
}

func TestRenderScalesAndCaptions(t *testing.T) {
	opts := DefaultOptions()
	opts.Width = 70
	opts.Caption = "seed 42"
	img, err := Render(twoHexes(), 2, opts)
	if err != nil {
		t.Fatal(err)
	}
	if img.Bounds().Dx() != 70 {
		t.Fatalf("width = %d", img.Bounds().Dx())
	}
	// some caption pixels differ from the background
	lit := 0
	for x := 0; x < 70; x++ {
		for y := img.Bounds().Dy() - captionHeight; y < img.Bounds().Dy(); y++ {
			if img.RGBAAt(x, y) != opts.Background {
				lit++
			}
		}
	}
	if lit == 0 {
		t.Error("caption not drawn")
	}

	var buf bytes.Buffer
	if err := Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	back, err := png.Decode(&buf)
	if err != nil {
		t.Fatal(err)
	}
	if back.Bounds() != img.Bounds() {
		t.Errorf("decoded bounds %v", back.Bounds())
	}
}

func TestRenderEmpty(t *testing.T) {
	if _, err := Render(instance.NewStore(4), 0, DefaultOptions()); !errors.Is(err, ErrEmpty) {
		t.Errorf("err = %v", err)
	}
}

func TestHeightShadeBrightens(t *testing.T) {
	s := instance.NewStore(2)
	grey := mgl32.Vec3{0.4, 0.4, 0.4}
	s.Set(0, mgl32.Translate3D(0, 0, 0), grey)
	s.Set(1, mgl32.Translate3D(3, 5, 0), grey)
	opts := DefaultOptions()
	opts.PixelsPerHex = 8
	img, err := Render(s, 2, opts)
	if err != nil {
		t.Fatal(err)
	}
	low, high := img.RGBAAt(8, 8), img.RGBAAt(32, 8)
	if high.R <= low.R {
		t.Errorf("high hex %v not brighter than low %v", high, low)
	}
}
