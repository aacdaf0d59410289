// Package preview rasterizes resident top instances into a top-down image,
// for headless inspection of what the streamer produced.
package preview

import (
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"math"

	"hexworld/internal/instance"

	"github.com/lucasb-eyer/go-colorful"
	"golang.org/x/image/draw"
	"golang.org/x/image/font"
	"golang.org/x/image/font/basicfont"
	"golang.org/x/image/math/fixed"
)

// ErrEmpty is returned when there is nothing to draw.
var ErrEmpty = errors.New("preview: no instances")

const captionHeight = 18

// Options control the raster.
type Options struct {
	PixelsPerHex float64 // hex circumradius in pixels before scaling
	Width        int     // final width; 0 keeps the native size
	Caption      string
	Background   color.RGBA
	// HeightShade brightens tops toward white by up to this fraction with height.
	HeightShade float64
}

func DefaultOptions() Options {
	return Options{
		PixelsPerHex: 6,
		Background:   color.RGBA{R: 18, G: 22, B: 30, A: 255},
		HeightShade:  0.25,
	}
}

type disc struct {
	x, z, size, h float64
	c             colorful.Color
}

// Render draws the first n instances of store. Each instance is a flat-top hex
// at its translation with the radius of its x scale.
func Render(store *instance.Store, n int, opts Options) (*image.RGBA, error) {
	n = min(n, store.Len())
	if n <= 0 {
		return nil, ErrEmpty
	}
	if opts.PixelsPerHex <= 0 {
		opts.PixelsPerHex = DefaultOptions().PixelsPerHex
	}

	discs := make([]disc, n)
	minX, minZ := math.Inf(1), math.Inf(1)
	maxX, maxZ := math.Inf(-1), math.Inf(-1)
	minH, maxH := math.Inf(1), math.Inf(-1)
	for i := range discs {
		m := store.Transforms[i]
		c := store.Colors[i]
		d := disc{
			x: float64(m[12]), h: float64(m[13]), z: float64(m[14]),
			size: math.Abs(float64(m[0])),
			c:    colorful.Color{R: float64(c[0]), G: float64(c[1]), B: float64(c[2])},
		}
		discs[i] = d
		minX, maxX = math.Min(minX, d.x-d.size), math.Max(maxX, d.x+d.size)
		minZ, maxZ = math.Min(minZ, d.z-d.size), math.Max(maxZ, d.z+d.size)
		minH, maxH = math.Min(minH, d.h), math.Max(maxH, d.h)
	}

	// pixels per world unit, from the first hex's size
	ppu := opts.PixelsPerHex / math.Max(discs[0].size, 1e-6)
	w := int(math.Ceil((maxX - minX) * ppu))
	h := int(math.Ceil((maxZ - minZ) * ppu))
	img := image.NewRGBA(image.Rect(0, 0, max(w, 1), max(h, 1)))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	white := colorful.Color{R: 1, G: 1, B: 1}
	for _, d := range discs {
		t := 0.0
		if maxH > minH {
			t = (d.h - minH) / (maxH - minH) * opts.HeightShade
		}
		r, g, b := d.c.BlendLab(white, t).Clamped().RGB255()
		fillHex(img, (d.x-minX)*ppu, (d.z-minZ)*ppu, d.size*ppu, color.RGBA{R: r, G: g, B: b, A: 255})
	}

	if opts.Width > 0 && opts.Width != img.Bounds().Dx() {
		scaled := image.NewRGBA(image.Rect(0, 0, opts.Width, max(1, img.Bounds().Dy()*opts.Width/img.Bounds().Dx())))
		draw.ApproxBiLinear.Scale(scaled, scaled.Bounds(), img, img.Bounds(), draw.Src, nil)
		img = scaled
	}
	if opts.Caption != "" {
		img = caption(img, opts.Caption, opts.Background)
	}
	return img, nil
}

// fillHex paints a flat-top hexagon of circumradius r centered at (cx, cy).
func fillHex(img *image.RGBA, cx, cy, r float64, c color.RGBA) {
	half := r * math.Sqrt(3) / 2
	b := img.Bounds()
	x0, x1 := max(b.Min.X, int(math.Floor(cx-r))), min(b.Max.X-1, int(math.Ceil(cx+r)))
	y0, y1 := max(b.Min.Y, int(math.Floor(cy-half))), min(b.Max.Y-1, int(math.Ceil(cy+half)))
	for y := y0; y <= y1; y++ {
		dy := math.Abs(float64(y) + 0.5 - cy)
		if dy > half {
			continue
		}
		for x := x0; x <= x1; x++ {
			dx := math.Abs(float64(x) + 0.5 - cx)
			if math.Sqrt(3)*dx+dy <= math.Sqrt(3)*r {
				img.SetRGBA(x, y, c)
			}
		}
	}
}

func caption(src *image.RGBA, text string, bg color.RGBA) *image.RGBA {
	sb := src.Bounds()
	out := image.NewRGBA(image.Rect(0, 0, sb.Dx(), sb.Dy()+captionHeight))
	draw.Draw(out, out.Bounds(), image.NewUniform(bg), image.Point{}, draw.Src)
	draw.Draw(out, sb, src, sb.Min, draw.Src)
	d := font.Drawer{
		Dst:  out,
		Src:  image.NewUniform(color.RGBA{R: 230, G: 230, B: 220, A: 255}),
		Face: basicfont.Face7x13,
		Dot:  fixed.P(4, sb.Dy()+captionHeight-5),
	}
	d.DrawString(text)
	return out
}

// Encode writes img as PNG.
func Encode(w io.Writer, img image.Image) error {
	return png.Encode(w, img)
}
