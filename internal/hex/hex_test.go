package hex

import "testing"

func TestOffsetRoundTrip(t *testing.T) {
	for col := -7; col <= 7; col++ {
		for row := -7; row <= 7; row++ {
			a := FromOffset(col, row)
			c, r := ToOffset(a)
			if c != col || r != row {
				t.Fatalf("offset (%d,%d) -> %v -> (%d,%d)", col, row, a, c, r)
			}
		}
	}
}

func TestKeyRoundTrip(t *testing.T) {
	cases := []Axial{{0, 0}, {1, -1}, {-5, 9}, {1 << 20, -(1 << 20)}, {-1, -1}}
	for _, a := range cases {
		if got := FromKey(a.Key()); got != a {
			t.Errorf("FromKey(%v.Key()) = %v", a, got)
		}
	}
}

func TestDistance(t *testing.T) {
	origin := Axial{}
	for _, n := range origin.Neighbors() {
		if d := Distance(origin, n); d != 1 {
			t.Errorf("neighbor %v at distance %d", n, d)
		}
	}
	if d := Distance(Axial{Q: 3, R: -1}, Axial{Q: -2, R: 2}); d != 5 {
		t.Errorf("expected 5, got %d", d)
	}
}

func TestChunkOfCoversChunkHexes(t *testing.T) {
	d := Dims{Cols: 4, Rows: 4}
	for _, c := range Window(ChunkCoord{X: 0, Y: 0}, 2) {
		for lr := 0; lr < d.Rows; lr++ {
			for lc := 0; lc < d.Cols; lc++ {
				a := d.HexAt(c, lc, lr)
				if got := d.ChunkOf(a); got != c {
					t.Fatalf("hex %v of chunk %v maps to %v", a, c, got)
				}
				if !d.Bounds(c).Contains(a) {
					t.Fatalf("hex %v not within bounds of %v", a, c)
				}
			}
		}
	}
}

func TestWindowSize(t *testing.T) {
	w := Window(ChunkCoord{X: 3, Y: -2}, 2)
	if len(w) != 25 {
		t.Fatalf("expected 25 chunks, got %d", len(w))
	}
	for _, c := range w {
		if Chebyshev(c, ChunkCoord{X: 3, Y: -2}) > 2 {
			t.Errorf("chunk %v outside radius", c)
		}
	}
}

func TestFromPlaneInvertsCenter(t *testing.T) {
	for q := -6; q <= 6; q++ {
		for r := -6; r <= 6; r++ {
			a := Axial{Q: q, R: r}
			x, y := a.Center(2.5)
			// nudge inside the hex; the inradius is size*sqrt(3)/2
			for _, d := range [][2]float64{{0, 0}, {0.9, 0}, {-0.9, 0.5}, {0.3, -1.8}} {
				if got := FromPlane(x+d[0], y+d[1], 2.5); got != a {
					t.Fatalf("FromPlane near %v offset %v = %v", a, d, got)
				}
			}
		}
	}
}
