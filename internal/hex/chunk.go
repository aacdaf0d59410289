package hex

// ChunkCoord addresses a rectangular block of hexes in offset space.
type ChunkCoord struct {
	X int `yaml:"wx"`
	Y int `yaml:"wy"`
}

// Dims describes the size of a chunk in offset columns and rows.
type Dims struct {
	Cols int
	Rows int
}

// Count returns the number of hexes per chunk.
func (d Dims) Count() int {
	return d.Cols * d.Rows
}

// Origin returns the offset (col, row) of the chunk's first hex.
func (d Dims) Origin(c ChunkCoord) (col, row int) {
	return c.X * d.Cols, c.Y * d.Rows
}

// HexAt returns the axial coordinate of the hex at chunk-local (lc, lr).
func (d Dims) HexAt(c ChunkCoord, lc, lr int) Axial {
	col, row := d.Origin(c)
	return FromOffset(col+lc, row+lr)
}

// ChunkOf returns the chunk containing the given hex.
func (d Dims) ChunkOf(a Axial) ChunkCoord {
	col, row := ToOffset(a)
	return ChunkCoord{X: floorDiv(col, d.Cols), Y: floorDiv(row, d.Rows)}
}

// Bounds returns the offset-space rectangle covered by a chunk.
func (d Dims) Bounds(c ChunkCoord) Rect {
	col, row := d.Origin(c)
	return Rect{MinCol: col, MinRow: row, MaxCol: col + d.Cols - 1, MaxRow: row + d.Rows - 1}
}

// DistSq is the squared chunk distance between a and b.
func DistSq(a, b ChunkCoord) int {
	dx := a.X - b.X
	dy := a.Y - b.Y
	return dx*dx + dy*dy
}

// Chebyshev returns the chessboard distance between two chunk coordinates.
func Chebyshev(a, b ChunkCoord) int {
	return max(abs(a.X-b.X), abs(a.Y-b.Y))
}

// Window returns every chunk within Chebyshev radius of center, row-major.
func Window(center ChunkCoord, radius int) []ChunkCoord {
	side := 2*radius + 1
	out := make([]ChunkCoord, 0, side*side)
	for dy := -radius; dy <= radius; dy++ {
		for dx := -radius; dx <= radius; dx++ {
			out = append(out, ChunkCoord{X: center.X + dx, Y: center.Y + dy})
		}
	}
	return out
}

// Rect is an inclusive rectangle in odd-q offset space.
type Rect struct {
	MinCol, MinRow int
	MaxCol, MaxRow int
}

// Contains reports whether the hex lies inside the rectangle.
func (r Rect) Contains(a Axial) bool {
	col, row := ToOffset(a)
	return col >= r.MinCol && col <= r.MaxCol && row >= r.MinRow && row <= r.MaxRow
}

// Union returns the smallest rectangle covering r and o.
func (r Rect) Union(o Rect) Rect {
	return Rect{
		MinCol: min(r.MinCol, o.MinCol),
		MinRow: min(r.MinRow, o.MinRow),
		MaxCol: max(r.MaxCol, o.MaxCol),
		MaxRow: max(r.MaxRow, o.MaxRow),
	}
}

// Width returns the number of columns.
func (r Rect) Width() int { return r.MaxCol - r.MinCol + 1 }

// Height returns the number of rows.
func (r Rect) Height() int { return r.MaxRow - r.MinRow + 1 }
