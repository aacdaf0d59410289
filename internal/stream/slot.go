package stream

import (
	"log"

	"hexworld/internal/hex"

	"github.com/go-gl/mathgl/mgl32"
	colorful "github.com/lucasb-eyer/go-colorful"
	"github.com/muesli/gamut"
)

// SlotState is the fill state of one fixed instance range.
type SlotState uint8

const (
	SlotEmpty SlotState = iota
	SlotFilling
	SlotComplete
)

func (s SlotState) String() string {
	switch s {
	case SlotEmpty:
		return "empty"
	case SlotFilling:
		return "filling"
	case SlotComplete:
		return "complete"
	}
	return "unknown"
}

// Status is the result of driving the build queue.
type Status uint8

const (
	Completed Status = iota
	Pending
)

func (s Status) String() string {
	if s == Completed {
		return "completed"
	}
	return "pending"
}

// buildTask fills one chunk into one slot. row and write form the resume cursor.
type buildTask struct {
	slot  int
	chunk hex.ChunkCoord
	start int // first instance index of the slot
	row   int // next chunk-local row to fill
	write int // instances written so far
}

const tintCount = 12

// chunkTints is the debug palette; neighbouring chunks always get different entries.
var chunkTints = func() [tintCount]mgl32.Vec3 {
	var out [tintCount]mgl32.Vec3
	colors, err := gamut.Generate(tintCount, gamut.PastelGenerator{})
	if err != nil {
		log.Panicf("stream: failed to generate chunk tint palette: %v", err)
	}
	for i, c := range colors {
		cf, _ := colorful.MakeColor(c)
		cf = cf.Clamped()
		out[i] = mgl32.Vec3{float32(cf.R), float32(cf.G), float32(cf.B)}
	}
	return out
}()

func chunkTint(c hex.ChunkCoord) mgl32.Vec3 {
	i := (c.X*7 + c.Y*13) % tintCount
	if i < 0 {
		i += tintCount
	}
	return chunkTints[i]
}
