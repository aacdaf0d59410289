package instance

import (
	"errors"
	"testing"

	"hexworld/internal/geom"

	"github.com/go-gl/mathgl/mgl32"
)

func TestMarkDirtyMergesRanges(t *testing.T) {
	s := NewStore(100)
	if _, _, ok := s.Dirty(); ok {
		t.Fatal("new store reports dirty")
	}
	s.MarkDirty(10, 20)
	s.MarkDirty(40, 50)
	s.MarkDirty(5, 6)
	lo, hi, ok := s.Dirty()
	if !ok || lo != 5 || hi != 50 {
		t.Errorf("dirty = [%d,%d) %v, want [5,50)", lo, hi, ok)
	}
}

func TestMarkDirtyClampsAndIgnoresEmpty(t *testing.T) {
	s := NewStore(8)
	s.MarkDirty(3, 3)
	s.MarkDirty(9, 12)
	if _, _, ok := s.Dirty(); ok {
		t.Fatal("empty or out-of-range marks produced a dirty range")
	}
	s.MarkDirty(-4, 100)
	lo, hi, _ := s.Dirty()
	if lo != 0 || hi != 8 {
		t.Errorf("dirty = [%d,%d), want [0,8)", lo, hi)
	}
}

func TestFlushUploadsOnlyDirtyRange(t *testing.T) {
	s := NewStore(16)
	sink := NewMemorySink(geom.HexTop(), 16)
	for i := 0; i < 16; i++ {
		s.Set(i, mgl32.Translate3D(float32(i), 0, 0), mgl32.Vec3{1, 0, 0})
	}
	s.MarkDirty(4, 8)
	if !s.Flush(sink) {
		t.Fatal("flush reported nothing uploaded")
	}
	if sink.Uploads != 1 || sink.Uploaded != 4 {
		t.Errorf("uploads=%d uploaded=%d", sink.Uploads, sink.Uploaded)
	}
	if sink.Transforms[5] != s.Transforms[5] {
		t.Error("dirty instance not mirrored")
	}
	if sink.Transforms[9] == s.Transforms[9] {
		t.Error("clean instance was uploaded")
	}
	if s.Flush(sink) {
		t.Error("second flush uploaded again")
	}
}

func TestResetClearsContents(t *testing.T) {
	s := NewStore(4)
	s.Set(2, mgl32.Ident4(), mgl32.Vec3{1, 1, 1})
	s.MarkDirty(2, 3)
	s.Reset()
	if s.Transforms[2] != (mgl32.Mat4{}) || s.Colors[2] != (mgl32.Vec3{}) {
		t.Error("reset left data behind")
	}
	if _, _, ok := s.Dirty(); ok {
		t.Error("reset left a dirty range")
	}
}

func TestMemoryFactory(t *testing.T) {
	f := &MemoryFactory{}
	sink, err := f.NewInstanced(geom.HexSide(), 3)
	if err != nil {
		t.Fatal(err)
	}
	sink.SetVisible(2)
	sink.Dispose()
	ms := f.Sinks[0]
	if ms.Visible != 2 || !ms.Disposed {
		t.Errorf("sink state = %+v", ms)
	}

	boom := errors.New("no context")
	f.Fail = boom
	if _, err := f.NewInstanced(geom.HexTop(), 1); !errors.Is(err, boom) {
		t.Errorf("err = %v, want wrapped %v", err, boom)
	}
}
