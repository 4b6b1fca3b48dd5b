package tray

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/jonboulle/clockwork"

	"github.com/meowbar/meowbar/internal/models"
)

func writeFrame(t *testing.T, dir, name string, size int) {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, size, size))
	img.Set(0, 0, color.RGBA{255, 0, 0, 255})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, name), buf.Bytes(), 0644); err != nil {
		t.Fatal(err)
	}
}

func decodeSize(t *testing.T, data []byte) (int, int) {
	t.Helper()
	img, err := png.Decode(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("frame is not a PNG: %v", err)
	}
	return img.Bounds().Dx(), img.Bounds().Dy()
}

func TestLoadFramesFromDirectory(t *testing.T) {
	dir := t.TempDir()
	table := models.DefaultStateTable()
	info := table.Info(models.StateWorking)
	for i := 0; i < info.FrameCount; i++ {
		writeFrame(t, dir, fmt.Sprintf("%s-%d.png", info.FramePrefix, i), 22)
	}

	a := NewAnimator(dir, table, clockwork.NewFakeClock(), nil)
	frames := a.LoadFrames(models.StateWorking)
	if len(frames) != info.FrameCount {
		t.Fatalf("loaded %d frames, want %d", len(frames), info.FrameCount)
	}
	if w, h := decodeSize(t, frames[0]); w != IconSize || h != IconSize {
		t.Errorf("frame size = %dx%d, want %dx%d", w, h, IconSize, IconSize)
	}
}

func TestLoadFramesFallsBackToBadge(t *testing.T) {
	dir := t.TempDir()
	// A corrupt frame is skipped like a missing one.
	if err := os.WriteFile(filepath.Join(dir, "idle-0.png"), []byte("not a png"), 0644); err != nil {
		t.Fatal(err)
	}

	a := NewAnimator(dir, nil, clockwork.NewFakeClock(), nil)
	frames := a.LoadFrames(models.StateIdle)
	if len(frames) != 1 {
		t.Fatalf("loaded %d frames, want 1 fallback badge", len(frames))
	}
	if w, h := decodeSize(t, frames[0]); w != IconSize || h != IconSize {
		t.Errorf("badge size = %dx%d, want %dx%d", w, h, IconSize, IconSize)
	}
}

func TestAdvanceFrame(t *testing.T) {
	dir := t.TempDir()
	table := models.DefaultStateTable()
	info := table.Info(models.StateStarting)
	for i := 0; i < info.FrameCount; i++ {
		writeFrame(t, dir, fmt.Sprintf("%s-%d.png", info.FramePrefix, i), IconSize+i)
	}

	a := NewAnimator(dir, table, clockwork.NewFakeClock(), nil)
	defer a.Stop()

	a.Play(models.StateIdle)
	if frame := a.AdvanceFrame(); frame != nil {
		t.Errorf("AdvanceFrame() with a single badge frame returned a frame")
	}

	a.Play(models.StateStarting)
	frames := a.LoadFrames(models.StateStarting)
	for i := 1; i <= info.FrameCount; i++ {
		want := frames[i%info.FrameCount]
		if got := a.AdvanceFrame(); !bytes.Equal(got, want) {
			t.Fatalf("AdvanceFrame() #%d returned the wrong frame", i)
		}
	}
}

func TestAnimatorTicks(t *testing.T) {
	dir := t.TempDir()
	table := models.DefaultStateTable()
	info := table.Info(models.StateWorking)
	for i := 0; i < info.FrameCount; i++ {
		writeFrame(t, dir, fmt.Sprintf("%s-%d.png", info.FramePrefix, i), 10+i)
	}

	clock := clockwork.NewFakeClock()
	icons := make(chan []byte, 16)
	a := NewAnimator(dir, table, clock, func(b []byte) { icons <- b })
	defer a.Stop()

	a.Play(models.StateWorking)
	frames := a.LoadFrames(models.StateWorking)

	next := func() []byte {
		t.Helper()
		select {
		case b := <-icons:
			return b
		case <-time.After(2 * time.Second):
			t.Fatal("no icon set")
			return nil
		}
	}

	if !bytes.Equal(next(), frames[0]) {
		t.Fatal("Play did not show the first frame")
	}
	clock.Advance(info.AnimationInterval)
	if !bytes.Equal(next(), frames[1]) {
		t.Fatal("tick did not advance to the second frame")
	}
}
