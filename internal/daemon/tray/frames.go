package tray

import (
	"bytes"
	"fmt"
	"image"
	"image/color"
	"image/png"
	"log"
	"os"
	"path/filepath"
	"sync"

	"github.com/jonboulle/clockwork"
	"github.com/nfnt/resize"

	"github.com/meowbar/meowbar/internal/models"
)

// IconSize is the pixel size of tray frames (22pt at 2x).
const IconSize = 44

// stateColors are the fallback badge colors, keyed by StateInfo.Color.
var stateColors = map[string]color.RGBA{
	"gray":   {142, 142, 147, 255},
	"yellow": {255, 204, 0, 255},
	"blue":   {0, 122, 255, 255},
	"green":  {52, 199, 89, 255},
	"red":    {255, 59, 48, 255},
	"gold":   {255, 179, 0, 255},
	"purple": {175, 82, 222, 255},
	"teal":   {48, 176, 199, 255},
}

// Animator plays the frame loop of the displayed state.
type Animator struct {
	dir     string
	table   models.StateTable
	clock   clockwork.Clock
	setIcon func([]byte)

	mu     sync.Mutex
	cache  map[models.CatState][][]byte
	state  models.CatState
	frames [][]byte
	index  int

	ticker   clockwork.Ticker
	done     chan struct{}
	wg       sync.WaitGroup
	stopOnce sync.Once
}

// NewAnimator creates an animator reading frames from dir and pushing each
// frame to setIcon.
func NewAnimator(dir string, table models.StateTable, clock clockwork.Clock, setIcon func([]byte)) *Animator {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	if table == nil {
		table = models.DefaultStateTable()
	}
	return &Animator{
		dir:     dir,
		table:   table,
		clock:   clock,
		setIcon: setIcon,
		cache:   make(map[models.CatState][][]byte),
		done:    make(chan struct{}),
	}
}

// LoadFrames returns the encoded frames for state. Missing or unreadable
// frame files fall back to a single colored badge.
func (a *Animator) LoadFrames(state models.CatState) [][]byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.loadFramesLocked(state)
}

func (a *Animator) loadFramesLocked(state models.CatState) [][]byte {
	if frames, ok := a.cache[state]; ok {
		return frames
	}

	info := a.table.Info(state)
	var frames [][]byte
	for i := 0; i < info.FrameCount; i++ {
		path := filepath.Join(a.dir, fmt.Sprintf("%s-%d.png", info.FramePrefix, i))
		frame, err := loadFrame(path)
		if err != nil {
			if !os.IsNotExist(err) {
				log.Printf("[tray] Skipping frame %s: %v", path, err)
			}
			continue
		}
		frames = append(frames, frame)
	}

	if len(frames) == 0 {
		badge, err := badgeIcon(info.Color)
		if err != nil {
			log.Printf("[tray] Failed to render fallback icon: %v", err)
		} else {
			frames = [][]byte{badge}
		}
	}

	a.cache[state] = frames
	return frames
}

// Play switches to state's frames, shows the first one and restarts the
// frame ticker at the state's interval.
func (a *Animator) Play(state models.CatState) {
	a.mu.Lock()
	a.state = state
	a.frames = a.loadFramesLocked(state)
	a.index = 0
	var first []byte
	if len(a.frames) > 0 {
		first = a.frames[0]
	}

	interval := a.table.Info(state).AnimationInterval
	if a.ticker == nil {
		a.ticker = a.clock.NewTicker(interval)
		a.wg.Add(1)
		go a.run(a.ticker)
	} else {
		a.ticker.Reset(interval)
	}
	a.mu.Unlock()

	if first != nil && a.setIcon != nil {
		a.setIcon(first)
	}
}

// AdvanceFrame moves to the next frame and returns it. It returns nil when
// the current state has a single frame (nothing to animate).
func (a *Animator) AdvanceFrame() []byte {
	a.mu.Lock()
	defer a.mu.Unlock()
	if len(a.frames) <= 1 {
		return nil
	}
	a.index = (a.index + 1) % len(a.frames)
	return a.frames[a.index]
}

// Stop halts the animation and waits for the ticker goroutine.
func (a *Animator) Stop() {
	a.stopOnce.Do(func() {
		close(a.done)
		a.mu.Lock()
		if a.ticker != nil {
			a.ticker.Stop()
		}
		a.mu.Unlock()
		a.wg.Wait()
	})
}

func (a *Animator) run(ticker clockwork.Ticker) {
	defer a.wg.Done()
	for {
		select {
		case <-a.done:
			return
		case <-ticker.Chan():
			if frame := a.AdvanceFrame(); frame != nil && a.setIcon != nil {
				a.setIcon(frame)
			}
		}
	}
}

// loadFrame decodes a PNG frame, scales it to IconSize and re-encodes it.
func loadFrame(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	img, err := png.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("failed to decode %s: %w", path, err)
	}

	b := img.Bounds()
	if b.Dx() != IconSize || b.Dy() != IconSize {
		img = resize.Resize(IconSize, IconSize, img, resize.Lanczos3)
	}
	return encodePNG(img)
}

// badgeIcon draws a filled circle in the state's color.
func badgeIcon(name string) ([]byte, error) {
	c, ok := stateColors[name]
	if !ok {
		c = stateColors["gray"]
	}

	img := image.NewRGBA(image.Rect(0, 0, IconSize, IconSize))
	center := float64(IconSize) / 2
	radius := center - 6
	for y := 0; y < IconSize; y++ {
		for x := 0; x < IconSize; x++ {
			dx := float64(x) + 0.5 - center
			dy := float64(y) + 0.5 - center
			if dx*dx+dy*dy <= radius*radius {
				img.SetRGBA(x, y, c)
			}
		}
	}
	return encodePNG(img)
}

func encodePNG(img image.Image) ([]byte, error) {
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return nil, fmt.Errorf("failed to encode icon: %w", err)
	}
	return buf.Bytes(), nil
}
