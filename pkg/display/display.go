// Package display renders the generator state for humans.
// It's an optional capability: use Nop when there is no display.
package display

import (
	"bytes"
	"fmt"
	"io"
	"math"
	"sync"

	"github.com/golang/glog"

	"github.com/robotalks/siggen/pkg/device"
)

// Display is refreshed after the settings change.
type Display interface {
	Refresh(device.Settings)
}

// RefreshFunc is the func form of Display.
type RefreshFunc func(device.Settings)

// Refresh implements Display.
func (f RefreshFunc) Refresh(s device.Settings) {
	f(s)
}

// Nop is the Display used when the capability is absent.
type Nop struct{}

// Refresh implements Display.
func (Nop) Refresh(device.Settings) {}

// Multi refreshes several displays in order.
type Multi []Display

// Refresh implements Display.
func (m Multi) Refresh(s device.Settings) {
	for _, d := range m {
		d.Refresh(s)
	}
}

// Geometry of the waveform strip, in character cells.
const (
	DefaultWidth  = 64
	DefaultHeight = 5

	sineCycle      = 32
	trianglePeriod = 16
)

// Text draws the layout of the 128x32 OLED as text:
//
//	F0: 1000 Hz
//	P0: 0 deg
//	Mode: Sine
//
// followed by a waveform sketch.
type Text struct {
	Writer io.Writer
	Width  int
	Height int

	lock sync.Mutex
}

// NewText creates a Text display with default geometry.
func NewText(w io.Writer) *Text {
	return &Text{Writer: w, Width: DefaultWidth, Height: DefaultHeight}
}

// Refresh implements Display.
func (t *Text) Refresh(s device.Settings) {
	t.lock.Lock()
	defer t.lock.Unlock()
	if _, err := t.Writer.Write(t.Render(s)); err != nil {
		glog.Warningf("display refresh error: %v", err)
	}
}

// Render returns the frame for the settings.
func (t *Text) Render(s device.Settings) []byte {
	var buf bytes.Buffer
	fmt.Fprintf(&buf, "F%d: %d Hz\n", s.ActiveFreq, s.ActiveFrequency())
	fmt.Fprintf(&buf, "P%d: %d deg\n", s.ActivePhase, s.ActivePhaseWord())
	fmt.Fprintf(&buf, "Mode: %s\n", s.Mode)
	for _, row := range Waveform(s.Mode, t.width(), t.height()) {
		buf.WriteString(row)
		buf.WriteByte('\n')
	}
	return buf.Bytes()
}

func (t *Text) width() int {
	if t.Width > 0 {
		return t.Width
	}
	return DefaultWidth
}

func (t *Text) height() int {
	if t.Height > 1 {
		return t.Height
	}
	return DefaultHeight
}

// Waveform sketches the waveform of mode into rows of '*' and ' '.
// Sine draws one cycle per 32 columns, triangle one period per 16.
func Waveform(mode device.Mode, width, height int) []string {
	grid := make([][]byte, height)
	for y := range grid {
		grid[y] = bytes.Repeat([]byte{' '}, width)
	}
	amp := float64(height-1) / 2
	for x := 0; x < width; x++ {
		var v float64 // in [-1, 1]
		if mode == device.ModeTriangle {
			p := x % trianglePeriod
			half := trianglePeriod / 2
			if p < half {
				v = -1 + 2*float64(p)/float64(half)
			} else {
				v = 1 - 2*float64(p-half)/float64(half)
			}
		} else {
			v = math.Sin(float64(x) * 2 * math.Pi / sineCycle)
		}
		y := int(math.Round(amp - v*amp))
		grid[y][x] = '*'
	}
	rows := make([]string, height)
	for y, row := range grid {
		rows[y] = string(bytes.TrimRight(row, " "))
	}
	return rows
}
