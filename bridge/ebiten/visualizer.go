// Package ebiten draws the player's status with Ebiten.
package ebiten

import (
	"fmt"
	"image/color"
	"time"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/vector"
	"github.com/user-none/playtune/tune"
	"github.com/user-none/playtune/ui"
)

// Logical screen layout, scaled by Ebiten to the window.
const (
	ScreenWidth = 640

	headerHeight = 56
	rowHeight    = 28
	footerHeight = 24
	labelWidth   = 88
	margin       = 8
)

var (
	colorBackground = color.RGBA{0x10, 0x12, 0x18, 0xff}
	colorWhiteKey   = color.RGBA{0x3a, 0x3e, 0x48, 0xff}
	colorBlackKey   = color.RGBA{0x22, 0x25, 0x2d, 0xff}
	colorProgress   = color.RGBA{0x50, 0x90, 0xd0, 0xff}
	colorTrack      = color.RGBA{0x2a, 0x2d, 0x36, 0xff}

	// One color per channel, repeated past the end.
	channelColors = []color.RGBA{
		{0xf0, 0x60, 0x50, 0xff},
		{0x60, 0xd0, 0x70, 0xff},
		{0x60, 0x90, 0xf0, 0xff},
		{0xf0, 0xc0, 0x40, 0xff},
		{0xc0, 0x70, 0xe0, 0xff},
		{0x50, 0xd0, 0xd0, 0xff},
	}
)

// Visualizer draws one keyboard strip per channel with its sounding note
// lit, under a header naming the track.
type Visualizer struct {
	channels int
}

// NewVisualizer creates a visualizer for the given number of channels.
func NewVisualizer(channels int) *Visualizer {
	return &Visualizer{channels: channels}
}

// ScreenHeight returns the logical height needed for the channel rows.
func (v *Visualizer) ScreenHeight() int {
	return headerHeight + v.channels*rowHeight + footerHeight
}

// Layout implements ebiten.Game.
func (v *Visualizer) Layout(outsideWidth, outsideHeight int) (int, int) {
	return ScreenWidth, v.ScreenHeight()
}

// Draw renders s to screen.
func (v *Visualizer) Draw(screen *ebiten.Image, s ui.Status) {
	screen.Fill(colorBackground)

	title := "(no tracks)"
	if s.Name != "" {
		title = fmt.Sprintf("%d/%d  %s", s.Track+1, s.Tracks, s.Name)
	}
	ebitenutil.DebugPrintAt(screen, title, margin, margin)

	state := "playing"
	switch {
	case s.Done:
		state = "done"
	case s.Paused:
		state = "paused"
	}
	length := formatClock(s.Length)
	if s.Loops {
		length += " loop"
	}
	ebitenutil.DebugPrintAt(screen, fmt.Sprintf("%s / %s  [%s]", formatClock(s.Elapsed), length, state), margin, margin+16)
	ebitenutil.DebugPrintAt(screen, "space pause  n next  p prev  r restart  q quit", margin, margin+32)

	for ch, c := range s.Channels {
		v.drawChannel(screen, ch, c)
	}
	v.drawProgress(screen, s)
}

func (v *Visualizer) drawChannel(screen *ebiten.Image, ch int, c ui.ChannelState) {
	y := float32(headerHeight + ch*rowHeight)
	label := fmt.Sprintf("ch%d  --", ch)
	if c.Sounding {
		label = fmt.Sprintf("ch%d  %s", ch, tune.NoteName(c.Note))
	}
	ebitenutil.DebugPrintAt(screen, label, margin, int(y)+6)

	keyWidth := float32(ScreenWidth-labelWidth-margin) / tune.NumNotes
	h := float32(rowHeight - 4)
	for n := 0; n < tune.NumNotes; n++ {
		clr := colorWhiteKey
		if isBlackKey(n) {
			clr = colorBlackKey
		}
		x := labelWidth + float32(n)*keyWidth
		vector.FillRect(screen, x, y+2, keyWidth-1, h, clr, false)
	}

	if c.Sounding && c.Note < tune.NumNotes {
		x := labelWidth + float32(c.Note)*keyWidth
		vector.FillRect(screen, x, y+2, keyWidth-1, h, channelColors[ch%len(channelColors)], false)
	}
}

func (v *Visualizer) drawProgress(screen *ebiten.Image, s ui.Status) {
	y := float32(v.ScreenHeight() - footerHeight + 8)
	w := float32(ScreenWidth - 2*margin)
	vector.FillRect(screen, margin, y, w, 8, colorTrack, false)
	if s.Length <= 0 {
		return
	}
	frac := float32(s.Elapsed) / float32(s.Length)
	if frac > 1 {
		frac = 1
	}
	vector.FillRect(screen, margin, y, w*frac, 8, colorProgress, false)
}

func isBlackKey(note int) bool {
	switch note % 12 {
	case 1, 3, 6, 8, 10:
		return true
	}
	return false
}

// formatClock formats d as m:ss.
func formatClock(d time.Duration) string {
	d = d.Round(time.Second)
	return fmt.Sprintf("%d:%02d", int(d.Minutes()), int(d.Seconds())%60)
}
