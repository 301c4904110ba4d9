// Package cli provides a windowed runner for the player.
// It handles key polling and draws the player's status.
package cli

import (
	"log"

	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/inpututil"
	emubridge "github.com/user-none/playtune/bridge/ebiten"
	"github.com/user-none/playtune/render"
	"github.com/user-none/playtune/ui"
)

// keyCommands maps window keys to player commands.
var keyCommands = []struct {
	key ebiten.Key
	cmd ui.Command
}{
	{ebiten.KeySpace, ui.CmdPause},
	{ebiten.KeyN, ui.CmdNext},
	{ebiten.KeyArrowRight, ui.CmdNext},
	{ebiten.KeyP, ui.CmdPrev},
	{ebiten.KeyArrowLeft, ui.CmdPrev},
	{ebiten.KeyR, ui.CmdRestart},
	{ebiten.KeyQ, ui.CmdQuit},
	{ebiten.KeyEscape, ui.CmdQuit},
}

// Runner shows a playlist playing in a window.
// The player runs on a dedicated goroutine with audio-driven timing.
// The Ebiten thread polls keys and draws from the shared status.
type Runner struct {
	player      *ui.Player
	audioPlayer *ui.AudioPlayer
	visualizer  *emubridge.Visualizer
}

// NewRunner starts playing tracks on stream.
// Audio initialization failure is non-fatal; the runner will play silently.
func NewRunner(stream *render.Stream, tracks []ui.Track, volume float64) *Runner {
	audio, err := ui.NewAudioPlayer(stream.SampleRate(), volume)
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
		audio = nil
	}

	r := &Runner{
		player:      ui.NewPlayer(stream, tracks, audio),
		audioPlayer: audio,
		visualizer:  emubridge.NewVisualizer(stream.Channels()),
	}
	r.player.Start()
	return r
}

// ScreenHeight returns the logical window height.
func (r *Runner) ScreenHeight() int {
	return r.visualizer.ScreenHeight()
}

// Close stops the player and releases audio.
func (r *Runner) Close() {
	r.player.Close()
	if r.audioPlayer != nil {
		r.audioPlayer.Close()
		r.audioPlayer = nil
	}
}

// Update implements ebiten.Game.
func (r *Runner) Update() error {
	select {
	case <-r.player.Done():
		return ebiten.Termination
	default:
	}

	if !ebiten.IsFocused() {
		return nil
	}
	for _, kc := range keyCommands {
		if inpututil.IsKeyJustPressed(kc.key) {
			r.player.Send(kc.cmd)
		}
	}
	return nil
}

// Draw implements ebiten.Game.
func (r *Runner) Draw(screen *ebiten.Image) {
	r.visualizer.Draw(screen, r.player.Status())
}

// Layout implements ebiten.Game.
func (r *Runner) Layout(outsideWidth, outsideHeight int) (int, int) {
	return r.visualizer.Layout(outsideWidth, outsideHeight)
}
