package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"github.com/hajimehoshi/ebiten/v2"
	emubridge "github.com/user-none/playtune/bridge/ebiten"
	"github.com/user-none/playtune/cli"
	"github.com/user-none/playtune/render"
	"github.com/user-none/playtune/ui"
)

const name = "playtune"

func main() {
	var opts render.Flags
	opts.Register(flag.CommandLine)
	volume := flag.Float64("volume", 1.0, "playback volume from 0.0 to 1.0")
	flag.Usage = func() {
		fmt.Fprintf(flag.CommandLine.Output(), "Usage: %s [flags] score...\n", name)
		flag.PrintDefaults()
	}
	flag.Parse()

	if flag.NArg() == 0 {
		flag.Usage()
		os.Exit(2)
	}

	tracks, err := ui.LoadTracks(flag.Args(), opts.AssumeVolume)
	if err != nil {
		log.Fatalf("Failed to load score: %v", err)
	}

	cfg, err := opts.Config(log.Default())
	if err != nil {
		log.Fatal(err)
	}
	stream, err := render.NewStream(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize player: %v", err)
	}

	runner := cli.NewRunner(stream, tracks, *volume)
	defer runner.Close()

	ebiten.SetWindowSize(emubridge.ScreenWidth, runner.ScreenHeight())
	ebiten.SetWindowTitle(name + " - " + cfg.Board.Name)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetTPS(60)

	if err := ebiten.RunGame(runner); err != nil {
		log.Fatal(err)
	}
}
