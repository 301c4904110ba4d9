// Command standalone plays scores in the terminal without a window.
package main

import (
	"flag"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/hako/durafmt"
	"github.com/user-none/playtune/render"
	"github.com/user-none/playtune/tune"
	"github.com/user-none/playtune/ui"
)

var shortUnits, _ = durafmt.DefaultUnitsCoder.Decode("y:yrs,wk:wks,d:d,h:h,m:m,s:s,ms:ms,us:us")

func main() {
	var opts render.Flags
	opts.Register(flag.CommandLine)
	volume := flag.Float64("volume", 1.0, "playback volume from 0.0 to 1.0")
	flag.Parse()

	if flag.NArg() == 0 {
		log.Fatal("No scores given. Usage: standalone [flags] score...")
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

	audio, err := ui.NewAudioPlayer(stream.SampleRate(), *volume)
	if err != nil {
		log.Printf("Warning: audio initialization failed: %v", err)
		audio = nil
	}

	player := ui.NewPlayer(stream, tracks, audio)
	kb := ui.NewKeyboard(os.Stdin, player.Send)
	if err := kb.Start(); err != nil {
		log.Printf("Warning: keys disabled: %v", err)
	}
	// Raw mode needs explicit carriage returns.
	log.SetOutput(crlfWriter{os.Stderr})

	player.Start()
	ticker := time.NewTicker(100 * time.Millisecond)
	defer ticker.Stop()

loop:
	for {
		select {
		case <-player.Done():
			break loop
		case <-ticker.C:
			fmt.Fprintf(os.Stderr, "\r%s\x1b[K", statusLine(player.Status()))
		}
	}
	fmt.Fprint(os.Stderr, "\r\n")

	kb.Stop()
	player.Close()
	if audio != nil {
		audio.Close()
	}
}

func statusLine(s ui.Status) string {
	var b strings.Builder
	fmt.Fprintf(&b, "[%d/%d] %s  %s", s.Track+1, s.Tracks, s.Name, formatDuration(s.Elapsed))
	if s.Length > 0 {
		fmt.Fprintf(&b, " / %s", formatDuration(s.Length))
	}
	if s.Loops {
		b.WriteString(" (loops)")
	}
	if s.Paused {
		b.WriteString("  paused")
	}
	b.WriteString("  |")
	for _, c := range s.Channels {
		if c.Sounding {
			fmt.Fprintf(&b, " %-4s", tune.NoteName(c.Note))
		} else {
			b.WriteString(" --  ")
		}
	}
	return b.String()
}

func formatDuration(d time.Duration) string {
	if d < time.Second {
		return "0 s"
	}
	return durafmt.Parse(d.Truncate(time.Second)).LimitFirstN(2).Format(shortUnits)
}

type crlfWriter struct {
	w *os.File
}

func (c crlfWriter) Write(p []byte) (int, error) {
	s := strings.ReplaceAll(string(p), "\n", "\r\n")
	if _, err := c.w.WriteString("\r" + s); err != nil {
		return 0, err
	}
	return len(p), nil
}
