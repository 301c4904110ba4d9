package ui

import (
	"log"
	"path/filepath"
	"time"

	"github.com/user-none/playtune/render"
	"github.com/user-none/playtune/scorefile"
	"github.com/user-none/playtune/tune"
)

// Buffered-audio targets the player loop paces itself against.
const (
	adtMinBuffer = 50 * time.Millisecond
	adtMaxBuffer = 100 * time.Millisecond
)

// Track is one playlist entry.
type Track struct {
	Name    string
	Score   []byte
	Summary tune.Summary
}

// LoadTracks loads each score file as a track, named after its file.
func LoadTracks(paths []string, assumeVolume bool) ([]Track, error) {
	tracks := make([]Track, 0, len(paths))
	for _, path := range paths {
		score, err := scorefile.Load(path)
		if err != nil {
			return nil, err
		}
		tracks = append(tracks, Track{
			Name:    filepath.Base(path),
			Score:   score,
			Summary: tune.Analyze(score, assumeVolume),
		})
	}
	return tracks, nil
}

// Player plays a playlist on a stream from its own goroutine, feeding the
// audio player and publishing a status snapshot each frame. It exits after
// the last track or on CmdQuit.
type Player struct {
	stream *render.Stream
	tracks []Track
	audio  *AudioPlayer // nil plays silently in real time

	control  *EmuControl
	commands *SharedCommands
	status   *SharedStatus
	done     chan struct{}

	index      int
	startCycle uint64
	pending    []Command
	chans      []ChannelState
}

// NewPlayer creates a player. Call Start to begin the first track.
func NewPlayer(stream *render.Stream, tracks []Track, audio *AudioPlayer) *Player {
	return &Player{
		stream:   stream,
		tracks:   tracks,
		audio:    audio,
		control:  NewEmuControl(),
		commands: &SharedCommands{},
		status:   NewSharedStatus(stream.Channels()),
		done:     make(chan struct{}),
		chans:    make([]ChannelState, stream.Channels()),
	}
}

// Start launches the player goroutine.
func (p *Player) Start() {
	go p.loop()
}

// Send queues a command for the player goroutine. CmdPause and CmdQuit
// take effect at once, even while paused.
func (p *Player) Send(c Command) {
	switch c {
	case CmdPause:
		p.control.TogglePause()
	case CmdQuit:
		p.control.Stop()
	default:
		p.commands.Send(c)
	}
}

// Status returns the latest snapshot.
func (p *Player) Status() Status {
	s := p.status.Read()
	s.Paused = p.control.IsPaused()
	return s
}

// Done is closed when the player goroutine has exited.
func (p *Player) Done() <-chan struct{} {
	return p.done
}

// Close stops the player goroutine and waits for it.
func (p *Player) Close() {
	p.control.Stop()
	<-p.done
}

func (p *Player) loop() {
	defer close(p.done)
	defer p.control.Stop()

	if len(p.tracks) == 0 {
		p.publish(true)
		return
	}
	p.startTrack(0)

	frameTime := time.Second / render.FPS
	lastFrameTime := time.Now()

	for {
		if !p.control.CheckPause() {
			p.stream.Engine().Stop()
			p.publish(true)
			return
		}
		if !p.handleCommands() {
			p.publish(true)
			return
		}

		samples := p.stream.RunFrame()
		if p.audio != nil {
			p.audio.QueueMono(samples)
		}

		if !p.stream.Engine().Playing() && !p.startTrack(p.index+1) {
			p.publish(true)
			return
		}
		p.publish(false)

		sleepTime := frameTime - time.Since(lastFrameTime)
		if p.audio != nil {
			switch buffered := p.audio.Buffered(); {
			case buffered < adtMinBuffer:
				sleepTime = time.Duration(float64(sleepTime) * 0.9)
			case buffered > adtMaxBuffer:
				sleepTime = time.Duration(float64(sleepTime) * 1.1)
			}
		}
		if sleepTime > time.Millisecond {
			time.Sleep(sleepTime)
		}
		lastFrameTime = time.Now()
	}
}

// handleCommands applies queued commands and reports whether to go on.
func (p *Player) handleCommands() bool {
	p.pending = p.commands.Take(p.pending[:0])
	for _, c := range p.pending {
		switch c {
		case CmdNext:
			if !p.startTrack(p.index + 1) {
				return false
			}
		case CmdPrev:
			i := p.index - 1
			if i < 0 {
				i = 0
			}
			p.startTrack(i)
		case CmdRestart:
			p.startTrack(p.index)
		}
	}
	return true
}

// startTrack plays track i, reporting false past the end of the playlist.
func (p *Player) startTrack(i int) bool {
	e := p.stream.Engine()
	if i >= len(p.tracks) {
		e.Stop()
		return false
	}
	p.index = i
	if p.audio != nil {
		p.audio.Flush()
	}
	e.Play(p.tracks[i].Score)
	p.startCycle = p.stream.Machine().Now()
	log.Printf("Playing %d/%d: %s", i+1, len(p.tracks), p.tracks[i].Name)
	return true
}

func (p *Player) publish(done bool) {
	e := p.stream.Engine()
	for ch := range p.chans {
		note, ok := e.ChannelNote(ch)
		p.chans[ch] = ChannelState{Note: note, Sounding: ok}
	}

	m := p.stream.Machine()
	s := Status{
		Tracks:   len(p.tracks),
		Done:     done,
		Channels: p.chans,
	}
	if p.index < len(p.tracks) {
		t := p.tracks[p.index]
		s.Track = p.index
		s.Name = t.Name
		s.Length = t.Summary.Duration
		s.Loops = t.Summary.Loops
		s.Elapsed = m.CyclesToDuration(m.Now() - p.startCycle)
	}
	p.status.Update(s)
}
