package ui

import (
	"sync"
	"time"
)

// Command is a request from a UI thread to the player goroutine.
type Command int

const (
	CmdNext Command = iota + 1
	CmdPrev
	CmdRestart
	CmdPause
	CmdQuit
)

// SharedCommands queues commands written by the UI thread and drained by
// the player goroutine between frames.
type SharedCommands struct {
	mu      sync.Mutex
	pending []Command
}

// Send queues c.
func (sc *SharedCommands) Send(c Command) {
	sc.mu.Lock()
	sc.pending = append(sc.pending, c)
	sc.mu.Unlock()
}

// Take returns and clears the queued commands, appending them to dst.
func (sc *SharedCommands) Take(dst []Command) []Command {
	sc.mu.Lock()
	dst = append(dst, sc.pending...)
	sc.pending = sc.pending[:0]
	sc.mu.Unlock()
	return dst
}

// ChannelState is what one channel is doing.
type ChannelState struct {
	Note     uint8
	Sounding bool
}

// Status is a snapshot of the player for display.
type Status struct {
	Track   int // index into the playlist
	Tracks  int
	Name    string
	Elapsed time.Duration // machine time since the track started
	Length  time.Duration // to the score's end or first loop
	Loops   bool
	Paused  bool
	Done    bool

	Channels []ChannelState
}

// SharedStatus holds the status written by the player goroutine and read
// by a display thread. The channel slice is copied on both sides so
// neither holds the lock while using it.
type SharedStatus struct {
	mu    sync.Mutex
	write Status
	read  Status
}

// NewSharedStatus allocates room for the given number of channels.
func NewSharedStatus(channels int) *SharedStatus {
	ss := &SharedStatus{}
	ss.write.Channels = make([]ChannelState, channels)
	ss.read.Channels = make([]ChannelState, channels)
	return ss
}

// Update stores s.
func (ss *SharedStatus) Update(s Status) {
	ss.mu.Lock()
	chans := ss.write.Channels[:cap(ss.write.Channels)]
	n := copy(chans, s.Channels)
	ss.write = s
	ss.write.Channels = chans[:n]
	ss.mu.Unlock()
}

// Read returns the latest status. The result's channel slice stays valid
// until the next Read.
func (ss *SharedStatus) Read() Status {
	ss.mu.Lock()
	chans := ss.read.Channels[:cap(ss.read.Channels)]
	n := copy(chans, ss.write.Channels)
	ss.read = ss.write
	ss.read.Channels = chans[:n]
	s := ss.read
	ss.mu.Unlock()
	return s
}

// EmuControl coordinates pause, resume and stop between a UI thread and
// the player goroutine.
type EmuControl struct {
	mu       sync.Mutex
	pauseReq bool
	paused   bool
	stopReq  bool
	ackCh    chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

// NewEmuControl creates a control in the running state.
func NewEmuControl() *EmuControl {
	return &EmuControl{
		ackCh:   make(chan struct{}, 1),
		stopped: make(chan struct{}),
	}
}

// RequestPause asks the player goroutine to pause and blocks until it
// acknowledges or stops.
func (ec *EmuControl) RequestPause() {
	ec.mu.Lock()
	if ec.paused || ec.pauseReq || ec.stopReq {
		ec.mu.Unlock()
		return
	}
	ec.pauseReq = true
	ec.mu.Unlock()

	select {
	case <-ec.ackCh:
	case <-ec.stopped:
	}
}

// RequestResume lets a paused player goroutine continue.
func (ec *EmuControl) RequestResume() {
	ec.mu.Lock()
	ec.pauseReq = false
	ec.paused = false
	ec.mu.Unlock()
}

// TogglePause pauses a running player or resumes a paused one.
func (ec *EmuControl) TogglePause() {
	if ec.IsPaused() {
		ec.RequestResume()
		return
	}
	ec.RequestPause()
}

// CheckPause is called by the player goroutine between frames. If a pause
// was requested it acknowledges and waits until resumed or stopped. It
// returns false when the goroutine should exit.
func (ec *EmuControl) CheckPause() bool {
	ec.mu.Lock()
	if ec.stopReq {
		ec.mu.Unlock()
		return false
	}
	if !ec.pauseReq {
		ec.mu.Unlock()
		return true
	}
	ec.paused = true
	ec.mu.Unlock()

	select {
	case ec.ackCh <- struct{}{}:
	default:
	}

	for {
		ec.mu.Lock()
		if ec.stopReq {
			ec.mu.Unlock()
			return false
		}
		if !ec.pauseReq {
			ec.paused = false
			ec.mu.Unlock()
			return true
		}
		ec.mu.Unlock()
		time.Sleep(10 * time.Millisecond)
	}
}

// Stop tells the player goroutine to exit. It is safe to call more than
// once.
func (ec *EmuControl) Stop() {
	ec.mu.Lock()
	ec.stopReq = true
	ec.pauseReq = false
	ec.mu.Unlock()
	ec.stopOnce.Do(func() { close(ec.stopped) })
}

// IsPaused reports whether the player goroutine is paused.
func (ec *EmuControl) IsPaused() bool {
	ec.mu.Lock()
	p := ec.paused
	ec.mu.Unlock()
	return p
}
