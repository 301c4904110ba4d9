package ui

import (
	"testing"
	"time"
)

func TestSharedCommands(t *testing.T) {
	var sc SharedCommands
	sc.Send(CmdNext)
	sc.Send(CmdQuit)

	got := sc.Take(nil)
	if len(got) != 2 || got[0] != CmdNext || got[1] != CmdQuit {
		t.Errorf("got %v, want [CmdNext CmdQuit]", got)
	}
	if got := sc.Take(nil); len(got) != 0 {
		t.Errorf("second take: got %v, want empty", got)
	}
}

func TestSharedStatus_CopiesChannels(t *testing.T) {
	ss := NewSharedStatus(2)
	chans := []ChannelState{{Note: 60, Sounding: true}, {}}
	ss.Update(Status{Track: 3, Channels: chans})

	chans[0].Note = 61
	got := ss.Read()
	if got.Track != 3 {
		t.Errorf("track: got %d, want 3", got.Track)
	}
	if got.Channels[0].Note != 60 || !got.Channels[0].Sounding {
		t.Errorf("channel 0: got %+v, want note 60 sounding", got.Channels[0])
	}

	got.Channels[1].Note = 99
	if again := ss.Read(); again.Channels[1].Note != 0 {
		t.Errorf("read aliased the stored status: got %d", again.Channels[1].Note)
	}
}

func TestEmuControl_PauseResume(t *testing.T) {
	ec := NewEmuControl()
	frames := make(chan struct{}, 100)
	exited := make(chan struct{})
	go func() {
		defer close(exited)
		for ec.CheckPause() {
			select {
			case frames <- struct{}{}:
			default:
			}
			time.Sleep(time.Millisecond)
		}
	}()

	ec.RequestPause()
	if !ec.IsPaused() {
		t.Fatal("not paused after RequestPause")
	}
	for len(frames) > 0 {
		<-frames
	}
	time.Sleep(20 * time.Millisecond)
	if n := len(frames); n != 0 {
		t.Errorf("ran %d frames while paused", n)
	}

	ec.RequestResume()
	select {
	case <-frames:
	case <-time.After(time.Second):
		t.Fatal("did not resume")
	}

	ec.Stop()
	select {
	case <-exited:
	case <-time.After(time.Second):
		t.Fatal("did not stop")
	}
	if ec.CheckPause() {
		t.Error("CheckPause reported run after Stop")
	}
}

func TestEmuControl_PauseAfterStop(t *testing.T) {
	ec := NewEmuControl()
	ec.Stop()
	ec.Stop()

	done := make(chan struct{})
	go func() {
		ec.RequestPause()
		close(done)
	}()
	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("RequestPause blocked on a stopped control")
	}
}
