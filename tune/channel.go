package tune

// MaxChannels is the most channels any supported platform can bind.
const MaxChannels = 8

// channel is one tone generator: a timer toggling an output pin.
type channel struct {
	timer    TimerSpec
	pin      Pin
	sounding bool
	note     uint8
}

// bind assigns the next timer in allocation order to pin. Past the
// platform's capacity it does nothing.
func (e *Engine) bind(pin Pin) {
	timers := e.hw.Timers()
	if e.numChans >= len(timers) || e.numChans >= MaxChannels {
		return
	}
	spec := timers[e.numChans]
	ch := &e.chans[e.numChans]
	*ch = channel{timer: spec, pin: pin}
	e.timerChan[spec.ID] = e.numChans + 1
	e.numChans++

	e.hw.BindTimer(spec.ID, pin)

	if e.numChans == 1 {
		// Start and stop the master on middle C so waits and delays have a
		// time base before anything plays.
		e.noteOn(0, MiddleC)
		e.noteOff(0)
	}
}

// noteOn starts note on channel index. Unknown channels, percussion notes
// and notes below the timer's floor are ignored.
func (e *Engine) noteOn(index int, note uint8) {
	if index >= e.numChans {
		return
	}
	ch := &e.chans[index]
	if e.opts.NoteFilter != nil {
		note = e.opts.NoteFilter(index, note)
	}
	if note >= NumNotes {
		return
	}

	freq2 := DoubledFrequency(note)
	setting, ok := Fit(freq2, ch.timer, e.hw.ClockHz())
	if !ok {
		e.warnUnplayable(index, note)
		return
	}

	e.hw.ConfigureTimer(ch.timer.ID, setting, true)
	ch.sounding = true
	ch.note = note
	if index == 0 {
		e.clock.freq2 = freq2
		e.clock.sounding = true
	}
	e.hw.EnableInterrupt(ch.timer.ID, true)

	if e.opts.Debug {
		e.logf("play ch %d note %d (freq2 %d, ck/%d, ocr %d)", index, note, freq2, setting.Prescaler, setting.Compare)
	}
	for _, m := range e.opts.Monitors {
		m.NoteOn(index, note)
	}
}

// noteOff silences channel index and leaves its pin low. The master keeps
// its interrupt so waits and delays keep counting.
func (e *Engine) noteOff(index int) {
	if index >= e.numChans {
		return
	}
	ch := &e.chans[index]
	if index == 0 {
		e.clock.sounding = false
	} else {
		e.hw.EnableInterrupt(ch.timer.ID, false)
	}
	e.hw.SetPin(ch.pin, false)
	ch.sounding = false

	if e.opts.Debug {
		e.logf("stop note ch %d", index)
	}
	for _, m := range e.opts.Monitors {
		m.NoteOff(index)
	}
}

// unbindAll stops every timer interrupt, drives every pin low and forgets
// all channels, the master included.
func (e *Engine) unbindAll() {
	for i := 0; i < e.numChans; i++ {
		ch := &e.chans[i]
		e.hw.EnableInterrupt(ch.timer.ID, false)
		e.hw.SetPin(ch.pin, false)
		if ch.sounding {
			for _, m := range e.opts.Monitors {
				m.NoteOff(i)
			}
		}
		e.timerChan[ch.timer.ID] = 0
		*ch = channel{}
	}
	e.numChans = 0
	e.clock = masterClock{}
}
