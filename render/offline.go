package render

import (
	"time"
)

// tail is how long rendering continues after the score ends, so the final
// note's release is not cut off.
const tail = 100 * time.Millisecond

// Result is a rendered score.
type Result struct {
	Samples    []int16 // mono PCM
	SampleRate int

	// Duration is how long the score played on the machine, rounded up to
	// whole frames and excluding the tail.
	Duration time.Duration

	// Ended is false when the score was still playing at the limit, which
	// is normal for scores that loop.
	Ended bool
}

// Render plays score on the board described by cfg, at most for limit, and
// returns the audio. Notes the score leaves sounding are stopped at the end.
func Render(score []byte, cfg Config, limit time.Duration) (Result, error) {
	s, err := NewStream(cfg)
	if err != nil {
		return Result{}, err
	}
	e := s.Engine()
	m := s.Machine()

	var samples []int16
	e.Play(score)
	for e.Playing() && m.Elapsed() < limit {
		samples = append(samples, s.RunFrame()...)
	}
	res := Result{
		SampleRate: s.SampleRate(),
		Duration:   m.Elapsed(),
		Ended:      !e.Playing(),
	}

	e.Stop()
	for end := m.Elapsed() + tail; m.Elapsed() < end; {
		samples = append(samples, s.RunFrame()...)
	}
	res.Samples = samples
	return res, nil
}
