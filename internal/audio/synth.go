// Package audio synthesizes the merge-drop sound cues and plays them
// through the system speaker.
package audio

import (
	"math"
	"time"

	"github.com/gopxl/beep"
	"github.com/gopxl/beep/effects"

	"github.com/vovakirdan/mergedrop/internal/engine"
)

const sampleRate = beep.SampleRate(44100)

// Wave is an oscillator shape.
type Wave int

const (
	WaveSine Wave = iota
	WaveSquare
	WaveTriangle
)

type oscillator struct {
	freq     float64
	phase    float64
	position int
	duration int
	wave     Wave
	rate     beep.SampleRate
}

// NewOscillator returns a streamer producing duration worth of a wave.
func NewOscillator(freq float64, duration time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return &oscillator{freq: freq, duration: rate.N(duration), wave: wave, rate: rate}
}

func (o *oscillator) Stream(samples [][2]float64) (n int, ok bool) {
	for i := range samples {
		if o.position >= o.duration {
			return i, i > 0
		}

		var val float64
		switch o.wave {
		case WaveSine:
			val = math.Sin(2 * math.Pi * o.phase)
		case WaveSquare:
			val = 1
			if o.phase >= 0.5 {
				val = -1
			}
		case WaveTriangle:
			val = 4*math.Abs(o.phase-0.5) - 1
		}

		samples[i][0] = val
		samples[i][1] = val

		o.phase += o.freq / float64(o.rate)
		o.phase -= math.Floor(o.phase)
		o.position++
	}
	return len(samples), true
}

func (o *oscillator) Err() error { return nil }

// envelope fades a stream in over attack and out over release.
type envelope struct {
	streamer beep.Streamer
	position int
	attack   int
	release  int
	total    int
}

// NewEnvelope wraps s with a linear attack/release envelope.
func NewEnvelope(s beep.Streamer, duration, attack, release time.Duration, rate beep.SampleRate) beep.Streamer {
	return &envelope{
		streamer: s,
		attack:   rate.N(attack),
		release:  rate.N(release),
		total:    rate.N(duration),
	}
}

func (e *envelope) Stream(samples [][2]float64) (n int, ok bool) {
	n, ok = e.streamer.Stream(samples)
	for i := 0; i < n; i++ {
		if e.position >= e.total {
			return i, i > 0
		}

		vol := 1.0
		if e.attack > 0 && e.position < e.attack {
			vol = float64(e.position) / float64(e.attack)
		}
		if e.release > 0 && e.position >= e.total-e.release {
			vol = math.Max(float64(e.total-e.position)/float64(e.release), 0)
		}

		samples[i][0] *= vol
		samples[i][1] *= vol
		e.position++
	}
	return n, ok
}

func (e *envelope) Err() error { return e.streamer.Err() }

// newVolume scales a stream linearly; zero or less is silent.
func newVolume(s beep.Streamer, vol float64) beep.Streamer {
	if vol <= 0 {
		return &effects.Volume{Streamer: s, Base: 2, Silent: true}
	}
	return &effects.Volume{Streamer: s, Base: 2, Volume: math.Log2(vol)}
}

func note(freq float64, d time.Duration, wave Wave, rate beep.SampleRate) beep.Streamer {
	return NewEnvelope(NewOscillator(freq, d, wave, rate), d, 5*time.Millisecond, d/2, rate)
}

// dropSound is a short falling plop.
func dropSound(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		note(392, 40*time.Millisecond, WaveTriangle, rate),
		note(262, 60*time.Millisecond, WaveTriangle, rate),
	)
}

// mergeSound is a rising two-note chime with an octave overtone.
func mergeSound(rate beep.SampleRate) beep.Streamer {
	first := beep.Mix(
		newVolume(note(659.25, 70*time.Millisecond, WaveSine, rate), 0.7),
		newVolume(note(1318.5, 70*time.Millisecond, WaveSine, rate), 0.3),
	)
	second := beep.Mix(
		newVolume(note(987.77, 120*time.Millisecond, WaveSine, rate), 0.7),
		newVolume(note(1975.5, 120*time.Millisecond, WaveSine, rate), 0.3),
	)
	return beep.Seq(first, second)
}

// gameOverSound is a descending three-note phrase.
func gameOverSound(rate beep.SampleRate) beep.Streamer {
	return beep.Seq(
		note(440, 180*time.Millisecond, WaveSquare, rate),
		note(349.23, 180*time.Millisecond, WaveSquare, rate),
		note(261.63, 360*time.Millisecond, WaveSquare, rate),
	)
}

// CueStream returns a finite streamer for the cue at the given volume, or
// nil for an unknown cue.
func CueStream(c engine.Cue, volume float64, rate beep.SampleRate) beep.Streamer {
	var s beep.Streamer
	switch c {
	case engine.CueDrop:
		s = dropSound(rate)
	case engine.CueMerge:
		s = mergeSound(rate)
	case engine.CueGameOver:
		s = gameOverSound(rate)
	default:
		return nil
	}
	return newVolume(s, volume)
}
