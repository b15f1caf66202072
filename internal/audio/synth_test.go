package audio

import (
	"math"
	"testing"
	"time"

	"github.com/gopxl/beep"

	"github.com/vovakirdan/mergedrop/internal/engine"
)

// drain streams s to completion and returns the sample count and peak.
func drain(t *testing.T, s beep.Streamer) (int, float64) {
	t.Helper()
	buf := make([][2]float64, 512)
	total, peak := 0, 0.0
	for i := 0; i < 10000; i++ {
		n, ok := s.Stream(buf)
		for _, smp := range buf[:n] {
			peak = math.Max(peak, math.Abs(smp[0]))
		}
		total += n
		if !ok {
			return total, peak
		}
	}
	t.Fatal("stream never finished")
	return 0, 0
}

func TestOscillatorWaves(t *testing.T) {
	rate := beep.SampleRate(8000)
	tests := []struct {
		name string
		wave Wave
	}{
		{"sine", WaveSine},
		{"square", WaveSquare},
		{"triangle", WaveTriangle},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			osc := NewOscillator(440, 100*time.Millisecond, tt.wave, rate)
			n, peak := drain(t, osc)
			if n != rate.N(100*time.Millisecond) {
				t.Errorf("streamed %d samples, expected %d", n, rate.N(100*time.Millisecond))
			}
			if peak > 1 || peak == 0 {
				t.Errorf("peak = %f, expected in (0, 1]", peak)
			}
		})
	}
}

func TestSquareWaveValues(t *testing.T) {
	osc := NewOscillator(100, 20*time.Millisecond, WaveSquare, beep.SampleRate(8000))
	buf := make([][2]float64, 64)
	n, _ := osc.Stream(buf)
	for i, smp := range buf[:n] {
		if smp[0] != 1 && smp[0] != -1 {
			t.Fatalf("sample %d = %f", i, smp[0])
		}
	}
}

func TestEnvelopeFades(t *testing.T) {
	rate := beep.SampleRate(1000)
	env := NewEnvelope(NewOscillator(0, time.Second, WaveSquare, rate), 100*time.Millisecond, 10*time.Millisecond, 10*time.Millisecond, rate)

	buf := make([][2]float64, 200)
	n, _ := env.Stream(buf)
	if n != 100 {
		t.Fatalf("streamed %d samples, expected 100", n)
	}
	if buf[0][0] != 0 {
		t.Errorf("first sample = %f, expected silence", buf[0][0])
	}
	if buf[50][0] != 1 {
		t.Errorf("sustain sample = %f, expected 1", buf[50][0])
	}
	if buf[99][0] >= buf[90][0] {
		t.Errorf("release does not fade: %f >= %f", buf[99][0], buf[90][0])
	}
}

func TestCueStreams(t *testing.T) {
	rate := beep.SampleRate(8000)
	for _, c := range []engine.Cue{engine.CueDrop, engine.CueMerge, engine.CueGameOver} {
		t.Run(c.String(), func(t *testing.T) {
			s := CueStream(c, 0.5, rate)
			if s == nil {
				t.Fatal("nil stream")
			}
			n, peak := drain(t, s)
			if n == 0 || peak == 0 {
				t.Errorf("cue produced n=%d peak=%f", n, peak)
			}
			if n > rate.N(time.Second) {
				t.Errorf("cue lasts %d samples, expected under a second", n)
			}
		})
	}

	if CueStream(engine.Cue(99), 1, rate) != nil {
		t.Error("unknown cue should have no stream")
	}
}

func TestSilentVolume(t *testing.T) {
	_, peak := drain(t, CueStream(engine.CueMerge, 0, beep.SampleRate(8000)))
	if peak != 0 {
		t.Errorf("peak = %f at zero volume", peak)
	}
}

func TestPlayerNoopBeforeInit(t *testing.T) {
	p := NewPlayer(2, nil)
	if p.volume != 1 {
		t.Errorf("volume = %f, expected clamp to 1", p.volume)
	}
	p.Play(engine.CueDrop)
	p.Close()
	if p.mixer.Len() != 0 {
		t.Error("uninitialized player queued a cue")
	}
}
