package engine

import (
	"math/rand"
	"testing"
	"time"

	"github.com/vovakirdan/mergedrop/internal/core"
)

type recordingPhysics struct {
	spawned   []TokenID
	despawned []TokenID
	held      map[TokenID]core.Vec2
	released  []TokenID
	impulses  map[TokenID]core.Vec2
	frozen    int
}

func newRecordingPhysics() *recordingPhysics {
	return &recordingPhysics{
		held:     make(map[TokenID]core.Vec2),
		impulses: make(map[TokenID]core.Vec2),
	}
}

func (p *recordingPhysics) Spawn(t Token)                   { p.spawned = append(p.spawned, t.ID) }
func (p *recordingPhysics) Despawn(id TokenID)              { p.despawned = append(p.despawned, id) }
func (p *recordingPhysics) Hold(id TokenID, pos core.Vec2)  { p.held[id] = pos }
func (p *recordingPhysics) Release(id TokenID)              { p.released = append(p.released, id) }
func (p *recordingPhysics) Impulse(id TokenID, v core.Vec2) { p.impulses[id] = v }
func (p *recordingPhysics) Freeze()                         { p.frozen++ }

type recordingCues struct {
	played []Cue
}

func (c *recordingCues) Play(cue Cue) { c.played = append(c.played, cue) }

func (c *recordingCues) count(cue Cue) int {
	n := 0
	for _, p := range c.played {
		if p == cue {
			n++
		}
	}
	return n
}

type harness struct {
	s       *Session
	clock   *ManualClock
	physics *recordingPhysics
	cues    *recordingCues
	ended   []Result
}

func newHarness(t *testing.T, cfg Config) *harness {
	t.Helper()

	h := &harness{
		clock:   NewManualClock(),
		physics: newRecordingPhysics(),
		cues:    &recordingCues{},
	}
	s, err := NewSession(cfg, Deps{
		Clock:    h.clock,
		Rand:     rand.New(rand.NewSource(42)),
		Physics:  h.physics,
		Cues:     h.cues,
		Listener: ListenerFunc(func(r Result) { h.ended = append(h.ended, r) }),
	})
	if err != nil {
		t.Fatalf("NewSession() error = %v", err)
	}
	h.s = s
	return h
}

// advance moves the clock and runs one session tick.
func (h *harness) advance(d time.Duration) {
	h.clock.Advance(d)
	h.s.Tick()
}

// place puts a released token of rank on the board directly.
func (h *harness) place(rank int, pos core.Vec2) Token {
	return h.s.reg.Spawn(rank, h.s.cfg.Tag, pos, false)
}

func (h *harness) contact(id TokenID) Contact {
	return Contact{Token: id, Dynamic: true, DetectorEnabled: true}
}
