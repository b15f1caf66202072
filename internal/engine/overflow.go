package engine

import (
	"time"

	"github.com/charmbracelet/log"
)

// Contact is a boundary-line contact event reported by the physics
// collaborator, with the body facts at the time of the event.
type Contact struct {
	Token           TokenID
	Dynamic         bool
	DetectorEnabled bool
}

// OverflowMonitor watches tokens touching the boundary line and trips once
// any of them has been in continuous contact for the threshold.
type OverflowMonitor struct {
	reg       *Registry
	log       *log.Logger
	tag       string
	threshold time.Duration

	records    map[TokenID]time.Duration
	maxElapsed time.Duration
	progress   float64
	tripped    bool
}

func newOverflowMonitor(reg *Registry, tag string, threshold time.Duration, logger *log.Logger) *OverflowMonitor {
	return &OverflowMonitor{
		reg:       reg,
		log:       logger,
		tag:       tag,
		threshold: threshold,
		records:   make(map[TokenID]time.Duration),
	}
}

func (o *OverflowMonitor) eligible(id TokenID, dynamic, detector bool) bool {
	if !dynamic || !detector {
		return false
	}
	t, ok := o.reg.Get(id)
	return ok && !t.Held && t.Tag == o.tag
}

// ContactBegin starts a record for an eligible token. A token that already
// has a record keeps its earliest start time.
func (o *OverflowMonitor) ContactBegin(c Contact, now time.Duration) {
	if o.tripped || !o.eligible(c.Token, c.Dynamic, c.DetectorEnabled) {
		return
	}
	if _, ok := o.records[c.Token]; ok {
		return
	}
	o.records[c.Token] = now
}

// ContactStay behaves like ContactBegin, so a token that becomes eligible
// while already touching the line starts being timed.
func (o *OverflowMonitor) ContactStay(c Contact, now time.Duration) {
	o.ContactBegin(c, now)
}

// ContactEnd drops the token's record.
func (o *OverflowMonitor) ContactEnd(id TokenID) {
	delete(o.records, id)
}

// Tick prunes records of destroyed or ineligible tokens, recomputes the
// longest continuous contact and reports whether it reached the threshold.
// Once tripped the monitor clears its records and stays silent until Reset.
func (o *OverflowMonitor) Tick(now time.Duration) bool {
	if o.tripped {
		return false
	}

	for id := range o.records {
		t, ok := o.reg.Get(id)
		if !ok || !o.eligible(id, t.Dynamic, t.DetectorEnabled) {
			delete(o.records, id)
		}
	}

	var longest time.Duration
	for _, start := range o.records {
		if elapsed := now - start; elapsed > longest {
			longest = elapsed
		}
	}
	o.maxElapsed = longest
	o.progress = 1
	if o.threshold > 0 {
		o.progress = min(max(float64(longest)/float64(o.threshold), 0), 1)
	}

	if len(o.records) == 0 || longest < o.threshold {
		return false
	}

	o.log.Info("overflow", "elapsed", longest, "threshold", o.threshold, "tokens", len(o.records))
	clear(o.records)
	o.tripped = true
	return true
}

// Progress returns the longest contact as a fraction of the threshold,
// clamped to [0, 1].
func (o *OverflowMonitor) Progress() float64 {
	return o.progress
}

// MaxElapsed returns the longest continuous contact seen on the last tick.
func (o *OverflowMonitor) MaxElapsed() time.Duration {
	return o.maxElapsed
}

// Tracking reports whether id currently has a contact record.
func (o *OverflowMonitor) Tracking(id TokenID) bool {
	_, ok := o.records[id]
	return ok
}

// Len returns the number of contact records.
func (o *OverflowMonitor) Len() int {
	return len(o.records)
}

// stop clears the records and disarms the monitor, keeping the last
// progress reading for display.
func (o *OverflowMonitor) stop() {
	clear(o.records)
	o.tripped = true
}

// Reset forgets every record and re-arms the monitor.
func (o *OverflowMonitor) Reset() {
	clear(o.records)
	o.maxElapsed = 0
	o.progress = 0
	o.tripped = false
}
