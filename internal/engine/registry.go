// Package engine implements the rules of the falling-token merge puzzle:
// which contacting tokens merge and what replaces them, which rank drops
// next, when sustained overflow above the boundary line ends the session,
// and how score accrues.
//
// The engine never simulates physics. A physics collaborator reports contact
// events and body facts, and receives spawn/hold/release/impulse commands.
// All engine types are single-threaded: a host must call them from one
// goroutine (the tick loop) or serialize calls itself.
package engine

import (
	"sort"

	"github.com/vovakirdan/mergedrop/internal/core"
)

// TokenID identifies a live board token. IDs are never reused, so a stale
// ID held by a late event can never alias a newer token.
type TokenID uint64

// NoToken is the zero TokenID; it never names a live token.
const NoToken TokenID = 0

// Token is a snapshot of one registry entry.
type Token struct {
	ID   TokenID
	Rank int
	Tag  string
	Pos  core.Vec2

	Resolving       bool // merge in flight; the token cannot join a second merge
	Held            bool // attached to the drop cursor, not yet released
	Dynamic         bool // simulated as a dynamic body with gravity
	DetectorEnabled bool // its contact detector is enabled
}

// Registry owns the set of live tokens.
type Registry struct {
	tokens map[TokenID]*Token
	nextID TokenID
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{tokens: make(map[TokenID]*Token)}
}

// Spawn creates a token. Held tokens start kinematic with the detector off,
// board tokens start dynamic with the detector on.
func (r *Registry) Spawn(rank int, tag string, pos core.Vec2, held bool) Token {
	r.nextID++
	t := &Token{
		ID:              r.nextID,
		Rank:            rank,
		Tag:             tag,
		Pos:             pos,
		Held:            held,
		Dynamic:         !held,
		DetectorEnabled: !held,
	}
	r.tokens[t.ID] = t
	return *t
}

// Get returns a copy of the token with the given ID.
func (r *Registry) Get(id TokenID) (Token, bool) {
	t, ok := r.tokens[id]
	if !ok {
		return Token{}, false
	}
	return *t, true
}

// Alive reports whether id names a live token.
func (r *Registry) Alive(id TokenID) bool {
	_, ok := r.tokens[id]
	return ok
}

// Remove destroys a token. It reports whether the token was alive.
func (r *Registry) Remove(id TokenID) bool {
	if _, ok := r.tokens[id]; !ok {
		return false
	}
	delete(r.tokens, id)
	return true
}

// SetBody records body facts reported by the physics collaborator.
func (r *Registry) SetBody(id TokenID, dynamic, detector bool) bool {
	t, ok := r.tokens[id]
	if !ok {
		return false
	}
	t.Dynamic = dynamic
	t.DetectorEnabled = detector
	return true
}

// SetPos records the latest position of a token.
func (r *Registry) SetPos(id TokenID, pos core.Vec2) bool {
	t, ok := r.tokens[id]
	if !ok {
		return false
	}
	t.Pos = pos
	return true
}

// release hands a held token over to full simulation.
func (r *Registry) release(id TokenID) bool {
	t, ok := r.tokens[id]
	if !ok || !t.Held {
		return false
	}
	t.Held = false
	t.Dynamic = true
	t.DetectorEnabled = true
	return true
}

// claim locks both tokens for a merge. It fails without touching either
// token unless both are alive, distinct, released, not already resolving
// and of equal rank.
func (r *Registry) claim(a, b TokenID) (*Token, *Token, bool) {
	if a == b {
		return nil, nil, false
	}
	ta, okA := r.tokens[a]
	tb, okB := r.tokens[b]
	if !okA || !okB {
		return nil, nil, false
	}
	if ta.Resolving || tb.Resolving {
		return nil, nil, false
	}
	if ta.Held || tb.Held {
		return nil, nil, false
	}
	if ta.Rank != tb.Rank {
		return nil, nil, false
	}
	ta.Resolving = true
	tb.Resolving = true
	return ta, tb, true
}

// HighestBoardRank returns the highest rank among live tokens carrying tag
// that are simulated as dynamic bodies, or -1 if there are none.
// Held tokens are kinematic and therefore never counted.
func (r *Registry) HighestBoardRank(tag string) int {
	highest := -1
	for _, t := range r.tokens {
		if tag != "" && t.Tag != tag {
			continue
		}
		if !t.Dynamic {
			continue
		}
		if t.Rank > highest {
			highest = t.Rank
		}
	}
	return highest
}

// Tokens returns copies of all live tokens ordered by ID.
func (r *Registry) Tokens() []Token {
	out := make([]Token, 0, len(r.tokens))
	for _, t := range r.tokens {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool {
		return out[i].ID < out[j].ID
	})
	return out
}

// Len returns the number of live tokens.
func (r *Registry) Len() int {
	return len(r.tokens)
}

// Reset destroys every token. IDs keep increasing across resets.
func (r *Registry) Reset() {
	clear(r.tokens)
}
