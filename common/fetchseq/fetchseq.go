// Package fetchseq hands out per-kind sequence tokens so that a response to
// a superseded request can be recognized and dropped.
//
// A caller takes a token before issuing a fetch and commits it when the
// response arrives. Only the newest token of each kind commits; anything
// older lost the race and its result must be discarded.
package fetchseq

import "sync"

// Token identifies one in-flight fetch.
type Token struct {
	Kind string
	Seq  uint64
}

// Tracker tracks the newest token per kind. The zero value is ready to use.
type Tracker struct {
	mu     sync.Mutex
	latest map[string]uint64
}

// Begin starts a fetch of kind and supersedes any earlier fetch of the same kind.
func (t *Tracker) Begin(kind string) Token {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest == nil {
		t.latest = make(map[string]uint64)
	}
	t.latest[kind]++
	return Token{Kind: kind, Seq: t.latest[kind]}
}

// Current reports whether tok is still the newest fetch of its kind.
func (t *Tracker) Current(tok Token) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	return tok.Seq != 0 && t.latest[tok.Kind] == tok.Seq
}

// Commit runs apply only if tok is still current, holding the tracker lock so
// no newer fetch can begin between the check and the write. It reports
// whether apply ran.
func (t *Tracker) Commit(tok Token, apply func()) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if tok.Seq == 0 || t.latest[tok.Kind] != tok.Seq {
		return false
	}
	if apply != nil {
		apply()
	}
	return true
}

// Invalidate supersedes every in-flight fetch of kind.
func (t *Tracker) Invalidate(kind string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.latest == nil {
		t.latest = make(map[string]uint64)
	}
	t.latest[kind]++
}

// InvalidateAll supersedes every in-flight fetch.
func (t *Tracker) InvalidateAll() {
	t.mu.Lock()
	defer t.mu.Unlock()
	for k := range t.latest {
		t.latest[k]++
	}
}
