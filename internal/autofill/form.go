package autofill

import (
	"context"
	"io"
	"sync"

	"github.com/jonathan/ats-autofill/internal/types"
)

// Form is one candidate form with its own draft and merge cycle. At most
// one upload runs at a time; the merge is applied to the form as it stands
// when the parse completes, so edits made meanwhile survive unless the draft
// overwrites them.
type Form struct {
	filler *Autofiller

	mu      sync.Mutex
	state   types.CandidateForm
	parsing bool
}

// NewForm creates a form holding initial.
func NewForm(filler *Autofiller, initial types.CandidateForm) *Form {
	return &Form{filler: filler, state: initial.Clone()}
}

// State returns a copy of the current form values.
func (f *Form) State() types.CandidateForm {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.state.Clone()
}

// Set replaces the form values, as a user edit would.
func (f *Form) Set(state types.CandidateForm) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.state = state.Clone()
}

// Parsing reports whether an upload is outstanding.
func (f *Form) Parsing() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.parsing
}

// Upload parses the resume and merges it into the form. It returns
// ErrParseInProgress without contacting the parser if another upload is
// outstanding. On failure, including a merge that fails validation, the
// form is left as it was.
func (f *Form) Upload(ctx context.Context, fileName string, file io.Reader) (*Result, error) {
	f.mu.Lock()
	if f.parsing {
		f.mu.Unlock()
		return nil, ErrParseInProgress
	}
	f.parsing = true
	f.mu.Unlock()

	draft, raw, err := f.filler.Draft(ctx, fileName, file)

	f.mu.Lock()
	defer f.mu.Unlock()
	f.parsing = false
	if err != nil {
		return nil, err
	}
	next, err := f.filler.Merged(f.state, draft, fileName)
	if err != nil {
		return nil, err
	}
	f.state = next
	return &Result{Form: next.Clone(), Draft: draft, RawResponse: raw}, nil
}

// Tracker enforces one outstanding autofill per key when form state lives
// outside the process, e.g. per candidate ID in a store.
type Tracker struct {
	mu     sync.Mutex
	active map[string]struct{}
}

// NewTracker creates an empty Tracker.
func NewTracker() *Tracker {
	return &Tracker{active: make(map[string]struct{})}
}

// Acquire marks key busy. The returned release must be called once the
// autofill has finished, successfully or not.
func (t *Tracker) Acquire(key string) (release func(), err error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if _, busy := t.active[key]; busy {
		return nil, ErrParseInProgress
	}
	t.active[key] = struct{}{}

	var once sync.Once
	return func() {
		once.Do(func() {
			t.mu.Lock()
			delete(t.active, key)
			t.mu.Unlock()
		})
	}, nil
}
