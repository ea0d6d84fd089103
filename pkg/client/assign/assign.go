// Package assign implements the customer-assignment autocomplete: typed email
// input is debounced, resolved against existing customers, and an exact unique
// match prefills and locks the dependent form fields.
package assign

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/spec-kit/dealer-service/pkg/client"
	"github.com/spec-kit/dealer-service/pkg/client/debounce"
)

// DefaultDelay is the quiet period applied to keystrokes.
const DefaultDelay = 300 * time.Millisecond

// Searcher resolves an email fragment to candidate customers. *client.Client
// satisfies it.
type Searcher interface {
	SearchCustomers(ctx context.Context, email string) ([]client.CustomerCandidate, error)
}

// Form is the dependent-fields snapshot. Locked fields render read-only; the
// email field itself always stays editable.
type Form struct {
	FirstName   string
	LastName    string
	PhoneNumber string
	Locked      bool
}

// Flow drives one assignment form instance.
type Flow struct {
	searcher Searcher
	debounce *debounce.Debouncer[string]
	logger   *zap.Logger
	ctx      context.Context
	cancel   context.CancelFunc

	mu          sync.Mutex
	email       string
	lockedEmail string
	seq         uint64
	candidates  []client.CustomerCandidate
	open        bool
	form        Form
}

// New creates a flow bound to ctx; Stop (or ctx cancellation) ends all
// pending work.
func New(ctx context.Context, searcher Searcher, delay time.Duration, logger *zap.Logger) *Flow {
	if delay <= 0 {
		delay = DefaultDelay
	}
	if logger == nil {
		logger = zap.NewNop()
	}

	ctx, cancel := context.WithCancel(ctx)
	f := &Flow{
		searcher: searcher,
		logger:   logger,
		ctx:      ctx,
		cancel:   cancel,
	}
	f.debounce = debounce.New(delay, f.settled)
	return f
}

// InputChanged records a keystroke in the email field. Typing past a locked
// match releases the lock so stale prefills never survive.
func (f *Flow) InputChanged(email string) {
	f.mu.Lock()
	f.email = email
	if f.form.Locked && email != f.lockedEmail {
		f.form = Form{}
		f.lockedEmail = ""
	}
	f.mu.Unlock()

	f.debounce.Set(email)
}

// Select applies a candidate the user clicked in the popover.
func (f *Flow) Select(candidate client.CustomerCandidate) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.email = candidate.Email
	f.autofill(candidate)
	f.open = false
}

// Blur closes the popover; if exactly one candidate remains and its email
// strictly equals the field value, it autofills first.
func (f *Flow) Blur() {
	f.mu.Lock()
	defer f.mu.Unlock()
	if len(f.candidates) == 1 && f.candidates[0].Email == f.email {
		f.autofill(f.candidates[0])
	}
	f.open = false
}

// ParentChanged resets dependent state when an upstream selection invalidates
// the form (the make/model pattern).
func (f *Flow) ParentChanged() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.seq++ // discard any in-flight lookup
	f.candidates = nil
	f.form = Form{}
	f.lockedEmail = ""
	f.open = false
}

// Candidates returns the current suggestion list.
func (f *Flow) Candidates() []client.CustomerCandidate {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]client.CustomerCandidate(nil), f.candidates...)
}

// PopoverOpen reports whether the suggestion list is showing.
func (f *Flow) PopoverOpen() bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.open
}

// FormSnapshot returns the dependent-field values and lock state.
func (f *Flow) FormSnapshot() Form {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.form
}

// Email returns the current raw field value.
func (f *Flow) Email() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.email
}

// Stop tears the flow down; no lookups or emissions happen afterwards.
func (f *Flow) Stop() {
	f.debounce.Stop()
	f.cancel()
	f.mu.Lock()
	f.seq++
	f.open = false
	f.mu.Unlock()
}

// settled receives the debounced field value. Blank input never triggers a
// lookup; each lookup is sequence-numbered so only the latest result may
// populate the list.
func (f *Flow) settled(value string) {
	if strings.TrimSpace(value) == "" {
		f.mu.Lock()
		f.seq++ // a lookup still in flight must not repopulate a cleared field
		f.candidates = nil
		f.open = false
		f.mu.Unlock()
		return
	}

	f.mu.Lock()
	f.seq++
	seq := f.seq
	f.mu.Unlock()

	go f.lookup(seq, value)
}

func (f *Flow) lookup(seq uint64, value string) {
	candidates, err := f.searcher.SearchCustomers(f.ctx, value)
	if err != nil {
		// Lookup failures degrade to "no candidates"; the form stays usable.
		f.logger.Warn("customer lookup failed", zap.String("email", value), zap.Error(err))
		candidates = nil
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	if seq != f.seq {
		// A later keystroke settled while this lookup was in flight.
		return
	}
	f.candidates = candidates
	f.open = len(candidates) > 0
}

// autofill writes the candidate into the dependent fields and locks them.
// Callers must hold f.mu.
func (f *Flow) autofill(candidate client.CustomerCandidate) {
	f.form = Form{
		FirstName:   candidate.FirstName,
		LastName:    candidate.LastName,
		PhoneNumber: candidate.PhoneNumber,
		Locked:      true,
	}
	f.lockedEmail = candidate.Email
}
