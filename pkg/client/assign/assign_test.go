package assign_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealer-service/pkg/client"
	"github.com/spec-kit/dealer-service/pkg/client/assign"
)

const testDelay = 10 * time.Millisecond

// fakeSearcher serves canned candidate lists. A gate channel, when present,
// holds the lookup open until the test releases it.
type fakeSearcher struct {
	mu      sync.Mutex
	results map[string][]client.CustomerCandidate
	errs    map[string]error
	gates   map[string]chan struct{}
	calls   []string
	started chan string
}

func (f *fakeSearcher) SearchCustomers(ctx context.Context, email string) ([]client.CustomerCandidate, error) {
	f.mu.Lock()
	f.calls = append(f.calls, email)
	gate := f.gates[email]
	results := f.results[email]
	err := f.errs[email]
	f.mu.Unlock()

	if f.started != nil {
		f.started <- email
	}
	if gate != nil {
		<-gate
	}
	return results, err
}

func (f *fakeSearcher) callCount() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

func ada() client.CustomerCandidate {
	return client.CustomerCandidate{
		ID:          "c-1",
		Email:       "ada@dealer.test",
		FirstName:   "Ada",
		LastName:    "Lovelace",
		PhoneNumber: "555-0100",
	}
}

func newFlow(t *testing.T, searcher assign.Searcher) *assign.Flow {
	t.Helper()
	flow := assign.New(context.Background(), searcher, testDelay, nil)
	t.Cleanup(flow.Stop)
	return flow
}

func waitForCandidates(t *testing.T, flow *assign.Flow, want int) {
	t.Helper()
	require.Eventually(t, func() bool {
		return len(flow.Candidates()) == want
	}, 2*time.Second, time.Millisecond)
}

func TestExactUniqueMatchAutofillsOnBlur(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]client.CustomerCandidate{"ada@dealer.test": {ada()}},
	}
	flow := newFlow(t, searcher)

	flow.InputChanged("ada@dealer.test")
	waitForCandidates(t, flow, 1)
	require.True(t, flow.PopoverOpen())

	flow.Blur()

	form := flow.FormSnapshot()
	require.True(t, form.Locked)
	require.Equal(t, "Ada", form.FirstName)
	require.Equal(t, "Lovelace", form.LastName)
	require.Equal(t, "555-0100", form.PhoneNumber)
	require.False(t, flow.PopoverOpen())
}

func TestBlurNeverAutofillsWithoutExactUniqueMatch(t *testing.T) {
	t.Run("multiple candidates", func(t *testing.T) {
		searcher := &fakeSearcher{
			results: map[string][]client.CustomerCandidate{
				"a": {ada(), {ID: "c-2", Email: "al@dealer.test", FirstName: "Al"}},
			},
		}
		flow := newFlow(t, searcher)

		flow.InputChanged("a")
		waitForCandidates(t, flow, 2)
		flow.Blur()

		require.False(t, flow.FormSnapshot().Locked)
		require.False(t, flow.PopoverOpen())
	})

	t.Run("single candidate but field not equal", func(t *testing.T) {
		searcher := &fakeSearcher{
			results: map[string][]client.CustomerCandidate{"ada@": {ada()}},
		}
		flow := newFlow(t, searcher)

		flow.InputChanged("ada@")
		waitForCandidates(t, flow, 1)
		flow.Blur()

		require.False(t, flow.FormSnapshot().Locked)
	})
}

func TestSelectAutofillsAndClosesPopover(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]client.CustomerCandidate{"ada": {ada()}},
	}
	flow := newFlow(t, searcher)

	flow.InputChanged("ada")
	waitForCandidates(t, flow, 1)

	flow.Select(flow.Candidates()[0])

	require.Equal(t, "ada@dealer.test", flow.Email())
	form := flow.FormSnapshot()
	require.True(t, form.Locked)
	require.Equal(t, "Ada", form.FirstName)
	require.False(t, flow.PopoverOpen())
}

func TestTypingPastMatchReleasesLock(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]client.CustomerCandidate{"ada@dealer.test": {ada()}},
	}
	flow := newFlow(t, searcher)

	flow.InputChanged("ada@dealer.test")
	waitForCandidates(t, flow, 1)
	flow.Blur()
	require.True(t, flow.FormSnapshot().Locked)

	flow.InputChanged("ada@dealer.testx")

	form := flow.FormSnapshot()
	require.False(t, form.Locked)
	require.Empty(t, form.FirstName)
}

func TestStaleLookupResultDiscarded(t *testing.T) {
	first := make(chan struct{})
	second := make(chan struct{})
	searcher := &fakeSearcher{
		results: map[string][]client.CustomerCandidate{
			"a":  {{ID: "stale", Email: "stale@dealer.test"}},
			"ab": {ada()},
		},
		gates:   map[string]chan struct{}{"a": first, "ab": second},
		started: make(chan string, 2),
	}
	flow := newFlow(t, searcher)

	flow.InputChanged("a")
	require.Equal(t, "a", <-searcher.started)

	flow.InputChanged("ab")
	require.Equal(t, "ab", <-searcher.started)

	// The newer lookup resolves first and wins.
	close(second)
	waitForCandidates(t, flow, 1)
	require.Equal(t, "ada@dealer.test", flow.Candidates()[0].Email)

	// The older lookup resolves late; its result must not overwrite the list.
	close(first)
	time.Sleep(5 * testDelay)
	require.Equal(t, "ada@dealer.test", flow.Candidates()[0].Email)
}

func TestClearedInputDiscardsInFlightLookup(t *testing.T) {
	gate := make(chan struct{})
	searcher := &fakeSearcher{
		results: map[string][]client.CustomerCandidate{"ada@dealer.test": {ada()}},
		gates:   map[string]chan struct{}{"ada@dealer.test": gate},
		started: make(chan string, 1),
	}
	flow := newFlow(t, searcher)

	flow.InputChanged("ada@dealer.test")
	require.Equal(t, "ada@dealer.test", <-searcher.started)

	// The field is emptied while the lookup is still running.
	flow.InputChanged("")
	time.Sleep(5 * testDelay)

	close(gate)
	time.Sleep(5 * testDelay)

	require.Empty(t, flow.Candidates())
	require.False(t, flow.PopoverOpen())
}

func TestBlankInputClearsCandidatesWithoutLookup(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]client.CustomerCandidate{"ada": {ada()}},
	}
	flow := newFlow(t, searcher)

	flow.InputChanged("ada")
	waitForCandidates(t, flow, 1)
	calls := searcher.callCount()

	flow.InputChanged("   ")
	waitForCandidates(t, flow, 0)

	require.False(t, flow.PopoverOpen())
	require.Equal(t, calls, searcher.callCount())
}

func TestLookupErrorDegradesToNoCandidates(t *testing.T) {
	searcher := &fakeSearcher{
		errs:    map[string]error{"boom@dealer.test": errors.New("search unavailable")},
		started: make(chan string, 1),
	}
	flow := newFlow(t, searcher)

	flow.InputChanged("boom@dealer.test")
	require.Equal(t, "boom@dealer.test", <-searcher.started)

	time.Sleep(5 * testDelay)
	require.Empty(t, flow.Candidates())
	require.False(t, flow.PopoverOpen())
}

func TestParentChangeResetsDependentState(t *testing.T) {
	searcher := &fakeSearcher{
		results: map[string][]client.CustomerCandidate{"ada@dealer.test": {ada()}},
	}
	flow := newFlow(t, searcher)

	flow.InputChanged("ada@dealer.test")
	waitForCandidates(t, flow, 1)
	flow.Blur()
	require.True(t, flow.FormSnapshot().Locked)

	flow.ParentChanged()

	require.Empty(t, flow.Candidates())
	require.False(t, flow.PopoverOpen())
	form := flow.FormSnapshot()
	require.False(t, form.Locked)
	require.Empty(t, form.FirstName)
}
