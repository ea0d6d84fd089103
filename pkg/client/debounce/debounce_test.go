package debounce_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/spec-kit/dealer-service/pkg/client/debounce"
)

const delay = 30 * time.Millisecond

func collect(emissions chan string, wait time.Duration) []string {
	deadline := time.After(wait)
	var got []string
	for {
		select {
		case value := <-emissions:
			got = append(got, value)
		case <-deadline:
			return got
		}
	}
}

func TestRapidSetsEmitOnlyLastValue(t *testing.T) {
	emissions := make(chan string, 8)
	d := debounce.New(delay, func(value string) { emissions <- value })
	defer d.Stop()

	for _, value := range []string{"j", "jo", "joh", "john"} {
		d.Set(value)
		time.Sleep(delay / 10)
	}

	got := collect(emissions, 5*delay)
	require.Equal(t, []string{"john"}, got)
}

func TestSettledValuesEmitSeparately(t *testing.T) {
	emissions := make(chan string, 8)
	d := debounce.New(delay, func(value string) { emissions <- value })
	defer d.Stop()

	d.Set("first")
	time.Sleep(4 * delay)
	d.Set("second")

	got := collect(emissions, 5*delay)
	require.Equal(t, []string{"first", "second"}, got)
}

func TestSetRacingExpiredTimerEmitsOnce(t *testing.T) {
	// A Set landing just as the previous quiet period elapses must not let
	// the expired timer's callback emit the new value early and again later.
	for trial := 0; trial < 25; trial++ {
		emissions := make(chan string, 8)
		d := debounce.New(delay, func(value string) { emissions <- value })

		d.Set("a")
		time.Sleep(delay)
		d.Set("b")

		got := collect(emissions, 5*delay)
		d.Stop()

		require.NotEmpty(t, got)
		require.Equal(t, "b", got[len(got)-1])
		counts := make(map[string]int)
		for _, value := range got {
			counts[value]++
			require.Equal(t, 1, counts[value], "value %q emitted twice", value)
		}
	}
}

func TestStopCancelsPendingEmission(t *testing.T) {
	emissions := make(chan string, 1)
	d := debounce.New(delay, func(value string) { emissions <- value })

	d.Set("never")
	d.Stop()

	require.Empty(t, collect(emissions, 4*delay))

	// Sets after Stop are ignored too.
	d.Set("still never")
	require.Empty(t, collect(emissions, 4*delay))
}

func TestFlushEmitsImmediately(t *testing.T) {
	emissions := make(chan string, 1)
	d := debounce.New(time.Hour, func(value string) { emissions <- value })
	defer d.Stop()

	d.Set("now")
	d.Flush()

	select {
	case value := <-emissions:
		require.Equal(t, "now", value)
	case <-time.After(time.Second):
		t.Fatal("flush did not emit")
	}

	// Flush with nothing pending is a no-op.
	d.Flush()
	require.Empty(t, collect(emissions, 20*time.Millisecond))
}
