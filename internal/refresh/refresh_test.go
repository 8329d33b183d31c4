package refresh_test

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/derickschaefer/aquarius/internal/observability"
	"github.com/derickschaefer/aquarius/internal/period"
	"github.com/derickschaefer/aquarius/internal/refresh"
)

var quiet = slog.New(slog.NewTextHandler(io.Discard, nil))

type applied struct {
	mu      sync.Mutex
	periods []string
	results []string
	errs    []error
}

func (a *applied) apply(p string, result string, err error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.periods = append(a.periods, p)
	a.results = append(a.results, result)
	a.errs = append(a.errs, err)
}

func (a *applied) snapshot() []string {
	a.mu.Lock()
	defer a.mu.Unlock()
	return append([]string(nil), a.results...)
}

func TestStaleResultNeverApplied(t *testing.T) {
	release := map[string]chan struct{}{
		"01.01.2025": make(chan struct{}),
		"02.01.2025": make(chan struct{}),
	}
	started := make(chan string, 2)
	fetch := func(ctx context.Context, p string) (string, error) {
		started <- p
		<-release[p]
		// Ignores cancellation on purpose to model a slow server.
		return "result " + p, nil
	}

	m := observability.NewMetrics()
	var got applied
	r := refresh.New(context.Background(), fetch, got.apply, quiet, m)

	r.Trigger("01.01.2025")
	require.Equal(t, "01.01.2025", <-started)
	r.Trigger("02.01.2025")
	require.Equal(t, "02.01.2025", <-started)

	close(release["02.01.2025"])
	close(release["01.01.2025"])
	r.Wait()

	assert.Equal(t, []string{"result 02.01.2025"}, got.snapshot())
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshStale))
	assert.Equal(t, 1.0, testutil.ToFloat64(m.RefreshApplied))
	assert.Equal(t, uint64(2), r.Generation())
}

func TestTriggerCancelsPrevious(t *testing.T) {
	fetch := func(ctx context.Context, p string) (string, error) {
		if p == "old" {
			<-ctx.Done()
			return "", ctx.Err()
		}
		return "fresh", nil
	}

	var got applied
	r := refresh.New(context.Background(), fetch, got.apply, quiet, nil)
	r.Trigger("old")
	r.Trigger("new")
	r.Wait()

	assert.Equal(t, []string{"fresh"}, got.snapshot())
}

func TestErrorsReachApply(t *testing.T) {
	boom := errors.New("boom")
	fetch := func(ctx context.Context, p string) (string, error) {
		return "", boom
	}

	var got applied
	r := refresh.New(context.Background(), fetch, got.apply, quiet, nil)
	r.Trigger("")
	r.Wait()

	require.Len(t, got.errs, 1)
	assert.ErrorIs(t, got.errs[0], boom)
	assert.Equal(t, []string{""}, got.periods)
}

func TestStopDiscardsInFlight(t *testing.T) {
	fetch := func(ctx context.Context, p string) (string, error) {
		<-ctx.Done()
		return "late", nil
	}

	var got applied
	r := refresh.New(context.Background(), fetch, got.apply, quiet, nil)
	r.Trigger("01.01.2025")
	r.Stop()

	assert.Empty(t, got.snapshot())
}

func TestBindFollowsPeriodStore(t *testing.T) {
	store := period.Open(period.NewMemoryStorage(), quiet)
	defer store.Close()

	fetch := func(ctx context.Context, p string) (string, error) {
		return "view " + p, nil
	}
	var got applied
	r := refresh.New(context.Background(), fetch, got.apply, quiet, nil)
	unbind := r.Bind(store)

	require.NoError(t, store.Set("15.01.2025"))
	r.Wait()
	assert.Equal(t, []string{"view 15.01.2025"}, got.snapshot())

	unbind()
	require.NoError(t, store.Set("16.01.2025"))
	r.Wait()
	assert.Len(t, got.snapshot(), 1)
}
