package assist

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"seoboard/internal/engine"
)

type fakeAssistant struct {
	suggestions []string
	analysis    string
	err         error
}

func (f fakeAssistant) SuggestTasks(context.Context, string) ([]string, error) {
	return f.suggestions, f.err
}

func (f fakeAssistant) AnalyzeProgress(context.Context, engine.ProgressSnapshot) (string, error) {
	return f.analysis, f.err
}

func always(engine.Category) bool { return true }

func TestDispatcherOneInFlightPerKind(t *testing.T) {
	d := NewDispatcher()

	first, err := d.Begin(KindSuggest, engine.CategoryDaily)
	require.NoError(t, err)
	assert.True(t, d.InFlight(KindSuggest))

	_, err = d.Begin(KindSuggest, engine.CategoryWeekly)
	assert.ErrorIs(t, err, ErrInFlight)

	_, err = d.Begin(KindAnalyze, engine.CategoryCompleted)
	assert.NoError(t, err)

	assert.Equal(t, OutcomeSuccess, d.Resolve(Result{Ticket: first}, always))
	assert.False(t, d.InFlight(KindSuggest))
	_, err = d.Begin(KindSuggest, engine.CategoryWeekly)
	assert.NoError(t, err)
}

func TestDispatcherOutcomes(t *testing.T) {
	d := NewDispatcher()

	tk, _ := d.Begin(KindAnalyze, engine.CategoryCompleted)
	assert.Equal(t, OutcomeError, d.Resolve(Result{Ticket: tk, Err: errors.New("boom")}, always))

	tk, _ = d.Begin(KindSuggest, engine.CategoryDaily)
	invalid := func(engine.Category) bool { return false }
	assert.Equal(t, OutcomeDiscarded, d.Resolve(Result{Ticket: tk}, invalid))
	assert.False(t, d.InFlight(KindSuggest))

	tk, _ = d.Begin(KindSuggest, engine.CategoryDaily)
	d.Invalidate()
	assert.False(t, d.InFlight(KindSuggest))
	assert.Equal(t, OutcomeDiscarded, d.Resolve(Result{Ticket: tk}, always))

	// A stale result must not release a newer request.
	newer, _ := d.Begin(KindSuggest, engine.CategoryDaily)
	assert.Equal(t, OutcomeDiscarded, d.Resolve(Result{Ticket: tk}, always))
	assert.True(t, d.InFlight(KindSuggest))
	assert.Equal(t, OutcomeSuccess, d.Resolve(Result{Ticket: newer}, always))
}

func TestRunDeliversResult(t *testing.T) {
	d := NewDispatcher()
	tk, err := d.Begin(KindSuggest, engine.CategoryMonthly)
	require.NoError(t, err)

	a := fakeAssistant{suggestions: []string{"Refresh content"}}
	ch := Run(context.Background(), func(ctx context.Context) Result {
		return Suggest(ctx, a, tk, engine.CategoryMonthly.Label())
	})
	res, ok := <-ch
	require.True(t, ok)
	assert.Equal(t, tk, res.Ticket)
	assert.Equal(t, []string{"Refresh content"}, res.Suggestions)
	_, ok = <-ch
	assert.False(t, ok)

	res = Analyze(context.Background(), fakeAssistant{err: errors.New("x")}, tk, engine.ProgressSnapshot{})
	assert.Error(t, res.Err)
	assert.Equal(t, "x", res.Err.Error())
}
