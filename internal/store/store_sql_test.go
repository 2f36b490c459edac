package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mind-engage/mindengage-selfcheck/internal/assessment"
	"github.com/mind-engage/mindengage-selfcheck/internal/db"
	syncx "github.com/mind-engage/mindengage-selfcheck/internal/sync"
)

func testDefinition() assessment.Definition {
	scale := assessment.Scale()
	return assessment.Definition{
		ID:           "mood",
		Title:        "Mood check",
		DefaultImage: "mood.png",
		Questions: []assessment.Question{
			{ID: "q1", Category: "energy", Options: scale},
			{ID: "q2", Category: "energy", Options: scale},
			{ID: "q3", Category: "sleep", Options: scale},
		},
		Bands: []assessment.ScoreBand{
			{ID: "low", Min: 0, Max: 4, Title: "Low"},
			{ID: "mid", Min: 5, Max: 8, Title: "Mid", Tips: []string{"walk"}},
			{ID: "high", Min: 9, Max: 12, Title: "High", Image: "high.png"},
		},
	}
}

func newTestStore(t *testing.T) (*SQLStore, *sql.DB) {
	t.Helper()
	h, err := db.Open(context.Background(), db.DriverSQLite, ":memory:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = h.Close() })

	s := NewSQLStore(h)
	clock := time.Unix(1_700_000_000, 0)
	s.now = func() time.Time {
		clock = clock.Add(time.Second)
		return clock
	}
	require.NoError(t, s.PutDefinition(context.Background(), testDefinition()))
	return s, h
}

func TestDefinitions_PutGetList(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	got, err := s.GetDefinition(ctx, "mood")
	require.NoError(t, err)
	assert.Equal(t, testDefinition(), got)

	updated := testDefinition()
	updated.Title = "Mood check v2"
	require.NoError(t, s.PutDefinition(ctx, updated))
	list, err := s.ListDefinitions(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "Mood check v2", list[0].Title)

	_, err = s.GetDefinition(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestAttempt_Lifecycle(t *testing.T) {
	s, h := newTestStore(t)
	ctx := context.Background()

	a, err := s.NewAttempt(ctx, "mood", "u1")
	require.NoError(t, err)
	assert.Equal(t, StatusInProgress, a.Status)
	assert.Len(t, a.ID, 36)

	_, err = s.SaveResponses(ctx, a.ID, assessment.Responses{"q1": assessment.Often, "q3": assessment.Never})
	require.NoError(t, err)
	a, err = s.SaveResponses(ctx, a.ID, assessment.Responses{"q3": assessment.Sometimes, "q99": assessment.VeryOften})
	require.NoError(t, err)
	assert.Equal(t, assessment.Responses{"q1": assessment.Often, "q3": assessment.Sometimes, "q99": assessment.VeryOften}, a.Responses)
	assert.Nil(t, a.Result)

	a, submitted, err := s.Submit(ctx, a.ID)
	require.NoError(t, err)
	assert.True(t, submitted)
	assert.Equal(t, StatusSubmitted, a.Status)
	assert.Equal(t, 5, a.TotalScore)
	assert.Equal(t, 12, a.MaxTotal)
	assert.Equal(t, "mid", a.BandID)
	assert.NotZero(t, a.SubmittedAt)
	require.NotNil(t, a.Result)
	assert.Equal(t, "Mid", a.Result.Title)
	assert.Equal(t, "mood.png", a.Result.Image)
	assert.Equal(t, []assessment.CategoryScore{{Label: "Energy", Score: 60}, {Label: "Sleep", Score: 40}}, a.Result.Results)

	again, submitted, err := s.Submit(ctx, a.ID)
	require.NoError(t, err)
	assert.False(t, submitted)
	assert.Equal(t, a, again)

	_, err = s.SaveResponses(ctx, a.ID, assessment.Responses{"q2": assessment.Often})
	assert.ErrorIs(t, err, ErrAlreadySubmitted)

	events, err := syncx.NewEventRepo(h).Since(ctx, 0, 10)
	require.NoError(t, err)
	require.Len(t, events, 1, "second submit must not log again")
	assert.Equal(t, syncx.TypeAttemptSubmitted, events[0].Type)
	assert.Equal(t, a.ID, events[0].Key)
	var payload submittedEvent
	require.NoError(t, json.Unmarshal([]byte(events[0].DataJSON), &payload))
	assert.Equal(t, submittedEvent{AttemptID: a.ID, AssessmentID: "mood", UserID: "u1", TotalScore: 5, MaxTotal: 12, BandID: "mid"}, payload)
}

func TestSubmit_EmptyAttemptLandsInFirstBand(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	a, err := s.NewAttempt(ctx, "mood", "u1")
	require.NoError(t, err)

	a, _, err = s.Submit(ctx, a.ID)
	require.NoError(t, err)
	assert.Equal(t, "low", a.BandID)
	assert.Empty(t, a.Result.Results)
}

func TestNewAttempt_UnknownAssessment(t *testing.T) {
	s, _ := newTestStore(t)
	_, err := s.NewAttempt(context.Background(), "nope", "u1")
	assert.ErrorIs(t, err, ErrNotFound)

	_, err = s.GetAttempt(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
	_, _, err = s.Submit(context.Background(), "nope")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestListAttempts_Filters(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()

	a1, err := s.NewAttempt(ctx, "mood", "u1")
	require.NoError(t, err)
	a2, err := s.NewAttempt(ctx, "mood", "u2")
	require.NoError(t, err)
	a3, err := s.NewAttempt(ctx, "mood", "u1")
	require.NoError(t, err)
	_, _, err = s.Submit(ctx, a3.ID)
	require.NoError(t, err)

	mine, err := s.ListAttempts(ctx, AttemptListOpts{UserID: "u1"})
	require.NoError(t, err)
	require.Len(t, mine, 2)
	assert.Equal(t, a3.ID, mine[0].ID, "newest first")
	assert.Equal(t, a1.ID, mine[1].ID)

	submitted, err := s.ListAttempts(ctx, AttemptListOpts{AssessmentID: "mood", Status: StatusSubmitted})
	require.NoError(t, err)
	require.Len(t, submitted, 1)
	assert.Equal(t, a3.ID, submitted[0].ID)

	page, err := s.ListAttempts(ctx, AttemptListOpts{Limit: 1, Offset: 1})
	require.NoError(t, err)
	require.Len(t, page, 1)
	assert.Equal(t, a2.ID, page[0].ID)
}

type countingStore struct {
	Store
	gets int
}

func (c *countingStore) GetDefinition(ctx context.Context, id string) (assessment.Definition, error) {
	c.gets++
	return c.Store.GetDefinition(ctx, id)
}

func TestCachedStore(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	counting := &countingStore{Store: s}
	cached, err := NewCachedStore(counting, 4)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err := cached.GetDefinition(ctx, "mood")
		require.NoError(t, err)
	}
	assert.Equal(t, 1, counting.gets)

	d := testDefinition()
	d.Title = "changed"
	require.NoError(t, cached.PutDefinition(ctx, d))
	got, err := cached.GetDefinition(ctx, "mood")
	require.NoError(t, err)
	assert.Equal(t, "changed", got.Title)
	assert.Equal(t, 2, counting.gets)

	_, err = cached.GetDefinition(ctx, "missing")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestSeed(t *testing.T) {
	s, _ := newTestStore(t)
	ctx := context.Background()
	other := testDefinition()
	other.ID = "other"
	require.NoError(t, Seed(ctx, s, []assessment.Definition{testDefinition(), other}))

	list, err := s.ListDefinitions(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)
}

func TestSubmit_ConcurrentCallsTransitionOnce(t *testing.T) {
	s, h := newTestStore(t)
	ctx := context.Background()
	a, err := s.NewAttempt(ctx, "mood", "u1")
	require.NoError(t, err)
	_, err = s.SaveResponses(ctx, a.ID, assessment.Responses{"q1": assessment.Often})
	require.NoError(t, err)

	const n = 8
	var wg sync.WaitGroup
	results := make(chan bool, n)
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			got, submitted, err := s.Submit(ctx, a.ID)
			assert.NoError(t, err)
			assert.Equal(t, 3, got.TotalScore)
			results <- submitted
		}()
	}
	wg.Wait()
	close(results)

	transitions := 0
	for submitted := range results {
		if submitted {
			transitions++
		}
	}
	assert.Equal(t, 1, transitions)

	events, err := syncx.NewEventRepo(h).Since(ctx, 0, 10)
	require.NoError(t, err)
	assert.Len(t, events, 1)
}
