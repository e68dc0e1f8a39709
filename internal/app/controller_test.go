package app

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"school-meal/internal/config"
	"school-meal/internal/meal"
	"school-meal/internal/metrics"
	"school-meal/internal/neis"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

type stateLog struct {
	mu     sync.Mutex
	states []meal.State
}

func (l *stateLog) Render(s meal.State) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.states = append(l.states, s)
}

func (l *stateLog) kinds() []meal.Kind {
	l.mu.Lock()
	defer l.mu.Unlock()
	kinds := make([]meal.Kind, 0, len(l.states))
	for _, s := range l.states {
		kinds = append(kinds, s.Kind())
	}
	return kinds
}

type metricLog struct {
	mu      sync.Mutex
	metrics []metrics.FetchMetric
}

func (l *metricLog) Record(m metrics.FetchMetric) error {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.metrics = append(l.metrics, m)
	return nil
}

func (l *metricLog) count() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.metrics)
}

func testConfig() *config.Config {
	return &config.Config{
		Location:       time.UTC,
		AutoFetchDelay: 10 * time.Millisecond,
	}
}

func newTestController(t *testing.T, cfg *config.Config) (*Controller, *MockClient, *stateLog, *metricLog) {
	t.Helper()
	ctrl := gomock.NewController(t)
	client := NewMockClient(ctrl)
	views := &stateLog{}
	recs := &metricLog{}
	c := NewController(cfg, client, views, recs)
	t.Cleanup(c.Close)
	return c, client, views, recs
}

func TestSubmit(t *testing.T) {
	ctx := context.Background()

	t.Run("EmptyDate", func(t *testing.T) {
		c, _, views, recs := newTestController(t, testConfig())

		st := c.Submit(ctx, "")

		assert.Equal(t, meal.Error{Message: MsgEmptyDate}, st)
		assert.Equal(t, []meal.Kind{meal.KindError}, views.kinds())
		assert.Zero(t, recs.count())
	})

	t.Run("InvalidDate", func(t *testing.T) {
		c, _, views, _ := newTestController(t, testConfig())

		st := c.Submit(ctx, "2024-02-30")

		assert.Equal(t, meal.Error{Message: MsgFetchFailed}, st)
		assert.Equal(t, []meal.Kind{meal.KindError}, views.kinds())
	})

	t.Run("LunchMenu", func(t *testing.T) {
		c, client, views, recs := newTestController(t, testConfig())
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-01-01").Return([]neis.MealRecord{
			{MealCode: "2", Dishes: "밥<br/>국&amp;김치"},
		}, nil)

		st := c.Submit(ctx, "2024-01-01")

		list, ok := st.(meal.MealList)
		require.True(t, ok, "expected MealList, got %T", st)
		assert.Equal(t, []string{"밥", "국&김치"}, list.Items)
		assert.Equal(t, "2024년 1월 1일 (월)", list.Label)
		assert.Equal(t, []meal.Kind{meal.KindLoading, meal.KindMealList}, views.kinds())
		assert.Equal(t, "2024-01-01", c.LastDate())

		require.Equal(t, 1, recs.count())
		assert.Equal(t, metrics.OutcomeMeal, recs.metrics[0].Outcome)
		assert.NotEmpty(t, recs.metrics[0].RequestID)
	})

	t.Run("NoInformation", func(t *testing.T) {
		c, client, views, recs := newTestController(t, testConfig())
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-03-09").Return(nil, nil)

		st := c.Submit(ctx, "2024-03-09")

		assert.Equal(t, meal.NoMeal{}, st)
		assert.Equal(t, []meal.Kind{meal.KindLoading, meal.KindNoMeal}, views.kinds())
		assert.Equal(t, metrics.OutcomeNoMeal, recs.metrics[0].Outcome)
	})

	t.Run("NoLunchRecord", func(t *testing.T) {
		c, client, _, _ := newTestController(t, testConfig())
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-03-11").Return([]neis.MealRecord{
			{MealCode: "1", Dishes: "토스트"},
		}, nil)

		st := c.Submit(ctx, "2024-03-11")

		assert.Equal(t, []string{meal.NoMenuText}, st.(meal.MealList).Items)
	})

	t.Run("TransportError", func(t *testing.T) {
		c, client, views, recs := newTestController(t, testConfig())
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-03-11").Return(nil, &neis.TransportError{Status: 503})

		st := c.Submit(ctx, "2024-03-11")

		assert.Equal(t, meal.Error{Message: MsgFetchFailed}, st)
		assert.Equal(t, []meal.Kind{meal.KindLoading, meal.KindError}, views.kinds())
		assert.Equal(t, metrics.OutcomeTransportError, recs.metrics[0].Outcome)
		assert.Equal(t, 503, recs.metrics[0].Status)
	})

	t.Run("ParseErrorWithDetails", func(t *testing.T) {
		cfg := testConfig()
		cfg.ShowErrorDetails = true
		c, client, _, recs := newTestController(t, cfg)
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-03-11").
			Return(nil, &neis.ParseError{Err: errors.New("unexpected end of JSON input")})

		st := c.Submit(ctx, "2024-03-11")

		e, ok := st.(meal.Error)
		require.True(t, ok)
		assert.Equal(t, MsgFetchFailed, e.Message)
		assert.Contains(t, e.Details, "unexpected end of JSON input")
		assert.Equal(t, metrics.OutcomeParseError, recs.metrics[0].Outcome)
	})
}

func TestSubmitAsync(t *testing.T) {
	t.Run("LoadingUntilResolved", func(t *testing.T) {
		c, client, _, _ := newTestController(t, testConfig())
		release := make(chan struct{})
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-01-01").
			DoAndReturn(func(ctx context.Context, date string) ([]neis.MealRecord, error) {
				<-release
				return []neis.MealRecord{{MealCode: "2", Dishes: "밥"}}, nil
			})

		c.SubmitAsync("2024-01-01")
		assert.Equal(t, meal.Loading{}, c.State())

		close(release)
		require.Eventually(t, func() bool {
			return c.State().Kind() == meal.KindMealList
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("EmptyDateIsSynchronous", func(t *testing.T) {
		c, _, _, _ := newTestController(t, testConfig())

		c.SubmitAsync("")

		assert.Equal(t, meal.Error{Message: MsgEmptyDate}, c.State())
	})

	t.Run("LastResponseWins", func(t *testing.T) {
		c, client, _, recs := newTestController(t, testConfig())
		releaseFirst := make(chan struct{})
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-01-01").
			DoAndReturn(func(ctx context.Context, date string) ([]neis.MealRecord, error) {
				<-releaseFirst
				return []neis.MealRecord{{MealCode: "2", Dishes: "늦은 응답"}}, nil
			})
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-01-02").Return(nil, nil)

		c.SubmitAsync("2024-01-01")
		c.SubmitAsync("2024-01-02")
		require.Eventually(t, func() bool { return recs.count() == 1 }, time.Second, 5*time.Millisecond)
		require.Eventually(t, func() bool { return c.State().Kind() == meal.KindNoMeal }, time.Second, 5*time.Millisecond)

		close(releaseFirst)
		require.Eventually(t, func() bool {
			list, ok := c.State().(meal.MealList)
			return ok && list.Items[0] == "늦은 응답"
		}, time.Second, 5*time.Millisecond)
	})
}

func TestMount(t *testing.T) {
	t.Run("DefaultQueryForToday", func(t *testing.T) {
		c, client, _, _ := newTestController(t, testConfig())
		c.now = func() time.Time { return time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC) }
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-03-11").Return([]neis.MealRecord{
			{MealCode: "2", Dishes: "비빔밥"},
		}, nil).Times(1)

		c.Mount()
		c.Mount()

		require.Eventually(t, func() bool {
			st := c.State()
			return st != nil && st.Kind() == meal.KindMealList
		}, time.Second, 5*time.Millisecond)
	})

	t.Run("NextDayQueriesAgain", func(t *testing.T) {
		c, client, _, _ := newTestController(t, testConfig())
		c.SetClock(func() time.Time { return time.Date(2024, 3, 11, 23, 50, 0, 0, time.UTC) })
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-03-11").Return([]neis.MealRecord{
			{MealCode: "2", Dishes: "밥"},
		}, nil).Times(1)
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-03-12").Return([]neis.MealRecord{
			{MealCode: "2", Dishes: "국수"},
		}, nil).Times(1)

		c.Mount()
		require.Eventually(t, func() bool {
			list, ok := c.State().(meal.MealList)
			return ok && list.Date == "2024-03-11"
		}, time.Second, 5*time.Millisecond)

		// same day: the earlier query stands
		c.Mount()
		assert.Equal(t, "2024-03-11", c.LastDate())

		c.SetClock(func() time.Time { return time.Date(2024, 3, 12, 0, 10, 0, 0, time.UTC) })
		assert.Equal(t, "2024-03-12", c.LastDate())

		c.Mount()
		require.Eventually(t, func() bool {
			list, ok := c.State().(meal.MealList)
			return ok && list.Date == "2024-03-12"
		}, time.Second, 5*time.Millisecond)
		assert.Equal(t, "2024-03-12", c.LastDate())
	})

	t.Run("SubmittedPastDateKeptForTheDay", func(t *testing.T) {
		c, client, _, _ := newTestController(t, testConfig())
		c.SetClock(func() time.Time { return time.Date(2024, 3, 11, 9, 0, 0, 0, time.UTC) })
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-01-01").Return(nil, nil).Times(1)

		c.Submit(context.Background(), "2024-01-01")
		c.Mount()

		require.Never(t, func() bool { return c.State().Kind() != meal.KindNoMeal }, 50*time.Millisecond, 5*time.Millisecond)
		assert.Equal(t, "2024-01-01", c.LastDate())
	})

	t.Run("CloseCancelsDeferredQuery", func(t *testing.T) {
		cfg := testConfig()
		cfg.AutoFetchDelay = 30 * time.Millisecond
		c, _, views, _ := newTestController(t, cfg)

		c.Mount()
		c.Close()

		time.Sleep(60 * time.Millisecond)
		assert.Nil(t, c.State())
		assert.Empty(t, views.kinds())
	})

	t.Run("CloseDropsLateResponse", func(t *testing.T) {
		c, client, views, recs := newTestController(t, testConfig())
		release := make(chan struct{})
		client.EXPECT().FetchMealInfo(gomock.Any(), "2024-01-01").
			DoAndReturn(func(ctx context.Context, date string) ([]neis.MealRecord, error) {
				<-release
				return []neis.MealRecord{{MealCode: "2", Dishes: "밥"}}, nil
			})

		c.SubmitAsync("2024-01-01")
		c.Close()
		close(release)

		require.Eventually(t, func() bool { return recs.count() == 1 }, time.Second, 5*time.Millisecond)
		require.Never(t, func() bool { return len(views.kinds()) > 1 }, 50*time.Millisecond, 5*time.Millisecond)
		assert.Equal(t, meal.Loading{}, c.State())
	})
}

func TestClassify(t *testing.T) {
	assert.Equal(t, metrics.OutcomeMeal, Classify(meal.MealList{}, nil))
	assert.Equal(t, metrics.OutcomeNoMeal, Classify(meal.NoMeal{}, nil))
	assert.Equal(t, metrics.OutcomeNotFound, Classify(meal.Error{}, &neis.NotFoundError{}))
	assert.Equal(t, metrics.OutcomeCancelled, Classify(meal.Error{}, context.Canceled))
	assert.Equal(t, metrics.OutcomeNetworkError, Classify(meal.Error{}, errors.New("dial tcp: refused")))
}
