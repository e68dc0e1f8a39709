package app

import (
	"context"
	"errors"
	"log"
	"sync"
	"time"

	"school-meal/internal/config"
	"school-meal/internal/meal"
	"school-meal/internal/metrics"
	"school-meal/internal/neis"

	"github.com/rs/xid"
)

const (
	MsgEmptyDate   = "날짜를 선택해주세요."
	MsgFetchFailed = "급식정보를 불러오는 중 오류가 발생했습니다."
)

var (
	ErrEmptyDate   = errors.New("empty date input")
	ErrInvalidDate = errors.New("invalid date input")
)

// Renderer makes the view for a state visible and hides the others.
// Render is called with the controller's lock held and must not call back
// into the controller.
type Renderer interface {
	Render(s meal.State)
}

// RendererFunc adapts a function to Renderer.
type RendererFunc func(s meal.State)

func (f RendererFunc) Render(s meal.State) { f(s) }

// Recorder stores one diagnostics row per fetch.
type Recorder interface {
	Record(m metrics.FetchMetric) error
}

// Controller is the meal query state machine. It owns the single display
// state and the last submitted date. Overlapping fetches are not
// de-duplicated: whichever resolves last sets the final state.
type Controller struct {
	fetcher     neis.Client
	renderer    Renderer
	recorder    Recorder
	showDetails bool
	delay       time.Duration
	loc         *time.Location
	now         func() time.Time

	// lifetime of the mounted view; cancelled by Close
	ctx    context.Context
	cancel context.CancelFunc

	mu       sync.Mutex
	state    meal.State
	lastDate string
	// day (in loc) on which lastDate was submitted
	submittedOn string
	timer       *time.Timer
	closed      bool
}

// NewController creates a Controller. recorder may be nil.
func NewController(cfg *config.Config, fetcher neis.Client, renderer Renderer, recorder Recorder) *Controller {
	ctx, cancel := context.WithCancel(context.Background())
	if renderer == nil {
		renderer = RendererFunc(func(meal.State) {})
	}
	return &Controller{
		fetcher:     fetcher,
		renderer:    renderer,
		recorder:    recorder,
		showDetails: cfg.ShowErrorDetails,
		delay:       cfg.AutoFetchDelay,
		loc:         cfg.Location,
		now:         time.Now,
		ctx:         ctx,
		cancel:      cancel,
	}
}

// State returns the current display state, nil before the first query.
func (c *Controller) State() meal.State {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.state
}

// LastDate returns the date accepted today, or today if nothing has been
// submitted since midnight.
func (c *Controller) LastDate() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	today := meal.Today(c.now(), c.loc)
	if c.lastDate != "" && c.submittedOn == today {
		return c.lastDate
	}
	return today
}

// SetClock replaces the time source used for "today".
func (c *Controller) SetClock(now func() time.Time) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = now
}

// Today returns the current date in the configured zone.
func (c *Controller) Today() string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return meal.Today(c.now(), c.loc)
}

// Submit runs a query to completion and returns the final state.
func (c *Controller) Submit(ctx context.Context, date string) meal.State {
	if err := c.begin(date); err != nil {
		return c.State()
	}
	return c.fetchAndRender(ctx, date)
}

// SubmitAsync validates date and shows Loading before returning; the fetch
// itself runs in the background until it resolves or the controller closes.
func (c *Controller) SubmitAsync(date string) {
	if err := c.begin(date); err != nil {
		return
	}
	go c.fetchAndRender(c.ctx, date)
}

// Mount is called whenever the view is loaded. It schedules the default
// query for today after the configured delay, unless a query was already
// submitted today or one is pending.
func (c *Controller) Mount() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed || c.timer != nil {
		return
	}
	if c.lastDate != "" && c.submittedOn == meal.Today(c.now(), c.loc) {
		return
	}
	c.timer = time.AfterFunc(c.delay, func() {
		date := c.Today()
		err := c.begin(date)

		// submittedOn now guards against a second default query
		c.mu.Lock()
		c.timer = nil
		c.mu.Unlock()

		if err == nil {
			c.fetchAndRender(c.ctx, date)
		}
	})
}

// Close stops the pending default query, cancels in-flight fetches and
// drops every later state change.
func (c *Controller) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	if c.timer != nil {
		c.timer.Stop()
	}
	c.cancel()
}

func (c *Controller) begin(date string) error {
	if date == "" {
		c.setState(meal.Error{Message: MsgEmptyDate})
		return ErrEmptyDate
	}
	if _, err := meal.ParseDate(date); err != nil {
		log.Printf("급식정보 조회 오류: %v", err)
		c.setState(c.fetchError(errors.Join(ErrInvalidDate, err)))
		return ErrInvalidDate
	}

	c.mu.Lock()
	c.lastDate = date
	c.submittedOn = meal.Today(c.now(), c.loc)
	c.mu.Unlock()

	c.setState(meal.Loading{})
	return nil
}

func (c *Controller) fetchAndRender(ctx context.Context, date string) meal.State {
	id := xid.New()
	start := time.Now()

	records, err := c.fetcher.FetchMealInfo(ctx, date)
	latency := time.Since(start)

	var next meal.State
	if err != nil {
		log.Printf("[%s] 급식정보 조회 오류 (%s): %v", id, date, err)
		next = c.fetchError(err)
	} else {
		next = meal.Extract(date, records)
	}

	c.record(metrics.FetchMetric{
		RequestID: id.String(),
		QueryDate: date,
		Outcome:   Classify(next, err),
		Status:    statusOf(err),
		LatencyMS: latency.Milliseconds(),
	})

	c.setState(next)
	return next
}

func (c *Controller) fetchError(err error) meal.Error {
	e := meal.Error{Message: MsgFetchFailed}
	if c.showDetails {
		e.Details = err.Error()
	}
	return e
}

func (c *Controller) setState(s meal.State) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	c.state = s
	c.renderer.Render(s)
}

func (c *Controller) record(m metrics.FetchMetric) {
	if c.recorder == nil {
		return
	}
	if err := c.recorder.Record(m); err != nil {
		log.Printf("Warning: failed to record fetch metric %s: %v", m.RequestID, err)
	}
}
