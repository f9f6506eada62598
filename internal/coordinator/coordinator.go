package coordinator

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/sqzls/waterwatch/internal/client"
	"github.com/sqzls/waterwatch/internal/water"
	"github.com/sqzls/waterwatch/pkg/models"
)

// cycleTimeout bounds one full fetch+normalize cycle
const cycleTimeout = 60 * time.Second

// Fetcher is the subset of the API client the coordinator needs
type Fetcher interface {
	ListBillingByMonth(ctx context.Context, houseID, begin, end string) ([]models.BillingRow, error)
	GetHouseDetail(ctx context.Context, houseID string) (*models.HouseDetail, error)
}

// Coordinator runs periodic refresh cycles for one house and holds the
// latest successful summary. A failed cycle leaves the previous summary in
// place so consumers keep serving last-known-good data.
type Coordinator struct {
	fetcher  Fetcher
	houseID  string
	interval time.Duration
	log      zerolog.Logger
	now      func() time.Time

	refreshMu sync.Mutex // serializes cycles (single-flight per house)

	mu          sync.RWMutex
	data        *models.UsageSummary
	lastSuccess bool
	listeners   []func(*models.UsageSummary)
}

// New creates a coordinator for the given house
func New(fetcher Fetcher, houseID string, interval time.Duration, log zerolog.Logger) *Coordinator {
	return &Coordinator{
		fetcher:  fetcher,
		houseID:  houseID,
		interval: interval,
		log:      log,
		now:      time.Now,
	}
}

// Refresh runs one fetch+normalize cycle. Both endpoint calls complete (or
// time out) before the cycle resolves; a billing-call transport failure
// fails the cycle, a detail-call failure only degrades balance and identity
// fields.
func (c *Coordinator) Refresh(ctx context.Context) (*models.UsageSummary, error) {
	c.refreshMu.Lock()
	defer c.refreshMu.Unlock()

	ctx, cancel := context.WithTimeout(ctx, cycleTimeout)
	defer cancel()

	now := c.now()
	begin, end := client.QueryWindow(now)

	var (
		rows       []models.BillingRow
		detail     *models.HouseDetail
		billingErr error
	)

	// Neither leg may cancel the other, so both closures return nil and the
	// billing error is escalated after the join.
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, billingErr = c.fetcher.ListBillingByMonth(gctx, c.houseID, begin, end)
		return nil
	})
	g.Go(func() error {
		d, err := c.fetcher.GetHouseDetail(gctx, c.houseID)
		if err != nil {
			c.log.Warn().Err(err).Str("house_id", c.houseID).Msg("house detail unavailable")
			return nil
		}
		detail = d
		return nil
	})
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		c.setFailed()
		return nil, fmt.Errorf("update cycle timed out: %w", err)
	}
	if billingErr != nil {
		c.setFailed()
		return nil, fmt.Errorf("updating water data: %w", billingErr)
	}

	summary := water.Normalize(rows, detail, c.houseID, now)

	c.mu.Lock()
	c.data = &summary
	c.lastSuccess = true
	listeners := make([]func(*models.UsageSummary), len(c.listeners))
	copy(listeners, c.listeners)
	c.mu.Unlock()

	for _, fn := range listeners {
		fn(&summary)
	}

	c.log.Debug().
		Str("house_id", c.houseID).
		Int("history_months", len(summary.MonthlyHistory)).
		Msg("summary refreshed")

	return &summary, nil
}

// Data returns the latest successful summary, or nil before the first one
func (c *Coordinator) Data() *models.UsageSummary {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.data
}

// LastUpdateSuccess reports whether the most recent cycle succeeded
func (c *Coordinator) LastUpdateSuccess() bool {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.lastSuccess
}

// Subscribe registers a listener invoked with every fresh summary
func (c *Coordinator) Subscribe(fn func(*models.UsageSummary)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.listeners = append(c.listeners, fn)
}

// Start schedules periodic refreshes on the given scheduler and returns a
// function that cancels them
func (c *Coordinator) Start(sched Scheduler) (func(), error) {
	handle, err := sched.ScheduleEvery(c.interval, func() {
		if _, err := c.Refresh(context.Background()); err != nil {
			c.log.Error().Err(err).Str("house_id", c.houseID).Msg("scheduled refresh failed")
		}
	})
	if err != nil {
		return nil, fmt.Errorf("scheduling refresh: %w", err)
	}
	return func() { sched.Cancel(handle) }, nil
}

func (c *Coordinator) setFailed() {
	c.mu.Lock()
	c.lastSuccess = false
	c.mu.Unlock()
}
