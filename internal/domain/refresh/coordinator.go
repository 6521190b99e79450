// Package refresh debounces post-import and post-categorization refresh work
// so a burst of pipeline events collapses into one recomputation.
package refresh

import (
	"log/slog"
	"sync"
	"time"

	"github.com/jkmdale/your-ai-finance-brain-sub003/internal/bus"
	"github.com/jkmdale/your-ai-finance-brain-sub003/pkg/config"
)

// Refresher receives the debounced refresh callbacks.
type Refresher interface {
	RefreshDashboard()
	ResetInsights()
}

// importVolumeThreshold is the transaction count above which the import
// delay starts scaling up, giving large imports more time to settle.
const importVolumeThreshold = 50

// Coordinator listens to pipeline events and schedules refreshes on owned
// timers. Each signal category has one pending timer at most; a newer signal
// replaces the older one, so the last-scheduled delay wins.
type Coordinator struct {
	refresher Refresher
	cfg       config.RefreshConfig
	logger    *slog.Logger

	mu          sync.Mutex
	importTimer *time.Timer
	catTimer    *time.Timer
	closed      bool

	cancels []func()
}

// NewCoordinator creates a coordinator wired to the bus topics.
func NewCoordinator(b *bus.Bus, refresher Refresher, cfg config.RefreshConfig, logger *slog.Logger) *Coordinator {
	c := &Coordinator{
		refresher: refresher,
		cfg:       cfg,
		logger:    logger,
	}
	c.cancels = append(c.cancels,
		b.ImportComplete.Subscribe(c.onImportComplete),
		b.CategorizationComplete.Subscribe(c.onCategorizationComplete),
	)
	return c
}

// onImportComplete schedules a dashboard refresh and insight reset, with the
// delay scaled by import volume.
func (c *Coordinator) onImportComplete(event bus.ImportCompleteEvent) {
	delay := c.importDelay(event.TotalTransactions)
	c.logger.Debug("scheduling refresh after import",
		slog.Int("transactions", event.TotalTransactions),
		slog.Duration("delay", delay),
	)

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.importTimer != nil {
		c.importTimer.Stop()
	}
	c.importTimer = time.AfterFunc(delay, func() {
		c.refresher.ResetInsights()
		c.refresher.RefreshDashboard()
	})
}

// onCategorizationComplete schedules a refresh on the short fixed tier; no
// further writes are expected after a categorization pass.
func (c *Coordinator) onCategorizationComplete(bus.CategorizationCompleteEvent) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return
	}
	if c.catTimer != nil {
		c.catTimer.Stop()
	}
	delay := time.Duration(c.cfg.CategorizationDelayMs) * time.Millisecond
	c.catTimer = time.AfterFunc(delay, func() {
		c.refresher.ResetInsights()
		c.refresher.RefreshDashboard()
	})
}

// importDelay scales the base import delay linearly with volume above the
// threshold, capped at the configured maximum.
func (c *Coordinator) importDelay(total int) time.Duration {
	base := time.Duration(c.cfg.ImportBaseDelayMs) * time.Millisecond
	max := time.Duration(c.cfg.ImportMaxDelayMs) * time.Millisecond

	if total <= importVolumeThreshold {
		return base
	}
	scaled := base * time.Duration(total) / importVolumeThreshold
	if scaled > max {
		return max
	}
	return scaled
}

// Close cancels the subscriptions and any pending timers. Refreshes
// scheduled but not yet fired are dropped.
func (c *Coordinator) Close() {
	for _, cancel := range c.cancels {
		cancel()
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	c.closed = true
	if c.importTimer != nil {
		c.importTimer.Stop()
	}
	if c.catTimer != nil {
		c.catTimer.Stop()
	}
}
