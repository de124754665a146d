// Package admin keeps the administrator dashboard fed with statistics.
package admin

import (
	"context"
	"time"

	"github.com/Adithya-charan/docuExtract/internal/models"
	"github.com/Adithya-charan/docuExtract/internal/types"
	"github.com/Adithya-charan/docuExtract/pkg/logging"
)

const DefaultInterval = 5 * time.Second

// Poller fetches stats on a fixed interval for as long as its context lives.
type Poller struct {
	Source   types.StatsSource
	Interval time.Duration
	OnStats  func(*models.AdminStats)
	OnError  func(error)
	Logger   *logging.Logger
}

// Run fetches once immediately and then on every tick. It returns
// ctx.Err() when the context is cancelled.
func (p *Poller) Run(ctx context.Context) error {
	interval := p.Interval
	if interval <= 0 {
		interval = DefaultInterval
	}
	log := p.Logger
	if log == nil {
		log = logging.Nop()
	}
	log = log.With("admin")
	log.Debug().Dur("interval", interval).Msg("starting stats poller")

	p.poll(ctx, log)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			p.poll(ctx, log)
		}
	}
}

func (p *Poller) poll(ctx context.Context, log *logging.Logger) {
	stats, err := p.Source.Stats(ctx)
	if err != nil {
		if ctx.Err() != nil {
			return
		}
		log.Warn().Err(err).Msg("failed to fetch stats")
		if p.OnError != nil {
			p.OnError(err)
		}
		return
	}
	if p.OnStats != nil {
		p.OnStats(stats)
	}
}
