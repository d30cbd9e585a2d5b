package worker

import (
	"context"
	"encoding/json"
	"time"

	"freelanceradar/internal/scraper"
	"freelanceradar/logger"
	"freelanceradar/services/aggregator"
	"freelanceradar/services/notifier"
	"freelanceradar/services/publisher"
)

// Refresher is the slice of the aggregator the watcher needs.
type Refresher interface {
	ForceRefresh(sourceSet string) (*aggregator.Result, error)
}

// Watcher periodically refreshes the combined aggregate, publishes listings
// not seen before to the stream, and notifies the batch.
type Watcher struct {
	ctx      context.Context
	agg      Refresher
	pub      publisher.Publisher
	notif    notifier.Notifier
	interval time.Duration
	seen     map[string]struct{}
	primed   bool
	log      *logger.Logger
}

// NewWatcher creates a watcher. Publisher may be nil when no stream is
// configured.
func NewWatcher(ctx context.Context, agg Refresher, pub publisher.Publisher, notif notifier.Notifier, interval time.Duration) *Watcher {
	return &Watcher{
		ctx:      ctx,
		agg:      agg,
		pub:      pub,
		notif:    notif,
		interval: interval,
		seen:     make(map[string]struct{}),
		log:      logger.ForWatcher(),
	}
}

// Start runs the watch loop until the context is cancelled
func (w *Watcher) Start() error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-w.ctx.Done():
			w.log.Info().Msg("watcher stopping")
			return w.ctx.Err()
		case <-ticker.C:
			start := time.Now()
			w.RunOnce()
			w.log.Debug().Dur("elapsed", time.Since(start)).Msg("watch pass complete")
		}
	}
}

// RunOnce performs a single refresh-diff-publish-notify pass. The first
// pass only primes the seen set, so a restart does not re-alert the whole
// current page.
func (w *Watcher) RunOnce() {
	res, err := w.agg.ForceRefresh(aggregator.SetAll)
	if err != nil {
		w.log.Error().Err(err).Msg("refresh failed")
		return
	}

	fresh := w.diff(res.Listings)

	if !w.primed {
		w.primed = true
		w.log.Info().Int("listings", len(res.Listings)).Msg("seen set primed")
		return
	}

	if len(fresh) == 0 {
		return
	}

	w.publish(fresh)

	if w.notif != nil {
		w.notif.Notify(fresh)
	}
}

// diff returns listings whose link has not been observed yet and marks them
// as seen. Error sentinels are never treated as new listings.
func (w *Watcher) diff(listings []scraper.Listing) []scraper.Listing {
	var fresh []scraper.Listing
	for _, l := range listings {
		if l.IsError() {
			continue
		}
		if _, ok := w.seen[l.Link]; ok {
			continue
		}
		w.seen[l.Link] = struct{}{}
		fresh = append(fresh, l)
	}
	return fresh
}

func (w *Watcher) publish(listings []scraper.Listing) {
	if w.pub == nil {
		return
	}

	for _, l := range listings {
		payload, err := json.Marshal(l)
		if err != nil {
			w.log.Error().Err(err).Str("id", l.ID).Msg("marshal failed")
			continue
		}
		if err := w.pub.Publish(l.Source, payload); err != nil {
			w.log.Error().Err(err).Str("id", l.ID).Msg("publish failed")
		}
	}

	if err := w.pub.TrimStreams(); err != nil {
		w.log.Error().Err(err).Msg("stream trimming failed")
	}
}
