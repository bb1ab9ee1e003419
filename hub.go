package dashboard

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rushtonmd/waveshare-128-lcd-dashboard-espnow/espnow"
)

// BroadcasterConfig carries the hub tuning values. The defaults mirror the
// deployed dashboard; none of them are correctness thresholds.
type BroadcasterConfig struct {
	Interval    time.Duration // time between broadcasts
	StatsWindow time.Duration // stats reporting period
}

func DefaultBroadcasterConfig() BroadcasterConfig {
	return BroadcasterConfig{
		Interval:    100 * time.Millisecond,
		StatsWindow: 5 * time.Second,
	}
}

// Broadcaster samples telemetry on a fixed period and fans each frame out to
// every registered peer. Sends are fire-and-forget; completions fold into
// rolling stats that are reported and reset once per window. A failed send
// is counted and otherwise ignored: frames are perishable, the next tick
// supersedes anything lost.
type Broadcaster struct {
	source SensorSource
	link   Sender
	peers  []espnow.Addr
	config BroadcasterConfig

	lastBroadcast time.Time
	stats         TxStats

	// optional observability sink for stat lines, may be nil
	report func(line string)
}

func NewBroadcaster(source SensorSource, link Sender, peers []espnow.Addr, config BroadcasterConfig) *Broadcaster {
	return &Broadcaster{
		source: source,
		link:   link,
		peers:  peers,
		config: config,
	}
}

// SetReporter attaches a diagnostics sink for the windowed stat lines.
func (b *Broadcaster) SetReporter(report func(line string)) {
	b.report = report
}

// Tick broadcasts one frame if the configured interval has elapsed. It never
// waits for send completions.
func (b *Broadcaster) Tick(now time.Time) {
	if !b.lastBroadcast.IsZero() && now.Sub(b.lastBroadcast) < b.config.Interval {
		return
	}
	b.lastBroadcast = now

	frame := b.source.Sample()
	payload := frame.Marshal()

	for _, peer := range b.peers {
		peer := peer
		err := b.link.Send(peer, payload, func(err error) {
			if err != nil {
				log.WithField("peer", peer).WithField("err", err).Debug("send failed")
				b.stats.Failure()
				return
			}
			b.stats.Success()
		})
		if err != nil {
			log.WithField("peer", peer).WithField("err", err).Debug("unable to issue send")
			b.stats.Failure()
		}
	}
}

// ReportStats reads and resets the window counters and emits one stat line.
// Observability only; scheduling is unaffected.
func (b *Broadcaster) ReportStats() {
	success, failure, rate := b.stats.Report()
	pktsPerSec := float64(success+failure) / b.config.StatsWindow.Seconds()
	line := fmt.Sprintf("pkts/sec=%.1f success=%.0f%% (%d ok, %d failed)",
		pktsPerSec, rate*100, success, failure)
	log.WithField("success", success).WithField("failure", failure).Info(line)
	if b.report != nil {
		b.report(line)
	}
}

// Start drives broadcast ticks and stats windows until the context is
// cancelled, checked between cycles.
func (b *Broadcaster) Start(ctx context.Context) error {
	ticker := time.NewTicker(b.config.Interval)
	defer ticker.Stop()
	statsTicker := time.NewTicker(b.config.StatsWindow)
	defer statsTicker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			b.Tick(now)
		case <-statsTicker.C:
			b.ReportStats()
		}
	}
}
