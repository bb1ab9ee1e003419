package display

import (
	"context"
	"fmt"
	"time"

	log "github.com/sirupsen/logrus"

	dashboard "github.com/rushtonmd/waveshare-128-lcd-dashboard-espnow"
)

// ConnState is the panel's view of the link, derived every cycle from the
// time since the last accepted frame. Level-triggered: the panel degrades to
// Disconnected on its own, without any event from the receive side.
type ConnState int

const (
	Disconnected ConnState = iota
	Connected
)

func (s ConnState) String() string {
	if s == Connected {
		return "CONNECTED"
	}
	return "DISCONNECTED"
}

// Config carries the panel tuning values.
type Config struct {
	RenderInterval time.Duration // render cadence, independent of arrivals
	ReadWait       time.Duration // slot acquisition bound for the reader
	StaleAfter     time.Duration // link considered down past this silence
}

func DefaultConfig() Config {
	return Config{
		RenderInterval: 500 * time.Millisecond,
		ReadWait:       50 * time.Millisecond,
		StaleAfter:     3 * time.Second,
	}
}

const (
	rowH   = 14
	ascent = 11 // Face7x13 baseline offset
	labelX = 0
	valueX = 44
)

type gauge struct {
	label  string
	value  func(f dashboard.Frame) uint16
	format func(v uint16) string
	bands  bands
}

var gauges = []gauge{
	{"RPM", func(f dashboard.Frame) uint16 { return f.RPM },
		func(v uint16) string { return fmt.Sprintf("%d", v) }, rpmBands},
	{"SPD", func(f dashboard.Frame) uint16 { return f.Speed },
		func(v uint16) string { return fmt.Sprintf("%d mph", v) }, speedBands},
	{"H2O", func(f dashboard.Frame) uint16 { return f.CoolantTemp },
		func(v uint16) string { return fmt.Sprintf("%d F", v) }, coolantBands},
	{"OIL", func(f dashboard.Frame) uint16 { return f.OilPressure },
		func(v uint16) string { return fmt.Sprintf("%d psi", v) }, oilBands},
	{"FUEL", func(f dashboard.Frame) uint16 { return f.FuelLevel },
		func(v uint16) string { return fmt.Sprintf("%d%%", v) }, fuelBands},
	{"BATT", func(f dashboard.Frame) uint16 { return f.BatteryVoltage },
		func(v uint16) string { return fmt.Sprintf("%d.%dV", v/10, v%10) }, batteryBands},
	{"BST", func(f dashboard.Frame) uint16 { return f.BoostPressure },
		func(v uint16) string { return fmt.Sprintf("%d psi", v) }, boostBands},
}

// Panel owns the presentation loop. It drains the slot with a bounded wait,
// repaints only the cells whose value changed, and repaints the status line
// whenever its content changes.
type Panel struct {
	slot    *dashboard.Slot
	surf    Surface
	rxCount func() uint32
	config  Config

	width     int
	height    int
	gaugeRows int
	signalY   int
	statusY   int
	statusH   int

	have       bool
	last       dashboard.Frame
	lastStatus string
}

// NewPanel lays the gauges out against the surface bounds: as many gauge
// rows as fit above the indicator and status rows, so a 128x64 surface shows
// a truncated view of the same layout a 128x128 one shows in full.
func NewPanel(slot *dashboard.Slot, surf Surface, rxCount func() uint32, config Config) *Panel {
	b := surf.Bounds()
	gaugeRows := b.H/rowH - 2
	if gaugeRows > len(gauges) {
		gaugeRows = len(gauges)
	}
	signalY := gaugeRows * rowH
	statusY := signalY + rowH
	return &Panel{
		slot:      slot,
		surf:      surf,
		rxCount:   rxCount,
		config:    config,
		width:     b.W,
		height:    b.H,
		gaugeRows: gaugeRows,
		signalY:   signalY,
		statusY:   statusY,
		statusH:   b.H - statusY,
	}
}

// Init paints the static template: full clear, gauge labels, status rule.
// The only full-screen draw the panel ever does.
func (p *Panel) Init() {
	p.surf.FillRegion(Region{X: 0, Y: 0, W: p.width, H: p.height}, black)
	for i := 0; i < p.gaugeRows; i++ {
		p.surf.DrawText(labelX, i*rowH+ascent, gauges[i].label, white, 1)
	}
	p.surf.DrawLine(0, p.statusY-1, p.width-1, p.statusY-1, gray)
}

// Cycle runs one render pass. New data is taken from the slot only when the
// dirty hint is set and the lock is won within the bound; otherwise the
// previously rendered values stay up. Connectivity and the frame counter
// are re-evaluated every pass regardless.
func (p *Panel) Cycle(now time.Time) {
	if p.slot.Dirty() {
		if frame, ok := p.slot.Take(p.config.ReadWait); ok {
			p.renderFrame(frame)
		} else {
			log.Debug("slot busy, keeping stale values")
		}
	}
	p.renderStatus(now)
	if err := p.surf.Flush(); err != nil {
		log.WithField("err", err).Error("unable to flush display")
	}
}

func (p *Panel) renderFrame(frame dashboard.Frame) {
	for i := 0; i < p.gaugeRows; i++ {
		g := gauges[i]
		v := g.value(frame)
		if p.have && g.value(p.last) == v {
			continue
		}
		cell := Region{X: valueX, Y: i * rowH, W: p.width - valueX, H: rowH}
		p.surf.FillRegion(cell, black)
		p.surf.DrawText(valueX, i*rowH+ascent, g.format(v), g.bands.pick(v), 1)
	}

	if !p.have || p.last.TurnSignals != frame.TurnSignals || p.last.CheckEngine != frame.CheckEngine {
		p.renderIndicators(frame)
	}

	p.last = frame
	p.have = true
}

func (p *Panel) renderIndicators(frame dashboard.Frame) {
	p.surf.FillRegion(Region{X: 0, Y: p.signalY, W: p.width, H: rowH}, black)

	leftColor, rightColor := gray, gray
	if frame.TurnSignals&dashboard.TurnLeft != 0 {
		leftColor = amber
	}
	if frame.TurnSignals&dashboard.TurnRight != 0 {
		rightColor = amber
	}
	p.surf.DrawText(0, p.signalY+ascent, "<<", leftColor, 1)
	p.surf.DrawText(p.width-16, p.signalY+ascent, ">>", rightColor, 1)

	if frame.CheckEngine != 0 {
		p.surf.DrawText(valueX, p.signalY+ascent, "CHK", red, 1)
	}
}

func (p *Panel) connState(now time.Time) ConnState {
	lastArrival := p.slot.LastArrival()
	if lastArrival.IsZero() || now.Sub(lastArrival) >= p.config.StaleAfter {
		return Disconnected
	}
	return Connected
}

func (p *Panel) renderStatus(now time.Time) {
	state := p.connState(now)
	status := fmt.Sprintf("%s rx:%d", state, p.rxCount())
	if status == p.lastStatus {
		return
	}
	p.lastStatus = status

	col := red
	if state == Connected {
		col = green
	}
	p.surf.FillRegion(Region{X: 0, Y: p.statusY, W: p.width, H: p.statusH}, black)
	p.surf.DrawText(0, p.statusY+ascent, status, col, 1)
}

// Run renders at the configured cadence until the context is cancelled,
// checked between cycles.
func (p *Panel) Run(ctx context.Context) error {
	p.Init()
	ticker := time.NewTicker(p.config.RenderInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case now := <-ticker.C:
			p.Cycle(now)
		}
	}
}
