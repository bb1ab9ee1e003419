package display

import (
	"image/color"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	dashboard "github.com/rushtonmd/waveshare-128-lcd-dashboard-espnow"
)

type fillOp struct {
	region Region
	color  color.RGBA
}

type textOp struct {
	x, y  int
	s     string
	color color.RGBA
}

type surfaceStub struct {
	fills   []fillOp
	texts   []textOp
	flushes int
}

func (s *surfaceStub) Bounds() Region {
	return Region{X: 0, Y: 0, W: 128, H: 128}
}

func (s *surfaceStub) FillRegion(r Region, c color.RGBA) {
	s.fills = append(s.fills, fillOp{region: r, color: c})
}

func (s *surfaceStub) DrawText(x, y int, str string, c color.RGBA, scale int) {
	s.texts = append(s.texts, textOp{x: x, y: y, s: str, color: c})
}

func (s *surfaceStub) DrawLine(x0, y0, x1, y1 int, c color.RGBA) {}

func (s *surfaceStub) DrawRect(r Region, c color.RGBA) {}

func (s *surfaceStub) Flush() error {
	s.flushes++
	return nil
}

func (s *surfaceStub) reset() {
	s.fills = nil
	s.texts = nil
}

func (s *surfaceStub) textAt(y int) (textOp, bool) {
	for _, op := range s.texts {
		if op.y == y {
			return op, true
		}
	}
	return textOp{}, false
}

func mkTestPanel() (*dashboard.Slot, *surfaceStub, *Panel, *uint32) {
	slot := dashboard.NewSlot()
	surf := &surfaceStub{}
	rx := uint32(0)
	p := NewPanel(slot, surf, func() uint32 { return rx }, DefaultConfig())
	p.Init()
	surf.reset()
	return slot, surf, p, &rx
}

func TestLayoutFitsSurface(t *testing.T) {
	slot := dashboard.NewSlot()
	rx := func() uint32 { return 0 }

	full := NewPanel(slot, NewCanvas(128, 128), rx, DefaultConfig())
	assert.Equal(t, len(gauges), full.gaugeRows)
	assert.Equal(t, 112, full.statusY)

	// a shorter surface keeps the indicator and status rows and truncates
	// the gauge list instead of overflowing
	short := NewPanel(slot, NewCanvas(128, 64), rx, DefaultConfig())
	assert.Equal(t, 2, short.gaugeRows)
	assert.Equal(t, 28, short.signalY)
	assert.Equal(t, 42, short.statusY)
}

func TestCoolantBandBoundaries(t *testing.T) {
	cases := []struct {
		temp  uint16
		color color.RGBA
	}{
		{165, blue}, // cold
		{190, green},
		{220, yellow},
		{250, red},
		// a value on a boundary belongs to the higher band
		{170, green},
		{210, yellow},
		{240, red},
		{169, blue},
		{209, green},
		{239, yellow},
	}
	for _, c := range cases {
		assert.Equal(t, c.color, coolantBands.pick(c.temp), "coolantTemp=%d", c.temp)
	}
}

func TestPanelRendersCoolantBand(t *testing.T) {
	slot, surf, p, _ := mkTestPanel()
	coolantBaseline := 2*rowH + ascent // third gauge row

	for _, c := range []struct {
		temp  uint16
		text  string
		color color.RGBA
	}{
		{165, "165 F", blue},
		{190, "190 F", green},
		{220, "220 F", yellow},
		{250, "250 F", red},
	} {
		surf.reset()
		assert.True(t, slot.Publish(dashboard.Frame{CoolantTemp: c.temp}, time.Now(), time.Millisecond))
		p.Cycle(time.Now())

		op, ok := surf.textAt(coolantBaseline)
		assert.True(t, ok, "coolant cell not repainted for %d", c.temp)
		assert.Equal(t, c.text, op.s)
		assert.Equal(t, c.color, op.color)
	}
}

func TestSelectiveRedraw(t *testing.T) {
	slot, surf, p, _ := mkTestPanel()
	frame := dashboard.Frame{RPM: 3000, Speed: 60, CoolantTemp: 190}

	assert.True(t, slot.Publish(frame, time.Now(), time.Millisecond))
	now := time.Now()
	p.Cycle(now)
	assert.NotEmpty(t, surf.texts, "first frame must paint every cell")

	// same values again: nothing repaints
	surf.reset()
	assert.True(t, slot.Publish(frame, now, time.Millisecond))
	p.Cycle(now)
	assert.Empty(t, surf.fills, "unchanged values must not repaint")
	assert.Empty(t, surf.texts)
	assert.Equal(t, 2, surf.flushes, "the surface still flushes every cycle")

	// one gauge changes: exactly one cell repaints
	surf.reset()
	frame.RPM = 3100
	assert.True(t, slot.Publish(frame, now, time.Millisecond))
	p.Cycle(now)
	assert.Len(t, surf.fills, 1)
	assert.Len(t, surf.texts, 1)
	assert.Equal(t, "3100", surf.texts[0].s)
	assert.Equal(t, ascent, surf.texts[0].y, "only the RPM cell may repaint")
}

func TestConnectivityStaleness(t *testing.T) {
	slot, surf, p, _ := mkTestPanel()
	statusBaseline := p.statusY + ascent

	// never received anything: disconnected from the start
	t0 := time.Now()
	p.Cycle(t0)
	op, ok := surf.textAt(statusBaseline)
	assert.True(t, ok)
	assert.Contains(t, op.s, "DISCONNECTED")
	assert.Equal(t, red, op.color)

	assert.True(t, slot.Publish(dashboard.Frame{RPM: 1000}, t0, time.Millisecond))

	// sweep now across the staleness boundary
	for _, c := range []struct {
		elapsed time.Duration
		state   string
	}{
		{1 * time.Millisecond, "CONNECTED"},
		{2999 * time.Millisecond, "CONNECTED"},
		{3000 * time.Millisecond, "DISCONNECTED"},
		{3100 * time.Millisecond, "DISCONNECTED"},
	} {
		surf.reset()
		p.lastStatus = ""
		p.Cycle(t0.Add(c.elapsed))
		op, ok := surf.textAt(statusBaseline)
		assert.True(t, ok, "status not painted at +%v", c.elapsed)
		assert.Contains(t, op.s, c.state, "wrong state at +%v", c.elapsed)
	}
}

func TestStatusShowsFrameCounter(t *testing.T) {
	slot, surf, p, rx := mkTestPanel()
	_ = slot

	*rx = 7
	p.Cycle(time.Now())
	op, ok := surf.textAt(p.statusY + ascent)
	assert.True(t, ok)
	assert.Contains(t, op.s, "rx:7")

	// unchanged status is not repainted
	surf.reset()
	p.Cycle(time.Now())
	_, ok = surf.textAt(p.statusY + ascent)
	assert.False(t, ok)

	// counter advanced: repainted
	*rx = 8
	p.Cycle(time.Now())
	op, ok = surf.textAt(p.statusY + ascent)
	assert.True(t, ok)
	assert.Contains(t, op.s, "rx:8")
}

func TestNewerFrameSupersedesOlder(t *testing.T) {
	slot, surf, p, _ := mkTestPanel()
	now := time.Now()

	assert.True(t, slot.Publish(dashboard.Frame{Timestamp: 1, RPM: 2000}, now, time.Millisecond))
	assert.True(t, slot.Publish(dashboard.Frame{Timestamp: 2, RPM: 3000}, now, time.Millisecond))
	p.Cycle(now)

	op, ok := surf.textAt(ascent)
	assert.True(t, ok)
	assert.Equal(t, "3000", op.s, "the panel must never render a superseded frame")

	// the older frame can never reappear
	surf.reset()
	p.Cycle(now.Add(500 * time.Millisecond))
	_, ok = surf.textAt(ascent)
	assert.False(t, ok)
}

func TestIndicators(t *testing.T) {
	slot, surf, p, _ := mkTestPanel()

	assert.True(t, slot.Publish(dashboard.Frame{TurnSignals: dashboard.TurnLeft, CheckEngine: 1}, time.Now(), time.Millisecond))
	p.Cycle(time.Now())

	var left, right, chk *textOp
	for i := range surf.texts {
		op := &surf.texts[i]
		if op.y != p.signalY+ascent {
			continue
		}
		switch op.s {
		case "<<":
			left = op
		case ">>":
			right = op
		case "CHK":
			chk = op
		}
	}
	assert.NotNil(t, left)
	assert.Equal(t, amber, left.color)
	assert.NotNil(t, right)
	assert.Equal(t, gray, right.color)
	assert.NotNil(t, chk)
	assert.Equal(t, red, chk.color)
}
