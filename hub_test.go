package dashboard

import (
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"

	"github.com/rushtonmd/waveshare-128-lcd-dashboard-espnow/espnow"
)

type sendRecord struct {
	peer    espnow.Addr
	payload []byte
	done    func(error)
}

type senderStub struct {
	mu    sync.Mutex
	sends []sendRecord
	err   error
}

func (s *senderStub) Send(addr espnow.Addr, payload []byte, done func(error)) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return s.err
	}
	s.sends = append(s.sends, sendRecord{peer: addr, payload: payload, done: done})
	return nil
}

func (s *senderStub) recorded() []sendRecord {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]sendRecord(nil), s.sends...)
}

type sourceStub struct {
	frame   Frame
	samples int
}

func (s *sourceStub) Sample() Frame {
	s.samples++
	return s.frame
}

var testPeers = []espnow.Addr{
	{0x02, 0x00, 0x00, 0x00, 0x00, 0x01},
	{0x02, 0x00, 0x00, 0x00, 0x00, 0x02},
}

func testBroadcaster(source *sourceStub, sender *senderStub) *Broadcaster {
	return NewBroadcaster(source, sender, testPeers, BroadcasterConfig{
		Interval:    100 * time.Millisecond,
		StatsWindow: 5 * time.Second,
	})
}

func TestBroadcastFanOut(t *testing.T) {
	source := &sourceStub{frame: Frame{Timestamp: 1, RPM: 3000}}
	sender := &senderStub{}
	b := testBroadcaster(source, sender)

	b.Tick(time.Now())
	assert.Equal(t, 1, source.samples, "exactly one frame per broadcast")

	sends := sender.recorded()
	assert.Len(t, sends, len(testPeers))
	for i, send := range sends {
		assert.Equal(t, testPeers[i], send.peer, "fan-out must follow registration order")
		decoded, err := UnmarshalFrame(send.payload)
		assert.NoError(t, err)
		assert.Equal(t, source.frame, decoded)
	}
}

func TestBroadcastInterval(t *testing.T) {
	source := &sourceStub{}
	sender := &senderStub{}
	b := testBroadcaster(source, sender)

	t0 := time.Now()
	b.Tick(t0)
	b.Tick(t0.Add(50 * time.Millisecond))
	assert.Equal(t, 1, source.samples, "tick before the interval must not broadcast")

	b.Tick(t0.Add(100 * time.Millisecond))
	assert.Equal(t, 2, source.samples)
	assert.Len(t, sender.recorded(), 2*len(testPeers))
}

func TestBroadcastCompletions(t *testing.T) {
	source := &sourceStub{}
	sender := &senderStub{}
	b := testBroadcaster(source, sender)

	b.Tick(time.Now())
	sends := sender.recorded()
	assert.Len(t, sends, 2)

	sends[0].done(nil)
	sends[1].done(assert.AnError)

	success, failure, rate := b.stats.Report()
	assert.Equal(t, uint32(1), success)
	assert.Equal(t, uint32(1), failure)
	assert.Equal(t, 0.5, rate)
}

func TestBroadcastSendFailure(t *testing.T) {
	source := &sourceStub{}
	sender := &senderStub{err: assert.AnError}
	b := testBroadcaster(source, sender)

	b.Tick(time.Now())

	// one peer failing must not cancel the others; both failures are
	// counted and nothing is retried
	success, failure, _ := b.stats.Report()
	assert.Equal(t, uint32(0), success)
	assert.Equal(t, uint32(len(testPeers)), failure)

	b.Tick(time.Now().Add(time.Second))
	_, failure, _ = b.stats.Report()
	assert.Equal(t, uint32(len(testPeers)), failure, "scheduling must continue after failures")
}

func TestReportStatsSink(t *testing.T) {
	source := &sourceStub{}
	sender := &senderStub{}
	b := testBroadcaster(source, sender)

	var lines []string
	b.SetReporter(func(line string) {
		lines = append(lines, line)
	})

	b.stats.Success()
	b.ReportStats()
	assert.Len(t, lines, 1)
	assert.Contains(t, lines[0], "success=100%")
}
