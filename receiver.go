package dashboard

import (
	"sync/atomic"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/rushtonmd/waveshare-128-lcd-dashboard-espnow/espnow"
)

// DefaultPublishWait bounds how long the receive path may wait for the slot.
// The handler runs in the link's receive context and must return promptly,
// so a contended slot means the frame is dropped; the next one supersedes it.
const DefaultPublishWait = 5 * time.Millisecond

// Receiver validates inbound payloads and publishes them into the slot. It
// runs on the link's receive goroutine, concurrently with the render loop.
type Receiver struct {
	slot     *Slot
	wait     time.Duration
	received atomic.Uint32

	now func() time.Time // to allow testing
}

func NewReceiver(slot *Slot, wait time.Duration) *Receiver {
	return &Receiver{
		slot: slot,
		wait: wait,
		now:  time.Now,
	}
}

// Handle processes one inbound message. Wrong-length payloads are discarded
// without interpretation; the counter only advances for accepted frames.
func (r *Receiver) Handle(payload []byte, from espnow.Addr) {
	frame, err := UnmarshalFrame(payload)
	if err != nil {
		log.WithField("from", from).
			WithField("length", len(payload)).
			Debug("discarding malformed frame")
		return
	}
	if !r.slot.Publish(frame, r.now(), r.wait) {
		log.WithField("from", from).Debug("slot busy, frame dropped")
		return
	}
	r.received.Add(1)
}

// Received returns the running accepted-frame count. Wraps at 2^32; display
// use only.
func (r *Receiver) Received() uint32 {
	return r.received.Load()
}
