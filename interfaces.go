package dashboard

import (
	"github.com/rushtonmd/waveshare-128-lcd-dashboard-espnow/espnow"
)

// SensorSource produces one telemetry snapshot per broadcast tick.
type SensorSource interface {
	Sample() Frame
}

// Sender is the fire-and-forget side of the link. done is invoked exactly
// once per issued datagram; a non-nil return means nothing was issued.
type Sender interface {
	Send(addr espnow.Addr, payload []byte, done func(error)) error
}
