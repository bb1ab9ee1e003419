package dashboard

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSimSourceSweeps(t *testing.T) {
	s := NewSimSource()

	prev := s.Sample()
	for i := 0; i < 500; i++ {
		f := s.Sample()
		assert.NotEqual(t, prev.RPM, f.RPM, "gauges must keep moving")
		assert.GreaterOrEqual(t, f.Timestamp, prev.Timestamp)

		assert.GreaterOrEqual(t, f.RPM, uint16(800))
		assert.LessOrEqual(t, f.RPM, uint16(6500))
		assert.GreaterOrEqual(t, f.CoolantTemp, uint16(150))
		assert.LessOrEqual(t, f.CoolantTemp, uint16(260))
		assert.LessOrEqual(t, f.FuelLevel, uint16(100))

		if f.CoolantTemp >= 240 {
			assert.Equal(t, uint8(1), f.CheckEngine)
		} else {
			assert.Equal(t, uint8(0), f.CheckEngine)
		}
		prev = f
	}
}
