package dashboard

import (
	"time"
)

// SimSource generates sweeping telemetry so a hub can run without real
// sensors. Each gauge bounces between limits so every display band is
// eventually exercised.
type SimSource struct {
	start time.Time
	frame Frame

	rpmDown     bool
	speedDown   bool
	coolantDown bool
	oilDown     bool
	fuelDown    bool
	battDown    bool
	boostDown   bool
	samples     int
}

func NewSimSource() *SimSource {
	return &SimSource{
		start: time.Now(),
		frame: Frame{
			RPM:            800,
			Speed:          0,
			CoolantTemp:    150,
			OilPressure:    20,
			FuelLevel:      100,
			BatteryVoltage: 124,
			BoostPressure:  0,
		},
	}
}

func sweep(v uint16, down *bool, step, min, max uint16) uint16 {
	if *down {
		if v <= min+step {
			*down = false
			return min
		}
		return v - step
	}
	if v >= max-step {
		*down = true
		return max
	}
	return v + step
}

func (s *SimSource) Sample() Frame {
	f := &s.frame
	f.Timestamp = uint32(time.Since(s.start) / time.Millisecond)
	f.RPM = sweep(f.RPM, &s.rpmDown, 100, 800, 6500)
	f.Speed = sweep(f.Speed, &s.speedDown, 2, 0, 140)
	f.CoolantTemp = sweep(f.CoolantTemp, &s.coolantDown, 1, 150, 260)
	f.OilPressure = sweep(f.OilPressure, &s.oilDown, 1, 5, 80)
	f.FuelLevel = sweep(f.FuelLevel, &s.fuelDown, 1, 0, 100)
	f.BatteryVoltage = sweep(f.BatteryVoltage, &s.battDown, 1, 108, 148)
	f.BoostPressure = sweep(f.BoostPressure, &s.boostDown, 1, 0, 22)

	if f.CoolantTemp >= 240 {
		f.CheckEngine = 1
	} else {
		f.CheckEngine = 0
	}

	// blink pattern: left for a while, then right, then off
	s.samples++
	switch (s.samples / 20) % 3 {
	case 0:
		f.TurnSignals = TurnLeft
	case 1:
		f.TurnSignals = TurnRight
	default:
		f.TurnSignals = 0
	}

	return *f
}
