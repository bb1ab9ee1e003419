package dashboard

import (
	"encoding/binary"

	"github.com/pkg/errors"
)

// FrameSize is the exact wire length of an encoded Frame. Payloads of any
// other length are not frames.
const FrameSize = 20

// Turn signal bits in Frame.TurnSignals.
const (
	TurnLeft  = 0x01
	TurnRight = 0x02
)

// Frame is one telemetry snapshot as broadcast by the hub. All gauge values
// are raw engineering units as produced by the sensor source; the panel only
// formats them.
type Frame struct {
	Timestamp      uint32 // producer tick, opaque to the panel
	RPM            uint16
	Speed          uint16
	CoolantTemp    uint16
	OilPressure    uint16
	FuelLevel      uint16
	BatteryVoltage uint16 // tenths of a volt
	BoostPressure  uint16
	CheckEngine    uint8
	TurnSignals    uint8
}

// Marshal encodes the frame into its fixed little-endian wire layout. The
// field offsets are the wire contract; the Go struct layout is not.
func (f *Frame) Marshal() []byte {
	buf := make([]byte, FrameSize)
	binary.LittleEndian.PutUint32(buf[0:4], f.Timestamp)
	binary.LittleEndian.PutUint16(buf[4:6], f.RPM)
	binary.LittleEndian.PutUint16(buf[6:8], f.Speed)
	binary.LittleEndian.PutUint16(buf[8:10], f.CoolantTemp)
	binary.LittleEndian.PutUint16(buf[10:12], f.OilPressure)
	binary.LittleEndian.PutUint16(buf[12:14], f.FuelLevel)
	binary.LittleEndian.PutUint16(buf[14:16], f.BatteryVoltage)
	binary.LittleEndian.PutUint16(buf[16:18], f.BoostPressure)
	buf[18] = f.CheckEngine
	buf[19] = f.TurnSignals
	return buf
}

// UnmarshalFrame decodes a wire payload. Inputs that are not exactly
// FrameSize bytes are rejected without being interpreted.
func UnmarshalFrame(buf []byte) (Frame, error) {
	if len(buf) != FrameSize {
		return Frame{}, errors.Errorf("incorrect frame size: %v", len(buf))
	}
	return Frame{
		Timestamp:      binary.LittleEndian.Uint32(buf[0:4]),
		RPM:            binary.LittleEndian.Uint16(buf[4:6]),
		Speed:          binary.LittleEndian.Uint16(buf[6:8]),
		CoolantTemp:    binary.LittleEndian.Uint16(buf[8:10]),
		OilPressure:    binary.LittleEndian.Uint16(buf[10:12]),
		FuelLevel:      binary.LittleEndian.Uint16(buf[12:14]),
		BatteryVoltage: binary.LittleEndian.Uint16(buf[14:16]),
		BoostPressure:  binary.LittleEndian.Uint16(buf[16:18]),
		CheckEngine:    buf[18],
		TurnSignals:    buf[19],
	}, nil
}
