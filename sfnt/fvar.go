package sfnt

import (
	"encoding/binary"

	"github.com/boxesandglue/fontcore/ferrors"
)

// Registered variation axis tags.
var (
	TagAxisWeight      = MakeTag('w', 'g', 'h', 't')
	TagAxisWidth       = MakeTag('w', 'd', 't', 'h')
	TagAxisSlant       = MakeTag('s', 'l', 'n', 't')
	TagAxisItalic      = MakeTag('i', 't', 'a', 'l')
	TagAxisOpticalSize = MakeTag('o', 'p', 's', 'z')
)

// AxisInfo describes one variation axis: its tag, its valid range, and
// its default coordinate.
type AxisInfo struct {
	Index        int
	Tag          Tag
	NameID       uint16
	Hidden       bool
	MinValue     float32
	DefaultValue float32
	MaxValue     float32
}

// NamedInstance is a predefined point within the variation space (e.g.
// "Bold", "Condensed Light"), one row of fvar's instance array.
type NamedInstance struct {
	SubfamilyNameID  uint16
	PostScriptNameID uint16 // 0 if absent
	Coords           []float32
}

// Fvar is the parsed font-variations (`fvar`) table: axis and named
// instance records. Converting a user coordinate to normalized [-1,1]
// design space is axis-application math and out of this module's
// scope — callers needing that should apply the axis's Min/Default/Max
// themselves.
type Fvar struct {
	data          []byte
	axisCount     int
	axisOffset    int
	instanceCount int
	instanceSize  int
}

// ParseFvar parses an fvar table.
func ParseFvar(data []byte) (*Fvar, error) {
	if len(data) < 16 {
		return nil, &ferrors.InvalidTable{Tag: "fvar", Reason: "header truncated"}
	}
	if binary.BigEndian.Uint16(data[0:]) != 1 || binary.BigEndian.Uint16(data[2:]) != 0 {
		return nil, &ferrors.InvalidTable{Tag: "fvar", Reason: "unsupported version"}
	}

	axisOffset := int(binary.BigEndian.Uint16(data[4:]))
	axisCount := int(binary.BigEndian.Uint16(data[8:]))
	axisSize := int(binary.BigEndian.Uint16(data[10:]))
	instanceCount := int(binary.BigEndian.Uint16(data[12:]))
	instanceSize := int(binary.BigEndian.Uint16(data[14:]))

	if axisSize != 20 {
		return nil, &ferrors.InvalidTable{Tag: "fvar", Reason: "unexpected axis record size"}
	}
	if instanceSize < axisCount*4+4 {
		return nil, &ferrors.InvalidTable{Tag: "fvar", Reason: "instance record shorter than its coordinate array"}
	}
	if axisOffset+axisCount*20+instanceCount*instanceSize > len(data) {
		return nil, &ferrors.InvalidTable{Tag: "fvar", Reason: "axis/instance arrays run past end of table"}
	}

	return &Fvar{
		data:          data,
		axisCount:     axisCount,
		axisOffset:    axisOffset,
		instanceCount: instanceCount,
		instanceSize:  instanceSize,
	}, nil
}

// AxisCount returns the number of variation axes.
func (f *Fvar) AxisCount() int { return f.axisCount }

// AxisInfos returns every axis record in file order.
func (f *Fvar) AxisInfos() []AxisInfo {
	axes := make([]AxisInfo, f.axisCount)
	for i := range axes {
		axes[i] = f.axisAt(i)
	}
	return axes
}

func (f *Fvar) axisAt(i int) AxisInfo {
	off := f.axisOffset + i*20
	flags := binary.BigEndian.Uint16(f.data[off+16:])
	return AxisInfo{
		Index:        i,
		Tag:          Tag(binary.BigEndian.Uint32(f.data[off:])),
		MinValue:     fixed1616(f.data[off+4:]),
		DefaultValue: fixed1616(f.data[off+8:]),
		MaxValue:     fixed1616(f.data[off+12:]),
		Hidden:       flags&0x0001 != 0,
		NameID:       binary.BigEndian.Uint16(f.data[off+18:]),
	}
}

// InstanceCount returns the number of named instances.
func (f *Fvar) InstanceCount() int { return f.instanceCount }

// NamedInstances returns every named instance in file order.
func (f *Fvar) NamedInstances() []NamedInstance {
	instances := make([]NamedInstance, f.instanceCount)
	instancesStart := f.axisOffset + f.axisCount*20
	for i := range instances {
		off := instancesStart + i*f.instanceSize
		inst := NamedInstance{
			SubfamilyNameID: binary.BigEndian.Uint16(f.data[off:]),
			Coords:          make([]float32, f.axisCount),
		}
		coordOff := off + 4
		for a := 0; a < f.axisCount; a++ {
			inst.Coords[a] = fixed1616(f.data[coordOff+a*4:])
		}
		if f.instanceSize >= f.axisCount*4+6 {
			inst.PostScriptNameID = binary.BigEndian.Uint16(f.data[off+4+f.axisCount*4:])
		}
		instances[i] = inst
	}
	return instances
}

func fixed1616(b []byte) float32 {
	return float32(int32(binary.BigEndian.Uint32(b))) / 65536.0
}

