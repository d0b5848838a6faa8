package nvstore

import "vfobfo-go/errcode"

// Persisted address map. These values are part of the on-device format and
// must stay stable across firmware versions.
const (
	ConfigBase   = 0x0000
	ConfigRegion = 0x0080 // bytes reserved for the config record

	MemoryBase   = 0x0080
	MemorySlots  = 10
	MemoryStride = MemoryChannelSize

	CalibrationBase = 0x0100
	CalibrationSize = 12
)

// Compile-time guards: each expression goes negative (and fails to convert to
// uint) if a record outgrows its region or two regions overlap.
const (
	_ uint = ConfigRegion - ConfigRecordSize
	_ uint = MemoryBase - (ConfigBase + ConfigRegion)
	_ uint = MemoryStride - MemoryChannelSize
	_ uint = CalibrationBase - (MemoryBase + MemorySlots*MemoryStride)
	_ uint = CalibrationSize - calibrationRecordSize
)

// Region is a contiguous byte range in device address space.
type Region struct {
	Base int
	Size int
}

func (r Region) end() int { return r.Base + r.Size }

func (r Region) overlaps(o Region) bool {
	return r.Base < o.end() && o.Base < r.end()
}

// Layout names the three persisted regions.
type Layout struct {
	Config      Region
	Memories    Region
	Stride      int
	Slots       int
	Calibration Region
}

// DefaultLayout is the layout written by every firmware release so far.
var DefaultLayout = Layout{
	Config:      Region{Base: ConfigBase, Size: ConfigRegion},
	Memories:    Region{Base: MemoryBase, Size: MemorySlots * MemoryStride},
	Stride:      MemoryStride,
	Slots:       MemorySlots,
	Calibration: Region{Base: CalibrationBase, Size: CalibrationSize},
}

// Validate checks record fit, region overlap and device capacity.
func (l Layout) Validate(capacity int) error {
	switch {
	case l.Config.Size < ConfigRecordSize,
		l.Stride < MemoryChannelSize,
		l.Slots <= 0,
		l.Memories.Size < l.Slots*l.Stride,
		l.Calibration.Size < calibrationRecordSize:
		return errcode.Wrap(errcode.InvalidParams, "nvstore.layout", nil)
	}
	regions := [...]Region{l.Config, l.Memories, l.Calibration}
	for i, r := range regions {
		if r.Base < 0 || r.end() > capacity {
			return errcode.Wrap(errcode.OutOfRange, "nvstore.layout", nil)
		}
		for _, o := range regions[i+1:] {
			if r.overlaps(o) {
				return &errcode.E{C: errcode.InvalidParams, Op: "nvstore.layout", Msg: "regions overlap"}
			}
		}
	}
	return nil
}

// slotAddr returns the device address of a memory slot.
func (l Layout) slotAddr(slot int) (int64, error) {
	if slot < 0 || slot >= l.Slots {
		return 0, errcode.InvalidSlot
	}
	return int64(l.Memories.Base + slot*l.Stride), nil
}
