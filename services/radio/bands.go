package radio

import "vfobfo-go/x/mathx"

// Band is one amateur HF allocation.
type Band struct {
	Name   string
	Lo, Hi uint32
	Home   uint32 // frequency selected by CycleBand
}

// Bands in ascending order.
var Bands = []Band{
	{"160m", 1_810_000, 2_000_000, 1_840_000},
	{"80m", 3_500_000, 3_800_000, 3_700_000},
	{"60m", 5_351_500, 5_366_500, 5_357_000},
	{"40m", 7_000_000, 7_200_000, 7_100_000},
	{"30m", 10_100_000, 10_150_000, 10_136_000},
	{"20m", 14_000_000, 14_350_000, 14_200_000},
	{"17m", 18_068_000, 18_168_000, 18_130_000},
	{"15m", 21_000_000, 21_450_000, 21_200_000},
	{"12m", 24_890_000, 24_990_000, 24_940_000},
	{"10m", 28_000_000, 29_700_000, 28_500_000},
}

// BandOf returns the index of the band containing hz, or -1.
func BandOf(hz uint32) int {
	for i, b := range Bands {
		if mathx.Between(hz, b.Lo, b.Hi) {
			return i
		}
	}
	return -1
}

// nextBand returns the band after the one containing hz, or the first band
// starting above hz when hz is outside every band. It wraps to 160m.
func nextBand(hz uint32) int {
	if i := BandOf(hz); i >= 0 {
		return (i + 1) % len(Bands)
	}
	for i, b := range Bands {
		if b.Lo > hz {
			return i
		}
	}
	return 0
}

// FilterCode selects the band-pass filter for the displayed frequency
// (output bits 0-2).
func FilterCode(hz uint32) byte {
	switch {
	case hz >= 1_600_000 && hz < 2_500_000:
		return 0b001
	case hz >= 2_500_000 && hz < 4_700_000:
		return 0b010
	case hz >= 4_700_000 && hz < 7_500_000:
		return 0b011
	case hz >= 7_500_000 && hz < 14_500_000:
		return 0b100
	case hz >= 14_500_000 && hz < 21_500_000:
		return 0b101
	case hz >= 21_500_000 && hz <= 33_000_000:
		return 0b110
	}
	return 0
}
