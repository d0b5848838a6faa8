//go:build rp2040 || rp2350

package strconvx

import "vfobfo-go/x/conv"

// Supported bases: 10 for Format*, 2..36 (or 0 for prefix detection) for
// Parse*.

type parseError struct{ s string }

func (e parseError) Error() string { return "strconvx: invalid syntax: " + e.s }

type rangeError struct{ s string }

func (e rangeError) Error() string { return "strconvx: value out of range: " + e.s }

func Itoa(i int) string { return FormatInt(int64(i), 10) }

func Atoi(s string) (int, error) {
	v, err := ParseInt(s, 10, 0)
	return int(v), err
}

func FormatInt(i int64, _ int) string {
	var buf [20]byte
	return string(conv.Itoa(buf[:], i))
}

func FormatUint(u uint64, _ int) string {
	var buf [20]byte
	return string(conv.Utoa(buf[:], u))
}

func ParseInt(s string, base, bitSize int) (int64, error) {
	in := s
	neg := false
	if len(s) > 0 && (s[0] == '+' || s[0] == '-') {
		neg = s[0] == '-'
		s = s[1:]
	}
	u, err := ParseUint(s, base, 64)
	if err != nil {
		return 0, parseError{in}
	}
	if bitSize == 0 {
		bitSize = 32
	}
	lim := uint64(1) << uint(bitSize-1)
	if neg {
		if u > lim {
			return 0, rangeError{in}
		}
		return -int64(u), nil
	}
	if u >= lim {
		return 0, rangeError{in}
	}
	return int64(u), nil
}

func ParseUint(s string, base, bitSize int) (uint64, error) {
	in := s
	if base == 0 {
		base = detectBase(&s)
	}
	if base < 2 || base > 36 || len(s) == 0 {
		return 0, parseError{in}
	}
	if bitSize == 0 {
		bitSize = 32
	}
	var v uint64
	for i := 0; i < len(s); i++ {
		c := s[i]
		var d byte
		switch {
		case '0' <= c && c <= '9':
			d = c - '0'
		case 'a' <= c && c <= 'z':
			d = c - 'a' + 10
		case 'A' <= c && c <= 'Z':
			d = c - 'A' + 10
		default:
			return 0, parseError{in}
		}
		if int(d) >= base {
			return 0, parseError{in}
		}
		nv := v*uint64(base) + uint64(d)
		if nv < v || (bitSize < 64 && nv >= 1<<uint(bitSize)) {
			return 0, rangeError{in}
		}
		v = nv
	}
	return v, nil
}

func detectBase(ps *string) int {
	s := *ps
	if len(s) >= 2 && s[0] == '0' {
		switch s[1] {
		case 'x', 'X':
			*ps = s[2:]
			return 16
		case 'b', 'B':
			*ps = s[2:]
			return 2
		case 'o', 'O':
			*ps = s[2:]
			return 8
		}
	}
	return 10
}
