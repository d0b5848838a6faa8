//go:build rp2040 || rp2350

package fmtx

import (
	"io"

	"vfobfo-go/x/conv"
)

func Sprintf(format string, a ...any) string {
	var b builder
	b.format(format, a)
	return string(b.buf)
}

func Fprintf(w io.Writer, format string, a ...any) (int, error) {
	var b builder
	b.format(format, a)
	return w.Write(b.buf)
}

func Fprintln(w io.Writer, a ...any) (int, error) {
	var b builder
	for i, v := range a {
		if i > 0 {
			b.byte(' ')
		}
		b.any(v, 'v')
	}
	b.byte('\n')
	return w.Write(b.buf)
}

func Errorf(format string, a ...any) error {
	return &stringError{Sprintf(format, a...)}
}

type stringError struct{ s string }

func (e *stringError) Error() string { return e.s }

type builder struct {
	buf []byte
	num [20]byte
}

func (b *builder) byte(c byte)    { b.buf = append(b.buf, c) }
func (b *builder) bytes(p []byte) { b.buf = append(b.buf, p...) }

func (b *builder) pad(n int) {
	for ; n > 0; n-- {
		b.byte(' ')
	}
}

func (b *builder) int(v int64)   { b.bytes(conv.Itoa(b.num[:], v)) }
func (b *builder) uint(v uint64) { b.bytes(conv.Utoa(b.num[:], v)) }

func (b *builder) hex(v uint64, upper bool) {
	digits := "0123456789abcdef"
	if upper {
		digits = "0123456789ABCDEF"
	}
	i := len(b.num)
	for {
		i--
		b.num[i] = digits[v&0xF]
		v >>= 4
		if v == 0 || i == 0 {
			break
		}
	}
	b.bytes(b.num[i:])
}

func (b *builder) any(v any, verb byte) {
	switch x := v.(type) {
	case string:
		b.buf = append(b.buf, x...)
	case []byte:
		b.bytes(x)
	case error:
		b.buf = append(b.buf, x.Error()...)
	case bool:
		if x {
			b.buf = append(b.buf, "true"...)
		} else {
			b.buf = append(b.buf, "false"...)
		}
	default:
		if i, ok := toI64(v); ok {
			if verb == 'x' || verb == 'X' {
				b.hex(uint64(i), verb == 'X')
			} else {
				b.int(i)
			}
			return
		}
		if u, ok := toU64(v); ok {
			if verb == 'x' || verb == 'X' {
				b.hex(u, verb == 'X')
			} else {
				b.uint(u)
			}
			return
		}
		b.buf = append(b.buf, "<?>"...)
	}
}

func (b *builder) format(format string, args []any) {
	ai := 0
	for i := 0; i < len(format); {
		c := format[i]
		if c != '%' {
			b.byte(c)
			i++
			continue
		}
		i++
		if i < len(format) && format[i] == '%' {
			b.byte('%')
			i++
			continue
		}
		left := i < len(format) && format[i] == '-'
		if left {
			i++
		}
		zero := !left && i < len(format) && format[i] == '0'
		width := 0
		for i < len(format) && '0' <= format[i] && format[i] <= '9' {
			width = width*10 + int(format[i]-'0')
			i++
		}
		if i >= len(format) || ai >= len(args) {
			return
		}
		verb := format[i]
		i++
		arg := args[ai]
		ai++

		start := len(b.buf)
		b.any(arg, verb)
		n := width - (len(b.buf) - start)
		switch {
		case n <= 0:
		case left:
			b.pad(n)
		default:
			// Right-justify by shifting the field.
			fill := byte(' ')
			if zero {
				fill = '0'
			}
			field := append([]byte(nil), b.buf[start:]...)
			b.buf = b.buf[:start]
			for ; n > 0; n-- {
				b.byte(fill)
			}
			b.bytes(field)
		}
	}
}

func toI64(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	}
	return 0, false
}

func toU64(v any) (uint64, bool) {
	switch t := v.(type) {
	case uint:
		return uint64(t), true
	case uint8:
		return uint64(t), true
	case uint16:
		return uint64(t), true
	case uint32:
		return uint64(t), true
	case uint64:
		return t, true
	}
	return 0, false
}
