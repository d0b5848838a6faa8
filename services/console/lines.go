package console

import "vfobfo-go/x/shmring"

// MaxLine bounds a command line; longer input is discarded up to the next
// newline.
const MaxLine = 64

// LineReader assembles newline-terminated lines from a byte ring without
// blocking. CR is ignored so both LF and CRLF terminals work.
type LineReader struct {
	src      *shmring.Ring
	buf      [MaxLine]byte
	n        int
	overflow bool
}

func NewLineReader(src *shmring.Ring) *LineReader {
	return &LineReader{src: src}
}

// Next returns the next complete line, if one has arrived.
func (l *LineReader) Next() (string, bool) {
	for {
		b, ok := l.src.ReadByte()
		if !ok {
			return "", false
		}
		switch b {
		case '\r':
		case '\n':
			if l.overflow {
				println("[console] line too long, dropped")
				l.n, l.overflow = 0, false
				continue
			}
			s := string(l.buf[:l.n])
			l.n = 0
			return s, true
		default:
			if l.n == len(l.buf) {
				l.overflow = true
				continue
			}
			l.buf[l.n] = b
			l.n++
		}
	}
}
