package main

import (
	"errors"
	"io"
	"strings"
	"time"

	"go.bug.st/serial"
)

// replyIdle ends a reply: the firmware answers in one burst, so a quiet
// line for this long means it is done.
const replyIdle = 300 * time.Millisecond

func openConsole(port string, baud int) (serial.Port, error) {
	mode := &serial.Mode{
		BaudRate: baud,
		DataBits: 8,
		Parity:   serial.NoParity,
		StopBits: serial.OneStopBit,
	}
	p, err := serial.Open(port, mode)
	if err != nil {
		return nil, err
	}
	if err := p.SetReadTimeout(replyIdle); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

// exchange sends one command line and collects the reply lines. A read that
// returns nothing (timeout) or EOF ends the reply.
func exchange(rw io.ReadWriter, line string) ([]string, error) {
	if _, err := io.WriteString(rw, strings.TrimSpace(line)+"\r\n"); err != nil {
		return nil, err
	}
	var sb strings.Builder
	buf := make([]byte, 256)
	for {
		n, err := rw.Read(buf)
		sb.Write(buf[:n])
		if errors.Is(err, io.EOF) || (err == nil && n == 0) {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	var out []string
	for _, l := range strings.Split(sb.String(), "\n") {
		if l = strings.TrimRight(l, "\r"); l != "" {
			out = append(out, l)
		}
	}
	return out, nil
}

// replyFailed reports whether the firmware answered with an error line.
func replyFailed(lines []string) bool {
	for _, l := range lines {
		if strings.HasPrefix(l, "ERR") {
			return true
		}
	}
	return false
}
