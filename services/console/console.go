// Package console is the line-oriented serial command shell.
//
// Lines are tokenised with shell quoting rules, the first token is the
// command (case-insensitive) and every reply line starts with OK or ERR
// unless it is informational output.
//
//	HELP                 list commands
//	INFO                 receiver status
//	CAL <ppb>            apply and store a synthesizer correction
//	CAL_READ             print the correction in use
//	CAL_RESET            apply and store a zero correction
//	MEM_SAVE <slot>      store frequency and mode in slot 0..9
//	MEM_LOAD <slot>      recall a slot
//	MEM_LIST             list all slots
//	SAVE                 write the configuration now
//	FORMAT               erase the EEPROM and restore factory settings
package console

import (
	"errors"
	"io"
	"strings"

	"github.com/google/shlex"

	"vfobfo-go/errcode"
	"vfobfo-go/nvstore"
	"vfobfo-go/types"
	"vfobfo-go/x/fmtx"
	"vfobfo-go/x/strconvx"
)

// Receiver is the live radio state the shell inspects and drives.
type Receiver interface {
	Snapshot() types.RXState
	Restore(st types.RXState) error
	Calibrate(ppb int32) error
	Correction() int32
	Pitch() int32
	BFO() (uint32, bool)
	OutputByte() byte
}

// Store is the persistence surface; *nvstore.Manager satisfies it.
type Store interface {
	SaveCalibration(factor int32, stampMs uint32) error
	StoreMemory(slot int, st types.RXState) error
	RecallMemory(slot int) (nvstore.MemoryChannel, bool, error)
	RequestQuickSave(st types.RXState)
	Flush() error
	Format() error
	IsSavePending() bool
	SaveStats() (flushes, dropped int)
}

var errUsage = errors.New("usage")

type command struct {
	name  string
	args  string
	help  string
	nargs int
	run   func(s *Shell, args []string) error
}

var commands []command

func init() {
	commands = []command{
		{"HELP", "", "list commands", 0, (*Shell).help},
		{"INFO", "", "receiver status", 0, (*Shell).info},
		{"CAL", "<ppb>", "apply and store calibration", 1, (*Shell).cal},
		{"CAL_READ", "", "print calibration", 0, (*Shell).calRead},
		{"CAL_RESET", "", "reset calibration to 0", 0, (*Shell).calReset},
		{"MEM_SAVE", "<slot>", "store current frequency/mode", 1, (*Shell).memSave},
		{"MEM_LOAD", "<slot>", "recall a memory", 1, (*Shell).memLoad},
		{"MEM_LIST", "", "list memories", 0, (*Shell).memList},
		{"SAVE", "", "write configuration now", 0, (*Shell).save},
		{"FORMAT", "", "erase storage, restore defaults", 0, (*Shell).format},
	}
}

// Shell executes command lines and writes replies to w.
type Shell struct {
	rx     Receiver
	st     Store
	w      io.Writer
	uptime func() uint32
}

// New returns a shell. uptime stamps stored calibrations in milliseconds
// since boot.
func New(rx Receiver, st Store, w io.Writer, uptime func() uint32) *Shell {
	return &Shell{rx: rx, st: st, w: w, uptime: uptime}
}

// Exec runs one line. Blank lines are ignored. The returned error is the
// one reported to the operator, for logging.
func (s *Shell) Exec(line string) error {
	toks, err := shlex.Split(line)
	if err != nil {
		fmtx.Fprintf(s.w, "ERR parse: %s\n", err.Error())
		return err
	}
	if len(toks) == 0 {
		return nil
	}
	name := strings.ToUpper(toks[0])
	for i := range commands {
		c := &commands[i]
		if c.name != name {
			continue
		}
		args := toks[1:]
		if len(args) != c.nargs {
			err = errUsage
		} else {
			err = c.run(s, args)
		}
		switch {
		case err == nil:
		case errors.Is(err, errUsage):
			fmtx.Fprintf(s.w, "ERR usage: %s %s\n", c.name, c.args)
		default:
			fmtx.Fprintf(s.w, "ERR %s\n", err.Error())
		}
		return err
	}
	fmtx.Fprintf(s.w, "ERR unknown command\n")
	return errcode.Unsupported
}

func (s *Shell) help(_ []string) error {
	for _, c := range commands {
		fmtx.Fprintf(s.w, "%-10s %-6s %s\n", c.name, c.args, c.help)
	}
	return nil
}

func (s *Shell) info(_ []string) error {
	st := s.rx.Snapshot()
	fmtx.Fprintf(s.w, "=== VFO-BFO Receiver ===\n")
	fmtx.Fprintf(s.w, "FREQ %d\n", st.Frequency)
	fmtx.Fprintf(s.w, "MODE %s\n", st.Mode.String())
	fmtx.Fprintf(s.w, "STEP %d\n", st.Step)
	fmtx.Fprintf(s.w, "AGC %s\n", onOff(st.AGCFast, "FAST", "SLOW"))
	fmtx.Fprintf(s.w, "ATT %s\n", onOff(st.Attenuator, "ON", "OFF"))
	fmtx.Fprintf(s.w, "CAL %d\n", s.rx.Correction())
	if hz, on := s.rx.BFO(); on {
		fmtx.Fprintf(s.w, "BFO ON %d PITCH %d\n", hz, s.rx.Pitch())
	} else {
		fmtx.Fprintf(s.w, "BFO OFF\n")
	}
	fmtx.Fprintf(s.w, "OUT %02X\n", s.rx.OutputByte())
	fmtx.Fprintf(s.w, "SAVE %s\n", onOff(s.st.IsSavePending(), "PENDING", "IDLE"))
	flushes, dropped := s.st.SaveStats()
	fmtx.Fprintf(s.w, "FLUSHES %d DROPPED %d\n", flushes, dropped)
	return nil
}

func (s *Shell) cal(args []string) error {
	v, err := strconvx.ParseInt(args[0], 10, 32)
	if err != nil {
		return errcode.InvalidParams
	}
	return s.applyCal(int32(v))
}

func (s *Shell) calRead(_ []string) error {
	fmtx.Fprintf(s.w, "CAL %d\n", s.rx.Correction())
	return nil
}

func (s *Shell) calReset(_ []string) error { return s.applyCal(0) }

func (s *Shell) applyCal(ppb int32) error {
	if err := s.rx.Calibrate(ppb); err != nil {
		return errcode.Wrap(errcode.Transport, "console.cal", err)
	}
	if err := s.st.SaveCalibration(ppb, s.uptime()); err != nil {
		return err
	}
	fmtx.Fprintf(s.w, "OK CAL %d\n", ppb)
	return nil
}

func parseSlot(a string) (int, error) {
	n, err := strconvx.Atoi(a)
	if err != nil || n < 0 || n >= nvstore.MemorySlots {
		return 0, errcode.InvalidSlot
	}
	return n, nil
}

func (s *Shell) memSave(args []string) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}
	st := s.rx.Snapshot()
	if err := s.st.StoreMemory(slot, st); err != nil {
		return err
	}
	fmtx.Fprintf(s.w, "OK M%d %d %s\n", slot, st.Frequency, st.Mode.String())
	return nil
}

func (s *Shell) memLoad(args []string) error {
	slot, err := parseSlot(args[0])
	if err != nil {
		return err
	}
	ch, ok, err := s.st.RecallMemory(slot)
	if err != nil {
		return err
	}
	if !ok {
		fmtx.Fprintf(s.w, "ERR M%d empty\n", slot)
		return nil
	}
	st := s.rx.Snapshot()
	st.Frequency, st.Mode = ch.Frequency, ch.Mode
	if err := s.rx.Restore(st); err != nil {
		return errcode.Wrap(errcode.Transport, "console.mem_load", err)
	}
	s.st.RequestQuickSave(s.rx.Snapshot())
	fmtx.Fprintf(s.w, "OK M%d %d %s\n", slot, ch.Frequency, ch.Mode.String())
	return nil
}

func (s *Shell) memList(_ []string) error {
	for i := 0; i < nvstore.MemorySlots; i++ {
		ch, ok, err := s.st.RecallMemory(i)
		switch {
		case err != nil:
			fmtx.Fprintf(s.w, "M%d ERR %s\n", i, err.Error())
		case !ok:
			fmtx.Fprintf(s.w, "M%d -\n", i)
		default:
			fmtx.Fprintf(s.w, "M%d %d %s\n", i, ch.Frequency, ch.Mode.String())
		}
	}
	return nil
}

func (s *Shell) save(_ []string) error {
	s.st.RequestQuickSave(s.rx.Snapshot())
	if err := s.st.Flush(); err != nil {
		return err
	}
	fmtx.Fprintf(s.w, "OK SAVED\n")
	return nil
}

func (s *Shell) format(_ []string) error {
	if err := s.st.Format(); err != nil {
		return err
	}
	def := nvstore.DefaultConfig()
	if err := s.rx.Restore(def.State()); err != nil {
		return errcode.Wrap(errcode.Transport, "console.format", err)
	}
	if err := s.rx.Calibrate(0); err != nil {
		return errcode.Wrap(errcode.Transport, "console.format", err)
	}
	fmtx.Fprintf(s.w, "OK FORMAT\n")
	return nil
}

func onOff(b bool, on, off string) string {
	if b {
		return on
	}
	return off
}
