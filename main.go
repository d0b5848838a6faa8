package main

import (
	"time"

	"vfobfo-go/drivers/eeprom24"
	"vfobfo-go/drivers/pcf8574"
	"vfobfo-go/nvstore"
	"vfobfo-go/platform"
	"vfobfo-go/services/console"
	"vfobfo-go/services/frontpanel"
	"vfobfo-go/services/radio"
	"vfobfo-go/x/shmring"
	"vfobfo-go/x/timex"
)

func main() {
	// Allow USB CDC to enumerate before we print.
	time.Sleep(bootDelay)
	plan := platform.Selected()
	println("[main] boot", plan.Name)

	board, err := platform.Open(plan)
	if err != nil {
		halt("board", err)
	}
	defer board.Close()

	dev := eeprom24.New(board.Bus, eeprom24.Config{})
	if err := nvstore.DefaultLayout.Validate(dev.Size()); err != nil {
		halt("layout", err)
	}
	println("[main] eeprom", dev.Size(), "bytes, page", dev.PageSize())
	mgr := nvstore.NewManager(nvstore.NewStore(dev, nvstore.DefaultLayout), nvstore.SchedulerConfig{
		OnFlush: func(rec nvstore.ConfigRecord, err error) {
			if err == nil {
				println("[main] saved", rec.Frequency, rec.Mode.String(), rec.Step)
			}
		},
	})
	st, ok := mgr.LoadRXState()
	if !ok {
		println("[main] factory defaults")
	}

	latch := pcf8574.New(board.Bus)
	if err := latch.Configure(); err != nil {
		println("[main] output latch:", err.Error())
	}

	rx := radio.New(board.Synth, latch)
	if k, ok := mgr.LoadCalibration(); ok {
		if err := rx.Calibrate(k.Factor); err != nil {
			println("[main] calibrate:", err.Error())
		}
	}
	if err := rx.Restore(st); err != nil {
		println("[main] restore:", err.Error())
	}

	ring := shmring.New(256)
	sh := console.New(rx, mgr, board.Console, timex.UptimeMs)
	panel := frontpanel.New(board.Inputs, rx, mgr, sh, console.NewLineReader(ring), frontpanel.Config{})

	ctx, cancel := runContext()
	defer cancel()
	go func() {
		if err := board.Serve(ctx, ring); err != nil && ctx.Err() == nil {
			println("[main] console:", err.Error())
		}
		// Input closed (host only): finish what was typed and stop.
		if ctx.Err() == nil {
			cancel()
		}
	}()

	println("[main] ready", rx.Frequency(), rx.Mode().String())
	panel.Run(ctx)

	panel.Step(time.Now())
	if err := mgr.Flush(); err != nil {
		println("[main] final save:", err.Error())
	}
}

func halt(what string, err error) {
	println("[main]", what+":", err.Error())
	for {
		time.Sleep(time.Second)
	}
}
