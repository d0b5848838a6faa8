package main

import (
	"strconv"

	"github.com/pterm/pterm"
)

func renderDocument(path string, doc Document) {
	pterm.DefaultHeader.WithFullWidth().
		WithBackgroundStyle(pterm.NewStyle(pterm.BgDarkGray)).
		WithTextStyle(pterm.NewStyle(pterm.FgLightWhite)).
		Println(path)

	pterm.DefaultSection.Println("Configuration")
	if c := doc.Config; c != nil {
		pterm.DefaultTable.WithData(pterm.TableData{
			{"Frequency", strconv.FormatUint(uint64(c.Frequency), 10) + " Hz"},
			{"Mode", c.Mode},
			{"Step", strconv.FormatUint(uint64(c.Step), 10) + " Hz"},
			{"AGC", c.AGC},
			{"Attenuator", strconv.FormatBool(c.Attenuator)},
		}).Render()
	} else {
		pterm.Error.Println("invalid record:", doc.ConfigError)
	}

	pterm.DefaultSection.Println("Memories")
	if len(doc.Memories) == 0 {
		pterm.Info.Println("no memories stored")
	} else {
		data := pterm.TableData{{"Slot", "Frequency", "Mode"}}
		for _, m := range doc.Memories {
			data = append(data, []string{
				"M" + strconv.Itoa(m.Slot),
				strconv.FormatUint(uint64(m.Frequency), 10),
				m.Mode,
			})
		}
		pterm.DefaultTable.WithHasHeader().WithData(data).Render()
	}

	pterm.DefaultSection.Println("Calibration")
	if k := doc.Calibration; k != nil {
		pterm.Info.Printf("factor %d, saved %d ms after boot\n", k.Factor, k.TimestampMs)
	} else {
		pterm.Info.Println("none on file")
	}
}
