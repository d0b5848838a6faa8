// Command nvtool inspects and builds receiver EEPROM images and talks to the
// firmware's serial console from a PC.
//
//	nvtool decode radio.bin
//	nvtool export radio.bin -o radio.yaml
//	nvtool build radio.yaml -o radio.bin
//	nvtool console -p /dev/ttyACM0 INFO
//	nvtool ports
package main

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/pterm/pterm"
	"github.com/spf13/pflag"
	"gopkg.in/yaml.v3"

	"go.bug.st/serial"

	"vfobfo-go/drivers/eeprom24"
)

type command struct {
	name  string
	args  string
	usage string
	run   func(args []string) error
}

var commands = []command{
	{"decode", "<image>", "validate an image and print its records", runDecode},
	{"export", "<image> [-o file.yaml]", "write an image as YAML", runExport},
	{"build", "<file.yaml> -o <image>", "build an image from YAML", runBuild},
	{"console", "-p <port> <command...>", "send one console command to the radio", runConsole},
	{"ports", "", "list serial ports", runPorts},
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}
	name := os.Args[1]
	for _, c := range commands {
		if c.name == name {
			if err := c.run(os.Args[2:]); err != nil {
				pterm.Error.Println(err)
				os.Exit(1)
			}
			return
		}
	}
	if name != "help" && name != "-h" && name != "--help" {
		pterm.Error.Printf("unknown command %q\n", name)
	}
	usage()
	os.Exit(2)
}

func usage() {
	data := pterm.TableData{{"Command", "Arguments", "Description"}}
	for _, c := range commands {
		data = append(data, []string{c.name, c.args, c.usage})
	}
	pterm.DefaultHeader.WithFullWidth().Println("nvtool")
	pterm.DefaultTable.WithHasHeader().WithData(data).Render()
}

func oneArg(fs *pflag.FlagSet, what string) (string, error) {
	if fs.NArg() != 1 {
		return "", fmt.Errorf("expected one %s argument", what)
	}
	return fs.Arg(0), nil
}

func loadImage(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()
	return readImage(f)
}

func runDecode(args []string) error {
	fs := pflag.NewFlagSet("decode", pflag.ContinueOnError)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneArg(fs, "image")
	if err != nil {
		return err
	}
	img, err := loadImage(path)
	if err != nil {
		return err
	}
	doc, err := decodeImage(img)
	if err != nil {
		return err
	}
	renderDocument(path, doc)
	if doc.Config == nil {
		return fmt.Errorf("configuration record invalid: %s", doc.ConfigError)
	}
	return nil
}

func runExport(args []string) error {
	fs := pflag.NewFlagSet("export", pflag.ContinueOnError)
	out := fs.StringP("output", "o", "-", "YAML output file (- for stdout)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneArg(fs, "image")
	if err != nil {
		return err
	}
	img, err := loadImage(path)
	if err != nil {
		return err
	}
	doc, err := decodeImage(img)
	if err != nil {
		return err
	}
	b, err := yaml.Marshal(&doc)
	if err != nil {
		return err
	}
	if *out == "-" {
		_, err = os.Stdout.Write(b)
		return err
	}
	if err := os.WriteFile(*out, b, 0o644); err != nil {
		return err
	}
	pterm.Success.Printf("exported %s to %s\n", path, *out)
	return nil
}

func runBuild(args []string) error {
	fs := pflag.NewFlagSet("build", pflag.ContinueOnError)
	out := fs.StringP("output", "o", "", "image output file")
	size := fs.Int("size", eeprom24.DefaultSize, "image size in bytes")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := oneArg(fs, "YAML")
	if err != nil {
		return err
	}
	if *out == "" {
		return fmt.Errorf("--output is required")
	}
	doc, err := loadDocument(path)
	if err != nil {
		return err
	}
	img, err := buildImage(doc, *size)
	if err != nil {
		return err
	}
	if err := os.WriteFile(*out, img, 0o644); err != nil {
		return err
	}
	pterm.Success.Printf("wrote %s (%d bytes)\n", *out, len(img))
	return nil
}

func loadDocument(path string) (Document, error) {
	var doc Document
	f, err := os.Open(path)
	if err != nil {
		return doc, err
	}
	defer f.Close()
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&doc); err != nil && err != io.EOF {
		return doc, fmt.Errorf("%s: %w", path, err)
	}
	return doc, nil
}

func runConsole(args []string) error {
	fs := pflag.NewFlagSet("console", pflag.ContinueOnError)
	port := fs.StringP("port", "p", "", "serial port of the radio")
	baud := fs.IntP("baud", "b", 115200, "baud rate")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *port == "" {
		return fmt.Errorf("--port is required (see: nvtool ports)")
	}
	if fs.NArg() == 0 {
		return fmt.Errorf("no command given")
	}
	p, err := openConsole(*port, *baud)
	if err != nil {
		return err
	}
	defer p.Close()

	line := strings.Join(fs.Args(), " ")
	reply, err := exchange(p, line)
	if err != nil {
		return err
	}
	for _, l := range reply {
		pterm.Println(l)
	}
	if replyFailed(reply) {
		return fmt.Errorf("%s failed", fs.Arg(0))
	}
	return nil
}

func runPorts(args []string) error {
	ports, err := serial.GetPortsList()
	if err != nil {
		return err
	}
	if len(ports) == 0 {
		pterm.Warning.Println("no serial ports found")
		return nil
	}
	for _, p := range ports {
		pterm.Println(p)
	}
	return nil
}
