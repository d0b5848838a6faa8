package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"

	"gopkg.in/yaml.v3"

	"vfobfo-go/drivers/eeprom24"
	"vfobfo-go/nvstore"
)

const sampleYAML = `config:
  frequency: 14074000
  mode: usb
  step: 100
  agc: slow
  attenuator: true
memories:
  - slot: 0
    frequency: 7030000
    mode: CW
  - slot: 9
    frequency: 3700000
    mode: LSB
calibration:
  factor: -1250
  timestamp_ms: 60000
`

func TestBuildThenDecode(t *testing.T) {
	var doc Document
	if err := yaml.Unmarshal([]byte(sampleYAML), &doc); err != nil {
		t.Fatal(err)
	}
	img, err := buildImage(doc, eeprom24.DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	if len(img) != eeprom24.DefaultSize || img[len(img)-1] != 0xFF {
		t.Fatal("image not blank-filled to size")
	}

	got, err := decodeImage(img)
	if err != nil {
		t.Fatal(err)
	}
	want := Document{
		Config: &ConfigDoc{Frequency: 14_074_000, Mode: "USB", Step: 100, AGC: "slow", Attenuator: true},
		Memories: []MemoryDoc{
			{Slot: 0, Frequency: 7_030_000, Mode: "CW"},
			{Slot: 9, Frequency: 3_700_000, Mode: "LSB"},
		},
		Calibration: &CalibrationDoc{Factor: -1250, TimestampMs: 60000},
	}
	if !reflect.DeepEqual(got, want) {
		t.Fatalf("decoded:\n%+v\nwant:\n%+v", got, want)
	}

	// The firmware store reads the same image.
	rec, err := nvstore.NewStore(memImage(img), nvstore.DefaultLayout).LoadConfig()
	if err != nil || !rec.Memories[9].Valid || rec.Memories[9].Frequency != 3_700_000 {
		t.Fatalf("firmware view: %+v %v", rec.Memories[9], err)
	}
}

func TestBuildDefaultsAndRejects(t *testing.T) {
	img, err := buildImage(Document{}, eeprom24.DefaultSize)
	if err != nil {
		t.Fatal(err)
	}
	doc, _ := decodeImage(img)
	if doc.Config == nil || doc.Config.Frequency != nvstore.DefaultFrequency || doc.Config.AGC != "fast" {
		t.Fatalf("defaults: %+v", doc.Config)
	}
	if doc.Calibration != nil || len(doc.Memories) != 0 {
		t.Fatal("blank image has memories or calibration")
	}

	bad := []Document{
		{Config: &ConfigDoc{Frequency: 7_000_000, Mode: "FM", Step: 10}},
		{Config: &ConfigDoc{Frequency: 7_000_000, Mode: "LSB", Step: 0}},
		{Memories: []MemoryDoc{{Slot: 10, Frequency: 1, Mode: "AM"}}},
	}
	for i, d := range bad {
		if _, err := buildImage(d, eeprom24.DefaultSize); err == nil {
			t.Errorf("case %d accepted", i)
		}
	}
	if _, err := buildImage(Document{}, 64); err == nil {
		t.Error("image smaller than the layout accepted")
	}
}

func TestDecodeReportsCorruptConfig(t *testing.T) {
	img, _ := buildImage(Document{}, eeprom24.DefaultSize)
	img[0] ^= 0x01

	doc, err := decodeImage(img)
	if err != nil {
		t.Fatal(err)
	}
	if doc.Config != nil || doc.ConfigError != "checksum" {
		t.Fatalf("corrupt record: %+v", doc)
	}

	blank := blankImage(eeprom24.DefaultSize)
	doc, _ = decodeImage(blank)
	if doc.Config != nil || doc.ConfigError != "invalid_payload" {
		t.Fatalf("erased image: %+v", doc)
	}

	if _, err := decodeImage(make([]byte, 16)); err == nil {
		t.Fatal("short image accepted")
	}
}

func TestExportYAMLRoundTrip(t *testing.T) {
	dir := t.TempDir()
	var doc Document
	yaml.Unmarshal([]byte(sampleYAML), &doc)
	img, _ := buildImage(doc, eeprom24.DefaultSize)
	imgPath := filepath.Join(dir, "radio.bin")
	yamlPath := filepath.Join(dir, "radio.yaml")
	os.WriteFile(imgPath, img, 0o644)

	if err := runExport([]string{imgPath, "-o", yamlPath}); err != nil {
		t.Fatal(err)
	}
	out := filepath.Join(dir, "copy.bin")
	if err := runBuild([]string{yamlPath, "--output", out}); err != nil {
		t.Fatal(err)
	}
	copyImg, _ := os.ReadFile(out)
	if !bytes.Equal(copyImg, img) {
		t.Fatal("export/build did not reproduce the image")
	}
}

func TestLoadDocumentRejectsUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "x.yaml")
	os.WriteFile(path, []byte("config:\n  frequncy: 7000000\n"), 0o644)
	if _, err := loadDocument(path); err == nil {
		t.Fatal("typo accepted")
	}
}

func TestReadImageLimit(t *testing.T) {
	if _, err := readImage(bytes.NewReader(make([]byte, eeprom24.DefaultSize+1))); err == nil {
		t.Fatal("oversized image accepted")
	}
}

// loopPort answers a written command from a canned reply, then reports EOF.
type loopPort struct {
	sent  bytes.Buffer
	reply *strings.Reader
}

func (p *loopPort) Write(b []byte) (int, error) { return p.sent.Write(b) }
func (p *loopPort) Read(b []byte) (int, error) {
	if p.reply.Len() == 0 {
		return 0, io.EOF
	}
	return p.reply.Read(b[:min(len(b), 5)])
}

func TestExchange(t *testing.T) {
	p := &loopPort{reply: strings.NewReader("CAL -1250\r\nOK\r\n")}
	lines, err := exchange(p, "  CAL_READ ")
	if err != nil {
		t.Fatal(err)
	}
	if p.sent.String() != "CAL_READ\r\n" {
		t.Fatalf("sent %q", p.sent.String())
	}
	if !reflect.DeepEqual(lines, []string{"CAL -1250", "OK"}) {
		t.Fatalf("lines = %q", lines)
	}
	if replyFailed(lines) || !replyFailed([]string{"ERR unknown command"}) {
		t.Fatal("replyFailed")
	}
}
