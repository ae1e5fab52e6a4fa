// =================================================================================
//
//			fox-synth - https://www.foxhollow.cc/projects/fox-audio/
//
//		 Fox Synth is a small monophonic keyboard synthesizer that renders a
//	  hot-swappable signal processor straight to an audio output device
//
//		 Copyright (c) 2024 Steve Cross <flip@foxhollow.cc>
//
//			Licensed under the Apache License, Version 2.0 (the "License");
//			you may not use this file except in compliance with the License.
//			You may obtain a copy of the License at
//
//			     http://www.apache.org/licenses/LICENSE-2.0
//
//			Unless required by applicable law or agreed to in writing, software
//			distributed under the License is distributed on an "AS IS" BASIS,
//			WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
//			See the License for the specific language governing permissions and
//			limitations under the License.
//
// =================================================================================
package util

import (
	"math"
	"os"
	"path/filepath"
	"testing"

	"fox-synth/model"
)

func TestFormatNote(t *testing.T) {
	tests := []struct {
		note int
		want string
	}{
		{0, "C4"},
		{3, "D#4"},
		{11, "B4"},
		{12, "C5"},
		{-1, "B3"},
		{-12, "C3"},
		{-13, "B2"},
	}

	for _, test := range tests {
		if got := FormatNote(test.note); got != test.want {
			t.Errorf("note %d: got %q want %q", test.note, got, test.want)
		}
	}
}

func TestAmplitudeToDb(t *testing.T) {
	tests := []struct {
		amplitude float64
		want      int
	}{
		{1, 0},
		{0.5, -6},
		{0.1, -20},
		{0, MinDb},
		{-1, MinDb},
		{1e-9, MinDb},
		{math.NaN(), MinDb},
	}

	for _, test := range tests {
		if got := AmplitudeToDb(test.amplitude); got != test.want {
			t.Errorf("%v: got %d want %d", test.amplitude, got, test.want)
		}
	}
}

func TestFormatDuration(t *testing.T) {
	if got := FormatDuration(3723.25); got != "01:02:03.250" {
		t.Fatalf("got %q want 01:02:03.250", got)
	}
}

func TestGetChanAverage(t *testing.T) {
	ch := make(chan int64, 4)
	ch <- 10
	ch <- 20
	ch <- 30

	if got := GetChanAverage(ch); got != 20 {
		t.Fatalf("got %v want 20", got)
	}

	if len(ch) != 0 {
		t.Fatalf("channel not drained, %d left", len(ch))
	}

	if got := GetChanAverage(ch); !math.IsNaN(got) {
		t.Fatalf("empty channel: got %v want NaN", got)
	}
}

func TestReadConfigFile(t *testing.T) {
	file := filepath.Join(t.TempDir(), "synth.yml")

	yaml := `
backend: portaudio
sample_rate: 48000
encoding: i16
key_hold_ms: 300
synth:
  waveform: saw
  release: 1.5
`
	if err := os.WriteFile(file, []byte(yaml), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := ReadConfig(&model.CommandLineArgs{
		ConfigFile: file,
		OutputType: "json",
		Waveform:   "square",
	})
	if err != nil {
		t.Fatalf("read config: %v", err)
	}

	if config.Backend != "portaudio" || config.SampleRate != 48000 || config.Encoding != "i16" || config.KeyHoldMs != 300 {
		t.Fatalf("file values not applied: %+v", config)
	}

	// untouched values keep their defaults
	if config.ChannelCount != 2 || config.KeyRepeatMs != 120 {
		t.Fatalf("defaults lost: %+v", config)
	}

	if config.Synth.Waveform != "square" || config.Synth.Release != 1.5 || config.Synth.Sustain != 0.7 {
		t.Fatalf("synth: %+v", config.Synth)
	}

	if config.OutputType != model.OutputJSON {
		t.Fatalf("output type: got %v want json", config.OutputType)
	}

	if config.SimulationOptions == nil || config.SimulationOptions.PeriodMs != 10 {
		t.Fatalf("simulation options: %+v", config.SimulationOptions)
	}
}

func TestReadConfigErrors(t *testing.T) {
	if _, err := ReadConfig(&model.CommandLineArgs{ConfigFile: "/does/not/exist.yml", OutputType: "json"}); err == nil {
		t.Fatal("missing explicit config file accepted")
	}

	if _, err := ReadConfig(&model.CommandLineArgs{OutputType: "html"}); err == nil {
		t.Fatal("unknown output type accepted")
	}

	file := filepath.Join(t.TempDir(), "bad.yml")
	os.WriteFile(file, []byte("encoding: s24\n"), 0o644)

	if _, err := ReadConfig(&model.CommandLineArgs{ConfigFile: file, OutputType: "json"}); err == nil {
		t.Fatal("unknown encoding accepted")
	}
}

func TestReadConfigDefaults(t *testing.T) {
	config, err := ReadConfig(&model.CommandLineArgs{OutputType: "tui", Simulate: true, Backend: "portaudio"})
	if err != nil {
		t.Fatalf("read config: %v", err)
	}

	if config.Backend != "portaudio" || !config.SimulationOptions.EnableSimulation {
		t.Fatalf("flags not applied: %+v", config)
	}
}

func TestReadConfigLogLevelFlag(t *testing.T) {
	file := filepath.Join(t.TempDir(), "quiet.yml")
	if err := os.WriteFile(file, []byte("log_level: 8\n"), 0o644); err != nil {
		t.Fatal(err)
	}

	config, err := ReadConfig(&model.CommandLineArgs{ConfigFile: file, OutputType: "json"})
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if config.LogLevel != 8 {
		t.Fatalf("without the flag: got %d want 8", config.LogLevel)
	}

	// an explicit info level (zero) beats the file
	config, err = ReadConfig(&model.CommandLineArgs{ConfigFile: file, OutputType: "json", LogLevel: 0, LogLevelSet: true})
	if err != nil {
		t.Fatalf("read config: %v", err)
	}
	if config.LogLevel != 0 {
		t.Fatalf("with --log-level 0: got %d want 0", config.LogLevel)
	}
}
