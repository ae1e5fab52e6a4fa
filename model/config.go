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
package model

type OutputType int

const (
	OutputTUI OutputType = iota
	OutputJSON
)

var OutputTypeMap = map[string]OutputType{
	"tui":  OutputTUI,
	"json": OutputJSON,
}

type CommandLineArgs struct {
	Simulate   bool
	Backend    string
	Waveform   string
	ConfigFile string
	OutputType string
	LogLevel   int

	// LogLevelSet is true when --log-level was given, zero included
	LogLevelSet bool
}

type Config struct {
	Backend           string `yaml:"backend,omitempty"`
	SampleRate        int    `yaml:"sample_rate,omitempty"`
	ChannelCount      int    `yaml:"channel_count,omitempty"`
	Encoding          string `yaml:"encoding,omitempty"`
	BufferSizeMs      int    `yaml:"buffer_size_ms,omitempty"`
	MaxFrames         int    `yaml:"max_frames,omitempty"`
	ShutdownTimeoutMs int    `yaml:"shutdown_timeout_ms,omitempty"`
	EventBuffer       int    `yaml:"event_buffer,omitempty"`
	LogLevel          int    `yaml:"log_level,omitempty"`

	OutputType OutputType `yaml:"-"`
	OutputName string     `yaml:"output_type,omitempty"`

	ReferencePitch float64 `yaml:"reference_pitch,omitempty"`
	KeyHoldMs      int     `yaml:"key_hold_ms,omitempty"`
	KeyRepeatMs    int     `yaml:"key_repeat_ms,omitempty"`

	Synth             *SynthOptions      `yaml:"synth"`
	SimulationOptions *SimulationOptions `yaml:"simulation_options"`
}

type SynthOptions struct {
	Waveform string  `yaml:"waveform,omitempty"`
	Attack   float64 `yaml:"attack,omitempty"`
	Decay    float64 `yaml:"decay,omitempty"`
	Sustain  float64 `yaml:"sustain,omitempty"`
	Release  float64 `yaml:"release,omitempty"`
	Level    float64 `yaml:"level,omitempty"`
}

type SimulationOptions struct {
	EnableSimulation bool `yaml:"enable,omitempty"`
	PeriodMs         int  `yaml:"period_ms,omitempty"`
	Demo             bool `yaml:"demo,omitempty"`
}

// SignalLevel is a meter reading in dBFS.
type SignalLevel struct {
	Instant int
	Peak    int
}
