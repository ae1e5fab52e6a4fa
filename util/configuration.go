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
	"errors"
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"

	"fox-synth/model"

	"golang.org/x/term"
)

const (
	DefaultConfigFile = "fox-synth.yml"
)

func DefaultConfig() *model.Config {
	return &model.Config{
		Backend:           "oto",
		SampleRate:        44100,
		ChannelCount:      2,
		Encoding:          "f32",
		BufferSizeMs:      10,
		MaxFrames:         4096,
		ShutdownTimeoutMs: 250,
		EventBuffer:       64,
		LogLevel:          int(slog.LevelInfo),
		OutputType:        model.OutputTUI,
		OutputName:        "tui",
		ReferencePitch:    261.63,
		KeyHoldMs:         550,
		KeyRepeatMs:       120,
		Synth: &model.SynthOptions{
			Waveform: "sine",
			Attack:   0.01,
			Decay:    0.15,
			Sustain:  0.7,
			Release:  0.25,
			Level:    0.5,
		},
		SimulationOptions: &model.SimulationOptions{
			EnableSimulation: false,
			PeriodMs:         10,
			Demo:             true,
		},
	}
}

// ReadConfig layers the yaml config file and then the command line over the
// defaults. A missing config file is fine; a broken one is not.
func ReadConfig(args *model.CommandLineArgs) (*model.Config, error) {
	config := DefaultConfig()

	configFile := args.ConfigFile
	if configFile == "" {
		configFile = DefaultConfigFile
	}

	if err := ReadYamlFile(config, configFile); err != nil {
		if args.ConfigFile != "" || !isNotFound(err) {
			return nil, err
		}
		slog.Debug("No config file found, using defaults")
	}

	// yaml leaves the pointers nil when the sections are present but empty
	defaults := DefaultConfig()
	if config.Synth == nil {
		config.Synth = defaults.Synth
	}
	if config.SimulationOptions == nil {
		config.SimulationOptions = defaults.SimulationOptions
	}

	if args.Backend != "" {
		config.Backend = args.Backend
	}

	if args.Waveform != "" {
		config.Synth.Waveform = args.Waveform
	}

	if args.LogLevelSet {
		config.LogLevel = args.LogLevel
	}

	if args.Simulate {
		config.SimulationOptions.EnableSimulation = true
	}

	outputName := config.OutputName
	if args.OutputType != "" {
		outputName = args.OutputType
	} else if !term.IsTerminal(int(os.Stdout.Fd())) {
		outputName = "json"
	}

	outputType, ok := model.OutputTypeMap[strings.ToLower(outputName)]
	if !ok {
		outputTypes := make([]string, 0, len(model.OutputTypeMap))
		for key := range model.OutputTypeMap {
			outputTypes = append(outputTypes, key)
		}
		slices.Sort(outputTypes)

		return nil, fmt.Errorf("invalid output type specified: %s. Valid options: %s", outputName, strings.Join(outputTypes, ", "))
	}

	config.OutputType = outputType
	config.OutputName = strings.ToLower(outputName)

	if _, err := model.ParseEncoding(config.Encoding); err != nil {
		return nil, err
	}

	return config, nil
}

func isNotFound(err error) bool {
	return errors.Is(err, ErrNoYamlFile) || errors.Is(err, os.ErrNotExist)
}
