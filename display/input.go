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
package display

import (
	"fmt"
	"strconv"
	"strings"

	"fox-synth/model"
)

type InputKind int8

const (
	// InputKey is a typed rune, resolved against the keyboard bindings
	InputKey InputKind = iota
	InputPress
	InputRelease
	InputWaveform
	InputParam
	InputQuit
)

// Input is something the user asked for through whichever UI is active.
type Input struct {
	Kind  InputKind
	Key   rune
	Note  model.NoteIndex
	Name  string
	Value float64
}

// ParseCommand reads one line of the JSON UI's command protocol:
//
//	press <note>
//	release <note>
//	key <rune>
//	waveform <name>
//	param <name> <value>
//	quit
func ParseCommand(line string) (Input, error) {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return Input{}, fmt.Errorf("empty command")
	}

	command := strings.ToLower(fields[0])
	args := fields[1:]

	switch command {
	case "press", "release":
		if len(args) != 1 {
			return Input{}, fmt.Errorf("%s takes one note index", command)
		}

		note, err := strconv.ParseInt(args[0], 10, 32)
		if err != nil {
			return Input{}, fmt.Errorf("invalid note index %q: %w", args[0], err)
		}

		kind := InputPress
		if command == "release" {
			kind = InputRelease
		}

		return Input{Kind: kind, Note: model.NoteIndex(note)}, nil

	case "key":
		if len(args) != 1 || len([]rune(args[0])) != 1 {
			return Input{}, fmt.Errorf("key takes a single character")
		}

		return Input{Kind: InputKey, Key: []rune(args[0])[0]}, nil

	case "waveform":
		if len(args) != 1 {
			return Input{}, fmt.Errorf("waveform takes a name")
		}

		return Input{Kind: InputWaveform, Name: args[0]}, nil

	case "param":
		if len(args) != 2 {
			return Input{}, fmt.Errorf("param takes a name and a value")
		}

		if _, err := model.ParseParam(args[0]); err != nil {
			return Input{}, err
		}

		value, err := strconv.ParseFloat(args[1], 64)
		if err != nil {
			return Input{}, fmt.Errorf("invalid param value %q: %w", args[1], err)
		}

		return Input{Kind: InputParam, Name: args[0], Value: value}, nil

	case "quit", "exit":
		return Input{Kind: InputQuit}, nil
	}

	return Input{}, fmt.Errorf("unknown command: %q", command)
}
