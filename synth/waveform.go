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
package synth

import (
	"fmt"
	"math"
	"strings"

	"fox-synth/model"
)

type Waveform int8

const (
	Sine Waveform = iota
	Square
	Saw
	Triangle
)

var WaveformMap = map[string]Waveform{
	"sine":     Sine,
	"square":   Square,
	"saw":      Saw,
	"triangle": Triangle,
}

var waveformNames = map[Waveform]string{
	Sine:     "Sine",
	Square:   "Square",
	Saw:      "Saw",
	Triangle: "Triangle",
}

// Waveforms lists the oscillator shapes in the order N cycles through them.
var Waveforms = []Waveform{Sine, Square, Saw, Triangle}

func (w Waveform) String() string {
	if name, ok := waveformNames[w]; ok {
		return name
	}
	return "unknown"
}

func (w Waveform) Next() Waveform {
	return Waveforms[(int(w)+1)%len(Waveforms)]
}

func ParseWaveform(name string) (Waveform, error) {
	waveform, ok := WaveformMap[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return Sine, fmt.Errorf("unknown waveform: %q", name)
	}

	return waveform, nil
}

// Sample evaluates one cycle of the waveform at phase in [0, 1).
func (w Waveform) Sample(phase float64) float64 {
	switch w {
	case Square:
		if phase < 0.5 {
			return 1.0
		}
		return -1.0

	case Saw:
		return 2.0*phase - 1.0

	case Triangle:
		if phase < 0.5 {
			return 4.0*phase - 1.0
		}
		return 3.0 - 4.0*phase
	}

	return math.Sin(2.0 * math.Pi * phase)
}

// Frequency of note in Hz, in equal temperament relative to reference.
func Frequency(reference float64, note model.NoteIndex) float64 {
	return reference * math.Pow(2.0, float64(note)/12.0)
}
