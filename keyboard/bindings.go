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
package keyboard

import (
	"unicode"

	"fox-synth/model"
)

type Action int8

const (
	ActionNone Action = iota
	ActionNote
	ActionOctaveDown
	ActionOctaveUp
	ActionNextWaveform
	ActionPrevParam
	ActionNextParam
	ActionParamDown
	ActionParamUp
)

var actionNames = map[Action]string{
	ActionNone:         "none",
	ActionNote:         "note",
	ActionOctaveDown:   "octave down",
	ActionOctaveUp:     "octave up",
	ActionNextWaveform: "next waveform",
	ActionPrevParam:    "previous parameter",
	ActionNextParam:    "next parameter",
	ActionParamDown:    "parameter down",
	ActionParamUp:      "parameter up",
}

func (a Action) String() string {
	if name, ok := actionNames[a]; ok {
		return name
	}
	return "unknown"
}

type Binding struct {
	Action Action
	Note   model.NoteIndex
}

// NoteKeys is the two row piano layout, one chromatic step per key.
const NoteKeys = "awsedftgyhujkolp"

var DefaultBindings = defaultBindings()

func defaultBindings() map[rune]Binding {
	bindings := map[rune]Binding{
		'z': {Action: ActionOctaveDown},
		'x': {Action: ActionOctaveUp},
		'n': {Action: ActionNextWaveform},
		',': {Action: ActionPrevParam},
		'.': {Action: ActionNextParam},
		'-': {Action: ActionParamDown},
		'=': {Action: ActionParamUp},
	}

	for i, key := range []rune(NoteKeys) {
		bindings[key] = Binding{Action: ActionNote, Note: model.NoteIndex(i)}
	}

	return bindings
}

// Lookup resolves a typed rune against the default layout, ignoring case.
func Lookup(key rune) (Binding, bool) {
	binding, ok := DefaultBindings[unicode.ToLower(key)]
	return binding, ok
}
