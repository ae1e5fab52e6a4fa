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

import "fmt"

// NoteIndex is a chromatic offset from the configured reference pitch,
// positive is higher. The engine never interprets it.
type NoteIndex int32

// Signal is a single mono amplitude, nominally within [-1.0, +1.0].
type Signal = float64

type KeyAction int8

const (
	Press KeyAction = iota
	Release
)

func (a KeyAction) String() string {
	switch a {
	case Press:
		return "press"
	case Release:
		return "release"
	}
	return "unknown"
}

// KeyEvent is a raw press or release of a single note.
type KeyEvent struct {
	Action KeyAction
	Note   NoteIndex
}

func PressKey(note NoteIndex) KeyEvent {
	return KeyEvent{Action: Press, Note: note}
}

func ReleaseKey(note NoteIndex) KeyEvent {
	return KeyEvent{Action: Release, Note: note}
}

func (e KeyEvent) String() string {
	return fmt.Sprintf("%s(%d)", e.Action, e.Note)
}
