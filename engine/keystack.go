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
package engine

import (
	"slices"

	"fox-synth/model"
)

// KeyStack holds the currently pressed notes, most recent press last. It
// implements last-note priority: the newest held note sounds and releasing it
// falls back to the next most recent one. Not safe for concurrent use; the
// audio worker owns it.
type KeyStack struct {
	held []model.NoteIndex
}

func NewKeyStack(capacity int) *KeyStack {
	return &KeyStack{
		held: make([]model.NoteIndex, 0, capacity),
	}
}

// Push moves note to the front, removing any earlier occurrence first.
func (s *KeyStack) Push(note model.NoteIndex) (model.NoteIndex, bool) {
	s.remove(note)
	s.held = append(s.held, note)

	return note, true
}

// Release drops note if it is held. Releasing a note that is not held is a no-op.
func (s *KeyStack) Release(note model.NoteIndex) (model.NoteIndex, bool) {
	s.remove(note)

	return s.Current()
}

func (s *KeyStack) Current() (model.NoteIndex, bool) {
	if len(s.held) == 0 {
		return 0, false
	}

	return s.held[len(s.held)-1], true
}

func (s *KeyStack) Apply(event model.KeyEvent) (model.NoteIndex, bool) {
	if event.Action == model.Press {
		return s.Push(event.Note)
	}

	return s.Release(event.Note)
}

func (s *KeyStack) Len() int {
	return len(s.held)
}

// Held returns a copy of the held notes, most recent first.
func (s *KeyStack) Held() []model.NoteIndex {
	held := slices.Clone(s.held)
	slices.Reverse(held)

	return held
}

func (s *KeyStack) remove(note model.NoteIndex) {
	for i, held := range s.held {
		if held == note {
			s.held = append(s.held[:i], s.held[i+1:]...)
			return
		}
	}
}
