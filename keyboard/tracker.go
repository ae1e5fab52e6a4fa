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
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"
	"unicode"

	"fox-synth/model"
)

const (
	MinOctave = -4
	MaxOctave = 4

	DefaultHold   = 550 * time.Millisecond
	DefaultRepeat = 120 * time.Millisecond
)

// Sink receives the press and release events the tracker derives.
type Sink interface {
	Press(note model.NoteIndex) error
	Release(note model.NoteIndex) error
}

type heldKey struct {
	note     model.NoteIndex
	deadline time.Time
}

// Tracker turns typed runes into press and release events. Terminals only
// report key presses and auto-repeat, so a held key is released once no
// repeat arrived before its deadline. The first deadline is the hold time,
// long enough to cover the terminal's repeat delay; every repeat pushes it
// out by the repeat interval.
type Tracker struct {
	lock   sync.Mutex
	sink   Sink
	hold   time.Duration
	repeat time.Duration
	octave int
	held   map[rune]heldKey
}

func NewTracker(sink Sink, hold time.Duration, repeat time.Duration) *Tracker {
	if hold <= 0 {
		hold = DefaultHold
	}
	if repeat <= 0 {
		repeat = DefaultRepeat
	}

	return &Tracker{
		sink:   sink,
		hold:   hold,
		repeat: repeat,
		held:   make(map[rune]heldKey),
	}
}

// KeyDown handles one typed rune. Note keys are handled here; every other
// binding is returned for the caller to act on.
func (tracker *Tracker) KeyDown(key rune, now time.Time) (Binding, bool) {
	binding, ok := Lookup(key)
	if !ok {
		return binding, false
	}

	key = unicode.ToLower(key)

	tracker.lock.Lock()
	defer tracker.lock.Unlock()

	switch binding.Action {
	case ActionNote:
		if held, ok := tracker.held[key]; ok {
			held.deadline = later(held.deadline, now.Add(tracker.repeat))
			tracker.held[key] = held
			return binding, true
		}

		note := binding.Note + model.NoteIndex(12*tracker.octave)
		tracker.held[key] = heldKey{note: note, deadline: now.Add(tracker.hold)}
		tracker.send(model.PressKey(note))

	case ActionOctaveDown:
		tracker.octave = max(tracker.octave-1, MinOctave)

	case ActionOctaveUp:
		tracker.octave = min(tracker.octave+1, MaxOctave)
	}

	return binding, true
}

// Expire releases every key whose deadline has passed and returns how many.
func (tracker *Tracker) Expire(now time.Time) int {
	tracker.lock.Lock()
	defer tracker.lock.Unlock()

	released := 0
	for key, held := range tracker.held {
		if now.Before(held.deadline) {
			continue
		}

		delete(tracker.held, key)
		tracker.send(model.ReleaseKey(held.note))
		released++
	}

	return released
}

func (tracker *Tracker) ReleaseAll() {
	tracker.lock.Lock()
	defer tracker.lock.Unlock()

	for key, held := range tracker.held {
		delete(tracker.held, key)
		tracker.send(model.ReleaseKey(held.note))
	}
}

func (tracker *Tracker) Octave() int {
	tracker.lock.Lock()
	defer tracker.lock.Unlock()

	return tracker.octave
}

// Held returns the sounding notes in ascending order.
func (tracker *Tracker) Held() []model.NoteIndex {
	tracker.lock.Lock()
	defer tracker.lock.Unlock()

	notes := make([]model.NoteIndex, 0, len(tracker.held))
	for _, held := range tracker.held {
		notes = append(notes, held.note)
	}
	slices.Sort(notes)

	return notes
}

func (tracker *Tracker) send(event model.KeyEvent) {
	var err error
	if event.Action == model.Press {
		err = tracker.sink.Press(event.Note)
	} else {
		err = tracker.sink.Release(event.Note)
	}

	if err != nil {
		slog.Debug(fmt.Sprintf("Keyboard event %s not delivered: %s", event.String(), err.Error()))
	}
}

func later(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
