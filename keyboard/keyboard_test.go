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
	"errors"
	"slices"
	"testing"
	"time"

	"fox-synth/model"
)

type recordingSink struct {
	events []model.KeyEvent
	err    error
}

func (sink *recordingSink) Press(note model.NoteIndex) error {
	sink.events = append(sink.events, model.PressKey(note))
	return sink.err
}

func (sink *recordingSink) Release(note model.NoteIndex) error {
	sink.events = append(sink.events, model.ReleaseKey(note))
	return sink.err
}

func TestLookup(t *testing.T) {
	tests := []struct {
		key  rune
		want Binding
	}{
		{'a', Binding{Action: ActionNote, Note: 0}},
		{'W', Binding{Action: ActionNote, Note: 1}},
		{'p', Binding{Action: ActionNote, Note: 15}},
		{'z', Binding{Action: ActionOctaveDown}},
		{'X', Binding{Action: ActionOctaveUp}},
		{'n', Binding{Action: ActionNextWaveform}},
		{'=', Binding{Action: ActionParamUp}},
	}

	for _, test := range tests {
		got, ok := Lookup(test.key)
		if !ok || got != test.want {
			t.Errorf("%q: got %+v (%v) want %+v", test.key, got, ok, test.want)
		}
	}

	if _, ok := Lookup('q'); ok {
		t.Fatal("q should not be bound")
	}
}

func TestTrackerPressAndExpire(t *testing.T) {
	sink := &recordingSink{}
	tracker := NewTracker(sink, 500*time.Millisecond, 100*time.Millisecond)

	start := time.Now()
	tracker.KeyDown('d', start)

	if got := tracker.Held(); !slices.Equal(got, []model.NoteIndex{4}) {
		t.Fatalf("held: got %v want [4]", got)
	}

	if n := tracker.Expire(start.Add(400 * time.Millisecond)); n != 0 {
		t.Fatalf("expired %d keys before the hold time", n)
	}

	if n := tracker.Expire(start.Add(500 * time.Millisecond)); n != 1 {
		t.Fatalf("expired %d keys at the hold time, want 1", n)
	}

	want := []model.KeyEvent{model.PressKey(4), model.ReleaseKey(4)}
	if !slices.Equal(sink.events, want) {
		t.Fatalf("events: got %v want %v", sink.events, want)
	}
}

func TestTrackerRepeatExtendsHold(t *testing.T) {
	sink := &recordingSink{}
	tracker := NewTracker(sink, 500*time.Millisecond, 100*time.Millisecond)

	start := time.Now()
	tracker.KeyDown('a', start)

	// auto repeat every 50ms for a second
	for ms := 450; ms <= 1000; ms += 50 {
		now := start.Add(time.Duration(ms) * time.Millisecond)
		tracker.KeyDown('a', now)
		if n := tracker.Expire(now); n != 0 {
			t.Fatalf("released at %dms while repeating", ms)
		}
	}

	if len(sink.events) != 1 {
		t.Fatalf("repeats sent events: %v", sink.events)
	}

	if n := tracker.Expire(start.Add(1100 * time.Millisecond)); n != 1 {
		t.Fatalf("expired %d keys after repeats stopped, want 1", n)
	}
}

func TestTrackerOctave(t *testing.T) {
	sink := &recordingSink{}
	tracker := NewTracker(sink, 0, 0)

	now := time.Now()
	tracker.KeyDown('a', now)
	tracker.KeyDown('x', now)
	tracker.KeyDown('a', now)

	if tracker.Octave() != 1 {
		t.Fatalf("octave: got %d want 1", tracker.Octave())
	}

	// 'a' is still held from before the shift, so the repeat is swallowed
	if len(sink.events) != 1 {
		t.Fatalf("events: got %v", sink.events)
	}

	tracker.ReleaseAll()
	tracker.KeyDown('a', now)
	tracker.ReleaseAll()

	want := []model.KeyEvent{model.PressKey(0), model.ReleaseKey(0), model.PressKey(12), model.ReleaseKey(12)}
	if !slices.Equal(sink.events, want) {
		t.Fatalf("events: got %v want %v", sink.events, want)
	}

	for range 10 {
		tracker.KeyDown('z', now)
	}
	if tracker.Octave() != MinOctave {
		t.Fatalf("octave: got %d want %d", tracker.Octave(), MinOctave)
	}
}

func TestTrackerPassesOtherBindings(t *testing.T) {
	tracker := NewTracker(&recordingSink{}, 0, 0)

	binding, ok := tracker.KeyDown('N', time.Now())
	if !ok || binding.Action != ActionNextWaveform {
		t.Fatalf("got %+v (%v)", binding, ok)
	}

	if _, ok := tracker.KeyDown('?', time.Now()); ok {
		t.Fatal("unbound key reported as handled")
	}
}

func TestTrackerIgnoresSinkErrors(t *testing.T) {
	sink := &recordingSink{err: errors.New("closed")}
	tracker := NewTracker(sink, 0, 0)

	tracker.KeyDown('a', time.Now())
	tracker.ReleaseAll()

	if len(sink.events) != 2 || len(tracker.Held()) != 0 {
		t.Fatalf("events %v held %v", sink.events, tracker.Held())
	}
}
