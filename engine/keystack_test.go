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
	"math/rand/v2"
	"slices"
	"testing"

	"fox-synth/model"
)

func TestKeyStackLastPressedWins(t *testing.T) {
	stack := NewKeyStack(4)

	stack.Push(3)
	stack.Push(5)

	note, held := stack.Current()
	if !held || note != 5 {
		t.Fatalf("current: got %d (%v) want 5", note, held)
	}

	note, held = stack.Release(5)
	if !held || note != 3 {
		t.Fatalf("after release: got %d (%v) want 3", note, held)
	}

	note, held = stack.Release(3)
	if held {
		t.Fatalf("empty stack reported note %d", note)
	}
}

func TestKeyStackRepressMovesToFront(t *testing.T) {
	stack := NewKeyStack(4)

	stack.Push(3)
	stack.Push(3)

	if got := stack.Held(); !slices.Equal(got, []model.NoteIndex{3}) {
		t.Fatalf("held: got %v want [3]", got)
	}

	stack.Push(1)
	stack.Push(2)
	stack.Push(1)

	if got := stack.Held(); !slices.Equal(got, []model.NoteIndex{1, 2, 3}) {
		t.Fatalf("held: got %v want [1 2 3]", got)
	}
}

func TestKeyStackReleaseNotHeld(t *testing.T) {
	stack := NewKeyStack(4)
	stack.Push(9)

	note, held := stack.Release(4)
	if !held || note != 9 {
		t.Fatalf("got %d (%v) want 9", note, held)
	}
	if stack.Len() != 1 {
		t.Fatalf("len: got %d want 1", stack.Len())
	}

	empty := NewKeyStack(0)
	if _, held := empty.Release(1); held {
		t.Fatal("releasing on an empty stack reported a held note")
	}
}

func TestKeyStackApply(t *testing.T) {
	stack := NewKeyStack(4)

	events := []model.KeyEvent{
		model.PressKey(3),
		model.PressKey(5),
		model.ReleaseKey(5),
	}

	var note model.NoteIndex
	var held bool
	for _, event := range events {
		note, held = stack.Apply(event)
	}

	if !held || note != 3 {
		t.Fatalf("got %d (%v) want 3", note, held)
	}
}

// reference keeps, for every note, the order of its latest press
type reference struct {
	order []model.NoteIndex
}

func (r *reference) apply(event model.KeyEvent) {
	r.order = slices.DeleteFunc(r.order, func(n model.NoteIndex) bool { return n == event.Note })
	if event.Action == model.Press {
		r.order = append(r.order, event.Note)
	}
}

func TestKeyStackRandomSequences(t *testing.T) {
	rng := rand.New(rand.NewPCG(1, 2))

	for round := 0; round < 200; round++ {
		stack := NewKeyStack(8)
		ref := &reference{}

		for step := 0; step < 50; step++ {
			event := model.KeyEvent{
				Action: model.KeyAction(rng.IntN(2)),
				Note:   model.NoteIndex(rng.IntN(12) - 6),
			}

			note, held := stack.Apply(event)
			ref.apply(event)

			current := stack.Held()
			seen := make(map[model.NoteIndex]bool)
			for _, n := range current {
				if seen[n] {
					t.Fatalf("round %d step %d: duplicate %d in %v", round, step, n, current)
				}
				seen[n] = true
			}

			if len(ref.order) == 0 {
				if held {
					t.Fatalf("round %d step %d: got %d want nothing held", round, step, note)
				}
				continue
			}

			want := ref.order[len(ref.order)-1]
			if !held || note != want {
				t.Fatalf("round %d step %d: got %d (%v) want %d", round, step, note, held, want)
			}
		}
	}
}
