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
	"io"

	"fox-synth/model"
)

// Processor produces one mono sample per output frame, given the note that
// should sound. It is called at audio rate from a single goroutine and must
// not allocate, lock or do I/O.
type Processor interface {
	Process(note model.NoteIndex, held bool) model.Signal
}

type ProcessorFunc func(note model.NoteIndex, held bool) model.Signal

func (f ProcessorFunc) Process(note model.NoteIndex, held bool) model.Signal {
	return f(note, held)
}

// ParamReceiver is implemented by processors that accept parameter updates.
type ParamReceiver interface {
	SetParam(update model.ParamUpdate)
}

type silence struct{}

func (silence) Process(model.NoteIndex, bool) model.Signal {
	return 0.0
}

// Silence is installed at start and whenever a processor panics.
var Silence Processor = silence{}

// processorSlot owns the installed processor. Only the worker touches it.
type processorSlot struct {
	current  Processor
	installs uint64
}

func newProcessorSlot() processorSlot {
	return processorSlot{current: Silence}
}

func (slot *processorSlot) install(p Processor) Processor {
	previous := slot.current
	slot.current = p
	slot.installs++

	return previous
}

func (slot *processorSlot) silence() Processor {
	return slot.install(Silence)
}

// release frees whatever a replaced processor holds
func release(p Processor) {
	if closer, ok := p.(io.Closer); ok {
		closer.Close()
	}
}
