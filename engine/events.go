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
	"time"

	"fox-synth/model"
)

type EventKind int8

const (
	EventProcessorInstalled EventKind = iota
	EventProcessorDropped
	EventProcessorPanic
	EventStopping
)

var eventNames = map[EventKind]string{
	EventProcessorInstalled: "processor installed",
	EventProcessorDropped:   "processor dropped",
	EventProcessorPanic:     "processor panic",
	EventStopping:           "stopping",
}

func (k EventKind) String() string {
	if name, ok := eventNames[k]; ok {
		return name
	}
	return "unknown"
}

// Event is something the worker wants logged. The worker never logs itself;
// events travel over a bounded channel to the controller's consumer goroutine.
type Event struct {
	Kind   EventKind
	Sample uint64
	Note   model.NoteIndex
	Held   bool
	Detail string
}

// Metrics describes one device callback.
type Metrics struct {
	Callback uint64
	Frames   int
	Samples  uint64
	Time     float64

	// Elapsed is the time spent inside the callback, Idle the gap since the
	// previous callback returned.
	Elapsed time.Duration
	Idle    time.Duration
	Budget  time.Duration

	Peak  float64
	Note  model.NoteIndex
	Held  bool
	Depth int
}

// Load is the fraction of the buffer's real time spent rendering it.
func (m Metrics) Load() float64 {
	if m.Budget <= 0 {
		return 0
	}
	return float64(m.Elapsed) / float64(m.Budget)
}
