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

import "fox-synth/model"

const (
	scopeBuffers = 3
)

// scopeTap copies the generated signal into fixed blocks for display. Blocks
// circulate between a free list and a filled channel so the worker never
// allocates; when the reader falls behind the worker simply skips capturing.
type scopeTap struct {
	free    chan []model.Signal
	filled  chan []model.Signal
	current []model.Signal
}

func newScopeTap(size int) *scopeTap {
	tap := &scopeTap{
		free:   make(chan []model.Signal, scopeBuffers),
		filled: make(chan []model.Signal, scopeBuffers),
	}

	for range scopeBuffers {
		tap.free <- make([]model.Signal, 0, size)
	}

	return tap
}

func (tap *scopeTap) capture(signal []model.Signal) {
	for len(signal) > 0 {
		if tap.current == nil {
			select {
			case block := <-tap.free:
				tap.current = block[:0]
			default:
				return
			}
		}

		n := min(cap(tap.current)-len(tap.current), len(signal))
		tap.current = append(tap.current, signal[:n]...)
		signal = signal[n:]

		if len(tap.current) == cap(tap.current) {
			// every block is either free, filled or current, so this never blocks
			tap.filled <- tap.current
			tap.current = nil
		}
	}
}

func (tap *scopeTap) recycle(block []model.Signal) {
	select {
	case tap.free <- block[:0]:
	default:
	}
}
