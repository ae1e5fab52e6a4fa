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
package app

import (
	"log/slog"
	"time"

	"fox-synth/model"
	"fox-synth/reaper"
)

const (
	demoStepMs = 250
)

// demoPattern is a looping arpeggio, one entry per step
var demoPattern = []model.NoteIndex{0, 4, 7, 12, 16, 12, 7, 4}

// startSimulation plays the demo arpeggio through the engine so the whole
// pipeline can be watched without a keyboard.
func startSimulation(s *session, shutdownChan chan bool) {
	reaper.Register("simulation")

	go func() {
		defer reaper.Done("simulation")

		slog.Info("Simulation: playing demo arpeggio")

		t := time.NewTicker(demoStepMs * time.Millisecond)
		defer t.Stop()

		step := 0
		var sounding *model.NoteIndex

		for range t.C {
			if len(shutdownChan) > 0 {
				break
			}

			note := demoPattern[step%len(demoPattern)]

			// press the next note before releasing the last one so the
			// release falls back through the key stack
			s.controller.Press(note)
			if sounding != nil && *sounding != note {
				s.controller.Release(*sounding)
			}
			sounding = &note

			if step > 0 && step%(len(demoPattern)*2) == 0 {
				s.nextWaveform()
			}

			step++
		}

		if sounding != nil {
			s.controller.Release(*sounding)
		}
	}()
}
