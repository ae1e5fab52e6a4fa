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
package display

import (
	"log/slog"

	"fox-synth/model"
)

type UI interface {
	Initalize()
	Start()
	Shutdown()
	IsShutdown() bool
	WaitForShutdown()
	SetInputHandler(handler func(Input))
	SetStatus(status Status)
	SetDuration(duration float64)
	SetAudioFormat(format string)
	SetBackend(name string)
	SetWaveform(name string)
	SetNote(note string)
	SetOctave(octave int)
	SetHeldNotes(notes []int)
	SetParams(values []model.ParamUpdate, selected model.Param)
	IncrementErrorCount()
	SetChannelCount(channelCount int)
	UpdateSignalLevels(levels []model.SignalLevel)
	SetSpectrum(bands []float64, dominantBand int, dominantHz float64)
	SetAudioLoad(percent int)
	SetXrunCount(count uint64)
	SetDroppedEvents(count uint64)
	WriteLevelLog(level slog.Level, message string)
}
