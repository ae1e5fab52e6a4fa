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

type JsonStatus struct {
	MessageType string `json:"message_type"`

	Status string `json:"status"`

	Duration   float64            `json:"duration"`
	Format     string             `json:"format"`
	Backend    string             `json:"backend"`
	Waveform   string             `json:"waveform"`
	Note       string             `json:"note"`
	Octave     int                `json:"octave"`
	Held       []int              `json:"held"`
	Params     map[string]float64 `json:"params"`
	ErrorCount int                `json:"error_count"`

	AudioLoadPct  int    `json:"audio_load_pct"`
	Xruns         uint64 `json:"xruns"`
	DroppedEvents uint64 `json:"dropped_events"`
}

type JsonLog struct {
	MessageType string `json:"message_type"`

	Date    string `json:"date"`
	Level   string `json:"level"`
	Message string `json:"message"`
}

type JsonLevels struct {
	MessageType string `json:"message_type"`

	Channels []JsonLevelChannel `json:"channels"`
}

type JsonLevelChannel struct {
	Name  string `json:"name"`
	Level int    `json:"level"`
	Peak  int    `json:"peak"`
}

type JsonSpectrum struct {
	MessageType string `json:"message_type"`

	Bands      []float64 `json:"bands"`
	DominantHz float64   `json:"dominant_hz"`
}

type JsonCommandError struct {
	MessageType string `json:"message_type"`

	Command string `json:"command"`
	Error   string `json:"error"`
}
