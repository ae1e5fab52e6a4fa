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
	"math"

	"fox-synth/model"
)

const (
	int16Scale  = 32767.0
	uint16Scale = 65535.0

	// Silent values written for a zero signal
	SilenceF32 = float32(0)
	SilenceI16 = int16(0)
	SilenceU16 = uint16(32767)
)

// ToFloat32 writes the signal as is; keeping it in range is up to the processor.
func ToFloat32(s model.Signal) float32 {
	return float32(s)
}

// ToInt16 is floor(s * 32767), saturating. NaN becomes silence.
func ToInt16(s model.Signal) int16 {
	if math.IsNaN(s) {
		return SilenceI16
	}

	v := math.Floor(s * int16Scale)
	if v >= math.MaxInt16 {
		return math.MaxInt16
	}
	if v <= math.MinInt16 {
		return math.MinInt16
	}

	return int16(v)
}

// ToUint16 is floor((s * 0.5 + 0.5) * 65535), saturating. NaN becomes silence.
func ToUint16(s model.Signal) uint16 {
	if math.IsNaN(s) {
		return SilenceU16
	}

	v := math.Floor((s*0.5 + 0.5) * uint16Scale)
	if v >= math.MaxUint16 {
		return math.MaxUint16
	}
	if v <= 0 {
		return 0
	}

	return uint16(v)
}
