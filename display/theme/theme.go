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
package theme

import (
	"github.com/gdamore/tcell/v2"
)

const (
	Blue         = tcell.ColorBlue
	BlueRGB      = "0000FF"
	Green        = tcell.Color71
	GreenRGB     = "5FAF5F"
	Pink         = tcell.Color131
	PinkRGB      = "AF5F5F"
	Red          = tcell.Color124
	RedRGB       = "AF0000"
	SoftGreen    = tcell.Color72
	SoftGreenRGB = "5FAF87"
	Yellow       = tcell.Color142
	YellowRGB    = "AFAF00"
	Gray         = tcell.ColorGray
	GrayRGB      = "808080"

	BorderColor = tcell.Color243

	LevelMeterAlternateBackgroundColor = tcell.Color233
	LevelMeterInactiveFillColor        = tcell.Color242

	KeyWhite       = tcell.Color252
	KeyBlack       = tcell.Color236
	KeyHeld        = tcell.Color71
	KeyLabel       = tcell.Color244
	SpectrumBar    = tcell.Color72
	SpectrumAccent = tcell.Color142
)

const (
	RuneClock  = rune(9201) // ⏱
	RunePlay   = rune(9205) // ⏵
	RuneStop   = rune(9209) // ⏹
	RuneNote   = rune(9834) // ♪
	RuneFailed = rune(9932) // ⛌

	RuneFilled = rune(9607) // ▇
	RuneEmpty  = rune(9617) // ░
)

// RuneBars are the eighth-step blocks used for the spectrum, lowest first
var RuneBars = []rune{' ', '▁', '▂', '▃', '▄', '▅', '▆', '▇', '█'}
