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
package model

import (
	"fmt"
	"strings"
)

type Param int8

const (
	ParamAttack Param = iota
	ParamDecay
	ParamSustain
	ParamRelease
	ParamLevel
)

var ParamNameMap = map[string]Param{
	"attack":  ParamAttack,
	"decay":   ParamDecay,
	"sustain": ParamSustain,
	"release": ParamRelease,
	"level":   ParamLevel,
}

var paramNames = map[Param]string{
	ParamAttack:  "Attack",
	ParamDecay:   "Decay",
	ParamSustain: "Sustain",
	ParamRelease: "Release",
	ParamLevel:   "Level",
}

// Params lists every parameter in display order.
var Params = []Param{ParamAttack, ParamDecay, ParamSustain, ParamRelease, ParamLevel}

func (p Param) String() string {
	if name, ok := paramNames[p]; ok {
		return name
	}
	return "unknown"
}

func ParseParam(name string) (Param, error) {
	param, ok := ParamNameMap[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown parameter: %q", name)
	}

	return param, nil
}

// ParamUpdate is a typed parameter change headed for the installed processor.
type ParamUpdate struct {
	Param Param
	Value float64
}

func (u ParamUpdate) String() string {
	return fmt.Sprintf("%s=%.3f", u.Param, u.Value)
}
