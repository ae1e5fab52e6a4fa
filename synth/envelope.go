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
package synth

type Stage int8

const (
	StageIdle Stage = iota
	StageAttack
	StageDecay
	StageSustain
	StageRelease
)

var stageNames = map[Stage]string{
	StageIdle:    "Idle",
	StageAttack:  "Attack",
	StageDecay:   "Decay",
	StageSustain: "Sustain",
	StageRelease: "Release",
}

func (s Stage) String() string {
	if name, ok := stageNames[s]; ok {
		return name
	}
	return "unknown"
}

const (
	MaxStageSeconds = 10.0
)

// Envelope is a linear ADSR. Times are in seconds, sustain is a level in [0, 1].
type Envelope struct {
	sampleRate float64

	attack  float64
	decay   float64
	sustain float64
	release float64

	stage       Stage
	level       float64
	releaseStep float64
}

func NewEnvelope(sampleRate int, attack, decay, sustain, release float64) *Envelope {
	env := &Envelope{sampleRate: float64(sampleRate)}

	env.SetAttack(attack)
	env.SetDecay(decay)
	env.SetSustain(sustain)
	env.SetRelease(release)

	return env
}

func (env *Envelope) SetAttack(seconds float64)  { env.attack = clamp(seconds, 0, MaxStageSeconds) }
func (env *Envelope) SetDecay(seconds float64)   { env.decay = clamp(seconds, 0, MaxStageSeconds) }
func (env *Envelope) SetSustain(level float64)   { env.sustain = clamp(level, 0, 1) }
func (env *Envelope) SetRelease(seconds float64) { env.release = clamp(seconds, 0, MaxStageSeconds) }

func (env *Envelope) Stage() Stage {
	return env.stage
}

func (env *Envelope) Level() float64 {
	return env.level
}

// Gate opens or closes the envelope. Opening restarts the attack from the
// current level so a retrigger does not click.
func (env *Envelope) Gate(open bool) {
	if open {
		env.stage = StageAttack
		return
	}

	if env.stage == StageIdle || env.stage == StageRelease {
		return
	}

	env.stage = StageRelease
	env.releaseStep = env.level / env.samples(env.release)
}

// Next advances the envelope by one sample and returns its level.
func (env *Envelope) Next() float64 {
	switch env.stage {
	case StageAttack:
		env.level += 1.0 / env.samples(env.attack)
		if env.level >= 1.0 {
			env.level = 1.0
			env.stage = StageDecay
		}

	case StageDecay:
		env.level -= (1.0 - env.sustain) / env.samples(env.decay)
		if env.level <= env.sustain {
			env.level = env.sustain
			env.stage = StageSustain
		}

	case StageSustain:
		env.level = env.sustain

	case StageRelease:
		env.level -= env.releaseStep
		if env.level <= 0 {
			env.level = 0
			env.stage = StageIdle
		}
	}

	return env.level
}

// samples converts a stage time to a step count, at least one
func (env *Envelope) samples(seconds float64) float64 {
	n := seconds * env.sampleRate
	if n < 1 {
		return 1
	}
	return n
}

func clamp(value, low, high float64) float64 {
	if value != value {
		return low
	}
	if value < low {
		return low
	}
	if value > high {
		return high
	}
	return value
}
