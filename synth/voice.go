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

import (
	"fox-synth/model"
)

const (
	DefaultReference = 261.63
)

type Options struct {
	Waveform  Waveform
	Reference float64
	Attack    float64
	Decay     float64
	Sustain   float64
	Release   float64
	Level     float64
}

func DefaultOptions() Options {
	return Options{
		Waveform:  Sine,
		Reference: DefaultReference,
		Attack:    0.01,
		Decay:     0.15,
		Sustain:   0.7,
		Release:   0.25,
		Level:     0.5,
	}
}

// Voice is a single oscillator behind an ADSR envelope. It implements the
// engine's processor contract and accepts parameter updates; both are only
// ever called from the audio worker.
type Voice struct {
	waveform   Waveform
	reference  float64
	sampleTime float64
	level      float64

	envelope *Envelope

	phase     float64
	frequency float64
	note      model.NoteIndex
	gate      bool
}

//
// constructor
//

func NewVoice(sampleRate int, opts Options) *Voice {
	if opts.Reference <= 0 {
		opts.Reference = DefaultReference
	}

	voice := &Voice{
		waveform:   opts.Waveform,
		reference:  opts.Reference,
		sampleTime: 1.0 / float64(sampleRate),
		level:      clamp(opts.Level, 0, 1),
		envelope:   NewEnvelope(sampleRate, opts.Attack, opts.Decay, opts.Sustain, opts.Release),
	}
	voice.frequency = Frequency(voice.reference, 0)

	return voice
}

func (voice *Voice) Waveform() Waveform {
	return voice.waveform
}

// Process renders one sample. A new note retriggers the envelope; once the
// stack empties the envelope releases on the last note's pitch.
func (voice *Voice) Process(note model.NoteIndex, held bool) model.Signal {
	if held && (!voice.gate || note != voice.note) {
		voice.note = note
		voice.frequency = Frequency(voice.reference, note)
		voice.gate = true
		voice.envelope.Gate(true)
	} else if !held && voice.gate {
		voice.gate = false
		voice.envelope.Gate(false)
	}

	amplitude := voice.envelope.Next()
	if amplitude == 0 && voice.envelope.Stage() == StageIdle {
		return 0.0
	}

	sample := voice.waveform.Sample(voice.phase) * amplitude * voice.level

	voice.phase += voice.frequency * voice.sampleTime
	for voice.phase >= 1.0 {
		voice.phase -= 1.0
	}

	return sample
}

func (voice *Voice) SetParam(update model.ParamUpdate) {
	switch update.Param {
	case model.ParamAttack:
		voice.envelope.SetAttack(update.Value)
	case model.ParamDecay:
		voice.envelope.SetDecay(update.Value)
	case model.ParamSustain:
		voice.envelope.SetSustain(update.Value)
	case model.ParamRelease:
		voice.envelope.SetRelease(update.Value)
	case model.ParamLevel:
		voice.level = clamp(update.Value, 0, 1)
	}
}
