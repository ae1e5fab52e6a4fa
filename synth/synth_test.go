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
	"math"
	"testing"

	"fox-synth/model"
)

func TestFrequency(t *testing.T) {
	tests := []struct {
		note model.NoteIndex
		want float64
	}{
		{0, 440},
		{12, 880},
		{-12, 220},
		{7, 440 * math.Pow(2, 7.0/12.0)},
	}

	for _, test := range tests {
		if got := Frequency(440, test.note); math.Abs(got-test.want) > 1e-9 {
			t.Errorf("note %d: got %v want %v", test.note, got, test.want)
		}
	}
}

func TestWaveformSample(t *testing.T) {
	tests := []struct {
		waveform Waveform
		phase    float64
		want     float64
	}{
		{Sine, 0, 0},
		{Sine, 0.25, 1},
		{Square, 0.1, 1},
		{Square, 0.6, -1},
		{Saw, 0, -1},
		{Saw, 0.5, 0},
		{Triangle, 0, -1},
		{Triangle, 0.25, 0},
		{Triangle, 0.5, 1},
		{Triangle, 0.75, 0},
	}

	for _, test := range tests {
		if got := test.waveform.Sample(test.phase); math.Abs(got-test.want) > 1e-9 {
			t.Errorf("%s at %v: got %v want %v", test.waveform, test.phase, got, test.want)
		}
	}
}

func TestWaveformParseAndCycle(t *testing.T) {
	waveform, err := ParseWaveform(" Triangle ")
	if err != nil || waveform != Triangle {
		t.Fatalf("got %v (%v) want Triangle", waveform, err)
	}

	if _, err := ParseWaveform("noise"); err == nil {
		t.Fatal("parsed an unknown waveform")
	}

	seen := Sine
	for range Waveforms {
		seen = seen.Next()
	}
	if seen != Sine {
		t.Fatalf("cycling through every waveform ended on %s", seen)
	}
}

func TestEnvelopeStages(t *testing.T) {
	env := NewEnvelope(1000, 0.01, 0.01, 0.5, 0.02)

	if env.Next() != 0 || env.Stage() != StageIdle {
		t.Fatalf("closed envelope: level %v stage %s", env.Level(), env.Stage())
	}

	env.Gate(true)

	steps := 0
	for env.Stage() != StageSustain {
		env.Next()
		if steps++; steps > 100 {
			t.Fatalf("stuck in %s at %v", env.Stage(), env.Level())
		}
	}

	if env.Level() != 0.5 {
		t.Fatalf("sustain level: got %v want 0.5", env.Level())
	}

	env.Gate(false)
	if env.Stage() != StageRelease {
		t.Fatalf("stage after gate off: got %s want Release", env.Stage())
	}

	steps = 0
	for env.Stage() != StageIdle {
		env.Next()
		if steps++; steps > 100 {
			t.Fatalf("stuck in %s at %v", env.Stage(), env.Level())
		}
	}

	if steps < 15 || steps > 25 {
		t.Fatalf("release took %d samples, want about 20", steps)
	}
}

func TestEnvelopeClampsSettings(t *testing.T) {
	env := NewEnvelope(1000, -1, math.NaN(), 4, 100)

	env.Gate(true)
	if level := env.Next(); level != 1 {
		t.Fatalf("zero attack: got %v want 1", level)
	}

	env.Next()
	if env.Stage() != StageSustain || env.Level() != 1 {
		t.Fatalf("sustain clamped to 1: stage %s level %v", env.Stage(), env.Level())
	}
}

func TestVoice(t *testing.T) {
	opts := DefaultOptions()
	opts.Waveform = Square
	opts.Attack = 0
	opts.Release = 0.005
	opts.Level = 0.5

	voice := NewVoice(1000, opts)

	if s := voice.Process(0, false); s != 0 {
		t.Fatalf("idle voice: got %v want 0", s)
	}

	if s := voice.Process(0, true); s != 0.5 {
		t.Fatalf("first held sample: got %v want 0.5", s)
	}

	voice.SetParam(model.ParamUpdate{Param: model.ParamLevel, Value: 2})
	for i := 0; i < 1000; i++ {
		if s := voice.Process(0, true); math.Abs(s) > 1 {
			t.Fatalf("sample %d out of range: %v", i, s)
		}
	}

	steps := 0
	for voice.envelope.Stage() != StageIdle {
		voice.Process(0, false)
		if steps++; steps > 100 {
			t.Fatal("voice never went idle after release")
		}
	}

	if s := voice.Process(0, false); s != 0 {
		t.Fatalf("released voice: got %v want 0", s)
	}
}

func TestVoiceRetriggersOnNewNote(t *testing.T) {
	voice := NewVoice(44100, DefaultOptions())

	voice.Process(0, true)
	if voice.frequency != Frequency(DefaultReference, 0) {
		t.Fatalf("frequency: got %v", voice.frequency)
	}

	voice.Process(12, true)
	if math.Abs(voice.frequency-2*DefaultReference) > 1e-9 {
		t.Fatalf("frequency after new note: got %v want %v", voice.frequency, 2*DefaultReference)
	}
	if voice.envelope.Stage() != StageAttack {
		t.Fatalf("stage: got %s want Attack", voice.envelope.Stage())
	}

	// releasing keeps the last pitch
	voice.Process(0, false)
	if voice.envelope.Stage() != StageRelease || math.Abs(voice.frequency-2*DefaultReference) > 1e-9 {
		t.Fatalf("release: stage %s frequency %v", voice.envelope.Stage(), voice.frequency)
	}
}
