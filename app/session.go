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
	"fmt"
	"log/slog"
	"math"
	"slices"
	"sync"
	"sync/atomic"
	"time"

	"fox-synth/display"
	"fox-synth/engine"
	"fox-synth/keyboard"
	"fox-synth/model"
	"fox-synth/reaper"
	"fox-synth/synth"
)

const (
	timeParamStep  = 1.25
	levelParamStep = 0.05
	minTimeParam   = 0.001
)

// session is the glue between the UI, the keyboard tracker and the engine.
type session struct {
	config     *model.Config
	controller *engine.Controller
	tracker    *keyboard.Tracker
	ui         display.UI

	lock     sync.Mutex
	opts     synth.Options
	selected model.Param

	xruns atomic.Uint64
}

func newSession(config *model.Config, opts synth.Options) *session {
	return &session{
		config:   config,
		opts:     opts,
		selected: model.ParamAttack,
	}
}

func (s *session) attach(controller *engine.Controller) {
	s.controller = controller
	s.tracker = keyboard.NewTracker(controller,
		time.Duration(s.config.KeyHoldMs)*time.Millisecond,
		time.Duration(s.config.KeyRepeatMs)*time.Millisecond)
}

func (s *session) bindUi(ui display.UI) {
	s.ui = ui

	s.lock.Lock()
	waveform := s.opts.Waveform
	s.lock.Unlock()

	ui.SetWaveform(waveform.String())
	ui.SetOctave(s.tracker.Octave())
	s.refreshParams()

	ui.SetInputHandler(s.handleInput)
}

func (s *session) addXruns(count uint64) {
	total := s.xruns.Add(count)
	slog.Warn(fmt.Sprintf("Output underflow, %d so far", total))
}

//
// synth control
//

// installVoice hands a fresh voice with the current settings to the engine
func (s *session) installVoice() error {
	s.lock.Lock()
	opts := s.opts
	s.lock.Unlock()

	voice := synth.NewVoice(s.controller.SampleRate(), opts)

	if err := s.controller.InstallProcessor(voice); err != nil {
		return err
	}

	slog.Debug("Installed " + opts.Waveform.String() + " voice")

	if s.ui != nil {
		s.ui.SetWaveform(opts.Waveform.String())
	}

	return nil
}

func (s *session) setWaveform(waveform synth.Waveform) {
	s.lock.Lock()
	s.opts.Waveform = waveform
	s.lock.Unlock()

	if err := s.installVoice(); err != nil {
		slog.Warn("Waveform change dropped: " + err.Error())
	}
}

func (s *session) nextWaveform() {
	s.lock.Lock()
	next := s.opts.Waveform.Next()
	s.lock.Unlock()

	s.setWaveform(next)
}

func (s *session) setParam(param model.Param, value float64) {
	s.lock.Lock()
	value = clampParam(param, value)

	switch param {
	case model.ParamAttack:
		s.opts.Attack = value
	case model.ParamDecay:
		s.opts.Decay = value
	case model.ParamSustain:
		s.opts.Sustain = value
	case model.ParamRelease:
		s.opts.Release = value
	case model.ParamLevel:
		s.opts.Level = value
	}
	s.lock.Unlock()

	if err := s.controller.SubmitParam(model.ParamUpdate{Param: param, Value: value}); err != nil {
		return
	}

	s.refreshParams()
}

// adjustParam nudges the selected parameter. Times scale geometrically,
// levels move in fixed steps.
func (s *session) adjustParam(up bool) {
	s.lock.Lock()
	param := s.selected
	value := paramValue(s.opts, param)
	s.lock.Unlock()

	switch param {
	case model.ParamSustain, model.ParamLevel:
		if up {
			value += levelParamStep
		} else {
			value -= levelParamStep
		}

	default:
		value = math.Max(value, minTimeParam)
		if up {
			value *= timeParamStep
		} else {
			value /= timeParamStep
		}
	}

	s.setParam(param, value)
}

func (s *session) selectParam(offset int) {
	s.lock.Lock()
	index := slices.Index(model.Params, s.selected) + offset
	count := len(model.Params)
	s.selected = model.Params[((index%count)+count)%count]
	s.lock.Unlock()

	s.refreshParams()
}

func (s *session) refreshParams() {
	if s.ui == nil {
		return
	}

	s.lock.Lock()
	values := make([]model.ParamUpdate, len(model.Params))
	for i, param := range model.Params {
		values[i] = model.ParamUpdate{Param: param, Value: paramValue(s.opts, param)}
	}
	selected := s.selected
	s.lock.Unlock()

	s.ui.SetParams(values, selected)
}

func (s *session) refreshKeyboard() {
	if s.ui == nil {
		return
	}

	held := s.tracker.Held()
	notes := make([]int, len(held))
	for i, note := range held {
		notes[i] = int(note)
	}

	s.ui.SetHeldNotes(notes)
	s.ui.SetOctave(s.tracker.Octave())
}

//
// input
//

func (s *session) handleInput(input display.Input) {
	switch input.Kind {
	case display.InputKey:
		s.handleKey(input.Key)

	case display.InputPress:
		s.controller.Press(input.Note)

	case display.InputRelease:
		s.controller.Release(input.Note)

	case display.InputWaveform:
		waveform, err := synth.ParseWaveform(input.Name)
		if err != nil {
			slog.Warn(err.Error())
			return
		}
		s.setWaveform(waveform)

	case display.InputParam:
		param, err := model.ParseParam(input.Name)
		if err != nil {
			slog.Warn(err.Error())
			return
		}
		s.setParam(param, input.Value)

	case display.InputQuit:
		go reaper.Reap()
	}
}

func (s *session) handleKey(key rune) {
	binding, ok := s.tracker.KeyDown(key, time.Now())
	if !ok {
		return
	}

	switch binding.Action {
	case keyboard.ActionNote, keyboard.ActionOctaveDown, keyboard.ActionOctaveUp:
		s.refreshKeyboard()
	case keyboard.ActionNextWaveform:
		s.nextWaveform()
	case keyboard.ActionPrevParam:
		s.selectParam(-1)
	case keyboard.ActionNextParam:
		s.selectParam(1)
	case keyboard.ActionParamDown:
		s.adjustParam(false)
	case keyboard.ActionParamUp:
		s.adjustParam(true)
	}
}

//
// helpers
//

func paramValue(opts synth.Options, param model.Param) float64 {
	switch param {
	case model.ParamAttack:
		return opts.Attack
	case model.ParamDecay:
		return opts.Decay
	case model.ParamSustain:
		return opts.Sustain
	case model.ParamRelease:
		return opts.Release
	case model.ParamLevel:
		return opts.Level
	}
	return 0
}

func clampParam(param model.Param, value float64) float64 {
	high := synth.MaxStageSeconds
	if param == model.ParamSustain || param == model.ParamLevel {
		high = 1.0
	}

	return math.Min(math.Max(value, 0), high)
}
