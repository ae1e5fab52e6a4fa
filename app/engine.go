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
	"os"
	"time"

	"fox-synth/audio"
	"fox-synth/display"
	"fox-synth/engine"
	"fox-synth/model"
	"fox-synth/reaper"
	"fox-synth/shared"
	"fox-synth/synth"
)

const (
	scopeBlockSize    = 2048
	keyExpiryMs       = 20
	statisticsMs      = 100
	simulationBackend = "null"
)

func ConfigureTextLogger(level slog.Level) {
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	}))
	slog.SetDefault(logger)
}

func ConfigureUiLogger(ui display.UI, level slog.Level, hijack bool) {
	handler := shared.NewUiLogHandler(ui, level, func(message string) {
		ui.IncrementErrorCount()
	})
	logger := slog.New(handler)
	slog.SetDefault(logger)

	if hijack {
		restore := shared.HijackLogging()
		shared.EnableSlogLogging()
		reaper.Callback("restore stdout", restore)
	}
}

// deviceOptions translates the config into what the audio backends take
func deviceOptions(config *model.Config, xruns func(uint64)) (string, audio.Options, error) {
	encoding, err := model.ParseEncoding(config.Encoding)
	if err != nil {
		return "", audio.Options{}, err
	}

	opts := audio.DefaultOptions()
	opts.SampleRate = config.SampleRate
	opts.ChannelCount = config.ChannelCount
	opts.Encoding = encoding
	opts.BufferSize = time.Duration(config.BufferSizeMs) * time.Millisecond
	opts.Period = 0
	opts.ErrorCallback = audioError
	opts.XrunCallback = xruns

	backend := config.Backend
	if config.SimulationOptions.EnableSimulation {
		backend = simulationBackend
		opts.Period = time.Duration(config.SimulationOptions.PeriodMs) * time.Millisecond
	}

	return backend, opts, nil
}

func engineOptions(config *model.Config) []engine.Option {
	return []engine.Option{
		engine.WithMaxFrames(config.MaxFrames),
		engine.WithShutdownTimeout(time.Duration(config.ShutdownTimeoutMs) * time.Millisecond),
		engine.WithEventBuffer(config.EventBuffer),
		engine.WithScope(scopeBlockSize),
	}
}

func synthOptions(config *model.Config) (synth.Options, error) {
	opts := synth.DefaultOptions()

	waveform, err := synth.ParseWaveform(config.Synth.Waveform)
	if err != nil {
		return opts, err
	}

	opts.Waveform = waveform
	opts.Reference = config.ReferencePitch
	opts.Attack = config.Synth.Attack
	opts.Decay = config.Synth.Decay
	opts.Sustain = config.Synth.Sustain
	opts.Release = config.Synth.Release
	opts.Level = config.Synth.Level

	return opts, nil
}

// runEngine opens the device and starts the engine before any UI comes up,
// so a failure to start is reported on a plain terminal.
func runEngine(config *model.Config) error {
	opts, err := synthOptions(config)
	if err != nil {
		return err
	}

	session := newSession(config, opts)

	backend, deviceOpts, err := deviceOptions(config, session.addXruns)
	if err != nil {
		return err
	}

	controller, err := engine.StartDefault(backend, deviceOpts, engineOptions(config)...)
	if err != nil {
		return err
	}

	session.attach(controller)

	//
	// user interface
	var ui display.UI
	if config.OutputType == model.OutputJSON {
		ui = display.NewJsonUI(shared.StockStdout(), os.Stdin)
	} else {
		ui = display.NewTui()
	}

	ui.Initalize()
	ui.SetStatus(display.StatusRunning)
	ui.SetBackend(controller.Backend())
	ui.SetAudioFormat(controller.Format().String())
	ui.SetChannelCount(controller.Format().NumChannels)
	ui.Start()
	reaper.Callback("ui", ui.Shutdown)

	ConfigureUiLogger(ui, slog.Level(config.LogLevel), config.OutputType == model.OutputTUI)

	session.bindUi(ui)

	reaper.Callback("shutdown status", func() {
		ui.SetStatus(display.StatusStopped)
	})

	reaper.Callback("audio engine", func() {
		ui.SetStatus(display.StatusStopping)

		if err := controller.Shutdown(); err != nil {
			slog.Error(err.Error())
		}
	})

	//
	// synth
	if err := session.installVoice(); err != nil {
		slog.Error("Failed to install the synth voice: " + err.Error())
	}

	shutdownChan := make(chan bool, 1)
	reaper.Callback("background tasks", func() {
		shutdownChan <- true
		session.tracker.ReleaseAll()
	})

	processOnInterval("keyboard expiry", shutdownChan, keyExpiryMs, func() {
		if session.tracker.Expire(time.Now()) > 0 {
			session.refreshKeyboard()
		}
	})

	startStatistics(session, shutdownChan)

	if config.SimulationOptions.EnableSimulation && config.SimulationOptions.Demo {
		startSimulation(session, shutdownChan)
	}

	stopSigint := shared.CatchSigint(func() {
		slog.Info("Caught signal, calling reaper")
		go reaper.Reap()
	})
	defer stopSigint()

	slog.Info(fmt.Sprintf("Playing through %s, %s", controller.Backend(), controller.Format().String()))

	reaper.Wait()

	return nil
}

func processOnInterval(name string, shutdownChan chan bool, milliseconds int, process func()) {
	reaper.Register(name)

	go func() {
		defer reaper.Done(name)

		process()

		t := time.NewTicker(time.Duration(milliseconds) * time.Millisecond)
		defer t.Stop()

		for range t.C {
			if len(shutdownChan) > 0 {
				break
			}

			process()
		}
	}()
}
