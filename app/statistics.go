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
	"math"
	"sync"

	"fox-synth/analysis"
	"fox-synth/engine"
	"fox-synth/model"
	"fox-synth/reaper"
	"fox-synth/util"
)

type statistics struct {
	session  *session
	analyzer *analysis.Analyzer

	processElapsedChan chan int64
	processBudgetChan  chan int64

	lock     sync.Mutex
	latest   engine.Metrics
	peak     float64
	peakHold float64
}

func startStatistics(s *session, shutdownChan chan bool) {
	controller := s.controller

	stats := &statistics{
		session:  s,
		analyzer: analysis.NewAnalyzer(controller.SampleRate(), scopeBlockSize, analysis.DefaultBands),

		processElapsedChan: make(chan int64, 30),
		processBudgetChan:  make(chan int64, 30),
	}

	// consume the engine's metrics and scope blocks as they come in
	quit := make(chan struct{})
	reaper.Callback("metrics", func() { close(quit) })

	reaper.Register("metrics")
	go func() {
		defer reaper.Done("metrics")

		for {
			select {
			case metrics := <-controller.Metrics():
				stats.record(metrics)

			case block := <-controller.Scope():
				stats.analyze(block)
				controller.RecycleScope(block)

			case <-quit:
				return
			}
		}
	}()

	processOnInterval("combined stats", shutdownChan, statisticsMs, stats.publish)
}

func (stats *statistics) record(metrics engine.Metrics) {
	stats.lock.Lock()
	defer stats.lock.Unlock()

	stats.latest = metrics
	stats.peak = math.Max(stats.peak, metrics.Peak)

	if len(stats.processElapsedChan) < cap(stats.processElapsedChan) {
		stats.processElapsedChan <- metrics.Elapsed.Microseconds()
	}

	if len(stats.processBudgetChan) < cap(stats.processBudgetChan) {
		stats.processBudgetChan <- metrics.Budget.Microseconds()
	}
}

func (stats *statistics) analyze(block []model.Signal) {
	spectrum := stats.analyzer.Analyze(block)

	dominantBand := -1
	for band, center := range stats.analyzer.Centers() {
		if center == spectrum.Dominant {
			dominantBand = band
		}
	}

	if ui := stats.session.ui; ui != nil {
		ui.SetSpectrum(spectrum.Bands, dominantBand, spectrum.Dominant)
	}
}

// publish pushes everything gathered since the last interval to the UI
func (stats *statistics) publish() {
	ui := stats.session.ui
	if ui == nil {
		return
	}

	stats.lock.Lock()
	latest := stats.latest
	peak := stats.peak
	stats.peak = 0

	// the held peak falls off by 6 dB per second
	stats.peakHold = math.Max(peak, stats.peakHold*math.Pow(0.5, float64(statisticsMs)/1000.0))
	peakHold := stats.peakHold
	stats.lock.Unlock()

	ui.SetDuration(latest.Time)

	if latest.Held {
		ui.SetNote(util.FormatNote(int(latest.Note)))
	} else {
		ui.SetNote("-")
	}

	elapsedAvg := util.GetChanAverage(stats.processElapsedChan)
	budgetAvg := util.GetChanAverage(stats.processBudgetChan)
	load := elapsedAvg / budgetAvg

	if !math.IsNaN(load) && !math.IsInf(load, 0) {
		ui.SetAudioLoad(int(math.Round(load * 100.0)))
		util.TraceLog(fmt.Sprintf("Process time: %0.0f us of %0.0f us, load %0.3f%%", elapsedAvg, budgetAvg, load*100.0))
	}

	// every channel carries the same mono signal
	level := model.SignalLevel{
		Instant: util.AmplitudeToDb(peak),
		Peak:    util.AmplitudeToDb(peakHold),
	}

	levels := make([]model.SignalLevel, stats.session.controller.Format().NumChannels)
	for i := range levels {
		levels[i] = level
	}
	ui.UpdateSignalLevels(levels)

	ui.SetXrunCount(stats.session.xruns.Load())
	ui.SetDroppedEvents(stats.session.controller.DroppedEvents())
}
