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

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fox-synth/display/custom"
	"fox-synth/display/theme"
	"fox-synth/keyboard"
	"fox-synth/model"
	"fox-synth/reaper"
	"fox-synth/util"

	"code.rocketnine.space/tslocum/cview"
	"github.com/gdamore/tcell/v2"
)

//
// constants
//

const (
	layoutMeterWidth            = 4
	layoutStatusItemHeaderWidth = 12
	layoutStatusColumnIndex     = 0
	layoutMeterColumnIndex      = 1
	layoutParamColumnIndex      = 2
	layoutStatusGridLeftWidth   = 42
	layoutStatusGridMiddleWidth = 44
	layoutKeyboardHeight        = 3

	noteFlashHold    = 250 * time.Millisecond
	counterFlashHold = 2 * time.Second
)

//
// variables
//

var (
	meterSteps = []int{
		0, -1, -2, -3, -4, -6, -8,
		-10, -12, -15, -18, -21, -24, -27,
		-30, -36, -42, -48, -54, -60}

	levelColors = map[int]tcell.Color{
		0:    theme.Red,
		-2:   theme.Pink,
		-6:   theme.Yellow,
		-18:  theme.Green,
		-150: theme.SoftGreen,
	}
)

//
// types
//

type Tui struct {
	app             *cview.Application
	shutdownChannel chan bool

	lock         sync.Mutex
	errorCount   int
	inputHandler func(Input)

	gridApp            *cview.Grid
	gridLevelMeters    *cview.Grid
	elementLevelMeters []*custom.LevelMeter
	elementParams      map[model.Param]*custom.StatusText

	keyboardView *custom.KeyboardView
	spectrumView *custom.SpectrumView

	tvLogs            *cview.TextView
	tvTransportStatus *custom.StatusText
	tvPosition        *custom.StatusText
	tvFormat          *custom.StatusText
	tvBackend         *custom.StatusText
	tvWaveform        *custom.StatusText
	tvNote            *custom.StatusText
	tvErrorCount      *custom.StatusText

	statusMeterAudioLoad *custom.StatusMeter
	tvXruns              *custom.StatusText
	tvDroppedEvents      *custom.StatusText
	tvDominant           *custom.StatusText
}

//
// constructor
//

func NewTui() *Tui {
	tui := &Tui{
		shutdownChannel:    make(chan bool, 1),
		errorCount:         0,
		elementLevelMeters: make([]*custom.LevelMeter, 0),
		elementParams:      make(map[model.Param]*custom.StatusText),
	}

	return tui
}

//
// lifecycle managment
//

func (tui *Tui) Initalize() {
	tui.app = cview.NewApplication()
	defer tui.app.HandlePanic()

	meterRowHeight := len(meterSteps) + 2

	statusRowCount := 7
	statusRows := make([]int, statusRowCount)
	for i := range statusRowCount {
		statusRows[i] = 1
	}

	//
	// main application grid
	tui.gridApp = cview.NewGrid()
	tui.gridApp.SetPadding(0, 0, 0, 0)
	tui.gridApp.SetColumns(-1)
	tui.gridApp.SetBorders(true)
	tui.gridApp.SetBordersColor(theme.BorderColor)
	tui.gridApp.SetRows(statusRowCount, meterRowHeight, layoutKeyboardHeight, -1)
	tui.gridApp.SetBackgroundColor(cview.Styles.PrimitiveBackgroundColor)

	//
	// grid for the status fields
	gridStatus := cview.NewGrid()
	gridStatus.SetPadding(0, 0, 1, 1)
	gridStatus.SetColumns(layoutStatusGridLeftWidth, layoutStatusGridMiddleWidth, -1)
	gridStatus.SetRows(statusRows...)
	gridStatus.SetBackgroundColor(cview.Styles.PrimitiveBackgroundColor)

	// text status fields
	tui.tvTransportStatus = custom.NewStatusTextField(layoutStatusItemHeaderWidth, "Status", string(theme.RuneClock)+" Starting")
	tui.tvTransportStatus.SetColor(theme.Yellow)
	tui.tvPosition = custom.NewStatusTextField(layoutStatusItemHeaderWidth, "Running", "00:00:00.000")
	tui.tvFormat = custom.NewStatusTextField(layoutStatusItemHeaderWidth, "Format", "Unknown")
	tui.tvBackend = custom.NewStatusTextField(layoutStatusItemHeaderWidth, "Backend", "")
	tui.tvWaveform = custom.NewStatusTextField(layoutStatusItemHeaderWidth, "Waveform", "")
	tui.tvNote = custom.NewStatusTextField(layoutStatusItemHeaderWidth, "Note", "-")
	tui.tvErrorCount = custom.NewStatusTextField(layoutStatusItemHeaderWidth, "Errors", "0")

	leftColumn := []*custom.StatusText{
		tui.tvTransportStatus, tui.tvPosition, tui.tvFormat, tui.tvBackend,
		tui.tvWaveform, tui.tvNote, tui.tvErrorCount,
	}
	for row, field := range leftColumn {
		gridStatus.AddItem(field.GetGrid(), row, layoutStatusColumnIndex, 1, 1, 0, 0, false)
	}

	// engine health
	tui.statusMeterAudioLoad = custom.NewStatusMeter(layoutStatusItemHeaderWidth, "Audio Load", 0, "%")
	tui.tvXruns = custom.NewStatusTextField(layoutStatusItemHeaderWidth, "Underflows", "0")
	tui.tvDroppedEvents = custom.NewStatusTextField(layoutStatusItemHeaderWidth, "Dropped", "0")
	tui.tvDominant = custom.NewStatusTextField(layoutStatusItemHeaderWidth, "Dominant", "-")

	tui.tvNote.SetFlash(theme.Green, noteFlashHold)
	tui.tvXruns.SetFlash(theme.Red, counterFlashHold)
	tui.tvDroppedEvents.SetFlash(theme.Red, counterFlashHold)

	gridStatus.AddItem(tui.statusMeterAudioLoad.GetGrid(), 0, layoutMeterColumnIndex, 1, 1, 0, 0, false)
	gridStatus.AddItem(tui.tvXruns.GetGrid(), 1, layoutMeterColumnIndex, 1, 1, 0, 0, false)
	gridStatus.AddItem(tui.tvDroppedEvents.GetGrid(), 2, layoutMeterColumnIndex, 1, 1, 0, 0, false)
	gridStatus.AddItem(tui.tvDominant.GetGrid(), 3, layoutMeterColumnIndex, 1, 1, 0, 0, false)

	// synth parameters
	for row, param := range model.Params {
		field := custom.NewStatusTextField(layoutStatusItemHeaderWidth, param.String(), "")
		tui.elementParams[param] = field
		gridStatus.AddItem(field.GetGrid(), row, layoutParamColumnIndex, 1, 1, 0, 0, false)
	}

	tui.gridApp.AddItem(gridStatus, 0, 0, 1, 1, 0, 0, false)

	//
	// grid for the level meters and the spectrum
	tui.gridLevelMeters = cview.NewGrid()
	tui.gridLevelMeters.SetPadding(0, 0, 0, 0)
	tui.gridLevelMeters.SetColumns(-1)

	tui.spectrumView = custom.NewSpectrumView()
	tui.spectrumView.SetPadding(1, 1, 2, 1)

	tui.gridApp.AddItem(tui.gridLevelMeters, 1, 0, 1, 1, 0, 0, false)

	//
	// keyboard
	tui.keyboardView = custom.NewKeyboardView(keyboard.NoteKeys)
	tui.keyboardView.SetPadding(0, 0, 2, 1)

	tui.gridApp.AddItem(tui.keyboardView, 2, 0, 1, 1, 0, 0, false)

	//
	// grid for the log output view
	tui.tvLogs = cview.NewTextView()
	tui.tvLogs.SetPadding(0, 0, 0, 0)
	tui.tvLogs.SetDynamicColors(true)
	tui.tvLogs.SetMaxLines(500)

	tui.gridApp.AddItem(tui.tvLogs, 3, 0, 1, 1, 0, 0, true)

	tui.app.SetRoot(tui.gridApp, true)
}

func (tui *Tui) Start() {
	reaper.Register("tui")

	go func() {
		defer tui.app.HandlePanic()

		// Capture user input
		tui.app.SetInputCapture(tui.eventHandler)

		if err := tui.app.Run(); err != nil {
			panic(err)
		}

		tui.shutdownChannel <- true
		reaper.Done("tui")
	}()

	go tui.excecuteLoop()
}

func (tui *Tui) Shutdown() {
	slog.Debug("Shutting down TUI")
	tui.app.Stop()

	slog.Debug("Waiting for TUI to shut down")
	tui.WaitForShutdown()
}

func (tui *Tui) IsShutdown() bool {
	return len(tui.shutdownChannel) > 0
}

func (tui *Tui) WaitForShutdown() {
	<-tui.shutdownChannel
	tui.shutdownChannel <- true
}

func (tui *Tui) SetInputHandler(handler func(Input)) {
	tui.lock.Lock()
	defer tui.lock.Unlock()

	tui.inputHandler = handler
}

//
// private functions
//

func (tui *Tui) eventHandler(event *tcell.EventKey) *tcell.EventKey {
	// Anything handled here will be executed on the main thread
	switch event.Key() {
	case tcell.KeyEsc, tcell.KeyCtrlC:
		go reaper.Reap()
		return nil

	case tcell.KeyRune:
		tui.lock.Lock()
		handler := tui.inputHandler
		tui.lock.Unlock()

		if handler != nil {
			handler(Input{Kind: InputKey, Key: event.Rune()})
			return nil
		}
	}

	return event
}

func (tui *Tui) excecuteLoop() {
	defer tui.app.HandlePanic()

	slog.Debug("TUI loop started")

	for {
		if len(tui.shutdownChannel) > 0 {
			slog.Info("TUI shutting down")
			tui.app.QueueUpdateDraw(func() {})
			break
		}

		tui.app.QueueUpdateDraw(func() {})
		time.Sleep(50 * time.Millisecond)
	}
}

func (tui *Tui) updateMeter(meter *custom.StatusMeter, value, warnPct, cautionPct int) {
	color := theme.Red

	if value <= warnPct {
		color = theme.Green
	} else if value <= cautionPct {
		color = theme.Yellow
	}

	meter.SetCurrentValue(value)
	meter.SetColor(color)
}

//
// status update functions
//

func (tui *Tui) SetStatus(status Status) {
	icon := theme.RuneClock
	color := theme.Yellow

	switch status {
	case StatusRunning:
		icon = theme.RunePlay
		color = theme.Green
	case StatusStopped:
		icon = theme.RuneStop
		color = theme.Blue
	case StatusFailed:
		icon = theme.RuneFailed
		color = theme.Red
	}

	tui.tvTransportStatus.SetCurrentValue(string(icon) + " " + status.String())
	tui.tvTransportStatus.SetColor(color)
}

// SetDuration arrives with every statistics tick, so flashes are faded here too
func (tui *Tui) SetDuration(duration float64) {
	tui.tvPosition.SetCurrentValue(util.FormatDuration(duration))

	now := time.Now()
	tui.tvNote.Fade(now)
	tui.tvXruns.Fade(now)
	tui.tvDroppedEvents.Fade(now)
}

func (tui *Tui) SetAudioFormat(format string) {
	tui.tvFormat.SetCurrentValue(format)
}

func (tui *Tui) SetBackend(name string) {
	tui.tvBackend.SetCurrentValue(name)
}

func (tui *Tui) SetWaveform(name string) {
	tui.tvWaveform.SetCurrentValue(name)
}

func (tui *Tui) SetNote(note string) {
	tui.tvNote.SetCurrentValue(string(theme.RuneNote) + " " + note)
}

func (tui *Tui) SetOctave(octave int) {
	tui.keyboardView.SetOctave(octave)
}

func (tui *Tui) SetHeldNotes(notes []int) {
	tui.keyboardView.SetHeld(notes)

	active := len(notes) > 0
	tui.lock.Lock()
	meters := tui.elementLevelMeters
	tui.lock.Unlock()

	for _, meter := range meters {
		meter.SetActive(active)
	}
}

func (tui *Tui) SetParams(values []model.ParamUpdate, selected model.Param) {
	for _, value := range values {
		field, ok := tui.elementParams[value.Param]
		if !ok {
			continue
		}

		field.SetCurrentValue(formatParam(value))

		if value.Param == selected {
			field.SetColor(theme.Yellow)
		} else {
			field.SetColor(tcell.ColorDefault)
		}
	}
}

func (tui *Tui) IncrementErrorCount() {
	tui.lock.Lock()
	tui.errorCount++
	count := tui.errorCount
	tui.lock.Unlock()

	tui.tvErrorCount.SetCurrentValue(fmt.Sprintf("%d", count))
	tui.tvErrorCount.SetColor(theme.Red)
}

//
// channel strips
//

func (tui *Tui) UpdateSignalLevels(levels []model.SignalLevel) {
	tui.lock.Lock()
	meters := tui.elementLevelMeters
	tui.lock.Unlock()

	for i, level := range levels {
		if i < len(meters) {
			meters[i].SetLevel(level.Instant)
		}
	}
}

func (tui *Tui) SetChannelCount(channelCount int) {
	meters := make([]*custom.LevelMeter, channelCount)

	levelColumns := make([]int, channelCount+2)
	levelColumns[0] = 5
	for i := range channelCount {
		levelColumns[i+1] = layoutMeterWidth
	}
	levelColumns[channelCount+1] = -1

	tui.gridLevelMeters.SetColumns(levelColumns...)

	meterStepLabel := cview.NewTextView()
	meterStepLabel.SetPadding(0, 0, 0, 0)

	meterStepLabel.Write([]byte(fmt.Sprintln()))
	for _, step := range meterSteps {
		meterStepLabel.Write([]byte(fmt.Sprintf("%3v\n", fmt.Sprintf("%d", step))))
	}
	tui.gridLevelMeters.AddItem(meterStepLabel, 0, 0, 1, 1, 0, 0, false)

	for i := range channelCount {
		meters[i] = custom.NewLevelMeter(meterSteps, levelColors)
		meters[i].SetBorder(false)
		meters[i].SetPadding(0, 0, 1, 1)
		meters[i].SetMinLevel(-150)
		meters[i].SetLevel(-99)
		meters[i].SetLabel(fmt.Sprintf("%d", i+1))

		if i%2 == 1 {
			meters[i].SetBackgroundColor(theme.LevelMeterAlternateBackgroundColor)
		}

		tui.gridLevelMeters.AddItem(meters[i], 0, i+1, 1, 1, 0, 0, false)
	}

	tui.gridLevelMeters.AddItem(tui.spectrumView, 0, channelCount+1, 1, 1, 0, 0, false)

	tui.lock.Lock()
	tui.elementLevelMeters = meters
	tui.lock.Unlock()
}

func (tui *Tui) SetSpectrum(bands []float64, dominantBand int, dominantHz float64) {
	tui.spectrumView.SetBands(bands, dominantBand)

	if dominantHz > 0 {
		tui.tvDominant.SetCurrentValue(fmt.Sprintf("%.0f Hz", dominantHz))
	} else {
		tui.tvDominant.SetCurrentValue("-")
	}
}

//
// logging
//

func (tui *Tui) WriteLevelLog(level slog.Level, message string) {
	color := "-"

	if level == slog.LevelWarn {
		color = "#" + theme.YellowRGB
	} else if level == slog.LevelError {
		color = "#" + theme.RedRGB + "::b"
	} else if level <= slog.LevelDebug {
		color = "#" + theme.GrayRGB
	}

	tui.tvLogs.Write([]byte(fmt.Sprintf("[%s][%s[] [%s[] %s[-:-:-]\n", color, time.Now().Format("2006-01-02 15:04:05"), level.String(), message)))
}

//
// status meters
//

func (tui *Tui) SetAudioLoad(percent int) {
	tui.updateMeter(tui.statusMeterAudioLoad, percent, 50, 80)
}

func (tui *Tui) SetXrunCount(count uint64) {
	tui.tvXruns.SetCurrentValue(fmt.Sprintf("%d", count))
	if count > 0 {
		tui.tvXruns.SetColor(theme.Yellow)
	}
}

func (tui *Tui) SetDroppedEvents(count uint64) {
	tui.tvDroppedEvents.SetCurrentValue(fmt.Sprintf("%d", count))
	if count > 0 {
		tui.tvDroppedEvents.SetColor(theme.Yellow)
	}
}

func formatParam(value model.ParamUpdate) string {
	switch value.Param {
	case model.ParamSustain, model.ParamLevel:
		return fmt.Sprintf("%3.0f %%", value.Value*100.0)
	}

	return fmt.Sprintf("%.3f s", value.Value)
}
