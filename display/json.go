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
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"fox-synth/model"
	"fox-synth/reaper"
)

//
// types
//

// JsonUI prints one JSON object per line: status, levels and spectrum once
// per interval, log records as they happen. Commands are read line by line
// from input, see ParseCommand.
type JsonUI struct {
	shutdownChannel chan bool
	interval        time.Duration

	outputLock sync.Mutex
	output     io.Writer
	input      io.Reader

	lock         sync.Mutex
	inputHandler func(Input)

	statusTransport Status

	statusDuration   float64
	statusFormat     string
	statusBackend    string
	statusWaveform   string
	statusNote       string
	statusOctave     int
	statusHeld       []int
	statusParams     map[string]float64
	statusErrorCount int

	metricAudioLoadPct  int
	metricXruns         uint64
	metricDroppedEvents uint64

	signalLevels []model.SignalLevel
	bands        []float64
	dominantHz   float64
}

//
// constructor
//

func NewJsonUI(output io.Writer, input io.Reader) *JsonUI {
	jsonUi := &JsonUI{
		shutdownChannel: make(chan bool, 1),
		interval:        1 * time.Second,

		output: output,
		input:  input,

		statusTransport: StatusStarting,
		statusNote:      "-",
		statusHeld:      make([]int, 0),
		statusParams:    make(map[string]float64),

		signalLevels: make([]model.SignalLevel, 0),
		bands:        make([]float64, 0),
	}

	return jsonUi
}

func (j *JsonUI) Initalize() {
	// nothing to do here
}

func (j *JsonUI) Start() {
	go j.excecuteLoop()

	if j.input != nil {
		go j.readCommands()
	}
}

func (j *JsonUI) excecuteLoop() {
	slog.Debug("JSON loop started")

	ticker := time.NewTicker(j.interval)
	defer ticker.Stop()

	for {
		if j.IsShutdown() {
			break
		}

		j.printJson(j.getStatus())
		j.printJson(j.getLevels())
		j.printJson(j.getSpectrum())

		<-ticker.C
	}
}

// readCommands runs until input closes. End of input is treated as quit.
func (j *JsonUI) readCommands() {
	scanner := bufio.NewScanner(j.input)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		input, err := ParseCommand(line)
		if err != nil {
			j.printJson(&JsonCommandError{
				MessageType: "command_error",
				Command:     line,
				Error:       err.Error(),
			})
			continue
		}

		j.dispatch(input)
	}

	if !j.IsShutdown() {
		slog.Debug("JSON UI input closed")
		j.dispatch(Input{Kind: InputQuit})
	}
}

func (j *JsonUI) dispatch(input Input) {
	j.lock.Lock()
	handler := j.inputHandler
	j.lock.Unlock()

	if handler != nil {
		handler(input)
		return
	}

	if input.Kind == InputQuit {
		go reaper.Reap()
	}
}

func (j *JsonUI) Shutdown() {
	slog.Debug("Shutting down JSON UI")

	if !j.IsShutdown() {
		j.shutdownChannel <- true
	}

	// last status so consumers see the final state
	j.printJson(j.getStatus())
}

func (j *JsonUI) IsShutdown() bool {
	return len(j.shutdownChannel) > 0
}

func (j *JsonUI) WaitForShutdown() {
	<-j.shutdownChannel
	j.shutdownChannel <- true
}

func (j *JsonUI) SetInputHandler(handler func(Input)) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.inputHandler = handler
}

func (j *JsonUI) SetStatus(status Status) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.statusTransport = status
}

func (j *JsonUI) SetDuration(duration float64) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.statusDuration = duration
}

func (j *JsonUI) SetAudioFormat(format string) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.statusFormat = format
}

func (j *JsonUI) SetBackend(name string) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.statusBackend = name
}

func (j *JsonUI) SetWaveform(name string) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.statusWaveform = name
}

func (j *JsonUI) SetNote(note string) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.statusNote = note
}

func (j *JsonUI) SetOctave(octave int) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.statusOctave = octave
}

func (j *JsonUI) SetHeldNotes(notes []int) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.statusHeld = slices.Clone(notes)
}

func (j *JsonUI) SetParams(values []model.ParamUpdate, selected model.Param) {
	j.lock.Lock()
	defer j.lock.Unlock()

	for _, value := range values {
		j.statusParams[strings.ToLower(value.Param.String())] = value.Value
	}
}

func (j *JsonUI) IncrementErrorCount() {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.statusErrorCount += 1
}

func (j *JsonUI) SetChannelCount(channelCount int) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.signalLevels = make([]model.SignalLevel, channelCount)
}

func (j *JsonUI) UpdateSignalLevels(levels []model.SignalLevel) {
	j.lock.Lock()
	defer j.lock.Unlock()

	copy(j.signalLevels, levels)
}

func (j *JsonUI) SetSpectrum(bands []float64, dominantBand int, dominantHz float64) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.bands = slices.Clone(bands)
	j.dominantHz = dominantHz
}

func (j *JsonUI) SetAudioLoad(percent int) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.metricAudioLoadPct = percent
}

func (j *JsonUI) SetXrunCount(count uint64) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.metricXruns = count
}

func (j *JsonUI) SetDroppedEvents(count uint64) {
	j.lock.Lock()
	defer j.lock.Unlock()

	j.metricDroppedEvents = count
}

func (j *JsonUI) WriteLevelLog(level slog.Level, message string) {
	logObj := JsonLog{
		MessageType: "log",

		Date:    time.Now().Format(time.RFC3339),
		Level:   level.String(),
		Message: message,
	}

	j.printJson(logObj)
}

//
// private functions
//

func (j *JsonUI) printJson(v any) {
	jsonBytes, err := json.Marshal(v)

	if err != nil {
		// logging here would come straight back to printJson
		jsonBytes = []byte(fmt.Sprintf(`{"message_type":"error","error":%q}`, err.Error()))
	}

	j.outputLock.Lock()
	defer j.outputLock.Unlock()

	fmt.Fprintln(j.output, string(jsonBytes))
}

func (j *JsonUI) getStatus() *JsonStatus {
	j.lock.Lock()
	defer j.lock.Unlock()

	params := make(map[string]float64, len(j.statusParams))
	for key, value := range j.statusParams {
		params[key] = value
	}

	jsonStatus := &JsonStatus{
		MessageType: "status",

		Status: j.statusTransport.String(),

		Duration:   j.statusDuration,
		Format:     j.statusFormat,
		Backend:    j.statusBackend,
		Waveform:   j.statusWaveform,
		Note:       j.statusNote,
		Octave:     j.statusOctave,
		Held:       slices.Clone(j.statusHeld),
		Params:     params,
		ErrorCount: j.statusErrorCount,

		AudioLoadPct:  j.metricAudioLoadPct,
		Xruns:         j.metricXruns,
		DroppedEvents: j.metricDroppedEvents,
	}

	return jsonStatus
}

func (j *JsonUI) getLevels() *JsonLevels {
	j.lock.Lock()
	defer j.lock.Unlock()

	jsonLevels := &JsonLevels{
		MessageType: "levels",

		Channels: make([]JsonLevelChannel, len(j.signalLevels)),
	}

	for i, level := range j.signalLevels {
		jsonLevels.Channels[i].Name = fmt.Sprintf("%d", i+1)
		jsonLevels.Channels[i].Level = level.Instant
		jsonLevels.Channels[i].Peak = level.Peak
	}

	return jsonLevels
}

func (j *JsonUI) getSpectrum() *JsonSpectrum {
	j.lock.Lock()
	defer j.lock.Unlock()

	return &JsonSpectrum{
		MessageType: "spectrum",

		Bands:      slices.Clone(j.bands),
		DominantHz: j.dominantHz,
	}
}
