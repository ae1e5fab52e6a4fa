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
package engine

import (
	"encoding/binary"
	"fmt"
	"math"
	"sync"
	"sync/atomic"
	"time"

	"fox-synth/audio"
	"fox-synth/model"
)

// Worker is the audio callback body. The device calls one of the Render
// functions per buffer on its real-time thread; everything the worker mutates
// is owned by that thread; the controller only reaches it through the three
// queues and the stop flag.
type Worker struct {
	format     model.DeviceFormat
	channels   int
	sampleTime float64

	keys   *Queue[model.KeyEvent]
	procs  *Queue[Processor]
	params *Queue[model.ParamUpdate]

	stack *KeyStack
	slot  processorSlot
	note  model.NoteIndex
	held  bool

	signal    []model.Signal
	samples   uint64
	time      float64
	callbacks uint64
	started   time.Time
	lastEnd   time.Time

	state    *stateCell
	stop     atomic.Bool
	done     chan struct{}
	doneOnce sync.Once

	events  chan Event
	metrics chan Metrics
	scope   *scopeTap
	dropped atomic.Uint64
}

func newWorker(format model.DeviceFormat, state *stateCell, opts options) *Worker {
	return &Worker{
		format:     format,
		channels:   format.NumChannels,
		sampleTime: format.SampleTime(),

		keys:   NewQueue[model.KeyEvent](),
		procs:  NewQueue[Processor](),
		params: NewQueue[model.ParamUpdate](),

		stack: NewKeyStack(opts.keyCapacity),
		slot:  newProcessorSlot(),

		signal: make([]model.Signal, opts.maxFrames),

		state: state,
		done:  make(chan struct{}),

		events:  make(chan Event, opts.eventBuffer),
		metrics: make(chan Metrics, opts.metricsBuffer),
		scope:   opts.scope(),
	}
}

//
// device callbacks
//

func (w *Worker) RenderFloat32(out []float32) audio.CallbackResult {
	frames := len(out) / w.channels
	if !w.begin(frames) {
		fill(out, SilenceF32)
		return audio.Complete
	}

	fanOut(out, w.signal[:frames], w.channels, ToFloat32)
	fill(out[frames*w.channels:], SilenceF32)
	w.end(frames)

	return audio.Continue
}

func (w *Worker) RenderInt16(out []int16) audio.CallbackResult {
	frames := len(out) / w.channels
	if !w.begin(frames) {
		fill(out, SilenceI16)
		return audio.Complete
	}

	fanOut(out, w.signal[:frames], w.channels, ToInt16)
	fill(out[frames*w.channels:], SilenceI16)
	w.end(frames)

	return audio.Continue
}

func (w *Worker) RenderUint16(out []uint16) audio.CallbackResult {
	frames := len(out) / w.channels
	if !w.begin(frames) {
		fill(out, SilenceU16)
		return audio.Complete
	}

	fanOut(out, w.signal[:frames], w.channels, ToUint16)
	fill(out[frames*w.channels:], SilenceU16)
	w.end(frames)

	return audio.Continue
}

// RenderBytes writes little endian samples in the device's encoding.
func (w *Worker) RenderBytes(out []byte) audio.CallbackResult {
	frameBytes := w.format.FrameBytes()
	frames := len(out) / frameBytes

	if !w.begin(frames) {
		w.silenceBytes(out)
		return audio.Complete
	}

	for i, s := range w.signal[:frames] {
		frame := out[i*frameBytes : (i+1)*frameBytes]

		switch w.format.Encoding {
		case model.EncodingF32:
			bits := math.Float32bits(ToFloat32(s))
			for c := 0; c < frameBytes; c += 4 {
				binary.LittleEndian.PutUint32(frame[c:], bits)
			}
		case model.EncodingI16:
			value := uint16(ToInt16(s))
			for c := 0; c < frameBytes; c += 2 {
				binary.LittleEndian.PutUint16(frame[c:], value)
			}
		case model.EncodingU16:
			value := ToUint16(s)
			for c := 0; c < frameBytes; c += 2 {
				binary.LittleEndian.PutUint16(frame[c:], value)
			}
		}
	}

	w.silenceBytes(out[frames*frameBytes:])
	w.end(frames)

	return audio.Continue
}

//
// callback phases
//

// begin drains the control queues and generates the callback's signal. It
// returns false once a stop was requested.
func (w *Worker) begin(frames int) bool {
	if w.stop.Load() {
		w.finish()
		return false
	}

	w.started = time.Now()

	w.drainProcessors()
	w.drainKeys()
	w.drainParams()
	w.generate(frames)

	return true
}

func (w *Worker) end(frames int) {
	now := time.Now()

	peak := 0.0
	for _, s := range w.signal[:frames] {
		if a := math.Abs(s); a > peak {
			peak = a
		}
	}

	metrics := Metrics{
		Callback: w.callbacks,
		Frames:   frames,
		Samples:  w.samples,
		Time:     w.time,
		Elapsed:  now.Sub(w.started),
		Budget:   time.Duration(float64(frames) * w.sampleTime * float64(time.Second)),
		Peak:     peak,
		Note:     w.note,
		Held:     w.held,
		Depth:    w.stack.Len(),
	}

	if w.scope != nil {
		w.scope.capture(w.signal[:frames])
	}

	if !w.lastEnd.IsZero() {
		metrics.Idle = w.started.Sub(w.lastEnd)
	}

	w.lastEnd = now
	w.callbacks++

	if len(w.metrics) < cap(w.metrics) {
		w.metrics <- metrics
	}
}

// drainProcessors keeps only the newest queued processor
func (w *Worker) drainProcessors() {
	var latest Processor

	for {
		p, ok := w.procs.Pop()
		if !ok {
			break
		}

		if latest != nil {
			w.retire(latest)
		}
		latest = p
	}

	if latest == nil {
		return
	}

	w.retire(w.slot.install(latest))
	w.post(Event{Kind: EventProcessorInstalled, Sample: w.samples})
}

func (w *Worker) drainKeys() {
	for {
		event, ok := w.keys.Pop()
		if !ok {
			return
		}

		w.note, w.held = w.stack.Apply(event)
	}
}

func (w *Worker) drainParams() {
	for {
		update, ok := w.params.Pop()
		if !ok {
			return
		}

		w.applyParam(update)
	}
}

func (w *Worker) applyParam(update model.ParamUpdate) {
	receiver, ok := w.slot.current.(ParamReceiver)
	if !ok {
		return
	}

	defer w.recoverProcessor()
	receiver.SetParam(update)
}

func (w *Worker) generate(frames int) {
	if frames > len(w.signal) {
		// only when the device hands over more than max frames
		w.signal = make([]model.Signal, frames)
	}

	next := 0
	for next < frames {
		next = w.run(next, frames)
	}
}

// run calls the processor for frames [start, frames). After a panic it
// returns the frame that was being generated so the caller can resume it
// with the silent processor.
func (w *Worker) run(start, frames int) (next int) {
	defer w.recoverProcessor()

	p := w.slot.current
	for next = start; next < frames; next++ {
		w.signal[next] = p.Process(w.note, w.held)
		w.samples++
		w.time += w.sampleTime
	}

	return next
}

func (w *Worker) recoverProcessor() {
	if r := recover(); r != nil {
		failed := w.slot.silence()

		w.post(Event{
			Kind:   EventProcessorPanic,
			Sample: w.samples,
			Note:   w.note,
			Held:   w.held,
			Detail: fmt.Sprint(r),
		})

		w.retire(failed)
	}
}

func (w *Worker) retire(p Processor) {
	if _, ok := p.(silence); ok {
		return
	}

	defer func() {
		if r := recover(); r != nil {
			w.post(Event{Kind: EventProcessorPanic, Sample: w.samples, Detail: fmt.Sprint(r)})
		}
	}()

	release(p)
	w.post(Event{Kind: EventProcessorDropped, Sample: w.samples})
}

func (w *Worker) finish() {
	w.doneOnce.Do(func() {
		w.state.transition(StateRunning, StateStopping)
		w.post(Event{Kind: EventStopping, Sample: w.samples})
		close(w.done)
	})
}

func (w *Worker) post(event Event) {
	select {
	case w.events <- event:
	default:
		w.dropped.Add(1)
	}
}

func (w *Worker) silenceBytes(out []byte) {
	if w.format.Encoding != model.EncodingU16 {
		clear(out)
		return
	}

	for i := 0; i+1 < len(out); i += 2 {
		binary.LittleEndian.PutUint16(out[i:], SilenceU16)
	}
}

//
// accessors, only meaningful from the device thread or once it stopped
//

func (w *Worker) SampleCount() uint64 {
	return w.samples
}

func (w *Worker) RunningTime() float64 {
	return w.time
}

func (w *Worker) Current() (model.NoteIndex, bool) {
	return w.note, w.held
}

func (w *Worker) HeldKeys() []model.NoteIndex {
	return w.stack.Held()
}

//
// helpers
//

type sample interface {
	~float32 | ~int16 | ~uint16
}

// fanOut writes every frame's signal to all of its channels
func fanOut[T sample](out []T, signal []model.Signal, channels int, convert func(model.Signal) T) {
	for i, s := range signal {
		value := convert(s)
		frame := out[i*channels : (i+1)*channels]

		for c := range frame {
			frame[c] = value
		}
	}
}

func fill[T sample](out []T, value T) {
	for i := range out {
		out[i] = value
	}
}
