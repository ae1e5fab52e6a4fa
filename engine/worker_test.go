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
	"math"
	"sync/atomic"
	"testing"
	"time"

	"fox-synth/audio"
	"fox-synth/model"
)

func newTestWorker(channels int, encoding model.Encoding, opts options) *Worker {
	state := &stateCell{}
	state.store(StateRunning)

	return newWorker(model.NewDeviceFormat(44100, channels, encoding), state, opts)
}

func constant(value model.Signal) Processor {
	return ProcessorFunc(func(model.NoteIndex, bool) model.Signal { return value })
}

type closingProcessor struct {
	value  model.Signal
	closed *atomic.Int32
}

func (p *closingProcessor) Process(model.NoteIndex, bool) model.Signal {
	return p.value
}

func (p *closingProcessor) Close() error {
	p.closed.Add(1)
	return nil
}

type paramProcessor struct {
	level model.Signal
}

func (p *paramProcessor) Process(model.NoteIndex, bool) model.Signal {
	return p.level
}

func (p *paramProcessor) SetParam(update model.ParamUpdate) {
	if update.Param == model.ParamLevel {
		p.level = update.Value
	}
}

func drainEvents(w *Worker) []Event {
	var events []Event
	for {
		select {
		case event := <-w.events:
			events = append(events, event)
		default:
			return events
		}
	}
}

func TestWorkerSilentStart(t *testing.T) {
	w := newTestWorker(2, model.EncodingF32, defaultOptions())
	w.procs.Push(Silence)

	out := make([]float32, 1024*2)
	for i := range out {
		out[i] = 1
	}

	if result := w.RenderFloat32(out); result != audio.Continue {
		t.Fatalf("result: got %v want Continue", result)
	}

	for i, s := range out {
		if s != 0 {
			t.Fatalf("sample %d: got %v want 0", i, s)
		}
	}

	want := 1024.0 / 44100.0
	if math.Abs(w.RunningTime()-want) > 1e-9 {
		t.Fatalf("running time: got %v want %v", w.RunningTime(), want)
	}

	if w.SampleCount() != 1024 {
		t.Fatalf("sample count: got %d want 1024", w.SampleCount())
	}
}

func TestWorkerSilentDefaultPerEncoding(t *testing.T) {
	f32 := newTestWorker(2, model.EncodingF32, defaultOptions())
	outF32 := make([]float32, 16)
	f32.RenderFloat32(outF32)
	for i, s := range outF32 {
		if s != SilenceF32 {
			t.Fatalf("f32 sample %d: got %v", i, s)
		}
	}

	i16 := newTestWorker(2, model.EncodingI16, defaultOptions())
	outI16 := make([]int16, 16)
	i16.RenderInt16(outI16)
	for i, s := range outI16 {
		if s != SilenceI16 {
			t.Fatalf("i16 sample %d: got %v", i, s)
		}
	}

	u16 := newTestWorker(2, model.EncodingU16, defaultOptions())
	outU16 := make([]uint16, 16)
	u16.RenderUint16(outU16)
	for i, s := range outU16 {
		if s != SilenceU16 {
			t.Fatalf("u16 sample %d: got %v want %d", i, s, SilenceU16)
		}
	}
}

func TestWorkerPlaysHeldNote(t *testing.T) {
	w := newTestWorker(2, model.EncodingF32, defaultOptions())

	w.procs.Push(ProcessorFunc(func(note model.NoteIndex, held bool) model.Signal {
		if held && note == 7 {
			return 0.5
		}
		return 0.0
	}))
	w.keys.Push(model.PressKey(7))

	out := make([]float32, 8*2)
	w.RenderFloat32(out)

	for i, s := range out {
		if s != 0.5 {
			t.Fatalf("sample %d: got %v want 0.5", i, s)
		}
	}
}

func TestWorkerNewestProcessorWins(t *testing.T) {
	w := newTestWorker(2, model.EncodingF32, defaultOptions())

	var closed atomic.Int32
	w.procs.Push(&closingProcessor{value: 0.25, closed: &closed})
	w.procs.Push(constant(-0.25))

	out := make([]float32, 32)
	w.RenderFloat32(out)

	for i, s := range out {
		if s != -0.25 {
			t.Fatalf("sample %d: got %v want -0.25", i, s)
		}
	}

	if closed.Load() != 1 {
		t.Fatalf("dropped processor closed %d times, want 1", closed.Load())
	}

	events := drainEvents(w)
	if len(events) != 2 || events[0].Kind != EventProcessorDropped || events[1].Kind != EventProcessorInstalled {
		t.Fatalf("events: got %v", events)
	}
}

func TestWorkerFanOut(t *testing.T) {
	for channels := 1; channels <= 6; channels++ {
		w := newTestWorker(channels, model.EncodingI16, defaultOptions())

		phase := 0.0
		w.procs.Push(ProcessorFunc(func(model.NoteIndex, bool) model.Signal {
			phase += 0.01
			return math.Sin(phase)
		}))

		frames := 100
		out := make([]int16, frames*channels)
		w.RenderInt16(out)

		for frame := 0; frame < frames; frame++ {
			first := out[frame*channels]
			for c := 1; c < channels; c++ {
				if out[frame*channels+c] != first {
					t.Fatalf("%d channels, frame %d: channel %d is %d, channel 0 is %d",
						channels, frame, c, out[frame*channels+c], first)
				}
			}
		}
	}
}

func TestWorkerPartialFrameIsSilenced(t *testing.T) {
	w := newTestWorker(2, model.EncodingF32, defaultOptions())
	w.procs.Push(constant(0.5))

	out := []float32{9, 9, 9, 9, 9}
	w.RenderFloat32(out)

	if out[4] != 0 {
		t.Fatalf("trailing sample: got %v want 0", out[4])
	}
	if w.SampleCount() != 2 {
		t.Fatalf("sample count: got %d want 2", w.SampleCount())
	}
}

func TestWorkerKeyOrdering(t *testing.T) {
	w := newTestWorker(1, model.EncodingF32, defaultOptions())

	var seen []model.NoteIndex
	w.procs.Push(ProcessorFunc(func(note model.NoteIndex, held bool) model.Signal {
		if held {
			seen = append(seen, note)
		}
		return 0
	}))

	w.keys.Push(model.PressKey(1))
	w.keys.Push(model.PressKey(2))
	w.keys.Push(model.ReleaseKey(2))

	w.RenderFloat32(make([]float32, 4))

	if len(seen) != 4 {
		t.Fatalf("held frames: got %d want 4", len(seen))
	}
	for i, note := range seen {
		if note != 1 {
			t.Fatalf("frame %d: got %d want 1", i, note)
		}
	}

	if note, held := w.Current(); !held || note != 1 {
		t.Fatalf("current: got %d (%v) want 1", note, held)
	}

	if held := w.HeldKeys(); len(held) != 1 || held[0] != 1 {
		t.Fatalf("held keys: got %v want [1]", held)
	}
}

func TestWorkerSwapAtCallbackBoundary(t *testing.T) {
	w := newTestWorker(1, model.EncodingF32, defaultOptions())

	calls := 0
	w.procs.Push(ProcessorFunc(func(model.NoteIndex, bool) model.Signal {
		calls++
		if calls == 2 {
			w.procs.Push(constant(-1))
		}
		return 1
	}))

	first := make([]float32, 8)
	w.RenderFloat32(first)
	for i, s := range first {
		if s != 1 {
			t.Fatalf("first callback, sample %d: got %v want 1", i, s)
		}
	}

	second := make([]float32, 8)
	w.RenderFloat32(second)
	for i, s := range second {
		if s != -1 {
			t.Fatalf("second callback, sample %d: got %v want -1", i, s)
		}
	}
}

func TestWorkerRecoversFromPanic(t *testing.T) {
	w := newTestWorker(1, model.EncodingF32, defaultOptions())

	var closed atomic.Int32
	calls := 0
	w.procs.Push(ProcessorFunc(func(model.NoteIndex, bool) model.Signal {
		calls++
		if calls == 3 {
			panic("boom")
		}
		return 0.5
	}))

	out := make([]float32, 6)
	if result := w.RenderFloat32(out); result != audio.Continue {
		t.Fatalf("result: got %v want Continue", result)
	}

	want := []float32{0.5, 0.5, 0, 0, 0, 0}
	for i := range want {
		if out[i] != want[i] {
			t.Fatalf("sample %d: got %v want %v", i, out[i], want[i])
		}
	}

	var panicked bool
	for _, event := range drainEvents(w) {
		if event.Kind == EventProcessorPanic && event.Detail == "boom" {
			panicked = true
		}
	}
	if !panicked {
		t.Fatal("no panic event posted")
	}

	// the next processor is installed normally
	w.procs.Push(&closingProcessor{value: 0.75, closed: &closed})
	w.RenderFloat32(out)
	if out[0] != 0.75 {
		t.Fatalf("after recovery: got %v want 0.75", out[0])
	}
}

func TestWorkerAppliesParams(t *testing.T) {
	w := newTestWorker(1, model.EncodingF32, defaultOptions())

	w.procs.Push(&paramProcessor{level: 0.1})
	w.params.Push(model.ParamUpdate{Param: model.ParamLevel, Value: 0.5})

	out := make([]float32, 4)
	w.RenderFloat32(out)

	if out[0] != 0.5 {
		t.Fatalf("got %v want 0.5", out[0])
	}

	// processors without SetParam ignore updates
	w.procs.Push(constant(0.25))
	w.params.Push(model.ParamUpdate{Param: model.ParamLevel, Value: 1})
	w.RenderFloat32(out)

	if out[0] != 0.25 {
		t.Fatalf("got %v want 0.25", out[0])
	}
}

func TestWorkerStop(t *testing.T) {
	w := newTestWorker(2, model.EncodingU16, defaultOptions())
	w.procs.Push(constant(1))

	w.stop.Store(true)

	out := make([]uint16, 8)
	if result := w.RenderUint16(out); result != audio.Complete {
		t.Fatalf("result: got %v want Complete", result)
	}

	for i, s := range out {
		if s != SilenceU16 {
			t.Fatalf("sample %d: got %d want %d", i, s, SilenceU16)
		}
	}

	select {
	case <-w.done:
	default:
		t.Fatal("done not closed")
	}

	if w.state.load() != StateStopping {
		t.Fatalf("state: got %v want Stopping", w.state.load())
	}

	// a second callback after stopping is harmless
	if result := w.RenderUint16(out); result != audio.Complete {
		t.Fatalf("second result: got %v want Complete", result)
	}
}

func TestWorkerRenderBytes(t *testing.T) {
	tests := []struct {
		encoding model.Encoding
		value    model.Signal
		check    func(frame []byte) bool
	}{
		{model.EncodingF32, 0.5, func(b []byte) bool {
			return math.Float32frombits(binary.LittleEndian.Uint32(b)) == 0.5
		}},
		{model.EncodingI16, 1.0, func(b []byte) bool {
			return int16(binary.LittleEndian.Uint16(b)) == 32767
		}},
		{model.EncodingU16, -1.0, func(b []byte) bool {
			return binary.LittleEndian.Uint16(b) == 0
		}},
	}

	for _, test := range tests {
		w := newTestWorker(2, test.encoding, defaultOptions())
		w.procs.Push(constant(test.value))

		size := test.encoding.BytesPerSample()
		out := make([]byte, 10*2*size)
		w.RenderBytes(out)

		for i := 0; i < len(out); i += size {
			if !test.check(out[i : i+size]) {
				t.Fatalf("%s: sample at byte %d is %v", test.encoding, i, out[i:i+size])
			}
		}
	}
}

func TestWorkerRenderBytesSilence(t *testing.T) {
	w := newTestWorker(1, model.EncodingU16, defaultOptions())
	w.stop.Store(true)

	out := make([]byte, 8)
	w.RenderBytes(out)

	for i := 0; i < len(out); i += 2 {
		if got := binary.LittleEndian.Uint16(out[i:]); got != SilenceU16 {
			t.Fatalf("sample %d: got %d want %d", i/2, got, SilenceU16)
		}
	}
}

func TestWorkerGrowsScratch(t *testing.T) {
	opts := defaultOptions()
	opts.maxFrames = 4

	w := newTestWorker(1, model.EncodingF32, opts)
	w.procs.Push(constant(0.5))

	out := make([]float32, 16)
	w.RenderFloat32(out)

	for i, s := range out {
		if s != 0.5 {
			t.Fatalf("sample %d: got %v want 0.5", i, s)
		}
	}
}

func TestWorkerMetrics(t *testing.T) {
	w := newTestWorker(1, model.EncodingF32, defaultOptions())
	w.procs.Push(constant(-0.8))
	w.keys.Push(model.PressKey(4))

	w.RenderFloat32(make([]float32, 441))

	select {
	case m := <-w.metrics:
		if m.Frames != 441 || m.Note != 4 || !m.Held || m.Depth != 1 {
			t.Fatalf("metrics: got %+v", m)
		}
		if math.Abs(m.Peak-0.8) > 1e-9 {
			t.Fatalf("peak: got %v want 0.8", m.Peak)
		}
		if diff := m.Budget - 10*time.Millisecond; diff < -time.Microsecond || diff > time.Microsecond {
			t.Fatalf("budget: got %v want 10ms", m.Budget)
		}
	default:
		t.Fatal("no metrics published")
	}
}

func TestWorkerScope(t *testing.T) {
	opts := defaultOptions()
	opts.scopeBlock = 4

	w := newTestWorker(1, model.EncodingF32, opts)
	w.procs.Push(constant(0.5))

	w.RenderFloat32(make([]float32, 10))

	for i := 0; i < 2; i++ {
		select {
		case block := <-w.scope.filled:
			if len(block) != 4 {
				t.Fatalf("block %d: got %d samples want 4", i, len(block))
			}
			for _, s := range block {
				if s != 0.5 {
					t.Fatalf("block %d: got %v want 0.5", i, s)
				}
			}
			w.scope.recycle(block)
		default:
			t.Fatalf("block %d missing", i)
		}
	}

	select {
	case block := <-w.scope.filled:
		t.Fatalf("unexpected partial block of %d samples", len(block))
	default:
	}
}

func TestWorkerScopeSkipsWhenReaderIsBehind(t *testing.T) {
	opts := defaultOptions()
	opts.scopeBlock = 2

	w := newTestWorker(1, model.EncodingF32, opts)

	// nobody reads, so every block ends up filled and capturing stops
	for i := 0; i < 10; i++ {
		w.RenderFloat32(make([]float32, 4))
	}

	if len(w.scope.filled) != scopeBuffers {
		t.Fatalf("filled blocks: got %d want %d", len(w.scope.filled), scopeBuffers)
	}
}

// discardOutput empties the worker's event, metrics and scope channels the way
// the controller's consumer would.
func discardOutput(w *Worker) {
	for {
		select {
		case <-w.events:
		case <-w.metrics:
		case block := <-w.scope.filled:
			w.scope.recycle(block)
		default:
			return
		}
	}
}

func TestWorkerDoesNotAllocate(t *testing.T) {
	const frames = 64

	tests := []struct {
		name     string
		encoding model.Encoding
		render   func(w *Worker)
	}{
		{"float32", model.EncodingF32, func() func(w *Worker) {
			out := make([]float32, frames*2)
			return func(w *Worker) { w.RenderFloat32(out) }
		}()},
		{"bytes", model.EncodingI16, func() func(w *Worker) {
			out := make([]byte, frames*2*model.EncodingI16.BytesPerSample())
			return func(w *Worker) { w.RenderBytes(out) }
		}()},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			opts := defaultOptions()
			opts.scopeBlock = frames

			w := newTestWorker(2, test.encoding, opts)
			processors := [2]Processor{&paramProcessor{level: 0.1}, &paramProcessor{level: 0.2}}
			w.procs.Push(processors[0])
			test.render(w)
			discardOutput(w)

			bare := testing.AllocsPerRun(100, func() {
				test.render(w)
				discardOutput(w)
			})
			if bare != 0 {
				t.Fatalf("idle callback: got %v allocations want 0", bare)
			}

			// queue nodes are allocated by the producer, so the same pushes
			// into unrelated queues give the baseline
			keys := NewQueue[model.KeyEvent]()
			procs := NewQueue[Processor]()
			params := NewQueue[model.ParamUpdate]()

			i := 0
			baseline := testing.AllocsPerRun(100, func() {
				keys.Push(model.PressKey(60))
				keys.Push(model.ReleaseKey(60))
				procs.Push(processors[i%2])
				params.Push(model.ParamUpdate{Param: model.ParamLevel, Value: 0.5})
				i++
			})

			i = 0
			busy := testing.AllocsPerRun(100, func() {
				w.keys.Push(model.PressKey(60))
				w.keys.Push(model.ReleaseKey(60))
				w.procs.Push(processors[i%2])
				w.params.Push(model.ParamUpdate{Param: model.ParamLevel, Value: 0.5})
				i++

				test.render(w)
				discardOutput(w)
			})
			if busy != baseline {
				t.Fatalf("busy callback: got %v allocations want %v", busy, baseline)
			}
		})
	}
}
