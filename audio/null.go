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
package audio

import (
	"fmt"
	"log/slog"
	"sync"
	"sync/atomic"
	"time"

	"fox-synth/model"
)

const nullBackendName = "null"

func init() {
	Register(nullBackendName, openNullDevice)
}

// NullDevice discards everything it renders. With a period it runs its own
// callback goroutine at real time, without one the caller drives it through
// the Pull functions.
type NullDevice struct {
	format model.DeviceFormat
	period time.Duration

	renderer Renderer
	buffer   []byte
	f32      []float32
	i16      []int16
	u16      []uint16

	playing   bool
	complete  atomic.Bool
	callbacks atomic.Uint64

	stop chan struct{}
	done chan struct{}

	mutex sync.Mutex
}

func NewNullDevice(format model.DeviceFormat, period time.Duration) *NullDevice {
	return &NullDevice{
		format: format,
		period: period,
	}
}

func openNullDevice(opts Options) (Device, error) {
	format := model.NewDeviceFormat(opts.SampleRate, opts.ChannelCount, opts.Encoding)

	if err := format.Validate(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFormat, err)
	}

	return NewNullDevice(format, opts.Period), nil
}

func (dev *NullDevice) Name() string {
	return nullBackendName
}

func (dev *NullDevice) Format() model.DeviceFormat {
	return dev.format
}

func (dev *NullDevice) Open(renderer Renderer) error {
	dev.mutex.Lock()
	defer dev.mutex.Unlock()

	if dev.renderer != nil {
		return ErrOpen
	}

	dev.renderer = renderer
	return nil
}

func (dev *NullDevice) Play() error {
	dev.mutex.Lock()
	defer dev.mutex.Unlock()

	if dev.renderer == nil {
		return fmt.Errorf("%w: no renderer attached", ErrPlay)
	}

	if dev.playing {
		return nil
	}
	dev.playing = true

	if dev.period > 0 {
		dev.stop = make(chan struct{})
		dev.done = make(chan struct{})
		go dev.run()
	}

	return nil
}

func (dev *NullDevice) Close() error {
	dev.mutex.Lock()
	stop, done := dev.stop, dev.done
	dev.stop, dev.done = nil, nil
	dev.playing = false
	dev.mutex.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	return nil
}

// Callbacks is the number of buffers rendered so far.
func (dev *NullDevice) Callbacks() uint64 {
	return dev.callbacks.Load()
}

// Completed reports whether the renderer has returned Complete.
func (dev *NullDevice) Completed() bool {
	return dev.complete.Load()
}

// Pull renders frames into the device's native byte encoding.
func (dev *NullDevice) Pull(frames int) ([]byte, CallbackResult) {
	size := frames * dev.format.FrameBytes()
	if cap(dev.buffer) < size {
		dev.buffer = make([]byte, size)
	}
	buf := dev.buffer[:size]

	return buf, dev.callback(func() CallbackResult { return dev.renderer.RenderBytes(buf) })
}

func (dev *NullDevice) PullFloat32(frames int) ([]float32, CallbackResult) {
	dev.f32 = grow(dev.f32, frames*dev.format.NumChannels)
	return dev.f32, dev.callback(func() CallbackResult { return dev.renderer.RenderFloat32(dev.f32) })
}

func (dev *NullDevice) PullInt16(frames int) ([]int16, CallbackResult) {
	dev.i16 = grow(dev.i16, frames*dev.format.NumChannels)
	return dev.i16, dev.callback(func() CallbackResult { return dev.renderer.RenderInt16(dev.i16) })
}

func (dev *NullDevice) PullUint16(frames int) ([]uint16, CallbackResult) {
	dev.u16 = grow(dev.u16, frames*dev.format.NumChannels)
	return dev.u16, dev.callback(func() CallbackResult { return dev.renderer.RenderUint16(dev.u16) })
}

func (dev *NullDevice) callback(render func() CallbackResult) CallbackResult {
	if dev.renderer == nil || dev.complete.Load() {
		return Complete
	}

	dev.callbacks.Add(1)

	result := render()
	if result == Complete {
		dev.complete.Store(true)
	}

	return result
}

func (dev *NullDevice) run() {
	defer close(dev.done)

	frames := int(float64(dev.format.SampleRate) * dev.period.Seconds())
	if frames < 1 {
		frames = 1
	}

	slog.Debug(fmt.Sprintf("null device running %d frames every %s", frames, dev.period))

	t := time.NewTicker(dev.period)
	defer t.Stop()

	for {
		select {
		case <-dev.stop:
			return
		case <-t.C:
			if _, result := dev.Pull(frames); result == Complete {
				slog.Debug("null device stream complete")
				return
			}
		}
	}
}

func grow[T any](buf []T, size int) []T {
	if cap(buf) < size {
		return make([]T, size)
	}
	return buf[:size]
}
