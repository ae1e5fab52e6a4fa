//go:build portaudio

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

	"github.com/gordonklaus/portaudio"
)

const portAudioBackendName = "portaudio"

func init() {
	Register(portAudioBackendName, openPortAudioDevice)
}

type PortAudioDevice struct {
	info   *portaudio.DeviceInfo
	format model.DeviceFormat
	opts   Options

	stream   *portaudio.Stream
	renderer Renderer

	underflows atomic.Uint64
	complete   chan struct{}
	stop       chan struct{}
	done       chan struct{}

	mutex sync.Mutex
}

func openPortAudioDevice(opts Options) (Device, error) {
	if opts.Encoding != model.EncodingF32 && opts.Encoding != model.EncodingI16 {
		return nil, fmt.Errorf("%w: portaudio cannot play %s samples", ErrFormat, opts.Encoding)
	}

	if err := portaudio.Initialize(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	info, err := portaudio.DefaultOutputDevice()
	if err != nil {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	channels := opts.ChannelCount
	if channels > info.MaxOutputChannels {
		channels = info.MaxOutputChannels
	}
	if channels < 1 {
		portaudio.Terminate()
		return nil, fmt.Errorf("%w: %s has no output channels", ErrNoDevice, info.Name)
	}

	slog.Info(fmt.Sprintf("portaudio default output: %s (%.0f Hz, %d channels)", info.Name, info.DefaultSampleRate, info.MaxOutputChannels))

	return &PortAudioDevice{
		info:     info,
		format:   model.NewDeviceFormat(int(info.DefaultSampleRate), channels, opts.Encoding),
		opts:     opts,
		complete: make(chan struct{}, 1),
	}, nil
}

func (pd *PortAudioDevice) Name() string {
	return portAudioBackendName + ":" + pd.info.Name
}

func (pd *PortAudioDevice) Format() model.DeviceFormat {
	return pd.format
}

func (pd *PortAudioDevice) Open(renderer Renderer) error {
	pd.mutex.Lock()
	defer pd.mutex.Unlock()

	if pd.stream != nil {
		return ErrOpen
	}

	params := portaudio.LowLatencyParameters(nil, pd.info)
	params.Output.Channels = pd.format.NumChannels
	params.SampleRate = float64(pd.format.SampleRate)
	params.FramesPerBuffer = portaudio.FramesPerBufferUnspecified

	var callback any
	switch pd.format.Encoding {
	case model.EncodingF32:
		callback = func(out []float32, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			pd.observe(flags, renderer.RenderFloat32(out))
		}
	case model.EncodingI16:
		callback = func(out []int16, _ portaudio.StreamCallbackTimeInfo, flags portaudio.StreamCallbackFlags) {
			pd.observe(flags, renderer.RenderInt16(out))
		}
	}

	stream, err := portaudio.OpenStream(params, callback)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrNoDevice, err)
	}

	pd.stream = stream
	pd.renderer = renderer

	return nil
}

// observe runs on the portaudio thread, so it only counts and signals.
func (pd *PortAudioDevice) observe(flags portaudio.StreamCallbackFlags, result CallbackResult) {
	if flags&portaudio.OutputUnderflow != 0 {
		pd.underflows.Add(1)
	}

	if result == Complete {
		select {
		case pd.complete <- struct{}{}:
		default:
		}
	}
}

func (pd *PortAudioDevice) Play() error {
	pd.mutex.Lock()
	defer pd.mutex.Unlock()

	if pd.stream == nil {
		return fmt.Errorf("%w: no renderer attached", ErrPlay)
	}

	if err := pd.stream.Start(); err != nil {
		return fmt.Errorf("%w: %v", ErrPlay, err)
	}

	pd.stop = make(chan struct{})
	pd.done = make(chan struct{})
	go pd.monitor()

	return nil
}

// monitor reports underflows and stops the stream once the renderer completes
func (pd *PortAudioDevice) monitor() {
	defer close(pd.done)

	t := time.NewTicker(500 * time.Millisecond)
	defer t.Stop()

	for {
		select {
		case <-pd.stop:
			return
		case <-pd.complete:
			slog.Debug("portaudio stream complete, stopping")
			pd.mutex.Lock()
			if pd.stream != nil {
				if err := pd.stream.Stop(); err != nil {
					pd.opts.reportError("portaudio: " + err.Error())
				}
			}
			pd.mutex.Unlock()
			return
		case <-t.C:
			if count := pd.underflows.Swap(0); count > 0 {
				pd.opts.reportXrun(count)
			}
		}
	}
}

func (pd *PortAudioDevice) Close() error {
	pd.mutex.Lock()
	stop, done := pd.stop, pd.done
	pd.stop, pd.done = nil, nil
	pd.mutex.Unlock()

	if stop != nil {
		close(stop)
		<-done
	}

	pd.mutex.Lock()
	defer pd.mutex.Unlock()

	var err error
	if pd.stream != nil {
		// Stop on an already stopped stream reports an error we don't care about
		pd.stream.Stop()
		err = pd.stream.Close()
		pd.stream = nil
	}

	if termErr := portaudio.Terminate(); err == nil {
		err = termErr
	}

	return err
}
