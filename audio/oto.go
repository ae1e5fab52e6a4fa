//go:build !headless

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
	"io"
	"log/slog"
	"sync"

	"fox-synth/model"

	"github.com/ebitengine/oto/v3"
)

const otoBackendName = "oto"

func init() {
	Register(otoBackendName, openOtoDevice)
}

// oto allows a single context per process
var (
	otoContext        *oto.Context
	otoContextOptions oto.NewContextOptions
	otoContextLock    sync.Mutex
)

type OtoDevice struct {
	format   model.DeviceFormat
	opts     Options
	player   *oto.Player
	renderer Renderer
	started  bool
	mutex    sync.Mutex
}

func otoFormat(encoding model.Encoding) (oto.Format, error) {
	switch encoding {
	case model.EncodingF32:
		return oto.FormatFloat32LE, nil
	case model.EncodingI16:
		return oto.FormatSignedInt16LE, nil
	}

	return 0, fmt.Errorf("%w: oto cannot play %s samples", ErrFormat, encoding)
}

func openOtoDevice(opts Options) (Device, error) {
	format, err := otoFormat(opts.Encoding)
	if err != nil {
		return nil, err
	}

	op := oto.NewContextOptions{
		SampleRate:   opts.SampleRate,
		ChannelCount: opts.ChannelCount,
		Format:       format,
		BufferSize:   opts.BufferSize,
	}

	otoContextLock.Lock()
	defer otoContextLock.Unlock()

	if otoContext == nil {
		ctx, ready, err := oto.NewContext(&op)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNoDevice, err)
		}
		<-ready

		otoContext = ctx
		otoContextOptions = op
	} else if otoContextOptions != op {
		return nil, fmt.Errorf("%w: oto context already opened with %d Hz / %d channels", ErrFormat, otoContextOptions.SampleRate, otoContextOptions.ChannelCount)
	}

	return &OtoDevice{
		format: model.NewDeviceFormat(op.SampleRate, op.ChannelCount, opts.Encoding),
		opts:   opts,
	}, nil
}

func (od *OtoDevice) Name() string {
	return otoBackendName
}

func (od *OtoDevice) Format() model.DeviceFormat {
	return od.format
}

func (od *OtoDevice) Open(renderer Renderer) error {
	od.mutex.Lock()
	defer od.mutex.Unlock()

	if od.player != nil {
		return ErrOpen
	}

	od.renderer = renderer
	od.player = otoContext.NewPlayer(&otoReader{
		renderer:   renderer,
		frameBytes: od.format.FrameBytes(),
	})

	return nil
}

func (od *OtoDevice) Play() error {
	od.mutex.Lock()
	defer od.mutex.Unlock()

	if od.player == nil {
		return fmt.Errorf("%w: no renderer attached", ErrPlay)
	}

	if !od.started {
		od.player.Play()
		od.started = true
	}

	if err := od.player.Err(); err != nil {
		return fmt.Errorf("%w: %v", ErrPlay, err)
	}

	return nil
}

func (od *OtoDevice) Close() error {
	od.mutex.Lock()
	defer od.mutex.Unlock()

	if od.player == nil {
		return nil
	}

	if err := od.player.Err(); err != nil {
		od.opts.reportError("oto: " + err.Error())
	}

	err := od.player.Close()
	od.player = nil
	od.started = false

	slog.Debug("oto player closed")

	return err
}

// otoReader is the pull side of the oto player; Read runs on oto's mixing goroutine.
type otoReader struct {
	renderer   Renderer
	frameBytes int
	complete   bool
}

func (r *otoReader) Read(p []byte) (int, error) {
	if r.complete {
		return 0, io.EOF
	}

	n := len(p) - len(p)%r.frameBytes
	if n == 0 {
		return 0, nil
	}

	if r.renderer.RenderBytes(p[:n]) == Complete {
		r.complete = true
		return n, io.EOF
	}

	return n, nil
}
