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
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"strings"
	"sync"
	"time"

	"fox-synth/model"
)

type CallbackResult int8

const (
	// Continue asks the host to keep calling back.
	Continue CallbackResult = iota
	// Complete tells the host the stream is finished.
	Complete
)

// Renderer fills one interleaved device buffer per call. Every method runs on
// the host's audio thread and must not block.
type Renderer interface {
	RenderFloat32(out []float32) CallbackResult
	RenderInt16(out []int16) CallbackResult
	RenderUint16(out []uint16) CallbackResult
	RenderBytes(out []byte) CallbackResult
}

// Device is an opened default output device. Format is known as soon as the
// backend hands the device out; Open attaches the renderer, Play starts the
// stream and Close releases everything in reverse order.
type Device interface {
	Name() string
	Format() model.DeviceFormat
	Open(renderer Renderer) error
	Play() error
	Close() error
}

var (
	ErrNoDevice = errors.New("no default output device")
	ErrFormat   = errors.New("unsupported sample format")
	ErrPlay     = errors.New("output stream failed to start")
	ErrOpen     = errors.New("output stream already open")
)

type Options struct {
	SampleRate   int
	ChannelCount int
	Encoding     model.Encoding
	BufferSize   time.Duration

	// Period drives simulated devices; zero means the caller pulls buffers.
	Period time.Duration

	ErrorCallback func(message string)
	XrunCallback  func(count uint64)
}

func DefaultOptions() Options {
	return Options{
		SampleRate:   44100,
		ChannelCount: 2,
		Encoding:     model.EncodingF32,
		BufferSize:   10 * time.Millisecond,
		Period:       10 * time.Millisecond,
	}
}

func (opts Options) reportError(message string) {
	if opts.ErrorCallback != nil {
		opts.ErrorCallback(message)
		return
	}

	slog.Error(message)
}

func (opts Options) reportXrun(count uint64) {
	if opts.XrunCallback != nil {
		opts.XrunCallback(count)
		return
	}

	slog.Warn(fmt.Sprintf("%d output underflow(s)", count))
}

// Opener enumerates a backend's default output device.
type Opener func(opts Options) (Device, error)

var (
	backendsLock sync.RWMutex
	backends     = make(map[string]Opener)
)

func Register(name string, opener Opener) {
	backendsLock.Lock()
	defer backendsLock.Unlock()

	backends[strings.ToLower(name)] = opener
}

func Backends() []string {
	backendsLock.RLock()
	defer backendsLock.RUnlock()

	names := make([]string, 0, len(backends))
	for name := range backends {
		names = append(names, name)
	}
	slices.Sort(names)

	return names
}

// OpenDefault returns the default output device of the named backend.
func OpenDefault(backend string, opts Options) (Device, error) {
	backendsLock.RLock()
	opener, ok := backends[strings.ToLower(backend)]
	backendsLock.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: unknown backend %q (available: %s)", ErrNoDevice, backend, strings.Join(Backends(), ", "))
	}

	slog.Debug("Opening default output device", slog.String("backend", backend))

	return opener(opts)
}
