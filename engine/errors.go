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
	"errors"
	"fmt"

	"fox-synth/audio"
)

var (
	ErrDeviceUnavailable = errors.New("device unavailable")
	ErrUnsupportedFormat = errors.New("unsupported format")
	ErrStreamStartFailed = errors.New("stream start failed")
	ErrSendAfterShutdown = errors.New("send after shutdown")
	ErrProcessorPanic    = errors.New("processor panic")
	ErrNilProcessor      = errors.New("nil processor")
)

// StartError is returned by Start when the engine cannot reach Running.
// Kind is one of ErrDeviceUnavailable, ErrUnsupportedFormat or ErrStreamStartFailed.
type StartError struct {
	Kind    error
	Backend string
	Err     error
}

func (e *StartError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("audio engine failed to start on %s: %v", e.Backend, e.Kind)
	}

	return fmt.Sprintf("audio engine failed to start on %s: %v: %v", e.Backend, e.Kind, e.Err)
}

func (e *StartError) Unwrap() []error {
	if e.Err == nil {
		return []error{e.Kind}
	}

	return []error{e.Kind, e.Err}
}

func newStartError(kind error, backend string, err error) *StartError {
	return &StartError{
		Kind:    kind,
		Backend: backend,
		Err:     err,
	}
}

// classify maps device layer failures onto start error kinds
func classify(err error, fallback error) error {
	switch {
	case errors.Is(err, audio.ErrFormat):
		return ErrUnsupportedFormat
	case errors.Is(err, audio.ErrNoDevice):
		return ErrDeviceUnavailable
	case errors.Is(err, audio.ErrPlay):
		return ErrStreamStartFailed
	}

	return fallback
}
