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
package model

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-audio/audio"
)

type Encoding int8

const (
	EncodingF32 Encoding = iota
	EncodingI16
	EncodingU16
)

var EncodingMap = map[string]Encoding{
	"f32": EncodingF32,
	"i16": EncodingI16,
	"u16": EncodingU16,
}

func (e Encoding) String() string {
	switch e {
	case EncodingF32:
		return "f32"
	case EncodingI16:
		return "i16"
	case EncodingU16:
		return "u16"
	}
	return "unknown"
}

func (e Encoding) Valid() bool {
	return e >= EncodingF32 && e <= EncodingU16
}

// BytesPerSample is the size of one little endian sample on the wire.
func (e Encoding) BytesPerSample() int {
	if e == EncodingF32 {
		return 4
	}
	return 2
}

func ParseEncoding(name string) (Encoding, error) {
	encoding, ok := EncodingMap[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return 0, fmt.Errorf("unknown sample encoding: %q", name)
	}

	return encoding, nil
}

// DeviceFormat describes the interleaved stream an output device expects.
type DeviceFormat struct {
	audio.Format
	Encoding Encoding
}

func NewDeviceFormat(sampleRate int, channels int, encoding Encoding) DeviceFormat {
	return DeviceFormat{
		Format: audio.Format{
			NumChannels: channels,
			SampleRate:  sampleRate,
		},
		Encoding: encoding,
	}
}

func (f DeviceFormat) Validate() error {
	if f.NumChannels < 1 {
		return fmt.Errorf("channel count must be >= 1: %d", f.NumChannels)
	}
	if f.SampleRate <= 0 {
		return fmt.Errorf("sample rate must be > 0: %d", f.SampleRate)
	}
	if !f.Encoding.Valid() {
		return errors.New("invalid sample encoding")
	}

	return nil
}

// SampleTime is the duration of one frame in seconds.
func (f DeviceFormat) SampleTime() float64 {
	return 1.0 / float64(f.SampleRate)
}

// FrameBytes is the size of one interleaved frame in bytes.
func (f DeviceFormat) FrameBytes() int {
	return f.NumChannels * f.Encoding.BytesPerSample()
}

func (f DeviceFormat) String() string {
	sampleRateStr := strconv.FormatFloat(float64(f.SampleRate)/1000.0, 'f', -1, 64)

	bits := "16bit"
	switch f.Encoding {
	case EncodingF32:
		bits = "32bit float"
	case EncodingU16:
		bits = "16bit unsigned"
	}

	return fmt.Sprintf("%s / %sKHz / %dch", bits, sampleRateStr, f.NumChannels)
}
