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

import "testing"

func TestDeviceFormat(t *testing.T) {
	tests := []struct {
		format     DeviceFormat
		valid      bool
		frameBytes int
		name       string
	}{
		{NewDeviceFormat(44100, 2, EncodingF32), true, 8, "32bit float / 44.1KHz / 2ch"},
		{NewDeviceFormat(48000, 1, EncodingI16), true, 2, "16bit / 48KHz / 1ch"},
		{NewDeviceFormat(22050, 6, EncodingU16), true, 12, "16bit unsigned / 22.05KHz / 6ch"},
		{NewDeviceFormat(44100, 0, EncodingF32), false, 0, ""},
		{NewDeviceFormat(0, 2, EncodingF32), false, 8, ""},
		{NewDeviceFormat(44100, 2, Encoding(9)), false, 4, ""},
	}

	for _, test := range tests {
		err := test.format.Validate()
		if (err == nil) != test.valid {
			t.Errorf("%+v: valid %v, err %v", test.format, test.valid, err)
			continue
		}

		if !test.valid {
			continue
		}

		if got := test.format.FrameBytes(); got != test.frameBytes {
			t.Errorf("%+v: frame bytes %d want %d", test.format, got, test.frameBytes)
		}
		if got := test.format.String(); got != test.name {
			t.Errorf("%+v: got %q want %q", test.format, got, test.name)
		}
	}
}

func TestParseEncoding(t *testing.T) {
	for name, want := range map[string]Encoding{"f32": EncodingF32, " I16 ": EncodingI16, "u16": EncodingU16} {
		got, err := ParseEncoding(name)
		if err != nil || got != want {
			t.Errorf("%q: got %v (%v) want %v", name, got, err, want)
		}
	}

	if _, err := ParseEncoding("s24"); err == nil {
		t.Fatal("parsed s24")
	}
}

func TestParseParam(t *testing.T) {
	for _, param := range Params {
		got, err := ParseParam(param.String())
		if err != nil || got != param {
			t.Errorf("%s: got %v (%v)", param, got, err)
		}
	}

	if _, err := ParseParam("cutoff"); err == nil {
		t.Fatal("parsed cutoff")
	}
}

func TestKeyEventString(t *testing.T) {
	if got := PressKey(-2).String(); got != "press(-2)" {
		t.Fatalf("got %q", got)
	}
	if got := ReleaseKey(5).String(); got != "release(5)" {
		t.Fatalf("got %q", got)
	}
}
