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
package app

import (
	"log/slog"
)

func audioError(message string) {
	slog.Error("Audio: " + message)
}
