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
package shared

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"fox-synth/display"
)

// UiLogHandler writes log records to whichever UI is active and reports
// errors through errorCallback.
type UiLogHandler struct {
	level         slog.Leveler
	ui            display.UI
	attrs         []slog.Attr
	errorCallback func(string)
}

func NewUiLogHandler(out display.UI, level slog.Leveler, errorCallback func(string)) *UiLogHandler {
	h := &UiLogHandler{
		level:         level,
		ui:            out,
		errorCallback: errorCallback,
	}

	return h
}

func (h *UiLogHandler) Handle(ctx context.Context, r slog.Record) error {
	message := r.Message

	if len(h.attrs) > 0 || r.NumAttrs() > 0 {
		var builder strings.Builder
		builder.WriteString(message)

		for _, attr := range h.attrs {
			fmt.Fprintf(&builder, " %s=%v", attr.Key, attr.Value)
		}

		r.Attrs(func(attr slog.Attr) bool {
			fmt.Fprintf(&builder, " %s=%v", attr.Key, attr.Value)
			return true
		})

		message = builder.String()
	}

	h.ui.WriteLevelLog(r.Level, message)

	if r.Level == slog.LevelError && h.errorCallback != nil {
		h.errorCallback(message)
	}

	return nil
}

func (h *UiLogHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return level >= h.level.Level()
}

func (h *UiLogHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	clone := *h
	clone.attrs = append(clone.attrs[:len(clone.attrs):len(clone.attrs)], attrs...)

	return &clone
}

func (h *UiLogHandler) WithGroup(name string) slog.Handler {
	return h
}
