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
package custom

import (
	"fmt"
	"sync"
	"time"

	"code.rocketnine.space/tslocum/cview"
	"github.com/gdamore/tcell/v2"
)

// StatusText is a "Header: value" line. With SetFlash it shows every change
// of its value in the flash color until Fade is called after the hold time.
type StatusText struct {
	sync.Mutex

	grid       *cview.Grid
	headerView *cview.TextView
	valueView  *cview.TextView

	value      string
	color      tcell.Color
	shown      tcell.Color
	flashColor tcell.Color
	flashHold  time.Duration
	changedAt  time.Time
	flashing   bool
}

func NewStatusTextField(headerWidth int, name string, initialValue string) *StatusText {
	field := StatusText{
		grid:  cview.NewGrid(),
		color: tcell.ColorDefault,
		shown: tcell.ColorDefault,
	}

	field.grid.SetPadding(0, 0, 0, 0)
	field.grid.SetColumns(headerWidth, -1)
	field.grid.SetRows(1)

	field.headerView = cview.NewTextView()
	field.headerView.SetTextAlign(cview.AlignRight)
	field.headerView.Write([]byte(fmt.Sprintf("%s: ", name)))
	field.grid.AddItem(field.headerView, 0, 0, 1, 1, 0, 0, false)

	field.valueView = cview.NewTextView()
	field.grid.AddItem(field.valueView, 0, 1, 1, 1, 0, 0, false)

	field.value = initialValue
	field.valueView.Write([]byte(initialValue))

	return &field
}

// SetFlash highlights value changes in color for at least hold.
func (field *StatusText) SetFlash(color tcell.Color, hold time.Duration) {
	field.Lock()
	defer field.Unlock()

	field.flashColor = color
	field.flashHold = hold
}

func (field *StatusText) SetCurrentValue(value string) {
	field.setValue(value, time.Now())
}

func (field *StatusText) setValue(value string, now time.Time) {
	field.Lock()
	defer field.Unlock()

	if value == field.value {
		return
	}

	field.value = value
	field.valueView.Clear()
	field.valueView.Write([]byte(value))

	if field.flashHold > 0 {
		field.flashing = true
		field.changedAt = now
		field.show(field.flashColor)
	}
}

// SetColor sets the resting color, shown right away unless a flash is on.
func (field *StatusText) SetColor(color tcell.Color) {
	field.Lock()
	defer field.Unlock()

	field.color = color
	if !field.flashing {
		field.show(color)
	}
}

// Fade ends a flash whose hold time has passed by now.
func (field *StatusText) Fade(now time.Time) {
	field.Lock()
	defer field.Unlock()

	if field.flashing && now.Sub(field.changedAt) >= field.flashHold {
		field.flashing = false
		field.show(field.color)
	}
}

func (field *StatusText) show(color tcell.Color) {
	if color == field.shown {
		return
	}

	field.shown = color
	field.valueView.SetTextColor(color)
}

func (field *StatusText) GetGrid() *cview.Grid {
	return field.grid
}
