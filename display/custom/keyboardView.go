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
	"slices"
	"sync"

	"fox-synth/display/theme"

	"code.rocketnine.space/tslocum/cview"
	"github.com/gdamore/tcell/v2"
)

const keyWidth = 3

var blackKeys = []int{1, 3, 6, 8, 10}

// KeyboardView draws the playable keys of the current octave with their
// bindings, highlighting held notes.
type KeyboardView struct {
	*cview.Box

	labels []rune
	octave int
	held   []int

	sync.RWMutex
}

func NewKeyboardView(labels string) *KeyboardView {
	view := &KeyboardView{
		Box:    cview.NewBox(),
		labels: []rune(labels),
	}
	view.SetBackgroundColor(cview.Styles.PrimitiveBackgroundColor)

	return view
}

func (view *KeyboardView) SetOctave(octave int) {
	view.Lock()
	defer view.Unlock()

	view.octave = octave
}

// SetHeld takes absolute note indexes; only those inside the visible octave
// window are drawn.
func (view *KeyboardView) SetHeld(notes []int) {
	view.Lock()
	defer view.Unlock()

	view.held = slices.Clone(notes)
}

func (view *KeyboardView) Draw(screen tcell.Screen) {
	if !view.GetVisible() {
		return
	}

	view.Box.Draw(screen)

	view.RLock()
	defer view.RUnlock()

	x, y, width, height := view.GetInnerRect()
	if height < 3 {
		return
	}

	background := view.GetBackgroundColor()
	base := 12 * view.octave

	for i, label := range view.labels {
		left := x + i*keyWidth
		if left+keyWidth > x+width {
			break
		}

		note := base + i
		color := theme.KeyWhite
		if slices.Contains(blackKeys, ((note%12)+12)%12) {
			color = theme.KeyBlack
		}
		if slices.Contains(view.held, note) {
			color = theme.KeyHeld
		}

		keyStyle := tcell.StyleDefault.Foreground(color).Background(background)
		labelStyle := tcell.StyleDefault.Foreground(theme.KeyLabel).Background(background)

		for w := 0; w < keyWidth-1; w++ {
			screen.SetContent(left+w, y, theme.RuneFilled, nil, keyStyle)
			screen.SetContent(left+w, y+1, theme.RuneFilled, nil, keyStyle)
		}
		screen.SetContent(left, y+2, label, nil, labelStyle.Bold(true))
	}

	octaveLabel := []rune(fmt.Sprintf("octave %+d", view.octave))
	left := x + len(view.labels)*keyWidth + 2
	for i, r := range octaveLabel {
		if left+i >= x+width {
			break
		}
		screen.SetContent(left+i, y+2, r, nil, tcell.StyleDefault.Foreground(theme.Gray).Background(background))
	}
}
