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
	"math"
	"sync"

	"fox-synth/display/theme"

	"code.rocketnine.space/tslocum/cview"
	"github.com/gdamore/tcell/v2"
)

const (
	spectrumFloorDb = -60.0
)

// SpectrumView draws band magnitudes as vertical bars on a dB scale.
type SpectrumView struct {
	*cview.Box

	bands    []float64
	dominant int

	sync.RWMutex
}

func NewSpectrumView() *SpectrumView {
	view := &SpectrumView{
		Box:      cview.NewBox(),
		dominant: -1,
	}
	view.SetBackgroundColor(cview.Styles.PrimitiveBackgroundColor)

	return view
}

// SetBands takes magnitudes where 1.0 is full scale. dominant is the index
// of the highlighted band, or -1.
func (view *SpectrumView) SetBands(bands []float64, dominant int) {
	view.Lock()
	defer view.Unlock()

	if cap(view.bands) < len(bands) {
		view.bands = make([]float64, len(bands))
	}
	view.bands = view.bands[:len(bands)]
	copy(view.bands, bands)
	view.dominant = dominant
}

func (view *SpectrumView) Draw(screen tcell.Screen) {
	if !view.GetVisible() {
		return
	}

	view.Box.Draw(screen)

	view.RLock()
	defer view.RUnlock()

	x, y, width, height := view.GetInnerRect()
	if height < 1 {
		return
	}

	background := view.GetBackgroundColor()
	steps := len(theme.RuneBars) - 1

	for band, magnitude := range view.bands {
		column := x + band*2
		if column >= x+width {
			break
		}

		color := theme.SpectrumBar
		if band == view.dominant {
			color = theme.SpectrumAccent
		}
		style := tcell.StyleDefault.Foreground(color).Background(background)

		// eighths of a cell to fill, bottom up
		fill := int(math.Round(barHeight(magnitude) * float64(height*steps)))

		for row := 0; row < height; row++ {
			cell := min(max(fill-row*steps, 0), steps)
			screen.SetContent(column, y+height-1-row, theme.RuneBars[cell], nil, style)
		}
	}
}

func barHeight(magnitude float64) float64 {
	if magnitude <= 0 {
		return 0
	}

	db := 20.0 * math.Log10(magnitude)
	if db <= spectrumFloorDb {
		return 0
	}

	return min((db-spectrumFloorDb)/-spectrumFloorDb, 1.0)
}
