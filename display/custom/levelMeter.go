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
	"sort"
	"sync"
	"time"

	"fox-synth/display/theme"

	"code.rocketnine.space/tslocum/cview"
	"github.com/gdamore/tcell/v2"
)

// LevelMeter shows the output level of one device channel in dBFS. The meter
// is drawn dimmed while no note is sounding.
type LevelMeter struct {
	*cview.Box

	emptyRune  rune
	filledRune rune

	label  string
	active bool

	// Current levels
	level            int
	peakLevel        int
	peakHoldTimeMs   int
	lastPeakTime     int64
	longTermMaxLevel int

	maxLevel int
	minLevel int

	meterSteps []int

	inactiveColor tcell.Color

	// meter level to foreground color map
	colorMap map[int]tcell.Color

	sync.RWMutex
}

func NewLevelMeter(meterSteps []int, colorMap map[int]tcell.Color) *LevelMeter {
	p := &LevelMeter{
		Box:              cview.NewBox(),
		emptyRune:        theme.RuneEmpty,
		filledRune:       theme.RuneFilled,
		maxLevel:         slices.Max(meterSteps),
		minLevel:         slices.Min(meterSteps),
		peakHoldTimeMs:   750,
		peakLevel:        -150,
		level:            -150,
		longTermMaxLevel: -150,
		inactiveColor:    theme.LevelMeterInactiveFillColor,
		meterSteps:       meterSteps,
		colorMap:         colorMap,
	}
	p.SetBackgroundColor(cview.Styles.PrimitiveBackgroundColor)
	return p
}

func (p *LevelMeter) SetLabel(name string) {
	p.Lock()
	defer p.Unlock()

	p.label = name
}

func (p *LevelMeter) SetActive(active bool) {
	p.Lock()
	defer p.Unlock()

	p.active = active
}

func (p *LevelMeter) SetMinLevel(level int) {
	p.Lock()
	defer p.Unlock()

	p.minLevel = level
}

// ResetMax clears the long term maximum shown under the meter.
func (p *LevelMeter) ResetMax() {
	p.Lock()
	defer p.Unlock()

	p.longTermMaxLevel = p.minLevel
}

func (p *LevelMeter) GetLongTermMaxLevel() int {
	p.RLock()
	defer p.RUnlock()

	return p.longTermMaxLevel
}

// SetLevel sets the current level, clamped to the meter's range.
func (p *LevelMeter) SetLevel(level int) {
	p.Lock()
	defer p.Unlock()

	p.level = min(max(level, p.minLevel), p.maxLevel)

	if p.level > p.longTermMaxLevel {
		p.longTermMaxLevel = p.level
	}

	now := time.Now().UnixMilli()
	if p.level > p.peakLevel || (now-p.lastPeakTime) > int64(p.peakHoldTimeMs) {
		p.peakLevel = p.level
		p.lastPeakTime = now
	}
}

func getLevelColor(colorMap map[int]tcell.Color, currentLevel int) tcell.Color {
	keys := make([]int, 0, len(colorMap))

	for k := range colorMap {
		keys = append(keys, k)
	}
	sort.Sort(sort.Reverse(sort.IntSlice(keys)))

	for _, mapLevel := range keys {
		if currentLevel >= mapLevel {
			return colorMap[mapLevel]
		}
	}

	return tcell.ColorPurple
}

// Draw draws this primitive onto the screen.
func (p *LevelMeter) Draw(screen tcell.Screen) {
	if !p.GetVisible() {
		return
	}

	p.Box.Draw(screen)

	p.RLock()
	defer p.RUnlock()

	x, y, meterWidth, _ := p.GetInnerRect()
	background := p.GetBackgroundColor()

	drawText(screen, x, y, meterWidth, p.label, tcell.StyleDefault.Bold(true).Background(background))
	y += 1

	foundPeak := false
	for step, stepLevel := range p.meterSteps {
		doDraw := false
		foregroundColor := getLevelColor(p.colorMap, stepLevel)
		style := tcell.StyleDefault.Foreground(foregroundColor).Background(background)

		if !foundPeak && p.peakLevel >= stepLevel {
			foundPeak = true
			style = style.Bold(true)
			doDraw = true
		} else if p.level >= stepLevel {
			doDraw = true
		}

		if !p.active {
			style = style.Foreground(p.inactiveColor)
		}

		fill := p.emptyRune
		if doDraw {
			fill = p.filledRune
			style = style.Dim(!p.active)
		} else {
			style = style.Dim(true)
		}

		for w := 0; w < meterWidth; w++ {
			screen.SetContent(x+w, y+step, fill, nil, style)
		}
	}

	y += len(p.meterSteps)

	longTermMaxColor := getLevelColor(p.colorMap, p.longTermMaxLevel)
	drawText(screen, x, y, meterWidth, fmt.Sprintf("%d", -p.longTermMaxLevel),
		tcell.StyleDefault.Bold(true).Foreground(longTermMaxColor).Background(background))
}

// drawText right aligns value in a field of width cells
func drawText(screen tcell.Screen, x, y, width int, value string, style tcell.Style) {
	runes := []rune(fmt.Sprintf(fmt.Sprintf("%%%dv", width), value))

	for w := 0; w < width && w < len(runes); w++ {
		screen.SetContent(x+w, y, runes[w], nil, style)
	}
}
