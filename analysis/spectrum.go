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
package analysis

import (
	"math"

	"github.com/cwbudde/algo-vecmath"
)

const (
	DefaultBands   = 24
	LowestBandHz   = 55.0
	BandsPerOctave = 3.0
)

// Spectrum is a coarse analysis of one scope block.
type Spectrum struct {
	// Bands holds the magnitude of each band, normalized so a full scale
	// sine centered on a band reads 1.0.
	Bands []float64

	// Dominant is the center frequency of the loudest band, zero for silence.
	Dominant float64
	RMS      float64
}

// Analyzer correlates a Hann windowed block against one complex sinusoid per
// band. The tables are built once; Analyze only writes into its own scratch.
type Analyzer struct {
	sampleRate float64
	blockSize  int
	centers    []float64

	window []float64
	cos    [][]float64
	sin    [][]float64

	windowed []float64
	re       []float64
	im       []float64
	scale    float64
}

func NewAnalyzer(sampleRate int, blockSize int, bands int) *Analyzer {
	if bands <= 0 {
		bands = DefaultBands
	}

	analyzer := &Analyzer{
		sampleRate: float64(sampleRate),
		blockSize:  blockSize,
		centers:    make([]float64, 0, bands),
		window:     make([]float64, blockSize),
		windowed:   make([]float64, blockSize),
		re:         make([]float64, bands),
		im:         make([]float64, bands),
	}

	sum := 0.0
	for n := range analyzer.window {
		analyzer.window[n] = 0.5 - 0.5*math.Cos(2.0*math.Pi*float64(n)/float64(blockSize))
		sum += analyzer.window[n]
	}
	if sum > 0 {
		analyzer.scale = 2.0 / sum
	}

	nyquist := analyzer.sampleRate / 2.0
	for band := range bands {
		center := LowestBandHz * math.Pow(2.0, float64(band)/BandsPerOctave)
		if center >= nyquist {
			break
		}

		cosTable := make([]float64, blockSize)
		sinTable := make([]float64, blockSize)
		for n := range blockSize {
			angle := 2.0 * math.Pi * center * float64(n) / analyzer.sampleRate
			cosTable[n] = math.Cos(angle)
			sinTable[n] = math.Sin(angle)
		}

		analyzer.centers = append(analyzer.centers, center)
		analyzer.cos = append(analyzer.cos, cosTable)
		analyzer.sin = append(analyzer.sin, sinTable)
	}

	analyzer.re = analyzer.re[:len(analyzer.centers)]
	analyzer.im = analyzer.im[:len(analyzer.centers)]

	return analyzer
}

func (analyzer *Analyzer) BlockSize() int {
	return analyzer.blockSize
}

// Centers returns the center frequency of every band.
func (analyzer *Analyzer) Centers() []float64 {
	return analyzer.centers
}

// Analyze measures block, which must hold BlockSize samples. Shorter blocks
// are zero padded.
func (analyzer *Analyzer) Analyze(block []float64) Spectrum {
	clear(analyzer.windowed)
	n := copy(analyzer.windowed, block)

	rms := 0.0
	for _, s := range analyzer.windowed[:n] {
		rms += s * s
	}
	if n > 0 {
		rms = math.Sqrt(rms / float64(n))
	}

	vecmath.MulBlockInPlace(analyzer.windowed, analyzer.window)

	for band := range analyzer.centers {
		analyzer.re[band] = dot(analyzer.windowed, analyzer.cos[band])
		analyzer.im[band] = -dot(analyzer.windowed, analyzer.sin[band])
	}

	spectrum := Spectrum{
		Bands: make([]float64, len(analyzer.centers)),
		RMS:   rms,
	}

	vecmath.Magnitude(spectrum.Bands, analyzer.re, analyzer.im)
	vecmath.ScaleBlock(spectrum.Bands, spectrum.Bands, analyzer.scale)

	loudest := 0.0
	for band, magnitude := range spectrum.Bands {
		if magnitude > loudest {
			loudest = magnitude
			spectrum.Dominant = analyzer.centers[band]
		}
	}

	if loudest < 1e-4 {
		spectrum.Dominant = 0
	}

	return spectrum
}

func dot(a, b []float64) float64 {
	sum := 0.0
	for i := range a {
		sum += a[i] * b[i]
	}
	return sum
}
