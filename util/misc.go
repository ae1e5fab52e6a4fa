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
package util

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v2"
)

const (
	ConfigDirName = "fox"

	// MinDb is the floor reported for silence
	MinDb = -96
)

var ErrNoYamlFile = errors.New("no yaml file found")

var noteNames = []string{"C", "C#", "D", "D#", "E", "F", "F#", "G", "G#", "A", "A#", "B"}

func FileExists(path string) bool {
	// if an error occurred or its a directory, we throw up
	if stat, err := os.Stat(path); err != nil || stat.IsDir() {
		return false
	}

	return true
}

func ResolveHomeDirPath(testPath string) (string, error) {
	if strings.HasPrefix(testPath, "~/") {
		homeDir, err := os.UserHomeDir()

		if err != nil {
			return "", errors.New("could not find user home dir: " + err.Error())
		}

		return path.Join(homeDir, testPath[2:]), nil
	}

	return testPath, nil
}

// FindYamlFile resolves fileName the way every fox tool does: absolute paths
// as given, ~/ against the home dir, otherwise next to the executable, then
// the working directory, then ~/.config/fox.
func FindYamlFile(fileName string) (string, error) {
	if fileName == "" {
		return "", errors.New("no yaml file specified")
	}

	if path.IsAbs(fileName) {
		if !FileExists(fileName) {
			return "", errors.New("the specified yaml file does not exist: " + fileName)
		}
		return fileName, nil
	}

	if strings.HasPrefix(fileName, "~/") {
		testFilePath, err := ResolveHomeDirPath(fileName)
		if err != nil {
			return "", err
		}

		if FileExists(testFilePath) {
			return testFilePath, nil
		}

		return "", errors.New("the specified yaml file does not exist: " + testFilePath)
	}

	candidates := make([]string, 0, 3)

	// check path where executable lives
	if binPath, err := os.Executable(); err == nil {
		candidates = append(candidates, path.Join(filepath.Dir(binPath), fileName))
	}

	// check working directory
	if cwd, err := os.Getwd(); err == nil {
		candidates = append(candidates, path.Join(cwd, fileName))
	}

	// check user config directory
	if homeDir, err := os.UserHomeDir(); err == nil {
		candidates = append(candidates, path.Join(homeDir, ".config", ConfigDirName, fileName))
	}

	for _, candidate := range candidates {
		if FileExists(candidate) {
			return candidate, nil
		}
	}

	return "", fmt.Errorf("%w: %s", ErrNoYamlFile, fileName)
}

func ReadYamlFile(cfg interface{}, fileName string) error {
	filePath, err := FindYamlFile(fileName)
	if err != nil {
		return err
	}

	slog.Info("Reading yaml from " + filePath)

	f, err := os.Open(filePath)
	if err != nil {
		return err
	}
	defer f.Close()

	decoder := yaml.NewDecoder(f)
	err = decoder.Decode(cfg)
	if err != nil {
		return fmt.Errorf("decoding %s: %w", filePath, err)
	}

	return nil
}

func TraceLog(message string, args ...any) {
	slog.Log(context.Background(), slog.Level(-10), message, args...)
}

func FormatDuration(duration float64) string {
	hours := 0
	minutes := 0
	seconds := 0

	if duration > 3600 {
		hours = int(duration) / 3600
		duration -= float64(hours) * 3600.0
	}

	if duration > 60 {
		minutes = int(duration) / 60
		duration -= float64(minutes) * 60
	}

	seconds = int(duration)
	duration -= float64(seconds)

	mseconds := int(duration * 1000)

	return fmt.Sprintf("%02d:%02d:%02d.%03d", hours, minutes, seconds, mseconds)
}

// AmplitudeToDb converts a linear peak to dBFS, floored at MinDb.
func AmplitudeToDb(amplitude float64) int {
	if amplitude <= 0 || math.IsNaN(amplitude) {
		return MinDb
	}

	db := 20.0 * math.Log10(amplitude)
	if db < MinDb {
		return MinDb
	}

	return int(math.Round(db))
}

// FormatNote names note relative to C4 at index 0, e.g. "D#5".
func FormatNote(note int) string {
	octave := 4 + int(math.Floor(float64(note)/12.0))
	name := noteNames[((note%12)+12)%12]

	return fmt.Sprintf("%s%d", name, octave)
}

// GetChanAverage drains whatever is buffered in ch and averages it. NaN when
// nothing was buffered.
func GetChanAverage[T ~int64 | ~float64](ch chan T) float64 {
	sum := 0.0
	count := 0

	for {
		select {
		case value := <-ch:
			sum += float64(value)
			count++
		default:
			return sum / float64(count)
		}
	}
}
