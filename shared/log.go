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
	"bufio"
	"fmt"
	"log/slog"
	"os"
	"sync"
)

type LogHandler func(LogLevel, string)
type LogLevel int8

const (
	ERROR LogLevel = iota
	WARN
	INFO
	DEBUG
)

var (
	sinkLock    sync.RWMutex
	stockStderr *os.File
	stockStdout *os.File
	logSinks    = make([]LogHandler, 0)
)

func (s LogLevel) String() string {
	switch s {
	case ERROR:
		return "Error"
	case WARN:
		return "Warning"
	case INFO:
		return "Info"
	case DEBUG:
		return "Debug"
	}
	return "unknown"
}

//------------------------------------------------------------------
// public functions
//------------------------------------------------------------------

// HijackLogging routes anything written to stdout or stderr, including the
// chatter of native audio libraries, through the log sinks so it cannot tear
// up the terminal UI. The returned function puts the original files back.
func HijackLogging() func() {
	stockStdout = os.Stdout
	stockStderr = os.Stderr

	stdout_r, stdout_w, err := os.Pipe()
	if err != nil {
		fmt.Fprintln(stockStderr, err)
		return func() {}
	}
	go logProcessor(stdout_r, INFO)

	stderr_r, stderr_w, err := os.Pipe()
	if err != nil {
		fmt.Fprintln(stockStderr, err)
		stdout_w.Close()
		return func() {}
	}
	go logProcessor(stderr_r, ERROR)

	os.Stdout = stdout_w
	os.Stderr = stderr_w

	return func() {
		os.Stdout = stockStdout
		os.Stderr = stockStderr

		stdout_w.Close()
		stderr_w.Close()
	}
}

// StockStdout is the process' stdout from before HijackLogging.
func StockStdout() *os.File {
	if stockStdout == nil {
		return os.Stdout
	}
	return stockStdout
}

func EnableSlogLogging() {
	AddLogSink(slogLogger)
}

func AddLogSink(fn LogHandler) {
	sinkLock.Lock()
	defer sinkLock.Unlock()

	logSinks = append(logSinks, fn)
}

//------------------------------------------------------------------
// private functions
//------------------------------------------------------------------

func slogLogger(level LogLevel, message string) {
	if level == ERROR {
		slog.Error(message)
	} else if level == WARN {
		slog.Warn(message)
	} else if level == INFO {
		slog.Info(message)
	} else if level == DEBUG {
		slog.Debug(message)
	}
}

func logProcessor(pipe *os.File, level LogLevel) {
	defer pipe.Close()

	scanner := bufio.NewScanner(pipe)

	for scanner.Scan() {
		line := scanner.Text()

		sinkLock.RLock()
		sinks := logSinks
		sinkLock.RUnlock()

		for _, logger := range sinks {
			logger(level, line)
		}
	}
}
