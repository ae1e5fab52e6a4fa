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
package reaper

import (
	"log/slog"
	"slices"
	"sync"
)

var (
	lock                sync.Mutex
	reapRequested       chan bool
	reaperCallbacks     []callback
	reaperRegistrations []string
	reaperWaitgroup     *sync.WaitGroup
)

type callback struct {
	name         string
	callbackFunc func()
}

func init() {
	Reset()
}

// Reset forgets every callback and registration.
func Reset() {
	lock.Lock()
	defer lock.Unlock()

	reapRequested = make(chan bool, 1)
	reaperCallbacks = make([]callback, 0)
	reaperWaitgroup = &sync.WaitGroup{}
	reaperRegistrations = make([]string, 0)
}

func Reaped() bool {
	lock.Lock()
	defer lock.Unlock()

	return len(reapRequested) > 0
}

// Reap runs the registered callbacks once, newest first.
func Reap() {
	lock.Lock()
	if len(reapRequested) > 0 {
		lock.Unlock()
		return
	}

	reapRequested <- true

	callbacksReversed := slices.Clone(reaperCallbacks)
	slices.Reverse(callbacksReversed)
	lock.Unlock()

	for _, callback := range callbacksReversed {
		slog.Info("reaper: calling reap callback for '" + callback.name + "'")
		callback.callbackFunc()
	}
}

func Callback(name string, callbackFunc func()) {
	lock.Lock()
	defer lock.Unlock()

	reaperCallbacks = append(reaperCallbacks, callback{
		name:         name,
		callbackFunc: callbackFunc,
	})
}

func Register(name string) {
	lock.Lock()
	defer lock.Unlock()

	if slices.Contains(reaperRegistrations, name) {
		slog.Warn("reaper: already registered '" + name + "'")
		return
	}

	reaperRegistrations = append(reaperRegistrations, name)
	reaperWaitgroup.Add(1)
	slog.Debug("reaper: registered '" + name + "'")
}

func Done(name string) {
	lock.Lock()
	defer lock.Unlock()

	if !slices.Contains(reaperRegistrations, name) {
		slog.Warn("reaper: already done or doesn't exist: '" + name + "'")
		return
	}

	reaperRegistrations = slices.DeleteFunc(reaperRegistrations, func(test string) bool {
		return test == name
	})

	slog.Debug("reaper: done: '" + name + "'")
	reaperWaitgroup.Done()
}

// Wait blocks until every registered goroutine called Done.
func Wait() {
	lock.Lock()
	wg := reaperWaitgroup
	lock.Unlock()

	wg.Wait()
}
