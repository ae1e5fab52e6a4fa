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
	"slices"
	"testing"
	"time"
)

func TestReapRunsCallbacksNewestFirst(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	var order []string
	Callback("first", func() { order = append(order, "first") })
	Callback("second", func() { order = append(order, "second") })
	Callback("third", func() { order = append(order, "third") })

	if Reaped() {
		t.Fatal("reaped before Reap")
	}

	Reap()
	Reap()

	want := []string{"third", "second", "first"}
	if !slices.Equal(order, want) {
		t.Fatalf("order: got %v want %v", order, want)
	}

	if !Reaped() {
		t.Fatal("not reaped after Reap")
	}
}

func TestWaitForRegistrations(t *testing.T) {
	Reset()
	t.Cleanup(Reset)

	stop := make(chan struct{})
	Callback("worker", func() { close(stop) })

	Register("worker")
	Register("worker")

	go func() {
		<-stop
		Done("worker")
		Done("worker")
	}()

	waited := make(chan struct{})
	go func() {
		Wait()
		close(waited)
	}()

	select {
	case <-waited:
		t.Fatal("wait returned before reap")
	case <-time.After(20 * time.Millisecond):
	}

	Reap()

	select {
	case <-waited:
	case <-time.After(time.Second):
		t.Fatal("wait did not return after reap")
	}
}
