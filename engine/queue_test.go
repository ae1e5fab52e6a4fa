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
package engine

import (
	"errors"
	"sync"
	"sync/atomic"
	"testing"
)

func TestQueueFifo(t *testing.T) {
	q := NewQueue[int]()

	if _, ok := q.Pop(); ok {
		t.Fatal("pop on an empty queue returned a value")
	}

	for i := 0; i < 10; i++ {
		if err := q.Push(i); err != nil {
			t.Fatalf("push %d: %v", i, err)
		}
	}

	if q.Len() != 10 {
		t.Fatalf("len: got %d want 10", q.Len())
	}

	for i := 0; i < 10; i++ {
		value, ok := q.Pop()
		if !ok || value != i {
			t.Fatalf("pop: got %d (%v) want %d", value, ok, i)
		}
	}

	if q.Len() != 0 {
		t.Fatalf("len: got %d want 0", q.Len())
	}
}

func TestQueueClosed(t *testing.T) {
	q := NewQueue[string]()
	q.Push("before")
	q.Close()

	if err := q.Push("after"); !errors.Is(err, ErrSendAfterShutdown) {
		t.Fatalf("push after close: got %v want %v", err, ErrSendAfterShutdown)
	}

	if value, ok := q.Pop(); !ok || value != "before" {
		t.Fatalf("pop after close: got %q (%v)", value, ok)
	}

	if !q.Closed() {
		t.Fatal("queue does not report closed")
	}
}

func TestQueueConcurrentProducers(t *testing.T) {
	const producers = 4
	const perProducer = 5000

	q := NewQueue[int]()

	var wg sync.WaitGroup
	for p := 0; p < producers; p++ {
		wg.Add(1)
		go func(p int) {
			defer wg.Done()
			for i := 0; i < perProducer; i++ {
				q.Push(p*perProducer + i)
			}
		}(p)
	}

	done := make(chan struct{})
	go func() {
		wg.Wait()
		close(done)
	}()

	last := make([]int, producers)
	for i := range last {
		last[i] = -1
	}

	received := 0
	finished := false
	for received < producers*perProducer {
		value, ok := q.Pop()
		if !ok {
			if finished && q.Len() == 0 {
				t.Fatalf("queue drained after %d of %d values", received, producers*perProducer)
			}
			select {
			case <-done:
				finished = true
			default:
			}
			continue
		}

		// each producer's values arrive in the order it pushed them
		p := value / perProducer
		if value <= last[p] {
			t.Fatalf("producer %d: got %d after %d", p, value, last[p])
		}
		last[p] = value
		received++
	}
}

func TestQueueCloseWaitsForPushes(t *testing.T) {
	for round := 0; round < 50; round++ {
		q := NewQueue[int]()

		var accepted atomic.Int64
		var wg sync.WaitGroup
		start := make(chan struct{})

		for p := 0; p < 4; p++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				<-start
				for i := 0; i < 1000; i++ {
					if q.Push(i) != nil {
						return
					}
					accepted.Add(1)
				}
			}()
		}

		close(start)
		q.Close()

		// everything accepted before Close returned is already linked
		popped := int64(0)
		for {
			if _, ok := q.Pop(); !ok {
				break
			}
			popped++
		}

		wg.Wait()

		if late, ok := q.Pop(); ok {
			t.Fatalf("round %d: value %d linked after close returned", round, late)
		}
		if popped != accepted.Load() {
			t.Fatalf("round %d: popped %d of %d accepted values", round, popped, accepted.Load())
		}
	}
}
