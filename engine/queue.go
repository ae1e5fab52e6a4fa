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
	"runtime"
	"sync/atomic"
)

type node[T any] struct {
	next  atomic.Pointer[node[T]]
	value T
}

// Queue is an unbounded FIFO hand-off from control goroutines to the audio
// worker. Push allocates a node and never blocks. Pop never blocks and never
// allocates, so it is safe on the audio thread. Only one goroutine may Pop.
type Queue[T any] struct {
	head    *node[T]
	tail    atomic.Pointer[node[T]]
	pending atomic.Int64
	pushing atomic.Int64
	closed  atomic.Bool
}

func NewQueue[T any]() *Queue[T] {
	stub := &node[T]{}

	q := &Queue[T]{head: stub}
	q.tail.Store(stub)

	return q
}

// Push appends value. It fails with ErrSendAfterShutdown once the queue is closed.
func (q *Queue[T]) Push(value T) error {
	q.pushing.Add(1)
	defer q.pushing.Add(-1)

	if q.closed.Load() {
		return ErrSendAfterShutdown
	}

	n := &node[T]{value: value}
	q.pending.Add(1)
	prev := q.tail.Swap(n)
	prev.next.Store(n)

	return nil
}

// Pop takes the oldest value. A push that is still linking its node is
// reported as empty and picked up by a later Pop.
func (q *Queue[T]) Pop() (T, bool) {
	var zero T

	next := q.head.next.Load()
	if next == nil {
		return zero, false
	}

	value := next.value
	next.value = zero
	q.head = next
	q.pending.Add(-1)

	return value, true
}

func (q *Queue[T]) Len() int {
	return int(q.pending.Load())
}

// Close rejects further pushes and waits for pushes already past the check
// to link their values, so a Pop after Close sees everything accepted.
// Values already queued can still be popped.
func (q *Queue[T]) Close() {
	q.closed.Store(true)

	for q.pushing.Load() > 0 {
		runtime.Gosched()
	}
}

func (q *Queue[T]) Closed() bool {
	return q.closed.Load()
}
