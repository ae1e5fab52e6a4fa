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
	"fmt"
	"log/slog"
	"sync"
	"time"

	"fox-synth/audio"
	"fox-synth/model"
)

const (
	DefaultMaxFrames       = 4096
	DefaultShutdownTimeout = 250 * time.Millisecond
	DefaultEventBuffer     = 64

	metricsBuffer  = 32
	keyCapacity    = 16
	reportInterval = time.Second
)

type options struct {
	maxFrames       int
	shutdownTimeout time.Duration
	eventBuffer     int
	metricsBuffer   int
	keyCapacity     int
	scopeBlock      int
	logger          *slog.Logger
}

func (opts options) scope() *scopeTap {
	if opts.scopeBlock <= 0 {
		return nil
	}
	return newScopeTap(opts.scopeBlock)
}

type Option func(opts *options)

// WithMaxFrames sizes the worker's scratch buffer. Larger device buffers still
// work but cost one allocation on the audio thread.
func WithMaxFrames(frames int) Option {
	return func(opts *options) {
		if frames > 0 {
			opts.maxFrames = frames
		}
	}
}

func WithShutdownTimeout(timeout time.Duration) Option {
	return func(opts *options) {
		if timeout > 0 {
			opts.shutdownTimeout = timeout
		}
	}
}

func WithEventBuffer(size int) Option {
	return func(opts *options) {
		if size > 0 {
			opts.eventBuffer = size
		}
	}
}

// WithScope makes the worker hand out copies of the generated signal in
// blocks of size samples, see Controller.Scope.
func WithScope(size int) Option {
	return func(opts *options) {
		opts.scopeBlock = size
	}
}

func WithLogger(logger *slog.Logger) Option {
	return func(opts *options) {
		if logger != nil {
			opts.logger = logger
		}
	}
}

func defaultOptions() options {
	return options{
		maxFrames:       DefaultMaxFrames,
		shutdownTimeout: DefaultShutdownTimeout,
		eventBuffer:     DefaultEventBuffer,
		metricsBuffer:   metricsBuffer,
		keyCapacity:     keyCapacity,
	}
}

// Controller is the handle the rest of the program holds on a running engine.
// It owns the producer ends of the control queues; every method is safe for
// concurrent use and none of them block on the audio thread.
type Controller struct {
	device  audio.Device
	backend string
	format  model.DeviceFormat
	opts    options

	state  stateCell
	worker *Worker

	quit         chan struct{}
	eventsDone   chan struct{}
	shutdownOnce sync.Once
	shutdownErr  error
}

//
// constructor
//

// StartDefault opens the default output device of backend and starts the
// engine on it. Open failures are reported as a *StartError as well.
func StartDefault(backend string, deviceOpts audio.Options, opts ...Option) (*Controller, error) {
	device, err := audio.OpenDefault(backend, deviceOpts)
	if err != nil {
		return nil, newStartError(classify(err, ErrDeviceUnavailable), backend, err)
	}

	return Start(device, opts...)
}

// Start attaches a worker to device and starts the stream. On failure the
// device is closed and a *StartError is returned.
func Start(device audio.Device, opts ...Option) (*Controller, error) {
	o := defaultOptions()
	for _, opt := range opts {
		opt(&o)
	}

	if device == nil {
		return nil, newStartError(ErrDeviceUnavailable, "none", nil)
	}

	backend := device.Name()
	format := device.Format()

	if err := format.Validate(); err != nil {
		device.Close()
		return nil, newStartError(ErrUnsupportedFormat, backend, err)
	}

	controller := &Controller{
		device:     device,
		backend:    backend,
		format:     format,
		opts:       o,
		quit:       make(chan struct{}),
		eventsDone: make(chan struct{}),
	}

	controller.state.store(StateStarting)
	controller.worker = newWorker(format, &controller.state, o)

	if err := device.Open(controller.worker); err != nil {
		controller.state.store(StateStopped)
		device.Close()
		return nil, newStartError(classify(err, ErrStreamStartFailed), backend, err)
	}

	go controller.consumeEvents()

	controller.state.store(StateRunning)
	if err := device.Play(); err != nil {
		controller.state.store(StateStopped)
		device.Close()
		close(controller.quit)
		<-controller.eventsDone
		return nil, newStartError(classify(err, ErrStreamStartFailed), backend, err)
	}

	controller.log().Info(fmt.Sprintf("Audio engine running on %s (%s)", backend, format.String()))

	return controller, nil
}

//
// producers
//

// InstallProcessor hands p to the worker, which swaps it in at the start of
// its next callback.
func (c *Controller) InstallProcessor(p Processor) error {
	if p == nil {
		return ErrNilProcessor
	}

	return c.send("processor", c.worker.procs.Push(p))
}

func (c *Controller) SubmitKeyEvent(event model.KeyEvent) error {
	return c.send(event.String(), c.worker.keys.Push(event))
}

func (c *Controller) Press(note model.NoteIndex) error {
	return c.SubmitKeyEvent(model.PressKey(note))
}

func (c *Controller) Release(note model.NoteIndex) error {
	return c.SubmitKeyEvent(model.ReleaseKey(note))
}

// SubmitParam forwards update to the installed processor if it accepts parameters.
func (c *Controller) SubmitParam(update model.ParamUpdate) error {
	return c.send(update.String(), c.worker.params.Push(update))
}

func (c *Controller) send(what string, err error) error {
	if err == nil {
		select {
		case <-c.worker.done:
			err = ErrSendAfterShutdown
		default:
			return nil
		}
	}

	c.log().Warn(fmt.Sprintf("Dropped %s: %v", what, err))

	return err
}

//
// accessors
//

func (c *Controller) SampleRate() int {
	return c.format.SampleRate
}

func (c *Controller) Format() model.DeviceFormat {
	return c.format
}

func (c *Controller) Backend() string {
	return c.backend
}

func (c *Controller) State() State {
	return c.state.load()
}

// Metrics delivers one value per callback. Values are dropped while the
// channel is full.
func (c *Controller) Metrics() <-chan Metrics {
	return c.worker.metrics
}

// Scope delivers blocks of generated signal when the engine was started
// WithScope, nil otherwise. Hand each block back with RecycleScope.
func (c *Controller) Scope() <-chan []model.Signal {
	if c.worker.scope == nil {
		return nil
	}
	return c.worker.scope.filled
}

func (c *Controller) RecycleScope(block []model.Signal) {
	if c.worker.scope != nil && block != nil {
		c.worker.scope.recycle(block)
	}
}

// Done is closed once the worker has observed the stop request.
func (c *Controller) Done() <-chan struct{} {
	return c.worker.done
}

// DroppedEvents counts worker events lost to a full event channel.
func (c *Controller) DroppedEvents() uint64 {
	return c.worker.dropped.Load()
}

//
// shutdown
//

// Shutdown stops the worker, waiting at most the configured timeout for it to
// acknowledge, then closes the device. Safe to call more than once.
func (c *Controller) Shutdown() error {
	c.shutdownOnce.Do(func() {
		c.shutdownErr = c.shutdown()
	})

	return c.shutdownErr
}

func (c *Controller) shutdown() error {
	c.worker.procs.Close()
	c.worker.keys.Close()
	c.worker.params.Close()

	c.state.transition(StateRunning, StateStopping)
	c.worker.stop.Store(true)

	timer := time.NewTimer(c.opts.shutdownTimeout)
	defer timer.Stop()

	select {
	case <-c.worker.done:
		c.log().Debug("Audio worker acknowledged stop")
	case <-timer.C:
		c.log().Warn(fmt.Sprintf("Audio worker did not acknowledge stop within %s, closing device anyway", c.opts.shutdownTimeout))
	}

	err := c.device.Close()

	// the device no longer calls back, so the worker's state is ours now
	c.releaseProcessors()
	c.state.store(StateStopped)

	close(c.quit)
	<-c.eventsDone

	if err != nil && !errors.Is(err, audio.ErrNoDevice) {
		return fmt.Errorf("closing %s output: %w", c.backend, err)
	}

	c.log().Info("Audio engine stopped")

	return nil
}

func (c *Controller) releaseProcessors() {
	for {
		p, ok := c.worker.procs.Pop()
		if !ok {
			break
		}
		c.worker.retire(p)
	}

	c.worker.retire(c.worker.slot.silence())
}

//
// events
//

// log is the WithLogger logger, or whatever the default logger is right now
func (c *Controller) log() *slog.Logger {
	if c.opts.logger != nil {
		return c.opts.logger
	}
	return slog.Default()
}

func (c *Controller) consumeEvents() {
	defer close(c.eventsDone)

	ticker := time.NewTicker(reportInterval)
	defer ticker.Stop()

	var reported uint64

	for {
		select {
		case event := <-c.worker.events:
			c.logEvent(event)

		case <-ticker.C:
			reported = c.reportDropped(reported)

		case <-c.quit:
			for {
				select {
				case event := <-c.worker.events:
					c.logEvent(event)
				default:
					c.reportDropped(reported)
					return
				}
			}
		}
	}
}

func (c *Controller) logEvent(event Event) {
	switch event.Kind {
	case EventProcessorPanic:
		c.log().Error(fmt.Sprintf("Processor panicked at sample %d, silenced: %s", event.Sample, event.Detail),
			slog.Int("note", int(event.Note)),
			slog.Bool("held", event.Held))

	case EventStopping:
		c.log().Info(fmt.Sprintf("Audio worker stopping after %d samples", event.Sample))

	default:
		c.log().Debug(fmt.Sprintf("%s at sample %d", event.Kind.String(), event.Sample))
	}
}

func (c *Controller) reportDropped(reported uint64) uint64 {
	dropped := c.worker.dropped.Load()
	if dropped > reported {
		c.log().Warn(fmt.Sprintf("%d audio worker event(s) dropped", dropped-reported))
	}

	return dropped
}
