package app

import (
	"context"
	"errors"
	"sync"

	"sentencecards/internal/logging"
	"sentencecards/internal/sentences"
)

// ErrNoPlayer is reported when audio is toggled without an attached player.
var ErrNoPlayer = errors.New("audio playback is not available")

// Renderer displays a view. It is called with the dispatcher lock held, so it
// must not dispatch.
type Renderer interface {
	Render(View)
}

// RenderFunc adapts a function to Renderer.
type RenderFunc func(View)

func (f RenderFunc) Render(v View) { f(v) }

// Audio is the playback side of the dispatcher. *audio.Controller satisfies it.
type Audio interface {
	Toggle(ctx context.Context, level sentences.Level) (bool, error)
	Playing() (sentences.Level, bool)
	Stop()
}

// Dispatcher is the single owner of a State. All changes go through Dispatch.
type Dispatcher struct {
	mu       sync.Mutex
	state    State
	renderer Renderer
	audio    Audio
	ctx      context.Context
}

// NewDispatcher creates a dispatcher around the initial state. r may be nil.
func NewDispatcher(ctx context.Context, initial State, r Renderer) *Dispatcher {
	return &Dispatcher{ctx: ctx, state: initial, renderer: r}
}

// AttachAudio sets the audio backend used for PlayToggled.
func (d *Dispatcher) AttachAudio(a Audio) {
	d.mu.Lock()
	d.audio = a
	d.mu.Unlock()
}

// State returns the current state.
func (d *Dispatcher) State() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state
}

// Dispatch applies ev, renders the result and returns the new state. Safe for
// concurrent use.
func (d *Dispatcher) Dispatch(ev Event) State {
	d.mu.Lock()
	defer d.mu.Unlock()

	if _, ok := ev.(PlayToggled); ok {
		for _, e := range d.toggle() {
			d.state = Reduce(d.state, e)
		}
	} else {
		d.state = Reduce(d.state, ev)
	}
	logging.AppDebug("%T -> level=%s loaded=%t playing=%q", ev, d.state.Level, d.state.Loaded, d.state.Playing)

	if d.renderer != nil {
		d.renderer.Render(d.state.View())
	}
	return d.state
}

// toggle runs the audio side effect and reports its outcome as events.
func (d *Dispatcher) toggle() []Event {
	level := d.state.Level
	if d.audio == nil {
		return []Event{PlaybackFailed{Level: level, Err: ErrNoPlayer}}
	}

	started, err := d.audio.Toggle(d.ctx, level)
	var events []Event
	if playing, ok := d.audio.Playing(); ok {
		events = append(events, PlaybackStarted{Level: playing})
	} else {
		events = append(events, PlaybackStopped{})
	}
	if err != nil {
		logging.AppError("audio toggle for %s: %v", level, err)
		events = append(events, PlaybackFailed{Level: level, Err: err})
	} else if started {
		logging.App("audio started for %s", level)
	}
	return events
}

// AudioFinished matches audio.FinishFunc. It turns a playback that ended on
// its own into an event.
func (d *Dispatcher) AudioFinished(level sentences.Level, err error) {
	if err != nil {
		d.Dispatch(PlaybackFailed{Level: level, Err: err})
		return
	}
	d.Dispatch(PlaybackStopped{Level: level})
}

// Close stops any playback.
func (d *Dispatcher) Close() {
	d.mu.Lock()
	a := d.audio
	d.mu.Unlock()
	if a != nil {
		a.Stop()
	}
}
