// Package audio plays the per-level recordings of a group. Playback is an
// exclusive resource: starting one level stops whatever was playing.
package audio

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"sentencecards/internal/logging"
	"sentencecards/internal/sentences"
)

// ErrNoAudio is returned for levels without a recording (LevelBoth).
var ErrNoAudio = errors.New("no audio for level")

// Playback is one running playback.
type Playback interface {
	// Stop ends playback and resets it. Stopping twice is a no-op.
	Stop() error
	// Done is closed when playback ends for any reason.
	Done() <-chan struct{}
	// Err reports why playback ended; nil after a normal finish or Stop.
	Err() error
}

// Player starts playback of a local file.
type Player interface {
	Play(ctx context.Context, path string) (Playback, error)
}

// Resolver returns the local file for a level's recording.
type Resolver interface {
	Locate(ctx context.Context, level sentences.Level) (string, error)
}

// FinishFunc is called once a playback ends on its own (not through Stop or
// Toggle). err is the player's failure, if any.
type FinishFunc func(level sentences.Level, err error)

type active struct {
	level sentences.Level
	pb    Playback
}

// Controller toggles playback per level.
type Controller struct {
	mu       sync.Mutex
	player   Player
	resolver Resolver
	current  *active
	onFinish FinishFunc
}

// NewController creates a controller. onFinish may be nil.
func NewController(player Player, resolver Resolver, onFinish FinishFunc) *Controller {
	return &Controller{player: player, resolver: resolver, onFinish: onFinish}
}

// Toggle starts playback for level, or stops it when level is already playing.
// Any other level that is playing is stopped and reset first. started reports
// whether level is playing after the call.
func (c *Controller) Toggle(ctx context.Context, level sentences.Level) (started bool, err error) {
	if !level.HasAudio() {
		return false, fmt.Errorf("%w %s", ErrNoAudio, level)
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.current != nil {
		same := c.current.level == level
		c.stopLocked()
		if same {
			return false, nil
		}
	}

	path, err := c.resolver.Locate(ctx, level)
	if err != nil {
		return false, fmt.Errorf("audio for %s: %w", level, err)
	}
	pb, err := c.player.Play(ctx, path)
	if err != nil {
		return false, fmt.Errorf("failed to play %s: %w", path, err)
	}

	a := &active{level: level, pb: pb}
	c.current = a
	logging.Audio("playing %s (%s)", level, path)
	go c.await(a)
	return true, nil
}

// await clears the current playback when it ends on its own.
func (c *Controller) await(a *active) {
	<-a.pb.Done()

	c.mu.Lock()
	natural := c.current == a
	if natural {
		c.current = nil
	}
	c.mu.Unlock()

	if !natural {
		return
	}
	if err := a.pb.Err(); err != nil {
		logging.Get(logging.CategoryAudio).Warn("playback of %s failed: %v", a.level, err)
	} else {
		logging.AudioDebug("playback of %s finished", a.level)
	}
	if c.onFinish != nil {
		c.onFinish(a.level, a.pb.Err())
	}
}

// Playing returns the level currently playing.
func (c *Controller) Playing() (sentences.Level, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.current == nil {
		return "", false
	}
	return c.current.level, true
}

// Stop stops any playback.
func (c *Controller) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.stopLocked()
}

func (c *Controller) stopLocked() {
	if c.current == nil {
		return
	}
	a := c.current
	c.current = nil
	if err := a.pb.Stop(); err != nil {
		logging.Get(logging.CategoryAudio).Warn("stopping %s: %v", a.level, err)
	}
	<-a.pb.Done()
	logging.AudioDebug("stopped %s", a.level)
}
