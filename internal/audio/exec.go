package audio

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sync"
)

// ExecPlayer plays files with an external command; the file path is appended as
// the last argument.
type ExecPlayer struct {
	Command []string
}

// Play starts the command. The process outlives ctx; use Stop to end it.
func (p ExecPlayer) Play(ctx context.Context, path string) (Playback, error) {
	if len(p.Command) == 0 {
		return nil, errors.New("no audio player configured")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	args := append(append([]string{}, p.Command[1:]...), path)
	cmd := exec.Command(p.Command[0], args...)
	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("failed to start %s: %w", p.Command[0], err)
	}

	pb := &execPlayback{cmd: cmd, done: make(chan struct{})}
	go pb.wait()
	return pb, nil
}

type execPlayback struct {
	cmd     *exec.Cmd
	done    chan struct{}
	mu      sync.Mutex
	stopped bool
	err     error
}

func (p *execPlayback) wait() {
	err := p.cmd.Wait()
	p.mu.Lock()
	if !p.stopped {
		p.err = err
	}
	p.mu.Unlock()
	close(p.done)
}

func (p *execPlayback) Stop() error {
	p.mu.Lock()
	if p.stopped {
		p.mu.Unlock()
		return nil
	}
	p.stopped = true
	p.mu.Unlock()

	select {
	case <-p.done:
		return nil
	default:
	}
	if err := p.cmd.Process.Kill(); err != nil && !errors.Is(err, os.ErrProcessDone) {
		return err
	}
	return nil
}

func (p *execPlayback) Done() <-chan struct{} {
	return p.done
}

func (p *execPlayback) Err() error {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.err
}
