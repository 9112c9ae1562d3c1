package playback

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/james-see/ym2151tone/pkg/converter"
	"github.com/james-see/ym2151tone/pkg/debug"
	"github.com/james-see/ym2151tone/pkg/tone"
)

// DefaultTimeout bounds a single fire-and-forget send
const DefaultTimeout = 2 * time.Second

// Player turns grids into register logs and hands them to a Sender
type Player struct {
	Sender  Sender
	Timeout time.Duration

	mu     sync.Mutex
	latest atomic.Uint64
}

// NewPlayer creates a player with the default timeout
func NewPlayer(s Sender) *Player {
	return &Player{Sender: s, Timeout: DefaultTimeout}
}

// Play sends g in the background. Failures are logged and never reach the
// caller, so an editor keeps working without a playback server. Sends run one
// at a time; a grid still waiting when a newer one is played is dropped.
func (p *Player) Play(g tone.Grid) {
	if p == nil || p.Sender == nil {
		return
	}
	log := converter.ToRegisterEvents(g)
	timeout := p.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}

	gen := p.latest.Add(1)

	go func() {
		p.mu.Lock()
		defer p.mu.Unlock()
		if p.latest.Load() != gen {
			debug.Log("playback", "dropped stale grid")
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), timeout)
		defer cancel()
		if err := p.Sender.Send(ctx, log); err != nil {
			debug.Log("playback", "send failed: %v", err)
			return
		}
		debug.Log("playback", "sent %d events", len(log))
	}()
}

// PlaySync sends g and waits for the result
func (p *Player) PlaySync(ctx context.Context, g tone.Grid) error {
	log := converter.ToRegisterEvents(g)
	if err := p.Sender.Send(ctx, log); err != nil {
		return err
	}
	debug.Log("playback", "sent %d events", len(log))
	return nil
}
