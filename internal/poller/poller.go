package poller

import (
	"context"
	"sync"
	"time"

	"github.com/SIMPLYBOYS/tachi/pkg/logger"
)

// Task is one polling cycle. The context is cancelled when the poller stops.
type Task func(ctx context.Context)

type generationKey struct{}

// Poller runs a task immediately and then on every tick until stopped.
// A restarted poller gets a new generation; work started by an older
// generation can no longer deliver results.
type Poller struct {
	name     string
	interval time.Duration
	task     Task

	mu         sync.Mutex
	generation uint64
	cancel     context.CancelFunc
	done       chan struct{}
	trigger    chan struct{}
}

func New(name string, interval time.Duration, task Task) *Poller {
	return &Poller{
		name:     name,
		interval: interval,
		task:     task,
	}
}

// Start begins polling. Starting a running poller restarts it.
func (p *Poller) Start(ctx context.Context) {
	p.Stop()

	p.mu.Lock()
	p.generation++
	gen := p.generation
	runCtx, cancel := context.WithCancel(context.WithValue(ctx, generationKey{}, gen))
	done := make(chan struct{})
	trigger := make(chan struct{}, 1)
	p.cancel = cancel
	p.done = done
	p.trigger = trigger
	p.mu.Unlock()

	logger.Debug("Starting poller %s (generation %d, every %s)", p.name, gen, p.interval)
	go p.loop(runCtx, done, trigger)
}

func (p *Poller) loop(ctx context.Context, done chan struct{}, trigger <-chan struct{}) {
	defer close(done)

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	p.task(ctx)
	for {
		select {
		case <-ctx.Done():
			logger.Debug("Stopping poller %s", p.name)
			return
		case <-ticker.C:
			p.task(ctx)
		case <-trigger:
			p.task(ctx)
		}
	}
}

// Stop cancels the running cycle and waits for the loop to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	cancel, done := p.cancel, p.done
	p.cancel, p.done, p.trigger = nil, nil, nil
	p.mu.Unlock()

	if cancel == nil {
		return
	}
	cancel()
	<-done
}

// Trigger asks for an extra cycle without waiting for the next tick.
func (p *Poller) Trigger() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.trigger == nil {
		return
	}
	select {
	case p.trigger <- struct{}{}:
	default:
	}
}

func (p *Poller) Running() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.cancel != nil
}

// Deliver runs apply only if ctx belongs to the current, still running
// generation. apply runs without the poller lock held, so it may take other
// locks that are held around Stop. It must not call Start or Stop itself.
func (p *Poller) Deliver(ctx context.Context, apply func()) bool {
	gen, _ := ctx.Value(generationKey{}).(uint64)

	p.mu.Lock()
	current := ctx.Err() == nil && p.cancel != nil && gen == p.generation
	p.mu.Unlock()
	if !current {
		return false
	}
	apply()
	return true
}
