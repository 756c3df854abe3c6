// Package sync refreshes repositories from the store in the background so
// the board picks up changes made on other devices.
package sync

import (
	"context"
	"slices"
	gosync "sync"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/nhle/tasknest/internal/apperrors"
)

// SyncState represents the current state of one target.
type SyncState int

const (
	SyncIdle SyncState = iota
	SyncRunning
	SyncError
)

// SyncStatus holds the sync state of a single target.
type SyncStatus struct {
	Target   string
	State    SyncState
	LastSync time.Time
	Error    error
}

// Target names used by the board.
const (
	TargetTodos      = "todos"
	TargetCategories = "categories"
)

// SyncResultMsg is a tea.Msg sent when a refresh completes.
type SyncResultMsg struct {
	Target string
	Error  error
	// AuthExpired is set when the store rejected the session.
	AuthExpired bool
}

// RefreshFunc reloads one repository.
type RefreshFunc func(ctx context.Context) error

type target struct {
	name    string
	refresh RefreshFunc
	trigger chan struct{}
}

// Poller runs each registered target on a fixed interval and on demand.
type Poller struct {
	interval time.Duration
	timeout  time.Duration
	log      *zap.SugaredLogger
	now      func() time.Time

	mu       gosync.Mutex
	targets  []*target
	statuses map[string]*SyncStatus
	running  bool
	resultCh chan SyncResultMsg
	stopCh   chan struct{}
	wg       gosync.WaitGroup
}

// New creates a Poller. timeout bounds every single refresh.
func New(interval, timeout time.Duration, log *zap.SugaredLogger) *Poller {
	if interval <= 0 {
		interval = 2 * time.Minute
	}
	return &Poller{
		interval: interval,
		timeout:  timeout,
		log:      log,
		now:      time.Now,
		statuses: make(map[string]*SyncStatus),
		resultCh: make(chan SyncResultMsg, 16),
		stopCh:   make(chan struct{}),
	}
}

// Register adds a target. Targets registered after Start are not polled.
func (p *Poller) Register(name string, fn RefreshFunc) {
	p.mu.Lock()
	defer p.mu.Unlock()

	p.targets = append(p.targets, &target{name: name, refresh: fn, trigger: make(chan struct{}, 1)})
	p.statuses[name] = &SyncStatus{Target: name, State: SyncIdle}
}

// Start launches one polling goroutine per target and returns a command
// delivering the first result.
func (p *Poller) Start() tea.Cmd {
	p.mu.Lock()
	if p.running {
		p.mu.Unlock()
		return nil
	}
	p.running = true
	targets := slices.Clone(p.targets)
	p.mu.Unlock()

	for _, t := range targets {
		p.wg.Add(1)
		go p.poll(t)
	}
	return p.WaitForNextResult()
}

// Stop halts all polling goroutines and waits for them to exit.
func (p *Poller) Stop() {
	p.mu.Lock()
	if !p.running {
		p.mu.Unlock()
		return
	}
	close(p.stopCh)
	p.running = false
	p.mu.Unlock()

	p.wg.Wait()
}

// RefreshAll asks every target to refresh now. A target that already has a
// pending request is skipped.
func (p *Poller) RefreshAll() {
	p.mu.Lock()
	defer p.mu.Unlock()

	for _, t := range p.targets {
		select {
		case t.trigger <- struct{}{}:
		default:
		}
	}
}

// Statuses returns the state of every target ordered by name.
func (p *Poller) Statuses() []SyncStatus {
	p.mu.Lock()
	defer p.mu.Unlock()

	out := make([]SyncStatus, 0, len(p.statuses))
	for _, s := range p.statuses {
		out = append(out, *s)
	}
	slices.SortFunc(out, func(a, b SyncStatus) int {
		switch {
		case a.Target < b.Target:
			return -1
		case a.Target > b.Target:
			return 1
		}
		return 0
	})
	return out
}

// WaitForNextResult returns a command that blocks until the next refresh
// completes. Call it again after handling each SyncResultMsg.
func (p *Poller) WaitForNextResult() tea.Cmd {
	return func() tea.Msg {
		select {
		case msg := <-p.resultCh:
			return msg
		case <-p.stopCh:
			return nil
		}
	}
}

func (p *Poller) poll(t *target) {
	defer p.wg.Done()

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stopCh:
			return
		case <-ticker.C:
			p.refresh(t)
		case <-t.trigger:
			p.refresh(t)
		}
	}
}

func (p *Poller) refresh(t *target) {
	p.setStatus(t.name, SyncRunning, nil)

	ctx, cancel := context.WithTimeout(context.Background(), p.timeout)
	defer cancel()

	err := t.refresh(ctx)
	if err != nil {
		p.log.Warnw("background refresh failed", "target", t.name, "error", err)
		p.setStatus(t.name, SyncError, err)
		p.send(SyncResultMsg{Target: t.name, Error: err, AuthExpired: apperrors.IsAuth(err)})
		return
	}

	p.setStatus(t.name, SyncIdle, nil)
	p.send(SyncResultMsg{Target: t.name})
}

func (p *Poller) setStatus(name string, state SyncState, err error) {
	p.mu.Lock()
	defer p.mu.Unlock()

	status, ok := p.statuses[name]
	if !ok {
		return
	}
	status.State = state
	status.Error = err
	if state == SyncIdle {
		status.LastSync = p.now()
	}
}

// send drops the result when nobody is listening.
func (p *Poller) send(msg SyncResultMsg) {
	select {
	case p.resultCh <- msg:
	default:
	}
}
