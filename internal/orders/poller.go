package orders

import (
	"context"
	"sync"
	"time"

	"github.com/aresheg/restaurant-storefront/pkg/logger"
	"github.com/aresheg/restaurant-storefront/pkg/metrics"
	"github.com/google/uuid"
)

// PollerState is the lifecycle of a status poller. A poller moves forward
// only: Idle until Start, Active while polling, Stopped forever after. A
// stopped poller is never restarted; tracking an order again means a fresh
// instance.
type PollerState int

const (
	PollerIdle PollerState = iota
	PollerActive
	PollerStopped
)

func (s PollerState) String() string {
	switch s {
	case PollerIdle:
		return "idle"
	case PollerActive:
		return "active"
	case PollerStopped:
		return "stopped"
	default:
		return "unknown"
	}
}

// Poller periodically refreshes one order until the order reaches a terminal
// status or the poller is torn down. Refresh errors are logged and retried on
// the next tick.
type Poller struct {
	orderID  uuid.UUID
	interval time.Duration
	svc      Service
	log      *logger.Logger
	metrics  *metrics.OrderMetrics

	mu       sync.Mutex
	state    PollerState
	stop     chan struct{}
	done     chan struct{}
	stopOnce sync.Once
}

func NewPoller(orderID uuid.UUID, interval time.Duration, svc Service, log *logger.Logger, m *metrics.OrderMetrics) *Poller {
	return &Poller{
		orderID:  orderID,
		interval: interval,
		svc:      svc,
		log:      log,
		metrics:  m,
		state:    PollerIdle,
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (p *Poller) State() PollerState {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.state
}

// Start begins polling. Starting twice, or starting a stopped poller, is a
// no-op.
func (p *Poller) Start() {
	p.mu.Lock()
	if p.state != PollerIdle {
		p.mu.Unlock()
		return
	}
	p.state = PollerActive
	p.mu.Unlock()

	p.metrics.PollerStarted()
	go p.run()
}

// Stop tears the poller down. It is idempotent and blocks until the polling
// goroutine has exited, so no refresh is issued after Stop returns. An
// in-flight refresh is allowed to complete and apply.
func (p *Poller) Stop() {
	p.mu.Lock()
	if p.state == PollerIdle {
		p.state = PollerStopped
		p.mu.Unlock()
		return
	}
	p.mu.Unlock()

	p.stopOnce.Do(func() { close(p.stop) })
	<-p.done
}

func (p *Poller) run() {
	defer func() {
		p.mu.Lock()
		p.state = PollerStopped
		p.mu.Unlock()
		p.metrics.PollerStopped()
		close(p.done)
	}()

	ctx := p.log.WithOrderID(context.Background(), p.orderID.String())
	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			if terminal := p.tick(ctx); terminal {
				return
			}
		}
	}
}

// tick refreshes the order once and reports whether the order has reached a
// terminal status.
func (p *Poller) tick(ctx context.Context) bool {
	tickCtx, cancel := context.WithTimeout(ctx, p.interval)
	defer cancel()

	order, err := p.svc.Refresh(tickCtx, p.orderID)
	if err != nil {
		// Transient by assumption; the next tick retries.
		p.log.Warn(p.log.WithField(ctx, "error", err.Error()), "order refresh failed")
		return false
	}
	if order.Status.IsTerminal() {
		p.log.Info(p.log.WithField(ctx, "status", order.Status.String()), "order reached terminal status, polling stops")
		return true
	}
	return false
}

// Tracker owns the active pollers, one per tracked order.
type Tracker struct {
	interval time.Duration
	svc      Service
	log      *logger.Logger
	metrics  *metrics.OrderMetrics

	mu      sync.Mutex
	pollers map[uuid.UUID]*Poller
}

func NewTracker(svc Service, interval time.Duration, log *logger.Logger, m *metrics.OrderMetrics) *Tracker {
	return &Tracker{
		interval: interval,
		svc:      svc,
		log:      log,
		metrics:  m,
		pollers:  make(map[uuid.UUID]*Poller),
	}
}

// StartTracking begins polling the order. If the order is already tracked,
// the previous poller is torn down and replaced with a fresh one.
func (t *Tracker) StartTracking(orderID uuid.UUID) {
	t.mu.Lock()
	previous := t.pollers[orderID]
	poller := NewPoller(orderID, t.interval, t.svc, t.log, t.metrics)
	t.pollers[orderID] = poller
	t.mu.Unlock()

	if previous != nil {
		previous.Stop()
	}
	poller.Start()
}

// StopTracking tears down the poller for the order, if any.
func (t *Tracker) StopTracking(orderID uuid.UUID) {
	t.mu.Lock()
	poller := t.pollers[orderID]
	delete(t.pollers, orderID)
	t.mu.Unlock()

	if poller != nil {
		poller.Stop()
	}
}

// Tracking reports whether the order has a live poller.
func (t *Tracker) Tracking(orderID uuid.UUID) bool {
	t.mu.Lock()
	poller := t.pollers[orderID]
	t.mu.Unlock()
	return poller != nil && poller.State() == PollerActive
}

// Shutdown stops every poller. Used on server teardown.
func (t *Tracker) Shutdown() {
	t.mu.Lock()
	pollers := make([]*Poller, 0, len(t.pollers))
	for _, poller := range t.pollers {
		pollers = append(pollers, poller)
	}
	t.pollers = make(map[uuid.UUID]*Poller)
	t.mu.Unlock()

	for _, poller := range pollers {
		poller.Stop()
	}
}
