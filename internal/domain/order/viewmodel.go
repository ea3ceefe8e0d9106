// internal/domain/order/viewmodel.go
package order

import (
	"context"
	"sync"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"
)

const (
	defaultCurrentError = "Unable to fetch current order."
	defaultHistoryError = "Unable to fetch past orders."
)

// Viewmodel holds the order screens' data and keeps it fresh from a Provider.
// It is safe for concurrent use; one instance lives for the whole process.
type Viewmodel struct {
	provider Provider
	logger   *logrus.Logger

	// lifetime ends when Close is called; fetches in flight are cancelled
	lifetime context.Context
	cancel   context.CancelFunc
	inflight sync.WaitGroup
	activate sync.Once

	mu         sync.RWMutex
	state      State
	closed     bool
	currentGen uint64
	historyGen uint64
}

// NewViewmodel creates a viewmodel backed by provider
func NewViewmodel(provider Provider, logger *logrus.Logger) *Viewmodel {
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	lifetime, cancel := context.WithCancel(context.Background())
	return &Viewmodel{
		provider: provider,
		logger:   logger,
		lifetime: lifetime,
		cancel:   cancel,
		state:    State{PastOrders: []PastOrder{}},
	}
}

// Activate starts the initial refresh in the background. Only the first call has an effect.
func (v *Viewmodel) Activate() {
	v.activate.Do(func() {
		if _, err := v.startRefresh(); err != nil {
			v.logger.WithError(err).Debug("Skipped initial order refresh")
		}
	})
}

// Refresh fetches the current order and the order history concurrently and
// waits for both to settle. A failed fetch records its message in the shared
// error and keeps the data from the previous successful fetch.
//
// If ctx ends first, Refresh returns early with the state at that moment;
// the fetches keep running and still apply their results.
func (v *Viewmodel) Refresh(ctx context.Context) (State, error) {
	done, err := v.startRefresh()
	if err != nil {
		return v.State(), err
	}

	select {
	case <-done:
		return v.State(), nil
	case <-ctx.Done():
		return v.State(), ctx.Err()
	}
}

func (v *Viewmodel) startRefresh() (<-chan struct{}, error) {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return nil, ErrClosed
	}
	v.currentGen++
	v.historyGen++
	currentGen, historyGen := v.currentGen, v.historyGen
	v.state.LoadingCurrent = true
	v.state.LoadingHistory = true
	v.inflight.Add(1)
	v.mu.Unlock()

	done := make(chan struct{})
	go func() {
		defer v.inflight.Done()
		defer close(done)

		var g errgroup.Group
		g.Go(func() error {
			v.loadCurrent(currentGen)
			return nil
		})
		g.Go(func() error {
			v.loadHistory(historyGen)
			return nil
		})
		_ = g.Wait()
	}()

	return done, nil
}

func (v *Viewmodel) loadCurrent(gen uint64) {
	current, err := v.provider.FetchCurrentOrder(v.lifetime)

	v.mu.Lock()
	defer v.mu.Unlock()

	// Drop results for a closed viewmodel or a superseded refresh
	if v.closed || gen != v.currentGen {
		return
	}
	v.state.LoadingCurrent = false

	if err != nil {
		msg := errorMessage(err, defaultCurrentError)
		v.state.Error = msg
		v.state.CurrentError = msg
		v.logger.WithError(err).Warn("Failed to fetch current order")
		return
	}

	v.state.CurrentOrder = current.Clone()
	v.state.CurrentError = ""
}

func (v *Viewmodel) loadHistory(gen uint64) {
	history, err := v.provider.FetchOrderHistory(v.lifetime)

	v.mu.Lock()
	defer v.mu.Unlock()

	if v.closed || gen != v.historyGen {
		return
	}
	v.state.LoadingHistory = false

	if err != nil {
		msg := errorMessage(err, defaultHistoryError)
		v.state.Error = msg
		v.state.HistoryError = msg
		v.logger.WithError(err).Warn("Failed to fetch order history")
		return
	}

	if history == nil {
		history = []PastOrder{}
	}
	v.state.PastOrders = append([]PastOrder(nil), history...)
	v.state.HistoryError = ""
}

// ContactSupport opens a support ticket for orderID. Order state is not changed.
func (v *Viewmodel) ContactSupport(ctx context.Context, orderID string) (*SupportTicket, error) {
	v.mu.RLock()
	closed := v.closed
	v.mu.RUnlock()
	if closed {
		return nil, ErrClosed
	}

	ticket, err := v.provider.CreateSupportTicket(ctx, orderID)
	if err != nil {
		return nil, err
	}

	v.logger.WithFields(logrus.Fields{
		"order_id":  ticket.OrderID,
		"ticket_id": ticket.TicketID,
	}).Info("Support ticket created")

	return ticket, nil
}

// State returns a copy of the current state with the order total derived
func (v *Viewmodel) State() State {
	v.mu.RLock()
	defer v.mu.RUnlock()

	s := v.state
	s.CurrentOrder = v.state.CurrentOrder.Clone()
	s.PastOrders = append([]PastOrder{}, v.state.PastOrders...)
	s.CurrentOrderTotal = CurrentOrderTotal(s.CurrentOrder)
	return s
}

// Close stops accepting refreshes, cancels fetches in flight and waits for them to return.
// Results arriving after Close are discarded.
func (v *Viewmodel) Close() {
	v.mu.Lock()
	if v.closed {
		v.mu.Unlock()
		return
	}
	v.closed = true
	v.mu.Unlock()

	v.cancel()
	v.inflight.Wait()
}

func errorMessage(err error, fallback string) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return fallback
}
