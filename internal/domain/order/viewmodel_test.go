package order

import (
	"context"
	"errors"
	"io"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeProvider struct {
	mu           sync.Mutex
	currentCalls int
	historyCalls int

	current func(ctx context.Context, call int) (*Order, error)
	history func(ctx context.Context, call int) ([]PastOrder, error)
	support func(ctx context.Context, orderID string) (*SupportTicket, error)
}

func (f *fakeProvider) FetchCurrentOrder(ctx context.Context) (*Order, error) {
	f.mu.Lock()
	f.currentCalls++
	call := f.currentCalls
	f.mu.Unlock()
	if f.current == nil {
		return nil, nil
	}
	return f.current(ctx, call)
}

func (f *fakeProvider) FetchOrderHistory(ctx context.Context) ([]PastOrder, error) {
	f.mu.Lock()
	f.historyCalls++
	call := f.historyCalls
	f.mu.Unlock()
	if f.history == nil {
		return nil, nil
	}
	return f.history(ctx, call)
}

func (f *fakeProvider) CreateSupportTicket(ctx context.Context, orderID string) (*SupportTicket, error) {
	if f.support != nil {
		return f.support(ctx, orderID)
	}
	if orderID == "" {
		return nil, ErrMissingOrderReference
	}
	return &SupportTicket{OrderID: orderID, TicketID: "SUP-1234", SubmittedAt: time.Now(), Status: "open"}, nil
}

func (f *fakeProvider) calls() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.currentCalls, f.historyCalls
}

func newTestViewmodel(t *testing.T, provider Provider) *Viewmodel {
	t.Helper()
	logger := logrus.New()
	logger.SetOutput(io.Discard)

	vm := NewViewmodel(provider, logger)
	t.Cleanup(vm.Close)
	return vm
}

func sampleOrder(id string) *Order {
	return &Order{
		ID:         id,
		Restaurant: "TechnoMart Kitchen",
		Items: []Item{
			{Name: "Ginaling", Price: decimal.NewFromInt(60), Quantity: 2},
			{Name: "Iced Campus Latte", Price: decimal.NewFromInt(70), Quantity: 1},
		},
		PlatformFee: decimal.NewFromInt(5),
		StatusSteps: []StatusStep{
			{Label: "Order placed", Time: "11:02 AM", State: StepCompleted},
			{Label: "Preparing", Time: "11:05 AM", State: StepCurrent},
			{Label: "Ready for pickup", State: StepPending},
		},
	}
}

func sampleHistory() []PastOrder {
	return []PastOrder{
		{ID: "TM-1001", Restaurant: "TechnoMart Kitchen", Status: "Completed", Total: decimal.NewFromInt(150)},
		{ID: "TM-0999", Restaurant: "TechnoMart Kitchen", Status: "Completed", Total: decimal.NewFromInt(95)},
	}
}

func TestViewmodelRefreshPopulatesState(t *testing.T) {
	provider := &fakeProvider{
		current: func(context.Context, int) (*Order, error) { return sampleOrder("TM-1042"), nil },
		history: func(context.Context, int) ([]PastOrder, error) { return sampleHistory(), nil },
	}
	vm := newTestViewmodel(t, provider)

	state, err := vm.Refresh(context.Background())
	require.NoError(t, err)

	require.NotNil(t, state.CurrentOrder)
	assert.Equal(t, "TM-1042", state.CurrentOrder.ID)
	assert.Len(t, state.PastOrders, 2)
	assert.False(t, state.LoadingCurrent)
	assert.False(t, state.LoadingHistory)
	assert.Empty(t, state.Error)
	assert.True(t, state.CurrentOrderTotal.Equal(decimal.NewFromInt(195)), "total was %s", state.CurrentOrderTotal)
}

func TestViewmodelPartialFailureKeepsOtherBranch(t *testing.T) {
	provider := &fakeProvider{
		current: func(context.Context, int) (*Order, error) { return sampleOrder("TM-1042"), nil },
		history: func(context.Context, int) ([]PastOrder, error) { return nil, errors.New("history service unavailable") },
	}
	vm := newTestViewmodel(t, provider)

	state, err := vm.Refresh(context.Background())
	require.NoError(t, err)

	require.NotNil(t, state.CurrentOrder)
	assert.Empty(t, state.PastOrders)
	assert.NotNil(t, state.PastOrders)
	assert.Equal(t, "history service unavailable", state.Error)
	assert.Equal(t, "history service unavailable", state.HistoryError)
	assert.Empty(t, state.CurrentError)
	assert.False(t, state.LoadingHistory)
}

func TestViewmodelFailureRetainsStaleData(t *testing.T) {
	provider := &fakeProvider{
		current: func(_ context.Context, call int) (*Order, error) {
			if call == 1 {
				return sampleOrder("TM-1042"), nil
			}
			return nil, errors.New("timeout talking to kitchen")
		},
		history: func(_ context.Context, call int) ([]PastOrder, error) {
			if call == 1 {
				return sampleHistory(), nil
			}
			return nil, errors.New("")
		},
	}
	vm := newTestViewmodel(t, provider)

	_, err := vm.Refresh(context.Background())
	require.NoError(t, err)
	state, err := vm.Refresh(context.Background())
	require.NoError(t, err)

	require.NotNil(t, state.CurrentOrder)
	assert.Equal(t, "TM-1042", state.CurrentOrder.ID)
	assert.Len(t, state.PastOrders, 2)
	assert.Equal(t, "timeout talking to kitchen", state.CurrentError)
	assert.Equal(t, defaultHistoryError, state.HistoryError)
	assert.Contains(t, []string{"timeout talking to kitchen", defaultHistoryError}, state.Error)
}

func TestViewmodelSharedErrorIsLastWriteWins(t *testing.T) {
	var vm *Viewmodel
	provider := &fakeProvider{
		current: func(context.Context, int) (*Order, error) {
			return nil, errors.New("current failed")
		},
		history: func(context.Context, int) ([]PastOrder, error) {
			// Fail only after the current-order failure has been recorded
			for vm.State().CurrentError == "" {
				time.Sleep(time.Millisecond)
			}
			return nil, errors.New("history failed")
		},
	}
	vm = newTestViewmodel(t, provider)

	state, err := vm.Refresh(context.Background())
	require.NoError(t, err)

	assert.Equal(t, "history failed", state.Error)
	assert.Equal(t, "current failed", state.CurrentError)
	assert.Equal(t, "history failed", state.HistoryError)
}

func TestViewmodelSharedErrorIsSticky(t *testing.T) {
	provider := &fakeProvider{
		current: func(_ context.Context, call int) (*Order, error) {
			if call == 1 {
				return nil, errors.New("current failed")
			}
			return sampleOrder("TM-1042"), nil
		},
	}
	vm := newTestViewmodel(t, provider)

	_, err := vm.Refresh(context.Background())
	require.NoError(t, err)
	state, err := vm.Refresh(context.Background())
	require.NoError(t, err)

	require.NotNil(t, state.CurrentOrder)
	assert.Empty(t, state.CurrentError)
	assert.Equal(t, "current failed", state.Error)
}

func TestViewmodelLoadingFlagsAreIndependent(t *testing.T) {
	releaseCurrent := make(chan struct{})
	provider := &fakeProvider{
		current: func(context.Context, int) (*Order, error) {
			<-releaseCurrent
			return sampleOrder("TM-1042"), nil
		},
		history: func(context.Context, int) ([]PastOrder, error) { return sampleHistory(), nil },
	}
	vm := newTestViewmodel(t, provider)

	done := make(chan State)
	go func() {
		state, _ := vm.Refresh(context.Background())
		done <- state
	}()

	require.Eventually(t, func() bool {
		s := vm.State()
		return s.LoadingCurrent && !s.LoadingHistory && len(s.PastOrders) == 2
	}, time.Second, 5*time.Millisecond)

	close(releaseCurrent)
	state := <-done
	assert.False(t, state.LoadingCurrent)
	require.NotNil(t, state.CurrentOrder)
}

func TestViewmodelSupersededFetchIsDiscarded(t *testing.T) {
	releaseFirst := make(chan struct{})
	provider := &fakeProvider{
		current: func(_ context.Context, call int) (*Order, error) {
			if call == 1 {
				<-releaseFirst
				return sampleOrder("TM-OLD"), nil
			}
			return sampleOrder("TM-NEW"), nil
		},
	}
	vm := newTestViewmodel(t, provider)

	firstDone := make(chan struct{})
	go func() {
		defer close(firstDone)
		_, _ = vm.Refresh(context.Background())
	}()
	require.Eventually(t, func() bool {
		calls, _ := provider.calls()
		return calls == 1
	}, time.Second, 5*time.Millisecond)

	state, err := vm.Refresh(context.Background())
	require.NoError(t, err)
	require.NotNil(t, state.CurrentOrder)
	assert.Equal(t, "TM-NEW", state.CurrentOrder.ID)

	close(releaseFirst)
	<-firstDone

	state = vm.State()
	assert.Equal(t, "TM-NEW", state.CurrentOrder.ID)
	assert.False(t, state.LoadingCurrent)
}

func TestViewmodelRefreshReturnsWhenContextEnds(t *testing.T) {
	release := make(chan struct{})
	provider := &fakeProvider{
		current: func(context.Context, int) (*Order, error) {
			<-release
			return sampleOrder("TM-1042"), nil
		},
	}
	vm := newTestViewmodel(t, provider)

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()

	state, err := vm.Refresh(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.True(t, state.LoadingCurrent)

	close(release)
	require.Eventually(t, func() bool {
		return vm.State().CurrentOrder != nil
	}, time.Second, 5*time.Millisecond)
}

func TestViewmodelCloseDropsLateResults(t *testing.T) {
	started := make(chan struct{})
	provider := &fakeProvider{
		current: func(ctx context.Context, _ int) (*Order, error) {
			close(started)
			<-ctx.Done()
			return sampleOrder("TM-LATE"), nil
		},
	}
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	vm := NewViewmodel(provider, logger)

	vm.Activate()
	<-started
	vm.Close()

	state := vm.State()
	assert.Nil(t, state.CurrentOrder)
	assert.Empty(t, state.Error)

	_, err := vm.Refresh(context.Background())
	assert.ErrorIs(t, err, ErrClosed)

	_, err = vm.ContactSupport(context.Background(), "TM-1042")
	assert.ErrorIs(t, err, ErrClosed)

	// Close is idempotent
	vm.Close()
}

func TestViewmodelActivateRunsOnce(t *testing.T) {
	provider := &fakeProvider{
		current: func(context.Context, int) (*Order, error) { return sampleOrder("TM-1042"), nil },
		history: func(context.Context, int) ([]PastOrder, error) { return sampleHistory(), nil },
	}
	vm := newTestViewmodel(t, provider)

	vm.Activate()
	vm.Activate()

	require.Eventually(t, func() bool {
		s := vm.State()
		return s.CurrentOrder != nil && len(s.PastOrders) == 2
	}, time.Second, 5*time.Millisecond)

	current, history := provider.calls()
	assert.Equal(t, 1, current)
	assert.Equal(t, 1, history)
}

func TestViewmodelContactSupport(t *testing.T) {
	provider := &fakeProvider{
		current: func(context.Context, int) (*Order, error) { return sampleOrder("TM-1042"), nil },
	}
	vm := newTestViewmodel(t, provider)

	before, err := vm.Refresh(context.Background())
	require.NoError(t, err)

	ticket, err := vm.ContactSupport(context.Background(), "TM-1042")
	require.NoError(t, err)
	assert.Equal(t, "TM-1042", ticket.OrderID)
	assert.Equal(t, "open", ticket.Status)

	_, err = vm.ContactSupport(context.Background(), "")
	assert.ErrorIs(t, err, ErrMissingOrderReference)

	assert.Equal(t, before, vm.State())
}

func TestViewmodelStateIsACopy(t *testing.T) {
	provider := &fakeProvider{
		current: func(context.Context, int) (*Order, error) { return sampleOrder("TM-1042"), nil },
		history: func(context.Context, int) ([]PastOrder, error) { return sampleHistory(), nil },
	}
	vm := newTestViewmodel(t, provider)

	state, err := vm.Refresh(context.Background())
	require.NoError(t, err)

	state.CurrentOrder.Items[0].Quantity = 50
	state.PastOrders[0].ID = "changed"

	fresh := vm.State()
	assert.Equal(t, 2, fresh.CurrentOrder.Items[0].Quantity)
	assert.Equal(t, "TM-1001", fresh.PastOrders[0].ID)
}
