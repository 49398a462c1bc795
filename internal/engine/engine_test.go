package engine

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/rs/zerolog"

	apperrors "ibkr-trader/internal/errors"
	"ibkr-trader/internal/gateway"
	"ibkr-trader/internal/models"
)

// entryTick is a Monday at 09:32, matching the test strategy's entry.
var entryTick = time.Date(2025, 3, 3, 9, 32, 0, 0, time.UTC)

func testStrategy() models.StrategyDefinition {
	return models.StrategyDefinition{
		ID:            "1",
		Name:          "Monday SPX Calendar",
		DayOfWeek:     "Monday",
		EntryTime:     "09:32",
		ExitTime:      "15:45",
		TargetDelta:   70,
		NearDays:      2,
		FarDays:       9,
		TakeProfitPct: 20,
	}
}

func newTestEngine(t *testing.T, gw gateway.Client, clock func() time.Time) *Engine {
	t.Helper()
	cfg := Config{
		Symbol:           "SPX",
		TickInterval:     time.Second,
		PostTriggerSleep: time.Minute,
		Location:         time.UTC,
		Clock:            clock,
	}
	return New(gw, []models.StrategyDefinition{testStrategy()}, cfg, zerolog.Nop())
}

func newPaper(clock func() time.Time) *gateway.PaperGateway {
	return gateway.NewPaperGateway(gateway.PaperConfig{Clock: clock})
}

func fixedClock(at time.Time) func() time.Time {
	return func() time.Time { return at }
}

func TestTick_ScheduledTriggerOpensPosition(t *testing.T) {
	clock := fixedClock(entryTick)
	gw := newPaper(clock)
	eng := newTestEngine(t, gw, clock)

	sleep := eng.tick(context.Background(), entryTick)

	if sleep != eng.cfg.PostTriggerSleep {
		t.Errorf("expected post-trigger sleep, got %v", sleep)
	}

	st := eng.Status()
	if !st.PositionOpen {
		t.Fatal("expected an open position")
	}
	if st.OrderID != "PAPER-0001" {
		t.Errorf("unexpected open order id %q", st.OrderID)
	}
	if st.TPOrderID != "PAPER-0002" {
		t.Errorf("unexpected take-profit order id %q", st.TPOrderID)
	}

	submitted := gw.SubmittedOrders()
	if len(submitted) != 2 {
		t.Fatalf("expected open + take-profit, got %d orders", len(submitted))
	}

	open := submitted[0]
	if open.SecType != models.SecTypeCombo || open.Side != models.OrderSideSell {
		t.Errorf("open order wrong shape: %+v", open)
	}
	// near leg 2 DTE quotes 50, far leg 9 DTE quotes 55
	if open.Price != 5.0 {
		t.Errorf("expected open limit 5.0, got %v", open.Price)
	}

	tp := submitted[1]
	if tp.Side != models.OrderSideBuy || tp.Price != 6.0 {
		t.Errorf("take-profit wrong shape: %+v", tp)
	}
}

func TestTick_OffScheduleDoesNothing(t *testing.T) {
	at := entryTick.Add(-time.Minute)
	clock := fixedClock(at)
	gw := newPaper(clock)
	eng := newTestEngine(t, gw, clock)

	sleep := eng.tick(context.Background(), at)

	if sleep != eng.cfg.TickInterval {
		t.Errorf("expected idle tick interval, got %v", sleep)
	}
	if len(gw.SubmittedOrders()) != 0 {
		t.Error("no orders expected off schedule")
	}
	if eng.Status().PositionOpen {
		t.Error("no position expected off schedule")
	}
}

func TestTick_ManualTriggerFiresOffSchedule(t *testing.T) {
	at := entryTick.Add(3 * time.Hour) // nowhere near the entry time
	clock := fixedClock(at)
	gw := newPaper(clock)
	eng := newTestEngine(t, gw, clock)

	if err := eng.Trigger("1"); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	sleep := eng.tick(context.Background(), at)

	if sleep != eng.cfg.PostTriggerSleep {
		t.Errorf("expected post-trigger sleep, got %v", sleep)
	}
	if !eng.Status().PositionOpen {
		t.Error("manual trigger should open a position")
	}
}

func TestTrigger_UnknownStrategy(t *testing.T) {
	clock := fixedClock(entryTick)
	eng := newTestEngine(t, newPaper(clock), clock)

	err := eng.Trigger("99")
	if !errors.Is(err, apperrors.ErrStrategyNotFound) {
		t.Errorf("expected ErrStrategyNotFound, got %v", err)
	}
}

func TestTick_SecondTriggerRejectedWhilePositionOpen(t *testing.T) {
	clock := fixedClock(entryTick)
	gw := newPaper(clock)
	eng := newTestEngine(t, gw, clock)

	eng.tick(context.Background(), entryTick)
	before := eng.Status()

	if err := eng.Trigger("1"); err != nil {
		t.Fatalf("Trigger: %v", err)
	}
	eng.tick(context.Background(), entryTick.Add(5*time.Minute))

	after := eng.Status()
	if len(gw.SubmittedOrders()) != 2 {
		t.Errorf("rejected trigger must not submit orders, got %d", len(gw.SubmittedOrders()))
	}
	if after.OrderID != before.OrderID || after.TPOrderID != before.TPOrderID {
		t.Error("rejected trigger must not mutate the active position")
	}
}

func TestTick_DuplicateContractAborts(t *testing.T) {
	clock := fixedClock(entryTick)
	gw := newPaper(clock)
	gw.ChainFunc = func(symbol string, expiry time.Time) (*models.OptionChain, error) {
		return &models.OptionChain{
			Symbol: symbol,
			Expiry: expiry,
			Strike: 5950,
			Contracts: []models.OptionContract{
				{ConID: 42, Strike: 5950, Right: models.RightPut, Last: 50, Delta: 0.7},
			},
		}, nil
	}
	eng := newTestEngine(t, gw, clock)

	eng.tick(context.Background(), entryTick)

	if len(gw.SubmittedOrders()) != 0 {
		t.Error("duplicate contract must abort before any order")
	}
	if eng.Status().PositionOpen {
		t.Error("abort must leave no position")
	}
}

func TestTick_StrikeMismatchAborts(t *testing.T) {
	clock := fixedClock(entryTick)
	gw := newPaper(clock)
	conid := int64(0)
	gw.ChainFunc = func(symbol string, expiry time.Time) (*models.OptionChain, error) {
		conid++
		return &models.OptionChain{
			Symbol: symbol,
			Expiry: expiry,
			Strike: 5950,
			Contracts: []models.OptionContract{
				// strike drifts between the two fetches
				{ConID: conid, Strike: 5950 + float64(conid)*5, Right: models.RightPut, Last: 50, Delta: 0.7},
			},
		}, nil
	}
	eng := newTestEngine(t, gw, clock)

	eng.tick(context.Background(), entryTick)

	if len(gw.SubmittedOrders()) != 0 {
		t.Error("strike mismatch must abort before any order")
	}
	if eng.Status().PositionOpen {
		t.Error("abort must leave no position")
	}
}

func TestTick_ChainFailureAborts(t *testing.T) {
	clock := fixedClock(entryTick)
	gw := newPaper(clock)
	gw.FailChain = true
	eng := newTestEngine(t, gw, clock)

	sleep := eng.tick(context.Background(), entryTick)

	if sleep != eng.cfg.PostTriggerSleep {
		t.Errorf("a trigger that aborts still sleeps the trigger interval, got %v", sleep)
	}
	if eng.Status().PositionOpen {
		t.Error("abort must leave no position")
	}
}

func TestTick_CloseWithoutPositionIsNoOp(t *testing.T) {
	at := entryTick.Add(-time.Hour)
	clock := fixedClock(at)
	gw := newPaper(clock)
	eng := newTestEngine(t, gw, clock)

	eng.RequestClose()
	eng.tick(context.Background(), at)

	if len(gw.SubmittedOrders()) != 0 {
		t.Error("close with no open position must not touch the gateway")
	}
}

func TestTick_OperatorCloseUnwindsPosition(t *testing.T) {
	clock := fixedClock(entryTick)
	gw := newPaper(clock)
	eng := newTestEngine(t, gw, clock)

	eng.tick(context.Background(), entryTick)
	eng.RequestClose()
	eng.tick(context.Background(), entryTick.Add(2*time.Minute))

	submitted := gw.SubmittedOrders()
	if len(submitted) != 3 {
		t.Fatalf("expected open + take-profit + close, got %d", len(submitted))
	}
	closeOrder := submitted[2]
	if closeOrder.OrderType != models.OrderTypeMarket || closeOrder.TIF != models.TIFDay {
		t.Errorf("close order wrong shape: %+v", closeOrder)
	}
	if eng.Status().PositionOpen {
		t.Error("close must clear the position")
	}
}

func TestTick_ExitTimeClosesPosition(t *testing.T) {
	clock := fixedClock(entryTick)
	gw := newPaper(clock)
	eng := newTestEngine(t, gw, clock)

	eng.tick(context.Background(), entryTick)

	exitAt := time.Date(2025, 3, 3, 15, 45, 0, 0, time.UTC)
	eng.tick(context.Background(), exitAt)

	if len(gw.SubmittedOrders()) != 3 {
		t.Fatalf("expected a close at exit time, got %d orders", len(gw.SubmittedOrders()))
	}
	if eng.Status().PositionOpen {
		t.Error("exit time must clear the position")
	}
}

func TestTick_CloseFailureKeepsPositionOpen(t *testing.T) {
	clock := fixedClock(entryTick)
	gw := newPaper(clock)
	gw.FailSubmitAfter = 2 // open and take-profit succeed, the close fails
	eng := newTestEngine(t, gw, clock)

	eng.tick(context.Background(), entryTick)
	eng.RequestClose()
	eng.tick(context.Background(), entryTick.Add(2*time.Minute))

	st := eng.Status()
	if !st.PositionOpen {
		t.Error("failed close must leave the position open")
	}
	if st.OrderID == "" || st.TPOrderID == "" {
		t.Error("failed close must not clear order state")
	}
}

func TestTick_TakeProfitFailureKeepsPositionOpen(t *testing.T) {
	clock := fixedClock(entryTick)
	gw := newPaper(clock)
	gw.FailSubmitAfter = 1 // open succeeds, take-profit fails
	eng := newTestEngine(t, gw, clock)

	eng.tick(context.Background(), entryTick)

	st := eng.Status()
	if !st.PositionOpen {
		t.Error("take-profit failure must not revert the filled spread")
	}
	if st.TPOrderID != "" {
		t.Errorf("no take-profit order id expected, got %q", st.TPOrderID)
	}
}

func TestStart_AuthFailureDoesNotStartLoop(t *testing.T) {
	clock := fixedClock(entryTick)
	gw := newPaper(clock)
	gw.FailAuth = true
	eng := newTestEngine(t, gw, clock)

	if err := eng.Start(context.Background()); err == nil {
		t.Fatal("expected an error when authentication fails")
	}
	if eng.Running() {
		t.Error("loop must not start after a failed authentication")
	}
}

func TestStartStop(t *testing.T) {
	clock := fixedClock(entryTick.Add(-time.Hour))
	gw := newPaper(clock)
	eng := newTestEngine(t, gw, clock)

	if err := eng.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	if !eng.Running() {
		t.Error("expected the loop to be running")
	}

	eng.Stop()
	if eng.Running() {
		t.Error("expected the loop to be stopped")
	}

	// Stop on a stopped engine is a no-op.
	eng.Stop()
}
