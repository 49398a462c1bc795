package engine

import (
	"context"
	"fmt"

	apperrors "ibkr-trader/internal/errors"
	"ibkr-trader/internal/journal"
	"ibkr-trader/internal/logging"
	"ibkr-trader/internal/models"
	"ibkr-trader/internal/orders"
	"ibkr-trader/internal/selector"
)

// spreadQuantity is fixed at one spread per execution.
const spreadQuantity = 1

// execute runs the full open sequence for one strategy: guard the
// single-position invariant, fetch both chains, select both legs, validate
// the pair, then place the opening order and arm the take-profit. Any
// failure before the opening order is accepted aborts to idle with no state
// recorded.
func (e *Engine) execute(ctx context.Context, s models.StrategyDefinition, source string) {
	log := logging.WithStrategy(e.log, s.ID, s.Name)

	if st := e.activeState(); st != nil && st.PositionOpen {
		log.Warn().Str("open_strategy", st.Strategy.Name).Msg("Position already open, trigger rejected")
		e.emit("warn", s.ID, s.Name, "Trigger rejected: a position is already open")
		e.record(ctx, journal.KindReject, s.ID, s.Name, "", "position already open")
		e.metrics.Abort("position_open")
		return
	}

	logging.LogTrigger(log, s.Name, source)
	e.emit("info", s.ID, s.Name, "Executing strategy")
	e.record(ctx, journal.KindTrigger, s.ID, s.Name, "", source)
	e.metrics.Trigger(source)

	now := e.now()
	nearExpiry := now.AddDate(0, 0, s.NearDays)
	farExpiry := now.AddDate(0, 0, s.FarDays)

	nearChain, err := e.gw.FetchChain(ctx, e.cfg.Symbol, nearExpiry)
	if err != nil {
		e.abort(ctx, s, "near chain fetch failed", err)
		return
	}
	farChain, err := e.gw.FetchChain(ctx, e.cfg.Symbol, farExpiry)
	if err != nil {
		e.abort(ctx, s, "far chain fetch failed", err)
		return
	}

	near, err := selector.SelectPut(nearChain, s.TargetDelta)
	if err != nil {
		e.abort(ctx, s, "no suitable near option", err)
		return
	}
	far, err := selector.SelectPut(farChain, s.TargetDelta)
	if err != nil {
		e.abort(ctx, s, "no suitable far option", err)
		return
	}

	if near.Strike != far.Strike {
		e.abort(ctx, s, "strike mismatch", apperrors.ErrStrikeMismatch)
		return
	}
	if near.ConID == far.ConID {
		e.abort(ctx, s, "duplicate contract", apperrors.ErrDuplicateContract)
		return
	}

	open := orders.BuildOpenSpread(*near, *far, spreadQuantity)
	log.Info().
		Int64("near_conid", near.ConID).
		Int64("far_conid", far.ConID).
		Float64("price", open.Price).
		Msg("Placing calendar spread")

	if err := e.gw.ValidateOrder(ctx, open); err != nil {
		e.abort(ctx, s, "open order validation failed", err)
		return
	}
	orderID, err := e.gw.SubmitOrder(ctx, open)
	if err != nil {
		e.abort(ctx, s, "open order submission failed", err)
		return
	}

	e.setActive(&ActiveStrategyState{
		Strategy:     s,
		NearConID:    near.ConID,
		FarConID:     far.ConID,
		EntryPrice:   open.Price,
		OrderID:      orderID,
		PositionOpen: true,
		OpenedAt:     now,
	})
	log.Info().Str("order_id", orderID).Msg("Spread placed")
	e.emit("info", s.ID, s.Name, fmt.Sprintf("Spread placed, order %s", orderID))
	e.record(ctx, journal.KindOpen, s.ID, s.Name, orderID, fmt.Sprintf("entry price %.2f", open.Price))
	e.metrics.Order("open")

	e.placeTakeProfit(ctx, s)
}

// placeTakeProfit arms the take-profit once. Failure does not revert the
// position: the filled spread cannot be un-filled, so the position stays
// open without a protective order and the operator is told.
func (e *Engine) placeTakeProfit(ctx context.Context, s models.StrategyDefinition) {
	st := e.activeState()
	if st == nil || !st.PositionOpen {
		return
	}
	log := logging.WithStrategy(e.log, s.ID, s.Name)

	tp := orders.BuildTakeProfit(st.NearConID, st.FarConID, st.EntryPrice, s.TakeProfitPct, spreadQuantity)
	log.Info().Float64("price", tp.Price).Msg("Placing take-profit")

	if err := e.gw.ValidateOrder(ctx, tp); err != nil {
		log.Error().Err(err).Msg("Take-profit validation failed, position open without protective order")
		e.emit("warn", s.ID, s.Name, "Take-profit placement failed; position is unprotected")
		e.record(ctx, journal.KindAbort, s.ID, s.Name, "", "take-profit validation failed")
		return
	}
	tpOrderID, err := e.gw.SubmitOrder(ctx, tp)
	if err != nil {
		log.Error().Err(err).Msg("Take-profit submission failed, position open without protective order")
		e.emit("warn", s.ID, s.Name, "Take-profit placement failed; position is unprotected")
		e.record(ctx, journal.KindAbort, s.ID, s.Name, "", "take-profit submission failed")
		return
	}

	e.mu.Lock()
	if e.active != nil {
		e.active.TPOrderID = tpOrderID
	}
	e.mu.Unlock()

	log.Info().Str("order_id", tpOrderID).Msg("Take-profit placed")
	e.emit("info", s.ID, s.Name, fmt.Sprintf("Take-profit placed, order %s", tpOrderID))
	e.record(ctx, journal.KindTakeProfit, s.ID, s.Name, tpOrderID, fmt.Sprintf("limit %.2f", tp.Price))
	e.metrics.Order("take_profit")
}

// closePosition submits the market close for the open spread. Close without
// an open position is a no-op with no network call. A failed close leaves
// the position open; there is no automatic retry, the operator must act.
func (e *Engine) closePosition(ctx context.Context, reason string) {
	st := e.activeState()
	if st == nil || !st.PositionOpen {
		e.log.Debug().Str("reason", reason).Msg("Close requested with no open position")
		return
	}
	s := st.Strategy
	log := logging.WithStrategy(e.log, s.ID, s.Name)
	log.Info().Str("reason", reason).Msg("Closing position")

	closeOrder := orders.BuildClose(st.NearConID, st.FarConID)
	if err := e.gw.ValidateOrder(ctx, closeOrder); err != nil {
		log.Error().Err(err).Msg("Close validation failed, position remains open")
		e.emit("error", s.ID, s.Name, "Close failed; position remains open")
		e.record(ctx, journal.KindAbort, s.ID, s.Name, "", "close validation failed")
		return
	}
	orderID, err := e.gw.SubmitOrder(ctx, closeOrder)
	if err != nil {
		log.Error().Err(err).Msg("Close failed, position remains open")
		e.emit("error", s.ID, s.Name, "Close failed; position remains open")
		e.record(ctx, journal.KindAbort, s.ID, s.Name, "", "close submission failed")
		return
	}

	e.setActive(nil)
	log.Info().Str("order_id", orderID).Msg("Position closed")
	e.emit("info", s.ID, s.Name, "Position closed")
	e.record(ctx, journal.KindClose, s.ID, s.Name, orderID, reason)
	e.metrics.Order("close")
}

// abort logs and journals a hard abort of the execution attempt. No state
// has been recorded at any abort point, so idle is restored by doing nothing.
func (e *Engine) abort(ctx context.Context, s models.StrategyDefinition, reason string, err error) {
	logging.LogAbort(e.log, s.Name, reason, err)
	e.emit("warn", s.ID, s.Name, "Aborted: "+reason)
	e.record(ctx, journal.KindAbort, s.ID, s.Name, "", reason)
	e.metrics.Abort(reason)
}
