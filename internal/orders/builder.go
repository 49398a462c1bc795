// Package orders builds the order payloads for calendar-spread lifecycles.
//
// Builders are pure: they read their inputs, stamp a fresh client order id,
// and return a payload. Nothing here talks to the gateway.
package orders

import (
	"math"

	"github.com/google/uuid"

	"ibkr-trader/internal/models"
)

// MinSpreadPrice is the floor for the opening limit price. Equal leg prices
// would otherwise produce a zero limit, which the gateway rejects.
const MinSpreadPrice = 0.1

// SpreadPrice returns the opening limit price for a near/far leg pair.
func SpreadPrice(nearLast, farLast float64) float64 {
	price := math.Abs(nearLast - farLast)
	if price < MinSpreadPrice {
		return MinSpreadPrice
	}
	return price
}

// TakeProfitPrice returns the take-profit limit for a given entry price.
func TakeProfitPrice(entryPrice, takeProfitPct float64) float64 {
	return entryPrice * (1 + takeProfitPct/100)
}

// BuildOpenSpread constructs the credit calendar-spread opening order:
// sell the near leg, buy the far leg, 1:1 ratio, GTC limit.
func BuildOpenSpread(near, far models.OptionContract, qty int) *models.Order {
	return &models.Order{
		ConID:     near.ConID,
		SecType:   models.SecTypeCombo,
		COID:      uuid.NewString(),
		OrderType: models.OrderTypeLimit,
		Side:      models.OrderSideSell,
		Quantity:  qty,
		Legs: []models.OrderLeg{
			{ConID: near.ConID, Side: models.OrderSideSell, Ratio: 1},
			{ConID: far.ConID, Side: models.OrderSideBuy, Ratio: 1},
		},
		Price: SpreadPrice(near.Last, far.Last),
		TIF:   models.TIFGoodTillCancel,
	}
}

// BuildTakeProfit constructs the closing limit order armed right after a
// successful open: inverse legs at entry price grown by the take-profit
// percentage.
func BuildTakeProfit(nearConID, farConID int64, entryPrice, takeProfitPct float64, qty int) *models.Order {
	return &models.Order{
		ConID:     nearConID,
		SecType:   models.SecTypeCombo,
		COID:      uuid.NewString(),
		OrderType: models.OrderTypeLimit,
		Side:      models.OrderSideBuy,
		Quantity:  qty,
		Legs: []models.OrderLeg{
			{ConID: nearConID, Side: models.OrderSideBuy, Ratio: 1},
			{ConID: farConID, Side: models.OrderSideSell, Ratio: 1},
		},
		Price: TakeProfitPrice(entryPrice, takeProfitPct),
		TIF:   models.TIFGoodTillCancel,
	}
}

// BuildClose constructs the market order that unwinds the spread, day
// time-in-force, quantity fixed at one spread.
func BuildClose(nearConID, farConID int64) *models.Order {
	return &models.Order{
		ConID:     nearConID,
		SecType:   models.SecTypeCombo,
		COID:      uuid.NewString(),
		OrderType: models.OrderTypeMarket,
		Side:      models.OrderSideBuy,
		Quantity:  1,
		Legs: []models.OrderLeg{
			{ConID: nearConID, Side: models.OrderSideBuy, Ratio: 1},
			{ConID: farConID, Side: models.OrderSideSell, Ratio: 1},
		},
		TIF: models.TIFDay,
	}
}
