// Package models provides domain models for the trading application.
package models

// OrderSide represents the side of an order or leg.
type OrderSide string

const (
	OrderSideBuy  OrderSide = "BUY"
	OrderSideSell OrderSide = "SELL"
)

// Opposite returns the inverse side.
func (s OrderSide) Opposite() OrderSide {
	if s == OrderSideBuy {
		return OrderSideSell
	}
	return OrderSideBuy
}

// OrderType represents the type of an order.
type OrderType string

const (
	OrderTypeLimit  OrderType = "LMT"
	OrderTypeMarket OrderType = "MKT"
)

// TimeInForce represents how long an order stays working.
type TimeInForce string

const (
	TIFGoodTillCancel TimeInForce = "GTC"
	TIFDay            TimeInForce = "DAY"
)

// SecType represents the security type of an order.
type SecType string

const (
	SecTypeOption SecType = "OPT"
	SecTypeCombo  SecType = "BAG" // multi-leg combination order
)

// OptionRight represents the right of an option contract.
type OptionRight string

const (
	RightPut  OptionRight = "P"
	RightCall OptionRight = "C"
)

// OrderLeg represents one leg of a combination order.
type OrderLeg struct {
	ConID int64     `json:"conid"`
	Side  OrderSide `json:"side"`
	Ratio int       `json:"ratio"`
}

// Order represents an order payload in the shape the gateway accepts.
// COID is a client-generated idempotency token; every order carries a
// fresh one so the gateway never deduplicates two distinct intents.
type Order struct {
	ConID     int64       `json:"conid"`
	SecType   SecType     `json:"secType"`
	COID      string      `json:"cOID"`
	OrderType OrderType   `json:"orderType"`
	Side      OrderSide   `json:"side"`
	Quantity  int         `json:"quantity"`
	Legs      []OrderLeg  `json:"legs,omitempty"`
	Price     float64     `json:"price,omitempty"`
	TIF       TimeInForce `json:"tif"`
}
