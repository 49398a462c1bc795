package orders

import (
	"testing"

	"ibkr-trader/internal/models"
)

func put(conid int64, last float64) models.OptionContract {
	return models.OptionContract{
		ConID:  conid,
		Strike: 5950,
		Right:  models.RightPut,
		Last:   last,
		Delta:  0.7,
	}
}

func TestSpreadPrice(t *testing.T) {
	tests := []struct {
		name     string
		near     float64
		far      float64
		expected float64
	}{
		{"normal spread", 50.0, 55.0, 5.0},
		{"inverted legs", 55.0, 50.0, 5.0},
		{"equal prices floor", 50.0, 50.0, 0.1},
		{"tiny difference floors", 50.0, 50.05, 0.1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := SpreadPrice(tt.near, tt.far); got != tt.expected {
				t.Errorf("SpreadPrice(%v, %v) = %v, want %v", tt.near, tt.far, got, tt.expected)
			}
		})
	}
}

func TestTakeProfitPrice(t *testing.T) {
	if got := TakeProfitPrice(5.0, 20); got != 6.0 {
		t.Errorf("TakeProfitPrice(5.0, 20) = %v, want 6.0", got)
	}
	if got := TakeProfitPrice(5.0, 0); got != 5.0 {
		t.Errorf("TakeProfitPrice(5.0, 0) = %v, want 5.0", got)
	}
}

func TestBuildOpenSpread(t *testing.T) {
	near, far := put(101, 50.0), put(202, 55.0)

	order := BuildOpenSpread(near, far, 1)

	if order.SecType != models.SecTypeCombo {
		t.Errorf("expected BAG order, got %s", order.SecType)
	}
	if order.Side != models.OrderSideSell {
		t.Errorf("opening a credit spread must be SELL, got %s", order.Side)
	}
	if order.OrderType != models.OrderTypeLimit {
		t.Errorf("expected LMT, got %s", order.OrderType)
	}
	if order.Price != 5.0 {
		t.Errorf("expected limit 5.0, got %v", order.Price)
	}
	if order.TIF != models.TIFGoodTillCancel {
		t.Errorf("expected GTC, got %s", order.TIF)
	}
	if order.COID == "" {
		t.Error("expected a client order id")
	}
	if len(order.Legs) != 2 {
		t.Fatalf("expected 2 legs, got %d", len(order.Legs))
	}
	if order.Legs[0].ConID != 101 || order.Legs[0].Side != models.OrderSideSell || order.Legs[0].Ratio != 1 {
		t.Errorf("near leg wrong: %+v", order.Legs[0])
	}
	if order.Legs[1].ConID != 202 || order.Legs[1].Side != models.OrderSideBuy || order.Legs[1].Ratio != 1 {
		t.Errorf("far leg wrong: %+v", order.Legs[1])
	}
}

func TestBuildTakeProfit(t *testing.T) {
	order := BuildTakeProfit(101, 202, 5.0, 20, 1)

	if order.Side != models.OrderSideBuy {
		t.Errorf("take-profit must invert to BUY, got %s", order.Side)
	}
	if order.Price != 6.0 {
		t.Errorf("expected limit 6.0, got %v", order.Price)
	}
	if order.TIF != models.TIFGoodTillCancel {
		t.Errorf("expected GTC, got %s", order.TIF)
	}
	if order.Legs[0].Side != models.OrderSideBuy || order.Legs[1].Side != models.OrderSideSell {
		t.Errorf("take-profit legs must invert the open: %+v", order.Legs)
	}
}

func TestBuildClose(t *testing.T) {
	order := BuildClose(101, 202)

	if order.OrderType != models.OrderTypeMarket {
		t.Errorf("close must be MKT, got %s", order.OrderType)
	}
	if order.TIF != models.TIFDay {
		t.Errorf("close must be DAY, got %s", order.TIF)
	}
	if order.Quantity != 1 {
		t.Errorf("close quantity fixed at 1, got %d", order.Quantity)
	}
	if order.Price != 0 {
		t.Errorf("market order must not carry a price, got %v", order.Price)
	}
	if order.Legs[0].Side != models.OrderSideBuy || order.Legs[1].Side != models.OrderSideSell {
		t.Errorf("close legs must invert the open: %+v", order.Legs)
	}
}

func TestBuilders_FreshClientOrderIDs(t *testing.T) {
	near, far := put(101, 50.0), put(202, 55.0)

	seen := make(map[string]bool)
	for i := 0; i < 10; i++ {
		for _, coid := range []string{
			BuildOpenSpread(near, far, 1).COID,
			BuildTakeProfit(101, 202, 5.0, 20, 1).COID,
			BuildClose(101, 202).COID,
		} {
			if coid == "" {
				t.Fatal("empty client order id")
			}
			if seen[coid] {
				t.Fatalf("duplicate client order id %s", coid)
			}
			seen[coid] = true
		}
	}
}
