package state

import (
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"

	"github.com/uhyunpark/spark/pkg/decimal"
)

// CurrentSchemaVersion is written by Save. Load accepts it, and documents
// without a schemaVersion field, which predate versioning and share its shape.
const CurrentSchemaVersion = 1

// Snapshot is a point-in-time copy of application state.
type Snapshot struct {
	SchemaVersion  int
	AccountAddress *common.Address // nil when no wallet is connected

	// Balances per asset symbol (e.g., "ETH" → 1.5)
	Balances map[string]decimal.Value

	Orders  []OrderRecord
	SavedAt time.Time
}

// Balance returns the balance for symbol, zero when absent.
func (s *Snapshot) Balance(symbol string) decimal.Value {
	if v, ok := s.Balances[symbol]; ok {
		return v
	}
	return decimal.Zero
}

// OpenOrders returns orders that are still active, in stored order.
func (s *Snapshot) OpenOrders() []OrderRecord {
	var out []OrderRecord
	for _, o := range s.Orders {
		if !o.IsClosed() {
			out = append(out, o)
		}
	}
	return out
}

// OrderStatus represents the lifecycle state of an order
type OrderStatus int8

const (
	OrderOpen OrderStatus = iota
	OrderPartiallyFilled
	OrderFilled
	OrderCancelled
	OrderRejected
)

func (s OrderStatus) String() string {
	switch s {
	case OrderOpen:
		return "open"
	case OrderPartiallyFilled:
		return "partially_filled"
	case OrderFilled:
		return "filled"
	case OrderCancelled:
		return "cancelled"
	case OrderRejected:
		return "rejected"
	default:
		return "unknown"
	}
}

// ParseOrderStatus is the inverse of OrderStatus.String.
func ParseOrderStatus(s string) (OrderStatus, error) {
	switch s {
	case "open":
		return OrderOpen, nil
	case "partially_filled":
		return OrderPartiallyFilled, nil
	case "filled":
		return OrderFilled, nil
	case "cancelled":
		return OrderCancelled, nil
	case "rejected":
		return OrderRejected, nil
	default:
		return 0, fmt.Errorf("unknown order status %q", s)
	}
}

// OrderRecord is an order as the UI last saw it.
type OrderRecord struct {
	ID     string
	Symbol string // Market symbol (e.g., "ETH-USDC")
	Side   string // "buy" or "sell"
	Type   string // "GTC", "IOC" or "market"

	Price  decimal.Value
	Qty    decimal.Value
	Filled decimal.Value

	Status OrderStatus

	// Timestamps (Unix milliseconds)
	CreatedAt int64
	UpdatedAt int64
}

// Remaining returns unfilled quantity
func (o *OrderRecord) Remaining() decimal.Value {
	return o.Qty.Sub(o.Filled)
}

// IsClosed returns true if order is no longer active
func (o *OrderRecord) IsClosed() bool {
	return o.Status == OrderFilled || o.Status == OrderCancelled || o.Status == OrderRejected
}

// Notional returns Price × Qty.
func (o *OrderRecord) Notional() decimal.Value {
	return o.Price.Mul(o.Qty)
}
