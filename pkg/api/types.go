package api

// API response types for REST endpoints.
// Decimal fields are canonical decimal strings; Display fields are formatted
// for humans and must not be parsed back.

// BalanceInfo is one asset balance.
type BalanceInfo struct {
	Symbol  string `json:"symbol"`
	Value   string `json:"value"`   // canonical, e.g. "100.000001"
	Display string `json:"display"` // e.g. "$100"
}

// OrderInfo is an order from the persisted snapshot.
type OrderInfo struct {
	ID        string `json:"id"`
	Symbol    string `json:"symbol"`
	Side      string `json:"side"`
	Type      string `json:"type"`
	Price     string `json:"price"`
	Qty       string `json:"qty"`
	Filled    string `json:"filled"`
	Remaining string `json:"remaining"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"createdAt"`
	UpdatedAt int64  `json:"updatedAt"`
}

// StateResponse is the current persisted snapshot.
type StateResponse struct {
	SchemaVersion  int           `json:"schemaVersion"`
	AccountAddress string        `json:"accountAddress,omitempty"`
	Balances       []BalanceInfo `json:"balances"` // sorted by symbol
	Orders         []OrderInfo   `json:"orders"`
	SavedAt        int64         `json:"savedAt"` // Unix milliseconds
}

// SmallInfo is the subscript decomposition of a small value.
type SmallInfo struct {
	Int       string `json:"int"`
	Zeros     int    `json:"zeros"`
	Tail      string `json:"tail"`
	Collapsed bool   `json:"collapsed"`
}

// FormatResponse renders a single value.
type FormatResponse struct {
	Value   string     `json:"value"`
	Display string     `json:"display"`
	Small   *SmallInfo `json:"small,omitempty"` // set when subscript notation applies
}

// UnitsResponse is a raw ⇄ human conversion.
type UnitsResponse struct {
	Symbol   string `json:"symbol"`
	Decimals int    `json:"decimals"`
	Raw      string `json:"raw"`
	Human    string `json:"human"`
	Display  string `json:"display"`
}

// HealthResponse reports storage reachability.
type HealthResponse struct {
	Status string `json:"status"`
	State  string `json:"state"` // empty, stored or unavailable
}

// ErrorResponse is returned for all errors
type ErrorResponse struct {
	Error   string `json:"error"`
	Message string `json:"message"`
}
