package state

import (
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum/common"
	"go.uber.org/zap"

	"github.com/uhyunpark/spark/pkg/decimal"
	"github.com/uhyunpark/spark/pkg/storage"
	"github.com/uhyunpark/spark/pkg/util"
)

var (
	ErrCorruptState  = errors.New("corrupt state")
	ErrSchemaVersion = errors.New("unsupported schema version")
	ErrInvalidOrder  = errors.New("invalid order")
)

// Wire format. Every decimal is a JSON string; JSON numbers are only used
// for integers (version, timestamps).
type wireSnapshot struct {
	SchemaVersion  *int              `json:"schemaVersion,omitempty"`
	AccountAddress *string           `json:"accountAddress,omitempty"`
	Balances       map[string]string `json:"balances"`
	Orders         []wireOrder       `json:"orders"`
	SavedAt        *int64            `json:"savedAt"`
}

type wireOrder struct {
	ID        string  `json:"id"`
	Symbol    string  `json:"symbol"`
	Side      string  `json:"side"`
	Type      string  `json:"type,omitempty"`
	Price     *string `json:"price"`
	Qty       *string `json:"qty"`
	Filled    *string `json:"filled,omitempty"`
	Status    string  `json:"status,omitempty"`
	CreatedAt int64   `json:"createdAt"`
	UpdatedAt int64   `json:"updatedAt"`
}

// Encode serializes snap. SchemaVersion and SavedAt are written as given.
// Orders that Decode would reject fail with ErrInvalidOrder, so nothing is
// written that cannot be read back.
func Encode(snap Snapshot) ([]byte, error) {
	version := snap.SchemaVersion
	savedAt := snap.SavedAt.UnixMilli()

	w := wireSnapshot{
		SchemaVersion: &version,
		Balances:      make(map[string]string, len(snap.Balances)),
		Orders:        make([]wireOrder, 0, len(snap.Orders)),
		SavedAt:       &savedAt,
	}
	if snap.AccountAddress != nil {
		addr := snap.AccountAddress.Hex()
		w.AccountAddress = &addr
	}
	for sym, v := range snap.Balances {
		if sym == "" {
			return nil, errors.New("balance with empty symbol")
		}
		w.Balances[sym] = v.String()
	}
	for i, o := range snap.Orders {
		if err := validateOrder(o); err != nil {
			return nil, fmt.Errorf("%w: order %d: %v", ErrInvalidOrder, i, err)
		}
		price, qty, filled := o.Price.String(), o.Qty.String(), o.Filled.String()
		w.Orders = append(w.Orders, wireOrder{
			ID:        o.ID,
			Symbol:    o.Symbol,
			Side:      o.Side,
			Type:      o.Type,
			Price:     &price,
			Qty:       &qty,
			Filled:    &filled,
			Status:    o.Status.String(),
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
		})
	}

	return json.Marshal(w)
}

func corrupt(format string, args ...any) error {
	return fmt.Errorf("%w: %s", ErrCorruptState, fmt.Sprintf(format, args...))
}

// Decode parses and validates a stored document. Every required field is
// checked before any nested value is trusted. Failures wrap ErrCorruptState
// or ErrSchemaVersion.
func Decode(data []byte) (Snapshot, error) {
	var w wireSnapshot
	if err := json.Unmarshal(data, &w); err != nil {
		return Snapshot{}, corrupt("%v", err)
	}

	version := CurrentSchemaVersion
	if w.SchemaVersion != nil {
		version = *w.SchemaVersion
	}
	if version != CurrentSchemaVersion {
		return Snapshot{}, fmt.Errorf("%w: got %d, want %d", ErrSchemaVersion, version, CurrentSchemaVersion)
	}

	if w.Balances == nil {
		return Snapshot{}, corrupt("missing balances")
	}
	if w.Orders == nil {
		return Snapshot{}, corrupt("missing orders")
	}
	if w.SavedAt == nil {
		return Snapshot{}, corrupt("missing savedAt")
	}

	snap := Snapshot{
		SchemaVersion: version,
		Balances:      make(map[string]decimal.Value, len(w.Balances)),
		Orders:        make([]OrderRecord, 0, len(w.Orders)),
		SavedAt:       time.UnixMilli(*w.SavedAt),
	}

	if w.AccountAddress != nil {
		if !common.IsHexAddress(*w.AccountAddress) {
			return Snapshot{}, corrupt("invalid account address %q", *w.AccountAddress)
		}
		addr := common.HexToAddress(*w.AccountAddress)
		snap.AccountAddress = &addr
	}

	for sym, s := range w.Balances {
		if sym == "" {
			return Snapshot{}, corrupt("balance with empty symbol")
		}
		v, err := decimal.Parse(s)
		if err != nil {
			return Snapshot{}, corrupt("balance %s: %v", sym, err)
		}
		snap.Balances[sym] = v
	}

	for i, wo := range w.Orders {
		o, err := decodeOrder(wo)
		if err != nil {
			return Snapshot{}, corrupt("order %d: %v", i, err)
		}
		snap.Orders = append(snap.Orders, o)
	}

	return snap, nil
}

// validateOrder holds the rules shared by Encode and Decode.
func validateOrder(o OrderRecord) error {
	if o.ID == "" {
		return errors.New("missing id")
	}
	if o.Symbol == "" {
		return errors.New("missing symbol")
	}
	if o.Side != "buy" && o.Side != "sell" {
		return fmt.Errorf("invalid side %q", o.Side)
	}
	switch o.Type {
	case "GTC", "IOC", "market":
	default:
		return fmt.Errorf("invalid type %q", o.Type)
	}
	if _, err := ParseOrderStatus(o.Status.String()); err != nil {
		return err
	}
	return nil
}

func decodeOrder(wo wireOrder) (OrderRecord, error) {
	o := OrderRecord{
		ID:        wo.ID,
		Symbol:    wo.Symbol,
		Side:      wo.Side,
		Type:      wo.Type,
		Filled:    decimal.Zero,
		Status:    OrderOpen,
		CreatedAt: wo.CreatedAt,
		UpdatedAt: wo.UpdatedAt,
	}
	// Documents written before order types existed omit the field.
	if o.Type == "" {
		o.Type = "GTC"
	}

	var err error
	if wo.Price == nil || wo.Qty == nil {
		return OrderRecord{}, errors.New("missing price or qty")
	}
	if o.Price, err = decimal.Parse(*wo.Price); err != nil {
		return OrderRecord{}, fmt.Errorf("price: %w", err)
	}
	if o.Qty, err = decimal.Parse(*wo.Qty); err != nil {
		return OrderRecord{}, fmt.Errorf("qty: %w", err)
	}
	if wo.Filled != nil {
		if o.Filled, err = decimal.Parse(*wo.Filled); err != nil {
			return OrderRecord{}, fmt.Errorf("filled: %w", err)
		}
	}
	if wo.Status != "" {
		if o.Status, err = ParseOrderStatus(wo.Status); err != nil {
			return OrderRecord{}, err
		}
	}
	if err := validateOrder(o); err != nil {
		return OrderRecord{}, err
	}
	return o, nil
}

// Status tags the outcome of a load.
type Status int

const (
	StatusFresh Status = iota // nothing stored
	StatusLoaded
	StatusCorrupt
	StatusVersionMismatch
	StatusUnavailable // storage read failed
)

func (s Status) String() string {
	switch s {
	case StatusFresh:
		return "fresh"
	case StatusLoaded:
		return "loaded"
	case StatusCorrupt:
		return "corrupt"
	case StatusVersionMismatch:
		return "version_mismatch"
	case StatusUnavailable:
		return "unavailable"
	default:
		return "unknown"
	}
}

// Result is either a validated snapshot (StatusLoaded) or the reason there
// is none.
type Result struct {
	Status   Status
	Snapshot *Snapshot
	Err      error
}

// Codec persists snapshots under a single key of a KV. Each Save fully
// replaces the stored document; there is no merge and no cross-process
// coordination, so concurrent writers resolve as last writer wins.
type Codec struct {
	kv     storage.KV
	key    string
	clock  util.Clock
	logger *zap.Logger
}

type Option func(*Codec)

func WithKey(key string) Option {
	return func(c *Codec) { c.key = key }
}

func WithClock(clock util.Clock) Option {
	return func(c *Codec) { c.clock = clock }
}

func NewCodec(kv storage.KV, logger *zap.Logger, opts ...Option) *Codec {
	if logger == nil {
		logger = zap.NewNop()
	}
	c := &Codec{
		kv:     kv,
		key:    storage.DefaultKey,
		clock:  util.RealClock{},
		logger: logger,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Key returns the storage key snapshots are written under.
func (c *Codec) Key() string { return c.key }

// Stored reports whether a value exists under the key without decoding it.
func (c *Codec) Stored() (bool, error) {
	_, ok, err := c.kv.Get(c.key)
	return ok, err
}

// Save writes snap, replacing any previous value. SchemaVersion is always
// set to CurrentSchemaVersion; a zero SavedAt is stamped with the clock.
// A snapshot that fails validation leaves the stored value untouched.
func (c *Codec) Save(snap Snapshot) error {
	snap.SchemaVersion = CurrentSchemaVersion
	if snap.SavedAt.IsZero() {
		snap.SavedAt = c.clock.Now()
	}

	data, err := Encode(snap)
	if err != nil {
		SavesTotal.WithLabelValues("error").Inc()
		c.logger.Error("state_encode_failed", zap.String("key", c.key), zap.Error(err))
		return fmt.Errorf("failed to encode state: %w", err)
	}
	if err := c.kv.Set(c.key, data); err != nil {
		SavesTotal.WithLabelValues("error").Inc()
		c.logger.Error("state_save_failed", zap.String("key", c.key), zap.Error(err))
		return fmt.Errorf("failed to save state: %w", err)
	}

	SavesTotal.WithLabelValues("ok").Inc()
	c.logger.Debug("state_saved",
		zap.String("key", c.key),
		zap.Int("balances", len(snap.Balances)),
		zap.Int("orders", len(snap.Orders)),
		zap.Int("bytes", len(data)))
	return nil
}

// LoadResult reads and validates the stored snapshot without logging.
func (c *Codec) LoadResult() Result {
	data, ok, err := c.kv.Get(c.key)
	if err != nil {
		return Result{Status: StatusUnavailable, Err: err}
	}
	if !ok {
		return Result{Status: StatusFresh}
	}

	snap, err := Decode(data)
	switch {
	case errors.Is(err, ErrSchemaVersion):
		return Result{Status: StatusVersionMismatch, Err: err}
	case err != nil:
		return Result{Status: StatusCorrupt, Err: err}
	}
	return Result{Status: StatusLoaded, Snapshot: &snap}
}

// Load returns the stored snapshot, or false when the caller should start
// fresh. Corrupt, mismatched and unreadable state is logged and treated as
// absent; Load never fails.
func (c *Codec) Load() (*Snapshot, bool) {
	r := c.LoadResult()
	LoadsTotal.WithLabelValues(r.Status.String()).Inc()

	switch r.Status {
	case StatusLoaded:
		c.logger.Info("state_loaded",
			zap.String("key", c.key),
			zap.Int("balances", len(r.Snapshot.Balances)),
			zap.Int("orders", len(r.Snapshot.Orders)),
			zap.Time("saved_at", r.Snapshot.SavedAt))
		return r.Snapshot, true
	case StatusFresh:
		c.logger.Info("state_fresh", zap.String("key", c.key))
	default:
		c.logger.Warn("state_discarded",
			zap.String("key", c.key),
			zap.Stringer("status", r.Status),
			zap.Error(r.Err))
	}
	return nil, false
}
