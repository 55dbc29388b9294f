package api

import (
	"encoding/json"
	"errors"
	"io"
	"math/big"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/cors"
	"go.uber.org/zap"

	"github.com/uhyunpark/spark/params"
	"github.com/uhyunpark/spark/pkg/decimal"
	"github.com/uhyunpark/spark/pkg/format"
	"github.com/uhyunpark/spark/pkg/state"
	"github.com/uhyunpark/spark/pkg/units"
)

// maxBodyBytes bounds PUT /api/v1/state bodies.
const maxBodyBytes = 1 << 20

// Server handles REST API requests
type Server struct {
	codec  *state.Codec
	fmt    *format.Formatter
	router *mux.Router
	logger *zap.Logger
	cfg    params.API

	// mu serializes codec access; handlers run concurrently.
	mu sync.Mutex
}

// NewServer creates a new API server
func NewServer(codec *state.Codec, formatter *format.Formatter, cfg params.API, logger *zap.Logger) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		codec:  codec,
		fmt:    formatter,
		router: mux.NewRouter(),
		logger: logger,
		cfg:    cfg,
	}

	s.setupRoutes()
	return s
}

func (s *Server) setupRoutes() {
	// API v1 routes
	api := s.router.PathPrefix("/api/v1").Subrouter()

	// State endpoints
	api.HandleFunc("/state", s.handleGetState).Methods("GET")
	api.HandleFunc("/state", s.handlePutState).Methods("PUT")

	// Display helpers
	api.HandleFunc("/format", s.handleFormat).Methods("GET")
	api.HandleFunc("/units/{symbol}", s.handleUnits).Methods("GET")

	s.router.HandleFunc("/health", s.handleHealth).Methods("GET")
	s.router.Handle("/metrics", promhttp.Handler()).Methods("GET")
}

// Handler returns the router wrapped with CORS.
func (s *Server) Handler() http.Handler {
	origins := s.cfg.AllowedOrigins
	if len(origins) == 0 {
		origins = []string{"http://localhost:3000", "http://localhost:3001"}
	}
	c := cors.New(cors.Options{
		AllowedOrigins:   origins,
		AllowedMethods:   []string{"GET", "PUT", "OPTIONS"},
		AllowedHeaders:   []string{"Content-Type", "Authorization"},
		AllowCredentials: true,
	})
	return c.Handler(s.router)
}

// Start starts the HTTP server
func (s *Server) Start(addr string) error {
	s.logger.Info("api_starting", zap.String("addr", addr))
	return http.ListenAndServe(addr, s.Handler())
}

// ==============================
// REST Handlers
// ==============================

func (s *Server) handleGetState(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	res := s.codec.LoadResult()
	s.mu.Unlock()

	switch res.Status {
	case state.StatusLoaded:
		respondJSON(w, s.stateResponse(res.Snapshot))
	case state.StatusUnavailable:
		s.logger.Error("state_read_failed", zap.Error(res.Err))
		respondError(w, http.StatusServiceUnavailable, "storage unavailable", res.Err.Error())
	case state.StatusFresh:
		respondError(w, http.StatusNotFound, "no saved state", "")
	default:
		// Corrupt or mismatched documents are treated as absent.
		respondError(w, http.StatusNotFound, "no saved state", res.Status.String())
	}
}

func (s *Server) handlePutState(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxBodyBytes))
	if err != nil {
		respondError(w, http.StatusBadRequest, "failed to read body", err.Error())
		return
	}

	snap, err := state.Decode(body)
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid state", err.Error())
		return
	}

	s.mu.Lock()
	err = s.codec.Save(snap)
	s.mu.Unlock()
	if err != nil {
		respondError(w, http.StatusInternalServerError, "failed to save state", err.Error())
		return
	}

	snap.SchemaVersion = state.CurrentSchemaVersion
	respondJSON(w, s.stateResponse(&snap))
}

func (s *Server) handleFormat(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()

	v, err := decimal.Parse(normalizeInput(q.Get("value")))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid value", err.Error())
		return
	}

	digits := 0
	if d := q.Get("digits"); d != "" {
		if digits, err = strconv.Atoi(d); err != nil || digits <= 0 {
			respondError(w, http.StatusBadRequest, "invalid digits", d)
			return
		}
	}

	resp := FormatResponse{
		Value:   v.String(),
		Display: s.fmt.Amount(v, q.Get("symbol"), digits),
	}
	if s.fmt.IsSmall(v) {
		p := s.fmt.Small(v)
		resp.Small = &SmallInfo{Int: p.Int, Zeros: p.Zeros, Tail: p.Tail, Collapsed: p.Collapsed}
	}
	respondJSON(w, resp)
}

func (s *Server) handleUnits(w http.ResponseWriter, r *http.Request) {
	symbol := strings.ToUpper(mux.Vars(r)["symbol"])
	q := r.URL.Query()

	asset, err := units.Lookup(symbol)
	if d := q.Get("decimals"); d != "" {
		n, convErr := strconv.Atoi(d)
		if convErr != nil {
			respondError(w, http.StatusBadRequest, "invalid decimals", d)
			return
		}
		asset, err = units.Asset{Symbol: symbol, Decimals: n}, nil
	}
	if err != nil {
		respondError(w, http.StatusNotFound, "unknown asset", symbol)
		return
	}

	var (
		raw   *big.Int
		human decimal.Value
	)
	switch {
	case q.Get("raw") != "":
		if raw, err = units.ParseQuantity(q.Get("raw")); err != nil {
			respondError(w, http.StatusBadRequest, "invalid raw amount", err.Error())
			return
		}
		human, err = asset.ToHuman(raw)
	case q.Get("human") != "":
		if human, err = decimal.Parse(normalizeInput(q.Get("human"))); err != nil {
			respondError(w, http.StatusBadRequest, "invalid human amount", err.Error())
			return
		}
		raw, err = asset.ToRaw(human, q.Get("strict") == "true")
	default:
		respondError(w, http.StatusBadRequest, "missing amount", "expected raw or human")
		return
	}
	if err != nil {
		status := http.StatusBadRequest
		if !errors.Is(err, units.ErrPrecisionLoss) && !errors.Is(err, units.ErrInvalidDecimals) {
			status = http.StatusInternalServerError
		}
		respondError(w, status, "conversion failed", err.Error())
		return
	}

	respondJSON(w, UnitsResponse{
		Symbol:   asset.Symbol,
		Decimals: asset.Decimals,
		Raw:      raw.String(),
		Human:    human.String(),
		Display:  s.fmt.Amount(human, asset.Symbol, 0),
	})
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	s.mu.Lock()
	stored, err := s.codec.Stored()
	s.mu.Unlock()

	resp := HealthResponse{Status: "ok", State: "empty"}
	switch {
	case err != nil:
		resp.Status, resp.State = "degraded", "unavailable"
	case stored:
		resp.State = "stored"
	}
	respondJSON(w, resp)
}

// ==============================
// Helpers
// ==============================

func (s *Server) stateResponse(snap *state.Snapshot) StateResponse {
	resp := StateResponse{
		SchemaVersion: snap.SchemaVersion,
		Balances:      make([]BalanceInfo, 0, len(snap.Balances)),
		Orders:        make([]OrderInfo, 0, len(snap.Orders)),
		SavedAt:       snap.SavedAt.UnixMilli(),
	}
	if snap.AccountAddress != nil {
		resp.AccountAddress = snap.AccountAddress.Hex()
	}

	for sym, v := range snap.Balances {
		resp.Balances = append(resp.Balances, BalanceInfo{
			Symbol:  sym,
			Value:   v.String(),
			Display: s.fmt.Amount(v, sym, 0),
		})
	}
	sort.Slice(resp.Balances, func(i, j int) bool {
		return resp.Balances[i].Symbol < resp.Balances[j].Symbol
	})

	for _, o := range snap.Orders {
		resp.Orders = append(resp.Orders, OrderInfo{
			ID:        o.ID,
			Symbol:    o.Symbol,
			Side:      o.Side,
			Type:      o.Type,
			Price:     o.Price.String(),
			Qty:       o.Qty.String(),
			Filled:    o.Filled.String(),
			Remaining: o.Remaining().String(),
			Status:    o.Status.String(),
			CreatedAt: o.CreatedAt,
			UpdatedAt: o.UpdatedAt,
		})
	}
	return resp
}

// normalizeInput accepts user-typed numbers: surrounding whitespace is
// dropped and a comma decimal separator becomes a point.
func normalizeInput(s string) string {
	return strings.ReplaceAll(strings.TrimSpace(s), ",", ".")
}

func respondJSON(w http.ResponseWriter, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(data)
}

func respondError(w http.ResponseWriter, status int, error string, message string) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(ErrorResponse{
		Error:   error,
		Message: message,
	})
}
