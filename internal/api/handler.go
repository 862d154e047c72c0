package api

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"github.com/eugenenazirov/cashmachine/internal/banknote"
	"github.com/eugenenazirov/cashmachine/internal/metrics"
	"github.com/eugenenazirov/cashmachine/internal/storage"
)

type contextKey string

const requestIDContextKey contextKey = "requestID"

// maxGreedyNotes bounds the pool size accepted by the greedy search, whose
// running time grows with the cube of the number of notes.
const maxGreedyNotes = 256

// Handler wires the cassette storage and collect strategy into HTTP handlers.
type Handler struct {
	storage  storage.Storage
	strategy banknote.Strategy
	metrics  *metrics.Collector
	logger   *zap.Logger
	validate *validator.Validate

	clock func() time.Time

	mu                 sync.RWMutex
	banknotesUpdatedAt time.Time
}

// HandlerOption configures Handler behaviour.
type HandlerOption func(*Handler)

// WithClock overrides the time source, primarily for tests.
func WithClock(clock func() time.Time) HandlerOption {
	return func(h *Handler) {
		h.clock = clock
	}
}

// WithStrategy sets the strategy used when a request does not name one.
func WithStrategy(strategy banknote.Strategy) HandlerOption {
	return func(h *Handler) {
		h.strategy = strategy
	}
}

// WithMetrics records collect outcomes into the provided collector.
func WithMetrics(collector *metrics.Collector) HandlerOption {
	return func(h *Handler) {
		h.metrics = collector
	}
}

// WithHandlerLogger attaches a logger for per-request diagnostics.
func WithHandlerLogger(logger *zap.Logger) HandlerOption {
	return func(h *Handler) {
		h.logger = logger
	}
}

// NewHandler constructs a Handler with the provided dependencies.
func NewHandler(store storage.Storage, opts ...HandlerOption) *Handler {
	h := &Handler{
		storage:  store,
		strategy: banknote.Optimal,
		logger:   zap.NewNop(),
		validate: validator.New(validator.WithRequiredStructEnabled()),
		clock: func() time.Time {
			return time.Now().UTC()
		},
	}
	for _, opt := range opts {
		opt(h)
	}
	h.banknotesUpdatedAt = h.clock()
	return h
}

func (h *Handler) handleHealth(w http.ResponseWriter, r *http.Request) {
	_ = r
	resp := healthResponse{
		Status:    "ok",
		Timestamp: h.clock(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) handleGetBanknotes(w http.ResponseWriter, r *http.Request) {
	_ = r
	sets, err := h.storage.GetBanknotes()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.inventoryResponse(sets, ""))
}

func (h *Handler) handlePutBanknotes(w http.ResponseWriter, r *http.Request) {
	var req banknotesRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid banknotes", validationDetails(err))
		return
	}

	sets := make([]banknote.BanknoteSet, 0, len(req.Banknotes))
	for _, dto := range req.Banknotes {
		sets = append(sets, banknote.BanknoteSet{Nominal: dto.Nominal, Count: dto.Count})
	}

	if err := h.storage.SetBanknotes(sets); err != nil {
		if errors.Is(err, storage.ErrInvalidBanknotes) {
			writeError(w, http.StatusBadRequest, "Invalid banknotes", err.Error())
			return
		}
		writeInternalError(w, err)
		return
	}

	h.markBanknotesUpdated()

	stored, err := h.storage.GetBanknotes()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, h.inventoryResponse(stored, "Banknotes updated successfully"))
}

func (h *Handler) handleCollect(w http.ResponseWriter, r *http.Request) {
	var req collectRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid request", "unable to parse JSON payload")
		return
	}

	strategy := h.strategy
	if strings.TrimSpace(req.Strategy) != "" {
		parsed, err := banknote.ParseStrategy(req.Strategy)
		if err != nil {
			h.metrics.Observe(strategy.String(), metrics.OutcomeInvalid, 0, 0)
			writeError(w, http.StatusBadRequest, "Invalid request", err.Error())
			return
		}
		strategy = parsed
	}

	if err := h.validate.Struct(req); err != nil {
		h.metrics.Observe(strategy.String(), metrics.OutcomeInvalid, 0, 0)
		writeError(w, http.StatusBadRequest, "Invalid request", validationDetails(err))
		return
	}

	sets, err := h.storage.GetBanknotes()
	if err != nil {
		writeInternalError(w, err)
		return
	}

	if notes := banknote.TotalNotes(sets); strategy == banknote.Greedy && notes > maxGreedyNotes {
		h.metrics.Observe(strategy.String(), metrics.OutcomeInvalid, 0, 0)
		writeError(w, http.StatusBadRequest, "Invalid request",
			fmt.Sprintf("greedy strategy supports at most %d banknotes, the machine holds %d", maxGreedyNotes, notes),
			"Use the optimal strategy")
		return
	}

	collector, err := banknote.NewAmountCollector(sets, banknote.WithStrategy(strategy))
	if err != nil {
		writeInternalError(w, err)
		return
	}

	start := time.Now()
	result, ok := collector.CollectAmount(req.Amount)
	elapsed := time.Since(start)

	if !ok {
		h.metrics.Observe(strategy.String(), metrics.OutcomeUnsatisfiable, elapsed, 0)
		h.logger.Debug("amount cannot be dispensed",
			zap.Int("amount", req.Amount),
			zap.String("strategy", strategy.String()),
			zap.String("request_id", requestIDFromContext(r.Context())),
		)
		writeError(w, http.StatusUnprocessableEntity, "Cannot dispense amount",
			fmt.Sprintf("no combination of available banknotes sums to %d", req.Amount),
			suggestion(collector.Pool(), req.Amount))
		return
	}

	totalNotes := banknote.TotalNotes(result)
	h.metrics.Observe(strategy.String(), metrics.OutcomeDispensed, elapsed, totalNotes)

	resp := collectResponse{
		Amount:            req.Amount,
		Banknotes:         toDTOs(result),
		TotalNotes:        totalNotes,
		TotalAmount:       banknote.TotalAmount(result),
		Strategy:          strategy.String(),
		CalculationTimeMs: elapsed.Milliseconds(),
	}
	writeJSON(w, http.StatusOK, resp)
}

func (h *Handler) inventoryResponse(sets []banknote.BanknoteSet, message string) banknotesResponse {
	return banknotesResponse{
		Banknotes:   toDTOs(sets),
		TotalAmount: banknote.TotalAmount(sets),
		TotalNotes:  banknote.TotalNotes(sets),
		UpdatedAt:   h.currentBanknotesUpdatedAt(),
		Message:     message,
	}
}

func (h *Handler) currentBanknotesUpdatedAt() time.Time {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return h.banknotesUpdatedAt
}

func (h *Handler) markBanknotesUpdated() {
	h.mu.Lock()
	h.banknotesUpdatedAt = h.clock()
	h.mu.Unlock()
}

func suggestion(pool banknote.Pool, amount int) string {
	if len(pool) == 0 {
		return "The machine is out of banknotes"
	}
	if total := pool.Total(); amount > total {
		return fmt.Sprintf("Request at most %d, the cash currently available", total)
	}
	sets := pool.Sets()
	return fmt.Sprintf("Request an amount composed of available nominals, the smallest being %d", sets[len(sets)-1].Nominal)
}

func validationDetails(err error) string {
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err.Error()
	}
	parts := make([]string, 0, len(verrs))
	for _, fe := range verrs {
		if fe.Param() != "" {
			parts = append(parts, fmt.Sprintf("%s must satisfy %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
			continue
		}
		parts = append(parts, fmt.Sprintf("%s must satisfy %s", fe.Namespace(), fe.Tag()))
	}
	return strings.Join(parts, "; ")
}

func toDTOs(sets []banknote.BanknoteSet) []banknoteDTO {
	out := make([]banknoteDTO, 0, len(sets))
	for _, set := range sets {
		out = append(out, banknoteDTO{Nominal: set.Nominal, Count: set.Count})
	}
	return out
}

func requestIDFromContext(ctx context.Context) string {
	if v := ctx.Value(requestIDContextKey); v != nil {
		if id, ok := v.(string); ok {
			return id
		}
	}
	return ""
}

type banknoteDTO struct {
	Nominal int `json:"nominal" validate:"gt=0,lte=1000000"`
	Count   int `json:"count" validate:"gte=0,lte=10000"`
}

type banknotesRequest struct {
	Banknotes []banknoteDTO `json:"banknotes" validate:"required,min=1,dive"`
}

type collectRequest struct {
	Amount   int    `json:"amount" validate:"gt=0,lte=1000000"`
	Strategy string `json:"strategy"`
}

type collectResponse struct {
	Amount            int           `json:"amount"`
	Banknotes         []banknoteDTO `json:"banknotes"`
	TotalNotes        int           `json:"totalNotes"`
	TotalAmount       int           `json:"totalAmount"`
	Strategy          string        `json:"strategy"`
	CalculationTimeMs int64         `json:"calculationTimeMs"`
}

type banknotesResponse struct {
	Banknotes   []banknoteDTO `json:"banknotes"`
	TotalAmount int           `json:"totalAmount"`
	TotalNotes  int           `json:"totalNotes"`
	UpdatedAt   time.Time     `json:"updatedAt"`
	Message     string        `json:"message,omitempty"`
}

type healthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

type errorResponse struct {
	Error      string `json:"error"`
	Details    string `json:"details,omitempty"`
	Suggestion string `json:"suggestion,omitempty"`
}

func writeJSON(w http.ResponseWriter, status int, payload any) {
	w.Header().Set("Content-Type", "application/json")
	if status != 0 {
		w.WriteHeader(status)
	}
	_ = json.NewEncoder(w).Encode(payload)
}

func writeError(w http.ResponseWriter, status int, message, details string, suggestion ...string) {
	resp := errorResponse{
		Error:   message,
		Details: details,
	}
	if len(suggestion) > 0 {
		resp.Suggestion = suggestion[0]
	}
	writeJSON(w, status, resp)
}

func writeInternalError(w http.ResponseWriter, err error) {
	writeError(w, http.StatusInternalServerError, "Internal error", err.Error())
}
