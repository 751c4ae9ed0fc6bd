package controllers

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/DJ45X/snowgen/internal/ledger"
	idsvc "github.com/DJ45X/snowgen/internal/services/ids"
	logpkg "github.com/DJ45X/snowgen/pkg/log"
	"github.com/DJ45X/snowgen/pkg/snowflake"
)

// IDsController handles minting and decoding ids.
type IDsController struct {
	svc    *idsvc.Service
	logger logpkg.Logger
}

// NewIDsController creates a new ids controller.
func NewIDsController(svc *idsvc.Service, logger logpkg.Logger) *IDsController {
	if logger == nil {
		logger = logpkg.NewLogger()
	}
	return &IDsController{svc: svc, logger: logger}
}

// RegisterRoutes registers id routes with the given mux.
//
// - Mint (/v1/ids?count=n, GET or POST)
// - Decode (/v1/ids/{id}, optional ?format=base58 etc.)
func (c *IDsController) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/v1/ids", c.handleMint)
	mux.HandleFunc("/v1/ids/", c.handleDecode)
}

func (c *IDsController) handleMint(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet && r.Method != http.MethodPost {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	ids, err := c.svc.Mint(r.Context(), parseCount(r.URL.Query().Get("count")))
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	out := mintResp{IDs: make([]string, len(ids))}
	for i, id := range ids {
		out.IDs[i] = strconv.FormatInt(id, 10)
	}
	writeJSON(w, out)
}

func (c *IDsController) handleDecode(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	text := strings.TrimPrefix(r.URL.Path, "/v1/ids/")
	if text == "" || strings.Contains(text, "/") {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	format := r.URL.Query().Get("format")
	if format == "" {
		format = string(snowflake.FormatDecimal)
	}
	id, err := c.svc.Parse(text, format)
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	d, err := c.svc.Decode(id)
	if err != nil {
		c.writeServiceError(w, err)
		return
	}
	out := decodeResp{
		ID: strconv.FormatInt(d.ID, 10),
		Parts: partsResp{
			Timestamp:    d.Parts.Timestamp,
			NodeGroup:    d.Parts.NodeGroup,
			NodeInstance: d.Parts.NodeInstance,
			Sequence:     d.Parts.Sequence,
		},
		Time:      d.Time.Format(time.RFC3339Nano),
		Encodings: d.Encodings,
	}

	rec, err := c.svc.Lookup(r.Context(), id)
	switch {
	case err == nil:
		e := &entryResp{RunID: rec.Entry.RunID, Line: rec.Entry.Line, Row: rec.Entry.Row}
		if rec.Run.ID != "" {
			run := rec.Run
			e.Run = &run
		}
		out.Ledger = e
	case errors.Is(err, idsvc.ErrNoLedger), errors.Is(err, ledger.ErrNotFound):
	default:
		c.logger.Warn("ledger lookup failed", logpkg.Int64("id", id), logpkg.Err(err))
	}
	writeJSON(w, out)
}

// writeServiceError maps id service errors onto HTTP statuses.
func (c *IDsController) writeServiceError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, idsvc.ErrInvalidCount), errors.Is(err, idsvc.ErrInvalidID),
		errors.Is(err, snowflake.ErrUnknownFormat):
		status = http.StatusBadRequest
	case errors.Is(err, snowflake.ErrClockRegression):
		status = http.StatusServiceUnavailable
	case errors.Is(err, snowflake.ErrEpochOverflow):
		status = http.StatusInternalServerError
	case errors.Is(err, context.DeadlineExceeded):
		status = http.StatusGatewayTimeout
	case errors.Is(err, snowflake.ErrCancelled), errors.Is(err, context.Canceled):
		// client went away; the status is best effort
		status = 499
	}
	if status == http.StatusInternalServerError {
		c.logger.Error("request failed", logpkg.Err(err))
	}
	writeError(w, status, err.Error())
}
