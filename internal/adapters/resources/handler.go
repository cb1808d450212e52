// Package resources exposes the record collections, the dashboard and exports
// over JSON/HTTP.
package resources

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"

	"homeerp/internal/blob"
	"homeerp/internal/core"
	"homeerp/pkg/domain"
)

// MaxBodyBytes caps request bodies.
const MaxBodyBytes = 1 << 20

// Records is the service surface used by the handler.
type Records interface {
	List(ctx context.Context, kind domain.Kind) ([]domain.Record, error)
	Create(ctx context.Context, kind domain.Kind, fields domain.Fields) (domain.Record, error)
	Update(ctx context.Context, kind domain.Kind, id string, fields domain.Fields) (domain.Record, error)
	Dashboard(ctx context.Context) (core.Dashboard, error)
	Summary(ctx context.Context) (core.Summary, error)
}

// Exports writes and serves snapshot documents.
type Exports interface {
	Export(ctx context.Context) (blob.Info, error)
	List(ctx context.Context) ([]blob.Info, error)
	Open(ctx context.Context, name string) (blob.Info, io.ReadCloser, error)
}

// Handler routes /<kind>, /inventoryItems/{id}, /dashboard and /exports.
// Every path is also served under /api.
type Handler struct {
	Records Records
	Exports Exports
	Logger  *slog.Logger
}

// NewHandler constructs a resource handler. exports may be nil, in which case
// /exports answers 404.
func NewHandler(records Records, exports Exports, logger *slog.Logger) *Handler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Handler{Records: records, Exports: exports, Logger: logger}
}

var (
	errBadBody      = errors.New("invalid request body")
	errBodyTooLarge = errors.New("request body too large")
)

func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if h.Records == nil {
		writeError(w, http.StatusInternalServerError, "records not configured")
		return
	}
	path := strings.Trim(r.URL.Path, "/")
	if path == "api" {
		path = ""
	}
	path = strings.TrimPrefix(path, "api/")
	segments := strings.Split(path, "/")

	switch {
	case segments[0] == "dashboard":
		h.handleDashboard(w, r, segments[1:])
	case segments[0] == "exports":
		h.handleExports(w, r, segments[1:])
	case len(segments) == 1:
		kind, err := domain.ParseKind(segments[0])
		if err != nil {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		h.handleCollection(w, r, kind)
	case len(segments) == 2:
		kind, err := domain.ParseKind(segments[0])
		if err != nil || segments[1] == "" {
			writeError(w, http.StatusNotFound, "not found")
			return
		}
		h.handleRecord(w, r, kind, segments[1])
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) handleCollection(w http.ResponseWriter, r *http.Request, kind domain.Kind) {
	switch r.Method {
	case http.MethodGet:
		records, err := h.Records.List(r.Context(), kind)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		if records == nil {
			records = []domain.Record{}
		}
		h.writeJSON(w, r, http.StatusOK, records)
	case http.MethodPost:
		fields, err := decodeFields(w, r)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		record, err := h.Records.Create(r.Context(), kind, fields)
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.writeJSON(w, r, http.StatusOK, record)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodPost)
	}
}

func (h *Handler) handleRecord(w http.ResponseWriter, r *http.Request, kind domain.Kind, id string) {
	if r.Method != http.MethodPut {
		if kind == domain.KindInventoryItem {
			methodNotAllowed(w, http.MethodPut)
			return
		}
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if kind != domain.KindInventoryItem {
		methodNotAllowed(w)
		return
	}
	fields, err := decodeFields(w, r)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	record, err := h.Records.Update(r.Context(), kind, id, fields)
	if err != nil {
		h.fail(w, r, err)
		return
	}
	h.writeJSON(w, r, http.StatusOK, record)
}

func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request, rest []string) {
	switch {
	case len(rest) == 0:
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		dash, err := h.Records.Dashboard(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.writeJSON(w, r, http.StatusOK, dash)
	case len(rest) == 1 && rest[0] == "summary":
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		summary, err := h.Records.Summary(r.Context())
		if err != nil {
			h.fail(w, r, err)
			return
		}
		h.writeJSON(w, r, http.StatusOK, summary)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

func (h *Handler) handleExports(w http.ResponseWriter, r *http.Request, rest []string) {
	if h.Exports == nil {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	switch len(rest) {
	case 0:
		switch r.Method {
		case http.MethodGet:
			infos, err := h.Exports.List(r.Context())
			if err != nil {
				h.fail(w, r, err)
				return
			}
			if infos == nil {
				infos = []blob.Info{}
			}
			h.writeJSON(w, r, http.StatusOK, map[string]any{"exports": infos})
		case http.MethodPost:
			info, err := h.Exports.Export(r.Context())
			if err != nil {
				h.fail(w, r, err)
				return
			}
			h.writeJSON(w, r, http.StatusOK, map[string]any{"export": info})
		default:
			methodNotAllowed(w, http.MethodGet, http.MethodPost)
		}
	case 1:
		if r.Method != http.MethodGet {
			methodNotAllowed(w, http.MethodGet)
			return
		}
		info, body, err := h.Exports.Open(r.Context(), rest[0])
		if err != nil {
			h.fail(w, r, err)
			return
		}
		defer body.Close()
		contentType := info.ContentType
		if contentType == "" {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		w.Header().Set("Content-Disposition", `attachment; filename="`+rest[0]+`"`)
		w.WriteHeader(http.StatusOK)
		if _, err := io.Copy(w, body); err != nil {
			h.Logger.WarnContext(r.Context(), "export download interrupted", "name", rest[0], "error", err)
		}
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// fail maps an operation error onto a status code. Causes of 5xx responses
// are logged and never returned to the client.
func (h *Handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	var validation *domain.ValidationError
	switch {
	case errors.Is(err, errBodyTooLarge):
		writeError(w, http.StatusRequestEntityTooLarge, errBodyTooLarge.Error())
	case errors.Is(err, errBadBody):
		writeError(w, http.StatusBadRequest, errBadBody.Error())
	case errors.As(err, &validation):
		writeError(w, http.StatusUnprocessableEntity, validation.Error())
	case errors.Is(err, domain.ErrNotFound):
		writeError(w, http.StatusNotFound, "record not found")
	case errors.Is(err, domain.ErrUnknownKind):
		writeError(w, http.StatusNotFound, "not found")
	case errors.Is(err, core.ErrInvalidExportName):
		writeError(w, http.StatusBadRequest, "invalid export name")
	case errors.Is(err, blob.ErrNotFound):
		writeError(w, http.StatusNotFound, "export not found")
	case errors.Is(err, domain.ErrStoreUnavailable):
		h.Logger.ErrorContext(r.Context(), "store unavailable", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusServiceUnavailable, "service unavailable")
	default:
		h.Logger.ErrorContext(r.Context(), "request failed", "method", r.Method, "path", r.URL.Path, "error", err)
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// decodeFields reads a single JSON object from the body. Numbers are kept as
// json.Number so integer fields can be checked exactly.
func decodeFields(w http.ResponseWriter, r *http.Request) (domain.Fields, error) {
	body := http.MaxBytesReader(w, r.Body, MaxBodyBytes)
	dec := json.NewDecoder(body)
	dec.UseNumber()
	var fields domain.Fields
	if err := dec.Decode(&fields); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return nil, errBodyTooLarge
		}
		return nil, errBadBody
	}
	if fields == nil {
		return nil, errBadBody
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return nil, errBadBody
	}
	return fields, nil
}

// methodNotAllowed always sets Allow; an empty value means no method is accepted.
func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}

// writeJSON encodes payload before committing the status so an unencodable
// value still yields a 500.
func (h *Handler) writeJSON(w http.ResponseWriter, r *http.Request, status int, payload any) {
	b, err := json.Marshal(payload)
	if err != nil {
		h.fail(w, r, fmt.Errorf("encode response: %w", err))
		return
	}
	writeBody(w, status, b)
}

func writeError(w http.ResponseWriter, status int, message string) {
	b, _ := json.Marshal(map[string]string{"error": message})
	writeBody(w, status, b)
}

func writeBody(w http.ResponseWriter, status int, b []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(append(b, '\n'))
}
