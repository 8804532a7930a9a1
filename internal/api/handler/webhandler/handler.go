// Package webhandler serves the link extraction form, its JSON variant and
// the CSV download.
package webhandler

import (
	"bytes"
	"context"
	"errors"
	"mapslinks/internal/batch"
	"mapslinks/internal/config"
	"mapslinks/pkg/logger"
	"mapslinks/pkg/serrors"
	"mime"
	"net/http"
	"strings"

	"github.com/go-faster/jx"
	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

// Deps are the collaborators used by Handler.
type Deps struct {
	Runner batch.Runner
}

// Options configure request handling.
type Options struct {
	// MaxBodyBytes bounds the size of request bodies.
	MaxBodyBytes int64
}

// NewOptions constructs an Options value from the provided application config.
func NewOptions(cfg *config.Config) Options {
	return Options{MaxBodyBytes: cfg.HTTP.MaxBodyBytes}
}

type Handler struct {
	deps     Deps
	opts     Options
	validate *validator.Validate
}

func New(deps Deps, opts Options) *Handler {
	return &Handler{
		deps:     deps,
		opts:     opts,
		validate: validator.New(validator.WithRequiredStructEnabled()),
	}
}

// ErrorResponse is the JSON error body.
type ErrorResponse struct {
	Code    string
	Message string
}

// Encode writes the response as {"code": ..., "message": ...}.
func (e ErrorResponse) Encode(enc *jx.Encoder) {
	enc.ObjStart()
	enc.FieldStart("code")
	enc.Str(e.Code)
	enc.FieldStart("message")
	enc.Str(e.Message)
	enc.ObjEnd()
}

type errorMapping struct {
	status  int
	message string
}

var errorMappings = map[serrors.Kind]errorMapping{
	serrors.ErrBadRequest:  {http.StatusBadRequest, "bad request"},
	serrors.ErrNotFound:    {http.StatusNotFound, "resource not found"},
	serrors.ErrUnavailable: {http.StatusServiceUnavailable, "browser unavailable"},
	serrors.ErrTimeout:     {http.StatusGatewayTimeout, "request timed out"},
	serrors.ErrInternal:    {http.StatusInternalServerError, "internal error"},
}

// NewError maps err to a status code and response body. Semantic errors keep
// their kind as code and their message; anything else becomes INTERNAL
// without leaking details.
func (h *Handler) NewError(ctx context.Context, err error) (int, ErrorResponse) {
	kind, msg := serrors.ErrInternal, ""

	var se *serrors.Error
	switch {
	case errors.As(err, &se) && se.Kind() != nil:
		kind, msg = se.Kind(), se.Message()
	default:
		for k := range errorMappings {
			if errors.Is(err, k) {
				kind = k

				break
			}
		}
	}

	mapping, ok := errorMappings[kind]
	if !ok {
		kind, mapping = serrors.ErrInternal, errorMappings[serrors.ErrInternal]
	}
	if msg == "" || mapping.status == http.StatusInternalServerError {
		msg = mapping.message
	}

	if mapping.status >= http.StatusInternalServerError {
		logger.Error(ctx, "request failed", zap.Error(err))
	} else {
		logger.Warn(ctx, "request rejected", zap.Error(err))
	}

	return mapping.status, ErrorResponse{Code: kind.Error(), Message: msg}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status, body := h.NewError(r.Context(), err)

	if !wantsJSON(r) {
		http.Error(w, body.Message, status)

		return
	}

	enc := jx.Encoder{}
	body.Encode(&enc)
	writeJSON(w, status, enc.Bytes())
}

func writeJSON(w http.ResponseWriter, status int, body []byte) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, _ = w.Write(body)
}

func isJSON(r *http.Request) bool {
	mt, _, err := mime.ParseMediaType(r.Header.Get("Content-Type"))

	return err == nil && mt == "application/json"
}

func wantsJSON(r *http.Request) bool {
	return isJSON(r) || strings.Contains(r.Header.Get("Accept"), "application/json")
}

// readBody reads at most MaxBodyBytes of the request body.
func (h *Handler) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)); err != nil {
		return nil, bodyError(err)
	}

	return buf.Bytes(), nil
}

// parseForm parses a form body of at most MaxBodyBytes.
func (h *Handler) parseForm(w http.ResponseWriter, r *http.Request) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.opts.MaxBodyBytes)
	if err := r.ParseForm(); err != nil {
		return bodyError(err)
	}

	return nil
}

func bodyError(err error) error {
	var tooLarge *http.MaxBytesError
	if errors.As(err, &tooLarge) {
		return serrors.Wrap(serrors.ErrBadRequest, err, "request body exceeds %d bytes", tooLarge.Limit)
	}

	return serrors.Wrap(serrors.ErrBadRequest, err, "could not read request body")
}

// Index serves the empty link form.
func (h *Handler) Index(w http.ResponseWriter, r *http.Request) {
	h.renderPage(w, r, pageData{})
}

func (h *Handler) renderPage(w http.ResponseWriter, r *http.Request, data pageData) {
	var buf bytes.Buffer
	if err := pageTemplate.Execute(&buf, data); err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrInternal, err, "could not render page"))

		return
	}

	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	_, _ = buf.WriteTo(w)
}
