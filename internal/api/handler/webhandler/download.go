package webhandler

import (
	"bytes"
	"mapslinks/internal/export"
	"mapslinks/pkg/domain"
	"mapslinks/pkg/serrors"
	"mime"
	"net/http"
	"strings"
)

// Download turns previously computed results into a CSV attachment. The
// results come either as a JSON body or as the JSON encoded "data" form
// field rendered by the results page.
func (h *Handler) Download(w http.ResponseWriter, r *http.Request) {
	var data []byte
	if isJSON(r) {
		body, err := h.readBody(w, r)
		if err != nil {
			h.writeError(w, r, err)

			return
		}
		data = body
	} else {
		if err := h.parseForm(w, r); err != nil {
			h.writeError(w, r, err)

			return
		}
		field := strings.TrimSpace(r.PostForm.Get("data"))
		if field == "" {
			h.writeError(w, r, serrors.With(serrors.ErrBadRequest, "missing data field"))

			return
		}
		data = []byte(field)
	}

	results, err := domain.DecodeLocations(data)
	if err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid results payload"))

		return
	}

	var buf bytes.Buffer
	if err := export.WriteCSV(&buf, results); err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrInternal, err, "could not render csv"))

		return
	}

	w.Header().Set("Content-Type", export.ContentType)
	w.Header().Set("Content-Disposition",
		mime.FormatMediaType("attachment", map[string]string{"filename": export.Filename}))
	_, _ = buf.WriteTo(w)
}
