package webhandler

import (
	"mapslinks/internal/batch"
	"mapslinks/pkg/domain"
	"mapslinks/pkg/serrors"
	"net/http"

	"github.com/go-faster/errors"
	"github.com/go-faster/jx"
)

// ExtractRequest is the JSON body accepted by POST /extract.
type ExtractRequest struct {
	Links []string `validate:"required"`
}

// Decode decodes {"links": [...]}. Unknown fields are ignored.
func (req *ExtractRequest) Decode(d *jx.Decoder) error {
	return d.ObjBytes(func(d *jx.Decoder, key []byte) error {
		switch string(key) {
		case "links":
			req.Links = make([]string, 0)
			if err := d.Arr(func(d *jx.Decoder) error {
				s, err := d.Str()
				if err != nil {
					return err //nolint: wrapcheck
				}
				req.Links = append(req.Links, s)

				return nil
			}); err != nil {
				return errors.Wrap(err, "decode field \"links\"")
			}

			return nil
		default:
			return d.Skip() //nolint: wrapcheck
		}
	})
}

// Extract resolves the submitted links. JSON requests get a JSON array of
// results in submission order; form posts get the page with a results table.
func (h *Handler) Extract(w http.ResponseWriter, r *http.Request) {
	if isJSON(r) {
		h.extractJSON(w, r)

		return
	}

	if err := h.parseForm(w, r); err != nil {
		h.writeError(w, r, err)

		return
	}

	input := r.PostForm.Get("links")
	results, err := h.deps.Runner.Run(r.Context(), batch.ParseLinks(input))
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	h.renderPage(w, r, newPageData(input, results))
}

func (h *Handler) extractJSON(w http.ResponseWriter, r *http.Request) {
	body, err := h.readBody(w, r)
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	var req ExtractRequest
	if err := req.Decode(jx.DecodeBytes(body)); err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "invalid JSON body"))

		return
	}
	if err := h.validate.Struct(req); err != nil {
		h.writeError(w, r, serrors.Wrap(serrors.ErrBadRequest, err, "links must be an array of strings"))

		return
	}

	results, err := h.deps.Runner.Run(r.Context(), batch.NormalizeLinks(req.Links))
	if err != nil {
		h.writeError(w, r, err)

		return
	}

	writeJSON(w, http.StatusOK, domain.EncodeLocations(results))
}
