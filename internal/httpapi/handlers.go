package httpapi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log"
	"mime"
	"net/http"
	"strconv"

	"github.com/a3tai/mcp-pdf-minibook/internal/imposition"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdf"
	"github.com/go-chi/chi/v5/middleware"
)

// HeaderImpositionID carries the ID of the imposition that produced a sheet.
const HeaderImpositionID = "X-Imposition-ID"

type handler struct {
	svc     *pdf.Service
	maxBody int64
}

type errorResponse struct {
	Error     string `json:"error"`
	Kind      string `json:"kind,omitempty"`
	Slot      *int   `json:"slot,omitempty"`
	Source    *int   `json:"source,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

type planResponse struct {
	Layout      string                 `json:"layout"`
	SheetWidth  float64                `json:"sheet_width"`
	SheetHeight float64                `json:"sheet_height"`
	Placements  []imposition.Placement `json:"placements"`
}

func (h *handler) health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (h *handler) layout(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, h.svc.PDFMinibookLayout(pdf.PDFMinibookLayoutRequest{}))
}

func (h *handler) impose(w http.ResponseWriter, r *http.Request) {
	source, err := readSource(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	out, err := h.svc.ImposeBytes(r.Context(), source)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	log.Printf("[%s] imposed %d bytes into %d bytes (layout %s, cached %t)",
		out.ID, len(source), len(out.Data), out.Layout.Name(), out.FromCache)

	w.Header().Set("Content-Type", "application/pdf")
	w.Header().Set("Content-Length", strconv.Itoa(len(out.Data)))
	w.Header().Set("Content-Disposition", `attachment; filename="minibook.pdf"`)
	w.Header().Set(HeaderImpositionID, out.ID)
	w.WriteHeader(http.StatusOK)
	if _, err := w.Write(out.Data); err != nil {
		log.Printf("[%s] failed to write response: %v", out.ID, err)
	}
}

func (h *handler) plan(w http.ResponseWriter, r *http.Request) {
	source, err := readSource(r)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	placements, err := h.svc.PlanBytes(source)
	if err != nil {
		h.fail(w, r, err)
		return
	}

	layout := h.svc.Layout()
	writeJSON(w, http.StatusOK, planResponse{
		Layout:      layout.Name(),
		SheetWidth:  layout.SheetWidth(),
		SheetHeight: layout.SheetHeight(),
		Placements:  placements,
	})
}

// readSource returns the uploaded PDF, either the raw body or the multipart
// field "file".
func readSource(r *http.Request) ([]byte, error) {
	mediaType, _, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
	if mediaType != "multipart/form-data" {
		data, err := io.ReadAll(r.Body)
		if err != nil {
			return nil, fmt.Errorf("failed to read request body: %w", err)
		}
		return data, nil
	}

	file, _, err := r.FormFile("file")
	if err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: missing multipart field \"file\": %v", pdf.ErrInvalidDocument, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read uploaded file: %w", err)
	}
	return data, nil
}

func (h *handler) fail(w http.ResponseWriter, r *http.Request, err error) {
	status := statusFor(err)
	resp := errorResponse{
		Error:     err.Error(),
		RequestID: middleware.GetReqID(r.Context()),
	}

	var impErr *imposition.Error
	if errors.As(err, &impErr) {
		resp.Kind = impErr.Kind.Error()
		if impErr.Slot >= 0 {
			resp.Slot = &impErr.Slot
		}
		if impErr.Source >= 0 {
			resp.Source = &impErr.Source
		}
	}

	if status >= http.StatusInternalServerError {
		log.Printf("[%s] %s %s failed: %v", resp.RequestID, r.Method, r.URL.Path, err)
	}
	writeJSON(w, status, resp)
}

func statusFor(err error) int {
	var maxErr *http.MaxBytesError
	switch {
	case errors.As(err, &maxErr), errors.Is(err, pdf.ErrFileTooLarge):
		return http.StatusRequestEntityTooLarge
	case imposition.IsPageCountMismatch(err), imposition.IsInvalidGeometry(err):
		return http.StatusUnprocessableEntity
	case errors.Is(err, pdf.ErrInvalidDocument):
		return http.StatusBadRequest
	default:
		return http.StatusInternalServerError
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		log.Printf("failed to encode response: %v", err)
	}
}
