package httpapi

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/a3tai/mcp-pdf-minibook/internal/imposition"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdf"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdf/render"
	"github.com/a3tai/mcp-pdf-minibook/internal/pdftest"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestRouter(t *testing.T, maxFileSize int64) http.Handler {
	t.Helper()
	svc, err := pdf.NewService(pdf.Options{
		MaxFileSize:  maxFileSize,
		PDFDirectory: t.TempDir(),
	})
	require.NoError(t, err)
	return NewRouter(svc)
}

func do(t *testing.T, h http.Handler, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) errorResponse {
	t.Helper()
	var resp errorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestHealth(t *testing.T) {
	h := newTestRouter(t, 1<<20)
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.JSONEq(t, `{"status":"ok"}`, rec.Body.String())
}

func TestLayout(t *testing.T) {
	h := newTestRouter(t, 1<<20)
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/v1/layout", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var layout pdf.PDFMinibookLayoutResult
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &layout))
	assert.Equal(t, imposition.MiniBookName, layout.Name)
	assert.Equal(t, 8, layout.PageCount)
	assert.Len(t, layout.Slots, 8)
	assert.Equal(t, 7, layout.Slots[0].Source)
	assert.Equal(t, imposition.Rotate180, layout.Slots[0].Rotation)
}

func TestImpose_RawBody(t *testing.T) {
	h := newTestRouter(t, 1<<20)
	req := httptest.NewRequest(http.MethodPost, "/v1/minibook", bytes.NewReader(pdftest.MiniBookSource()))
	req.Header.Set("Content-Type", "application/pdf")

	rec := do(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "application/pdf", rec.Header().Get("Content-Type"))
	assert.NotEmpty(t, rec.Header().Get(HeaderImpositionID))
	assert.NotEmpty(t, rec.Header().Get("X-Request-Id"))

	doc, err := render.OpenBytes(rec.Body.Bytes())
	require.NoError(t, err)
	assert.Equal(t, 1, doc.PageCount())

	w, hgt, err := doc.PageSize(0)
	require.NoError(t, err)
	assert.InDelta(t, imposition.A4LandscapeWidth, w, 1e-6)
	assert.InDelta(t, imposition.A4LandscapeHeight, hgt, 1e-6)
}

func TestImpose_Multipart(t *testing.T) {
	h := newTestRouter(t, 1<<20)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", "story.pdf")
	require.NoError(t, err)
	_, err = part.Write(pdftest.MiniBookSource())
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/minibook", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := do(t, h, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, bytes.HasPrefix(rec.Body.Bytes(), []byte("%PDF-")))
}

func TestImpose_MultipartMissingFile(t *testing.T) {
	h := newTestRouter(t, 1<<20)

	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	require.NoError(t, mw.WriteField("name", "story"))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/v1/minibook", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := do(t, h, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, decodeError(t, rec).Error, `"file"`)
}

func TestImpose_Errors(t *testing.T) {
	tests := []struct {
		name       string
		maxSize    int64
		body       []byte
		wantStatus int
		wantKind   string
	}{
		{
			name:       "wrong page count",
			maxSize:    1 << 20,
			body:       pdftest.Build("Seven", pdftest.A4(7)),
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   imposition.ErrPageCountMismatch.Error(),
		},
		{
			name:       "zero sized page",
			maxSize:    1 << 20,
			body:       zeroSizedSource(),
			wantStatus: http.StatusUnprocessableEntity,
			wantKind:   imposition.ErrInvalidGeometry.Error(),
		},
		{
			name:       "not a pdf",
			maxSize:    1 << 20,
			body:       []byte("hello world"),
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "empty body",
			maxSize:    1 << 20,
			body:       nil,
			wantStatus: http.StatusBadRequest,
		},
		{
			name:       "above file size limit",
			maxSize:    256,
			body:       append([]byte("%PDF-1.4\n"), make([]byte, 512)...),
			wantStatus: http.StatusRequestEntityTooLarge,
		},
		{
			name:       "above body limit",
			maxSize:    256,
			body:       make([]byte, 256+multipartOverhead+1),
			wantStatus: http.StatusRequestEntityTooLarge,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := newTestRouter(t, tt.maxSize)
			rec := do(t, h, httptest.NewRequest(http.MethodPost, "/v1/minibook", bytes.NewReader(tt.body)))

			assert.Equal(t, tt.wantStatus, rec.Code, rec.Body.String())
			resp := decodeError(t, rec)
			assert.NotEmpty(t, resp.Error)
			assert.NotEmpty(t, resp.RequestID)
			assert.Equal(t, tt.wantKind, resp.Kind)
		})
	}
}

func TestImpose_ErrorCarriesSlot(t *testing.T) {
	h := newTestRouter(t, 1<<20)
	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/v1/minibook", bytes.NewReader(zeroSizedSource())))
	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)

	resp := decodeError(t, rec)
	require.NotNil(t, resp.Slot)
	require.NotNil(t, resp.Source)
	// source page 3 sits in slot 5 of the minibook
	assert.Equal(t, 5, *resp.Slot)
	assert.Equal(t, 2, *resp.Source)
}

func TestPlan(t *testing.T) {
	h := newTestRouter(t, 1<<20)
	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/v1/minibook/plan", bytes.NewReader(pdftest.MiniBookSource())))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	var plan planResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &plan))
	assert.Equal(t, imposition.MiniBookName, plan.Layout)
	assert.Equal(t, imposition.A4LandscapeWidth, plan.SheetWidth)
	require.Len(t, plan.Placements, 8)

	for _, p := range plan.Placements {
		assert.InDelta(t, 297.5/842, p.Scale, 1e-9)
	}
	assert.Equal(t, imposition.Rotate180, plan.Placements[0].Rotation)
}

func TestPlan_WrongPageCount(t *testing.T) {
	h := newTestRouter(t, 1<<20)
	body := pdftest.Build("Nine", pdftest.A4(9))
	rec := do(t, h, httptest.NewRequest(http.MethodPost, "/v1/minibook/plan", bytes.NewReader(body)))

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
}

func TestUnknownRoute(t *testing.T) {
	h := newTestRouter(t, 1<<20)
	rec := do(t, h, httptest.NewRequest(http.MethodGet, "/v1/minibook", nil))
	assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusInternalServerError, statusFor(assert.AnError))
	assert.Equal(t, http.StatusRequestEntityTooLarge, statusFor(&http.MaxBytesError{Limit: 1}))
	assert.Equal(t, http.StatusBadRequest, statusFor(pdf.ErrInvalidDocument))
}

func zeroSizedSource() []byte {
	pages := pdftest.A4(8)
	pages[2].Width = 0
	return pdftest.Build("Broken", pages)
}
