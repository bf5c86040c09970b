package handler

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"infrawatch/backend/internal/dto"
	"infrawatch/backend/internal/service"
	"infrawatch/backend/pkg/storage"
)

func workReportRouter(mock *mockWorkReportService) *gin.Engine {
	h := NewWorkReportHandler(mock)
	r := gin.New()
	r.Use(withAuth("2", "official"))
	r.GET("/work-reports", h.List)
	r.POST("/work-reports/upload", h.Upload)
	r.GET("/work-reports/:id/download", h.Download)
	return r
}

func uploadNotice(t *testing.T, r *gin.Engine, withFile bool) *httptest.ResponseRecorder {
	t.Helper()
	field := ""
	if withFile {
		field = "pdf"
	}
	body, ct := multipartBody(t, field, "notice.pdf", []byte("%PDF-1.4"), nil)
	req := httptest.NewRequest("POST", "/work-reports/upload", body)
	req.Header.Set("Content-Type", ct)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestWorkReportHandler_Upload_Success(t *testing.T) {
	mock := &mockWorkReportService{uploadResult: &dto.WorkReportResponse{
		ID: "w-1", NoticeID: "WN-001", Status: "active", PDFFilename: "notice.pdf",
	}}
	w := uploadNotice(t, workReportRouter(mock), true)

	if w.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", w.Code, w.Body.String())
	}
	data, _ := parseResponse(w).Data.(map[string]interface{})
	if data["notice_id"] != "WN-001" {
		t.Errorf("unexpected data: %v", data)
	}
	if mock.uploaded.PDF == nil || mock.uploaded.PDF.Filename != "notice.pdf" {
		t.Errorf("unexpected upload request: %+v", mock.uploaded)
	}
}

func TestWorkReportHandler_Upload_Errors(t *testing.T) {
	tests := []struct {
		name       string
		withFile   bool
		err        error
		wantStatus int
		wantCode   int
	}{
		{"no file", false, nil, http.StatusBadRequest, codeNoFile},
		{"extraction failed", true, service.ErrExtractionFailed, http.StatusBadRequest, codeExtractionFailed},
		{"duplicate notice", true, fmt.Errorf("create: %w", service.ErrDuplicateNotice), http.StatusConflict, codeDuplicateNotice},
		{"internal", true, io.ErrUnexpectedEOF, http.StatusInternalServerError, 50000},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := uploadNotice(t, workReportRouter(&mockWorkReportService{uploadErr: tt.err}), tt.withFile)

			if w.Code != tt.wantStatus {
				t.Fatalf("expected %d, got %d", tt.wantStatus, w.Code)
			}
			if resp := parseResponse(w); resp.Code != tt.wantCode {
				t.Errorf("expected code %d, got %d", tt.wantCode, resp.Code)
			}
		})
	}
}

func TestWorkReportHandler_Upload_MissingFields(t *testing.T) {
	mock := &mockWorkReportService{uploadErr: &service.MissingFieldsError{Fields: []string{"location"}}}
	w := uploadNotice(t, workReportRouter(mock), true)

	if w.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", w.Code)
	}
	resp := parseResponse(w)
	if resp.Code != codeMissingFields {
		t.Errorf("expected code %d, got %d", codeMissingFields, resp.Code)
	}
	details, _ := resp.Details.(map[string]interface{})
	fields, _ := details["missing_fields"].([]interface{})
	if len(fields) != 1 || fields[0] != "location" {
		t.Errorf("expected missing_fields [location], got %v", resp.Details)
	}
}

func TestWorkReportHandler_Download(t *testing.T) {
	mock := &mockWorkReportService{
		downloadObj: &storage.Object{
			Body:        io.NopCloser(strings.NewReader("%PDF-1.4")),
			Size:        8,
			ContentType: "application/pdf",
		},
		downloadName: "notice.pdf",
	}
	r := workReportRouter(mock)

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest("GET", "/work-reports/w-1/download", nil))

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if ct := w.Header().Get("Content-Type"); ct != "application/pdf" {
		t.Errorf("unexpected content type %q", ct)
	}
	if cd := w.Header().Get("Content-Disposition"); !strings.Contains(cd, "notice.pdf") {
		t.Errorf("unexpected disposition %q", cd)
	}
	if w.Body.String() != "%PDF-1.4" {
		t.Errorf("unexpected body %q", w.Body.String())
	}
}

func TestWorkReportHandler_Download_NotFound(t *testing.T) {
	for _, err := range []error{service.ErrWorkReportNotFound, service.ErrWorkReportFileMissing} {
		r := workReportRouter(&mockWorkReportService{downloadErr: err})

		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/work-reports/w-1/download", nil))

		if w.Code != http.StatusNotFound {
			t.Errorf("%v: expected 404, got %d", err, w.Code)
		}
	}
}
