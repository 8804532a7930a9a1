package webhandler_test

import (
	"mapslinks/pkg/domain"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

const wantCSV = "Link,Latitude,Longitude\n" +
	"https://maps.app.goo.gl/good,40.7128,-74.006\n" +
	"https://maps.app.goo.gl/bad-link,,\n"

func TestDownload_Form(t *testing.T) {
	h, _ := newHandler(t)

	form := url.Values{"data": {string(domain.EncodeLocations(mixedResults()))}}
	req := httptest.NewRequest(http.MethodPost, "/download", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Download(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "text/csv; charset=utf-8", rec.Header().Get("Content-Type"))
	require.Equal(t, "attachment; filename=coordinates.csv", rec.Header().Get("Content-Disposition"))
	require.Equal(t, wantCSV, rec.Body.String())
}

func TestDownload_JSON(t *testing.T) {
	h, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/download",
		strings.NewReader(`[{"originalLink":"https://maps.app.goo.gl/bad-link","error":"NavigationError: timeout"}]`))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()
	h.Download(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Link,Latitude,Longitude\nhttps://maps.app.goo.gl/bad-link,,\n", rec.Body.String())
}

func TestDownload_EmptyResults(t *testing.T) {
	h, _ := newHandler(t)

	req := httptest.NewRequest(http.MethodPost, "/download", strings.NewReader("data=%5B%5D"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	rec := httptest.NewRecorder()
	h.Download(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	require.Equal(t, "Link,Latitude,Longitude\n", rec.Body.String())
}

func TestDownload_BadRequests(t *testing.T) {
	tests := []struct {
		name        string
		contentType string
		body        string
	}{
		{"missing field", "application/x-www-form-urlencoded", ""},
		{"garbage field", "application/x-www-form-urlencoded", "data=not-json"},
		{"object instead of array", "application/json", `{"originalLink":"a"}`},
		{"latitude without longitude", "application/json", `[{"originalLink":"a","latitude":1}]`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, _ := newHandler(t)

			req := httptest.NewRequest(http.MethodPost, "/download", strings.NewReader(tt.body))
			req.Header.Set("Content-Type", tt.contentType)
			rec := httptest.NewRecorder()
			h.Download(rec, req)

			require.Equal(t, http.StatusBadRequest, rec.Code)
		})
	}
}
