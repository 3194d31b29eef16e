package backoffice

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func Test_intFromQueryStringOrDefault(t *testing.T) {
	validInputs := []struct {
		input  string
		def    int
		result int
	}{
		{input: "3", def: 1, result: 3},
		{input: "", def: 1, result: 1},
		{input: "", def: 113, result: 113},
		{input: "4", def: 113, result: 4},
	}

	invalidInputs := []struct {
		input string
		def   int
	}{
		{input: "fff", def: 1},
		{input: "-3.4", def: 1},
	}

	for _, tc := range validInputs {
		t.Run(fmt.Sprintf("valid input %s", tc.input), func(t *testing.T) {
			result, err := intFromQueryStringOrDefault(tc.input, tc.def)
			assert.NoError(t, err)
			assert.Equal(t, tc.result, result)
		})
	}

	for _, tc := range invalidInputs {
		t.Run(fmt.Sprintf("invalid input %s", tc.input), func(t *testing.T) {
			result, err := intFromQueryStringOrDefault(tc.input, tc.def)
			assert.Error(t, err)
			assert.Equal(t, 0, result)
		})
	}
}

func newTestServer(t *testing.T) (*echo.Echo, string) {
	t.Helper()

	vs, root := newService(t)
	e := echo.New()
	NewServer(e, ":0", vs, newLogger())

	return e, root
}

func request(e *echo.Echo, method, target, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}

	rec := httptest.NewRecorder()
	e.ServeHTTP(rec, req)
	return rec
}

func TestServer_listVariants(t *testing.T) {
	e, _ := newTestServer(t)

	rec := request(e, http.MethodGet, "/api/v1/variants?imageId=fjord.jpg", "")
	require.Equal(t, http.StatusOK, rec.Code)

	var resp listResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, 2, resp.Total)
	assert.Equal(t, []string{"processed/100x90/fjord.jpg", "processed/50x50/fjord.jpg"}, keys(resp.Data))
}

func TestServer_warmVariant(t *testing.T) {
	tt := []struct {
		name   string
		body   string
		status int
	}{
		{name: "miss", body: `{"imageId":"fjord.jpg","width":30,"height":20}`, status: http.StatusCreated},
		{name: "hit", body: `{"imageId":"fjord.jpg","width":100,"height":90}`, status: http.StatusOK},
		{name: "missing original", body: `{"imageId":"xxx.jpg","width":30,"height":20}`, status: http.StatusNotFound},
		{name: "missing size", body: `{"imageId":"fjord.jpg"}`, status: http.StatusUnprocessableEntity},
		{name: "malformed", body: `{"imageId":`, status: http.StatusBadRequest},
	}

	for _, tc := range tt {
		t.Run(tc.name, func(t *testing.T) {
			e, _ := newTestServer(t)

			rec := request(e, http.MethodPost, "/api/v1/variants", tc.body)

			assert.Equal(t, tc.status, rec.Code, rec.Body.String())
			if tc.status >= 400 {
				var resp errorResponse
				require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
				assert.NotEmpty(t, resp.Message)
			}
		})
	}
}

func TestServer_purgeVariants(t *testing.T) {
	t.Run("one size", func(t *testing.T) {
		e, root := newTestServer(t)

		rec := request(e, http.MethodDelete, "/api/v1/variants?width=100&height=90", "")
		require.Equal(t, http.StatusOK, rec.Code)

		var resp purgeResponse
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
		assert.Equal(t, 2, resp.Removed)
		assert.NoDirExists(t, filepath.Join(root, "processed", "100x90"))
		assert.FileExists(t, filepath.Join(root, "full", "fjord.jpg"))
	})

	t.Run("bad width", func(t *testing.T) {
		e, _ := newTestServer(t)

		rec := request(e, http.MethodDelete, "/api/v1/variants?width=abc&height=90", "")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
	})

	t.Run("width without height", func(t *testing.T) {
		e, _ := newTestServer(t)

		rec := request(e, http.MethodDelete, "/api/v1/variants?width=100", "")
		assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	})
}
