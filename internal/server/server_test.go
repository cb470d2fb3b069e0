package server

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/docsmith/docsmith/internal/orchestrator"
	"github.com/docsmith/docsmith/internal/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func okProcess(_ context.Context, source string, style types.Style, _ bool) (*orchestrator.FileResult, error) {
	return &orchestrator.FileResult{
		Source: "# documented\n" + source,
		Results: []*types.DraftResult{{
			ElementName: "f",
			Docstring:   `"""Doc."""`,
			Confidence:  0.9,
			Style:       style,
			Iteration:   1,
		}},
	}, nil
}

func post(t *testing.T, handler http.Handler, body string) (*httptest.ResponseRecorder, GenerateResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodPost, "/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)

	var resp GenerateResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return rec, resp
}

func TestGenerateHappyPath(t *testing.T) {
	handler := NewHandler(okProcess)
	rec, resp := post(t, handler, `{"code": "def f():\n    return 1\n", "style": "numpy"}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.True(t, resp.Success)
	assert.Contains(t, resp.Code, "# documented")
	require.Len(t, resp.Results, 1)
	assert.Equal(t, types.StyleNumpy, resp.Results[0].Style)
	assert.Empty(t, resp.Error)
}

func TestGenerateDefaultStyle(t *testing.T) {
	var gotStyle types.Style
	handler := NewHandler(func(ctx context.Context, source string, style types.Style, overwrite bool) (*orchestrator.FileResult, error) {
		gotStyle = style
		return okProcess(ctx, source, style, overwrite)
	})
	post(t, handler, `{"code": "x = 1"}`)
	assert.Equal(t, types.StyleGoogle, gotStyle)
}

func TestGenerateRejectsBadRequests(t *testing.T) {
	handler := NewHandler(okProcess)

	t.Run("wrong method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/generate", nil)
		rec := httptest.NewRecorder()
		handler.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusMethodNotAllowed, rec.Code)
	})

	t.Run("invalid json", func(t *testing.T) {
		rec, resp := post(t, handler, "{not json")
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, resp.Error, "invalid request body")
	})

	t.Run("missing code", func(t *testing.T) {
		rec, resp := post(t, handler, `{"style": "google"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Equal(t, "code is required", resp.Error)
	})

	t.Run("unknown style", func(t *testing.T) {
		rec, resp := post(t, handler, `{"code": "x = 1", "style": "javadoc"}`)
		assert.Equal(t, http.StatusBadRequest, rec.Code)
		assert.Contains(t, resp.Error, "javadoc")
	})
}

func TestGenerateParseFailure(t *testing.T) {
	handler := NewHandler(func(context.Context, string, types.Style, bool) (*orchestrator.FileResult, error) {
		return nil, errors.New("analyzing source: line 1: expected ')'")
	})
	rec, resp := post(t, handler, `{"code": "def broken(:"}`)

	assert.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.False(t, resp.Success)
	assert.Contains(t, resp.Error, "expected ')'")
}
