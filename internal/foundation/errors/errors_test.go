package errors

import (
	"bytes"
	stderrors "errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifiedError(t *testing.T) {
	t.Run("builder fields", func(t *testing.T) {
		err := NewError(CategoryConfig, "invalid site file").
			WithSeverity(SeverityFatal).
			WithContext("file", "site.yaml").
			Build()

		assert.Equal(t, CategoryConfig, err.Category())
		assert.Equal(t, SeverityFatal, err.Severity())
		assert.Equal(t, "invalid site file", err.Message())
		file, ok := err.Context().GetString("file")
		assert.True(t, ok)
		assert.Equal(t, "site.yaml", file)
		assert.Equal(t, "[config:fatal] invalid site file", err.Error())
	})

	t.Run("wrapping", func(t *testing.T) {
		cause := stderrors.New("disk full")
		err := WrapError(cause, CategoryFileSystem, "write page").Build()

		assert.ErrorIs(t, err, cause)
		assert.Equal(t, "[filesystem:error] write page: disk full", err.Error())
	})

	t.Run("found through fmt wrapping", func(t *testing.T) {
		inner := TemplateError("layout missing").Build()
		wrapped := fmt.Errorf("compose: %w", inner)

		assert.True(t, IsClassified(wrapped))
		assert.True(t, HasCategory(wrapped, CategoryTemplate))
		assert.Equal(t, CategoryTemplate, GetCategory(wrapped))
		assert.Equal(t, SeverityFatal, GetSeverity(wrapped))
	})

	t.Run("unclassified defaults", func(t *testing.T) {
		err := stderrors.New("plain")
		assert.False(t, IsClassified(err))
		assert.Equal(t, CategoryInternal, GetCategory(err))
		assert.Equal(t, SeverityError, GetSeverity(err))
	})

	t.Run("retry strategies", func(t *testing.T) {
		assert.False(t, ConfigError("x").Build().CanRetry())
		assert.True(t, NetworkError("x").Build().CanRetry())
		assert.False(t, MarkupError("x").Build().IsFatal())
	})
}

func TestMalformedFilename(t *testing.T) {
	err := MalformedFilename("2018-13-01-x.md", nil)

	assert.True(t, IsMalformedFilename(err))
	assert.True(t, IsMalformedFilename(fmt.Errorf("load: %w", err)))
	assert.False(t, IsMalformedFilename(ContentError("other").Build()))
	assert.False(t, IsMalformedFilename(stderrors.New("malformed filename")))

	name, _ := err.Context().GetString("name")
	assert.Equal(t, "2018-13-01-x.md", name)
}

func TestErrorContextMerge(t *testing.T) {
	a := ErrorContext{"a": 1, "b": 1}
	b := ErrorContext{"b": 2}

	merged := a.Merge(b)
	assert.Equal(t, 1, merged["a"])
	assert.Equal(t, 2, merged["b"])
	assert.Equal(t, 1, a["b"], "receiver is not mutated")

	var nilCtx ErrorContext
	assert.Equal(t, b, nilCtx.Merge(b))
}

func TestCLIErrorAdapter(t *testing.T) {
	adapter := NewCLIErrorAdapter(false, slog.New(slog.DiscardHandler))

	cases := []struct {
		err  error
		code int
	}{
		{nil, 0},
		{stderrors.New("x"), 1},
		{ValidationError("x").Build(), 2},
		{ConfigError("x").Build(), 7},
		{MalformedFilename("x", nil), 9},
		{TemplateError("x").Build(), 9},
		{BuildError("x").Build(), 11},
		{InternalError("x").Build(), 10},
	}
	for _, tc := range cases {
		assert.Equal(t, tc.code, adapter.ExitCodeFor(tc.err), "%v", tc.err)
	}

	assert.Equal(t, "malformed filename: bad.md", adapter.FormatError(MalformedFilename("bad.md", nil)))
	assert.Equal(t, "build: page failed", adapter.FormatError(BuildError("page failed").Build()))
	assert.Equal(t, "Error: boom", adapter.FormatError(stderrors.New("boom")))
}

func TestCLIErrorAdapterHandleError(t *testing.T) {
	var out bytes.Buffer
	var code int
	adapter := NewCLIErrorAdapter(false, slog.New(slog.DiscardHandler))
	adapter.out = &out
	adapter.exit = func(c int) { code = c }

	adapter.HandleError(ConfigError("missing pages").Build())

	assert.Equal(t, 7, code)
	assert.Equal(t, "missing pages\n", out.String())
}

func TestHTTPErrorAdapter(t *testing.T) {
	adapter := NewHTTPErrorAdapter(slog.New(slog.DiscardHandler))

	assert.Equal(t, http.StatusOK, adapter.StatusCodeFor(nil))
	assert.Equal(t, http.StatusBadRequest, adapter.StatusCodeFor(ConfigError("x").Build()))
	assert.Equal(t, http.StatusUnprocessableEntity, adapter.StatusCodeFor(BuildError("x").Build()))
	assert.Equal(t, http.StatusInternalServerError, adapter.StatusCodeFor(stderrors.New("x")))

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/_build/status", nil)
	adapter.WriteErrorResponse(rec, req, MalformedFilename("bad.md", nil))

	require.Equal(t, http.StatusUnprocessableEntity, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"error":"malformed filename","code":"content","details":{"name":"bad.md"}}`, rec.Body.String())
}
