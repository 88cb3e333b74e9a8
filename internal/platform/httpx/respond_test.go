package httpx_test

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/workdesk/portal/internal/platform/httpx"
)

func TestRespondErrorStatus(t *testing.T) {
	cases := []struct {
		err    error
		status int
		detail bool
	}{
		{fmt.Errorf("%w: leave l-1", httpx.ErrNotFound), http.StatusNotFound, true},
		{fmt.Errorf("%w: leave is approved", httpx.ErrConflict), http.StatusConflict, true},
		{fmt.Errorf("%w: note too long", httpx.ErrValidation), http.StatusBadRequest, true},
		{fmt.Errorf("%w: update leave", httpx.ErrForbidden), http.StatusForbidden, true},
		{httpx.ErrUnauthorized, http.StatusUnauthorized, true},
		{errors.New("authz: unknown action"), http.StatusInternalServerError, false},
	}
	for _, tc := range cases {
		rr := httptest.NewRecorder()
		httpx.RespondError(rr, tc.err)
		assert.Equal(t, tc.status, rr.Code, tc.err.Error())
		assert.Equal(t, "application/problem+json", rr.Header().Get("Content-Type"))

		var problem httpx.ProblemDetail
		require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &problem))
		assert.Equal(t, tc.status, problem.Status)
		if tc.detail {
			assert.Equal(t, tc.err.Error(), problem.Detail)
		} else {
			assert.Empty(t, problem.Detail)
		}
	}
}

func TestDecodeJSON(t *testing.T) {
	var dst map[string]any
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"name":"Eli"}`))
	require.NoError(t, httpx.DecodeJSON(req, &dst))
	assert.Equal(t, "Eli", dst["name"])

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`{"a":1}{"b":2}`))
	assert.Error(t, httpx.DecodeJSON(req, &dst))

	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(`["name"]`))
	assert.Error(t, httpx.DecodeJSON(req, &dst))

	huge := `{"bio":"` + strings.Repeat("x", httpx.MaxBodyBytes) + `"}`
	req = httptest.NewRequest(http.MethodPost, "/", strings.NewReader(huge))
	assert.Error(t, httpx.DecodeJSON(req, &dst))
}
