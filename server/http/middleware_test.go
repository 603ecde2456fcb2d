package sailhttp

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestCORS(t *testing.T) {
	api, _, closer := makeServer(t)
	closer()
	h := LogRequest(CORS(api))

	req := httptest.NewRequest(http.MethodOptions, prefix+"/model", nil)
	req.Header.Set("Origin", "http://example.org")
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Equal(t, "http://example.org", w.Header().Get("Access-Control-Allow-Origin"))

	req = httptest.NewRequest(http.MethodGet, "/health", nil)
	w = httptest.NewRecorder()
	h.ServeHTTP(w, req)
	require.Equal(t, http.StatusNoContent, w.Code)
	require.Empty(t, w.Header().Get("Access-Control-Allow-Origin"))
}

func TestGetAddress(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "10.0.0.1:1234"
	require.Equal(t, "10.0.0.1:1234", getAddress(req))
	req.Header.Set("X-Forwarded-For", "10.0.0.2")
	require.Equal(t, "10.0.0.2", getAddress(req))
	req.Header.Set("X-Real-IP", "10.0.0.3")
	require.Equal(t, "10.0.0.3", getAddress(req))
}
