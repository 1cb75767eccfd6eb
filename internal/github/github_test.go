package github

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"gotest.tools/v3/assert"
)

func TestGitHub_IsUpdateAvailable(t *testing.T) {
	tests := []struct {
		name    string
		current string
		status  int
		body    string
		want    string
	}{
		{name: "newer release", current: "0.1.0", status: http.StatusOK, body: `{"tag_name":"v0.2.0"}`, want: "v0.2.0"},
		{name: "same release", current: "v0.2.0", status: http.StatusOK, body: `{"tag_name":"v0.2.0"}`, want: ""},
		{name: "older release", current: "1.0.0", status: http.StatusOK, body: `{"tag_name":"0.9.9"}`, want: ""},
		{name: "development build", current: "0.0.0+unknown", status: http.StatusOK, body: `{"tag_name":"v0.2.0"}`, want: "v0.2.0"},
		{name: "no releases", current: "0.1.0", status: http.StatusNotFound, body: `{"message":"Not Found"}`, want: ""},
		{name: "garbage", current: "0.1.0", status: http.StatusOK, body: `<html>`, want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, "/repos/hammingai/hammingctl/releases/latest", r.URL.Path)
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer ts.Close()

			c := GitHub{HTTPClient: ts.Client(), URL: ts.URL}
			got, err := c.IsUpdateAvailable(context.Background(), tt.current)
			assert.NilError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func Test_isUpdateRequired(t *testing.T) {
	assert.Assert(t, isUpdateRequired("0.1.0", "0.1.1"))
	assert.Assert(t, !isUpdateRequired("0.1.1", "0.1.0"))
	assert.Assert(t, !isUpdateRequired("0.1.0", "latest"))
}
