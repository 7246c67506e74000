package types

import (
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestWriteError(t *testing.T) {
	rec := httptest.NewRecorder()
	WriteError(rec, http.StatusMethodNotAllowed, MsgMethodNotAllowed)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Errorf("status = %d, want 405", rec.Code)
	}
	if got := rec.Header().Get("Content-Type"); got != "application/json" {
		t.Errorf("Content-Type = %q", got)
	}
	if got := rec.Body.String(); got != `{"error":"Method not allowed"}` {
		t.Errorf("body = %q", got)
	}
}

func TestErrorEvent(t *testing.T) {
	tests := []struct {
		name    string
		message string
		want    string
	}{
		{
			name:    "plain text",
			message: "upstream exploded",
			want:    "data: {\"error\":\"upstream exploded\"}\n\n",
		},
		{
			name:    "json body is embedded as a string",
			message: `{"error":{"message":"Incorrect API key <sk-...>"}}`,
			want:    "data: {\"error\":\"{\\\"error\\\":{\\\"message\\\":\\\"Incorrect API key <sk-...>\\\"}}\"}\n\n",
		},
		{
			name:    "empty body",
			message: "",
			want:    "data: {\"error\":\"\"}\n\n",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			got, err := ErrorEvent(tc.message)
			if err != nil {
				t.Fatalf("ErrorEvent() error: %v", err)
			}
			if string(got) != tc.want {
				t.Errorf("\n got: %q\nwant: %q", got, tc.want)
			}
		})
	}
}

func TestSetSSEHeaders(t *testing.T) {
	h := http.Header{}
	SetSSEHeaders(h)

	want := map[string]string{
		"Content-Type":  "text/event-stream",
		"Cache-Control": "no-cache, no-transform",
		"Connection":    "keep-alive",
	}
	for k, v := range want {
		if got := h.Get(k); got != v {
			t.Errorf("%s = %q, want %q", k, got, v)
		}
	}
}
