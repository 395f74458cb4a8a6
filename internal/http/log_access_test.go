package handlers_test

import (
	"net/http"
	"testing"
)

func TestAccessLogOneLinePerRequest(t *testing.T) {
	env := newTestEnv(t)

	entries := captureLogs(t, func() {
		env.do(t, http.MethodGet, "/api/v1/categories", "", nil)
		env.do(t, http.MethodGet, "/api/v1/catalog?category=nope", "", nil)
	})

	var access []logEntry
	for _, e := range entries {
		if e.Action == "http.access" {
			access = append(access, e)
		}
	}
	if len(access) != 2 {
		t.Fatalf("want 2 access lines, got %d: %+v", len(access), entries)
	}
	if access[0].Status != http.StatusOK || access[1].Status != http.StatusBadRequest {
		t.Fatalf("unexpected statuses %+v", access)
	}
	if access[0].ReqID == "" || access[0].ReqID == access[1].ReqID {
		t.Fatalf("request ids missing or shared: %+v", access)
	}
}
