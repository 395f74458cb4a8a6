package handlers_test

import (
	"net/http"
	"net/url"
	"testing"
)

func TestQueryValidationIsLogged(t *testing.T) {
	env := newTestEnv(t)

	cases := []struct {
		path  string
		field string
	}{
		{"/api/v1/catalog?q=" + url.QueryEscape("<script>alert(1)</script>"), "q"},
		{"/api/v1/catalog?category=FOOD", "category"},
		{"/api/v1/catalog?offset=-3", "offset"},
		{"/api/v1/availability?productId=" + url.QueryEscape("../etc/passwd"), "productId"},
	}
	for _, tc := range cases {
		var resp *http.Response
		entries := captureLogs(t, func() {
			resp, _ = env.do(t, http.MethodGet, tc.path, "", nil)
		})
		if resp.StatusCode != http.StatusBadRequest {
			t.Fatalf("%s: status %d, want 400", tc.path, resp.StatusCode)
		}
		e, ok := findAction(entries, "validation.fail")
		if !ok || e.Fields["field"] != tc.field {
			t.Fatalf("%s: want validation.fail for %q in %+v", tc.path, tc.field, entries)
		}
	}
}

func TestMalformedBodyRejected(t *testing.T) {
	env := newTestEnv(t)
	tok := env.login(t, sellerEmail)

	resp, _ := env.do(t, http.MethodPost, "/api/v1/sales", tok, "not an object")
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("string body: %d, want 400", resp.StatusCode)
	}
	resp, _ = env.do(t, http.MethodGet, "/api/v1/products/"+url.PathEscape("bad id!"), tok, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad id: %d, want 400", resp.StatusCode)
	}
}

func TestMutationsAreAudited(t *testing.T) {
	env := newTestEnv(t)
	tok := env.login(t, sellerEmail)

	entries := captureLogs(t, func() {
		env.do(t, http.MethodPost, "/api/v1/sales", tok, saleReq("final_consumer", "", [2]any{"home-002", 1}))
		env.do(t, http.MethodPut, "/api/v1/pricing/margin", tok, map[string]string{"margin": "30"})
	})
	sale, ok := findAction(entries, "sales.create")
	if !ok || sale.Level != "audit" || sale.UserID == "" || sale.Fields["total"] != "105000.00" {
		t.Fatalf("sales.create audit missing or wrong: %+v", entries)
	}
	if e, ok := findAction(entries, "pricing.margin.set"); !ok || e.Fields["margin"] != "30" {
		t.Fatalf("pricing.margin.set audit missing: %+v", entries)
	}
}
