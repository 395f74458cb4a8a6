package handlers_test

import (
	"net/http"
	"testing"
)

func TestLoginIssuesToken(t *testing.T) {
	env := newTestEnv(t)
	tok := env.login(t, sellerEmail)

	claims, err := env.deps.Auth.ParseToken(tok)
	if err != nil {
		t.Fatalf("parse token: %v", err)
	}
	if claims.Role != "SELLER" || claims.Email != sellerEmail {
		t.Fatalf("unexpected claims %+v", claims)
	}
}

func TestLoginFailureLogsSecurityEvent(t *testing.T) {
	env := newTestEnv(t)

	var resp *http.Response
	entries := captureLogs(t, func() {
		resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/login", "", map[string]string{
			"email": sellerEmail, "password": "WrongPass1!",
		})
	})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
	e, ok := findAction(entries, "auth.login.fail")
	if !ok {
		t.Fatalf("no auth.login.fail entry in %+v", entries)
	}
	if e.Level != "warn" || e.Fields["email"] != sellerEmail {
		t.Fatalf("unexpected entry %+v", e)
	}
	for _, e := range entries {
		for _, v := range e.Fields {
			if v == "WrongPass1!" {
				t.Fatalf("password leaked into logs: %+v", e)
			}
		}
	}
}

func TestLoginSuccessIsAudited(t *testing.T) {
	env := newTestEnv(t)

	entries := captureLogs(t, func() { env.login(t, customerEmail) })
	e, ok := findAction(entries, "auth.login.success")
	if !ok {
		t.Fatalf("no auth.login.success entry in %+v", entries)
	}
	if e.Level != "audit" || e.UserID == "" {
		t.Fatalf("unexpected entry %+v", e)
	}
}

func TestRegister(t *testing.T) {
	env := newTestEnv(t)

	body := map[string]string{"username": "nuevo", "email": "nuevo@shopvision.test", "password": "Str0ng!pw"}
	resp, out := env.do(t, http.MethodPost, "/api/v1/auth/register", "", body)
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("register: %d %s", resp.StatusCode, out)
	}
	var u struct {
		Role string `json:"role"`
		Hash string `json:"password_hash"`
	}
	decode(t, out, &u)
	if u.Role != "CUSTOMER" || u.Hash != "" {
		t.Fatalf("unexpected user %s", out)
	}

	resp, out = env.do(t, http.MethodPost, "/api/v1/auth/register", "", body)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("duplicate register: %d %s", resp.StatusCode, out)
	}

	body["email"] = "otro@shopvision.test"
	body["password"] = "weak"
	resp, _ = env.do(t, http.MethodPost, "/api/v1/auth/register", "", body)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("weak password: %d", resp.StatusCode)
	}
}
