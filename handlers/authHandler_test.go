package handlers_test

import (
	"net/http"
	"testing"

	"github.com/habitgrid/habitgrid-backend/testutil"
)

func TestRegister(t *testing.T) {
	testutil.SetupTestDB(t)
	r := testutil.NewRouter()

	t.Run("creates user and returns id, name and token", func(t *testing.T) {
		w := testutil.DoJSON(t, r, http.MethodPost, "/auth/register", map[string]string{
			"name":     "alice",
			"password": "secret123",
		})
		if w.Code != http.StatusCreated {
			t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
		}

		var resp struct {
			ID    uint   `json:"id"`
			Name  string `json:"name"`
			Token string `json:"token"`
		}
		testutil.DecodeBody(t, w, &resp)
		if resp.ID == 0 || resp.Name != "alice" || resp.Token == "" {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("second registration with same name conflicts", func(t *testing.T) {
		w := testutil.DoJSON(t, r, http.MethodPost, "/auth/register", map[string]string{
			"name":     "alice",
			"password": "othersecret",
		})
		if w.Code != http.StatusConflict {
			t.Errorf("got status %d, want 409", w.Code)
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		for _, body := range []map[string]string{
			{"name": "bob"},
			{"password": "secret123"},
			{},
		} {
			w := testutil.DoJSON(t, r, http.MethodPost, "/auth/register", body)
			if w.Code != http.StatusBadRequest {
				t.Errorf("body %v: got status %d, want 400", body, w.Code)
			}
		}
	})
}

func TestLogin(t *testing.T) {
	testutil.SetupTestDB(t)
	r := testutil.NewRouter()

	w := testutil.DoJSON(t, r, http.MethodPost, "/auth/register", map[string]string{
		"name":     "alice",
		"password": "secret123",
	})
	if w.Code != http.StatusCreated {
		t.Fatalf("register failed: %d %s", w.Code, w.Body.String())
	}

	t.Run("valid credentials", func(t *testing.T) {
		w := testutil.DoJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
			"name":     "alice",
			"password": "secret123",
		})
		if w.Code != http.StatusOK {
			t.Fatalf("got status %d, body %s", w.Code, w.Body.String())
		}

		var resp struct {
			ID    uint   `json:"id"`
			Name  string `json:"name"`
			Token string `json:"token"`
		}
		testutil.DecodeBody(t, w, &resp)
		if resp.Name != "alice" || resp.Token == "" {
			t.Errorf("unexpected response: %+v", resp)
		}
	})

	t.Run("wrong password and unknown user fail identically", func(t *testing.T) {
		wrongPass := testutil.DoJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
			"name":     "alice",
			"password": "wrong",
		})
		unknownUser := testutil.DoJSON(t, r, http.MethodPost, "/auth/login", map[string]string{
			"name":     "nobody",
			"password": "secret123",
		})

		if wrongPass.Code != http.StatusUnauthorized || unknownUser.Code != http.StatusUnauthorized {
			t.Fatalf("got statuses %d and %d, want 401 for both", wrongPass.Code, unknownUser.Code)
		}
		if wrongPass.Body.String() != unknownUser.Body.String() {
			t.Errorf("failure responses differ: %q vs %q", wrongPass.Body.String(), unknownUser.Body.String())
		}
	})

	t.Run("missing fields", func(t *testing.T) {
		w := testutil.DoJSON(t, r, http.MethodPost, "/auth/login", map[string]string{"name": "alice"})
		if w.Code != http.StatusBadRequest {
			t.Errorf("got status %d, want 400", w.Code)
		}
	})
}
