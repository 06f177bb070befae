package source

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
)

type failingRoundTripper struct {
	err error
}

func (f *failingRoundTripper) RoundTrip(*http.Request) (*http.Response, error) {
	return nil, f.err
}

func TestRESTSource_Fetch(t *testing.T) {
	t.Run("fetches rows with supabase headers", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Path != "/rest/v1/teams" {
				t.Errorf("expected path '/rest/v1/teams', got %s", r.URL.Path)
			}
			if got := r.URL.Query().Get("select"); got != "*" {
				t.Errorf("expected select=*, got %s", got)
			}
			if got := r.URL.Query().Get("limit"); got != "10000" {
				t.Errorf("expected limit=10000, got %s", got)
			}
			if got := r.Header.Get("apikey"); got != "anon-key" {
				t.Errorf("expected apikey header, got %s", got)
			}
			if got := r.Header.Get("Authorization"); got != "Bearer anon-key" {
				t.Errorf("expected bearer auth, got %s", got)
			}

			w.Header().Set("Content-Type", "application/json")
			json.NewEncoder(w).Encode([]map[string]any{
				{"id": 1, "team_name": "Tigers"},
				{"id": 2, "team_name": "Hawks"},
			})
		}))
		defer server.Close()

		src := NewRESTSource(server.URL, "anon-key", 0, 0, nil)
		rows, err := src.Fetch(context.Background(), "teams")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if len(rows) != 2 {
			t.Fatalf("Fetch() rows = %v, want 2", len(rows))
		}
		if rows[0].String("team_name") != "Tigers" {
			t.Errorf("rows[0].team_name = %v, want Tigers", rows[0].String("team_name"))
		}
	})

	t.Run("empty table yields empty slice", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			fmt.Fprint(w, "[]")
		}))
		defer server.Close()

		src := NewRESTSource(server.URL, "anon-key", 0, 0, nil)
		rows, err := src.Fetch(context.Background(), "meals")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if len(rows) != 0 {
			t.Errorf("Fetch() rows = %v, want 0", len(rows))
		}
	})

	t.Run("non-2xx status is a source error", func(t *testing.T) {
		server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusUnauthorized)
		}))
		defer server.Close()

		src := NewRESTSource(server.URL, "bad-key", 0, 0, nil)
		_, err := src.Fetch(context.Background(), "teams")
		if !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("Fetch() error = %v, want ErrSourceUnavailable", err)
		}
	})

	t.Run("transport failure is a source error", func(t *testing.T) {
		client := &http.Client{Transport: &failingRoundTripper{err: fmt.Errorf("connection refused")}}
		src := NewRESTSource("http://supabase.invalid", "anon-key", 0, 0, client)

		_, err := src.Fetch(context.Background(), "teams")
		if !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("Fetch() error = %v, want ErrSourceUnavailable", err)
		}
	})

	t.Run("unknown table is rejected", func(t *testing.T) {
		src := NewRESTSource("http://supabase.invalid", "anon-key", 0, 0, nil)

		_, err := src.Fetch(context.Background(), "secrets")
		if !errors.Is(err, shared.ErrUnknownTable) {
			t.Errorf("Fetch() error = %v, want ErrUnknownTable", err)
		}
	})

	t.Run("missing configuration is rejected", func(t *testing.T) {
		src := NewRESTSource("", "", 0, 0, nil)

		_, err := src.Fetch(context.Background(), "teams")
		if !errors.Is(err, shared.ErrSourceUnavailable) {
			t.Errorf("Fetch() error = %v, want ErrSourceUnavailable", err)
		}
	})
}

func TestRESTSource_Name(t *testing.T) {
	if got := NewRESTSource("", "", 0, 0, nil).Name(); got != "supabase-rest" {
		t.Errorf("Name() = %v, want supabase-rest", got)
	}
}
