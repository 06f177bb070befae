package source

import (
	"context"
	"fmt"
	"testing"
)

type stubSource struct {
	name    string
	rows    []Row
	err     error
	fetches int
}

func (s *stubSource) Fetch(ctx context.Context, table string) ([]Row, error) {
	s.fetches++
	if s.err != nil {
		return nil, s.err
	}
	return s.rows, nil
}

func (s *stubSource) Name() string { return s.name }

func TestFallbackSource_Fetch(t *testing.T) {
	t.Run("first success wins", func(t *testing.T) {
		primary := &stubSource{name: "rest", rows: []Row{{"id": int64(1)}}}
		secondary := &stubSource{name: "sql", rows: []Row{{"id": int64(2)}}}
		src := NewFallbackSource(nil, primary, secondary)

		rows, err := src.Fetch(context.Background(), "teams")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if len(rows) != 1 {
			t.Fatalf("Fetch() rows = %v, want 1", len(rows))
		}
		if id, _ := rows[0].Int64("id"); id != 1 {
			t.Errorf("Fetch() should return the primary's rows, got id %v", id)
		}
		if secondary.fetches != 0 {
			t.Error("secondary should not be tried when primary succeeds")
		}
	})

	t.Run("failing primary falls through", func(t *testing.T) {
		primary := &stubSource{name: "rest", err: fmt.Errorf("gateway timeout")}
		secondary := &stubSource{name: "sql", rows: []Row{{"id": int64(2)}}}
		src := NewFallbackSource(nil, primary, secondary)

		rows, err := src.Fetch(context.Background(), "teams")
		if err != nil {
			t.Fatalf("Fetch() error = %v", err)
		}
		if id, _ := rows[0].Int64("id"); id != 2 {
			t.Errorf("Fetch() should return the secondary's rows, got id %v", id)
		}
	})

	t.Run("all strategies failing yields empty table", func(t *testing.T) {
		primary := &stubSource{name: "rest", err: fmt.Errorf("gateway timeout")}
		secondary := &stubSource{name: "sql", err: fmt.Errorf("connection refused")}
		src := NewFallbackSource(nil, primary, secondary)

		rows, err := src.Fetch(context.Background(), "teams")
		if err != nil {
			t.Fatalf("Fetch() error = %v, want nil", err)
		}
		if rows == nil || len(rows) != 0 {
			t.Errorf("Fetch() = %v, want empty non-nil slice", rows)
		}
	})
}

func TestFallbackSource_Name(t *testing.T) {
	src := NewFallbackSource(nil, &stubSource{name: "rest"}, &stubSource{name: "sql"})
	if got := src.Name(); got != "fallback(rest,sql)" {
		t.Errorf("Name() = %v, want fallback(rest,sql)", got)
	}
}
