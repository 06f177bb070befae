// Supabase REST (PostgREST) [Source] implementation.
//
// Reads tables through the project's auto-generated REST API using the anon
// key, the same endpoint the legacy widget frontend talks to.
package source

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"

	"github.com/slugger-analytics/clubhouse-migrate/internal/shared"
	"golang.org/x/time/rate"
)

const defaultFetchLimit = 10000

// RESTSource implements Source against the Supabase REST API.
type RESTSource struct {
	baseURL    string
	anonKey    string
	limit      int
	httpClient *http.Client
	limiter    *rate.Limiter
}

// NewRESTSource creates a REST source for the given Supabase project URL and anon key.
//
// limit caps rows fetched per table (default 10000); rps throttles requests
// per second against the shared project gateway (default 5).
func NewRESTSource(baseURL, anonKey string, limit int, rps float64, client *http.Client) *RESTSource {
	if limit <= 0 {
		limit = defaultFetchLimit
	}
	if rps <= 0 {
		rps = 5.0
	}
	if client == nil {
		client = http.DefaultClient
	}

	return &RESTSource{
		baseURL:    baseURL,
		anonKey:    anonKey,
		limit:      limit,
		httpClient: client,
		limiter:    rate.NewLimiter(rate.Limit(rps), 1),
	}
}

// Name returns the strategy name.
func (s *RESTSource) Name() string {
	return "supabase-rest"
}

// Fetch retrieves every row of the named table via GET /rest/v1/{table}.
func (s *RESTSource) Fetch(ctx context.Context, table string) ([]Row, error) {
	if !KnownTable(table) {
		return nil, fmt.Errorf("%w: %s", shared.ErrUnknownTable, table)
	}
	if s.baseURL == "" || s.anonKey == "" {
		return nil, fmt.Errorf("%w: supabase url or anon key not configured", shared.ErrSourceUnavailable)
	}

	if err := s.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter interrupted: %w", err)
	}

	query := url.Values{}
	query.Set("select", "*")
	query.Set("limit", strconv.Itoa(s.limit))
	endpoint := fmt.Sprintf("%s/rest/v1/%s?%s", s.baseURL, table, query.Encode())

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("apikey", s.anonKey)
	req.Header.Set("Authorization", "Bearer "+s.anonKey)
	req.Header.Set("Accept", "application/json")

	resp, err := s.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", shared.ErrSourceUnavailable, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, fmt.Errorf("%w: %s returned status %d", shared.ErrSourceUnavailable, table, resp.StatusCode)
	}

	var rows []Row
	if err := json.Unmarshal(body, &rows); err != nil {
		return nil, fmt.Errorf("failed to decode %s response: %w", table, err)
	}

	return rows, nil
}
