// Package exercisedb searches the ExerciseDB catalog on RapidAPI and
// reshapes results for clients.
//
// A search is a single request: no retries and no caching.
package exercisedb

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/HendryAvila/liftcoach/internal/catalog"
)

const (
	// DefaultBaseURL is the RapidAPI endpoint for ExerciseDB.
	DefaultBaseURL = "https://exercisedb.p.rapidapi.com"

	// DefaultTimeout bounds a single search request.
	DefaultTimeout = 10 * time.Second

	defaultLimit   = 10
	gifResolution  = "360"
	userAgentValue = "liftcoach"
)

// ErrMissingAPIKey is returned by Search when no API key is configured.
var ErrMissingAPIKey = errors.New("exercisedb: API key not configured")

// Query selects what to search for. Name takes precedence over BodyPart;
// with neither set the unfiltered list is returned.
type Query struct {
	Name     string
	BodyPart string
}

// Result is one reshaped exercise. Text fields missing upstream stay nil
// and are sent as null.
type Result struct {
	ID        catalog.ID `json:"id"`
	Name      *string    `json:"name"`
	BodyPart  *string    `json:"bodyPart"`
	Target    *string    `json:"target"`
	Equipment *string    `json:"equipment"`
	GifURL    *string    `json:"gifUrl"`
}

// Searcher is the catalog-search collaborator.
type Searcher interface {
	Search(ctx context.Context, q Query) ([]Result, error)
}

// Options configures a Client. Zero values fall back to the defaults.
type Options struct {
	BaseURL    string
	APIKey     string
	Timeout    time.Duration
	HTTPClient *http.Client
}

// Client implements Searcher over HTTP.
type Client struct {
	baseURL string
	host    string
	apiKey  string
	limit   int
	http    *http.Client
}

// NewClient builds a Client from opts.
func NewClient(opts Options) (*Client, error) {
	base := strings.TrimRight(opts.BaseURL, "/")
	if base == "" {
		base = DefaultBaseURL
	}
	u, err := url.Parse(base)
	if err != nil {
		return nil, fmt.Errorf("exercisedb: parse base URL: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("exercisedb: base URL %q must be absolute", base)
	}

	hc := opts.HTTPClient
	if hc == nil {
		timeout := opts.Timeout
		if timeout <= 0 {
			timeout = DefaultTimeout
		}
		hc = &http.Client{Timeout: timeout}
	}

	return &Client{
		baseURL: base,
		host:    u.Host,
		apiKey:  opts.APIKey,
		limit:   defaultLimit,
		http:    hc,
	}, nil
}

// Search queries ExerciseDB. Transport failures, non-200 responses and
// undecodable bodies are all returned as errors.
func (c *Client) Search(ctx context.Context, q Query) ([]Result, error) {
	if c.apiKey == "" {
		return nil, ErrMissingAPIKey
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.searchURL(q), nil)
	if err != nil {
		return nil, fmt.Errorf("exercisedb: creating request: %w", err)
	}
	req.Header.Set("X-RapidAPI-Key", c.apiKey)
	req.Header.Set("X-RapidAPI-Host", c.host)
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", userAgentValue)

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("exercisedb: request failed: %w", err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("exercisedb: API returned %d", resp.StatusCode)
	}

	var raw []apiExercise
	if err := json.NewDecoder(resp.Body).Decode(&raw); err != nil {
		return nil, fmt.Errorf("exercisedb: decoding response: %w", err)
	}

	results := make([]Result, 0, len(raw))
	for _, item := range raw {
		results = append(results, Result{
			ID:        item.ID,
			Name:      item.Name,
			BodyPart:  item.BodyPart,
			Target:    item.Target,
			Equipment: item.Equipment,
			GifURL:    c.gifURL(item.ID),
		})
	}
	return results, nil
}

// apiExercise is the subset of the upstream payload we keep.
type apiExercise struct {
	ID        catalog.ID `json:"id"`
	Name      *string    `json:"name"`
	BodyPart  *string    `json:"bodyPart"`
	Target    *string    `json:"target"`
	Equipment *string    `json:"equipment"`
}

func (c *Client) searchURL(q Query) string {
	var p string
	switch {
	case q.Name != "":
		p = "/exercises/name/" + url.PathEscape(q.Name)
	case q.BodyPart != "":
		p = "/exercises/bodyPart/" + url.PathEscape(q.BodyPart)
	default:
		p = "/exercises"
	}
	params := url.Values{}
	params.Set("offset", "0")
	params.Set("limit", strconv.Itoa(c.limit))
	return c.baseURL + p + "?" + params.Encode()
}

// gifURL points at the ExerciseDB image service for id.
func (c *Client) gifURL(id catalog.ID) *string {
	if id.IsZero() {
		return nil
	}
	params := url.Values{}
	params.Set("resolution", gifResolution)
	params.Set("rapidapi-key", c.apiKey)
	params.Set("exerciseId", id.String())
	u := c.baseURL + "/image?" + params.Encode()
	return &u
}
