// Package odata talks to a remote OData entity service that holds the
// TimeEntries collection and its Projects and Accountings lookups.
package odata

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"timebookings/internal/domain"
	"timebookings/internal/errors"
	"timebookings/internal/storage"
)

const (
	entitySetEntries     = "TimeEntries"
	entitySetProjects    = "Projects"
	entitySetAccountings = "Accountings"

	// Server-side creation order; the service stamps createdAt.
	listOrderBy = "createdAt desc"

	DefaultTimeout = 30 * time.Second
)

// HTTPDoer is the subset of *http.Client used by Client
type HTTPDoer interface {
	Do(req *http.Request) (*http.Response, error)
}

// Client is an OData-backed storage backend.
type Client struct {
	baseURL string
	http    HTTPDoer
}

// Option configures a Client
type Option func(*Client)

// WithHTTPClient replaces the default http client
func WithHTTPClient(doer HTTPDoer) Option {
	return func(c *Client) { c.http = doer }
}

// WithTimeout sets the timeout of the default http client
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http = &http.Client{Timeout: d} }
}

// New creates a client for the service rooted at baseURL
func New(baseURL string, opts ...Option) (*Client, error) {
	u, err := url.Parse(baseURL)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return nil, errors.NewInvalidInputError("odata_url", baseURL, "must be an absolute http(s) URL")
	}

	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		http:    &http.Client{Timeout: DefaultTimeout},
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

var errEntityNotFound = errors.NewNotFoundError("entity", "")

type collection[T any] struct {
	Value []T `json:"value"`
}

type errorBody struct {
	Error struct {
		Code    string `json:"code"`
		Message string `json:"message"`
	} `json:"error"`
}

// Create posts entry and returns the server-assigned id
func (c *Client) Create(ctx context.Context, entry domain.TimeEntry) (domain.EntryID, error) {
	entry.ID = ""
	var created domain.TimeEntry
	if err := c.do(ctx, http.MethodPost, c.entitySetURL(entitySetEntries), entry, &created, "create entry"); err != nil {
		return "", err
	}
	if created.ID == "" {
		return "", errors.NewPersistenceError("create entry", fmt.Errorf("service returned no id"))
	}
	return created.ID, nil
}

// Update patches the entity with the given id
func (c *Client) Update(ctx context.Context, id domain.EntryID, entry domain.TimeEntry) error {
	entry.ID = ""
	err := c.do(ctx, http.MethodPatch, c.entityURL(id), entry, nil, "update entry")
	if err == errEntityNotFound {
		return errors.NewNotFoundError("time entry", id.String())
	}
	return err
}

// Delete removes the entity with the given id
func (c *Client) Delete(ctx context.Context, id domain.EntryID) error {
	err := c.do(ctx, http.MethodDelete, c.entityURL(id), nil, nil, "delete entry")
	if err == errEntityNotFound {
		return errors.NewNotFoundError("time entry", id.String())
	}
	return err
}

// List fetches the collection newest first
func (c *Client) List(ctx context.Context) ([]domain.TimeEntry, error) {
	q := url.Values{}
	q.Set("$orderby", listOrderBy)

	var body collection[domain.TimeEntry]
	if err := c.do(ctx, http.MethodGet, c.entitySetURL(entitySetEntries)+"?"+q.Encode(), nil, &body, "list entries"); err != nil {
		return nil, err
	}
	if body.Value == nil {
		return []domain.TimeEntry{}, nil
	}
	return body.Value, nil
}

func (c *Client) Projects(ctx context.Context) (domain.ReferenceList, error) {
	return c.references(ctx, entitySetProjects)
}

func (c *Client) Accountings(ctx context.Context) (domain.ReferenceList, error) {
	return c.references(ctx, entitySetAccountings)
}

func (c *Client) Close() error {
	if hc, ok := c.http.(*http.Client); ok {
		hc.CloseIdleConnections()
	}
	return nil
}

func (c *Client) references(ctx context.Context, set string) (domain.ReferenceList, error) {
	var body collection[domain.Reference]
	if err := c.do(ctx, http.MethodGet, c.entitySetURL(set), nil, &body, "load "+strings.ToLower(set)); err != nil {
		return nil, err
	}
	if body.Value == nil {
		return domain.ReferenceList{}, nil
	}
	return domain.ReferenceList(body.Value), nil
}

func (c *Client) entitySetURL(set string) string {
	return c.baseURL + "/" + set
}

// entityURL builds TimeEntries('id') with OData quote escaping.
func (c *Client) entityURL(id domain.EntryID) string {
	key := strings.ReplaceAll(id.String(), "'", "''")
	return c.entitySetURL(entitySetEntries) + "('" + url.PathEscape(key) + "')"
}

func (c *Client) do(ctx context.Context, method, target string, in, out interface{}, operation string) error {
	var reqBody io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return errors.NewPersistenceError(operation, err)
		}
		reqBody = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, target, reqBody)
	if err != nil {
		return errors.NewPersistenceError(operation, err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return errors.NewPersistenceError(operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound && method != http.MethodGet {
		return errEntityNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return errors.NewPersistenceError(operation, decodeError(resp))
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return errors.NewPersistenceError(operation, fmt.Errorf("decode response: %w", err))
	}
	return nil
}

func decodeError(resp *http.Response) error {
	data, _ := io.ReadAll(io.LimitReader(resp.Body, 64<<10))

	var body errorBody
	if json.Unmarshal(data, &body) == nil && body.Error.Message != "" {
		if body.Error.Code != "" {
			return fmt.Errorf("%s: %s", body.Error.Code, body.Error.Message)
		}
		return fmt.Errorf("%s", body.Error.Message)
	}
	return fmt.Errorf("unexpected status %s", resp.Status)
}

var _ storage.Backend = (*Client)(nil)
