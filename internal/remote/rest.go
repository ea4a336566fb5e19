package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"
)

// restStore talks to a row-oriented HTTP API: POST /{table} creates,
// PATCH /{table}/{id} updates, DELETE /{table}/{id} deletes and
// GET /{table} returns the full row set.
type restStore struct {
	baseURL string
	token   string
	client  *http.Client
	log     *zap.Logger
}

// NewREST builds a Store over a REST-like row API. The bearer token comes
// from the remote backend's session mechanism.
func NewREST(baseURL, token string, timeout time.Duration, log *zap.Logger) Store {
	return &restStore{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
		log:     log,
	}
}

func (s *restStore) Insert(ctx context.Context, table string, row map[string]any) error {
	return s.send(ctx, http.MethodPost, "/"+table, row)
}

func (s *restStore) Update(ctx context.Context, table, id string, row map[string]any) error {
	return s.send(ctx, http.MethodPatch, "/"+table+"/"+id, row)
}

func (s *restStore) Delete(ctx context.Context, table, id string) error {
	return s.send(ctx, http.MethodDelete, "/"+table+"/"+id, nil)
}

func (s *restStore) SelectAll(ctx context.Context, table string) ([]map[string]any, error) {
	req, err := s.newRequest(ctx, http.MethodGet, "/"+table, nil)
	if err != nil {
		return nil, err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("remote select %s: %w", table, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, s.statusError(resp, table)
	}

	var rows []map[string]any
	if err := json.NewDecoder(resp.Body).Decode(&rows); err != nil {
		return nil, fmt.Errorf("remote select %s: decode response: %w", table, err)
	}
	return rows, nil
}

func (s *restStore) send(ctx context.Context, method, path string, body any) error {
	var payload io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("remote %s %s: marshal body: %w", method, path, err)
		}
		payload = bytes.NewReader(data)
	}

	req, err := s.newRequest(ctx, method, path, payload)
	if err != nil {
		return err
	}

	resp, err := s.client.Do(req)
	if err != nil {
		return fmt.Errorf("remote %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return s.statusError(resp, path)
	}

	// Drain so the connection can be reused.
	io.Copy(io.Discard, resp.Body)
	return nil
}

func (s *restStore) newRequest(ctx context.Context, method, path string, body io.Reader) (*http.Request, error) {
	req, err := http.NewRequestWithContext(ctx, method, s.baseURL+path, body)
	if err != nil {
		return nil, fmt.Errorf("remote %s %s: build request: %w", method, path, err)
	}
	req.Header.Set("Content-Type", "application/json")
	if s.token != "" {
		req.Header.Set("Authorization", "Bearer "+s.token)
	}
	return req, nil
}

func (s *restStore) statusError(resp *http.Response, target string) error {
	body, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
	s.log.Debug("Remote rejected request",
		zap.String("target", target),
		zap.Int("status", resp.StatusCode),
		zap.ByteString("body", body),
	)
	return fmt.Errorf("remote %s: unexpected status %d", target, resp.StatusCode)
}
