package models

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
)

type modelItem struct {
	ID string `json:"id"`
}

// ListModels probes {endpoint}/models and normalizes the reply into a flat
// id list. Third-party gateways answer in one of three shapes:
// {"data":[...]}, a bare array, or {"models":[...]}; items are objects with
// an id or plain strings.
func (g *Gateway) ListModels(ctx context.Context, endpoint, key string) ([]string, error) {
	if endpoint == "" || key == "" {
		return nil, ErrNotConfigured
	}

	url := strings.TrimRight(endpoint, "/") + "/models"
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to build models request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+key)

	resp, err := g.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to call models endpoint: %w", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read models response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &HTTPError{Status: resp.StatusCode, Body: strings.TrimSpace(string(body))}
	}

	ids, err := normalizeModelList(body)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrBadResponse, err)
	}
	return ids, nil
}

func normalizeModelList(body []byte) ([]string, error) {
	var object map[string]json.RawMessage
	if err := json.Unmarshal(body, &object); err == nil {
		for _, field := range []string{"data", "models"} {
			raw, ok := object[field]
			if !ok {
				continue
			}
			var items []json.RawMessage
			if err := json.Unmarshal(raw, &items); err != nil {
				return nil, fmt.Errorf("field %q is not a list", field)
			}
			return modelIDs(items)
		}
		return nil, fmt.Errorf("object has neither data nor models field")
	}

	var bare []json.RawMessage
	if err := json.Unmarshal(body, &bare); err == nil {
		return modelIDs(bare)
	}

	return nil, fmt.Errorf("unrecognized models list shape")
}

func modelIDs(items []json.RawMessage) ([]string, error) {
	ids := make([]string, 0, len(items))
	for _, raw := range items {
		var item modelItem
		if err := json.Unmarshal(raw, &item); err == nil && item.ID != "" {
			ids = append(ids, item.ID)
			continue
		}
		var plain string
		if err := json.Unmarshal(raw, &plain); err == nil && plain != "" {
			ids = append(ids, plain)
			continue
		}
		return nil, fmt.Errorf("unrecognized model item %s", string(raw))
	}
	return ids, nil
}
