package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"

	"github.com/tidwall/gjson"

	apierrors "github.com/diogo/localchat/internal/errors"
	"github.com/diogo/localchat/internal/logger"
	"github.com/diogo/localchat/internal/models"
)

// Probe checks that the API server is reachable by fetching the model list.
// Any transport failure or non-2xx status yields a ConnectivityError.
func (c *Client) Probe(ctx context.Context) error {
	resp, err := c.getModels(ctx)
	if err != nil {
		return err
	}
	defer resp.Body.Close()
	_, _ = io.Copy(io.Discard, io.LimitReader(resp.Body, maxErrorBody))

	c.log.Debug("connected to api server", logger.URL, c.baseURL)
	return nil
}

// ListModels returns the IDs the server reports under data[].id.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	resp, err := c.getModels(ctx)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read model list: %w", err)
	}
	if !gjson.ValidBytes(data) {
		return nil, fmt.Errorf("model list is not valid JSON")
	}

	var ids []string
	for _, id := range gjson.GetBytes(data, models.PathModelIDs).Array() {
		if id.Type == gjson.String && id.Str != "" {
			ids = append(ids, id.Str)
		}
	}
	return ids, nil
}

// getModels issues GET {base}/models and converts every failure except a
// caller cancel into a ConnectivityError. A hung server that runs out the
// deadline counts as unreachable. On success the caller owns the response
// body.
func (c *Client) getModels(ctx context.Context) (*http.Response, error) {
	endpoint := c.baseURL + models.EndpointModels
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		if errors.Is(ctx.Err(), context.Canceled) {
			return nil, ctx.Err()
		}
		c.log.Warn("api server not reachable", logger.URL, endpoint, logger.ERROR, err)
		return nil, apierrors.NewConnectivityError(endpoint, 0, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		resp.Body.Close()
		c.log.Warn("api server probe rejected", logger.URL, endpoint, logger.STATUS, resp.StatusCode)
		return nil, apierrors.NewConnectivityError(endpoint, resp.StatusCode, nil)
	}

	return resp, nil
}
