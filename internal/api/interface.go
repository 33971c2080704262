package api

import "context"

// GatewayClient defines the API operations used by the commands and the TUI
type GatewayClient interface {
	Chat(ctx context.Context, modelID, message string) (*Stream, error)
	Probe(ctx context.Context) error
	ListModels(ctx context.Context) ([]string, error)
	BaseURL() string
}

// Ensure Client implements GatewayClient
var _ GatewayClient = (*Client)(nil)
