package mcp

import (
	"context"

	sdk "github.com/modelcontextprotocol/go-sdk/mcp"
)

// ServeStdio serves one session over the process's standard input and output until the client
// closes its end or ctx is cancelled.
func (s *Server) ServeStdio(ctx context.Context) error {
	s.logger.Info("Serving on stdio")
	return s.Serve(ctx, &sdk.StdioTransport{})
}
