// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package mcpserver

import (
	"errors"
	"log/slog"

	"github.com/mark3labs/mcp-go/server"

	"github.com/poiesic/hybridrag"
)

const (
	// ServerName is the MCP server name.
	ServerName = "hybridrag"

	// ServerVersion is the current server version.
	ServerVersion = "0.1.0"
)

// ErrEngineRequired is returned when an engine is not provided.
var ErrEngineRequired = errors.New("engine required")

// Server serves an Engine over MCP.
type Server struct {
	mcp          *server.MCPServer
	engine       *hybridrag.Engine
	defaultTopK  int
	defaultAlpha float64
	logger       *slog.Logger
}

// Option configures a Server.
type Option func(*Server) error

// WithDefaults sets the top_k and alpha used when search_chunks omits them.
func WithDefaults(topK int, alpha float64) Option {
	return func(s *Server) error {
		s.defaultTopK = topK
		s.defaultAlpha = alpha
		return nil
	}
}

// WithLogger sets a custom logger.
// Default is slog.Default().
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) error {
		if logger == nil {
			logger = slog.Default()
		}
		s.logger = logger
		return nil
	}
}

// NewServer creates a server and registers its tools.
func NewServer(engine *hybridrag.Engine, opts ...Option) (*Server, error) {
	if engine == nil {
		return nil, ErrEngineRequired
	}

	s := &Server{
		mcp:          server.NewMCPServer(ServerName, ServerVersion),
		engine:       engine,
		defaultTopK:  5,
		defaultAlpha: 0.75,
		logger:       slog.Default(),
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			return nil, err
		}
	}
	s.logger = s.logger.With("component", "mcp")

	s.mcp.AddTool(ingestDocumentTool(), s.handleIngestDocument)
	s.mcp.AddTool(searchChunksTool(), s.handleSearchChunks)
	s.mcp.AddTool(askTool(), s.handleAsk)

	return s, nil
}

// ServeStdio serves requests on stdin/stdout until the client disconnects.
func (s *Server) ServeStdio() error {
	s.logger.Info("serving MCP on stdio")
	return server.ServeStdio(s.mcp)
}
