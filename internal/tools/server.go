// Package tools exposes the Dialogflow CX agent and the webhook helpers as MCP tools.
package tools

import (
	"context"
	"sync"
	"time"

	"github.com/charmbracelet/log"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/YevheniiGera/dialogflow-cx-mcp/internal/cx"
	"github.com/YevheniiGera/dialogflow-cx-mcp/internal/logging"
)

const (
	serverName    = "dialogflow-cx"
	serverVersion = "1.0.0"

	DefaultTimeout = 30 * time.Second
)

// DialFunc opens an agent connection. cx.Dial in production.
type DialFunc func(ctx context.Context, config cx.AgentConfig, logger *log.Logger) (*cx.Agent, error)

type Options struct {
	Logger *log.Logger
	// Timeout bounds each remote call. Zero means DefaultTimeout.
	Timeout time.Duration
	Dial    DialFunc
}

// Server owns the current agent handle and the MCP server it is exposed through.
type Server struct {
	mcp     *mcp.Server
	logger  *log.Logger
	timeout time.Duration
	dial    DialFunc

	mu    sync.RWMutex
	agent *cx.Agent
}

func NewServer(opts Options) *Server {
	s := &Server{
		logger:  opts.Logger,
		timeout: opts.Timeout,
		dial:    opts.Dial,
	}
	if s.timeout <= 0 {
		s.timeout = DefaultTimeout
	}
	if s.dial == nil {
		s.dial = cx.Dial
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}

	s.mcp = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: serverVersion,
	}, nil)
	s.register()

	return s
}

// SetAgent installs agent as the current handle and closes the one it replaces.
func (s *Server) SetAgent(agent *cx.Agent) {
	s.mu.Lock()
	prev := s.agent
	s.agent = agent
	s.mu.Unlock()

	if prev != nil && prev != agent {
		if err := prev.Close(); err != nil {
			s.logger.Warn("failed to close previous agent", "err", err)
		}
	}
}

func (s *Server) currentAgent() *cx.Agent {
	s.mu.RLock()
	defer s.mu.RUnlock()

	return s.agent
}

// Run serves MCP on t until the client disconnects or ctx is done.
func (s *Server) Run(ctx context.Context, t mcp.Transport) error {
	s.logger.Info("dialogflow cx mcp server starting")

	err := s.mcp.Run(ctx, t)

	s.SetAgent(nil)

	return err
}

// Connect serves a single session on t without blocking. Used by tests.
func (s *Server) Connect(ctx context.Context, t mcp.Transport) (*mcp.ServerSession, error) {
	return s.mcp.Connect(ctx, t, nil)
}
