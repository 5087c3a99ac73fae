package server

import (
	"context"
	"encoding/json"
	"fmt"
	"io"

	"github.com/sirupsen/logrus"

	"github.com/Pipboyguy/claude-code-hooks/pkg/guards"
	"github.com/Pipboyguy/claude-code-hooks/pkg/types"
)

// StdioServer serves a single hook invocation: one JSON request on in, at
// most one JSON response on out. No response means the operation is allowed.
type StdioServer struct {
	manager guards.Manager
	logger  *logrus.Logger
	in      io.Reader
	out     io.Writer
}

func NewStdioServer(manager guards.Manager, logger *logrus.Logger, in io.Reader, out io.Writer) *StdioServer {
	return &StdioServer{
		manager: manager,
		logger:  logger,
		in:      in,
		out:     out,
	}
}

// Run reads the request, executes the PreToolUse guard chain and writes the
// verdict. A request that cannot be parsed is a structural failure, reported
// as an error rather than a verdict.
func (s *StdioServer) Run(ctx context.Context) error {
	data, err := io.ReadAll(s.in)
	if err != nil {
		return fmt.Errorf("failed to read hook input: %w", err)
	}

	var req types.HookRequest
	if err := json.Unmarshal(data, &req); err != nil {
		return fmt.Errorf("invalid JSON input: %w", err)
	}

	resp, err := s.manager.Execute(ctx, types.PreToolUse, &req)
	if err != nil {
		return err
	}

	if resp == nil {
		s.logger.WithField("tool", req.ToolName).Debug("operation allowed")
		return nil
	}

	if err := json.NewEncoder(s.out).Encode(resp); err != nil {
		return fmt.Errorf("failed to write hook response: %w", err)
	}
	return nil
}
