package guards

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/Pipboyguy/claude-code-hooks/pkg/config"
	"github.com/Pipboyguy/claude-code-hooks/pkg/guardiface"
	"github.com/Pipboyguy/claude-code-hooks/pkg/types"
)

type Manager interface {
	RegisterGuard(guard guardiface.Guard) error
	ValidateGuard(name string, cfg types.GuardConfig) error
	SetGuardChain(event types.HookEvent, chain []types.GuardConfig) error
	GetGuard(name string) guardiface.Guard
	Execute(
		ctx context.Context,
		event types.HookEvent,
		req *types.HookRequest,
	) (*types.HookResponse, error)
}

type manager struct {
	mu     sync.RWMutex
	config *config.Config
	logger *logrus.Logger
	guards map[string]guardiface.Guard
	chains map[types.HookEvent][]types.GuardConfig
}

func NewManager(cfg *config.Config, logger *logrus.Logger) Manager {
	return &manager{
		config: cfg,
		logger: logger,
		guards: make(map[string]guardiface.Guard),
		chains: make(map[types.HookEvent][]types.GuardConfig),
	}
}

func (m *manager) RegisterGuard(guard guardiface.Guard) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name := guard.Name()
	if _, exists := m.guards[name]; exists {
		return fmt.Errorf("guard %s already registered", name)
	}
	m.guards[name] = guard
	return nil
}

func (m *manager) ValidateGuard(name string, cfg types.GuardConfig) error {
	m.mu.RLock()
	guard, exists := m.guards[name]
	m.mu.RUnlock()

	if !exists {
		return fmt.Errorf("unknown guard: %s", name)
	}
	return guard.ValidateConfig(cfg)
}

// SetGuardChain fixes the ordered guard list executed on an event. Every
// entry must name a registered guard that allows the event.
func (m *manager) SetGuardChain(event types.HookEvent, chain []types.GuardConfig) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, cfg := range chain {
		guard, exists := m.guards[cfg.Name]
		if !exists {
			return fmt.Errorf("unknown guard: %s", cfg.Name)
		}
		if !eventAllowed(guard.AllowedEvents(), event) {
			return fmt.Errorf("guard %s cannot run on event %s", cfg.Name, event)
		}
		if cfg.Enabled {
			if err := guard.ValidateConfig(cfg); err != nil {
				return fmt.Errorf("invalid config for guard %s: %w", cfg.Name, err)
			}
		}
	}

	m.chains[event] = chain
	return nil
}

func (m *manager) GetGuard(name string) guardiface.Guard {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.guards[name]
}

// Execute runs the event's guard chain in order. The first guard returning a
// GuardError decides the outcome; a nil response means nothing objected and
// the operation is allowed.
func (m *manager) Execute(
	ctx context.Context,
	event types.HookEvent,
	req *types.HookRequest,
) (*types.HookResponse, error) {
	m.mu.RLock()
	chain := m.chains[event]
	m.mu.RUnlock()

	executionID := uuid.NewString()
	log := m.logger.WithFields(logrus.Fields{
		"execution_id": executionID,
		"event":        string(event),
		"tool":         req.ToolName,
	})

	for _, cfg := range chain {
		if !cfg.Enabled {
			continue
		}
		guard := m.GetGuard(cfg.Name)
		if guard == nil {
			continue
		}

		resp, err := guard.Execute(ctx, cfg, req)
		if err != nil {
			var guardErr *types.GuardError
			if errors.As(err, &guardErr) {
				log.WithField("guard", cfg.Name).Info("operation blocked")
				return &types.HookResponse{
					HookSpecificOutput: types.HookSpecificOutput{
						HookEventName:            string(event),
						PermissionDecision:       guardErr.Decision,
						PermissionDecisionReason: guardErr.Reason,
					},
				}, nil
			}

			if m.config.Guards.IgnoreErrors {
				log.WithField("guard", cfg.Name).WithError(err).Warn("guard failed, ignoring")
				continue
			}
			return nil, fmt.Errorf("guard %s failed: %w", cfg.Name, err)
		}

		if resp != nil {
			entry := log.WithField("guard", cfg.Name)
			if len(resp.Metadata) > 0 {
				entry = entry.WithField("metadata", resp.Metadata)
			}
			entry.Debug(resp.Message)
		}
	}

	return nil, nil
}

func eventAllowed(allowed []types.HookEvent, event types.HookEvent) bool {
	for _, e := range allowed {
		if e == event {
			return true
		}
	}
	return false
}
