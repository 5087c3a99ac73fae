package guardiface

import (
	"context"

	"github.com/Pipboyguy/claude-code-hooks/pkg/types"
)

type Guard interface {
	Name() string
	// AllowedEvents returns the hook events the guard may be chained on.
	// Used for validation when a guard chain is configured.
	AllowedEvents() []types.HookEvent
	Execute(
		ctx context.Context,
		cfg types.GuardConfig,
		req *types.HookRequest,
	) (*types.GuardResponse, error)
	ValidateConfig(config types.GuardConfig) error
}
