package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/Pipboyguy/claude-code-hooks/pkg/config"
	"github.com/Pipboyguy/claude-code-hooks/pkg/guards"
	"github.com/Pipboyguy/claude-code-hooks/pkg/guards/emoji_guard"
	infraLogger "github.com/Pipboyguy/claude-code-hooks/pkg/infra/logger"
	"github.com/Pipboyguy/claude-code-hooks/pkg/server"
	"github.com/Pipboyguy/claude-code-hooks/pkg/types"
	"github.com/Pipboyguy/claude-code-hooks/pkg/version"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	envFile := os.Getenv("ENV_FILE")
	if envFile == "" {
		envFile = ".env"
	}
	// missing .env is the normal case for an installed hook
	_ = godotenv.Load(envFile)

	if err := config.Load(os.Getenv("CLAUDE_HOOKS_CONFIG")); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to load config: %v\n", err)
		os.Exit(1)
	}
	cfg := config.GetConfig()

	logger := infraLogger.NewLogger(cfg.Logging.Level, cfg.Logging.File)
	logger.WithField("version", version.Version).Debug("hook starting")

	manager := guards.NewManager(cfg, logger)

	if err := manager.RegisterGuard(emoji_guard.NewEmojiGuard(logger)); err != nil {
		logger.WithError(err).Error("failed to register emoji guard")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	chain := []types.GuardConfig{
		{
			Name:    emoji_guard.GuardName,
			Enabled: cfg.Guards.EmojiGuard.Enabled,
			Settings: map[string]interface{}{
				"max_examples": cfg.Guards.EmojiGuard.MaxExamples,
			},
		},
	}
	if err := manager.SetGuardChain(types.PreToolUse, chain); err != nil {
		logger.WithError(err).Error("failed to configure guard chain")
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	srv := server.NewStdioServer(manager, logger, os.Stdin, os.Stdout)
	if err := srv.Run(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
