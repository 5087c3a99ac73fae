package guards

import (
	"context"
	"errors"
	"testing"

	"github.com/sirupsen/logrus"
	logrustest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Pipboyguy/claude-code-hooks/pkg/config"
	"github.com/Pipboyguy/claude-code-hooks/pkg/types"
)

type stubGuard struct {
	name        string
	events      []types.HookEvent
	resp        *types.GuardResponse
	err         error
	validateErr error
	calls       int
}

func (g *stubGuard) Name() string { return g.name }

func (g *stubGuard) AllowedEvents() []types.HookEvent { return g.events }

func (g *stubGuard) ValidateConfig(types.GuardConfig) error { return g.validateErr }

func (g *stubGuard) Execute(
	_ context.Context,
	_ types.GuardConfig,
	_ *types.HookRequest,
) (*types.GuardResponse, error) {
	g.calls++
	return g.resp, g.err
}

func newTestManager(ignoreErrors bool) Manager {
	cfg := &config.Config{
		Guards: config.GuardsConfig{IgnoreErrors: ignoreErrors},
	}
	return NewManager(cfg, logrus.New())
}

func preToolUseStub(name string) *stubGuard {
	return &stubGuard{
		name:   name,
		events: []types.HookEvent{types.PreToolUse},
		resp:   &types.GuardResponse{Message: "ok"},
	}
}

func testRequest() *types.HookRequest {
	return &types.HookRequest{
		ToolName:  types.ToolWrite,
		ToolInput: map[string]interface{}{"file_path": "app.py"},
	}
}

func TestManager_RegisterGuard_Duplicate(t *testing.T) {
	m := newTestManager(true)

	assert.NoError(t, m.RegisterGuard(preToolUseStub("a")))
	assert.Error(t, m.RegisterGuard(preToolUseStub("a")))
}

func TestManager_SetGuardChain_UnknownGuard(t *testing.T) {
	m := newTestManager(true)

	err := m.SetGuardChain(types.PreToolUse, []types.GuardConfig{
		{Name: "missing", Enabled: true},
	})
	assert.Error(t, err)
}

func TestManager_SetGuardChain_EventNotAllowed(t *testing.T) {
	m := newTestManager(true)
	require.NoError(t, m.RegisterGuard(preToolUseStub("a")))

	err := m.SetGuardChain(types.PostToolUse, []types.GuardConfig{
		{Name: "a", Enabled: true},
	})
	assert.Error(t, err)
}

func TestManager_SetGuardChain_InvalidConfig(t *testing.T) {
	m := newTestManager(true)
	g := preToolUseStub("a")
	g.validateErr = errors.New("bad settings")
	require.NoError(t, m.RegisterGuard(g))

	err := m.SetGuardChain(types.PreToolUse, []types.GuardConfig{
		{Name: "a", Enabled: true},
	})
	assert.Error(t, err)

	// disabled guards are not validated
	err = m.SetGuardChain(types.PreToolUse, []types.GuardConfig{
		{Name: "a", Enabled: false},
	})
	assert.NoError(t, err)
}

func TestManager_Execute_Allow(t *testing.T) {
	m := newTestManager(true)
	require.NoError(t, m.RegisterGuard(preToolUseStub("a")))
	require.NoError(t, m.SetGuardChain(types.PreToolUse, []types.GuardConfig{
		{Name: "a", Enabled: true},
	}))

	resp, err := m.Execute(context.Background(), types.PreToolUse, testRequest())

	assert.NoError(t, err)
	assert.Nil(t, resp)
}

func TestManager_Execute_DenyAssembly(t *testing.T) {
	m := newTestManager(true)
	g := preToolUseStub("a")
	g.resp = nil
	g.err = &types.GuardError{
		Decision: types.DecisionDeny,
		Reason:   "blocked for a reason",
	}
	require.NoError(t, m.RegisterGuard(g))
	require.NoError(t, m.SetGuardChain(types.PreToolUse, []types.GuardConfig{
		{Name: "a", Enabled: true},
	}))

	resp, err := m.Execute(context.Background(), types.PreToolUse, testRequest())

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "PreToolUse", resp.HookSpecificOutput.HookEventName)
	assert.Equal(t, types.DecisionDeny, resp.HookSpecificOutput.PermissionDecision)
	assert.Equal(t, "blocked for a reason", resp.HookSpecificOutput.PermissionDecisionReason)
}

func TestManager_Execute_DisabledGuardSkipped(t *testing.T) {
	m := newTestManager(true)
	g := preToolUseStub("a")
	require.NoError(t, m.RegisterGuard(g))
	require.NoError(t, m.SetGuardChain(types.PreToolUse, []types.GuardConfig{
		{Name: "a", Enabled: false},
	}))

	resp, err := m.Execute(context.Background(), types.PreToolUse, testRequest())

	assert.NoError(t, err)
	assert.Nil(t, resp)
	assert.Equal(t, 0, g.calls)
}

func TestManager_Execute_GuardFailure(t *testing.T) {
	failing := func() *stubGuard {
		g := preToolUseStub("a")
		g.resp = nil
		g.err = errors.New("boom")
		return g
	}

	m := newTestManager(true)
	require.NoError(t, m.RegisterGuard(failing()))
	require.NoError(t, m.SetGuardChain(types.PreToolUse, []types.GuardConfig{
		{Name: "a", Enabled: true},
	}))

	resp, err := m.Execute(context.Background(), types.PreToolUse, testRequest())
	assert.NoError(t, err)
	assert.Nil(t, resp)

	strict := newTestManager(false)
	require.NoError(t, strict.RegisterGuard(failing()))
	require.NoError(t, strict.SetGuardChain(types.PreToolUse, []types.GuardConfig{
		{Name: "a", Enabled: true},
	}))

	resp, err = strict.Execute(context.Background(), types.PreToolUse, testRequest())
	assert.Error(t, err)
	assert.Nil(t, resp)
}

func TestManager_Execute_LogsGuardMetadata(t *testing.T) {
	logger, hook := logrustest.NewNullLogger()
	logger.SetLevel(logrus.DebugLevel)

	cfg := &config.Config{
		Guards: config.GuardsConfig{IgnoreErrors: true},
	}
	m := NewManager(cfg, logger)

	g := preToolUseStub("a")
	g.resp = &types.GuardResponse{
		Message: "checked",
		Metadata: map[string]interface{}{
			"a": map[string]interface{}{"blocked": false},
		},
	}
	require.NoError(t, m.RegisterGuard(g))
	require.NoError(t, m.SetGuardChain(types.PreToolUse, []types.GuardConfig{
		{Name: "a", Enabled: true},
	}))

	_, err := m.Execute(context.Background(), types.PreToolUse, testRequest())
	require.NoError(t, err)

	var logged bool
	for _, entry := range hook.AllEntries() {
		if entry.Message != "checked" {
			continue
		}
		logged = true
		assert.Equal(t, g.resp.Metadata, entry.Data["metadata"])
	}
	assert.True(t, logged)
}

func TestManager_Execute_FirstDenyWins(t *testing.T) {
	m := newTestManager(true)

	first := preToolUseStub("first")
	first.resp = nil
	first.err = &types.GuardError{Decision: types.DecisionDeny, Reason: "first"}
	second := preToolUseStub("second")

	require.NoError(t, m.RegisterGuard(first))
	require.NoError(t, m.RegisterGuard(second))
	require.NoError(t, m.SetGuardChain(types.PreToolUse, []types.GuardConfig{
		{Name: "first", Enabled: true},
		{Name: "second", Enabled: true},
	}))

	resp, err := m.Execute(context.Background(), types.PreToolUse, testRequest())

	require.NoError(t, err)
	require.NotNil(t, resp)
	assert.Equal(t, "first", resp.HookSpecificOutput.PermissionDecisionReason)
	assert.Equal(t, 0, second.calls)
}
