package types

// HookEvent represents the lifecycle event a hook runs on
type HookEvent string

const (
	PreToolUse  HookEvent = "PreToolUse"
	PostToolUse HookEvent = "PostToolUse"
	Stop        HookEvent = "Stop"
)

// Tool names of the file-modification tools the hook inspects
const (
	ToolWrite     = "Write"
	ToolEdit      = "Edit"
	ToolMultiEdit = "MultiEdit"
)

// HookRequest is the payload Claude Code delivers on stdin for a tool call.
// ToolInput is tool-specific and left untyped here; guards decode the fields
// they care about.
type HookRequest struct {
	SessionID string                 `json:"session_id,omitempty"`
	ToolName  string                 `json:"tool_name"`
	ToolInput map[string]interface{} `json:"tool_input"`
}

// PermissionDecision is the verdict a hook can return for a tool call
type PermissionDecision string

const (
	DecisionAllow PermissionDecision = "allow"
	DecisionDeny  PermissionDecision = "deny"
	DecisionAsk   PermissionDecision = "ask"
)

type HookSpecificOutput struct {
	HookEventName            string             `json:"hookEventName"`
	PermissionDecision       PermissionDecision `json:"permissionDecision"`
	PermissionDecisionReason string             `json:"permissionDecisionReason"`
}

// HookResponse is written to stdout when a guard blocks the operation.
// An allowed operation produces no response at all.
type HookResponse struct {
	HookSpecificOutput HookSpecificOutput `json:"hookSpecificOutput"`
}
