package emoji_guard

import (
	"context"
	"fmt"
	"path/filepath"
	"regexp"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/sirupsen/logrus"

	"github.com/Pipboyguy/claude-code-hooks/pkg/guardiface"
	"github.com/Pipboyguy/claude-code-hooks/pkg/types"
)

const (
	GuardName = "emoji_guard"

	defaultMaxExamples = 3
)

// Single code points that render as colorful pictographs. In source text
// they usually appear with a trailing variation selector; matching on the
// base code point alone catches both forms. Their monochrome lookalikes
// (✓ × → •) are different code points and never match.
var colorfulSymbols = map[rune]struct{}{
	'✅': {}, // green check mark
	'❌': {}, // cross mark
	'⭐': {}, // star
	'❤': {}, // red heart
	'✨': {}, // sparkles
	'✳': {}, // eight-spoked asterisk
	'✴': {}, // eight-pointed star
	'❇': {}, // sparkle
	'❗': {}, // exclamation mark
	'❓': {}, // question mark
	'❕': {}, // white exclamation mark
	'➕': {}, // plus sign
	'➖': {}, // minus sign
	'➗': {}, // division sign
}

var colorfulEmojiPattern = regexp.MustCompile(`[` +
	`\x{1F600}-\x{1F64F}` + // emoticons
	`\x{1F680}-\x{1F6FF}` + // transport and map symbols
	`\x{1F300}-\x{1F5FF}` + // miscellaneous symbols and pictographs
	`\x{1F900}-\x{1F9FF}` + // supplemental symbols
	`\x{1F1E0}-\x{1F1FF}` + // regional indicators (flag components)
	`]+`)

var monitoredExtensions = map[string]struct{}{
	".py":  {},
	".md":  {},
	".mdx": {},
}

const denyReasonFormat = "❌ Colorful emojis detected in %s file '%s': %s\n\n" +
	"Python and Markdown files should not contain colorful emojis for professional code standards. " +
	"Simple symbols like ✓ × → • are allowed. Please remove the colorful emojis and try again."

type Config struct {
	MaxExamples int `mapstructure:"max_examples"`
}

type EmojiGuard struct {
	logger *logrus.Logger
}

func NewEmojiGuard(logger *logrus.Logger) guardiface.Guard {
	return &EmojiGuard{
		logger: logger,
	}
}

func (g *EmojiGuard) Name() string {
	return GuardName
}

func (g *EmojiGuard) AllowedEvents() []types.HookEvent {
	return []types.HookEvent{types.PreToolUse}
}

func (g *EmojiGuard) ValidateConfig(config types.GuardConfig) error {
	var cfg Config
	if err := mapstructure.Decode(config.Settings, &cfg); err != nil {
		return fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.MaxExamples < 0 {
		return fmt.Errorf("max_examples cannot be negative: %d", cfg.MaxExamples)
	}
	return nil
}

func (g *EmojiGuard) Execute(
	_ context.Context,
	guardConfig types.GuardConfig,
	req *types.HookRequest,
) (*types.GuardResponse, error) {
	var cfg Config
	if err := mapstructure.Decode(guardConfig.Settings, &cfg); err != nil {
		g.logger.WithError(err).Error("failed to decode config")
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	if cfg.MaxExamples <= 0 {
		cfg.MaxExamples = defaultMaxExamples
	}

	switch req.ToolName {
	case types.ToolWrite, types.ToolEdit, types.ToolMultiEdit:
	default:
		return &types.GuardResponse{Message: "tool not monitored"}, nil
	}

	filePath := targetPath(req.ToolInput)
	if !isMonitoredFile(filePath) {
		return &types.GuardResponse{Message: "file type not monitored"}, nil
	}

	content := extractContent(req.ToolName, req.ToolInput)
	if !hasColorfulEmoji(content) {
		return &types.GuardResponse{
			Message: "no colorful emojis found",
			Metadata: map[string]interface{}{
				GuardName: EmojiGuardData{Blocked: false, FilePath: filePath},
			},
		}, nil
	}

	examples := emojiExamples(content, cfg.MaxExamples)
	examplesStr := "detected"
	if len(examples) > 0 {
		examplesStr = strings.Join(examples, " ")
	}

	fileType := "Markdown"
	if strings.HasSuffix(strings.ToLower(filePath), ".py") {
		fileType = "Python"
	}

	g.logger.WithFields(logrus.Fields{
		"tool": req.ToolName,
		GuardName: EmojiGuardData{
			Blocked:  true,
			FilePath: filePath,
			FileType: fileType,
			Examples: examples,
		},
	}).Warn("colorful emojis detected")

	return nil, &types.GuardError{
		Decision: types.DecisionDeny,
		Reason:   fmt.Sprintf(denyReasonFormat, fileType, filePath, examplesStr),
		Err:      fmt.Errorf("colorful emojis detected in %s", filePath),
	}
}

// hasColorfulEmoji reports whether text contains a disallowed character.
// The explicit symbol set is checked first and short-circuits; the range
// pattern covers everything else.
func hasColorfulEmoji(text string) bool {
	if text == "" {
		return false
	}
	for _, r := range text {
		if _, ok := colorfulSymbols[r]; ok {
			return true
		}
	}
	return colorfulEmojiPattern.MatchString(text)
}

// emojiExamples collects up to maxExamples distinct offending characters for
// the denial message. The symbol-set pass runs to completion before the
// range pass starts, so set hits are always listed first regardless of where
// they sit in the text.
func emojiExamples(text string, maxExamples int) []string {
	var examples []string
	seen := make(map[rune]struct{})

	for _, r := range text {
		if _, ok := colorfulSymbols[r]; !ok {
			continue
		}
		if _, dup := seen[r]; dup {
			continue
		}
		seen[r] = struct{}{}
		examples = append(examples, string(r))
		if len(examples) >= maxExamples {
			return examples
		}
	}

	for _, match := range colorfulEmojiPattern.FindAllString(text, -1) {
		for _, r := range match {
			if _, dup := seen[r]; dup {
				continue
			}
			seen[r] = struct{}{}
			examples = append(examples, string(r))
			if len(examples) >= maxExamples {
				return examples
			}
		}
	}

	return examples
}

func isMonitoredFile(path string) bool {
	if path == "" {
		return false
	}
	_, ok := monitoredExtensions[strings.ToLower(filepath.Ext(path))]
	return ok
}

type writeInput struct {
	Content string `mapstructure:"content"`
}

type editInput struct {
	NewString string `mapstructure:"new_string"`
}

type multiEditInput struct {
	Edits []editInput `mapstructure:"edits"`
}

// extractContent yields the text a tool call would write. Missing or
// malformed fields degrade to an empty string, which never blocks.
func extractContent(toolName string, toolInput map[string]interface{}) string {
	switch toolName {
	case types.ToolWrite:
		var in writeInput
		if err := mapstructure.Decode(toolInput, &in); err != nil {
			return ""
		}
		return in.Content
	case types.ToolEdit:
		var in editInput
		if err := mapstructure.Decode(toolInput, &in); err != nil {
			return ""
		}
		return in.NewString
	case types.ToolMultiEdit:
		var in multiEditInput
		if err := mapstructure.Decode(toolInput, &in); err != nil {
			return ""
		}
		parts := make([]string, 0, len(in.Edits))
		for _, edit := range in.Edits {
			if edit.NewString != "" {
				parts = append(parts, edit.NewString)
			}
		}
		return strings.Join(parts, " ")
	}
	return ""
}

func targetPath(toolInput map[string]interface{}) string {
	path, _ := toolInput["file_path"].(string)
	return path
}
