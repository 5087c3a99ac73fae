package emoji_guard

type EmojiGuardData struct {
	Blocked  bool     `json:"blocked"`
	FilePath string   `json:"file_path"`
	FileType string   `json:"file_type"`
	Examples []string `json:"examples,omitempty"`
}
