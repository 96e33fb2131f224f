package gate

import (
	"fmt"
	"unicode/utf8"
)

const (
	MaxMessageBytes = 4096 // 4KB max payload
	MaxTextChars    = 2000 // max character count
)

// validateRequest rejects malformed submissions before any evaluation.
// A rejected request mutates nothing: no score change, no counters.
func validateRequest(req Request) error {
	if req.UserID == "" {
		return fmt.Errorf("user id is empty")
	}
	if req.ConversationID == "" {
		return fmt.Errorf("conversation id is empty")
	}
	if len(req.Text) == 0 {
		return fmt.Errorf("message text is empty")
	}
	if len(req.Text) > MaxMessageBytes {
		return fmt.Errorf("message exceeds %d byte limit", MaxMessageBytes)
	}
	if utf8.RuneCountInString(req.Text) > MaxTextChars {
		return fmt.Errorf("message exceeds %d character limit", MaxTextChars)
	}
	if !utf8.ValidString(req.Text) {
		return fmt.Errorf("message contains invalid UTF-8")
	}
	return nil
}
