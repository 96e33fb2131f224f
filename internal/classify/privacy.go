package classify

import (
	"context"
	"regexp"

	"github.com/murmur/sentinel/internal/category"
)

var (
	// phonePattern matches common phone number formats such as
	// +1-555-123-4567, (555) 123-4567, 555.123.4567. The leading boundary
	// keeps digit runs inside normal words or short numbers like "100"
	// from matching; the trailing boundary admits sentence punctuation so
	// "call me at 555-123-4567." still counts.
	phonePattern = regexp.MustCompile(`(?:^|\s)(\+?\d{1,3}[-.\s]?)?\(?\d{2,4}\)?[-.\s]?\d{3,4}[-.\s]?\d{3,4}(?:[\s.,!?;:]|$)`)

	// addressPattern matches street-address shapes: a house number
	// followed by a name and a street suffix.
	addressPattern = regexp.MustCompile(`(?i)\b\d{1,5}\s+\w+(\s+\w+)?\s+(street|st|avenue|ave|road|rd|lane|ln|drive|dr|boulevard|blvd|court|ct)\b`)

	// handleSolicitation matches asking for a third party's social handle
	// or number ("what's her insta", "give me his number").
	handleSolicitation = regexp.MustCompile(`(?i)\b(what'?s|whats|give\s+me|send\s+me|drop)\s+(her|his|their)\s+(number|address|insta|instagram|snap|snapchat|handle|socials?)\b`)

	// doxxingPattern matches find/expose-this-person phrasing.
	doxxingPattern = regexp.MustCompile(`(?i)\b(dox+\b|dox+ing|(find|track\s+down|expose|leak|post)\s+(him|her|them|this\s+person|where\s+(he|she|they)\s+lives?)|(leak|post|share)\s+(his|her|their)\s+(address|info|details))`)
)

// PrivacyDetector flags PII sharing (addresses, phone-like sequences,
// soliciting a third party's handles) and doxxing phrasing. The two
// categories are independent; one message can trigger both.
type PrivacyDetector struct{}

func NewPrivacyDetector() *PrivacyDetector { return &PrivacyDetector{} }

func (d *PrivacyDetector) Name() string { return "privacy" }

func (d *PrivacyDetector) Detect(_ context.Context, msg Message) ([]category.Category, error) {
	var cats []category.Category

	if phonePattern.MatchString(msg.Text) ||
		addressPattern.MatchString(msg.Text) ||
		handleSolicitation.MatchString(msg.Text) {
		cats = append(cats, category.PiiShare)
	}
	if doxxingPattern.MatchString(msg.Text) {
		cats = append(cats, category.Doxxing)
	}
	return cats, nil
}
