package classify

import (
	"context"
	"regexp"

	"github.com/murmur/sentinel/internal/category"
)

// urlPattern matches http/https URLs, www. URLs, and common TLD patterns.
// The bare-domain variant requires a trailing "/" to avoid false positives
// on version strings like "v2.0" or decimal numbers like "3.14".
var urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+|\S+\.(com|net|org|io|co|xyz|info|biz|ru|cn|tk|ml|ga|cf)/\S*)`)

// Lure vocabulary, grouped by the sub-classification it selects. The three
// outputs are mutually exclusive: credential phishing outranks financial
// scams, which outrank plain advertising.
var (
	phishingPhrases = []string{
		"verify your account", "confirm your password", "account suspended",
		"account has been suspended", "login to claim", "click here to login",
		"unusual activity on your account", "reset your password here",
	}

	scamPhrases = []string{
		"wire transfer", "western union", "double your money", "guaranteed returns",
		"crypto giveaway", "send me a gift card", "gift card codes",
		"investment opportunity", "claim your prize", "you have won",
		"processing fee", "inheritance",
	}

	spamPhrases = []string{
		"buy now", "limited time offer", "discount code", "promo code",
		"subscribe to my", "check out my channel", "follow my page",
		"dm me to order", "free shipping",
	}
)

// ScamDetector classifies solicitation, URL, and financial-lure patterns
// into exactly one of Phishing, Scam, or SpamAds.
type ScamDetector struct{}

func NewScamDetector() *ScamDetector { return &ScamDetector{} }

func (d *ScamDetector) Name() string { return "scam" }

func (d *ScamDetector) Detect(_ context.Context, msg Message) ([]category.Category, error) {
	hasURL := urlPattern.MatchString(msg.Text)

	if _, ok := containsAnyPhrase(msg.Text, phishingPhrases); ok {
		return []category.Category{category.Phishing}, nil
	}
	if _, ok := containsAnyPhrase(msg.Text, scamPhrases); ok {
		return []category.Category{category.Scam}, nil
	}
	if _, ok := containsAnyPhrase(msg.Text, spamPhrases); ok {
		return []category.Category{category.SpamAds}, nil
	}
	// A bare link with no lure reads as advertising.
	if hasURL {
		return []category.Category{category.SpamAds}, nil
	}
	return nil, nil
}
