// Package fastfilter implements the synchronous rule-based check that gates
// every outbound message. It is a pure function of the message text, the
// message's position in the conversation, and a preloaded lexicon: no
// network, no storage, a single linear scan over the text.
package fastfilter

// Decision is the filter's verdict. The values are mutually exclusive and
// total: every input maps to exactly one.
type Decision int

const (
	Allow Decision = iota
	BlockFirstMessageProfanity
	BlockBrandViolation
)

func (d Decision) String() string {
	switch d {
	case BlockFirstMessageProfanity:
		return "block_first_message_profanity"
	case BlockBrandViolation:
		return "block_brand_violation"
	default:
		return "allow"
	}
}

// Blocked reports whether the decision stops delivery.
func (d Decision) Blocked() bool {
	return d != Allow
}

// Score deltas applied to the sender's moderation score on a block.
const (
	brandViolationDelta        = 101
	firstMessageProfanityDelta = 10
)

// Verdict is the full result of one evaluation.
type Verdict struct {
	Decision              Decision
	ScoreDelta            int
	RouteToSeparateFolder bool
}

// Filter evaluates message text against the loaded lexicon. A Filter is
// immutable after construction and safe for concurrent use.
type Filter struct {
	lex *Lexicon
}

// New returns a filter using the built-in lexicon.
func New() *Filter {
	return NewWithLexicon(DefaultLexicon())
}

// NewWithLexicon returns a filter using the given lexicon. Tests use this
// to isolate individual rule sets.
func NewWithLexicon(lex *Lexicon) *Filter {
	return &Filter{lex: lex}
}

// LexiconVersion returns the version string of the loaded lexicon.
func (f *Filter) LexiconVersion() string {
	return f.lex.Version
}

// Evaluate applies the decision policy in fixed priority order:
//
//  1. A brand violation blocks on any message, routes the conversation to
//     the separate folder, and costs 101 points.
//  2. Profanity (plain or numeral-substituted) blocks only the first
//     message of a conversation and costs 10 points.
//  3. Everything else is allowed.
//
// Brand violations are always enforced; casual profanity only gates
// conversations that have not been established yet.
func (f *Filter) Evaluate(text string, firstMessage bool) Verdict {
	if f.lex.HasBrandViolation(text) {
		return Verdict{
			Decision:              BlockBrandViolation,
			ScoreDelta:            brandViolationDelta,
			RouteToSeparateFolder: true,
		}
	}

	if firstMessage {
		plain, variant := f.lex.HasProfanity(text)
		if plain || variant {
			return Verdict{
				Decision:   BlockFirstMessageProfanity,
				ScoreDelta: firstMessageProfanityDelta,
			}
		}
	}

	return Verdict{Decision: Allow}
}
