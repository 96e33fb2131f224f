// Package category defines the closed set of safety categories a message can
// be flagged with, together with each category's static severity. The string
// identifiers are part of the persisted profile layout and must never be
// renamed or reused.
package category

import "time"

// Category identifies one safety category. The value is the stable
// snake_case identifier used in persisted documents and queue payloads.
type Category string

const (
	AdultContent       Category = "adult_content"
	Toxicity           Category = "toxicity"
	Harassment         Category = "harassment"
	Bullying           Category = "bullying"
	Hate               Category = "hate"
	ViolentThreat      Category = "violent_threat"
	GraphicContent     Category = "graphic_content"
	Scam               Category = "scam"
	SpamAds            Category = "spam_ads"
	Phishing           Category = "phishing"
	Doxxing            Category = "doxxing"
	PiiShare           Category = "pii_share"
	SelfHarm           Category = "self_harm"
	Extremism          Category = "extremism"
	ChildExploitation  Category = "child_exploitation"
	ChildGrooming      Category = "child_grooming"
	UnderageContent    Category = "underage_content"
	ChildEndangerment  Category = "child_endangerment"
	Terrorism          Category = "terrorism"
	ViolenceIncitement Category = "violence_incitement"
	WeaponTrafficking  Category = "weapon_trafficking"
	CoordinatedHarm    Category = "coordinated_harm"
)

// Severity controls how the risk ledger reacts to a hit. Immediate
// categories force review on the very first hit; Standard categories only
// flag a user once their rolling 30-day total crosses the operator threshold.
type Severity int

const (
	Standard Severity = iota
	Immediate
)

// immediate holds the categories whose first hit escalates unconditionally:
// the child-safety group and the terrorism/security group.
var immediate = map[Category]bool{
	ChildExploitation:  true,
	ChildGrooming:      true,
	UnderageContent:    true,
	ChildEndangerment:  true,
	Terrorism:          true,
	ViolenceIncitement: true,
	WeaponTrafficking:  true,
	CoordinatedHarm:    true,
}

// all lists every category in declaration order.
var all = []Category{
	AdultContent, Toxicity, Harassment, Bullying, Hate, ViolentThreat,
	GraphicContent, Scam, SpamAds, Phishing, Doxxing, PiiShare, SelfHarm,
	Extremism, ChildExploitation, ChildGrooming, UnderageContent,
	ChildEndangerment, Terrorism, ViolenceIncitement, WeaponTrafficking,
	CoordinatedHarm,
}

// All returns every known category. The returned slice is a copy.
func All() []Category {
	out := make([]Category, len(all))
	copy(out, all)
	return out
}

// Valid reports whether c is one of the known categories.
func (c Category) Valid() bool {
	for _, k := range all {
		if c == k {
			return true
		}
	}
	return false
}

// Severity returns the static severity of the category.
func (c Category) Severity() Severity {
	if immediate[c] {
		return Immediate
	}
	return Standard
}

func (s Severity) String() string {
	if s == Immediate {
		return "immediate"
	}
	return "standard"
}

// Hit records that a category was detected in a message at a point in time.
// Hits are immutable once created.
type Hit struct {
	Category   Category  `json:"category"`
	OccurredAt time.Time `json:"occurred_at"`
}
