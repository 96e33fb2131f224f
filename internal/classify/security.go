package classify

import (
	"context"

	"github.com/murmur/sentinel/internal/category"
)

// The terrorism/security group. Every category here is immediate severity.
var (
	terrorRecruitmentPhrases = []string{
		"join the jihad", "fight for the caliphate", "martyrdom operation",
		"join isis", "become a martyr", "holy war is coming",
		"serve the islamic state",
	}

	incitementPhrases = []string{
		"bomb the", "blow up the", "shoot up the", "burn down the",
		"attack the infidels", "death to all", "kill them all",
		"make them pay in blood",
	}

	traffickingPhrases = []string{
		"selling guns", "guns for sale", "buy a gun no background",
		"no background check", "untraceable firearm", "ghost gun",
		"grenades for sale", "ak-47 for sale", "explosives for sale",
		"serial numbers filed",
	}

	coordinationPhrases = []string{
		"coordinate our attack", "coordinate the attack", "synchronized attack",
		"we strike at", "everyone bring weapons", "rally point at",
		"when the signal comes we move",
	}
)

// SecurityDetector covers terrorism recruitment, violent incitement,
// weapon trafficking, and coordinated-harm planning.
type SecurityDetector struct{}

func NewSecurityDetector() *SecurityDetector { return &SecurityDetector{} }

func (d *SecurityDetector) Name() string { return "security" }

func (d *SecurityDetector) Detect(_ context.Context, msg Message) ([]category.Category, error) {
	var cats []category.Category

	if _, ok := containsAnyPhrase(msg.Text, terrorRecruitmentPhrases); ok {
		cats = append(cats, category.Terrorism)
	}
	if _, ok := containsAnyPhrase(msg.Text, incitementPhrases); ok {
		cats = append(cats, category.ViolenceIncitement)
	}
	if _, ok := containsAnyPhrase(msg.Text, traffickingPhrases); ok {
		cats = append(cats, category.WeaponTrafficking)
	}
	if _, ok := containsAnyPhrase(msg.Text, coordinationPhrases); ok {
		cats = append(cats, category.CoordinatedHarm)
	}
	return cats, nil
}
