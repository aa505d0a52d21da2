// Package earnings splits affiliate commissions between guides and the
// platform.
package earnings

import (
	"fmt"
	"math"
	"strings"
)

// Tier is a guide's monetization level.
type Tier string

const (
	TierStandard   Tier = "standard"
	TierCurator    Tier = "curator"
	TierInfluencer Tier = "influencer"
	TierCelebrity  Tier = "celebrity"
)

// guidePercentages is the guide's cut per tier; the platform keeps the rest.
var guidePercentages = map[Tier]int{
	TierStandard:   50,
	TierCurator:    60,
	TierInfluencer: 70,
	TierCelebrity:  75,
}

var tierOrder = []Tier{TierStandard, TierCurator, TierInfluencer, TierCelebrity}

// Split is the result of dividing one commission.
type Split struct {
	GuideShare         float64 `json:"guide_share"`
	PlatformShare      float64 `json:"platform_share"`
	GuidePercentage    int     `json:"guide_percentage"`
	PlatformPercentage int     `json:"platform_percentage"`
}

// TierInfo describes a tier for display.
type TierInfo struct {
	Tier               Tier   `json:"tier"`
	Label              string `json:"label"`
	GuidePercentage    int    `json:"guide_percentage"`
	PlatformPercentage int    `json:"platform_percentage"`
}

// ParseTier maps s onto a known tier.
func ParseTier(s string) (Tier, bool) {
	t := Tier(strings.ToLower(strings.TrimSpace(s)))
	_, ok := guidePercentages[t]
	return t, ok
}

// GuidePercentage returns the guide's percentage for t. Unknown tiers get
// the standard split.
func GuidePercentage(t Tier) int {
	if p, ok := guidePercentages[t]; ok {
		return p
	}
	return guidePercentages[TierStandard]
}

// CalculateGuideSplit divides commission according to tier. Both shares are
// rounded to cents and always add up to the rounded commission.
func CalculateGuideSplit(tier Tier, commission float64) Split {
	guidePct := GuidePercentage(tier)
	total := round2(commission)
	guide := round2(total * float64(guidePct) / 100)

	return Split{
		GuideShare:         guide,
		PlatformShare:      round2(total - guide),
		GuidePercentage:    guidePct,
		PlatformPercentage: 100 - guidePct,
	}
}

// Tiers lists every tier from lowest to highest.
func Tiers() []TierInfo {
	out := make([]TierInfo, 0, len(tierOrder))
	for _, t := range tierOrder {
		p := guidePercentages[t]
		out = append(out, TierInfo{
			Tier:               t,
			Label:              strings.ToUpper(string(t[:1])) + string(t[1:]),
			GuidePercentage:    p,
			PlatformPercentage: 100 - p,
		})
	}
	return out
}

// FormatCurrency renders amount as US dollars, e.g. $1,234.56.
func FormatCurrency(amount float64) string {
	sign := ""
	if amount < 0 {
		sign = "-"
		amount = -amount
	}

	cents := int64(math.Round(amount * 100))
	whole := cents / 100
	frac := cents % 100

	digits := fmt.Sprintf("%d", whole)
	var b strings.Builder
	for i, c := range digits {
		if i > 0 && (len(digits)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(c)
	}

	return fmt.Sprintf("%s$%s.%02d", sign, b.String(), frac)
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
