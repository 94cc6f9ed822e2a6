// Package plan provides the checkout plan catalog and quota tiers.
package plan

import "sort"

// Tier is the quota tier a subscription is sold under.
// It is resolved once from the provider's plan nickname.
type Tier int

const (
	TierUnknown Tier = iota
	TierBasic
	TierPro
	TierProfessional
)

// Nicknames as configured on the provider's prices. Matching is exact.
const (
	NicknameBasic        = "Basic"
	NicknamePro          = "Pro"
	NicknameProfessional = "Professional"
)

// ParseTier maps a plan nickname to its tier.
// Anything other than an exact known nickname is TierUnknown.
func ParseTier(nickname string) Tier {
	switch nickname {
	case NicknameBasic:
		return TierBasic
	case NicknamePro:
		return TierPro
	case NicknameProfessional:
		return TierProfessional
	default:
		return TierUnknown
	}
}

// Quota returns the software-call limit granted by the tier.
func (t Tier) Quota() int64 {
	switch t {
	case TierBasic:
		return 10000
	case TierPro:
		return 50000
	case TierProfessional:
		return 250000
	default:
		return 0
	}
}

func (t Tier) String() string {
	switch t {
	case TierBasic:
		return NicknameBasic
	case TierPro:
		return NicknamePro
	case TierProfessional:
		return NicknameProfessional
	default:
		return "Unknown"
	}
}

// Plan is a purchasable plan (immutable value type).
type Plan struct {
	ID      string // public plan id used by /subscribe
	PriceID string // provider price id
}

// DefaultPlans returns the plans sold when none are configured.
func DefaultPlans() []Plan {
	return []Plan{
		{ID: "prod1_basic", PriceID: "price_1QbWMxG8ztKaoxw1xzE9ziiE"},
		{ID: "prod1_pro", PriceID: "price_1QbWNMG8ztKaoxw1vQpSMZqY"},
		{ID: "prod1_professional", PriceID: "price_1QbWNmG8ztKaoxw1Z19xCzdH"},
		{ID: "prod2_basic", PriceID: "price_1QboJ3G8ztKaoxw1mNpNfjCe"},
		{ID: "prod2_pro", PriceID: "price_1QboJ3G8ztKaoxw1bbYC0GuI"},
		{ID: "prod2_professional", PriceID: "price_1QboJ3G8ztKaoxw15oEULSBc"},
	}
}

// Catalog resolves public plan ids to provider prices.
// A Catalog is read-only after construction and safe for concurrent use.
type Catalog struct {
	plans map[string]Plan
}

// NewCatalog builds a catalog. Later entries win on duplicate ids.
func NewCatalog(plans []Plan) *Catalog {
	m := make(map[string]Plan, len(plans))
	for _, p := range plans {
		m[p.ID] = p
	}
	return &Catalog{plans: m}
}

// Lookup returns the plan with the given id.
func (c *Catalog) Lookup(id string) (Plan, bool) {
	p, ok := c.plans[id]
	return p, ok
}

// List returns all plans sorted by id.
func (c *Catalog) List() []Plan {
	out := make([]Plan, 0, len(c.plans))
	for _, p := range c.plans {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

// Len returns the number of plans.
func (c *Catalog) Len() int {
	return len(c.plans)
}
