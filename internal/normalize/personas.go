// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package normalize

import (
	"strings"

	"github.com/pdiddy/account-intel/pkg/types"
)

// genericAngles are the fallback messaging angles used when the synthesis
// stage omits a persona. "%s" is replaced by the company name.
var genericAngles = map[types.PersonaKey]types.PersonaAngle{
	types.PersonaCFOFinance: {
		Hook:            "Margin improvement at %s without adding headcount",
		SupportingPoint: "Pricing is typically the largest single lever on operating margin.",
		Question:        "How much margin leakage are you seeing between list and realized price?",
	},
	types.PersonaPricingRGM: {
		Hook:            "Faster, better-governed price decisions at %s",
		SupportingPoint: "Pricing teams spend most of their time assembling data rather than acting on it.",
		Question:        "How long does it take to approve and publish a price change today?",
	},
	types.PersonaSalesCommercial: {
		Hook:            "Confident, defensible quotes for every seller at %s",
		SupportingPoint: "Discount guidance at the point of quote reduces deal-by-deal erosion.",
		Question:        "How do reps decide how much discount to offer on a given deal?",
	},
	types.PersonaCEOGM: {
		Hook:            "Turning pricing into a growth lever for %s",
		SupportingPoint: "Disciplined pricing compounds into revenue and valuation gains.",
		Question:        "Where does pricing sit among your priorities for the next twelve months?",
	},
	types.PersonaTechnologyAnalytics: {
		Hook:            "One view of pricing data at %s, from ERP to CRM",
		SupportingPoint: "Unified transaction data is the foundation for any pricing analytics program.",
		Question:        "Where does pricing and transaction data live today, and who owns it?",
	},
}

// genericAngle returns the fallback angle for key, naming company when known.
func genericAngle(key types.PersonaKey, company string) types.PersonaAngle {
	a := genericAngles[key]
	name := company
	if name == "" {
		name = "the company"
	}
	a.Hook = strings.Replace(a.Hook, "%s", name, 1)
	return a
}
