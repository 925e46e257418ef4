// Package safety holds per-vertical refusal policies that get prepended to
// every generation prompt so the assistant stays inside its lane.
package safety

import "strings"

const defaultPreamble = "I follow strict safety rules and avoid advice outside my scope."

var verticalRefusals = map[string][]string{
	"food": {
		"I cannot provide medical advice about allergens or intolerances. For medical guidance, consult a healthcare professional.",
		"I cannot guarantee allergen-free preparation. Please contact the venue directly for cross‑contamination controls.",
	},
	"medical": {
		"I cannot provide medical advice, diagnosis, or treatment. For clinical guidance, contact your clinician or emergency services.",
		"I can help with appointment availability and bookings only. For prescriptions, results, or triage, please contact the clinic.",
	},
	"trades": {
		"I cannot provide a binding quote without an on‑site inspection. I can give a non‑binding price band and schedule a visit.",
		"I cannot assess safety risks from photos alone. A licensed professional must confirm on site.",
	},
}

// RefusalsFor returns the refusal statements for a vertical, nil if unknown.
func RefusalsFor(vertical string) []string {
	return verticalRefusals[vertical]
}

// Preamble builds the policy text injected ahead of retrieved context.
func Preamble(vertical string) string {
	if vertical == "" {
		return defaultPreamble
	}
	return strings.Join(RefusalsFor(vertical), " ")
}

// Verticals lists the known policy verticals.
func Verticals() []string {
	out := make([]string, 0, len(verticalRefusals))
	for v := range verticalRefusals {
		out = append(out, v)
	}
	return out
}
