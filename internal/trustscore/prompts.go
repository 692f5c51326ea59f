package trustscore

import (
	"fmt"
	"strings"

	"github.com/gtj-aero/trustscore-cli/internal/model"
)

// Prompt builders for the optional narrative layer. Prompts carry only
// already-computed numbers; the narrative service never influences them.

func fleetPrompt(data model.FleetScoreInput, orf, fsf float64, csf int, score float64) string {
	var b strings.Builder
	b.WriteString("You are an aviation safety analyst. Provide a clear, professional explanation of why this operator received their Fleet Score.\n\n")
	fmt.Fprintf(&b, "Operator: %s\n", data.OperatorName)
	fmt.Fprintf(&b, "Operator Age: %.1f years\n", data.OperatorAgeYears)
	fmt.Fprintf(&b, "Fleet Size: %d aircraft\n", data.FleetSize)
	fmt.Fprintf(&b, "Fleet Score: %.2f/100\n\n", score)
	b.WriteString("Components:\n")
	fmt.Fprintf(&b, "- Operational Risk (ORF): %.2f - Events across fleet with time decay\n", orf)
	fmt.Fprintf(&b, "- Financial Score (FSF): %.2f - Based on UCC filings and bankruptcy history\n", fsf)
	fmt.Fprintf(&b, "- Certification Score (CSF): %d - ARGUS: %s, WYVERN: %s\n\n", csf, orNone(data.ArgusRating), orNone(data.WyvernRating))
	fmt.Fprintf(&b, "Fleet Events: %d total\n", len(data.FleetEvents))
	fmt.Fprintf(&b, "UCC Filings: %d total\n", len(data.UCCFilings))
	fmt.Fprintf(&b, "Bankruptcy History: %s\n\n", yesNone(len(data.BankruptcyHistory) > 0))
	b.WriteString("Provide a 2-3 sentence explanation of:\n")
	b.WriteString("1. What are the main factors affecting this score?\n")
	b.WriteString("2. Are there any concerning patterns or positive indicators?\n")
	b.WriteString("3. What does this score mean for operator reliability?\n\n")
	b.WriteString("Keep it concise and focused on actionable insights.")
	return b.String()
}

func tailPrompt(data model.TailScoreInput, mrt float64, ost int, iht, score float64) string {
	var b strings.Builder
	b.WriteString("You are an aviation safety analyst. Provide a clear, professional explanation of why this aircraft received its Tail Score.\n\n")
	fmt.Fprintf(&b, "Aircraft Age: %.1f years\n", data.AircraftAgeYears)
	fmt.Fprintf(&b, "Operator: %s\n", data.OperatorName)
	fmt.Fprintf(&b, "Registered Owner: %s\n", data.RegisteredOwner)
	fmt.Fprintf(&b, "Tail Score: %.2f/100\n\n", score)
	b.WriteString("Components:\n")
	fmt.Fprintf(&b, "- Maintenance Risk (MRT): %.2f - Based on aircraft age (ideal: 2-5 years)\n", mrt)
	fmt.Fprintf(&b, "- Ownership Status (OST): %d - %s\n", ost, ownershipDescription(ost))
	fmt.Fprintf(&b, "- Incident History (IHT): %.2f - Tail-specific incidents\n\n", iht)
	fmt.Fprintf(&b, "Tail Events: %d incident(s) found\n\n", len(data.TailEvents))
	b.WriteString("Provide a 2-3 sentence explanation of:\n")
	b.WriteString("1. What are the main factors affecting this score?\n")
	b.WriteString("2. Is the aircraft age appropriate, and how does ownership impact the score?\n")
	b.WriteString("3. What does this score indicate about this specific aircraft's reliability?\n\n")
	b.WriteString("Keep it concise and focused on actionable insights.")
	return b.String()
}

func overallPrompt(fleet model.FleetScoreInput, tail model.TailScoreInput, res *model.ScoreResult) string {
	var b strings.Builder
	b.WriteString("You are an aviation safety analyst providing executive summary insights for a TrustScore assessment.\n\n")
	b.WriteString("OVERALL RESULTS:\n")
	fmt.Fprintf(&b, "TrustScore: %.2f/100 (%s)\n", res.TrustScore, res.ScoreTier)
	fmt.Fprintf(&b, "Raw Score: %.2f/100\n", res.RawCombinedScore)
	fmt.Fprintf(&b, "Confidence Score: %.4f (based on %.1f years in business)\n\n", res.ConfidenceScore, fleet.OperatorAgeYears)
	fmt.Fprintf(&b, "Fleet Score: %.2f/100\n", res.FleetScore)
	fmt.Fprintf(&b, "Tail Score: %.2f/100\n\n", res.TailScore)
	b.WriteString("OPERATOR PROFILE:\n")
	fmt.Fprintf(&b, "- Name: %s\n", fleet.OperatorName)
	fmt.Fprintf(&b, "- Age: %.1f years\n", fleet.OperatorAgeYears)
	fmt.Fprintf(&b, "- Fleet Size: %d aircraft\n", fleet.FleetSize)
	fmt.Fprintf(&b, "- Certifications: ARGUS %s, WYVERN %s\n\n", orNone(fleet.ArgusRating), orNone(fleet.WyvernRating))
	b.WriteString("RISK INDICATORS:\n")
	fmt.Fprintf(&b, "- Fleet Events: %d\n", len(fleet.FleetEvents))
	fmt.Fprintf(&b, "- UCC Filings: %d\n", len(fleet.UCCFilings))
	fmt.Fprintf(&b, "- Tail-Specific Events: %d\n", len(tail.TailEvents))
	fmt.Fprintf(&b, "- Aircraft Age: %.1f years\n\n", tail.AircraftAgeYears)
	b.WriteString("Provide a professional executive summary (4-6 sentences) covering:\n")
	b.WriteString("1. Overall assessment: Is this operator trustworthy? What's the confidence level?\n")
	b.WriteString("2. Key strengths and weaknesses identified in the scoring\n")
	b.WriteString("3. Primary risk factors that charter brokers should be aware of\n")
	b.WriteString("4. Recommendation: Would you recommend this operator for charter bookings? Under what conditions?\n\n")
	b.WriteString("Be direct, professional, and focus on actionable business intelligence.")
	return b.String()
}

func yesNone(v bool) string {
	if v {
		return "Yes"
	}
	return "None"
}
