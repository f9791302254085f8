// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package normalize turns the loosely typed JSON object produced by the
// synthesis stage into a complete types.IntelligenceReport. Missing sections
// and invalid enum values are replaced by conservative defaults; nothing in
// this package fails or touches the network.
package normalize

import (
	"math"
	"strconv"
	"strings"

	"github.com/pdiddy/account-intel/pkg/types"
)

// Report fills every missing or malformed part of raw with its default and
// returns the canonical report. It is total: any input, including nil,
// yields a valid report. It is idempotent: normalizing the JSON encoding of
// a normalized report returns the same report.
//
// Metadata is copied from raw when present so that re-normalizing a stored
// report keeps it; the pipeline overwrites it for fresh reports.
func Report(raw map[string]any, entityName string) types.IntelligenceReport {
	r, _ := ReportWithGaps(raw, entityName)
	return r
}

// ReportWithGaps is Report that also lists the dotted paths of the fields
// that had to be defaulted. Gaps are informational and never an error.
func ReportWithGaps(raw map[string]any, entityName string) (types.IntelligenceReport, []string) {
	n := &normalizer{entity: strings.TrimSpace(entityName)}
	report := types.IntelligenceReport{
		CompanyProfile:   n.companyProfile(raw["company_profile"]),
		RecentSignals:    n.recentSignals(raw["recent_signals"]),
		IntentSignals:    n.intentSignals(raw["intent_signals"]),
		Hypothesis:       n.hypothesis(raw["hypothesis"]),
		PersonaAngles:    n.personaAngles(raw["persona_angles"]),
		OutreachPriority: n.outreachPriority(raw["outreach_priority"]),
		ResearchGaps:     n.stringList("research_gaps", raw["research_gaps"]),
		Metadata:         metadata(raw["metadata"]),
	}
	return report, n.gaps
}

type normalizer struct {
	entity string
	gaps   []string
}

func (n *normalizer) gap(path string) {
	n.gaps = append(n.gaps, path)
}

func (n *normalizer) companyProfile(v any) types.CompanyProfile {
	m, ok := v.(map[string]any)
	if !ok {
		n.gap("company_profile")
		return types.CompanyProfile{
			ConfirmedName: n.entity,
			OwnershipType: types.OwnershipPrivate,
			Investors:     []string{},
			Citations:     []string{},
		}
	}

	p := types.CompanyProfile{
		ConfirmedName:  str(m["confirmed_name"]),
		Revenue:        optStr(m["revenue"]),
		RevenueSource:  optStr(m["revenue_source"]),
		EmployeeCount:  optStr(m["employee_count"]),
		EmployeeSource: optStr(m["employee_source"]),
		Headquarters:   optStr(m["headquarters"]),
		FoundedYear:    optInt(m["founded_year"]),
		OwnershipType:  n.ownership(m["ownership_type"]),
		ParentCompany:  optStr(m["parent_company"]),
		Investors:      n.stringList("company_profile.investors", m["investors"]),
		Industry:       str(m["industry"]),
		SubSegment:     optStr(m["sub_segment"]),
		BusinessModel:  str(m["business_model"]),
		Citations:      n.stringList("company_profile.citations", m["citations"]),
	}
	if p.ConfirmedName == "" {
		n.gap("company_profile.confirmed_name")
		p.ConfirmedName = n.entity
	}
	return p
}

var ownershipTypes = []types.OwnershipType{
	types.OwnershipPublic,
	types.OwnershipPrivate,
	types.OwnershipSubsidiary,
	types.OwnershipPEBacked,
}

func (n *normalizer) ownership(v any) types.OwnershipType {
	key := enumKey(str(v))
	for _, o := range ownershipTypes {
		if enumKey(string(o)) == key {
			return o
		}
	}
	n.gap("company_profile.ownership_type")
	return types.OwnershipPrivate
}

var signalTypes = []types.SignalType{
	types.SignalFinancial,
	types.SignalStrategic,
	types.SignalPricing,
	types.SignalLeadership,
	types.SignalTechnology,
	types.SignalIntent,
}

func (n *normalizer) recentSignals(v any) []types.RecentSignal {
	items := n.objects("recent_signals", v)
	out := make([]types.RecentSignal, 0, len(items))
	for _, m := range items {
		s := types.RecentSignal{
			Type:       matchEnum(str(m["type"]), signalTypes, types.SignalStrategic),
			Headline:   str(m["headline"]),
			Detail:     str(m["detail"]),
			Date:       str(m["date"]),
			SourceURL:  str(m["source_url"]),
			SourceName: str(m["source_name"]),
			Relevance:  str(m["relevance"]),
		}
		if b, ok := m["is_intent_signal"].(bool); ok {
			s.IsIntentSignal = b
		} else {
			s.IsIntentSignal = s.Type == types.SignalIntent
		}
		out = append(out, s)
	}
	return out
}

var intentTypes = []types.IntentSignalType{
	types.IntentRFP,
	types.IntentVendorEvaluation,
	types.IntentTechnologyInitiative,
	types.IntentHiring,
}

var fitScores = []types.FitScore{types.FitPerfect, types.FitGood, types.FitModerate}

func (n *normalizer) intentSignals(v any) []types.IntentSignal {
	items := n.objects("intent_signals", v)
	out := make([]types.IntentSignal, 0, len(items))
	for _, m := range items {
		out = append(out, types.IntentSignal{
			SignalType:  matchEnum(str(m["signal_type"]), intentTypes, types.IntentTechnologyInitiative),
			Description: str(m["description"]),
			Timeframe:   optStr(m["timeframe"]),
			Source:      str(m["source"]),
			FitScore:    matchEnum(str(m["fit_score"]), fitScores, types.FitModerate),
		})
	}
	return out
}

var levels = []types.Level{types.LevelHigh, types.LevelMedium, types.LevelLow}

func (n *normalizer) hypothesis(v any) types.Hypothesis {
	m, ok := v.(map[string]any)
	if !ok {
		n.gap("hypothesis")
		return types.Hypothesis{SupportingEvidence: []string{}, Confidence: types.LevelLow}
	}
	return types.Hypothesis{
		PrimaryHypothesis:  str(m["primary_hypothesis"]),
		SupportingEvidence: n.stringList("hypothesis.supporting_evidence", m["supporting_evidence"]),
		Confidence:         matchEnum(str(m["confidence"]), levels, types.LevelLow),
	}
}

func (n *normalizer) personaAngles(v any) types.PersonaAngles {
	m, _ := v.(map[string]any)
	var angles types.PersonaAngles
	for _, key := range types.PersonaKeys {
		angle, _ := angles.Get(key)
		def := genericAngle(key, n.entity)

		pm, ok := m[string(key)].(map[string]any)
		if !ok {
			n.gap("persona_angles." + string(key))
			*angle = def
			continue
		}
		*angle = types.PersonaAngle{
			Hook:            orDefault(str(pm["hook"]), def.Hook),
			SupportingPoint: orDefault(str(pm["supporting_point"]), def.SupportingPoint),
			Question:        orDefault(str(pm["question"]), def.Question),
		}
	}
	return angles
}

func (n *normalizer) outreachPriority(v any) types.OutreachPriority {
	m, ok := v.(map[string]any)
	if !ok {
		n.gap("outreach_priority")
		return types.OutreachPriority{
			RecommendedPersonas: []types.PersonaKey{},
			Urgency:             types.LevelMedium,
			Cautions:            []string{},
		}
	}

	personas := []types.PersonaKey{}
	seen := make(map[string]bool)
	for _, s := range n.stringList("outreach_priority.recommended_personas", m["recommended_personas"]) {
		key := strings.ToLower(strings.TrimSpace(s))
		if !types.IsPersonaKey(key) || seen[key] {
			continue
		}
		seen[key] = true
		personas = append(personas, types.PersonaKey(key))
	}

	return types.OutreachPriority{
		RecommendedPersonas: personas,
		Urgency:             matchEnum(str(m["urgency"]), levels, types.LevelMedium),
		UrgencyReason:       str(m["urgency_reason"]),
		Cautions:            n.stringList("outreach_priority.cautions", m["cautions"]),
	}
}

// metadata decodes a previously stored metadata block. It is zero when absent.
func metadata(v any) types.ReportMetadata {
	m, ok := v.(map[string]any)
	if !ok {
		return types.ReportMetadata{}
	}
	md := types.ReportMetadata{
		RequestID:         str(m["request_id"]),
		SearchesPerformed: intOr(m["searches_performed"], 0),
		SourcesCited:      intOr(m["sources_cited"], 0),
		ExecutionTimeMS:   int64(intOr(m["execution_time_ms"], 0)),
		EstimatedCost:     num(m["estimated_cost"]),
	}
	if b, ok := m["searches_estimated"].(bool); ok {
		md.SearchesEstimated = b
	}
	if mu, ok := m["models_used"].(map[string]any); ok {
		md.ModelsUsed = types.ModelsUsed{Search: str(mu["search"]), Synthesis: str(mu["synthesis"])}
	}
	if u, ok := m["usage"].(map[string]any); ok {
		md.Usage = types.TokenUsage{
			InputTokens:  intOr(u["input_tokens"], 0),
			OutputTokens: intOr(u["output_tokens"], 0),
		}
	}
	return md
}

// objects returns the object elements of a JSON array. Non-object elements
// are skipped.
func (n *normalizer) objects(path string, v any) []map[string]any {
	arr, ok := v.([]any)
	if !ok {
		n.gap(path)
		return nil
	}
	out := make([]map[string]any, 0, len(arr))
	for _, item := range arr {
		if m, ok := item.(map[string]any); ok {
			out = append(out, m)
		}
	}
	return out
}

// stringList returns the non-empty string elements of a JSON array, never nil.
func (n *normalizer) stringList(path string, v any) []string {
	out := []string{}
	arr, ok := v.([]any)
	if !ok {
		n.gap(path)
		return out
	}
	for _, item := range arr {
		if s := str(item); s != "" {
			out = append(out, s)
		}
	}
	return out
}

// str converts a JSON scalar to a trimmed string. Objects, arrays and null
// become "".
func str(v any) string {
	switch t := v.(type) {
	case string:
		return strings.TrimSpace(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int:
		return strconv.Itoa(t)
	case bool:
		return strconv.FormatBool(t)
	}
	return ""
}

func optStr(v any) *string {
	s := str(v)
	if s == "" || strings.EqualFold(s, "null") || strings.EqualFold(s, "unknown") {
		return nil
	}
	return &s
}

func optInt(v any) *int {
	var i int
	switch t := v.(type) {
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return nil
		}
		i = int(t)
	case int:
		i = t
	case string:
		parsed, err := strconv.Atoi(strings.TrimSpace(t))
		if err != nil {
			return nil
		}
		i = parsed
	default:
		return nil
	}
	return &i
}

func intOr(v any, def int) int {
	if p := optInt(v); p != nil {
		return *p
	}
	return def
}

func num(v any) float64 {
	switch t := v.(type) {
	case float64:
		return t
	case int:
		return float64(t)
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		if err == nil {
			return f
		}
	}
	return 0
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}

// enumKey folds case and drops separators so "pe backed" matches "PE-Backed".
func enumKey(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	return strings.NewReplacer("-", "", "_", "", " ", "").Replace(s)
}

func matchEnum[T ~string](s string, allowed []T, def T) T {
	key := enumKey(s)
	for _, a := range allowed {
		if enumKey(string(a)) == key {
			return a
		}
	}
	return def
}
