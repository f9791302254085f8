// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

// OwnershipType classifies who owns the researched company.
type OwnershipType string

const (
	OwnershipPublic     OwnershipType = "Public"
	OwnershipPrivate    OwnershipType = "Private"
	OwnershipSubsidiary OwnershipType = "Subsidiary"
	OwnershipPEBacked   OwnershipType = "PE-Backed"
)

// SignalType categorizes a recent signal.
type SignalType string

const (
	SignalFinancial  SignalType = "financial"
	SignalStrategic  SignalType = "strategic"
	SignalPricing    SignalType = "pricing"
	SignalLeadership SignalType = "leadership"
	SignalTechnology SignalType = "technology"
	SignalIntent     SignalType = "intent"
)

// IntentSignalType categorizes evidence of an active purchase or vendor search.
type IntentSignalType string

const (
	IntentRFP                  IntentSignalType = "rfp"
	IntentVendorEvaluation     IntentSignalType = "vendor_evaluation"
	IntentTechnologyInitiative IntentSignalType = "technology_initiative"
	IntentHiring               IntentSignalType = "hiring"
)

// FitScore rates how well an intent signal matches the seller's offering.
type FitScore string

const (
	FitPerfect  FitScore = "perfect"
	FitGood     FitScore = "good"
	FitModerate FitScore = "moderate"
)

// Level is a three-step rating used for hypothesis confidence and outreach urgency.
type Level string

const (
	LevelHigh   Level = "high"
	LevelMedium Level = "medium"
	LevelLow    Level = "low"
)

// PersonaKey identifies one of the five fixed buyer-role categories.
type PersonaKey string

const (
	PersonaCFOFinance          PersonaKey = "cfo_finance"
	PersonaPricingRGM          PersonaKey = "pricing_rgm"
	PersonaSalesCommercial     PersonaKey = "sales_commercial"
	PersonaCEOGM               PersonaKey = "ceo_gm"
	PersonaTechnologyAnalytics PersonaKey = "technology_analytics"
)

// PersonaKeys lists every persona in report order.
var PersonaKeys = []PersonaKey{
	PersonaCFOFinance,
	PersonaPricingRGM,
	PersonaSalesCommercial,
	PersonaCEOGM,
	PersonaTechnologyAnalytics,
}

// IntelligenceReport is the canonical output of a research request. A report
// returned by the pipeline always carries a company profile, all five persona
// angles, and non-nil slices.
type IntelligenceReport struct {
	CompanyProfile   CompanyProfile   `json:"company_profile" yaml:"company_profile"`
	RecentSignals    []RecentSignal   `json:"recent_signals" yaml:"recent_signals"`
	IntentSignals    []IntentSignal   `json:"intent_signals" yaml:"intent_signals"`
	Hypothesis       Hypothesis       `json:"hypothesis" yaml:"hypothesis"`
	PersonaAngles    PersonaAngles    `json:"persona_angles" yaml:"persona_angles"`
	OutreachPriority OutreachPriority `json:"outreach_priority" yaml:"outreach_priority"`
	ResearchGaps     []string         `json:"research_gaps" yaml:"research_gaps"`
	Metadata         ReportMetadata   `json:"metadata" yaml:"metadata"`
}

// CompanyProfile holds firmographic facts. Optional facts are nil when the
// research did not establish them.
type CompanyProfile struct {
	ConfirmedName  string        `json:"confirmed_name" yaml:"confirmed_name"`
	Revenue        *string       `json:"revenue,omitempty" yaml:"revenue,omitempty"`
	RevenueSource  *string       `json:"revenue_source,omitempty" yaml:"revenue_source,omitempty"`
	EmployeeCount  *string       `json:"employee_count,omitempty" yaml:"employee_count,omitempty"`
	EmployeeSource *string       `json:"employee_source,omitempty" yaml:"employee_source,omitempty"`
	Headquarters   *string       `json:"headquarters,omitempty" yaml:"headquarters,omitempty"`
	FoundedYear    *int          `json:"founded_year,omitempty" yaml:"founded_year,omitempty"`
	OwnershipType  OwnershipType `json:"ownership_type" yaml:"ownership_type"`
	ParentCompany  *string       `json:"parent_company,omitempty" yaml:"parent_company,omitempty"`
	Investors      []string      `json:"investors" yaml:"investors"`
	Industry       string        `json:"industry" yaml:"industry"`
	SubSegment     *string       `json:"sub_segment,omitempty" yaml:"sub_segment,omitempty"`
	BusinessModel  string        `json:"business_model" yaml:"business_model"`
	Citations      []string      `json:"citations" yaml:"citations"`
}

// RecentSignal is a dated piece of news relevant to outreach.
type RecentSignal struct {
	Type           SignalType `json:"type" yaml:"type"`
	Headline       string     `json:"headline" yaml:"headline"`
	Detail         string     `json:"detail" yaml:"detail"`
	Date           string     `json:"date" yaml:"date"`
	SourceURL      string     `json:"source_url" yaml:"source_url"`
	SourceName     string     `json:"source_name" yaml:"source_name"`
	Relevance      string     `json:"relevance" yaml:"relevance"`
	IsIntentSignal bool       `json:"is_intent_signal" yaml:"is_intent_signal"`
}

// IntentSignal is evidence that the company is evaluating a purchase.
type IntentSignal struct {
	SignalType  IntentSignalType `json:"signal_type" yaml:"signal_type"`
	Description string           `json:"description" yaml:"description"`
	Timeframe   *string          `json:"timeframe,omitempty" yaml:"timeframe,omitempty"`
	Source      string           `json:"source" yaml:"source"`
	FitScore    FitScore         `json:"fit_score" yaml:"fit_score"`
}

// Hypothesis is the primary sales thesis for the account.
type Hypothesis struct {
	PrimaryHypothesis  string   `json:"primary_hypothesis" yaml:"primary_hypothesis"`
	SupportingEvidence []string `json:"supporting_evidence" yaml:"supporting_evidence"`
	Confidence         Level    `json:"confidence" yaml:"confidence"`
}

// PersonaAngle is a messaging hook for one buyer role.
type PersonaAngle struct {
	Hook            string `json:"hook" yaml:"hook"`
	SupportingPoint string `json:"supporting_point" yaml:"supporting_point"`
	Question        string `json:"question" yaml:"question"`
}

// PersonaAngles holds exactly one angle per PersonaKey.
type PersonaAngles struct {
	CFOFinance          PersonaAngle `json:"cfo_finance" yaml:"cfo_finance"`
	PricingRGM          PersonaAngle `json:"pricing_rgm" yaml:"pricing_rgm"`
	SalesCommercial     PersonaAngle `json:"sales_commercial" yaml:"sales_commercial"`
	CEOGM               PersonaAngle `json:"ceo_gm" yaml:"ceo_gm"`
	TechnologyAnalytics PersonaAngle `json:"technology_analytics" yaml:"technology_analytics"`
}

// Get returns the angle for key and whether key is a known persona.
func (p *PersonaAngles) Get(key PersonaKey) (*PersonaAngle, bool) {
	switch key {
	case PersonaCFOFinance:
		return &p.CFOFinance, true
	case PersonaPricingRGM:
		return &p.PricingRGM, true
	case PersonaSalesCommercial:
		return &p.SalesCommercial, true
	case PersonaCEOGM:
		return &p.CEOGM, true
	case PersonaTechnologyAnalytics:
		return &p.TechnologyAnalytics, true
	}
	return nil, false
}

// IsPersonaKey reports whether s names one of the five personas.
func IsPersonaKey(s string) bool {
	for _, k := range PersonaKeys {
		if string(k) == s {
			return true
		}
	}
	return false
}

// OutreachPriority recommends who to contact and how soon.
type OutreachPriority struct {
	RecommendedPersonas []PersonaKey `json:"recommended_personas" yaml:"recommended_personas"`
	Urgency             Level        `json:"urgency" yaml:"urgency"`
	UrgencyReason       string       `json:"urgency_reason" yaml:"urgency_reason"`
	Cautions            []string     `json:"cautions" yaml:"cautions"`
}

// ModelsUsed names the models invoked for each stage.
type ModelsUsed struct {
	Search    string `json:"search" yaml:"search"`
	Synthesis string `json:"synthesis" yaml:"synthesis"`
}

// TokenUsage counts tokens consumed by generative calls.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens" yaml:"input_tokens"`
	OutputTokens int `json:"output_tokens" yaml:"output_tokens"`
}

// Add returns the element-wise sum of u and o.
func (u TokenUsage) Add(o TokenUsage) TokenUsage {
	return TokenUsage{
		InputTokens:  u.InputTokens + o.InputTokens,
		OutputTokens: u.OutputTokens + o.OutputTokens,
	}
}

// ReportMetadata describes how a report was produced. SearchesEstimated is
// true when SearchesPerformed came from the citation-count heuristic instead
// of the call budget counter.
type ReportMetadata struct {
	RequestID         string     `json:"request_id,omitempty" yaml:"request_id,omitempty"`
	SearchesPerformed int        `json:"searches_performed" yaml:"searches_performed"`
	SearchesEstimated bool       `json:"searches_estimated,omitempty" yaml:"searches_estimated,omitempty"`
	SourcesCited      int        `json:"sources_cited" yaml:"sources_cited"`
	ModelsUsed        ModelsUsed `json:"models_used" yaml:"models_used"`
	ExecutionTimeMS   int64      `json:"execution_time_ms" yaml:"execution_time_ms"`
	EstimatedCost     float64    `json:"estimated_cost" yaml:"estimated_cost"`
	Usage             TokenUsage `json:"usage" yaml:"usage"`
}
