// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package synthesis

import (
	"bytes"
	"fmt"
	"io"
	"text/template"

	"github.com/pdiddy/account-intel/pkg/types"
)

// PromptData is the value passed to both prompt templates.
type PromptData struct {
	CompanyName string
	Website     string
	Industry    string
	// Research is the verbatim answer of the research stage.
	Research string
	// Evidence is the corpus rendered from successful batch searches.
	Evidence string
}

const researchSystem = `You are a B2B sales research analyst. You research companies on the open web and report only facts you can attribute to a source. Cite the URL for every fact.`

const synthesisSystem = `You are a B2B sales strategist. You turn research notes into a structured account brief. Respond with a single JSON object and nothing else.`

// defaultResearchPrompt drives the web-grounded research stage.
const defaultResearchPrompt = `Research the company "{{.CompanyName}}"{{if .Website}} (website: {{.Website}}){{end}}{{if .Industry}} in the {{.Industry}} industry{{end}}.

Cover each of the following and cite a source URL for every fact:
1. Firmographics: legal name, revenue and its source, employee count and its source, headquarters, founding year, industry and sub-segment, business model.
2. Ownership: public, private, subsidiary, or private-equity backed; parent company; notable investors.
3. Recent news from the last 12 months: financial results, strategic moves, pricing actions, acquisitions.
4. Intent signals: RFPs, vendor evaluations, technology initiatives, and job postings related to pricing, revenue management, or commercial analytics.
5. Leadership: CEO, CFO, and heads of pricing, sales, and technology, including recent appointments.
6. Competitors and market position.

State plainly when something could not be found. Do not speculate.`

// defaultSynthesisPrompt drives the JSON synthesis stage.
const defaultSynthesisPrompt = `Build an account brief for "{{.CompanyName}}"{{if .Website}} ({{.Website}}){{end}}{{if .Industry}}, industry: {{.Industry}}{{end}}.

Use only the research notes and search evidence below. Prefer high-credibility and recent sources. Do not invent facts; record anything you could not establish in research_gaps.

Return a JSON object with exactly these keys:
{
  "company_profile": {
    "confirmed_name": string, "revenue": string|null, "revenue_source": string|null,
    "employee_count": string|null, "employee_source": string|null, "headquarters": string|null,
    "founded_year": number|null, "ownership_type": "Public"|"Private"|"Subsidiary"|"PE-Backed",
    "parent_company": string|null, "investors": [string], "industry": string,
    "sub_segment": string|null, "business_model": string, "citations": [url]
  },
  "recent_signals": [{"type": "financial"|"strategic"|"pricing"|"leadership"|"technology"|"intent",
    "headline": string, "detail": string, "date": string, "source_url": url, "source_name": string,
    "relevance": string, "is_intent_signal": boolean}],
  "intent_signals": [{"signal_type": "rfp"|"vendor_evaluation"|"technology_initiative"|"hiring",
    "description": string, "timeframe": string|null, "source": string, "fit_score": "perfect"|"good"|"moderate"}],
  "hypothesis": {"primary_hypothesis": string, "supporting_evidence": [string], "confidence": "high"|"medium"|"low"},
  "persona_angles": {
    "cfo_finance": {"hook": string, "supporting_point": string, "question": string},
    "pricing_rgm": {...}, "sales_commercial": {...}, "ceo_gm": {...}, "technology_analytics": {...}
  },
  "outreach_priority": {"recommended_personas": ["cfo_finance"|"pricing_rgm"|"sales_commercial"|"ceo_gm"|"technology_analytics"],
    "urgency": "high"|"medium"|"low", "urgency_reason": string, "cautions": [string]},
  "research_gaps": [string]
}

Do not include a "metadata" key. Do not wrap the JSON in markdown.

## Research notes

{{.Research}}

## Search evidence

{{if .Evidence}}{{.Evidence}}{{else}}(no search evidence available){{end}}
`

// Prompts holds the parsed templates for both stages.
type Prompts struct {
	research  *template.Template
	synthesis *template.Template
}

// NewPrompts parses the templates in cfg. Empty fields use the built-in
// templates.
func NewPrompts(cfg types.PromptConfig) (*Prompts, error) {
	research, err := parsePrompt("research", cfg.Search, defaultResearchPrompt)
	if err != nil {
		return nil, err
	}
	synthesis, err := parsePrompt("synthesis", cfg.Synthesis, defaultSynthesisPrompt)
	if err != nil {
		return nil, err
	}
	return &Prompts{research: research, synthesis: synthesis}, nil
}

// DefaultPrompts returns the built-in templates.
func DefaultPrompts() *Prompts {
	p, err := NewPrompts(types.PromptConfig{})
	if err != nil {
		panic(err)
	}
	return p
}

func parsePrompt(name, custom, def string) (*template.Template, error) {
	text := custom
	if text == "" {
		text = def
	}
	tmpl, err := template.New(name).Option("missingkey=error").Parse(text)
	if err != nil {
		return nil, fmt.Errorf("parsing %s prompt: %w", name, err)
	}
	// A template can parse and still fail on execution, e.g. an unknown field.
	for _, d := range sampleData {
		if err := tmpl.Execute(io.Discard, d); err != nil {
			return nil, fmt.Errorf("rendering %s prompt: %w", name, err)
		}
	}
	return tmpl, nil
}

// sampleData covers both sides of the optional-field conditionals.
var sampleData = []PromptData{
	{},
	{CompanyName: "x", Website: "x", Industry: "x", Research: "x", Evidence: "x"},
}

// Research renders the research-stage prompt.
func (p *Prompts) Research(d PromptData) (string, error) {
	return render(p.research, d)
}

// Synthesis renders the synthesis-stage prompt.
func (p *Prompts) Synthesis(d PromptData) (string, error) {
	return render(p.synthesis, d)
}

func render(t *template.Template, d PromptData) (string, error) {
	var buf bytes.Buffer
	if err := t.Execute(&buf, d); err != nil {
		return "", fmt.Errorf("rendering %s prompt: %w", t.Name(), err)
	}
	return buf.String(), nil
}
