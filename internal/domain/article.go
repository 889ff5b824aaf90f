package domain

import "time"

// Keyword is a topic label sent to the news provider. Description is for display only.
type Keyword struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// RawArticle is an article as returned by the news provider. URL is its identity.
type RawArticle struct {
	Title       string `json:"title"`
	Source      string `json:"source"`
	URL         string `json:"url"`
	Content     string `json:"content"`
	PublishedAt string `json:"published_at"`
}

// Impact is the business impact level assigned by the language model.
type Impact string

const (
	ImpactHigh   Impact = "HIGH"
	ImpactMedium Impact = "MEDIUM"
	ImpactLow    Impact = "LOW"

	// ImpactUnknown marks a record whose completion request failed.
	ImpactUnknown Impact = "UNKNOWN"
	// ImpactUnavailable marks a record skipped because the article had no content.
	ImpactUnavailable Impact = "Unknown"
)

// EnrichedArticle is a RawArticle plus the model's analysis. One per RawArticle.
type EnrichedArticle struct {
	RawArticle
	Summary           string   `json:"summary"`
	BusinessImpact    Impact   `json:"business_impact"`
	ImpactExplanation string   `json:"impact_explanation"`
	KeyTakeaways      []string `json:"key_takeaways"`
}

// ImpactBreakdown counts articles per named bucket.
type ImpactBreakdown struct {
	High   int `json:"high"`
	Medium int `json:"medium"`
	Low    int `json:"low"`
}

// ImpactGroups groups articles per named bucket. Articles whose impact is
// none of HIGH, MEDIUM or LOW appear in no group.
type ImpactGroups struct {
	High   []EnrichedArticle `json:"high"`
	Medium []EnrichedArticle `json:"medium"`
	Low    []EnrichedArticle `json:"low"`
}

// Report is the artifact produced by one pipeline run.
type Report struct {
	Timestamp        time.Time         `json:"timestamp"`
	TotalArticles    int               `json:"total_articles"`
	ImpactBreakdown  ImpactBreakdown   `json:"impact_breakdown"`
	ArticlesByImpact ImpactGroups      `json:"articles_by_impact"`
	Articles         []EnrichedArticle `json:"articles"`
}

// NewReport partitions articles by exact impact match and counts them.
// TotalArticles may exceed the bucket sum when some impacts are outside the buckets.
func NewReport(ts time.Time, articles []EnrichedArticle) Report {
	groups := ImpactGroups{
		High:   []EnrichedArticle{},
		Medium: []EnrichedArticle{},
		Low:    []EnrichedArticle{},
	}
	for _, a := range articles {
		switch a.BusinessImpact {
		case ImpactHigh:
			groups.High = append(groups.High, a)
		case ImpactMedium:
			groups.Medium = append(groups.Medium, a)
		case ImpactLow:
			groups.Low = append(groups.Low, a)
		}
	}

	if articles == nil {
		articles = []EnrichedArticle{}
	}

	return Report{
		Timestamp:     ts,
		TotalArticles: len(articles),
		ImpactBreakdown: ImpactBreakdown{
			High:   len(groups.High),
			Medium: len(groups.Medium),
			Low:    len(groups.Low),
		},
		ArticlesByImpact: groups,
		Articles:         articles,
	}
}

// RunStatus enumerates pipeline outcomes.
type RunStatus string

const (
	StatusSuccess RunStatus = "success"
	StatusFailed  RunStatus = "failed"
	StatusError   RunStatus = "error"
)

// RunResult is returned by every orchestrator run, successful or not.
type RunResult struct {
	RunID   string    `json:"run_id"`
	Status  RunStatus `json:"status"`
	Message string    `json:"message,omitempty"`
	Report  *Report   `json:"report,omitempty"`
	Path    string    `json:"path,omitempty"`
}

// OK reports whether the run produced a report.
func (r RunResult) OK() bool {
	return r.Status == StatusSuccess
}
