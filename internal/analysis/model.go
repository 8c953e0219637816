// Package analysis turns raw model output into the canonical analysis record.
package analysis

import "time"

type Sentiment string

const (
	SentimentPositive Sentiment = "Positive"
	SentimentNeutral  Sentiment = "Neutral"
	SentimentNegative Sentiment = "Negative"
	SentimentUnknown  Sentiment = "Unknown"
)

// FallbackNote marks a record produced because structured output could not be
// parsed. It is the only field separating it from a genuine Neutral result.
const FallbackNote = "model returned non-structured output"

// Record is the analysis stored with every document.
type Record struct {
	Summary          string    `json:"summary"`
	KeyPoints        []string  `json:"keyPoints"`
	Keywords         []string  `json:"keywords"`
	Sentiment        Sentiment `json:"sentiment"`
	Notes            string    `json:"notes"`
	RawModelResponse string    `json:"rawModelResponse"`
	CreatedAt        time.Time `json:"createdAt"`
}

// IsFallback reports whether r is the degraded record for unparseable output.
func (r Record) IsFallback() bool {
	return r.Notes == FallbackNote
}

// parseSentiment matches raw case-insensitively against the closed set.
func parseSentiment(raw string) Sentiment {
	for _, s := range []Sentiment{SentimentPositive, SentimentNeutral, SentimentNegative, SentimentUnknown} {
		if equalFoldTrim(raw, string(s)) {
			return s
		}
	}
	return SentimentUnknown
}
