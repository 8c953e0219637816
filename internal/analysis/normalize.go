package analysis

import (
	"encoding/json"
	"strconv"
	"strings"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"doc-analyzer/internal/shared/telemetry"
)

const recordSchema = `{
  "type": "object",
  "required": ["summary", "keyPoints", "keywords", "sentiment", "notes"],
  "properties": {
    "summary":   {"type": "string"},
    "keyPoints": {"type": "array", "items": {"type": "string"}},
    "keywords":  {"type": "array", "items": {"type": "string"}},
    "sentiment": {"enum": ["Positive", "Neutral", "Negative"]},
    "notes":     {"type": "string"}
  }
}`

var schema = jsonschema.MustCompileString("analysis.schema.json", recordSchema)

// Normalize maps raw model output to a Record. It never fails: output that is
// not a JSON object in structured mode yields the fallback record. raw is kept
// verbatim in RawModelResponse.
func Normalize(raw string, structured bool) Record {
	if !structured {
		return unstructured(raw, SentimentUnknown, "")
	}

	var payload any
	if err := json.Unmarshal([]byte(stripFences(raw)), &payload); err != nil {
		telemetry.Warn("analysis.parse_failed", map[string]any{"err": err, "raw_len": len(raw)})
		return unstructured(raw, SentimentNeutral, FallbackNote)
	}
	obj, ok := payload.(map[string]any)
	if !ok {
		telemetry.Warn("analysis.parse_failed", map[string]any{"err": "payload is not a JSON object", "raw_len": len(raw)})
		return unstructured(raw, SentimentNeutral, FallbackNote)
	}

	if err := schema.Validate(obj); err != nil {
		telemetry.Warn("analysis.schema_violation", map[string]any{"err": err})
	}

	return Record{
		Summary:          coerceString(obj["summary"]),
		KeyPoints:        coerceList(obj["keyPoints"]),
		Keywords:         coerceList(obj["keywords"]),
		Sentiment:        parseSentiment(coerceString(obj["sentiment"])),
		Notes:            coerceString(obj["notes"]),
		RawModelResponse: raw,
	}
}

func unstructured(raw string, sentiment Sentiment, notes string) Record {
	return Record{
		Summary:          raw,
		KeyPoints:        []string{},
		Keywords:         []string{},
		Sentiment:        sentiment,
		Notes:            notes,
		RawModelResponse: raw,
	}
}

// stripFences removes markdown code fence markers around a JSON payload.
func stripFences(raw string) string {
	s := strings.ReplaceAll(raw, "```json", "")
	s = strings.ReplaceAll(s, "```JSON", "")
	s = strings.ReplaceAll(s, "```", "")
	return strings.TrimSpace(s)
}

func coerceString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case bool:
		return strconv.FormatBool(t)
	default:
		b, err := json.Marshal(t)
		if err != nil {
			return ""
		}
		return string(b)
	}
}

// coerceList always returns a non-nil slice. A lone scalar becomes a
// one-element list; empty entries are dropped.
func coerceList(v any) []string {
	out := []string{}
	switch t := v.(type) {
	case nil:
	case []any:
		for _, item := range t {
			if s := strings.TrimSpace(coerceString(item)); s != "" {
				out = append(out, s)
			}
		}
	default:
		if s := strings.TrimSpace(coerceString(t)); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func equalFoldTrim(a, b string) bool {
	return strings.EqualFold(strings.TrimSpace(a), b)
}
