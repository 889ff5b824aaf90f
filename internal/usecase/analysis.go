package usecase

import (
	"bytes"
	"encoding/json"
	"fmt"

	"TechNewsAgent/internal/domain"
)

// Analysis is the structured part of a model reply.
type Analysis struct {
	Summary           string
	BusinessImpact    domain.Impact
	ImpactExplanation string
	KeyTakeaways      []string
}

// ParseStatus tags the outcome of ParseAnalysis.
type ParseStatus int

const (
	// ParseOK means the reply was a JSON object.
	ParseOK ParseStatus = iota
	// ParseMalformed means the reply was not valid JSON.
	ParseMalformed
	// ParseNotObject means the reply was valid JSON of another kind.
	ParseNotObject
)

// ParseResult carries the parsed Analysis when Status is ParseOK and the raw reply in every case.
type ParseResult struct {
	Status   ParseStatus
	Analysis Analysis
	Raw      string
	// Kind names the JSON type of a ParseNotObject reply.
	Kind string
}

// OK reports whether an Analysis was produced.
func (r ParseResult) OK() bool {
	return r.Status == ParseOK
}

// Err describes a ParseNotObject reply.
func (r ParseResult) Err() error {
	if r.Status != ParseNotObject {
		return nil
	}
	return fmt.Errorf("model reply is a JSON %s, not an object", r.Kind)
}

// ParseAnalysis decodes a model reply verbatim. Surrounding whitespace is
// allowed; anything else around the JSON, code fences included, makes the
// reply malformed. Absent keys default to an empty string, MEDIUM impact and
// no takeaways.
func ParseAnalysis(raw string) ParseResult {
	var value any
	if err := json.Unmarshal([]byte(raw), &value); err != nil {
		return ParseResult{Status: ParseMalformed, Raw: raw}
	}
	if _, ok := value.(map[string]any); !ok {
		return ParseResult{Status: ParseNotObject, Raw: raw, Kind: jsonKind(value)}
	}

	var fields map[string]json.RawMessage
	if err := json.Unmarshal([]byte(raw), &fields); err != nil {
		return ParseResult{Status: ParseMalformed, Raw: raw}
	}

	analysis := Analysis{
		Summary:           textField(fields, "summary"),
		BusinessImpact:    domain.ImpactMedium,
		ImpactExplanation: textField(fields, "impact_explanation"),
		KeyTakeaways:      listField(fields, "key_takeaways"),
	}
	if _, ok := fields["business_impact"]; ok {
		analysis.BusinessImpact = domain.Impact(textField(fields, "business_impact"))
	}

	return ParseResult{Status: ParseOK, Analysis: analysis, Raw: raw}
}

func jsonKind(v any) string {
	switch v.(type) {
	case nil:
		return "null"
	case []any:
		return "array"
	case string:
		return "string"
	case float64:
		return "number"
	case bool:
		return "boolean"
	default:
		return fmt.Sprintf("%T", v)
	}
}

// textField returns a string value verbatim and any other JSON value as its compact encoding.
func textField(fields map[string]json.RawMessage, key string) string {
	raw, ok := fields[key]
	if !ok {
		return ""
	}
	return rawText(raw)
}

func listField(fields map[string]json.RawMessage, key string) []string {
	raw, ok := fields[key]
	if !ok {
		return []string{}
	}

	var items []json.RawMessage
	if err := json.Unmarshal(raw, &items); err != nil {
		var single string
		if json.Unmarshal(raw, &single) == nil && single != "" {
			return []string{single}
		}
		return []string{}
	}

	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, rawText(item))
	}
	return out
}

func rawText(raw json.RawMessage) string {
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	if bytes.Equal(bytes.TrimSpace(raw), []byte("null")) {
		return ""
	}
	var buf bytes.Buffer
	if err := json.Compact(&buf, raw); err != nil {
		return string(raw)
	}
	return buf.String()
}
