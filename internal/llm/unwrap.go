package llm

// ParseErrorAnswer is shown when no extractor finds answer text in a reply.
const ParseErrorAnswer = "Error: Could not parse the model response."

// Extractor pulls answer text out of a reply, reporting whether it found any.
type Extractor func(r *Reply) (string, bool)

// DefaultExtractors is the order Unwrap tries when none are given.
var DefaultExtractors = []Extractor{PrimaryText, FirstCandidateText}

// PrimaryText reads the reply's flat text field.
func PrimaryText(r *Reply) (string, bool) {
	if r == nil || r.Text == nil {
		return "", false
	}
	return *r.Text, true
}

// FirstCandidateText reads candidates[0].content.parts[0].text.
func FirstCandidateText(r *Reply) (string, bool) {
	if r == nil || len(r.Candidates) == 0 {
		return "", false
	}
	content := r.Candidates[0].Content
	if content == nil || len(content.Parts) == 0 {
		return "", false
	}
	part := content.Parts[0]
	if part.Text == nil {
		return "", false
	}
	return *part.Text, true
}

// Unwrap returns the first text found by the extractors, in order, or ParseErrorAnswer.
func Unwrap(r *Reply, extractors ...Extractor) string {
	if len(extractors) == 0 {
		extractors = DefaultExtractors
	}
	for _, extract := range extractors {
		if text, ok := extract(r); ok {
			return text
		}
	}
	return ParseErrorAnswer
}
