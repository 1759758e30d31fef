package domain

import "strings"

// TranscriptSegment is one timed unit of speech-to-text output.
type TranscriptSegment struct {
	Text  string  `json:"text"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
	Seek  float64 `json:"seek"`
}

// Transcript is the structured result for one audio file: the full text
// plus the ordered timed segments it was assembled from. Written once,
// never mutated.
type Transcript struct {
	Text     string              `json:"text"`
	Segments []TranscriptSegment `json:"segments"`
}

// NewTranscript builds a Transcript whose Text is the space-joined
// concatenation of the segment texts in order.
func NewTranscript(segments []TranscriptSegment) Transcript {
	texts := make([]string, len(segments))
	for i, s := range segments {
		texts[i] = s.Text
	}
	return Transcript{
		Text:     strings.Join(texts, " "),
		Segments: segments,
	}
}
