package whisper

import (
	"context"
	"encoding/json"
	"log"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"
)

func TestParseEngineOutput(t *testing.T) {
	data := []byte(`{
		"transcription": [
			{"text": " unit 12 respond", "offsets": {"from": 0, "to": 2400}},
			{"text": " copy that", "offsets": {"from": 2400, "to": 3100}}
		]
	}`)

	segments, err := parseEngineOutput(data)
	if err != nil {
		t.Fatalf("parseEngineOutput: %v", err)
	}
	if len(segments) != 2 {
		t.Fatalf("got %d segments, want 2", len(segments))
	}
	if segments[0].Text != "unit 12 respond" {
		t.Errorf("segments[0].Text = %q", segments[0].Text)
	}
	if segments[0].Start != 0 || segments[0].End != 2.4 {
		t.Errorf("segments[0] times = %v..%v, want 0..2.4", segments[0].Start, segments[0].End)
	}
	if segments[1].Start != 2.4 || segments[1].End != 3.1 {
		t.Errorf("segments[1] times = %v..%v, want 2.4..3.1", segments[1].Start, segments[1].End)
	}
	if segments[1].Seek != 240 {
		t.Errorf("segments[1].Seek = %v, want 240", segments[1].Seek)
	}
}

func TestParseEngineOutputInvalid(t *testing.T) {
	if _, err := parseEngineOutput([]byte("whisper exploded")); err == nil {
		t.Fatal("expected error for invalid engine output")
	}
}

func TestWriteTranscriptSchema(t *testing.T) {
	dir := t.TempDir()
	transcript := domain.NewTranscript([]domain.TranscriptSegment{
		{Text: "unit 12 respond", Start: 0, End: 2.4, Seek: 0},
		{Text: "copy that", Start: 2.4, End: 3.1, Seek: 240},
	})

	if err := writeTranscript(dir, "/archives/123/06012024/20240601090452.mp3", transcript); err != nil {
		t.Fatalf("writeTranscript: %v", err)
	}

	data, err := os.ReadFile(filepath.Join(dir, "20240601090452.json"))
	if err != nil {
		t.Fatalf("read transcript: %v", err)
	}

	var decoded struct {
		Text     string `json:"text"`
		Segments []struct {
			Text  string  `json:"text"`
			Start float64 `json:"start"`
			End   float64 `json:"end"`
			Seek  float64 `json:"seek"`
		} `json:"segments"`
	}
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("transcript is not valid JSON: %v", err)
	}

	var texts []string
	for _, s := range decoded.Segments {
		texts = append(texts, s.Text)
	}
	if decoded.Text != strings.Join(texts, " ") {
		t.Errorf("text %q is not the space-joined segment text", decoded.Text)
	}
	if len(decoded.Segments) != 2 {
		t.Errorf("got %d segments, want 2", len(decoded.Segments))
	}
	if decoded.Segments[1].Seek != 240 {
		t.Errorf("segments[1].seek = %v, want 240", decoded.Segments[1].Seek)
	}
}

func TestTranscribeAllEmptyDirIsNoOp(t *testing.T) {
	tr := NewTranscriber(Options{Model: "model.bin"}, log.New(os.Stderr, "", 0))

	dir := t.TempDir()
	if err := tr.TranscribeAll(context.Background(), dir); err != nil {
		t.Fatalf("TranscribeAll on empty dir: %v", err)
	}
	// No transcripts directory should appear for an empty input set.
	if _, err := os.Stat(filepath.Join(dir, "transcripts")); !os.IsNotExist(err) {
		t.Errorf("transcripts dir created for empty input, stat err = %v", err)
	}
}

func TestStem(t *testing.T) {
	if got := stem("/a/b/20240601090452-466796-123.mp3"); got != "20240601090452-466796-123" {
		t.Errorf("stem = %q", got)
	}
}
