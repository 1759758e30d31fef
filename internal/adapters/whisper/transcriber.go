// Package whisper drives a local whisper.cpp binary to produce per-file
// JSON transcripts of downloaded archive audio.
package whisper

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"
)

const transcriptDirName = "transcripts"

// Options is the fixed decoding configuration used for every file.
type Options struct {
	Binary   string
	Model    string
	Language string
	BeamSize int
	Prompt   string
}

// Transcriber implements ports.Transcriber by shelling out to whisper.cpp.
// Inference runs on one file at a time; a single file can take minutes on
// CPU.
type Transcriber struct {
	opts   Options
	logger *log.Logger
}

// NewTranscriber creates a Transcriber.
func NewTranscriber(opts Options, logger *log.Logger) *Transcriber {
	if opts.Binary == "" {
		opts.Binary = "whisper-cli"
	}
	if opts.Language == "" {
		opts.Language = "en"
	}
	if opts.BeamSize < 1 {
		opts.BeamSize = 5
	}
	return &Transcriber{opts: opts, logger: logger}
}

// TranscribeAll transcribes every mp3 file in dir, writing one JSON
// transcript per input into dir/transcripts/. Files are processed in
// filename order; each file is independent of the others.
func (t *Transcriber) TranscribeAll(ctx context.Context, dir string) error {
	files, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	if err != nil {
		return fmt.Errorf("failed to list mp3 files in %s: %w", dir, err)
	}
	sort.Strings(files)
	if len(files) == 0 {
		t.logger.Printf("%s: no mp3 files to transcribe", dir)
		return nil
	}

	transcriptDir := filepath.Join(dir, transcriptDirName)
	if err := os.MkdirAll(transcriptDir, 0755); err != nil {
		return fmt.Errorf("failed to create %s: %w", transcriptDir, err)
	}

	for _, file := range files {
		t.logger.Printf("transcribing %s", file)
		segments, err := t.transcribe(ctx, file)
		if err != nil {
			return fmt.Errorf("failed to transcribe %s: %w", file, err)
		}
		if err := writeTranscript(transcriptDir, file, domain.NewTranscript(segments)); err != nil {
			return err
		}
	}
	return nil
}

// transcribe runs the engine over one audio file and returns its timed
// segments.
func (t *Transcriber) transcribe(ctx context.Context, audioPath string) ([]domain.TranscriptSegment, error) {
	workDir, err := os.MkdirTemp("", "whisper-")
	if err != nil {
		return nil, fmt.Errorf("failed to create work dir: %w", err)
	}
	defer os.RemoveAll(workDir)

	outPrefix := filepath.Join(workDir, stem(audioPath))

	cmd := exec.CommandContext(ctx, t.opts.Binary,
		"-m", t.opts.Model,
		"-l", t.opts.Language,
		"-bs", strconv.Itoa(t.opts.BeamSize),
		"--prompt", t.opts.Prompt,
		"--max-context", "0", // each archive segment stands alone
		"-np",
		"-oj",
		"-of", outPrefix,
		"-f", audioPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		return nil, fmt.Errorf("%s failed: %w, stderr: %s", t.opts.Binary, err, stderr.String())
	}

	data, err := os.ReadFile(outPrefix + ".json")
	if err != nil {
		return nil, fmt.Errorf("failed to read engine output: %w", err)
	}
	return parseEngineOutput(data)
}

// engineOutput mirrors the whisper.cpp -oj schema; offsets are in
// milliseconds.
type engineOutput struct {
	Transcription []struct {
		Text    string `json:"text"`
		Offsets struct {
			From int64 `json:"from"`
			To   int64 `json:"to"`
		} `json:"offsets"`
	} `json:"transcription"`
}

// parseEngineOutput maps the engine's JSON to transcript segments. Start
// and end are in seconds; seek is the decode offset in centiseconds.
func parseEngineOutput(data []byte) ([]domain.TranscriptSegment, error) {
	var out engineOutput
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, fmt.Errorf("invalid engine output: %w", err)
	}

	segments := make([]domain.TranscriptSegment, 0, len(out.Transcription))
	for _, s := range out.Transcription {
		segments = append(segments, domain.TranscriptSegment{
			Text:  strings.TrimSpace(s.Text),
			Start: float64(s.Offsets.From) / 1000,
			End:   float64(s.Offsets.To) / 1000,
			Seek:  float64(s.Offsets.From) / 10,
		})
	}
	return segments, nil
}

// writeTranscript serializes one transcript next to its audio file's stem.
func writeTranscript(transcriptDir, audioPath string, transcript domain.Transcript) error {
	outPath := filepath.Join(transcriptDir, stem(audioPath)+".json")
	data, err := json.MarshalIndent(transcript, "", "    ")
	if err != nil {
		return fmt.Errorf("failed to encode transcript: %w", err)
	}
	if err := os.WriteFile(outPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write transcript %s: %w", outPath, err)
	}
	return nil
}

// stem returns the filename without directory or extension.
func stem(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}
