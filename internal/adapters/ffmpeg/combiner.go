// Package ffmpeg drives the ffmpeg binary to concatenate a date's archive
// segments into a single audio file.
package ffmpeg

import (
	"bytes"
	"context"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"sort"
	"strings"

	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"
)

const combinedPrefix = "combined_"

// Combiner implements ports.Combiner using ffmpeg's concat demuxer. The
// inputs share one codec/bitrate (they come from the same feed), so the
// streams are copied without re-encoding.
type Combiner struct {
	binary string
	logger *log.Logger
}

// NewCombiner creates a Combiner invoking the given ffmpeg binary.
func NewCombiner(binary string, logger *log.Logger) *Combiner {
	if binary == "" {
		binary = "ffmpeg"
	}
	return &Combiner{binary: binary, logger: logger}
}

// Combine concatenates the directory's mp3 files in filename-sorted order
// into combined_<feedId>_<MMDDYYYY>.mp3 in the same directory. With the
// fetcher's timestamp-based filenames, lexicographic order is chronological
// order. Zero inputs is a no-op.
func (c *Combiner) Combine(ctx context.Context, dir string, feed domain.FeedID, date domain.ArchiveDate) (string, error) {
	inputs, err := listInputs(dir)
	if err != nil {
		return "", err
	}
	if len(inputs) == 0 {
		c.logger.Printf("%s: no mp3 files to combine", dir)
		return "", nil
	}

	outPath := filepath.Join(dir, outputName(feed, date))

	listFile, err := writeConcatList(dir, inputs)
	if err != nil {
		return "", err
	}
	defer os.Remove(listFile)

	cmd := exec.CommandContext(ctx, c.binary,
		"-y",
		"-f", "concat",
		"-safe", "0",
		"-i", listFile,
		"-c", "copy",
		outPath,
	)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr

	c.logger.Printf("%s: combining %d file(s)", dir, len(inputs))
	if err := cmd.Run(); err != nil {
		return "", fmt.Errorf("ffmpeg concat failed: %w, stderr: %s", err, stderr.String())
	}
	return outPath, nil
}

// listInputs returns the directory's mp3 files sorted lexicographically by
// filename, excluding previously combined output.
func listInputs(dir string) ([]string, error) {
	matches, err := filepath.Glob(filepath.Join(dir, "*.mp3"))
	if err != nil {
		return nil, fmt.Errorf("failed to list mp3 files in %s: %w", dir, err)
	}

	inputs := matches[:0]
	for _, m := range matches {
		if strings.HasPrefix(filepath.Base(m), combinedPrefix) {
			continue
		}
		inputs = append(inputs, m)
	}
	sort.Strings(inputs)
	return inputs, nil
}

func outputName(feed domain.FeedID, date domain.ArchiveDate) string {
	return fmt.Sprintf("%s%s_%s.mp3", combinedPrefix, feed, date.DirName())
}

// writeConcatList writes the concat-demuxer list file next to the inputs
// and returns its path.
func writeConcatList(dir string, inputs []string) (string, error) {
	file, err := os.CreateTemp(dir, "concat-*.txt")
	if err != nil {
		return "", fmt.Errorf("failed to create concat list: %w", err)
	}
	defer file.Close()

	var b strings.Builder
	for _, in := range inputs {
		b.WriteString(concatListEntry(filepath.Base(in)))
		b.WriteByte('\n')
	}
	if _, err := file.WriteString(b.String()); err != nil {
		os.Remove(file.Name())
		return "", fmt.Errorf("failed to write concat list: %w", err)
	}
	return file.Name(), nil
}

// concatListEntry quotes one filename for the concat demuxer. Paths are
// relative to the list file, which sits in the same directory as the
// inputs.
func concatListEntry(name string) string {
	return "file '" + strings.ReplaceAll(name, "'", `'\''`) + "'"
}
