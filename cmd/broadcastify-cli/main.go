package main

import (
	"context"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/NotJoeMartinez/broadcastify-cli/internal/adapters/broadcastify"
	"github.com/NotJoeMartinez/broadcastify-cli/internal/adapters/ffmpeg"
	"github.com/NotJoeMartinez/broadcastify-cli/internal/adapters/localstorage"
	"github.com/NotJoeMartinez/broadcastify-cli/internal/adapters/whisper"
	"github.com/NotJoeMartinez/broadcastify-cli/internal/config"
	"github.com/NotJoeMartinez/broadcastify-cli/internal/core/domain"
	"github.com/NotJoeMartinez/broadcastify-cli/internal/service"
)

func main() {
	// Load .env file if it exists
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	logger := log.New(os.Stdout, "", log.LstdFlags)

	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// Setup context with cancellation on interrupt
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		logger.Println("\nReceived interrupt signal, cancelling...")
		cancel()
	}()

	switch os.Args[1] {
	case "download":
		runDownload(ctx, os.Args[2:], logger)
	case "transcribe":
		runTranscribe(ctx, os.Args[2:], logger)
	case "-h", "--help", "help":
		usage()
	default:
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", os.Args[1])
		usage()
		os.Exit(2)
	}
}

func usage() {
	fmt.Println("Usage: broadcastify-cli <command> [flags]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  download    Download archives by feed id and date")
	fmt.Println("  transcribe  Transcribe a directory of audio files")
	fmt.Println()
	fmt.Println("Examples:")
	fmt.Println("  broadcastify-cli download -feed-id 123 -date 06/01/2024")
	fmt.Println("  broadcastify-cli download -feed-id 123 -range 06/01/2024-06/10/2024 -combine -jobs 4")
	fmt.Println("  broadcastify-cli download -feed-id 123 -transcribe")
	fmt.Println("  broadcastify-cli transcribe -directory archives/123/06012024")
}

func runDownload(ctx context.Context, args []string, logger *log.Logger) {
	flags := flag.NewFlagSet("download", flag.ExitOnError)
	feedID := flags.String("feed-id", "", "Broadcastify feed id (required)")
	dateFlag := flags.String("date", "", "Date in format MM/DD/YYYY")
	rangeFlag := flags.String("range", "", "Date range in format MM/DD/YYYY-MM/DD/YYYY")
	combine := flags.Bool("combine", false, "Combine downloaded MP3 files into a single file per date")
	transcribe := flags.Bool("transcribe", false, "Transcribe downloaded MP3 files")
	jobs := flags.Int("jobs", 0, "Number of concurrent download jobs (default from config, 1)")
	outputDir := flags.String("output-dir", "", "Base directory for downloaded archives (default from config, \"archives\")")
	configPath := flags.String("config", "", "Path to an optional YAML config file")
	flags.Parse(args)

	if *feedID == "" {
		fmt.Fprintln(os.Stderr, "download: -feed-id is required")
		flags.Usage()
		os.Exit(2)
	}
	if *dateFlag != "" && *rangeFlag != "" {
		fmt.Fprintln(os.Stderr, "download: -date and -range are mutually exclusive")
		os.Exit(2)
	}

	cfg := loadConfig(*configPath, logger)
	if *jobs > 0 {
		cfg.Jobs = *jobs
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}

	spec, err := parseDateSpec(*dateFlag, *rangeFlag)
	if err != nil {
		logger.Printf("invalid date selection: %v", err)
		os.Exit(1)
	}

	// Wire adapters
	storage := localstorage.NewStorage(cfg.OutputDir)
	agents := broadcastify.NewUserAgentRotator()
	sessions := broadcastify.NewSessionProvider(storage, agents, logger)
	resolver := broadcastify.NewResolver(agents, logger)
	fetcher := broadcastify.NewFetcher(agents, logger)
	combiner := ffmpeg.NewCombiner(cfg.FFmpeg.Binary, logger)
	transcriber := whisper.NewTranscriber(whisperOptions(cfg), logger)

	orchestrator := service.NewOrchestrator(sessions, resolver, fetcher, storage, combiner, transcriber, logger)

	report, err := orchestrator.Run(ctx, domain.FeedID(*feedID), spec, service.RunOptions{
		Jobs:       cfg.Jobs,
		Combine:    *combine,
		Transcribe: *transcribe,
	})
	if err != nil {
		logger.Printf("download failed: %v", err)
		os.Exit(1)
	}

	printSummary(report)
}

func runTranscribe(ctx context.Context, args []string, logger *log.Logger) {
	flags := flag.NewFlagSet("transcribe", flag.ExitOnError)
	directory := flags.String("directory", "", "Directory containing audio files (required)")
	configPath := flags.String("config", "", "Path to an optional YAML config file")
	flags.Parse(args)

	if *directory == "" {
		fmt.Fprintln(os.Stderr, "transcribe: -directory is required")
		flags.Usage()
		os.Exit(2)
	}

	cfg := loadConfig(*configPath, logger)
	transcriber := whisper.NewTranscriber(whisperOptions(cfg), logger)

	if err := transcriber.TranscribeAll(ctx, *directory); err != nil {
		logger.Printf("transcription failed: %v", err)
		os.Exit(1)
	}
}

// loadConfig returns the file-based configuration, or the defaults when no
// file was given.
func loadConfig(path string, logger *log.Logger) config.Config {
	if path == "" {
		return config.Default()
	}
	cfg, err := config.Load(path)
	if err != nil {
		logger.Fatalf("failed to load config: %v", err)
	}
	return cfg
}

func whisperOptions(cfg config.Config) whisper.Options {
	return whisper.Options{
		Binary:   cfg.Whisper.Binary,
		Model:    cfg.Whisper.Model,
		Language: cfg.Whisper.Language,
		BeamSize: cfg.Whisper.BeamSize,
		Prompt:   cfg.Whisper.Prompt,
	}
}

// parseDateSpec maps the -date/-range flags onto a DateSpec. Neither flag
// set means the trailing year.
func parseDateSpec(dateFlag, rangeFlag string) (domain.DateSpec, error) {
	switch {
	case dateFlag != "":
		d, err := domain.ParseArchiveDate(dateFlag)
		if err != nil {
			return domain.DateSpec{}, err
		}
		return domain.SingleDate(d), nil
	case rangeFlag != "":
		parts := strings.SplitN(rangeFlag, "-", 2)
		if len(parts) != 2 {
			return domain.DateSpec{}, fmt.Errorf("invalid range %q, expected MM/DD/YYYY-MM/DD/YYYY", rangeFlag)
		}
		start, err := domain.ParseArchiveDate(parts[0])
		if err != nil {
			return domain.DateSpec{}, err
		}
		end, err := domain.ParseArchiveDate(parts[1])
		if err != nil {
			return domain.DateSpec{}, err
		}
		return domain.DateRange(start, end), nil
	default:
		return domain.TrailingYear(), nil
	}
}

func printSummary(report *domain.RunReport) {
	fmt.Println("\n=== Download Summary ===")
	fmt.Printf("Run ID:    %s\n", report.RunID)
	fmt.Printf("Feed:      %s\n", report.Feed)
	fmt.Printf("Dates:     %d\n", len(report.Dates))
	fmt.Printf("Segments:  %d downloaded, %d failed\n", report.TotalFetched(), report.TotalFailures())

	for _, dr := range report.Dates {
		switch {
		case dr.Err != nil:
			fmt.Printf("  %s  FAILED: %v\n", dr.Date.Display(), dr.Err)
		case dr.Failed():
			fmt.Printf("  %s  %d/%d segment(s), see log for failures\n", dr.Date.Display(), dr.Fetched, dr.Resolved)
		default:
			fmt.Printf("  %s  %d/%d segment(s)  %s\n", dr.Date.Display(), dr.Fetched, dr.Resolved, dr.Dir)
		}
	}
}
