// Command examine runs the LLM examiner over the quiz-sentence CSV.
// It shards the dataset into word batches, asks a local Ollama model to
// judge each sentence against the vocabulary specification, overlays the
// deterministic defects, and writes a JSON report plus a Markdown
// summary. Progress is checkpointed per word; --resume continues an
// interrupted run without re-querying finished words.
//
// Exit codes: 0 = success, 1 = configuration error, 2 = run stopped on
// an unrecoverable request error (partial results are preserved).
package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"github.com/heartmarshall/quizcheck/internal/domain"
	"github.com/heartmarshall/quizcheck/internal/examiner"
	"github.com/heartmarshall/quizcheck/internal/ollama"
)

func main() {
	cfg, err := examiner.LoadConfig()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	cmd := newCommand(cfg)
	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func newCommand(cfg *examiner.Config) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "examine",
		Short:         "Examine quiz sentences with a local LLM against the vocabulary specification",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cfg)
		},
	}

	f := cmd.Flags()
	f.StringVar(&cfg.CSVPath, "csv", cfg.CSVPath, "path to the quiz-sentence CSV under test")
	f.StringVar(&cfg.SpecPath, "spec", cfg.SpecPath, "path to the vocabulary specification document")
	f.StringVar(&cfg.Model, "model", cfg.Model, "Ollama model identifier")
	f.StringVar(&cfg.BaseURL, "base-url", cfg.BaseURL, "Ollama endpoint base URL")
	f.IntVar(&cfg.TimeoutSec, "timeout", cfg.TimeoutSec, "per-request timeout in seconds")
	f.Float64Var(&cfg.Temperature, "temperature", cfg.Temperature, "sampling temperature")
	f.IntVar(&cfg.BatchSize, "batch-size", cfg.BatchSize, "words per LLM request")
	f.IntVar(&cfg.MaxWords, "max-words", cfg.MaxWords, "cap on words to examine (0 = all)")
	f.IntVar(&cfg.Retries, "retries", cfg.Retries, "retries per request on transport/parse errors")
	f.IntVar(&cfg.SleepMS, "sleep-ms", cfg.SleepMS, "pause between batches in milliseconds")
	f.StringVar(&cfg.CheckpointPath, "checkpoint", cfg.CheckpointPath, "path to the append-only checkpoint log")
	f.BoolVar(&cfg.Resume, "resume", cfg.Resume, "resume from the checkpoint log")
	f.BoolVar(&cfg.Debug, "debug", cfg.Debug, "debug logging; print raw model output on parse failure")
	f.StringVar(&cfg.OutputJSON, "out-json", cfg.OutputJSON, "path for the JSON report")
	f.StringVar(&cfg.OutputMD, "out-md", cfg.OutputMD, "path for the Markdown summary")
	f.IntVar(&cfg.ScoreFloor, "score-floor", cfg.ScoreFloor, "lowest rubric score that still passes")
	f.IntVar(&cfg.ExpectedRows, "expected-rows", cfg.ExpectedRows, "quiz sentences expected per word")

	return cmd
}

func run(ctx context.Context, cfg *examiner.Config) error {
	level := slog.LevelInfo
	if cfg.Debug {
		level = slog.LevelDebug
	}
	logger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: level}))

	if err := cfg.Validate(); err != nil {
		logger.Error("invalid configuration", slog.String("error", err.Error()))
		return err
	}

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	client := ollama.New(cfg.BaseURL, cfg.Model, time.Duration(cfg.TimeoutSec)*time.Second, logger)

	result, err := examiner.Run(ctx, cfg, client, logger)
	if err != nil {
		if errors.Is(err, domain.ErrBatchFailure) {
			logger.Error("run stopped", slog.String("error", err.Error()))
			fmt.Fprintf(os.Stderr,
				"Tip: make sure Ollama is running (`ollama serve`) and the model is installed (`ollama pull %s`).\n",
				cfg.Model)
			os.Exit(2)
		}
		logger.Error("examination failed", slog.String("error", err.Error()))
		return err
	}

	fmt.Printf("JSON report:      %s\n", result.ReportJSON)
	fmt.Printf("Markdown summary: %s\n", result.ReportMD)
	logger.Info("examination complete",
		slog.Int("words_total", result.WordsTotal),
		slog.Int("words_examined", result.WordsExamined),
		slog.Int("words_resumed", result.WordsResumed),
		slog.Int("fallback_calls", result.FallbackCalls),
	)
	return nil
}
