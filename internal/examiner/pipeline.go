package examiner

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"time"

	"github.com/heartmarshall/quizcheck/internal/dataset"
	"github.com/heartmarshall/quizcheck/internal/domain"
	"github.com/heartmarshall/quizcheck/internal/specdoc"
)

// ChatClient is the single operation the pipeline needs from the LLM
// transport. *ollama.Client satisfies it.
type ChatClient interface {
	Chat(ctx context.Context, system, user string, format json.RawMessage, temperature float64) (string, error)
	BaseURL() string
	Model() string
}

// Result holds run statistics.
type Result struct {
	WordsTotal    int
	WordsResumed  int
	WordsExamined int
	FallbackCalls int
	Batches       int
	ReportJSON    string
	ReportMD      string
}

// Run drives a full examination: load spec and dataset, replay the
// checkpoint log, walk the remaining words in batches through the
// model, merge, checkpoint, and write both reports.
//
// One sequential loop; the checkpoint log totally orders the work.
// Every accepted verdict is flushed before the next network call, so a
// kill at any point loses at most one word.
func Run(ctx context.Context, cfg *Config, client ChatClient, log *slog.Logger) (Result, error) {
	var result Result

	excerpt, err := specdoc.Excerpt(cfg.SpecPath)
	if err != nil {
		return result, fmt.Errorf("load spec excerpt: %w", err)
	}

	ds, err := dataset.Load(cfg.CSVPath)
	if err != nil {
		return result, fmt.Errorf("load dataset: %w", err)
	}

	words := ds.Words
	if cfg.MaxWords > 0 && len(words) > cfg.MaxWords {
		words = words[:cfg.MaxWords]
	}
	result.WordsTotal = len(words)
	log.Info("dataset loaded",
		slog.Int("rows", len(ds.Rows)),
		slog.Int("words", len(words)),
	)

	verdicts := make(map[string]domain.WordVerdict)
	if cfg.Resume {
		verdicts, err = replayCheckpoint(cfg.CheckpointPath)
		if err != nil {
			return result, fmt.Errorf("resume: %w", err)
		}
		result.WordsResumed = len(verdicts)
		log.Info("checkpoint replayed",
			slog.String("path", cfg.CheckpointPath),
			slog.Int("verdicts", len(verdicts)),
		)
	}

	var remaining []string
	for _, w := range words {
		if _, done := verdicts[w]; !done {
			remaining = append(remaining, w)
		}
	}

	ckpt, err := openCheckpoint(cfg.CheckpointPath, cfg.Resume)
	if err != nil {
		return result, err
	}
	defer ckpt.Close()

	batches := batchWords(remaining, cfg.BatchSize)
	timeout := time.Duration(cfg.TimeoutSec) * time.Second

	var runErr error

batchLoop:
	for bi, batch := range batches {
		if err := ctx.Err(); err != nil {
			runErr = err
			break
		}

		results, err := examineBatch(ctx, cfg, client, excerpt, ds, batch, timeout, log)
		if err != nil {
			runErr = fmt.Errorf("%w: batch %d/%d (%v): %v",
				domain.ErrBatchFailure, bi+1, len(batches), batch, err)
			break
		}
		result.Batches++

		for _, word := range batch {
			res := results[word]
			rows := ds.Groups[word]
			_, required := buildPayload(word, rows)

			if res == nil {
				// Per-word fallback with a single-word batch.
				result.FallbackCalls++
				log.Warn("model omitted word, retrying alone", slog.String("word", word))
				fallback, err := examineBatch(ctx, cfg, client, excerpt, ds, []string{word}, timeout, log)
				if err != nil {
					if ctx.Err() != nil {
						runErr = ctx.Err()
						break batchLoop
					}
					log.Warn("fallback request failed", slog.String("word", word), slog.String("error", err.Error()))
				} else {
					res = fallback[word]
				}
			}

			verdict := merge(word, rows, required, res, cfg.ExpectedRows, cfg.ScoreFloor)
			verdicts[word] = verdict
			if err := ckpt.Append(verdict); err != nil {
				runErr = err
				break batchLoop
			}
			result.WordsExamined++
		}

		log.Info("batch done",
			slog.Int("batch", bi+1),
			slog.Int("batches", len(batches)),
			slog.Int("words_done", result.WordsResumed+result.WordsExamined),
			slog.Int("words_total", result.WordsTotal),
		)

		if cfg.SleepMS > 0 && bi < len(batches)-1 {
			select {
			case <-time.After(time.Duration(cfg.SleepMS) * time.Millisecond):
			case <-ctx.Done():
				runErr = ctx.Err()
				break batchLoop
			}
		}
	}

	report := buildReport(ds, words, verdicts, cfg, client.BaseURL())
	if err := report.Write(cfg.OutputJSON, cfg.OutputMD); err != nil {
		if runErr == nil {
			runErr = err
		}
		return result, runErr
	}
	result.ReportJSON = cfg.OutputJSON
	result.ReportMD = cfg.OutputMD

	log.Info("reports written",
		slog.String("json", cfg.OutputJSON),
		slog.String("markdown", cfg.OutputMD),
		slog.Int("words_pass", report.WordsPass),
		slog.Int("words_fail", report.WordsFail),
	)

	return result, runErr
}

// examineBatch sends one batch through the model with retries and
// returns the parsed results keyed by word. Entries for words outside
// the batch are discarded; a requested word may be absent from the map.
func examineBatch(ctx context.Context, cfg *Config, client ChatClient, excerpt string, ds *dataset.Dataset, batch []string, timeout time.Duration, log *slog.Logger) (map[string]*wordResult, error) {
	payloads := make([]wordPayload, 0, len(batch))
	for _, word := range batch {
		p, _ := buildPayload(word, ds.Groups[word])
		payloads = append(payloads, p)
	}

	user, err := userMessage(excerpt, payloads, cfg.ScoreFloor)
	if err != nil {
		return nil, err
	}
	schema := responseSchema(len(batch), cfg.ExpectedRows)
	system := systemMessage()

	var lastErr error
	for attempt := 0; attempt <= cfg.Retries; attempt++ {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if attempt > 0 {
			log.Warn("retrying batch",
				slog.Int("attempt", attempt+1),
				slog.String("error", lastErr.Error()),
			)
		}

		callCtx, cancel := context.WithTimeout(ctx, timeout)
		content, err := client.Chat(callCtx, system, user, schema, cfg.Temperature)
		cancel()
		if err != nil {
			lastErr = err
			continue
		}

		results, err := parseResults(content)
		if err != nil {
			if cfg.Debug {
				fmt.Printf("--- raw model output ---\n%s\n--- end raw output ---\n", content)
			}
			lastErr = err
			continue
		}

		requested := make(map[string]bool, len(batch))
		for _, w := range batch {
			requested[w] = true
		}
		byWord := make(map[string]*wordResult, len(results))
		for i := range results {
			w := results[i].Word
			if !requested[w] {
				log.Debug("discarding entry for unrequested word", slog.String("word", w))
				continue
			}
			if _, dup := byWord[w]; dup {
				continue
			}
			byWord[w] = &results[i]
		}
		return byWord, nil
	}

	return nil, lastErr
}

// batchWords partitions words into contiguous batches of at most size.
func batchWords(words []string, size int) [][]string {
	if size < 1 {
		size = 1
	}
	var batches [][]string
	for start := 0; start < len(words); start += size {
		end := start + size
		if end > len(words) {
			end = len(words)
		}
		batches = append(batches, words[start:end])
	}
	return batches
}
