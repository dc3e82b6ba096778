package examiner

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/heartmarshall/quizcheck/internal/domain"
)

// checkpointLog is the append-only JSONL resume state: one complete word
// verdict per line, synced to disk before the next network call. On
// replay the last entry per word wins, so re-examining a word simply
// appends a newer line.
type checkpointLog struct {
	f *os.File
}

// openCheckpoint opens the log for appending. Without resume any
// previous log is truncated first.
func openCheckpoint(path string, resume bool) (*checkpointLog, error) {
	flags := os.O_CREATE | os.O_WRONLY | os.O_APPEND
	if !resume {
		flags |= os.O_TRUNC
	}
	f, err := os.OpenFile(path, flags, 0644)
	if err != nil {
		return nil, fmt.Errorf("open checkpoint log: %w", err)
	}
	return &checkpointLog{f: f}, nil
}

// Append writes one verdict line and syncs it to disk. A crash after
// Append loses nothing; a crash during it loses at most this word.
func (l *checkpointLog) Append(v domain.WordVerdict) error {
	line, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal checkpoint entry: %w", err)
	}
	line = append(line, '\n')
	if _, err := l.f.Write(line); err != nil {
		return fmt.Errorf("write checkpoint entry: %w", err)
	}
	if err := l.f.Sync(); err != nil {
		return fmt.Errorf("sync checkpoint log: %w", err)
	}
	return nil
}

func (l *checkpointLog) Close() error {
	return l.f.Close()
}

// replayCheckpoint reads verdicts back from the log. A missing file
// yields an empty map. Unparseable lines (a torn final write from a
// crash) are skipped.
func replayCheckpoint(path string) (map[string]domain.WordVerdict, error) {
	verdicts := make(map[string]domain.WordVerdict)

	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return verdicts, nil
		}
		return nil, fmt.Errorf("open checkpoint log: %w", err)
	}
	defer f.Close()

	scanner := bufio.NewScanner(f)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)

	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}
		var v domain.WordVerdict
		if err := json.Unmarshal([]byte(line), &v); err != nil || v.Word == "" {
			continue
		}
		verdicts[v.Word] = v
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("read checkpoint log: %w", err)
	}
	return verdicts, nil
}
