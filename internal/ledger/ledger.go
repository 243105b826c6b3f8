package ledger

import (
	"bufio"
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"photovault/internal/fileutil"
	"photovault/internal/logging"
)

// Record describes one committed backup artifact.
type Record struct {
	Hash         string  `json:"hash"`
	Filename     string  `json:"filename"`
	DownloadTime float64 `json:"download_time"`
}

// journalEntry is one committed record as it appears on a journal line.
type journalEntry struct {
	Identity     string  `json:"identity"`
	Hash         string  `json:"hash"`
	Filename     string  `json:"filename"`
	DownloadTime float64 `json:"download_time"`
}

// Ledger provides thread-safe access to the deduplication state.
type Ledger struct {
	path   string
	logger *slog.Logger

	mu      sync.RWMutex
	records map[string]Record
	claims  map[string]struct{}
	journal *os.File
}

// Open loads the ledger at path. A missing snapshot yields an empty ledger;
// a corrupt one is logged and ignored so a run never aborts on ledger damage.
// Any journal left behind by an unclean exit is replayed on top of the
// snapshot before the ledger is returned.
func Open(path string, logger *slog.Logger) *Ledger {
	if logger == nil {
		logger = logging.NewNop()
	}
	logger = logging.NewComponentLogger(logger, "ledger")

	l := &Ledger{
		path:    path,
		logger:  logger,
		records: make(map[string]Record),
		claims:  make(map[string]struct{}),
	}

	if err := l.loadSnapshot(); err != nil {
		logger.Warn("failed to load dedup ledger",
			logging.String(logging.FieldEventType, "ledger_load_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "ledger will start empty"),
			logging.String(logging.FieldImpact, "previously backed up items may be downloaded again"))
		l.records = make(map[string]Record)
	}
	l.replayJournal()

	return l
}

// Contains reports whether a committed record exists for the identity.
func (l *Ledger) Contains(identity string) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()

	_, found := l.records[identity]
	return found
}

// Lookup returns the committed record for the identity if present.
func (l *Ledger) Lookup(identity string) (Record, bool) {
	l.mu.RLock()
	defer l.mu.RUnlock()

	record, found := l.records[identity]
	return record, found
}

// Claim reserves an identity for processing. It returns false when a
// committed record already exists or another worker holds the claim, so at
// most one worker transfers a given identity.
func (l *Ledger) Claim(identity string) bool {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return false
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if _, committed := l.records[identity]; committed {
		return false
	}
	if _, claimed := l.claims[identity]; claimed {
		return false
	}
	l.claims[identity] = struct{}{}
	return true
}

// Release drops an uncommitted claim so the identity can be retried later.
func (l *Ledger) Release(identity string) {
	l.mu.Lock()
	defer l.mu.Unlock()

	delete(l.claims, identity)
}

// Commit stores the record for the identity and releases its claim. The
// record is appended to the journal and synced before it becomes visible,
// so it survives a crash that happens before the final snapshot. The record
// is published in memory even when the journal append fails; the returned
// error then reports the lost durability only.
func (l *Ledger) Commit(identity string, record Record) error {
	identity = strings.TrimSpace(identity)
	if identity == "" {
		return errors.New("identity cannot be empty")
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	journalErr := l.appendJournal(journalEntry{
		Identity:     identity,
		Hash:         record.Hash,
		Filename:     record.Filename,
		DownloadTime: record.DownloadTime,
	})

	l.records[identity] = record
	delete(l.claims, identity)

	if journalErr != nil {
		return fmt.Errorf("journal commit: %w", journalErr)
	}
	return nil
}

// Len returns the number of committed records.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()

	return len(l.records)
}

// Save writes the full snapshot atomically and retires the journal. On
// failure the journal is kept so no committed record loses durability.
func (l *Ledger) Save() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	data, err := json.MarshalIndent(l.records, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal ledger: %w", err)
	}

	if err := fileutil.WriteFileAtomic(l.path, data, 0o644); err != nil {
		return fmt.Errorf("write ledger snapshot: %w", err)
	}

	if l.journal != nil {
		_ = l.journal.Close()
		l.journal = nil
	}
	if err := os.Remove(l.journalPath()); err != nil && !errors.Is(err, fs.ErrNotExist) {
		l.logger.Warn("failed to remove ledger journal",
			logging.String(logging.FieldEventType, "ledger_journal_remove_failed"),
			logging.Error(err),
			logging.String(logging.FieldErrorHint, "stale journal will be replayed on next open"))
	}

	l.logger.Debug("saved dedup ledger",
		logging.Int("record_count", len(l.records)),
		logging.String("path", l.path))
	return nil
}

// Close releases the journal handle without snapshotting.
func (l *Ledger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.journal == nil {
		return nil
	}
	err := l.journal.Close()
	l.journal = nil
	return err
}

func (l *Ledger) journalPath() string {
	return l.path + ".journal"
}

// loadSnapshot reads the snapshot from disk into memory.
func (l *Ledger) loadSnapshot() error {
	data, err := os.ReadFile(l.path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil // fresh start
		}
		return fmt.Errorf("read ledger file: %w", err)
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return nil
	}

	var records map[string]Record
	if err := json.Unmarshal(data, &records); err != nil {
		return fmt.Errorf("parse ledger file: %w", err)
	}

	l.records = make(map[string]Record, len(records))
	for identity, record := range records {
		if strings.TrimSpace(identity) != "" {
			l.records[identity] = record
		}
	}

	l.logger.Debug("loaded dedup ledger",
		logging.Int("record_count", len(l.records)),
		logging.String("path", l.path))
	return nil
}

// replayJournal applies commits recorded since the last snapshot. Garbled
// lines (typically a partial trailing write from a crash) are skipped.
func (l *Ledger) replayJournal() {
	file, err := os.Open(l.journalPath())
	if err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			l.logger.Warn("failed to open ledger journal",
				logging.String(logging.FieldEventType, "ledger_journal_open_failed"),
				logging.Error(err),
				logging.String(logging.FieldImpact, "commits since the last snapshot are not recovered"))
		}
		return
	}
	defer file.Close()

	replayed := 0
	skipped := 0
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := bytes.TrimSpace(scanner.Bytes())
		if len(line) == 0 {
			continue
		}
		var entry journalEntry
		if err := json.Unmarshal(line, &entry); err != nil || strings.TrimSpace(entry.Identity) == "" {
			skipped++
			continue
		}
		l.records[entry.Identity] = Record{
			Hash:         entry.Hash,
			Filename:     entry.Filename,
			DownloadTime: entry.DownloadTime,
		}
		replayed++
	}
	if err := scanner.Err(); err != nil {
		l.logger.Warn("failed to read ledger journal",
			logging.String(logging.FieldEventType, "ledger_journal_read_failed"),
			logging.Error(err))
	}

	if replayed > 0 || skipped > 0 {
		l.logger.Info("replayed ledger journal",
			logging.Int("replayed", replayed),
			logging.Int("skipped", skipped),
			logging.String("path", l.journalPath()))
	}
}

// appendJournal writes one commit line and syncs it. Callers hold l.mu.
func (l *Ledger) appendJournal(entry journalEntry) error {
	if l.journal == nil {
		if err := os.MkdirAll(filepath.Dir(l.journalPath()), 0o755); err != nil {
			return fmt.Errorf("create ledger directory: %w", err)
		}
		file, err := os.OpenFile(l.journalPath(), os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
		if err != nil {
			return fmt.Errorf("open journal: %w", err)
		}
		l.journal = file
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("marshal journal entry: %w", err)
	}
	data = append(data, '\n')

	if _, err := l.journal.Write(data); err != nil {
		return fmt.Errorf("append journal entry: %w", err)
	}
	if err := l.journal.Sync(); err != nil {
		return fmt.Errorf("sync journal: %w", err)
	}
	return nil
}
