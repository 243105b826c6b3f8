package ledger

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"
)

func TestOpenMissingFileStartsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deduplication.json")

	l := Open(path, nil)
	if l.Len() != 0 {
		t.Fatalf("expected empty ledger, got %d records", l.Len())
	}
	if l.Contains("anything") {
		t.Fatal("empty ledger should not contain records")
	}
}

func TestClaimCommitLookup(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deduplication.json")
	l := Open(path, nil)

	if !l.Claim("item-1") {
		t.Fatal("first claim should succeed")
	}
	if l.Claim("item-1") {
		t.Fatal("second claim on held identity should fail")
	}

	record := Record{Hash: "sha256:abc", Filename: "20230501_100000_IMG_1.jpg", DownloadTime: 1682935200}
	if err := l.Commit("item-1", record); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}

	if !l.Contains("item-1") {
		t.Fatal("committed identity should be contained")
	}
	got, ok := l.Lookup("item-1")
	if !ok {
		t.Fatal("Lookup failed to find committed record")
	}
	if got.Hash != record.Hash {
		t.Errorf("hash mismatch: got %q, want %q", got.Hash, record.Hash)
	}
	if got.Filename != record.Filename {
		t.Errorf("filename mismatch: got %q, want %q", got.Filename, record.Filename)
	}

	if l.Claim("item-1") {
		t.Fatal("claim on committed identity should fail")
	}
}

func TestReleaseAllowsReclaim(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deduplication.json")
	l := Open(path, nil)

	if !l.Claim("item-1") {
		t.Fatal("first claim should succeed")
	}
	l.Release("item-1")
	if !l.Claim("item-1") {
		t.Fatal("claim after release should succeed")
	}
}

func TestClaimEmptyIdentity(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "deduplication.json"), nil)

	if l.Claim("") {
		t.Error("claim on empty identity should fail")
	}
	if l.Claim("   ") {
		t.Error("claim on whitespace identity should fail")
	}
}

func TestCommitSurvivesReopenWithoutSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deduplication.json")

	l := Open(path, nil)
	l.Claim("item-1")
	if err := l.Commit("item-1", Record{Hash: "sha256:abc", Filename: "a.jpg", DownloadTime: 1}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if err := l.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	// No Save: the commit must come back from the journal alone.
	reopened := Open(path, nil)
	if !reopened.Contains("item-1") {
		t.Fatal("commit lost across reopen without snapshot")
	}
	got, _ := reopened.Lookup("item-1")
	if got.Hash != "sha256:abc" {
		t.Errorf("hash mismatch after replay: got %q", got.Hash)
	}
}

func TestSaveCompactsJournal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deduplication.json")

	l := Open(path, nil)
	l.Claim("item-1")
	if err := l.Commit("item-1", Record{Hash: "sha256:abc", Filename: "a.jpg", DownloadTime: 1}); err != nil {
		t.Fatalf("Commit failed: %v", err)
	}
	if _, err := os.Stat(path + ".journal"); err != nil {
		t.Fatalf("expected journal after commit: %v", err)
	}

	if err := l.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}
	if _, err := os.Stat(path + ".journal"); !os.IsNotExist(err) {
		t.Fatalf("expected journal removed after Save, stat returned %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	var snapshot map[string]map[string]any
	if err := json.Unmarshal(data, &snapshot); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}
	entry, ok := snapshot["item-1"]
	if !ok {
		t.Fatal("snapshot missing committed identity")
	}
	for _, key := range []string{"hash", "filename", "download_time"} {
		if _, ok := entry[key]; !ok {
			t.Errorf("snapshot entry missing %q key", key)
		}
	}

	reopened := Open(path, nil)
	if !reopened.Contains("item-1") {
		t.Fatal("snapshot lost the committed record")
	}
}

func TestCorruptSnapshotStartsEmptyButReplaysJournal(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deduplication.json")

	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatal(err)
	}
	journal := `{"identity":"item-2","hash":"sha256:def","filename":"b.jpg","download_time":2}` + "\n"
	if err := os.WriteFile(path+".journal", []byte(journal), 0o644); err != nil {
		t.Fatal(err)
	}

	l := Open(path, nil)
	if l.Contains("item-1") {
		t.Fatal("corrupt snapshot should be discarded")
	}
	if !l.Contains("item-2") {
		t.Fatal("journal should still be replayed over a discarded snapshot")
	}
}

func TestJournalSkipsGarbledTrailingLine(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deduplication.json")

	journal := `{"identity":"item-1","hash":"sha256:abc","filename":"a.jpg","download_time":1}` + "\n" +
		`{"identity":"item-2","ha` // torn write
	if err := os.WriteFile(path+".journal", []byte(journal), 0o644); err != nil {
		t.Fatal(err)
	}

	l := Open(path, nil)
	if l.Len() != 1 {
		t.Fatalf("expected 1 replayed record, got %d", l.Len())
	}
	if !l.Contains("item-1") {
		t.Fatal("intact journal line should be replayed")
	}
}

func TestConcurrentClaimSingleWinner(t *testing.T) {
	l := Open(filepath.Join(t.TempDir(), "deduplication.json"), nil)

	const workers = 16
	var wg sync.WaitGroup
	wins := make(chan bool, workers)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			wins <- l.Claim("contested")
		}()
	}
	wg.Wait()
	close(wins)

	winners := 0
	for won := range wins {
		if won {
			winners++
		}
	}
	if winners != 1 {
		t.Fatalf("expected exactly one winning claim, got %d", winners)
	}
}

func TestSaveKeepsUnrelatedRecords(t *testing.T) {
	path := filepath.Join(t.TempDir(), "deduplication.json")

	l := Open(path, nil)
	for _, id := range []string{"a", "b", "c"} {
		l.Claim(id)
		if err := l.Commit(id, Record{Hash: "sha256:" + id, Filename: id + ".jpg", DownloadTime: 1}); err != nil {
			t.Fatalf("Commit %s failed: %v", id, err)
		}
	}
	if err := l.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reopened := Open(path, nil)
	if reopened.Len() != 3 {
		t.Fatalf("expected 3 records after reopen, got %d", reopened.Len())
	}
}
