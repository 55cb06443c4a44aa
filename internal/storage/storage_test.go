package storage

import (
	"bytes"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"meetsum/internal/model"
)

func TestStageWritesFullFile(t *testing.T) {
	dir := t.TempDir()
	s := NewStager(dir)
	data := bytes.Repeat([]byte{0xAB}, 64*1024)

	path, err := s.Stage(data, "standup.m4a")
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}

	if filepath.Dir(path) != dir {
		t.Errorf("staged under %s, want %s", filepath.Dir(path), dir)
	}
	if filepath.Ext(path) != ".m4a" {
		t.Errorf("extension = %q, want .m4a", filepath.Ext(path))
	}

	got, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile() error = %v", err)
	}
	if !bytes.Equal(got, data) {
		t.Error("staged content differs from upload")
	}
}

func TestStageUniquePaths(t *testing.T) {
	s := NewStager(t.TempDir())

	a, err := s.Stage([]byte("one"), "same.wav")
	if err != nil {
		t.Fatal(err)
	}
	b, err := s.Stage([]byte("two"), "same.wav")
	if err != nil {
		t.Fatal(err)
	}
	if a == b {
		t.Fatalf("two stages returned the same path %s", a)
	}
}

func TestStageEmpty(t *testing.T) {
	dir := t.TempDir()
	s := NewStager(dir)

	if _, err := s.Stage(nil, "empty.mp3"); !errors.Is(err, ErrEmptyUpload) {
		t.Fatalf("Stage() error = %v, want ErrEmptyUpload", err)
	}

	entries, _ := os.ReadDir(dir)
	if len(entries) != 0 {
		t.Errorf("empty upload left %d files behind", len(entries))
	}
}

func TestStageUnwritableDir(t *testing.T) {
	parent := t.TempDir()
	blocker := filepath.Join(parent, "file")
	if err := os.WriteFile(blocker, []byte("x"), 0o600); err != nil {
		t.Fatal(err)
	}

	s := NewStager(filepath.Join(blocker, "uploads"))
	if _, err := s.Stage([]byte("data"), "a.wav"); err == nil {
		t.Fatal("expected error when upload dir cannot be created")
	}
}

func TestStageDefaultsToTempDir(t *testing.T) {
	t.Setenv("TMPDIR", t.TempDir())
	s := NewStager("")

	path, err := s.Stage([]byte("data"), "noext")
	if err != nil {
		t.Fatalf("Stage() error = %v", err)
	}
	defer os.Remove(path)

	if !strings.HasPrefix(filepath.Base(path), "upload-") {
		t.Errorf("unexpected temp name %s", path)
	}
}

func TestRemove(t *testing.T) {
	s := NewStager(t.TempDir())
	path, err := s.Stage([]byte("data"), "a.mp3")
	if err != nil {
		t.Fatal(err)
	}

	if err := s.Remove(path); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Errorf("file still exists after Remove: %v", err)
	}
	if err := s.Remove(path); err == nil {
		t.Error("second Remove should fail")
	}
}

func TestTempSuffix(t *testing.T) {
	tests := []struct {
		in, want string
	}{
		{"meeting.mp3", ".mp3"},
		{"dir/meeting.WAV", ".WAV"},
		{"noext", ""},
		{"weird.a*b", ""},
	}
	for _, tt := range tests {
		if got := tempSuffix(tt.in); got != tt.want {
			t.Errorf("tempSuffix(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestFingerprint(t *testing.T) {
	a := Fingerprint([]byte("audio"))
	b := Fingerprint([]byte("audio"))
	c := Fingerprint([]byte("other"))

	if len(a) != 64 {
		t.Errorf("digest length = %d, want 64 hex chars", len(a))
	}
	if a != b {
		t.Error("same input produced different digests")
	}
	if a == c {
		t.Error("different input produced the same digest")
	}
}

func TestRunStoreSaveGet(t *testing.T) {
	store := NewRunStore(10)
	run := &model.Run{ID: "r1", State: model.StateDone, BulletPoints: []string{"a"}}
	store.Save(run)

	run.BulletPoints[0] = "mutated"

	got, err := store.Get("r1")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if got.BulletPoints[0] != "a" {
		t.Error("store shares slices with caller")
	}

	got.State = model.StateFailed
	again, _ := store.Get("r1")
	if again.State != model.StateDone {
		t.Error("Get returned a shared pointer")
	}

	if _, err := store.Get("missing"); !errors.Is(err, ErrRunNotFound) {
		t.Errorf("Get(missing) error = %v, want ErrRunNotFound", err)
	}
}

func TestRunStoreEviction(t *testing.T) {
	store := NewRunStore(2)
	store.Save(&model.Run{ID: "a"})
	store.Save(&model.Run{ID: "b"})
	store.Save(&model.Run{ID: "c"})

	if store.Len() != 2 {
		t.Fatalf("Len() = %d, want 2", store.Len())
	}
	if _, err := store.Get("a"); !errors.Is(err, ErrRunNotFound) {
		t.Error("oldest run was not evicted")
	}
	if latest := store.Latest(); latest == nil || latest.ID != "c" {
		t.Errorf("Latest() = %+v, want c", latest)
	}
}

func TestRunStoreUpdateStatus(t *testing.T) {
	store := NewRunStore(5)
	now := time.Now()

	store.UpdateStatus(model.Status{RunID: "r1", State: model.StateStaged, At: now})
	store.UpdateStatus(model.Status{RunID: "r1", State: model.StateTranscribing, At: now})

	run, err := store.Get("r1")
	if err != nil {
		t.Fatal(err)
	}
	if run.State != model.StateTranscribing {
		t.Errorf("State = %s, want transcribing", run.State)
	}
	if len(run.History) != 2 {
		t.Errorf("History length = %d, want 2", len(run.History))
	}

	store.Save(&model.Run{ID: "r1", State: model.StateDone})
	run, _ = store.Get("r1")
	if run.State != model.StateDone {
		t.Errorf("final Save did not replace in-flight entry: %s", run.State)
	}
	if store.Len() != 1 {
		t.Errorf("Len() = %d, want 1", store.Len())
	}
}
