package session

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/frankyzip/moduspractica/internal/dateutil"
	"github.com/frankyzip/moduspractica/internal/retention"
)

func testManager(t *testing.T) *Manager {
	t.Helper()
	return NewManager(filepath.Join(t.TempDir(), "sessions.json"))
}

func schedule(m *Manager, pieceID string, date time.Time) *Session {
	return m.Schedule(ScheduleInput{
		PieceID:           pieceID,
		SectionID:         "sec-" + pieceID,
		PieceTitle:        "Partita No. 2",
		BarRange:          "1-8",
		Date:              date,
		EstimatedDuration: 15,
		Difficulty:        retention.Hard,
		Tau:               3.5,
	})
}

func TestScheduleNormalizesDate(t *testing.T) {
	m := testManager(t)
	s := schedule(m, "p1", time.Date(2026, 3, 14, 18, 45, 12, 0, time.UTC))

	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !s.ScheduledDate.Equal(want) {
		t.Errorf("ScheduledDate = %v, want %v", s.ScheduledDate, want)
	}
	if s.Status != StatusScheduled {
		t.Errorf("Status = %q, want Scheduled", s.Status)
	}
	if s.ID == "" {
		t.Error("expected a generated id")
	}
}

func TestCompleteSetsDateAndReason(t *testing.T) {
	m := testManager(t)
	s := schedule(m, "p1", time.Now())

	got, err := m.Complete(s.ID, ReasonTargetReached)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if !got.Status.Is(StatusCompleted) {
		t.Errorf("Status = %q, want Completed", got.Status)
	}
	if got.CompletionDate == nil || !dateutil.IsToday(*got.CompletionDate) {
		t.Errorf("CompletionDate = %v, want today", got.CompletionDate)
	}
	if got.CompletionReason != ReasonTargetReached {
		t.Errorf("CompletionReason = %q", got.CompletionReason)
	}
}

func TestCompleteIdempotent(t *testing.T) {
	m := testManager(t)
	s := schedule(m, "p1", time.Now())

	first, _ := m.Complete(s.ID, ReasonTargetReached)
	date := *first.CompletionDate

	second, err := m.Complete(s.ID, ReasonFrustration)
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if second.CompletionReason != ReasonTargetReached {
		t.Errorf("CompletionReason changed to %q", second.CompletionReason)
	}
	if !second.CompletionDate.Equal(date) {
		t.Errorf("CompletionDate changed to %v", second.CompletionDate)
	}
}

func TestCompleteNotFound(t *testing.T) {
	m := testManager(t)
	if _, err := m.Complete("nope", ReasonTargetReached); err != ErrNotFound {
		t.Errorf("err = %v, want ErrNotFound", err)
	}
}

func TestCancelTerminalNoOp(t *testing.T) {
	m := testManager(t)
	s := schedule(m, "p1", time.Now())
	m.Complete(s.ID, ReasonTargetReached)

	if err := m.Cancel(s.ID); err != nil {
		t.Fatalf("Cancel: %v", err)
	}
	got, _ := m.Get(s.ID)
	if !got.Status.Is(StatusCompleted) {
		t.Errorf("completed session was canceled: %q", got.Status)
	}

	c := schedule(m, "p1", time.Now())
	m.Cancel(c.ID)
	if err := m.Cancel(c.ID); err != nil {
		t.Fatalf("second Cancel: %v", err)
	}
}

func TestCancelCaseInsensitiveCompletedGuard(t *testing.T) {
	m := testManager(t)
	s := schedule(m, "p1", time.Now())
	s.Status = Status("completed") // older documents carried lowercase

	m.Cancel(s.ID)
	got, _ := m.Get(s.ID)
	if !got.Status.Is(StatusCompleted) {
		t.Errorf("lowercase completed session was canceled: %q", got.Status)
	}
}

func TestCancelForPiece(t *testing.T) {
	m := testManager(t)
	a := schedule(m, "p1", time.Now())
	b := schedule(m, "p1", time.Now().AddDate(0, 0, 1))
	c := schedule(m, "p1", time.Now().AddDate(0, 0, 2))
	done := schedule(m, "p1", time.Now())
	other := schedule(m, "p2", time.Now())
	m.Complete(done.ID, ReasonTargetReached)

	n := m.CancelForPiece("p1")
	if n != 3 {
		t.Errorf("canceled %d sessions, want 3", n)
	}
	for _, id := range []string{a.ID, b.ID, c.ID} {
		s, _ := m.Get(id)
		if !s.Status.Is(StatusCanceled) {
			t.Errorf("session %s status = %q, want Canceled", id, s.Status)
		}
	}
	if s, _ := m.Get(done.ID); !s.Status.Is(StatusCompleted) {
		t.Errorf("completed session changed: %q", s.Status)
	}
	if s, _ := m.Get(other.ID); !s.Status.Is(StatusScheduled) {
		t.Errorf("other piece's session changed: %q", s.Status)
	}
}

func TestDueTodayStrictSameDay(t *testing.T) {
	m := testManager(t)
	now := time.Date(2026, 3, 14, 11, 0, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	today := schedule(m, "p1", now)
	schedule(m, "p1", now.AddDate(0, 0, -2)) // past-due, not re-surfaced
	schedule(m, "p1", now.AddDate(0, 0, 1))
	completed := schedule(m, "p1", now)
	m.Complete(completed.ID, ReasonTargetReached)

	due := m.DueToday()
	if len(due) != 1 {
		t.Fatalf("DueToday = %d sessions, want 1", len(due))
	}
	if due[0].ID != today.ID {
		t.Errorf("DueToday returned %s, want %s", due[0].ID, today.ID)
	}
	if len(m.All()) != 4 {
		t.Errorf("All = %d sessions, want 4", len(m.All()))
	}
}

func TestIsDueToday(t *testing.T) {
	m := testManager(t)
	now := time.Date(2026, 3, 14, 23, 59, 0, 0, time.UTC)
	m.now = func() time.Time { return now }

	s := schedule(m, "p1", now.Add(-23*time.Hour))
	if !m.IsDueToday(*s) {
		t.Error("same-day session should be due")
	}
	m.Cancel(s.ID)
	got, _ := m.Get(s.ID)
	if m.IsDueToday(*got) {
		t.Error("canceled session should not be due")
	}
}

func TestForPieceAndSection(t *testing.T) {
	m := testManager(t)
	schedule(m, "p1", time.Now())
	schedule(m, "p1", time.Now())
	schedule(m, "p2", time.Now())

	if got := len(m.ForPiece("p1")); got != 2 {
		t.Errorf("ForPiece(p1) = %d, want 2", got)
	}
	if got := len(m.ForSection("sec-p2")); got != 1 {
		t.Errorf("ForSection(sec-p2) = %d, want 1", got)
	}
}

func TestSaveLoadRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	m := NewManager(path)

	a := schedule(m, "p1", time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC))
	b := schedule(m, "p2", time.Date(2026, 3, 20, 9, 0, 0, 0, time.UTC))
	m.Complete(b.ID, ReasonTimeConstraint)
	m.Cancel(a.ID)

	if err := m.Save(); err != nil {
		t.Fatalf("Save: %v", err)
	}

	loaded := NewManager(path)
	if n := loaded.Load(); n != 2 {
		t.Fatalf("Load = %d sessions, want 2", n)
	}

	want := m.All()
	got := loaded.All()
	for i := range want {
		w, g := want[i], got[i]
		if g.ID != w.ID || g.PieceID != w.PieceID || g.SectionID != w.SectionID ||
			g.PieceTitle != w.PieceTitle || g.BarRange != w.BarRange ||
			!g.ScheduledDate.Equal(w.ScheduledDate) ||
			g.EstimatedDuration != w.EstimatedDuration ||
			g.Difficulty != w.Difficulty || g.Tau != w.Tau ||
			!g.Status.Is(w.Status) || g.CompletionReason != w.CompletionReason {
			t.Errorf("session %d differs after round trip:\n got %+v\nwant %+v", i, g, w)
		}
		if (g.CompletionDate == nil) != (w.CompletionDate == nil) {
			t.Errorf("session %d completion date presence differs", i)
		} else if g.CompletionDate != nil && !g.CompletionDate.Equal(*w.CompletionDate) {
			t.Errorf("session %d completion date = %v, want %v", i, g.CompletionDate, w.CompletionDate)
		}
	}
}

func TestLoadMissingFileInitializesEmpty(t *testing.T) {
	m := NewManager(filepath.Join(t.TempDir(), "absent", "sessions.json"))
	if n := m.Load(); n != 0 {
		t.Errorf("Load = %d, want 0", n)
	}
	if len(m.All()) != 0 {
		t.Error("expected empty set after missing-file load")
	}
}

func TestLoadCorruptFileInitializesEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	os.WriteFile(path, []byte("{not json"), 0644)

	m := NewManager(path)
	if n := m.Load(); n != 0 {
		t.Errorf("Load = %d, want 0", n)
	}
}

func TestLoadIgnoresUnknownFields(t *testing.T) {
	path := filepath.Join(t.TempDir(), "sessions.json")
	doc := `{"sessions":[{"id":"s1","piece_id":"p1","status":"Scheduled",
		"scheduled_date":"2026-03-14T08:00:00Z","legacy_field":true}],"extra":1}`
	os.WriteFile(path, []byte(doc), 0644)

	m := NewManager(path)
	if n := m.Load(); n != 1 {
		t.Fatalf("Load = %d, want 1", n)
	}
	s, err := m.Get("s1")
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	want := time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC)
	if !s.ScheduledDate.Equal(want) {
		t.Errorf("ScheduledDate = %v, want normalized %v", s.ScheduledDate, want)
	}
}

func TestSaveFailurePropagates(t *testing.T) {
	dir := t.TempDir()
	// The document path collides with an existing directory.
	blocked := filepath.Join(dir, "sessions.json")
	if err := os.MkdirAll(blocked, 0755); err != nil {
		t.Fatal(err)
	}
	m := NewManager(blocked)
	schedule(m, "p1", time.Now())
	if err := m.Save(); err == nil {
		t.Error("Save against a directory path should fail")
	}
}
