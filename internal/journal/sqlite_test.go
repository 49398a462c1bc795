package journal

import (
	"context"
	"path/filepath"
	"testing"
	"time"
)

func newTestJournal(t *testing.T) *SQLiteJournal {
	t.Helper()
	j, err := NewSQLiteJournal(filepath.Join(t.TempDir(), "journal.db"))
	if err != nil {
		t.Fatalf("NewSQLiteJournal: %v", err)
	}
	t.Cleanup(func() { j.Close() })
	return j
}

func TestRecordAndRecent(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()
	base := time.Date(2025, 3, 3, 9, 32, 0, 0, time.UTC)

	entries := []Entry{
		{Time: base, StrategyID: "1", StrategyName: "Monday SPX Calendar", Kind: KindTrigger, Message: "scheduled"},
		{Time: base.Add(time.Second), StrategyID: "1", StrategyName: "Monday SPX Calendar", Kind: KindOpen, OrderID: "987", Message: "entry price 5.00"},
		{Time: base.Add(2 * time.Second), StrategyID: "1", StrategyName: "Monday SPX Calendar", Kind: KindTakeProfit, OrderID: "988", Message: "limit 6.00"},
	}
	for _, e := range entries {
		if err := j.Record(ctx, e); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := j.Recent(ctx, 10)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 3 {
		t.Fatalf("expected 3 entries, got %d", len(got))
	}
	// Newest first.
	if got[0].Kind != KindTakeProfit || got[2].Kind != KindTrigger {
		t.Errorf("wrong order: %s .. %s", got[0].Kind, got[2].Kind)
	}
	if got[1].OrderID != "987" {
		t.Errorf("OrderID = %q, want 987", got[1].OrderID)
	}
	if got[0].StrategyName != "Monday SPX Calendar" {
		t.Errorf("StrategyName = %q", got[0].StrategyName)
	}
}

func TestRecent_Limit(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		entry := Entry{StrategyID: "1", StrategyName: "Test", Kind: KindAbort, Message: "x"}
		if err := j.Record(ctx, entry); err != nil {
			t.Fatalf("Record: %v", err)
		}
	}

	got, err := j.Recent(ctx, 2)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 2 {
		t.Errorf("expected 2 entries, got %d", len(got))
	}
}

func TestRecord_DefaultsTimestamp(t *testing.T) {
	j := newTestJournal(t)
	ctx := context.Background()

	if err := j.Record(ctx, Entry{StrategyID: "1", StrategyName: "Test", Kind: KindClose}); err != nil {
		t.Fatalf("Record: %v", err)
	}

	got, err := j.Recent(ctx, 1)
	if err != nil {
		t.Fatalf("Recent: %v", err)
	}
	if len(got) != 1 || got[0].Time.IsZero() {
		t.Error("zero entry time must be stamped at record time")
	}
}
