package transaction

import (
	"testing"
	"time"
)

func day(d int) time.Time {
	return time.Date(2024, time.March, d, 0, 0, 0, 0, time.UTC)
}

func assertNonIncreasing(t *testing.T, items []Transaction) {
	t.Helper()
	for i := 1; i < len(items); i++ {
		if items[i].Date.After(items[i-1].Date) {
			t.Fatalf("item %d (%s) is newer than item %d (%s)", i, items[i].Date, i-1, items[i-1].Date)
		}
	}
}

func TestMerge(t *testing.T) {
	live := []Transaction{
		{ID: "l1", Date: day(3), Source: SourceLive},
		{ID: "l2", Date: day(10), Source: SourceLive},
		{ID: "l3", Date: day(1), Source: SourceLive},
	}
	transfers := []Transaction{
		{ID: "t1", Date: day(5), Source: SourceTransfer},
		{ID: "t2", Date: day(12), Source: SourceTransfer},
	}

	tests := []struct {
		name      string
		live      []Transaction
		transfers []Transaction
		wantIDs   []string
	}{
		{"both sources", live, transfers, []string{"t2", "l2", "t1", "l1", "l3"}},
		{"no transfers", live, nil, []string{"l2", "l1", "l3"}},
		{"no live", nil, transfers, []string{"t2", "t1"}},
		{"both empty", nil, nil, []string{}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Merge(tt.live, tt.transfers)

			assertNonIncreasing(t, got)
			if len(got) != len(tt.wantIDs) {
				t.Fatalf("len = %d, want %d", len(got), len(tt.wantIDs))
			}
			for i, id := range tt.wantIDs {
				if got[i].ID != id {
					t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, id)
				}
			}
		})
	}
}

func TestMerge_DropsEmptyEntries(t *testing.T) {
	got := Merge([]Transaction{{ID: "a", Date: day(1)}, {}}, []Transaction{{}})

	if len(got) != 1 || got[0].ID != "a" {
		t.Errorf("Merge() = %+v, want only entry a", got)
	}
}

func TestMerge_TiesKeepInputOrder(t *testing.T) {
	live := []Transaction{{ID: "l1", Date: day(4)}, {ID: "l2", Date: day(4)}}
	transfers := []Transaction{{ID: "t1", Date: day(4)}}

	got := Merge(live, transfers)

	want := []string{"l1", "l2", "t1"}
	for i, id := range want {
		if got[i].ID != id {
			t.Errorf("got[%d].ID = %q, want %q", i, got[i].ID, id)
		}
	}
}

func TestMerge_DoesNotMutateInputs(t *testing.T) {
	live := []Transaction{{ID: "old", Date: day(1)}, {ID: "new", Date: day(2)}}

	Merge(live)

	if live[0].ID != "old" {
		t.Error("Merge() reordered its input slice")
	}
}
