package filtersort

import (
	"testing"

	"github.com/yungbote/dbhealth-backend/internal/types"
)

func intptr(n int) *int         { return &n }
func f64ptr(f float64) *float64 { return &f }
func strptr(s string) *string   { return &s }

func findings() []*types.FindingRecord {
	return []*types.FindingRecord{
		{Ordinal: 0, Finding: strptr("Backups Not Performed Recently"), Priority: intptr(1)},
		{Ordinal: 1, Finding: strptr("Security Admins"), Priority: intptr(230)},
		{Ordinal: 2, Finding: strptr("Informational"), Priority: intptr(-1)},
		{Ordinal: 3, Finding: strptr("No priority")},
		{Ordinal: 4, Finding: strptr("Backups Not Performed Recently"), Priority: intptr(50)},
	}
}

func TestFilterFindingsDropsUnusablePriorities(t *testing.T) {
	got := FilterFindings(findings(), nil, nil)
	if len(got) != 3 {
		t.Fatalf("got %d records, want 3 (negative and nil priority dropped)", len(got))
	}
	for _, record := range got {
		if record.Priority == nil || *record.Priority < 0 {
			t.Fatalf("unusable priority survived: %+v", record)
		}
	}
}

func TestFilterFindingsPriorityCeiling(t *testing.T) {
	got := FilterFindings(findings(), intptr(100), nil)
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	for _, record := range got {
		if *record.Priority > 100 {
			t.Fatalf("priority %d above ceiling", *record.Priority)
		}
	}
}

func TestFilterFindingsByGroup(t *testing.T) {
	got := FilterFindings(findings(), nil, []string{"Backups Not Performed Recently"})
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	// An explicit empty selection matches nothing; nil means no filter.
	got = FilterFindings(findings(), nil, []string{})
	if len(got) != 0 {
		t.Fatalf("empty selection matched %d records", len(got))
	}
}

func TestFindingGroups(t *testing.T) {
	groups := FindingGroups(findings())
	want := []string{"Backups Not Performed Recently", "Informational", "No priority", "Security Admins"}
	if len(groups) != len(want) {
		t.Fatalf("groups = %v, want %v", groups, want)
	}
	for i := range want {
		if groups[i] != want[i] {
			t.Fatalf("groups = %v, want %v", groups, want)
		}
	}
}

func indexFindings() []*types.IndexFindingRecord {
	return []*types.IndexFindingRecord{
		{Ordinal: 0, Finding: strptr("Over-Indexing: dbo.orders"), Priority: intptr(50)},
		{Ordinal: 1, Finding: strptr("Over-Indexing: dbo.customers"), Priority: intptr(50)},
		{Ordinal: 2, Finding: strptr("Indexaphobia: dbo.events"), Priority: intptr(100)},
		{Ordinal: 3, Finding: strptr("No colon here"), Priority: intptr(10)},
	}
}

func TestIndexFindingGroupsUsePrefixBeforeColon(t *testing.T) {
	groups := IndexFindingGroups(indexFindings())
	want := []string{"Indexaphobia", "Over-Indexing"}
	if len(groups) != 2 || groups[0] != want[0] || groups[1] != want[1] {
		t.Fatalf("groups = %v, want %v", groups, want)
	}

	got := FilterIndexFindings(indexFindings(), nil, []string{"Over-Indexing"})
	if len(got) != 2 {
		t.Fatalf("got %d records, want 2", len(got))
	}
	for _, record := range got {
		if record.Ordinal != 0 && record.Ordinal != 1 {
			t.Fatalf("unexpected record %d in group filter", record.Ordinal)
		}
	}
}

func cacheRecords() []*types.QueryCacheRecord {
	return []*types.QueryCacheRecord{
		{Ordinal: 0, QueryText: strptr("SELECT a"), AvgCPUMS: f64ptr(5), TotalCPUMS: f64ptr(500)},
		{Ordinal: 1, QueryText: strptr("SELECT b"), AvgCPUMS: f64ptr(80), TotalCPUMS: f64ptr(160)},
		{Ordinal: 2, QueryText: strptr("SELECT c")},
		{Ordinal: 3, QueryText: strptr("SELECT d"), AvgCPUMS: f64ptr(30), TotalCPUMS: f64ptr(9000)},
	}
}

func TestFilterQueryCacheThresholds(t *testing.T) {
	got := FilterQueryCache(cacheRecords(), f64ptr(10), nil)
	if len(got) != 2 {
		t.Fatalf("avg cpu filter kept %d records, want 2", len(got))
	}
	got = FilterQueryCache(cacheRecords(), f64ptr(10), f64ptr(1000))
	if len(got) != 1 || got[0].Ordinal != 3 {
		t.Fatalf("combined filter = %v", got)
	}
	// Records missing the filtered statistic never pass a threshold.
	got = FilterQueryCache(cacheRecords(), f64ptr(0), nil)
	for _, record := range got {
		if record.AvgCPUMS == nil {
			t.Fatalf("record without avg cpu passed the filter")
		}
	}
}

func TestSortQueryCacheDescendingWithMissingAsZero(t *testing.T) {
	records := cacheRecords()
	SortQueryCache(records, SortTotalCPU, true)
	wantOrder := []int{3, 0, 1, 2}
	for i, want := range wantOrder {
		if records[i].Ordinal != want {
			t.Fatalf("position %d has ordinal %d, want %d", i, records[i].Ordinal, want)
		}
	}

	SortQueryCache(records, SortAvgCPU, false)
	if records[0].Ordinal != 2 {
		t.Fatalf("missing avg cpu should sort first ascending, got %d", records[0].Ordinal)
	}
}

func TestSortQueryCacheUnknownColumnKeepsOrder(t *testing.T) {
	records := cacheRecords()
	SortQueryCache(records, CacheSortColumn("reads"), true)
	for i, record := range records {
		if record.Ordinal != i {
			t.Fatalf("order changed for unknown sort column")
		}
	}
}
