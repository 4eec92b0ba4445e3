// Package filtersort narrows and orders diagnostic records for display.
// Filters are forgiving: a nil option means "no filter" and records
// missing the filtered field are simply dropped or kept per the
// original browsing behavior.
package filtersort

import (
	"sort"
	"strings"

	"github.com/yungbote/dbhealth-backend/internal/types"
)

// FilterFindings keeps sp_Blitz records with a usable priority (present
// and non-negative), applies the optional priority ceiling, then the
// optional finding-group selection. For sp_Blitz the group is the whole
// finding text.
func FilterFindings(records []*types.FindingRecord, maxPriority *int, groups []string) []*types.FindingRecord {
	out := make([]*types.FindingRecord, 0, len(records))
	selected := toSet(groups)
	for _, record := range records {
		if record.Priority == nil || *record.Priority < 0 {
			continue
		}
		if maxPriority != nil && *record.Priority > *maxPriority {
			continue
		}
		if selected != nil {
			if record.Finding == nil {
				continue
			}
			if _, ok := selected[*record.Finding]; !ok {
				continue
			}
		}
		out = append(out, record)
	}
	return out
}

// FindingGroups lists the distinct sp_Blitz group values, sorted.
func FindingGroups(records []*types.FindingRecord) []string {
	seen := map[string]struct{}{}
	for _, record := range records {
		if record.Finding != nil {
			seen[*record.Finding] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

// FilterIndexFindings is the sp_BlitzIndex variant: the group is the
// finding prefix before the first colon ("Over-Indexing: ..." groups
// under "Over-Indexing").
func FilterIndexFindings(records []*types.IndexFindingRecord, maxPriority *int, groups []string) []*types.IndexFindingRecord {
	out := make([]*types.IndexFindingRecord, 0, len(records))
	selected := toSet(groups)
	for _, record := range records {
		if record.Priority == nil || *record.Priority < 0 {
			continue
		}
		if maxPriority != nil && *record.Priority > *maxPriority {
			continue
		}
		if selected != nil {
			group, ok := indexFindingGroup(record)
			if !ok {
				continue
			}
			if _, ok := selected[group]; !ok {
				continue
			}
		}
		out = append(out, record)
	}
	return out
}

// IndexFindingGroups lists the distinct prefix groups, sorted. Findings
// without a colon contribute no group.
func IndexFindingGroups(records []*types.IndexFindingRecord) []string {
	seen := map[string]struct{}{}
	for _, record := range records {
		if group, ok := indexFindingGroup(record); ok {
			seen[group] = struct{}{}
		}
	}
	return sortedKeys(seen)
}

func indexFindingGroup(record *types.IndexFindingRecord) (string, bool) {
	if record.Finding == nil || !strings.Contains(*record.Finding, ":") {
		return "", false
	}
	return strings.SplitN(*record.Finding, ":", 2)[0], true
}

// FilterQueryCache applies optional CPU floors to sp_BlitzCache
// records.
func FilterQueryCache(records []*types.QueryCacheRecord, minAvgCPU, minTotalCPU *float64) []*types.QueryCacheRecord {
	out := make([]*types.QueryCacheRecord, 0, len(records))
	for _, record := range records {
		if minAvgCPU != nil && (record.AvgCPUMS == nil || *record.AvgCPUMS < *minAvgCPU) {
			continue
		}
		if minTotalCPU != nil && (record.TotalCPUMS == nil || *record.TotalCPUMS < *minTotalCPU) {
			continue
		}
		out = append(out, record)
	}
	return out
}

// CacheSortColumn names a sortable sp_BlitzCache statistic.
type CacheSortColumn string

const (
	SortAvgCPU   CacheSortColumn = "avg_cpu_ms"
	SortTotalCPU CacheSortColumn = "total_cpu_ms"
)

// SortQueryCache orders records by one statistic, missing values
// sorting as zero. Unknown columns leave the order untouched. The sort
// is stable so equal records keep their run ordinals' relative order.
func SortQueryCache(records []*types.QueryCacheRecord, by CacheSortColumn, desc bool) {
	key := func(r *types.QueryCacheRecord) float64 {
		switch by {
		case SortAvgCPU:
			if r.AvgCPUMS != nil {
				return *r.AvgCPUMS
			}
		case SortTotalCPU:
			if r.TotalCPUMS != nil {
				return *r.TotalCPUMS
			}
		}
		return 0
	}
	if by != SortAvgCPU && by != SortTotalCPU {
		return
	}
	sort.SliceStable(records, func(i, j int) bool {
		if desc {
			return key(records[i]) > key(records[j])
		}
		return key(records[i]) < key(records[j])
	})
}

func toSet(values []string) map[string]struct{} {
	if values == nil {
		return nil
	}
	set := make(map[string]struct{}, len(values))
	for _, v := range values {
		set[v] = struct{}{}
	}
	return set
}

func sortedKeys(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
