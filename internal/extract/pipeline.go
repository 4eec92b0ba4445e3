// Package extract implements the secondary extraction pipeline: it
// runs the follow-up command an index-finding record carries, walks the
// heterogeneous result sets that come back and persists the mapped
// index/finding children.
package extract

import (
	"context"
	"strings"

	"github.com/yungbote/dbhealth-backend/internal/catalog"
	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/repos"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

// SQLExecutor is the remote collaborator contract: run one command and
// return every result set it produced. Timeouts and retries are the
// executor's responsibility.
type SQLExecutor interface {
	Execute(ctx context.Context, command string) ([]types.ResultSet, error)
}

type Pipeline struct {
	executor SQLExecutor
	details  repos.DetailRepo
	log      *logger.Logger
}

func NewPipeline(executor SQLExecutor, details repos.DetailRepo, baseLog *logger.Logger) *Pipeline {
	return &Pipeline{
		executor: executor,
		details:  details,
		log:      baseLog.With("component", "ExtractPipeline"),
	}
}

// ExtractDetails runs the record's secondary command and replaces its
// detail children. Records without a runnable procedure invocation are
// a no-op. The remote fetch completes before any local transaction is
// opened, so a slow or retrying remote call never holds a local lock.
func (p *Pipeline) ExtractDetails(ctx context.Context, record *types.IndexFindingRecord) error {
	if record == nil || !record.HasSecondaryCommand() {
		return nil
	}
	command := strings.TrimSpace(*record.SecondaryCommand)

	sets, err := p.executor.Execute(ctx, command)
	if err != nil {
		return &types.ExtractionError{Command: command, Err: err}
	}

	indexSet, findingSet := qualifyingSets(sets)

	var indexes []*types.IndexDetail
	if indexSet != nil {
		indexes = p.mapIndexDetails(*indexSet)
	}
	var findings []*types.FindingDetail
	if findingSet != nil {
		findings = p.mapFindingDetails(*findingSet)
	}

	if err := p.details.ReplaceForRecord(ctx, nil, record.ID, indexes, findings); err != nil {
		return err
	}
	record.DetailsLoaded = true
	p.log.Debug("Extracted secondary details", "record_id", record.ID, "indexes", len(indexes), "findings", len(findings))
	return nil
}

// ClearDetails removes the record's children and resets its flag,
// typically right before a forced re-extraction.
func (p *Pipeline) ClearDetails(ctx context.Context, record *types.IndexFindingRecord) error {
	if record == nil {
		return nil
	}
	if err := p.details.ClearForRecord(ctx, nil, record.ID); err != nil {
		return err
	}
	record.DetailsLoaded = false
	return nil
}

// qualifyingSets walks the result sets, skipping any leading ones that
// lack column metadata (status-only batches the procedure emits before
// data). The first qualifying set carries index structure, the second
// carries missing-index findings.
func qualifyingSets(sets []types.ResultSet) (indexSet, findingSet *types.ResultSet) {
	i := 0
	for i < len(sets) && sets[i].Empty() {
		i++
	}
	if i < len(sets) {
		indexSet = &sets[i]
		i++
	}
	for i < len(sets) && sets[i].Empty() {
		i++
	}
	if i < len(sets) {
		findingSet = &sets[i]
	}
	return indexSet, findingSet
}

// mapIndexDetails always drops row 0: the upstream procedure echoes a
// header row at the top of this result set, never real data. Zero rows
// after the drop is fine; a table may genuinely have one index.
func (p *Pipeline) mapIndexDetails(set types.ResultSet) []*types.IndexDetail {
	out := make([]*types.IndexDetail, 0)
	for i := 1; i < len(set.Rows); i++ {
		row := set.RowMap(i)
		detail := &types.IndexDetail{}
		for _, binding := range catalog.IndexDetailBindings {
			value, ok := row[binding.Raw]
			if !ok {
				continue
			}
			if err := binding.Assign(detail, value); err != nil {
				// Unmappable values from newer procedure versions are
				// dropped rather than failing the whole extraction.
				p.log.Debug("Skipping unmappable index detail column", "column", binding.Raw, "error", err)
			}
		}
		out = append(out, detail)
	}
	return out
}

func (p *Pipeline) mapFindingDetails(set types.ResultSet) []*types.FindingDetail {
	out := make([]*types.FindingDetail, 0, len(set.Rows))
	for i := range set.Rows {
		row := set.RowMap(i)
		detail := &types.FindingDetail{}
		for _, binding := range catalog.FindingDetailBindings {
			value, ok := row[binding.Raw]
			if !ok {
				continue
			}
			if err := binding.Assign(detail, value); err != nil {
				p.log.Debug("Skipping unmappable finding detail column", "column", binding.Raw, "error", err)
			}
		}
		out = append(out, detail)
	}
	return out
}
