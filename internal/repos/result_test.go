package repos

import (
	"context"
	"errors"
	"testing"

	"github.com/yungbote/dbhealth-backend/internal/types"
)

func TestStoreRunReplacesPreviousRun(t *testing.T) {
	gdb, log := newTestStore(t)
	targetID := seedTarget(t, gdb, log)
	repo := NewResultRepo(gdb, log)
	ctx := context.Background()

	first, err := repo.StoreRun(ctx, nil, types.KindBlitz, targetID, blitzRows(3))
	if err != nil {
		t.Fatalf("first StoreRun: %v", err)
	}
	second, err := repo.StoreRun(ctx, nil, types.KindBlitz, targetID, blitzRows(2))
	if err != nil {
		t.Fatalf("second StoreRun: %v", err)
	}
	if first.ID == second.ID {
		t.Fatalf("expected a fresh run id on refresh")
	}

	current, err := repo.CurrentRun(ctx, nil, types.KindBlitz, targetID)
	if err != nil {
		t.Fatalf("CurrentRun: %v", err)
	}
	if current == nil || current.ID != second.ID {
		t.Fatalf("current run = %v, want %v", current, second.ID)
	}

	records, err := repo.GetAllRecords(ctx, nil, types.KindBlitz, targetID)
	if err != nil {
		t.Fatalf("GetAllRecords: %v", err)
	}
	if len(records) != 2 {
		t.Fatalf("got %d records, want 2", len(records))
	}
	for i, record := range records {
		if record.RecordOrdinal() != i {
			t.Fatalf("record %d has ordinal %d", i, record.RecordOrdinal())
		}
		if record.RecordRunID() != second.ID {
			t.Fatalf("record %d belongs to run %v, want %v", i, record.RecordRunID(), second.ID)
		}
	}

	var total int64
	if err := gdb.Model(&types.FindingRecord{}).Count(&total).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	if total != 2 {
		t.Fatalf("%d finding rows survive, want 2 (old run must be gone)", total)
	}
}

func TestStoreRunMalformedRowWritesNothing(t *testing.T) {
	gdb, log := newTestStore(t)
	targetID := seedTarget(t, gdb, log)
	repo := NewResultRepo(gdb, log)
	ctx := context.Background()

	rows := blitzRows(3)
	rows[1]["Details"] = map[string]interface{}{"nested": true}

	_, err := repo.StoreRun(ctx, nil, types.KindBlitz, targetID, rows)
	var mapErr *types.RowMappingError
	if !errors.As(err, &mapErr) {
		t.Fatalf("err = %v, want *RowMappingError", err)
	}
	if mapErr.Ordinal != 1 {
		t.Fatalf("mapping error ordinal = %d, want 1", mapErr.Ordinal)
	}

	run, err := repo.CurrentRun(ctx, nil, types.KindBlitz, targetID)
	if err != nil {
		t.Fatalf("CurrentRun: %v", err)
	}
	if run != nil {
		t.Fatalf("run %v exists after failed store", run.ID)
	}
	var total int64
	if err := gdb.Model(&types.FindingRecord{}).Count(&total).Error; err != nil {
		t.Fatalf("count records: %v", err)
	}
	if total != 0 {
		t.Fatalf("%d finding rows written by failed store", total)
	}
}

func TestStoreRunRejectsUnknownKindAndDatabase(t *testing.T) {
	gdb, log := newTestStore(t)
	targetID := seedTarget(t, gdb, log)
	repo := NewResultRepo(gdb, log)
	ctx := context.Background()

	_, err := repo.StoreRun(ctx, nil, types.ProcedureKind("sp_Nope"), targetID, nil)
	if !errors.Is(err, types.ErrUnknownProcedure) {
		t.Fatalf("unknown kind err = %v, want ErrUnknownProcedure", err)
	}
	_, err = repo.StoreRun(ctx, nil, types.KindBlitz, targetID+999, blitzRows(1))
	if !errors.Is(err, types.ErrUnknownDatabase) {
		t.Fatalf("unknown database err = %v, want ErrUnknownDatabase", err)
	}
}

func TestGetAllRecordsEmptyBeforeFirstRun(t *testing.T) {
	gdb, log := newTestStore(t)
	targetID := seedTarget(t, gdb, log)
	repo := NewResultRepo(gdb, log)

	records, err := repo.GetAllRecords(context.Background(), nil, types.KindBlitzCache, targetID)
	if err != nil {
		t.Fatalf("GetAllRecords: %v", err)
	}
	if records == nil || len(records) != 0 {
		t.Fatalf("records = %v, want empty slice", records)
	}
}

func TestGetRecordByOrdinal(t *testing.T) {
	gdb, log := newTestStore(t)
	targetID := seedTarget(t, gdb, log)
	repo := NewResultRepo(gdb, log)
	ctx := context.Background()

	if _, err := repo.StoreRun(ctx, nil, types.KindBlitz, targetID, blitzRows(3)); err != nil {
		t.Fatalf("StoreRun: %v", err)
	}
	record, err := repo.GetRecord(ctx, nil, types.KindBlitz, 2, targetID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	finding := record.(*types.FindingRecord)
	if finding.Finding == nil || *finding.Finding != "Finding 2" {
		t.Fatalf("finding = %v, want Finding 2", finding.Finding)
	}
	if finding.Priority == nil || *finding.Priority != 3 {
		t.Fatalf("priority = %v, want 3", finding.Priority)
	}
	if len(finding.Raw) == 0 {
		t.Fatalf("raw snapshot missing")
	}

	if _, err := repo.GetRecord(ctx, nil, types.KindBlitz, 99, targetID); !errors.Is(err, types.ErrRecordNotFound) {
		t.Fatalf("missing ordinal err = %v, want ErrRecordNotFound", err)
	}
}

func TestAnalyzedFlagDerivedFromChatHistory(t *testing.T) {
	gdb, log := newTestStore(t)
	targetID := seedTarget(t, gdb, log)
	results := NewResultRepo(gdb, log)
	chats := NewChatRepo(gdb, log)
	ctx := context.Background()

	if _, err := results.StoreRun(ctx, nil, types.KindBlitz, targetID, blitzRows(2)); err != nil {
		t.Fatalf("StoreRun: %v", err)
	}
	records, err := results.GetAllRecords(ctx, nil, types.KindBlitz, targetID)
	if err != nil {
		t.Fatalf("GetAllRecords: %v", err)
	}
	for _, record := range records {
		if record.RecordAnalyzed() {
			t.Fatalf("record %d analyzed before any chat", record.RecordOrdinal())
		}
	}

	err = chats.StoreHistory(ctx, nil, types.KindBlitz, records[0].RecordID(), []types.ChatMessage{
		{Role: "assistant", Message: "This finding means the server restarted recently."},
	})
	if err != nil {
		t.Fatalf("StoreHistory: %v", err)
	}

	records, err = results.GetAllRecords(ctx, nil, types.KindBlitz, targetID)
	if err != nil {
		t.Fatalf("GetAllRecords after chat: %v", err)
	}
	if !records[0].RecordAnalyzed() {
		t.Fatalf("record 0 should be analyzed")
	}
	if records[1].RecordAnalyzed() {
		t.Fatalf("record 1 should not be analyzed")
	}
}

func TestStoreRunCascadesChildrenAndRecommendations(t *testing.T) {
	gdb, log := newTestStore(t)
	targetID := seedTarget(t, gdb, log)
	results := NewResultRepo(gdb, log)
	details := NewDetailRepo(gdb, log)
	chats := NewChatRepo(gdb, log)
	recs := NewRecommendationRepo(gdb, log)
	ctx := context.Background()

	if _, err := results.StoreRun(ctx, nil, types.KindBlitzIndex, targetID, blitzIndexRows(2)); err != nil {
		t.Fatalf("StoreRun: %v", err)
	}
	record, err := results.GetRecord(ctx, nil, types.KindBlitzIndex, 0, targetID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	recordID := record.RecordID()

	err = details.ReplaceForRecord(ctx, nil, recordID,
		[]*types.IndexDetail{{SchemaObjectIndexID: strptr("dbo.t0.ix0(1)")}},
		[]*types.FindingDetail{{Finding: strptr("Missing index")}})
	if err != nil {
		t.Fatalf("ReplaceForRecord: %v", err)
	}
	if err := chats.StoreHistory(ctx, nil, types.KindBlitzIndex, recordID, []types.ChatMessage{{Role: "user", Message: "drop it?"}}); err != nil {
		t.Fatalf("StoreHistory: %v", err)
	}
	if _, err := recs.Insert(ctx, nil, "Drop the unused index", strptr("DROP INDEX ix0 ON dbo.t0;"), types.IndexFindingTarget(recordID)); err != nil {
		t.Fatalf("Insert recommendation: %v", err)
	}

	if _, err := results.StoreRun(ctx, nil, types.KindBlitzIndex, targetID, blitzIndexRows(1)); err != nil {
		t.Fatalf("refresh StoreRun: %v", err)
	}

	for _, probe := range []struct {
		name  string
		model interface{}
	}{
		{"index_detail", &types.IndexDetail{}},
		{"finding_detail", &types.FindingDetail{}},
		{"chat_turn", &types.ChatTurn{}},
		{"recommendation", &types.Recommendation{}},
	} {
		var n int64
		if err := gdb.Model(probe.model).Count(&n).Error; err != nil {
			t.Fatalf("count %s: %v", probe.name, err)
		}
		if n != 0 {
			t.Fatalf("%d %s rows survive a refresh", n, probe.name)
		}
	}
}

func TestDeleteResultsAndClearAll(t *testing.T) {
	gdb, log := newTestStore(t)
	targetID := seedTarget(t, gdb, log)
	repo := NewResultRepo(gdb, log)
	ctx := context.Background()

	if _, err := repo.StoreRun(ctx, nil, types.KindBlitz, targetID, blitzRows(2)); err != nil {
		t.Fatalf("StoreRun blitz: %v", err)
	}
	if _, err := repo.StoreRun(ctx, nil, types.KindBlitzIndex, targetID, blitzIndexRows(2)); err != nil {
		t.Fatalf("StoreRun blitzindex: %v", err)
	}

	if err := repo.DeleteResults(ctx, nil, types.KindBlitz, targetID); err != nil {
		t.Fatalf("DeleteResults: %v", err)
	}
	run, err := repo.CurrentRun(ctx, nil, types.KindBlitz, targetID)
	if err != nil || run != nil {
		t.Fatalf("blitz run = %v err = %v after delete, want nil", run, err)
	}
	run, err = repo.CurrentRun(ctx, nil, types.KindBlitzIndex, targetID)
	if err != nil || run == nil {
		t.Fatalf("blitzindex run should survive a blitz delete, got %v err %v", run, err)
	}

	if err := repo.ClearAll(ctx, nil, targetID); err != nil {
		t.Fatalf("ClearAll: %v", err)
	}
	var runs int64
	if err := gdb.Model(&types.Run{}).Count(&runs).Error; err != nil {
		t.Fatalf("count runs: %v", err)
	}
	if runs != 0 {
		t.Fatalf("%d runs survive ClearAll", runs)
	}
}

func TestRunsAreIndependentPerTarget(t *testing.T) {
	gdb, log := newTestStore(t)
	targets := NewDatabaseTargetRepo(gdb, log)
	repo := NewResultRepo(gdb, log)
	ctx := context.Background()

	first := seedTarget(t, gdb, log)
	other, err := targets.Create(ctx, nil, &types.DatabaseTarget{Name: "other", Host: "otherhost", Port: 1433, User: "sa"})
	if err != nil {
		t.Fatalf("create second target: %v", err)
	}

	if _, err := repo.StoreRun(ctx, nil, types.KindBlitz, first, blitzRows(3)); err != nil {
		t.Fatalf("StoreRun first: %v", err)
	}
	if _, err := repo.StoreRun(ctx, nil, types.KindBlitz, other.ID, blitzRows(1)); err != nil {
		t.Fatalf("StoreRun other: %v", err)
	}

	records, err := repo.GetAllRecords(ctx, nil, types.KindBlitz, first)
	if err != nil {
		t.Fatalf("GetAllRecords first: %v", err)
	}
	if len(records) != 3 {
		t.Fatalf("first target has %d records, want 3", len(records))
	}
}
