package extract

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/dbhealth-backend/internal/db"
	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/repos"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

var testStoreSeq atomic.Int64

func newTestStore(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()
	log, err := logger.New("prod")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	dsn := fmt.Sprintf("file:extract_test_%d?mode=memory&cache=shared", testStoreSeq.Add(1))
	store, err := db.NewSqliteService(dsn, log)
	if err != nil {
		t.Fatalf("NewSqliteService: %v", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	return store.DB(), log
}

// seedIndexRecord stores one sp_BlitzIndex run and returns its record.
func seedIndexRecord(t *testing.T, gdb *gorm.DB, log *logger.Logger, moreInfo string) *types.IndexFindingRecord {
	t.Helper()
	ctx := context.Background()
	targets := repos.NewDatabaseTargetRepo(gdb, log)
	target, err := targets.Create(ctx, nil, &types.DatabaseTarget{Name: "testdb", Host: "localhost", Port: 1433, User: "sa"})
	if err != nil {
		t.Fatalf("create target: %v", err)
	}
	results := repos.NewResultRepo(gdb, log)
	row := types.RawRow{
		"Finding": "Over-Indexing: dbo.orders",
		"Details: schema.table.index(indexid)": "dbo.orders",
		"Priority":  50,
		"More Info": moreInfo,
	}
	if _, err := results.StoreRun(ctx, nil, types.KindBlitzIndex, target.ID, []types.RawRow{row}); err != nil {
		t.Fatalf("StoreRun: %v", err)
	}
	record, err := results.GetRecord(ctx, nil, types.KindBlitzIndex, 0, target.ID)
	if err != nil {
		t.Fatalf("GetRecord: %v", err)
	}
	return record.(*types.IndexFindingRecord)
}

type fakeExecutor struct {
	sets     []types.ResultSet
	err      error
	commands []string
}

func (f *fakeExecutor) Execute(ctx context.Context, command string) ([]types.ResultSet, error) {
	f.commands = append(f.commands, command)
	if f.err != nil {
		return nil, f.err
	}
	return f.sets, nil
}

func tableSets() []types.ResultSet {
	return []types.ResultSet{
		// Status-only batch without column metadata; must be skipped.
		{},
		{
			Columns: []string{"Details: db_schema.table.index(indexid)", "Definition: [Property] ColumnName {datatype maxbytes}", "Referenced by FK?"},
			Rows: [][]interface{}{
				// Echoed header row, always dropped.
				{"Details: db_schema.table.index(indexid)", "Definition: [Property] ColumnName {datatype maxbytes}", "Referenced by FK?"},
				{"testdb.dbo.orders.PK_orders(1)", "[PK] id {int 4}", "True"},
				{"testdb.dbo.orders.ix_customer(2)", "customer_id {int 4}", "False"},
			},
		},
		{
			Columns: []string{"Finding", "URL", "Estimated Benefit"},
			Rows: [][]interface{}{
				{"Missing index on customer_id", "https://www.brentozar.com/go/indexaphobia", "High"},
			},
		},
	}
}

func TestExtractDetailsStoresBothChildKinds(t *testing.T) {
	gdb, log := newTestStore(t)
	record := seedIndexRecord(t, gdb, log, "EXEC dbo.sp_BlitzIndex @DatabaseName='testdb', @SchemaName='dbo', @TableName='orders';")
	details := repos.NewDetailRepo(gdb, log)
	executor := &fakeExecutor{sets: tableSets()}
	pipeline := NewPipeline(executor, details, log)
	ctx := context.Background()

	if err := pipeline.ExtractDetails(ctx, record); err != nil {
		t.Fatalf("ExtractDetails: %v", err)
	}
	if !record.DetailsLoaded {
		t.Fatalf("DetailsLoaded not set")
	}
	if len(executor.commands) != 1 || executor.commands[0] != "EXEC dbo.sp_BlitzIndex @DatabaseName='testdb', @SchemaName='dbo', @TableName='orders';" {
		t.Fatalf("executed commands = %v", executor.commands)
	}

	indexes, err := details.GetIndexDetails(ctx, nil, record.ID)
	if err != nil {
		t.Fatalf("GetIndexDetails: %v", err)
	}
	if len(indexes) != 2 {
		t.Fatalf("got %d index details, want 2 (header row must be dropped)", len(indexes))
	}
	if indexes[0].SchemaObjectIndexID == nil || *indexes[0].SchemaObjectIndexID != "testdb.dbo.orders.PK_orders(1)" {
		t.Fatalf("first index detail = %+v", indexes[0])
	}
	if indexes[0].ReferencedByFK == nil || *indexes[0].ReferencedByFK != 1 {
		t.Fatalf("True flag coerced to %v, want 1", indexes[0].ReferencedByFK)
	}
	if indexes[1].ReferencedByFK == nil || *indexes[1].ReferencedByFK != 0 {
		t.Fatalf("False flag coerced to %v, want 0", indexes[1].ReferencedByFK)
	}

	findings, err := details.GetFindingDetails(ctx, nil, record.ID)
	if err != nil {
		t.Fatalf("GetFindingDetails: %v", err)
	}
	if len(findings) != 1 {
		t.Fatalf("got %d finding details, want 1", len(findings))
	}
	if findings[0].Finding == nil || *findings[0].Finding != "Missing index on customer_id" {
		t.Fatalf("finding detail = %+v", findings[0])
	}
}

func TestExtractDetailsNoopWithoutRunnableCommand(t *testing.T) {
	gdb, log := newTestStore(t)
	record := seedIndexRecord(t, gdb, log, "See https://www.brentozar.com/go/indexaphobia")
	executor := &fakeExecutor{sets: tableSets()}
	pipeline := NewPipeline(executor, repos.NewDetailRepo(gdb, log), log)

	if err := pipeline.ExtractDetails(context.Background(), record); err != nil {
		t.Fatalf("ExtractDetails: %v", err)
	}
	if record.DetailsLoaded {
		t.Fatalf("DetailsLoaded set without a runnable command")
	}
	if len(executor.commands) != 0 {
		t.Fatalf("executor called for a non-EXEC More Info value")
	}
}

func TestExtractDetailsWrapsRemoteFailure(t *testing.T) {
	gdb, log := newTestStore(t)
	record := seedIndexRecord(t, gdb, log, "EXEC dbo.sp_BlitzIndex @DatabaseName='testdb', @SchemaName='dbo', @TableName='orders';")
	remoteErr := errors.New("login failed")
	pipeline := NewPipeline(&fakeExecutor{err: remoteErr}, repos.NewDetailRepo(gdb, log), log)

	err := pipeline.ExtractDetails(context.Background(), record)
	var exErr *types.ExtractionError
	if !errors.As(err, &exErr) {
		t.Fatalf("err = %v, want *ExtractionError", err)
	}
	if !errors.Is(err, remoteErr) {
		t.Fatalf("cause not preserved: %v", err)
	}
	if record.DetailsLoaded {
		t.Fatalf("DetailsLoaded set after a failed extraction")
	}
}

func TestClearDetailsResetsState(t *testing.T) {
	gdb, log := newTestStore(t)
	record := seedIndexRecord(t, gdb, log, "EXEC dbo.sp_BlitzIndex @DatabaseName='testdb', @SchemaName='dbo', @TableName='orders';")
	details := repos.NewDetailRepo(gdb, log)
	pipeline := NewPipeline(&fakeExecutor{sets: tableSets()}, details, log)
	ctx := context.Background()

	if err := pipeline.ExtractDetails(ctx, record); err != nil {
		t.Fatalf("ExtractDetails: %v", err)
	}
	if err := pipeline.ClearDetails(ctx, record); err != nil {
		t.Fatalf("ClearDetails: %v", err)
	}
	if record.DetailsLoaded {
		t.Fatalf("DetailsLoaded still set after clear")
	}
	indexes, err := details.GetIndexDetails(ctx, nil, record.ID)
	if err != nil {
		t.Fatalf("GetIndexDetails: %v", err)
	}
	if len(indexes) != 0 {
		t.Fatalf("%d index details survive a clear", len(indexes))
	}
}
