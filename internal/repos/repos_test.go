package repos

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"gorm.io/gorm"

	"github.com/yungbote/dbhealth-backend/internal/db"
	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

var testStoreSeq atomic.Int64

// newTestStore opens a private in-memory store. Each test gets its own
// named shared-cache database so pooled connections see the same
// schema without tests seeing each other.
func newTestStore(t *testing.T) (*gorm.DB, *logger.Logger) {
	t.Helper()
	log, err := logger.New("prod")
	if err != nil {
		t.Fatalf("logger.New: %v", err)
	}
	dsn := fmt.Sprintf("file:repos_test_%d?mode=memory&cache=shared", testStoreSeq.Add(1))
	store, err := db.NewSqliteService(dsn, log)
	if err != nil {
		t.Fatalf("NewSqliteService: %v", err)
	}
	if err := store.AutoMigrateAll(); err != nil {
		t.Fatalf("AutoMigrateAll: %v", err)
	}
	return store.DB(), log
}

func seedTarget(t *testing.T, gdb *gorm.DB, log *logger.Logger) uint {
	t.Helper()
	repo := NewDatabaseTargetRepo(gdb, log)
	target, err := repo.Create(context.Background(), nil, &types.DatabaseTarget{
		Name: "testdb",
		Host: "localhost",
		Port: 1433,
		User: "sa",
	})
	if err != nil {
		t.Fatalf("seed target: %v", err)
	}
	return target.ID
}

func strptr(s string) *string { return &s }

func blitzRows(n int) []types.RawRow {
	rows := make([]types.RawRow, n)
	for i := range rows {
		rows[i] = types.RawRow{
			"Finding":  fmt.Sprintf("Finding %d", i),
			"Details":  fmt.Sprintf("details %d", i),
			"Priority": i + 1,
		}
	}
	return rows
}

func blitzIndexRows(n int) []types.RawRow {
	rows := make([]types.RawRow, n)
	for i := range rows {
		rows[i] = types.RawRow{
			"Finding": fmt.Sprintf("Over-Indexing: table %d", i),
			"Details: schema.table.index(indexid)": fmt.Sprintf("dbo.t%d.ix%d(%d)", i, i, i),
			"Priority":  50,
			"More Info": fmt.Sprintf("EXEC dbo.sp_BlitzIndex @DatabaseName='testdb', @SchemaName='dbo', @TableName='t%d';", i),
		}
	}
	return rows
}
