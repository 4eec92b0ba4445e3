// Package mssql is the remote SQL Server collaborator: it executes the
// diagnostic procedures and follow-up commands against the target
// server and hands the raw result sets to the store. Connection
// timeouts and driver behavior live here; the store only propagates
// whatever error this package raises.
package mssql

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"strings"

	_ "github.com/microsoft/go-mssqldb"

	"github.com/yungbote/dbhealth-backend/internal/logger"
	"github.com/yungbote/dbhealth-backend/internal/types"
)

type Client struct {
	db           *sql.DB
	databaseName string
	log          *logger.Logger
}

// BuildDSN renders the sqlserver connection URL for one target.
func BuildDSN(target *types.DatabaseTarget) string {
	u := &url.URL{
		Scheme: "sqlserver",
		User:   url.UserPassword(target.User, target.Password),
		Host:   fmt.Sprintf("%s:%d", target.Host, target.Port),
	}
	q := url.Values{}
	q.Set("database", target.Name)
	q.Set("encrypt", "true")
	q.Set("TrustServerCertificate", "true")
	q.Set("dial timeout", "60")
	u.RawQuery = q.Encode()
	return u.String()
}

func NewClient(ctx context.Context, target *types.DatabaseTarget, baseLog *logger.Logger) (*Client, error) {
	db, err := sql.Open("sqlserver", BuildDSN(target))
	if err != nil {
		return nil, fmt.Errorf("open sqlserver connection: %w", err)
	}
	db.SetMaxOpenConns(4)
	db.SetMaxIdleConns(2)
	if err := db.PingContext(ctx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping %s:%d: %w", target.Host, target.Port, err)
	}
	return &Client{
		db:           db,
		databaseName: target.Name,
		log:          baseLog.With("component", "MssqlClient", "host", target.Host),
	}, nil
}

func (c *Client) Close() error {
	return c.db.Close()
}

// ExecuteDiagnostic runs one diagnostic procedure and returns the rows
// of its first qualifying result set as raw name->value rows.
func (c *Client) ExecuteDiagnostic(ctx context.Context, kind types.ProcedureKind) ([]types.RawRow, error) {
	command, err := diagnosticCommand(kind, c.databaseName)
	if err != nil {
		return nil, err
	}
	c.log.Info("Executing diagnostic procedure", "command", command)
	sets, err := c.Execute(ctx, command)
	if err != nil {
		return nil, err
	}
	for _, set := range sets {
		if set.Empty() {
			continue
		}
		rows := make([]types.RawRow, len(set.Rows))
		for i := range set.Rows {
			rows[i] = set.RowMap(i)
		}
		return rows, nil
	}
	return nil, nil
}

// Execute runs one command and walks every result set it produces,
// including status-only sets without column metadata; callers decide
// which sets qualify.
func (c *Client) Execute(ctx context.Context, command string) ([]types.ResultSet, error) {
	rows, err := c.db.QueryContext(ctx, command)
	if err != nil {
		return nil, fmt.Errorf("execute %q: %w", command, err)
	}
	defer rows.Close()

	var sets []types.ResultSet
	for {
		set, err := scanResultSet(rows)
		if err != nil {
			return nil, err
		}
		sets = append(sets, set)
		if !rows.NextResultSet() {
			break
		}
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return sets, nil
}

func scanResultSet(rows *sql.Rows) (types.ResultSet, error) {
	cols, err := rows.Columns()
	if err != nil {
		// No column metadata: a status-only batch.
		return types.ResultSet{}, nil
	}
	set := types.ResultSet{Columns: cols}
	for rows.Next() {
		values := make([]interface{}, len(cols))
		ptrs := make([]interface{}, len(cols))
		for i := range values {
			ptrs[i] = &values[i]
		}
		if err := rows.Scan(ptrs...); err != nil {
			return types.ResultSet{}, err
		}
		set.Rows = append(set.Rows, values)
	}
	if err := rows.Err(); err != nil {
		return types.ResultSet{}, err
	}
	return set, nil
}

// diagnosticCommand builds the EXEC statement for one procedure kind.
// sp_BlitzIndex runs in detailed mode over inactive indexes as well;
// single quotes in database names are doubled.
func diagnosticCommand(kind types.ProcedureKind, databaseName string) (string, error) {
	safe := strings.ReplaceAll(databaseName, "'", "''")
	switch kind {
	case types.KindBlitz:
		return "EXEC sp_Blitz", nil
	case types.KindBlitzIndex:
		return fmt.Sprintf("EXEC sp_BlitzIndex @IncludeInactiveIndexes=1, @Mode=4, @DatabaseName = '%s'", safe), nil
	case types.KindBlitzCache:
		return fmt.Sprintf("EXEC sp_BlitzCache @DatabaseName = '%s'", safe), nil
	default:
		return "", fmt.Errorf("%w: %q", types.ErrUnknownProcedure, kind)
	}
}

// ProbeServerInfo reads the server version and instance memory, best
// effort: permissions vary, so a failed probe yields nils, not errors.
func (c *Client) ProbeServerInfo(ctx context.Context) (version *string, memoryMB *int) {
	var v string
	if err := c.db.QueryRowContext(ctx, "SELECT @@VERSION").Scan(&v); err == nil {
		version = &v
	}

	var kb int64
	err := c.db.QueryRowContext(ctx, "SELECT total_physical_memory_kb FROM sys.dm_os_sys_memory").Scan(&kb)
	if err == nil {
		mb := int(kb / 1024)
		memoryMB = &mb
		return version, memoryMB
	}
	err = c.db.QueryRowContext(ctx, "SELECT TOP 1 cntr_value/1024 FROM sys.dm_os_performance_counters WHERE counter_name = 'Total Server Memory (KB)'").Scan(&kb)
	if err == nil {
		mb := int(kb)
		memoryMB = &mb
	}
	return version, memoryMB
}

// CheckDiagnosticProcedures reports whether any of the supported
// procedures exist on the server.
func (c *Client) CheckDiagnosticProcedures(ctx context.Context) (bool, error) {
	var count int
	err := c.db.QueryRowContext(ctx,
		"SELECT COUNT(*) FROM sys.objects WHERE type = 'P' AND name IN ('sp_Blitz', 'sp_BlitzIndex', 'sp_BlitzCache')").
		Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
