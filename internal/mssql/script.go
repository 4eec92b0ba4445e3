package mssql

import (
	"bufio"
	"context"
	"io"
	"strings"
)

// SplitBatches breaks an installation script into executable batches on
// GO separators, dropping blank lines and comment lines. GO is a batch
// separator for SQL Server tooling, not a statement, so it must never
// reach the server.
func SplitBatches(script io.Reader) ([]string, error) {
	var batches []string
	var current []string

	scanner := bufio.NewScanner(script)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "--") || strings.HasPrefix(line, "/*") {
			continue
		}
		if strings.EqualFold(line, "GO") {
			if len(current) > 0 {
				batches = append(batches, strings.Join(current, "\n"))
				current = current[:0]
			}
			continue
		}
		current = append(current, line)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	if len(current) > 0 {
		batches = append(batches, strings.Join(current, "\n"))
	}
	return batches, nil
}

// InstallScript executes an installation script batch by batch and
// returns how many batches succeeded. Individual batch failures are
// logged and skipped; installation scripts routinely contain version
// guards that fail harmlessly on some servers.
func (c *Client) InstallScript(ctx context.Context, script io.Reader) (int, error) {
	batches, err := SplitBatches(script)
	if err != nil {
		return 0, err
	}
	executed := 0
	for _, batch := range batches {
		if _, err := c.db.ExecContext(ctx, batch); err != nil {
			c.log.Warn("Installation batch failed, continuing", "error", err)
			continue
		}
		executed++
	}
	c.log.Info("Installed diagnostic procedures", "batches_executed", executed, "batches_total", len(batches))
	return executed, nil
}
