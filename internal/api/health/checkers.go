package health

import (
	"context"
	"fmt"
)

// Pinger interface for databases that support ping.
type Pinger interface {
	Ping(ctx context.Context) error
}

// SQLiteChecker checks the audit database.
type SQLiteChecker struct {
	pinger Pinger
}

// NewSQLiteChecker creates a new SQLite health checker.
func NewSQLiteChecker(p Pinger) *SQLiteChecker {
	return &SQLiteChecker{pinger: p}
}

// Name returns the checker name.
func (c *SQLiteChecker) Name() string {
	return "sqlite"
}

// Check verifies the SQLite database is accessible.
func (c *SQLiteChecker) Check(ctx context.Context) error {
	if c.pinger == nil {
		return fmt.Errorf("database not initialized")
	}
	return c.pinger.Ping(ctx)
}

// ConverterChecker checks that the PDF converter is installed.
type ConverterChecker struct {
	converter Checkable
}

// Checkable is anything that can verify its own readiness.
type Checkable interface {
	Check(ctx context.Context) error
}

// NewConverterChecker creates a new converter health checker.
func NewConverterChecker(c Checkable) *ConverterChecker {
	return &ConverterChecker{converter: c}
}

// Name returns the checker name.
func (c *ConverterChecker) Name() string {
	return "converter"
}

// Check verifies the converter executable is available.
func (c *ConverterChecker) Check(ctx context.Context) error {
	if c.converter == nil {
		return fmt.Errorf("converter not configured")
	}
	return c.converter.Check(ctx)
}
