// Package remote abstracts the system of record as table-addressable CRUD.
// The sync engine treats it as opaque; any row-oriented backend satisfies
// the contract.
package remote

import (
	"context"
)

// Store is the remote side of the sync protocol. Row maps use the wire
// column names from domain.TableColumns.
type Store interface {
	Insert(ctx context.Context, table string, row map[string]any) error
	Update(ctx context.Context, table, id string, row map[string]any) error
	Delete(ctx context.Context, table, id string) error
	SelectAll(ctx context.Context, table string) ([]map[string]any, error)
}
