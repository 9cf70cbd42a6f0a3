package database

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
	"repairbot/model"
)

// Column is a mutable request column. Only these may be updated after the
// request is stored.
type Column string

const (
	ColumnStatus Column = "status"
	ColumnCost   Column = "cost"
)

type IDatabase interface {
	LastRequestID(ctx context.Context) (int, error)
	InsertRequest(ctx context.Context, req *model.Request) error
	GetRequest(ctx context.Context, id int) (*model.Request, error)
	UpdateRequestField(ctx context.Context, id int, column Column, value string) error
	SelectRequests(ctx context.Context) ([]*model.Request, error)
}

type Instance struct {
	db      *sqlx.DB
	timeout time.Duration
}

// NewInstance wraps db. Every query is bounded by timeout.
func NewInstance(db *sqlx.DB, timeout time.Duration) *Instance {
	return &Instance{db: db, timeout: timeout}
}

func (i *Instance) withTimeout(ctx context.Context) (context.Context, context.CancelFunc) {
	if i.timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, i.timeout)
}
