package database

import (
	"context"
	"database/sql"

	"github.com/pkg/errors"
	"repairbot/model"
	"repairbot/tool"
)

const requestColumns = `id, date, name, phone, device_type, device_model, problem, comment, photo, status, cost, reserved1, reserved2, chat_id`

// LastRequestID returns the highest stored id, 0 for an empty table.
func (i *Instance) LastRequestID(ctx context.Context) (int, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	var id int
	if err := i.db.GetContext(ctx, &id, `SELECT COALESCE(MAX(id), 0) FROM requests`); err != nil {
		return 0, err
	}

	return id, nil
}

func (i *Instance) InsertRequest(ctx context.Context, req *model.Request) error {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	_, err := i.db.NamedExecContext(
		ctx,
		`INSERT INTO requests (`+requestColumns+`) VALUES (:id, :date, :name, :phone, :device_type, :device_model, :problem, :comment, :photo, :status, :cost, :reserved1, :reserved2, :chat_id)`,
		req,
	)

	return err
}

func (i *Instance) GetRequest(ctx context.Context, id int) (*model.Request, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	var result model.Request
	err := i.db.GetContext(
		ctx,
		&result,
		`SELECT `+requestColumns+` FROM requests WHERE id = $1`,
		id,
	)
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, errors.Wrapf(tool.ErrNotFound, "request #%d", id)
		}
		return nil, err
	}

	return &result, nil
}

func (i *Instance) UpdateRequestField(ctx context.Context, id int, column Column, value string) error {
	switch column {
	case ColumnStatus, ColumnCost:
	default:
		return errors.Errorf("column %q is not updatable", column)
	}

	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	res, err := i.db.ExecContext(
		ctx,
		`UPDATE requests SET `+string(column)+` = $2 WHERE id = $1`,
		id,
		value,
	)
	if err != nil {
		return err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return errors.Wrapf(tool.ErrNotFound, "request #%d", id)
	}

	return nil
}

func (i *Instance) SelectRequests(ctx context.Context) ([]*model.Request, error) {
	ctx, cancel := i.withTimeout(ctx)
	defer cancel()

	var result []*model.Request
	err := i.db.SelectContext(
		ctx,
		&result,
		`SELECT `+requestColumns+` FROM requests ORDER BY id`,
	)
	if err != nil {
		return nil, err
	}

	return result, nil
}
