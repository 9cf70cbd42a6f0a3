package database

import (
	"context"
	"database/sql"
	"regexp"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/jmoiron/sqlx"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"repairbot/model"
	"repairbot/tool"
)

func setupMockDB(t *testing.T) (*Instance, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	return NewInstance(sqlx.NewDb(db, "postgres"), time.Second), mock
}

var columns = []string{
	"id", "date", "name", "phone", "device_type", "device_model", "problem",
	"comment", "photo", "status", "cost", "reserved1", "reserved2", "chat_id",
}

func TestLastRequestID(t *testing.T) {
	i, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT COALESCE(MAX(id), 0) FROM requests`)).
		WillReturnRows(sqlmock.NewRows([]string{"coalesce"}).AddRow(41))

	id, err := i.LastRequestID(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 41, id)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertRequest(t *testing.T) {
	i, mock := setupMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`INSERT INTO requests (`+requestColumns+`)`)).
		WithArgs(
			7, "2024-03-01 10:00:00", "Иван", "+79123456789", "Телефон", "X1",
			"не включается", "-", "", "Новая", "", "", "", int64(55),
		).
		WillReturnResult(sqlmock.NewResult(0, 1))

	app := model.NewApplication(55, time.Date(2024, 3, 1, 10, 0, 0, 0, time.UTC))
	app.ID = 7
	app.Name = "Иван"
	app.Phone = "+79123456789"
	app.DeviceType = "Телефон"
	app.DeviceModel = "X1"
	app.Problem = "не включается"

	require.NoError(t, i.InsertRequest(context.Background(), app.Request()))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestGetRequest(t *testing.T) {
	i, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+requestColumns+` FROM requests WHERE id = $1`)).
		WithArgs(3).
		WillReturnRows(sqlmock.NewRows(columns).AddRow(
			3, "2024-03-01 10:00:00", "Иван", "+79123456789", "Телефон", "X1",
			"не включается", "-", "", "Готово", "1500", "", "", nil,
		))

	req, err := i.GetRequest(context.Background(), 3)
	require.NoError(t, err)
	assert.Equal(t, 3, req.ID)
	assert.Equal(t, model.StatusDone, req.Status)
	assert.Equal(t, "1500", req.Cost)
	assert.False(t, req.ChatID.Valid)
}

func TestGetRequest_NotFound(t *testing.T) {
	i, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`FROM requests WHERE id = $1`)).
		WithArgs(9).
		WillReturnError(sql.ErrNoRows)

	_, err := i.GetRequest(context.Background(), 9)
	assert.True(t, tool.IsNotFound(err))
}

func TestUpdateRequestField(t *testing.T) {
	i, mock := setupMockDB(t)
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE requests SET status = $2 WHERE id = $1`)).
		WithArgs(3, "Принято").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(regexp.QuoteMeta(`UPDATE requests SET cost = $2 WHERE id = $1`)).
		WithArgs(4, "900").
		WillReturnResult(sqlmock.NewResult(0, 0))

	require.NoError(t, i.UpdateRequestField(context.Background(), 3, ColumnStatus, "Принято"))

	err := i.UpdateRequestField(context.Background(), 4, ColumnCost, "900")
	assert.True(t, tool.IsNotFound(err))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestUpdateRequestField_RejectsColumn(t *testing.T) {
	i, mock := setupMockDB(t)

	err := i.UpdateRequestField(context.Background(), 1, Column("name; DROP TABLE requests"), "x")
	assert.Error(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSelectRequests(t *testing.T) {
	i, mock := setupMockDB(t)
	mock.ExpectQuery(regexp.QuoteMeta(`SELECT `+requestColumns+` FROM requests ORDER BY id`)).
		WillReturnRows(sqlmock.NewRows(columns).
			AddRow(1, "2024-03-01", "A", "+70000000000", "t", "m", "p", "-", "", "Новая", "", "", "", 10).
			AddRow(2, "01.03.2024 10:00", "B", "+70000000001", "t", "m", "p", "-", "", "Готово", "abc", "", "", nil))

	reqs, err := i.SelectRequests(context.Background())
	require.NoError(t, err)
	require.Len(t, reqs, 2)
	assert.Equal(t, int64(10), reqs[0].ChatID.Int64)
	assert.Equal(t, "abc", reqs[1].Cost)
}
