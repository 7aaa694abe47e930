package source

import (
	"context"
	"errors"
	"testing"
	"time"

	"tlf-sync/core/database"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/mysql"
	"gorm.io/gorm"
)

func ptr[T any](v T) *T { return &v }

func setupSQLite(t *testing.T) *gorm.DB {
	db, err := database.Connect(database.Config{Driver: database.DriverSQLite, Name: ":memory:"})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(Models()...))
	return db
}

func setupMockDB(t *testing.T) (*gorm.DB, sqlmock.Sqlmock) {
	sqlDB, mock, err := sqlmock.New()
	require.NoError(t, err)

	db, err := gorm.Open(mysql.New(mysql.Config{Conn: sqlDB, SkipInitializeWithVersion: true}), &gorm.Config{})
	require.NoError(t, err)
	return db, mock
}

func TestSource_FetchIdentities(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, db.Create(&[]Board{
		{ID: 1, Code: ptr("MDF-19"), Length: decimal.NewNullDecimal(decimal.NewFromInt(28000)), Width: decimal.NewNullDecimal(decimal.NewFromInt(20700)), Thickness: decimal.NewNullDecimal(decimal.NewFromInt(190))},
		{ID: 2},
	}).Error)

	rows, err := New(db, 0).FetchIdentities(context.Background())
	require.NoError(t, err)
	require.Len(t, rows, 2)

	byID := map[int64]string{}
	for _, r := range rows {
		byID[r.RawID] = r.BoardCode
		if r.RawID == 1 {
			assert.True(t, r.Length.Equal(decimal.NewFromInt(28000)))
			assert.True(t, r.Thickness.Equal(decimal.NewFromInt(190)))
		}
	}
	assert.Equal(t, map[int64]string{1: "MDF-19", 2: ""}, byID)
}

func TestSource_FetchOccupancy(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, db.Create(&[]Slot{
		{ID: 1, BoardID: ptr(int64(1)), SlotNumber: ptr(5)},
		{ID: 2, BoardID: ptr(int64(1)), SlotNumber: ptr(1001)},
		{ID: 3, SlotNumber: ptr(6)},
	}).Error)

	rows, err := New(db, 0).FetchOccupancy(context.Background())
	require.NoError(t, err)

	assert.Len(t, rows, 2)
	for _, r := range rows {
		assert.Equal(t, int64(1), r.RawID)
	}
}

func TestSource_FetchOutfeed(t *testing.T) {
	db := setupSQLite(t)
	at := time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC)
	require.NoError(t, db.Create(&[]Outfeed{
		{ID: 10, GroupID: ptr("G1"), BoardCode: ptr("A"), ExitSlot: ptr(1), Producer: ptr("TLF"), JobName: ptr("job"), Plan: ptr("p"), UpdatedAt: &at},
		{ID: 11, GroupID: ptr("G1"), BoardCode: ptr("A"), ExitSlot: ptr(2), Producer: ptr("TLF")},
		{ID: 12},
		{ID: 13, BoardCode: ptr("B")},
	}).Error)

	rows, err := New(db, 0).FetchOutfeed(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, rows, 3)
	assert.Equal(t, int64(11), rows[0].RowID)
	assert.Equal(t, 2, rows[0].ExitSlot)
	assert.Equal(t, "", rows[1].BoardCode)
	assert.True(t, rows[1].UpdatedAt.IsZero())

	limited, err := New(db, 2).FetchOutfeed(context.Background(), 0)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, int64(10), limited[0].RowID)
	assert.Equal(t, "job", limited[0].JobName)
	assert.True(t, at.Equal(limited[0].UpdatedAt))
	assert.Equal(t, int64(11), limited[1].RowID)
}

func TestOutfeed_UpdatedAtIsNotStamped(t *testing.T) {
	db := setupSQLite(t)
	require.NoError(t, db.Create(&Outfeed{ID: 5, BoardCode: ptr("A")}).Error)
	require.NoError(t, db.Model(&Outfeed{}).Where("id = ?", 5).Update("board_code", "B").Error)

	var n int64
	require.NoError(t, db.Model(&Outfeed{}).Where("updated_at IS NULL").Count(&n).Error)
	assert.Equal(t, int64(1), n)
}

func TestSource_QueryShape(t *testing.T) {
	db, mock := setupMockDB(t)

	mock.ExpectQuery("SELECT \\* FROM `tlf_outfeed` WHERE id > \\? ORDER BY id asc LIMIT").
		WillReturnRows(sqlmock.NewRows([]string{"id", "group_id", "board_code", "exit_slot", "producer", "job_name", "plan", "updated_at"}).
			AddRow(21, "G", "A", 3, "TLF", nil, nil, nil))

	rows, err := New(db, 100).FetchOutfeed(context.Background(), 20)
	require.NoError(t, err)
	require.Len(t, rows, 1)
	assert.Equal(t, 3, rows[0].ExitSlot)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSource_Errors(t *testing.T) {
	db, mock := setupMockDB(t)
	src := New(db, 0)

	mock.ExpectQuery("SELECT \\* FROM `tlf_boards`").WillReturnError(errors.New("connection refused"))
	_, err := src.FetchIdentities(context.Background())
	assert.ErrorContains(t, err, "failed to read tlf_boards: connection refused")

	mock.ExpectQuery("SELECT .* FROM `tlf_slots`").WillReturnError(errors.New("gone"))
	_, err = src.FetchOccupancy(context.Background())
	assert.ErrorContains(t, err, "tlf_slots")

	mock.ExpectQuery("SELECT \\* FROM `tlf_outfeed`").WillReturnError(errors.New("gone"))
	_, err = src.FetchOutfeed(context.Background(), 0)
	assert.ErrorContains(t, err, "tlf_outfeed")
}
