package repository

import (
	"testing"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOrderClause(t *testing.T) {
	tests := []struct {
		sort string
		want string
	}{
		{sort: "", want: "when_submitted DESC"},
		{sort: "bogus", want: "when_submitted DESC"},
		{sort: "name", want: "LOWER(name)"},
		{sort: "-name", want: "LOWER(name) DESC"},
		{sort: "when_submitted", want: "when_submitted"},
		{sort: "-when_submitted", want: "when_submitted DESC"},
		{sort: "when_published", want: "when_published"},
		{sort: "-when_published", want: "when_published DESC"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, orderClause(tt.sort), "sort %q", tt.sort)
	}
}

func TestVideoCountActiveBySite(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVideoRepository(db)

	mock.ExpectQuery("SELECT count(.+) FROM `videos`").
		WithArgs(7, "active").
		WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(321))

	count, err := repo.CountActiveBySite(7)
	require.NoError(t, err)
	assert.Equal(t, int64(321), count)
}

func TestVideoHideActiveAboveLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVideoRepository(db)

	// The oldest approved videos within the limit survive; everything else
	// flips back to unapproved.
	mock.ExpectQuery("SELECT `id` FROM `videos`").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(11).AddRow(12))
	mock.ExpectBegin()
	mock.ExpectExec("UPDATE `videos` SET").
		WillReturnResult(sqlmock.NewResult(0, 3))
	mock.ExpectCommit()

	hidden, err := repo.HideActiveAboveLimit(7, 2)
	require.NoError(t, err)
	assert.Equal(t, int64(3), hidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoHideActiveAboveLimitNegativeLimit(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVideoRepository(db)

	// A negative limit means unlimited, so nothing runs against the DB.
	hidden, err := repo.HideActiveAboveLimit(7, -1)
	require.NoError(t, err)
	assert.Zero(t, hidden)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestVideoBulkDelete(t *testing.T) {
	db, mock := newMockDB(t)
	repo := NewVideoRepository(db)

	mock.ExpectBegin()
	mock.ExpectExec("DELETE FROM `videos`").
		WillReturnResult(sqlmock.NewResult(0, 2))
	mock.ExpectCommit()

	n, err := repo.BulkDelete(7, []uint{5, 6})
	require.NoError(t, err)
	assert.Equal(t, int64(2), n)
}
