package store

import (
	"context"
	"encoding/json"
	"regexp"
	"testing"

	pgxmock "github.com/pashagolub/pgxmock/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/sells-group/placelist-cli/internal/model"
)

func newMockPostgres(t *testing.T) (*PostgresStore, pgxmock.PgxPoolIface) {
	t.Helper()
	mock, err := pgxmock.NewPool()
	require.NoError(t, err)
	t.Cleanup(mock.Close)
	return NewPostgresWithPool(mock), mock
}

func TestPostgres_GetResolution_Hit(t *testing.T) {
	s, mock := newMockPostgres(t)

	raw, err := json.Marshal(sampleResult())
	require.NoError(t, err)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT result FROM resolution_cache WHERE cache_key = $1`)).
		WithArgs("k").
		WillReturnRows(pgxmock.NewRows([]string{"result"}).AddRow(raw))

	got, err := s.GetResolution(context.Background(), "k")
	require.NoError(t, err)
	assert.Equal(t, sampleResult(), got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_GetResolution_Miss(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery(regexp.QuoteMeta(`SELECT result FROM resolution_cache WHERE cache_key = $1`)).
		WithArgs("absent").
		WillReturnRows(pgxmock.NewRows([]string{"result"}))

	got, err := s.GetResolution(context.Background(), "absent")
	assert.NoError(t, err)
	assert.Nil(t, got)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_PutResolution(t *testing.T) {
	s, mock := newMockPostgres(t)

	res := sampleResult()
	raw, err := json.Marshal(res)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO resolution_cache`).
		WithArgs("k", raw, true, true).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.PutResolution(context.Background(), "k", res))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_PutResolution_UnresolvedFlags(t *testing.T) {
	s, mock := newMockPostgres(t)

	res := model.Unresolved()
	raw, err := json.Marshal(res)
	require.NoError(t, err)

	mock.ExpectExec(`INSERT INTO resolution_cache`).
		WithArgs("k", raw, false, false).
		WillReturnResult(pgxmock.NewResult("INSERT", 1))

	require.NoError(t, s.PutResolution(context.Background(), "k", res))
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestPostgres_Stats(t *testing.T) {
	s, mock := newMockPostgres(t)

	mock.ExpectQuery(`SELECT COUNT`).
		WillReturnRows(pgxmock.NewRows([]string{"total", "resolved", "missing"}).
			AddRow(int64(10), int64(7), int64(2)))

	st, err := s.Stats(context.Background())
	require.NoError(t, err)
	assert.Equal(t, Stats{Total: 10, Resolved: 7, MissingPhotos: 2}, st)
	assert.NoError(t, mock.ExpectationsWereMet())
}
