package leave_test

import (
	"context"
	"testing"

	"github.com/Vishal6374/hr-harmony-sub000/internal/leave"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// An approval's balance debit must live and die with the caller's
// transaction: when the service rolls back, the debit is gone. The pool and
// the transaction sit on separate mock connections so a write landing on
// the wrong one fails its expectations.
func TestBalanceRepository_WithTx_DebitRollsBackWithCaller(t *testing.T) {
	pool, poolMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer pool.Close()

	gdb, err := gorm.Open(postgres.New(postgres.Config{Conn: pool}), &gorm.Config{})
	assert.NoError(t, err)

	txDB, txMock, err := sqlmock.New()
	assert.NoError(t, err)
	defer txDB.Close()

	txMock.ExpectBegin()
	tx, err := txDB.Begin()
	assert.NoError(t, err)

	txMock.ExpectExec("UPDATE leave_balances").
		WillReturnResult(sqlmock.NewResult(0, 1))
	txMock.ExpectRollback()

	repo := leave.NewBalanceRepository(gdb)
	ok, err := repo.WithTx(tx).AddUsed(context.Background(), "bal-1", 3)
	assert.NoError(t, err)
	assert.True(t, ok)

	assert.NoError(t, tx.Rollback())
	assert.NoError(t, txMock.ExpectationsWereMet())
	assert.NoError(t, poolMock.ExpectationsWereMet())
}
