package connection

import (
	"database/sql"

	"gorm.io/gorm"
)

// TxBound returns a session of db whose statements execute on tx, so a gorm
// repository can join a transaction the service opened with database/sql.
// Commit and Rollback stay with the caller; the session must not be used
// after the transaction finishes.
func TxBound(db *gorm.DB, tx *sql.Tx) *gorm.DB {
	session := db.Session(&gorm.Session{NewDB: true})
	session.Statement.ConnPool = tx
	return session
}
