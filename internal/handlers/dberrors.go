// internal/handlers/dberrors.go
//
// Store-error classification for write paths.  A duplicate-key
// violation is the caller's mistake (slug or email already taken) and
// maps to a 400; every other store error is an outage and maps to a
// 500 so operators see it instead of the caller absorbing it.
package handlers

import (
	"errors"

	"github.com/go-sql-driver/mysql"
)

// MySQL error 1062, ER_DUP_ENTRY, raised by any UNIQUE key violation.
const dupEntry = 1062

// isDuplicate reports whether err is a unique-key violation.
func isDuplicate(err error) bool {
	var me *mysql.MySQLError
	return errors.As(err, &me) && me.Number == dupEntry
}
