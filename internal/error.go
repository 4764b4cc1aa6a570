package internal

import (
	"database/sql"
	"fmt"
)

var (
	ErrNoRows    = Errorf("entmap: no rows in result set").Matching(sql.ErrNoRows)
	ErrMultiRows = Errorf("entmap: multiple rows in result set")
)

// Error is a comparable sentinel error. It optionally matches another
// error in errors.Is, e.g. ErrNoRows matches sql.ErrNoRows.
type Error struct {
	s     string
	alias error
}

func Errorf(s string, args ...interface{}) Error {
	return Error{s: fmt.Sprintf(s, args...)}
}

func (err Error) Matching(alias error) Error {
	err.alias = alias
	return err
}

func (err Error) Error() string {
	return err.s
}

func (err Error) Is(target error) bool {
	return err.alias != nil && target == err.alias
}
