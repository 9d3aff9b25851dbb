package db

import "errors"

// ErrKeyNotFound is returned by Get for a missing key.
var ErrKeyNotFound = errors.New("db: key not found")

// Op names the failed store operation in an Error.
const (
	OpGet     = "GET"
	OpMGet    = "MGET"
	OpSet     = "SET"
	OpPutMany = "SET (pipelined)"
	OpPing    = "PING"
)

// Error wraps a backend failure with the operation that caused it.
type Error struct {
	Op  string
	Err error
}

func (e *Error) Error() string { return e.Op + ": " + e.Err.Error() }
func (e *Error) Unwrap() error { return e.Err }
