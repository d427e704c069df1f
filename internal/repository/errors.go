package repository

import "errors"

var (
	ErrNotFound       = errors.New("not found")
	ErrOptimisticLock = errors.New("record was modified concurrently")
)

type rowScanner interface {
	Scan(dest ...interface{}) error
}
