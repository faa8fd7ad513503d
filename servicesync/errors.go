package servicesync

import (
	"errors"
	"fmt"

	"bitbucket.org/mmdatafocus/service_sync/models"
	mysqlDriver "github.com/go-sql-driver/mysql"
)

var (
	ErrNoSourceRecords  = errors.New("no services found")
	ErrZeroRowsAffected = errors.New("zero rows affected")
	ErrRunLocked        = errors.New("another sync run holds the lock")
)

const mysqlErrNoSuchTable = 1146

// TransportError means the upstream API could not be reached or returned a
// body that could not be decoded. It aborts the run.
type TransportError struct {
	URL        string
	StatusCode int
	Err        error
}

func (e *TransportError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("fetch %s: status %d: %v", e.URL, e.StatusCode, e.Err)
	}
	return fmt.Sprintf("fetch %s: %v", e.URL, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

type SchemaError struct {
	Err error
}

func (e *SchemaError) Error() string {
	return fmt.Sprintf("create mapping table: %v", e.Err)
}

func (e *SchemaError) Unwrap() error { return e.Err }

type RepairError struct {
	MobileNumber string
	RowsAffected int64
	Err          error
}

func (e *RepairError) Error() string {
	return fmt.Sprintf("resolve service %s: %v", e.MobileNumber, e.Err)
}

func (e *RepairError) Unwrap() error { return e.Err }

type MappingWriteError struct {
	Type       models.MappingType
	LocalId    int
	ExternalId int
	Err        error
}

func (e *MappingWriteError) Error() string {
	msg := fmt.Sprintf("record %s mapping %d -> %d: %v", e.Type, e.LocalId, e.ExternalId, e.Err)
	if isMissingTable(e.Err) {
		msg += " (mapping table missing)"
	}
	return msg
}

func (e *MappingWriteError) Unwrap() error { return e.Err }

func isMissingTable(err error) bool {
	var mysqlErr *mysqlDriver.MySQLError
	if errors.As(err, &mysqlErr) {
		return mysqlErr.Number == mysqlErrNoSuchTable
	}
	return false
}
