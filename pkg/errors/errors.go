package errors

import (
	"context"
	"errors"
	"fmt"
	"net"
	"strings"
	"syscall"

	"github.com/jackc/pgx/v5/pgconn"
)

// ResourceNotFoundError indicates a resource was not found.
type ResourceNotFoundError struct {
	Kind string
	ID   string
}

func NewResourceNotFoundError(kind string, id ...string) *ResourceNotFoundError {
	e := &ResourceNotFoundError{Kind: kind}
	if len(id) > 0 {
		e.ID = id[0]
	}
	return e
}

func NewDatabaseNotFoundError(id string) *ResourceNotFoundError {
	return NewResourceNotFoundError("database", id)
}

func NewUserNotFoundError(name string) *ResourceNotFoundError {
	return NewResourceNotFoundError("user", name)
}

func (e *ResourceNotFoundError) Error() string {
	if e.ID != "" {
		return fmt.Sprintf("%s %q not found", e.Kind, e.ID)
	}
	return fmt.Sprintf("%s not found", e.Kind)
}

func IsResourceNotFoundError(err error) bool {
	var e *ResourceNotFoundError
	return errors.As(err, &e)
}

// ColumnNotFoundError is a ResourceNotFoundError for a column which also lists
// the columns the table does have.
type ColumnNotFoundError struct {
	Column    string
	Available []string
}

func NewColumnNotFoundError(column string, available []string) *ColumnNotFoundError {
	return &ColumnNotFoundError{Column: column, Available: available}
}

func (e *ColumnNotFoundError) Error() string {
	return fmt.Sprintf("Column %q not found", e.Column)
}

func (e *ColumnNotFoundError) Unwrap() error {
	return NewResourceNotFoundError("column", e.Column)
}

func IsColumnNotFoundError(err error) bool {
	var e *ColumnNotFoundError
	return errors.As(err, &e)
}

// ValidationError indicates the request is missing or carries invalid input.
type ValidationError struct {
	msg string
}

func NewValidationError(format string, args ...any) *ValidationError {
	return &ValidationError{msg: fmt.Sprintf(format, args...)}
}

func (e *ValidationError) Error() string {
	return e.msg
}

func IsValidationError(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// DuplicateResourceError indicates a resource with the same name already exists.
type DuplicateResourceError struct {
	Kind string
	Name string
}

func NewDuplicateResourceError(kind, name string) *DuplicateResourceError {
	return &DuplicateResourceError{Kind: kind, Name: name}
}

func (e *DuplicateResourceError) Error() string {
	return fmt.Sprintf("%s name %q already exists", e.Kind, e.Name)
}

func IsDuplicateResourceError(err error) bool {
	var e *DuplicateResourceError
	return errors.As(err, &e)
}

// ConnectionError is a failed attempt to reach a tenant's Postgres database.
// Its message is already human readable.
type ConnectionError struct {
	Code string
	msg  string
	err  error
}

// NewConnectionError classifies err into a user-friendly message.
func NewConnectionError(err error) *ConnectionError {
	cErr := &ConnectionError{err: err}

	var pgErr *pgconn.PgError
	var dnsErr *net.DNSError
	var netErr net.Error

	switch {
	case errors.As(err, &pgErr) && pgErr.Code == "28P01":
		cErr.Code = pgErr.Code
		cErr.msg = "Authentication failed. Please check your username and password."
	case errors.As(err, &pgErr) && pgErr.Code == "3D000":
		cErr.Code = pgErr.Code
		cErr.msg = "Database does not exist."
	case errors.Is(err, syscall.ECONNREFUSED):
		cErr.Code = "ECONNREFUSED"
		cErr.msg = "Connection refused. Please check your database URL and credentials."
	case errors.As(err, &dnsErr) && dnsErr.IsNotFound:
		cErr.Code = "ENOTFOUND"
		cErr.msg = "Database host not found. Please verify the hostname."
	case errors.Is(err, context.DeadlineExceeded), errors.As(err, &netErr) && netErr.Timeout():
		cErr.Code = "ETIMEDOUT"
		cErr.msg = "Connection timeout. Please check your network or database availability."
	case errors.As(err, &pgErr):
		cErr.Code = pgErr.Code
		cErr.msg = fmt.Sprintf("Database error (%s): %s", pgErr.Code, pgErr.Message)
	default:
		cErr.msg = fmt.Sprintf("Connection failed: %s", err)
	}

	return cErr
}

func (e *ConnectionError) Error() string {
	return e.msg
}

func (e *ConnectionError) Unwrap() error {
	return e.err
}

func IsConnectionError(err error) bool {
	var e *ConnectionError
	return errors.As(err, &e)
}

// QueryExecutionError is a database-reported failure of a compiled statement.
// UserMessage is safe to show to anyone; the other fields are for developers.
type QueryExecutionError struct {
	UserMessage string
	Message     string
	Code        string
	Hint        string
	Details     string
}

func NewQueryExecutionError(message, code, hint, details string) *QueryExecutionError {
	return &QueryExecutionError{
		UserMessage: "Query syntax error. Please check your filters.",
		Message:     message,
		Code:        code,
		Hint:        hint,
		Details:     details,
	}
}

func (e *QueryExecutionError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("query execution failed (%s): %s", e.Code, e.Message)
	}
	return fmt.Sprintf("query execution failed: %s", e.Message)
}

func IsQueryExecutionError(err error) bool {
	var e *QueryExecutionError
	return errors.As(err, &e)
}

// RPCFunctionNotFoundError indicates the tenant lacks the server-side functions,
// usually because its bootstrap failed.
type RPCFunctionNotFoundError struct {
	Function string
	Details  string
}

func NewRPCFunctionNotFoundError(function, details string) *RPCFunctionNotFoundError {
	return &RPCFunctionNotFoundError{Function: function, Details: details}
}

func (e *RPCFunctionNotFoundError) Error() string {
	return fmt.Sprintf("rpc function %s not found", e.Function)
}

// Hint tells the caller how to install the missing functions.
func (e *RPCFunctionNotFoundError) Hint() string {
	return "Please deploy functions using POST /api/v1/databases/deploy"
}

func IsRPCFunctionNotFoundError(err error) bool {
	var e *RPCFunctionNotFoundError
	return errors.As(err, &e)
}

// IsFunctionMissingMessage reports whether a database error message describes
// an unknown function.
func IsFunctionMissingMessage(msg string) bool {
	msg = strings.ToLower(msg)
	return (strings.Contains(msg, "function") && strings.Contains(msg, "does not exist")) ||
		strings.Contains(msg, "could not find the function")
}

// BootstrapError indicates installing the server-side functions failed.
type BootstrapError struct {
	Endpoint string
	err      error
}

func NewBootstrapError(endpoint string, err error) *BootstrapError {
	return &BootstrapError{Endpoint: endpoint, err: err}
}

func (e *BootstrapError) Error() string {
	return fmt.Sprintf("deployment failed for %s: %s", e.Endpoint, e.err)
}

func (e *BootstrapError) Unwrap() error {
	return e.err
}

func IsBootstrapError(err error) bool {
	var e *BootstrapError
	return errors.As(err, &e)
}

// InvalidCredentialsError is returned on a failed login. It never says which
// part of the credentials was wrong.
type InvalidCredentialsError struct{}

func NewInvalidCredentialsError() *InvalidCredentialsError {
	return &InvalidCredentialsError{}
}

func (e *InvalidCredentialsError) Error() string {
	return "Invalid username or password"
}

func IsInvalidCredentialsError(err error) bool {
	var e *InvalidCredentialsError
	return errors.As(err, &e)
}

// AccountDisabledError is returned when a disabled user tries to log in.
type AccountDisabledError struct{}

func NewAccountDisabledError() *AccountDisabledError {
	return &AccountDisabledError{}
}

func (e *AccountDisabledError) Error() string {
	return "Your account has been disabled. Please contact your administrator."
}

func IsAccountDisabledError(err error) bool {
	var e *AccountDisabledError
	return errors.As(err, &e)
}
