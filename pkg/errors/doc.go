// Package errors provides custom error types for querydesk.
//
// Each error type includes a constructor, Error() method, and a type-checking
// helper using errors.As for proper error unwrapping.
//
// # Error Types Overview
//
//	┌──────────────────────────┬────────┬─────────────────────────────────────┐
//	│ Error Type               │ HTTP   │ Description                         │
//	├──────────────────────────┼────────┼─────────────────────────────────────┤
//	│ ValidationError          │ 400    │ Missing or invalid request input    │
//	│ ResourceNotFoundError    │ 404    │ Unknown database, column or user    │
//	│ DuplicateResourceError   │ 409    │ Database name already registered    │
//	│ ConnectionError          │ 400    │ Tenant Postgres unreachable         │
//	│ QueryExecutionError      │ 400    │ Database rejected a compiled query  │
//	│ RPCFunctionNotFoundError │ 404    │ Server-side functions not deployed  │
//	│ BootstrapError           │ 500    │ Deploying functions failed          │
//	│ InvalidCredentialsError  │ 401    │ Wrong username or password          │
//	│ AccountDisabledError     │ 403    │ Login of a disabled account         │
//	└──────────────────────────┴────────┴─────────────────────────────────────┘
//
// # ConnectionError
//
// Wraps low-level connection failures with user-friendly messages. The
// classification is a fixed mapping:
//
//	┌──────────────────────────────────┬───────────────────────────────────────┐
//	│ Cause                            │ Message                               │
//	├──────────────────────────────────┼───────────────────────────────────────┤
//	│ syscall.ECONNREFUSED             │ Connection refused...                 │
//	│ *net.DNSError (not found)        │ Database host not found...            │
//	│ SQLSTATE 28P01                   │ Authentication failed...              │
//	│ SQLSTATE 3D000                   │ Database does not exist.              │
//	│ deadline exceeded / net timeout  │ Connection timeout...                 │
//	│ any other SQLSTATE               │ Database error (<code>): <message>    │
//	│ anything else                    │ Connection failed: <raw error>        │
//	└──────────────────────────────────┴───────────────────────────────────────┘
//
// # QueryExecutionError
//
// Carries two audiences: UserMessage is generic ("check your filters") while
// Message, Code, Hint and Details carry the database's own report. Handlers
// never put the SQL text or a stack trace in UserMessage.
//
// # Type Checking Pattern
//
// All error types provide Is* helper functions that use errors.As
// for proper error chain unwrapping:
//
//	wrapped := fmt.Errorf("resolve tenant: %w", errors.NewDatabaseNotFoundError("42"))
//	errors.IsResourceNotFoundError(wrapped) // returns true
//
// # Handler Error Mapping
//
//	switch {
//	case errors.IsValidationError(err):
//	    c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
//	case errors.IsResourceNotFoundError(err):
//	    c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
//	case errors.IsDuplicateResourceError(err):
//	    c.JSON(http.StatusConflict, gin.H{"error": err.Error()})
//	default:
//	    c.JSON(http.StatusInternalServerError, gin.H{"error": "Internal server error"})
//	}
package errors
