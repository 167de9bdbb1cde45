// Package handlers implements the HTTP API layer of querydesk.
//
// Handlers delegate business logic to the services layer and focus on request
// binding, response formatting and HTTP semantics.
//
// # Architecture Overview
//
//	┌─────────────────────────────────────────────────────────────────┐
//	│              HTTP Request (Gin, auth + rate limit)              │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Handler (this package)                     │
//	│  - Request binding and validation                               │
//	│  - Error mapping to HTTP status codes                           │
//	│  - Model-to-API conversion                                      │
//	└─────────────────────────────────────────────────────────────────┘
//	                              │
//	                              ▼
//	┌─────────────────────────────────────────────────────────────────┐
//	│                      Services Layer                             │
//	│  Query │ Export │ Catalog │ Database │ Auth                     │
//	└─────────────────────────────────────────────────────────────────┘
//
// All handlers are methods on a single Handler struct holding the services as
// interfaces. The Handler implements v1.ServerInterface:
//
//	v1.RegisterHandlers(router, handler)
//
// # API Endpoints
//
//	┌────────┬──────────────────────────┬───────────────────────────────────┐
//	│ Method │ Endpoint                 │ Description                       │
//	├────────┼──────────────────────────┼───────────────────────────────────┤
//	│ POST   │ /query                   │ Run a filter tree against a table │
//	│ POST   │ /query/export            │ Same, returned as an xlsx file    │
//	│ POST   │ /tables                  │ List tables                       │
//	│ POST   │ /columns                 │ List columns of a table           │
//	│ POST   │ /column-values           │ Distinct values of a column       │
//	│ POST   │ /search-values           │ Values matching a search term     │
//	│ GET    │ /databases               │ List tenants                      │
//	│ POST   │ /databases               │ Register a tenant                 │
//	│ POST   │ /databases/test          │ Test a connection string          │
//	│ POST   │ /databases/deploy        │ Install the server-side functions │
//	│ GET    │ /databases/deploy/status │ Deployment status                 │
//	│ POST   │ /auth/login              │ Get a session token               │
//	└────────┴──────────────────────────┴───────────────────────────────────┘
//
// Every data endpoint takes an optional databaseId. An empty id or "default"
// selects the tenant configured at startup.
//
// # Query Handler
//
// POST /query
//
//	{
//	    "table": "orders",
//	    "databaseId": "default",
//	    "query": {
//	        "combinator": "and",
//	        "rules": [
//	            { "field": "status", "operator": "=", "value": "open" },
//	            { "combinator": "or", "rules": [ ... ] }
//	        ]
//	    },
//	    "joins": [
//	        { "type": "LEFT", "targetTable": "customers", "sourceColumn": "customer_id", "targetColumn": "id" }
//	    ],
//	    "selectedColumns": [
//	        { "table": "orders", "column": "id" },
//	        { "table": "customers", "column": "name", "alias": "customer" }
//	    ]
//	}
//
// Response:
//
//	{ "success": true, "table": "orders", "count": 1, "data": [ ... ], "hasJoins": true }
//
// sqlQuery is added when the server runs with SQL debugging enabled.
//
// # Error Handling
//
//	┌─────────────────────────────┬────────┬──────────────────────────────────────┐
//	│ Error Type                  │ Status │ Body                                 │
//	├─────────────────────────────┼────────┼──────────────────────────────────────┤
//	│ ValidationError             │ 400    │ { error }                            │
//	│ ConnectionError             │ 400    │ { error, message }                   │
//	│ QueryExecutionError         │ 400    │ { success, userMessage, devMessage } │
//	│ InvalidCredentialsError     │ 401    │ { error }                            │
//	│ AccountDisabledError        │ 403    │ { error }                            │
//	│ ColumnNotFoundError         │ 404    │ { error, availableColumns }          │
//	│ ResourceNotFoundError       │ 404    │ { error }                            │
//	│ RPCFunctionNotFoundError    │ 404    │ { error, hint, details }             │
//	│ DuplicateResourceError      │ 409    │ { error }                            │
//	│ BootstrapError              │ 500    │ { error }                            │
//	│ Internal error              │ 500    │ { error } or { userMessage }         │
//	└─────────────────────────────┴────────┴──────────────────────────────────────┘
package handlers
