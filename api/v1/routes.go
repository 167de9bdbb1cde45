package v1

import "github.com/gin-gonic/gin"

const (
	QueryPath            = "/query"
	ExportPath           = "/query/export"
	TablesPath           = "/tables"
	ColumnsPath          = "/columns"
	ColumnValuesPath     = "/column-values"
	SearchValuesPath     = "/search-values"
	DatabasesPath        = "/databases"
	TestDatabasePath     = "/databases/test"
	DeployPath           = "/databases/deploy"
	DeploymentStatusPath = "/databases/deploy/status"
	LoginPath            = "/auth/login"
)

// ServerInterface represents all server handlers.
type ServerInterface interface {
	// (POST /query)
	Query(c *gin.Context)
	// (POST /query/export)
	ExportQuery(c *gin.Context)
	// (POST /tables)
	ListTables(c *gin.Context)
	// (POST /columns)
	ListColumns(c *gin.Context)
	// (POST /column-values)
	ListColumnValues(c *gin.Context)
	// (POST /search-values)
	SearchValues(c *gin.Context)
	// (GET /databases)
	ListDatabases(c *gin.Context)
	// (POST /databases)
	AddDatabase(c *gin.Context)
	// (POST /databases/test)
	TestDatabase(c *gin.Context)
	// (POST /databases/deploy)
	DeployDatabase(c *gin.Context)
	// (GET /databases/deploy/status)
	GetDeploymentStatus(c *gin.Context)
	// (POST /auth/login)
	Login(c *gin.Context)
}

// RegisterHandlers creates http.Handler with routing matching the API.
func RegisterHandlers(router gin.IRouter, si ServerInterface) {
	router.POST(QueryPath, si.Query)
	router.POST(ExportPath, si.ExportQuery)
	router.POST(TablesPath, si.ListTables)
	router.POST(ColumnsPath, si.ListColumns)
	router.POST(ColumnValuesPath, si.ListColumnValues)
	router.POST(SearchValuesPath, si.SearchValues)
	router.GET(DatabasesPath, si.ListDatabases)
	router.POST(DatabasesPath, si.AddDatabase)
	router.POST(TestDatabasePath, si.TestDatabase)
	router.POST(DeployPath, si.DeployDatabase)
	router.GET(DeploymentStatusPath, si.GetDeploymentStatus)
	router.POST(LoginPath, si.Login)
}
