package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"time"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	v1 "github.com/querydesk/querydesk/api/v1"
	"github.com/querydesk/querydesk/internal/handlers"
	"github.com/querydesk/querydesk/internal/models"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
)

var _ = Describe("Database Handlers", func() {
	var (
		mockDatabases *MockDatabaseService
		router        *gin.Engine
	)

	do := func(method, path, body string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
		req.Header.Set("Content-Type", "application/json")
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		return w
	}

	BeforeEach(func() {
		gin.SetMode(gin.TestMode)
		mockDatabases = &MockDatabaseService{}
		router = gin.New()
		router.Use(func(c *gin.Context) {
			c.Set(v1.UserContextKey, "alice")
		})
		v1.RegisterHandlers(router, handlers.New(nil, nil, nil, mockDatabases, nil, false))
	})

	Describe("ListDatabases", func() {
		It("should never expose the service role key", func() {
			mockDatabases.ListResult = []models.Database{
				models.NewDefaultDatabase("https://a.supabase.co", "anon", "service-secret", "postgres://u:pw@host/db"),
			}

			w := do(http.MethodGet, "/databases", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(w.Body.String()).NotTo(ContainSubstring("service-secret"))
			Expect(w.Body.String()).NotTo(ContainSubstring(":pw@"))
			var resp v1.DatabasesResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Databases).To(HaveLen(1))
			Expect(resp.Databases[0].IsDefault).To(BeTrue())
			Expect(resp.Databases[0].HasServiceRole).To(BeTrue())
		})
	})

	Describe("AddDatabase", func() {
		body := `{
			"name": "analytics",
			"supabase_url": "https://b.supabase.co",
			"supabase_anon_key": "anon",
			"database_url": "postgres://u:pw@host/db"
		}`

		// Given an authenticated user
		// When they register a database
		// Then the record should be created on their behalf
		It("should add the database as the current user", func() {
			mockDatabases.AddResult = &models.Database{ID: "db-2", Name: "analytics", ConnectionStatus: models.ConnectionStatusConnected}

			w := do(http.MethodPost, "/databases", body)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(mockDatabases.LastAdded.Name).To(Equal("analytics"))
			Expect(mockDatabases.LastAdded.AnonKey).To(Equal("anon"))
			Expect(mockDatabases.LastAdded.CreatedBy).To(Equal("alice"))
			var resp v1.AddDatabaseResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Message).To(Equal("Database added successfully"))
			Expect(resp.Database.ID).To(Equal("db-2"))
		})

		It("should return 409 for a duplicate name", func() {
			mockDatabases.AddError = srvErrors.NewDuplicateResourceError("database", "analytics")

			w := do(http.MethodPost, "/databases", body)

			Expect(w.Code).To(Equal(http.StatusConflict))
		})

		It("should return 400 when the connection test fails", func() {
			mockDatabases.AddError = srvErrors.NewConnectionError(errors.New("no route"))

			w := do(http.MethodPost, "/databases", body)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			var resp v1.ErrorResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Message).To(ContainSubstring("no route"))
		})

		It("should return 400 on missing fields", func() {
			mockDatabases.AddError = srvErrors.NewValidationError("All required fields must be provided")

			w := do(http.MethodPost, "/databases", `{"name": "x"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("TestDatabase", func() {
		It("should return the server timestamp", func() {
			now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
			mockDatabases.TestResult = now

			w := do(http.MethodPost, "/databases/test", `{"database_url": "postgres://host/db"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			var resp v1.TestDatabaseResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Message).To(Equal("Connection successful"))
			Expect(resp.Timestamp.Equal(now)).To(BeTrue())
		})

		It("should return 400 with the classified message on failure", func() {
			mockDatabases.TestError = srvErrors.NewConnectionError(errors.New("refused"))

			w := do(http.MethodPost, "/databases/test", `{"database_url": "postgres://host/db"}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
		})
	})

	Describe("DeployDatabase", func() {
		It("should require a database id", func() {
			w := do(http.MethodPost, "/databases/deploy", `{}`)

			Expect(w.Code).To(Equal(http.StatusBadRequest))
			var resp v1.ErrorResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Error).To(Equal("Database ID is required"))
			Expect(mockDatabases.DeployCount).To(BeZero())
		})

		It("should return the deployment status", func() {
			mockDatabases.DeployResult = models.DeploymentStatus{Endpoint: "https://b.supabase.co", State: models.DeploymentStateDeployed}

			w := do(http.MethodPost, "/databases/deploy", `{"databaseId": "db-2"}`)

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(mockDatabases.LastID).To(Equal("db-2"))
			var resp v1.DeployResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Deployment.Deployed).To(BeTrue())
			Expect(resp.Deployment.Error).To(BeNil())
		})

		It("should return 404 for an unknown database", func() {
			mockDatabases.DeployError = srvErrors.NewDatabaseNotFoundError("db-9")

			w := do(http.MethodPost, "/databases/deploy", `{"databaseId": "db-9"}`)

			Expect(w.Code).To(Equal(http.StatusNotFound))
		})

		It("should return 500 when the deployment fails", func() {
			mockDatabases.DeployError = srvErrors.NewBootstrapError("https://b.supabase.co", errors.New("permission denied"))

			w := do(http.MethodPost, "/databases/deploy", `{"databaseId": "db-2"}`)

			Expect(w.Code).To(Equal(http.StatusInternalServerError))
			Expect(w.Body.String()).To(ContainSubstring("permission denied"))
		})
	})

	Describe("GetDeploymentStatus", func() {
		It("should report the status of the requested database and all deployments", func() {
			mockDatabases.StatusResult = models.DeploymentStatus{Endpoint: "https://b.supabase.co", State: models.DeploymentStateFailed, Error: "timeout"}
			mockDatabases.StatusesResult = []models.DeploymentStatus{
				{Endpoint: "https://a.supabase.co", State: models.DeploymentStateDeployed},
				mockDatabases.StatusResult,
			}

			w := do(http.MethodGet, "/databases/deploy/status?databaseId=db-2", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(mockDatabases.LastID).To(Equal("db-2"))
			var resp v1.DeploymentStatusResponse
			Expect(json.Unmarshal(w.Body.Bytes(), &resp)).To(Succeed())
			Expect(resp.Deployed).To(BeFalse())
			Expect(resp.Status).To(Equal("failed"))
			Expect(*resp.Error).To(Equal("timeout"))
			Expect(resp.Deployments).To(HaveLen(2))
		})

		It("should default to the default database", func() {
			mockDatabases.StatusResult = models.DeploymentStatus{State: models.DeploymentStatePending}

			w := do(http.MethodGet, "/databases/deploy/status", "")

			Expect(w.Code).To(Equal(http.StatusOK))
			Expect(mockDatabases.LastID).To(BeEmpty())
			Expect(w.Body.String()).To(ContainSubstring(`"error":null`))
		})
	})
})
