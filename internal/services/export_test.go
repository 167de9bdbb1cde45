package services_test

import (
	"bytes"
	"context"
	"encoding/json"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/xuri/excelize/v2"

	"github.com/querydesk/querydesk/internal/models"
	"github.com/querydesk/querydesk/internal/services"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
	qb "github.com/querydesk/querydesk/pkg/querybuilder"
)

func readSheet(data []byte, sheet string) [][]string {
	f, err := excelize.OpenReader(bytes.NewReader(data))
	Expect(err).NotTo(HaveOccurred())
	defer f.Close()

	rows, err := f.GetRows(sheet)
	Expect(err).NotTo(HaveOccurred())
	return rows
}

var _ = Describe("Export", func() {
	Context("Workbook", func() {
		It("should write sorted headers when no columns are selected", func() {
			// Arrange
			result := &models.QueryResult{
				Table: "users",
				Rows: []models.Row{
					{"name": "ana", "age": json.Number("31"), "tags": []any{"a", "b"}},
					{"name": "bo", "age": json.Number("2.5"), "extra": nil},
				},
			}

			// Act
			data, err := services.Workbook(result, nil)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			rows := readSheet(data, "users")
			Expect(rows[0]).To(Equal([]string{"age", "extra", "name", "tags"}))
			Expect(rows[1]).To(Equal([]string{"31", "", "ana", `["a","b"]`}))
			Expect(rows[2][0]).To(Equal("2.5"))
			Expect(rows[2][2]).To(Equal("bo"))
		})

		It("should follow the selected columns and aliases", func() {
			result := &models.QueryResult{
				Table: "orders",
				Rows:  []models.Row{{"order_total": json.Number("10"), "id": json.Number("7")}},
			}

			data, err := services.Workbook(result, []qb.SelectedColumn{
				{Table: "orders", Column: "id"},
				{Table: "orders", Column: "total", Alias: "order_total"},
			})

			Expect(err).NotTo(HaveOccurred())
			rows := readSheet(data, "orders")
			Expect(rows).To(Equal([][]string{{"id", "order_total"}, {"7", "10"}}))
		})

		It("should sanitize the sheet name", func() {
			result := &models.QueryResult{Table: "a/b:c[really_long_table_name_over_limit]"}

			data, err := services.Workbook(result, nil)

			Expect(err).NotTo(HaveOccurred())
			f, err := excelize.OpenReader(bytes.NewReader(data))
			Expect(err).NotTo(HaveOccurred())
			defer f.Close()
			name := f.GetSheetName(0)
			Expect(name).To(HaveLen(31))
			Expect(name).To(HavePrefix("a_b_c_really"))
		})
	})

	Context("ExportService", func() {
		var (
			rpc *MockRPC
			srv *services.ExportService
		)

		BeforeEach(func() {
			rpc = NewMockRPC()
			getter := &MockDatabaseGetter{Databases: map[string]models.Database{}}
			resolver := services.NewTenantResolver(defaultDatabase(), getter, &MockDeployer{}, rpc.Factory())
			srv = services.NewExportService(services.NewQueryService(resolver))
		})

		It("should export the query rows", func() {
			rpc.Responses["execute_dynamic_query"] = `[{"id": 1}, {"id": 2}]`

			export, err := srv.Export(context.Background(), "", qb.Query{Table: "users"})

			Expect(err).NotTo(HaveOccurred())
			Expect(export.FileName).To(Equal("users.xlsx"))
			Expect(export.Rows).To(Equal(2))
			Expect(readSheet(export.Data, "users")).To(HaveLen(3))
		})

		It("should propagate query errors", func() {
			_, err := srv.Export(context.Background(), "", qb.Query{})

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})
	})
})
