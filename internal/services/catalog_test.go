package services_test

import (
	"context"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/querydesk/querydesk/internal/models"
	"github.com/querydesk/querydesk/internal/services"
	srvErrors "github.com/querydesk/querydesk/pkg/errors"
	"github.com/querydesk/querydesk/pkg/supabase"
)

var _ = Describe("CatalogService", func() {
	var (
		ctx context.Context
		rpc *MockRPC
		srv *services.CatalogService
	)

	BeforeEach(func() {
		ctx = context.Background()
		rpc = NewMockRPC()
		getter := &MockDatabaseGetter{Databases: map[string]models.Database{}}
		srv = services.NewCatalogService(services.NewTenantResolver(defaultDatabase(), getter, &MockDeployer{}, rpc.Factory()))

		rpc.Responses["get_tables_list"] = `[{"table_name": "orders"}, {"table_name": "users"}]`
		rpc.Responses["get_table_columns"] = `[
			{"column_name": "id", "data_type": "integer", "is_nullable": "NO"},
			{"column_name": "FullName", "data_type": "text", "is_nullable": "YES"}
		]`
		rpc.Responses["get_distinct_values"] = `[{"val": "Ana"}, {"val": null}, {"val": "Ángel"}]`
	})

	Context("Tables", func() {
		It("should list table names", func() {
			tables, err := srv.Tables(ctx, "")

			Expect(err).NotTo(HaveOccurred())
			Expect(tables).To(Equal([]string{"orders", "users"}))
			Expect(rpc.LastCall().Fn).To(Equal("get_tables_list"))
		})

		It("should report missing functions", func() {
			rpc.Errors["get_tables_list"] = &supabase.RPCError{Code: "PGRST202", Message: "Could not find the function public.get_tables_list"}

			_, err := srv.Tables(ctx, "")

			Expect(srvErrors.IsRPCFunctionNotFoundError(err)).To(BeTrue())
		})

		It("should not expose other database errors as query errors", func() {
			rpc.Errors["get_tables_list"] = &supabase.RPCError{Code: "42501", Message: "permission denied"}

			_, err := srv.Tables(ctx, "")

			Expect(err).To(HaveOccurred())
			Expect(srvErrors.IsQueryExecutionError(err)).To(BeFalse())
			Expect(srvErrors.IsRPCFunctionNotFoundError(err)).To(BeFalse())
		})
	})

	Context("Columns", func() {
		It("should list the columns of a table", func() {
			columns, err := srv.Columns(ctx, "default", "users")

			Expect(err).NotTo(HaveOccurred())
			Expect(columns).To(HaveLen(2))
			Expect(columns[1]).To(Equal(models.Column{Name: "FullName", DataType: "text", Nullable: "YES"}))
			Expect(rpc.LastCall().Params).To(HaveKeyWithValue("tbl_name", "users"))
		})

		It("should require a table", func() {
			_, err := srv.Columns(ctx, "default", "")

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
			Expect(rpc.Calls).To(BeEmpty())
		})
	})

	Context("ColumnValues", func() {
		// Given a column name typed in another case
		// When we search its values
		// Then the real column name is used and nulls are skipped
		It("should resolve the column case-insensitively", func() {
			// Act
			res, err := srv.ColumnValues(ctx, "", "users", " fullname ", "an")

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(res.Column).To(Equal("FullName"))
			Expect(res.Values).To(Equal([]string{"Ana", "Ángel"}))

			call := rpc.LastCall()
			Expect(call.Fn).To(Equal("get_distinct_values"))
			Expect(call.Params).To(HaveKeyWithValue("column_name", "FullName"))
			Expect(call.Params).To(HaveKeyWithValue("table_name", "users"))
			Expect(call.Params).To(HaveKeyWithValue("search", "an"))
		})

		It("should list the available columns when the column is missing", func() {
			_, err := srv.ColumnValues(ctx, "", "users", "email", "")

			var cErr *srvErrors.ColumnNotFoundError
			Expect(errors.As(err, &cErr)).To(BeTrue())
			Expect(cErr.Available).To(Equal([]string{"id", "FullName"}))
			Expect(srvErrors.IsResourceNotFoundError(err)).To(BeTrue())
		})

		It("should require a table and a column", func() {
			_, err := srv.ColumnValues(ctx, "", "users", "", "")

			Expect(srvErrors.IsValidationError(err)).To(BeTrue())
		})
	})

	Context("SearchValues", func() {
		It("should pass the search and a default limit", func() {
			rpc.Responses["get_filtered_search_values_text_num"] = `[{"val": "42"}, {"val": "420"}]`

			values, err := srv.SearchValues(ctx, "", "orders", "total", "42", 0)

			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"42", "420"}))
			call := rpc.LastCall()
			Expect(call.Fn).To(Equal("get_filtered_search_values_text_num"))
			Expect(call.Params).To(HaveKeyWithValue("max_rows", 50))
			Expect(call.Params).To(HaveKeyWithValue("column_name", "total"))
			Expect(call.Params).To(HaveKeyWithValue("search", "42"))
			Expect(call.Params).To(HaveKeyWithValue("table_name", "orders"))
		})

		It("should pass the search term unwrapped and an explicit limit", func() {
			rpc.Responses["get_filtered_search_values_text_num"] = `[{"val": "Maria"}, {"val": null}]`

			values, err := srv.SearchValues(ctx, "", " users ", " name ", "ar", 10)

			Expect(err).NotTo(HaveOccurred())
			Expect(values).To(Equal([]string{"Maria"}))
			call := rpc.LastCall()
			Expect(call.Params).To(HaveKeyWithValue("search", "ar"))
			Expect(call.Params).To(HaveKeyWithValue("table_name", "users"))
			Expect(call.Params).To(HaveKeyWithValue("column_name", "name"))
			Expect(call.Params).To(HaveKeyWithValue("max_rows", 10))
		})

		It("should report missing functions", func() {
			rpc.Errors["get_filtered_search_values_text_num"] = &supabase.RPCError{Function: "get_filtered_search_values_text_num", Code: "42883", Message: "function public.get_filtered_search_values_text_num(text, text, text, integer) does not exist"}

			_, err := srv.SearchValues(ctx, "", "orders", "total", "42", 10)

			Expect(srvErrors.IsRPCFunctionNotFoundError(err)).To(BeTrue())
		})
	})
})
