package supabase_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/querydesk/querydesk/pkg/supabase"
)

var _ = Describe("Client", func() {
	var (
		ctx      context.Context
		srv      *httptest.Server
		handler  http.HandlerFunc
		lastReq  *http.Request
		lastBody map[string]any
	)

	BeforeEach(func() {
		ctx = context.Background()
		lastReq = nil
		lastBody = nil
		srv = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			lastReq = r
			data, _ := io.ReadAll(r.Body)
			_ = json.Unmarshal(data, &lastBody)
			handler(w, r)
		}))
	})

	AfterEach(func() {
		srv.Close()
	})

	Context("RPC", func() {
		// Given a PostgREST endpoint returning rows
		// When we call a function
		// Then the rows are decoded and the request carries the credentials
		It("should post named params and decode rows", func() {
			// Arrange
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.Header().Set("Content-Type", "application/json")
				_, _ = w.Write([]byte(`[{"id": 1, "name": "ana"}, {"id": 2, "name": "bo"}]`))
			}
			client := supabase.NewClient(srv.URL+"/", "service-key")

			// Act
			var rows []map[string]any
			err := client.RPC(ctx, "execute_dynamic_query", map[string]string{"query_text": "SELECT 1"}, &rows)

			// Assert
			Expect(err).NotTo(HaveOccurred())
			Expect(rows).To(HaveLen(2))
			Expect(rows[0]["id"]).To(Equal(json.Number("1")))
			Expect(rows[1]["name"]).To(Equal("bo"))

			Expect(lastReq.Method).To(Equal(http.MethodPost))
			Expect(lastReq.URL.Path).To(Equal("/rest/v1/rpc/execute_dynamic_query"))
			Expect(lastReq.Header.Get("apikey")).To(Equal("service-key"))
			Expect(lastReq.Header.Get("Authorization")).To(Equal("Bearer service-key"))
			Expect(lastBody).To(HaveKeyWithValue("query_text", "SELECT 1"))
		})

		It("should send an empty object when params are nil", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`[]`))
			}
			client := supabase.NewClient(srv.URL, "k")

			var rows []map[string]any
			Expect(client.RPC(ctx, "get_tables_list", nil, &rows)).To(Succeed())
			Expect(rows).To(BeEmpty())
			Expect(lastBody).NotTo(BeNil())
			Expect(lastBody).To(BeEmpty())
		})

		It("should accept a null body", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				_, _ = w.Write([]byte(`null`))
			}
			client := supabase.NewClient(srv.URL, "k")

			var rows []map[string]any
			Expect(client.RPC(ctx, "execute_dynamic_query", nil, &rows)).To(Succeed())
			Expect(rows).To(BeNil())
		})

		// Given Postgres rejects the statement
		// When we call a function
		// Then the error carries message, code and hint
		It("should surface database errors", func() {
			// Arrange
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadRequest)
				_, _ = w.Write([]byte(`{"code":"42703","details":null,"hint":"Perhaps you meant \"age\".","message":"column main.agee does not exist"}`))
			}
			client := supabase.NewClient(srv.URL, "k")

			// Act
			err := client.RPC(ctx, "execute_dynamic_query", nil, nil)

			// Assert
			Expect(err).To(HaveOccurred())
			rpcErr, ok := supabase.AsRPCError(err)
			Expect(ok).To(BeTrue())
			Expect(rpcErr.StatusCode).To(Equal(http.StatusBadRequest))
			Expect(rpcErr.Code).To(Equal("42703"))
			Expect(rpcErr.Hint).To(Equal(`Perhaps you meant "age".`))
			Expect(rpcErr.Details).To(BeEmpty())
			Expect(rpcErr.FunctionMissing()).To(BeFalse())
		})

		It("should flag a missing function", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"code":"PGRST202","details":"Searched for the function public.get_tables_list without parameters","hint":null,"message":"Could not find the function public.get_tables_list without parameters in the schema cache"}`))
			}
			client := supabase.NewClient(srv.URL, "k")

			err := client.RPC(ctx, "get_tables_list", nil, nil)

			rpcErr, ok := supabase.AsRPCError(err)
			Expect(ok).To(BeTrue())
			Expect(rpcErr.FunctionMissing()).To(BeTrue())
			Expect(rpcErr.Details).To(ContainSubstring("Searched for the function"))
		})

		It("should not flag operator mismatches as a missing function", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"code":"42883","details":null,"hint":"No operator matches the given name and argument types.","message":"operator does not exist: text > integer"}`))
			}
			client := supabase.NewClient(srv.URL, "k")

			err := client.RPC(ctx, "execute_dynamic_query", nil, nil)

			rpcErr, ok := supabase.AsRPCError(err)
			Expect(ok).To(BeTrue())
			Expect(rpcErr.Function).To(Equal("execute_dynamic_query"))
			Expect(rpcErr.Code).To(Equal("42883"))
			Expect(rpcErr.FunctionMissing()).To(BeFalse())
		})

		It("should not flag an unknown function used inside the statement", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"code":"42883","details":null,"hint":null,"message":"function lower(integer) does not exist"}`))
			}
			client := supabase.NewClient(srv.URL, "k")

			err := client.RPC(ctx, "execute_dynamic_query", nil, nil)

			rpcErr, ok := supabase.AsRPCError(err)
			Expect(ok).To(BeTrue())
			Expect(rpcErr.FunctionMissing()).To(BeFalse())
		})

		It("should flag a 42883 naming the called function", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusNotFound)
				_, _ = w.Write([]byte(`{"code":"42883","details":null,"hint":null,"message":"function public.execute_dynamic_query(text) does not exist"}`))
			}
			client := supabase.NewClient(srv.URL, "k")

			err := client.RPC(ctx, "execute_dynamic_query", nil, nil)

			rpcErr, ok := supabase.AsRPCError(err)
			Expect(ok).To(BeTrue())
			Expect(rpcErr.FunctionMissing()).To(BeTrue())
		})

		It("should keep a non JSON error body as message", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(http.StatusBadGateway)
				_, _ = w.Write([]byte("upstream down"))
			}
			client := supabase.NewClient(srv.URL, "k")

			err := client.RPC(ctx, "get_tables_list", nil, nil)

			rpcErr, ok := supabase.AsRPCError(err)
			Expect(ok).To(BeTrue())
			Expect(rpcErr.Message).To(Equal("upstream down"))
		})
	})

	Context("Endpoint", func() {
		It("should strip trailing slashes", func() {
			handler = func(w http.ResponseWriter, r *http.Request) {}
			client := supabase.NewClient("https://abc.supabase.co//", "k")
			Expect(client.Endpoint()).To(Equal("https://abc.supabase.co"))
		})
	})
})
