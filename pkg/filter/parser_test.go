package filter

import (
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	qb "github.com/querydesk/querydesk/pkg/querybuilder"
)

var _ = Describe("Parser", func() {
	Context("Valid expressions", func() {
		type testCase struct {
			input  string
			output *qb.Group
		}

		tests := []testCase{
			// ===== SINGLE COMPARISONS =====
			{input: "status = 'open'", output: qb.NewGroup(qb.And, qb.Cond("status", qb.OpEqual, "open"))},
			{input: "status != 'open'", output: qb.NewGroup(qb.And, qb.Cond("status", qb.OpNotEqual, "open"))},
			{input: "status <> 'open'", output: qb.NewGroup(qb.And, qb.Cond("status", qb.OpNotEqual, "open"))},
			{input: "amount > 10", output: qb.NewGroup(qb.And, qb.Cond("amount", qb.OpGreater, json.Number("10")))},
			{input: "amount >= 10.5", output: qb.NewGroup(qb.And, qb.Cond("amount", qb.OpGreaterEq, json.Number("10.5")))},
			{input: "amount < -1", output: qb.NewGroup(qb.And, qb.Cond("amount", qb.OpLess, json.Number("-1")))},
			{input: "amount <= 0", output: qb.NewGroup(qb.And, qb.Cond("amount", qb.OpLessEq, json.Number("0")))},
			{input: "note ~ 'rush'", output: qb.NewGroup(qb.And, qb.Cond("note", qb.OpContains, "rush"))},
			{input: "code ^= 'FR'", output: qb.NewGroup(qb.And, qb.Cond("code", qb.OpBeginsWith, "FR"))},
			{input: "email $= '.org'", output: qb.NewGroup(qb.And, qb.Cond("email", qb.OpEndsWith, ".org"))},
			{input: "paid = true", output: qb.NewGroup(qb.And, qb.Cond("paid", qb.OpEqual, true))},
			{input: "paid = FALSE", output: qb.NewGroup(qb.And, qb.Cond("paid", qb.OpEqual, false))},

			// ===== NULL CHECKS =====
			{input: "closed_at is null", output: qb.NewGroup(qb.And, qb.Cond("closed_at", qb.OpNull, nil))},
			{input: "closed_at IS NOT NULL", output: qb.NewGroup(qb.And, qb.Cond("closed_at", qb.OpNotNull, nil))},

			// ===== LISTS =====
			{
				input:  "country in ('FR', 'DE')",
				output: qb.NewGroup(qb.And, qb.Cond("country", qb.OpIn, []any{"FR", "DE"})),
			},
			{
				input:  "id in (1, 2, 3)",
				output: qb.NewGroup(qb.And, qb.Cond("id", qb.OpIn, []any{json.Number("1"), json.Number("2"), json.Number("3")})),
			},

			// ===== QUALIFIED COLUMNS =====
			{input: "customers.country = 'FR'", output: qb.NewGroup(qb.And, qb.Cond("customers.country", qb.OpEqual, "FR"))},

			// ===== COMBINATORS =====
			{
				input: "a = '1' and b = '2' and c = '3'",
				output: qb.NewGroup(qb.And,
					qb.Cond("a", qb.OpEqual, "1"),
					qb.Cond("b", qb.OpEqual, "2"),
					qb.Cond("c", qb.OpEqual, "3"),
				),
			},
			{
				input: "a = '1' or b = '2'",
				output: qb.NewGroup(qb.Or,
					qb.Cond("a", qb.OpEqual, "1"),
					qb.Cond("b", qb.OpEqual, "2"),
				),
			},
			// and binds tighter than or
			{
				input: "a = '1' or b = '2' and c = '3'",
				output: qb.NewGroup(qb.Or,
					qb.Cond("a", qb.OpEqual, "1"),
					qb.NewGroup(qb.And,
						qb.Cond("b", qb.OpEqual, "2"),
						qb.Cond("c", qb.OpEqual, "3"),
					),
				),
			},
			{
				input: "(a = '1' or b = '2') and c = '3'",
				output: qb.NewGroup(qb.And,
					qb.NewGroup(qb.Or,
						qb.Cond("a", qb.OpEqual, "1"),
						qb.Cond("b", qb.OpEqual, "2"),
					),
					qb.Cond("c", qb.OpEqual, "3"),
				),
			},
			{
				input:  "(a = '1')",
				output: qb.NewGroup(qb.And, qb.Cond("a", qb.OpEqual, "1")),
			},
			{
				input: "AND_col = 'x' AND or_col = 'y'",
				output: qb.NewGroup(qb.And,
					qb.Cond("AND_col", qb.OpEqual, "x"),
					qb.Cond("or_col", qb.OpEqual, "y"),
				),
			},

			// ===== EMPTY =====
			{input: "", output: qb.NewGroup(qb.And)},
			{input: "   ", output: qb.NewGroup(qb.And)},
		}

		for _, test := range tests {
			It("should parse: "+test.input, func() {
				group, err := Parse([]byte(test.input))
				Expect(err).NotTo(HaveOccurred())
				Expect(group).To(Equal(test.output))
			})
		}
	})

	Context("Invalid expressions", func() {
		tests := []string{
			"status",
			"status =",
			"= 'open'",
			"status = open",
			"status = 'open' and",
			"status = 'open' or or b = '1'",
			"(status = 'open'",
			"status = 'open')",
			"status is 'open'",
			"status is not 'open'",
			"id in ()",
			"id in (1, )",
			"id in 1",
			"a.b.c = '1'",
			"status ! 'open'",
			"status = 'open",
		}

		for _, input := range tests {
			It("should reject: "+input, func() {
				group, err := Parse([]byte(input))
				Expect(err).To(HaveOccurred())
				Expect(group).To(BeNil())

				var pe ParseError
				Expect(errors.As(err, &pe)).To(BeTrue())
			})
		}

		It("should report the position of the error", func() {
			_, err := Parse([]byte("status = 'open' and amount >"))
			Expect(err).To(MatchError(ContainSubstring("parse error at 28")))
		})
	})

	Context("Compiling", func() {
		// Given a parsed filter
		// When it is compiled against a table
		// Then the where clause should match the tree built by hand
		It("should compile like an API tree", func() {
			group, err := Parse([]byte("status = 'open' and amount > 10"))
			Expect(err).NotTo(HaveOccurred())

			byHand := qb.NewGroup(qb.And,
				qb.Cond("status", qb.OpEqual, "open"),
				qb.Cond("amount", qb.OpGreater, 10),
			)

			Expect(qb.Where("orders", group, nil)).To(Equal(qb.Where("orders", byHand, nil)))
		})
	})
})
