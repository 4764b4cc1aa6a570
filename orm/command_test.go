package orm_test

import (
	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/go-pg/entmap/orm"
)

var _ = Describe("CrudMapper commands", func() {
	var orders *orm.CrudMapper[Order]
	var lines *orm.CrudMapper[OrderLine]

	BeforeEach(func() {
		var err error
		orders, err = orm.NewCrudMapper[Order]()
		Expect(err).NotTo(HaveOccurred())
		lines, err = orm.NewCrudMapper[OrderLine]()
		Expect(err).NotTo(HaveOccurred())
	})

	It("requires primary keys", func() {
		_, err := orm.NewCrudMapper[ReportRow]()
		Expect(err).To(MatchError("orm: model=ReportRow does not have primary keys"))
	})

	It("requires a struct", func() {
		_, err := orm.NewCrudMapper[int]()
		Expect(err).To(MatchError("orm: got int, wanted struct"))
	})

	Describe("insert", func() {
		It("omits zero primary key and returns it", func() {
			cmd, err := orders.InsertCommand(orm.Postgres, &Order{Customer: "acme", Total: 10.5})
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Operation()).To(Equal(orm.InsertOp))
			Expect(cmd.Table).To(Equal("orders"))
			Expect(cmd.Query).To(Equal(
				`INSERT INTO "orders" ("customer", "total", "notes", "created_at") VALUES ($1, $2, $3, $4) RETURNING "id"`))
			Expect(cmd.Args).To(Equal([]interface{}{"acme", 10.5, nil, nil}))
			Expect(cmd.Returning).To(HaveLen(1))
			Expect(cmd.Returning[0].SQLName).To(Equal("id"))
		})

		It("writes explicit primary key", func() {
			cmd, err := orders.InsertCommand(orm.Postgres, &Order{ID: 5, Customer: "acme"})
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Query).To(Equal(
				`INSERT INTO "orders" ("id", "customer", "total", "notes", "created_at") VALUES ($1, $2, $3, $4, $5)`))
			Expect(cmd.Args[0]).To(Equal(int64(5)))
			Expect(cmd.Returning).To(BeEmpty())
		})

		It("uses question placeholders without RETURNING on MySQL", func() {
			cmd, err := orders.InsertCommand(orm.MySQL, &Order{Customer: "acme"})
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Query).To(Equal(
				"INSERT INTO `orders` (`customer`, `total`, `notes`, `created_at`) VALUES (?, ?, ?, ?)"))
			Expect(cmd.Returning).To(HaveLen(1))
		})

		It("quotes schema qualified names and keeps use_zero values", func() {
			cmd, err := lines.InsertCommand(orm.SQLite, &OrderLine{OrderID: 1, LineNo: 2, Sku: "x"})
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Query).To(Equal(
				`INSERT INTO "sales"."order_line" ("order_id", "line_no", "sku", "qty") VALUES (?, ?, ?, ?)`))
			Expect(cmd.Args).To(Equal([]interface{}{int64(1), 2, "x", 0}))
		})

		It("skips readonly columns", func() {
			invoices, err := orm.NewCrudMapper[Invoice]()
			Expect(err).NotTo(HaveOccurred())

			cmd, err := invoices.InsertCommand(orm.Postgres, &Invoice{Number: "A-1"})
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Query).To(Equal(
				`INSERT INTO "invoices" ("created_by", "updated_by", "invoice_no", "payload") VALUES ($1, $2, $3, $4) RETURNING "id"`))
		})

		It("rejects nil entity", func() {
			_, err := orders.InsertCommand(orm.Postgres, nil)
			Expect(err).To(HaveOccurred())
		})
	})

	Describe("update", func() {
		It("sets data columns filtered by primary key", func() {
			cmd, err := orders.UpdateCommand(orm.Postgres, &Order{ID: 7, Customer: "acme"})
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Operation()).To(Equal(orm.UpdateOp))
			Expect(cmd.Query).To(Equal(
				`UPDATE "orders" SET "customer" = $1, "total" = $2, "notes" = $3, "created_at" = $4 WHERE "id" = $5`))
			Expect(cmd.Args).To(Equal([]interface{}{"acme", nil, nil, nil, int64(7)}))
		})

		It("filters by every key of a composite key", func() {
			cmd, err := lines.UpdateCommand(orm.Postgres, &OrderLine{OrderID: 1, LineNo: 2, Sku: "x", Qty: 3})
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Query).To(Equal(
				`UPDATE "sales"."order_line" SET "sku" = $1, "qty" = $2 WHERE "order_id" = $3 AND "line_no" = $4`))
			Expect(cmd.Args).To(Equal([]interface{}{"x", 3, int64(1), 2}))
		})

		It("rejects zero primary key", func() {
			_, err := orders.UpdateCommand(orm.Postgres, &Order{Customer: "acme"})
			Expect(err).To(MatchError("orm: model=Order has zero primary key ID"))
		})
	})

	Describe("delete", func() {
		It("filters by primary key", func() {
			cmd, err := orders.DeleteCommand(orm.Postgres, &Order{ID: 7})
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Operation()).To(Equal(orm.DeleteOp))
			Expect(cmd.Query).To(Equal(`DELETE FROM "orders" WHERE "id" = $1`))
			Expect(cmd.Args).To(Equal([]interface{}{int64(7)}))
		})

		It("rejects zero primary key", func() {
			_, err := lines.DeleteCommand(orm.Postgres, &OrderLine{OrderID: 1})
			Expect(err).To(MatchError("orm: model=OrderLine has zero primary key LineNo"))
		})
	})

	Describe("select", func() {
		It("selects by key", func() {
			cmd, err := orders.SelectByKeyCommand(orm.Postgres, int64(7))
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Operation()).To(Equal(orm.SelectOp))
			Expect(cmd.Query).To(Equal(
				`SELECT "id", "customer", "total", "notes", "created_at" FROM "orders" WHERE "id" = $1`))
			Expect(cmd.Args).To(Equal([]interface{}{int64(7)}))
		})

		It("checks the number of keys", func() {
			_, err := lines.SelectByKeyCommand(orm.Postgres, 1)
			Expect(err).To(MatchError("orm: model=OrderLine has 2 primary keys, got 1 values"))
		})

		It("appends where clause as is", func() {
			cmd, err := orders.SelectCommand(orm.MySQL, "customer = ?", "acme")
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Query).To(Equal(
				"SELECT `id`, `customer`, `total`, `notes`, `created_at` FROM `orders` WHERE customer = ?"))
			Expect(cmd.Args).To(Equal([]interface{}{"acme"}))

			cmd, err = orders.SelectCommand(orm.MySQL, "")
			Expect(err).NotTo(HaveOccurred())
			Expect(cmd.Query).To(HaveSuffix("FROM `orders`"))
		})
	})

	It("sets keys", func() {
		line := new(OrderLine)
		Expect(lines.SetKeys(line, int64(3), int64(4))).To(Succeed())
		Expect(line.OrderID).To(Equal(int64(3)))
		Expect(line.LineNo).To(Equal(4))

		keys, err := lines.KeyValues(line)
		Expect(err).NotTo(HaveOccurred())
		Expect(keys).To(Equal([]interface{}{int64(3), 4}))

		Expect(lines.SetKeys(line, 1)).NotTo(Succeed())
	})
})
