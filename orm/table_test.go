package orm_test

import (
	"reflect"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/go-pg/entmap/orm"
)

type Base struct {
	ID   int
	Name string
}

type Derived struct {
	Base
	Name string `pg:"name"`
}

type Named struct {
	tableName struct{} `pg:"'people'"`

	UUID string `pg:"uuid,pk"`
	ID   int
}

var _ = Describe("Table", func() {
	It("uses plural underscored type name", func() {
		table := orm.GetTable(reflect.TypeOf(Order{}))
		Expect(table.Name).To(Equal("orders"))
		Expect(table.ModelName).To(Equal("order"))

		table = orm.GetTable(reflect.TypeOf(ReportRow{}))
		Expect(table.Name).To(Equal("report_rows"))
	})

	It("supports tableName override", func() {
		table := orm.GetTable(reflect.TypeOf(OrderLine{}))
		Expect(table.Name).To(Equal("sales.order_line"))

		table = orm.GetTable(reflect.TypeOf(Named{}))
		Expect(table.Name).To(Equal("people"))
	})

	It("detects id as primary key", func() {
		table := orm.GetTable(reflect.TypeOf(Order{}))
		Expect(table.PKs).To(HaveLen(1))
		Expect(table.PKs[0].SQLName).To(Equal("id"))
		Expect(table.PKs[0].HasFlag(orm.PrimaryKeyFlag)).To(BeTrue())
		Expect(table.DataFields).To(HaveLen(4))
	})

	It("gives pk option precedence over id", func() {
		table := orm.GetTable(reflect.TypeOf(Named{}))
		Expect(table.PKs).To(HaveLen(1))
		Expect(table.PKs[0].GoName).To(Equal("UUID"))

		id, err := table.GetField("id")
		Expect(err).NotTo(HaveOccurred())
		Expect(id.HasFlag(orm.PrimaryKeyFlag)).To(BeFalse())
	})

	It("supports composite keys", func() {
		table := orm.GetTable(reflect.TypeOf(OrderLine{}))
		Expect(table.PKs).To(HaveLen(2))
		Expect(table.PKs[0].SQLName).To(Equal("order_id"))
		Expect(table.PKs[1].SQLName).To(Equal("line_no"))

		qty, err := table.GetField("qty")
		Expect(err).NotTo(HaveOccurred())
		Expect(qty.HasFlag(orm.UseZeroFlag)).To(BeTrue())
	})

	It("flattens embedded structs and skips ignored fields", func() {
		table := orm.GetTable(reflect.TypeOf(Invoice{}))

		var names []string
		for _, f := range table.Fields {
			names = append(names, f.SQLName)
		}
		Expect(names).To(Equal([]string{
			"created_by", "updated_by", "id", "invoice_no", "payload", "version",
		}))

		createdBy, err := table.GetField("CREATED_BY")
		Expect(err).NotTo(HaveOccurred())
		Expect(createdBy.Index).To(Equal([]int{0, 0}))

		payload, _ := table.GetField("payload")
		Expect(payload.HasFlag(orm.MsgpackFlag)).To(BeTrue())

		version, _ := table.GetField("version")
		Expect(version.HasFlag(orm.ReadOnlyFlag)).To(BeTrue())

		Expect(table.HasField("secret")).To(BeFalse())
		Expect(table.HasField("internal")).To(BeFalse())
	})

	It("lets outer fields shadow embedded ones", func() {
		table := orm.GetTable(reflect.TypeOf(Derived{}))
		Expect(table.Fields).To(HaveLen(2))

		name, err := table.GetField("name")
		Expect(err).NotTo(HaveOccurred())
		Expect(name.Index).To(Equal([]int{1}))
	})

	It("returns the same table for the same type", func() {
		t1 := orm.GetTable(reflect.TypeOf(Order{}))
		t2 := orm.GetTable(reflect.TypeOf(Order{}))
		Expect(t1).To(BeIdenticalTo(t2))
	})

	It("reports unknown columns", func() {
		table := orm.GetTable(reflect.TypeOf(Order{}))
		_, err := table.GetField("nope")
		Expect(err).To(MatchError("orm: can't find column=nope in table=orders"))
	})
})
