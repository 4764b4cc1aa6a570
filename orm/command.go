package orm

import (
	"github.com/vmihailenco/bufpool"
)

// Command is a SQL statement generated by a mapper.
type Command struct {
	Op    string
	Table string
	Query string
	Args  []interface{}

	// Returning lists the fields the statement returns, in order.
	Returning []*Field
}

func (c *Command) Operation() string {
	return c.Op
}

func (c *Command) String() string {
	return c.Query
}

var queryPool bufpool.Pool

type commandBuilder struct {
	d    Dialect
	buf  *bufpool.Buffer
	tmp  []byte
	args []interface{}
}

func newCommandBuilder(d Dialect) *commandBuilder {
	return &commandBuilder{
		d:   d,
		buf: queryPool.Get(),
	}
}

func (b *commandBuilder) WriteString(s string) {
	_, _ = b.buf.WriteString(s)
}

func (b *commandBuilder) WriteIdent(ident string) {
	b.tmp = b.d.AppendIdent(b.tmp[:0], ident)
	_, _ = b.buf.Write(b.tmp)
}

// WriteArg appends a placeholder for v.
func (b *commandBuilder) WriteArg(v interface{}) {
	b.args = append(b.args, v)
	b.tmp = b.d.AppendPlaceholder(b.tmp[:0], len(b.args))
	_, _ = b.buf.Write(b.tmp)
}

func (b *commandBuilder) WriteColumns(fields []*Field) {
	for i, f := range fields {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteIdent(f.SQLName)
	}
}

// WriteKeyFilter appends `"pk1" = $n AND "pk2" = $m`.
func (b *commandBuilder) WriteKeyFilter(pks []*Field, keys []interface{}) {
	for i, f := range pks {
		if i > 0 {
			b.WriteString(" AND ")
		}
		b.WriteIdent(f.SQLName)
		b.WriteString(" = ")
		b.WriteArg(keys[i])
	}
}

// Command releases the buffer and returns the built statement.
func (b *commandBuilder) Command(op, table string) *Command {
	cmd := &Command{
		Op:    op,
		Table: table,
		Query: b.buf.String(),
		Args:  b.args,
	}
	queryPool.Put(b.buf)
	b.buf = nil
	return cmd
}
