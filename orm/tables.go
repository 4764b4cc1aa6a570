package orm

import (
	"fmt"
	"reflect"
	"sync"
)

var _tables = newTables()

type tableInProgress struct {
	table *Table
	wg    sync.WaitGroup
}

// GetTable returns a Table for a struct type.
func GetTable(typ reflect.Type) *Table {
	return _tables.Get(typ)
}

type tables struct {
	mu         sync.RWMutex
	inProgress map[reflect.Type]*tableInProgress
	tables     map[reflect.Type]*Table
}

func newTables() *tables {
	return &tables{
		inProgress: make(map[reflect.Type]*tableInProgress),
		tables:     make(map[reflect.Type]*Table),
	}
}

func (t *tables) Get(typ reflect.Type) *Table {
	if typ.Kind() != reflect.Struct {
		panic(fmt.Errorf("got %s, wanted %s", typ.Kind(), reflect.Struct))
	}

	t.mu.RLock()
	table, ok := t.tables[typ]
	t.mu.RUnlock()
	if ok {
		return table
	}

	t.mu.Lock()

	table, ok = t.tables[typ]
	if ok {
		t.mu.Unlock()
		return table
	}

	inProgress := t.inProgress[typ]
	if inProgress != nil {
		t.mu.Unlock()
		inProgress.wg.Wait()
		return inProgress.table
	}

	table = newTable(typ)
	inProgress = &tableInProgress{
		table: table,
	}
	inProgress.wg.Add(1)
	t.inProgress[typ] = inProgress

	t.mu.Unlock()
	table.init()
	inProgress.wg.Done()
	t.mu.Lock()

	delete(t.inProgress, typ)
	t.tables[typ] = table

	t.mu.Unlock()
	return table
}
