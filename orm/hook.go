package orm

import "context"

type BeforeInsertHook interface {
	BeforeInsert(context.Context) (context.Context, error)
}

type AfterInsertHook interface {
	AfterInsert(context.Context) error
}

type BeforeUpdateHook interface {
	BeforeUpdate(context.Context) (context.Context, error)
}

type AfterUpdateHook interface {
	AfterUpdate(context.Context) error
}

type BeforeDeleteHook interface {
	BeforeDelete(context.Context) (context.Context, error)
}

type AfterDeleteHook interface {
	AfterDelete(context.Context) error
}

type AfterSelectHook interface {
	AfterSelect(context.Context) error
}
