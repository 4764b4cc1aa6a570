package entmap

import (
	"context"
	"database/sql"
	"time"

	"github.com/go-pg/entmap/orm"
)

type QueryEvent struct {
	StartTime time.Time
	DB        *DB
	Entity    interface{}
	Command   *orm.Command
	Result    sql.Result
	Err       error

	Stash map[interface{}]interface{}
}

// UnformattedQuery returns the command text with placeholders.
func (e *QueryEvent) UnformattedQuery() string {
	return e.Command.Query
}

// FormattedQuery returns the command text with arguments inlined.
func (e *QueryEvent) FormattedQuery() string {
	return orm.FormatQuery(e.DB.opt.Dialect, e.Command)
}

// QueryHook is called around every command executed by a DB.
type QueryHook interface {
	BeforeQuery(context.Context, *QueryEvent) (context.Context, error)
	AfterQuery(context.Context, *QueryEvent) error
}

// AddQueryHook adds a hook into query processing.
func (db *DB) AddQueryHook(hook QueryHook) {
	db.queryHooks = append(db.queryHooks, hook)
}

func (db *DB) beforeQuery(
	ctx context.Context,
	entity interface{},
	cmd *orm.Command,
) (context.Context, *QueryEvent, error) {
	if len(db.queryHooks) == 0 {
		return ctx, nil, nil
	}

	evt := &QueryEvent{
		StartTime: time.Now(),
		DB:        db,
		Entity:    entity,
		Command:   cmd,
	}

	for i, hook := range db.queryHooks {
		var err error
		ctx, err = hook.BeforeQuery(ctx, evt)
		if err != nil {
			if err := db.afterQueryFromIndex(ctx, evt, i); err != nil {
				return ctx, nil, err
			}
			return ctx, nil, err
		}
	}

	return ctx, evt, nil
}

func (db *DB) afterQuery(
	ctx context.Context,
	evt *QueryEvent,
	res sql.Result,
	err error,
) error {
	if evt == nil {
		return nil
	}

	evt.Err = err
	evt.Result = res
	return db.afterQueryFromIndex(ctx, evt, len(db.queryHooks)-1)
}

func (db *DB) afterQueryFromIndex(ctx context.Context, evt *QueryEvent, hookIndex int) error {
	for ; hookIndex >= 0; hookIndex-- {
		if err := db.queryHooks[hookIndex].AfterQuery(ctx, evt); err != nil {
			return err
		}
	}
	return nil
}

func copyQueryHooks(s []QueryHook) []QueryHook {
	return s[:len(s):len(s)]
}
