package entmap

import (
	"github.com/go-pg/entmap/internal"
	"github.com/go-pg/entmap/orm"
)

// Options configure a DB.
type Options struct {
	// Dialect used to generate commands.
	// Default is orm.Postgres.
	Dialect orm.Dialect

	// Registry used to resolve mappers.
	// Default is the package registry used by GetMapper and GetCrudMapper.
	Registry *Registry
}

func (opt *Options) init() {
	if opt.Dialect == nil {
		opt.Dialect = orm.Postgres
	}
	if opt.Registry == nil {
		opt.Registry = defaultRegistry
	}
}

// ScanOptions configure a ScanningProvider.
type ScanOptions struct {
	// AllowOverride lets a later declaration for a type replace an earlier
	// one instead of failing the scan with *DuplicateMappingError.
	AllowOverride bool

	// Logger receives override warnings.
	// Default is the package logger, see SetLogger.
	Logger internal.Logging
}

func (opt *ScanOptions) logger() internal.Logging {
	if opt.Logger != nil {
		return opt.Logger
	}
	return internal.Logger
}
