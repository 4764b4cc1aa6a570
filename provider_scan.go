package entmap

import (
	"context"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"
)

// ScanningProvider discovers mappings by scanning a Catalog. Packages
// declare their mappings from init functions; the scan is deferred until
// the first lookup so that every linked package had a chance to declare.
type ScanningProvider struct {
	catalog *Catalog
	opt     *ScanOptions

	scanMu  sync.Mutex
	scanned atomic.Bool

	mu   sync.RWMutex
	regs map[reflect.Type]*Registration
}

var _ Provider = (*ScanningProvider)(nil)

func NewScanningProvider(c *Catalog, opt *ScanOptions) *ScanningProvider {
	if c == nil {
		c = DefaultCatalog
	}
	if opt == nil {
		opt = new(ScanOptions)
	}

	return &ScanningProvider{
		catalog: c,
		opt:     opt,
		regs:    make(map[reflect.Type]*Registration),
	}
}

func (p *ScanningProvider) HasScanned() bool {
	return p.scanned.Load()
}

// Scan builds every declaration of the catalog and replaces the current
// registrations. On error the previous registrations are kept.
func (p *ScanningProvider) Scan() error {
	p.scanMu.Lock()
	defer p.scanMu.Unlock()
	return p.scan()
}

// EnsureReady scans the catalog unless it has already been scanned.
func (p *ScanningProvider) EnsureReady() error {
	if p.scanned.Load() {
		return nil
	}

	p.scanMu.Lock()
	defer p.scanMu.Unlock()

	if p.scanned.Load() {
		return nil
	}
	return p.scan()
}

func (p *ScanningProvider) scan() error {
	decls := p.catalog.snapshot()
	regs := make(map[reflect.Type]*Registration, len(decls))

	for _, decl := range decls {
		reg, err := decl.build()
		if err != nil {
			return fmt.Errorf("entmap: mapping for %s declared at %s: %w", decl.typ, decl.source, err)
		}
		reg.Source = decl.source

		if prev, ok := regs[reg.Type]; ok {
			if !p.opt.AllowOverride {
				return &DuplicateMappingError{
					Type:   reg.Type,
					First:  prev.Source,
					Second: reg.Source,
				}
			}
			p.opt.logger().Printf(context.TODO(),
				"mapping for %s declared at %s overrides %s", reg.Type, reg.Source, prev.Source)
		}
		regs[reg.Type] = reg
	}

	p.mu.Lock()
	p.regs = regs
	p.mu.Unlock()

	p.scanned.Store(true)
	return nil
}

func (p *ScanningProvider) Lookup(typ reflect.Type) (*Registration, error) {
	p.mu.RLock()
	reg, ok := p.regs[typ]
	p.mu.RUnlock()
	if !ok {
		return nil, &MappingNotFoundError{Type: typ}
	}
	return reg, nil
}

// Registrations returns the scanned registrations sorted by type name.
func (p *ScanningProvider) Registrations() []*Registration {
	p.mu.RLock()
	defer p.mu.RUnlock()
	return sortedRegistrations(p.regs)
}
