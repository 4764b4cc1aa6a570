package entmap_test

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"reflect"
	"sync"
	"sync/atomic"

	. "github.com/onsi/ginkgo"
	. "github.com/onsi/gomega"

	"github.com/go-pg/entmap"
	"github.com/go-pg/entmap/orm"
)

type bufLogger struct {
	mu  sync.Mutex
	buf bytes.Buffer
}

func (l *bufLogger) Printf(_ context.Context, format string, v ...interface{}) {
	l.mu.Lock()
	fmt.Fprintf(&l.buf, format, v...)
	l.buf.WriteByte('\n')
	l.mu.Unlock()
}

func (l *bufLogger) String() string {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.buf.String()
}

// countingProvider wraps a provider and counts EnsureReady calls.
type countingProvider struct {
	entmap.Provider
	ready int32
}

func (p *countingProvider) EnsureReady() error {
	atomic.AddInt32(&p.ready, 1)
	return p.Provider.EnsureReady()
}

var _ = Describe("package registry", func() {
	It("returns CRUD mapper for declared table", func() {
		m, err := entmap.GetCrudMapper[Customer]()
		Expect(err).NotTo(HaveOccurred())
		Expect(m.TableName()).To(Equal("customers"))
		Expect(m.EntityType()).To(Equal(reflect.TypeOf(Customer{})))
		Expect(entmap.DefaultProvider().HasScanned()).To(BeTrue())
	})

	It("returns read mapper for CRUD mapping", func() {
		m, err := entmap.GetMapper[Customer]()
		Expect(err).NotTo(HaveOccurred())
		Expect(m.TableName()).To(Equal("customers"))
	})

	It("returns read mapper for view", func() {
		m, err := entmap.GetMapper[RegionTotal]()
		Expect(err).NotTo(HaveOccurred())
		Expect(m.TableName()).To(Equal("region_totals"))
	})

	It("rejects CRUD lookup of a view", func() {
		_, err := entmap.GetCrudMapper[RegionTotal]()
		Expect(err).To(HaveOccurred())

		var capErr *entmap.MappingCapabilityError
		Expect(errors.As(err, &capErr)).To(BeTrue())
		Expect(capErr.Type).To(Equal(reflect.TypeOf(RegionTotal{})))
		Expect(capErr.Required).To(Equal(entmap.CapabilityCRUD))

		Expect(err.Error()).To(ContainSubstring("RegionTotal"))
		Expect(err.Error()).To(ContainSubstring("CRUD"))
		Expect(err.Error()).To(ContainSubstring("StructMapper"))
	})

	It("returns not found for undeclared type", func() {
		_, err := entmap.GetCrudMapper[Ghost]()
		Expect(errors.Is(err, entmap.ErrMappingNotFound)).To(BeTrue())

		var nf *entmap.MappingNotFoundError
		Expect(errors.As(err, &nf)).To(BeTrue())
		Expect(nf.Type).To(Equal(reflect.TypeOf(Ghost{})))

		_, err = entmap.GetMapper[Ghost]()
		Expect(errors.Is(err, entmap.ErrMappingNotFound)).To(BeTrue())
	})

	It("keeps provider when nil is installed", func() {
		before := entmap.CurrentProvider()

		err := entmap.SetProvider(nil)
		Expect(errors.Is(err, entmap.ErrInvalidArgument)).To(BeTrue())
		Expect(entmap.CurrentProvider()).To(BeIdenticalTo(before))

		var typedNil *entmap.MapProvider
		err = entmap.SetProvider(typedNil)
		Expect(errors.Is(err, entmap.ErrInvalidArgument)).To(BeTrue())
		Expect(entmap.CurrentProvider()).To(BeIdenticalTo(before))
	})

	It("records declaration site", func() {
		Expect(entmap.DefaultProvider().EnsureReady()).NotTo(HaveOccurred())
		regs := entmap.DefaultProvider().Registrations()
		Expect(regs).To(HaveLen(3))
		for _, reg := range regs {
			Expect(reg.Source).To(HavePrefix("main_test.go:"))
		}
	})
})

var _ = Describe("Registry", func() {
	var catalog *entmap.Catalog
	var builds int32

	BeforeEach(func() {
		builds = 0
		catalog = entmap.NewCatalog()
		entmap.AddFunc[Customer](catalog, func() (orm.EntityMapper[Customer], error) {
			atomic.AddInt32(&builds, 1)
			return orm.NewCrudMapper[Customer]()
		})
		entmap.AddView[RegionTotal](catalog)
	})

	It("scans lazily and only once", func() {
		scanner := entmap.NewScanningProvider(catalog, nil)
		r := entmap.NewRegistry(scanner)
		Expect(scanner.HasScanned()).To(BeFalse())

		for i := 0; i < 3; i++ {
			_, err := entmap.LookupCrud[Customer](r)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(scanner.HasScanned()).To(BeTrue())
		Expect(atomic.LoadInt32(&builds)).To(Equal(int32(1)))
	})

	It("scans once under concurrent lookups", func() {
		scanner := entmap.NewScanningProvider(catalog, nil)
		r := entmap.NewRegistry(scanner)

		var wg sync.WaitGroup
		errs := make(chan error, 32)
		for i := 0; i < cap(errs); i++ {
			wg.Add(1)
			go func() {
				defer GinkgoRecover()
				defer wg.Done()
				_, err := entmap.LookupCrud[Customer](r)
				errs <- err
			}()
		}
		wg.Wait()
		close(errs)

		for err := range errs {
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(atomic.LoadInt32(&builds)).To(Equal(int32(1)))
	})

	It("asks provider to get ready only until it succeeds", func() {
		p := &countingProvider{Provider: entmap.NewScanningProvider(catalog, nil)}
		r := entmap.NewRegistry(p)

		for i := 0; i < 3; i++ {
			_, err := entmap.Lookup[RegionTotal](r)
			Expect(err).NotTo(HaveOccurred())
		}
		Expect(atomic.LoadInt32(&p.ready)).To(Equal(int32(1)))
	})

	It("does not scan when provider is replaced before first use", func() {
		scanner := entmap.NewScanningProvider(catalog, nil)
		r := entmap.NewRegistry(scanner)

		mp := entmap.NewMapProvider()
		m, err := orm.NewCrudMapper[Customer]()
		Expect(err).NotTo(HaveOccurred())
		Expect(entmap.Register[Customer](mp, m)).NotTo(HaveOccurred())

		Expect(r.SetProvider(mp)).NotTo(HaveOccurred())
		Expect(r.Provider()).To(BeIdenticalTo(mp))

		got, err := entmap.LookupCrud[Customer](r)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeIdenticalTo(m))

		_, err = entmap.Lookup[RegionTotal](r)
		Expect(errors.Is(err, entmap.ErrMappingNotFound)).To(BeTrue())

		Expect(scanner.HasScanned()).To(BeFalse())
		Expect(atomic.LoadInt32(&builds)).To(Equal(int32(0)))
	})

	It("prepares newly installed provider", func() {
		r := entmap.NewRegistry(entmap.NewMapProvider())
		_, err := entmap.Lookup[RegionTotal](r)
		Expect(errors.Is(err, entmap.ErrMappingNotFound)).To(BeTrue())

		scanner := entmap.NewScanningProvider(catalog, nil)
		Expect(r.SetProvider(scanner)).NotTo(HaveOccurred())

		_, err = entmap.Lookup[RegionTotal](r)
		Expect(err).NotTo(HaveOccurred())
		Expect(scanner.HasScanned()).To(BeTrue())
	})

	It("rejects nil provider", func() {
		mp := entmap.NewMapProvider()
		r := entmap.NewRegistry(mp)

		err := r.SetProvider(nil)
		Expect(errors.Is(err, entmap.ErrInvalidArgument)).To(BeTrue())
		Expect(r.Provider()).To(BeIdenticalTo(mp))
	})

	It("fails scan on duplicate declarations", func() {
		entmap.AddTable[Customer](catalog)
		r := entmap.NewRegistry(entmap.NewScanningProvider(catalog, nil))

		_, err := entmap.LookupCrud[Customer](r)
		var dup *entmap.DuplicateMappingError
		Expect(errors.As(err, &dup)).To(BeTrue())
		Expect(dup.Type).To(Equal(reflect.TypeOf(Customer{})))
		Expect(dup.First).To(HavePrefix("registry_test.go:"))
		Expect(dup.Second).To(HavePrefix("registry_test.go:"))
	})

	It("lets later declaration override with AllowOverride", func() {
		m, err := orm.NewStructMapper[Customer]()
		Expect(err).NotTo(HaveOccurred())
		entmap.AddMapper[Customer](catalog, m)

		logger := new(bufLogger)
		r := entmap.NewRegistry(entmap.NewScanningProvider(catalog, &entmap.ScanOptions{
			AllowOverride: true,
			Logger:        logger,
		}))

		got, err := entmap.Lookup[Customer](r)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(BeIdenticalTo(m))
		Expect(logger.String()).To(ContainSubstring("overrides"))

		_, err = entmap.LookupCrud[Customer](r)
		var capErr *entmap.MappingCapabilityError
		Expect(errors.As(err, &capErr)).To(BeTrue())
	})

	It("retries failed scan", func() {
		fail := true
		c := entmap.NewCatalog()
		entmap.AddFunc[Customer](c, func() (orm.EntityMapper[Customer], error) {
			if fail {
				return nil, errors.New("mapper is not ready")
			}
			return orm.NewCrudMapper[Customer]()
		})

		scanner := entmap.NewScanningProvider(c, nil)
		r := entmap.NewRegistry(scanner)

		_, err := entmap.LookupCrud[Customer](r)
		Expect(err).To(MatchError(ContainSubstring("mapper is not ready")))
		Expect(err).To(MatchError(ContainSubstring("declared at registry_test.go:")))
		Expect(scanner.HasScanned()).To(BeFalse())

		fail = false
		_, err = entmap.LookupCrud[Customer](r)
		Expect(err).NotTo(HaveOccurred())
		Expect(scanner.HasScanned()).To(BeTrue())
	})

	It("fails scan for table without primary key", func() {
		c := entmap.NewCatalog()
		entmap.AddTable[RegionTotal](c)
		r := entmap.NewRegistry(entmap.NewScanningProvider(c, nil))

		_, err := entmap.Lookup[RegionTotal](r)
		Expect(err).To(MatchError(ContainSubstring("does not have primary keys")))
	})

	It("rescans catalog on Scan", func() {
		scanner := entmap.NewScanningProvider(catalog, nil)
		Expect(scanner.Scan()).NotTo(HaveOccurred())
		Expect(scanner.Registrations()).To(HaveLen(2))

		entmap.AddView[Ghost](catalog)
		Expect(scanner.EnsureReady()).NotTo(HaveOccurred())
		Expect(scanner.Registrations()).To(HaveLen(2))

		Expect(scanner.Scan()).NotTo(HaveOccurred())
		Expect(scanner.Registrations()).To(HaveLen(3))
	})
})

var _ = Describe("MapProvider", func() {
	It("flags capability at registration", func() {
		crud, err := orm.NewCrudMapper[Customer]()
		Expect(err).NotTo(HaveOccurred())
		view, err := orm.NewStructMapper[RegionTotal]()
		Expect(err).NotTo(HaveOccurred())

		mp := entmap.NewMapProvider()
		Expect(entmap.Register[Customer](mp, crud)).NotTo(HaveOccurred())
		Expect(entmap.Register[RegionTotal](mp, view)).NotTo(HaveOccurred())

		regs := mp.Registrations()
		Expect(regs).To(HaveLen(2))
		Expect(regs[0].Type).To(Equal(reflect.TypeOf(Customer{})))
		Expect(regs[0].Capability).To(Equal(entmap.CapabilityCRUD))
		Expect(regs[1].Capability).To(Equal(entmap.CapabilityRead))
		Expect(regs[1].Source).To(HavePrefix("registry_test.go:"))
	})

	It("rejects duplicates", func() {
		m, err := orm.NewCrudMapper[Customer]()
		Expect(err).NotTo(HaveOccurred())

		mp := entmap.NewMapProvider()
		Expect(entmap.Register[Customer](mp, m)).NotTo(HaveOccurred())

		err = entmap.Register[Customer](mp, m)
		var dup *entmap.DuplicateMappingError
		Expect(errors.As(err, &dup)).To(BeTrue())
	})

	It("rejects nil mapper", func() {
		var m *orm.CrudMapper[Customer]
		err := entmap.Register[Customer](entmap.NewMapProvider(), m)
		Expect(errors.Is(err, entmap.ErrInvalidArgument)).To(BeTrue())
	})
})
