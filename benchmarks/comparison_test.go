package benchmarks

import (
	"fmt"
	"strconv"
	"testing"

	"github.com/samber/do/v2"
	"go.uber.org/dig"

	"github.com/junioryono/saber"
)

// =============================================================================
// Shared Test Types
// =============================================================================

// Simple service with no dependencies
type Logger struct {
	Name string
}

func NewLogger() *Logger {
	return &Logger{Name: "logger"}
}

type Config struct {
	Value string
}

func NewConfig() *Config {
	return &Config{Value: "config"}
}

// Service with 2 dependencies
type Database struct {
	Logger *Logger
	Config *Config
}

func NewDatabase(logger *Logger, config *Config) *Database {
	return &Database{Logger: logger, Config: config}
}

// Service with 3 dependencies
type Cache struct {
	Logger   *Logger
	Config   *Config
	Database *Database
}

func NewCache(logger *Logger, config *Config, db *Database) *Cache {
	return &Cache{Logger: logger, Config: config, Database: db}
}

// Service with 5 dependencies (complex)
type UserService struct {
	Logger   *Logger
	Config   *Config
	Database *Database
	Cache    *Cache
	Dep5     *Dep5
}

type Dep5 struct {
	Value int
}

func NewDep5() *Dep5 {
	return &Dep5{Value: 5}
}

func NewUserService(logger *Logger, config *Config, db *Database, cache *Cache, dep5 *Dep5) *UserService {
	return &UserService{Logger: logger, Config: config, Database: db, Cache: cache, Dep5: dep5}
}

// Request is bound in child injectors and scopes.
type Request struct {
	ID int
}

// =============================================================================
// Container Setup
// =============================================================================

// saberGraph binds the shared graph the way generated providers do: every
// provider resolves its dependencies from the injector it was registered in.
func saberGraph(singleton bool) saber.Configurator {
	var opts []saber.BindOption
	if singleton {
		opts = append(opts, saber.AsSingleton())
	}

	return saber.ConfiguratorFunc(func(inj *saber.Injector) error {
		return errorsOf(
			saber.Provide(inj, func(*saber.Injector) (*Logger, error) { return NewLogger(), nil }, opts...),
			saber.Provide(inj, func(*saber.Injector) (*Config, error) { return NewConfig(), nil }, opts...),
			saber.Provide(inj, func(inj *saber.Injector) (*Database, error) {
				return NewDatabase(saber.MustGet[*Logger](inj), saber.MustGet[*Config](inj)), nil
			}, opts...),
			saber.Provide(inj, func(inj *saber.Injector) (*Cache, error) {
				return NewCache(saber.MustGet[*Logger](inj), saber.MustGet[*Config](inj), saber.MustGet[*Database](inj)), nil
			}, opts...),
			saber.Provide(inj, func(*saber.Injector) (*Dep5, error) { return NewDep5(), nil }, opts...),
			saber.Provide(inj, func(inj *saber.Injector) (*UserService, error) {
				return NewUserService(
					saber.MustGet[*Logger](inj),
					saber.MustGet[*Config](inj),
					saber.MustGet[*Database](inj),
					saber.MustGet[*Cache](inj),
					saber.MustGet[*Dep5](inj),
				), nil
			}, opts...),
		)
	})
}

func errorsOf(errs ...error) error {
	for _, err := range errs {
		if err != nil {
			return err
		}
	}
	return nil
}

func newSaber(b *testing.B, singleton bool) *saber.Injector {
	b.Helper()

	root, err := saber.CreateRootInjector(saberGraph(singleton))
	if err != nil {
		b.Fatal(err)
	}
	return root
}

func newDig() *dig.Container {
	c := dig.New()
	_ = c.Provide(NewLogger)
	_ = c.Provide(NewConfig)
	_ = c.Provide(NewDatabase)
	_ = c.Provide(NewCache)
	_ = c.Provide(NewDep5)
	_ = c.Provide(NewUserService)
	return c
}

func provideDo(injector do.Injector) {
	do.Provide(injector, func(i do.Injector) (*Logger, error) { return NewLogger(), nil })
	do.Provide(injector, func(i do.Injector) (*Config, error) { return NewConfig(), nil })
	do.Provide(injector, func(i do.Injector) (*Database, error) {
		return NewDatabase(do.MustInvoke[*Logger](i), do.MustInvoke[*Config](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*Cache, error) {
		return NewCache(do.MustInvoke[*Logger](i), do.MustInvoke[*Config](i), do.MustInvoke[*Database](i)), nil
	})
	do.Provide(injector, func(i do.Injector) (*Dep5, error) { return NewDep5(), nil })
	do.Provide(injector, func(i do.Injector) (*UserService, error) {
		return NewUserService(
			do.MustInvoke[*Logger](i),
			do.MustInvoke[*Config](i),
			do.MustInvoke[*Database](i),
			do.MustInvoke[*Cache](i),
			do.MustInvoke[*Dep5](i),
		), nil
	})
}

// =============================================================================
// Container Build Benchmarks
// =============================================================================

func BenchmarkBuild_Saber(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = newSaber(b, true)
	}
}

func BenchmarkBuild_Dig(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = newDig()
	}
}

func BenchmarkBuild_Do(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		injector := do.New()
		provideDo(injector)
		_ = injector.Shutdown()
	}
}

// =============================================================================
// Simple Resolution Benchmarks (No Dependencies)
// =============================================================================

func BenchmarkResolve_Simple_Saber(b *testing.B) {
	root := newSaber(b, true)

	// Warm up
	saber.MustGet[*Logger](root)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = saber.MustGet[*Logger](root)
	}
}

func BenchmarkResolve_Simple_Dig(b *testing.B) {
	c := newDig()

	// Warm up
	_ = c.Invoke(func(l *Logger) {})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Invoke(func(l *Logger) {})
	}
}

func BenchmarkResolve_Simple_Do(b *testing.B) {
	injector := do.New()
	provideDo(injector)

	// Warm up
	do.MustInvoke[*Logger](injector)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = do.MustInvoke[*Logger](injector)
	}
}

// =============================================================================
// Complex Resolution Benchmarks (5 Dependencies)
// =============================================================================

func BenchmarkResolve_Complex_Saber(b *testing.B) {
	root := newSaber(b, true)

	// Warm up
	saber.MustGet[*UserService](root)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = saber.MustGet[*UserService](root)
	}
}

func BenchmarkResolve_Complex_Dig(b *testing.B) {
	c := newDig()

	// Warm up
	_ = c.Invoke(func(u *UserService) {})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = c.Invoke(func(u *UserService) {})
	}
}

func BenchmarkResolve_Complex_Do(b *testing.B) {
	injector := do.New()
	provideDo(injector)

	// Warm up
	do.MustInvoke[*UserService](injector)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = do.MustInvoke[*UserService](injector)
	}
}

// =============================================================================
// Unscoped Resolution Benchmarks (New Instance Each Time)
// =============================================================================

func BenchmarkResolve_Unscoped_Saber(b *testing.B) {
	root := newSaber(b, false)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = saber.MustGet[*UserService](root)
	}
}

func BenchmarkResolve_Unscoped_Do(b *testing.B) {
	injector := do.New()
	do.ProvideTransient(injector, func(i do.Injector) (*Logger, error) { return NewLogger(), nil })

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = do.MustInvoke[*Logger](injector)
	}
}

// Note: Dig doesn't have built-in transient support

// =============================================================================
// Concurrent Resolution Benchmarks
// =============================================================================

func BenchmarkResolve_Concurrent_Saber(b *testing.B) {
	root := newSaber(b, true)

	// Warm up
	saber.MustGet[*UserService](root)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = saber.MustGet[*UserService](root)
		}
	})
}

func BenchmarkResolve_Concurrent_Dig(b *testing.B) {
	c := newDig()

	// Warm up
	_ = c.Invoke(func(u *UserService) {})

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = c.Invoke(func(u *UserService) {})
		}
	})
}

func BenchmarkResolve_Concurrent_Do(b *testing.B) {
	injector := do.New()
	provideDo(injector)

	// Warm up
	do.MustInvoke[*UserService](injector)

	b.ResetTimer()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			_ = do.MustInvoke[*UserService](injector)
		}
	})
}

// =============================================================================
// Hierarchy Benchmarks
// =============================================================================

func requestBindings(id int) saber.Configurator {
	return saber.ConfiguratorFunc(func(inj *saber.Injector) error {
		return saber.ProvideValue(inj, &Request{ID: id})
	})
}

func BenchmarkChild_Create_Saber(b *testing.B) {
	root := newSaber(b, true)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = root.CreateChild(requestBindings(i))
	}
}

func BenchmarkChild_Create_Dig(b *testing.B) {
	c := newDig()

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		id := i
		s := c.Scope("request")
		_ = s.Provide(func() *Request { return &Request{ID: id} })
	}
}

func BenchmarkChild_Create_Do(b *testing.B) {
	injector := do.New()
	provideDo(injector)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		scope := injector.Scope("request-" + strconv.Itoa(i))
		do.ProvideValue(scope, &Request{ID: i})
	}
}

// Resolving a root binding from a grandchild walks two parents.
func BenchmarkChild_ResolveAncestor_Saber(b *testing.B) {
	root := newSaber(b, true)
	child, _ := root.CreateChild(requestBindings(1))
	grandchild, _ := child.CreateChild(nil)

	// Warm up
	saber.MustGet[*UserService](grandchild)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = saber.MustGet[*UserService](grandchild)
	}
}

func BenchmarkChild_ResolveAncestor_Dig(b *testing.B) {
	c := newDig()
	grandchild := c.Scope("request").Scope("nested")

	// Warm up
	_ = grandchild.Invoke(func(u *UserService) {})

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = grandchild.Invoke(func(u *UserService) {})
	}
}

func BenchmarkChild_ResolveAncestor_Do(b *testing.B) {
	injector := do.New()
	provideDo(injector)
	grandchild := injector.Scope("request").Scope("nested")

	// Warm up
	do.MustInvoke[*UserService](grandchild)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = do.MustInvoke[*UserService](grandchild)
	}
}

// =============================================================================
// Qualified Binding Benchmarks
// =============================================================================

func BenchmarkNamed_10_Saber(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_, _ = saber.CreateRootInjector(saber.ConfiguratorFunc(func(inj *saber.Injector) error {
			for j := 0; j < 10; j++ {
				if err := saber.ProvideValue(inj, &Config{Value: strconv.Itoa(j)}, saber.WithName(fmt.Sprintf("svc_%d", j))); err != nil {
					return err
				}
			}
			return nil
		}))
	}
}

func BenchmarkNamed_10_Dig(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		c := dig.New()
		for j := 0; j < 10; j++ {
			idx := j
			_ = c.Provide(func() *Config { return &Config{Value: strconv.Itoa(idx)} }, dig.Name(fmt.Sprintf("svc_%d", j)))
		}
	}
}

func BenchmarkNamed_10_Do(b *testing.B) {
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		injector := do.New()
		for j := 0; j < 10; j++ {
			do.ProvideNamedValue(injector, fmt.Sprintf("svc_%d", j), &Config{Value: strconv.Itoa(j)})
		}
	}
}

// =============================================================================
// Interceptor Overhead
// =============================================================================

func BenchmarkResolve_Intercepted_Saber(b *testing.B) {
	passThrough := saber.InterceptorFunc(func(chain saber.Chain, key saber.Key) (saber.Provider, error) {
		return chain.Proceed(key)
	})
	root, err := saber.CreateRootInjector(saberGraph(true), saber.WithInterceptors(passThrough, passThrough))
	if err != nil {
		b.Fatal(err)
	}

	// Warm up
	saber.MustGet[*UserService](root)

	b.ResetTimer()
	b.ReportAllocs()
	for i := 0; i < b.N; i++ {
		_ = saber.MustGet[*UserService](root)
	}
}
