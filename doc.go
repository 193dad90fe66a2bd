// Package saber provides a hierarchical dependency injection engine for Go applications.
// Bindings are declared ahead of time, turned into wired providers by a build step
// (see the generator package and the sabergen command), and served at runtime by a
// tree of injectors.
//
// # Overview
//
// The runtime is small and explicit:
//   - Keys identify bindings by a structural Type plus an optional Qualifier
//   - Providers produce instances; Singleton memoizes the first one
//   - Injectors form a tree and resolve nearest first
//   - Provider interceptors can wrap, replace or recover resolutions
//   - Generated providers need no reflection at resolution time
//
// # Basic Usage
//
// Create an engine, build a root injector from a configurator and resolve:
//
//	engine, err := saber.NewEngine(saber.WithLogger(logger))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	root, err := engine.CreateInjector(saber.ConfiguratorFunc(func(inj *saber.Injector) error {
//	    return saber.ProvideValue(inj, "Parent String")
//	}))
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	s, err := saber.Get[string](root)
//
// # Keys
//
// A Key is a Type plus an optional Qualifier. Types are structural, so generic
// instantiations are distinct keys:
//
//	saber.KeyOf[List[string]]() // github.com/acme/app.List[string]
//	saber.KeyOf[List[int]]()    // github.com/acme/app.List[int]
//
// Qualifiers compare by name and member values:
//
//	q := saber.NewQualifier("acme.Region", saber.Member("name", "eu"), saber.Member("zone", 2))
//	saber.QualifiedKeyOf[*Store](q)
//	saber.NamedKeyOf[*sql.DB]("replica")
//
// # Hierarchy
//
// Child injectors see every binding of their ancestors and may shadow them.
// A binding added to a child is never visible to its parent:
//
//	child, err := root.CreateChild(saber.ConfiguratorFunc(func(inj *saber.Injector) error {
//	    return saber.ProvideValue[any](inj, "Child Object")
//	}))
//
// Every injector binds itself under InjectorKey, so providers may ask for
// *saber.Injector to reach the injector they were resolved from.
//
// # Constructors
//
// Hand-written configuration can bind a plain constructor. Its parameters are
// resolved by type from the injector it was registered into:
//
//	err := saber.ProvideConstructor(inj, NewUserService, saber.AsSingleton())
//
// A single parameter embedding In resolves its fields, honoring the name,
// optional and inject struct tags.
//
// # Scopes
//
// Unscoped providers build a new instance per call. Wrap a provider with
// Singleton, or pass AsSingleton to Provide, to build the instance once per
// binding. Concurrent first calls construct it exactly once.
//
// # Interceptors
//
// Interceptors are fixed when the engine is built and run in reverse
// registration order. An engine without interceptors resolves with no extra
// allocations:
//
//	engine, err := saber.NewEngine(saber.WithInterceptors(
//	    interceptors.Logging(logger),
//	    interceptors.Tracing(tracer),
//	))
//
// # Error Handling
//
// saber provides typed errors for the failure classes:
//   - DuplicateBindingError: a key was registered twice in one injector
//   - BindingNotFoundError: no injector in the chain binds the key
//   - ConfigureError: a configurator failed and the injector was discarded
//   - TypeMismatchError: a typed helper received an instance of another type
//
// Duplicate and not-found errors both match ErrConfiguration.
package saber
