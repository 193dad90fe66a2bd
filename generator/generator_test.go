package generator_test

import (
	"errors"
	"go/parser"
	"go/token"
	"os"
	"path/filepath"
	"regexp"
	"testing"

	"github.com/junioryono/saber/analysis"
	"github.com/junioryono/saber/descriptor"
	"github.com/junioryono/saber/generator"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func keyRef(t string) *descriptor.KeyRef {
	return &descriptor.KeyRef{Type: descriptor.MustParseType(t)}
}

func dep(t string, c descriptor.Converter) descriptor.Dependency {
	return descriptor.Dependency{KeyRef: *keyRef(t), Converter: c}
}

func sampleManifest(t *testing.T) *descriptor.Manifest {
	t.Helper()

	dsn := keyRef("string")
	dsn.Named = "dsn"

	region := keyRef("github.com/acme/app/web.Store")
	region.Qualifier = &descriptor.QualifierRef{
		Name: "github.com/acme/app.Region",
		Members: []descriptor.MemberRef{
			{Name: "zone", Value: 2},
			{Name: "name", Value: "eu"},
		},
	}

	m, err := analysis.New(analysis.Options{}).Build([]analysis.Declaration{
		{Kind: analysis.KindComponent, Name: "app", Modules: []string{"data"}},
		{Kind: analysis.KindComponent, Name: "request", Parent: "app", Modules: []string{"web"}},
		{Kind: analysis.KindModule, Name: "logging", Default: true, Bindings: []analysis.Declaration{{
			Key:    keyRef("*go.uber.org/zap.Logger"),
			Scope:  descriptor.Singleton,
			Recipe: &descriptor.Recipe{Package: "github.com/acme/app/logs", Func: "New", ReturnsError: true},
		}}},
		{Kind: analysis.KindModule, Name: "data", Bindings: []analysis.Declaration{
			{
				Key:    keyRef("*database/sql.DB"),
				Scope:  descriptor.Singleton,
				Recipe: &descriptor.Recipe{Package: "github.com/acme/app/db", Func: "Open", ReturnsError: true},
				Dependencies: []descriptor.Dependency{
					{KeyRef: *dsn},
					dep("*go.uber.org/zap.Logger", descriptor.Instance),
				},
			},
			{Key: dsn, Recipe: &descriptor.Recipe{Package: "github.com/acme/app/config", Func: "DSN"}},
		}},
		{Kind: analysis.KindModule, Name: "web", Scopes: []string{"request"}, Bindings: []analysis.Declaration{
			{Key: keyRef("github.com/acme/app/web.Store"), Alias: keyRef("*github.com/acme/app/web.SQLStore")},
			{Key: region, Scope: descriptor.Singleton, Alias: keyRef("*github.com/acme/app/web.SQLStore")},
			{
				Key:    keyRef("*github.com/acme/app/web.SQLStore"),
				Recipe: &descriptor.Recipe{Package: "github.com/acme/app/web", Func: "NewSQLStore"},
				Dependencies: []descriptor.Dependency{
					dep("*database/sql.DB", descriptor.Instance),
					dep("*github.com/junioryono/saber.Injector", descriptor.Instance),
					dep("github.com/acme/app/web.Store", descriptor.LazyOf),
				},
			},
		}},
		{
			Target: func() *descriptor.TypeRef { t := descriptor.MustParseType("*github.com/acme/app/web.Handler"); return &t }(),
			Fields: []descriptor.FieldInjection{{Name: "Store", Dependency: dep("github.com/acme/app/web.Store", descriptor.Instance)}},
			Methods: []descriptor.MethodInjection{{Name: "SetDB", Dependencies: []descriptor.Dependency{
				dep("*database/sql.DB", descriptor.ProviderOf),
			}}},
		},
	})
	require.NoError(t, err)
	return m
}

var space = regexp.MustCompile(`\s+`)

// source returns the file content with whitespace runs collapsed, so that
// assertions do not depend on gofmt alignment.
func source(t *testing.T, files []generator.File, name string) string {
	t.Helper()
	for _, f := range files {
		if f.Name == name {
			return space.ReplaceAllString(string(f.Content), " ")
		}
	}
	require.Failf(t, "file not generated", "%s", name)
	return ""
}

func TestGenerate_Files(t *testing.T) {
	t.Parallel()

	files, err := generator.New(generator.Options{Package: "di", Header: "Copyright Acme."}).Generate(sampleManifest(t))
	require.NoError(t, err)

	var names []string
	fset := token.NewFileSet()
	for _, f := range files {
		names = append(names, f.Name)

		parsed, err := parser.ParseFile(fset, f.Name, f.Content, parser.ParseComments)
		require.NoError(t, err, "%s:\n%s", f.Name, f.Content)
		assert.Equal(t, "di", parsed.Name.Name)
		assert.Regexp(t, `^// Code generated by sabergen\. DO NOT EDIT\.\n// Copyright Acme\.\n`, string(f.Content))
	}

	assert.Equal(t, []string{
		"components_saber.go",
		"data_saber.go",
		"keys_saber.go",
		"logging_saber.go",
		"web_saber.go",
	}, names)
}

func TestGenerate_Keys(t *testing.T) {
	t.Parallel()

	files, err := generator.New(generator.Options{}).Generate(sampleManifest(t))
	require.NoError(t, err)
	src := source(t, files, "keys_saber.go")

	assert.Contains(t, src, "package di")
	assert.Contains(t, src, `sql "database/sql"`)
	assert.Contains(t, src, `saber "github.com/junioryono/saber"`)
	assert.Contains(t, src, "KeyDB = saber.KeyOf[*sql.DB]()")
	assert.Contains(t, src, "KeyInjector = saber.KeyOf[*saber.Injector]()")
	assert.Contains(t, src, "KeyLogger = saber.KeyOf[*zap.Logger]()")
	assert.Contains(t, src, `KeyStringDsn = saber.NamedKeyOf[string]("dsn")`)
	assert.Contains(t, src, `KeyStoreRegion = saber.QualifiedKeyOf[web.Store](saber.NewQualifier("github.com/acme/app.Region", saber.Member("zone", 2), saber.Member("name", "eu")))`)
}

func TestGenerate_Modules(t *testing.T) {
	t.Parallel()

	files, err := generator.New(generator.Options{}).Generate(sampleManifest(t))
	require.NoError(t, err)

	data := source(t, files, "data_saber.go")
	assert.Contains(t, data, "type dataDBProvider struct { inj *saber.Injector }")
	assert.Contains(t, data, "d0, err := saber.Instance[string](p.inj, KeyStringDsn)")
	assert.Contains(t, data, "d1, err := saber.Instance[*zap.Logger](p.inj, KeyLogger)")
	assert.Contains(t, data, "v, err := db.Open(d0, d1)")
	assert.Contains(t, data, "return config.DSN(), nil")
	assert.Contains(t, data, "func RegisterData(inj *saber.Injector) error")
	assert.Contains(t, data, "inj.Register(KeyDB, saber.Singleton(&dataDBProvider{inj: inj}))")
	assert.Contains(t, data, "inj.Register(KeyStringDsn, &dataStringDsnProvider{inj: inj})")

	web := source(t, files, "web_saber.go")
	assert.Contains(t, web, "d2, err := saber.LazyOf[web.Store](p.inj, KeyStore)")
	assert.Contains(t, web, "return web.NewSQLStore(d0, d1, d2), nil")
	assert.Contains(t, web, "inj.Register(KeyStore, saber.Alias(inj, KeySQLStore))")
	assert.Contains(t, web, "inj.Register(KeyStoreRegion, saber.Singleton(saber.Alias(inj, KeySQLStore)))")
	assert.NotContains(t, web, "zap", "unused imports are pruned")
}

func TestGenerate_Components(t *testing.T) {
	t.Parallel()

	files, err := generator.New(generator.Options{}).Generate(sampleManifest(t))
	require.NoError(t, err)
	src := source(t, files, "components_saber.go")

	assert.Contains(t, src, "type AppComponent struct{}")
	assert.Contains(t, src, "var _ saber.Configurator = AppComponent{}")
	assert.Contains(t, src, "RegisterData, RegisterLogging, }")
	assert.Contains(t, src, "saber.BindMembersInjector[*web.Handler](inj, injectHandler)")
	assert.Contains(t, src, "configures the request injector, a child of app.")
	assert.Contains(t, src, "func injectHandler(inj *saber.Injector, target *web.Handler) error")
	assert.Contains(t, src, "f0, err := saber.Instance[web.Store](inj, KeyStore)")
	assert.Contains(t, src, "target.Store = f0")
	assert.Contains(t, src, "m0, err := saber.FactoryOf[*sql.DB](inj, KeyDB)")
	assert.Contains(t, src, "target.SetDB(m0)")

	request := regexp.MustCompile(`func \(RequestComponent\) Configure\(inj \*saber.Injector\) error \{[^}]*\}`).FindString(src)
	assert.NotContains(t, request, "BindMembersInjector", "members injectors are bound at the roots")
}

func factoryManifest(t *testing.T) *descriptor.Manifest {
	t.Helper()

	query := descriptor.MustParseType("*github.com/acme/app/db.Query")
	contract := descriptor.MustParseType("github.com/acme/app.AppContract")
	sqlDB := dep("*database/sql.DB", descriptor.Instance)

	m, err := analysis.New(analysis.Options{}).Build([]analysis.Declaration{
		{Kind: analysis.KindComponent, Name: "app", Modules: []string{"data"}},
		{Kind: analysis.KindModule, Name: "data", Bindings: []analysis.Declaration{
			{Key: keyRef("*database/sql.DB"), Recipe: &descriptor.Recipe{Package: "github.com/acme/app/db", Func: "Open"}},
			{Name: "Queries", Key: keyRef("github.com/acme/app/db.QueryFactory"), Factory: &descriptor.Factory{Methods: []descriptor.FactoryMethod{
				{
					Name:   "New",
					Result: query,
					Recipe: descriptor.Recipe{Package: "github.com/acme/app/db", Func: "NewQuery", ReturnsError: true},
					Arguments: []descriptor.FactoryArgument{
						{Dependency: sqlDB},
						{Dependency: dep("string", descriptor.Instance), Assisted: true},
						{Dependency: dep("int", descriptor.Instance), Assisted: true},
					},
				},
				{
					Name:      "Count",
					Result:    descriptor.MustParseType("int"),
					Recipe:    descriptor.Recipe{Package: "github.com/acme/app/db", Func: "Count"},
					Arguments: []descriptor.FactoryArgument{{Dependency: dep("string", descriptor.Instance), Assisted: true}},
				},
			}}},
		}},
		{Target: &query, Fields: []descriptor.FieldInjection{{Name: "DB", Dependency: sqlDB}}},
		{Kind: analysis.KindContract, Name: "app", Contract: &contract, Component: "app", Provides: []descriptor.ContractMethod{
			{Name: "DB", Dependency: sqlDB},
			{Name: "Queries", Dependency: dep("github.com/acme/app/db.QueryFactory", descriptor.ProviderOf)},
			{Name: "LazyDB", Dependency: dep("*database/sql.DB", descriptor.LazyOf)},
		}},
	})
	require.NoError(t, err)
	return m
}

func TestGenerate_Factories(t *testing.T) {
	t.Parallel()

	files, err := generator.New(generator.Options{}).Generate(factoryManifest(t))
	require.NoError(t, err)
	src := source(t, files, "data_saber.go")

	assert.Contains(t, src, "type dataQueriesFactory struct { inj *saber.Injector }")
	assert.Contains(t, src, "var _ db.QueryFactory = (*dataQueriesFactory)(nil)")
	assert.Contains(t, src, "func (f *dataQueriesFactory) New(a0 string, a1 int) (v *db.Query, err error) {")
	assert.Contains(t, src, "d0, err := saber.Instance[*sql.DB](f.inj, KeyDB)")
	assert.Contains(t, src, "if v, err = db.NewQuery(d0, a0, a1); err != nil { return v, err }")
	assert.Contains(t, src, "if err = f.inj.InjectMembers(v); err != nil { return nil, err }")
	assert.Contains(t, src, "func (f *dataQueriesFactory) Count(a0 string) (v int, err error) { v = db.Count(a0) return v, nil }")
	assert.Contains(t, src, "inj.Register(KeyQueryFactory, saber.ValueProvider(&dataQueriesFactory{inj: inj}))")

	keys := source(t, files, "keys_saber.go")
	assert.Contains(t, keys, "KeyQueryFactory = saber.KeyOf[db.QueryFactory]()")
	assert.NotContains(t, keys, "KeyString", "assisted arguments are not keys")
}

func TestGenerate_Contracts(t *testing.T) {
	t.Parallel()

	files, err := generator.New(generator.Options{}).Generate(factoryManifest(t))
	require.NoError(t, err)
	src := source(t, files, "components_saber.go")

	assert.Contains(t, src, "inj.Register(KeyAppContract, saber.ValueProvider(&appContract{inj: inj}))")
	assert.Contains(t, src, "var _ app.AppContract = (*appContract)(nil)")
	assert.Contains(t, src, "func NewAppContract(inj *saber.Injector) app.AppContract { return &appContract{inj: inj} }")
	assert.Contains(t, src, "func (c *appContract) DB() (*sql.DB, error) { return saber.Instance[*sql.DB](c.inj, KeyDB) }")
	assert.Contains(t, src, "func (c *appContract) Queries() (saber.Factory[db.QueryFactory], error) { return saber.FactoryOf[db.QueryFactory](c.inj, KeyQueryFactory) }")
	assert.Contains(t, src, "func (c *appContract) LazyDB() (*saber.Lazy[*sql.DB], error) { return saber.LazyOf[*sql.DB](c.inj, KeyDB) }")

	for _, f := range files {
		_, err := parser.ParseFile(token.NewFileSet(), f.Name, f.Content, 0)
		assert.NoError(t, err, "%s:\n%s", f.Name, f.Content)
	}
}

func TestGenerate_Deterministic(t *testing.T) {
	t.Parallel()

	g := generator.New(generator.Options{})
	first, err := g.Generate(sampleManifest(t))
	require.NoError(t, err)
	second, err := g.Generate(sampleManifest(t))
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestGenerate_Errors(t *testing.T) {
	t.Parallel()

	_, err := generator.New(generator.Options{Package: "my-di"}).Generate(&descriptor.Manifest{})
	assert.ErrorIs(t, err, generator.ErrInvalidPackage)

	_, err = generator.New(generator.Options{}).Generate(nil)
	assert.Error(t, err)

	bad := keyRef("string")
	bad.Qualifier = &descriptor.QualifierRef{Name: "q", Members: []descriptor.MemberRef{{Name: "m", Value: map[string]any{}}}}
	_, err = generator.New(generator.Options{}).Generate(&descriptor.Manifest{
		Modules: []descriptor.Module{{Name: "m", Bindings: []descriptor.Binding{{
			Name:   "S",
			Key:    *bad,
			Recipe: &descriptor.Recipe{Package: "p", Func: "F"},
		}}}},
	})
	var genErr generator.GenerationError
	require.True(t, errors.As(err, &genErr))
	assert.Equal(t, generator.KeysFile, genErr.File)
}

func TestGenerate_EmptyManifest(t *testing.T) {
	t.Parallel()

	files, err := generator.New(generator.Options{}).Generate(&descriptor.Manifest{})
	require.NoError(t, err)
	require.Len(t, files, 2)

	for _, f := range files {
		_, err := parser.ParseFile(token.NewFileSet(), f.Name, f.Content, 0)
		assert.NoError(t, err)
	}
}

func TestWriteFiles(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	stale := filepath.Join(dir, "old_saber.go")
	handwritten := filepath.Join(dir, "mine_saber.go")
	require.NoError(t, os.WriteFile(stale, []byte("// Code generated by sabergen. DO NOT EDIT.\n\npackage di\n"), 0o644))
	require.NoError(t, os.WriteFile(handwritten, []byte("package di\n"), 0o644))

	files, err := generator.New(generator.Options{}).Generate(sampleManifest(t))
	require.NoError(t, err)
	require.NoError(t, generator.WriteFiles(filepath.Join(dir), files))

	for _, f := range files {
		data, err := os.ReadFile(filepath.Join(dir, f.Name))
		require.NoError(t, err)
		assert.Equal(t, f.Content, data)
	}

	assert.NoFileExists(t, stale)
	assert.FileExists(t, handwritten)
}
