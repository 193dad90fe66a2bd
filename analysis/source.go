package analysis

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"golang.org/x/sync/errgroup"
	"gopkg.in/yaml.v3"
)

// Source supplies declaration sites.
type Source interface {
	Declarations(ctx context.Context) ([]Declaration, error)
}

// SliceSource serves declarations built in memory.
type SliceSource []Declaration

func (s SliceSource) Declarations(context.Context) ([]Declaration, error) {
	return slices.Clone(s), nil
}

// FileSource reads YAML declaration files. Patterns may be file paths,
// directories (every .yaml and .yml file inside) or filepath.Match globs.
type FileSource struct {
	Patterns []string
}

// Files returns a FileSource for the given patterns.
func Files(patterns ...string) FileSource {
	return FileSource{Patterns: patterns}
}

// maxConcurrentReads bounds the number of files read at once.
const maxConcurrentReads = 8

func (s FileSource) Declarations(ctx context.Context) ([]Declaration, error) {
	paths, err := s.paths()
	if err != nil {
		return nil, err
	}

	results := make([][]Declaration, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentReads)

	for i, path := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			decls, err := ReadFile(path)
			if err != nil {
				return err
			}
			results[i] = decls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(results...), nil
}

func (s FileSource) paths() ([]string, error) {
	var paths []string
	add := func(p string) {
		if !slices.Contains(paths, p) {
			paths = append(paths, p)
		}
	}

	for _, pattern := range s.Patterns {
		if !strings.ContainsAny(pattern, "*?[") {
			info, err := os.Stat(pattern)
			if err != nil {
				return nil, err
			}
			if !info.IsDir() {
				add(pattern)
				continue
			}
			var matches []string
			for _, ext := range []string{"*.yaml", "*.yml"} {
				m, _ := filepath.Glob(filepath.Join(pattern, ext))
				matches = append(matches, m...)
			}
			slices.Sort(matches)
			for _, m := range matches {
				add(m)
			}
			continue
		}

		matches, err := filepath.Glob(pattern)
		if err != nil {
			return nil, fmt.Errorf("pattern %q: %w", pattern, err)
		}
		if len(matches) == 0 {
			return nil, fmt.Errorf("pattern %q matches no files", pattern)
		}
		for _, m := range matches {
			add(m)
		}
	}
	return paths, nil
}

// ReadFile reads the declarations of one YAML file.
func ReadFile(path string) ([]Declaration, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	return Decode(f, path)
}

// Decode reads declarations from a YAML stream. Each document holds either
// one declaration or a list of them. Positions are stamped with file.
func Decode(r io.Reader, file string) ([]Declaration, error) {
	var decls []Declaration

	dec := yaml.NewDecoder(r)
	for {
		var doc yaml.Node
		if err := dec.Decode(&doc); err != nil {
			if errors.Is(err, io.EOF) {
				break
			}
			return nil, fmt.Errorf("%s: %w", file, err)
		}

		node := &doc
		if node.Kind == 0 {
			continue
		}
		if node.Kind == yaml.DocumentNode {
			if len(node.Content) == 0 {
				continue
			}
			node = node.Content[0]
		}

		switch node.Kind {
		case yaml.SequenceNode:
			var list []Declaration
			if err := node.Decode(&list); err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			decls = append(decls, list...)
		case yaml.MappingNode:
			var d Declaration
			if err := node.Decode(&d); err != nil {
				return nil, fmt.Errorf("%s: %w", file, err)
			}
			decls = append(decls, d)
		case yaml.ScalarNode:
			if node.Tag != "!!null" {
				return nil, fmt.Errorf("%s: line %d: expected a declaration or a list of declarations", file, node.Line)
			}
		default:
			return nil, fmt.Errorf("%s: line %d: expected a declaration or a list of declarations", file, node.Line)
		}
	}

	for i := range decls {
		decls[i].stamp(file)
	}
	return decls, nil
}

// Load reads every source concurrently and returns the declarations in
// source order.
func Load(ctx context.Context, sources ...Source) ([]Declaration, error) {
	results := make([][]Declaration, len(sources))
	g, ctx := errgroup.WithContext(ctx)

	for i, src := range sources {
		g.Go(func() error {
			decls, err := src.Declarations(ctx)
			if err != nil {
				return err
			}
			results[i] = decls
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return slices.Concat(results...), nil
}
