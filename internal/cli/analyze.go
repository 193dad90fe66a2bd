package cli

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/junioryono/saber/analysis"
	"github.com/junioryono/saber/descriptor"
	"github.com/junioryono/saber/internal/graph"
)

// ErrNoSources is returned when there is nothing to analyze.
var ErrNoSources = errors.New("no declaration sources given")

func addAnalyzeFlags(cmd *cobra.Command) {
	cmd.Flags().StringSlice("source", nil, "declaration files, directories or globs (repeatable)")
	cmd.Flags().String("manifest", "", "manifest file to write (.yaml or .json)")
	cmd.Flags().Bool("strict", false, "reject components that shadow ancestor bindings")
	cmd.Flags().String("graph", "", "write the binding graph in DOT format to this file")
}

func newAnalyzeCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Validate declarations and write the manifest",
		Example: `  sabergen analyze --source decl/ --manifest saber.manifest.yaml
  sabergen analyze --source 'decl/*.yaml' --graph bindings.dot`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := a.analyze(cmd.Context())
			if err != nil {
				return err
			}
			return a.writeManifest(cmd.OutOrStdout(), m)
		},
	}
	addAnalyzeFlags(cmd)
	return cmd
}

func (a *app) analyze(ctx context.Context) (*descriptor.Manifest, error) {
	if len(a.cfg.Sources) == 0 {
		return nil, ErrNoSources
	}

	analyzer := analysis.New(analysis.Options{
		StrictHierarchy: a.cfg.StrictHierarchy,
		Logger:          a.logger.Named("analysis"),
	})
	m, err := analyzer.Analyze(ctx, analysis.Files(a.cfg.Sources...))
	if err != nil {
		var list analysis.ErrorList
		if errors.As(err, &list) {
			for _, e := range list {
				a.logger.Error("invalid declaration", zap.Error(e))
			}
		}
		return nil, err
	}

	a.logger.Info("declarations valid",
		zap.Int("components", len(m.Components)),
		zap.Int("modules", len(m.Modules)),
		zap.Int("targets", len(m.Targets)),
	)

	if a.cfg.Graph != "" {
		if err := writeGraph(a.cfg.Graph, m); err != nil {
			return nil, fmt.Errorf("write graph: %w", err)
		}
		a.logger.Info("graph written", zap.String("path", a.cfg.Graph))
	}
	return m, nil
}

func (a *app) writeManifest(out io.Writer, m *descriptor.Manifest) error {
	if err := descriptor.WriteFile(a.cfg.Manifest, m); err != nil {
		return fmt.Errorf("write manifest: %w", err)
	}
	_, err := fmt.Fprintf(out, "wrote %s\n", a.cfg.Manifest)
	return err
}

// bindingGraph links every binding of m to the keys it is built from.
func bindingGraph(m *descriptor.Manifest) (*graph.DependencyGraph, error) {
	g := graph.NewDependencyGraph()
	for _, mod := range m.Modules {
		for _, b := range mod.Bindings {
			edges := b.Edges()
			deps := make([]graph.NodeKey, 0, len(edges))
			for _, d := range edges {
				deps = append(deps, graph.NodeKey(d.KeyRef.String()))
			}
			if err := g.AddNode(graph.NodeInfo{
				Key:          graph.NodeKey(b.Key.String()),
				Scope:        b.Scope.String(),
				Dependencies: deps,
			}); err != nil {
				return nil, err
			}
		}
	}
	return g, nil
}

func writeGraph(path string, m *descriptor.Manifest) error {
	g, err := bindingGraph(m)
	if err != nil {
		return err
	}
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := graph.NewVisualizer(g).WriteDOT(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
