package cli

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/junioryono/saber/descriptor"
	"github.com/junioryono/saber/generator"
)

func addGenerateFlags(cmd *cobra.Command) {
	cmd.Flags().String("out", "", "directory for generated files")
	cmd.Flags().String("package", "", "package name of generated files")
	cmd.Flags().String("header", "", "text placed after the generated code marker, one comment line per line")
	cmd.Flags().String("saber-import", "", "import path of the saber runtime")
}

func newGenerateCommand(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "generate",
		Short:   "Generate providers and configurators from a manifest",
		Example: `  sabergen generate --manifest saber.manifest.yaml --out ./di --package di`,
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			m, err := descriptor.ReadFile(a.cfg.Manifest)
			if err != nil {
				return fmt.Errorf("read manifest: %w", err)
			}
			return a.generate(cmd.OutOrStdout(), m)
		},
	}
	cmd.Flags().String("manifest", "", "manifest file to read (.yaml or .json)")
	addGenerateFlags(cmd)
	return cmd
}

func (a *app) generate(out io.Writer, m *descriptor.Manifest) error {
	gen := generator.New(generator.Options{
		Package:     a.cfg.Output.Package,
		Header:      a.cfg.Output.Header,
		SaberImport: a.cfg.Output.SaberImport,
	})

	files, err := gen.Generate(m)
	if err != nil {
		return err
	}
	if err := generator.WriteFiles(a.cfg.Output.Dir, files); err != nil {
		return fmt.Errorf("write generated files: %w", err)
	}

	for _, f := range files {
		path := filepath.Join(a.cfg.Output.Dir, f.Name)
		a.logger.Debug("file generated", zap.String("path", path), zap.Int("bytes", len(f.Content)))
		if _, err := fmt.Fprintf(out, "wrote %s\n", path); err != nil {
			return err
		}
	}
	a.logger.Info("code generated", zap.String("dir", a.cfg.Output.Dir), zap.Int("files", len(files)))
	return nil
}
