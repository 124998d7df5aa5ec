package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"

	"github.com/scarnyc/spacewalks/pkg/dataset"
	"github.com/scarnyc/spacewalks/pkg/figure"
	"github.com/scarnyc/spacewalks/pkg/render"
	"github.com/scarnyc/spacewalks/pkg/utils"
)

func newRenderCommand(opts *options) *cobra.Command {
	var (
		format  string
		out     string
		variant string
	)

	cmd := &cobra.Command{
		Use:   "render",
		Short: "Write the chart as a static SVG or PNG image",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := opts.load()
			if err != nil {
				return err
			}

			if format == "" {
				format = strings.TrimPrefix(filepath.Ext(out), ".")
			}

			f, err := render.ParseFormat(format)
			if err != nil {
				return err
			}

			name := utils.FirstNonEmpty(variant, cfg.Dashboard.Variant)

			v, ok := figure.LookupVariant(name)
			if !ok {
				return fmt.Errorf("unknown variant %q. Allowed values are %v", name, figure.VariantNames())
			}

			table, err := dataset.NewLoader(cfg.Dataset).Load(cmd.Context())
			if err != nil {
				return err
			}

			fig := figure.Build(table, figure.Options{Variant: v, Colors: cfg.Dashboard.Colors})

			file, err := os.Create(out)
			if err != nil {
				return fmt.Errorf("failed to create %s: %w", out, err)
			}
			defer file.Close()

			if err := render.Render(file, fig, f); err != nil {
				return err
			}

			if err := file.Close(); err != nil {
				return fmt.Errorf("failed to write %s: %w", out, err)
			}

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s chart to %s\n", f, out)

			return nil
		},
	}

	cmd.Flags().StringVar(&format, "format", "", "Image format, svg or png (default: from the output file extension)")
	cmd.Flags().StringVar(&out, "out", "", "Output file")
	cmd.Flags().StringVar(&variant, "variant", "", "Dashboard variant (default: from the configuration)")
	_ = cmd.MarkFlagRequired("out")

	return cmd
}
