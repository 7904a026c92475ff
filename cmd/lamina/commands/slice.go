package commands

import (
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"lamina/pkg/config"
	"lamina/pkg/gcode"
	"lamina/pkg/layers"
	"lamina/pkg/preview"
	"lamina/pkg/toolpath"
)

// slice <layers.json>: plan toolpaths for sliced layers and write G-code.
func sliceCmd() *cobra.Command {
	var (
		profilePath string
		outPath     string
		svgPath     string
		tolerance   float64
	)

	cmd := &cobra.Command{
		Use:   "slice <layers.json>",
		Short: "Plan toolpaths for sliced layers and write G-code",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prof := config.Default()
			if profilePath != "" {
				var err error
				prof, err = config.Load(profilePath)
				if err != nil {
					return err
				}
			}

			inputs, err := layers.Load(args[0])
			if err != nil {
				return err
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			planner := &toolpath.Planner{
				Profile:   prof,
				Tolerance: tolerance,
				Log:       logger,
			}
			res, err := planner.Plan(ctx, inputs)
			if err != nil {
				return err
			}

			out, err := os.Create(outPath)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer out.Close()
			if err := gcode.New().Emit(out, res); err != nil {
				return fmt.Errorf("emit gcode: %w", err)
			}

			if svgPath != "" {
				sv, err := os.Create(svgPath)
				if err != nil {
					return fmt.Errorf("create preview: %w", err)
				}
				defer sv.Close()
				if err := preview.WriteSVG(sv, res); err != nil {
					return fmt.Errorf("write preview: %w", err)
				}
			}

			logger.Info("planned",
				"layers", len(res.Layers),
				"commands", len(res.Commands()),
				"warnings", len(res.Warnings))
			return nil
		},
	}

	cmd.Flags().StringVarP(&profilePath, "profile", "p", "", "HCL print profile (defaults used when omitted)")
	cmd.Flags().StringVarP(&outPath, "output", "o", "out.gcode", "output G-code file")
	cmd.Flags().StringVar(&svgPath, "svg", "", "also write an SVG preview of traced segments")
	cmd.Flags().Float64Var(&tolerance, "tolerance", toolpath.DefaultTolerance, "geometric tolerance in mm")
	return cmd
}
