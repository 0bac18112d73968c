// Command shaderconv converts shader source between dialects.
//
// Usage:
//
//	shaderconv convert -i shader.frag -o shader.wgsl --from glsl --to wgsl --stage fragment
//
// Defaults for --from, --to, and --stage may also come from a
// .shaderconv.yaml file in the working directory or from SHADERCONV_*
// environment variables; explicit flags win.
package main

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	shaderconverter "github.com/sidunrealde/ShaderConverter"
)

const version = "0.1.0"

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var verbose bool

	rootCmd := &cobra.Command{
		Use:     "shaderconv",
		Short:   "Convert shader source between GLSL, WGSL, HLSL, and MSL",
		Version: version,
		PersistentPreRun: func(cmd *cobra.Command, args []string) {
			level := slog.LevelInfo
			if verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
				Level: level,
			})))
		},
	}
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")

	rootCmd.AddCommand(newConvertCmd())
	return rootCmd
}

func newConvertCmd() *cobra.Command {
	var (
		inputPath  string
		outputPath string
	)

	cmd := &cobra.Command{
		Use:   "convert",
		Short: "Convert a shader file to another dialect",
		RunE: func(cmd *cobra.Command, args []string) error {
			v := viper.New()
			v.SetDefault("from", "glsl")
			v.SetDefault("to", "wgsl")
			v.SetDefault("stage", "fragment")
			v.SetConfigName(".shaderconv")
			v.SetConfigType("yaml")
			v.AddConfigPath(".")
			v.SetEnvPrefix("SHADERCONV")
			v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
			v.AutomaticEnv()
			if err := v.ReadInConfig(); err != nil {
				// The config file is optional.
				if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
					return fmt.Errorf("reading config: %w", err)
				}
			} else {
				slog.Debug("loaded config file", "file", v.ConfigFileUsed())
			}
			if err := v.BindPFlag("from", cmd.Flags().Lookup("from")); err != nil {
				return err
			}
			if err := v.BindPFlag("to", cmd.Flags().Lookup("to")); err != nil {
				return err
			}
			if err := v.BindPFlag("stage", cmd.Flags().Lookup("stage")); err != nil {
				return err
			}

			return runConvert(inputPath, outputPath,
				v.GetString("from"), v.GetString("to"), v.GetString("stage"))
		},
	}

	cmd.Flags().StringVarP(&inputPath, "input", "i", "", "input shader file")
	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "output file (default: stdout)")
	cmd.Flags().String("from", "glsl", "source dialect (glsl, wgsl)")
	cmd.Flags().String("to", "wgsl", "target dialect (hlsl, wgsl, msl, glsl)")
	cmd.Flags().String("stage", "fragment", "pipeline stage (vertex, fragment, compute)")
	_ = cmd.MarkFlagRequired("input")

	return cmd
}

func runConvert(inputPath, outputPath, from, to, stage string) error {
	source, err := os.ReadFile(inputPath)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	slog.Debug("converting shader",
		"input", inputPath, "from", from, "to", to, "stage", stage)

	shaderconverter.InitDiagnostics()
	result := shaderconverter.Convert(string(source),
		shaderconverter.SourceDialect(from),
		shaderconverter.TargetDialect(to),
		shaderconverter.Stage(stage))
	if !result.Success {
		return fmt.Errorf("conversion failed: %s", result.Error)
	}

	if outputPath == "" {
		fmt.Print(result.Output)
		return nil
	}
	if err := os.WriteFile(outputPath, []byte(result.Output), 0644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	slog.Info("wrote converted shader",
		"output", outputPath, "bytes", len(result.Output))
	return nil
}
