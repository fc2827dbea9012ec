package main

import (
	"encoding/json"
	"fmt"
	"io"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"pqkernel/pkg"
)

func RunCommand() *cobra.Command {
	var configFile string
	var dataDirs []string
	var chartFile string
	var folds int
	var seed uint64

	var cmd = &cobra.Command{
		Use:   "run [--config file.yaml] [--data dir ...] [--chart out.png]",
		Short: "Benchmarks classical, quantum and dual kernel SVMs on every dataset directory and prints the comparison table",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			params, err := pkg.LoadParameters(configFile)
			if err != nil {
				return err
			}
			if err := params.ApplyEnv(".env"); err != nil {
				return err
			}
			if cmd.Flags().Changed("data") {
				params.DataDirs = dataDirs
			}
			if cmd.Flags().Changed("chart") {
				params.ChartFile = chartFile
			}
			if cmd.Flags().Changed("folds") {
				params.Folds = folds
			}
			if cmd.Flags().Changed("seed") {
				params.RndSeed = seed
			}

			results, err := pkg.Run(params)
			if err != nil {
				return err
			}
			if err := pkg.WriteTable(cmd.OutOrStdout(), results); err != nil {
				return fmt.Errorf("error writing results table: %w", err)
			}
			if params.ChartFile != "" && len(results.Datasets) > 0 {
				if err := pkg.SaveChart(results, params.ChartFile); err != nil {
					return err
				}
				log.Info().Str("file", params.ChartFile).Msg("chart saved")
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&configFile, "config", "c", "", "YAML experiment configuration (optional, defaults are used for missing keys)")
	cmd.Flags().StringSliceVarP(&dataDirs, "data", "d", nil, "dataset directories, processed in order")
	cmd.Flags().StringVarP(&chartFile, "chart", "o", "", "name of the accuracy chart file, empty to disable")
	cmd.Flags().IntVarP(&folds, "folds", "k", 5, "number of cross-validation folds")
	cmd.Flags().Uint64VarP(&seed, "seed", "s", 42, "random seed of the train/test split")

	return cmd
}

var logLevel string
var logFormat string

func main() {

	Main := &cobra.Command{Use: "pqkernel", PersistentPreRunE: setupLogging, SilenceUsage: true}

	Main.PersistentFlags().StringVarP(&logLevel, "log-level", "", "info", "Logging level: info, warn, error or debug")
	Main.PersistentFlags().StringVarP(&logFormat, "log-format", "", "pretty", "Logging format: pretty or json")

	Main.AddCommand(RunCommand())

	if err := Main.Execute(); err != nil {
		panic(err)
	}
}

func setupLogging(cmd *cobra.Command, args []string) error {
	switch logLevel {
	case "error":
		zerolog.SetGlobalLevel(zerolog.ErrorLevel)
	case "warn":
		zerolog.SetGlobalLevel(zerolog.WarnLevel)
	case "debug":
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	case "info":
		zerolog.SetGlobalLevel(zerolog.InfoLevel)
	default:
		return fmt.Errorf("invalid logging level %q", logLevel)
	}

	switch logFormat {
	case "pretty":
		log.Logger = log.Output(prettyWriter(cmd.ErrOrStderr()))
	case "json":
		log.Logger = zerolog.New(cmd.ErrOrStderr()).With().Timestamp().Logger()
	default:
		return fmt.Errorf("invalid log format %q", logFormat)
	}
	return nil
}

// prettyWriter prints numeric fields with three decimals.
func prettyWriter(out io.Writer) zerolog.ConsoleWriter {
	writer := zerolog.ConsoleWriter{Out: out}
	writer.FormatFieldValue = func(i interface{}) string {
		switch v := i.(type) {
		case json.Number:
			val, _ := v.Float64()
			return fmt.Sprintf("%.3f", val)
		default:
			return fmt.Sprintf("%s", i)
		}
	}
	return writer
}
