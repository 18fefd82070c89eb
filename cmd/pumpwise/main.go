package main

import (
	"encoding/json"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/crimson-sun/pumpwise/internal/config"
	"github.com/crimson-sun/pumpwise/internal/dataset"
	"github.com/crimson-sun/pumpwise/internal/engine"
	"github.com/crimson-sun/pumpwise/internal/engine/anomaly"
	"github.com/crimson-sun/pumpwise/internal/logging"
	"github.com/crimson-sun/pumpwise/internal/model"
	"github.com/crimson-sun/pumpwise/internal/store"

	// Register dataset source implementations.
	_ "github.com/crimson-sun/pumpwise/internal/dataset/csvfile"
)

var (
	cfgFile     string
	logLevel    string
	dataFile    string
	inputFile   string
	sensitivity float64
)

var rootCmd = &cobra.Command{
	Use:   "pumpwise",
	Short: "Predictive maintenance scoring engine for industrial pumps",
	Long: `Pumpwise scores pump sensor snapshots into a failure probability,
a discrete risk level and maintenance recommendations, and flags
anomalous rows in historical sensor batches.`,
	SilenceUsage: true,
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "yaml config file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "", "log level: debug, info, warn, error")

	trainCmd.Flags().StringVar(&dataFile, "data", "", "training data CSV (default: configured training_data_file)")
	detectCmd.Flags().StringVar(&dataFile, "data", "", "sensor batch CSV (required)")
	detectCmd.Flags().Float64Var(&sensitivity, "sensitivity", -1, "anomaly sensitivity in [0,1] (default: configured)")
	predictCmd.Flags().StringVar(&inputFile, "input", "", "snapshot JSON file (alternative to key=value args)")

	rootCmd.AddCommand(trainCmd, predictCmd, detectCmd, infoCmd)
}

// setup loads configuration, initializes logging and builds the
// predictor with its persistence and training-data collaborators.
func setup() (*config.Config, *engine.Predictor, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, nil, err
	}
	level := cfg.Logging.Level
	if logLevel != "" {
		level = logLevel
	}
	logging.Init(true, logging.ParseLevel(level))

	ctor, err := dataset.Get("csv")
	if err != nil {
		return nil, nil, err
	}
	src := ctor(cfg.Engine.TrainingDataFile)

	predictor := engine.New(
		cfg.Engine.Features,
		store.New(cfg.Engine.ModelDir),
		src,
		engine.Options{CrossValidation: cfg.Engine.CrossValidation},
	)
	return cfg, predictor, nil
}

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the failure model from the training data CSV",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, predictor, err := setup()
		if err != nil {
			return err
		}

		path := cfg.Engine.TrainingDataFile
		if dataFile != "" {
			path = dataFile
		}
		ctor, err := dataset.Get("csv")
		if err != nil {
			return err
		}
		tbl, err := ctor(path).Load(cmd.Context())
		if err != nil {
			return err
		}

		metrics, err := predictor.Train(cmd.Context(), tbl)
		if err != nil {
			return err
		}
		return printJSON(metrics)
	},
}

var predictCmd = &cobra.Command{
	Use:   "predict [sensor=value ...]",
	Short: "Score one sensor snapshot",
	Long: `Score one sensor snapshot given as key=value arguments or as a JSON
object via --input. Missing sensors default to zero and are reported
in the result.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, predictor, err := setup()
		if err != nil {
			return err
		}

		snapshot, err := parseSnapshot(args)
		if err != nil {
			return err
		}

		result := predictor.Predict(cmd.Context(), snapshot)

		out := struct {
			model.Prediction
			Alert         bool    `json:"alert"`
			Efficiency    float64 `json:"efficiency"`
			RemainingLife float64 `json:"remaining_life"`
		}{
			Prediction:    result,
			Alert:         result.FailureProbability >= cfg.Engine.PredictionThreshold,
			Efficiency:    model.Efficiency(snapshot[model.FlowRate], snapshot[model.PowerConsumption]),
			RemainingLife: model.RemainingLife(snapshot[model.OperatingHours]),
		}
		return printJSON(out)
	},
}

var detectCmd = &cobra.Command{
	Use:   "detect",
	Short: "Flag anomalous rows in a historical sensor batch",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, _, err := setup()
		if err != nil {
			return err
		}
		if dataFile == "" {
			return fmt.Errorf("--data is required")
		}

		ctor, err := dataset.Get("csv")
		if err != nil {
			return err
		}
		batch, err := ctor(dataFile).Load(cmd.Context())
		if err != nil {
			return err
		}

		s := sensitivity
		if s < 0 {
			s = cfg.Anomaly.Sensitivity
		}

		detector := anomaly.New(cfg.Engine.Features)
		annotated := detector.Detect(batch, s)

		enc := json.NewEncoder(os.Stdout)
		for i := 0; i < batch.Len(); i++ {
			row := struct {
				Row      int     `json:"row"`
				Anomaly  bool    `json:"anomaly"`
				Score    float64 `json:"anomaly_score"`
				Severity string  `json:"anomaly_severity"`
			}{i, annotated.Anomaly[i], annotated.Score[i], annotated.Severity[i]}
			if err := enc.Encode(row); err != nil {
				return err
			}
		}
		return nil
	},
}

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show current model state",
	RunE: func(cmd *cobra.Command, args []string) error {
		_, predictor, err := setup()
		if err != nil {
			return err
		}
		return printJSON(predictor.Info())
	},
}

// parseSnapshot builds a snapshot from --input JSON or key=value args.
func parseSnapshot(args []string) (model.Snapshot, error) {
	snapshot := model.Snapshot{}

	if inputFile != "" {
		data, err := os.ReadFile(inputFile)
		if err != nil {
			return nil, fmt.Errorf("read snapshot: %w", err)
		}
		if err := json.Unmarshal(data, &snapshot); err != nil {
			return nil, fmt.Errorf("parse snapshot: %w", err)
		}
		return snapshot, nil
	}

	for _, arg := range args {
		key, val, ok := strings.Cut(arg, "=")
		if !ok {
			return nil, fmt.Errorf("expected sensor=value, got %q", arg)
		}
		v, err := strconv.ParseFloat(val, 64)
		if err != nil {
			return nil, fmt.Errorf("sensor %q: %w", key, err)
		}
		snapshot[key] = v
	}
	if len(snapshot) == 0 {
		return nil, fmt.Errorf("no sensor readings given")
	}
	return snapshot, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
