package main

import (
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	"iris-app/internal/client"
	"iris-app/internal/common"
	"iris-app/internal/dashboard"
	"iris-app/internal/ml"
	"iris-app/internal/storage"

	"github.com/spf13/cobra"
)

type artifactFlags struct {
	scalerPath string
	modelPath  string
	bundlePath string
}

func (f *artifactFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.scalerPath, "scaler", common.DefaultScalerPath, "scaler artifact (JSON)")
	cmd.Flags().StringVar(&f.modelPath, "model", common.DefaultModelPath, "model artifact (JSON)")
	cmd.Flags().StringVar(&f.bundlePath, "bundle", "", "artifact bundle; overrides --scaler and --model")
}

// open returns the configured artifact source and a release func.
func (f *artifactFlags) open() (ml.ArtifactSource, func(), error) {
	if f.bundlePath == "" {
		return ml.FileSource{ScalerPath: f.scalerPath, ModelPath: f.modelPath}, func() {}, nil
	}
	b, err := storage.OpenBundle(f.bundlePath)
	if err != nil {
		return nil, nil, err
	}
	return b, func() { b.Close() }, nil
}

func newPredictCmd() *cobra.Command {
	var (
		in        = dashboard.DefaultInput()
		artifacts artifactFlags
		remote    string
		timeout   time.Duration
		asJSON    bool
	)

	cmd := &cobra.Command{
		Use:   "predict",
		Short: "Predict the species for four measurements",
		Long: "Predict the species for four measurements, locally from the artifacts or\n" +
			"through a running dashboard with --remote (e.g. " + common.DefaultDashboardURL + ").",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			var (
				pred ml.Prediction
				err  error
			)
			if remote != "" {
				pred, err = client.New(remote, timeout).Predict(in)
			} else {
				pred, err = predictLocal(&artifacts, in)
			}
			if err != nil {
				return err
			}
			return printPrediction(cmd.OutOrStdout(), pred, asJSON)
		},
	}

	for _, s := range dashboard.Sliders() {
		var target *float64
		switch s.Key {
		case dashboard.SliderSepalLength:
			target = &in.SepalLength
		case dashboard.SliderSepalWidth:
			target = &in.SepalWidth
		case dashboard.SliderPetalLength:
			target = &in.PetalLength
		case dashboard.SliderPetalWidth:
			target = &in.PetalWidth
		}
		cmd.Flags().Float64Var(target, flagName(s.Key), s.Default,
			fmt.Sprintf("%s in cm [%g, %g]", s.Label, s.Min, s.Max))
	}
	artifacts.register(cmd)
	cmd.Flags().StringVar(&remote, "remote", os.Getenv(common.EnvDashboardURL), "dashboard URL; predict locally when empty")
	cmd.Flags().DurationVar(&timeout, "timeout", 5*time.Second, "remote request timeout")
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the raw prediction as JSON")

	return cmd
}

// flagName turns a slider key like sepal_length into sepal-length.
func flagName(key string) string {
	return strings.ReplaceAll(key, "_", "-")
}

func predictLocal(f *artifactFlags, in ml.Input) (ml.Prediction, error) {
	snapped, err := dashboard.SnapInput(in)
	if err != nil {
		return ml.Prediction{}, err
	}

	source, release, err := f.open()
	if err != nil {
		return ml.Prediction{}, err
	}
	defer release()

	artifacts, err := ml.NewLoader(source).Load()
	if err != nil {
		return ml.Prediction{}, fmt.Errorf("load artifacts: %w", err)
	}
	p, err := ml.New(artifacts)
	if err != nil {
		return ml.Prediction{}, err
	}
	return p.Predict(snapped)
}

func printPrediction(w io.Writer, pred ml.Prediction, asJSON bool) error {
	if asJSON {
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		return enc.Encode(pred)
	}

	fmt.Fprintf(w, "Species: %s (class %d)\n", pred.Label, pred.Class)
	fmt.Fprintf(w, "Image:   %s\n", pred.Image)
	fmt.Fprintf(w, "Input:   sepal %.1f x %.1f cm, petal %.1f x %.1f cm\n",
		pred.Input.SepalLength, pred.Input.SepalWidth, pred.Input.PetalLength, pred.Input.PetalWidth)
	if len(pred.Probabilities) > 0 {
		for i, p := range pred.Probabilities {
			sp, err := ml.SpeciesFor(i)
			if err != nil {
				continue
			}
			fmt.Fprintf(w, "  %-11s %6.2f%%\n", sp.Name, 100*p)
		}
	}
	return nil
}
