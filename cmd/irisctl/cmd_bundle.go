package main

import (
	"fmt"
	"os"

	"iris-app/internal/ml"
	"iris-app/internal/storage"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
)

func newBundleCmd() *cobra.Command {
	var (
		artifacts artifactFlags
		out       string
	)

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Pack the scaler and model into one read-only bundle file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			source := ml.FileSource{ScalerPath: artifacts.scalerPath, ModelPath: artifacts.modelPath}

			// Refuse to pack artifacts the dashboard would reject.
			loaded, err := ml.LoadArtifacts(source)
			if err != nil {
				return fmt.Errorf("validate artifacts: %w", err)
			}

			scaler, err := os.ReadFile(artifacts.scalerPath)
			if err != nil {
				return err
			}
			model, err := os.ReadFile(artifacts.modelPath)
			if err != nil {
				return err
			}

			info := storage.BundleInfo{ScalerFrom: artifacts.scalerPath, ModelFrom: artifacts.modelPath}
			if err := storage.Pack(out, scaler, model, info); err != nil {
				return err
			}
			log.Info().Str("bundle", out).Str("model_version", loaded.Metadata.Version).Msg("bundle written")

			fmt.Fprintf(cmd.OutOrStdout(), "wrote %s (scaler %d bytes, model %d bytes, model version %s)\n",
				out, len(scaler), len(model), loaded.Metadata.Version)
			return nil
		},
	}
	artifacts.register(cmd)
	cmd.Flags().StringVarP(&out, "out", "o", "models/iris.bundle", "bundle file to write")
	return cmd
}
