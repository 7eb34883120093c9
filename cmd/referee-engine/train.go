// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/pdiddy/referee-engine/internal/pipeline"
	"github.com/pdiddy/referee-engine/internal/predict"
)

var trainCmd = &cobra.Command{
	Use:   "train",
	Short: "Train the learned predictors from the historical corpus",
	Long: `Train fits the referee-response and manuscript-outcome models on the
historical manuscripts, with decisions from the feedback log overriding the
recorded outcomes. A model is saved only when enough labelled samples of
both classes exist; otherwise the previous model file is left in place.`,
}

var trainResponseCmd = &cobra.Command{
	Use:   "response",
	Short: "Train the referee-response model",
	RunE:  func(cmd *cobra.Command, args []string) error { return runTrain(predict.KindResponse) },
}

var trainOutcomeCmd = &cobra.Command{
	Use:   "outcome",
	Short: "Train the manuscript-outcome model",
	RunE:  func(cmd *cobra.Command, args []string) error { return runTrain(predict.KindOutcome) },
}

var trainAllCmd = &cobra.Command{
	Use:   "all",
	Short: "Train both models",
	RunE: func(cmd *cobra.Command, args []string) error {
		if err := runTrain(predict.KindResponse); err != nil {
			return err
		}
		return runTrain(predict.KindOutcome)
	},
}

func runTrain(kind predict.Kind) error {
	e, err := newEngine()
	if err != nil {
		return err
	}
	defer e.Close()

	history, failed, err := pipeline.LoadHistory(cfg)
	if err != nil {
		return err
	}
	for _, f := range failed {
		fmt.Printf("failed  %s: %v\n", f.Path, f.Err)
	}
	fb, err := e.feedback.ReadAll()
	if err != nil {
		return err
	}

	var (
		model = predict.NewModel(kind, cfg.Predictors, logger.Named("predict"))
		res   predict.TrainResult
	)
	switch kind {
	case predict.KindResponse:
		res = pipeline.TrainResponse(model, history, e.index.Entries(), e.embed, fb)
	case predict.KindOutcome:
		res = pipeline.TrainOutcome(model, history, fb, e.assessor, cfg)
	}

	fmt.Printf("%s: %s (%d samples, %d positive", kind, res.Status, res.NSamples, res.Positives)
	if res.Status == predict.StatusTrained {
		fmt.Printf(", cv accuracy %.3f)\n", res.CVAccuracy)
	} else {
		fmt.Println(")")
		return nil
	}
	if err := model.Save(cfg.Predictors.ModelsDir); err != nil {
		return err
	}
	fmt.Printf("saved   %s\n", model.Path(cfg.Predictors.ModelsDir))
	return nil
}

func init() {
	trainCmd.AddCommand(trainResponseCmd)
	trainCmd.AddCommand(trainOutcomeCmd)
	trainCmd.AddCommand(trainAllCmd)

	rootCmd.AddCommand(trainCmd)
}
