package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cropcast/pkg/client"
)

var (
	predictCrop     string
	predictState    string
	predictDistrict string
	predictSowing   string
	predictArea     float64
	predictVariety  string
	predictJSON     bool
)

var predictCmd = &cobra.Command{
	Use:   "predict",
	Short: "Request a yield prediction from a running server",
	Long: `Requests a prediction. Omit --variety to exercise auto-selection; the
response explains which rung of the selection ladder chose the variety.

Example:
  cropcast predict --crop wheat --state Punjab --sowing 2025-11-05 --area 2.5`,
	RunE: runPredict,
}

func init() {
	predictCmd.Flags().StringVar(&predictCrop, "crop", "", "crop name (required)")
	predictCmd.Flags().StringVar(&predictState, "state", "", "state name (required)")
	predictCmd.Flags().StringVar(&predictDistrict, "district", "", "district name")
	predictCmd.Flags().StringVar(&predictSowing, "sowing", "", "sowing date YYYY-MM-DD (required)")
	predictCmd.Flags().Float64Var(&predictArea, "area", 1.0, "field area in hectares")
	predictCmd.Flags().StringVar(&predictVariety, "variety", "", "variety name (omit for auto-selection)")
	predictCmd.Flags().BoolVar(&predictJSON, "json", false, "print the raw JSON response")
	predictCmd.MarkFlagRequired("crop")
	predictCmd.MarkFlagRequired("state")
	predictCmd.MarkFlagRequired("sowing")
}

func runPredict(cmd *cobra.Command, args []string) error {
	c := client.New(serverURL, timeout)

	resp, err := c.Predict(cmd.Context(), client.PredictRequest{
		Crop:       predictCrop,
		State:      predictState,
		District:   predictDistrict,
		SowingDate: predictSowing,
		AreaHa:     predictArea,
		Variety:    predictVariety,
	})
	if err != nil {
		return err
	}

	if predictJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(resp)
	}

	fmt.Printf("Prediction %s\n", resp.PredictionID)
	fmt.Printf("  Crop:       %s (%s, %s season)\n", resp.Crop, resp.State, resp.Season)
	fmt.Printf("  Variety:    %s [%s] %s\n", resp.Variety.Variety.Name, resp.Variety.Method, resp.Variety.Reason)
	if len(resp.Variety.Alternatives) > 0 {
		fmt.Printf("  Alternatives: %v\n", resp.Variety.Alternatives)
	}
	fmt.Printf("  Yield:      %.2f t/ha (%.0f%% interval %.2f - %.2f)\n",
		resp.YieldTPerHa, resp.Interval.ConfidenceLevel*100, resp.Interval.Lower, resp.Interval.Upper)
	fmt.Printf("  Production: %.2f t over %.2f ha\n", resp.ProductionT, predictArea)
	fmt.Printf("  Inputs:     NDVI %.2f (%s), rainfall %.0f mm (%s)\n",
		resp.Environment.NDVI, resp.Environment.NDVISource,
		resp.Environment.RainfallMM, resp.Environment.RainfallSource)
	fmt.Printf("  Model:      %s (%s)", resp.Model.Kind, resp.Model.State)
	if resp.Model.FallbackReason != "" {
		fmt.Printf(" - %s", resp.Model.FallbackReason)
	}
	fmt.Println()
	return nil
}
