package main

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"cropcast/pkg/client"
)

var smokeCmd = &cobra.Command{
	Use:   "smoke",
	Short: "Run end-to-end verification checks against a running server",
	Long: `Exercises the API the way the acceptance suite does: health reporting,
crop listing, prediction with and without an explicit variety, and the
rejection paths for unknown crops and varieties. Exits non-zero if any
check fails.`,
	RunE: runSmoke,
}

type smokeCheck struct {
	name string
	run  func(ctx context.Context, c *client.Client) error
}

var smokeChecks = []smokeCheck{
	{"health endpoint responds", checkHealth},
	{"crops are listed with model state", checkCrops},
	{"predict with variety auto-selection", checkAutoSelection},
	{"predict with explicit variety", checkExplicitVariety},
	{"unknown crop is rejected", checkUnknownCrop},
	{"unknown variety is rejected with valid choices", checkUnknownVariety},
	{"varieties endpoint reports zonal fallback", checkZonalFallback},
	{"prediction log records requests", checkRecent},
}

func runSmoke(cmd *cobra.Command, args []string) error {
	c := client.New(serverURL, timeout)
	ctx := cmd.Context()

	failed := 0
	for _, check := range smokeChecks {
		err := check.run(ctx, c)
		if err != nil {
			failed++
			fmt.Printf("FAIL  %-50s %v\n", check.name, err)
		} else {
			fmt.Printf("ok    %s\n", check.name)
		}
	}

	fmt.Printf("\n%d/%d checks passed\n", len(smokeChecks)-failed, len(smokeChecks))
	if failed > 0 {
		return fmt.Errorf("%d smoke checks failed", failed)
	}
	return nil
}

func checkHealth(ctx context.Context, c *client.Client) error {
	snap, err := c.Health(ctx)
	if err != nil {
		return err
	}
	if snap.Status == "" {
		return fmt.Errorf("empty status in snapshot")
	}
	if len(snap.Models) == 0 {
		return fmt.Errorf("snapshot reports no models")
	}
	if snap.FallbackMode {
		fmt.Printf("      note: service is in fallback mode\n")
	}
	return nil
}

func checkCrops(ctx context.Context, c *client.Client) error {
	crops, err := c.Crops(ctx)
	if err != nil {
		return err
	}
	if len(crops) == 0 {
		return fmt.Errorf("no crops listed")
	}
	for _, cs := range crops {
		if cs.ModelState != "loaded" && cs.ModelState != "fallback" {
			return fmt.Errorf("crop %s has unexpected model state %q", cs.Crop, cs.ModelState)
		}
	}
	return nil
}

func checkAutoSelection(ctx context.Context, c *client.Client) error {
	resp, err := c.Predict(ctx, client.PredictRequest{
		Crop:       "wheat",
		State:      "Punjab",
		SowingDate: "2025-11-05",
		AreaHa:     2.5,
	})
	if err != nil {
		return err
	}
	if resp.Variety.Method != "regional_match" {
		return fmt.Errorf("expected regional_match for wheat/Punjab, got %s", resp.Variety.Method)
	}
	if resp.Variety.Variety.Name == "" {
		return fmt.Errorf("no variety selected")
	}
	if resp.YieldTPerHa <= 0 {
		return fmt.Errorf("non-positive yield %v", resp.YieldTPerHa)
	}
	if resp.Interval.Lower > resp.YieldTPerHa || resp.Interval.Upper < resp.YieldTPerHa {
		return fmt.Errorf("interval [%v, %v] does not bracket yield %v",
			resp.Interval.Lower, resp.Interval.Upper, resp.YieldTPerHa)
	}
	return nil
}

func checkExplicitVariety(ctx context.Context, c *client.Client) error {
	resp, err := c.Predict(ctx, client.PredictRequest{
		Crop:       "wheat",
		State:      "Punjab",
		SowingDate: "2025-11-05",
		AreaHa:     1.0,
		Variety:    "PBW-343",
	})
	if err != nil {
		return err
	}
	if resp.Variety.Method != "user_specified" {
		return fmt.Errorf("expected user_specified, got %s", resp.Variety.Method)
	}
	if resp.Variety.Variety.Name != "PBW-343" {
		return fmt.Errorf("expected PBW-343, got %s", resp.Variety.Variety.Name)
	}
	return nil
}

func checkUnknownCrop(ctx context.Context, c *client.Client) error {
	_, err := c.Predict(ctx, client.PredictRequest{
		Crop:       "dragonfruit",
		State:      "Punjab",
		SowingDate: "2025-11-05",
		AreaHa:     1.0,
	})
	return expectAPIError(err, "unknown_crop")
}

func checkUnknownVariety(ctx context.Context, c *client.Client) error {
	_, err := c.Predict(ctx, client.PredictRequest{
		Crop:       "wheat",
		State:      "Punjab",
		SowingDate: "2025-11-05",
		AreaHa:     1.0,
		Variety:    "NOT-A-VARIETY",
	})
	return expectAPIError(err, "unknown_variety")
}

func checkZonalFallback(ctx context.Context, c *client.Client) error {
	// Gujarat has no regional wheat registrations in the seed catalog, so
	// selection should fall through to the West India zone.
	resp, err := c.Varieties(ctx, "wheat", "Gujarat")
	if err != nil {
		return err
	}
	if resp.AutoSelection == nil {
		return fmt.Errorf("no auto-selection in response")
	}
	if resp.AutoSelection.Method != "zonal_fallback" {
		return fmt.Errorf("expected zonal_fallback for wheat/Gujarat, got %s", resp.AutoSelection.Method)
	}
	return nil
}

func checkRecent(ctx context.Context, c *client.Client) error {
	records, err := c.Recent(ctx, 10)
	if err != nil {
		return err
	}
	// Earlier checks issued predictions, so the log must not be empty.
	if len(records) == 0 {
		return fmt.Errorf("prediction log is empty")
	}
	return nil
}

func expectAPIError(err error, code string) error {
	if err == nil {
		return fmt.Errorf("expected %s error, request succeeded", code)
	}
	var apiErr *client.APIError
	if !errors.As(err, &apiErr) {
		return fmt.Errorf("expected API error, got: %v", err)
	}
	if apiErr.Code != code {
		return fmt.Errorf("expected error code %s, got %s", code, apiErr.Code)
	}
	return nil
}
