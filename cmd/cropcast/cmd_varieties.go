package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"cropcast/pkg/client"
)

var (
	varietiesCrop  string
	varietiesState string
)

var varietiesCmd = &cobra.Command{
	Use:   "varieties",
	Short: "List registered varieties for a crop",
	RunE:  runVarieties,
}

func init() {
	varietiesCmd.Flags().StringVar(&varietiesCrop, "crop", "", "crop name (required)")
	varietiesCmd.Flags().StringVar(&varietiesState, "state", "", "scope to a state's regional/zonal registrations")
	varietiesCmd.MarkFlagRequired("crop")
}

func runVarieties(cmd *cobra.Command, args []string) error {
	c := client.New(serverURL, timeout)

	resp, err := c.Varieties(cmd.Context(), varietiesCrop, varietiesState)
	if err != nil {
		return err
	}

	fmt.Printf("Varieties for %s", resp.Crop)
	if resp.State != "" {
		fmt.Printf(" in %s", resp.State)
	}
	fmt.Println()
	for _, v := range resp.Varieties {
		scope := "national default"
		switch {
		case v.Region != "":
			scope = "region: " + v.Region
		case v.Zone != "":
			scope = "zone: " + v.Zone
		}
		marker := " "
		if v.Recommended {
			marker = "*"
		}
		fmt.Printf("  %s %-22s %-26s %3d days  %.1f t/ha\n", marker, v.Name, scope, v.MaturityDays, v.YieldPotential)
	}
	if resp.AutoSelection != nil {
		fmt.Printf("Auto-selection: %s [%s] %s\n",
			resp.AutoSelection.Variety.Name, resp.AutoSelection.Method, resp.AutoSelection.Reason)
	}
	return nil
}
