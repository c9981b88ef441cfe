package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"cropcast/pkg/client"
)

var (
	healthJSON   bool
	healthEvents int
)

var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Show the health snapshot of a running server",
	RunE:  runHealth,
}

func init() {
	healthCmd.Flags().BoolVar(&healthJSON, "json", false, "print the raw JSON snapshot")
	healthCmd.Flags().IntVar(&healthEvents, "events", 0, "also show the last N model load/fallback events")
}

func runHealth(cmd *cobra.Command, args []string) error {
	c := client.New(serverURL, timeout)

	snap, err := c.Health(cmd.Context())
	if snap == nil && err != nil {
		return err
	}

	if healthJSON {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(snap)
	}

	fmt.Printf("Status:        %s (v%s, up %ds)\n", snap.Status, snap.Version, snap.UptimeSeconds)
	fmt.Printf("Fallback mode: %v\n", snap.FallbackMode)
	fmt.Printf("GEE:           enabled=%v reachable=%v", snap.GEE.Enabled, snap.GEE.Reachable)
	if snap.GEE.Error != "" {
		fmt.Printf(" (%s)", snap.GEE.Error)
	}
	fmt.Println()
	fmt.Printf("Store:         ok=%v", snap.Store.OK)
	if snap.Store.Error != "" {
		fmt.Printf(" (%s)", snap.Store.Error)
	}
	fmt.Println()
	fmt.Println("Models:")
	for _, m := range snap.Models {
		fmt.Printf("  %-10s %-9s %-13s", m.Crop, m.State, m.Kind)
		if m.Reason != "" {
			fmt.Printf(" %s", m.Reason)
		} else if m.Library != "" {
			fmt.Printf(" %s (format v%d)", m.Library, m.FormatVersion)
		}
		fmt.Println()
	}

	if healthEvents > 0 {
		events, evErr := c.ModelEvents(cmd.Context(), healthEvents)
		if evErr != nil {
			return evErr
		}
		fmt.Println("Model events:")
		for _, ev := range events {
			fmt.Printf("  %s %-10s %-9s %s\n",
				ev.CreatedAt.Format("2006-01-02 15:04:05"), ev.Crop, ev.Event, ev.Detail)
		}
	}
	return err
}
