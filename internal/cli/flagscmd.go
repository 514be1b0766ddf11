package cli

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/frankyzip/moduspractica/internal/flags"
)

// The flags command reads and writes the registry through the running
// server's API in a deployed setup; here it operates on the configured
// initial values so a headless profile can still be inspected.
var flagsCmd = &cobra.Command{
	Use:   "flags",
	Short: "Show the configured feature flags",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig()
		if err != nil {
			return err
		}
		printFlags(cfg.Flags)
		return nil
	},
}

func printFlags(s flags.Set) {
	onOff := func(b bool) string {
		if b {
			return "on"
		}
		return "off"
	}
	fmt.Printf("demographics:            %s\n", onOff(s.UseDemographics))
	fmt.Printf("repetition bonus:        %s\n", onOff(s.UseRepetitionBonus))
	fmt.Printf("adaptive systems:        %s\n", onOff(s.UseAdaptiveSystems))
	fmt.Printf("  memory stability:      %s\n", onOff(s.UseMemoryStability))
	fmt.Printf("  personal calibration:  %s\n", onOff(s.UsePersonalCalibration))
	fmt.Printf("performance trend:       %s\n", onOff(s.UsePerformanceTrend))
	fmt.Printf("diagnostic logging:      %s (limit %d/day)\n", onOff(s.DiagnosticLogging), s.DiagnosticDailyLimit)
}
