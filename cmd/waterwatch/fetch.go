package main

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/sqzls/waterwatch/internal/coordinator"
	"github.com/sqzls/waterwatch/internal/logging"
)

var fetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Fetch and print the current usage summary",
	Long: `Runs one fetch cycle against the utility API and prints the normalized
summary and monthly history.`,
	RunE: runFetch,
}

func init() {
	rootCmd.AddCommand(fetchCmd)
}

func runFetch(cmd *cobra.Command, args []string) error {
	fmt.Printf("=== Fetch started at %s ===\n", time.Now().Format("2006-01-02 15:04:05 MST"))

	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if cfg.HouseID == "" {
		return fmt.Errorf("no house_id configured in %s", getConfigPath())
	}

	coord := coordinator.New(
		newClient(cfg),
		cfg.HouseID,
		time.Duration(cfg.GetUpdateInterval())*time.Second,
		logging.NewLogger(cfg),
	)

	summary, err := coord.Refresh(context.Background())
	if err != nil {
		return fmt.Errorf("fetching water data: %w", err)
	}

	fmt.Printf("\nHouse %s", summary.HouseID)
	if summary.CustomerName != "" {
		fmt.Printf(" (%s, %s)", summary.CustomerName, summary.Address)
	}
	fmt.Println()
	fmt.Println("----------------------------------------")
	fmt.Printf("%-22s %12.2f m³\n", "Current reading", summary.CurrentReading)
	fmt.Printf("%-22s %12.2f m³\n", "Yearly volume", summary.YearlyVolume)
	fmt.Printf("%-22s %12.2f 元\n", "Yearly amount", summary.YearlyAmount)
	fmt.Printf("%-22s %12.2f m³\n", "Monthly volume", summary.MonthlyVolume)
	fmt.Printf("%-22s %12.2f 元\n", "Monthly amount", summary.MonthlyAmount)
	fmt.Printf("%-22s %12.2f 元\n", "Unpaid amount", summary.UnpaidAmount)
	fmt.Printf("%-22s %12.2f 元/m³\n", "Unit price", summary.UnitPrice)
	fmt.Printf("%-22s %12.2f 元\n", "Balance", summary.Balance)

	if len(summary.MonthlyHistory) == 0 {
		fmt.Println("\nNo monthly history")
		return nil
	}

	fmt.Println("\nMonthly History:")
	fmt.Println("----------------------------------------")
	fmt.Printf("%-12s  %10s  %10s  %s\n", "Month", "m³", "元", "Paid")
	fmt.Println("----------------------------------------")
	for _, entry := range summary.MonthlyHistory {
		paid := "yes"
		if !entry.IsPaid {
			paid = "no"
		}
		fmt.Printf("%-12s  %10.2f  %10.2f  %s\n", entry.Date, entry.Volume, entry.Amount, paid)
	}
	fmt.Println("----------------------------------------")
	fmt.Printf("Total: %d months\n", len(summary.MonthlyHistory))

	return nil
}
