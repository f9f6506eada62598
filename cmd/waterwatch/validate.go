package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate [house-id]",
	Short: "Check that a house id is accepted by the utility API",
	Long: `Performs a test billing query for the current year and reports whether the
API accepts the house id. Used once at setup; the recurring fetch does not
re-validate.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	houseID := cfg.HouseID
	if len(args) > 0 {
		houseID = args[0]
	}
	if houseID == "" {
		return fmt.Errorf("no house id given (pass one or set house_id in config.yaml)")
	}

	if !newClient(cfg).Validate(context.Background(), houseID) {
		return fmt.Errorf("cannot connect: house id %s was not accepted", houseID)
	}

	fmt.Printf("✓ House id %s is valid\n", houseID)
	return nil
}
