package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/materials"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/scenario"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/utils"
	"github.com/spf13/cobra"
)

var dryRun bool

var demoCmd = &cobra.Command{
	Use:   "demo",
	Short: "Run the reference two-material demo genome",
	Long: `Converts the demo genome, writes base.vxa into the bot directory and
runs one simulation. With --dry-run only the scenario is written.`,
	RunE: runDemo,
}

func init() {
	demoCmd.Flags().BoolVar(&dryRun, "dry-run", false, "Write the scenario and print materials without simulating")
	rootCmd.AddCommand(demoCmd)
}

func runDemo(cmd *cobra.Command, args []string) error {
	if !dryRun {
		return evaluateAll(cmd, []models.Genome{demoGenome}, 1)
	}

	conv, err := materials.NewConverter(cfg.MaterialCount, cfg.Multipliers,
		materials.WithMutationFraction(cfg.MutationFraction),
		materials.WithColorSource(utils.NewRandSource(cfg.Seed)),
	)
	if err != nil {
		return err
	}
	mats, err := conv.Convert(demoGenome)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(cfg.BotDir, 0o755); err != nil {
		return fmt.Errorf("failed to create bot dir: %w", err)
	}
	path := filepath.Join(cfg.BotDir, scenario.BaseFile)
	if err := scenario.NewWriter(cfg.Physics).WriteVXA(mats, path); err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	for _, m := range mats {
		fmt.Fprintf(out, "%d %s\tE=%.4g\tuS=%.4g\tuD=%.4g\trho=%.4g\tCTE=%.4g\n",
			m.ID, m.Name, m.ElasticModulus, m.StaticFriction, m.DynamicFriction, m.Density, m.ThermalExpansion)
	}
	log.Info("wrote scenario", "path", path, "materials", len(mats))
	return nil
}
