package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/morphology"
	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/scenario"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/utils"
	"github.com/spf13/cobra"
)

var (
	bodyX, bodyY, bodyZ int
	mutations           int
)

var initBotCmd = &cobra.Command{
	Use:   "init-bot",
	Short: "Create the bot and output directories and a starter robot body",
	RunE:  runInitBot,
}

func init() {
	initBotCmd.Flags().IntVar(&bodyX, "x", 2, "Voxels along x")
	initBotCmd.Flags().IntVar(&bodyY, "y", 2, "Voxels along y")
	initBotCmd.Flags().IntVar(&bodyZ, "z", 5, "Voxels along z")
	initBotCmd.Flags().IntVar(&mutations, "mutations", 1, "Random voxel flips applied to the body")
	rootCmd.AddCommand(initBotCmd)
}

func runInitBot(cmd *cobra.Command, args []string) error {
	body, err := morphology.NewBody(bodyX, bodyY, bodyZ)
	if err != nil {
		return err
	}
	rng := utils.NewRandSource(cfg.Seed)
	for i := 0; i < mutations; i++ {
		body.Mutate(rng)
	}

	for _, dir := range []string{cfg.BotDir, cfg.OutputDir} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("failed to create %s: %w", dir, err)
		}
	}
	path := filepath.Join(cfg.BotDir, scenario.BodyFile)
	if err := scenario.NewWriter(cfg.Physics).WriteVXD(path, body); err != nil {
		return err
	}
	log.Info("wrote robot body", "path", path, "voxels", body.Filled())
	fmt.Fprintln(cmd.OutOrStdout(), path)
	return nil
}
