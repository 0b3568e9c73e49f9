package main

import (
	"fmt"
	"io"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/evald"
	"github.com/GoSim-25-26J-441/voxcraft-manager/pkg/models"
	"github.com/spf13/cobra"
)

var (
	genomeFlag string
	genomeFile string
	repeat     int
	remoteAddr string
)

var evaluateCmd = &cobra.Command{
	Use:   "evaluate",
	Short: "Evaluate one or more genomes",
	Long: `Runs the fitness pipeline on each genome and prints run index, fitness
and descriptor. Genomes come from --genome or --genome-file. With --remote
the genomes are sent to a running "voxmgr serve" instead.`,
	RunE: runEvaluate,
}

func init() {
	evaluateCmd.Flags().StringVar(&genomeFlag, "genome", "", "Comma separated genome values in [0,1]")
	evaluateCmd.Flags().StringVar(&genomeFile, "genome-file", "", "File with genomes (JSON or one per line)")
	evaluateCmd.Flags().IntVar(&repeat, "repeat", 1, "Evaluate each genome this many times")
	evaluateCmd.Flags().StringVar(&remoteAddr, "remote", "", "gRPC address of a running evaluator (host:port)")
	evaluateCmd.MarkFlagsMutuallyExclusive("genome", "genome-file")
	rootCmd.AddCommand(evaluateCmd)
}

func runEvaluate(cmd *cobra.Command, args []string) error {
	var genomes []models.Genome
	switch {
	case genomeFlag != "":
		g, err := parseGenome(genomeFlag)
		if err != nil {
			return err
		}
		genomes = []models.Genome{g}
	case genomeFile != "":
		var err error
		if genomes, err = readGenomes(genomeFile); err != nil {
			return err
		}
	default:
		return fmt.Errorf("one of --genome or --genome-file is required")
	}
	if repeat < 1 {
		return fmt.Errorf("--repeat must be at least 1")
	}

	if remoteAddr != "" {
		return evaluateRemote(cmd, remoteAddr, genomes, repeat)
	}
	return evaluateAll(cmd, genomes, repeat)
}

func evaluateAll(cmd *cobra.Command, genomes []models.Genome, times int) error {
	ctx := cmd.Context()
	p, _, cleanup, err := buildPipeline(ctx)
	if err != nil {
		return err
	}
	defer cleanup()

	for _, g := range genomes {
		for i := 0; i < times; i++ {
			eval, err := p.EvaluateRecord(ctx, g)
			if err != nil {
				return err
			}
			printEvaluation(cmd.OutOrStdout(), eval)
		}
	}
	return nil
}

func evaluateRemote(cmd *cobra.Command, addr string, genomes []models.Genome, times int) error {
	client, err := evald.Dial(addr)
	if err != nil {
		return err
	}
	defer client.Close()

	ctx := cmd.Context()
	for _, g := range genomes {
		for i := 0; i < times; i++ {
			res, err := client.Evaluate(ctx, g)
			if err != nil {
				return fmt.Errorf("remote evaluate: %w", err)
			}
			printResult(cmd.OutOrStdout(), res.RunIndex, res.Fitness, res.Descriptor)
		}
	}
	return nil
}

func printEvaluation(w io.Writer, e models.Evaluation) {
	printResult(w, e.RunIndex, e.Fitness, e.Descriptor)
}

func printResult(w io.Writer, run int, fitness float64, desc []float64) {
	fmt.Fprintf(w, "run %d\tfitness %.6g\tdescriptor %v\n", run, fitness, desc)
}
