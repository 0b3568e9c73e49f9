package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/GoSim-25-26J-441/voxcraft-manager/internal/metrics"
	"github.com/spf13/cobra"
)

var historyLimit int

var historyCmd = &cobra.Command{
	Use:   "history",
	Short: "List recorded evaluations",
	RunE:  runHistory,
}

func init() {
	historyCmd.Flags().IntVar(&historyLimit, "limit", 50, "Maximum number of evaluations to list")
	rootCmd.AddCommand(historyCmd)
}

func runHistory(cmd *cobra.Command, args []string) error {
	st, err := openStore(cmd.Context())
	if err != nil {
		return err
	}
	if st == nil {
		return fmt.Errorf("store kind %q keeps no history", cfg.Store.Kind)
	}
	defer st.Close()

	evals, err := st.List(cmd.Context(), historyLimit)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "RUN\tFITNESS\tDESCRIPTOR\tATTEMPTS\tDURATION\tID")
	fitness := make([]float64, 0, len(evals))
	for _, e := range evals {
		fmt.Fprintf(tw, "%d\t%.6g\t%v\t%d\t%s\t%s\n", e.RunIndex, e.Fitness, e.Descriptor, e.Attempts, e.Duration, e.ID)
		fitness = append(fitness, e.Fitness)
	}
	if err := tw.Flush(); err != nil {
		return err
	}

	if agg := metrics.Summarize(fitness); agg != nil {
		fmt.Fprintf(cmd.ErrOrStderr(), "%d evaluations, fitness mean %.6g, p50 %.6g, max %.6g\n",
			agg.Count, agg.Mean, agg.P50, agg.Max)
	}
	return nil
}
