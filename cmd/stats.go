package cmd

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/rahulj/hintloop/internal/store"
)

var statsCmd = &cobra.Command{
	Use:   "stats",
	Short: "Show recent hint resolution statistics",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		dbPath, err := resolveDBPath(cmd, cfg)
		if err != nil {
			return fmt.Errorf("resolve DB path: %w", err)
		}
		st, err := store.Open(dbPath)
		if err != nil {
			return fmt.Errorf("open store: %w", err)
		}
		defer st.Close()

		limit, _ := cmd.Flags().GetInt("limit")
		events, err := st.HintEventRepo().Recent(cmd.Context(), limit)
		if err != nil {
			return fmt.Errorf("load hint events: %w", err)
		}
		printStats(events)
		return nil
	},
}

func init() {
	statsCmd.Flags().Int("limit", 200, "How many recent hint events to aggregate")
}

func printStats(events []store.HintEvent) {
	if len(events) == 0 {
		fmt.Println("No hint events recorded yet.")
		return
	}

	type agg struct {
		count   int
		latency time.Duration
		tokens  int
		cost    float64
	}
	bySource := make(map[string]*agg)
	for _, e := range events {
		a := bySource[e.Source]
		if a == nil {
			a = &agg{}
			bySource[e.Source] = a
		}
		a.count++
		a.latency += time.Duration(e.LatencyMs) * time.Millisecond
		a.tokens += e.Tokens
		a.cost += e.CostUSD
	}

	fmt.Printf("Last %d hints by source:\n", len(events))
	for _, source := range hintSources {
		a := bySource[string(source)]
		if a == nil {
			continue
		}
		avg := a.latency / time.Duration(a.count)
		fmt.Printf("  %-10s %4d hints  avg %-8s", source, a.count, avg.Round(time.Millisecond))
		if a.tokens > 0 {
			fmt.Printf("  %6d tokens  $%.4f", a.tokens, a.cost)
		}
		fmt.Println()
	}
}
