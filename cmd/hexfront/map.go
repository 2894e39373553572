package main

import (
	"fmt"
	"os"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/talgya/hexfront/internal/render"
	"github.com/talgya/hexfront/internal/world"
)

var mapPlain bool

var mapCmd = &cobra.Command{
	Use:   "map",
	Short: "Generate a map and print it",
	Long:  `Generates a map from the configured size, ratios and seed and prints it with terrain counts.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		gen := cfg.GenConfig()
		if gen.Seed == 0 {
			gen.Seed = time.Now().UnixNano()
		}
		if err := gen.Validate(); err != nil {
			return err
		}
		m := world.Generate(gen)

		r := render.New(os.Stdout)
		if mapPlain {
			r = render.Plain()
		}
		fmt.Printf("Seed %d, %s, %s cells\n\n", gen.Seed, m.String(), humanize.Comma(int64(m.CellCount())))
		fmt.Println(r.Map(m))
		fmt.Println()

		counts := m.TerrainCounts()
		for _, t := range world.AllTerrains {
			fmt.Printf("%-10s %4d\n", t, counts[t])
		}
		return nil
	},
}

func init() {
	mapCmd.Flags().BoolVar(&mapPlain, "plain", false, "no colour")
	rootCmd.AddCommand(mapCmd)
}
