package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"db-bridge/internal/engine"
	"db-bridge/internal/schema"
)

var (
	seedTable  string
	seedCount  int
	seedIgnore bool
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Fill a pre-existing destination table with generated data",
	RunE: func(cmd *cobra.Command, args []string) error {
		if seedTable == "" {
			return fmt.Errorf("need a target table (--table)")
		}
		spec, err := connectionSpec("dest", "to seed")
		if err != nil {
			return err
		}
		be, name, err := openBackend(spec)
		if err != nil {
			return err
		}
		defer be.Close()

		targetCount := viper.GetInt("settings.default_count")
		if seedCount > 0 {
			targetCount = seedCount
		}

		cols, err := be.Columns(seedTable)
		if err != nil {
			return err
		}
		if len(cols) == 0 {
			return fmt.Errorf("table %s not found on %s", seedTable, name)
		}

		fields := (&schema.Table{Name: seedTable, Columns: cols}).FieldNames()
		ins := engine.NewInserter(be, seedTable, fields, seedIgnore)

		log.Printf("Seeding %s.%s with %d rows...", name, seedTable, targetCount)
		start := time.Now()
		uiprogress.Start()
		bar := uiprogress.AddBar(targetCount).AppendCompleted().PrependElapsed()

		for i := 0; i < targetCount; i++ {
			if err := ins.Add(engine.SeedRow(cols)...); err != nil {
				uiprogress.Stop()
				return err
			}
			bar.Incr()
		}
		err = ins.Flush()
		uiprogress.Stop()
		if err != nil {
			return err
		}

		log.Printf("Seed done! %d rows in %s", targetCount, time.Since(start))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(seedCmd)

	seedCmd.Flags().StringVar(&seedTable, "table", "", "Target table (must exist)")
	seedCmd.Flags().IntVar(&seedCount, "count", 0, "Number of records to generate (overrides config)")
	seedCmd.Flags().BoolVar(&seedIgnore, "ignore-duplicates", false, "Silently skip rows violating uniqueness constraints where the dialect supports it")

	viper.BindPFlag("settings.default_count", seedCmd.Flags().Lookup("count"))
	viper.SetDefault("settings.default_count", 100)
}
