package cmd

import (
	"fmt"
	"log"
	"time"

	"github.com/gosuri/uiprogress"
	"github.com/spf13/cobra"

	"db-bridge/internal/engine"
)

var (
	copyTables []string
	copyIgnore bool
)

var copyCmd = &cobra.Command{
	Use:   "copy",
	Short: "Bulk-copy table rows from the source into the destination",
	Long: `Copies every row of the selected tables from the source backend into
same-named, pre-existing tables on the destination backend, batched into
multi-row INSERT statements. Batches are executed sequentially; batches
already flushed stay committed if a later one fails.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		srcSpec, err := connectionSpec("source", "to copy from")
		if err != nil {
			return err
		}
		dstSpec, err := connectionSpec("dest", "to copy to")
		if err != nil {
			return err
		}

		src, srcName, err := openBackend(srcSpec)
		if err != nil {
			return err
		}
		defer src.Close()
		dst, dstName, err := openBackend(dstSpec)
		if err != nil {
			return err
		}
		defer dst.Close()

		fmt.Printf("Copying %s -> %s\n", srcName, dstName)

		tables := copyTables
		if len(tables) == 0 {
			tables, err = src.Tables()
			if err != nil {
				return err
			}
		}
		if len(tables) == 0 {
			return fmt.Errorf("source has no tables to copy")
		}

		start := time.Now()
		uiprogress.Start()
		bar := uiprogress.AddBar(100).AppendCompleted().PrependElapsed()
		bar.PrependFunc(func(b *uiprogress.Bar) string {
			return "Copying: "
		})

		results, err := engine.Copy(src, dst, tables, copyIgnore, func() {
			bar.Incr()
		})
		uiprogress.Stop()

		total := 0
		fmt.Println("\nSummary:")
		for i, r := range results {
			icon := "✓"
			if r.Status != "OK" {
				icon = "!"
			}
			fmt.Printf("[%s] [%02d/%02d] %-20s : %d rows - %s\n",
				icon, i+1, len(tables), r.TableName, r.Rows, r.Status)
			if r.ErrorMsg != "" {
				fmt.Printf("    └ Error: %s\n", r.ErrorMsg)
			}
			total += r.Rows
		}
		fmt.Printf("Total rows: %d\n", total)
		log.Printf("Copy done in %s", time.Since(start))
		return err
	},
}

func init() {
	RootCmd.AddCommand(copyCmd)

	copyCmd.Flags().StringSliceVarP(&copyTables, "tables", "t", []string{}, "Specific tables to copy (comma-separated, default all)")
	copyCmd.Flags().BoolVar(&copyIgnore, "ignore-duplicates", false, "Silently skip rows violating uniqueness constraints where the dialect supports it")
}
