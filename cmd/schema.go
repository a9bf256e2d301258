package cmd

import (
	"fmt"
	"log"
	"strings"

	"github.com/spf13/cobra"

	"db-bridge/internal/schema"
)

var schemaCmd = &cobra.Command{
	Use:   "schema",
	Short: "Print the normalized schema of the source database",
	RunE: func(cmd *cobra.Command, args []string) error {
		spec, err := connectionSpec("source", "to introspect")
		if err != nil {
			return err
		}
		be, name, err := openBackend(spec)
		if err != nil {
			return err
		}
		defer be.Close()

		log.Printf("Analyzing %s schema...", name)
		tables, err := schema.Describe(be)
		if err != nil {
			return err
		}

		for _, t := range tables {
			fmt.Printf("table %s\n", t.Name)
			for _, c := range t.Columns {
				attrs := []string{c.Type}
				if c.NotNull {
					attrs = append(attrs, "not null")
				}
				if c.Default != nil {
					attrs = append(attrs, fmt.Sprintf("default %v", c.Default))
				}
				if c.PrimaryKeySeq > 0 {
					attrs = append(attrs, fmt.Sprintf("primary key #%d", c.PrimaryKeySeq))
				}
				fmt.Printf("    %-24s %s\n", c.Name, strings.Join(attrs, ", "))
			}
			pk, err := t.PrimaryKey()
			if err != nil {
				return fmt.Errorf("table %s: %w", t.Name, err)
			}
			if len(pk) > 1 {
				fmt.Printf("    primary key (%s)\n", strings.Join(pk, ", "))
			}
			for _, k := range t.Keys {
				kind := "key"
				if k.Unique {
					kind = "unique key"
				}
				fmt.Printf("    %s %s (%s)\n", kind, k.Name, strings.Join(k.Fields, ", "))
			}
			fmt.Println()
		}
		fmt.Printf("%d tables\n", len(tables))
		return nil
	},
}

func init() {
	RootCmd.AddCommand(schemaCmd)
}
