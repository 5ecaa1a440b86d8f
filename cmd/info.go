package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/JPM1118/diapo/internal/deck"
	"github.com/spf13/cobra"
)

var infoCmd = &cobra.Command{
	Use:   "info <deck.md>",
	Short: "Print the slides of a deck (non-interactive)",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		d, err := deck.Load(args[0])
		if err != nil {
			return err
		}

		fmt.Printf("%s (%d slides)\n", d.Title, d.Len())
		if d.Author != "" {
			fmt.Printf("by %s\n", d.Author)
		}
		fmt.Println()

		w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
		fmt.Fprintln(w, "#\tTITLE\tNOTES")
		fmt.Fprintln(w, "─\t─────\t─────")
		for _, s := range d.Slides {
			notes := "-"
			if s.Notes != "" {
				notes = "yes"
			}
			fmt.Fprintf(w, "%d\t%s\t%s\n", s.Number, s.Title, notes)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(infoCmd)
}
