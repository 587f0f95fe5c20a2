package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"
)

var providersCmd = &cobra.Command{
	Use:   "providers",
	Short: "List configured providers and their models",
	RunE: func(cmd *cobra.Command, args []string) error {
		g, err := newGlean()
		if err != nil {
			logError("%v", err)
			return err
		}

		for _, name := range g.Providers() {
			models, err := g.Models(name)
			if err != nil {
				return err
			}
			if len(models) == 0 {
				fmt.Println(name)
				continue
			}
			fmt.Printf("%s: %s\n", name, strings.Join(models, ", "))
		}
		return nil
	},
}

func init() {
	rootCmd.AddCommand(providersCmd)
}
