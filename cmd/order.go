package cmd

import (
	"os"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"conductor/internal/app"
	"conductor/internal/config"
	"conductor/internal/dependency"
)

var orderConfigPath string

// orderCmd prints the start order of one service.
var orderCmd = &cobra.Command{
	Use:   "order <service>",
	Short: "Print the start order of a service",
	Long: `Resolve the transitive needs of the given service and print them in
the order the coordinator would start them.

Examples:
  conductor order loop`,
	Args: cobra.ExactArgs(1),
	RunE: runOrder,
}

func init() {
	orderCmd.Flags().StringVar(&orderConfigPath, "config-path", "conductor.yaml", "Path to the configuration file")
	rootCmd.AddCommand(orderCmd)
}

func runOrder(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(orderConfigPath)
	if err != nil {
		return err
	}

	catalog := app.NewCatalog(cfg)
	s, err := catalog.Spec(args[0])
	if err != nil {
		return err
	}

	order, err := dependency.Dependencies(s)
	if err != nil {
		return err
	}

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"#", "Service", "Restart"})
	for i, o := range order {
		t.AppendRow(table.Row{i + 1, o.ID, string(o.Restart)})
	}
	t.Render()
	return nil
}
