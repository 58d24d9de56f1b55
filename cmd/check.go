package cmd

import (
	"os"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"

	"conductor/internal/app"
	"conductor/internal/config"
	"conductor/internal/dependency"
)

var checkConfigPath string

// checkCmd validates the configuration and resolves every declared
// service, surfacing dangling needs and dependency cycles before anything
// is started.
var checkCmd = &cobra.Command{
	Use:   "check",
	Short: "Validate the configuration",
	Long: `Validate the configuration file and resolve the dependency graph of
every declared service. Cycles and dangling needs are reported without
starting anything.

Examples:
  conductor check
  conductor check --config-path /etc/conductor/conductor.yaml`,
	RunE: runCheck,
}

func init() {
	checkCmd.Flags().StringVar(&checkConfigPath, "config-path", "conductor.yaml", "Path to the configuration file")
	rootCmd.AddCommand(checkCmd)
}

func runCheck(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load(checkConfigPath)
	if err != nil {
		return err
	}

	catalog := app.NewCatalog(cfg)

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Service", "Restart", "Needs", "Start Order"})

	var firstErr error
	for _, svc := range cfg.Services {
		s, err := catalog.Spec(svc.ID)
		if err != nil {
			return err
		}
		orderCell := ""
		if order, err := dependency.Dependencies(s); err != nil {
			orderCell = err.Error()
			if firstErr == nil {
				firstErr = err
			}
		} else {
			ids := make([]string, len(order))
			for i, o := range order {
				ids[i] = o.ID
			}
			orderCell = strings.Join(ids, " -> ")
		}
		t.AppendRow(table.Row{svc.ID, svc.Restart, strings.Join(svc.Needs, ", "), orderCell})
	}
	t.Render()
	return firstErr
}
