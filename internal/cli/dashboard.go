package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var (
	dashboardAddr        string
	dashboardAllowRemote bool
)

var dashboardCmd = &cobra.Command{
	Use:   "dashboard",
	Short: "Serve the read-only web dashboard",
	Long: `Serve a local web view of the task board, the retrospective ledger, and
the event timeline.

The server binds to loopback by default and refuses other addresses unless
--allow-remote is given, because it carries no authentication.`,
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		if Dashboard == nil {
			return fmt.Errorf("dashboard not initialized")
		}
		fmt.Printf("Serving dashboard on http://%s\n", dashboardAddr)
		return Dashboard.ListenAndServe(dashboardAddr, dashboardAllowRemote)
	},
}

func init() {
	dashboardCmd.Flags().StringVar(&dashboardAddr, "addr", "127.0.0.1:7353", "Listen address")
	dashboardCmd.Flags().BoolVar(&dashboardAllowRemote, "allow-remote", false, "Allow binding to non-loopback addresses")
	rootCmd.AddCommand(dashboardCmd)
}
