package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/unpackhq/unpack/internal/server/handlers"
)

var extended bool

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Long:  "Print version information. Use --extended for full details including Crucible and Go versions.",
	RunE: func(cmd *cobra.Command, args []string) error {
		identity := GetAppIdentity()
		handlers.SetAppIdentity(identity)
		out := cmd.OutOrStdout()

		if !extended {
			_, err := fmt.Fprintf(out, "%s %s\n", identity.BinaryName, versionInfo.Version)
			return err
		}

		info := handlers.CurrentVersion()
		_, _ = fmt.Fprintf(out, "%s %s\n", identity.BinaryName, versionInfo.Version)
		_, _ = fmt.Fprintf(out, "Commit: %s\n", versionInfo.Commit)
		_, _ = fmt.Fprintf(out, "Built: %s\n", versionInfo.BuildDate)
		_, _ = fmt.Fprintf(out, "Go: %s (%s)\n", info.App.GoVersion, info.Runtime.Platform)
		_, _ = fmt.Fprintf(out, "\n")
		_, _ = fmt.Fprintf(out, "Gofulmen: %s\n", info.Dependencies.Gofulmen)
		_, err := fmt.Fprintf(out, "Crucible: %s\n", info.Dependencies.Crucible)
		return err
	},
}

func init() {
	rootCmd.AddCommand(versionCmd)
	versionCmd.Flags().BoolVarP(&extended, "extended", "e", false, "show extended version information")
}
