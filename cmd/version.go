package cmd

import (
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"
	"github.com/zelena-gryadka/gryadka/internal/output"
	"github.com/zelena-gryadka/gryadka/internal/version"
)

var (
	versionShort  bool
	versionFormat string
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show build metadata for this binary",
	Long:  "Display the version, commit, build time and target architecture embedded in the binary.",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		info := version.Get()
		w := cmd.OutOrStdout()

		if versionShort {
			_, err := fmt.Fprintln(w, info.String())

			return err
		}

		if versionFormat == output.FormatJSON {
			return output.DisplayJSON(w, info)
		}

		fmt.Fprintf(w, "Version:      %s\n", info.Version)
		fmt.Fprintf(w, "Commit:       %s\n", info.Commit)

		if built, err := time.Parse(time.RFC3339, info.BuildDate); err == nil {
			fmt.Fprintf(w, "Built:        %s (%s)\n", info.BuildDate, humanize.Time(built))
		} else {
			fmt.Fprintf(w, "Built:        %s\n", info.BuildDate)
		}

		fmt.Fprintf(w, "Architecture: %s\n", info.BuildArch)
		fmt.Fprintf(w, "Go Version:   %s\n", info.GoVersion)

		return nil
	},
}

func init() {
	versionCmd.Flags().BoolVar(&versionShort, "short", false, "Print a single line")
	versionCmd.Flags().StringVarP(&versionFormat, "output", "o", output.FormatText, "Output format: text, json")

	rootCmd.AddCommand(versionCmd)
}
