package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/teranos/sapfpad/display"
	"github.com/teranos/sapfpad/errors"
	"github.com/teranos/sapfpad/version"
)

// VersionCmd represents the version command
var VersionCmd = &cobra.Command{
	Use:   "version",
	Short: "Show sapfpad version information",
	Long:  `Display version, build time, commit hash, and platform information for the sapfpad binary.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		jsonOutput, _ := cmd.Flags().GetBool("json")
		w := cmd.OutOrStdout()

		info := version.Get()

		if jsonOutput {
			output, err := display.MarshalJSON(info)
			if err != nil {
				return errors.Wrap(err, "failed to format version as JSON")
			}
			fmt.Fprintln(w, string(output))
			return nil
		}

		fmt.Fprintln(w, info.String())
		fmt.Fprintf(w, "Platform: %s\n", info.Platform)
		fmt.Fprintf(w, "Go: %s\n", info.GoVersion)
		return nil
	},
}

func init() {
	VersionCmd.Flags().BoolP("json", "j", false, "Output version info as JSON")
}
