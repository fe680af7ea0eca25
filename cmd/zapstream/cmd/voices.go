package cmd

import (
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/rolznz/zap.stream/internal/speech"
)

var voicesDir string

// voicesCmd represents the voices command
var voicesCmd = &cobra.Command{
	Use:   "voices",
	Short: "List the installed text-to-speech voices",
	RunE: func(cmd *cobra.Command, args []string) error {
		library := speech.NewLibrary(afero.NewOsFs(), voicesDir)

		voices := library.Voices()
		if len(voices) == 0 {
			fmt.Printf("No voices installed in %s\n", voicesDir)
			return nil
		}

		w := tabwriter.NewWriter(os.Stdout, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "URI\tNAME")
		for _, v := range voices {
			fmt.Fprintf(w, "%s\t%s\n", v.URI, v.Name)
		}
		return w.Flush()
	},
}

func init() {
	rootCmd.AddCommand(voicesCmd)

	voicesCmd.Flags().StringVar(&voicesDir, "dir", "voices", "Directory holding voice models")
}
