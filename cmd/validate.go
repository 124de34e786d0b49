package cmd

import (
	"fmt"
	"os"

	"github.com/abhisek/speakset/internal/content"
	"github.com/abhisek/speakset/internal/state"
	"github.com/spf13/cobra"
)

var validateCmd = &cobra.Command{
	Use:   "validate PATH...",
	Short: "Check content files, or saved state files with --state",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		asState, _ := cmd.Flags().GetBool("state")
		if asState {
			return validateStates(args)
		}

		contents, err := content.LoadAll(args)
		if err != nil {
			return err
		}
		for _, p := range contents {
			fmt.Printf("%-30s  %d questions  intro=%v\n",
				p.ID, len(p.Questions), p.Introduction.ShowIntroPage)
		}
		fmt.Printf("\n%d sets ok\n", len(contents))
		return nil
	},
}

func validateStates(paths []string) error {
	for _, path := range paths {
		data, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read state: %w", err)
		}
		ps, err := state.Decode(data)
		if err != nil {
			return fmt.Errorf("%s: %w", path, err)
		}
		fmt.Printf("%s  version=%s  view=%s  answered=%v  slide=%d\n",
			path, ps.Version, ps.SetViewState, ps.AnsweredSlides, ps.Sequence.CurrentSlide)
	}
	return nil
}

func init() {
	validateCmd.Flags().Bool("state", false, "Treat arguments as saved state JSON files")
}
