package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/speakset/internal/state"
	"github.com/spf13/cobra"
)

var stateCmd = &cobra.Command{
	Use:   "state",
	Short: "Inspect or reset saved progress",
}

var stateListCmd = &cobra.Command{
	Use:   "list",
	Short: "List sets with saved progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		infos, err := st.StateRepo().List(cmd.Context())
		if err != nil {
			return err
		}

		fmt.Printf("%-30s  %-10s  %s\n", "Content", "View", "Updated")
		fmt.Println(strings.Repeat("─", 64))
		for _, info := range infos {
			fmt.Printf("%-30s  %-10s  %s\n",
				info.ContentID, info.ViewState, info.UpdatedAt.Format("2006-01-02 15:04:05"))
		}
		fmt.Printf("\n%d saved\n", len(infos))
		return nil
	},
}

var stateShowCmd = &cobra.Command{
	Use:   "show CONTENT_ID",
	Short: "Print the saved state of a set as JSON",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		saved, err := st.StateRepo().Load(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		if saved == nil {
			return fmt.Errorf("no saved state for %q", args[0])
		}

		data, err := state.Encode(*saved.State)
		if err != nil {
			return err
		}
		var pretty any
		if err := json.Unmarshal(data, &pretty); err != nil {
			return err
		}
		out, err := json.MarshalIndent(pretty, "", "  ")
		if err != nil {
			return err
		}
		fmt.Println(string(out))
		return nil
	},
}

var stateResetCmd = &cobra.Command{
	Use:   "reset [CONTENT_ID...]",
	Short: "Delete saved progress",
	RunE: func(cmd *cobra.Command, args []string) error {
		all, _ := cmd.Flags().GetBool("all")
		switch {
		case all && len(args) > 0:
			return fmt.Errorf("use --all or content IDs, not both")
		case !all && len(args) == 0:
			return fmt.Errorf("name at least one content ID, or pass --all")
		}

		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()
		repo := st.StateRepo()

		ids := args
		if all {
			infos, err := repo.List(cmd.Context())
			if err != nil {
				return err
			}
			for _, info := range infos {
				ids = append(ids, info.ContentID)
			}
		}

		for _, id := range ids {
			deleted, err := repo.Delete(cmd.Context(), id)
			if err != nil {
				return err
			}
			if deleted {
				fmt.Println("reset", id)
			} else {
				fmt.Println("nothing saved for", id)
			}
		}
		return nil
	},
}

func init() {
	stateResetCmd.Flags().Bool("all", false, "Reset every set")

	stateCmd.AddCommand(stateListCmd)
	stateCmd.AddCommand(stateShowCmd)
	stateCmd.AddCommand(stateResetCmd)
}
