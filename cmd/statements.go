package cmd

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/abhisek/speakset/internal/store"
	"github.com/spf13/cobra"
)

var statementsCmd = &cobra.Command{
	Use:   "statements",
	Short: "List recorded analytics statements",
	RunE: func(cmd *cobra.Command, args []string) error {
		contentID, _ := cmd.Flags().GetString("content-id")
		limit, _ := cmd.Flags().GetInt("limit")
		asJSON, _ := cmd.Flags().GetBool("json")

		st, _, _, err := openStore(cmd)
		if err != nil {
			return err
		}
		defer st.Close()

		stmts, err := st.StatementRepo().List(cmd.Context(), store.QueryOpts{
			ContentID: contentID,
			Limit:     limit,
		})
		if err != nil {
			return err
		}

		if asJSON {
			enc := json.NewEncoder(cmd.OutOrStdout())
			for _, s := range stmts {
				if err := enc.Encode(s.Data.Statement); err != nil {
					return err
				}
			}
			return nil
		}

		fmt.Printf("%6s  %-19s  %-20s  %-9s  %7s  %s\n",
			"Seq", "Emitted", "Content", "Type", "Score", "Object")
		fmt.Println(strings.Repeat("─", 100))
		for _, s := range stmts {
			score := "-"
			if s.ScoreRaw != nil && s.ScoreMax != nil {
				score = fmt.Sprintf("%g/%g", *s.ScoreRaw, *s.ScoreMax)
			}
			fmt.Printf("%6d  %-19s  %-20s  %-9s  %7s  %s\n",
				s.Sequence, s.EmittedAt.Format("2006-01-02 15:04:05"),
				s.ContentID, s.InteractionType, score, s.ObjectID)
		}
		fmt.Printf("\n%d statements\n", len(stmts))
		return nil
	},
}

func init() {
	statementsCmd.Flags().String("content-id", "", "Only statements of this set")
	statementsCmd.Flags().Int("limit", 0, "Most recent N statements (0 = all)")
	statementsCmd.Flags().Bool("json", false, "Print statements as JSON lines")
}
