package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"
)

var jobsCmd = &cobra.Command{
	Use:   "jobs",
	Short: "List analyzed jobs",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCLIApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		jobs, err := a.sess.Jobs(cmd.Context())
		if err != nil {
			return err
		}
		out := cmd.OutOrStdout()
		if len(jobs) == 0 {
			fmt.Fprintln(out, "No analyzed jobs yet.")
			return nil
		}
		w := tabwriter.NewWriter(out, 0, 0, 2, ' ', 0)
		fmt.Fprintln(w, "JOB\tCOVER LETTER\tRÉSUMÉ")
		for _, j := range jobs {
			fmt.Fprintf(w, "%s\t%s\t%s\n", j.ID, yesNo(j.HasCoverLetter), yesNo(j.HasResume))
		}
		return w.Flush()
	},
}

var resetCmd = &cobra.Command{
	Use:   "reset",
	Short: "Clear every cached job",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCLIApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.sess.ResetJobs(cmd.Context()); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Job cache cleared.")
		return nil
	},
}

var queryCmd = &cobra.Command{
	Use:   "query",
	Short: "Generate a LinkedIn search query from your résumé",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCLIApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		q, err := a.sess.GenerateSearchQuery(cmd.Context())
		if err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), q)
		return nil
	},
}

func init() {
	rootCmd.AddCommand(jobsCmd, resetCmd, queryCmd)
}

func yesNo(b bool) string {
	if b {
		return "yes"
	}
	return "-"
}
