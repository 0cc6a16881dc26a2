package main

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfit/internal/session"
)

var (
	feedback string
	save     bool
)

var analyzeCmd = &cobra.Command{
	Use:   "analyze [file|-]",
	Short: "Analyze a job posting read from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE:  runAnalyze,
}

var coverCmd = &cobra.Command{
	Use:   "cover <job-id>",
	Short: "Draft a cover letter for an analyzed job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJobOp(cmd, args[0], (*session.Session).GenerateCoverLetter)
	},
}

var tailorCmd = &cobra.Command{
	Use:   "tailor <job-id>",
	Short: "Tailor your résumé for an analyzed job",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runJobOp(cmd, args[0], (*session.Session).TailorResume)
	},
}

func init() {
	for _, c := range []*cobra.Command{analyzeCmd, coverCmd, tailorCmd} {
		c.Flags().StringVarP(&feedback, "feedback", "f", "", "regenerate with this feedback")
	}
	for _, c := range []*cobra.Command{coverCmd, tailorCmd} {
		c.Flags().BoolVarP(&save, "save", "s", false, "write the document to the output directory")
	}
	rootCmd.AddCommand(analyzeCmd, coverCmd, tailorCmd)
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	var (
		text []byte
		err  error
	)
	if len(args) == 0 || args[0] == "-" {
		text, err = io.ReadAll(cmd.InOrStdin())
	} else {
		text, err = os.ReadFile(args[0])
	}
	if err != nil {
		return fmt.Errorf("reading job posting: %w", err)
	}

	a, err := newCLIApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	err = a.sess.Analyze(ctx, string(text))
	if err == nil && feedback != "" {
		err = a.sess.Retry(ctx, feedback)
	}
	printView(cmd.OutOrStdout(), a.sess.View())
	return err
}

// runJobOp shows or generates a document for jobID. With --feedback the
// document is regenerated once more using the feedback.
func runJobOp(cmd *cobra.Command, jobID string, op func(*session.Session, context.Context, string) error) error {
	a, err := newCLIApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	ctx := cmd.Context()
	err = op(a.sess, ctx, jobID)
	if err == nil && feedback != "" {
		err = a.sess.Retry(ctx, feedback)
	}
	out := cmd.OutOrStdout()
	printView(out, a.sess.View())
	if err != nil {
		return err
	}

	if save {
		path, err := a.sess.Download(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "Saved %s\n", path)
	}
	return nil
}
