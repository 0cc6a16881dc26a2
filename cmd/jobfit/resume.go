package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
)

var details string

var resumeCmd = &cobra.Command{
	Use:   "resume",
	Short: "Manage your résumé",
}

var resumeImportCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Import a PDF or TXT résumé",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		content, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("reading résumé: %w", err)
		}

		a, err := newCLIApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.sess.ImportResume(cmd.Context(), filepath.Base(args[0]), content, details); err != nil {
			return err
		}
		printView(cmd.OutOrStdout(), a.sess.View())
		return nil
	},
}

var resumeDetailsCmd = &cobra.Command{
	Use:   "details <text>",
	Short: "Set additional details sent along with your résumé",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCLIApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		if err := a.sess.UpdateAdditionalDetails(cmd.Context(), args[0]); err != nil {
			return err
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Additional details saved; cached jobs were cleared.")
		return nil
	},
}

func init() {
	resumeImportCmd.Flags().StringVar(&details, "details", "", "additional details to merge into the parsed résumé")
	resumeCmd.AddCommand(resumeImportCmd, resumeDetailsCmd)
	rootCmd.AddCommand(resumeCmd)
}
