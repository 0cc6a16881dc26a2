package main

import (
	"fmt"
	"os"
	"strings"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/amishk599/jobfit/internal/model"
	"github.com/amishk599/jobfit/internal/session"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Show or change settings",
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		a, err := newCLIApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()

		data, err := a.store.GetUserData(cmd.Context())
		if err != nil {
			return err
		}
		w := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
		fmt.Fprintf(w, "API key\t%s\n", maskKey(data.GoogleAPIKey))
		fmt.Fprintf(w, "Model\t%s\n", data.ModelName)
		fmt.Fprintf(w, "Fallback model\t%s\n", data.FallbackModelName)
		fmt.Fprintf(w, "Theme\t%s\n", data.Theme)
		fmt.Fprintf(w, "Private data logging\t%t\n", data.PrivateDataLogging)
		fmt.Fprintf(w, "Résumé file\t%s\n", orNone(data.ResumeFileName))
		fmt.Fprintf(w, "Résumés downloaded\t%d\n", data.ResumesDownloaded)
		fmt.Fprintf(w, "Cached jobs\t%d\n", data.JobPostingCache.Len())
		return w.Flush()
	},
}

var settingsSetCmd = &cobra.Command{
	Use:   "set",
	Short: "Change settings; only the flags given are updated",
	Args:  cobra.NoArgs,
	RunE:  runSettingsSet,
}

func init() {
	f := settingsSetCmd.Flags()
	f.String("api-key", "", "Gemini API key")
	f.String("model", "", "preferred model")
	f.String("fallback-model", "", "model used when the preferred one is rate limited")
	f.String("theme", "", "résumé theme ("+strings.Join(model.Themes, ", ")+")")
	f.Bool("private-logging", false, "allow the server to log private data")
	f.String("resume-json", "", "file holding replacement résumé JSON")
	settingsCmd.AddCommand(settingsShowCmd, settingsSetCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	f := cmd.Flags()
	var in session.Settings
	str := func(name string) *string {
		if !f.Changed(name) {
			return nil
		}
		v, _ := f.GetString(name)
		return &v
	}
	in.APIKey = str("api-key")
	in.ModelName = str("model")
	in.FallbackModelName = str("fallback-model")
	in.Theme = str("theme")
	if f.Changed("private-logging") {
		v, _ := f.GetBool("private-logging")
		in.PrivateDataLogging = &v
	}
	if path := str("resume-json"); path != nil {
		raw, err := os.ReadFile(*path)
		if err != nil {
			return fmt.Errorf("reading résumé JSON: %w", err)
		}
		s := string(raw)
		in.ResumeJSON = &s
	}

	a, err := newCLIApp(cmd)
	if err != nil {
		return err
	}
	defer a.Close()

	if err := a.sess.SaveSettings(cmd.Context(), in); err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), "Settings saved.")
	return nil
}

func maskKey(k string) string {
	if k == "" {
		return "(not set)"
	}
	if len(k) <= 4 {
		return "****"
	}
	return strings.Repeat("*", len(k)-4) + k[len(k)-4:]
}

func orNone(s string) string {
	if s == "" {
		return "(none)"
	}
	return s
}
