package cli

import (
	"encoding/json"
	"fmt"
	"os"
	"text/tabwriter"

	"github.com/cloo-solutions/askd/internal/config"
	"github.com/cloo-solutions/askd/internal/llm"
	"github.com/spf13/cobra"
)

// ProvidersCmd returns the providers command
func ProvidersCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "providers",
		Short: "List the configured generation providers",
		RunE:  runProviders,
	}

	cmd.Flags().Bool("json", false, "Output as JSON")

	return cmd
}

func runProviders(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	router := llm.NewRouter(llm.Config{
		OpenAIAPIKey:  cfg.OpenAIAPIKey,
		GroqAPIKey:    cfg.GroqAPIKey,
		OllamaBaseURL: cfg.OllamaBaseURL,
	})

	providers := router.Providers()

	asJSON, _ := cmd.Flags().GetBool("json")
	if asJSON {
		return json.NewEncoder(os.Stdout).Encode(providers)
	}

	w := tabwriter.NewWriter(os.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(w, "KEY\tLABEL\tDEFAULT MODEL")
	for _, p := range providers {
		fmt.Fprintf(w, "%s\t%s\t%s\n", p.Key, p.Label, p.DefaultModel)
	}
	return w.Flush()
}
