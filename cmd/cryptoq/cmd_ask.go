package main

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"crypto-query-lab/internal/server"
)

var askJSON bool

// askCmd answers one query and exits.
var askCmd = &cobra.Command{
	Use:   "ask <query>",
	Short: "Answer one query and exit",
	Example: `  cryptoq ask "What's the SOL price?"
  cryptoq ask "How many tokens reached over $19,000 mcap on pumpfun in the last hour?" --json`,
	Args: cobra.MinimumNArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askJSON, "json", false, "print the full result as JSON")
}

func runAsk(cmd *cobra.Command, args []string) error {
	a, err := newApp(cmd.Context(), nil)
	if err != nil {
		return err
	}
	defer a.close()
	// Keep stdout for the answer.
	a.logger.SetOutput(cmd.ErrOrStderr())

	result, err := a.engine.HandleQuery(cmd.Context(), strings.Join(args, " "))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	if askJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(server.NewQueryResponse(result))
	}

	fmt.Fprintln(out, result.Answer)
	fmt.Fprintf(out, "\n[%s | %d records | providers: %s | intent: %s | answer: %s | %dms]\n",
		result.Intent.Category, result.Metadata.TotalCount, strings.Join(result.Metadata.Providers, ", "),
		result.Metadata.IntentPath, result.Metadata.SynthesisTier, result.ElapsedMillis())
	return nil
}
