package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

// guessCmd estimates nutrition facts for a single photo.
var guessCmd = &cobra.Command{
	Use:   "guess [image]",
	Short: "Estimate nutrition facts for a food photo",
	Long: `Estimate nutrition facts for a single food photo.

The photo is run through the full cascade: barcode lookup, nutrition-label
OCR, reference-gallery matching and the color heuristic. The result is
printed as JSON with its provenance (which stage produced it).

Examples:
  platescan guess photo.jpg
  platescan guess photo.jpg --language de
  platescan guess photo.jpg --pretty`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg := GetConfig()

		language := cfg.Language
		if cmd.Flags().Changed("language") {
			language, _ = cmd.Flags().GetString("language")
		}
		pretty, _ := cmd.Flags().GetBool("pretty")

		imageBytes, err := os.ReadFile(args[0]) //nolint:gosec // G304: user-supplied photo path
		if err != nil {
			return fmt.Errorf("read image: %w", err)
		}

		p, cleanup, err := buildPipeline(cfg)
		if err != nil {
			return err
		}
		defer cleanup()

		result, err := p.Guess(cmd.Context(), imageBytes, language)
		if err != nil {
			return err
		}

		enc := json.NewEncoder(cmd.OutOrStdout())
		if pretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(result)
	},
}

func init() {
	guessCmd.Flags().Bool("pretty", false, "indent JSON output")
	rootCmd.AddCommand(guessCmd)
}
