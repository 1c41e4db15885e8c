package main

import (
	"encoding/json"
	"fmt"
	"os"

	"datastory/adapters/ingest"
	"datastory/adapters/llm"
	"datastory/app"
	"datastory/domain/story"
	"datastory/internal/analysis"
	"datastory/internal/config"
	"datastory/internal/render"
	"datastory/internal/testkit"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

func main() {
	// Best effort; env vars win over .env
	_ = godotenv.Load()

	rootCmd := &cobra.Command{
		Use:   "datastory",
		Short: "Turn a CSV or XLSX file into statistical insights and a narrated data story",
	}

	rootCmd.AddCommand(
		newInsightsCmd(),
		newStoryCmd(),
		newSampleCmd(),
	)

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newInsightsCmd() *cobra.Command {
	var asJSON bool

	cmd := &cobra.Command{
		Use:   "insights <file>",
		Short: "Extract trends, outliers and correlations without calling the model",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			loaderCfg := ingest.DefaultLoaderConfig()
			extractorCfg := analysis.DefaultConfig()
			service := app.NewStoryService(nil, loaderCfg, extractorCfg)

			summary, err := service.ExtractInsights(cmd.Context(), raw)
			if err != nil {
				return err
			}

			if asJSON {
				out, err := json.MarshalIndent(summary, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
				return nil
			}

			fmt.Printf("Trends: %d\n", len(summary.Trends))
			for _, t := range summary.Trends {
				fmt.Printf("  %s: %s vs %s (magnitude %.2f)\n", t.Column, t.Direction, t.Ordering, t.Magnitude)
			}
			fmt.Printf("Outliers: %d\n", len(summary.Outliers))
			for _, o := range summary.Outliers {
				fmt.Printf("  row %d, %s = %s (z=%.2f)\n", o.Row, o.Column, render.FormatNumber(o.Value), o.Deviation)
			}
			fmt.Printf("Correlations: %d\n", len(summary.Correlations))
			for _, c := range summary.Correlations {
				fmt.Printf("  %s ~ %s: r=%.3f (%s)\n", c.ColumnX, c.ColumnY, c.Coefficient, c.Strength)
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&asJSON, "json", false, "emit the insight summary as JSON")
	return cmd
}

func newStoryCmd() *cobra.Command {
	var audience, length, format string
	var focuses []string

	cmd := &cobra.Command{
		Use:   "story <file>",
		Short: "Generate a narrated data story for the chosen audience",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			raw, err := os.ReadFile(args[0])
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", args[0], err)
			}

			cfg, err := config.Load()
			if err != nil {
				return err
			}

			storyConfig := story.Config{
				Audience: story.Audience(audience),
				Length:   story.Length(length),
			}
			for _, f := range focuses {
				storyConfig.FocusAreas = append(storyConfig.FocusAreas, story.Focus(f))
			}

			narrator := llm.NewNarrator(cfg.AI)
			service := app.NewStoryService(narrator, cfg.Ingest, cfg.Analysis)

			narrative, err := service.GenerateStory(cmd.Context(), raw, storyConfig)
			if err != nil {
				return err
			}

			switch format {
			case "html":
				fmt.Println(render.HTML(narrative))
			case "json":
				out, err := json.MarshalIndent(narrative, "", "  ")
				if err != nil {
					return err
				}
				fmt.Println(string(out))
			default:
				fmt.Println(render.Markdown(narrative))
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&audience, "audience", string(story.AudienceGeneral), "executive, marketing, technical, or general")
	cmd.Flags().StringSliceVar(&focuses, "focus", nil, "focus areas: trend, outlier, correlation, action")
	cmd.Flags().StringVar(&length, "length", string(story.LengthMedium), "short, medium, or long")
	cmd.Flags().StringVar(&format, "format", "markdown", "output format: markdown, html, or json")
	return cmd
}

func newSampleCmd() *cobra.Command {
	var rows int
	var seed int64
	var kind string

	cmd := &cobra.Command{
		Use:   "sample",
		Short: "Emit a deterministic sample dataset to stdout",
		RunE: func(cmd *cobra.Command, args []string) error {
			switch kind {
			case "sales":
				os.Stdout.Write(testkit.SalesCSV(rows, seed))
			case "marketing":
				os.Stdout.Write(testkit.MarketingCSV(rows, seed))
			default:
				return fmt.Errorf("unknown sample kind %q (valid: sales, marketing)", kind)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&kind, "kind", "sales", "sample dataset: sales or marketing")
	cmd.Flags().IntVar(&rows, "rows", 120, "number of data rows")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	return cmd
}
