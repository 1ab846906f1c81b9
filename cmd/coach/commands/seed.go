package commands

import (
	"context"
	"fmt"

	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/liftlab/coach-engine/internal/ingest"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed knowledge entries from the workout catalog",
	Long: `Derives one knowledge entry per workout template (description plus
coaching notes) so the chat path can answer questions about the catalog.
Existing entries with the same title are updated in place.`,
	RunE: runSeed,
}

func init() {
	rootCmd.AddCommand(seedCmd)
}

func runSeed(cmd *cobra.Command, args []string) error {
	eng, _, err := buildEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	ingestor := ingest.NewIngestor(eng.Knowledge, eng.Completer, eng.Logger)

	written, err := ingestor.SeedFromCatalog(context.Background(), eng.Recommender.Templates())
	if err != nil {
		return fmt.Errorf("seed catalog: %w", err)
	}

	color.Green("Seeded %d knowledge entries from the workout catalog", written)
	return nil
}
