package commands

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/briandowns/spinner"
	"github.com/fatih/color"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/liftlab/coach-engine/internal/ingest"
)

var (
	ingestTags      string
	ingestSummarize bool
	ingestAutoTag   bool
)

var ingestCmd = &cobra.Command{
	Use:   "ingest",
	Short: "Ingest knowledge content into the store",
}

var ingestFilesCmd = &cobra.Command{
	Use:   "files <path> [path...]",
	Short: "Ingest local text or markdown files",
	Long: `Reads each file (or every .txt and .md file under a directory) and
upserts it as a knowledge entry titled after the file name. With --summarize
the content is condensed through the configured model first.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngestFiles,
}

var ingestLinksCmd = &cobra.Command{
	Use:   "links <url> [url...]",
	Short: "Scrape web articles into the knowledge store",
	Long: `Fetches each URL, extracts the article title and paragraph text, and
upserts the result as a knowledge entry with the URL recorded as its source.`,
	Args: cobra.MinimumNArgs(1),
	RunE: runIngestLinks,
}

func init() {
	ingestCmd.PersistentFlags().StringVarP(&ingestTags, "tags", "t", "", "comma-separated tags applied to every entry")
	ingestCmd.PersistentFlags().BoolVarP(&ingestSummarize, "summarize", "s", false, "summarize content through the model before storing")
	ingestCmd.PersistentFlags().BoolVar(&ingestAutoTag, "auto-tag", false, "derive tags from content keywords")

	ingestCmd.AddCommand(ingestFilesCmd)
	ingestCmd.AddCommand(ingestLinksCmd)
	rootCmd.AddCommand(ingestCmd)
}

func runIngestFiles(cmd *cobra.Command, args []string) error {
	files, err := collectFiles(args)
	if err != nil {
		return err
	}
	if len(files) == 0 {
		color.Yellow("No ingestable files found")
		return nil
	}

	eng, _, err := buildEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	ingestor := ingest.NewIngestor(eng.Knowledge, eng.Completer, eng.Logger)
	opts := ingest.Options{
		Tags:      ingestTags,
		Summarize: ingestSummarize,
		AutoTag:   ingestAutoTag,
	}

	bar := progressbar.NewOptions(len(files),
		progressbar.OptionSetDescription("Ingesting files"),
		progressbar.OptionSetWriter(os.Stderr),
		progressbar.OptionShowCount(),
		progressbar.OptionClearOnFinish(),
	)

	ctx := context.Background()
	written, skipped, failed := 0, 0, 0
	for _, path := range files {
		ok, err := ingestor.IngestFile(ctx, path, opts)
		switch {
		case err != nil:
			failed++
			color.Red("  %s: %v", path, err)
		case ok:
			written++
		default:
			skipped++
		}
		_ = bar.Add(1)
	}
	_ = bar.Finish()

	color.Green("Ingested %d file(s)", written)
	if skipped > 0 {
		color.Yellow("Skipped %d empty file(s)", skipped)
	}
	if failed > 0 {
		return fmt.Errorf("%d file(s) failed to ingest", failed)
	}
	return nil
}

func runIngestLinks(cmd *cobra.Command, args []string) error {
	eng, _, err := buildEngine()
	if err != nil {
		return err
	}
	defer eng.Close()

	ingestor := ingest.NewIngestor(eng.Knowledge, eng.Completer, eng.Logger)
	scraper := ingest.NewScraper(20 * time.Second)

	ctx := context.Background()
	written, failed := 0, 0
	for _, url := range args {
		spin := spinner.New(spinner.CharSets[14], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		spin.Suffix = fmt.Sprintf(" fetching %s", url)
		spin.Start()

		article, err := scraper.Fetch(ctx, url)
		if err != nil {
			spin.Stop()
			failed++
			color.Red("  %s: %v", url, err)
			continue
		}

		if ingestSummarize {
			spin.Suffix = fmt.Sprintf(" summarizing %s", article.Title)
		}
		ok, err := ingestor.IngestText(ctx, article.Title, article.Text, ingest.Options{
			Tags:      ingestTags,
			SourceURL: url,
			Summarize: ingestSummarize,
			AutoTag:   ingestAutoTag,
		})
		spin.Stop()

		switch {
		case err != nil:
			failed++
			color.Red("  %s: %v", url, err)
		case ok:
			written++
			color.Green("  %s", article.Title)
		}
	}

	color.Green("Ingested %d article(s)", written)
	if failed > 0 {
		return fmt.Errorf("%d link(s) failed to ingest", failed)
	}
	return nil
}

// collectFiles expands directory arguments into their .txt and .md files.
func collectFiles(args []string) ([]string, error) {
	var files []string
	for _, arg := range args {
		info, err := os.Stat(arg)
		if err != nil {
			return nil, fmt.Errorf("stat %s: %w", arg, err)
		}
		if !info.IsDir() {
			files = append(files, arg)
			continue
		}
		err = filepath.WalkDir(arg, func(path string, d os.DirEntry, err error) error {
			if err != nil {
				return err
			}
			if d.IsDir() {
				return nil
			}
			switch filepath.Ext(path) {
			case ".txt", ".md":
				files = append(files, path)
			}
			return nil
		})
		if err != nil {
			return nil, fmt.Errorf("walk %s: %w", arg, err)
		}
	}
	return files, nil
}
