package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"time"

	"github.com/briandowns/spinner"
	"github.com/spf13/cobra"

	"catalog-scraper/internal/app"
	"catalog-scraper/internal/fetcher"
	"catalog-scraper/internal/observability"
	"catalog-scraper/internal/report"
	"catalog-scraper/internal/scraper"
	"catalog-scraper/internal/storage"
)

// NewCrawlCmd creates the crawl command.
func NewCrawlCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "crawl <url>",
		Short: "Crawl a category listing and print the items",
		Long: `Crawl visits the listing at <url> and the following pages, extracts
every item and writes the result as JSON or Markdown.

The site is detected from the URL unless --site is given. A URL that already
points at a page (".../page=3/" on Rozetka, "...?page=3" on Telemart) starts
the crawl at that page.

Examples:
  # First three pages of a Telemart category
  catalog-scraper crawl https://telemart.ua/ua/laptops/ --pages 3

  # Markdown report written to a file
  catalog-scraper crawl https://rozetka.com.ua/ua/notebooks/c80004/ -f markdown -o laptops.md

  # Crawl and store the items in the configured database
  catalog-scraper crawl https://telemart.ua/ua/monitors/?page=2 --store`,
		Args: cobra.ExactArgs(1),
		RunE: runCrawlCmd,
	}

	cmd.Flags().StringP("site", "s", "", "Site of the URL: rozetka or telemart")
	cmd.Flags().IntP("pages", "p", 0, "Number of listing pages to visit (default crawl.default_pages)")
	cmd.Flags().StringP("format", "f", report.FormatJSON, "Output format: json or markdown")
	cmd.Flags().StringP("output", "o", "", "Write the report to a file instead of stdout")
	cmd.Flags().Bool("store", false, "Save the items with the configured storage driver")
	cmd.Flags().Bool("progress", false, "Show a progress spinner on stderr")

	return cmd
}

func runCrawlCmd(cmd *cobra.Command, args []string) error {
	cfg, logger, err := setup(cmd)
	if err != nil {
		return err
	}
	defer func() {
		if err := logger.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "failed to close log: %v\n", err)
		}
	}()

	startURL := args[0]
	siteName, _ := cmd.Flags().GetString("site")
	pages, _ := cmd.Flags().GetInt("pages")
	format, _ := cmd.Flags().GetString("format")
	output, _ := cmd.Flags().GetString("output")
	store, _ := cmd.Flags().GetBool("store")
	showProgress, _ := cmd.Flags().GetBool("progress")

	if !cmd.Flags().Changed("pages") {
		pages = cfg.Crawl.DefaultPages
	}
	if pages < 1 {
		return fmt.Errorf("--pages must be greater than 0, got %d", pages)
	}

	var repo storage.Repository
	if store {
		repo, err = app.OpenRepository(cfg, logger)
		if err != nil {
			return err
		}
		if repo == nil {
			return errors.New("--store needs storage.driver to be mssql, postgres or sqlite")
		}
		defer closeRepository(repo, logger)
	}

	svc, err := app.NewService(cfg, fetcher.New(cfg, logger), repo, logger)
	if err != nil {
		return err
	}

	var source scraper.Source
	if siteName != "" {
		source, err = scraper.ParseSource(siteName)
	} else {
		source, err = svc.DetectSource(startURL)
	}
	if err != nil {
		return err
	}

	ctx, cancel := app.GracefulShutdown(cmd.Context(), logger)
	defer cancel()

	var progress app.ProgressFunc
	if showProgress {
		s := spinner.New(spinner.CharSets[9], 100*time.Millisecond, spinner.WithWriter(os.Stderr))
		s.Suffix = " resolving pages"
		s.Start()
		defer s.Stop()

		progress = func(p app.Progress) {
			s.Lock()
			s.Suffix = fmt.Sprintf(" page %d/%d, item %d/%d", p.Page-p.FirstPage+1, p.LastPage-p.FirstPage+1, p.Item, p.PageItems)
			s.Unlock()
		}
	}

	result, err := svc.Crawl(ctx, source, startURL, pages, progress)
	if err != nil {
		return fmt.Errorf("crawl failed (%s): %w", scraper.Kind(err), err)
	}

	if store {
		saved, err := svc.Save(ctx, result)
		if err != nil {
			return err
		}
		logger.Info("Stored crawl result", "items", saved)
	}

	var out io.Writer = cmd.OutOrStdout()
	if output != "" {
		f, err := os.Create(output)
		if err != nil {
			return fmt.Errorf("failed to create output file: %w", err)
		}
		defer func() {
			if err := f.Close(); err != nil {
				logger.Error("Failed to close output file", "error", err.Error())
			}
		}()
		out = f
	}

	w, err := report.NewWriter(format, out)
	if err != nil {
		return err
	}
	return w.Write(&report.Report{
		Source:      source,
		StartURL:    startURL,
		Pages:       pages,
		FirstPage:   result.FirstPage,
		GeneratedAt: time.Now(),
		Result:      result,
	})
}

func closeRepository(repo storage.Repository, logger *observability.Logger) {
	if err := repo.Close(); err != nil {
		logger.Error("Failed to close storage", "error", err.Error())
	}
}
