package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/PauloMNogueira/adam-sandler-news-agent/aggregate"
	"github.com/PauloMNogueira/adam-sandler-news-agent/config"
	"github.com/PauloMNogueira/adam-sandler-news-agent/email"
	"github.com/PauloMNogueira/adam-sandler-news-agent/news"
	"github.com/PauloMNogueira/adam-sandler-news-agent/publish"
	"github.com/PauloMNogueira/adam-sandler-news-agent/report"
	"github.com/PauloMNogueira/adam-sandler-news-agent/rss"
	"github.com/PauloMNogueira/adam-sandler-news-agent/scrape"
	"github.com/PauloMNogueira/adam-sandler-news-agent/sources"
	"github.com/PauloMNogueira/adam-sandler-news-agent/store"
)

// buildRepository wires the aggregation repository: the built-in BBC
// scraper, every enabled source from the database, and any feeds from the
// YAML config.
func buildRepository(cfg config.Config, fileCfg *config.FileConfig) *aggregate.Repository {
	keywords := news.DefaultKeywords()
	if fileCfg != nil && len(fileCfg.Keywords) > 0 {
		keywords = news.Keywords(fileCfg.Keywords)
	}

	var opts []aggregate.Option
	if pause, ok := fileCfg.Pause(); ok {
		opts = append(opts, aggregate.WithPause(pause))
	}

	repo := aggregate.New(opts...)

	bbc := sources.BBC()
	if cfg.RequestTimeout > 0 {
		bbc.Timeout = cfg.RequestTimeout
	}
	repo.Register(scrape.NewSiteScraper(bbc, sources.BBCSelectors(), keywords))

	if db, err := sources.NewStore(cfg.SourcesDBPath); err == nil {
		defer db.Close()
		enabled, err := db.ListEnabledSources()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Warning: failed to list stored sources: %v\n", err)
		}
		for _, src := range enabled {
			repo.Register(scrape.NewSiteScraper(src.Descriptor, src.Selectors, keywords))
		}
	} else {
		fmt.Fprintf(os.Stderr, "Warning: failed to open sources database: %v\n", err)
	}

	if fileCfg != nil {
		for _, feed := range fileCfg.Feeds {
			repo.Register(rss.NewFeedScraper(feed.Name, feed.URL, keywords))
		}
	}

	return repo
}

func handleSearch(cfg config.Config, fileCfg *config.FileConfig, args []string) {
	fs := flag.NewFlagSet("search", flag.ExitOnError)
	query := fs.String("query", cfg.SearchQuery, "Search query")
	save := fs.Bool("save", false, "Archive the articles found")
	fs.Parse(args)

	repo := buildRepository(cfg, fileCfg)
	articles := repo.FetchAll(context.Background(), *query, cfg.MaxNewsPerSource)

	if len(articles) == 0 {
		fmt.Println("No articles found.")
		return
	}

	for i, a := range articles {
		fmt.Printf("%d. %s\n", i+1, a.Title)
		fmt.Printf("   Source: %s\n", a.Source)
		fmt.Printf("   Date: %s\n", a.PublishedAt.Format("2006-01-02"))
		fmt.Printf("   URL: %s\n\n", a.URL)
	}
	fmt.Printf("%d articles found.\n", len(articles))

	if *save {
		archive, err := store.New(cfg.ArticlesDir)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		stored, errs := archive.AddAll(articles)
		for _, err := range errs {
			fmt.Fprintf(os.Stderr, "Warning: %v\n", err)
		}
		fmt.Printf("%d articles archived in %s.\n", stored, cfg.ArticlesDir)
	}
}

func handleReport(cfg config.Config, fileCfg *config.FileConfig, args []string) {
	fs := flag.NewFlagSet("report", flag.ExitOnError)
	recipient := fs.String("email", cfg.DefaultRecipient, "Recipient address (empty skips email)")
	out := fs.String("out", "", "Output file (default: dated file in REPORT_OUTPUT_DIR)")
	publishFlag := fs.Bool("publish", false, "Publish the report to the GitHub Pages site")
	fs.Parse(args)

	repo := buildRepository(cfg, fileCfg)
	articles := repo.FetchAll(context.Background(), cfg.SearchQuery, cfg.MaxNewsPerSource)

	now := time.Now()
	rep := report.New(cfg.ReportTitle, now)
	rep.AddAll(articles)
	fmt.Println(rep.Summary())

	path := *out
	if path == "" {
		if err := os.MkdirAll(cfg.ReportOutputDir, 0o700); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
		path = filepath.Join(cfg.ReportOutputDir, "report-"+now.Format("2006-01-02"))
	}
	saved, err := rep.SaveHTML(path)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Report saved to %s\n", saved)

	if *publishFlag {
		if err := publishReport(cfg, rep); err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			os.Exit(1)
		}
	}

	if *recipient == "" {
		return
	}
	if err := sendReport(cfg, rep, *recipient); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Report sent to %s\n", *recipient)
}

func publishReport(cfg config.Config, rep *report.Report) error {
	pub := publish.New(publish.Config{
		Token:      cfg.GitHubToken,
		Repository: cfg.GitHubRepository,
		DocsDir:    cfg.DocsDir,
	})

	saved, err := pub.SaveReport(rep)
	if err != nil {
		return err
	}
	fmt.Printf("Report published to %s\n", saved)

	if !cfg.HasPublishConfig() {
		fmt.Fprintf(os.Stderr, "Warning: GITHUB_TOKEN/GITHUB_REPOSITORY not set, skipping push\n")
		return nil
	}
	if err := pub.Push(context.Background(), ""); err != nil {
		return err
	}
	fmt.Printf("Site updated: %s\n", publish.Config{Repository: cfg.GitHubRepository}.PagesURL())
	return nil
}

func handleTest(cfg config.Config, args []string) {
	fs := flag.NewFlagSet("test", flag.ExitOnError)
	recipient := fs.String("email", cfg.DefaultRecipient, "Recipient address")
	fs.Parse(args)

	if *recipient == "" {
		fmt.Fprintf(os.Stderr, "Error: no recipient (set DEFAULT_EMAIL_RECIPIENT or pass --email)\n")
		os.Exit(1)
	}

	rep := report.TestReport(time.Now())
	if err := sendReport(cfg, rep, *recipient); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Test report sent to %s\n", *recipient)
}

func sendReport(cfg config.Config, rep *report.Report, recipient string) error {
	if err := cfg.ValidateEmail(); err != nil {
		return err
	}
	sender, err := email.NewSender(email.Config{
		Host:     cfg.SMTPServer,
		Port:     cfg.SMTPPort,
		Username: cfg.SMTPUsername,
		Password: cfg.SMTPPassword,
	})
	if err != nil {
		return err
	}
	return sender.SendReport(context.Background(), rep, recipient)
}

func handleStatus(cfg config.Config, fileCfg *config.FileConfig) {
	fmt.Println("Adam Sandler News Agent")
	fmt.Println()
	fmt.Printf("Search query:       %s\n", cfg.SearchQuery)
	fmt.Printf("Max per source:     %d\n", cfg.MaxNewsPerSource)
	fmt.Printf("Request timeout:    %s\n", cfg.RequestTimeout)
	fmt.Printf("Report output dir:  %s\n", cfg.ReportOutputDir)
	fmt.Printf("Sources database:   %s\n", cfg.SourcesDBPath)
	fmt.Printf("Article archive:    %s\n", cfg.ArticlesDir)

	if cfg.HasEmailConfig() {
		fmt.Printf("Email:              configured (%s via %s:%s)\n", cfg.DefaultRecipient, cfg.SMTPServer, cfg.SMTPPort)
	} else {
		fmt.Println("Email:              not configured")
	}

	pubCfg := publish.Config{Token: cfg.GitHubToken, Repository: cfg.GitHubRepository, DocsDir: cfg.DocsDir}
	if pubCfg.IsConfigured() {
		fmt.Printf("Publishing:         configured (%s)\n", pubCfg.PagesURL())
	} else {
		fmt.Println("Publishing:         not configured")
	}
	if entries, err := publish.New(pubCfg).Index(); err == nil && len(entries) > 0 {
		fmt.Printf("Published reports:  %d\n", len(entries))
	}

	repo := buildRepository(cfg, fileCfg)
	fmt.Println()
	fmt.Println("Registered sources:")
	for _, name := range repo.Sources() {
		fmt.Printf("  - %s\n", name)
	}

	archive, err := store.New(cfg.ArticlesDir)
	if err == nil {
		if result, err := archive.List(); err == nil {
			fmt.Printf("\nArchived articles:  %d\n", len(result.Articles))
		}
	}
}
