package main

import (
	"fmt"
	"os"

	"github.com/PauloMNogueira/adam-sandler-news-agent/config"
)

// configFilePath is the optional YAML config next to the binary. Everything
// else comes from the environment.
const configFilePath = "newsagent.yaml"

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	config.LoadEnv()
	cfg := config.FromEnv()

	fileCfg, err := config.LoadFile(configFilePath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	subcommand := os.Args[1]

	switch subcommand {
	case "search":
		handleSearch(cfg, fileCfg, os.Args[2:])
	case "report":
		handleReport(cfg, fileCfg, os.Args[2:])
	case "test":
		handleTest(cfg, os.Args[2:])
	case "status":
		handleStatus(cfg, fileCfg)
	case "sources":
		if len(os.Args) < 3 {
			printSourcesUsage()
			os.Exit(1)
		}
		handleSourcesCommand(os.Args[2], cfg, os.Args[3:])
	case "help", "--help", "-h":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown command: %s\n\n", subcommand)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println("newsagent - Adam Sandler news aggregation agent")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  newsagent <command> [arguments]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  search     Search all sources and print the articles found")
	fmt.Println("  report     Generate a report, save it, and optionally email it")
	fmt.Println("  test       Send a test report to verify email delivery")
	fmt.Println("  status     Show configuration and source status")
	fmt.Println("  sources    Manage scraping sources")
	fmt.Println("  help       Show this help message")
	fmt.Println()
	fmt.Println("Environment Variables:")
	fmt.Println("  SEARCH_QUERY              Search query (default: Adam Sandler)")
	fmt.Println("  MAX_NEWS_PER_SOURCE       Article cap per source (default: 10)")
	fmt.Println("  REQUEST_TIMEOUT           Per-request timeout in seconds (default: 30)")
	fmt.Println("  SMTP_SERVER               SMTP host (default: smtp.gmail.com)")
	fmt.Println("  SMTP_PORT                 SMTP port (default: 587)")
	fmt.Println("  SMTP_USERNAME             SMTP account")
	fmt.Println("  SMTP_PASSWORD             SMTP app password")
	fmt.Println("  DEFAULT_EMAIL_RECIPIENT   Report recipient")
	fmt.Println("  REPORT_TITLE              Report title (default: dated)")
	fmt.Println("  REPORT_OUTPUT_DIR         Report output directory (default: reports)")
	fmt.Println("  SOURCES_DB_PATH           Sources database (default: sources.db)")
	fmt.Println("  ARTICLES_DIR              Article archive directory (default: articles)")
	fmt.Println("  GITHUB_TOKEN              Token for publishing reports to GitHub Pages")
	fmt.Println("  GITHUB_REPOSITORY         Pages repository as owner/repo")
	fmt.Println("  DOCS_DIR                  Pages working directory (default: docs)")
}
