package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"os"

	"github.com/google/uuid"

	"github.com/PauloMNogueira/adam-sandler-news-agent/config"
	"github.com/PauloMNogueira/adam-sandler-news-agent/sources"
)

func handleSourcesCommand(action string, cfg config.Config, args []string) {
	db, err := sources.NewStore(cfg.SourcesDBPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to open sources database: %v\n", err)
		os.Exit(1)
	}
	defer db.Close()

	switch action {
	case "list":
		handleSourcesList(db)
	case "add":
		handleSourcesAdd(db, args)
	case "enable":
		handleSourcesSetEnabled(db, args, true)
	case "disable":
		handleSourcesSetEnabled(db, args, false)
	case "delete":
		handleSourcesDelete(db, args)
	case "help", "--help", "-h":
		printSourcesUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: unknown sources command: %s\n\n", action)
		printSourcesUsage()
		os.Exit(1)
	}
}

func printSourcesUsage() {
	fmt.Println("newsagent sources - Manage scraping sources")
	fmt.Println()
	fmt.Println("Usage:")
	fmt.Println("  newsagent sources <action> [arguments]")
	fmt.Println()
	fmt.Println("Actions:")
	fmt.Println("  list       List all stored sources")
	fmt.Println("  add        Add a new source")
	fmt.Println("  enable     Enable a source")
	fmt.Println("  disable    Disable a source")
	fmt.Println("  delete     Delete a source")
	fmt.Println("  help       Show this help message")
}

func handleSourcesList(db *sources.Store) {
	all, err := db.ListSources()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to list sources: %v\n", err)
		os.Exit(1)
	}

	if len(all) == 0 {
		fmt.Println("No sources configured. The built-in BBC source is always active.")
		return
	}

	fmt.Printf("%-36s %-20s %-8s %s\n", "ID", "NAME", "ENABLED", "BASE URL")
	fmt.Println("--------------------------------------------------------------------------------------------")
	for _, src := range all {
		baseURL := src.Descriptor.BaseURL
		if len(baseURL) > 40 {
			baseURL = baseURL[:37] + "..."
		}
		fmt.Printf("%-36s %-20s %-8t %s\n", src.SourceID.String(), src.Descriptor.Name, src.IsEnabled(), baseURL)
	}
}

func handleSourcesAdd(db *sources.Store, args []string) {
	fs := flag.NewFlagSet("sources add", flag.ExitOnError)
	name := fs.String("name", "", "Source name")
	baseURL := fs.String("base-url", "", "Site base URL")
	searchPath := fs.String("search-path", "/search", "Search endpoint path")
	maxResults := fs.Int("max-results", sources.DefaultMaxResults, "Article cap for this source")
	selectorsFile := fs.String("selectors", "", "JSON file with the selector lists")
	disabled := fs.Bool("disabled", false, "Create the source disabled")
	fs.Parse(args)

	if *name == "" {
		fmt.Fprintf(os.Stderr, "Error: --name is required\n")
		fs.Usage()
		os.Exit(1)
	}
	if *baseURL == "" {
		fmt.Fprintf(os.Stderr, "Error: --base-url is required\n")
		fs.Usage()
		os.Exit(1)
	}

	selectors := sources.BBCSelectors()
	if *selectorsFile != "" {
		data, err := os.ReadFile(*selectorsFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to read selectors file: %v\n", err)
			os.Exit(1)
		}
		if err := json.Unmarshal(data, &selectors); err != nil {
			fmt.Fprintf(os.Stderr, "Error: failed to parse selectors file: %v\n", err)
			os.Exit(1)
		}
	}

	desc := sources.Descriptor{
		Name:       *name,
		BaseURL:    *baseURL,
		SearchPath: *searchPath,
		MaxResults: *maxResults,
	}.WithDefaults()

	src, err := db.CreateSource(desc, selectors, !*disabled)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to create source: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Created source: %s\n", src.SourceID.String())
	fmt.Printf("  Name: %s\n", src.Descriptor.Name)
	fmt.Printf("  Base URL: %s\n", src.Descriptor.BaseURL)
	fmt.Printf("  Enabled: %t\n", src.IsEnabled())
}

func handleSourcesSetEnabled(db *sources.Store, args []string, enabled bool) {
	id := parseSourceID(args)
	if err := db.SetEnabled(id, enabled); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if enabled {
		fmt.Printf("Enabled source: %s\n", id)
	} else {
		fmt.Printf("Disabled source: %s\n", id)
	}
}

func handleSourcesDelete(db *sources.Store, args []string) {
	id := parseSourceID(args)
	if err := db.DeleteSource(id); err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to delete source: %v\n", err)
		os.Exit(1)
	}
	fmt.Printf("Deleted source: %s\n", id)
}

func parseSourceID(args []string) uuid.UUID {
	if len(args) < 1 {
		fmt.Fprintf(os.Stderr, "Error: source ID is required\n")
		os.Exit(1)
	}
	id, err := uuid.Parse(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: invalid source ID: %v\n", err)
		os.Exit(1)
	}
	return id
}
