// Package publish pushes generated reports to a GitHub Pages site: reports
// are written into a docs/ directory with a JSON index and a landing page,
// then committed and pushed with the system git binary.
package publish

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"time"

	"github.com/PauloMNogueira/adam-sandler-news-agent/report"
)

// maxIndexEntries caps the published report index; older entries age out.
const maxIndexEntries = 50

const indexFileName = "reports.json"

// Config holds the publishing settings. Token and Repository come from
// GITHUB_TOKEN and GITHUB_REPOSITORY.
type Config struct {
	Token      string
	Repository string // "owner/repo"
	DocsDir    string
}

// IsConfigured reports whether pushing to GitHub is possible. Saving into
// the docs directory works without credentials.
func (c Config) IsConfigured() bool {
	return c.Token != "" && c.Repository != ""
}

// PagesURL returns the GitHub Pages URL for the configured repository, or ""
// when the repository is unset or malformed.
func (c Config) PagesURL() string {
	owner, repo, found := strings.Cut(c.Repository, "/")
	if !found || owner == "" || repo == "" {
		return ""
	}
	return fmt.Sprintf("https://%s.github.io/%s", owner, repo)
}

// IndexEntry is one published report in reports.json, newest first.
type IndexEntry struct {
	Filename    string `json:"filename"`
	Title       string `json:"title"`
	NewsCount   int    `json:"news_count"`
	Timestamp   string `json:"timestamp"`
	GeneratedAt string `json:"generated_at"`
}

// Publisher writes reports into the docs directory and pushes them.
type Publisher struct {
	config Config

	// runGit is swapped out in tests.
	runGit func(ctx context.Context, args ...string) (string, error)
}

// New creates a publisher. An empty DocsDir defaults to "docs".
func New(cfg Config) *Publisher {
	if cfg.DocsDir == "" {
		cfg.DocsDir = "docs"
	}
	return &Publisher{config: cfg, runGit: runGitCommand}
}

func runGitCommand(ctx context.Context, args ...string) (string, error) {
	out, err := exec.CommandContext(ctx, "git", args...).CombinedOutput()
	if err != nil {
		return "", fmt.Errorf("git %s: %w: %s", args[0], err, strings.TrimSpace(string(out)))
	}
	return strings.TrimSpace(string(out)), nil
}

// SaveReport renders the report into the docs directory under a timestamped
// filename, updates the JSON index, and regenerates the landing page. It
// does not touch git; Push does.
func (p *Publisher) SaveReport(r *report.Report) (string, error) {
	html, err := r.HTML()
	if err != nil {
		return "", err
	}

	// 0700: owner-only access
	if err := os.MkdirAll(p.config.DocsDir, 0o700); err != nil {
		return "", fmt.Errorf("failed to create docs directory: %w", err)
	}

	timestamp := r.GeneratedAt.Format("20060102_150405")
	filename := "report_" + timestamp + ".html"
	path := filepath.Join(p.config.DocsDir, filename)

	if err := os.WriteFile(path, []byte(html), 0o600); err != nil {
		return "", fmt.Errorf("failed to write report: %w", err)
	}

	entries, err := p.updateIndex(IndexEntry{
		Filename:    filename,
		Title:       r.Title,
		NewsCount:   r.Count(),
		Timestamp:   timestamp,
		GeneratedAt: r.GeneratedAt.Format(time.RFC3339),
	})
	if err != nil {
		return "", err
	}

	if err := p.writeLandingPage(entries); err != nil {
		return "", err
	}

	log.Printf("INFO: report published to %s", path)
	return path, nil
}

// updateIndex prepends the new entry to reports.json, keeping the newest
// entries up to the cap.
func (p *Publisher) updateIndex(entry IndexEntry) ([]IndexEntry, error) {
	entries, err := p.Index()
	if err != nil {
		return nil, err
	}

	entries = append([]IndexEntry{entry}, entries...)
	if len(entries) > maxIndexEntries {
		entries = entries[:maxIndexEntries]
	}

	data, err := json.MarshalIndent(entries, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to marshal report index: %w", err)
	}
	if err := os.WriteFile(p.indexPath(), data, 0o600); err != nil {
		return nil, fmt.Errorf("failed to write report index: %w", err)
	}

	return entries, nil
}

// Index loads the published report index. A missing index file means no
// reports were published yet.
func (p *Publisher) Index() ([]IndexEntry, error) {
	data, err := os.ReadFile(p.indexPath())
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to read report index: %w", err)
	}

	var entries []IndexEntry
	if err := json.Unmarshal(data, &entries); err != nil {
		return nil, fmt.Errorf("failed to parse report index: %w", err)
	}
	return entries, nil
}

func (p *Publisher) indexPath() string {
	return filepath.Join(p.config.DocsDir, indexFileName)
}

// Push commits the docs directory and pushes it to origin. Returns nil when
// there is nothing to commit. Requires GITHUB_TOKEN and GITHUB_REPOSITORY.
func (p *Publisher) Push(ctx context.Context, message string) error {
	if !p.config.IsConfigured() {
		return fmt.Errorf("publishing is not configured (set GITHUB_TOKEN and GITHUB_REPOSITORY)")
	}

	status, err := p.runGit(ctx, "status", "--porcelain", p.config.DocsDir)
	if err != nil {
		return err
	}
	if status == "" {
		log.Printf("INFO: no report changes to publish")
		return nil
	}

	branch, err := p.runGit(ctx, "branch", "--show-current")
	if err != nil {
		return err
	}

	remoteURL := fmt.Sprintf("https://%s@github.com/%s.git", p.config.Token, p.config.Repository)
	if _, err := p.runGit(ctx, "remote", "set-url", "origin", remoteURL); err != nil {
		return err
	}
	if _, err := p.runGit(ctx, "config", "user.name", "Adam Sandler News Bot"); err != nil {
		return err
	}
	if _, err := p.runGit(ctx, "config", "user.email", "bot@adamsandlernews.com"); err != nil {
		return err
	}

	if _, err := p.runGit(ctx, "add", p.config.DocsDir); err != nil {
		return err
	}

	if message == "" {
		message = "News report update - " + time.Now().Format("2006-01-02 15:04")
	}
	if _, err := p.runGit(ctx, "commit", "-m", message); err != nil {
		return err
	}

	if _, err := p.runGit(ctx, "push", "origin", branch); err != nil {
		return err
	}

	log.Printf("INFO: reports pushed to %s", p.config.Repository)
	if url := p.config.PagesURL(); url != "" {
		log.Printf("INFO: site available at %s", url)
	}
	return nil
}
