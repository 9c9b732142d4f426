package publish

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/PauloMNogueira/adam-sandler-news-agent/news"
	"github.com/PauloMNogueira/adam-sandler-news-agent/report"
)

func testPublisher(t *testing.T) *Publisher {
	t.Helper()
	return New(Config{
		Token:      "test-token",
		Repository: "owner/news-site",
		DocsDir:    filepath.Join(t.TempDir(), "docs"),
	})
}

func publishedReport(title string, at time.Time) *report.Report {
	r := report.New(title, at)
	r.Add(news.New("Sandler story for "+title, "Body text about Adam Sandler.",
		"https://example.com/"+strings.ReplaceAll(strings.ToLower(title), " ", "-"), "bbc", at))
	return r
}

func TestConfigIsConfigured(t *testing.T) {
	assert.True(t, Config{Token: "t", Repository: "o/r"}.IsConfigured())
	assert.False(t, Config{Token: "t"}.IsConfigured())
	assert.False(t, Config{Repository: "o/r"}.IsConfigured())
}

func TestConfigPagesURL(t *testing.T) {
	assert.Equal(t, "https://owner.github.io/news-site", Config{Repository: "owner/news-site"}.PagesURL())
	assert.Equal(t, "", Config{Repository: "malformed"}.PagesURL())
	assert.Equal(t, "", Config{}.PagesURL())
}

func TestSaveReport_WritesTimestampedFile(t *testing.T) {
	p := testPublisher(t)
	at := time.Date(2024, 3, 15, 10, 30, 0, 0, time.UTC)

	path, err := p.SaveReport(publishedReport("First run", at))
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(p.config.DocsDir, "report_20240315_103000.html"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "First run")
}

func TestSaveReport_IndexNewestFirst(t *testing.T) {
	p := testPublisher(t)

	_, err := p.SaveReport(publishedReport("Older", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = p.SaveReport(publishedReport("Newer", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	entries, err := p.Index()
	require.NoError(t, err)
	require.Len(t, entries, 2)
	assert.Equal(t, "Newer", entries[0].Title)
	assert.Equal(t, "Older", entries[1].Title)
	assert.Equal(t, 1, entries[0].NewsCount)
	assert.Equal(t, "report_20240315_100000.html", entries[0].Filename)
}

func TestSaveReport_IndexCapped(t *testing.T) {
	p := testPublisher(t)
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	for i := 0; i < maxIndexEntries+3; i++ {
		_, err := p.SaveReport(publishedReport(fmt.Sprintf("Report %d", i), base.Add(time.Duration(i)*time.Minute)))
		require.NoError(t, err)
	}

	entries, err := p.Index()
	require.NoError(t, err)
	assert.Len(t, entries, maxIndexEntries)
	assert.Equal(t, fmt.Sprintf("Report %d", maxIndexEntries+2), entries[0].Title)
}

func TestSaveReport_RegeneratesLandingPage(t *testing.T) {
	p := testPublisher(t)

	_, err := p.SaveReport(publishedReport("First", time.Date(2024, 3, 15, 9, 0, 0, 0, time.UTC)))
	require.NoError(t, err)
	_, err = p.SaveReport(publishedReport("Second", time.Date(2024, 3, 15, 10, 0, 0, 0, time.UTC)))
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(p.config.DocsDir, "index.html"))
	require.NoError(t, err)
	page := string(data)

	assert.NotContains(t, page, reportsMarker)
	assert.Contains(t, page, `"report_20240315_090000.html"`)
	assert.Contains(t, page, `"report_20240315_100000.html"`)
	// One embedded array, even after repeated publishes.
	assert.Equal(t, 1, strings.Count(page, "const reports = "))
}

func TestIndex_MissingFileMeansEmpty(t *testing.T) {
	p := testPublisher(t)
	entries, err := p.Index()
	require.NoError(t, err)
	assert.Empty(t, entries)
}

func TestPush_RequiresConfiguration(t *testing.T) {
	p := New(Config{DocsDir: t.TempDir()})
	err := p.Push(context.Background(), "")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not configured")
}

func TestPush_RunsGitSequence(t *testing.T) {
	p := testPublisher(t)

	var commands [][]string
	p.runGit = func(_ context.Context, args ...string) (string, error) {
		commands = append(commands, args)
		switch args[0] {
		case "status":
			return "?? docs/report_20240315_103000.html", nil
		case "branch":
			return "main", nil
		}
		return "", nil
	}

	require.NoError(t, p.Push(context.Background(), "Publish latest report"))

	var names []string
	for _, cmd := range commands {
		names = append(names, cmd[0])
	}
	assert.Equal(t, []string{"status", "branch", "remote", "config", "config", "add", "commit", "push"}, names)

	// Token goes into the remote URL, push targets the current branch.
	assert.Equal(t, []string{"remote", "set-url", "origin", "https://test-token@github.com/owner/news-site.git"}, commands[2])
	assert.Equal(t, []string{"commit", "-m", "Publish latest report"}, commands[6])
	assert.Equal(t, []string{"push", "origin", "main"}, commands[7])
}

func TestPush_NothingToCommit(t *testing.T) {
	p := testPublisher(t)

	var commands [][]string
	p.runGit = func(_ context.Context, args ...string) (string, error) {
		commands = append(commands, args)
		return "", nil
	}

	require.NoError(t, p.Push(context.Background(), ""))
	require.Len(t, commands, 1)
	assert.Equal(t, "status", commands[0][0])
}

func TestPush_DefaultCommitMessage(t *testing.T) {
	p := testPublisher(t)

	var commitMessage string
	p.runGit = func(_ context.Context, args ...string) (string, error) {
		switch args[0] {
		case "status":
			return "M docs/index.html", nil
		case "branch":
			return "main", nil
		case "commit":
			commitMessage = args[2]
		}
		return "", nil
	}

	require.NoError(t, p.Push(context.Background(), ""))
	assert.Contains(t, commitMessage, "News report update - ")
}
