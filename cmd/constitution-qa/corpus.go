// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/pdiddy/constitution-qa/internal/corpus"
	"github.com/pdiddy/constitution-qa/pkg/types"
)

var corpusCmd = &cobra.Command{
	Use:   "corpus",
	Short: "Manage the constitutional article index",
	Long: `Corpus manages the local SQLite article index the question pipeline
searches. Use subcommands to import articles, inspect them, or export the
corpus back to YAML.`,
}

// --- import subcommand ---

var corpusImportCmd = &cobra.Command{
	Use:   "import [file]",
	Short: "Import articles from a YAML or plain-text corpus file",
	Long: `Import ingests constitutional articles into the index. YAML input uses
the stable article schema (article, content, part, chapter, section);
plain-text input (.txt) is split on "Article N" headings with PART and
CHAPTER markers taken from each article's own text. With --url the corpus
file is downloaded first.

Articles already present (same number and content) are counted as
duplicates and left untouched.`,
	RunE: runCorpusImport,
}

func runCorpusImport(cmd *cobra.Command, args []string) error {
	url, _ := cmd.Flags().GetString("url")
	if url == "" && len(args) == 0 {
		return fmt.Errorf("corpus file required: provide a path or --url")
	}

	cfg := corpusConfig(cmd)
	store, err := corpus.NewStore(cfg)
	if err != nil {
		return err
	}
	defer store.Close()

	var summary corpus.ImportSummary
	if url != "" {
		summary, err = store.ImportURL(context.Background(), url, cfg.HTTPConfig, os.Stdout)
	} else {
		summary, err = store.ImportFile(context.Background(), args[0], os.Stdout)
	}
	if err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d article(s) failed to import", summary.Failed)
	}
	return nil
}

// --- list subcommand ---

var corpusListCmd = &cobra.Command{
	Use:   "list",
	Short: "List all articles in the index",
	RunE:  runCorpusList,
}

func runCorpusList(cmd *cobra.Command, args []string) error {
	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	articles, err := store.List(context.Background())
	if err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(articles)
	}

	if len(articles) == 0 {
		fmt.Println("Corpus is empty.")
		return nil
	}

	fmt.Fprintf(os.Stdout, "%-8s  %-6s  %-10s  %s\n", "Article", "Part", "Chapter", "Content")
	fmt.Fprintln(os.Stdout, strings.Repeat("-", 90))
	for _, a := range articles {
		content := a.Content
		if len(content) > 60 {
			content = content[:57] + "..."
		}
		fmt.Fprintf(os.Stdout, "%-8s  %-6s  %-10s  %s\n", a.Number, a.Part, a.Chapter, content)
	}
	fmt.Fprintf(os.Stdout, "\n%d articles\n", len(articles))
	return nil
}

// --- show subcommand ---

var corpusShowCmd = &cobra.Command{
	Use:   "show [article]",
	Short: "Show one article by number",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorpusShow,
}

func runCorpusShow(cmd *cobra.Command, args []string) error {
	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	a, err := store.Get(context.Background(), args[0])
	if err != nil {
		return err
	}

	fmt.Printf("Article %s (Part %s", a.Number, a.Part)
	if a.Chapter != "" {
		fmt.Printf(", Chapter %s", a.Chapter)
	}
	fmt.Printf(")\n\n%s\n", a.Content)
	return nil
}

// --- add subcommand ---

var corpusAddCmd = &cobra.Command{
	Use:   "add",
	Short: "Add or update a single article",
	RunE:  runCorpusAdd,
}

func runCorpusAdd(cmd *cobra.Command, args []string) error {
	number, _ := cmd.Flags().GetString("number")
	content, _ := cmd.Flags().GetString("content")
	part, _ := cmd.Flags().GetString("part")
	chapter, _ := cmd.Flags().GetString("chapter")
	section, _ := cmd.Flags().GetString("section")

	if number == "" || content == "" || part == "" {
		return fmt.Errorf("--number, --content, and --part are required")
	}

	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	a := types.Article{
		Number:  number,
		Content: content,
		Part:    part,
		Chapter: chapter,
		Section: section,
	}
	if err := store.Upsert(context.Background(), a); err != nil {
		return err
	}
	fmt.Printf("Stored article %s\n", number)
	return nil
}

// --- export subcommand ---

var corpusExportCmd = &cobra.Command{
	Use:   "export [file]",
	Short: "Export the corpus to a YAML file",
	Args:  cobra.ExactArgs(1),
	RunE:  runCorpusExport,
}

func runCorpusExport(cmd *cobra.Command, args []string) error {
	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.ExportYAML(context.Background(), args[0]); err != nil {
		return err
	}
	fmt.Printf("Exported to %s\n", args[0])
	return nil
}

func init() {
	corpusImportCmd.Flags().String("url", "", "download the corpus file from a URL")

	corpusListCmd.Flags().Bool("json", false, "output articles as JSON")

	corpusAddCmd.Flags().String("number", "", "article number, e.g. 21 or 21A")
	corpusAddCmd.Flags().String("content", "", "article text")
	corpusAddCmd.Flags().String("part", "", "constitutional part, e.g. III")
	corpusAddCmd.Flags().String("chapter", "", "chapter within the part")
	corpusAddCmd.Flags().String("section", "", "section within the chapter")

	for _, c := range []*cobra.Command{corpusImportCmd, corpusListCmd, corpusShowCmd, corpusAddCmd, corpusExportCmd} {
		c.Flags().String("data-dir", "", "base directory for corpus data (contains index/)")
		corpusCmd.AddCommand(c)
	}

	rootCmd.AddCommand(corpusCmd)
}
