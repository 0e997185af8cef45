// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/constitution-qa/internal/answer"
	"github.com/pdiddy/constitution-qa/internal/classify"
	"github.com/pdiddy/constitution-qa/internal/completion"
	"github.com/pdiddy/constitution-qa/internal/corpus"
	"github.com/pdiddy/constitution-qa/internal/history"
	"github.com/pdiddy/constitution-qa/internal/prompt"
	"github.com/pdiddy/constitution-qa/internal/retrieve"
	"github.com/pdiddy/constitution-qa/pkg/types"
)

const defaultModel = "mistralai/mistral-7b-instruct"

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question about the Indian Constitution",
	Long: `Ask classifies the question, searches the corpus index for relevant
articles, and answers through the configured completion model. Questions
about the assistant itself and questions outside the constitutional domain
are answered without touching the index.

The OpenRouter API key is read from .secrets/openrouter-api-key or the
OPENROUTER_API_KEY environment variable.`,
	RunE: runAsk,
}

func init() {
	askCmd.Flags().String("model", "", "completion model identifier")
	askCmd.Flags().String("data-dir", "", "base directory for corpus data (contains index/)")
	askCmd.Flags().String("rules", "", "YAML file overriding the classification rule sets")
	askCmd.Flags().Int("max-passages", 0, "maximum retrieved passages per question")
	askCmd.Flags().Int64("chat", 0, "append the exchange to an existing chat id")
	askCmd.Flags().Bool("save", false, "save the exchange as a new chat")
	askCmd.Flags().Bool("json", false, "output the answer as JSON")

	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	message := strings.Join(args, " ")

	store, err := corpus.NewStore(corpusConfig(cmd))
	if err != nil {
		return err
	}
	defer store.Close()

	classifier, err := buildClassifier(cmd)
	if err != nil {
		return err
	}

	client, err := completion.NewClient(completionConfig(cmd))
	if err != nil {
		return err
	}

	maxPassages, _ := cmd.Flags().GetInt("max-passages")
	svc := answer.New(
		classifier,
		retrieve.New(store, maxPassages),
		prompt.New(modelID(cmd)),
		client,
		os.Stderr,
	)

	ans, err := svc.Answer(context.Background(), message)
	if err != nil {
		return err
	}

	if err := saveExchange(cmd, message, ans.Text); err != nil {
		return err
	}

	jsonOutput, _ := cmd.Flags().GetBool("json")
	if jsonOutput {
		enc := json.NewEncoder(os.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(ans)
	}

	fmt.Println(ans.Text)
	if len(ans.Sources) > 0 {
		fmt.Println("\nSources:")
		for _, a := range ans.Sources {
			fmt.Printf("  Article %s (Part %s)\n", a.Number, a.Part)
		}
	}
	return nil
}

func buildClassifier(cmd *cobra.Command) (*classify.Classifier, error) {
	rulesFile := stringSetting(cmd, "rules", "classifier.rules_file", "")
	if rulesFile == "" {
		return classify.New(classify.DefaultRules()), nil
	}
	rules, err := classify.LoadRules(rulesFile)
	if err != nil {
		return nil, err
	}
	return classify.New(rules), nil
}

func modelID(cmd *cobra.Command) string {
	return stringSetting(cmd, "model", "completion.model", defaultModel)
}

func completionConfig(cmd *cobra.Command) types.CompletionConfig {
	return types.CompletionConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   viper.GetDuration("completion.timeout"),
			UserAgent: "constitution-qa/" + version,
		},
		Model:      modelID(cmd),
		APIKey:     loadedSecrets.Get("openrouter-api-key", viper.GetString("completion.api_key")),
		BaseURL:    viper.GetString("completion.base_url"),
		Referer:    viper.GetString("completion.referer"),
		AppTitle:   "Constitution Chatbot",
		MaxRetries: viper.GetInt("completion.max_retries"),
	}
}

func saveExchange(cmd *cobra.Command, question, answerText string) error {
	chatID, _ := cmd.Flags().GetInt64("chat")
	saveNew, _ := cmd.Flags().GetBool("save")
	if chatID == 0 && !saveNew {
		return nil
	}

	chats, err := history.NewStore(historyConfig())
	if err != nil {
		return err
	}
	defer chats.Close()

	ctx := context.Background()
	if chatID == 0 {
		title := question
		if len(title) > 60 {
			title = title[:57] + "..."
		}
		chatID, err = chats.CreateChat(ctx, title)
		if err != nil {
			return err
		}
		fmt.Fprintf(os.Stderr, "Saved as chat %d\n", chatID)
	}

	if err := chats.AppendMessage(ctx, chatID, "user", question); err != nil {
		return err
	}
	return chats.AppendMessage(ctx, chatID, "assistant", answerText)
}

// --- shared settings helpers ---

// stringSetting resolves a string setting: explicit flag, then config
// file/env via viper, then the fallback.
func stringSetting(cmd *cobra.Command, flag, viperKey, fallback string) string {
	if v, _ := cmd.Flags().GetString(flag); v != "" {
		return v
	}
	if v := viper.GetString(viperKey); v != "" {
		return v
	}
	return fallback
}

func corpusConfig(cmd *cobra.Command) types.CorpusConfig {
	maxResults := 0
	if cmd.Flags().Lookup("max-passages") != nil {
		maxResults, _ = cmd.Flags().GetInt("max-passages")
	}
	timeout := viper.GetDuration("corpus.timeout")
	if timeout == 0 {
		timeout = 60 * time.Second
	}
	return types.CorpusConfig{
		HTTPConfig: types.HTTPConfig{
			Timeout:   timeout,
			UserAgent: "constitution-qa/" + version,
		},
		DataDir:    stringSetting(cmd, "data-dir", "corpus.data_dir", "corpus"),
		MaxResults: maxResults,
	}
}

func historyConfig() types.HistoryConfig {
	dataDir := viper.GetString("history.data_dir")
	if dataDir == "" {
		dataDir = "chats"
	}
	return types.HistoryConfig{DataDir: dataDir}
}
