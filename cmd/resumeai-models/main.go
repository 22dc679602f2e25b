// Command resumeai-models prints the model registry: each provider's
// preferred model and fallback chain, and optionally the models its API
// reports for a key taken from the environment.
//
// Usage:
//
//	go run ./cmd/resumeai-models
//	OPENAI_API_KEY=sk-... go run ./cmd/resumeai-models -live -provider openai
//	go run ./cmd/resumeai-models -yaml -output models.yaml
package main

import (
	"context"
	"encoding/json"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/jmylchreest/resumeai/internal/llm"
	"github.com/jmylchreest/resumeai/internal/logging"
	"github.com/jmylchreest/resumeai/internal/version"
)

// apiKeyEnv names the environment variable holding each provider's key.
var apiKeyEnv = map[string]string{
	llm.ProviderOpenAI:    "OPENAI_API_KEY",
	llm.ProviderDeepSeek:  "DEEPSEEK_API_KEY",
	llm.ProviderAnthropic: "ANTHROPIC_API_KEY",
	llm.ProviderGemini:    "GEMINI_API_KEY",
}

// ProviderModels is one provider's entry in the output.
type ProviderModels struct {
	Name           string   `json:"name" yaml:"name"`
	DisplayName    string   `json:"display_name" yaml:"display_name"`
	PreferredModel string   `json:"preferred_model" yaml:"preferred_model"`
	Chain          []string `json:"chain" yaml:"chain"`
	Available      []string `json:"available,omitempty" yaml:"available,omitempty"`
	Reachable      *bool    `json:"reachable,omitempty" yaml:"reachable,omitempty"`
}

// Report is the command output.
type Report struct {
	GeneratedAt string           `json:"generated_at" yaml:"generated_at"`
	Version     string           `json:"version" yaml:"version"`
	Providers   []ProviderModels `json:"providers" yaml:"providers"`
}

func main() {
	outputFile := flag.String("output", "", "Output file path (default: stdout)")
	outputYAML := flag.Bool("yaml", false, "Output as YAML instead of JSON")
	only := flag.String("provider", "", "Only report this provider")
	live := flag.Bool("live", false, "Query providers that have an API key in the environment")
	timeout := flag.Duration("timeout", 30*time.Second, "Timeout for live queries")
	flag.Parse()

	_ = godotenv.Load()
	logger := logging.SetDefault()

	if *only != "" && !llm.IsValidProvider(*only) {
		fmt.Fprintf(os.Stderr, "unknown provider %q (valid: %s)\n", *only, strings.Join(llm.ValidProviders(), ", "))
		os.Exit(2)
	}

	endpoints := llm.DefaultEndpoints()
	client := llm.NewClient(logger, endpoints, *timeout)
	registry := llm.InitRegistry(endpoints, client.HTTPClient())
	discovery := llm.NewDiscovery(registry, endpoints, client.HTTPClient(), logger)

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	report := Report{
		GeneratedAt: time.Now().UTC().Format(time.RFC3339),
		Version:     version.Get().Short(),
	}
	for _, info := range registry.Providers() {
		if *only != "" && info.Name != *only {
			continue
		}
		entry := ProviderModels{
			Name:           info.Name,
			DisplayName:    info.DisplayName,
			PreferredModel: registry.GetPreferredModel(info.Name),
			Chain:          registry.ModelChain(info.Name, ""),
		}
		if *live {
			if key := os.Getenv(apiKeyEnv[info.Name]); key != "" {
				entry.Available = discovery.FetchAvailableModels(ctx, info.Name, key)
				ok := registry.CheckAvailability(ctx, info.Name, key)
				entry.Reachable = &ok
			}
		}
		report.Providers = append(report.Providers, entry)
	}

	var data []byte
	var err error
	if *outputYAML {
		data, err = yaml.Marshal(report)
	} else {
		data, err = json.MarshalIndent(report, "", "  ")
	}
	if err != nil {
		fmt.Fprintf(os.Stderr, "error marshaling report: %v\n", err)
		os.Exit(1)
	}

	if *outputFile != "" {
		if err := os.WriteFile(*outputFile, data, 0644); err != nil {
			fmt.Fprintf(os.Stderr, "error writing to file: %v\n", err)
			os.Exit(1)
		}
		return
	}
	fmt.Println(string(data))
}
