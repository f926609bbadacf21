package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"path/filepath"
	"time"

	"github.com/KaramelBytes/medintel-cli/internal/ai"
	cfgpkg "github.com/KaramelBytes/medintel-cli/internal/config"
	"github.com/KaramelBytes/medintel-cli/internal/utils"
	"github.com/spf13/cobra"
)

var modelsCmd = &cobra.Command{
	Use:   "models",
	Short: "Inspect or update the model catalog used for external analysis",
	Example: `  medintel models show
  medintel models show --provider ollama
  medintel models sync --file ./models.json --merge
  medintel models fetch --url https://example.com/models.json`,
}

var (
	showProvider string
	showJSON     bool
)

var modelsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the model catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		names := ai.ModelNames(showProvider)
		if showJSON {
			m := make(map[string]ai.ModelInfo, len(names))
			for _, n := range names {
				mi, _ := ai.LookupModel(n)
				m[n] = mi
			}
			b, err := utils.PrettyJSON(m)
			if err != nil {
				return err
			}
			fmt.Println(string(b))
			return nil
		}
		def := selectModel(cfg, "")
		for _, n := range names {
			mi, _ := ai.LookupModel(n)
			mark := " "
			if n == def {
				mark = "*"
			}
			price := "n/a"
			if mi.InputPerK > 0 || mi.OutputPerK > 0 {
				price = fmt.Sprintf("$%.5f/$%.5f per 1K", mi.InputPerK, mi.OutputPerK)
			}
			fmt.Printf("%s %-36s %-10s ctx=%-8d %s\n", mark, n, mi.Provider, mi.ContextTokens, price)
		}
		return nil
	},
}

var (
	syncPath  string
	syncMerge bool
)

var modelsSyncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Install a model catalog from a JSON file",
	RunE: func(cmd *cobra.Command, args []string) error {
		if syncPath == "" {
			return fmt.Errorf("--file is required")
		}
		m, err := ai.LoadCatalogFromJSON(syncPath)
		if err != nil {
			return fmt.Errorf("load catalog: %w", err)
		}
		return installCatalog(m, syncMerge)
	},
}

var (
	fetchURL   string
	fetchMerge bool
)

var modelsFetchCmd = &cobra.Command{
	Use:   "fetch",
	Short: "Download a model catalog JSON and install it",
	RunE: func(cmd *cobra.Command, args []string) error {
		if fetchURL == "" {
			return fmt.Errorf("--url is required")
		}
		client := &http.Client{Timeout: 20 * time.Second}
		resp, err := client.Get(fetchURL)
		if err != nil {
			return fmt.Errorf("fetch: %w", err)
		}
		defer resp.Body.Close()
		if resp.StatusCode < 200 || resp.StatusCode >= 300 {
			b, _ := io.ReadAll(io.LimitReader(resp.Body, 4<<10))
			return fmt.Errorf("fetch: unexpected status %s: %s", resp.Status, string(b))
		}
		var m map[string]ai.ModelInfo
		if err := json.NewDecoder(resp.Body).Decode(&m); err != nil {
			return fmt.Errorf("decode: %w", err)
		}
		return installCatalog(m, fetchMerge)
	},
}

// installCatalog stores m as ~/.medintel/models.json and points the config at it,
// so every later run loads it at startup.
func installCatalog(m map[string]ai.ModelInfo, merge bool) error {
	for k, mi := range m {
		if mi.Name == "" {
			mi.Name = k
			m[k] = mi
		}
	}
	if merge {
		ai.MergeCatalog(m)
	} else {
		ai.OverrideCatalog(m)
	}
	dir, err := cfgpkg.Dir()
	if err != nil {
		return err
	}
	path := filepath.Join(dir, "models.json")
	b, err := utils.PrettyJSON(ai.Catalog())
	if err != nil {
		return err
	}
	if err := utils.SafeWriteFile(path, b); err != nil {
		return fmt.Errorf("save catalog: %w", err)
	}
	if cfg == nil {
		c, err := cfgpkg.Load(cfgFile)
		if err != nil {
			return err
		}
		cfg = c
	}
	cfg.ModelsCatalogFile = path
	if err := cfgpkg.Save(cfg, cfgFile); err != nil {
		return err
	}
	verb := "Replaced"
	if merge {
		verb = "Merged"
	}
	fmt.Printf("✓ %s model catalog (%d models) and saved it to %s\n", verb, len(ai.Catalog()), path)
	return nil
}

func init() {
	rootCmd.AddCommand(modelsCmd)
	modelsCmd.AddCommand(modelsShowCmd)
	modelsCmd.AddCommand(modelsSyncCmd)
	modelsCmd.AddCommand(modelsFetchCmd)

	modelsShowCmd.Flags().StringVar(&showProvider, "provider", "", "only models for this provider (openrouter|ollama)")
	modelsShowCmd.Flags().BoolVar(&showJSON, "json", false, "print the catalog as JSON")

	modelsSyncCmd.Flags().StringVar(&syncPath, "file", "", "path to JSON catalog file")
	modelsSyncCmd.Flags().BoolVar(&syncMerge, "merge", false, "merge into existing catalog instead of replacing")

	modelsFetchCmd.Flags().StringVar(&fetchURL, "url", "", "URL to JSON catalog file")
	modelsFetchCmd.Flags().BoolVar(&fetchMerge, "merge", false, "merge into existing catalog instead of replacing")
}
