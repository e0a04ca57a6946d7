package commands

import (
	"log/slog"
	"os"
	"time"

	"refdocs-backend/lib/configutil"
	"refdocs-backend/lib/scrapers/sigma"
	"refdocs-backend/lib/serviceutil"
	"refdocs-backend/services/documents"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
)

type Config struct {
	EdqmBaseUrl string `json:"edqm_base_url"`
	UspBaseUrl  string `json:"usp_base_url"`
	OutputDir   string `json:"output_dir"`
	// VendorProbeAddr is dialed once per run to check whether the sds
	// fallback vendor is reachable. Empty skips the probe.
	VendorProbeAddr string `json:"vendor_probe_addr"`
}

var outputDir *string

func init() {
	outputDir = rootCmd.PersistentFlags().String("out", "", "Directory to write downloaded documents to (overrides config).")
	rootCmd.AddCommand(edqmCmd)
	rootCmd.AddCommand(uspCmd)
}

func readConfig() Config {
	cfg, err := configutil.ReadConfig[Config]("config.json5")
	if err != nil && !os.IsNotExist(err) {
		serviceutil.Fatal("failed to read config", err)
	}
	if cfg.EdqmBaseUrl == "" {
		cfg.EdqmBaseUrl = "https://crs.edqm.eu"
	}
	if cfg.UspBaseUrl == "" {
		cfg.UspBaseUrl = "https://store.usp.org"
	}
	if cfg.OutputDir == "" {
		cfg.OutputDir = "downloads"
	}
	if *outputDir != "" {
		cfg.OutputDir = *outputDir
	}
	return cfg
}

func runCodes(cmd *cobra.Command, dl documents.Downloader, codes []string) {
	if err := dl.Start(); err != nil {
		serviceutil.Fatal("failed to start session", err)
	}
	defer dl.Stop()

	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.AppendHeader(table.Row{"Code", "Document", "Status", "Artifact"})

	t1 := time.Now()
	for _, code := range codes {
		for _, result := range dl.DownloadAll(cmd.Context(), code) {
			status := "OK"
			detail := result.Path
			if !result.Success {
				status = "FAIL"
				detail = result.Error
			}
			t.AppendRow(table.Row{result.Code, result.Doc, status, detail})
		}
	}
	slog.Info("download time", "seconds", time.Since(t1).Seconds())

	t.Render()
}

var edqmCmd = &cobra.Command{
	Use:   "edqm <code> [code...]",
	Short: "Downloads COA, SDS and origin-country documents from the EDQM reference-standards database.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		dl := documents.NewEdqm(documents.EdqmOptions{
			BaseURL:   cfg.EdqmBaseUrl,
			OutputDir: cfg.OutputDir,
			Vendor: sigma.ClientOptions{
				Impersonate: true,
				ProbeAddr:   cfg.VendorProbeAddr,
			},
		})
		runCodes(cmd, dl, args)
	},
}

var uspCmd = &cobra.Command{
	Use:   "usp <code> [code...]",
	Short: "Downloads COA, SDS and origin-country documents from the USP store.",
	Args:  cobra.MinimumNArgs(1),
	Run: func(cmd *cobra.Command, args []string) {
		cfg := readConfig()
		dl := documents.NewUsp(documents.UspOptions{
			BaseURL:   cfg.UspBaseUrl,
			OutputDir: cfg.OutputDir,
		})
		runCodes(cmd, dl, args)
	},
}
