// bizreport builds HTML business reports from CSV data and mails them.
//
// Main CLI entrypoint using cobra command framework.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/seenimoa/bizreport/api"
	"github.com/seenimoa/bizreport/internal/config"
	"github.com/seenimoa/bizreport/internal/dataset"
	"github.com/seenimoa/bizreport/internal/mailer"
	"github.com/seenimoa/bizreport/internal/report"
	"github.com/seenimoa/bizreport/pkg/utils"
)

// Build-time variables (set via -ldflags).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

// Global config and logger, set up before any subcommand runs.
var (
	cfg    *config.Config
	logger zerolog.Logger
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "bizreport",
	Short: "Build, preview and email HTML business reports",
	Long: `bizreport turns tabular business data into a single self-contained
HTML report with line and bar charts, lets you preview it in a browser,
and sends it as the body of an email over SMTPS.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// A local .env may carry BIZREPORT_SMTP_PASSWORD; it is optional.
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("failed to load .env: %w", err)
		}

		var err error
		configFile, _ := cmd.Flags().GetString("config")
		if configFile != "" {
			cfg, err = config.LoadFromFile(configFile)
		} else {
			cfg, err = config.Load()
		}
		if err != nil {
			return fmt.Errorf("failed to load config: %w", err)
		}

		if lvl, _ := cmd.Flags().GetString("log-level"); lvl != "" {
			cfg.Logging.Level = lvl
		}
		logger = config.NewLogger(cfg.Logging, os.Stderr)
		cmd.SetContext(logger.WithContext(cmd.Context()))
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().String("config", "", "config file path (default: ./config/config.yaml)")
	rootCmd.PersistentFlags().String("log-level", "", "log level override (debug, info, warn, error)")

	rootCmd.AddCommand(versionCmd)
	rootCmd.AddCommand(buildCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(previewCmd)
	rootCmd.AddCommand(statusCmd)
}

// --- Version Command ---

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	Run: func(cmd *cobra.Command, args []string) {
		fmt.Printf("bizreport %s\n", version)
		fmt.Printf("  commit:  %s\n", commit)
		fmt.Printf("  built:   %s\n", date)
	},
}

// --- Build Command ---

var buildCmd = &cobra.Command{
	Use:   "build",
	Short: "Generate an HTML report from a dataset manifest",
	Example: `  bizreport build -m examples/report.yaml
  bizreport build -m examples/report.yaml -o business_report.html --title "Q2 Review"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		manifest, _ := cmd.Flags().GetString("manifest")
		output, _ := cmd.Flags().GetString("output")
		title, _ := cmd.Flags().GetString("title")
		if output == "" {
			output = cfg.Report.Output
		}

		ds, err := dataset.Load(manifest)
		if err != nil {
			return err
		}
		if title == "" {
			title = ds.Title
		}
		if title == "" {
			title = cfg.Report.Title
		}

		b := report.New(report.WithTitle(title), report.WithLogger(logger))
		rendered, err := b.Generate(ds.Sections, output)
		if err != nil {
			return err
		}
		fmt.Printf("Report written to %s (%d sections, generated %s)\n",
			rendered.Path, len(ds.Sections), utils.ReportTimestamp(rendered.GeneratedAt))
		return nil
	},
}

func init() {
	buildCmd.Flags().StringP("manifest", "m", "", "dataset manifest (YAML)")
	buildCmd.Flags().StringP("output", "o", "", "output file (default: report.output from config)")
	buildCmd.Flags().String("title", "", "report title override")
	_ = buildCmd.MarkFlagRequired("manifest")
}

// --- Send Command ---

var sendCmd = &cobra.Command{
	Use:   "send",
	Short: "Email a generated report as the HTML body",
	Long: `Send reads the report file and delivers it over SMTPS (implicit TLS).
The password comes from smtp.password or BIZREPORT_SMTP_PASSWORD.`,
	Example: `  bizreport send -r report.html --to boss@example.com --subject "Business Performance Report"`,
	RunE: func(cmd *cobra.Command, args []string) error {
		reportPath, _ := cmd.Flags().GetString("report")
		to, _ := cmd.Flags().GetString("to")
		from, _ := cmd.Flags().GetString("from")
		subject, _ := cmd.Flags().GetString("subject")
		if reportPath == "" {
			reportPath = cfg.Report.Output
		}
		if from == "" {
			from = cfg.SMTP.From
		}
		if from == "" {
			from = cfg.SMTP.Username
		}
		if from == "" {
			return errors.New("no sender address: set --from, smtp.from or smtp.username")
		}
		if subject == "" {
			subject = cfg.Report.Title
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		sender := mailer.New(cfg.SMTP, mailer.WithLogger(logger))
		err := sender.Send(ctx, mailer.Message{
			From:       from,
			To:         to,
			Subject:    subject,
			ReportPath: reportPath,
		})
		if err != nil {
			return err
		}
		fmt.Printf("Report %s sent to %s\n", reportPath, to)
		return nil
	},
}

func init() {
	sendCmd.Flags().StringP("report", "r", "", "report file (default: report.output from config)")
	sendCmd.Flags().String("to", "", "recipient address")
	sendCmd.Flags().String("from", "", "sender address (default: smtp.from from config)")
	sendCmd.Flags().String("subject", "", "subject line (default: report.title from config)")
	_ = sendCmd.MarkFlagRequired("to")
}

// --- Preview Command ---

var previewCmd = &cobra.Command{
	Use:   "preview",
	Short: "Serve a report locally for review before sending",
	RunE: func(cmd *cobra.Command, args []string) error {
		reportPath, _ := cmd.Flags().GetString("report")
		addr, _ := cmd.Flags().GetString("addr")
		if reportPath == "" {
			reportPath = cfg.Report.Output
		}
		if addr == "" {
			addr = cfg.Preview.Addr()
		}

		ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
		defer stop()

		fmt.Printf("Previewing %s at http://%s/ (Ctrl+C to stop)\n", reportPath, addr)
		srv := api.NewServer(cfg, reportPath, logger)
		if err := srv.ListenAndServe(ctx, addr); err != nil && !errors.Is(err, context.Canceled) {
			return err
		}
		return nil
	},
}

func init() {
	previewCmd.Flags().StringP("report", "r", "", "report file (default: report.output from config)")
	previewCmd.Flags().String("addr", "", "listen address (default: preview.host:preview.port)")
}

// --- Status Command ---

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show configuration and credential status",
	RunE: func(cmd *cobra.Command, args []string) error {
		fmt.Println("═══════════════════════════════════════")
		fmt.Println("  bizreport — Status")
		fmt.Println("═══════════════════════════════════════")
		fmt.Printf("  Version:       %s (%s)\n", version, commit)
		fmt.Println()

		fmt.Println("  Configuration:")
		fmt.Printf("    Report:        %s (%q)\n", cfg.Report.Output, cfg.Report.Title)
		fmt.Printf("    SMTP relay:    %s:%d (timeout %s)\n", cfg.SMTP.Host, cfg.SMTP.Port, utils.FormatDuration(cfg.SMTP.Timeout))
		fmt.Printf("    Sender:        %s\n", cfg.SMTP.From)
		fmt.Printf("    Preview:       %s\n", cfg.Preview.Addr())
		fmt.Println()

		fmt.Println("  Credentials:")
		for _, k := range config.CheckSecrets(cfg) {
			status := "not set"
			if k.IsSet {
				status = fmt.Sprintf("set (%s: %s)", k.Source, k.Masked)
			}
			fmt.Printf("    %-25s %s\n", k.Name+":", status)
		}

		fmt.Println("═══════════════════════════════════════")
		return nil
	},
}
