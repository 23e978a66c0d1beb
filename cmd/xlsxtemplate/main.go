// Package main — CLI xlsxtemplate: рендер шаблона в файл и HTTP-сервис.
package main

import (
	"context"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/nikitaxru/xlsxtemplate"
	"github.com/nikitaxru/xlsxtemplate/internal/server"
	"github.com/nikitaxru/xlsxtemplate/internal/source"
)

var (
	templatePath string
	dataPath     string
	outputPath   string
	resolverName string
	debug        bool
	addr         string
)

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	rootCmd := &cobra.Command{
		Use:   "xlsxtemplate",
		Short: "Fill xlsx templates with JSON or YAML data",
		Long: `xlsxtemplate replaces ${path} and ${table:path} placeholders in an
xlsx template with values from a JSON or YAML document.`,
		SilenceUsage: true,
	}

	renderCmd := &cobra.Command{
		Use:   "render",
		Short: "Render a template into an xlsx file",
		Args:  cobra.NoArgs,
		RunE:  runRender,
	}
	renderCmd.Flags().StringVarP(&templatePath, "template", "t", "", "Template path or http(s) URL")
	renderCmd.Flags().StringVarP(&dataPath, "data", "d", "-", "Data file, - for stdin")
	renderCmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output path (default: \"<date> - Report.xlsx\")")
	renderCmd.Flags().StringVar(&resolverName, "resolver", "", "Accessor resolver: path or expr")
	renderCmd.Flags().BoolVar(&debug, "debug", false, "Log every substitution")
	_ = renderCmd.MarkFlagRequired("template")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP render service",
		Args:  cobra.NoArgs,
		RunE:  runServe,
	}
	serveCmd.Flags().StringVar(&addr, "addr", "", "Listen address (default from XLSXTEMPLATE_ADDR or :8080)")
	serveCmd.Flags().StringVar(&resolverName, "resolver", "", "Accessor resolver: path or expr")

	rootCmd.AddCommand(renderCmd, serveCmd)
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func loadConfig() (*xlsxtemplate.Config, error) {
	cfg := xlsxtemplate.ConfigFromEnvironment()
	if resolverName != "" {
		cfg.Resolver = resolverName
	}
	if debug {
		cfg.LogLevel = "debug"
	}
	if addr != "" {
		cfg.Addr = addr
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func runRender(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)

	tmpl, err := source.Fetch(cmd.Context(), templatePath, cfg.FetchTimeout)
	if err != nil {
		return fmt.Errorf("failed to load template: %w", err)
	}

	raw, err := readData(cmd.InOrStdin(), dataPath)
	if err != nil {
		return fmt.Errorf("failed to read data: %w", err)
	}
	data, err := xlsxtemplate.DecodeData(raw)
	if err != nil {
		return fmt.Errorf("failed to decode data: %w", err)
	}

	out, err := xlsxtemplate.Generate(cmd.Context(), tmpl, data, cfg.Options(logger)...)
	if err != nil {
		return fmt.Errorf("render failed: %w", err)
	}

	if outputPath == "" {
		outputPath = xlsxtemplate.DefaultFileName(time.Now())
	}
	if err := os.WriteFile(outputPath, out, 0644); err != nil {
		return fmt.Errorf("failed to write output: %w", err)
	}
	logger.Printf("📄 Результат сохранен в: %s", outputPath)
	return nil
}

func readData(stdin io.Reader, path string) ([]byte, error) {
	if path == "" || path == "-" {
		return io.ReadAll(stdin)
	}
	return os.ReadFile(path)
}

func runServe(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}
	logger := log.New(os.Stderr, "", log.LstdFlags)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return server.New(cfg, logger).ListenAndServe(ctx)
}
