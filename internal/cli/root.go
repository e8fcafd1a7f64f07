// Package cli es la línea de comandos "zoonica": consulta el backend
// directamente (sin gateway) y reproduce rutas para probar el seguimiento.
package cli

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"zoonica-gateway/internal/adapters/zoonica"
	"zoonica-gateway/internal/config"
	"zoonica-gateway/internal/platform/httpclient"
	"zoonica-gateway/internal/platform/logger"
)

var (
	apiURL     string
	apiTimeout time.Duration
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:           "zoonica",
	Short:         "zoonica consulta el historial médico y sigue ubicaciones desde la terminal",
	Long:          "zoonica es un cliente de terminal del backend Zoónica: historial médico, mascotas, eventos y seguimiento en vivo.",
	SilenceUsage:  true,
	SilenceErrors: true,
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&apiURL, "api", "", "URL base del backend (default: ZOONICA_API_BASE_URL)")
	rootCmd.PersistentFlags().DurationVar(&apiTimeout, "timeout", 0, "timeout por request (default: ZOONICA_API_TIMEOUT)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "log de depuración en stderr")
}

// settings combina flags y entorno; los flags mandan.
func settings() (config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return config.Config{}, err
	}
	if strings.TrimSpace(apiURL) != "" {
		cfg.APIBaseURL = apiURL
	}
	if apiTimeout > 0 {
		cfg.APITimeout = apiTimeout
	}
	return cfg, nil
}

func newLogger() logger.Logger {
	if !verbose {
		return logger.Nop()
	}
	return logger.New(logger.Options{Level: logger.Debug, Format: logger.FormatText, App: "zoonica", Sink: os.Stderr})
}

func newClient(cfg config.Config) (*zoonica.Client, error) {
	hc, err := httpclient.NewWithBaseURL(cfg.APIBaseURL, cfg.APITimeout,
		httpclient.WithRetries(cfg.APIRetries, httpclient.DefaultRetryWait),
		httpclient.WithUserAgent("zoonica-cli"),
	)
	if err != nil {
		return nil, err
	}
	return zoonica.New(hc, nil), nil
}
