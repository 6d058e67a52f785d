// Package main provides the pdfua_fixer CLI: tag a PDF, validate it against PDF/UA,
// apply the known fixes and validate again.
package main

import (
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
)

var rootCmd = &cobra.Command{
	Use:   "pdfua_fixer",
	Short: "PDF/UA remediation tool",
	Long: `pdfua_fixer auto-tags a PDF, validates it against PDF/UA (ISO 14289-1) with an
external validator, applies fixes for the violated clauses it knows about and validates
the result again.`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

var (
	configPath       string
	verbose          bool
	logFormat        string
	validatorCommand string
	validatorJar     string
	flavour          string
	validatorTimeout string
	databaseURL      string
	metricsFile      string
)

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configPath, "config", "", "Path to a JSON or YAML config file (values can be overridden by other flags)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "Debug logging and boxed reports")
	flags.StringVar(&logFormat, "log-format", "", "Log format: text or json")
	flags.StringVar(&validatorCommand, "validator", "", "Validator command (defaults to PDFUA_VALIDATOR or verapdf)")
	flags.StringVar(&validatorJar, "validator-jar", "", "Run the validator as java -jar <jar> (defaults to PDFUA_VALIDATOR_JAR)")
	flags.StringVar(&flavour, "flavour", "", "Validation profile: ua1 or ua2")
	flags.StringVar(&validatorTimeout, "timeout", "", "Validator timeout, e.g. 90s; 0 disables it")
	flags.StringVar(&databaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	flags.StringVar(&metricsFile, "metrics-file", "", "Write Prometheus metrics to this file after the command")
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
