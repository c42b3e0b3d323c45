package cli

import (
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"noveltrans/internal"
)

// CreateRootCommand creates and configures the root cobra command
func CreateRootCommand(flags *Flags) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "noveltrans",
		Short: "Parallel novel translator with a shared glossary",
		Long: `noveltrans translates novel chapters chapter by chapter, keeping a
shared glossary so names and terms stay consistent across the book.

Multiple API keys are rotated across parallel workers, and progress is
recorded so an interrupted run resumes where it stopped.

Examples:
  noveltrans --novel mybook                      # Translate all pending chapters
  noveltrans --novel mybook --file 42            # Translate one chapter
  noveltrans --novel mybook --range 10-20        # Translate a chapter range
  noveltrans --novel mybook --parallel -w 5      # Five parallel workers
  noveltrans --novel mybook --stats              # Show progress and exit
  noveltrans split -i raw.txt -n mybook          # Split a raw file into chapters
  noveltrans merge -n mybook                     # Merge translated chapters`,
		Args:    cobra.NoArgs,
		Version: internal.Version,
	}

	setupFlags(rootCmd, flags)

	return rootCmd
}

func setupFlags(cmd *cobra.Command, flags *Flags) {
	// Global flags
	cmd.PersistentFlags().StringVar(&flags.CfgFile, "config", "", "config file (default is $HOME/.noveltrans.yaml)")

	// Local flags
	cmd.Flags().StringVarP(&flags.Novel, "novel", "n", "", "Novel name (directory under the source root)")
	cmd.Flags().StringVar(&flags.SourceDir, "source", flags.SourceDir, "Source root directory")
	cmd.Flags().StringVarP(&flags.OutputDir, "output", "o", flags.OutputDir, "Output root directory")
	cmd.Flags().StringVar(&flags.ProgressDir, "progress-dir", flags.ProgressDir, "Directory for progress ledgers")
	cmd.Flags().StringVar(&flags.GlossaryDir, "glossary-dir", flags.GlossaryDir, "Root directory for per-novel glossaries")
	cmd.Flags().StringVar(&flags.PromptDir, "prompt-dir", "", "Directory with prompt template overrides")
	cmd.Flags().StringVar(&flags.ArchiveDB, "archive-db", "", "SQLite archive database path (empty disables archiving)")

	cmd.Flags().IntVar(&flags.Chapter, "file", 0, "Translate a single chapter by number")
	cmd.Flags().StringVar(&flags.RangeSpec, "range", "", "Translate a chapter range, e.g. 5-10")
	cmd.Flags().IntVar(&flags.Start, "start", 0, "First chapter number to translate")
	cmd.Flags().IntVar(&flags.Count, "count", 0, "Number of chapters to translate from --start")

	cmd.Flags().BoolVarP(&flags.Parallel, "parallel", "p", false, "Translate chapters in parallel")
	cmd.Flags().IntVarP(&flags.Workers, "workers", "w", flags.Workers, "Number of parallel workers (max 10)")
	cmd.Flags().BoolVar(&flags.Force, "force", false, "Re-translate chapters already marked complete")
	cmd.Flags().BoolVar(&flags.Reset, "reset", false, "Reset the novel's progress ledger and exit")
	cmd.Flags().BoolVar(&flags.Stats, "stats", false, "Print translation progress and exit")

	cmd.Flags().StringVar(&flags.Provider, "provider", flags.Provider, "Translation provider: openai or gemini")
	cmd.Flags().StringVar(&flags.Model, "model", flags.Model, "Model name")
	cmd.Flags().StringVar(&flags.BaseURL, "base-url", "", "Override the API base URL (openai provider)")

	// Bind flags to viper
	bindFlagsToViper(cmd)
}

func bindFlagsToViper(cmd *cobra.Command) {
	viper.BindPFlag("source.directory", cmd.Flags().Lookup("source"))
	viper.BindPFlag("output.directory", cmd.Flags().Lookup("output"))
	viper.BindPFlag("progress.directory", cmd.Flags().Lookup("progress-dir"))
	viper.BindPFlag("glossary.directory", cmd.Flags().Lookup("glossary-dir"))
	viper.BindPFlag("prompt.directory", cmd.Flags().Lookup("prompt-dir"))
	viper.BindPFlag("archive.database", cmd.Flags().Lookup("archive-db"))
	viper.BindPFlag("workers.count", cmd.Flags().Lookup("workers"))
	viper.BindPFlag("api.provider", cmd.Flags().Lookup("provider"))
	viper.BindPFlag("api.model", cmd.Flags().Lookup("model"))
	viper.BindPFlag("api.base_url", cmd.Flags().Lookup("base-url"))
}

// ResolveConfig reads the effective settings back out of viper, so values
// from the config file and environment take effect. An explicit flag still
// wins over the config file, which wins over the flag default.
func (f *Flags) ResolveConfig() {
	f.SourceDir = viper.GetString("source.directory")
	f.OutputDir = viper.GetString("output.directory")
	f.ProgressDir = viper.GetString("progress.directory")
	f.GlossaryDir = viper.GetString("glossary.directory")
	f.PromptDir = viper.GetString("prompt.directory")
	f.ArchiveDB = viper.GetString("archive.database")
	f.Workers = viper.GetInt("workers.count")
	f.Provider = viper.GetString("api.provider")
	f.Model = viper.GetString("api.model")
	f.BaseURL = viper.GetString("api.base_url")
}

// InitConfig initializes viper configuration
func InitConfig(cfgFile string) {
	if cfgFile != "" {
		// Use config file from the flag
		viper.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error getting home directory: %v\n", err)
			return
		}

		// Search config in home directory with name ".noveltrans" (without extension)
		viper.AddConfigPath(home)
		viper.AddConfigPath(".")
		viper.SetConfigType("yaml")
		viper.SetConfigName(".noveltrans")
	}

	// Environment variables: NOVELTRANS_API_KEY resolves api.key and so on.
	viper.SetEnvPrefix("NOVELTRANS")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Read config file
	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}
