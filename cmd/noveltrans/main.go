package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/spf13/cobra"

	"noveltrans/internal/archive"
	"noveltrans/internal/chapter"
	"noveltrans/internal/cli"
	"noveltrans/internal/credential"
	"noveltrans/internal/glossary"
	"noveltrans/internal/progress"
	"noveltrans/internal/prompt"
	"noveltrans/internal/provider"
	"noveltrans/internal/worker"
)

func main() {
	// Create flags instance
	flags := cli.NewFlags()

	// Create root command
	rootCmd := cli.CreateRootCommand(flags)

	// Set up command initialization
	cobra.OnInitialize(func() {
		cli.InitConfig(flags.CfgFile)
	})

	// Set the run function
	rootCmd.RunE = func(cmd *cobra.Command, args []string) error {
		return runCommand(cmd, flags)
	}

	rootCmd.AddCommand(newSplitCommand(), newMergeCommand())

	// Execute command
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func runCommand(cmd *cobra.Command, flags *cli.Flags) error {
	flags.ResolveConfig()
	if flags.Novel == "" {
		return fmt.Errorf("--novel is required")
	}

	ledger := progress.NewLedger(flags.ProgressDir, flags.Novel)
	if err := ledger.Load(); err != nil {
		return err
	}

	// Handle --reset flag
	if flags.Reset {
		if err := ledger.Reset(); err != nil {
			return fmt.Errorf("failed to reset progress: %w", err)
		}
		fmt.Printf("Progress for %q reset\n", flags.Novel)
		return nil
	}

	// Handle --stats flag
	if flags.Stats {
		stats := ledger.Stats()
		// Total is the number of known source chapters when the source
		// tree is reachable; best effort, stats must work without it.
		if lib, err := chapter.NewLibrary(flags.SourceDir, flags.OutputDir, flags.Novel, "", ""); err == nil {
			if nums, err := lib.Numbers(); err == nil {
				stats.Total = len(nums)
			}
		}
		printStats(flags.Novel, stats)

		gloss := glossary.NewStore(filepath.Join(flags.GlossaryDir, flags.Novel))
		if err := gloss.Load(); err == nil {
			printGlossaryStats(gloss)
		}
		return nil
	}

	keys := cli.APIKeys()
	if len(keys) == 0 {
		return fmt.Errorf("no API keys configured: set API_KEY (and optionally API_KEY_1..%d)", 19)
	}

	library, err := chapter.NewLibrary(flags.SourceDir, flags.OutputDir, flags.Novel, "", "")
	if err != nil {
		return err
	}

	gloss := glossary.NewStore(filepath.Join(flags.GlossaryDir, flags.Novel))
	if err := gloss.Load(); err != nil {
		return err
	}

	prompts := prompt.NewBuilder("", "")
	if flags.PromptDir != "" {
		if err := prompts.LoadOverrides(flags.PromptDir); err != nil {
			return err
		}
	}

	rotator, err := credential.NewRotator(keys)
	if err != nil {
		return err
	}

	// One provider client per key so a worker always calls with the
	// credential the rotator handed out.
	providers := make([]provider.Provider, len(keys))
	for i, key := range keys {
		cfg := provider.DefaultConfig()
		cfg.Provider = flags.Provider
		cfg.APIKey = key
		cfg.Model = flags.Model
		cfg.BaseURL = flags.BaseURL
		p, err := provider.New(cfg)
		if err != nil {
			return err
		}
		providers[i] = p
	}

	var arch *archive.Store
	if flags.ArchiveDB != "" {
		arch, err = archive.Open(flags.ArchiveDB)
		if err != nil {
			return err
		}
		defer arch.Close()
	}

	available, err := library.Numbers()
	if err != nil {
		return err
	}
	if len(available) == 0 {
		return fmt.Errorf("no source chapters found in %s", library.SourceDir())
	}

	chapters, err := flags.SelectChapters(available)
	if err != nil {
		return err
	}

	workers := flags.Workers
	if !flags.Parallel {
		workers = 1
	}
	if workers > worker.MaxWorkers {
		fmt.Fprintf(os.Stderr, "Warning: capping workers at %d\n", worker.MaxWorkers)
		workers = worker.MaxWorkers
	}

	coord, err := worker.NewCoordinator(worker.Config{
		Novel:     flags.Novel,
		Providers: providers,
		Rotator:   rotator,
		Glossary:  gloss,
		Ledger:    ledger,
		Library:   library,
		Prompts:   prompts,
		Archive:   arch,
		Workers:   workers,
		Force:     flags.Force,
	})
	if err != nil {
		return err
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var result worker.Result
	if flags.Parallel {
		result, err = coord.RunParallel(ctx, chapters)
	} else {
		result, err = coord.RunSerial(ctx, chapters)
	}

	printSummary(result)
	if err != nil {
		return fmt.Errorf("run interrupted: %w", err)
	}
	if len(result.Failed) > 0 {
		return fmt.Errorf("%d chapter(s) failed", len(result.Failed))
	}
	return nil
}

func printSummary(res worker.Result) {
	fmt.Printf("\nCompleted: %d chapter(s)\n", len(res.CompletedChapters))
	if len(res.Skipped) > 0 {
		fmt.Printf("Not dispatched: %v\n", res.Skipped)
	}
	for _, n := range sortedKeys(res.Failed) {
		fmt.Fprintf(os.Stderr, "Failed chapter %d: %v\n", n, res.Failed[n])
	}
	fmt.Printf("Key usage: %d key(s), usage %v, errors %v\n",
		res.Keys.Keys, res.Keys.Usage, res.Keys.Errors)
	printStats("", res.Stats)
}

func printStats(novel string, s progress.Stats) {
	if novel != "" {
		fmt.Printf("Progress for %q:\n", novel)
	}
	if s.Total > 0 {
		fmt.Printf("  Chapters completed: %d/%d (last: %d)\n", s.Completed, s.Total, s.LastChapter)
	} else {
		fmt.Printf("  Chapters completed: %d (last: %d)\n", s.Completed, s.LastChapter)
	}
	if s.Failed > 0 || s.InProgress > 0 {
		fmt.Printf("  Failed: %d, in progress: %d\n", s.Failed, s.InProgress)
	}
	fmt.Printf("  Elapsed: %s", s.Elapsed.Round(time.Second))
	if s.PerHour > 0 {
		fmt.Printf(", %.1f chapters/hour", s.PerHour)
	}
	fmt.Println()
}

func printGlossaryStats(g *glossary.Store) {
	total := 0
	for _, cat := range glossary.AllCategories {
		total += g.Len(cat)
	}
	fmt.Printf("  Glossary: %d term(s)", total)
	for _, cat := range glossary.AllCategories {
		fmt.Printf(", %s %d", cat, g.Len(cat))
	}
	fmt.Println()
}

func sortedKeys(m map[int]error) []int {
	out := make([]int, 0, len(m))
	for n := range m {
		out = append(out, n)
	}
	sort.Ints(out)
	return out
}
