package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"noveltrans/internal/chapter"
)

// newSplitCommand splits one raw novel file into numbered chapter files
// under the source root, ready for translation.
func newSplitCommand() *cobra.Command {
	var (
		input      string
		novel      string
		sourceRoot string
		lang       string
		maxChars   int
	)
	cmd := &cobra.Command{
		Use:   "split",
		Short: "Split a raw novel file into numbered chapter files",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if input == "" {
				return fmt.Errorf("--input is required")
			}
			ext := strings.ToLower(filepath.Ext(input))
			if ext != ".txt" && ext != ".md" {
				return fmt.Errorf("unsupported input format %q, need .txt or .md", ext)
			}
			data, err := os.ReadFile(input)
			if err != nil {
				return err
			}
			if novel == "" {
				novel = strings.TrimSuffix(filepath.Base(input), ext)
			}
			if sourceRoot == "" {
				sourceRoot = configuredDir("source.directory", "source")
			}

			chunks := chapter.Split(string(data), lang, maxChars)
			dir := filepath.Join(sourceRoot, novel)
			if err := chapter.WriteChunks(dir, chunks); err != nil {
				return err
			}
			fmt.Printf("Split %s into %d chapter(s) in %s\n", input, len(chunks), dir)
			return nil
		},
	}

	cmd.Flags().StringVarP(&input, "input", "i", "", "Raw novel file (.txt or .md)")
	cmd.Flags().StringVarP(&novel, "novel", "n", "", "Novel name (default: input file name)")
	cmd.Flags().StringVar(&sourceRoot, "source", "", "Source root directory")
	cmd.Flags().StringVarP(&lang, "language", "l", "ko", "Source language: ko or ja")
	cmd.Flags().IntVar(&maxChars, "max-chars", chapter.DefaultMaxChunk, "Chunk size cap in characters")
	return cmd
}

// newMergeCommand assembles a novel's translated chapters into one volume.
func newMergeCommand() *cobra.Command {
	var (
		novel      string
		outputRoot string
		outBase    string
		header     string
		footer     string
		format     string
	)
	cmd := &cobra.Command{
		Use:   "merge",
		Short: "Merge translated chapters into a single volume",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if novel == "" {
				return fmt.Errorf("--novel is required")
			}
			if outputRoot == "" {
				outputRoot = configuredDir("output.directory", "output")
			}
			var exts []string
			switch format {
			case "md":
				exts = []string{".md"}
			case "txt":
				exts = []string{".txt"}
			case "both":
				exts = []string{".md", ".txt"}
			default:
				return fmt.Errorf("invalid --format %q, need md, txt or both", format)
			}

			dir := filepath.Join(outputRoot, novel)
			if outBase == "" {
				outBase = filepath.Join(outputRoot, novel+"_full")
			}
			for _, ext := range exts {
				path := outBase + ext
				f, err := os.Create(path)
				if err != nil {
					return err
				}
				merged, err := chapter.MergeFiles(dir, chapter.DefaultExtension, f, header, footer)
				if cerr := f.Close(); err == nil {
					err = cerr
				}
				if err != nil {
					return err
				}
				fmt.Printf("Merged %d chapter(s) into %s\n", merged, path)
			}
			return nil
		},
	}

	cmd.Flags().StringVarP(&novel, "novel", "n", "", "Novel name (directory under the output root)")
	cmd.Flags().StringVar(&outputRoot, "output", "", "Output root directory")
	cmd.Flags().StringVar(&outBase, "out", "", "Merged file path without extension (default <output>/<novel>_full)")
	cmd.Flags().StringVar(&header, "header", "", "Text placed before the first chapter")
	cmd.Flags().StringVar(&footer, "footer", "", "Text placed after the last chapter")
	cmd.Flags().StringVar(&format, "format", "both", "Output format: md, txt or both")
	return cmd
}

// configuredDir resolves a directory from the config file when the flag was
// not given.
func configuredDir(key, fallback string) string {
	if v := viper.GetString(key); v != "" {
		return v
	}
	return fallback
}
