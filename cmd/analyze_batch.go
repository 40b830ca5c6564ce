package cmd

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
	"github.com/KaramelBytes/pulseboard/internal/utils"
	"github.com/spf13/cobra"
)

var (
	abOutputDir  string
	abSampleRows int
	abActivity   []string
	abDevice     []string
	abCharts     bool
	abJSON       bool
	abQuiet      bool
)

var analyzeBatchCmd = &cobra.Command{
	Use:   "analyze-batch <files...>",
	Short: "Analyze multiple health CSV files and write one summary per file",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		files := expandInputs(args)
		if len(files) == 0 {
			return fmt.Errorf("no input files matched")
		}
		if abOutputDir != "" {
			if err := utils.EnsureDir(abOutputDir); err != nil {
				return fmt.Errorf("create output dir: %w", err)
			}
		}
		out := cmd.OutOrStdout()
		ext := ".summary.md"
		if abJSON {
			ext = ".summary.json"
		}

		total := len(files)
		for i, path := range files {
			if !abQuiet {
				fmt.Fprintf(out, "[%d/%d] Processing %s...\n", i+1, total, filepath.Base(path))
			}
			var outFile string
			opt := analyzeOptions{
				selection: dataset.Selection{
					dataset.ColActivity: abActivity,
					dataset.ColDevice:   abDevice,
				},
				sampleRows: abSampleRows,
				asJSON:     abJSON,
			}
			if abOutputDir != "" {
				outFile = uniquePath(abOutputDir, utils.Stem(path), ext)
				if abCharts {
					opt.chartsDir = outFile[:len(outFile)-len(ext)] + "_charts"
				}
			}
			body, _, err := analyzeFile(path, opt)
			if err != nil {
				return err
			}
			if outFile == "" {
				if !abQuiet {
					fmt.Fprintln(out, string(body))
				}
				continue
			}
			if err := utils.SafeWriteFile(outFile, body); err != nil {
				return fmt.Errorf("write summary: %w", err)
			}
			if !abQuiet {
				fmt.Fprintf(out, "✓ Wrote %s\n", outFile)
			}
		}
		return nil
	},
}

// expandInputs resolves globs, keeps literal paths that exist, and drops
// duplicates.
func expandInputs(args []string) []string {
	var files []string
	seen := map[string]struct{}{}
	for _, arg := range args {
		matches, _ := filepath.Glob(arg)
		if len(matches) == 0 {
			// treat as literal path if exists
			if _, err := os.Stat(arg); err == nil {
				matches = []string{arg}
			}
		}
		for _, m := range matches {
			if _, ok := seen[m]; ok {
				continue
			}
			seen[m] = struct{}{}
			files = append(files, m)
		}
	}
	sort.Strings(files)
	return files
}

// uniquePath returns dir/stem+ext, or dir/stem__N+ext when that exists.
func uniquePath(dir, stem, ext string) string {
	p := filepath.Join(dir, stem+ext)
	if _, err := os.Stat(p); os.IsNotExist(err) {
		return p
	}
	for idx := 2; ; idx++ {
		cand := filepath.Join(dir, fmt.Sprintf("%s__%d%s", stem, idx, ext))
		if _, err := os.Stat(cand); os.IsNotExist(err) {
			return cand
		}
	}
}

func init() {
	rootCmd.AddCommand(analyzeBatchCmd)
	analyzeBatchCmd.Flags().StringVar(&abOutputDir, "output-dir", "", "directory for per-file summaries (stdout if empty)")
	analyzeBatchCmd.Flags().IntVar(&abSampleRows, "sample-rows", 5, "number of preview rows to include (0 disables)")
	analyzeBatchCmd.Flags().StringSliceVar(&abActivity, "activity", nil, "keep only these activities")
	analyzeBatchCmd.Flags().StringSliceVar(&abDevice, "device", nil, "keep only these devices")
	analyzeBatchCmd.Flags().BoolVar(&abCharts, "charts", false, "also write PNG charts next to each summary (needs --output-dir)")
	analyzeBatchCmd.Flags().BoolVar(&abJSON, "json", false, "write JSON summaries instead of Markdown")
	analyzeBatchCmd.Flags().BoolVar(&abQuiet, "quiet", false, "suppress progress and non-essential output")
}
