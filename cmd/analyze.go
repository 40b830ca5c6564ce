package cmd

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
	"github.com/KaramelBytes/pulseboard/internal/ingest"
	"github.com/KaramelBytes/pulseboard/internal/insight"
	"github.com/KaramelBytes/pulseboard/internal/pipeline"
	"github.com/KaramelBytes/pulseboard/internal/render"
	"github.com/KaramelBytes/pulseboard/internal/utils"
	"github.com/spf13/cobra"
)

var (
	anaOutputPath string
	anaChartsDir  string
	anaJSON       bool
	anaSampleRows int
	anaActivity   []string
	anaDevice     []string
)

// analyzeOptions is what analyze and analyze-batch share.
type analyzeOptions struct {
	selection  dataset.Selection
	sampleRows int
	chartsDir  string
	asJSON     bool
}

// chartFile is a chart written to disk.
type chartFile struct {
	ID    string `json:"id"`
	Title string `json:"title"`
	Path  string `json:"path"`
}

// analysisJSON is the --json output.
type analysisJSON struct {
	*insight.Report
	Charts []chartFile `json:"charts,omitempty"`
}

var analyzeCmd = &cobra.Command{
	Use:   "analyze <file>",
	Short: "Clean a health CSV and print its summary and key insights",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		opt := analyzeOptions{
			selection: dataset.Selection{
				dataset.ColActivity: anaActivity,
				dataset.ColDevice:   anaDevice,
			},
			sampleRows: anaSampleRows,
			chartsDir:  anaChartsDir,
			asJSON:     anaJSON,
		}
		out, charts, err := analyzeFile(args[0], opt)
		if err != nil {
			return err
		}
		for _, c := range charts {
			fmt.Fprintf(cmd.ErrOrStderr(), "✓ Wrote chart %s\n", c.Path)
		}
		if anaOutputPath != "" {
			if err := utils.SafeWriteFile(anaOutputPath, out); err != nil {
				return fmt.Errorf("write output: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "✓ Wrote analysis to %s\n", anaOutputPath)
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), string(out))
		return nil
	},
}

// analyzeFile runs the pipeline once over path and returns the rendered
// report (Markdown or JSON) and any charts written to opt.chartsDir.
func analyzeFile(path string, opt analyzeOptions) ([]byte, []chartFile, error) {
	if !ingest.Supported(path) {
		return nil, nil, fmt.Errorf("%s: %w", path, ingest.ErrUnsupported)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("read %s: %w", path, err)
	}
	c := currentConfig()
	base, err := pipeline.Load(filepath.Base(path), data, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("load %s: %w", path, err)
	}
	res, err := pipeline.Run(base, opt.selection, pipeline.Options{
		PreviewRows: opt.sampleRows,
		SkipCharts:  opt.chartsDir == "",
		Render: render.Options{
			Bins:     c.HistogramBins,
			WidthIn:  c.ChartWidthIn,
			HeightIn: c.ChartHeightIn,
		},
	})
	if err != nil {
		return nil, nil, err
	}

	var charts []chartFile
	if opt.chartsDir != "" {
		if err := utils.EnsureDir(opt.chartsDir); err != nil {
			return nil, nil, fmt.Errorf("create charts dir: %w", err)
		}
		for _, img := range res.Images {
			p := filepath.Join(opt.chartsDir, img.Chart.ID+".png")
			if err := utils.SafeWriteFile(p, img.PNG); err != nil {
				return nil, nil, fmt.Errorf("write chart %s: %w", img.Chart.ID, err)
			}
			charts = append(charts, chartFile{ID: img.Chart.ID, Title: img.Chart.Title, Path: p})
		}
	}

	if opt.asJSON {
		b, err := utils.PrettyJSON(analysisJSON{Report: res.Report, Charts: charts})
		if err != nil {
			return nil, nil, err
		}
		return b, charts, nil
	}
	return []byte(res.Report.Markdown()), charts, nil
}

func init() {
	rootCmd.AddCommand(analyzeCmd)
	analyzeCmd.Flags().StringVarP(&anaOutputPath, "output", "o", "", "optional path to write the analysis")
	analyzeCmd.Flags().StringVar(&anaChartsDir, "charts-dir", "", "write PNG charts into this directory")
	analyzeCmd.Flags().BoolVar(&anaJSON, "json", false, "emit JSON instead of Markdown")
	analyzeCmd.Flags().IntVar(&anaSampleRows, "sample-rows", 10, "number of preview rows to include (0 disables)")
	analyzeCmd.Flags().StringSliceVar(&anaActivity, "activity", nil, "keep only these activities (repeatable, comma-separated)")
	analyzeCmd.Flags().StringSliceVar(&anaDevice, "device", nil, "keep only these devices (repeatable, comma-separated)")
}
