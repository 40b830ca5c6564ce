// Package pipeline runs the dataset steps for one interaction. Nothing is
// re-executed behind the caller's back: the dashboard calls Run on every
// control change and the CLI calls it once.
package pipeline

import (
	"fmt"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
	"github.com/KaramelBytes/pulseboard/internal/ingest"
	"github.com/KaramelBytes/pulseboard/internal/insight"
	"github.com/KaramelBytes/pulseboard/internal/monitoring"
	"github.com/KaramelBytes/pulseboard/internal/render"
)

// Options controls a Run.
type Options struct {
	PreviewRows int
	// SkipCharts leaves Result.Images empty; the plan is still computed.
	SkipCharts bool
	Render     render.Options
}

// Result is everything a view needs after one interaction.
type Result struct {
	Base *dataset.Dataset
	// BasePreview is the head of the loaded dataset, before any filter.
	BasePreview dataset.Preview
	Filtered    *dataset.Dataset
	Report      *insight.Report
	Filters     map[string][]string
	Charts      []render.Chart
	Images      []render.Image
}

// Load parses raw file bytes and returns the cleaned, typed dataset. A nil
// cache parses directly.
func Load(name string, data []byte, cache *ingest.Cache) (*dataset.Dataset, error) {
	var (
		tbl *ingest.Table
		err error
	)
	if cache != nil {
		tbl, err = cache.Parse(name, data)
	} else {
		tbl, err = ingest.Parse(name, data)
	}
	if err != nil {
		return nil, err
	}
	if tbl.Encoding != ingest.EncodingUTF8 {
		monitoring.Logf("pipeline: %s decoded as %s", name, tbl.Encoding)
	}
	ds, err := dataset.Normalize(name, tbl.Header, tbl.Records)
	if err != nil {
		return nil, fmt.Errorf("normalize %s: %w", name, err)
	}
	ds, err = dataset.Coerce(ds)
	if err != nil {
		return nil, fmt.Errorf("coerce %s: %w", name, err)
	}
	monitoring.Debugf("pipeline: loaded %s rows=%d cols=%d", name, ds.Len(), ds.Width())
	return ds, nil
}

// Run filters base by sel, then summarizes and draws the result. base is
// not modified.
func Run(base *dataset.Dataset, sel dataset.Selection, opt Options) (*Result, error) {
	if base == nil {
		return nil, fmt.Errorf("pipeline: no dataset")
	}
	filtered, err := base.Filter(sel)
	if err != nil {
		return nil, fmt.Errorf("filter %s: %w", base.Name, err)
	}
	res := &Result{
		Base:        base,
		BasePreview: base.Head(opt.PreviewRows),
		Filtered:    filtered,
		Filters:     FilterOptions(base, sel),
		Report: insight.BuildReport(filtered, insight.ReportOptions{
			SampleRows: opt.PreviewRows,
			Selection:  sel,
			BaseRows:   base.Len(),
		}),
		Charts: render.Plan(filtered),
	}
	if !opt.SkipCharts {
		res.Images = render.DrawAll(filtered, opt.Render)
	}
	monitoring.Debugf("pipeline: run %s kept=%d/%d charts=%d", base.Name, filtered.Len(), base.Len(), len(res.Charts))
	return res, nil
}

// FilterOptions lists the choices for every filter column present in ds.
// Columns are narrowed in order: activity choices come from ds, device
// choices from the rows left by the activity selection.
func FilterOptions(ds *dataset.Dataset, sel dataset.Selection) map[string][]string {
	out := map[string][]string{}
	cur := ds
	for _, col := range dataset.FilterColumns {
		if !cur.Has(col) {
			continue
		}
		out[col] = cur.Distinct(col)
		narrowed, err := cur.Filter(dataset.Selection{col: sel[col]})
		if err != nil {
			monitoring.Logf("pipeline: narrow %s options: %v", col, err)
			continue
		}
		cur = narrowed
	}
	return out
}
