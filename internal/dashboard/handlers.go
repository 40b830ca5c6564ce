package dashboard

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"io"
	"net/http"
	"net/url"
	"path/filepath"
	"strings"
	"time"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"

	"github.com/KaramelBytes/pulseboard/internal/dataset"
	"github.com/KaramelBytes/pulseboard/internal/httputil"
	"github.com/KaramelBytes/pulseboard/internal/insight"
	"github.com/KaramelBytes/pulseboard/internal/monitoring"
	"github.com/KaramelBytes/pulseboard/internal/pipeline"
	"github.com/KaramelBytes/pulseboard/internal/render"
)

const pageTemplate = "dashboard.html"

// pageData feeds templates/dashboard.html.
type pageData struct {
	Title    string
	Sample   bool
	HasData  bool
	FileName string
	Error    string
	Caption  string
	Explore  template.URL
	Filters  []filterControl
	Preview  dataset.Preview
	Sections []pageSection
	Insights []insight.Insight
	Notes    []string
}

type filterControl struct {
	Name    string
	Label   string
	Options []filterOption
}

type filterOption struct {
	Value    string
	Selected bool
}

type pageSection struct {
	Title  string
	Charts []pageChart
}

type pageChart struct {
	ID    string
	Title string
	Src   template.URL
}

// selectionFromQuery reads repeated activity=...&device=... parameters.
func selectionFromQuery(q url.Values) dataset.Selection {
	sel := dataset.Selection{}
	for _, field := range dataset.FilterColumns {
		for _, v := range q[field] {
			if v = strings.TrimSpace(v); v != "" {
				sel[field] = append(sel[field], v)
			}
		}
	}
	return sel
}

func (s *Server) runOptions() pipeline.Options {
	return pipeline.Options{PreviewRows: s.cfg.PreviewRows, Render: s.cfg.Render}
}

func (s *Server) handleIndex(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/" {
		http.NotFound(w, r)
		return
	}
	if r.Method != http.MethodGet && r.Method != http.MethodHead {
		httputil.MethodNotAllowed(w)
		return
	}
	sess := s.store.Acquire(w, r)
	data, err := s.buildPage(sess, selectionFromQuery(r.URL.Query()))
	if err != nil {
		monitoring.Logf("dashboard: build page: %v", err)
		httputil.InternalServerError(w, "failed to render dashboard")
		return
	}
	s.writePage(w, http.StatusOK, data)
}

func (s *Server) buildPage(sess Session, sel dataset.Selection) (*pageData, error) {
	data := &pageData{Title: Title, Sample: sess.Sample}
	ds := sess.View()
	if ds == nil {
		return data, nil
	}
	res, err := pipeline.Run(ds, sel, s.runOptions())
	if err != nil {
		return nil, err
	}
	data.HasData = true
	data.FileName = ds.Name
	data.Caption = fmt.Sprintf("Rows: %s | Columns: %d", insight.FormatCount(res.Base.Len()), res.Base.Width())
	data.Explore = template.URL("/explore")
	if q := encodeSelection(sel); q != "" {
		data.Explore = template.URL("/explore?" + q)
	}
	data.Preview = res.BasePreview
	data.Insights = res.Report.Insights
	data.Notes = res.Report.Notes
	title := cases.Title(language.English)
	for _, col := range dataset.FilterColumns {
		opts, ok := res.Filters[col]
		if !ok {
			continue
		}
		chosen := map[string]bool{}
		for _, v := range sel[col] {
			chosen[v] = true
		}
		fc := filterControl{Name: col, Label: title.String(col)}
		for _, o := range opts {
			fc.Options = append(fc.Options, filterOption{Value: o, Selected: chosen[o]})
		}
		data.Filters = append(data.Filters, fc)
	}
	data.Sections = chartSections(res.Images)
	return data, nil
}

func chartSections(images []render.Image) []pageSection {
	order := []string{render.SectionDistributions, render.SectionByActivity, render.SectionRelationships}
	bySection := map[string][]pageChart{}
	for _, img := range images {
		bySection[img.Chart.Section] = append(bySection[img.Chart.Section], pageChart{
			ID:    img.Chart.ID,
			Title: img.Chart.Title,
			Src:   template.URL("data:image/png;base64," + base64.StdEncoding.EncodeToString(img.PNG)),
		})
	}
	var out []pageSection
	for _, name := range order {
		if charts := bySection[name]; len(charts) > 0 {
			out = append(out, pageSection{Title: name, Charts: charts})
		}
	}
	return out
}

func encodeSelection(sel dataset.Selection) string {
	q := url.Values{}
	for _, f := range sel.Fields() {
		q[f] = sel[f]
	}
	return q.Encode()
}

func (s *Server) writePage(w http.ResponseWriter, status int, data *pageData) {
	var buf bytes.Buffer
	if err := s.templates.ExecuteTemplate(&buf, pageTemplate, data); err != nil {
		monitoring.Logf("dashboard: execute template: %v", err)
		httputil.InternalServerError(w, "failed to render dashboard")
		return
	}
	httputil.WriteHTMLStatus(w, status, buf.Bytes())
}

func (s *Server) handleUpload(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	sess := s.store.Acquire(w, r)
	fail := func(status int, msg string) {
		data, err := s.buildPage(sess, nil)
		if err != nil {
			data = &pageData{Title: Title}
		}
		data.Error = msg
		s.writePage(w, status, data)
	}

	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.MaxUploadBytes)
	file, hdr, err := r.FormFile("file")
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			fail(http.StatusRequestEntityTooLarge, fmt.Sprintf("File is larger than %d MB.", s.cfg.MaxUploadBytes>>20))
			return
		}
		fail(http.StatusBadRequest, "Choose a CSV file to upload.")
		return
	}
	defer file.Close()

	switch strings.ToLower(filepath.Ext(hdr.Filename)) {
	case ".csv", ".tsv":
	default:
		fail(http.StatusBadRequest, fmt.Sprintf("Unsupported file type %q: upload a .csv or .tsv file.", hdr.Filename))
		return
	}
	raw, err := io.ReadAll(file)
	if err != nil {
		fail(http.StatusBadRequest, fmt.Sprintf("Could not read %s: %v", hdr.Filename, err))
		return
	}
	ds, err := pipeline.Load(hdr.Filename, raw, s.cache)
	if err != nil {
		monitoring.Logf("dashboard: load %s: %v", hdr.Filename, err)
		fail(http.StatusBadRequest, fmt.Sprintf("Could not read %s: %v", hdr.Filename, err))
		return
	}
	s.store.Update(sess.ID, func(cur *Session) {
		cur.Dataset = ds
		cur.Sample = false
	})
	monitoring.Logf("dashboard: session %s loaded %s (%d rows, %d columns)", sess.ID, ds.Name, ds.Len(), ds.Width())
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleSample(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	sess := s.store.Acquire(w, r)
	s.store.Update(sess.ID, func(cur *Session) { cur.Sample = !cur.Sample })
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleReset(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		httputil.MethodNotAllowed(w)
		return
	}
	sess := s.store.Acquire(w, r)
	s.store.Update(sess.ID, func(cur *Session) {
		cur.Dataset = nil
		cur.Sample = false
	})
	http.Redirect(w, r, "/", http.StatusSeeOther)
}

func (s *Server) handleExplore(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	sess := s.store.Acquire(w, r)
	ds := sess.View()
	if ds == nil {
		httputil.WriteJSONError(w, http.StatusNotFound, "no dataset loaded")
		return
	}
	filtered, err := ds.Filter(selectionFromQuery(r.URL.Query()))
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	var buf bytes.Buffer
	err = render.Explore(&buf, filtered, render.ExploreOptions{AssetsHost: s.cfg.AssetsHost})
	if errors.Is(err, render.ErrNothingToExplore) {
		httputil.WriteJSONError(w, http.StatusNotFound, err.Error())
		return
	}
	if err != nil {
		monitoring.Logf("dashboard: explore: %v", err)
		httputil.InternalServerError(w, "failed to render explore page")
		return
	}
	httputil.WriteHTML(w, buf.Bytes())
}

// summaryResponse is the JSON body of /api/summary.
type summaryResponse struct {
	Loaded    bool                `json:"loaded"`
	Sample    bool                `json:"sample"`
	Name      string              `json:"name,omitempty"`
	Rows      int                 `json:"rows"`
	BaseRows  int                 `json:"base_rows"`
	Columns   []string            `json:"columns"`
	Filters   map[string][]string `json:"filters"`
	Selection dataset.Selection   `json:"selection,omitempty"`
	Insights  []insight.Insight   `json:"insights"`
	Charts    []render.Chart      `json:"charts"`
}

func (s *Server) handleSummary(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		httputil.MethodNotAllowed(w)
		return
	}
	sess := s.store.Acquire(w, r)
	resp := summaryResponse{
		Sample:   sess.Sample,
		Columns:  []string{},
		Filters:  map[string][]string{},
		Insights: []insight.Insight{},
		Charts:   []render.Chart{},
	}
	ds := sess.View()
	if ds == nil {
		httputil.WriteJSONOK(w, resp)
		return
	}
	sel := selectionFromQuery(r.URL.Query())
	opt := s.runOptions()
	opt.SkipCharts = true
	res, err := pipeline.Run(ds, sel, opt)
	if err != nil {
		httputil.InternalServerError(w, err.Error())
		return
	}
	resp.Loaded = true
	resp.Name = ds.Name
	resp.Rows = res.Filtered.Len()
	resp.BaseRows = ds.Len()
	resp.Columns = append(resp.Columns, res.Filtered.Columns()...)
	resp.Filters = res.Filters
	if sel.Active() {
		resp.Selection = sel
	}
	resp.Insights = append(resp.Insights, res.Report.Insights...)
	resp.Charts = append(resp.Charts, res.Charts...)
	httputil.WriteJSONOK(w, resp)
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	httputil.WriteJSONOK(w, map[string]interface{}{
		"status":    "ok",
		"service":   "pulseboard",
		"sessions":  s.store.Len(),
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
}
