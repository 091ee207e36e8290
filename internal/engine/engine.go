package engine

import (
	"fmt"
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gocv.io/x/gocv"
	"golang.org/x/sync/errgroup"
	"gonum.org/v1/gonum/stat"

	"github.com/ivlev/scansplit/internal/analyzer"
	"github.com/ivlev/scansplit/internal/config"
	"github.com/ivlev/scansplit/internal/deskew"
	"github.com/ivlev/scansplit/internal/source"
)

// Photo is one extracted photograph written to disk.
type Photo struct {
	Path         string
	OrderIndex   int             // 1..N в порядке чтения
	Box          image.Rectangle // уточнённые границы на исходной странице
	AngleDegrees float64         // угол наклона до выравнивания
	Width        int
	Height       int
}

// PageResult is the outcome of extracting one scanned page.
type PageResult struct {
	SourcePath  string
	Photos      []Photo
	Diagnostics []string
	Warnings    []analyzer.Warning
	LogPath     string
	SummaryPath string
}

func (r *PageResult) logf(format string, args ...interface{}) {
	r.Diagnostics = append(r.Diagnostics, fmt.Sprintf(format, args...))
}

func (r *PageResult) warn(w analyzer.Warning) {
	for _, have := range r.Warnings {
		if have == w {
			return
		}
	}
	r.Warnings = append(r.Warnings, w)
}

// HasWarning reports whether the extraction raised the given warning.
func (r *PageResult) HasWarning(w analyzer.Warning) bool {
	for _, have := range r.Warnings {
		if have == w {
			return true
		}
	}
	return false
}

type Project struct {
	Config *config.Config
	Source source.Source
}

func NewProject(cfg *config.Config, src source.Source) *Project {
	return &Project{Config: cfg, Source: src}
}

// Run extracts every page of the source. Pages are independent, so they are
// processed in parallel, one page per worker, no shared mutable state.
func (p *Project) Run() ([]*PageResult, error) {
	pageCount := p.Source.PageCount()
	if pageCount == 0 {
		return nil, fmt.Errorf("источник не содержит страниц")
	}

	workers := p.Config.Workers
	if workers < 1 {
		workers = 1
	}
	if workers > pageCount {
		workers = pageCount
	}

	results := make([]*PageResult, pageCount)
	var g errgroup.Group
	g.SetLimit(workers)

	for i := 0; i < pageCount; i++ {
		g.Go(func() error {
			res, err := p.ExtractPage(i)
			if err != nil {
				return err
			}
			results[i] = res
			fmt.Printf("[>] Готово: %d/%d — %d фото (%s)\n",
				i+1, pageCount, len(res.Photos), filepath.Base(res.SourcePath))
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return results, nil
}

// ExtractPage runs the full pipeline for a single page: preprocess -> detect
// (with fallback) -> refine -> deskew -> assemble. Only source I/O aborts;
// everything else accumulates into the result's warnings and diagnostics.
func (p *Project) ExtractPage(index int) (*PageResult, error) {
	srcPath := p.Source.PagePath(index)
	res := &PageResult{SourcePath: srcPath}

	img, err := p.Source.RenderPage(index)
	if err != nil {
		return nil, err
	}

	page, err := gocv.ImageToMatRGB(img)
	if err != nil {
		return nil, &source.InputError{Path: srcPath, Err: err}
	}
	defer page.Close()

	gray := gocv.NewMat()
	defer gray.Close()
	gocv.CvtColor(page, &gray, gocv.ColorBGRToGray)

	res.logf("loaded %s: %dx%d px", srcPath, page.Cols(), page.Rows())

	det, err := p.newDetector()
	if err != nil {
		return nil, err
	}
	detection, err := det.Detect(page, gray)
	if err != nil {
		return nil, err
	}
	res.Diagnostics = append(res.Diagnostics, detection.Log...)
	for _, w := range detection.Warnings {
		res.warn(w)
	}

	kept := p.refineRegions(gray, detection.Regions, res)
	sortReadingOrder(kept)

	if len(kept) == 0 {
		res.warn(analyzer.WarnEmptyPage)
	}

	if err := p.assemble(page, kept, res); err != nil {
		return nil, err
	}
	return res, nil
}

// refineRegions tightens every candidate to its content bounds and drops the
// ones with nothing recoverable inside.
func (p *Project) refineRegions(gray gocv.Mat, regions []analyzer.Region, res *PageResult) []analyzer.Region {
	var kept []analyzer.Region
	for i, region := range regions {
		refined, ok := analyzer.ContentBounds(gray, region.Box, p.Config.BackgroundThreshold)
		if !ok {
			res.warn(analyzer.WarnRegionDiscarded)
			res.logf("region %d: no recoverable content bounds, discarded", i)
			continue
		}

		_, _, _, angle := deskew.Canonical(region.Oriented)
		if math.Abs(angle) < deskew.NegligibleAngle {
			// Ровная область: уточнённый бокс надёжнее контурного прямоугольника.
			region = analyzer.BoxRegion(refined)
		} else {
			region.Box = refined
		}
		res.logf("region %d: content box %v, tilt %.2f°", i, refined, angle)
		kept = append(kept, region)
	}
	return kept
}

// assemble deskews the ordered regions, writes the crops and the diagnostic
// log, and fills in the result.
func (p *Project) assemble(page gocv.Mat, regions []analyzer.Region, res *PageResult) error {
	if err := os.MkdirAll(p.Config.OutputDir, 0755); err != nil {
		return fmt.Errorf("не удалось создать каталог %s: %w", p.Config.OutputDir, err)
	}
	base := baseName(res.SourcePath)

	for i, region := range regions {
		crop := deskew.Extract(page, region.Oriented, p.Config.CropPaddingPx)
		outPath := filepath.Join(p.Config.OutputDir, fmt.Sprintf("%s_photo_%d.png", base, i+1))
		ok := gocv.IMWrite(outPath, crop)
		width, height := crop.Cols(), crop.Rows()
		crop.Close()
		if !ok {
			return fmt.Errorf("не удалось записать %s", outPath)
		}

		_, _, _, angle := deskew.Canonical(region.Oriented)
		res.Photos = append(res.Photos, Photo{
			Path:         outPath,
			OrderIndex:   i + 1,
			Box:          region.Box,
			AngleDegrees: angle,
			Width:        width,
			Height:       height,
		})
		res.logf("photo %d: %s (%dx%d)", i+1, outPath, width, height)
	}

	res.logf("extraction finished: %d photos, warnings: %v", len(res.Photos), res.Warnings)

	logPath := filepath.Join(p.Config.OutputDir, base+"_extract.log")
	if err := os.WriteFile(logPath, []byte(strings.Join(res.Diagnostics, "\n")+"\n"), 0644); err != nil {
		return fmt.Errorf("не удалось записать журнал %s: %w", logPath, err)
	}
	res.LogPath = logPath

	if p.Config.WriteSummary {
		summaryPath := filepath.Join(p.Config.OutputDir, base+"_summary.yaml")
		if err := WriteSummary(res, summaryPath); err != nil {
			return err
		}
		res.SummaryPath = summaryPath
	}
	return nil
}

func (p *Project) newDetector() (analyzer.Detector, error) {
	det, err := analyzer.NewDetector(p.Config.Detector)
	if err != nil {
		return nil, err
	}
	if cd, ok := det.(*analyzer.ContourDetector); ok {
		cd.MinAreaRatio = p.Config.MinAreaRatio
		cd.MaxAreaRatio = p.Config.MaxAreaRatio
		cd.MinDimensionPx = p.Config.MinDimensionScaled()
		cd.MaxAspectRatio = p.Config.MaxAspectRatio
		cd.BackgroundThreshold = p.Config.BackgroundThreshold
	}
	return det, nil
}

// sortReadingOrder orders regions top-to-bottom then left-to-right. Centers
// are snapped to row bands derived from the median region height, so photos
// of one visual row keep stable numbering despite slight misalignment.
func sortReadingOrder(regions []analyzer.Region) {
	if len(regions) < 2 {
		return
	}

	heights := make([]float64, len(regions))
	for i, r := range regions {
		heights[i] = float64(r.Box.Dy())
	}
	sort.Float64s(heights)
	band := stat.Quantile(0.5, stat.LinInterp, heights, nil)
	if band < 1 {
		band = 1
	}

	sort.SliceStable(regions, func(i, j int) bool {
		ci := center(regions[i].Box)
		cj := center(regions[j].Box)
		ri := math.Round(float64(ci.Y) / band)
		rj := math.Round(float64(cj.Y) / band)
		if ri != rj {
			return ri < rj
		}
		return ci.X < cj.X
	})
}

func center(r image.Rectangle) image.Point {
	return image.Pt(r.Min.X+r.Dx()/2, r.Min.Y+r.Dy()/2)
}

// baseName derives a collision-free stem for output files from the page path.
// PDF pages arrive as "scan.pdf#p2" and keep the page suffix in the stem.
func baseName(path string) string {
	name := filepath.Base(path)
	suffix := ""
	if i := strings.Index(name, "#"); i >= 0 {
		suffix = "_" + name[i+1:]
		name = name[:i]
	}
	name = strings.TrimSuffix(name, filepath.Ext(name))
	return strings.ReplaceAll(name+suffix, " ", "_")
}
