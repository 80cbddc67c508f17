package main

import (
	"flag"
	"fmt"
	"image/color"
	png "image/png"
	"math"
	"math/rand"
	"os"
	"path/filepath"
	"strings"
	"time"

	fyne "fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/dialog"
	"fyne.io/fyne/v2/driver/desktop"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
	"github.com/dustin/go-humanize"

	"github.com/pine1990/StockChartViewer/src/chart"
	"github.com/pine1990/StockChartViewer/src/indicator"
	"github.com/pine1990/StockChartViewer/src/series"
)

type uiState struct {
	app    fyne.App
	window fyne.Window

	pricesPath string
	eventsPath string
	configPath string

	view   *chart.View
	events []series.DomainEvent

	// widgets
	chartW      *chartWidget
	eventsTable *widget.Table
	statusLabel *widget.Label
	fileLabel   *widget.Label

	// toggles
	crosshairEnabled bool
	showHints        bool
	oscillator       string // "None", "RSI", "MACD", "Stochastic"
}

// dark theme wrapper
type darkTheme struct{}

func (d *darkTheme) Color(name fyne.ThemeColorName, variant fyne.ThemeVariant) color.Color {
	return theme.DefaultTheme().Color(name, theme.VariantDark)
}
func (d *darkTheme) Font(style fyne.TextStyle) fyne.Resource { return theme.DefaultTheme().Font(style) }
func (d *darkTheme) Icon(name fyne.ThemeIconName) fyne.Resource {
	return theme.DefaultTheme().Icon(name)
}
func (d *darkTheme) Size(name fyne.ThemeSizeName) float32 { return theme.DefaultTheme().Size(name) }

func main() {
	configDefault := os.Getenv("STOCKVIEWER_CONFIG")
	if configDefault == "" {
		configDefault = "stockviewer.yaml"
	}
	var pricesFlag, eventsFlag, configFlag, logLevel string
	flag.StringVar(&pricesFlag, "prices", "", "Path to prices .jsonl")
	flag.StringVar(&eventsFlag, "events", "", "Path to events .jsonl")
	flag.StringVar(&configFlag, "config", configDefault, "Path to chart options YAML")
	flag.StringVar(&logLevel, "loglevel", "info", "Log level: debug, info, warn, error")
	flag.Parse()
	series.SetLogLevel(logLevel)

	opts, err := chart.LoadOptions(configFlag)
	if err != nil {
		series.Errorf("options: %v", err)
		os.Exit(1)
	}

	a := app.NewWithID("com.stockviewer.app")
	a.Settings().SetTheme(&darkTheme{})
	w := a.NewWindow("Stock Chart Viewer")
	w.Resize(fyne.NewSize(1200, 800))

	state := &uiState{
		app:        a,
		window:     w,
		pricesPath: pricesFlag,
		eventsPath: eventsFlag,
		configPath: configFlag,
		oscillator: "None",
	}
	state.crosshairEnabled = a.Preferences().BoolWithFallback("crosshair", true)
	state.showHints = a.Preferences().BoolWithFallback("showHints", false)

	// the view starts on demo data; loadAll replaces it when files are set
	state.view = chart.NewView(demoSeries(), nil, opts)

	state.fileLabel = widget.NewLabel("(demo data)")
	state.statusLabel = widget.NewLabel("")

	state.chartW = newChartWidget(state.view)
	state.chartW.crosshairEnabled = state.crosshairEnabled
	state.chartW.onViewportChanged = func() { updateStatus(state) }
	state.chartW.onMarkerActivated = func(e chart.PlacedEvent) { showEvent(state, e) }

	// indicator toggles
	indChecks := map[indicator.Kind]*widget.Check{}
	for _, k := range []indicator.Kind{indicator.MA5, indicator.MA20, indicator.MA60, indicator.MA120, indicator.Bollinger, indicator.Volume} {
		k := k
		chk := widget.NewCheck(state.view.IndicatorConfig()[k].Label, nil)
		chk.SetChecked(state.view.IndicatorConfig()[k].Enabled)
		chk.OnChanged = func(b bool) {
			state.view.SetIndicatorEnabled(k, b)
			savePrefs(state)
			state.chartW.markDirty()
		}
		indChecks[k] = chk
	}

	// one oscillator at a time; they share the bottom strip with volume
	oscSelect := widget.NewSelect([]string{"None", "RSI", "MACD", "Stochastic"}, nil)
	oscSelect.Selected = state.oscillator
	oscSelect.OnChanged = func(v string) {
		state.oscillator = v
		for name, k := range oscillatorKinds {
			state.view.SetIndicatorEnabled(k, name == v)
		}
		savePrefs(state)
		state.chartW.markDirty()
	}

	// event type filter
	evtChecks := map[series.EventType]*widget.Check{}
	for _, et := range series.AllEventTypes {
		et := et
		chk := widget.NewCheck(et.String(), nil)
		chk.SetChecked(true)
		chk.OnChanged = func(b bool) {
			state.view.SetEventTypeEnabled(et, b)
			savePrefs(state)
			state.chartW.markDirty()
		}
		evtChecks[et] = chk
	}

	crosshairChk := widget.NewCheck("Crosshair", nil)
	crosshairChk.SetChecked(state.crosshairEnabled)
	crosshairChk.OnChanged = func(b bool) {
		state.crosshairEnabled = b
		state.chartW.crosshairEnabled = b
		savePrefs(state)
		state.chartW.Refresh()
	}
	hintsChk := widget.NewCheck("Hints", nil)
	hintsChk.SetChecked(state.showHints)
	hintsChk.OnChanged = func(b bool) {
		state.showHints = b
		savePrefs(state)
	}

	resetBtn := widget.NewButton("Reset View", func() {
		state.view.Reset()
		updateStatus(state)
		state.chartW.markDirty()
	})

	top := container.NewHBox(
		widget.NewButton("Open Prices…", func() { openPricesDialog(state) }),
		widget.NewButton("Open Events…", func() { openEventsDialog(state) }),
		widget.NewButton("Reload", func() { loadAll(state) }),
		resetBtn,
		widget.NewSeparator(),
		indChecks[indicator.MA5], indChecks[indicator.MA20], indChecks[indicator.MA60], indChecks[indicator.MA120],
		indChecks[indicator.Bollinger], indChecks[indicator.Volume],
		widget.NewLabel("Osc:"), oscSelect,
	)
	evtBar := container.NewHBox(
		widget.NewLabel("Events:"),
		evtChecks[series.EventNote], evtChecks[series.EventNews], evtChecks[series.EventTelegram],
		evtChecks[series.EventEarnings], evtChecks[series.EventReport],
		crosshairChk, hintsChk,
		widget.NewLabel("File:"), state.fileLabel,
	)

	state.eventsTable = buildEventsTable(state)

	tabs := container.NewAppTabs(
		container.NewTabItem("Chart", state.chartW),
		container.NewTabItem("Events", state.eventsTable),
	)
	tabs.SetTabLocation(container.TabLocationTop)
	tabs.OnSelected = func(ti *container.TabItem) {
		state.app.Preferences().SetInt("selectedTabIndex", tabs.SelectedIndex())
	}

	content := container.NewBorder(container.NewVBox(top, evtBar), state.statusLabel, nil, nil, tabs)
	w.SetContent(content)
	w.SetOnClosed(func() { savePrefs(state) })

	// keyboard pan/zoom supplement; the wheel and drag are primary
	w.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
		step := state.view.Controller().Viewport().Size() / 10
		if step < 1 {
			step = 1
		}
		switch ev.Name {
		case fyne.KeyLeft:
			state.view.Pan(-step)
		case fyne.KeyRight:
			state.view.Pan(step)
		case fyne.KeyHome:
			state.view.Reset()
		default:
			return
		}
		updateStatus(state)
		state.chartW.markDirty()
	})

	buildMenus(state)
	loadPrefs(state, indChecks, evtChecks, oscSelect, crosshairChk, hintsChk, tabs)
	loadAll(state)

	w.ShowAndRun()
}

var oscillatorKinds = map[string]indicator.Kind{
	"RSI":        indicator.RSI,
	"MACD":       indicator.MACD,
	"Stochastic": indicator.Stochastic,
}

func buildMenus(state *uiState) {
	var items []*fyne.MenuItem
	for _, f := range recentFiles(state) {
		f := f
		items = append(items, fyne.NewMenuItem(truncatePath(f, 60), func() {
			state.pricesPath = f
			savePrefs(state)
			loadAll(state)
		}))
	}
	clearRecent := fyne.NewMenuItem("Clear Recent", func() { clearRecentFiles(state); buildMenus(state) })
	recentMenu := fyne.NewMenu("Open Recent", append(items, clearRecent)...)
	fileMenu := fyne.NewMenu("File",
		fyne.NewMenuItem("Open Prices…", func() { openPricesDialog(state) }),
		fyne.NewMenuItem("Open Events…", func() { openEventsDialog(state) }),
		fyne.NewMenuItem("Reload", func() { loadAll(state) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Export Chart…", func() { exportChartPNG(state) }),
		fyne.NewMenuItemSeparator(),
		fyne.NewMenuItem("Quit", func() { state.window.Close() }),
	)
	viewMenu := fyne.NewMenu("View",
		fyne.NewMenuItem("Reset View", func() {
			state.view.Reset()
			updateStatus(state)
			state.chartW.markDirty()
		}),
	)
	state.window.SetMainMenu(fyne.NewMainMenu(fileMenu, recentMenu, viewMenu))

	canv := state.window.Canvas()
	if canv != nil {
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { openPricesDialog(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyO, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { openPricesDialog(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { loadAll(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyR, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { loadAll(state) })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierSuper}, func(fyne.Shortcut) { state.window.Close() })
		canv.AddShortcut(&desktop.CustomShortcut{KeyName: fyne.KeyW, Modifier: fyne.KeyModifierControl}, func(fyne.Shortcut) { state.window.Close() })
	}
}

func openPricesDialog(state *uiState) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		state.pricesPath = rc.URI().Path()
		addRecentFile(state, state.pricesPath)
		savePrefs(state)
		loadAll(state)
	}, state.window)
	d.Show()
}

func openEventsDialog(state *uiState) {
	d := dialog.NewFileOpen(func(rc fyne.URIReadCloser, err error) {
		if err != nil || rc == nil {
			return
		}
		defer rc.Close()
		state.eventsPath = rc.URI().Path()
		savePrefs(state)
		loadAll(state)
	}, state.window)
	d.Show()
}

// loadAll (re)loads prices and events and swaps them into the view. With no
// file configured it falls back to a deterministic demo series so the chart
// is never empty.
func loadAll(state *uiState) {
	if state.pricesPath == "" {
		if _, err := os.Stat("prices.jsonl"); err == nil {
			state.pricesPath = "prices.jsonl"
		}
	}
	if state.pricesPath == "" {
		state.view.ReplaceSeries(demoSeries())
		state.events = demoEvents(state.view.Series())
		state.view.SetEvents(state.events)
		state.fileLabel.SetText("(demo data)")
	} else {
		s, err := series.LoadPrices(state.pricesPath)
		if err != nil {
			dialog.ShowError(err, state.window)
			return
		}
		state.view.ReplaceSeries(s)
		state.fileLabel.SetText(truncatePath(state.pricesPath, 60))
		state.events = nil
		if state.eventsPath != "" {
			evs, err := series.LoadEvents(state.eventsPath)
			if err != nil {
				dialog.ShowError(err, state.window)
			} else {
				state.events = evs
			}
		}
		state.view.SetEvents(state.events)
	}
	series.Infof("loaded %d sessions, %d events", state.view.Series().Len(), len(state.events))
	if state.eventsTable != nil {
		state.eventsTable.Refresh()
	}
	updateStatus(state)
	if state.chartW != nil {
		state.chartW.markDirty()
	}
}

// updateStatus shows the visible date range in the status bar.
func updateStatus(state *uiState) {
	s := state.view.Series()
	vp := state.view.Controller().Viewport()
	if s.Len() == 0 {
		state.statusLabel.SetText("")
		return
	}
	last := vp.End
	if last > s.Len()-1 {
		last = s.Len() - 1
	}
	state.statusLabel.SetText(fmt.Sprintf("%s ~ %s  (%d of %d sessions)",
		s.At(vp.Start).Date, s.At(last).Date, vp.Count(), s.Len()))
}

// showEvent routes a marker tap: popup with the event detail plus row
// selection in the events table.
func showEvent(state *uiState, e chart.PlacedEvent) {
	body := e.Label
	if e.Detail != "" {
		body += "\n\n" + e.Detail
	}
	dialog.ShowInformation(fmt.Sprintf("%s %s", e.Date, e.Type), body, state.window)
	for i, ev := range state.events {
		if ev.ID == e.ID {
			state.eventsTable.Select(widget.TableCellID{Row: i + 1, Col: 0})
			state.eventsTable.ScrollTo(widget.TableCellID{Row: i + 1, Col: 0})
			break
		}
	}
}

func buildEventsTable(state *uiState) *widget.Table {
	t := widget.NewTable(
		func() (int, int) { return len(state.events) + 1, 4 },
		func() fyne.CanvasObject { return widget.NewLabel("") },
		func(id widget.TableCellID, o fyne.CanvasObject) {
			lbl := o.(*widget.Label)
			if id.Row == 0 {
				switch id.Col {
				case 0:
					lbl.SetText("Date")
				case 1:
					lbl.SetText("Type")
				case 2:
					lbl.SetText("Label")
				case 3:
					lbl.SetText("Detail")
				}
				return
			}
			rix := id.Row - 1
			if rix < 0 || rix >= len(state.events) {
				lbl.SetText("")
				return
			}
			ev := state.events[rix]
			switch id.Col {
			case 0:
				lbl.SetText(ev.Date)
			case 1:
				lbl.SetText(ev.Type.String())
			case 2:
				lbl.SetText(ev.Label)
			case 3:
				lbl.SetText(ev.Detail)
			}
		},
	)
	t.SetColumnWidth(0, 110)
	t.SetColumnWidth(1, 90)
	t.SetColumnWidth(2, 260)
	t.SetColumnWidth(3, 420)
	return t
}

// exportChartPNG renders the current frame at a fixed export resolution.
func exportChartPNG(state *uiState) {
	const exportW, exportH = 1600, 900
	frame := state.view.Frame(exportW, exportH)
	img, err := rasterize(frame, exportW, exportH, state.view.Options())
	if err != nil {
		dialog.ShowError(err, state.window)
		return
	}
	if state.showHints {
		img = drawHint(img, "Hint: wheel zooms at the cursor, drag selects a range, arrows pan.")
	}
	fs := dialog.NewFileSave(func(wc fyne.URIWriteCloser, err error) {
		if err != nil || wc == nil {
			return
		}
		defer wc.Close()
		_ = png.Encode(wc, img)
	}, state.window)
	fs.SetFileName("chart.png")
	fs.Show()
}

// recent files helpers
func recentFiles(state *uiState) []string {
	raw := state.app.Preferences().StringWithFallback("recentFiles", "")
	if raw == "" {
		return nil
	}
	parts := strings.Split(raw, "\n")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		if _, err := os.Stat(p); err == nil {
			out = append(out, p)
		}
	}
	return out
}

func addRecentFile(state *uiState, path string) {
	list := recentFiles(state)
	filtered := []string{path}
	for _, f := range list {
		if f != path && len(filtered) < 10 {
			filtered = append(filtered, f)
		}
	}
	state.app.Preferences().SetString("recentFiles", strings.Join(filtered, "\n"))
}

func clearRecentFiles(state *uiState) {
	state.app.Preferences().SetString("recentFiles", "")
}

// prefs
func savePrefs(state *uiState) {
	if state == nil || state.app == nil {
		return
	}
	prefs := state.app.Preferences()
	prefs.SetString("lastPrices", state.pricesPath)
	prefs.SetString("lastEvents", state.eventsPath)
	prefs.SetBool("crosshair", state.crosshairEnabled)
	prefs.SetBool("showHints", state.showHints)
	prefs.SetString("oscillator", state.oscillator)
	for k, set := range state.view.IndicatorConfig() {
		if k.PriceOverlay() || k == indicator.Volume {
			prefs.SetBool("ind."+k.String(), set.Enabled)
		}
	}
	for _, et := range series.AllEventTypes {
		prefs.SetBool("evt."+et.String(), state.view.Filter()[et])
	}
}

func loadPrefs(state *uiState, indChecks map[indicator.Kind]*widget.Check, evtChecks map[series.EventType]*widget.Check, oscSelect *widget.Select, crosshairChk, hintsChk *widget.Check, tabs *container.AppTabs) {
	prefs := state.app.Preferences()
	if f := prefs.StringWithFallback("lastPrices", state.pricesPath); f != "" {
		state.pricesPath = f
	}
	if f := prefs.StringWithFallback("lastEvents", state.eventsPath); f != "" {
		state.eventsPath = f
	}
	for k, chk := range indChecks {
		on := prefs.BoolWithFallback("ind."+k.String(), state.view.IndicatorConfig()[k].Enabled)
		state.view.SetIndicatorEnabled(k, on)
		chk.SetChecked(on)
	}
	osc := prefs.StringWithFallback("oscillator", state.oscillator)
	if _, ok := oscillatorKinds[osc]; ok || osc == "None" {
		state.oscillator = osc
		oscSelect.SetSelected(osc)
	}
	for et, chk := range evtChecks {
		on := prefs.BoolWithFallback("evt."+et.String(), true)
		state.view.SetEventTypeEnabled(et, on)
		chk.SetChecked(on)
	}
	state.crosshairEnabled = prefs.BoolWithFallback("crosshair", state.crosshairEnabled)
	crosshairChk.SetChecked(state.crosshairEnabled)
	state.chartW.crosshairEnabled = state.crosshairEnabled
	state.showHints = prefs.BoolWithFallback("showHints", state.showHints)
	hintsChk.SetChecked(state.showHints)
	if tabs != nil {
		idx := prefs.IntWithFallback("selectedTabIndex", 0)
		if idx >= 0 && idx < len(tabs.Items) {
			tabs.SelectIndex(idx)
		}
	}
}

// utils
func truncatePath(p string, n int) string {
	if len(p) <= n {
		return p
	}
	base := filepath.Base(p)
	if len(base)+4 >= n {
		return "..." + base
	}
	dir := filepath.Dir(p)
	left := n - len(base) - 4
	if left <= 0 {
		return "..." + base
	}
	if len(dir) > left {
		dir = dir[:left]
	}
	return dir + "/..." + base
}

// demoSeries generates a deterministic KOSPI-style random walk so the viewer
// has something to show before a file is opened.
func demoSeries() *series.Series {
	rng := rand.New(rand.NewSource(20240102))
	day := time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC)
	price := 68000.0
	var pts []series.PricePoint
	for len(pts) < 250 {
		if wd := day.Weekday(); wd == time.Saturday || wd == time.Sunday {
			day = day.AddDate(0, 0, 1)
			continue
		}
		drift := (rng.Float64() - 0.48) * 0.025
		open := price
		close := math.Max(1000, open*(1+drift))
		high := math.Max(open, close) * (1 + rng.Float64()*0.012)
		low := math.Min(open, close) * (1 - rng.Float64()*0.012)
		// Korean markets tick in whole won
		pts = append(pts, series.PricePoint{
			Date:   day.Format("2006-01-02"),
			Open:   math.Round(open),
			High:   math.Round(high),
			Low:    math.Round(low),
			Close:  math.Round(close),
			Volume: int64(500_000 + rng.Intn(2_500_000)),
		})
		price = close
		day = day.AddDate(0, 0, 1)
	}
	return series.New(pts)
}

func demoEvents(s *series.Series) []series.DomainEvent {
	if s.Len() < 120 {
		return nil
	}
	return []series.DomainEvent{
		{ID: "demo-1", Date: s.At(30).Date, Type: series.EventEarnings, Label: "Q4 earnings", Detail: fmt.Sprintf("Consensus beat; close %s won", humanize.Comma(int64(s.At(30).Close)))},
		{ID: "demo-2", Date: s.At(30).Date, Type: series.EventNews, Label: "Guidance raised"},
		{ID: "demo-3", Date: s.At(75).Date, Type: series.EventNote, Label: "Watchlist note", Detail: "Volume spike against the trend"},
		{ID: "demo-4", Date: s.At(110).Date, Type: series.EventReport, Label: "Broker report"},
	}
}
