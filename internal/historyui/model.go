// Package historyui provides the Bubble Tea history browser.
package historyui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/table"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/samber/lo"

	"github.com/verte-zerg/storytype/internal/compare"
	"github.com/verte-zerg/storytype/internal/model"
	"github.com/verte-zerg/storytype/internal/record"
	"github.com/verte-zerg/storytype/internal/stats"
)

// PageSize is the number of runs listed per page.
const PageSize = 20

const (
	chartHeight = 12
	sparkWidth  = 12
)

type mode int

const (
	modeList mode = iota
	modeChart
)

var (
	headerStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("#6E6E6E"))
	titleStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#C89A3A")).Bold(true)
	tableStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("#B8B8B8"))
)

// Options configures the browser.
type Options struct {
	// Paint colors chart fills; nil leaves the chart uncolored.
	Paint func(compare.Class, string) string
	// Embedded makes esc report Done instead of quitting the program.
	Embedded bool
}

// Model implements the Bubble Tea history UI.
type Model struct {
	user    model.User
	records []model.ScoreRecord
	pages   [][]model.ScoreRecord
	opts    Options

	mode     mode
	page     int
	table    table.Model
	viewport viewport.Model
	help     help.Model
	keys     keyMap

	selected *model.ScoreRecord
	baseline *model.ScoreRecord
	status   string
	done     bool

	width  int
	height int
}

// New builds a browser over records, which must be newest first.
func New(user model.User, records []model.ScoreRecord, opts Options) *Model {
	m := &Model{
		user:     user,
		records:  records,
		pages:    lo.Chunk(records, PageSize),
		opts:     opts,
		viewport: viewport.New(0, 0),
		help:     help.New(),
		keys:     defaultKeys(opts.Embedded),
	}
	m.table = table.New(
		table.WithColumns(columns()),
		table.WithFocused(true),
		table.WithHeight(PageSize),
	)
	m.table.SetStyles(tableStyles())
	m.loadPage()
	return m
}

// Done reports whether an embedded browser was closed.
func (m *Model) Done() bool {
	return m.done
}

// Baseline returns the run marked for comparison.
func (m *Model) Baseline() *model.ScoreRecord {
	return m.baseline
}

// Init implements tea.Model.
func (m *Model) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.updateLayout()
		return m, nil
	case tea.KeyMsg:
		if m.mode == modeChart {
			return m.updateChart(msg)
		}
		return m.updateList(msg)
	}
	return m, nil
}

func (m *Model) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		return m, m.close()
	case key.Matches(msg, m.keys.Open):
		if rec := m.cursorRecord(); rec != nil {
			m.openChart(rec)
		}
		return m, nil
	case key.Matches(msg, m.keys.Mark):
		m.markBaseline(m.cursorRecord())
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.clearBaseline()
		return m, nil
	case key.Matches(msg, m.keys.NextPage):
		m.movePage(1)
		return m, nil
	case key.Matches(msg, m.keys.PrevPage):
		m.movePage(-1)
		return m, nil
	}
	var cmd tea.Cmd
	m.table, cmd = m.table.Update(msg)
	return m, cmd
}

func (m *Model) updateChart(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Back):
		m.mode = modeList
		m.selected = nil
		return m, nil
	case key.Matches(msg, m.keys.Mark):
		m.markBaseline(m.selected)
		m.renderChart()
		return m, nil
	case key.Matches(msg, m.keys.Clear):
		m.clearBaseline()
		m.renderChart()
		return m, nil
	}
	var cmd tea.Cmd
	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View implements tea.Model.
func (m *Model) View() string {
	if m.width == 0 || m.height == 0 {
		return ""
	}
	headerHeight, bodyHeight, footerHeight := m.layoutHeights()
	header := fitLines(m.renderHeader(), m.width, headerHeight)
	body := fitLines(m.renderBody(), m.width, bodyHeight)
	footer := fitLines(m.renderFooter(), m.width, footerHeight)
	return strings.Join([]string{header, body, footer}, "\n")
}

func (m *Model) close() tea.Cmd {
	if m.opts.Embedded {
		m.done = true
		return nil
	}
	return tea.Quit
}

func (m *Model) layoutHeights() (headerHeight, bodyHeight, footerHeight int) {
	headerHeight = 2
	footerHeight = 1
	if m.status != "" {
		footerHeight++
	}
	bodyHeight = m.height - headerHeight - footerHeight
	if bodyHeight < 1 {
		bodyHeight = 1
	}
	return headerHeight, bodyHeight, footerHeight
}

func (m *Model) updateLayout() {
	if m.width <= 0 || m.height <= 0 {
		return
	}
	_, bodyHeight, _ := m.layoutHeights()
	m.viewport.Width = m.width
	m.viewport.Height = bodyHeight
	m.table.SetWidth(m.width)
	m.table.SetHeight(min(PageSize, max(1, bodyHeight-1)))
	if m.mode == modeChart {
		m.renderChart()
	}
}

func (m *Model) loadPage() {
	var page []model.ScoreRecord
	if m.page < len(m.pages) {
		page = m.pages[m.page]
	}
	rows := make([]table.Row, 0, len(page))
	for _, rec := range page {
		rows = append(rows, m.row(rec))
	}
	m.table.SetRows(rows)
	m.table.SetCursor(0)
}

func (m *Model) row(rec model.ScoreRecord) table.Row {
	metrics := stats.MetricsFor(rec)
	marker := ""
	if m.baseline != nil && m.baseline.ID == rec.ID {
		marker = "base"
	}
	return table.Row{
		fmt.Sprintf("%d", rec.ID),
		rec.CreatedAt.Local().Format("2006-01-02 15:04"),
		fmt.Sprintf("%d", rec.Score),
		fmt.Sprintf("%d", rec.Wrong),
		fmt.Sprintf("%.1f%%", metrics.Accuracy*100),
		fmt.Sprintf("%.1f", metrics.AvgWPM),
		fmt.Sprintf("%d", metrics.Seconds),
		stats.SeriesSparkline(record.Decode(rec.Series), sparkWidth),
		marker,
	}
}

func columns() []table.Column {
	return []table.Column{
		{Title: "#", Width: 5},
		{Title: "Date", Width: 16},
		{Title: "Score", Width: 6},
		{Title: "Wrong", Width: 6},
		{Title: "Acc", Width: 7},
		{Title: "WPM", Width: 6},
		{Title: "Secs", Width: 5},
		{Title: "Speed", Width: sparkWidth},
		{Title: "", Width: 4},
	}
}

func tableStyles() table.Styles {
	styles := table.DefaultStyles()
	styles.Header = styles.Header.
		Border(lipgloss.NormalBorder(), false, false, true, false).
		BorderForeground(lipgloss.Color("#4A4A4A")).
		Foreground(lipgloss.Color("#C0C0C0")).
		Bold(true).
		Padding(0, 1).
		PaddingLeft(0)
	styles.Cell = styles.Cell.
		Padding(0, 1).
		PaddingLeft(0)
	styles.Selected = styles.Cell.
		Foreground(lipgloss.Color("#F0F0F0")).
		Bold(true)
	return styles
}

func (m *Model) movePage(delta int) {
	if len(m.pages) == 0 {
		return
	}
	next := m.page + delta
	if next < 0 || next >= len(m.pages) {
		return
	}
	m.page = next
	m.loadPage()
}

func (m *Model) cursorRecord() *model.ScoreRecord {
	if m.page >= len(m.pages) {
		return nil
	}
	page := m.pages[m.page]
	idx := m.table.Cursor()
	if idx < 0 || idx >= len(page) {
		return nil
	}
	rec := page[idx]
	return &rec
}

func (m *Model) markBaseline(rec *model.ScoreRecord) {
	if rec == nil {
		return
	}
	m.baseline = rec
	m.status = fmt.Sprintf("Comparing against run #%d", rec.ID)
	m.refreshRows()
}

func (m *Model) clearBaseline() {
	m.baseline = nil
	m.status = ""
	m.refreshRows()
}

func (m *Model) refreshRows() {
	cursor := m.table.Cursor()
	m.loadPage()
	m.table.SetCursor(cursor)
}

func (m *Model) openChart(rec *model.ScoreRecord) {
	m.selected = rec
	m.mode = modeChart
	m.renderChart()
	m.viewport.GotoTop()
}

func (m *Model) renderChart() {
	if m.selected == nil {
		return
	}
	m.viewport.SetContent(renderRun(*m.selected, m.baseline, m.width, m.opts.Paint))
}

func renderRun(rec model.ScoreRecord, baseline *model.ScoreRecord, width int, paint func(compare.Class, string) string) string {
	var base []int
	title := fmt.Sprintf("Run #%d  %s  score %d", rec.ID, rec.CreatedAt.Local().Format("2006-01-02 15:04"), rec.Score)
	if baseline != nil && baseline.ID != rec.ID {
		base = record.Decode(baseline.Series)
		title += fmt.Sprintf("  vs run #%d (score %d)", baseline.ID, baseline.Score)
	}
	c := compare.New(record.Decode(rec.Series), base)
	if c.HasBaseline() && c.Len() == 0 {
		c = compare.New(record.Decode(rec.Series), nil)
	}
	chartWidth := 0
	if width > 0 {
		chartWidth = compare.PlotWidthFor(width-2, c.Max)
	}
	out := compare.RenderString(c, compare.Options{
		Title:  title,
		Width:  chartWidth,
		Height: chartHeight,
		Paint:  paint,
	})
	if summary := regionSummary(c); summary != "" {
		out += "\n" + summary
	}
	return strings.TrimRight(out, "\n")
}

func regionSummary(c compare.Comparison) string {
	regions := c.Regions()
	if len(regions) == 0 {
		return ""
	}
	faster, slower := 0, 0
	for _, r := range regions {
		if r.Faster {
			faster += r.End - r.Start
		} else {
			slower += r.End - r.Start
		}
	}
	return fmt.Sprintf("Faster for %ds, slower or even for %ds.", faster, slower)
}

func (m *Model) renderHeader() string {
	title := titleStyle.Render("History · " + m.user.Username)
	pages := max(1, len(m.pages))
	info := fmt.Sprintf("Runs: %d  Page %d/%d", len(m.records), m.page+1, pages)
	if m.baseline != nil {
		info += fmt.Sprintf("  Baseline: #%d", m.baseline.ID)
	}
	return title + "\n" + headerStyle.Render(truncateLine(info, m.width))
}

func (m *Model) renderBody() string {
	if m.mode == modeChart {
		return m.viewport.View()
	}
	if len(m.records) == 0 {
		return "No runs yet. Finish a game to see it here."
	}
	return tableStyle.Render(m.table.View())
}

func (m *Model) renderFooter() string {
	var help string
	if m.mode == modeChart {
		help = m.help.ShortHelpView(m.keys.chartHelp())
	} else {
		help = m.help.ShortHelpView(m.keys.listHelp())
	}
	lines := []string{help}
	if m.status != "" {
		lines = append(lines, headerStyle.Render(m.status))
	}
	return strings.Join(lines, "\n")
}

type keyMap struct {
	Open     key.Binding
	Mark     key.Binding
	Clear    key.Binding
	NextPage key.Binding
	PrevPage key.Binding
	Back     key.Binding
}

func defaultKeys(embedded bool) keyMap {
	backHelp := "quit"
	if embedded {
		backHelp = "back"
	}
	return keyMap{
		Open:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "graph")),
		Mark:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "compare with this")),
		Clear:    key.NewBinding(key.WithKeys("x"), key.WithHelp("x", "stop comparing")),
		NextPage: key.NewBinding(key.WithKeys("right", "l", "]"), key.WithHelp("→", "next page")),
		PrevPage: key.NewBinding(key.WithKeys("left", "h", "["), key.WithHelp("←", "prev page")),
		Back:     key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", backHelp)),
	}
}

func (k keyMap) listHelp() []key.Binding {
	return []key.Binding{k.Open, k.Mark, k.Clear, k.PrevPage, k.NextPage, k.Back}
}

func (k keyMap) chartHelp() []key.Binding {
	return []key.Binding{k.Mark, k.Clear, k.Back}
}

func padLine(line string, width int) string {
	lineWidth := lipgloss.Width(line)
	if lineWidth < width {
		return line + strings.Repeat(" ", width-lineWidth)
	}
	return line
}

func fitLines(s string, width, height int) string {
	if width <= 0 || height <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		lines[i] = padLine(line, width)
	}
	if len(lines) > height {
		lines = lines[:height]
	}
	for len(lines) < height {
		lines = append(lines, strings.Repeat(" ", width))
	}
	return strings.Join(lines, "\n")
}

func truncateLine(s string, width int) string {
	if width <= 0 {
		return s
	}
	runes := []rune(s)
	if len(runes) <= width {
		return s
	}
	if width <= 3 {
		return string(runes[:width])
	}
	return string(runes[:width-3]) + "..."
}
