package ui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"
	"github.com/desertthunder/jam/internal/models"
	"github.com/desertthunder/jam/internal/services"
	"github.com/desertthunder/jam/internal/shared"
)

// NoticeDuration is how long a confirmation stays on screen.
const NoticeDuration = 5 * time.Second

// ViewState represents the current view in the TUI
type ViewState int

const (
	SearchView ViewState = iota
	ResultsView
	DraftView
	RenameView
)

func (v ViewState) String() string {
	switch v {
	case SearchView:
		return "search"
	case ResultsView:
		return "results"
	case DraftView:
		return "draft"
	case RenameView:
		return "rename"
	default:
		return "unknown"
	}
}

type noticeKind int

const (
	noticeOK noticeKind = iota
	noticeWarn
	noticeErr
)

type notice struct {
	text string
	kind noticeKind
}

// DraftStore persists the draft between sessions.
type DraftStore interface {
	Get() (*models.Draft, error)
	Save(d *models.Draft) error
}

// Options configures a [Model].
type Options struct {
	Builder services.PlaylistBuilder
	Drafts  DraftStore // optional; the draft lives only in memory without it
	Logger  *log.Logger
}

// Model represents the application state (Elm architecture)
type Model struct {
	ctx     context.Context
	builder services.PlaylistBuilder
	drafts  DraftStore
	logger  *log.Logger

	view      ViewState
	draft     *models.Draft
	lastQuery string
	found     []models.Track
	searching bool
	saving    bool
	notice    *notice
	noticeID  int

	query   textinput.Model
	name    textinput.Model
	results list.Model
	tracks  list.Model
	help    help.Model
	keys    keyMap

	width  int
	height int
}

// NewModel loads the stored draft, if any, and builds the initial search view.
func NewModel(ctx context.Context, opts Options) (*Model, error) {
	if opts.Builder == nil {
		return nil, fmt.Errorf("%w: playlist builder is required", shared.ErrMissingArgument)
	}

	logger := opts.Logger
	if logger == nil {
		logger = log.Default()
	}

	draft := models.NewDraft()
	if opts.Drafts != nil {
		stored, err := opts.Drafts.Get()
		if err != nil {
			return nil, fmt.Errorf("failed to load draft: %w", err)
		}
		draft = stored
	}

	query := textinput.New()
	query.Placeholder = "Search for a song, artist or album"
	query.Prompt = "🔍 "
	query.Focus()

	name := textinput.New()
	name.Placeholder = models.DefaultDraftName
	name.Prompt = "Name: "
	name.CharLimit = 100

	m := &Model{
		ctx:     ctx,
		builder: opts.Builder,
		drafts:  opts.Drafts,
		logger:  logger,
		view:    SearchView,
		draft:   draft,
		query:   query,
		name:    name,
		results: newTrackList("Results"),
		tracks:  newTrackList(""),
		help:    help.New(),
		keys:    newKeyMap(),
	}
	m.syncDraft()
	return m, nil
}

// Draft returns the playlist being built.
func (m Model) Draft() *models.Draft { return m.draft }

// State returns the active [ViewState].
func (m Model) State() ViewState { return m.view }

func (m Model) Init() tea.Cmd {
	return textinput.Blink
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.help.Width = msg.Width
		m.resize()
		return m, nil
	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC {
			return m, tea.Quit
		}
		switch m.view {
		case SearchView:
			return m.handleSearchKeys(msg)
		case ResultsView:
			return m.handleResultsKeys(msg)
		case DraftView:
			return m.handleDraftKeys(msg)
		case RenameView:
			return m.handleRenameKeys(msg)
		}
	case Msg:
		return m.handleMsg(msg)
	}

	return m.forward(msg)
}

// forward passes msg to the component that owns the active view.
func (m Model) forward(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch m.view {
	case SearchView:
		m.query, cmd = m.query.Update(msg)
	case ResultsView:
		m.results, cmd = m.results.Update(msg)
	case DraftView:
		m.tracks, cmd = m.tracks.Update(msg)
	case RenameView:
		m.name, cmd = m.name.Update(msg)
	}
	return m, cmd
}

func (m Model) handleMsg(msg Msg) (tea.Model, tea.Cmd) {
	switch msg.kind {
	case MsgSearchDone:
		res := msg.data.(searchResult)
		if res.query != m.lastQuery {
			return m, nil
		}
		m.searching = false
		m.found = res.tracks
		m.results.Title = fmt.Sprintf("Results for %q (%d)", res.query, len(res.tracks))
		cmd := m.results.SetItems(trackItems(m.found, m.draft))
		m.results.Select(0)
		if len(res.tracks) == 0 {
			notify := m.setNotice(fmt.Sprintf("No tracks found for %q", res.query), noticeWarn)
			return m, tea.Batch(cmd, notify)
		}
		return m, cmd
	case MsgSaveDone:
		res := msg.data.(saveResult)
		m.saving = false
		switch {
		case errors.Is(res.err, shared.ErrUnauthorized):
			cmd := m.setNotice("Not authorized. Run `jam auth login` and try again.", noticeErr)
			return m, cmd
		case res.err != nil:
			m.logger.Error("save failed", "error", res.err)
			cmd := m.setNotice(fmt.Sprintf("Save failed: %v", res.err), noticeErr)
			return m, cmd
		case res.result == nil:
			cmd := m.setNotice("Save failed: nothing was saved. Check the log and try again.", noticeErr)
			return m, cmd
		}

		m.draft.Reset()
		m.syncDraft()
		m.persist()
		text := fmt.Sprintf("Saved %q with %d tracks", res.result.Name, res.result.TracksAdded)
		if res.result.URL != "" {
			text += " " + res.result.URL
		}
		cmd := m.setNotice(text, noticeOK)
		return m, cmd
	case MsgNoticeExpired:
		if id := msg.data.(int); id == m.noticeID {
			m.notice = nil
		}
		return m, nil
	}
	return m, nil
}

func (m Model) handleSearchKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		q := strings.TrimSpace(m.query.Value())
		if q == "" {
			return m, nil
		}
		m.query.Blur()
		m.view = ResultsView
		m.searching = true
		m.lastQuery = q
		return m, m.search(q)
	case key.Matches(msg, m.keys.back):
		m.query.Blur()
		m.view = ResultsView
		return m, nil
	case key.Matches(msg, m.keys.toggle):
		m.query.Blur()
		m.view = DraftView
		return m, nil
	}

	var cmd tea.Cmd
	m.query, cmd = m.query.Update(msg)
	return m, cmd
}

func (m Model) handleResultsKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		cmd := m.query.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.toggle):
		m.view = DraftView
		return m, nil
	case key.Matches(msg, m.keys.add):
		item, ok := m.results.SelectedItem().(trackItem)
		if !ok {
			return m, nil
		}
		cmd := m.addTrack(item.track)
		return m, cmd
	}

	var cmd tea.Cmd
	m.results, cmd = m.results.Update(msg)
	return m, cmd
}

func (m Model) handleDraftKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.search):
		m.view = SearchView
		cmd := m.query.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.toggle):
		m.view = ResultsView
		return m, nil
	case key.Matches(msg, m.keys.remove):
		item, ok := m.tracks.SelectedItem().(trackItem)
		if !ok || !m.draft.Remove(item.track.ID) {
			return m, nil
		}
		m.syncDraft()
		m.persist()
		cmd := m.setNotice(fmt.Sprintf("Removed %s", item.track.Name), noticeOK)
		return m, cmd
	case key.Matches(msg, m.keys.rename):
		m.view = RenameView
		m.name.SetValue(m.draft.Name)
		m.name.CursorEnd()
		cmd := m.name.Focus()
		return m, cmd
	case key.Matches(msg, m.keys.save):
		if m.saving {
			return m, nil
		}
		if m.draft.Name == "" || m.draft.Len() == 0 {
			cmd := m.setNotice("Name the playlist and add at least one track before saving.", noticeWarn)
			return m, cmd
		}
		m.saving = true
		return m, m.save(m.draft.Name, m.draft.URIs())
	}

	var cmd tea.Cmd
	m.tracks, cmd = m.tracks.Update(msg)
	return m, cmd
}

func (m Model) handleRenameKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.submit):
		m.draft.Rename(m.name.Value())
		m.name.Blur()
		m.view = DraftView
		m.syncDraft()
		m.persist()
		return m, nil
	case key.Matches(msg, m.keys.back):
		m.name.Blur()
		m.view = DraftView
		return m, nil
	}

	var cmd tea.Cmd
	m.name, cmd = m.name.Update(msg)
	return m, cmd
}

// addTrack appends t to the draft unless a track with the same id is already there.
func (m *Model) addTrack(t models.Track) tea.Cmd {
	if !m.draft.Add(t) {
		return m.setNotice(fmt.Sprintf("%s is already in the playlist", t.Name), noticeWarn)
	}
	m.syncDraft()
	m.persist()
	return m.setNotice(fmt.Sprintf("Added %s", t.Name), noticeOK)
}

func (m *Model) search(q string) tea.Cmd {
	ctx, builder := m.ctx, m.builder
	return func() tea.Msg {
		return searchDoneMsg(q, builder.Search(ctx, q))
	}
}

func (m *Model) save(name string, uris []string) tea.Cmd {
	ctx, builder := m.ctx, m.builder
	return func() tea.Msg {
		result, err := builder.SavePlaylist(ctx, name, uris)
		return saveDoneMsg(result, err)
	}
}

// setNotice shows text until it is replaced or [NoticeDuration] passes.
func (m *Model) setNotice(text string, kind noticeKind) tea.Cmd {
	m.noticeID++
	m.notice = &notice{text: text, kind: kind}
	id := m.noticeID
	return tea.Tick(NoticeDuration, func(time.Time) tea.Msg {
		return noticeExpiredMsg(id)
	})
}

// syncDraft rebuilds both lists from the draft so the results keep their "in playlist" marks.
func (m *Model) syncDraft() {
	name := m.draft.Name
	if name == "" {
		name = "(untitled)"
	}
	m.tracks.Title = fmt.Sprintf("%s (%d tracks)", name, m.draft.Len())
	m.tracks.SetItems(trackItems(m.draft.Tracks, nil))
	if len(m.found) > 0 {
		m.results.SetItems(trackItems(m.found, m.draft))
	}
}

func (m *Model) persist() {
	if m.drafts == nil {
		return
	}
	if err := m.drafts.Save(m.draft); err != nil {
		m.logger.Error("failed to store draft", "error", err)
	}
}

func (m *Model) resize() {
	w, h := m.width-4, m.height-10
	if h < 4 {
		h = 4
	}
	m.results.SetSize(w, h)
	m.tracks.SetSize(w, h)
	m.query.Width = w - 4
	m.name.Width = w - 10
}

func (m Model) View() string {
	var b strings.Builder

	b.WriteString(styles.title.Render("🎵 jam"))
	b.WriteString("\n")
	b.WriteString(m.query.View())
	b.WriteString("\n\n")

	switch m.view {
	case SearchView, ResultsView:
		b.WriteString(m.renderResults())
	case DraftView:
		b.WriteString(m.tracks.View())
	case RenameView:
		b.WriteString(m.renderRename())
	}

	b.WriteString("\n")
	b.WriteString(m.renderStatus())
	b.WriteString("\n")
	b.WriteString(styles.help.Render(m.help.ShortHelpView(m.helpKeys())))
	return b.String()
}

func (m Model) renderResults() string {
	if m.searching {
		return fmt.Sprintf("Searching for %q...\n", m.lastQuery)
	}
	if len(m.found) == 0 {
		return styles.help.Render("Type a query and press enter.") + "\n"
	}
	return m.results.View()
}

func (m Model) renderRename() string {
	var b strings.Builder
	b.WriteString(styles.title.Render("Rename playlist"))
	b.WriteString("\n")
	b.WriteString(m.name.View())
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderStatus() string {
	switch {
	case m.saving:
		return styles.warn.Render(fmt.Sprintf("Saving %q to Spotify...", m.draft.Name))
	case m.notice == nil:
		return ""
	}
	return styles.notice(*m.notice)
}

func (m Model) helpKeys() []key.Binding {
	switch m.view {
	case SearchView:
		return []key.Binding{m.keys.submit, m.keys.toggle, m.keys.back}
	case ResultsView:
		return []key.Binding{m.keys.add, m.keys.search, m.keys.toggle, m.keys.quit}
	case DraftView:
		return []key.Binding{m.keys.remove, m.keys.rename, m.keys.save, m.keys.search, m.keys.toggle, m.keys.quit}
	case RenameView:
		return []key.Binding{m.keys.submit, m.keys.back}
	default:
		return m.keys.ShortHelp()
	}
}

// Run starts the TUI on the alternate screen and blocks until the user quits.
func Run(ctx context.Context, opts Options) error {
	m, err := NewModel(ctx, opts)
	if err != nil {
		return err
	}

	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		return fmt.Errorf("error running TUI: %w", err)
	}
	return nil
}
