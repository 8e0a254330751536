package ui

import (
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/gravitrone/howdju/cli/internal/api"
	"github.com/gravitrone/howdju/cli/internal/config"
	"github.com/gravitrone/howdju/cli/internal/editors"
	"github.com/gravitrone/howdju/cli/internal/entity"
	"github.com/gravitrone/howdju/cli/internal/graph"
	"github.com/gravitrone/howdju/cli/internal/ui/components"
)

var toastDuration = 2500 * time.Millisecond

// --- Messages ---

type errMsg struct{ err error }
type clearToastMsg struct{}

type propositionLoadedMsg struct {
	id   string
	tree map[string]any
	err  error
}

type appToast struct {
	level string
	text  string
}

// Options pick what the app opens on.
type Options struct {
	// PropositionID is the proposition to show. Empty starts a new one.
	PropositionID string
	// Edit opens the proposition in an editor once it has loaded.
	Edit bool
	// Justify opens a new justification of the proposition.
	Justify bool
	// Counter opens a counter-justification of this justification id.
	Counter string
}

// --- App Model ---

// App is the root TUI model. It shows one proposition's justification tree
// and hosts at most one editor form on top of it.
type App struct {
	client    *api.Client
	config    *config.Config
	graph     *graph.Store
	editors   *editors.Store
	transport editors.Transport
	logger    *slog.Logger
	opts      Options

	propositionID string
	selected      int
	loading       bool
	form          *FormModel

	width       int
	height      int
	err         string
	toast       *appToast
	quitConfirm bool
}

// NewApp creates the root application model. A nil logger discards.
func NewApp(client *api.Client, cfg *config.Config, logger *slog.Logger, opts Options) App {
	if logger == nil {
		logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	g := graph.NewStore()
	var transport editors.Transport
	if client != nil {
		transport = client.EditorTransport()
	}
	return App{
		client:        client,
		config:        cfg,
		graph:         g,
		editors:       editors.New(g, logger),
		transport:     transport,
		logger:        logger.With(slog.String("component", "ui")),
		opts:          opts,
		propositionID: opts.PropositionID,
	}
}

func (a App) Init() tea.Cmd {
	if a.propositionID == "" {
		return func() tea.Msg { return startEditMsg{key: editors.NewKey(editors.TypeProposition)} }
	}
	if a.opts.Edit {
		a.editors.BeginFetch(editors.Key{Type: editors.TypeProposition, ID: a.propositionID})
	}
	return a.loadPropositionCmd(a.propositionID)
}

// startEditMsg opens a form on key, seeded from seed (nil uses the
// editor type's defaults).
type startEditMsg struct {
	key  editors.Key
	seed map[string]any
}

func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		if a.form != nil {
			f, _ := a.form.Update(msg)
			a.form = &f
		}
		return a, nil

	case errMsg:
		a.err = msg.err.Error()
		return a, nil
	case clearToastMsg:
		a.toast = nil
		return a, nil

	case propositionLoadedMsg:
		return a.handlePropositionLoaded(msg)

	case startEditMsg:
		return a.openForm(msg.key, msg.seed)

	case commitResultMsg:
		if a.form == nil {
			// The form closed while its save was in flight.
			if msg.err != nil {
				a.editors.FailCommit(msg.pending, msg.err)
			} else if err := a.editors.CompleteCommit(msg.pending, msg.canonical); err != nil {
				a.err = err.Error()
			}
			return a, nil
		}
		f, cmd := a.form.Update(msg)
		a.form = &f
		return a, cmd

	case formDoneMsg:
		return a.handleFormDone(msg)

	case tea.KeyMsg:
		if a.quitConfirm {
			switch {
			case isKey(msg, "y"):
				return a, tea.Quit
			case isKey(msg, "n"), isBack(msg):
				a.quitConfirm = false
			}
			return a, nil
		}
		if isQuit(msg) {
			if a.hasUnsaved() {
				a.quitConfirm = true
				return a, nil
			}
			return a, tea.Quit
		}
		if a.err != "" {
			a.err = ""
		}
		if a.form != nil {
			f, cmd := a.form.Update(msg)
			a.form = &f
			return a, cmd
		}
		return a.handleBrowseKeys(msg)
	}
	return a, nil
}

// --- Browsing ---

func (a App) handleBrowseKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	ids := a.justificationIDs()
	switch {
	case isKey(msg, "q"):
		return a, tea.Quit
	case isDown(msg), isKey(msg, "j"):
		if len(ids) > 0 {
			a.selected = (a.selected + 1) % len(ids)
		}
	case isUp(msg), isKey(msg, "k"):
		if len(ids) > 0 {
			a.selected = (a.selected - 1 + len(ids)) % len(ids)
		}
	case isKey(msg, "r"):
		if a.propositionID != "" {
			a.loading = true
			return a, a.loadPropositionCmd(a.propositionID)
		}
	case isKey(msg, "e"):
		if a.propositionID == "" {
			return a, nil
		}
		return a.openForm(editors.Key{Type: editors.TypeProposition, ID: a.propositionID}, a.propositionSeed())
	case isKey(msg, "n"):
		return a.openForm(editors.NewKey(editors.TypeProposition), nil)
	case isKey(msg, "+"):
		return a.openJustification(entity.Positive)
	case isKey(msg, "-"):
		return a.openJustification(entity.Negative)
	case isKey(msg, "c"):
		if a.selected < len(ids) {
			draft := entity.NewCounterJustificationDraft(ids[a.selected])
			return a.openForm(editors.NewKey(editors.TypeCounterJustification), draft)
		}
	}
	return a, nil
}

func (a App) openJustification(polarity entity.Polarity) (tea.Model, tea.Cmd) {
	if a.propositionID == "" {
		return a, nil
	}
	draft := entity.NewJustificationDraft(entity.TargetProposition, a.propositionID, polarity)
	return a.openForm(editors.NewKey(editors.TypeJustification), draft)
}

func (a App) openForm(key editors.Key, seed map[string]any) (tea.Model, tea.Cmd) {
	if a.transport == nil {
		a.err = "not connected to a howdju server"
		return a, nil
	}
	a.editors.BeginEdit(key, seed)
	f := NewFormModel(a.editors, key, a.transport, formTitle(key.Type))
	f.width = a.width
	a.form = &f
	a.logger.Debug("editor opened", slog.String("editor", key.String()))
	return a, nil
}

func (a App) handleFormDone(msg formDoneMsg) (tea.Model, tea.Cmd) {
	a.form = nil
	if msg.id == "" {
		if a.propositionID == "" {
			return a, tea.Quit
		}
		return a, nil
	}

	if msg.key.Type == editors.TypeProposition {
		a.propositionID = msg.id
	}
	toast := a.setToast("success", formTitle(msg.key.Type)+" saved")
	if a.propositionID == "" {
		return a, toast
	}
	// The new entity is in the store, but the proposition's own lists only
	// change once the server view is fetched again.
	a.loading = true
	return a, tea.Batch(toast, a.loadPropositionCmd(a.propositionID))
}

func (a App) loadPropositionCmd(id string) tea.Cmd {
	client := a.client
	return func() tea.Msg {
		if client == nil {
			return propositionLoadedMsg{id: id, err: fmt.Errorf("not connected to a howdju server")}
		}
		tree, err := client.GetProposition(id)
		return propositionLoadedMsg{id: id, tree: tree, err: err}
	}
}

func (a App) handlePropositionLoaded(msg propositionLoadedMsg) (tea.Model, tea.Cmd) {
	a.loading = false
	key := editors.Key{Type: editors.TypeProposition, ID: msg.id}
	if msg.err != nil {
		a.editors.FetchFailed(key, msg.err)
		a.err = msg.err.Error()
		a.logger.Warn("load proposition failed", slog.String("id", msg.id), slog.Any("error", msg.err))
		return a, nil
	}
	if _, err := a.graph.Receive(msg.tree, graph.Propositions); err != nil {
		a.editors.FetchFailed(key, err)
		a.err = err.Error()
		return a, nil
	}
	if ids := a.justificationIDs(); a.selected >= len(ids) {
		a.selected = 0
	}

	// Options apply once, on the first load.
	opts := a.opts
	a.opts = Options{}
	switch {
	case opts.Edit:
		return a.openForm(key, a.propositionSeed())
	case opts.Justify:
		return a.openJustification(entity.Positive)
	case opts.Counter != "":
		return a.openForm(editors.NewKey(editors.TypeCounterJustification), entity.NewCounterJustificationDraft(opts.Counter))
	}
	return a, nil
}

// --- Store Reads ---

func (a App) propositionView() map[string]any {
	if a.propositionID == "" {
		return nil
	}
	view, err := a.graph.Denormalize(a.propositionID, graph.Propositions)
	if err != nil {
		return nil
	}
	out, _ := view.(map[string]any)
	return out
}

// propositionSeed is the editable part of the stored proposition.
func (a App) propositionSeed() map[string]any {
	row, ok := a.graph.Entity(graph.Propositions.Key(), a.propositionID)
	if !ok {
		return nil
	}
	return map[string]any{"id": row["id"], "text": row["text"]}
}

func (a App) justificationIDs() []string {
	view := a.propositionView()
	if view == nil {
		return nil
	}
	ids, err := JustificationIDs(view)
	if err != nil {
		return nil
	}
	return ids
}

func (a App) hasUnsaved() bool {
	if a.form == nil {
		return false
	}
	st, ok := a.editors.State(a.form.Key())
	return ok && st.IsEditing() && len(st.DirtyFields) > 0
}

// --- View ---

func (a App) View() string {
	banner := centerBlockUniform(RenderBanner(), a.width)

	var content string
	switch {
	case a.quitConfirm:
		content = components.Indent(components.ConfirmDialog("Quit", "You have unsaved changes. Quit anyway?"), 1)
	case a.form != nil:
		content = a.form.View()
	default:
		content = a.renderBrowse()
	}
	content = centerBlockUniform(content, a.width)

	feedback := ""
	if a.err != "" {
		feedback = "\n\n" + centerBlockUniform(components.ErrorBox("Error", a.err, a.width), a.width)
	} else if a.toast != nil {
		feedback = "\n\n" + centerBlockUniform(a.renderToast(), a.width)
	}

	hints := ""
	if a.form == nil && !a.quitConfirm {
		hints = "\n\n" + components.StatusBar(a.statusHints(), a.width)
	}
	return fmt.Sprintf("%s\n\n%s%s%s", banner, content, hints, feedback)
}

func (a App) renderBrowse() string {
	if a.loading || (a.propositionID != "" && a.propositionView() == nil && a.err == "") {
		return components.Indent(MutedStyle.Render("Loading proposition..."), 2)
	}
	view := a.propositionView()
	if view == nil {
		return components.Indent(MutedStyle.Render("No proposition loaded."), 2)
	}
	selected := ""
	if ids := a.justificationIDs(); a.selected < len(ids) {
		selected = ids[a.selected]
	}
	tree, err := RenderJustificationTree(view, "", selected)
	if err != nil {
		return components.ErrorBox("Cannot render", err.Error(), a.width)
	}
	out := components.Indent(components.Box(strings.TrimRight(tree, "\n"), a.width), 1)
	if !a.config.IsLoggedIn() {
		out += "\n" + components.Indent(MutedStyle.Render("Not logged in: run 'howdju login' to save changes."), 2)
	}
	return out
}

func (a App) statusHints() []components.KeyHint {
	var hints []components.KeyHint
	if len(a.justificationIDs()) > 0 {
		hints = append(hints,
			components.KeyHint{Key: "↑/↓", Action: "Select"},
			components.KeyHint{Key: "c", Action: "Counter"},
		)
	}
	return append(hints, []components.KeyHint{
		{Key: "+/-", Action: "Justify"},
		{Key: "e", Action: "Edit"},
		{Key: "n", Action: "New"},
		{Key: "r", Action: "Reload"},
		{Key: "q", Action: "Quit"},
	}...)
}

func (a *App) setToast(level, text string) tea.Cmd {
	a.toast = &appToast{
		level: level,
		text:  components.SanitizeOneLine(text),
	}
	return tea.Tick(toastDuration, func(time.Time) tea.Msg {
		return clearToastMsg{}
	})
}

func (a App) renderToast() string {
	if a.toast == nil {
		return ""
	}
	title := "Info"
	switch a.toast.level {
	case "success":
		title = "Success"
	case "warning":
		title = "Warning"
	case "error":
		return components.ErrorBox("Error", a.toast.text, a.width)
	}
	return components.TitledBox(title, a.toast.text, a.width)
}

func formTitle(t editors.Type) string {
	switch t {
	case editors.TypeProposition:
		return "Proposition"
	case editors.TypeStatement:
		return "Statement"
	case editors.TypePersorg:
		return "Persorg"
	case editors.TypeJustification:
		return "Justification"
	case editors.TypeCounterJustification:
		return "Counter-justification"
	case editors.TypePropositionCompound:
		return "Proposition compound"
	case editors.TypeWritQuote:
		return "Writ quote"
	default:
		return string(t)
	}
}

func centerBlockUniform(s string, width int) string {
	if width <= 0 {
		return s
	}
	lines := strings.Split(s, "\n")
	maxWidth := 0
	for _, line := range lines {
		w := lipgloss.Width(line)
		if w > maxWidth {
			maxWidth = w
		}
	}
	if maxWidth <= 0 || maxWidth >= width {
		return s
	}
	pad := (width - maxWidth) / 2
	if pad <= 0 {
		return s
	}
	prefix := strings.Repeat(" ", pad)
	for i := range lines {
		if lines[i] != "" {
			lines[i] = prefix + lines[i]
		}
	}
	return strings.Join(lines, "\n")
}
