package ui

import (
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/gravitrone/howdju/cli/internal/editors"
	"github.com/gravitrone/howdju/cli/internal/entity"
	"github.com/gravitrone/howdju/cli/internal/fieldpath"
	"github.com/gravitrone/howdju/cli/internal/ui/components"
)

// --- Messages ---

type commitResultMsg struct {
	pending   editors.PendingCommit
	canonical map[string]any
	err       error
}

// formDoneMsg reports that the editor closed. ID is the saved entity's id,
// empty when the edit was canceled.
type formDoneMsg struct {
	key editors.Key
	id  string
}

// --- Fields ---

type fieldKind int

const (
	fieldText fieldKind = iota
	fieldChoice
	fieldToggle
)

type formField struct {
	label   string
	path    string
	kind    fieldKind
	choices []string

	// list and index locate the list item the field belongs to, so it can
	// be duplicated or removed. list is empty for fields outside lists.
	list    string
	index   int
	factory func() any
}

// --- Form Model ---

// FormModel edits one draft held in an editors.Store. Every keystroke is
// an editor action; the store owns the draft and its validation state.
type FormModel struct {
	store     *editors.Store
	key       editors.Key
	transport editors.Transport
	title     string
	focus     int
	width     int
	err       string
}

// NewFormModel edits key, which must already be started in store.
func NewFormModel(store *editors.Store, key editors.Key, transport editors.Transport, title string) FormModel {
	return FormModel{store: store, key: key, transport: transport, title: title}
}

func (m FormModel) Key() editors.Key { return m.key }

func (m FormModel) Init() tea.Cmd { return nil }

func (m FormModel) Update(msg tea.Msg) (FormModel, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		return m, nil
	case commitResultMsg:
		return m.handleCommitResult(msg)
	case tea.KeyMsg:
		return m.handleKey(msg)
	}
	return m, nil
}

func (m FormModel) handleKey(msg tea.KeyMsg) (FormModel, tea.Cmd) {
	fields := m.fields()
	if len(fields) == 0 {
		if isBack(msg) {
			return m.cancel()
		}
		return m, nil
	}
	if m.focus >= len(fields) {
		m.focus = len(fields) - 1
	}
	current := fields[m.focus]

	switch {
	case isSubmit(msg):
		return m.submit()
	case isBack(msg):
		return m.cancel()
	case isDown(msg):
		m.blur(current)
		m.focus = (m.focus + 1) % len(fields)
		return m, nil
	case isUp(msg):
		m.blur(current)
		m.focus = (m.focus - 1 + len(fields)) % len(fields)
		return m, nil
	case isKey(msg, "ctrl+a"):
		return m.addItem(current), nil
	case isKey(msg, "ctrl+d"):
		return m.removeItem(current), nil
	}

	switch current.kind {
	case fieldChoice:
		if isKey(msg, "left", "right", " ") || isEnter(msg) {
			m.cycleChoice(current, isKey(msg, "left"))
		}
	case fieldToggle:
		if isKey(msg, " ") || isEnter(msg) {
			on, _ := m.value(current.path).(bool)
			m.change(current.path, !on)
		}
	case fieldText:
		text, _ := m.value(current.path).(string)
		switch {
		case isKey(msg, "backspace", "delete"):
			m.change(current.path, dropLastRune(text))
		case isKey(msg, "ctrl+u"):
			m.change(current.path, "")
		case msg.Type == tea.KeySpace:
			m.change(current.path, text+" ")
		case msg.Type == tea.KeyRunes:
			m.change(current.path, text+string(msg.Runes))
		}
	}
	return m, nil
}

// --- Actions ---

func (m *FormModel) dispatch(action editors.Action) {
	if err := m.store.Dispatch(action); err != nil {
		m.err = err.Error()
		return
	}
	m.err = ""
}

func (m *FormModel) change(path string, value any) {
	m.dispatch(editors.PropertyChange{Key: m.key, Changes: map[string]any{path: value}})
}

func (m *FormModel) blur(f formField) {
	m.dispatch(editors.BlurField{Key: m.key, Path: f.path})
}

func (m *FormModel) cycleChoice(f formField, backward bool) {
	cur, _ := m.value(f.path).(string)
	idx := 0
	for i, c := range f.choices {
		if c == cur {
			idx = i
		}
	}
	if backward {
		idx = (idx - 1 + len(f.choices)) % len(f.choices)
	} else {
		idx = (idx + 1) % len(f.choices)
	}
	m.change(f.path, f.choices[idx])
}

func (m FormModel) addItem(f formField) FormModel {
	if f.list == "" {
		return m
	}
	m.dispatch(editors.AddListItem{Key: m.key, Path: f.list, Index: f.index + 1, Factory: f.factory})
	if m.err == "" {
		m.focus++
	}
	return m
}

func (m FormModel) removeItem(f formField) FormModel {
	if f.list == "" {
		return m
	}
	m.dispatch(editors.RemoveListItem{Key: m.key, Path: f.list, Index: f.index})
	if m.focus > 0 && m.focus >= len(m.fields()) {
		m.focus = len(m.fields()) - 1
	}
	return m
}

func (m FormModel) cancel() (FormModel, tea.Cmd) {
	m.dispatch(editors.CancelEdit{Key: m.key})
	key := m.key
	return m, func() tea.Msg { return formDoneMsg{key: key} }
}

func (m FormModel) submit() (FormModel, tea.Cmd) {
	if !m.store.CanSubmit(m.key) {
		m.dispatch(editors.AttemptedSubmit{Key: m.key})
		return m, nil
	}
	pending, err := m.store.CommitEdit(m.key)
	if err != nil {
		m.err = err.Error()
		return m, nil
	}
	m.err = ""
	transport := m.transport
	return m, func() tea.Msg {
		canonical, err := transport(pending.Key, pending.Entity)
		return commitResultMsg{pending: pending, canonical: canonical, err: err}
	}
}

func (m FormModel) handleCommitResult(msg commitResultMsg) (FormModel, tea.Cmd) {
	if msg.pending.Key != m.key {
		return m, nil
	}
	if msg.err != nil {
		m.store.FailCommit(msg.pending, msg.err)
		m.err = ""
		return m, nil
	}
	if err := m.store.CompleteCommit(msg.pending, msg.canonical); err != nil {
		m.err = err.Error()
		return m, nil
	}
	if st, ok := m.store.State(m.key); ok && st.IsEditing() {
		// Edited again while saving; keep going on the newer draft.
		return m, nil
	}
	key := m.key
	id, _ := msg.canonical["id"].(string)
	return m, func() tea.Msg { return formDoneMsg{key: key, id: id} }
}

// --- Field Layout ---

func (m FormModel) value(path string) any {
	st, ok := m.store.State(m.key)
	if !ok {
		return nil
	}
	v, _ := fieldpath.Get(st.EditEntity, fieldpath.MustParse(path))
	return v
}

func (m FormModel) listLen(path string) int {
	items, _ := m.value(path).([]any)
	return len(items)
}

// fields lays out the draft. It is recomputed on every use since list
// lengths and the active basis change with the draft.
func (m FormModel) fields() []formField {
	st, ok := m.store.State(m.key)
	if !ok || !st.IsEditing() {
		return nil
	}
	switch m.key.Type {
	case editors.TypeProposition:
		return []formField{{label: "Text", path: "text"}}
	case editors.TypePersorg:
		return persorgFields("")
	case editors.TypeStatement:
		return append(persorgFields("speaker.")[:1], formField{label: "Says", path: "sentence.text"})
	case editors.TypePropositionCompound:
		return m.atomFields("atoms")
	case editors.TypeWritQuote:
		return m.writQuoteFields("")
	case editors.TypeJustification:
		fields := []formField{{
			label:   "Polarity",
			path:    "polarity",
			kind:    fieldChoice,
			choices: []string{string(entity.Positive), string(entity.Negative)},
		}}
		return append(fields, m.basisFields()...)
	case editors.TypeCounterJustification:
		return m.basisFields()
	default:
		return nil
	}
}

func persorgFields(prefix string) []formField {
	return []formField{
		{label: "Name", path: prefix + "name"},
		{label: "Organization", path: prefix + "isOrganization", kind: fieldToggle},
		{label: "Known for", path: prefix + "knownFor"},
		{label: "Website", path: prefix + "websiteUrl"},
		{label: "Wikipedia", path: prefix + "wikipediaUrl"},
		{label: "Twitter", path: prefix + "twitterUrl"},
	}
}

func (m FormModel) basisFields() []formField {
	fields := []formField{{
		label:   "Basis",
		path:    "basis.type",
		kind:    fieldChoice,
		choices: []string{string(entity.BasisPropositionCompound), string(entity.BasisWritQuote)},
	}}
	basisType, _ := m.value("basis.type").(string)
	switch entity.BasisType(basisType) {
	case entity.BasisWritQuote:
		return append(fields, m.writQuoteFields("basis.writQuote.")...)
	default:
		return append(fields, m.atomFields("basis.propositionCompound.atoms")...)
	}
}

func (m FormModel) atomFields(list string) []formField {
	n := m.listLen(list)
	fields := make([]formField, 0, n)
	for i := 0; i < n; i++ {
		fields = append(fields, formField{
			label:   fmt.Sprintf("Premise %d", i+1),
			path:    fmt.Sprintf("%s[%d].entity.text", list, i),
			list:    list,
			index:   i,
			factory: entity.NewAtom,
		})
	}
	return fields
}

func (m FormModel) writQuoteFields(prefix string) []formField {
	fields := []formField{
		{label: "Quote", path: prefix + "quoteText"},
		{label: "Source", path: prefix + "writ.title"},
	}
	list := prefix + "urls"
	for i := 0; i < m.listLen(list); i++ {
		fields = append(fields, formField{
			label:   fmt.Sprintf("URL %d", i+1),
			path:    fmt.Sprintf("%s[%d].url", list, i),
			list:    list,
			index:   i,
			factory: entity.NewURL,
		})
	}
	return fields
}

// --- View ---

func (m FormModel) View() string {
	st, ok := m.store.State(m.key)
	if !ok || !st.IsEditing() {
		if ok && st.IsFetching {
			return components.Indent(MutedStyle.Render("Loading..."), 2)
		}
		return ""
	}

	visible := st.VisibleErrors()
	var b strings.Builder
	for _, e := range visible.Model {
		b.WriteString(ErrorStyle.Render(e.Message))
		b.WriteString("\n")
	}

	for i, f := range m.fields() {
		focused := i == m.focus
		label := FieldLabelStyle.Render(f.label)
		if focused {
			label = SelectedStyle.Render("› " + f.label)
		}
		b.WriteString(label)
		b.WriteString("\n  ")
		b.WriteString(m.renderValue(f, focused))
		b.WriteString("\n")
		for _, e := range visible.For(f.path) {
			b.WriteString("  ")
			b.WriteString(ErrorStyle.Render(e.Message))
			b.WriteString("\n")
		}
	}

	if divider := Divider(components.BoxContentWidth(m.width)); divider != "" {
		b.WriteString(divider)
		b.WriteString("\n")
	} else {
		b.WriteString("\n")
	}
	switch {
	case st.IsSaving:
		b.WriteString(WarningStyle.Render("Saving..."))
	case m.err != "":
		b.WriteString(ErrorStyle.Render(m.err))
	case st.CommitErr != nil && visible.IsEmpty():
		b.WriteString(ErrorStyle.Render(st.CommitErr.Error()))
	default:
		if reason := m.store.SubmitDisabledReason(m.key); reason != "" {
			b.WriteString(MutedStyle.Render("Cannot save: " + reason))
		} else {
			b.WriteString(SuccessStyle.Render("Ready to save"))
		}
	}

	hints := []components.KeyHint{
		{Key: "tab", Action: "Next"},
		{Key: "ctrl+s", Action: "Save"},
		{Key: "esc", Action: "Cancel"},
	}
	if fields := m.fields(); m.focus < len(fields) && fields[m.focus].list != "" {
		hints = append(hints, components.KeyHint{Key: "ctrl+a", Action: "Add"}, components.KeyHint{Key: "ctrl+d", Action: "Remove"})
	}
	box := components.TitledBox(m.title, b.String(), m.width)
	return components.Indent(box, 1) + "\n" + components.StatusBar(hints, m.width)
}

func (m FormModel) renderValue(f formField, focused bool) string {
	switch f.kind {
	case fieldChoice:
		cur, _ := m.value(f.path).(string)
		parts := make([]string, len(f.choices))
		for i, c := range f.choices {
			if c == cur {
				parts[i] = SelectedStyle.Render("[" + c + "]")
			} else {
				parts[i] = MutedStyle.Render(c)
			}
		}
		return strings.Join(parts, " ")
	case fieldToggle:
		if on, _ := m.value(f.path).(bool); on {
			return NormalStyle.Render("[x]")
		}
		return NormalStyle.Render("[ ]")
	default:
		text, _ := m.value(f.path).(string)
		out := NormalStyle.Render(components.SanitizeOneLine(text))
		if focused {
			out += AccentStyle.Render("█")
		}
		return out
	}
}

func dropLastRune(s string) string {
	if s == "" {
		return ""
	}
	runes := []rune(s)
	return string(runes[:len(runes)-1])
}
