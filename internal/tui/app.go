package tui

import (
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/atotto/clipboard"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/nikbrunner/quill/internal/model"
	"github.com/nikbrunner/quill/internal/notify"
	"github.com/nikbrunner/quill/internal/search"
	"github.com/nikbrunner/quill/internal/storage"
	"github.com/nikbrunner/quill/internal/tui/layout"
	"go.uber.org/zap"
)

// noticeTickMsg asks for a redraw after a notification may have expired.
type noticeTickMsg struct{}

// App is the main bubbletea model for the project outline.
type App struct {
	project      *model.Project
	storage      storage.Storage
	notices      *notify.Center
	noticeFor    time.Duration
	copyText     func(string) error
	logger       *zap.Logger
	keys         KeyMap
	styles       Styles
	layoutConfig layout.LayoutConfig

	mode   Mode
	rows   []Row
	cursor int

	// For gg command
	lastKeyWasG bool

	modal  ModalState
	finder SearchState

	// Window dimensions
	width  int
	height int
}

// AppParams holds parameters for creating a new App.
type AppParams struct {
	Project      *model.Project
	Storage      storage.Storage      // optional, changes are not persisted if nil
	Notices      *notify.Center       // optional, a private center is created if nil
	NoticeFor    time.Duration        // optional, uses notify.DefaultDuration if zero
	Clipboard    func(string) error   // optional, uses the system clipboard if nil
	Logger       *zap.Logger          // optional, uses a no-op logger if nil
	Keys         *KeyMap              // optional, uses default if nil
	Styles       *Styles              // optional, uses default if nil
	LayoutConfig *layout.LayoutConfig // optional, uses default if nil
	Width        int                  // optional, defaults to 80
	Height       int                  // optional, defaults to 24
}

// NewApp creates a new App with the given parameters.
func NewApp(params AppParams) App {
	keys := DefaultKeyMap()
	if params.Keys != nil {
		keys = *params.Keys
	}

	styles := DefaultStyles()
	if params.Styles != nil {
		styles = *params.Styles
	}

	layoutCfg := layout.DefaultConfig()
	if params.LayoutConfig != nil {
		layoutCfg = *params.LayoutConfig
	}

	notices := params.Notices
	if notices == nil {
		notices = notify.NewCenter(notify.CenterParams{})
	}

	noticeFor := params.NoticeFor
	if noticeFor <= 0 {
		noticeFor = notify.DefaultDuration
	}

	copyText := params.Clipboard
	if copyText == nil {
		copyText = clipboard.WriteAll
	}

	logger := params.Logger
	if logger == nil {
		logger = zap.NewNop()
	}

	width, height := params.Width, params.Height
	if width == 0 {
		width = 80
	}
	if height == 0 {
		height = 24
	}

	app := App{
		project:      params.Project,
		storage:      params.Storage,
		notices:      notices,
		noticeFor:    noticeFor,
		copyText:     copyText,
		logger:       logger,
		keys:         keys,
		styles:       styles,
		layoutConfig: layoutCfg,
		modal:        NewModalState(layoutCfg),
		finder:       NewSearchState(layoutCfg),
		width:        width,
		height:       height,
	}

	app.refreshRows()
	if active := app.project.ActiveNodeID; active != nil {
		app.focus(*active)
	}
	return app
}

// refreshRows rebuilds the visible outline and keeps the cursor in range.
func (a *App) refreshRows() {
	a.rows = flattenRows(a.project)
	if a.cursor >= len(a.rows) {
		a.cursor = len(a.rows) - 1
	}
	if a.cursor < 0 {
		a.cursor = 0
	}
}

// focus moves the cursor onto id if it is visible.
func (a *App) focus(id string) {
	for i, r := range a.rows {
		if r.Node.ID == id {
			a.cursor = i
			return
		}
	}
}

// currentRow returns the row under the cursor.
func (a App) currentRow() (Row, bool) {
	if len(a.rows) == 0 || a.cursor >= len(a.rows) {
		return Row{}, false
	}
	return a.rows[a.cursor], true
}

// Cursor returns the current cursor position.
func (a App) Cursor() int {
	return a.cursor
}

// Mode returns the current interaction mode.
func (a App) Mode() Mode {
	return a.mode
}

// Rows returns the visible outline rows.
func (a App) Rows() []Row {
	return a.rows
}

// Project returns the project being edited.
func (a App) Project() *model.Project {
	return a.project
}

// Init implements tea.Model.
func (a App) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model.
func (a App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = msg.Width
		a.height = msg.Height
		return a, nil

	case noticeTickMsg:
		return a, nil

	case tea.KeyMsg:
		switch a.mode {
		case ModeRename, ModeSynopsis:
			return a.updateForm(msg)
		case ModeConfirmDelete:
			return a.updateConfirmDelete(msg)
		case ModeMove:
			return a.updateMove(msg)
		case ModeSearch:
			return a.updateSearch(msg)
		case ModeHelp:
			return a.updateHelp(msg)
		default:
			return a.updateNormal(msg)
		}
	}

	// Cursor blink and friends
	var cmd tea.Cmd
	switch a.mode {
	case ModeRename, ModeSynopsis:
		a.modal.Input, cmd = a.modal.Input.Update(msg)
	case ModeSearch:
		a.finder.Input, cmd = a.finder.Input.Update(msg)
	}
	return a, cmd
}

func (a App) updateNormal(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	// Handle gg sequence
	if key.Matches(msg, a.keys.Top) {
		if a.lastKeyWasG {
			a.cursor = 0
			a.lastKeyWasG = false
			return a, nil
		}
		a.lastKeyWasG = true
		return a, nil
	}
	a.lastKeyWasG = false

	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit

	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)

	case key.Matches(msg, a.keys.Bottom):
		if len(a.rows) > 0 {
			a.cursor = len(a.rows) - 1
		}

	case key.Matches(msg, a.keys.Open):
		if row, ok := a.currentRow(); ok {
			a.project.SetActiveNode(row.Node.ID)
		}

	case key.Matches(msg, a.keys.Select):
		if row, ok := a.currentRow(); ok {
			sel := a.project.SelectedNodeID
			if sel != nil && *sel == row.Node.ID {
				a.project.SetSelectedNode(nil)
			} else {
				id := row.Node.ID
				a.project.SetSelectedNode(&id)
			}
		}

	case key.Matches(msg, a.keys.AddDocument):
		return a.addNode(false)

	case key.Matches(msg, a.keys.AddFolder):
		return a.addNode(true)

	case key.Matches(msg, a.keys.Rename):
		if row, ok := a.currentRow(); ok {
			return a.openForm(ModeRename, row.Node.ID, row.Node.Title)
		}

	case key.Matches(msg, a.keys.Synopsis):
		if row, ok := a.currentRow(); ok {
			return a.openForm(ModeSynopsis, row.Node.ID, row.Node.Synopsis)
		}

	case key.Matches(msg, a.keys.Status):
		return a.cycleStatus()

	case key.Matches(msg, a.keys.Delete):
		if row, ok := a.currentRow(); ok {
			a.modal.EditItemID = row.Node.ID
			a.mode = ModeConfirmDelete
		}

	case key.Matches(msg, a.keys.Move):
		if row, ok := a.currentRow(); ok {
			id := row.Node.ID
			a.project.SetDraggedNodeID(&id)
			a.mode = ModeMove
		}

	case key.Matches(msg, a.keys.Yank):
		if row, ok := a.currentRow(); ok {
			if err := a.copyText(row.Node.ID); err != nil {
				return a, a.notify("Copy failed: "+err.Error(), notify.KindError)
			}
			return a, a.notify("Copied id of "+row.Node.Title, notify.KindSuccess)
		}

	case key.Matches(msg, a.keys.Find):
		a.finder.Reset()
		a.mode = ModeSearch
		cmd := a.finder.Input.Focus()
		return a, cmd

	case key.Matches(msg, a.keys.Help):
		a.mode = ModeHelp
	}

	return a, nil
}

func (a *App) moveCursor(delta int) {
	next := a.cursor + delta
	if next < 0 || next >= len(a.rows) {
		return
	}
	a.cursor = next
}

// addParent picks where a new node goes: inside a folder under the cursor,
// next to a document under the cursor, or the binder root otherwise.
func (a App) addParent() *string {
	row, ok := a.currentRow()
	if !ok || row.Collection == model.CollectionTrunk {
		return nil
	}
	if row.Node.IsFolder {
		id := row.Node.ID
		return &id
	}
	if row.Node.ParentID == nil {
		return nil
	}
	id := *row.Node.ParentID
	return &id
}

func (a App) addNode(isFolder bool) (tea.Model, tea.Cmd) {
	n, err := a.project.AddNode(a.addParent(), isFolder)
	if err != nil {
		return a, a.notify(err.Error(), notify.KindError)
	}
	a.refreshRows()
	a.focus(n.ID)

	saveCmd := a.saveProject()
	m, formCmd := a.openForm(ModeRename, n.ID, n.Title)
	return m, tea.Batch(saveCmd, formCmd)
}

func (a App) openForm(mode Mode, id, value string) (tea.Model, tea.Cmd) {
	a.modal.Reset()
	a.modal.EditItemID = id
	// the limit never cuts text that is already stored
	if mode == ModeSynopsis {
		a.modal.Input.CharLimit = 0
	} else {
		a.modal.Input.CharLimit = max(a.layoutConfig.Input.TitleCharLimit, utf8.RuneCountInString(value))
	}
	a.modal.Input.SetValue(value)
	a.modal.Input.CursorEnd()
	a.mode = mode
	cmd := a.modal.Input.Focus()
	return a, cmd
}

func (a App) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.modal.Reset()
		a.mode = ModeNormal
		return a, nil

	case key.Matches(msg, a.keys.Confirm):
		value := strings.TrimSpace(a.modal.Input.Value())
		var patch model.NodePatch
		if a.mode == ModeRename {
			if value == "" {
				return a, a.notify("Title cannot be empty", notify.KindWarning)
			}
			patch.Title = &value
		} else {
			patch.Synopsis = &value
		}

		id := a.modal.EditItemID
		a.modal.Reset()
		a.mode = ModeNormal
		if !a.project.UpdateNode(id, patch) {
			return a, a.notify("Node no longer exists", notify.KindError)
		}
		return a, a.saveProject()
	}

	var cmd tea.Cmd
	a.modal.Input, cmd = a.modal.Input.Update(msg)
	return a, cmd
}

// nextStatus cycles draft -> revised -> final -> draft.
func nextStatus(s model.Status) model.Status {
	switch s {
	case model.StatusDraft:
		return model.StatusRevised
	case model.StatusRevised:
		return model.StatusFinal
	default:
		return model.StatusDraft
	}
}

func (a App) cycleStatus() (tea.Model, tea.Cmd) {
	row, ok := a.currentRow()
	if !ok {
		return a, nil
	}
	status := nextStatus(row.Node.Status)
	a.project.UpdateNode(row.Node.ID, model.NodePatch{Status: &status})
	infoCmd := a.notify("Status: "+string(status), notify.KindInfo)
	return a, tea.Batch(infoCmd, a.saveProject())
}

func (a App) updateConfirmDelete(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Yes):
		id := a.modal.EditItemID
		title := ""
		if n, _, ok := a.project.Find(id); ok {
			title = n.Title
		}
		a.modal.Reset()
		a.mode = ModeNormal
		if !a.project.DeleteNode(id) {
			return a, a.notify("Node no longer exists", notify.KindError)
		}
		a.refreshRows()
		infoCmd := a.notify(fmt.Sprintf("Deleted %q", title), notify.KindSuccess)
		return a, tea.Batch(infoCmd, a.saveProject())

	case key.Matches(msg, a.keys.No):
		a.modal.Reset()
		a.mode = ModeNormal
	}
	return a, nil
}

func (a App) updateMove(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Cancel):
		a.endMove()

	case key.Matches(msg, a.keys.Down):
		a.moveCursor(1)

	case key.Matches(msg, a.keys.Up):
		a.moveCursor(-1)

	case key.Matches(msg, a.keys.MoveBefore):
		return a.applyMove(model.PositionBefore)

	case key.Matches(msg, a.keys.MoveAfter):
		return a.applyMove(model.PositionAfter)

	case key.Matches(msg, a.keys.MoveInside):
		return a.applyMove(model.PositionInside)

	case key.Matches(msg, a.keys.MoveRoot):
		return a.applyMove("")
	}
	return a, nil
}

// applyMove drops the dragged node relative to the row under the cursor.
// An empty position appends it to the end of its collection's root.
func (a App) applyMove(pos model.Position) (tea.Model, tea.Cmd) {
	dragged := a.project.DraggedNodeID
	if dragged == nil {
		a.endMove()
		return a, nil
	}
	draggedID := *dragged

	var target *string
	if pos != "" {
		row, ok := a.currentRow()
		if !ok {
			return a, nil
		}
		id := row.Node.ID
		target = &id
	}

	if err := a.project.MoveNode(draggedID, target, pos); err != nil {
		a.logger.Debug("tui move rejected", zap.String("draggedId", draggedID), zap.Error(err))
		return a, a.notify("Cannot move: "+err.Error(), notify.KindWarning)
	}

	a.endMove()
	a.refreshRows()
	a.focus(draggedID)
	return a, a.saveProject()
}

func (a *App) endMove() {
	a.project.SetDraggedNodeID(nil)
	a.mode = ModeNormal
}

func (a App) updateSearch(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.Type {
	case tea.KeyEsc:
		a.finder.Reset()
		a.mode = ModeNormal
		return a, nil

	case tea.KeyEnter:
		if a.finder.Cursor < len(a.finder.Results) {
			id := a.finder.Results[a.finder.Cursor].Node.ID
			a.project.SetActiveNode(id)
			a.focus(id)
		}
		a.finder.Reset()
		a.mode = ModeNormal
		return a, nil

	case tea.KeyUp, tea.KeyCtrlP:
		if a.finder.Cursor > 0 {
			a.finder.Cursor--
		}
		return a, nil

	case tea.KeyDown, tea.KeyCtrlN:
		if a.finder.Cursor < len(a.finder.Results)-1 {
			a.finder.Cursor++
		}
		return a, nil
	}

	var cmd tea.Cmd
	a.finder.Input, cmd = a.finder.Input.Update(msg)
	a.finder.Results = search.FuzzySearchNodes(a.project, a.finder.Input.Value())
	a.finder.Cursor = 0
	return a, cmd
}

func (a App) updateHelp(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Help), key.Matches(msg, a.keys.Quit), key.Matches(msg, a.keys.Cancel):
		a.mode = ModeNormal
	}
	return a, nil
}

// notify shows a message and schedules a redraw for when it expires.
func (a App) notify(message string, kind notify.Kind) tea.Cmd {
	a.notices.Add(message, kind, a.noticeFor)
	return tea.Tick(a.noticeFor+100*time.Millisecond, func(time.Time) tea.Msg {
		return noticeTickMsg{}
	})
}

// saveProject persists the project to storage (if storage is configured).
// This should be called after any structural change.
func (a App) saveProject() tea.Cmd {
	if a.storage == nil {
		return nil
	}
	if err := a.storage.Save(a.project); err != nil {
		a.logger.Error("save failed", zap.String("path", a.storage.Path()), zap.Error(err))
		return a.notify("Save failed: "+err.Error(), notify.KindError)
	}
	return nil
}

// View implements tea.Model.
func (a App) View() string {
	return a.renderView()
}
