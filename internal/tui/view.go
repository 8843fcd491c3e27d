package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/nikbrunner/quill/internal/model"
	"github.com/nikbrunner/quill/internal/notify"
	"github.com/nikbrunner/quill/internal/tui/layout"
)

// renderView creates the complete outline view.
func (a App) renderView() string {
	switch a.mode {
	case ModeRename, ModeSynopsis, ModeConfirmDelete:
		return a.renderModal()
	case ModeSearch:
		return a.renderFuzzyFinder()
	case ModeHelp:
		return a.renderHelpOverlay()
	}

	paneHeight := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)

	content := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			a.renderBreadcrumb(),
			a.renderOutlinePane(paneHeight),
			a.renderDetailLine(),
			a.renderHelpBar(),
		),
	)

	// Use Place to ensure exact terminal dimensions and prevent overflow
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, content)
}

// renderBreadcrumb shows the path to the node under the cursor.
func (a App) renderBreadcrumb() string {
	row, ok := a.currentRow()
	if !ok {
		return a.styles.Title.Render("quill")
	}

	parts := []string{row.Collection.String()}
	for _, n := range a.project.Path(row.Node.ID) {
		parts = append(parts, n.Title)
	}
	return a.styles.Title.Render("quill") + a.styles.Breadcrumb.Render(strings.Join(parts, " / "))
}

func (a App) renderOutlinePane(height int) string {
	var content strings.Builder

	rowWidth := layout.CalculateRowWidth(a.width, a.layoutConfig.Pane)
	// two section headings share the pane with the rows
	visible := max(height-2, 1)
	offset := layout.CalculateViewportOffset(a.cursor, len(a.rows), visible)

	content.WriteString(a.styles.Section.Render("Binder") + "\n")
	if len(a.project.Binder) == 0 {
		content.WriteString(a.styles.Empty.Render("(empty binder)") + "\n")
	}

	trunkHeadingDone := false
	for i, row := range a.rows {
		if row.Collection == model.CollectionTrunk && !trunkHeadingDone {
			content.WriteString(a.styles.Section.Render("Trunk") + "\n")
			trunkHeadingDone = true
		}
		if i < offset || i >= offset+visible {
			continue
		}
		content.WriteString(a.renderRow(row, i == a.cursor, rowWidth) + "\n")
	}
	if !trunkHeadingDone {
		content.WriteString(a.styles.Section.Render("Trunk") + "\n")
		content.WriteString(a.styles.Empty.Render("(empty trunk)") + "\n")
	}

	style := a.styles.Pane
	if a.mode == ModeMove {
		style = a.styles.PaneMoving
	}
	return style.
		Width(a.width - 6).
		Height(height).
		Render(strings.TrimRight(content.String(), "\n"))
}

// rowMarkers returns the navigation markers for n: * active, + selected,
// ~ being moved.
func (a App) rowMarkers(n *model.Node) string {
	var b strings.Builder
	if id := a.project.ActiveNodeID; id != nil && *id == n.ID {
		b.WriteString("*")
	}
	if id := a.project.SelectedNodeID; id != nil && *id == n.ID {
		b.WriteString("+")
	}
	if id := a.project.DraggedNodeID; id != nil && *id == n.ID {
		b.WriteString("~")
	}
	if b.Len() == 0 {
		return "  "
	}
	return fmt.Sprintf("%-2s", b.String())
}

func (a App) renderRow(row Row, isCursor bool, maxWidth int) string {
	n := row.Node
	indent := strings.Repeat(" ", row.Depth*a.layoutConfig.Pane.IndentWidth)

	text := n.Title
	var suffix string
	switch {
	case n.IsFolder:
		text += "/"
	case n.IsAttachment():
		suffix = " (" + n.FileType + ")"
	}
	if row.Collection == model.CollectionBinder && n.Status != model.StatusDraft {
		suffix += " [" + string(n.Status) + "]"
	}

	line, _ := layout.TruncateText(a.rowMarkers(n)+indent+text+suffix, maxWidth, a.layoutConfig.Text)

	if isCursor {
		// Pad to fill width for highlight
		if pad := maxWidth - layout.VisibleLength(line); pad > 0 {
			line += strings.Repeat(" ", pad)
		}
		return a.styles.ItemSelected.Render(line)
	}

	switch {
	case n.IsFolder:
		return a.styles.Item.Inherit(a.styles.Folder).Render(line)
	case row.Collection == model.CollectionTrunk:
		return a.styles.Item.Inherit(a.styles.Attachment).Render(line)
	default:
		return a.styles.Item.Inherit(a.styles.Document).Render(line)
	}
}

// renderDetailLine summarizes the node under the cursor.
func (a App) renderDetailLine() string {
	row, ok := a.currentRow()
	if !ok {
		return ""
	}
	n := row.Node

	parts := []string{string(n.Status)}
	if n.IsFolder {
		parts = append(parts, fmt.Sprintf("%d children", len(n.Children)))
	}
	if n.Synopsis != "" {
		parts = append(parts, n.Synopsis)
	}
	line, _ := layout.TruncateText(strings.Join(parts, " · "), layout.CalculateRowWidth(a.width, a.layoutConfig.Pane), a.layoutConfig.Text)
	return a.styles.Synopsis.Render(line)
}

func (a App) renderModal() string {
	var title, content strings.Builder

	modalWidth := layout.CalculateModalWidth(a.width, a.layoutConfig.Modal)

	switch a.mode {
	case ModeRename:
		title.WriteString("Rename\n\n")
		content.WriteString("Title:\n")
		content.WriteString(a.modal.Input.View())

	case ModeSynopsis:
		title.WriteString("Edit Synopsis\n\n")
		content.WriteString("Synopsis:\n")
		content.WriteString(a.modal.Input.View())

	case ModeConfirmDelete:
		itemType, itemName := "Node", a.modal.EditItemID
		if n, _, ok := a.project.Find(a.modal.EditItemID); ok {
			itemName = n.Title
			switch {
			case n.IsFolder:
				itemType = "Folder"
			case n.IsAttachment():
				itemType = "Attachment"
			default:
				itemType = "Document"
			}
			if count := countDescendants(n); count > 0 {
				content.WriteString(a.styles.Help.Render(fmt.Sprintf("Also removes %d nested items.", count)) + "\n")
			}
		}
		title.WriteString(fmt.Sprintf("Delete %s %q?\n\n", itemType, itemName))
		content.WriteString(a.styles.Help.Render("This action cannot be undone.") + "\n\n")
		content.WriteString(a.renderHintsInline([]Hint{
			{Key: "y", Desc: "confirm"},
			{Key: "n", Desc: "cancel"},
		}))
	}

	modal := lipgloss.Place(
		a.width,
		a.height-3,
		lipgloss.Center,
		lipgloss.Center,
		a.styles.Modal.Width(modalWidth).Render(a.styles.Title.Render(title.String())+content.String()),
	)

	return lipgloss.JoinVertical(lipgloss.Left, modal, a.renderHelpBar())
}

func countDescendants(n *model.Node) int {
	count := -1
	n.Walk(func(*model.Node) bool {
		count++
		return true
	})
	return count
}

// renderFuzzyFinder renders the finder as a full-screen list.
func (a App) renderFuzzyFinder() string {
	var content strings.Builder
	maxWidth := layout.CalculateRowWidth(a.width, a.layoutConfig.Pane)

	content.WriteString(a.styles.Title.Render("Find") + "\n")
	content.WriteString(a.finder.Input.View() + "\n\n")

	if a.finder.Input.Value() == "" {
		content.WriteString(a.styles.Empty.Render("(type to search binder and trunk)"))
	} else if len(a.finder.Results) == 0 {
		content.WriteString(a.styles.Empty.Render("(no matches)"))
	}

	visible := layout.CalculatePaneHeight(a.height, a.layoutConfig.Pane)
	offset := layout.CalculateViewportOffset(a.finder.Cursor, len(a.finder.Results), visible)
	for i, r := range a.finder.Results {
		if i < offset || i >= offset+visible {
			continue
		}
		label := r.Node.Title
		if r.Path != "" {
			label = r.Path + " / " + label
		}
		line, _ := layout.TruncateText(r.Collection.String()+": "+label, maxWidth, a.layoutConfig.Text)
		if i == a.finder.Cursor {
			content.WriteString(a.styles.ItemSelected.Render(line) + "\n")
		} else {
			content.WriteString(a.styles.Item.Render(line) + "\n")
		}
	}

	page := a.styles.App.Render(
		lipgloss.JoinVertical(lipgloss.Left,
			strings.TrimRight(content.String(), "\n"),
			a.renderHelpBar(),
		),
	)
	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, page)
}

func (a App) renderHelpBar() string {
	var lines []string

	// Line 1: empty spacer or the newest notification
	if notices := a.notices.List(); len(notices) > 0 {
		lines = append(lines, a.renderNotice(notices[len(notices)-1]))
	} else {
		lines = append(lines, "")
	}

	if hints := a.renderHints(a.getContextualHints()); hints != "" {
		lines = append(lines, a.styles.HintLabel.Render("Keys ")+hints)
	}

	return strings.Join(lines, "\n")
}

// renderNotice renders a notification with a prefix icon based on kind.
func (a App) renderNotice(n notify.Notification) string {
	var color lipgloss.AdaptiveColor
	var prefix string

	switch n.Kind {
	case notify.KindError:
		color = lipgloss.AdaptiveColor{Light: "#CC3333", Dark: "#FF6666"}
		prefix = "✗ "
	case notify.KindWarning:
		color = lipgloss.AdaptiveColor{Light: "#CC8800", Dark: "#FFAA00"}
		prefix = "⚠ "
	case notify.KindSuccess:
		color = lipgloss.AdaptiveColor{Light: "#338833", Dark: "#66CC66"}
		prefix = "✓ "
	default:
		color = lipgloss.AdaptiveColor{Light: "#4A7070", Dark: "#5F8787"}
	}

	return lipgloss.NewStyle().Foreground(color).Bold(true).Render(prefix + n.Message)
}

func (a App) renderHelpOverlay() string {
	modalStyle := lipgloss.NewStyle().Padding(1, 2)

	var left strings.Builder
	left.WriteString(a.styles.Title.Render("nav") + "\n")
	left.WriteString("j/k  move\n")
	left.WriteString("gg   top\n")
	left.WriteString("G    bottom\n")
	left.WriteString("l    open\n")
	left.WriteString("spc  select\n")
	left.WriteString("/    find\n")
	left.WriteString("\n")
	left.WriteString(a.styles.Title.Render("move") + "\n")
	left.WriteString("m    pick up\n")
	left.WriteString("b/a  before/after\n")
	left.WriteString("i    inside\n")
	left.WriteString("0    root end\n")

	var right strings.Builder
	right.WriteString(a.styles.Title.Render("edit") + "\n")
	right.WriteString("a    add document\n")
	right.WriteString("A    add folder\n")
	right.WriteString("r    rename\n")
	right.WriteString("e    synopsis\n")
	right.WriteString("s    cycle status\n")
	right.WriteString("d    delete\n")
	right.WriteString("y    yank id\n")
	right.WriteString("\n")
	right.WriteString(a.styles.Help.Render("[?/esc] close  [q] quit"))

	leftCol := lipgloss.NewStyle().Width(24).Render(left.String())
	rightCol := lipgloss.NewStyle().Width(24).Render(right.String())
	cols := lipgloss.JoinHorizontal(lipgloss.Top, leftCol, "  ", rightCol)

	return lipgloss.Place(a.width, a.height, lipgloss.Left, lipgloss.Top, modalStyle.Render(cols))
}
