package controller

import (
	"sync"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/matt-steen/todo-relay/pkg/view"
	"github.com/rivo/tview"
)

// ListContent implements tview.TableContent, which tview.Table uses to update data.
type ListContent struct {
	tview.TableContentReadOnly

	selector *view.Selector
	list     todo.ListName

	mu   sync.Mutex
	rows []view.Row
}

// NewListContent creates the content of the table showing list.
func NewListContent(selector *view.Selector, list todo.ListName) *ListContent {
	l := &ListContent{selector: selector, list: list}
	l.Reload()

	return l
}

// Reload re-derives the rows from the store.
func (l *ListContent) Reload() {
	rows := l.selector.RowsOf(l.list)

	l.mu.Lock()
	l.rows = rows
	l.mu.Unlock()
}

// Rows returns the rows currently shown.
func (l *ListContent) Rows() []view.Row {
	l.mu.Lock()
	defer l.mu.Unlock()

	return l.rows
}

func (l *ListContent) headerCell(text string, expansion int) *tview.TableCell {
	return tview.NewTableCell(text).SetExpansion(expansion).SetTextColor(tcell.ColorYellow).SetSelectable(false)
}

// GetCell returns the cell at the given position or nil if no cell.
func (l *ListContent) GetCell(row, col int) *tview.TableCell {
	if row == 0 {
		switch col {
		case 0:
			return l.headerCell("todo", 1)
		case 1:
			return l.headerCell("description", descTitleRatio)
		case 2:
			return l.headerCell("from / to", 1)
		case 3:
			return l.headerCell("status", 1)
		}
	}

	l.mu.Lock()
	defer l.mu.Unlock()

	if row-1 >= len(l.rows) || row < 1 {
		return nil
	}

	r := l.rows[row-1]

	switch col {
	case 0:
		cell := tview.NewTableCell(r.Item.Message).SetExpansion(1).SetReference(r.Item.ID)
		if r.Editing {
			cell.SetTextColor(tcell.ColorOrange)
		}

		return cell
	case 1:
		return tview.NewTableCell(r.Item.Description).SetExpansion(descTitleRatio)
	case 2:
		color := tcell.ColorWhite
		if r.Item.Origin == todo.OriginOut {
			color = tcell.ColorGreen
		}

		return tview.NewTableCell(r.Created).SetExpansion(1).SetTextColor(color)
	case 3:
		return tview.NewTableCell(r.Status).SetExpansion(1).SetTextColor(tcell.ColorGray)
	}

	return nil
}

// GetRowCount returns the number of rows in the table.
func (l *ListContent) GetRowCount() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.rows) + 1
}

// GetColumnCount returns the number of columns in the table.
func (l *ListContent) GetColumnCount() int {
	return 4
}
