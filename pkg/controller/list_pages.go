package controller

import (
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/matt-steen/todo-relay/pkg/view"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

func pageName(name string) string {
	return "page-" + name
}

func (c *Controller) getListGrid(list todo.ListName) *tview.Grid {
	c.listHeaders[list] = c.getListHeader(list)
	c.listTables[list] = c.getTable(list)

	grid := tview.NewGrid().SetBorders(true).SetRows(7, 0)

	grid.AddItem(c.listHeaders[list], 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.listTables[list], 1, 0, 1, 1, 0, 0, true)

	return grid
}

// getListHeader returns the header used for each list of todos.
// it shows the tabs at the top, followed by 3 columns listing keyboard shortcuts.
// the first column contains misc shortcuts, the second contains "Show <list>" shortcuts,
// and the third contains the shortcuts acting on the selected todo. All three columns are
// sorted alphabetically.
func (c *Controller) getListHeader(list todo.ListName) *tview.Table {
	table := tview.NewTable().SetBorders(false).SetSelectable(false, false)

	row := 1

	shortcuts := map[int][]string{
		0: {},
		1: {},
		2: {},
	}

	for key, event := range c.events {
		text := fmt.Sprintf("[orange]<%s>[white] %s", tcell.KeyNames[key], event.Description)

		switch {
		case strings.HasPrefix(event.Description, "Show"):
			shortcuts[1] = append(shortcuts[1], text)
		case key == KeyQ || key == KeyN || key == KeyR || key == KeyU:
			shortcuts[0] = append(shortcuts[0], text)
		default:
			shortcuts[2] = append(shortcuts[2], text)
		}
	}

	for col := 0; col < 3; col++ {
		sort.Strings(shortcuts[col])
	}

	for row-1 < len(shortcuts[0]) || row-1 < len(shortcuts[1]) || row-1 < len(shortcuts[2]) {
		for col := 0; col < 3; col++ {
			if row-1 < len(shortcuts[col]) {
				table.SetCell(row, col, tview.NewTableCell(shortcuts[col][row-1]).SetExpansion(1))
			}
		}

		row++
	}

	return table
}

// setListTitle writes the tabs line of the header of list, highlighting list itself.
func (c *Controller) setListTitle(list todo.ListName) {
	tabs := make([]string, 0, len(todo.AllLists))

	for _, l := range todo.AllLists {
		color := "white"
		if l == list {
			color = "yellow"
		}

		tabs = append(tabs, fmt.Sprintf("[%s]%s", color, c.selector.TabTitle(l)))
	}

	title := fmt.Sprintf("[yellow]%s[white] (%s)   %s", view.Heading(list), c.user, strings.Join(tabs, "[white] | "))
	c.listHeaders[list].SetCell(0, 0, tview.NewTableCell(title))
}

func (c *Controller) getTodoForRow(list todo.ListName, row int) *todo.Item {
	rows := c.listContents[list].Rows()

	// adjust for the header row
	if idx := row - 1; idx < len(rows) && idx >= 0 {
		item := rows[idx].Item

		return &item
	}

	return nil
}

func (c *Controller) getTable(list todo.ListName) *tview.Table {
	table := tview.NewTable().SetBorders(false)

	content := NewListContent(c.selector, list)
	c.listContents[list] = content

	table.SetContent(content)
	table.SetSelectable(true, false)
	table.SetFixed(1, 0)

	table.SetSelectionChangedFunc(func(row, col int) {
		c.setSelectedTodo(row, c.getTodoForRow(list, row))
	})

	return table
}

func (c *Controller) setSelectedTodo(row int, item *todo.Item) {
	c.selectedItem = item

	id := "nil"
	if item != nil {
		id = item.ID
	}

	log.Debug().
		Str("list", string(c.selector.OpenList())).
		Int("row", row).
		Msgf("setting selected todo to '%s'", id)
}

// syncSelection keeps the selection of the open list on a valid row after its content changed.
func (c *Controller) syncSelection() {
	list := c.selector.OpenList()
	table := c.listTables[list]
	length := len(c.listContents[list].Rows())

	row, _ := table.GetSelection()

	switch {
	case length == 0:
		c.setSelectedTodo(-1, nil)
	case row-1 >= length:
		table.Select(length, 0)
	case row < 1:
		table.Select(1, 0)
	default:
		c.setSelectedTodo(row, c.getTodoForRow(list, row))
	}
}

func (c *Controller) showList(list todo.ListName) {
	c.selector.Open(list)

	c.app.SetInputCapture(c.keyboard)

	c.setListTitle(list)
	c.syncSelection()

	c.pages.SwitchToPage(pageName(string(list)))
}
