package controller

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/todo-relay/pkg/feedback"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

func (c *Controller) handleFormKeys(evt *tcell.EventKey) *tcell.EventKey {
	if k, ok := c.formEvents[AsKey(evt)]; ok {
		return k.Action(evt)
	}

	return evt
}

// switchToForm opens the todo form, filled with item when editing.
func (c *Controller) switchToForm(item *todo.Item) {
	title := "New Todo"

	c.messageField.SetText("")
	c.descField.SetText("")
	c.sendToField.SetText(c.store.Assignee())

	if item != nil {
		title = "Edit Todo"

		c.messageField.SetText(item.Message)
		c.descField.SetText(item.Description)
	}

	name := "form"

	c.setFormTitle(name, title)

	c.todoForm.SetFocus(0)

	c.pages.SwitchToPage(pageName(name))

	c.app.SetInputCapture(c.handleFormKeys)
}

func (c *Controller) switchToAssigneeForm() {
	name := "assigneeForm"

	c.setFormTitle(name, fmt.Sprintf("Assign '%s' to", c.selectedItem.Message))

	c.assigneeField.SetText("")
	c.assigneeForm.SetFocus(0)

	c.pages.SwitchToPage(pageName(name))

	c.app.SetInputCapture(c.handleFormKeys)
}

func (c *Controller) getFormGrid() *tview.Grid {
	grid := tview.NewGrid().SetBorders(true).SetRows(3, 0)

	name := "form"

	c.initFormHeader(name)
	c.initForm()

	grid.AddItem(c.formHeaderTables[name], 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.todoForm, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) getAssigneeFormGrid() *tview.Grid {
	grid := tview.NewGrid().SetBorders(true).SetRows(3, 0)

	name := "assigneeForm"

	c.initFormHeader(name)
	c.initAssigneeForm()

	grid.AddItem(c.formHeaderTables[name], 0, 0, 1, 1, 0, 0, false)
	grid.AddItem(c.assigneeForm, 1, 0, 1, 1, 0, 0, true)

	return grid
}

func (c *Controller) setFormTitle(tableName, title string) {
	c.formHeaderTables[tableName].SetCell(0, 0, tview.NewTableCell(fmt.Sprintf("[yellow]%s", title)))
}

func (c *Controller) initFormHeader(name string) {
	c.formHeaderTables[name] = tview.NewTable().SetBorders(false).SetSelectable(false, false)
	row := 1

	for key, event := range c.formEvents {
		text := fmt.Sprintf("[orange]<%s>[white] %s", tcell.KeyNames[key], event.Description)
		c.formHeaderTables[name].SetCell(row, 0, tview.NewTableCell(text))
		row++
	}
}

// knownUsers returns the counterparties seen in any list, for autocompletion.
func (c *Controller) knownUsers() []string {
	lists := c.store.Snapshot()
	seen := map[string]bool{}
	users := []string{}

	for _, items := range [][]todo.Item{lists.My, lists.In, lists.Out} {
		for _, item := range items {
			if item.User != "" && !seen[item.User] {
				seen[item.User] = true
				users = append(users, item.User)
			}
		}
	}

	sort.Strings(users)

	return users
}

func (c *Controller) completeUser(current string) []string {
	if current == "" {
		return nil
	}

	matches := []string{}

	for _, user := range c.knownUsers() {
		if strings.HasPrefix(strings.ToLower(user), strings.ToLower(current)) {
			matches = append(matches, user)
		}
	}

	return matches
}

func (c *Controller) initForm() {
	messageMax := 100
	descriptionMax := 500
	userMax := 64

	c.todoForm = tview.NewForm().
		AddInputField("Todo", "", messageMax, nil, nil).
		AddInputField("Description", "", descriptionMax, nil, nil).
		AddInputField("Send to", "", userMax, nil, nil)

	c.messageField, _ = c.todoForm.GetFormItemByLabel("Todo").(*tview.InputField)
	c.descField, _ = c.todoForm.GetFormItemByLabel("Description").(*tview.InputField)
	c.sendToField, _ = c.todoForm.GetFormItemByLabel("Send to").(*tview.InputField)
	c.sendToField.SetAutocompleteFunc(c.completeUser)

	c.todoForm.AddButton("Save", func() {
		message := strings.TrimSpace(c.messageField.GetText())
		description := c.descField.GetText()
		sendTo := strings.TrimSpace(c.sendToField.GetText())
		editing := c.store.Editing()

		if message == "" {
			return
		}

		log.Debug().Msgf("saving todo '%s'. editing: '%s'", message, editing)

		if editing != "" {
			c.run("edit", "", "", nil, func(ctx context.Context) error {
				return c.dispatcher.Edit(ctx, editing, message, description)
			})
		} else {
			c.store.SetAssignee(sendTo)

			toast := "Todo added"
			if sendTo != "" && sendTo != c.user {
				toast = "Todo sent to " + sendTo
			}

			c.run("add", feedback.IconCheck, toast, nil, func(ctx context.Context) error {
				return c.dispatcher.Add(ctx, message, description, sendTo, "")
			})
		}

		c.store.SetEditing("")
		c.showList(c.selector.OpenList())
	})
}

func (c *Controller) initAssigneeForm() {
	userMax := 64

	c.assigneeForm = tview.NewForm().
		AddInputField("User", "", userMax, nil, nil)

	c.assigneeField, _ = c.assigneeForm.GetFormItemByLabel("User").(*tview.InputField)
	c.assigneeField.SetAutocompleteFunc(c.completeUser)

	c.assigneeForm.AddButton("Save", func() {
		user := strings.TrimSpace(c.assigneeField.GetText())

		if user == "" || c.selectedItem == nil {
			return
		}

		item := *c.selectedItem

		log.Debug().Msgf("assigning todo '%s' to '%s'", item.Message, user)

		c.run("assign", feedback.IconCheck, "Todo assigned to "+user, nil, func(ctx context.Context) error {
			return c.dispatcher.ChangeAssignee(ctx, item.ID, user)
		})

		c.showList(c.selector.OpenList())
	})
}
