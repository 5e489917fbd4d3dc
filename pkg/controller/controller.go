package controller

import (
	"context"
	"fmt"

	"github.com/gdamore/tcell/v2"
	"github.com/matt-steen/todo-relay/pkg/dispatch"
	"github.com/matt-steen/todo-relay/pkg/feedback"
	"github.com/matt-steen/todo-relay/pkg/store"
	"github.com/matt-steen/todo-relay/pkg/syncer"
	"github.com/matt-steen/todo-relay/pkg/todo"
	"github.com/matt-steen/todo-relay/pkg/view"
	"github.com/rivo/tview"
	"github.com/rs/zerolog/log"
)

const (
	descTitleRatio = 2
)

// Controller mediates between the model and the view.
type Controller struct {
	ctx        context.Context
	user       string
	app        *tview.Application
	pages      *tview.Pages
	store      *store.Store
	selector   *view.Selector
	dispatcher *dispatch.Dispatcher
	syncer     *syncer.Controller
	toasts     *feedback.Manager
	// done is closed once the app stopped running.
	done chan struct{}

	selectedItem *todo.Item

	listTables   map[todo.ListName]*tview.Table
	listContents map[todo.ListName]*ListContent
	listHeaders  map[todo.ListName]*tview.Table
	footer       *tview.TextView

	todoForm     *tview.Form
	messageField *tview.InputField
	descField    *tview.InputField
	sendToField  *tview.InputField

	assigneeForm  *tview.Form
	assigneeField *tview.InputField

	formHeaderTables map[string]*tview.Table

	events     map[tcell.Key]KeyEvent
	formEvents map[tcell.Key]KeyEvent
}

// KeyEvent defines an event associated with a keypress.
type KeyEvent struct {
	Description string
	Action      func(*tcell.EventKey) *tcell.EventKey
}

// NewController creates a new Controller to run the panel for user.
func NewController(
	ctx context.Context,
	user string,
	s *store.Store,
	dispatcher *dispatch.Dispatcher,
	sc *syncer.Controller,
	toasts *feedback.Manager,
) (*Controller, error) {
	c := Controller{
		ctx:              ctx,
		user:             user,
		app:              tview.NewApplication(),
		store:            s,
		selector:         view.NewSelector(s),
		dispatcher:       dispatcher,
		syncer:           sc,
		done:             make(chan struct{}),
		toasts:           toasts,
		listTables:       map[todo.ListName]*tview.Table{},
		listContents:     map[todo.ListName]*ListContent{},
		listHeaders:      map[todo.ListName]*tview.Table{},
		formHeaderTables: map[string]*tview.Table{},
	}

	initKeys()
	c.initEvents()

	c.pages = tview.NewPages()
	c.footer = tview.NewTextView().SetDynamicColors(true)

	for _, list := range todo.AllLists {
		c.pages.AddPage(pageName(string(list)), c.getListGrid(list), true, false)
	}

	c.pages.AddPage(pageName("form"), c.getFormGrid(), true, false)
	c.pages.AddPage(pageName("assigneeForm"), c.getAssigneeFormGrid(), true, false)

	s.OnChange(func(list todo.ListName) {
		c.queue(func() { c.reload(list) })
	})

	toasts.OnChange(func(toast *feedback.Toast) {
		c.queue(func() { c.showToast(toast) })
	})

	sc.OnReminder = func(message string) {
		toasts.Show(feedback.IconInfo, message, nil)
	}

	return &c, nil
}

// Go starts the app and blocks until it is stopped.
func (c *Controller) Go() error {
	root := tview.NewFlex().SetDirection(tview.FlexRow).
		AddItem(c.pages, 0, 1, true).
		AddItem(c.footer, 1, 0, false)

	c.showList(todo.ListMy)

	defer close(c.done)

	return c.app.SetRoot(root, true).SetFocus(c.pages).Run()
}

// queue schedules f on the event loop without blocking the caller, which may be a background
// refresh.
func (c *Controller) queue(f func()) {
	select {
	case <-c.done:
		return
	default:
	}

	go c.app.QueueUpdateDraw(f)
}

// Stop stops the app.
func (c *Controller) Stop() {
	c.app.Stop()
}

func (c *Controller) keyboard(evt *tcell.EventKey) *tcell.EventKey {
	go func() {
		if err := c.syncer.Activity(c.ctx); err != nil {
			log.Warn().Err(err).Msg("error refreshing stale lists")
		}
	}()

	key := AsKey(evt)
	if k, ok := c.events[key]; ok {
		return k.Action(evt)
	}

	return evt
}

// reload re-reads the content of list, or only the titles when list is empty.
func (c *Controller) reload(list todo.ListName) {
	if list != "" {
		c.listContents[list].Reload()
	}

	for _, l := range todo.AllLists {
		c.setListTitle(l)
	}

	if list == c.selector.OpenList() {
		c.syncSelection()
	}
}

// run executes op in the background. On success the toast is shown, on failure the error.
func (c *Controller) run(name string, icon feedback.Icon, message string, undo func(ctx context.Context) error, op func(ctx context.Context) error) {
	go func() {
		if err := op(c.ctx); err != nil {
			log.Warn().Err(err).Msgf("error running %s", name)
			c.toasts.Show(feedback.IconError, fmt.Sprintf("Unable to %s todo: %s", name, err), nil)

			return
		}

		if message != "" {
			c.toasts.Show(icon, message, undo)
		}
	}()
}

func (c *Controller) showToast(toast *feedback.Toast) {
	if toast == nil {
		c.footer.SetText("")

		return
	}

	text := fmt.Sprintf("[yellow]%s[white] %s", toastIcons[toast.Icon], toast.Message)
	if toast.CanUndo() {
		text += "  [orange]<u>[white] Undo"
	}

	c.footer.SetText(text)
}

var toastIcons = map[feedback.Icon]string{
	feedback.IconCheck: "✓",
	feedback.IconTrash: "✗",
	feedback.IconInfo:  "i",
	feedback.IconError: "!",
}
