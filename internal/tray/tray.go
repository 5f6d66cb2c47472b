// Package tray provides system tray functionality using getlantern/systray.
package tray

import (
	"sync"

	"github.com/getlantern/systray"
)

// MenuItem represents a menu item
type MenuItem struct {
	ID       int
	Title    string
	Checkbox bool
	Callback func(checked bool)

	checked bool
	item    *systray.MenuItem
}

// Tray manages the system tray icon and menu
type Tray struct {
	title   string
	tooltip string

	mu     sync.Mutex
	items  []*MenuItem
	quitCh chan struct{}
}

// New creates a new system tray
func New(title, tooltip string) *Tray {
	return &Tray{
		title:   title,
		tooltip: tooltip,
		items:   make([]*MenuItem, 0),
		quitCh:  make(chan struct{}),
	}
}

// AddMenuItem adds a plain menu item to the tray
func (t *Tray) AddMenuItem(title string, callback func()) int {
	return t.add(&MenuItem{
		Title: title,
		Callback: func(bool) {
			if callback != nil {
				callback()
			}
		},
	})
}

// AddCheckbox adds a checkable item. Clicking flips the check mark and
// passes the new state to callback.
func (t *Tray) AddCheckbox(title string, checked bool, callback func(checked bool)) int {
	return t.add(&MenuItem{
		Title:    title,
		Checkbox: true,
		Callback: callback,
		checked:  checked,
	})
}

func (t *Tray) add(mi *MenuItem) int {
	t.mu.Lock()
	defer t.mu.Unlock()
	mi.ID = len(t.items)
	t.items = append(t.items, mi)
	return mi.ID
}

// AddSeparator adds a separator to the menu
func (t *Tray) AddSeparator() {
	t.mu.Lock()
	defer t.mu.Unlock()
	t.items = append(t.items, nil) // nil indicates separator
}

// SetItemChecked sets the checked state of a menu item. It may be called
// before the menu is shown.
func (t *Tray) SetItemChecked(id int, checked bool) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id < 0 || id >= len(t.items) || t.items[id] == nil {
		return
	}
	mi := t.items[id]
	mi.checked = checked
	if mi.item != nil {
		if checked {
			mi.item.Check()
		} else {
			mi.item.Uncheck()
		}
	}
}

// Checked reports the checked state of a menu item
func (t *Tray) Checked(id int) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if id < 0 || id >= len(t.items) || t.items[id] == nil {
		return false
	}
	return t.items[id].checked
}

// Run starts the tray event loop (blocks)
func (t *Tray) Run() {
	systray.Run(t.setupMenu, t.onExit)
}

func (t *Tray) onExit() {
	close(t.quitCh)
}

// setupMenu is called when systray is ready
func (t *Tray) setupMenu() {
	systray.SetTitle(t.title)
	systray.SetTooltip(t.tooltip)
	systray.SetIcon(getIcon())

	t.mu.Lock()
	defer t.mu.Unlock()

	for _, menuItem := range t.items {
		if menuItem == nil {
			systray.AddSeparator()
			continue
		}

		if menuItem.Checkbox {
			menuItem.item = systray.AddMenuItemCheckbox(menuItem.Title, "", menuItem.checked)
		} else {
			menuItem.item = systray.AddMenuItem(menuItem.Title, "")
		}

		go t.watch(menuItem)
	}
}

// watch delivers clicks of one item until the tray exits
func (t *Tray) watch(mi *MenuItem) {
	for {
		select {
		case <-mi.item.ClickedCh:
			checked := t.click(mi)
			if mi.Callback != nil {
				mi.Callback(checked)
			}
		case <-t.quitCh:
			return
		}
	}
}

func (t *Tray) click(mi *MenuItem) bool {
	t.mu.Lock()
	defer t.mu.Unlock()
	if !mi.Checkbox {
		return false
	}
	mi.checked = !mi.checked
	if mi.checked {
		mi.item.Check()
	} else {
		mi.item.Uncheck()
	}
	return mi.checked
}

// Stop stops the tray
func (t *Tray) Stop() {
	systray.Quit()
}
