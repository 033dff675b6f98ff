// Package controller is the tab/modal state machine. One primary tab active
// at a time, one admin sub-tab while the admin tab is active, any number of
// modals open with the login modal exclusive. Entering a tab fires its data
// loader fire-and-forget; loader failures become notifications, never
// crashes.
package controller

import (
	"context"
	"errors"
	"sync"

	"github.com/asaskevich/EventBus"
	"go.uber.org/zap"

	"go-pos-terminal/internal/bus"
	"go-pos-terminal/internal/model"
)

type Tab string

const (
	TabDashboard   Tab = "dashboard"
	TabSales       Tab = "sales"
	TabProducts    Tab = "products"
	TabInventory   Tab = "inventory"
	TabMobileStock Tab = "mobile-stock"
	TabReports     Tab = "reports"
	TabCash        Tab = "cash"
	TabAdmin       Tab = "admin"
)

type AdminTab string

const (
	AdminTabUsers  AdminTab = "users"
	AdminTabAudit  AdminTab = "audit"
	AdminTabBackup AdminTab = "backup"
)

// ModalLogin is exclusive: opening it closes every other modal.
const ModalLogin = "login"

var (
	ErrUnknownTab = errors.New("unknown tab")
	ErrAdminOnly  = errors.New("admin role required")
)

var primaryTabs = map[Tab]bool{
	TabDashboard: true, TabSales: true, TabProducts: true, TabInventory: true,
	TabMobileStock: true, TabReports: true, TabCash: true, TabAdmin: true,
}

var adminTabs = map[AdminTab]bool{
	AdminTabUsers: true, AdminTabAudit: true, AdminTabBackup: true,
}

// Loader fetches the data a tab shows on entry. Loads are idempotent; a
// superseded in-flight load may still complete and apply its data.
type Loader func(ctx context.Context) error

// SessionFunc reports the active session for role gating.
type SessionFunc func() *model.Session

type Controller struct {
	session      SessionFunc
	events       EventBus.Bus
	loaders      map[Tab]Loader
	adminLoaders map[AdminTab]Loader
	log          *zap.SugaredLogger

	mu             sync.Mutex
	activeTab      Tab
	activeAdminTab AdminTab
	openModals     map[string]bool
}

func New(session SessionFunc, events EventBus.Bus) *Controller {
	return &Controller{
		session:      session,
		events:       events,
		loaders:      make(map[Tab]Loader),
		adminLoaders: make(map[AdminTab]Loader),
		log:          zap.S(),
		// Until someone logs in the terminal sits on the login modal.
		openModals:     map[string]bool{ModalLogin: true},
		activeAdminTab: AdminTabUsers,
	}
}

// SetLoader registers the data loader invoked when tab becomes active.
func (c *Controller) SetLoader(tab Tab, loader Loader) {
	c.loaders[tab] = loader
}

// SetAdminLoader registers the loader for an admin sub-tab.
func (c *Controller) SetAdminLoader(tab AdminTab, loader Loader) {
	c.adminLoaders[tab] = loader
}

// OpenTab deactivates the current tab, activates t, and fires its loader.
func (c *Controller) OpenTab(ctx context.Context, t Tab) error {
	if !primaryTabs[t] {
		return ErrUnknownTab
	}
	if t == TabAdmin && !c.isAdmin() {
		return ErrAdminOnly
	}

	c.mu.Lock()
	c.activeTab = t
	c.mu.Unlock()

	c.events.Publish(bus.TopicTabChanged, string(t))
	c.fire(ctx, string(t), c.loaders[t])

	if t == TabAdmin {
		c.mu.Lock()
		sub := c.activeAdminTab
		c.mu.Unlock()
		c.fire(ctx, "admin/"+string(sub), c.adminLoaders[sub])
	}
	return nil
}

// OpenAdminTab switches the admin sub-tab. Only reachable for admin users.
func (c *Controller) OpenAdminTab(ctx context.Context, t AdminTab) error {
	if !adminTabs[t] {
		return ErrUnknownTab
	}
	if !c.isAdmin() {
		return ErrAdminOnly
	}

	c.mu.Lock()
	c.activeAdminTab = t
	c.mu.Unlock()

	c.events.Publish(bus.TopicAdminTabChanged, string(t))
	c.fire(ctx, "admin/"+string(t), c.adminLoaders[t])
	return nil
}

// OpenModal opens a modal. Modals do not close each other, with one
// exception: the login modal closes everything else.
func (c *Controller) OpenModal(id string) {
	c.mu.Lock()
	if id == ModalLogin {
		c.openModals = map[string]bool{}
	}
	c.openModals[id] = true
	c.mu.Unlock()

	c.events.Publish(bus.TopicModalOpened, id)
}

// CloseModal closes the modal if it is open; otherwise a no-op.
func (c *Controller) CloseModal(id string) {
	c.mu.Lock()
	if !c.openModals[id] {
		c.mu.Unlock()
		return
	}
	delete(c.openModals, id)
	c.mu.Unlock()

	c.events.Publish(bus.TopicModalClosed, id)
}

// ActiveTab returns the current primary tab ("" before first login).
func (c *Controller) ActiveTab() Tab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeTab
}

// ActiveAdminTab returns the current admin sub-tab.
func (c *Controller) ActiveAdminTab() AdminTab {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.activeAdminTab
}

// ModalOpen reports whether the modal with id is open.
func (c *Controller) ModalOpen(id string) bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.openModals[id]
}

// OpenModals returns the ids of all open modals.
func (c *Controller) OpenModals() []string {
	c.mu.Lock()
	defer c.mu.Unlock()
	out := make([]string, 0, len(c.openModals))
	for id := range c.openModals {
		out = append(out, id)
	}
	return out
}

// OnLogin moves the terminal to its post-login state: dashboard tab, no
// modal.
func (c *Controller) OnLogin(ctx context.Context) {
	c.mu.Lock()
	c.openModals = map[string]bool{}
	c.mu.Unlock()
	c.events.Publish(bus.TopicModalClosed, ModalLogin)

	if err := c.OpenTab(ctx, TabDashboard); err != nil {
		c.log.Warnw("failed to open dashboard after login", "err", err)
	}
}

// OnLogout returns the terminal to the login modal.
func (c *Controller) OnLogout() {
	c.mu.Lock()
	c.activeTab = ""
	c.openModals = map[string]bool{ModalLogin: true}
	c.mu.Unlock()

	c.events.Publish(bus.TopicModalOpened, ModalLogin)
}

func (c *Controller) isAdmin() bool {
	sess := c.session()
	return sess != nil && sess.User.IsAdmin()
}

// fire runs a loader in the background. The state machine does not wait for
// or cancel loads; a slow response simply lands later.
func (c *Controller) fire(ctx context.Context, name string, loader Loader) {
	if loader == nil {
		return
	}
	go func() {
		if err := loader(ctx); err != nil {
			c.log.Warnw("tab load failed", "tab", name, "err", err)
			c.events.Publish(bus.TopicNotify, bus.LevelError, "failed to load "+name)
		}
	}()
}
