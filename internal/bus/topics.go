// Package bus names the event topics the store and controller publish for
// the view renderer. The renderer subscribes to these instead of being
// called directly, so the core never depends on a concrete view technology.
package bus

const (
	TopicCartChanged      = "cart:changed"
	TopicCatalogRefreshed = "catalog:refreshed"
	TopicSessionChanged   = "session:changed"
	TopicTabChanged       = "tab:changed"
	TopicAdminTabChanged  = "admin-tab:changed"
	TopicModalOpened      = "modal:opened"
	TopicModalClosed      = "modal:closed"

	// Loaded-data topics carry the fetched payload for the view to render:
	// *model.DashboardStats, []model.SalesReportRow, *model.CashStatus,
	// []model.User and []model.AuditEntry respectively.
	TopicDashboardLoaded = "dashboard:loaded"
	TopicReportLoaded    = "report:loaded"
	TopicCashStatus      = "cash:status"
	TopicUsersLoaded     = "users:loaded"
	TopicAuditLoaded     = "audit:loaded"

	// TopicNotify carries transient user-facing messages (stock errors,
	// backend failures). Payload: level string, message string.
	TopicNotify = "notify"
)

const (
	LevelInfo    = "info"
	LevelSuccess = "success"
	LevelError   = "error"
)
