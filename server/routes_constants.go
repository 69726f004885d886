package server

// Route path constants
const (
	// Public pages
	RouteHome      = "/"
	RouteLearnMore = "/learn-more"

	// Account pages
	RouteSignup  = "/signup"
	RouteConfirm = "/confirm"
	RouteLogin   = "/login"
	RouteLogout  = "/logout"

	// Protected pages
	RouteProfileSetup  = "/profile-setup"
	RouteDashboard     = "/dashboard"
	RouteDashboardRest = "/dashboard/{rest...}"
	RouteOpportunity   = "/opportunity/{id}"

	// JSON API
	RouteAPISession            = "/api/session"
	RouteAPISessionRefresh     = "/api/session/refresh"
	RouteAPIGuard              = "/api/guard"
	RouteAPINotifications      = "/api/notifications"
	RouteAPINotificationHandle = "/api/notifications/{handle}"

	RouteMetrics = "/metrics"

	// Static Asset Routes (patterns)
	RouteStaticCSS = "/css/{file}"
	RouteStaticJS  = "/js/{file}"
)

// originParam carries the page to return to after login or profile setup
const originParam = "from"
