package server

func (s *Server) initRoutes() {
	// Public pages
	s.RegisterRouteHandler("GET /{$}", ChainMiddleware(s.IndexHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLearnMore, ChainMiddleware(s.LearnMoreHandler(), s.HTMLMiddleWare()...))

	// Account
	s.RegisterRouteHandler("GET "+RouteSignup, ChainMiddleware(s.SignupGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteSignup, ChainMiddleware(s.SignupPostHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteConfirm, ChainMiddleware(s.ConfirmGetHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteConfirm, ChainMiddleware(s.ConfirmPostHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("GET "+RouteLogin, ChainMiddleware(s.LoginPageUIHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogin, ChainMiddleware(s.LoginSubmissionHandler(), s.HTMLMiddleWare()...))
	s.RegisterRouteHandler("POST "+RouteLogout, ChainMiddleware(s.LogoutHandler(), s.HTMLMiddleWare()...))

	// Protected pages (route guard)
	s.RegisterRouteHandler("GET "+RouteProfileSetup, ChainMiddleware(s.ProfileSetupGetHandler(), s.HTMLMiddleWare(s.RequireGuard)...))
	s.RegisterRouteHandler("POST "+RouteProfileSetup, ChainMiddleware(s.ProfileSetupPostHandler(), s.HTMLMiddleWare(s.RequireGuard)...))
	s.RegisterRouteHandler("GET "+RouteDashboard, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.RequireGuard)...))
	s.RegisterRouteHandler("GET "+RouteDashboardRest, ChainMiddleware(s.DashboardHandler(), s.HTMLMiddleWare(s.RequireGuard)...))
	s.RegisterRouteHandler("GET "+RouteOpportunity, ChainMiddleware(s.OpportunityHandler(), s.HTMLMiddleWare(s.RequireGuard)...))

	// JSON API
	s.RegisterRouteHandler("GET "+RouteAPISession, ChainMiddleware(s.SessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPISessionRefresh, ChainMiddleware(s.RefreshSessionHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAPIGuard, ChainMiddleware(s.GuardHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteAPINotifications, ChainMiddleware(s.NotificationsHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteAPINotificationHandle, ChainMiddleware(s.DismissNotificationHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("OPTIONS /api/", ChainMiddleware(s.NotFoundHandler(), s.CorsMiddleware))

	if s.metrics != nil {
		s.RegisterRouteHandler("GET "+RouteMetrics, s.metrics.Handler())
	}

	s.RegisterRouteHandler("GET "+RouteStaticCSS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteStaticJS, ChainMiddleware(s.serveFileHandler(), s.StaticMiddleware()...))
}
