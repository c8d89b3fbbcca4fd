package server

func (s *Server) initRoutes() {
	s.RegisterRouteHandler("GET "+RouteHealth, ChainMiddleware(s.HealthHandler(), s.APIMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteAuthLogin, ChainMiddleware(s.LoginHandler(), s.APIMiddleware()...))

	// Session routes (require a valid API token)
	s.RegisterRouteHandler("GET "+RouteWhatsappStatus, ChainMiddleware(s.StatusHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteWhatsappQR, ChainMiddleware(s.QRHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteWhatsappSend, ChainMiddleware(s.SendHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteWhatsappReset, ChainMiddleware(s.ResetHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("POST "+RouteWhatsappAssignFlow, ChainMiddleware(s.AssignFlowHandler(), s.ProtectedMiddleware()...))

	// Profile directory
	s.RegisterRouteHandler("POST "+RouteProfiles, ChainMiddleware(s.CreateProfileHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteProfileByID, ChainMiddleware(s.GetProfileHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("DELETE "+RouteProfileByID, ChainMiddleware(s.DeleteProfileHandler(), s.ProtectedMiddleware()...))

	// Flow catalog
	s.RegisterRouteHandler("POST "+RouteFlows, ChainMiddleware(s.CreateFlowHandler(), s.ProtectedMiddleware()...))
	s.RegisterRouteHandler("GET "+RouteFlows, ChainMiddleware(s.ListFlowsHandler(), s.ProtectedMiddleware()...))
}
