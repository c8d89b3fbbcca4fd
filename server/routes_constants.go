package server

const (
	RouteHealth = "/health"

	RouteAuthLogin = "/auth/login"

	RouteWhatsappStatus     = "/whatsapp/status"
	RouteWhatsappQR         = "/whatsapp/qr"
	RouteWhatsappSend       = "/whatsapp/send"
	RouteWhatsappReset      = "/whatsapp/reset"
	RouteWhatsappAssignFlow = "/whatsapp/assign-flow"

	RouteProfiles    = "/profiles"
	RouteProfileByID = "/profiles/{profileID}"

	RouteFlows = "/flows"
)
