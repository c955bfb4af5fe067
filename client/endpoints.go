package client

const (
	// Authentication endpoints
	endpointLogin = "/auth/login" // POST

	// Dashboard endpoints
	endpointDashboard = "/dashboards/%s" // GET, role path-escaped

	// Chat endpoints
	endpointChat = "/chat/" // POST
)
