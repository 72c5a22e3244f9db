package docs

// @title           Campus Ride Matching API
// @version         1.0
// @description     Ride requests, driver discovery, fare negotiation between riders and drivers, location heartbeats and notifications.

// @host      localhost:3000
// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
