package server

const (
	RouteLogin              = "/api/accounts/auth/login"
	RouteRefreshToken       = "/api/accounts/auth/refresh-token"
	RouteLogout             = "/api/accounts/auth/logout"
	RouteRegistration       = "/api/accounts/registration"
	RouteRegistrationVerify = "/api/accounts/registration/verification"
	RouteRegistrationResend = "/api/accounts/registration/verification/emails"
	RouteRecovery           = "/api/accounts/recovery"
	RouteRecoveryVerify     = "/api/accounts/recovery/verification"
	RouteMe                 = "/api/users/me"
	RouteHealth             = "/healthz"
	RouteMetrics            = "/metrics"
)

const (
	refreshCookieName  = "__imsrt__"
	accessTokenHeader  = "x-auth-accesstoken"
	refreshTokenHeader = "x-auth-refreshtoken"
	orgIDHeader        = "x-org-id"
	registerHeader     = "x-register-token"
	recoveryHeader     = "x-recovery-token"
)
