package api

const (
	HealthCheckRoute = "/healthz"
	AboutRoute       = "/v1/about"

	IssueTokenRoute        = "/v1/tokens/issue"
	ListTokensRoute        = "/v1/tokens"
	DeleteTokenRoute       = "/v1/tokens/{id}"
	DeleteTokenByNameRoute = "/v1/tokens/name/{name}"

	AdminParent         = "/v1/admin/"
	ListConsumersRoute  = AdminParent + "consumers"
	RegistryStatusRoute = AdminParent + "registry/status"
)
