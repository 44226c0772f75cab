package common

const (
	EnvKeyGoEnv string = "GO_ENV"

	EnvKeyRunIntegrationTests string = "RUN_INTEGRATION_TESTS"

	EnvKeyWardDBType        string = "WARD_DB_TYPE"
	EnvKeyWardDbPath        string = "WARD_DB_PATH"
	EnvKeyWardMySQLDSN      string = "WARD_MYSQL_DSN"
	EnvKeyWardMongoURI      string = "WARD_MONGO_URI"
	EnvKeyWardMongoDatabase string = "WARD_MONGO_DATABASE"
	EnvKeyWardFallbackPath  string = "WARD_FALLBACK_PATH"

	EnvKeyWardHttpHostPort string = "WARD_HTTP_HOST_PORT"
	EnvKeyWardGrpcHostPort string = "WARD_GRPC_HOST_PORT"
	EnvKeyWardPublicURL    string = "WARD_PUBLIC_URL"

	EnvKeyWardRedisAddr  string = "WARD_REDIS_ADDR"
	EnvKeyWardMQTTBroker string = "WARD_MQTT_BROKER"

	EnvKeyWardFCMURL       string = "WARD_FCM_URL"
	EnvKeyWardFCMServerKey string = "WARD_FCM_SERVER_KEY"

	EnvKeyWardJWTSecret      string = "WARD_JWT_SECRET"
	EnvKeyWardSessionTTL     string = "WARD_SESSION_TTL"
	EnvKeyWardTokenTTL       string = "WARD_TOKEN_TTL"
	EnvKeyWardSuperadminUser string = "WARD_SUPERADMIN_USER"
	EnvKeyWardSuperadminPass string = "WARD_SUPERADMIN_PASSWORD"

	EnvKeyWardPollInterval   string = "WARD_POLL_INTERVAL"
	EnvKeyWardRequestTimeout string = "WARD_REQUEST_TIMEOUT"
	EnvKeyWardDemoAlerts     string = "WARD_DEMO_ALERTS"

	EnvKeyWardHelpRate  string = "WARD_HELP_RATE"
	EnvKeyWardHelpBurst string = "WARD_HELP_BURST"

	LoggerNameHospitalCore  string = "hospital_core"
	LoggerNameStore         string = "store"
	LoggerNameRealtime      string = "realtime"
	LoggerNamePush          string = "push"
	LoggerNameSession       string = "session"
	LoggerNameRestfulServer string = "restful_server"
	LoggerNameGrpcServer    string = "grpc_server"

	LoggerFieldCategory    string = "category"
	LoggerCategoryAlert    string = "alert"
	LoggerCategoryRoster   string = "roster"
	LoggerCategoryIdentity string = "identity"
	LoggerCategoryGateway  string = "gateway"
	LoggerCategoryLive     string = "live"
	LoggerCategoryPolling  string = "polling"
	LoggerCategoryDemo     string = "demo"
	LoggerCategoryRelay    string = "relay"
	LoggerCategoryStation  string = "station"
)
