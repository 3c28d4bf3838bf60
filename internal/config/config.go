package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/launchdarkly/go-sdk-common/v3/ldcontext"
	ld "github.com/launchdarkly/go-server-sdk/v7"

	"github.com/poofware/housing-service/internal/utils"
)

const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

type Config struct {
	OrganizationName string
	AppName          string
	AppPort          string
	AppUrl           string
	Env              string

	// Persistence
	StoreDriver string
	DBUrl       string

	// Auth
	JWTSecret         []byte
	TokenExpiry       time.Duration
	AdminUsername     string
	AdminPasswordHash string

	// Billing
	BillingCronSpec      string
	BillingLocation      *time.Location
	BillingGraceWorkdays int

	// Receipts
	NotificationQueueSize int
	SendGridAPIKey        string
	SendgridFromEmail     string
	TwilioAccountSID      string
	TwilioAuthToken       string
	TwilioFromPhone       string

	// LaunchDarkly flags (env fallbacks when LD_SDK_KEY is unset)
	LDFlag_SeedDbWithTestData  bool
	LDFlag_CORSHighSecurity    bool
	LDFlag_SendgridSandboxMode bool
}

const (
	OrganizationName    = "Housing Community"
	LDConnectionTimeout = 5 * time.Second

	defaultAppName       = "housing-service"
	defaultAdminUsername = "Admin"
	defaultAdminPassword = "123"
)

// build-time overrides
var (
	AppName             string
	LDServerContextKey  string
	LDServerContextKind string
)

func LoadConfig() *Config {
	if AppName == "" {
		AppName = defaultAppName
	}
	utils.Logger.Info("Loading config for app: ", AppName)

	env := getEnv("ENV", "dev")
	appPort := getEnv("APP_PORT", "8080")
	appUrl := getEnv("APP_URL_FROM_ANYWHERE", "http://localhost:"+appPort)

	storeDriver := strings.ToLower(getEnv("STORE_DRIVER", StoreDriverPostgres))
	dbURL := os.Getenv("DB_URL")
	switch storeDriver {
	case StoreDriverPostgres:
		if dbURL == "" {
			utils.Logger.Fatal("DB_URL env var is missing")
		}
	case StoreDriverMemory:
		utils.Logger.Warn("STORE_DRIVER=memory; data is lost on restart")
	default:
		utils.Logger.Fatalf("Unsupported STORE_DRIVER %q", storeDriver)
	}

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		utils.Logger.Fatal("JWT_SECRET env var is missing")
	}
	tokenExpiry := getDuration("TOKEN_EXPIRY", 12*time.Hour)

	adminUser := getEnv("ADMIN_USERNAME", defaultAdminUsername)
	adminPass := os.Getenv("ADMIN_PASSWORD")
	if adminPass == "" {
		if env != "dev" {
			utils.Logger.Fatal("ADMIN_PASSWORD env var is missing")
		}
		utils.Logger.Warn("ADMIN_PASSWORD not set; using the bootstrap password")
		adminPass = defaultAdminPassword
	}
	adminHash, err := utils.HashPassword(adminPass)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to hash admin password")
	}

	tzName := getEnv("BILLING_TIMEZONE", "Asia/Kolkata")
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		utils.Logger.WithError(err).Fatalf("Invalid BILLING_TIMEZONE %q", tzName)
	}

	cfg := &Config{
		OrganizationName: OrganizationName,
		AppName:          AppName,
		AppPort:          appPort,
		AppUrl:           appUrl,
		Env:              env,

		StoreDriver: storeDriver,
		DBUrl:       dbURL,

		JWTSecret:         []byte(jwtSecret),
		TokenExpiry:       tokenExpiry,
		AdminUsername:     adminUser,
		AdminPasswordHash: adminHash,

		BillingCronSpec:      getEnv("BILLING_CRON_SPEC", "0 0 1 * *"),
		BillingLocation:      loc,
		BillingGraceWorkdays: getInt("BILLING_GRACE_WORKDAYS", 10),

		NotificationQueueSize: getInt("NOTIFICATION_QUEUE_SIZE", 256),
		SendGridAPIKey:        os.Getenv("SENDGRID_API_KEY"),
		SendgridFromEmail:     getEnv("SENDGRID_FROM_EMAIL", "no-reply@example.com"),
		TwilioAccountSID:      os.Getenv("TWILIO_ACCOUNT_SID"),
		TwilioAuthToken:       os.Getenv("TWILIO_AUTH_TOKEN"),
		TwilioFromPhone:       os.Getenv("TWILIO_FROM_PHONE"),

		LDFlag_SeedDbWithTestData:  getBool("SEED_DB_WITH_TEST_DATA", env == "dev"),
		LDFlag_CORSHighSecurity:    getBool("CORS_HIGH_SECURITY", env != "dev"),
		LDFlag_SendgridSandboxMode: getBool("SENDGRID_SANDBOX_MODE", env != "prod"),
	}

	if ldSDKKey := os.Getenv("LD_SDK_KEY"); ldSDKKey != "" {
		loadLDFlags(cfg, ldSDKKey)
	} else {
		utils.Logger.Info("LD_SDK_KEY not set; feature flags come from env")
	}

	return cfg
}

// loadLDFlags overrides the env-derived flags with LaunchDarkly variations.
func loadLDFlags(cfg *Config, sdkKey string) {
	ldClient, err := ld.MakeClient(sdkKey, LDConnectionTimeout)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Failed to create LaunchDarkly client")
	}
	if !ldClient.Initialized() {
		ldClient.Close()
		utils.Logger.Fatal("LaunchDarkly client failed to initialize")
	}
	defer ldClient.Close()

	kind := LDServerContextKind
	if kind == "" {
		kind = "service"
	}
	key := LDServerContextKey
	if key == "" {
		key = cfg.AppName + "-" + cfg.Env
	}
	ctx := ldcontext.NewWithKind(ldcontext.Kind(kind), key)

	boolFlag := func(name string, fallback bool) bool {
		v, err := ldClient.BoolVariation(name, ctx, fallback)
		if err != nil {
			utils.Logger.WithError(err).Fatalf("Error retrieving %s flag", name)
		}
		utils.Logger.Debugf("%s flag: %t", name, v)
		return v
	}

	cfg.LDFlag_SeedDbWithTestData = boolFlag("seed_db_with_test_data", cfg.LDFlag_SeedDbWithTestData)
	cfg.LDFlag_CORSHighSecurity = boolFlag("cors_high_security", cfg.LDFlag_CORSHighSecurity)
	cfg.LDFlag_SendgridSandboxMode = boolFlag("sendgrid_sandbox_mode", cfg.LDFlag_SendgridSandboxMode)

	fromEmail, err := ldClient.StringVariation("sendgrid_from_email", ctx, cfg.SendgridFromEmail)
	if err != nil {
		utils.Logger.WithError(err).Fatal("Error retrieving sendgrid_from_email flag")
	}
	cfg.SendgridFromEmail = fromEmail
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}

func getInt(key string, fallback int) int {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 0 {
		utils.Logger.Fatalf("%s must be a non-negative integer, got %q", key, raw)
	}
	return n
}

func getBool(key string, fallback bool) bool {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	b, err := strconv.ParseBool(raw)
	if err != nil {
		utils.Logger.Fatalf("%s must be a boolean, got %q", key, raw)
	}
	return b
}

func getDuration(key string, fallback time.Duration) time.Duration {
	raw := os.Getenv(key)
	if raw == "" {
		return fallback
	}
	d, err := time.ParseDuration(raw)
	if err != nil {
		utils.Logger.Fatalf("%s must be a duration, got %q", key, raw)
	}
	return d
}
