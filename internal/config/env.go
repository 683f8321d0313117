package config

import (
	"github.com/JaimeStill/image-lab/internal/console"
	"github.com/JaimeStill/image-lab/internal/provider"
	"github.com/JaimeStill/image-lab/internal/remote"
	"github.com/JaimeStill/image-lab/pkg/database"
	"github.com/JaimeStill/image-lab/pkg/logging"
	"github.com/JaimeStill/image-lab/pkg/middleware"
	"github.com/JaimeStill/image-lab/pkg/pagination"
	"github.com/JaimeStill/image-lab/pkg/storage"
)

var databaseEnv = &database.Env{
	Host:            "DATABASE_HOST",
	Port:            "DATABASE_PORT",
	Name:            "DATABASE_NAME",
	User:            "DATABASE_USER",
	Password:        "DATABASE_PASSWORD",
	MaxOpenConns:    "DATABASE_MAX_OPEN_CONNS",
	MaxIdleConns:    "DATABASE_MAX_IDLE_CONNS",
	ConnMaxLifetime: "DATABASE_CONN_MAX_LIFETIME",
	ConnTimeout:     "DATABASE_CONN_TIMEOUT",
	SSLMode:         "DATABASE_SSL_MODE",
}

var loggingEnv = &logging.Env{
	Level:     "LOGGING_LEVEL",
	Format:    "LOGGING_FORMAT",
	AddSource: "LOGGING_ADD_SOURCE",
}

var storageEnv = &storage.Env{
	BasePath:      "STORAGE_BASE_PATH",
	MaxUploadSize: "STORAGE_MAX_UPLOAD_SIZE",
}

var localEnv = &storage.Env{
	BasePath: "LOCAL_DATA_DIR",
}

var providerEnv = &provider.Env{
	PromptModel:       "PROVIDER_PROMPT_MODEL",
	MaxRetries:        "PROVIDER_MAX_RETRIES",
	BaseDelay:         "PROVIDER_BASE_DELAY",
	Jitter:            "PROVIDER_JITTER",
	RequestsPerMinute: "PROVIDER_REQUESTS_PER_MINUTE",
	ReferenceMaxSize:  "PROVIDER_REFERENCE_MAX_SIZE",
	ReferenceTimeout:  "PROVIDER_REFERENCE_TIMEOUT",
	ReferenceCacheTTL: "PROVIDER_REFERENCE_CACHE_TTL",
}

var remoteEnv = &remote.Env{
	Enabled:       "REMOTE_ENABLED",
	Folder:        "REMOTE_FOLDER",
	PublicBaseURL: "REMOTE_PUBLIC_BASE_URL",
}

var consoleEnv = &console.Env{
	CredentialOverride: "CONSOLE_CREDENTIAL_OVERRIDE",
	DefaultCredential:  "GEMINI_API_KEY",
	DebounceDelay:      "CONSOLE_DEBOUNCE_DELAY",
	GenerateTimeout:    "CONSOLE_GENERATE_TIMEOUT",
	SyncTimeout:        "CONSOLE_SYNC_TIMEOUT",
}

var corsEnv = &middleware.CORSEnv{
	Enabled:          "CORS_ENABLED",
	Origins:          "CORS_ORIGINS",
	AllowedMethods:   "CORS_ALLOWED_METHODS",
	AllowedHeaders:   "CORS_ALLOWED_HEADERS",
	AllowCredentials: "CORS_ALLOW_CREDENTIALS",
	MaxAge:           "CORS_MAX_AGE",
}

var paginationEnv = &pagination.Env{
	DefaultPageSize: "PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "PAGINATION_MAX_PAGE_SIZE",
}
