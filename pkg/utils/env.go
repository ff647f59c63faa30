package utils

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type EnvVars struct {
	Host        string
	ApiPort     int
	HttpPort    int
	RabbitHost  string
	RabbitUser  string
	RabbitPass  string
	WorkQueue   string
	ResultQueue string
	RedisAddr   string
	RedisPass   string
	CacheTTL    time.Duration
	ResourceDir string
	Config      string
	NodeLog     bool
	ServerLog   bool
}

func ReadEnvVars() (EnvVars, error) {
	// Loading .env file if it exists
	// It will not override already existing env vars
	_ = godotenv.Load()
	apiPort, err := readIntEnvVarOr("API_PORT", 1234)
	if err != nil {
		return EnvVars{}, err
	}
	httpPort, err := readIntEnvVarOr("HTTP_PORT", 8080)
	if err != nil {
		return EnvVars{}, err
	}
	ttl, err := readIntEnvVarOr("CACHE_TTL", 3600)
	if err != nil {
		return EnvVars{}, err
	}
	return EnvVars{
		Host:     readStringEnvVarOr("HOST", ""),
		ApiPort:  apiPort,
		HttpPort: httpPort,
		// Empty RABBIT_HOST disables the queue worker
		RabbitHost:  readStringEnvVarOr("RABBIT_HOST", ""),
		RabbitUser:  readStringEnvVarOr("RABBIT_USER", "guest"),
		RabbitPass:  readStringEnvVarOr("RABBIT_PASSWORD", "guest"),
		WorkQueue:   readStringEnvVarOr("WORK_QUEUE", "work"),
		ResultQueue: readStringEnvVarOr("RESULT_QUEUE", "result"),
		// Empty REDIS_ADDR disables the result cache
		RedisAddr: readStringEnvVarOr("REDIS_ADDR", ""),
		RedisPass: readStringEnvVarOr("REDIS_PASSWORD", ""),
		CacheTTL:  time.Duration(ttl) * time.Second,
		// Empty RESOURCE_DIR restricts request resources to http(s) URLs
		ResourceDir: readStringEnvVarOr("RESOURCE_DIR", ""),
		Config:      readStringEnvVarOr("CONFIG", ""),
		NodeLog:     readBoolEnvVarOr("NODE_LOG", false),
		ServerLog:   readBoolEnvVarOr("SERVER_LOG", false),
	}, nil
}

func (e EnvVars) RabbitURL() string {
	return fmt.Sprintf("amqp://%s:%s@%s:5672/", e.RabbitUser, e.RabbitPass, e.RabbitHost)
}

func readStringEnvVar(name string) (string, error) {
	value := os.Getenv(name)
	if value == "" {
		return "", fmt.Errorf("%s not set", name)
	}
	return value, nil
}

func readStringEnvVarOr(name string, or string) string {
	value, err := readStringEnvVar(name)
	if err != nil {
		value = or
	}
	return value
}

// Unset -> default; set but not a number -> error
func readIntEnvVarOr(name string, or int) (int, error) {
	valueStr, err := readStringEnvVar(name)
	if err != nil {
		return or, nil
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return 0, fmt.Errorf("could not convert %s to a number: %w", name, err)
	}
	return value, nil
}

func readBoolEnvVarOr(name string, or bool) bool {
	valueStr, err := readStringEnvVar(name)
	if err != nil {
		return or
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		return or
	}
	return value
}
