package configs

import (
	"os"

	"github.com/joho/godotenv"
	log "github.com/sirupsen/logrus"
)

// LoadEnv reads .env once at startup. A missing file is fine in deployed
// environments where variables come from the process environment.
func LoadEnv() {
	if err := godotenv.Load(); err != nil {
		log.Debug("no .env file found, using process environment")
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func EnvMongoURI() string {
	return envOr("MONGO_URI", "mongodb://localhost:27017")
}

func EnvMongoDBName() string {
	return envOr("MONGO_DB", "uniquefabric")
}

func EnvJWTSecret() string {
	return envOr("JWT_SECRET", "unique-fabric-secret-key-2024")
}

func EnvPort() string {
	return envOr("PORT", "5000")
}

func EnvAppEnv() string {
	return envOr("APP_ENV", "production")
}

func IsDevelopment() bool {
	return EnvAppEnv() == "development"
}

// EnvMongoTransactions reports whether multi-document transactions should be
// used. Set MONGO_TRANSACTIONS=false against a standalone mongod, where the
// conditional stock updates alone carry the consistency guarantees.
func EnvMongoTransactions() bool {
	return envOr("MONGO_TRANSACTIONS", "true") != "false"
}
