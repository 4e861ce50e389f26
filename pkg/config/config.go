package config

import "os"

type Config struct {
	Port         string
	Env          string
	MongoURI     string
	DatabaseName string
	AllowOrigin  string
	BaseURL      string
	SMTPHost     string
	SMTPPort     string
	SMTPUsername string
	SMTPPassword string
	SMTPFrom     string
	SMTPFromName string
}

func Load() *Config {
	return &Config{
		Port:         getEnv("PORT", "8080"),
		Env:          getEnv("ENV", "development"),
		MongoURI:     getEnv("MONGO_URI", ""),
		DatabaseName: getEnv("MONGO_DB", "ideahive"),
		AllowOrigin:  getEnv("ALLOW_ORIGIN", "http://localhost:3000"),
		BaseURL:      getEnv("BASE_URL", "http://localhost:8080"),
		SMTPHost:     getEnv("SMTP_HOST", ""),
		SMTPPort:     getEnv("SMTP_PORT", "465"),
		SMTPUsername: getEnv("SMTP_USERNAME", ""),
		SMTPPassword: getEnv("SMTP_PASSWORD", ""),
		SMTPFrom:     getEnv("SMTP_FROM", ""),
		SMTPFromName: getEnv("SMTP_FROM_NAME", "IdeaHive"),
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
