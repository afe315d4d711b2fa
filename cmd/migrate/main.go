package main

import (
	"flag"
	"fmt"
	"log"
	"os"

	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/moviestack/moviestack/pkg/database"
)

func main() {
	var (
		host     = flag.String("host", getEnv("DB_HOST", "localhost"), "Database host")
		port     = flag.Int("port", getEnvAsInt("DB_PORT", 5432), "Database port")
		user     = flag.String("user", getEnv("DB_USER", "moviestack"), "Database user")
		password = flag.String("password", getEnv("DB_PASSWORD", "moviestack_dev"), "Database password")
		dbname   = flag.String("dbname", getEnv("DB_NAME", "moviestack_dev"), "Database name")
		sslmode  = flag.String("sslmode", getEnv("DB_SSLMODE", "disable"), "SSL mode")
		schema   = flag.String("schema", "all", "Schema to migrate: account, movie or all")
	)
	flag.Parse()

	cfg := &database.PostgresConfig{
		Host:     *host,
		Port:     *port,
		User:     *user,
		Password: *password,
		Database: *dbname,
		SSLMode:  *sslmode,
		LogLevel: logger.Info,
	}

	db, err := database.NewGormDB(cfg)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	switch *schema {
	case "account":
		migrate(db, "account", database.MigrateAccountSchema)
	case "movie":
		migrate(db, "movie", database.MigrateMovieSchema)
	case "all":
		migrate(db, "account", database.MigrateAccountSchema)
		migrate(db, "movie", database.MigrateMovieSchema)
	default:
		log.Fatalf("Unknown schema %q, expected account, movie or all", *schema)
	}

	fmt.Println("Migrations completed successfully!")
}

func migrate(db *gorm.DB, name string, fn func(*gorm.DB) error) {
	fmt.Printf("Migrating %s schema...\n", name)
	if err := fn(db); err != nil {
		log.Fatalf("Failed to migrate %s schema: %v", name, err)
	}
}

// Helper functions
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		var intVal int
		if _, err := fmt.Sscanf(value, "%d", &intVal); err == nil {
			return intVal
		}
	}
	return defaultValue
}
