package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"go-feed-catalog/pkg/config"
	"go-feed-catalog/pkg/jwt"
)

// Mints an operator token for the sync and upload endpoints.
func main() {
	operator := flag.String("operator", "admin@example.com", "operator name stored in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	// 1. Load Env
	cfg, dotenv, err := config.Load()
	if err != nil {
		log.Fatalf("❌ Failed to load config: %v", err)
	}
	if !dotenv {
		log.Println("Warning: .env file not found, relying on system env")
	}

	// 2. Sign
	token, err := jwt.GenerateToken([]byte(cfg.JWTSecret), *operator, *ttl)
	if err != nil {
		log.Fatalf("❌ Failed to sign token: %v", err)
	}

	log.Printf("✅ Token for %s valid until %s", *operator, time.Now().Add(*ttl).Format(time.RFC3339))
	fmt.Println(token)
}
