// Command token prints a session token for local testing against the API.
package main

import (
	"flag"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"

	"github.com/42-Course/matcha/internal/auth"
)

type env struct {
	SessionSecret string `envconfig:"SESSION_SECRET" required:"true"`
}

func main() {
	userID := flag.Int64("user", 0, "user id to put in the token")
	ttl := flag.Duration("ttl", 24*time.Hour, "token lifetime")
	flag.Parse()

	_ = godotenv.Load()

	var e env
	if err := envconfig.Process("", &e); err != nil {
		log.Fatal("Cannot load env:", err)
	}
	if *userID <= 0 {
		log.Fatal("-user is required")
	}

	token, err := auth.NewTokenManager(e.SessionSecret).Issue(*userID, *ttl)
	if err != nil {
		log.Fatal("Cannot sign token:", err)
	}
	fmt.Println(token)
}
