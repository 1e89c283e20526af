package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"time"

	"flight-price-tracker/internal/infrastructure/config"
	"flight-price-tracker/internal/infrastructure/oauth"
	"flight-price-tracker/pkg/logger"
)

const callbackAddr = "localhost:8090"

// Prints a Gmail refresh token for GMAIL_REFRESH_TOKEN after an interactive consent flow
func main() {
	log := logger.NewLogger("info", true)
	defer log.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}
	if cfg.GmailClientID == "" || cfg.GmailClientSecret == "" {
		log.Fatal("GMAIL_CLIENT_ID and GMAIL_CLIENT_SECRET must be set")
	}

	gmailOAuth := oauth.NewGmailOAuth(cfg.GmailClientID, cfg.GmailClientSecret, "",
		"http://"+callbackAddr+"/oauth2callback", log)

	tokens := make(chan string, 1)
	mux := http.NewServeMux()
	mux.HandleFunc("/oauth2callback", func(w http.ResponseWriter, r *http.Request) {
		if !gmailOAuth.ValidState(r.URL.Query().Get("state")) {
			http.Error(w, "Invalid state parameter", http.StatusBadRequest)
			return
		}

		token, err := gmailOAuth.ExchangeCode(r.Context(), r.URL.Query().Get("code"))
		if err != nil {
			http.Error(w, err.Error(), http.StatusInternalServerError)
			return
		}

		fmt.Fprintf(w, "Authentication successful! You can close this window.")
		tokens <- token.RefreshToken
	})

	server := &http.Server{
		Addr:              callbackAddr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}
	go func() {
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Callback server failed", "error", err)
		}
	}()

	fmt.Printf("Open this URL in your browser:\n%s\n", gmailOAuth.GenerateAuthURL())

	refreshToken := <-tokens
	fmt.Fprintf(os.Stdout, "\nGMAIL_REFRESH_TOKEN=%s\n\n", refreshToken)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	server.Shutdown(ctx)
}
