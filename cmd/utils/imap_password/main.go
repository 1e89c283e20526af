package main

import (
	"bufio"
	"flag"
	"fmt"
	"os"
	"strings"

	"flight-price-tracker/internal/infrastructure/config"
	"flight-price-tracker/internal/infrastructure/secrets"
	"flight-price-tracker/pkg/logger"
)

// Stores the IMAP password read from stdin in the OS keychain under IMAP_KEYRING_ACCOUNT
func main() {
	log := logger.NewLogger("info", true)
	defer log.Sync()

	cfg, err := config.LoadConfig()
	if err != nil {
		log.Fatal("Failed to load config", "error", err)
	}

	account := flag.String("account", cfg.IMAPKeyringAccount, "keychain account name")
	flag.Parse()

	fmt.Fprint(os.Stderr, "IMAP password: ")
	line, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil && line == "" {
		log.Fatal("Failed to read password", "error", err)
	}
	password := strings.TrimRight(line, "\r\n")

	if err := secrets.SetIMAPPassword(*account, password); err != nil {
		log.Fatal("Failed to store IMAP password", "account", *account, "error", err)
	}
	log.Info("IMAP password stored in keychain", "service", secrets.KeyringService, "account", *account)
	fmt.Printf("IMAP_KEYRING_ACCOUNT=%s\n", *account)
}
