package main

import (
	"fmt"
	"log"
	"os"

	webpush "github.com/SherClockHolmes/webpush-go"
)

// Generates a VAPID key pair for web push and writes it in .env format.
func main() {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		log.Fatalf("Failed to generate VAPID keys: %v", err)
	}

	envContent := fmt.Sprintf(`# Web Push VAPID Keys
# Export these as environment variables for the server

VAPID_PUBLIC_KEY=%s
VAPID_PRIVATE_KEY=%s
VAPID_SUBJECT=mailto:your-email@example.com
`,
		publicKey,
		privateKey,
	)

	envFile := "./data/vapid_keys.env"
	if err := os.MkdirAll("./data", 0755); err != nil {
		log.Fatalf("Failed to create data directory: %v", err)
	}
	if err := os.WriteFile(envFile, []byte(envContent), 0600); err != nil {
		log.Fatalf("Failed to write keys to file: %v", err)
	}

	fmt.Println("VAPID keys generated successfully")
	fmt.Println("Keys saved to:", envFile)
	fmt.Println()
	fmt.Println(envContent)
}
