package main

import (
	"fmt"
	"log"
	"os"

	webpush "github.com/SherClockHolmes/webpush-go"
)

func main() {
	privateKey, publicKey, err := webpush.GenerateVAPIDKeys()
	if err != nil {
		log.Fatalf("Failed to generate VAPID keys: %v", err)
	}

	envContent := fmt.Sprintf(`# Web Push VAPID keys for the dojo server
# Export these as environment variables before starting the server.

VAPID_PUBLIC_KEY=%s
VAPID_PRIVATE_KEY=%s
VAPID_SUBJECT=mailto:your-email@example.com
`,
		publicKey,
		privateKey,
	)

	envFile := "./data/vapid_keys.env"
	if err := os.WriteFile(envFile, []byte(envContent), 0600); err != nil {
		log.Fatalf("Failed to write keys to file: %v", err)
	}

	fmt.Println("VAPID keys generated.")
	fmt.Println("Keys saved to:", envFile)
	fmt.Println()
	fmt.Println(envContent)
}
