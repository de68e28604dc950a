// Command redarch-smoke sends a burst of test records through the client,
// useful for checking connectivity and buffer behavior against a real or
// unreachable endpoint.
package main

import (
	"flag"
	"fmt"
	"log"

	redarch "github.com/Red-Arch-Labs-LLC/red-arch-logging-go-client"
)

func main() {
	endpoint := flag.String("endpoint", "", "logging API endpoint (default from RARCH_LOGGING_URL)")
	service := flag.String("service", "smoke-test", "service name to log under")
	count := flag.Int("count", 10, "number of records to send")
	levelStr := flag.String("level", "DEBUG", "logger level")
	flag.Parse()

	level, err := redarch.ParseLevel(*levelStr)
	if err != nil {
		log.Fatalf("invalid level: %v", err)
	}

	cfg := redarch.DefaultConfig()
	if *endpoint != "" {
		cfg.Endpoint = *endpoint
	}
	cfg.DefaultLevel = level

	client, err := redarch.New(cfg)
	if err != nil {
		log.Fatalf("client: %v", err)
	}

	logger := client.Logger(*service, redarch.WithLoggerName("smoke"))
	for i := 0; i < *count; i++ {
		logger.Info(fmt.Sprintf("smoke test record %d", i),
			redarch.WithContext(map[string]any{"sequence": i}))
	}
	log.Printf("enqueued %d records for %s", *count, *service)

	client.Stop()
	log.Println("stopped")
}
