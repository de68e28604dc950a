// Package redarch is the Red Arch log-shipping client. Application code
// emits structured records through a level-filtered Logger; a supervised
// background worker posts them to the central logging API with bounded
// retries, and records that cannot be delivered are persisted to a local
// JSONL buffer and redelivered on the next startup.
//
// The logging call itself is non-blocking and never returns an error:
// delivery gives at-least-once semantics under crashes, network partitions
// and ordinary shutdown, with a stable request_id so the server can
// deduplicate.
//
// Typical usage:
//
//	client, err := redarch.New(redarch.DefaultConfig())
//	if err != nil {
//		// only an unusable buffer directory fails construction
//	}
//	defer client.Stop()
//
//	logger := client.Logger("billing", redarch.WithLevel(redarch.LevelInfo))
//	logger.Info("Invoice created",
//		redarch.WithUserID("user-001"),
//		redarch.WithTenantID("client-123"))
//
// Configuration is read from RARCH_LOGGING_URL, RARCH_LOGGING_API_KEY,
// RARCH_LOGGING_SERVICE and RARCH_LOGGING_DEFAULT_LEVEL by DefaultConfig,
// optionally overlaid with a YAML file via LoadConfigFile.
package redarch
