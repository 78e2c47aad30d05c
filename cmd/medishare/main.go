package main

import (
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"time"

	"medishare/api/server"
	"medishare/core/audit"
	"medishare/core/auth"
	"medishare/core/engine"
	"medishare/core/notify"
	"medishare/core/reshare"
	"medishare/core/signer"
	"medishare/core/storage"
)

// How long a queued computation offset stays in the local dedup set.
var offsetRetention = 15 * time.Minute

func init() {
	if val := os.Getenv("MEDISHARE_OFFSET_RETENTION_MIN"); val != "" {
		if mins, err := strconv.Atoi(val); err == nil && mins > 0 {
			offsetRetention = time.Duration(mins) * time.Minute
		}
	}
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func main() {
	// Log to file as well as stdout
	os.MkdirAll("logs", 0o755)
	logFile, err := os.OpenFile("logs/medishare-node.log", os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0666)
	if err != nil {
		log.Fatalf("Failed to open log file: %v", err)
	}
	log.SetOutput(io.MultiWriter(os.Stdout, logFile))

	fmt.Println("🚀 Starting MediShare Node")

	// === Config ===
	dbPath := envOr("MEDISHARE_DB_PATH", "./medishare_db")
	apiListenAddr := ":" + envOr("MEDISHARE_API_PORT", "8080")
	engineURL := envOr("MEDISHARE_ENGINE_URL", "http://localhost:9090")
	rolesPath := envOr("MEDISHARE_ROLES_FILE", "roles.yaml")

	cluster := uint32(0)
	if val := os.Getenv("MEDISHARE_ENGINE_CLUSTER"); val != "" {
		n, err := strconv.ParseUint(val, 10, 32)
		if err != nil {
			log.Fatalf("❌ Invalid MEDISHARE_ENGINE_CLUSTER: %v", err)
		}
		cluster = uint32(n)
	}

	// === Audit Logging ===
	var auditLogger audit.AuditLogger
	if path := os.Getenv("MEDISHARE_AUDIT_LOG"); path != "" {
		fileLogger, err := audit.NewFileAuditLogger(path)
		if err != nil {
			log.Fatalf("❌ Failed to open audit log %s: %v", path, err)
		}
		defer fileLogger.Close()
		auditLogger = fileLogger
		fmt.Println("[AUDIT] Writing audit events to", path)
	} else {
		auditLogger = audit.NewStdoutAuditLogger()
	}

	// === Storage ===
	store, err := storage.NewStorage(dbPath)
	if err != nil {
		log.Fatalf("❌ Failed to initialize storage: %v", err)
	}
	defer store.Close()
	records := storage.NewRecordStore(store)

	// === Node Signing Identity ===
	registry := signer.NewRegistry(store)
	identity, err := registry.Ensure()
	if err != nil {
		log.Fatalf("❌ Failed to load/generate signing identity: %v", err)
	}
	fmt.Printf("[KEY] Node signing key: %s\n", identity.PublicKeyHex())

	// === Compute Engine ===
	engineClient := engine.NewClient(engineURL)
	if engineClient.Ping() {
		if err := engineClient.EnsureDefinition(reshare.Definition); err != nil {
			fmt.Printf("⚠️  Could not register computation definition yet: %v\n", err)
		}
	} else {
		fmt.Printf("⚠️  Compute engine %s not reachable at startup\n", engineURL)
	}

	// === Roles ===
	roles, err := auth.LoadRoles(rolesPath)
	if err != nil {
		log.Fatalf("❌ Failed to load roles from %s: %v", rolesPath, err)
	}
	fmt.Printf("[BOOT] Gating re-shares for roles: %v\n", roles.Names())

	// === Token Ledger View ===
	var view auth.TokenView
	if url := os.Getenv("MEDISHARE_TOKEN_REGISTRY_URL"); url != "" {
		view = auth.NewRegistryClient(url)
		fmt.Println("[BOOT] Using token registry at", url)
	} else {
		view = &auth.StaticTokenView{}
		fmt.Println("⚠️  MEDISHARE_TOKEN_REGISTRY_URL not set; credential checks will fail until configured")
	}
	gate := auth.NewCredentialGate(view, auditLogger)

	// === Provider Token Verification ===
	var verifier *auth.ProviderVerifier
	pubKeyPath := envOr("MEDISHARE_PROVIDER_PUBKEY_PATH", "provider_public.pem")
	if keyProvider, err := auth.NewFileKeyProvider(pubKeyPath); err == nil {
		verifier = &auth.ProviderVerifier{KeyProvider: keyProvider, Audit: auditLogger}
		fmt.Println("[BOOT] Provider token verification enabled with key", pubKeyPath)
	} else {
		fmt.Printf("⚠️  Provider public key unavailable (%v); provider token checks disabled\n", err)
	}

	// === Re-Share Protocol ===
	protocol := reshare.NewProtocol(records, registry, engineClient, gate, cluster, auditLogger)

	// === Notifications ===
	notifier := notify.NewDispatcher(notify.LogSink{})

	// === Background release of settled computation offsets ===
	go func() {
		ticker := time.NewTicker(1 * time.Minute)
		defer ticker.Stop()
		for {
			<-ticker.C
			released := engineClient.ForgetOlderThan(offsetRetention)
			if released > 0 {
				log.Printf("[ENGINE] Released %d settled computation offset(s)", released)
			}
		}
	}()

	// === API Server ===
	apiServer := server.NewServer(store, records, registry, protocol, engineClient, verifier, roles, auditLogger, notifier, apiListenAddr)
	if err := apiServer.Start(); err != nil {
		log.Fatalf("❌ API server failed: %v", err)
	}
}
