package server

import (
	"fmt"
	"net"
	"net/http"
	"os"
	"strings"

	"github.com/golang-jwt/jwt/v5"

	log "log"

	"medishare/core/audit"
	"medishare/core/auth"
	"medishare/core/engine"
	"medishare/core/networking"
	"medishare/core/notify"
	"medishare/core/reshare"
	"medishare/core/signer"
	"medishare/core/storage"

	// Load env vars from sample.env for local/dev
	_ "github.com/joho/godotenv/autoload"
)

import "github.com/joho/godotenv"

func init() {
	godotenv.Load("sample.env")
}

// --- Environment Variable Config ---
// All sensitive/configurable values are loaded from environment variables.
// See sample.env for variable names and dummy values.

var (
	apiKey      = os.Getenv("MEDISHARE_API_KEY")        // API key for admin endpoints
	jwtSecret   = os.Getenv("MEDISHARE_API_JWT_SECRET") // JWT secret for API authentication
	enableHTTPS = os.Getenv("MEDISHARE_ENABLE_HTTPS")   // Enable HTTPS (true/false)
	tlsCertPath = os.Getenv("MEDISHARE_TLS_CERT_PATH")  // TLS certificate path
	tlsKeyPath  = os.Getenv("MEDISHARE_TLS_KEY_PATH")   // TLS key path
)

type Server struct {
	Store      *storage.Storage
	Records    *storage.RecordStore
	Registry   *signer.Registry
	Protocol   *reshare.Protocol
	Engine     *engine.Client
	Verifier   *auth.ProviderVerifier
	Roles      *auth.Roles
	Audit      audit.AuditLogger
	Notifier   *notify.Dispatcher
	Guard      *networking.Guard
	ListenAddr string
}

func NewServer(store *storage.Storage, records *storage.RecordStore, registry *signer.Registry, protocol *reshare.Protocol, eng *engine.Client, verifier *auth.ProviderVerifier, roles *auth.Roles, auditLogger audit.AuditLogger, notifier *notify.Dispatcher, listenAddr string) *Server {
	return &Server{
		Store:      store,
		Records:    records,
		Registry:   registry,
		Protocol:   protocol,
		Engine:     eng,
		Verifier:   verifier,
		Roles:      roles,
		Audit:      auditLogger,
		Notifier:   notifier,
		Guard:      networking.NewGuard(store),
		ListenAddr: listenAddr,
	}
}

// routes builds the full handler tree. Split out of Start so tests can
// drive the mux without binding a socket.
func (s *Server) routes() *http.ServeMux {
	mux := http.NewServeMux()

	// Health/status endpoints, open
	mux.HandleFunc("/nodehealth", s.HandleNodeHealth) // For CLI metrics
	mux.HandleFunc("/health/liveness", s.HandleLiveness)
	mux.HandleFunc("/health/readiness", s.HandleReadiness)
	mux.HandleFunc("/status", s.HandleStatus)

	// Record custody endpoints
	mux.Handle("/api/v1/records", s.limit(authMiddleware(http.HandlerFunc(s.StoreRecordHandler))))
	mux.Handle("/api/v1/records/", authMiddleware(http.HandlerFunc(s.GetRecordHandler)))

	// Re-share endpoints: one ungated, one per configured role
	RegisterReShareAPI(mux, s)

	// Admin + dev endpoints
	mux.Handle("/api/v1/admin/compdef", authMiddleware(http.HandlerFunc(s.InitCompDefHandler)))
	mux.HandleFunc("/api/v1/roles", s.ListRolesHandler)
	RegisterDevJobInspectAPI(mux, s)

	return mux
}

func (s *Server) Start() error {
	mux := s.routes()

	fmt.Println("API server listening at", s.ListenAddr)

	if enableHTTPS == "true" {
		fmt.Println("[HTTPS] Enabled. Using cert:", tlsCertPath, "key:", tlsKeyPath)
		return http.ListenAndServeTLS(s.ListenAddr, tlsCertPath, tlsKeyPath, mux)
	}
	fmt.Println("[HTTPS] Disabled. Serving HTTP only!")
	return http.ListenAndServe(s.ListenAddr, mux)
}

// limit applies ban and rate-limit enforcement by client IP before a
// handler runs.
func (s *Server) limit(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		host, _, err := net.SplitHostPort(r.RemoteAddr)
		if err != nil {
			host = r.RemoteAddr // fallback if parsing fails
		}
		if s.Guard != nil {
			if s.Guard.IsBanned(host) {
				http.Error(w, "forbidden: banned", http.StatusForbidden)
				fmt.Printf("[BAN] Blocked request from banned client: %s\n", host)
				return
			}
			if !s.Guard.AllowRequest(host) {
				http.Error(w, "rate limit exceeded", http.StatusTooManyRequests)
				fmt.Printf("[RATE LIMIT] Blocked request from %s\n", host)
				return
			}
		}
		next.ServeHTTP(w, r)
	})
}

// authMiddleware enforces either a Bearer JWT (HMAC, shared secret) or
// the node API key on mutating endpoints.
func authMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		authHeader := r.Header.Get("Authorization")
		xApiKey := r.Header.Get("X-API-Key")

		jwtValid := false
		if strings.HasPrefix(authHeader, "Bearer ") {
			tokenString := strings.TrimPrefix(authHeader, "Bearer ")
			secret := jwtSecret
			if envSecret := os.Getenv("MEDISHARE_API_JWT_SECRET"); envSecret != "" {
				secret = envSecret
			}
			token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
				if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
					return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
				}
				return []byte(secret), nil
			})
			if err != nil {
				log.Printf("[WARN] Invalid API JWT: %v\n", err)
			}
			jwtValid = err == nil && token.Valid
		}

		key := apiKey
		if envKey := os.Getenv("MEDISHARE_API_KEY"); envKey != "" {
			key = envKey
		}
		apiKeyValid := xApiKey != "" && key != "" && xApiKey == key

		if !jwtValid && !apiKeyValid {
			http.Error(w, "Unauthorized", http.StatusUnauthorized)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// bearerSubject returns the subject claim of the request's Bearer JWT.
// Empty when the request carried no parseable token (API key auth).
func bearerSubject(r *http.Request) string {
	authHeader := r.Header.Get("Authorization")
	if !strings.HasPrefix(authHeader, "Bearer ") {
		return ""
	}
	tokenString := strings.TrimPrefix(authHeader, "Bearer ")
	secret := jwtSecret
	if envSecret := os.Getenv("MEDISHARE_API_JWT_SECRET"); envSecret != "" {
		secret = envSecret
	}
	token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method %v", token.Header["alg"])
		}
		return []byte(secret), nil
	})
	if err != nil || !token.Valid {
		return ""
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return ""
	}
	sub, _ := claims["sub"].(string)
	return sub
}
