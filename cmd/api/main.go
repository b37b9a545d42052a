package main

import (
	"log"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"booklib/internal/auth"
	apphttp "booklib/internal/http"
	"booklib/internal/httpx"
	"booklib/internal/platform/google"
	"booklib/internal/store"

	"github.com/gofrs/flock"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load(".env.local")

	serverAddress := getEnv("APP_ADDR", ":8080")
	dataDir := getEnv("DATA_DIR", ".")
	staticDir := getEnv("STATIC_DIR", "static")
	sessionSecret := mustGetEnv("SESSION_SECRET")
	adminUsername := strings.TrimSpace(getEnv("ADMIN_USERNAME", "admin"))
	adminPassword := strings.TrimSpace(getEnv("ADMIN_PASSWORD", "admin123"))
	staticUsers := auth.ParseStaticUsers(os.Getenv("LIBRARY_USERS"))
	defaultBackgrounds := splitList(getEnv("LIBRARY_BACKGROUNDS", "space1.svg,space2.svg,space3.svg"))

	if err := os.MkdirAll(dataDir, 0o755); err != nil {
		log.Fatalf("cannot create data dir: %v", err)
	}

	// One process owns the JSON files and the books directory.
	dirLock := flock.New(filepath.Join(dataDir, "library.lock"))
	locked, err := dirLock.TryLock()
	if err != nil {
		log.Fatalf("cannot acquire data dir lock: %v", err)
	}
	if !locked {
		log.Fatalf("another instance is already serving %s", dataDir)
	}
	defer dirLock.Unlock()

	bookStore, err := store.NewBookFS(filepath.Join(dataDir, "books"))
	if err != nil {
		log.Fatalf("cannot open book store: %v", err)
	}
	userStore := store.NewUserFS(filepath.Join(dataDir, "users.json"), staticUsers)
	backgroundsDir := filepath.Join(dataDir, "backgrounds")
	settingsStore, err := store.NewSettingsFS(filepath.Join(dataDir, "database.json"), backgroundsDir, defaultBackgrounds)
	if err != nil {
		log.Fatalf("cannot open settings store: %v", err)
	}

	var googleClient *google.Client
	if clientID := os.Getenv("GOOGLE_CLIENT_ID"); clientID != "" {
		redirectURL := getEnv("OAUTH_REDIRECT_URL", "http://localhost:8080/api/auth/google/callback")
		googleClient = google.NewClient(clientID, os.Getenv("GOOGLE_CLIENT_SECRET"), redirectURL)
		log.Println("google oauth enabled")
	}

	bookHandler := apphttp.NewBookHandler(bookStore)
	userHandler := apphttp.NewUserHandler(userStore)
	authHandler := apphttp.NewAuthHandler(userStore, sessionSecret, adminUsername, adminPassword)
	settingsHandler := apphttp.NewSettingsHandler(settingsStore)
	oauthHandler := apphttp.NewOAuthHandler(userStore, googleClient, sessionSecret, adminUsername)

	router := http.NewServeMux()

	router.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("ok"))
	})

	router.HandleFunc("/api/books", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			bookHandler.List(w, r)
		case http.MethodPost:
			httpx.AdminRequired(bookHandler.Create)(w, r)
		case http.MethodDelete:
			httpx.AdminRequired(bookHandler.Delete)(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})
	router.HandleFunc("/api/books/", func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/text"):
			bookHandler.GetText(w, r)
		case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/download"):
			bookHandler.Download(w, r)
		default:
			http.NotFound(w, r)
		}
	})

	router.HandleFunc("/api/settings", func(w http.ResponseWriter, r *http.Request) {
		switch r.Method {
		case http.MethodGet:
			settingsHandler.Get(w, r)
		case http.MethodPost:
			settingsHandler.Save(w, r)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}
	})

	router.HandleFunc("/api/users", requireMethod(http.MethodGet, httpx.AdminRequired(userHandler.List)))
	router.HandleFunc("/api/users/", requireMethod(http.MethodPut, httpx.AdminRequired(userHandler.UpdateRights)))

	router.HandleFunc("/api/register", requireMethod(http.MethodPost, authHandler.Register))
	router.HandleFunc("/api/login", requireMethod(http.MethodPost, authHandler.Login))
	router.HandleFunc("/api/admin/login", requireMethod(http.MethodPost, authHandler.AdminLogin))
	router.HandleFunc("/api/logout", requireMethod(http.MethodPost, authHandler.Logout))
	router.HandleFunc("/api/check-auth", requireMethod(http.MethodGet, authHandler.CheckAuth))

	router.HandleFunc("/api/auth/google", requireMethod(http.MethodGet, oauthHandler.Start))
	router.HandleFunc("/api/auth/google/callback", requireMethod(http.MethodGet, oauthHandler.Callback))

	router.Handle("/backgrounds/", http.StripPrefix("/backgrounds/", http.FileServer(http.Dir(backgroundsDir))))
	router.Handle("/static/backgrounds/", http.StripPrefix("/static/backgrounds/",
		http.FileServer(http.Dir(filepath.Join(staticDir, "backgrounds")))))

	rps, _ := strconv.ParseFloat(getEnv("RATE_LIMIT_RPS", "10"), 64)
	burst, _ := strconv.Atoi(getEnv("RATE_LIMIT_BURST", "20"))
	rateLimit := httpx.NewRateLimitMiddleware(rps, burst)
	allowedOrigins := splitList(os.Getenv("CORS_ALLOWED_ORIGINS"))
	enableHSTS := os.Getenv("ENABLE_HSTS") == "true"

	var handler http.Handler = router
	handler = rateLimit.Middleware(handler)
	handler = httpx.RequestSizeLimitMiddleware(apphttp.MaxUploadBytes)(handler)
	handler = httpx.SecurityHeadersMiddleware(enableHSTS)(handler)
	handler = httpx.CORSMiddleware(allowedOrigins)(handler)
	handler = httpx.RecoveryMiddleware(handler)
	handler = httpx.AccessLogMiddleware(handler)
	handler = httpx.SessionMiddleware(sessionSecret)(handler)
	handler = httpx.RequestIDMiddleware(handler)

	httpServer := &http.Server{
		Addr:         serverAddress,
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	log.Printf("Starting server on %s (data dir %s)", serverAddress, dataDir)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatalf("server error: %v", err)
	}
}

func requireMethod(method string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		if r.Method != method {
			w.WriteHeader(http.StatusMethodNotAllowed)
			return
		}
		next(w, r)
	}
}

func getEnv(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func mustGetEnv(key string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	log.Fatalf("missing required environment variable: %s", key)
	return ""
}

func splitList(s string) []string {
	var items []string
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			items = append(items, item)
		}
	}
	return items
}
