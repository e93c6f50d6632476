package routes

import (
	"fitcenter/internal/handlers"
	"fitcenter/internal/middleware"
	"net/http"

	"github.com/gorilla/mux"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

func InitRoutes(
	router *mux.Router,
	authHandler *handlers.AuthHandler,
	passwordHandler *handlers.PasswordHandler,
	adminHandler *handlers.AdminHandler,
	jwtSecret string,
	cronSecret string,
) {
	router.Use(middleware.RequestID)
	router.Use(middleware.Logging)
	router.Use(middleware.Metrics)
	router.Use(middleware.Recoverer)

	router.Handle("/metrics", promhttp.Handler()).Methods("GET")

	api := router.PathPrefix("/api").Subrouter()
	auth := api.PathPrefix("/auth").Subrouter()

	// --- Публичные маршруты ---
	auth.HandleFunc("/register", authHandler.Register).Methods("POST")
	auth.HandleFunc("/login", authHandler.Login).Methods("POST")
	auth.HandleFunc("/logout", authHandler.Logout).Methods("POST")
	auth.HandleFunc("/session", authHandler.Session).Methods("GET")

	auth.HandleFunc("/forgot-password", passwordHandler.Forgot).Methods("POST")
	auth.HandleFunc("/verify-reset-token", passwordHandler.VerifyToken).Methods("POST")
	auth.HandleFunc("/reset-password", passwordHandler.Reset).Methods("POST")

	// --- Планировщик ---
	auth.Handle("/cleanup-tokens",
		middleware.CronAuth(cronSecret)(http.HandlerFunc(passwordHandler.Cleanup)),
	).Methods("POST")

	// --- Защищённые JWT (только админ) ---
	jwtAuth := middleware.JWTAuth(jwtSecret)
	onlyAdmin := middleware.OnlyRole("admin")

	auth.Handle("/password-reset-logs",
		jwtAuth(onlyAdmin(http.HandlerFunc(passwordHandler.Logs))),
	).Methods("GET")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(jwtAuth)
	admin.Use(onlyAdmin)
	admin.HandleFunc("/users", adminHandler.ListAccounts).Methods("GET")
	admin.HandleFunc("/staff", adminHandler.CreateStaff).Methods("POST")
	admin.HandleFunc("/cleanup-tokens", passwordHandler.Cleanup).Methods("POST")
}
