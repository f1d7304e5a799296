package main

import (
	"context"
	"database/sql"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"campusrooms/internal/api"
	"campusrooms/internal/auth"
	"campusrooms/internal/booking"
	"campusrooms/internal/repository"
	"campusrooms/internal/service"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/robfig/cron/v3"
)

func main() {
	godotenv.Load()

	var store booking.Store
	var db *sql.DB

	dbURL := os.Getenv("DATABASE_URL")
	if dbURL == "" {
		// Library mode: the engine keeps everything in memory. Useful for
		// local development and demos; bookings do not survive a restart.
		log.Println("DATABASE_URL not set, running with in-memory state")
		store = booking.NullStore{}
	} else {
		var err error
		db, err = sql.Open("postgres", dbURL)
		if err != nil {
			log.Fatalf("Failed to open DB: %v", err)
		}
		if err := db.Ping(); err != nil {
			log.Fatalf("Failed to connect to DB: %v", err)
		}
		if err := goose.SetDialect("postgres"); err != nil {
			log.Fatalf("Failed to set migration dialect: %v", err)
		}
		if err := goose.Up(db, "migrations"); err != nil {
			log.Fatalf("Failed to run migrations: %v", err)
		}
		store = repository.NewPostgresStore(db)
	}

	facade := booking.NewFacade(store, lockWait())
	if err := facade.Hydrate(context.Background()); err != nil {
		log.Fatalf("Failed to hydrate engine: %v", err)
	}

	sender := service.NewSenderService()
	bookingHandler := api.NewBookingHandler(facade, sender)
	adminHandler := api.NewAdminHandler(facade)

	r := mux.NewRouter()

	// Public endpoints
	r.HandleFunc("/api/availability", bookingHandler.CheckAvailability).Methods("POST")
	r.HandleFunc("/api/bookings", bookingHandler.CreateBooking).Methods("POST")
	r.HandleFunc("/api/bookings/hold", bookingHandler.HoldBooking).Methods("POST")
	r.HandleFunc("/api/bookings/{id}", bookingHandler.GetBooking).Methods("GET")
	r.HandleFunc("/api/bookings/{id}/confirm", bookingHandler.ConfirmHold).Methods("POST")
	r.HandleFunc("/api/bookings/{id}", bookingHandler.CancelBooking).Methods("DELETE")
	r.HandleFunc("/api/rooms", bookingHandler.ListRooms).Methods("GET")
	r.HandleFunc("/api/rooms/{id}/bookings", bookingHandler.ListRoomBookings).Methods("GET")

	if db != nil {
		authRepo := repository.NewAdminAuthRepository(db)
		authService := service.NewAdminAuthService(authRepo)
		authHandler := api.NewAdminAuthHandler(authService)
		r.HandleFunc("/api/admin/login", authHandler.Login).Methods("POST")
		r.HandleFunc("/api/admin/register", authHandler.CreateUserAdmin).Methods("POST")
	}

	// Admin endpoints (protected)
	admin := r.PathPrefix("/admin").Subrouter()
	admin.Use(auth.AdminAuthMiddleware)
	admin.HandleFunc("/rooms", adminHandler.CreateRoom).Methods("POST")
	admin.HandleFunc("/rooms/{id}", adminHandler.UpdateRoom).Methods("PUT")
	admin.HandleFunc("/rooms/{id}/availability", adminHandler.SetAvailability).Methods("PUT")
	admin.HandleFunc("/bookings", adminHandler.ListBookings).Methods("GET")
	admin.HandleFunc("/bookings/{id}", adminHandler.AdminCancelBooking).Methods("DELETE")

	// Stale pending holds are swept in the background so they cannot block
	// a room's calendar forever.
	jobService := service.NewJobService(facade, holdTTL())
	c := cron.New()
	c.AddFunc("@every 1m", func() {
		if err := jobService.ExpireStaleHolds(context.Background()); err != nil {
			log.Printf("Error expiring stale holds: %v", err)
		}
	})
	c.Start()
	defer c.Stop()

	cors := handlers.CORS(
		handlers.AllowedOrigins([]string{"*"}),
		handlers.AllowedMethods([]string{"GET", "POST", "PUT", "DELETE", "OPTIONS"}),
		handlers.AllowedHeaders([]string{"Content-Type", "Authorization"}),
	)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}
	log.Printf("Server running on port %s", port)
	log.Fatal(http.ListenAndServe(":"+port, cors(r)))
}

func holdTTL() time.Duration {
	minutes, err := strconv.Atoi(os.Getenv("HOLD_TTL_MINUTES"))
	if err != nil || minutes <= 0 {
		minutes = 30
	}
	return time.Duration(minutes) * time.Minute
}

func lockWait() time.Duration {
	ms, err := strconv.Atoi(os.Getenv("ROOM_LOCK_WAIT_MS"))
	if err != nil || ms <= 0 {
		return booking.DefaultLockWait
	}
	return time.Duration(ms) * time.Millisecond
}
