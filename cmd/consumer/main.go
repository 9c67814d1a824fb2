package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/mux"
	"go.uber.org/zap"

	"github.com/yangxiaofu/gridiron-clock/internal/consumer"
	"github.com/yangxiaofu/gridiron-clock/internal/gameclock"
	"github.com/yangxiaofu/gridiron-clock/internal/log"
	"github.com/yangxiaofu/gridiron-clock/internal/models"
	"github.com/yangxiaofu/gridiron-clock/internal/store"
)

type HealthResponse struct {
	Status string `json:"status"`
}

type Server struct {
	handler *consumer.Handler
}

func (s *Server) heartbeatHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	if err := json.NewEncoder(w).Encode(HealthResponse{Status: "ok"}); err != nil {
		log.Error("Failed to write heartbeat response", zap.Error(err))
		return
	}
	log.Debug("Heartbeat received")
}

func (s *Server) processMessageHandler(w http.ResponseWriter, r *http.Request) {
	body, err := io.ReadAll(r.Body)
	if err != nil {
		log.Error("Failed to read request body", zap.Error(err))
		http.Error(w, "Failed to read request body", http.StatusBadRequest)
		return
	}
	defer func() {
		err := r.Body.Close()
		if err != nil {
			log.Error("Failed to close request body", zap.Error(err))
		}
	}()

	var msg models.Message
	if err := json.Unmarshal(body, &msg); err != nil {
		log.Error("Failed to parse JSON", zap.Error(err))
		http.Error(w, fmt.Sprintf("Failed to parse JSON: %v", err), http.StatusBadRequest)
		return
	}

	if err := s.handler.ProcessMessage(r.Context(), msg); err != nil {
		log.Error("Error processing message", zap.Error(err))
		http.Error(w, fmt.Sprintf("Failed to process message: %v", err), http.StatusInternalServerError)
		return
	}

	w.WriteHeader(http.StatusOK)
}

func (s *Server) gameClockHandler(w http.ResponseWriter, r *http.Request) {
	gameID := mux.Vars(r)["id"]

	state, ok := s.handler.Latest(gameID)
	if !ok {
		http.Error(w, fmt.Sprintf("unknown game %s", gameID), http.StatusNotFound)
		return
	}

	snap := models.SnapshotFromState(gameID, state, time.Now().UTC())
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(snap); err != nil {
		log.Error("Failed to write clock response", zap.Error(err))
	}
}

func run() int {
	port := flag.String("port", "8080", "Port to listen on")
	redisAddr := flag.String("redis", "localhost:6379", "Redis address")
	regulationOnly := flag.Bool("regulation-only", true, "End the game after the fourth quarter")
	flag.Parse()

	log.Info("Starting Clock Consumer Service",
		zap.String("port", *port),
		zap.String("redis_addr", *redisAddr),
	)

	// Initialize store and handler
	st, err := store.NewRedisStore(*redisAddr)
	if err != nil {
		log.Error("Failed to initialize store", zap.Error(err))
		return 1
	}

	var rules gameclock.Rulebook = gameclock.RegulationRulebook{}
	if !*regulationOnly {
		// Without score context the service cannot decide a tie; keep
		// playing overtime periods until an operator closes the game.
		rules = gameclock.RulebookFunc(func(gameclock.State) bool { return false })
	}

	handler := consumer.NewHandler(st, rules)
	defer func() {
		if err := handler.Close(); err != nil {
			log.Error("Failed to close handler", zap.Error(err))
		}
	}()

	server := &Server{
		handler: handler,
	}

	// Setup router
	r := mux.NewRouter()
	r.HandleFunc("/heartbeat", server.heartbeatHandler).Methods("POST")
	r.HandleFunc("/process-msg", server.processMessageHandler).Methods("POST")
	r.HandleFunc("/games/{id}/clock", server.gameClockHandler).Methods("GET")

	// Setup HTTP server
	httpServer := &http.Server{
		Addr:    ":" + *port,
		Handler: r,
	}

	// Handle graceful shutdown
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	errChan := make(chan error, 1)
	go func() {
		log.Info("Consumer service listening", zap.String("port", *port))
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Error("Server error", zap.Error(err))
			errChan <- err
		}
	}()

	select {
	case <-sigChan:
		log.Info("Shutdown signal received, stopping server")
	case <-errChan:
		return 1
	}

	if err := httpServer.Close(); err != nil {
		log.Error("Error closing server", zap.Error(err))
	}
	log.Info("Consumer service stopped")
	return 0
}

func main() {
	// Initialize global logger
	if err := log.Init(true); err != nil {
		panic(err)
	}
	defer func() {
		_ = log.Sync()
	}()

	os.Exit(run())
}
