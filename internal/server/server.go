// internal/server/server.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"

	"mcp-meal-plan/internal/auth"
	"mcp-meal-plan/internal/catalog"
	"mcp-meal-plan/internal/models"
)

const serverVersion = "1.0.0"

type Config struct {
	Transport string
	Host      string
	Port      int
	// Slots is the fixed order of meal slots in every generated plan.
	Slots []string
}

// PlanStore persists generated plans.
type PlanStore interface {
	SavePlan(plan *models.Plan) error
	GetPlan(id string) (*models.Plan, error)
	ListPlans(username string, limit int) ([]*models.PlanSummary, error)
	Close() error
}

type toolHandler func(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error)

type MealPlanServer struct {
	info       protocol.Implementation
	httpServer *http.Server
	storage    PlanStore
	catalog    catalog.Source
	auth       *auth.Service
	tools      map[string]toolHandler
	config     *Config
	now        func() time.Time
}

func NewMealPlanServer(cfg *Config, stor PlanStore, source catalog.Source, authSvc *auth.Service) (*MealPlanServer, error) {
	if len(cfg.Slots) == 0 {
		return nil, fmt.Errorf("at least one meal slot is required")
	}
	if source == nil {
		return nil, fmt.Errorf("catalog source is required")
	}

	mealServer := &MealPlanServer{
		info: protocol.Implementation{
			Name:    "meal-plan",
			Version: serverVersion,
		},
		storage: stor,
		catalog: source,
		auth:    authSvc,
		config:  cfg,
		now:     time.Now,
	}

	if err := mealServer.registerTools(); err != nil {
		return nil, fmt.Errorf("failed to register tools: %w", err)
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/health", mealServer.handleHealth)
	mux.HandleFunc("/", mealServer.handleHTTP)

	addr := fmt.Sprintf("%s:%d", cfg.Host, cfg.Port)
	mealServer.httpServer = &http.Server{
		Addr:              addr,
		Handler:           mux,
		ReadHeaderTimeout: 10 * time.Second,
	}

	return mealServer, nil
}

// Handler exposes the HTTP handler, mainly for tests.
func (s *MealPlanServer) Handler() http.Handler {
	return s.httpServer.Handler
}

func (s *MealPlanServer) handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	json.NewEncoder(w).Encode(map[string]interface{}{
		"status": "ok",
		"server": s.info,
	})
}

func (s *MealPlanServer) handleHTTP(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Access-Control-Allow-Origin", "*")
	w.Header().Set("Access-Control-Allow-Methods", "POST, OPTIONS")
	w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization")

	if r.Method == http.MethodOptions {
		w.WriteHeader(http.StatusNoContent)
		return
	}
	if r.Method != http.MethodPost {
		http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
		return
	}

	// UseNumber keeps multipliers as their literal text until they are
	// converted to exact rationals.
	var request protocol.CallToolRequest
	decoder := json.NewDecoder(r.Body)
	decoder.UseNumber()
	if err := decoder.Decode(&request); err != nil {
		http.Error(w, fmt.Sprintf("Invalid JSON: %v", err), http.StatusBadRequest)
		return
	}

	handler, ok := s.tools[request.Name]
	if !ok {
		http.Error(w, fmt.Sprintf("Unknown tool: %s", request.Name), http.StatusNotFound)
		return
	}

	result, err := handler(r.Context(), &request)
	if err != nil {
		status := http.StatusInternalServerError
		var te *toolError
		if errors.As(err, &te) {
			status = te.status
		}
		log.Printf("[server] tool %s failed: %v", request.Name, err)
		http.Error(w, err.Error(), status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(result); err != nil {
		log.Printf("[server] failed to encode response: %v", err)
	}
}

func (s *MealPlanServer) Start(ctx context.Context) error {
	log.Printf("[server] starting meal plan server on %s", s.httpServer.Addr)
	if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		return err
	}
	return nil
}

// Stop drains in-flight requests before closing the plan store.
func (s *MealPlanServer) Stop() error {
	var shutdownErr error
	if s.httpServer != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		shutdownErr = s.httpServer.Shutdown(ctx)
	}
	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			return errors.Join(shutdownErr, fmt.Errorf("failed to close storage: %w", err))
		}
	}
	return shutdownErr
}

// toolError carries the HTTP status for a failed tool call. The message is
// what the user sees.
type toolError struct {
	status int
	msg    string
}

func (e *toolError) Error() string { return e.msg }

func badRequest(format string, args ...interface{}) error {
	return &toolError{status: http.StatusBadRequest, msg: fmt.Sprintf(format, args...)}
}

func (s *MealPlanServer) createJSONResponse(data interface{}) (*protocol.CallToolResult, error) {
	jsonBytes, err := json.Marshal(data)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal response: %w", err)
	}

	return &protocol.CallToolResult{
		Content: []protocol.Content{
			protocol.TextContent{
				Type: "text",
				Text: string(jsonBytes),
			},
		},
	}, nil
}
