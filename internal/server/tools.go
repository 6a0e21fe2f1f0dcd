// internal/server/tools.go
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/ThinkInAIXYZ/go-mcp/protocol"
	"github.com/google/uuid"

	"mcp-meal-plan/internal/auth"
	"mcp-meal-plan/internal/export"
	"mcp-meal-plan/internal/models"
	"mcp-meal-plan/internal/planner"
	"mcp-meal-plan/internal/quantity"
	"mcp-meal-plan/internal/storage"
)

type LoginParams struct {
	Username string `json:"username" description:"Account name"`
	Password string `json:"password" description:"Account password"`
}

type TokenParams struct {
	Token string `json:"token" description:"Session token returned by login"`
}

type SlotParams struct {
	Name         string                    `json:"name" description:"Meal slot name, e.g. Desayuno"`
	Instructions string                    `json:"instructions,omitempty" description:"Multipliers as group*scalar pairs, e.g. 1*2,3*1.5"`
	Scalars      map[int]quantity.Rational `json:"scalars,omitempty" description:"Multiplier per group id"`
}

type GeneratePlanParams struct {
	Token string       `json:"token" description:"Session token returned by login"`
	Slots []SlotParams `json:"slots" description:"Multipliers per meal slot"`
	Save  bool         `json:"save,omitempty" description:"Persist the generated plan"`
}

type GetPlansParams struct {
	Token string `json:"token" description:"Session token returned by login"`
	Limit int    `json:"limit,omitempty" description:"Maximum number of plans to return"`
}

type PlanParams struct {
	Token  string `json:"token" description:"Session token returned by login"`
	PlanID string `json:"plan_id" description:"Identifier of a saved plan"`
	Format string `json:"format,omitempty" description:"Export format: json, csv, markdown, html"`
}

// extractParams safely extracts parameters from the request arguments
func extractParams(req *protocol.CallToolRequest, target interface{}) error {
	jsonBytes, err := json.Marshal(req.Arguments)
	if err != nil {
		return fmt.Errorf("failed to marshal arguments: %w", err)
	}

	if err := json.Unmarshal(jsonBytes, target); err != nil {
		return badRequest("invalid parameters: %v", err)
	}

	return nil
}

// authenticate resolves the caller's session from the token argument.
func (s *MealPlanServer) authenticate(token string) (*auth.Session, error) {
	if s.auth == nil {
		return nil, &toolError{status: http.StatusUnauthorized, msg: "login is not configured"}
	}
	session, err := s.auth.Authenticate(token)
	if err != nil {
		return nil, &toolError{status: http.StatusUnauthorized, msg: err.Error()}
	}
	return session, nil
}

func (s *MealPlanServer) handleLogin(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params LoginParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if s.auth == nil {
		return nil, &toolError{status: http.StatusUnauthorized, msg: "login is not configured"}
	}

	session, token, err := s.auth.Login(params.Username, params.Password)
	if errors.Is(err, auth.ErrInvalidCredentials) {
		log.Printf("[auth] failed login for %q", params.Username)
		return nil, &toolError{status: http.StatusUnauthorized, msg: err.Error()}
	}
	if err != nil {
		return nil, fmt.Errorf("login failed: %w", err)
	}

	log.Printf("[auth] %s logged in", session.Username)
	return s.createJSONResponse(map[string]interface{}{
		"token":   token,
		"session": session,
	})
}

func (s *MealPlanServer) handleListGroups(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params TokenParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	if _, err := s.authenticate(params.Token); err != nil {
		return nil, err
	}

	groups, err := s.catalog.Groups()
	if err != nil {
		return nil, catalogError(err)
	}

	return s.createJSONResponse(map[string]interface{}{
		"groups": groups,
		"slots":  s.config.Slots,
	})
}

// handleGeneratePlan scales the catalog for the requested slots
func (s *MealPlanServer) handleGeneratePlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GeneratePlanParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	session, err := s.authenticate(params.Token)
	if err != nil {
		return nil, err
	}

	slots, err := s.buildSlots(params.Slots)
	if err != nil {
		return nil, err
	}

	plan, err := s.generate(session, slots)
	if errors.Is(err, planner.ErrEmptyPlan) {
		return s.createJSONResponse(map[string]interface{}{
			"empty":   true,
			"message": err.Error(),
		})
	}
	if err != nil {
		return nil, err
	}

	if params.Save {
		if err := s.storage.SavePlan(plan); err != nil {
			return nil, fmt.Errorf("failed to save plan: %w", err)
		}
		log.Printf("[server] saved plan %s for %s", plan.ID, session.Username)
	}

	slotLines := make([]map[string]interface{}, len(plan.Slots))
	for i, slot := range plan.Slots {
		slotLines[i] = map[string]interface{}{
			"name":  slot.Name,
			"lines": slot.Lines(),
		}
	}

	return s.createJSONResponse(map[string]interface{}{
		"id":     plan.ID,
		"saved":  params.Save,
		"slots":  slotLines,
		"issues": plan.Issues,
		"plan":   plan,
	})
}

// generate runs one plan generation for the given session. The catalog is
// fetched fresh and is never replaced by a fallback when unavailable.
func (s *MealPlanServer) generate(session *auth.Session, slots []models.MealSlot) (*models.Plan, error) {
	groups, err := s.catalog.Groups()
	if err != nil {
		return nil, catalogError(err)
	}

	plan, err := planner.Assemble(groups, slots)
	if err != nil {
		return nil, err
	}

	plan.ID = uuid.New().String()
	plan.Username = session.Username
	plan.CreatedAt = s.now().UTC()
	for _, issue := range plan.Issues {
		log.Printf("[planner] %s group %d: %s", issue.Slot, issue.GroupID, issue.Error)
	}
	return plan, nil
}

// buildSlots lays the requested multipliers over the configured slot order.
func (s *MealPlanServer) buildSlots(requested []SlotParams) ([]models.MealSlot, error) {
	byName := make(map[string]map[int]quantity.Rational, len(requested))
	for _, sp := range requested {
		if sp.Name == "" {
			return nil, badRequest("every slot needs a name")
		}
		if _, dup := byName[sp.Name]; dup {
			return nil, badRequest("slot %q given twice", sp.Name)
		}
		if sp.Instructions != "" && len(sp.Scalars) > 0 {
			return nil, badRequest("slot %q: give either instructions or scalars, not both", sp.Name)
		}

		scalars := sp.Scalars
		if sp.Instructions != "" {
			parsed, err := planner.ParseInstructions(sp.Instructions)
			if err != nil {
				return nil, badRequest("slot %q: %v", sp.Name, err)
			}
			scalars = parsed
		}
		byName[sp.Name] = scalars
	}

	slots := make([]models.MealSlot, 0, len(s.config.Slots))
	for _, name := range s.config.Slots {
		slots = append(slots, models.MealSlot{Name: name, Scalars: byName[name]})
		delete(byName, name)
	}
	for name := range byName {
		return nil, badRequest("unknown slot %q (configured: %v)", name, s.config.Slots)
	}
	return slots, nil
}

func (s *MealPlanServer) handleGetPlans(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params GetPlansParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	session, err := s.authenticate(params.Token)
	if err != nil {
		return nil, err
	}

	if params.Limit <= 0 {
		params.Limit = 20
	}

	plans, err := s.storage.ListPlans(session.Username, params.Limit)
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve plans: %w", err)
	}

	return s.createJSONResponse(plans)
}

func (s *MealPlanServer) handleGetPlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params PlanParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}
	plan, err := s.ownedPlan(params)
	if err != nil {
		return nil, err
	}
	return s.createJSONResponse(plan)
}

func (s *MealPlanServer) handleExportPlan(ctx context.Context, req *protocol.CallToolRequest) (*protocol.CallToolResult, error) {
	var params PlanParams
	if err := extractParams(req, &params); err != nil {
		return nil, err
	}

	exporter, err := export.ForFormat(params.Format)
	if err != nil {
		return nil, badRequest("%v", err)
	}

	plan, err := s.ownedPlan(params)
	if err != nil {
		return nil, err
	}

	content, err := exporter.Export(plan)
	if err != nil {
		return nil, fmt.Errorf("failed to export plan: %w", err)
	}

	return s.createJSONResponse(map[string]interface{}{
		"plan_id":   plan.ID,
		"mime_type": exporter.MimeType(),
		"extension": exporter.FileExtension(),
		"content":   string(content),
	})
}

// ownedPlan loads a saved plan belonging to the caller.
func (s *MealPlanServer) ownedPlan(params PlanParams) (*models.Plan, error) {
	session, err := s.authenticate(params.Token)
	if err != nil {
		return nil, err
	}
	if params.PlanID == "" {
		return nil, badRequest("plan_id is required")
	}

	plan, err := s.storage.GetPlan(params.PlanID)
	if errors.Is(err, storage.ErrPlanNotFound) {
		return nil, &toolError{status: http.StatusNotFound, msg: err.Error()}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to retrieve plan: %w", err)
	}
	if plan.Username != session.Username {
		return nil, &toolError{status: http.StatusNotFound, msg: fmt.Sprintf("plan not found: %s", params.PlanID)}
	}
	return plan, nil
}

func catalogError(err error) error {
	return &toolError{status: http.StatusServiceUnavailable, msg: err.Error()}
}

func (s *MealPlanServer) registerTools() error {
	s.tools = map[string]toolHandler{
		"login":         s.handleLogin,
		"list_groups":   s.handleListGroups,
		"generate_plan": s.handleGeneratePlan,
		"get_plans":     s.handleGetPlans,
		"get_plan":      s.handleGetPlan,
		"export_plan":   s.handleExportPlan,
	}

	if s.storage == nil {
		return fmt.Errorf("plan storage is required")
	}
	for name := range s.tools {
		log.Printf("[server] registered tool: %s", name)
	}
	return nil
}
