// internal/storage/sqlite.go
package storage

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	_ "modernc.org/sqlite"

	"mcp-meal-plan/internal/models"
)

var ErrPlanNotFound = errors.New("plan not found")

// timestampLayout is fixed width so created_at sorts correctly as text.
const timestampLayout = "2006-01-02T15:04:05.000000000Z"

type SQLiteStorage struct {
	db *sql.DB
}

func NewSQLiteStorage(dbPath string) (*SQLiteStorage, error) {
	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	storage := &SQLiteStorage{db: db}
	if err := storage.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return storage, nil
}

func (s *SQLiteStorage) Close() error {
	return s.db.Close()
}

func (s *SQLiteStorage) initSchema() error {
	schema := `
    CREATE TABLE IF NOT EXISTS plans (
        id TEXT PRIMARY KEY,
        username TEXT NOT NULL,
        created_at TEXT NOT NULL,
        document TEXT NOT NULL
    );

    CREATE TABLE IF NOT EXISTS plan_lines (
        id INTEGER PRIMARY KEY AUTOINCREMENT,
        plan_id TEXT NOT NULL,
        position INTEGER NOT NULL,
        slot TEXT NOT NULL,
        group_id INTEGER NOT NULL,
        group_name TEXT NOT NULL,
        scalar TEXT NOT NULL,
        line TEXT NOT NULL,
        FOREIGN KEY (plan_id) REFERENCES plans(id) ON DELETE CASCADE
    );

    CREATE INDEX IF NOT EXISTS idx_plans_username ON plans(username, created_at);
    CREATE INDEX IF NOT EXISTS idx_plan_lines_plan_id ON plan_lines(plan_id);
    `

	if _, err := s.db.Exec(schema); err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}

	return nil
}

func (s *SQLiteStorage) SavePlan(plan *models.Plan) error {
	if plan.ID == "" {
		return fmt.Errorf("plan has no id")
	}

	document, err := json.Marshal(plan)
	if err != nil {
		return fmt.Errorf("failed to encode plan: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to start transaction: %w", err)
	}
	defer tx.Rollback()

	planQuery := `
        INSERT INTO plans (id, username, created_at, document)
        VALUES (?, ?, ?, ?)
    `
	_, err = tx.Exec(planQuery,
		plan.ID, plan.Username, plan.CreatedAt.UTC().Format(timestampLayout), string(document))
	if err != nil {
		return fmt.Errorf("failed to insert plan: %w", err)
	}

	lineQuery := `
        INSERT INTO plan_lines (plan_id, position, slot, group_id, group_name, scalar, line)
        VALUES (?, ?, ?, ?, ?, ?, ?)
    `
	position := 0
	for _, slot := range plan.Slots {
		for _, group := range slot.Groups {
			_, err = tx.Exec(lineQuery,
				plan.ID, position, slot.Name, group.GroupID, group.Name, group.Scalar, group.Line)
			if err != nil {
				return fmt.Errorf("failed to insert plan line: %w", err)
			}
			position++
		}
	}

	return tx.Commit()
}

func (s *SQLiteStorage) GetPlan(id string) (*models.Plan, error) {
	var document string
	err := s.db.QueryRow(`SELECT document FROM plans WHERE id = ?`, id).Scan(&document)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrPlanNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query plan: %w", err)
	}

	plan := &models.Plan{}
	if err := json.Unmarshal([]byte(document), plan); err != nil {
		return nil, fmt.Errorf("failed to decode plan %s: %w", id, err)
	}
	return plan, nil
}

// ListPlans returns the newest plans first. An empty username lists every
// user's plans.
func (s *SQLiteStorage) ListPlans(username string, limit int) ([]*models.PlanSummary, error) {
	query := `
        SELECT p.id, p.username, p.created_at,
               COUNT(DISTINCT l.slot), COUNT(l.id)
        FROM plans p
        LEFT JOIN plan_lines l ON l.plan_id = p.id
        WHERE 1=1
    `
	args := []interface{}{}

	if username != "" {
		query += " AND p.username = ?"
		args = append(args, username)
	}

	query += " GROUP BY p.id ORDER BY p.created_at DESC LIMIT ?"
	args = append(args, limit)

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query plans: %w", err)
	}
	defer rows.Close()

	var plans []*models.PlanSummary
	for rows.Next() {
		summary := &models.PlanSummary{}
		var createdAtStr string

		err := rows.Scan(&summary.ID, &summary.Username, &createdAtStr,
			&summary.SlotCount, &summary.LineCount)
		if err != nil {
			return nil, fmt.Errorf("failed to scan plan: %w", err)
		}

		if summary.CreatedAt, err = time.Parse(timestampLayout, createdAtStr); err != nil {
			return nil, fmt.Errorf("failed to parse created_at: %w", err)
		}

		plans = append(plans, summary)
	}

	return plans, rows.Err()
}
