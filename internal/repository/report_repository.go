package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jengzang/healthtwin-backend/internal/models"
)

// ReportRepository records sent email reports
type ReportRepository struct {
	db *sql.DB
}

// NewReportRepository creates a new report repository
func NewReportRepository(db *sql.DB) *ReportRepository {
	return &ReportRepository{db: db}
}

// Create inserts a sent report
func (r *ReportRepository) Create(ctx context.Context, rep models.Report) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO reports (id, user_id, recipient_type, to_email, subject, message_id, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?)`,
		rep.ID, rep.UserID, rep.RecipientType, rep.ToEmail, rep.Subject, rep.MessageID, rep.CreatedAt)
	if err != nil {
		return fmt.Errorf("failed to insert report: %w", err)
	}
	return nil
}

// ListByUser returns the user's reports, newest first
func (r *ReportRepository) ListByUser(ctx context.Context, userID string, limit int) ([]models.Report, error) {
	if limit <= 0 {
		limit = 20
	}
	rows, err := r.db.QueryContext(ctx, `
		SELECT id, user_id, recipient_type, to_email, subject, message_id, created_at
		FROM reports WHERE user_id = ? ORDER BY created_at DESC LIMIT ?`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query reports: %w", err)
	}
	defer rows.Close()

	reports := []models.Report{}
	for rows.Next() {
		var rep models.Report
		if err := rows.Scan(&rep.ID, &rep.UserID, &rep.RecipientType, &rep.ToEmail, &rep.Subject, &rep.MessageID, &rep.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan report: %w", err)
		}
		reports = append(reports, rep)
	}
	return reports, rows.Err()
}
