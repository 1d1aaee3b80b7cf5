package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"html/template"
	"net/http"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/models"
	"github.com/jengzang/healthtwin-backend/internal/platform/apierr"
	"github.com/jengzang/healthtwin-backend/internal/platform/logger"
	"github.com/jengzang/healthtwin-backend/internal/platform/sendgrid"
)

// reportChatMessages is how many recent chat turns a report quotes.
const reportChatMessages = 5

var (
	ErrInvalidEmail         = apierr.BadRequest("invalid_email", errors.New("invalid email format"))
	ErrInvalidRecipientType = apierr.BadRequest("invalid_recipient_type", errors.New("recipient_type must be guider or doctor"))
)

// Mailer delivers email.
type Mailer interface {
	Send(ctx context.Context, req sendgrid.SendEmailRequest) (*sendgrid.SendEmailResult, error)
}

// ReportStore records sent reports.
type ReportStore interface {
	Create(ctx context.Context, rep models.Report) error
	ListByUser(ctx context.Context, userID string, limit int) ([]models.Report, error)
}

// ReportRequest describes a report to send.
type ReportRequest struct {
	ToEmail            string   `json:"to_email"`
	RecipientName      string   `json:"recipient_name"`
	RecipientType      string   `json:"recipient_type"`
	UserName           string   `json:"user_name"`
	Summary            string   `json:"summary"`
	QuestionsForDoctor []string `json:"questions_for_doctor"`
}

// ReportService emails progress reports to a guider or doctor.
type ReportService struct {
	progress *ProgressService
	chats    ChatStore
	reports  ReportStore
	mailer   Mailer
	log      *logger.Logger
	now      func() time.Time
}

// NewReportService creates a report service. A nil mailer makes Send return
// ErrEmailUnavailable.
func NewReportService(progress *ProgressService, chats ChatStore, reports ReportStore, mailer Mailer, log *logger.Logger) *ReportService {
	if log == nil {
		log = logger.Nop()
	}
	return &ReportService{
		progress: progress,
		chats:    chats,
		reports:  reports,
		mailer:   mailer,
		log:      log.With("service", "ReportService"),
		now:      time.Now,
	}
}

// validEmail accepts a bare address with a dotted domain.
func validEmail(s string) bool {
	if s == "" || strings.ContainsAny(s, " \t\r\n<>") {
		return false
	}
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	at := strings.LastIndexByte(s, '@')
	domain := s[at+1:]
	dot := strings.LastIndexByte(domain, '.')
	return dot > 0 && dot < len(domain)-1
}

func (r *ReportRequest) normalize() error {
	r.ToEmail = strings.TrimSpace(r.ToEmail)
	if !validEmail(r.ToEmail) {
		return ErrInvalidEmail
	}
	r.RecipientType = strings.ToLower(strings.TrimSpace(r.RecipientType))
	if r.RecipientType == "" {
		r.RecipientType = models.RecipientGuider
	}
	if r.RecipientType != models.RecipientGuider && r.RecipientType != models.RecipientDoctor {
		return ErrInvalidRecipientType
	}
	if strings.TrimSpace(r.UserName) == "" {
		r.UserName = "Your patient"
		if r.RecipientType == models.RecipientGuider {
			r.UserName = "Your friend"
		}
	}
	return nil
}

// Send builds and delivers a report, then records it.
func (s *ReportService) Send(ctx context.Context, userID string, req ReportRequest) (*models.Report, error) {
	if err := req.normalize(); err != nil {
		return nil, err
	}
	if s.mailer == nil {
		return nil, ErrEmailUnavailable
	}

	st, err := s.progress.State(ctx, userID)
	if err != nil {
		return nil, err
	}
	chat, err := s.chats.Recent(ctx, userID, reportChatMessages)
	if err != nil {
		return nil, fmt.Errorf("failed to load chat history: %w", err)
	}

	now := s.now().UTC()
	subject := reportSubject(req)
	html, err := renderReport(buildReportView(req, st, chat, now))
	if err != nil {
		return nil, fmt.Errorf("failed to render report: %w", err)
	}

	res, err := s.mailer.Send(ctx, sendgrid.SendEmailRequest{
		To:         []sendgrid.EmailAddress{{Email: req.ToEmail, Name: req.RecipientName}},
		Subject:    subject,
		HTML:       html,
		Categories: []string{"report", req.RecipientType},
		CustomArgs: map[string]string{"recipient_type": req.RecipientType},
	})
	if err != nil {
		s.log.Error("Failed to send report", "user_id", userID, "email", req.ToEmail, "error", err)
		return nil, apierr.New(http.StatusBadGateway, "email_send_failed", err)
	}

	rep := models.Report{
		ID:            uuid.NewString(),
		UserID:        userID,
		RecipientType: req.RecipientType,
		ToEmail:       req.ToEmail,
		Subject:       subject,
		MessageID:     res.MessageID,
		CreatedAt:     now,
	}
	if err := s.reports.Create(ctx, rep); err != nil {
		// the email is already out; keep the result
		s.log.Warn("Failed to record report", "user_id", userID, "error", err)
	}
	s.log.Info("Report sent", "user_id", userID, "recipient_type", req.RecipientType, "message_id", res.MessageID)
	return &rep, nil
}

// List returns the user's sent reports, newest first.
func (s *ReportService) List(ctx context.Context, userID string, limit int) ([]models.Report, error) {
	reps, err := s.reports.ListByUser(ctx, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list reports: %w", err)
	}
	return reps, nil
}

func reportSubject(req ReportRequest) string {
	if req.RecipientType == models.RecipientDoctor {
		return fmt.Sprintf("Health Summary for %s - Healthcare Twin Report", req.UserName)
	}
	return fmt.Sprintf("%s's Health Progress Update", req.UserName)
}

type reportMessage struct {
	FromUser bool
	Speaker  string
	Content  string
}

type reportView struct {
	Date           string
	Year           int
	Greeting       string
	Intro          string
	Goal           string
	Plan           string
	CurrentDay     int
	TotalDays      int
	CompletionRate string
	Streak         int
	HealthScore    string
	Summary        string
	Questions      []string
	Messages       []reportMessage
}

func buildReportView(req ReportRequest, st *engine.State, chat []models.ChatMessage, now time.Time) reportView {
	v := reportView{
		Date:           now.Format("Monday, January 2, 2006"),
		Year:           now.Year(),
		Goal:           st.Profile.Goal.DisplayName(),
		Plan:           st.Profile.Plan.DisplayName(),
		CurrentDay:     st.CurrentDay,
		TotalDays:      st.Profile.Plan.Days(),
		CompletionRate: fmt.Sprintf("%.0f", st.CompletionRate()),
		Streak:         st.Streak,
		HealthScore:    fmt.Sprintf("%.0f", st.HealthScore),
		Summary:        strings.TrimSpace(req.Summary),
	}

	name := strings.TrimSpace(req.RecipientName)
	if req.RecipientType == models.RecipientDoctor {
		if name == "" {
			name = "Doctor"
		}
		v.Greeting = fmt.Sprintf("Dear Dr. %s,", name)
		v.Intro = fmt.Sprintf("This is an automated health summary for your patient, %s, generated from the Healthcare Twin health tracking application.", req.UserName)
		for _, q := range req.QuestionsForDoctor {
			if q = strings.TrimSpace(q); q != "" {
				v.Questions = append(v.Questions, q)
			}
		}
	} else {
		if name == "" {
			name = "Friend"
		}
		v.Greeting = fmt.Sprintf("Dear %s,", name)
		v.Intro = fmt.Sprintf("Here's an update on %s's health journey! They wanted to share their progress with you.", req.UserName)
	}

	if v.Summary == "" {
		v.Summary = fmt.Sprintf("Day %d of the %s for %s. %d tasks completed and %d missed so far, with a %d day streak and a health score of %s/100.",
			st.CurrentDay, v.Plan, v.Goal, len(st.CompletedTasks), len(st.MissedTasks), st.Streak, v.HealthScore)
	}

	if len(chat) > reportChatMessages {
		chat = chat[len(chat)-reportChatMessages:]
	}
	for _, m := range chat {
		msg := reportMessage{FromUser: m.Role == models.ChatRoleUser, Content: m.Content, Speaker: "Healthcare Twin"}
		if msg.FromUser {
			msg.Speaker = req.UserName
		}
		v.Messages = append(v.Messages, msg)
	}
	return v
}

func renderReport(v reportView) (string, error) {
	var buf bytes.Buffer
	if err := reportTemplate.Execute(&buf, v); err != nil {
		return "", err
	}
	return buf.String(), nil
}

var reportTemplate = template.Must(template.New("report").Parse(`<!DOCTYPE html>
<html>
<head>
  <meta charset="utf-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
</head>
<body style="font-family: -apple-system, BlinkMacSystemFont, 'Segoe UI', Roboto, sans-serif; line-height: 1.6; color: #1F2937; max-width: 600px; margin: 0 auto; padding: 20px;">
  <div style="text-align: center; padding: 30px 0; border-bottom: 1px solid #E5E7EB;">
    <h1 style="color: #1F2937; margin: 10px 0; font-weight: 500;">Healthcare Twin</h1>
    <p style="color: #6B7280; margin: 0;">{{.Date}}</p>
  </div>

  <div style="padding: 30px 0;">
    <p style="font-size: 16px;">{{.Greeting}}</p>
    <p style="color: #4B5563;">{{.Intro}}</p>
  </div>

  <div style="background-color: #EFF6FF; padding: 20px; border-radius: 12px; margin: 20px 0;">
    <h3 style="color: #1E40AF; margin-top: 0;">Health Overview</h3>
    <table style="width: 100%; border-collapse: collapse;">
      <tr><td style="padding: 8px 0; color: #6B7280;">Health Goal:</td><td style="padding: 8px 0; font-weight: 500;">{{.Goal}}</td></tr>
      <tr><td style="padding: 8px 0; color: #6B7280;">Current Plan:</td><td style="padding: 8px 0; font-weight: 500;">{{.Plan}}</td></tr>
      <tr><td style="padding: 8px 0; color: #6B7280;">Progress:</td><td style="padding: 8px 0; font-weight: 500;">Day {{.CurrentDay}}{{if .TotalDays}} of {{.TotalDays}}{{end}}</td></tr>
      <tr><td style="padding: 8px 0; color: #6B7280;">Completion Rate:</td><td style="padding: 8px 0; font-weight: 500; color: #059669;">{{.CompletionRate}}%</td></tr>
      <tr><td style="padding: 8px 0; color: #6B7280;">Current Streak:</td><td style="padding: 8px 0; font-weight: 500;">{{.Streak}} days</td></tr>
      <tr><td style="padding: 8px 0; color: #6B7280;">Health Score:</td><td style="padding: 8px 0; font-weight: 500;">{{.HealthScore}}/100</td></tr>
    </table>
  </div>

  <div style="background-color: #F0FDF4; padding: 20px; border-radius: 12px; margin: 20px 0;">
    <h3 style="color: #166534; margin-top: 0;">Summary</h3>
    <div style="color: #166534; white-space: pre-wrap;">{{.Summary}}</div>
  </div>
{{if .Questions}}
  <div style="background-color: #FEF3C7; padding: 20px; border-radius: 12px; margin: 20px 0;">
    <h3 style="color: #92400E; margin-top: 0;">Questions to Discuss</h3>
    <ul style="color: #78350F; margin: 0; padding-left: 20px;">
    {{- range .Questions}}
      <li style="margin: 8px 0;">{{.}}</li>
    {{- end}}
    </ul>
  </div>
{{end}}
{{- if .Messages}}
  <div style="background-color: #F3F4F6; padding: 20px; border-radius: 12px; margin: 20px 0;">
    <h3 style="color: #374151; margin-top: 0;">Recent Conversation Summary</h3>
    <div style="font-size: 14px; color: #4B5563;">
    {{- range .Messages}}
      <div style="margin: 12px 0; padding: 10px; background: {{if .FromUser}}#DBEAFE{{else}}#ffffff{{end}}; border-radius: 8px;">
        <strong style="color: {{if .FromUser}}#1D4ED8{{else}}#059669{{end}};">{{.Speaker}}:</strong>
        <p style="margin: 5px 0 0 0;">{{.Content}}</p>
      </div>
    {{- end}}
    </div>
  </div>
{{end}}
  <div style="background-color: #FEF2F2; padding: 15px; border-radius: 8px; margin: 30px 0;">
    <p style="color: #991B1B; font-size: 12px; margin: 0;">
      <strong>Disclaimer:</strong> This report was generated by Healthcare Twin, an AI-assisted health tracking application.
      The information provided is for informational purposes only and should not be considered medical advice.
      Please consult with a qualified healthcare professional for medical decisions.
    </p>
  </div>

  <div style="text-align: center; padding: 30px 0; border-top: 1px solid #E5E7EB; color: #9CA3AF; font-size: 12px;">
    <p>This email was sent from Healthcare Twin</p>
    <p>&copy; {{.Year}} Healthcare Twin. All rights reserved.</p>
  </div>
</body>
</html>
`))
