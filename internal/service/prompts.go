package service

import (
	"fmt"
	"strings"

	"github.com/jengzang/healthtwin-backend/internal/engine"
	"github.com/jengzang/healthtwin-backend/internal/models"
	"github.com/jengzang/healthtwin-backend/internal/projection"
)

// advisorName is how the chat advisor introduces itself.
const advisorName = "TwinX"

func ageText(age int) string {
	if age <= 0 {
		return "adult"
	}
	return fmt.Sprintf("%d-year-old", age)
}

func companionText(p models.Profile) string {
	if p.CompanionName == "" {
		return "your Guider"
	}
	return p.CompanionName
}

func totalDaysText(p models.Plan) string {
	if d := p.Days(); d > 0 {
		return fmt.Sprint(d)
	}
	return "?"
}

func vitalsLine(v models.VitalSigns) string {
	return fmt.Sprintf("Heart Health %.0f/100, Muscle Strength %.0f/100, Flexibility %.0f/100, Mental Wellness %.0f/100, Energy Level %.0f/100",
		v.HeartHealth, v.MuscleStrength, v.Flexibility, v.MentalWellness, v.EnergyLevel)
}

// chatPrompt builds the advisor prompt for one user message.
func chatPrompt(st *engine.State, history []models.ChatMessage, message string) string {
	p := st.Profile
	var b strings.Builder

	fmt.Fprintf(&b, "You are %q, a friendly and knowledgeable AI health advisor. You are helping a %s user who is working on %q with the %q.\n\n",
		advisorName, ageText(p.Age), p.Goal.DisplayName(), p.Plan.DisplayName())

	b.WriteString("ABOUT THE USER:\n")
	fmt.Fprintf(&b, "- Health Goal: %s\n", p.Goal.DisplayName())
	fmt.Fprintf(&b, "- Current Plan: %s\n", p.Plan.DisplayName())
	fmt.Fprintf(&b, "- Day %d of %s\n", st.CurrentDay, totalDaysText(p.Plan))
	fmt.Fprintf(&b, "- Completed %d/%d tasks today\n", st.CompletedToday(), len(st.DailyTasks))
	fmt.Fprintf(&b, "- Current streak: %d days\n", st.Streak)
	fmt.Fprintf(&b, "- Level: %d\n", st.Level)
	fmt.Fprintf(&b, "- Health score: %.0f/100, vitals: %s\n", st.HealthScore, vitalsLine(st.Vitals))
	fmt.Fprintf(&b, "- Their motivational companion is named: %s\n\n", companionText(p))

	b.WriteString("RECENT TASKS:\n")
	if len(st.DailyTasks) == 0 {
		b.WriteString("No tasks yet today\n")
	}
	for _, t := range st.DailyTasks {
		status := "Pending"
		if t.Completed {
			status = "Completed"
		}
		fmt.Fprintf(&b, "- %s: %s\n", t.Name, status)
	}

	b.WriteString(`
GUIDELINES:
1. Be warm, encouraging and concise (2-3 paragraphs max)
2. Reference their specific health goal when relevant and celebrate their streak
3. If they mention pain, discomfort or symptoms, advise consulting a doctor
4. If asked about medications or diagnoses, always recommend consulting their doctor
5. Remind them you are an AI advisor and not a doctor when relevant
6. End with an encouraging note or a helpful follow-up question
`)

	if len(history) > 0 {
		b.WriteString("\nCONVERSATION SO FAR:\n")
		for _, m := range history {
			speaker := "User"
			if m.Role == models.ChatRoleAssistant {
				speaker = advisorName
			}
			fmt.Fprintf(&b, "%s: %s\n", speaker, m.Content)
		}
	}

	fmt.Fprintf(&b, "\nUser: %s\n\n%s:", message, advisorName)
	return b.String()
}

// predictionPrompt asks for a narrative around an already computed projection.
func predictionPrompt(st *engine.State, p projection.Projection) string {
	return fmt.Sprintf(`You are a health prediction AI. A deterministic model has projected this user's health %d years ahead. Explain the projection; do not change its numbers.

PATIENT DATA:
- Age: %d years old
- Health Goal: %s
- Current Health Score: %.0f/100
- Task Completion Rate: %.0f%%
- Current Streak: %d days
- Days on Plan: %d
- Vital Signs: %s

PROJECTION:
- Projected score: %.1f/100 (%s trend, %s risk)
- Projected body state: %s
- %s

Respond in this EXACT JSON format (no markdown, no code blocks, just pure JSON):
{
  "description": "<2-3 sentence prediction description>",
  "recommendations": ["<recommendation 1>", "<recommendation 2>", "<recommendation 3>", "<recommendation 4>"]
}`,
		p.Years, p.CurrentAge, st.Profile.Goal.DisplayName(), st.HealthScore, p.CompletionRate,
		st.Streak, st.CurrentDay, vitalsLine(st.Vitals),
		p.ProjectedScore, p.Trend, p.RiskLevel, p.BodyState, riskLine(p.RiskFactors))
}

func riskLine(risks []projection.RiskFactor) string {
	if len(risks) == 0 {
		return "No risk factors"
	}
	labels := make([]string, len(risks))
	for i, r := range risks {
		labels[i] = fmt.Sprintf("%s (%s)", r.Label, r.Impact)
	}
	return "Risk factors: " + strings.Join(labels, ", ")
}

// timelinePrompt asks for a year-by-year five year story.
func timelinePrompt(st *engine.State) string {
	recent := make([]string, 0, 5)
	for i := len(st.CompletedTasks) - 1; i >= 0 && len(recent) < 5; i-- {
		recent = append(recent, st.CompletedTasks[i].Name)
	}
	recentText := "None yet"
	if len(recent) > 0 {
		recentText = strings.Join(recent, ", ")
	}

	return fmt.Sprintf(`You are a health and wellness AI assistant. Based on the following user data, generate a detailed 5-year health prediction showing their potential transformation if they continue their current health journey.

User Data:
- Health Goal: %s
- Current Plan: %s (%s days)
- Current Day in Plan: %d
- Completed Tasks: %d
- Current Streak: %d days
- User Age: %d
- Current Vital Signs: %s
- Recent Tasks Completed: %s

Generate a JSON response with the following structure:
{
  "years": [
    {
      "description": "Detailed description of health status and achievements in Year 1 (3-4 sentences)",
      "achievements": ["achievement1", "achievement2", "achievement3"],
      "health_metrics": {"energy": "value%%", "strength": "value%%", "overall": "value%%"}
    }
  ],
  "summary": "A compelling summary of the 5-year transformation (2-3 sentences)",
  "motivational_message": "An inspiring quote or message for the user"
}

The "years" array must contain exactly 5 entries. Make the predictions realistic and encouraging.
IMPORTANT: Return ONLY valid JSON, no markdown formatting, no code blocks, just the raw JSON object.`,
		st.Profile.Goal.DisplayName(), st.Profile.Plan.DisplayName(), totalDaysText(st.Profile.Plan),
		st.CurrentDay, len(st.CompletedTasks), st.Streak, st.Profile.Age, vitalsLine(st.Vitals), recentText)
}

func futureLookPrompt(st *engine.State) string {
	return fmt.Sprintf(`Generate a short, encouraging 2-3 sentence prediction about how someone will look and feel in 5 years if they continue their health journey.

Details:
- Health Goal: %s
- Tasks Completed: %d
- Current Streak: %d days
- Age: %d

Make it personal, motivating, and specific to their goal. Focus on physical appearance, energy levels, and confidence. Return ONLY a JSON object like: {"message": "your prediction here"}`,
		st.Profile.Goal.DisplayName(), len(st.CompletedTasks), st.Streak, st.Profile.Age)
}
