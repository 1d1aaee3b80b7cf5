package service

import (
	"fmt"

	"github.com/jengzang/healthtwin-backend/internal/models"
)

// goodAdherence is the completion rate above which the local narrative is optimistic.
const goodAdherence = 70.0

type narrative struct {
	good, poor         string
	goodRecs, poorRecs []string
}

// Descriptions take the completion rate and the horizon in years.
var narratives = map[models.Goal]narrative{
	models.GoalMuscleGain: {
		good:     "With your consistent strength training (%.0f%% completion rate), you're on track to build significant muscle mass. In %d years, expect visible muscle definition, increased strength and improved metabolism.",
		poor:     "Your current completion rate of %.0f%% is insufficient for muscle growth. Without improvement, you may experience muscle loss and decreased strength over the next %d years.",
		goodRecs: []string{"Continue progressive overload training", "Maintain high protein intake (1.6-2g per kg body weight)", "Ensure adequate rest between workouts", "Consider periodization in your training"},
		poorRecs: []string{"Increase workout frequency to at least 3x per week", "Focus on compound exercises like squats and deadlifts", "Track your protein intake", "Get 7-9 hours of sleep for recovery"},
	},
	models.GoalWeightLoss: {
		good:     "Great progress! With %.0f%% adherence to your plan, you're successfully losing weight. In %d years, expect a leaner physique, improved energy and better overall health markers.",
		poor:     "With only %.0f%% completion, weight loss goals are at risk. Without changes, you may gain additional weight and face related health complications over the next %d years.",
		goodRecs: []string{"Maintain caloric deficit with nutrient-dense foods", "Continue regular cardio and strength training", "Stay consistent with meal planning", "Monitor progress with weekly weigh-ins"},
		poorRecs: []string{"Start with smaller, achievable daily goals", "Track everything you eat for awareness", "Add 30 minutes of walking daily", "Find an accountability partner"},
	},
	models.GoalCardioHealth: {
		good:     "Excellent cardiovascular commitment! Your %.0f%% completion rate suggests strong heart health improvement. In %d years, expect lower resting heart rate, improved endurance and reduced cardiovascular disease risk.",
		poor:     "Your %.0f%% completion rate puts your heart health at risk. Without improvement, you may face increased risk of heart disease, high blood pressure and reduced stamina in %d years.",
		goodRecs: []string{"Continue aerobic exercises 4-5x per week", "Include interval training for maximum benefit", "Monitor blood pressure regularly", "Maintain heart-healthy diet low in saturated fats"},
		poorRecs: []string{"Consult with a cardiologist", "Start with gentle walking and gradually increase", "Reduce sodium and processed food intake", "Monitor stress levels and practice relaxation"},
	},
	models.GoalDiabetesManagement: {
		good:     "Your %.0f%% adherence to diabetes management is excellent. In %d years, expect better blood sugar control, reduced medication dependency and fewer complications.",
		poor:     "With %.0f%% completion, blood sugar management is at risk. In %d years, this could lead to complications including nerve damage, vision problems or cardiovascular issues.",
		goodRecs: []string{"Continue monitoring blood glucose regularly", "Maintain consistent meal timing", "Keep up with prescribed exercise routine", "Regular check-ups with your endocrinologist"},
		poorRecs: []string{"Strictly follow medication schedule", "Monitor blood sugar more frequently", "Consult with diabetes educator", "Focus on low glycemic index foods"},
	},
	models.GoalStressAnxiety: {
		good:     "Your mental wellness commitment (%.0f%% completion) is showing results. In %d years, expect improved emotional regulation, better sleep and enhanced overall quality of life.",
		poor:     "Your %.0f%% completion rate indicates ongoing stress. Without intervention, this could lead to chronic anxiety, sleep disorders and physical health issues over %d years.",
		goodRecs: []string{"Continue daily meditation practice", "Maintain regular exercise routine", "Prioritize sleep hygiene", "Consider journaling for emotional processing"},
		poorRecs: []string{"Start with just 5 minutes of daily meditation", "Reduce caffeine and alcohol intake", "Consider professional counseling", "Establish boundaries for work-life balance"},
	},
	models.GoalBackPain: {
		good:     "Great progress on back pain management! Your %.0f%% completion suggests improved core strength and flexibility. In %d years, expect significantly reduced pain and better mobility.",
		poor:     "With %.0f%% completion, your back pain may worsen. In %d years, this could lead to chronic pain, reduced mobility and potential need for medical intervention.",
		goodRecs: []string{"Continue core strengthening exercises", "Maintain proper posture throughout the day", "Use ergonomic furniture", "Regular stretching breaks during work"},
		poorRecs: []string{"Prioritize daily stretching routine", "Improve workstation ergonomics immediately", "Consult with a physical therapist", "Consider swimming or water therapy"},
	},
	models.GoalGeneralFitness: {
		good:     "Your %.0f%% completion rate shows strong commitment to fitness. In %d years, expect improved overall health, better energy levels and reduced risk of chronic diseases.",
		poor:     "Your %.0f%% completion rate is below optimal. Without improvement, general health may decline over the next %d years, increasing risk of various health issues.",
		goodRecs: []string{"Maintain balanced approach to exercise", "Include variety in workouts", "Regular health check-ups", "Focus on sustainable habits"},
		poorRecs: []string{"Set smaller, achievable daily goals", "Find activities you enjoy", "Build exercise into daily routine", "Consider working with a fitness coach"},
	},
}

// localNarrative returns the offline description and recommendations for a goal.
func localNarrative(goal models.Goal, rate float64, years int) (string, []string) {
	n, ok := narratives[goal]
	if !ok {
		n = narratives[models.GoalGeneralFitness]
	}
	if rate > goodAdherence {
		return fmt.Sprintf(n.good, rate, years), append([]string{}, n.goodRecs...)
	}
	return fmt.Sprintf(n.poor, rate, years), append([]string{}, n.poorRecs...)
}
