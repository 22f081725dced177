package healing

import (
	"time"

	"github.com/google/uuid"

	"github.com/afterus/afterus-backend/internal/models"
)

type activityTemplate struct {
	title       string
	description string
	category    models.ActivityCategory
}

var defaultActivities = []activityTemplate{
	{
		title:       "Write a letter to yourself",
		description: "Write a compassionate letter to yourself about your healing journey. Acknowledge your progress and be kind to yourself.",
		category:    models.CategoryEmotional,
	},
	{
		title:       "Create a self-care routine",
		description: "Establish a daily routine that includes activities that make you feel good about yourself and your life.",
		category:    models.CategorySelfCare,
	},
	{
		title:       "Start a new hobby",
		description: "Pick up a new hobby or return to an old one that brings you joy and helps you meet new people.",
		category:    models.CategoryCreative,
	},
	{
		title:       "Exercise regularly",
		description: "Commit to regular physical activity to improve your mood and overall health. Even a daily walk counts!",
		category:    models.CategoryPhysical,
	},
	{
		title:       "Connect with friends",
		description: "Reach out to friends and family members. Plan social activities and strengthen your support network.",
		category:    models.CategorySocial,
	},
	{
		title:       "Practice mindfulness",
		description: "Incorporate mindfulness practices like meditation, deep breathing, or yoga into your daily routine.",
		category:    models.CategoryEmotional,
	},
	{
		title:       "Set new goals",
		description: "Identify new personal or professional goals to work towards. Having something to look forward to helps with healing.",
		category:    models.CategoryProfessional,
	},
	{
		title:       "Declutter your space",
		description: "Organize and declutter your living space. A clean environment can help clear your mind and represent a fresh start.",
		category:    models.CategorySelfCare,
	},
	{
		title:       "Learn something new",
		description: "Take a class, read books, or learn a new skill. Personal growth helps build confidence and creates new opportunities.",
		category:    models.CategoryCreative,
	},
	{
		title:       "Volunteer for a cause",
		description: "Find a cause you care about and volunteer your time. Helping others can provide perspective and purpose.",
		category:    models.CategorySocial,
	},
}

// DefaultActivities builds the starter activity set for a new user. Creation
// times step by a microsecond so ordering by created_at is stable.
func DefaultActivities(userID uuid.UUID, now time.Time) []*models.ClosureActivity {
	out := make([]*models.ClosureActivity, len(defaultActivities))
	for i, tpl := range defaultActivities {
		out[i] = &models.ClosureActivity{
			ID:          uuid.New(),
			UserID:      userID,
			Title:       tpl.title,
			Description: tpl.description,
			Category:    tpl.category,
			CreatedAt:   now.Add(time.Duration(i) * time.Microsecond),
		}
	}
	return out
}
