package catalog

import "time"

// Seed returns the starter catalog loaded into an empty store.
func Seed() Listing {
	return SeedAt(time.Now())
}

// SeedAt returns the starter catalog with course and event dates placed
// around the day of now, so a fresh install always has upcoming events.
func SeedAt(now time.Time) Listing {
	now = now.UTC().Truncate(time.Second)
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	at := func(days, hour int) time.Time {
		return today.AddDate(0, 0, days).Add(time.Duration(hour) * time.Hour)
	}
	return Listing{
		Courses: []Course{
			{
				ID:          "course_1",
				Title:       "Understanding ADHD: The Basics",
				Description: "An introductory course covering ADHD fundamentals, symptoms, and management strategies.",
				Instructor:  "Dr. Sarah Williams",
				StartDate:   at(-9, 0),
				EndDate:     at(36, 0),
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				ID:          "course_2",
				Title:       "Time Management for ADHD",
				Description: "Learn practical time management techniques specifically designed for ADHD minds.",
				Instructor:  "James Thompson",
				StartDate:   at(0, 0),
				EndDate:     at(41, 0),
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				ID:          "course_3",
				Title:       "Building Productive Routines",
				Description: "Develop sustainable routines that work with, not against, your ADHD brain.",
				Instructor:  "Emma Rodriguez",
				StartDate:   at(5, 0),
				EndDate:     at(53, 0),
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		},
		Events: []Event{
			{
				ID:          "event_1",
				Name:        "ADHD Support Group Monthly Meetup",
				Date:        at(5, 18),
				Location:    "Virtual - Zoom",
				Description: "Monthly support group meeting for individuals with ADHD. Share experiences and strategies.",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				ID:          "event_2",
				Name:        "Expert Q&A: ADHD and Relationships",
				Date:        at(10, 19),
				Location:    "London Community Center",
				Description: "Live Q&A session with Dr. Emily Chen discussing ADHD and relationship management.",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				ID:          "event_3",
				Name:        "Productivity Workshop",
				Date:        at(31, 14),
				Location:    "Virtual - Microsoft Teams",
				Description: "Interactive workshop on building sustainable productivity systems for ADHD brains.",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		},
		Resources: []Resource{
			{
				ID:          "resource_1",
				Title:       "ADHD Medication Guide",
				Category:    CategoryGuide,
				Link:        "https://example.com/adhd-medication-guide",
				Description: "Comprehensive guide on ADHD medications, side effects, and management.",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				ID:          "resource_2",
				Title:       "Productivity Hacks for ADHD",
				Category:    CategoryArticle,
				Link:        "https://example.com/productivity-hacks",
				Description: "Evidence-based productivity techniques tailored for ADHD.",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				ID:          "resource_5",
				Title:       "Driven to Distraction",
				Category:    CategoryGuide,
				Link:        "https://example.com/driven-to-distraction",
				Description: "A groundbreaking book identifying ADHD symptoms and treatment strategies.",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
			{
				ID:          "resource_6",
				Title:       "The Science of Dopamine",
				Category:    CategoryArticle,
				Link:        "https://example.com/dopamine-science",
				Description: "An in-depth article explaining the role of dopamine in the ADHD brain.",
				CreatedAt:   now,
				UpdatedAt:   now,
			},
		},
	}
}
