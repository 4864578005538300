package store

import (
	"time"

	"github.com/volatiletech/null/v8"

	"github.com/nexuslms/nexus/core/assignment"
	"github.com/nexuslms/nexus/core/batch"
	"github.com/nexuslms/nexus/core/submission"
	"github.com/nexuslms/nexus/core/user"
)

// Fixed timestamps keep the seed reproducible across resets.
var (
	seedCreatedAt   = time.Date(2024, time.January, 10, 9, 0, 0, 0, time.UTC)
	seedSubmittedAt = time.Date(2024, time.January, 20, 14, 30, 0, 0, time.UTC)

	seedStartDate = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	seedEndDate   = time.Date(2024, time.March, 30, 0, 0, 0, 0, time.UTC)
	seedDueDate   = time.Date(2024, time.February, 1, 0, 0, 0, 0, time.UTC)
)

// SeedUsers returns the fixed initial User dataset: one admin, one
// instructor and three students.
func SeedUsers() []user.User {
	return []user.User{
		{ID: "u1", Name: "Admin User", Email: "admin@nexus.com", Role: user.RoleAdmin,
			AvatarURL: "https://ui-avatars.com/api/?name=Admin+User&background=0D8ABC&color=fff"},
		{ID: "u2", Name: "John Instructor", Email: "instructor@nexus.com", Role: user.RoleInstructor,
			AvatarURL: "https://ui-avatars.com/api/?name=John+Instructor&background=random"},
		{ID: "u3", Name: "Alice Student", Email: "alice@nexus.com", Role: user.RoleStudent,
			AvatarURL: "https://ui-avatars.com/api/?name=Alice+Student&background=random"},
		{ID: "u4", Name: "Bob Student", Email: "bob@nexus.com", Role: user.RoleStudent,
			AvatarURL: "https://ui-avatars.com/api/?name=Bob+Student&background=random"},
		{ID: "u5", Name: "Charlie Student", Email: "charlie@nexus.com", Role: user.RoleStudent,
			AvatarURL: "https://ui-avatars.com/api/?name=Charlie+Student&background=random"},
	}
}

func SeedBatches() []batch.Batch {
	return []batch.Batch{
		{
			ID:           "b1",
			Name:         "React Fundamentals 2024",
			InstructorID: null.StringFrom("u2"),
			StudentIDs:   []string{"u3", "u4"},
			StartDate:    seedStartDate,
			EndDate:      null.TimeFrom(seedEndDate),
		},
	}
}

func SeedAssignments() []assignment.Assignment {
	return []assignment.Assignment{
		{
			ID:          "a1",
			BatchID:     "b1",
			Title:       "Component Basics",
			Description: "Create a reusable Button component.",
			DueDate:     null.TimeFrom(seedDueDate),
			MaxScore:    100,
			Status:      assignment.StatusPublished,
			CreatedAt:   seedCreatedAt,
		},
	}
}

func SeedSubmissions() []submission.Submission {
	return []submission.Submission{
		{
			ID:           "s1",
			AssignmentID: "a1",
			StudentID:    "u3",
			Content:      "Here is my submission: github.com/alice/button",
			SubmittedAt:  seedSubmittedAt,
			Status:       submission.StatusPending,
		},
	}
}
