// internal/domain/models/submission.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Submission statuses.
const (
	StatusPending  = "pending"
	StatusApproved = "approved"
	StatusRejected = "rejected"
)

// ValidStatus reports whether s is one of the three submission statuses.
func ValidStatus(s string) bool {
	switch s {
	case StatusPending, StatusApproved, StatusRejected:
		return true
	}
	return false
}

// Submission is an applicant's intake record awaiting an admin decision.
//
// Exactly one of Section or (Country and School) is populated, depending on
// IsBhStudent. Email is stored normalized (lower-cased, trimmed) so lookups
// against the accounts collection use the same key form.
type Submission struct {
	ID          primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	FullName    string             `bson:"full_name" json:"fullName"`
	Email       string             `bson:"email" json:"email"`
	CountryCode string             `bson:"country_code,omitempty" json:"countryCode,omitempty"`
	Phone       string             `bson:"phone" json:"phone"`
	DOB         string             `bson:"dob" json:"dob"`
	Grade       string             `bson:"grade" json:"grade"`
	IsBhStudent bool               `bson:"is_bh_student" json:"isBhStudent"`
	BhBranch    string             `bson:"bh_branch,omitempty" json:"bhBranch,omitempty"`
	Section     string             `bson:"section,omitempty" json:"section,omitempty"`
	City        string             `bson:"city,omitempty" json:"city,omitempty"`
	School      string             `bson:"school,omitempty" json:"school,omitempty"`
	Country     string             `bson:"country,omitempty" json:"country,omitempty"`
	Subjects    []string           `bson:"subjects" json:"subjects"`
	Category    string             `bson:"category,omitempty" json:"category,omitempty"`
	Motivation  string             `bson:"motivation" json:"motivation"`

	// Optional free-text metadata from the application form.
	WhyChosenSubjects string `bson:"why_chosen_subjects,omitempty" json:"whyChosenSubjects,omitempty"`
	HeardAbout        string `bson:"heard_about,omitempty" json:"heardAbout,omitempty"`
	Social            string `bson:"social,omitempty" json:"social,omitempty"`
	PrevCompetitions  string `bson:"prev_competitions,omitempty" json:"prevCompetitions,omitempty"`
	Skills            string `bson:"skills,omitempty" json:"skills,omitempty"`
	Ideas             string `bson:"ideas,omitempty" json:"ideas,omitempty"`

	Status    string    `bson:"status" json:"status"`
	Notes     string    `bson:"notes" json:"notes"`
	Timestamp time.Time `bson:"timestamp" json:"timestamp"`
}
