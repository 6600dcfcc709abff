// internal/testutil/fixtures.go
package testutil

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/dalemusser/applyhub/internal/domain/models"
)

// NewSubmission returns a pending submission with sensible defaults. Pass a
// mutate func to adjust fields for the test at hand.
func NewSubmission(mutate func(*models.Submission)) *models.Submission {
	sub := &models.Submission{
		ID:          primitive.NewObjectID(),
		FullName:    "Test Applicant",
		Email:       "applicant@example.com",
		CountryCode: "+92",
		Phone:       "3001234567",
		DOB:         "2008-04-15",
		Grade:       "10",
		IsBhStudent: true,
		BhBranch:    "Lahore",
		Section:     "O-Level",
		Subjects:    []string{"Physics", "Chemistry"},
		Motivation:  "I want to join because I have always been fascinated by science and discovery.",
		Status:      models.StatusPending,
		Timestamp:   time.Now().UTC(),
	}
	if mutate != nil {
		mutate(sub)
	}
	return sub
}

// NewAccount returns a member account with sensible defaults.
func NewAccount(mutate func(*models.Account)) *models.Account {
	acct := &models.Account{
		ID:           primitive.NewObjectID(),
		Email:        "member@example.com",
		PasswordHash: "$2a$10$0000000000000000000000uVxxxxxxxxxxxxxxxxxxxxxxxxxxxxx",
		FullName:     "Test Member",
		Role:         models.RoleMember,
		CreatedAt:    time.Now().UTC(),
		Verified:     false,
	}
	if mutate != nil {
		mutate(acct)
	}
	return acct
}
