package api

import (
	"attendance-service/internal/analysis"
	"attendance-service/internal/models"
	"time"
)

type LoginRequest struct {
	Login  string `json:"login" validate:"required"`
	Secret string `json:"secret" validate:"required"`
}

type LoginResponse struct {
	Token     string    `json:"token"`
	ExpiresAt time.Time `json:"expires_at"`
	Account   Account   `json:"account"`
}

// Account is a staff account without its secret.
type Account struct {
	ID        string      `json:"id"`
	FirstName string      `json:"first_name"`
	LastName  string      `json:"last_name"`
	Login     string      `json:"login"`
	Role      models.Role `json:"role"`
	Grade     string      `json:"grade,omitempty"`
	Section   string      `json:"section,omitempty"`
	Active    bool        `json:"active"`
	Protected bool        `json:"protected"`
}

type AccountRequest struct {
	ID        string      `json:"id"`
	FirstName string      `json:"first_name" validate:"required,max=80"`
	LastName  string      `json:"last_name" validate:"required,max=80"`
	Login     string      `json:"login" validate:"required,min=3,max=40"`
	Secret    string      `json:"secret" validate:"omitempty,min=4"`
	Role      models.Role `json:"role"`
	Grade     string      `json:"grade"`
	Section   string      `json:"section"`
	Active    *bool       `json:"active"`
}

type StudentRequest struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name" validate:"required,max=120"`
	SchoolID      string `json:"school_id" validate:"required,max=40"`
	NationalID    string `json:"national_id" validate:"max=40"`
	Sex           string `json:"sex" validate:"required,oneof=M F"`
	Grade         string `json:"grade" validate:"required"`
	Section       string `json:"section" validate:"required"`
	Shift         string `json:"shift" validate:"required,oneof=M T"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	Address       string `json:"address"`
}

// StudentImportRow is one row of a bulk import. Missing fields are filled
// with placeholders instead of rejecting the row.
type StudentImportRow struct {
	FullName      string `json:"full_name"`
	SchoolID      string `json:"school_id"`
	NationalID    string `json:"national_id"`
	Sex           string `json:"sex"`
	Grade         string `json:"grade"`
	Section       string `json:"section"`
	Shift         string `json:"shift"`
	GuardianName  string `json:"guardian_name"`
	GuardianPhone string `json:"guardian_phone"`
	Address       string `json:"address"`
}

type ImportResult struct {
	Received int      `json:"received"`
	Imported int      `json:"imported"`
	Skipped  []int    `json:"skipped,omitempty"`
	Students []string `json:"student_ids"`
}

type DayMapResponse struct {
	Section string                   `json:"section"`
	Date    string                   `json:"date"`
	Roster  []models.Student         `json:"roster"`
	Marks   map[string]models.Status `json:"marks"`
	Pending int                      `json:"pending"`
}

type ToggleRequest struct {
	Marks     map[string]models.Status `json:"marks"`
	StudentID string                   `json:"student_id" validate:"required"`
	Status    models.Status            `json:"status" validate:"required"`
}

type ToggleResponse struct {
	Marks map[string]models.Status `json:"marks"`
}

type CommitRequest struct {
	Grade   string                   `json:"grade" validate:"required"`
	Section string                   `json:"section" validate:"required"`
	Date    string                   `json:"date" validate:"required"`
	Marks   map[string]models.Status `json:"marks"`
}

type CommitResponse struct {
	Section  string   `json:"section"`
	Date     string   `json:"date"`
	Written  int      `json:"written"`
	Unmarked int      `json:"unmarked"`
	Policy   string   `json:"policy"`
	Ignored  []string `json:"ignored,omitempty"`
}

type AskRequest struct {
	Question string          `json:"question" validate:"required,max=2000"`
	History  []analysis.Turn `json:"history" validate:"dive"`
}

type AnalysisResponse struct {
	Text       string `json:"text"`
	Configured bool   `json:"configured"`
}
