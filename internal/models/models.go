package models

import "strings"

const (
	SeedAdminID     = "admin-1"
	seedAdminLogin  = "admin"
	seedAdminSecret = "admin123"
)

type Account struct {
	ID        string `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Login     string `json:"login"`
	Secret    string `json:"secret,omitempty"`
	Role      Role   `json:"role"`
	Grade     string `json:"grade,omitempty"`
	Section   string `json:"section,omitempty"`
	Active    bool   `json:"active"`
}

// AssignedSection is the class a teacher marks attendance for. ok is false
// when no class is assigned.
func (a Account) AssignedSection() (sec Section, ok bool) {
	if a.Grade == "" || a.Section == "" {
		return Section{}, false
	}

	return Section{Grade: a.Grade, Section: a.Section}, true
}

func (a Account) FullName() string {
	return strings.TrimSpace(a.FirstName + " " + a.LastName)
}

// SeedAdmin returns the account created on first run.
func SeedAdmin() Account {
	return Account{
		ID:        SeedAdminID,
		FirstName: "Admin",
		LastName:  "Principal",
		Login:     seedAdminLogin,
		Secret:    seedAdminSecret,
		Role:      RoleAdmin,
		Active:    true,
	}
}

type Sex string

const (
	SexMale   Sex = "M"
	SexFemale Sex = "F"
)

type Shift string

const (
	ShiftMorning   Shift = "M"
	ShiftAfternoon Shift = "T"
)

type Student struct {
	ID            string `json:"id"`
	FullName      string `json:"full_name"`
	SchoolID      string `json:"school_id"`
	NationalID    string `json:"national_id,omitempty"`
	Sex           Sex    `json:"sex"`
	Grade         string `json:"grade"`
	Section       string `json:"section"`
	Shift         Shift  `json:"shift"`
	GuardianName  string `json:"guardian_name,omitempty"`
	GuardianPhone string `json:"guardian_phone,omitempty"`
	Address       string `json:"address,omitempty"`
}

func (s Student) ClassSection() Section {
	return Section{Grade: s.Grade, Section: s.Section}
}

// InSection keeps the students of sec in roster order.
func InSection(students []Student, sec Section) []Student {
	out := make([]Student, 0)
	for _, s := range students {
		if s.ClassSection() == sec {
			out = append(out, s)
		}
	}

	return out
}

type Event struct {
	ID        string `json:"id"`
	StudentID string `json:"student_id"`
	Date      Date   `json:"date"`
	Status    Status `json:"status"`
}

// EventID is the composite identity of an attendance event. At most one
// event exists per id.
func EventID(studentID string, date Date) string {
	return studentID + "_" + string(date)
}

func NewEvent(studentID string, date Date, status Status) Event {
	return Event{
		ID:        EventID(studentID, date),
		StudentID: studentID,
		Date:      date,
		Status:    status,
	}
}
