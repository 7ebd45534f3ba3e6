package models

import "time"

// TeamSize is the number of team members registered alongside the leader.
const TeamSize = 3

// TeamMember is one of the three members registered with a team.
type TeamMember struct {
	Name       string `json:"name" validate:"required,min=2" label:"Full Name" msg:"Name must be at least 2 characters."`
	Department string `json:"department" validate:"required,min=2" label:"Department" msg:"Department is required."`
	RegNumber  string `json:"regNumber" validate:"required,min=2" label:"Registration Number" msg:"Registration number is required."`
	Semester   string `json:"semester" validate:"required,oneof=1 2 3 4 5 6 7 8" label:"Semester" msg:"Semester is required."`
	Email      string `json:"email" validate:"required,email" label:"Email" msg:"Please enter a valid email address."`
}

// Registration is the registration draft: leader, institution, project, team and consent.
// It is a plain value; updates go through With and never mutate the receiver.
type Registration struct {
	LeaderName       string `json:"leaderName" validate:"required,min=2" label:"Full Name" msg:"Name must be at least 2 characters."`
	LeaderEmail      string `json:"leaderEmail" validate:"required,email" label:"Email" msg:"Please enter a valid email address."`
	LeaderPhone      string `json:"leaderPhone" validate:"required,min=10" label:"Phone Number" msg:"Please enter a valid phone number."`
	LeaderDepartment string `json:"leaderDepartment" validate:"required,min=2" label:"Department" msg:"Department is required."`
	LeaderRegNumber  string `json:"leaderRegNumber" validate:"required,min=2" label:"Registration Number" msg:"Registration number is required."`
	LeaderSemester   string `json:"leaderSemester" validate:"required,oneof=1 2 3 4 5 6 7 8" label:"Semester" msg:"Semester is required."`

	CollegeName    string `json:"collegeName" validate:"required,min=2" label:"College/Institution Name" msg:"College name is required."`
	CollegeAddress string `json:"collegeAddress" validate:"required,min=5" label:"College Address" msg:"College address is required."`

	ProjectTitle       string `json:"projectTitle" validate:"required,min=2" label:"Project Title" msg:"Project title is required."`
	ProjectDescription string `json:"projectDescription" validate:"required,min=10" label:"Project Description" msg:"Please provide a brief description of your project."`

	Member1 TeamMember `json:"member1"`
	Member2 TeamMember `json:"member2"`
	Member3 TeamMember `json:"member3"`

	TermsAccepted bool `json:"termsAccepted" validate:"eq=true" label:"I agree to the terms and conditions" msg:"You must accept the terms and conditions."`
}

// EmptyRegistration returns the default draft.
func EmptyRegistration() Registration {
	return Registration{}
}

// IsEmpty reports whether r equals the default draft.
func (r Registration) IsEmpty() bool {
	return r == EmptyRegistration()
}

// Members returns the three team members in order.
func (r Registration) Members() [TeamSize]TeamMember {
	return [TeamSize]TeamMember{r.Member1, r.Member2, r.Member3}
}

// RegistrationRecord is a stored registration. ID is the idempotency key the
// registration was submitted under.
type RegistrationRecord struct {
	ID           string       `json:"id"`
	Registration Registration `json:"registration"`
	CreatedAt    time.Time    `json:"createdAt"`
}

// SemesterOption is a selectable semester value with its display label.
type SemesterOption struct {
	Value string `json:"value"`
	Label string `json:"label"`
}

// SemesterOptions returns the eight accepted semester values.
func SemesterOptions() []SemesterOption {
	labels := []string{"1st", "2nd", "3rd", "4th", "5th", "6th", "7th", "8th"}
	options := make([]SemesterOption, 0, len(labels))
	for i, l := range labels {
		options = append(options, SemesterOption{
			Value: string(rune('1' + i)),
			Label: l + " Semester",
		})
	}
	return options
}
