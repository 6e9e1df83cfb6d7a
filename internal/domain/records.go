// Package domain contains core business types and interfaces.
//
// This file defines the records the thesis backend returns for the list
// pages. They are decoded straight from JSON and never persisted here.
package domain

import (
	"strconv"
	"strings"
	"time"
)

// LogEntry is one line of the backend's activity log.
type LogEntry struct {
	ID        int64     `json:"id"`
	UserName  string    `json:"user_name"`
	Action    string    `json:"action"`
	Detail    string    `json:"detail"`
	CreatedAt time.Time `json:"created_at"`
}

// Professor is a faculty member who can advise or review.
type Professor struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Specialty string `json:"specialty"`
	SedeName  string `json:"sede_name"`
	Active    bool   `json:"active"`
}

// FullName returns "LastName, FirstName", the order lists are sorted by.
func (p Professor) FullName() string {
	return joinName(p.FirstName, p.LastName)
}

// Coordinator manages the thesis process for one program at one sede.
type Coordinator struct {
	ID        int64  `json:"id"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Program   string `json:"program"`
	SedeName  string `json:"sede_name"`
}

func (c Coordinator) FullName() string {
	return joinName(c.FirstName, c.LastName)
}

// ReviewStatus is the state of a thesis review.
type ReviewStatus string

const (
	ReviewStatusPending  ReviewStatus = "pending"
	ReviewStatusObserved ReviewStatus = "observed"
	ReviewStatusApproved ReviewStatus = "approved"
	ReviewStatusRejected ReviewStatus = "rejected"
)

// Review is one thesis-review workflow instance.
type Review struct {
	ID           int64           `json:"id"`
	StudentCode  string          `json:"student_code"`
	StudentName  string          `json:"student_name"`
	Title        string          `json:"title"`
	ReviewerName string          `json:"reviewer_name"`
	Status       ReviewStatus    `json:"status"`
	Comments     []ReviewComment `json:"comments"`
	SubmittedAt  time.Time       `json:"submitted_at"`
}

// ReviewComment is a remark left by a reviewer. Body may contain HTML from
// the backend's rich-text editor and must be sanitized before rendering.
type ReviewComment struct {
	ID         int64     `json:"id"`
	AuthorName string    `json:"author_name"`
	Body       string    `json:"body"`
	CreatedAt  time.Time `json:"created_at"`
}

// ProposalStatus is the state of a thesis proposal.
type ProposalStatus string

const (
	ProposalStatusDraft     ProposalStatus = "draft"
	ProposalStatusSubmitted ProposalStatus = "submitted"
	ProposalStatusApproved  ProposalStatus = "approved"
	ProposalStatusRejected  ProposalStatus = "rejected"
)

// Proposal is a thesis proposal submitted by a student.
type Proposal struct {
	ID          int64          `json:"id"`
	StudentCode string         `json:"student_code"`
	StudentName string         `json:"student_name"`
	Title       string         `json:"title"`
	AdvisorName string         `json:"advisor_name"`
	Status      ProposalStatus `json:"status"`
	SubmittedAt time.Time      `json:"submitted_at"`
}

// Sede is a campus used to scope users and commissions.
type Sede struct {
	ID      int64  `json:"id"`
	Name    string `json:"name"`
	City    string `json:"city"`
	Address string `json:"address"`
}

// CommissionRole is the seat a member holds in a commission (terna).
type CommissionRole int

const (
	CommissionPresident CommissionRole = iota + 1
	CommissionSecretary
	CommissionVocal1
	CommissionVocal2
	CommissionVocal3
)

func (r CommissionRole) String() string {
	switch r {
	case CommissionPresident:
		return "president"
	case CommissionSecretary:
		return "secretary"
	case CommissionVocal1, CommissionVocal2, CommissionVocal3:
		return "vocal_" + strconv.Itoa(int(r-CommissionSecretary))
	default:
		return "unknown"
	}
}

// CommissionMember is one evaluator seated in a commission.
type CommissionMember struct {
	ProfessorID   int64          `json:"professor_id"`
	ProfessorName string         `json:"professor_name"`
	Role          CommissionRole `json:"role"`
}

// Commission is a committee of three to five evaluators.
type Commission struct {
	ID        int64              `json:"id"`
	Name      string             `json:"name"`
	SedeName  string             `json:"sede_name"`
	Members   []CommissionMember `json:"members"`
	CreatedAt time.Time          `json:"created_at"`
}

// Member returns the member seated in role, if any.
func (c Commission) Member(role CommissionRole) (CommissionMember, bool) {
	for _, m := range c.Members {
		if m.Role == role {
			return m, true
		}
	}
	return CommissionMember{}, false
}

// Complete reports whether the commission has a president, a secretary and
// at least one vocal.
func (c Commission) Complete() bool {
	_, president := c.Member(CommissionPresident)
	_, secretary := c.Member(CommissionSecretary)
	_, vocal := c.Member(CommissionVocal1)
	return president && secretary && vocal
}

// Student is a thesis student.
type Student struct {
	ID        int64  `json:"id"`
	Code      string `json:"code"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Program   string `json:"program"`
	SedeName  string `json:"sede_name"`
}

func (s Student) FullName() string {
	return joinName(s.FirstName, s.LastName)
}

func joinName(first, last string) string {
	first, last = strings.TrimSpace(first), strings.TrimSpace(last)
	switch {
	case first == "":
		return last
	case last == "":
		return first
	}
	return last + ", " + first
}
