package models

import "encoding/json"

type Role string

const (
	RoleTeacher Role = "TEACHER"
	RoleStudent Role = "STUDENT"
)

type ClassInfo struct {
	ID          int64   `json:"id"`
	Title       string  `json:"title"`
	Description string  `json:"description"`
	Place       *string `json:"place"`
	StartDate   *string `json:"startDate"`
	EndDate     *string `json:"endDate"`
	TeacherName *string `json:"teacherName"`
}

// ClassSummary is the class embedded in an assignment.
type ClassSummary struct {
	ID          int64  `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Place       string `json:"place"`
	StartDate   string `json:"startDate"`
	EndDate     string `json:"endDate"`
}

type Assignment struct {
	ID            int64        `json:"id"`
	Title         string       `json:"title"`
	Description   string       `json:"description"`
	DueDate       string       `json:"dueDate"`
	AssignedClass ClassSummary `json:"assignedClass"`
}

type Submission struct {
	ID             int64  `json:"id"`
	StudentName    string `json:"studentName,omitempty"`
	SubmissionFile string `json:"submissionFile"`
	SubmissionDate string `json:"submissionDate"`
	Grade          *int   `json:"grade,omitempty"`
}

type Student struct {
	ID    int64  `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// LoginResult is what the Backend Service answers on a successful login.
type LoginResult struct {
	Token    string      `json:"token"`
	Username string      `json:"username"`
	Role     string      `json:"role"`
	ID       json.Number `json:"id"`
}

type Credentials struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type Registration struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
	Role     string `json:"role"`
}

// NewClass is the create-class payload; TeacherID comes from the id cookie.
type NewClass struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	Place       string `json:"place" binding:"required"`
	StartDate   string `json:"startDate" binding:"required"`
	EndDate     string `json:"endDate" binding:"required"`
	TeacherID   int64  `json:"teacher_id"`
}

type NewAssignment struct {
	Title       string `json:"title" binding:"required"`
	Description string `json:"description" binding:"required"`
	DueDate     string `json:"dueDate" binding:"required"`
}

// Enrollment enrolls a single student through the add-student action.
type Enrollment struct {
	ClassID   int64 `json:"classId"`
	StudentID int64 `json:"studentId"`
}

// BulkEnrollment enrolls several students from the class page picker.
type BulkEnrollment struct {
	ClassID    int64   `json:"classId,omitempty"`
	StudentIDs []int64 `json:"studentIds"`
}

type GradeUpdate struct {
	Grade int `json:"grade"`
}
