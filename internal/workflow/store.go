package workflow

import "github.com/aulas/aulas-bff/internal/models"

// Status is the lifecycle of one (assignment, student) submission.
type Status string

const (
	NotSubmitted Status = "NOT_SUBMITTED"
	Submitted    Status = "SUBMITTED"
	Graded       Status = "GRADED"
)

type OpState string

const (
	OpIdle      OpState = "idle"
	OpPending   OpState = "pending"
	OpSucceeded OpState = "succeeded"
	OpFailed    OpState = "failed"
)

// Op is the visible status of the last upload or grading attempt.
type Op struct {
	State   OpState `json:"state"`
	Message string  `json:"message,omitempty"`
}

// Record is a single submission. Teacher lists and the student's own entry
// both point at records rather than copies.
type Record struct {
	ID            int64  `json:"id,omitempty"`
	AssignmentID  int64  `json:"assignmentId"`
	StudentName   string `json:"studentName,omitempty"`
	File          string `json:"submissionFile,omitempty"`
	Date          string `json:"submissionDate,omitempty"`
	DateEstimated bool   `json:"dateEstimated,omitempty"`
	Grade         *int   `json:"grade,omitempty"`
	Band          Band   `json:"band,omitempty"`
	Status        Status `json:"status"`
	Regrading     bool   `json:"regrading,omitempty"`
}

// selection keeps the file bytes so a failed upload can be retried.
type selection struct {
	name string
	data []byte
}

// Store is the normalized state of one class page, keyed by entity id.
// A Store is not safe for concurrent use.
type Store struct {
	order       []int64
	assignments map[int64]models.Assignment

	submissions map[int64]*Record   // by submission id
	byAssign    map[int64][]int64   // assignment id -> submission ids, teacher view
	own         map[int64]*Record   // assignment id -> own record, student view

	selected    map[int64]selection // assignment id -> chosen file
	uploads     map[int64]Op        // assignment id
	gradeInputs map[int64]int       // submission id -> pending grade
	grading     map[int64]Op        // submission id
}

func NewStore(assignments []models.Assignment) *Store {
	s := &Store{
		assignments: make(map[int64]models.Assignment, len(assignments)),
		submissions: make(map[int64]*Record),
		byAssign:    make(map[int64][]int64),
		own:         make(map[int64]*Record),
		selected:    make(map[int64]selection),
		uploads:     make(map[int64]Op),
		gradeInputs: make(map[int64]int),
		grading:     make(map[int64]Op),
	}
	for _, a := range assignments {
		if _, dup := s.assignments[a.ID]; !dup {
			s.order = append(s.order, a.ID)
		}
		s.assignments[a.ID] = a
	}
	return s
}

// Assignments returns the assignments in listing order.
func (s *Store) Assignments() []models.Assignment {
	out := make([]models.Assignment, 0, len(s.order))
	for _, id := range s.order {
		out = append(out, s.assignments[id])
	}
	return out
}

func (s *Store) Submission(id int64) (Record, bool) {
	r, ok := s.submissions[id]
	if !ok {
		return Record{}, false
	}
	return *r, true
}

// Submissions lists the records of one assignment in Backend order.
func (s *Store) Submissions(assignmentID int64) []Record {
	ids := s.byAssign[assignmentID]
	out := make([]Record, 0, len(ids))
	for _, id := range ids {
		out = append(out, *s.submissions[id])
	}
	return out
}

// Own returns the student's own record for an assignment. Unknown
// assignments and missing submissions both read as NotSubmitted.
func (s *Store) Own(assignmentID int64) Record {
	if r, ok := s.own[assignmentID]; ok {
		return *r
	}
	return Record{AssignmentID: assignmentID, Status: NotSubmitted}
}

func (s *Store) UploadStatus(assignmentID int64) Op {
	if op, ok := s.uploads[assignmentID]; ok {
		return op
	}
	return Op{State: OpIdle}
}

func (s *Store) GradingStatus(submissionID int64) Op {
	if op, ok := s.grading[submissionID]; ok {
		return op
	}
	return Op{State: OpIdle}
}

func (s *Store) setSubmissions(assignmentID int64, subs []models.Submission) {
	ids := make([]int64, 0, len(subs))
	for _, sub := range subs {
		r := recordFrom(assignmentID, sub)
		s.submissions[sub.ID] = r
		ids = append(ids, sub.ID)
	}
	s.byAssign[assignmentID] = ids
}

func (s *Store) setOwn(assignmentID int64, sub *models.Submission) {
	if sub == nil {
		delete(s.own, assignmentID)
		return
	}
	r := recordFrom(assignmentID, *sub)
	s.own[assignmentID] = r
	if sub.ID != 0 {
		s.submissions[sub.ID] = r
	}
}

func recordFrom(assignmentID int64, sub models.Submission) *Record {
	r := &Record{
		ID:           sub.ID,
		AssignmentID: assignmentID,
		StudentName:  sub.StudentName,
		File:         sub.SubmissionFile,
		Date:         sub.SubmissionDate,
		Status:       Submitted,
	}
	if sub.Grade != nil {
		r.setGrade(*sub.Grade)
	}
	return r
}

func (r *Record) setGrade(grade int) {
	r.Grade = &grade
	r.Band = GradeBand(grade)
	r.Status = Graded
}

// AssignmentView is one assignment with its workflow state, as rendered.
type AssignmentView struct {
	Assignment  models.Assignment `json:"assignment"`
	Own         *Record           `json:"own,omitempty"`
	Submissions []Record          `json:"submissions,omitempty"`
	Upload      *Op               `json:"upload,omitempty"`
}

// Snapshot flattens the store for JSON output. Teacher views carry
// submission lists; student views carry the own record.
func (s *Store) Snapshot(teacher bool) []AssignmentView {
	out := make([]AssignmentView, 0, len(s.order))
	for _, id := range s.order {
		v := AssignmentView{Assignment: s.assignments[id]}
		if teacher {
			v.Submissions = s.Submissions(id)
		} else {
			own := s.Own(id)
			v.Own = &own
			if op := s.UploadStatus(id); op.State != OpIdle {
				v.Upload = &op
			}
		}
		out = append(out, v)
	}
	return out
}
