package workflow

import (
	"bytes"
	"context"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/pkg/errors"
	"github.com/rs/zerolog"

	"github.com/aulas/aulas-bff/internal/backend"
	"github.com/aulas/aulas-bff/internal/logger"
	"github.com/aulas/aulas-bff/internal/models"
)

const (
	msgSelectFile   = "Please select a file before submitting."
	msgSubmitting   = "Submitting..."
	msgSubmitted    = "Submitted successfully!"
	msgInvalidGrade = "Please enter a valid grade between 0 and 100."
	msgGrading      = "Grading..."
	msgGraded       = "Grade submitted successfully!"
	msgUnexpected   = "An unexpected error occurred."
)

var (
	ErrNoFile            = errors.New("no file selected")
	ErrInvalidGrade      = errors.New("grade must be an integer between 0 and 100")
	ErrRegradeLocked     = errors.New("submission already graded; enable re-grade first")
	ErrUnknownSubmission = errors.New("unknown submission")
)

// Gateway is what the workflow needs from the Backend Service.
// *backend.Session satisfies it.
type Gateway interface {
	MySubmission(ctx context.Context, assignmentID int64) (*models.Submission, error)
	AssignmentSubmissions(ctx context.Context, assignmentID int64) ([]models.Submission, error)
	SubmitFile(ctx context.Context, assignmentID int64, fileName string, content io.Reader) error
	GradeSubmission(ctx context.Context, submissionID int64, grade int) error
}

// NowFunc stamps optimistic submissions.
var NowFunc = time.Now

var validate = validator.New()

type gradeInput struct {
	Grade int `validate:"min=0,max=100"`
}

// Workflow drives one store against one gateway.
type Workflow struct {
	store *Store
	gw    Gateway
	log   zerolog.Logger
}

func New(store *Store, gw Gateway) *Workflow {
	return &Workflow{store: store, gw: gw, log: logger.Get()}
}

func (w *Workflow) Store() *Store { return w.store }

// LoadStudent looks up the caller's own submission for every assignment,
// one at a time in listing order. Failures other than "not found" are
// logged and read as NotSubmitted.
func (w *Workflow) LoadStudent(ctx context.Context) {
	for _, id := range w.store.order {
		sub, err := w.gw.MySubmission(ctx, id)
		switch {
		case err == nil:
			w.store.setOwn(id, sub)
		case errors.Is(err, backend.ErrNotFound):
			w.store.setOwn(id, nil)
		default:
			w.log.Error().Err(err).Int64("assignment_id", id).Msg("failed to check submission")
			w.store.setOwn(id, nil)
		}
	}
}

// LoadTeacher lists submissions for every assignment, one at a time in
// listing order. A failed assignment gets an empty list; the rest still load.
func (w *Workflow) LoadTeacher(ctx context.Context) {
	for _, id := range w.store.order {
		subs, err := w.gw.AssignmentSubmissions(ctx, id)
		if err != nil {
			w.log.Error().Err(err).Int64("assignment_id", id).Msg("failed to fetch submissions")
			subs = nil
		}
		w.store.setSubmissions(id, subs)
	}
}

// SelectFile records the file chosen for an assignment. An empty name clears it.
// The content is read once here; every upload attempt sends the same bytes.
func (w *Workflow) SelectFile(assignmentID int64, name string, content io.Reader) error {
	if name == "" || content == nil {
		delete(w.store.selected, assignmentID)
		return nil
	}
	data, err := io.ReadAll(content)
	if err != nil {
		delete(w.store.selected, assignmentID)
		return errors.Wrapf(err, "failed to read %s", name)
	}
	w.store.selected[assignmentID] = selection{name: name, data: data}
	return nil
}

// Submit uploads the selected file and moves the assignment to Submitted.
// The authoritative record is refetched; if that fails the local time is
// kept and flagged as an estimate.
func (w *Workflow) Submit(ctx context.Context, assignmentID int64) error {
	sel, ok := w.store.selected[assignmentID]
	if !ok {
		w.store.uploads[assignmentID] = Op{State: OpFailed, Message: msgSelectFile}
		return ErrNoFile
	}

	w.store.uploads[assignmentID] = Op{State: OpPending, Message: msgSubmitting}
	if err := w.gw.SubmitFile(ctx, assignmentID, sel.name, bytes.NewReader(sel.data)); err != nil {
		w.log.Error().Err(err).Int64("assignment_id", assignmentID).Msg("submission upload failed")
		w.store.uploads[assignmentID] = Op{State: OpFailed, Message: msgUnexpected}
		return err
	}

	sub, err := w.gw.MySubmission(ctx, assignmentID)
	if err != nil {
		w.log.Warn().Err(err).Int64("assignment_id", assignmentID).Msg("refetch after upload failed, keeping local timestamp")
		w.store.setOwn(assignmentID, &models.Submission{
			SubmissionFile: sel.name,
			SubmissionDate: NowFunc().UTC().Format(time.RFC3339),
		})
		w.store.own[assignmentID].DateEstimated = true
	} else {
		w.store.setOwn(assignmentID, sub)
	}

	delete(w.store.selected, assignmentID)
	w.store.uploads[assignmentID] = Op{State: OpSucceeded, Message: msgSubmitted}
	return nil
}

// SetGradeInput parses a grade typed by the teacher. Non-integer input is
// rejected; the range is checked on submit.
func (w *Workflow) SetGradeInput(submissionID int64, raw string) error {
	g, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil {
		delete(w.store.gradeInputs, submissionID)
		return ErrInvalidGrade
	}
	w.store.gradeInputs[submissionID] = g
	return nil
}

// BeginRegrade unlocks an already graded submission for another grade.
func (w *Workflow) BeginRegrade(submissionID int64) error {
	r, ok := w.store.submissions[submissionID]
	if !ok {
		return ErrUnknownSubmission
	}
	r.Regrading = true
	return nil
}

// SubmitGrade sends the pending grade. Invalid input never reaches the
// Backend Service. On success the shared record is updated, so every list
// holding the submission sees the new grade.
func (w *Workflow) SubmitGrade(ctx context.Context, submissionID int64) error {
	r, ok := w.store.submissions[submissionID]
	if !ok {
		return ErrUnknownSubmission
	}

	grade, ok := w.store.gradeInputs[submissionID]
	if !ok || ValidateGrade(grade) != nil {
		w.store.grading[submissionID] = Op{State: OpFailed, Message: msgInvalidGrade}
		return ErrInvalidGrade
	}
	if r.Status == Graded && !r.Regrading {
		return ErrRegradeLocked
	}

	w.store.grading[submissionID] = Op{State: OpPending, Message: msgGrading}
	if err := w.gw.GradeSubmission(ctx, submissionID, grade); err != nil {
		w.log.Error().Err(err).Int64("submission_id", submissionID).Msg("grading failed")
		w.store.grading[submissionID] = Op{State: OpFailed, Message: "Error: Failed to submit grade."}
		return err
	}

	r.setGrade(grade)
	r.Regrading = false
	delete(w.store.gradeInputs, submissionID)
	w.store.grading[submissionID] = Op{State: OpSucceeded, Message: msgGraded}
	return nil
}

// ValidateGrade checks the inclusive 0..100 range.
func ValidateGrade(grade int) error {
	if err := validate.Struct(gradeInput{Grade: grade}); err != nil {
		return ErrInvalidGrade
	}
	return nil
}
