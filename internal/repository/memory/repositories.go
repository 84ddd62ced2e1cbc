package memory

import (
	"context"
	"sort"
	"time"

	"github.com/RubachokBoss/thesisflow/internal/models"
)

type dissertationRepository struct{ s *Store }

func (r dissertationRepository) Create(ctx context.Context, diss *models.Dissertation) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.dissertations[diss.ID]; ok {
			return duplicate("dissertations_pkey")
		}
		for _, existing := range d.dissertations {
			if existing.StudentID == diss.StudentID {
				return duplicate("dissertations_student_id_key")
			}
		}
		d.dissertations[diss.ID] = *diss
		return nil
	})
}

func (r dissertationRepository) GetByID(ctx context.Context, id string) (*models.Dissertation, error) {
	var out *models.Dissertation
	err := r.s.read(func(d *data) error {
		if diss, ok := d.dissertations[id]; ok {
			out = &diss
		}
		return nil
	})
	return out, err
}

func (r dissertationRepository) GetByStudentID(ctx context.Context, studentID string) (*models.Dissertation, error) {
	var out *models.Dissertation
	err := r.s.read(func(d *data) error {
		for _, diss := range d.dissertations {
			if diss.StudentID == studentID {
				diss := diss
				out = &diss
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r dissertationRepository) GetBySupervisorID(ctx context.Context, supervisorID string) ([]models.Dissertation, error) {
	var out []models.Dissertation
	err := r.s.read(func(d *data) error {
		for _, diss := range d.dissertations {
			if diss.SupervisorID == supervisorID {
				out = append(out, diss)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.Before(out[j].CreatedAt) })
	return out, err
}

func (r dissertationRepository) GetAllWithDetails(ctx context.Context) ([]models.DissertationWithDetails, error) {
	var out []models.DissertationWithDetails
	err := r.s.read(func(d *data) error {
		for _, diss := range d.dissertations {
			out = append(out, models.DissertationWithDetails{
				ID:         diss.ID,
				Title:      diss.Title,
				Status:     diss.Status,
				CreatedAt:  diss.CreatedAt,
				Student:    models.PersonRef{ID: diss.StudentID, Name: d.users[diss.StudentID].DisplayName},
				Supervisor: models.PersonRef{ID: diss.SupervisorID, Name: d.users[diss.SupervisorID].DisplayName},
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, err
}

func (r dissertationRepository) Delete(ctx context.Context, id string) error {
	return r.s.write(func(d *data) error {
		delete(d.dissertations, id)
		return nil
	})
}

type milestoneRepository struct{ s *Store }

func (r milestoneRepository) CreateBatch(ctx context.Context, milestones []models.Milestone) error {
	return r.s.write(func(d *data) error {
		for _, m := range milestones {
			if _, ok := d.milestones[m.ID]; ok {
				return duplicate("milestones_pkey")
			}
		}
		for _, m := range milestones {
			d.milestones[m.ID] = m
		}
		return nil
	})
}

func (r milestoneRepository) GetByID(ctx context.Context, id string) (*models.Milestone, error) {
	var out *models.Milestone
	err := r.s.read(func(d *data) error {
		if m, ok := d.milestones[id]; ok {
			out = &m
		}
		return nil
	})
	return out, err
}

func (r milestoneRepository) GetBySubmissionID(ctx context.Context, submissionID string) (*models.Milestone, error) {
	var out *models.Milestone
	err := r.s.read(func(d *data) error {
		for _, m := range d.milestones {
			if m.SubmissionID != nil && *m.SubmissionID == submissionID {
				m := m
				out = &m
				return nil
			}
		}
		return nil
	})
	return out, err
}

func (r milestoneRepository) GetByStudentID(ctx context.Context, studentID string) ([]models.Milestone, error) {
	var out []models.Milestone
	err := r.s.read(func(d *data) error {
		for _, m := range d.milestones {
			if m.StudentID == studentID {
				out = append(out, m)
			}
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out, err
}

// LockByStudentID needs no row locks here: transactions already run one
// at a time.
func (r milestoneRepository) LockByStudentID(ctx context.Context, studentID string) ([]models.Milestone, error) {
	return r.GetByStudentID(ctx, studentID)
}

func (r milestoneRepository) Update(ctx context.Context, m *models.Milestone) error {
	return r.s.write(func(d *data) error {
		existing, ok := d.milestones[m.ID]
		if !ok {
			return nil
		}
		m.UpdatedAt = time.Now()
		existing.DueDate = m.DueDate
		existing.Status = m.Status
		existing.SubmissionID = m.SubmissionID
		existing.UpdatedAt = m.UpdatedAt
		d.milestones[m.ID] = existing
		return nil
	})
}

func (r milestoneRepository) DeleteByDissertationID(ctx context.Context, dissertationID string) error {
	return r.s.write(func(d *data) error {
		for id, m := range d.milestones {
			if m.DissertationID == dissertationID {
				delete(d.milestones, id)
			}
		}
		return nil
	})
}

type submissionRepository struct{ s *Store }

func (r submissionRepository) Create(ctx context.Context, sub *models.Submission) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.submissions[sub.ID]; ok {
			return duplicate("submissions_pkey")
		}
		d.submissions[sub.ID] = *sub
		return nil
	})
}

func (r submissionRepository) GetByID(ctx context.Context, id string) (*models.Submission, error) {
	var out *models.Submission
	err := r.s.read(func(d *data) error {
		if sub, ok := d.submissions[id]; ok {
			out = &sub
		}
		return nil
	})
	return out, err
}

func (r submissionRepository) GetByStudentID(ctx context.Context, studentID string) ([]models.Submission, error) {
	var out []models.Submission
	err := r.s.read(func(d *data) error {
		for _, sub := range d.submissions {
			if sub.StudentID == studentID {
				out = append(out, sub)
			}
		}
		return nil
	})
	sortSubmissions(out)
	return out, err
}

func (r submissionRepository) GetByStudentIDs(ctx context.Context, studentIDs []string) ([]models.SubmissionWithStudent, error) {
	if len(studentIDs) == 0 {
		return nil, nil
	}

	wanted := make(map[string]bool, len(studentIDs))
	for _, id := range studentIDs {
		wanted[id] = true
	}

	var out []models.SubmissionWithStudent
	err := r.s.read(func(d *data) error {
		for _, sub := range d.submissions {
			if !wanted[sub.StudentID] {
				continue
			}
			u := d.users[sub.StudentID]
			out = append(out, models.SubmissionWithStudent{
				Submission: sub,
				Student: models.StudentRef{
					ID:        sub.StudentID,
					Subject:   u.Subject,
					Name:      u.DisplayName,
					AvatarURL: u.AvatarURL,
				},
			})
		}
		return nil
	})
	sort.Slice(out, func(i, j int) bool { return out[i].SubmittedAt.After(out[j].SubmittedAt) })
	return out, err
}

func sortSubmissions(subs []models.Submission) {
	sort.Slice(subs, func(i, j int) bool { return subs[i].SubmittedAt.After(subs[j].SubmittedAt) })
}

func (r submissionRepository) UpdateReview(ctx context.Context, id, feedback, grade string, status models.SubmissionStatus) error {
	return r.s.write(func(d *data) error {
		sub, ok := d.submissions[id]
		if !ok {
			return nil
		}
		sub.Feedback = &feedback
		sub.Grade = &grade
		sub.Status = status
		sub.UpdatedAt = time.Now()
		d.submissions[id] = sub
		return nil
	})
}

func (r submissionRepository) Delete(ctx context.Context, id string) error {
	return r.s.write(func(d *data) error {
		delete(d.submissions, id)
		return nil
	})
}

func (r submissionRepository) DeleteByStudentID(ctx context.Context, studentID string) ([]models.Submission, error) {
	var removed []models.Submission
	err := r.s.write(func(d *data) error {
		for id, sub := range d.submissions {
			if sub.StudentID == studentID {
				removed = append(removed, sub)
				delete(d.submissions, id)
			}
		}
		return nil
	})
	sortSubmissions(removed)
	return removed, err
}

type messageRepository struct{ s *Store }

func (r messageRepository) Create(ctx context.Context, m *models.Message) error {
	return r.s.write(func(d *data) error {
		if _, ok := d.messages[m.ID]; ok {
			return duplicate("messages_pkey")
		}
		d.messages[m.ID] = *m
		return nil
	})
}

func (r messageRepository) GetByDissertationID(ctx context.Context, dissertationID string) ([]models.Message, error) {
	var out []models.Message
	err := r.s.read(func(d *data) error {
		for _, m := range d.messages {
			if m.DissertationID == dissertationID {
				out = append(out, m)
			}
		}
		return nil
	})
	sort.SliceStable(out, func(i, j int) bool { return out[i].Timestamp.Before(out[j].Timestamp) })
	return out, err
}

func (r messageRepository) DeleteByDissertationID(ctx context.Context, dissertationID string) error {
	return r.s.write(func(d *data) error {
		for id, m := range d.messages {
			if m.DissertationID == dissertationID {
				delete(d.messages, id)
			}
		}
		return nil
	})
}
