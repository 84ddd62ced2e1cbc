package models

// Data Transfer Objects

type RegisterRequest struct {
	Email       string `json:"email" validate:"required,email,max=255"`
	Password    string `json:"password" validate:"required,min=6,max=128"`
	DisplayName string `json:"displayName" validate:"required,max=255"`
	Role        Role   `json:"role" validate:"required,oneof=student supervisor"`
}

type RegisterResponse struct {
	ID      string `json:"id"`
	Subject string `json:"uid"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

type LoginResponse struct {
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expiresAt"`
	User      *User  `json:"user"`
}

type UpdateProfileRequest struct {
	DisplayName string `json:"displayName" validate:"required,min=1,max=255"`
}

type CreateDissertationRequest struct {
	Title        string `json:"title" validate:"required,min=3,max=255"`
	StudentID    string `json:"studentId" validate:"required,uuid"`
	SupervisorID string `json:"supervisorId" validate:"required,uuid"`
}

type SetDueDateRequest struct {
	MilestoneID string `json:"milestoneId" validate:"required,uuid"`
	DueDate     string `json:"dueDate" validate:"required"`
}

// CreateSubmissionRequest carries either text content, a file, or both.
type CreateSubmissionRequest struct {
	Content  string `json:"content"`
	FileName string `json:"-"`
	FileType string `json:"-"`
	FileData []byte `json:"-"`
}

func (r *CreateSubmissionRequest) HasFile() bool {
	return r.FileName != "" && len(r.FileData) > 0
}

type ReviewSubmissionRequest struct {
	Feedback string `json:"feedback" validate:"required"`
	Grade    string `json:"grade" validate:"required,max=32"`
}

type SendMessageRequest struct {
	Text string `json:"text" validate:"required,max=5000"`
}

type TextRequest struct {
	Text string `json:"text" validate:"required"`
}

type SummaryResponse struct {
	Summary  string `json:"summary"`
	Progress string `json:"progress"`
}

type PlagiarismResponse struct {
	IsPlagiarized bool     `json:"isPlagiarized"`
	Explanation   string   `json:"explanation"`
	Score         *float64 `json:"score,omitempty"`
}

type MessageResponse struct {
	Message string `json:"message"`
}
