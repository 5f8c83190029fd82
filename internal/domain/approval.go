package domain

import "time"

// ApprovalStatus is the lifecycle state of an approval request.
// pending → approved | rejected, terminal thereafter.
type ApprovalStatus string

const (
	ApprovalPending  ApprovalStatus = "pending"
	ApprovalApproved ApprovalStatus = "approved"
	ApprovalRejected ApprovalStatus = "rejected"
)

// ApprovalRequest pairs old and new values for a set of changed profile
// fields plus a human justification. Once decided it is immutable.
//
// RequestedChanges and CurrentValues carry only keys that actually
// differ; equal-valued fields are never included.
type ApprovalRequest struct {
	ID               string         `json:"id"`
	UserID           string         `json:"userId"`
	UserName         string         `json:"userName"`
	UserEmail        string         `json:"userEmail"`
	RequestType      string         `json:"requestType"`
	RequestedChanges Profile        `json:"requestedChanges"`
	CurrentValues    Profile        `json:"currentValues"`
	Justification    string         `json:"justification"`
	Status           ApprovalStatus `json:"status"`
	CreatedAt        time.Time      `json:"createdAt"`
	ReviewedAt       *time.Time     `json:"reviewedAt,omitempty"`
	ReviewedBy       string         `json:"reviewedBy,omitempty"`
	ReviewComments   string         `json:"reviewComments,omitempty"`
}

// RequestTypeProfileUpdate is the only request type the workflow handles.
const RequestTypeProfileUpdate = "profile_update"

// Decided reports whether the request reached a terminal state.
func (r *ApprovalRequest) Decided() bool {
	return r.Status == ApprovalApproved || r.Status == ApprovalRejected
}
