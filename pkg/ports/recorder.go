package ports

import (
	"context"
	"time"
)

// RequestStatus is the review status of a submitted asset request.
type RequestStatus string

const (
	RequestPending  RequestStatus = "pending"
	RequestApproved RequestStatus = "approved"
	RequestRejected RequestStatus = "rejected"
)

// Valid reports whether s is one of the known statuses.
func (s RequestStatus) Valid() bool {
	switch s {
	case RequestPending, RequestApproved, RequestRejected:
		return true
	}
	return false
}

// AssetRequest is a completed request handed to the recorder.
type AssetRequest struct {
	ID            string        `json:"id" db:"id"`
	SessionKey    string        `json:"session_key" db:"session_key"`
	Identity      string        `json:"identity" db:"identity"`
	AssetType     string        `json:"asset_type" db:"asset_type"`
	Configuration string        `json:"configuration" db:"configuration"`
	Reason        string        `json:"reason" db:"reason"`
	Status        RequestStatus `json:"status" db:"status"`
	CreatedAt     time.Time     `json:"created_at" db:"created_at"`
}

// RequestRecorder stores completed asset requests for review by the IT team.
type RequestRecorder interface {
	Record(ctx context.Context, req *AssetRequest) error
}

// RequestReviewer moves a recorded request between review statuses.
type RequestReviewer interface {
	UpdateStatus(ctx context.Context, id string, status RequestStatus) error
}
