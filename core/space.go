package core

import (
	"context"
	"encoding/json"
)

type (
	// SpaceParticipant is one member of a virtual classroom space.
	SpaceParticipant struct {
		UserID   string `json:"user_id"`
		Name     string `json:"name"`
		Email    string `json:"email,omitempty"`
		IsLeader bool   `json:"is_leader,omitempty"`
	}

	// SpaceRequest is the payload sent to the space provider to open a
	// virtual classroom for a lesson.
	SpaceRequest struct {
		LessonID  string             `json:"lesson_id"`
		Tutors    []SpaceParticipant `json:"tutors"`
		Students  []SpaceParticipant `json:"students"`
		NotBefore string             `json:"not_before,omitempty"` // RFC3339, lesson start
	}

	// SpaceService is any provider that can create virtual classroom spaces.
	// The raw provider response is relayed to callers verbatim.
	SpaceService interface {
		CreateSpace(ctx context.Context, req SpaceRequest) (json.RawMessage, error)
	}
)
