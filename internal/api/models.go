package api

import (
	"encoding/base64"
	"time"

	"github.com/phrazzld/pastforward-api/internal/domain"
)

// CreateSessionRequest is the body for POST /api/sessions. Decades is
// optional; when omitted every supported decade is generated.
type CreateSessionRequest struct {
	Image   string   `json:"image"   validate:"required"`
	Decades []string `json:"decades" validate:"omitempty,min=1,dive,required"`
}

// EditRequest is the body for the per-decade edit operation.
type EditRequest struct {
	Instruction string `json:"instruction" validate:"required"`
}

// AnimateRequest is the optional body for the per-decade animate operation.
type AnimateRequest struct {
	AspectRatio string `json:"aspect_ratio" validate:"omitempty,oneof=9:16 16:9"`
}

// ItemResponse is one decade's state in a session snapshot. Media payloads
// are inlined: the image as a data URL, video and audio as base64.
type ItemResponse struct {
	Status       string `json:"status"`
	Image        string `json:"image,omitempty"`
	ErrorMessage string `json:"error_message,omitempty"`
	EditError    string `json:"edit_error,omitempty"`

	VideoStatus string `json:"video_status"`
	Video       string `json:"video,omitempty"`
	VideoError  string `json:"video_error,omitempty"`

	AudioStatus string `json:"audio_status"`
	Audio       string `json:"audio,omitempty"`
	AudioError  string `json:"audio_error,omitempty"`
}

// SessionResponse is the session snapshot returned by session endpoints.
type SessionResponse struct {
	ID        string                  `json:"id"`
	CreatedAt time.Time               `json:"created_at"`
	Decades   []string                `json:"decades"`
	Completed int                     `json:"completed"`
	Total     int                     `json:"total"`
	Complete  bool                    `json:"complete"`
	Items     map[string]ItemResponse `json:"items"`
}

// sessionToResponse converts a session snapshot into its API shape.
func sessionToResponse(sess *domain.Session) SessionResponse {
	resp := SessionResponse{
		ID:        sess.ID.String(),
		CreatedAt: sess.CreatedAt,
		Decades:   make([]string, 0, len(sess.Decades)),
		Completed: sess.CompletedCount(),
		Total:     len(sess.Decades),
		Complete:  sess.Complete(),
		Items:     make(map[string]ItemResponse, len(sess.Items)),
	}
	for _, d := range sess.Decades {
		resp.Decades = append(resp.Decades, string(d))
		resp.Items[string(d)] = itemToResponse(sess.Items[d])
	}
	return resp
}

func itemToResponse(item domain.GenerationItem) ItemResponse {
	out := ItemResponse{
		Status:       string(item.Status),
		ErrorMessage: item.ErrorMessage,
		EditError:    item.EditError,
		VideoStatus:  string(item.VideoStatus),
		VideoError:   item.VideoError,
		AudioStatus:  string(item.AudioStatus),
		AudioError:   item.AudioError,
	}
	if !item.Result.IsZero() {
		out.Image = item.Result.DataURL()
	}
	if len(item.VideoResult) > 0 {
		out.Video = base64.StdEncoding.EncodeToString(item.VideoResult)
	}
	if len(item.AudioResult) > 0 {
		out.Audio = base64.StdEncoding.EncodeToString(item.AudioResult)
	}
	return out
}
