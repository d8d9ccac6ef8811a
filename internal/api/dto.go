package api

import (
	"time"

	"scriptqueue/internal/identity"
	"scriptqueue/internal/policy"
	"scriptqueue/internal/queue"
	"scriptqueue/internal/stats"
)

type itemResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Price       float64    `json:"price"`
	Status      string     `json:"status"`
	ClaimedBy   string     `json:"claimedBy,omitempty"`
	Deadline    *time.Time `json:"deadline,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt,omitempty"`

	Permissions permissionsResponse `json:"permissions"`
}

type permissionsResponse struct {
	CanClaim             bool `json:"canClaim"`
	CanComplete          bool `json:"canComplete"`
	CanEdit              bool `json:"canEdit"`
	CanDelete            bool `json:"canDelete"`
	CanViewScriptHistory bool `json:"canViewScriptHistory"`
}

func evaluateFor(viewer *identity.User, item queue.Item) policy.Decision {
	if viewer == nil {
		return policy.Decision{}
	}
	return policy.Evaluate(viewer.Role, viewer.Username, item)
}

func toItemResponse(item queue.Item, viewer *identity.User) itemResponse {
	resp := itemResponse{
		ID:          item.ID,
		Title:       item.Title,
		Description: item.Description,
		Price:       item.Price,
		Status:      string(item.Status),
		ClaimedBy:   item.ClaimedBy,
		Deadline:    item.Deadline,
		CreatedAt:   item.CreatedAt,
		CompletedAt: item.CompletedAt,
	}
	d := evaluateFor(viewer, item)
	resp.Permissions = permissionsResponse{
		CanClaim:             d.CanClaim,
		CanComplete:          d.CanComplete,
		CanEdit:              d.CanEdit,
		CanDelete:            d.CanDelete,
		CanViewScriptHistory: d.CanViewScriptHistory,
	}
	return resp
}

type scriptResponse struct {
	ID          string    `json:"id"`
	QueueItemID string    `json:"queueItemId"`
	Content     string    `json:"content"`
	SubmittedBy string    `json:"submittedBy"`
	Version     int       `json:"version"`
	CreatedAt   time.Time `json:"createdAt"`
}

func toScriptResponse(s queue.Script) scriptResponse {
	return scriptResponse{
		ID:          s.ID,
		QueueItemID: s.QueueItemID,
		Content:     s.Content,
		SubmittedBy: s.SubmittedBy,
		Version:     s.Version,
		CreatedAt:   s.CreatedAt,
	}
}

type userResponse struct {
	ID        string    `json:"id"`
	Email     string    `json:"email"`
	Username  string    `json:"username"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toUserResponse(u identity.User) userResponse {
	return userResponse{
		ID:        u.ID,
		Email:     u.Email,
		Username:  u.Username,
		Role:      string(u.Role),
		CreatedAt: u.CreatedAt,
	}
}

type statsResponse struct {
	TotalJobs      int                   `json:"totalJobs"`
	PendingJobs    int                   `json:"pendingJobs"`
	InProgressJobs int                   `json:"inProgressJobs"`
	CompletedJobs  int                   `json:"completedJobs"`
	TotalRevenue   float64               `json:"totalRevenue"`
	PendingRevenue float64               `json:"pendingRevenue"`
	Leaderboard    []leaderboardResponse `json:"leaderboard"`
}

type leaderboardResponse struct {
	Name          string  `json:"name"`
	CompletedJobs int     `json:"completedJobs"`
	TotalEarnings float64 `json:"totalEarnings"`
}

func toStatsResponse(summary stats.Summary, board []stats.WorkerStanding) statsResponse {
	resp := statsResponse{
		TotalJobs:      summary.TotalJobs,
		PendingJobs:    summary.PendingJobs,
		InProgressJobs: summary.InProgressJobs,
		CompletedJobs:  summary.CompletedJobs,
		TotalRevenue:   summary.TotalRevenue,
		PendingRevenue: summary.PendingRevenue,
		Leaderboard:    make([]leaderboardResponse, 0, len(board)),
	}
	for _, row := range board {
		resp.Leaderboard = append(resp.Leaderboard, leaderboardResponse{
			Name:          row.Name,
			CompletedJobs: row.CompletedJobs,
			TotalEarnings: row.TotalEarnings,
		})
	}
	return resp
}
