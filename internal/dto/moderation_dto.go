package dto

import "github.com/google/uuid"

type CreateReportRequest struct {
	PostID      *uuid.UUID `json:"post_id"`
	CommentID   *uuid.UUID `json:"comment_id"`
	Reason      string     `json:"reason"`
	Description string     `json:"description"`
}

type ResolveReportRequest struct {
	Action string `json:"action"`
}

type BlockUserRequest struct {
	BlockedID uuid.UUID `json:"blocked_id"`
}

type BanUserRequest struct {
	Banned bool   `json:"banned"`
	Reason string `json:"reason"`
}

type ModerationStats struct {
	TotalUsers     int64 `json:"total_users"`
	BannedUsers    int64 `json:"banned_users"`
	TotalPosts     int64 `json:"total_posts"`
	PostsLast24h   int64 `json:"posts_last_24h"`
	TotalComments  int64 `json:"total_comments"`
	PendingReports int64 `json:"pending_reports"`
}
