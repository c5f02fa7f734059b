package services

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/alerts"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrReportNotFound     = errors.New("report not found")
	ErrReportResolved     = errors.New("report already resolved")
	ErrAlreadyReported    = errors.New("you already reported this content")
	ErrInvalidReport      = errors.New("report must target exactly one post or comment")
	ErrInvalidReason      = errors.New("invalid report reason")
	ErrDescriptionTooLong = errors.New("description must be at most 500 characters")
	ErrInvalidAction      = errors.New("action must be dismiss or remove_content")
	ErrContentNotFound    = errors.New("reported content not found")
	ErrAlreadyBlocked     = errors.New("user already blocked")
	ErrSelfBlock          = errors.New("cannot block yourself")
)

const maxReportDescription = 500

// DefaultBannedWords is always filtered; BANNED_WORDS extends it.
var DefaultBannedWords = []string{
	"fuck", "fucking", "shit", "bullshit", "bitch", "cunt",
	"porra", "caralho", "buceta", "arrombado",
	"porn", "porno", "nudes",
	"scam", "golpe", "phishing", "malware",
}

type ModerationService struct {
	db             *gorm.DB
	notifications  *NotificationService
	alerter        alerts.Notifier
	alertThreshold int

	bannedWordRegexps []*regexp.Regexp
	urlPattern        *regexp.Regexp
	emailPattern      *regexp.Regexp
	phonePattern      *regexp.Regexp
	handlePattern     *regexp.Regexp
	allCapsPattern    *regexp.Regexp
}

func NewModerationService(db *gorm.DB, notifications *NotificationService, alerter alerts.Notifier, alertThreshold int, extraWords []string) *ModerationService {
	if alerter == nil {
		alerter = alerts.LogNotifier{}
	}
	ms := &ModerationService{
		db:             db,
		notifications:  notifications,
		alerter:        alerter,
		alertThreshold: alertThreshold,
	}
	ms.compilePatterns(append(append([]string{}, DefaultBannedWords...), extraWords...))
	return ms
}

func (ms *ModerationService) compilePatterns(words []string) {
	ms.bannedWordRegexps = make([]*regexp.Regexp, 0, len(words))
	for _, word := range words {
		word = strings.TrimSpace(word)
		if word == "" {
			continue
		}
		re, err := regexp.Compile(`(?i)\b` + regexp.QuoteMeta(word) + `\b`)
		if err == nil {
			ms.bannedWordRegexps = append(ms.bannedWordRegexps, re)
		}
	}

	ms.urlPattern = regexp.MustCompile(`(?i)(https?://\S+|www\.\S+\.\S+)`)
	ms.emailPattern = regexp.MustCompile(`(?i)\b[A-Za-z0-9._%+-]+@[A-Za-z0-9.-]+\.[A-Za-z]{2,}\b`)
	// Brazilian and North American layouts: (11) 99999-0000, 555-123-4567
	ms.phonePattern = regexp.MustCompile(`\(?\b\d{2}\)?\s?9?\d{4}[-.\s]?\d{4}\b|\b\d{3}[-.\s]\d{3}[-.\s]\d{4}\b`)
	ms.handlePattern = regexp.MustCompile(`(^|\s)@[A-Za-z0-9_.]{3,}`)
	ms.allCapsPattern = regexp.MustCompile(`[A-ZÀ-Ý]{5,}`)
}

// FilterContent returns false and a reason code when text breaks the
// community rules. Contact details are rejected because they de-anonymize.
func (ms *ModerationService) FilterContent(text string) (bool, string) {
	if text == "" {
		return true, ""
	}
	for _, re := range ms.bannedWordRegexps {
		if re.MatchString(text) {
			return false, "inappropriate_language"
		}
	}
	if ms.urlPattern.MatchString(text) {
		return false, "url_not_allowed"
	}
	if ms.emailPattern.MatchString(text) || ms.phonePattern.MatchString(text) || ms.handlePattern.MatchString(text) {
		return false, "contact_info_not_allowed"
	}
	if hasRepeatedRun(text, 6) {
		return false, "spam_detected"
	}
	if len(ms.allCapsPattern.FindAllString(text, -1)) > 2 {
		return false, "excessive_caps"
	}
	return true, ""
}

// hasRepeatedRun reports whether any rune repeats n or more times in a row.
// Spaces and "kkkk" (laughter) are exempt.
func hasRepeatedRun(text string, n int) bool {
	var prev rune
	run := 0
	for _, r := range strings.ToLower(text) {
		if r == prev && r != ' ' && r != 'k' {
			run++
			if run >= n {
				return true
			}
			continue
		}
		prev = r
		run = 1
	}
	return false
}

func (ms *ModerationService) GetRejectionMessage(reason string) string {
	messages := map[string]string{
		"inappropriate_language":   "Your text contains inappropriate language.",
		"url_not_allowed":          "Links are not allowed.",
		"contact_info_not_allowed": "Contact details and social handles are not allowed. Stay anonymous.",
		"spam_detected":            "Your text looks like spam.",
		"excessive_caps":           "Please avoid excessive capital letters.",
	}
	if msg, ok := messages[reason]; ok {
		return msg
	}
	return "Your text does not meet our community guidelines."
}

func validReportReason(reason string) bool {
	for _, r := range models.ReportReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// CreateReport files a report against a post or a comment and bumps the
// target's report count. Moderators are alerted once when a post crosses
// the alert threshold.
func (s *ModerationService) CreateReport(reporterID uuid.UUID, req *dto.CreateReportRequest) (*models.Report, error) {
	if (req.PostID == nil) == (req.CommentID == nil) {
		return nil, ErrInvalidReport
	}
	if !validReportReason(req.Reason) {
		return nil, ErrInvalidReason
	}
	desc := strings.TrimSpace(req.Description)
	if utf8.RuneCountInString(desc) > maxReportDescription {
		return nil, ErrDescriptionTooLong
	}

	report := models.Report{
		ID:         uuid.New(),
		ReporterID: reporterID,
		PostID:     req.PostID,
		CommentID:  req.CommentID,
		Reason:     req.Reason,
		Status:     models.ReportPending,
	}
	if desc != "" {
		report.Description = &desc
	}

	var postReports int
	err := s.db.Transaction(func(tx *gorm.DB) error {
		var (
			authorID uuid.UUID
			target   interface{}
			targetID uuid.UUID
			dup      *gorm.DB
		)
		if req.PostID != nil {
			var post models.Post
			if err := tx.Where("id = ? AND is_removed = false", *req.PostID).First(&post).Error; err != nil {
				return ErrContentNotFound
			}
			authorID, target, targetID = post.UserID, &models.Post{}, post.ID
			dup = tx.Model(&models.Report{}).Where("post_id = ?", post.ID)
		} else {
			var comment models.Comment
			if err := tx.Where("id = ? AND is_removed = false", *req.CommentID).First(&comment).Error; err != nil {
				return ErrContentNotFound
			}
			authorID, target, targetID = comment.UserID, &models.Comment{}, comment.ID
			dup = tx.Model(&models.Report{}).Where("comment_id = ?", comment.ID)
		}

		if err := database.LockKey(tx, "report", reporterID.String(), targetID.String()); err != nil {
			return err
		}
		var existing int64
		dup.Where("reporter_id = ? AND status = ?", reporterID, models.ReportPending).Count(&existing)
		if existing > 0 {
			return ErrAlreadyReported
		}

		report.ReportedUserID = &authorID
		if err := tx.Create(&report).Error; err != nil {
			return err
		}
		if err := tx.Model(target).Where("id = ?", targetID).
			UpdateColumn("report_count", gorm.Expr("report_count + 1")).Error; err != nil {
			return err
		}
		if req.PostID != nil {
			return tx.Model(&models.Post{}).Where("id = ?", targetID).Select("report_count").Scan(&postReports).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	if req.PostID != nil && ShouldAlert(postReports, s.alertThreshold) {
		msg := fmt.Sprintf("Sussurro: post %s reached %d reports (latest reason: %s). Review it in the admin dashboard.",
			req.PostID.String(), postReports, req.Reason)
		go func() {
			ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
			defer cancel()
			if err := s.alerter.Send(ctx, msg); err != nil {
				slog.Error("moderator alert failed", "error", err, "action", "alert")
			}
		}()
	}

	return &report, nil
}

// ShouldAlert fires exactly when the count lands on the threshold, so a post
// pages moderators once.
func ShouldAlert(reportCount, threshold int) bool {
	return threshold > 0 && reportCount == threshold
}

func (s *ModerationService) ListReports(status string, limit, offset int) ([]models.Report, int64, error) {
	var reports []models.Report
	var total int64

	query := s.db.Model(&models.Report{})
	switch status {
	case "all":
	case "":
		query = query.Where("status = ?", models.ReportPending)
	default:
		query = query.Where("status = ?", status)
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&reports).Error; err != nil {
		return nil, 0, err
	}
	return reports, total, nil
}

// ResolveReport closes a pending report. remove_content also hides the
// reported post or comment.
func (s *ModerationService) ResolveReport(adminID *uuid.UUID, reportID uuid.UUID, action string) (*models.Report, error) {
	if action != models.ActionDismiss && action != models.ActionRemoveContent {
		return nil, ErrInvalidAction
	}

	var report models.Report
	now := time.Now().UTC()
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&report, "id = ?", reportID).Error; err != nil {
			return ErrReportNotFound
		}
		if report.Status != models.ReportPending {
			return ErrReportResolved
		}

		if action == models.ActionRemoveContent {
			if err := removeReportedContent(tx, &report, now); err != nil {
				return err
			}
		}

		report.Status = models.ReportResolved
		report.ActionTaken = &action
		report.ReviewedAt = &now
		report.ReviewedBy = adminID
		return tx.Model(&report).Updates(map[string]interface{}{
			"status":       report.Status,
			"action_taken": action,
			"reviewed_at":  now,
			"reviewed_by":  adminID,
		}).Error
	})
	if err != nil {
		return nil, err
	}

	s.notifications.TryNotify(Notice{
		RecipientID: report.ReporterID,
		Type:        models.NotifyReportUpdate,
		EntityID:    &report.ID,
		Metadata:    map[string]interface{}{"action": action},
	})
	return &report, nil
}

func removeReportedContent(tx *gorm.DB, report *models.Report, now time.Time) error {
	reason := models.RemovedByAdmin
	if report.PostID != nil {
		return tx.Model(&models.Post{}).
			Where("id = ? AND is_removed = false", *report.PostID).
			Updates(map[string]interface{}{
				"is_removed":     true,
				"removed_reason": reason,
				"removed_at":     now,
			}).Error
	}
	if report.CommentID == nil {
		return nil
	}

	var comment models.Comment
	if err := tx.First(&comment, "id = ?", *report.CommentID).Error; err != nil {
		return nil
	}
	if comment.IsRemoved {
		return nil
	}
	if err := tx.Model(&comment).Updates(map[string]interface{}{
		"is_removed":     true,
		"removed_reason": reason,
	}).Error; err != nil {
		return err
	}
	return tx.Model(&models.Post{}).Where("id = ?", comment.PostID).
		UpdateColumn("comment_count", gorm.Expr("GREATEST(comment_count - 1, 0)")).Error
}

func (s *ModerationService) ListUsers(search string, limit, offset int) ([]models.User, int64, error) {
	var users []models.User
	var total int64

	query := s.db.Model(&models.User{})
	if search = strings.TrimSpace(search); search != "" {
		like := "%" + search + "%"
		query = query.Where("username ILIKE ? OR email ILIKE ?", like, like)
	}
	query.Count(&total)

	if err := query.Order("created_at DESC").Limit(limit).Offset(offset).Find(&users).Error; err != nil {
		return nil, 0, err
	}
	return users, total, nil
}

// SetBan bans or unbans a user. Banning also revokes their refresh tokens.
func (s *ModerationService) SetBan(userID uuid.UUID, banned bool, reason string) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}

	var banReason *string
	if banned {
		r := strings.TrimSpace(reason)
		if r == "" {
			r = "Banned by admin"
		}
		banReason = &r
	}

	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Model(&user).Updates(map[string]interface{}{
			"is_banned":  banned,
			"ban_reason": banReason,
		}).Error; err != nil {
			return err
		}
		if banned {
			return tx.Model(&models.RefreshToken{}).Where("user_id = ? AND revoked_at IS NULL", userID).
				Update("revoked_at", time.Now().UTC()).Error
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	user.IsBanned = banned
	user.BanReason = banReason
	return &user, nil
}

// FindUserByUsername matches case-insensitively.
func (s *ModerationService) FindUserByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("lower(username) = lower(?)", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

func (s *ModerationService) Stats() (*dto.ModerationStats, error) {
	var stats dto.ModerationStats
	since := time.Now().UTC().Add(-24 * time.Hour)

	counts := []struct {
		dst   *int64
		query *gorm.DB
	}{
		{&stats.TotalUsers, s.db.Model(&models.User{})},
		{&stats.BannedUsers, s.db.Model(&models.User{}).Where("is_banned = true")},
		{&stats.TotalPosts, s.db.Model(&models.Post{}).Where("is_removed = false")},
		{&stats.PostsLast24h, s.db.Model(&models.Post{}).Where("created_at >= ?", since)},
		{&stats.TotalComments, s.db.Model(&models.Comment{}).Where("is_removed = false")},
		{&stats.PendingReports, s.db.Model(&models.Report{}).Where("status = ?", models.ReportPending)},
	}
	for _, c := range counts {
		if err := c.query.Count(c.dst).Error; err != nil {
			return nil, err
		}
	}
	return &stats, nil
}

func (s *ModerationService) BlockUser(blockerID, blockedID uuid.UUID) error {
	if blockerID == blockedID {
		return ErrSelfBlock
	}

	var target int64
	s.db.Model(&models.User{}).Where("id = ?", blockedID).Count(&target)
	if target == 0 {
		return ErrUserNotFound
	}

	block := models.Block{
		ID:        uuid.New(),
		BlockerID: blockerID,
		BlockedID: blockedID,
	}
	if err := s.db.Create(&block).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return ErrAlreadyBlocked
		}
		return err
	}
	return nil
}

func (s *ModerationService) UnblockUser(blockerID, blockedID uuid.UUID) error {
	return s.db.Where("blocker_id = ? AND blocked_id = ?", blockerID, blockedID).
		Delete(&models.Block{}).Error
}

// GetBlockedIDs lists the users whose content the viewer should not see.
func (s *ModerationService) GetBlockedIDs(userID uuid.UUID) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	if userID == uuid.Nil {
		return ids, nil
	}
	if err := s.db.Model(&models.Block{}).Where("blocker_id = ?", userID).Pluck("blocked_id", &ids).Error; err != nil {
		return nil, err
	}
	return ids, nil
}

// ListBlocked returns the authors the user has blocked.
func (s *ModerationService) ListBlocked(userID uuid.UUID) ([]models.User, error) {
	var users []models.User
	err := s.db.Joins("JOIN blocks ON blocks.blocked_id = users.id").
		Where("blocks.blocker_id = ?", userID).
		Order("blocks.created_at DESC").
		Find(&users).Error
	return users, err
}
