package services

import (
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/config"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"
	"gorm.io/gorm"
)

const (
	accountDeleted   = "account_deleted"
	battleVotesTable = "battle_votes"
)

var (
	ErrEmailTaken         = errors.New("email already registered")
	ErrUsernameTaken      = errors.New("username already taken")
	ErrInvalidCredentials = errors.New("invalid email or password")
	ErrInvalidToken       = errors.New("invalid or expired refresh token")
	ErrUserNotFound       = errors.New("user not found")
	ErrPasswordRequired   = errors.New("password is required")
)

type AuthService struct {
	db  *gorm.DB
	cfg *config.Config
}

func NewAuthService(db *gorm.DB, cfg *config.Config) *AuthService {
	return &AuthService{db: db, cfg: cfg}
}

func (s *AuthService) Register(req *dto.RegisterRequest) (*dto.AuthResponse, error) {
	email := NormalizeEmail(req.Email)
	username := strings.TrimSpace(req.Username)

	if err := ValidateEmail(email); err != nil {
		return nil, err
	}
	if err := ValidatePassword(req.Password); err != nil {
		return nil, err
	}
	if err := ValidateUsername(username); err != nil {
		return nil, err
	}
	avatar, err := NormalizeAvatar(req.Avatar)
	if err != nil {
		return nil, err
	}

	var count int64
	s.db.Model(&models.User{}).Unscoped().Where("email = ?", email).Count(&count)
	if count > 0 {
		return nil, ErrEmailTaken
	}
	if !s.UsernameAvailable(username) {
		return nil, ErrUsernameTaken
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(req.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	user := models.User{
		ID:          uuid.New(),
		Email:       email,
		Username:    username,
		Password:    string(hash),
		AvatarType:  "icon",
		AvatarValue: avatar,
		Role:        "user",
	}

	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, s.duplicateCause(email)
		}
		return nil, fmt.Errorf("failed to create user: %w", err)
	}

	return s.generateTokenPair(&user)
}

// duplicateCause tells which unique column a lost insert race collided on.
func (s *AuthService) duplicateCause(email string) error {
	var count int64
	s.db.Model(&models.User{}).Unscoped().Where("email = ?", email).Count(&count)
	if count > 0 {
		return ErrEmailTaken
	}
	return ErrUsernameTaken
}

// UsernameAvailable compares case-insensitively, including deleted accounts.
func (s *AuthService) UsernameAvailable(username string) bool {
	var count int64
	s.db.Model(&models.User{}).Unscoped().Where("lower(username) = lower(?)", strings.TrimSpace(username)).Count(&count)
	return count == 0
}

func (s *AuthService) Login(req *dto.LoginRequest) (*dto.AuthResponse, error) {
	var user models.User
	if err := s.db.Where("email = ?", NormalizeEmail(req.Email)).First(&user).Error; err != nil {
		return nil, ErrInvalidCredentials
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(req.Password)); err != nil {
		return nil, ErrInvalidCredentials
	}

	return s.generateTokenPair(&user)
}

// Refresh rotates a refresh token. The old token is revoked with a guarded
// update, so when two requests race with the same token only one wins.
func (s *AuthService) Refresh(req *dto.RefreshRequest) (*dto.AuthResponse, error) {
	var stored models.RefreshToken
	if err := s.db.Where("token_hash = ?", hashToken(req.RefreshToken)).First(&stored).Error; err != nil {
		return nil, ErrInvalidToken
	}
	now := time.Now().UTC()
	if !stored.Active(now) {
		return nil, ErrInvalidToken
	}

	revoked := s.db.Model(&models.RefreshToken{}).
		Where("id = ? AND revoked_at IS NULL", stored.ID).
		Update("revoked_at", now)
	if revoked.Error != nil {
		return nil, revoked.Error
	}
	if revoked.RowsAffected == 0 {
		return nil, ErrInvalidToken
	}

	var user models.User
	if err := s.db.First(&user, "id = ?", stored.UserID).Error; err != nil {
		return nil, ErrInvalidToken
	}

	return s.generateTokenPair(&user)
}

func (s *AuthService) Logout(req *dto.LogoutRequest) error {
	return s.db.Model(&models.RefreshToken{}).
		Where("token_hash = ? AND revoked_at IS NULL", hashToken(req.RefreshToken)).
		Update("revoked_at", time.Now().UTC()).Error
}

// Me returns the caller's own account.
func (s *AuthService) Me(userID uuid.UUID) (*models.User, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, ErrUserNotFound
	}
	return &user, nil
}

// DeleteAccount removes the user and every row that points at them, keeping
// the counters of other users and posts in step.
func (s *AuthService) DeleteAccount(userID uuid.UUID, password string) error {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return ErrUserNotFound
	}

	if password == "" {
		return ErrPasswordRequired
	}
	if err := bcrypt.CompareHashAndPassword([]byte(user.Password), []byte(password)); err != nil {
		return ErrInvalidCredentials
	}

	now := time.Now().UTC()
	return s.db.Transaction(func(tx *gorm.DB) error {
		steps := []*gorm.DB{
			tx.Exec(`UPDATE posts SET like_count = like_count - 1
				WHERE id IN (SELECT post_id FROM reactions WHERE user_id = ?)`, userID),
			tx.Exec(`UPDATE users SET total_likes_received = total_likes_received - s.n
				FROM (SELECT p.user_id, COUNT(*) AS n FROM reactions r JOIN posts p ON p.id = r.post_id
					WHERE r.user_id = ? GROUP BY p.user_id) s
				WHERE users.id = s.user_id`, userID),
			tx.Where("user_id = ?", userID).Delete(&models.Reaction{}),
			tx.Exec(`UPDATE comments SET like_count = like_count - 1
				WHERE id IN (SELECT comment_id FROM comment_likes WHERE user_id = ?)`, userID),
			tx.Where("user_id = ?", userID).Delete(&models.CommentLike{}),
			tx.Exec(`UPDATE users SET follower_count = follower_count - 1
				WHERE id IN (SELECT following_id FROM follows WHERE follower_id = ?)`, userID),
			tx.Exec(`UPDATE users SET following_count = following_count - 1
				WHERE id IN (SELECT follower_id FROM follows WHERE following_id = ?)`, userID),
			tx.Where("follower_id = ? OR following_id = ?", userID, userID).Delete(&models.Follow{}),
			tx.Where("user_id = ?", userID).Delete(&models.SavedPost{}),
			tx.Where("blocker_id = ? OR blocked_id = ?", userID, userID).Delete(&models.Block{}),
			tx.Where("recipient_id = ? OR actor_id = ?", userID, userID).Delete(&models.Notification{}),
			tx.Exec(`UPDATE posts SET comment_count = GREATEST(comment_count - s.n, 0)
				FROM (SELECT post_id, COUNT(*) AS n FROM comments
					WHERE user_id = ? AND is_removed = false GROUP BY post_id) s
				WHERE posts.id = s.post_id`, userID),
			tx.Model(&models.Comment{}).Where("user_id = ? AND is_removed = false", userID).Updates(map[string]interface{}{
				"is_removed":     true,
				"removed_reason": accountDeleted,
			}),
			tx.Exec(`UPDATE posts SET report_count = GREATEST(report_count - s.n, 0)
				FROM (SELECT post_id, COUNT(*) AS n FROM reports
					WHERE reporter_id = ? AND status = ? AND post_id IS NOT NULL GROUP BY post_id) s
				WHERE posts.id = s.post_id`, userID, models.ReportPending),
			tx.Exec(`UPDATE comments SET report_count = GREATEST(report_count - s.n, 0)
				FROM (SELECT comment_id, COUNT(*) AS n FROM reports
					WHERE reporter_id = ? AND status = ? AND comment_id IS NOT NULL GROUP BY comment_id) s
				WHERE comments.id = s.comment_id`, userID, models.ReportPending),
			tx.Where("reporter_id = ? AND status = ?", userID, models.ReportPending).Delete(&models.Report{}),
			tx.Where("user_id = ?", userID).Delete(&models.RefreshToken{}),
			tx.Model(&models.Post{}).Where("user_id = ? AND is_removed = false", userID).Updates(map[string]interface{}{
				"is_removed":     true,
				"removed_reason": accountDeleted,
				"removed_at":     now,
			}),
		}
		for _, step := range steps {
			if step.Error != nil {
				return step.Error
			}
		}
		if err := dropBattleVotes(tx, userID); err != nil {
			return err
		}
		return tx.Delete(&user).Error
	})
}

// dropBattleVotes removes the user's ballots and takes them back out of the
// battle totals. The arena tables only exist once that module is migrated.
func dropBattleVotes(tx *gorm.DB, userID uuid.UUID) error {
	if !tx.Migrator().HasTable(battleVotesTable) {
		return nil
	}
	return tx.Exec(`WITH gone AS (
			DELETE FROM battle_votes WHERE user_id = ? RETURNING battle_id, post_id
		)
		UPDATE post_battles b SET
			votes_a = GREATEST(b.votes_a - (SELECT COUNT(*) FROM gone g WHERE g.battle_id = b.id AND g.post_id = b.post_a_id), 0),
			votes_b = GREATEST(b.votes_b - (SELECT COUNT(*) FROM gone g WHERE g.battle_id = b.id AND g.post_id = b.post_b_id), 0)
		WHERE b.id IN (SELECT battle_id FROM gone)`, userID).Error
}

func (s *AuthService) generateTokenPair(user *models.User) (*dto.AuthResponse, error) {
	accessToken, err := s.generateAccessToken(user)
	if err != nil {
		return nil, err
	}

	refreshToken, err := s.generateRefreshToken(user)
	if err != nil {
		return nil, err
	}

	return &dto.AuthResponse{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		User:         ToUserResponse(user),
	}, nil
}

func ToUserResponse(user *models.User) dto.UserResponse {
	return dto.UserResponse{
		ID:          user.ID,
		Email:       user.Email,
		Username:    user.Username,
		AvatarType:  user.AvatarType,
		AvatarValue: user.AvatarValue,
		Role:        user.Role,
		IsBanned:    user.IsBanned,
	}
}

func (s *AuthService) generateAccessToken(user *models.User) (string, error) {
	claims := jwt.MapClaims{
		"sub":      user.ID.String(),
		"username": user.Username,
		"role":     user.Role,
		"iat":      time.Now().Unix(),
		"exp":      time.Now().Add(s.cfg.JWTAccessExpiry).Unix(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)
	return token.SignedString([]byte(s.cfg.JWTSecret))
}

func (s *AuthService) generateRefreshToken(user *models.User) (string, error) {
	rawBytes := make([]byte, 32)
	if _, err := rand.Read(rawBytes); err != nil {
		return "", fmt.Errorf("failed to generate random bytes: %w", err)
	}

	rawToken := base64.URLEncoding.EncodeToString(rawBytes)

	record := models.RefreshToken{
		ID:        uuid.New(),
		UserID:    user.ID,
		TokenHash: hashToken(rawToken),
		ExpiresAt: time.Now().Add(s.cfg.JWTRefreshExpiry),
	}

	if err := s.db.Create(&record).Error; err != nil {
		return "", fmt.Errorf("failed to store refresh token: %w", err)
	}

	return rawToken, nil
}

func hashToken(token string) string {
	h := sha256.Sum256([]byte(token))
	return fmt.Sprintf("%x", h)
}
