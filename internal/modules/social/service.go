package social

import (
	"errors"
	"strings"
	"time"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/database"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/services"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var ErrSelfFollow = errors.New("you cannot follow yourself")

const (
	ListPageSize = 30
	maxPage      = 10000
)

// Profile is the public view of an account.
type Profile struct {
	ID                 uuid.UUID `json:"id"`
	Username           string    `json:"username"`
	AvatarType         string    `json:"avatar_type"`
	AvatarValue        string    `json:"avatar_value"`
	Bio                string    `json:"bio"`
	TotalPosts         int       `json:"total_posts"`
	TotalLikesReceived int       `json:"total_likes_received"`
	FollowerCount      int       `json:"follower_count"`
	FollowingCount     int       `json:"following_count"`
	CreatedAt          time.Time `json:"created_at"`
	IsFollowing        bool      `json:"is_following"`
	IsSelf             bool      `json:"is_self"`
}

// Member is a row in a followers/following list.
type Member struct {
	ID uuid.UUID `json:"id"`
	models.Author
	FollowedAt time.Time `json:"followed_at"`
}

type MemberPage struct {
	Data       []Member `json:"data"`
	NextCursor *int     `json:"next_cursor"`
}

type UpdateProfileRequest struct {
	Username *string `json:"username"`
	Bio      *string `json:"bio"`
	Avatar   *string `json:"avatar"`
}

type SocialService struct {
	db            *gorm.DB
	auth          *services.AuthService
	notifications *services.NotificationService
}

func NewSocialService(db *gorm.DB, auth *services.AuthService, notifications *services.NotificationService) *SocialService {
	return &SocialService{db: db, auth: auth, notifications: notifications}
}

// ToggleFollow follows or unfollows target and reports the new state. Both
// users' counters move in the same transaction as the follow row.
func (s *SocialService) ToggleFollow(followerID, targetID uuid.UUID) (bool, error) {
	if followerID == targetID {
		return false, ErrSelfFollow
	}

	following := false
	err := s.db.Transaction(func(tx *gorm.DB) error {
		if err := database.LockKey(tx, "follow", followerID.String(), targetID.String()); err != nil {
			return err
		}
		var count int64
		tx.Model(&models.User{}).Where("id = ?", targetID).Count(&count)
		if count == 0 {
			return services.ErrUserNotFound
		}

		removed := tx.Where("follower_id = ? AND following_id = ?", followerID, targetID).Delete(&models.Follow{})
		if removed.Error != nil {
			return removed.Error
		}
		delta := -1
		if removed.RowsAffected == 0 {
			delta = 1
			following = true
			if err := tx.Create(&models.Follow{ID: uuid.New(), FollowerID: followerID, FollowingID: targetID}).Error; err != nil {
				return err
			}
		}

		if err := tx.Model(&models.User{}).Where("id = ?", targetID).
			UpdateColumn("follower_count", gorm.Expr("follower_count + ?", delta)).Error; err != nil {
			return err
		}
		return tx.Model(&models.User{}).Where("id = ?", followerID).
			UpdateColumn("following_count", gorm.Expr("following_count + ?", delta)).Error
	})
	if err != nil {
		return false, err
	}

	if following {
		s.notifications.TryNotify(services.Notice{
			RecipientID: targetID,
			ActorID:     &followerID,
			Type:        models.NotifyFollow,
			EntityID:    &followerID,
		})
	}
	return following, nil
}

func (s *SocialService) findByUsername(username string) (*models.User, error) {
	var user models.User
	if err := s.db.Where("lower(username) = lower(?)", strings.TrimSpace(username)).First(&user).Error; err != nil {
		return nil, services.ErrUserNotFound
	}
	return &user, nil
}

func (s *SocialService) Profile(viewer uuid.UUID, username string) (*Profile, error) {
	user, err := s.findByUsername(username)
	if err != nil {
		return nil, err
	}

	p := &Profile{
		ID:                 user.ID,
		Username:           user.Username,
		AvatarType:         user.AvatarType,
		AvatarValue:        user.AvatarValue,
		Bio:                user.Bio,
		TotalPosts:         user.TotalPosts,
		TotalLikesReceived: user.TotalLikesReceived,
		FollowerCount:      user.FollowerCount,
		FollowingCount:     user.FollowingCount,
		CreatedAt:          user.CreatedAt,
		IsSelf:             viewer == user.ID,
	}
	if viewer != uuid.Nil && !p.IsSelf {
		var n int64
		s.db.Model(&models.Follow{}).Where("follower_id = ? AND following_id = ?", viewer, user.ID).Count(&n)
		p.IsFollowing = n > 0
	}
	return p, nil
}

// Followers lists who follows username, most recent first.
func (s *SocialService) Followers(username string, page int) (*MemberPage, error) {
	return s.members(username, page, "follows.following_id = ?", "follows.follower_id")
}

// Following lists who username follows, most recent first.
func (s *SocialService) Following(username string, page int) (*MemberPage, error) {
	return s.members(username, page, "follows.follower_id = ?", "follows.following_id")
}

func (s *SocialService) members(username string, page int, where, joinColumn string) (*MemberPage, error) {
	if page < 1 {
		page = 1
	}
	if page > maxPage {
		page = maxPage
	}
	user, err := s.findByUsername(username)
	if err != nil {
		return nil, err
	}

	var rows []struct {
		ID          uuid.UUID
		Username    string
		AvatarType  string
		AvatarValue string
		CreatedAt   time.Time
	}
	err = s.db.Table("follows").
		Select("users.id, users.username, users.avatar_type, users.avatar_value, follows.created_at").
		Joins("JOIN users ON users.id = "+joinColumn+" AND users.deleted_at IS NULL").
		Where(where, user.ID).
		Order("follows.created_at DESC").
		Offset((page - 1) * ListPageSize).Limit(ListPageSize).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	out := &MemberPage{Data: make([]Member, len(rows))}
	for i, r := range rows {
		out.Data[i] = Member{
			ID:         r.ID,
			Author:     models.Author{Username: r.Username, AvatarType: r.AvatarType, AvatarValue: r.AvatarValue},
			FollowedAt: r.CreatedAt,
		}
	}
	if len(rows) == ListPageSize {
		next := page + 1
		out.NextCursor = &next
	}
	return out, nil
}

// UpdateProfile changes the fields present in req.
func (s *SocialService) UpdateProfile(userID uuid.UUID, req UpdateProfileRequest) (*Profile, error) {
	var user models.User
	if err := s.db.First(&user, "id = ?", userID).Error; err != nil {
		return nil, services.ErrUserNotFound
	}

	updates := map[string]interface{}{}
	username := user.Username
	if req.Username != nil {
		name := strings.TrimSpace(*req.Username)
		if err := services.ValidateUsername(name); err != nil {
			return nil, err
		}
		if !strings.EqualFold(name, user.Username) && !s.auth.UsernameAvailable(name) {
			return nil, services.ErrUsernameTaken
		}
		updates["username"] = name
		username = name
	}
	if req.Bio != nil {
		bio := strings.TrimSpace(*req.Bio)
		if err := services.ValidateBio(bio); err != nil {
			return nil, err
		}
		updates["bio"] = bio
	}
	if req.Avatar != nil {
		avatar, err := services.NormalizeAvatar(*req.Avatar)
		if err != nil {
			return nil, err
		}
		updates["avatar_value"] = avatar
	}

	if len(updates) > 0 {
		if err := s.db.Model(&user).Updates(updates).Error; err != nil {
			if errors.Is(err, gorm.ErrDuplicatedKey) {
				return nil, services.ErrUsernameTaken
			}
			return nil, err
		}
	}
	return s.Profile(userID, username)
}
