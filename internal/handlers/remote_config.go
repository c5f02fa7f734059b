package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"

	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/dto"
	"github.com/ahmetcoskunkizilkaya/sussurro-backend/internal/models"
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var settingTypes = map[string]bool{"string": true, "bool": true, "int": true, "json": true}

// DefaultSettings are created at boot when missing. Existing values are
// never overwritten.
var DefaultSettings = []models.Setting{
	{Key: "maintenance_mode", Value: "false", Type: "bool"},
	{Key: "announcement_title", Value: "", Type: "string"},
	{Key: "announcement_message", Value: "", Type: "string"},
}

type RemoteConfigHandler struct {
	db *gorm.DB
}

func NewRemoteConfigHandler(db *gorm.DB) *RemoteConfigHandler {
	return &RemoteConfigHandler{db: db}
}

// GetConfig returns every setting decoded to its declared type.
func (h *RemoteConfigHandler) GetConfig(c *fiber.Ctx) error {
	values, err := h.Values()
	if err != nil {
		return internalError(c, "get_config", err)
	}
	return c.JSON(values)
}

func (h *RemoteConfigHandler) Values() (map[string]interface{}, error) {
	var settings []models.Setting
	if err := h.db.Order("key").Find(&settings).Error; err != nil {
		return nil, err
	}

	result := make(map[string]interface{}, len(settings))
	for _, s := range settings {
		v, err := decodeSetting(s.Type, s.Value)
		if err != nil {
			// Stored before validation existed; serve the raw string.
			v = s.Value
		}
		result[s.Key] = v
	}
	return result, nil
}

func decodeSetting(typ, raw string) (interface{}, error) {
	switch typ {
	case "bool":
		return strconv.ParseBool(raw)
	case "int":
		return strconv.Atoi(raw)
	case "json":
		var v interface{}
		if err := json.Unmarshal([]byte(raw), &v); err != nil {
			return nil, err
		}
		return v, nil
	default:
		return raw, nil
	}
}

// SetConfigKey creates or replaces a setting (admin only).
func (h *RemoteConfigHandler) SetConfigKey(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" || len(key) > 100 {
		return badRequest(c, "Key parameter is required")
	}

	var payload struct {
		Value string `json:"value"`
		Type  string `json:"type"`
	}
	if err := c.BodyParser(&payload); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if payload.Type == "" {
		payload.Type = "string"
	}
	if !settingTypes[payload.Type] {
		return badRequest(c, "type must be one of string, bool, int, json")
	}
	if _, err := decodeSetting(payload.Type, payload.Value); err != nil {
		return badRequest(c, fmt.Sprintf("value is not a valid %s", payload.Type))
	}

	setting := models.Setting{ID: uuid.New(), Key: key, Value: payload.Value, Type: payload.Type}
	err := h.db.Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "key"}},
		DoUpdates: clause.AssignmentColumns([]string{"value", "type", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return internalError(c, "set_config", err)
	}

	return c.JSON(fiber.Map{
		"error":   false,
		"message": "Config updated successfully",
		"config": fiber.Map{
			"key":   setting.Key,
			"value": setting.Value,
			"type":  setting.Type,
		},
	})
}

// DeleteConfigKey removes a setting (admin only).
func (h *RemoteConfigHandler) DeleteConfigKey(c *fiber.Ctx) error {
	key := c.Params("key")
	if key == "" {
		return badRequest(c, "Key parameter is required")
	}

	result := h.db.Where("key = ?", key).Delete(&models.Setting{})
	if result.Error != nil {
		return internalError(c, "delete_config", result.Error)
	}
	if result.RowsAffected == 0 {
		return c.Status(fiber.StatusNotFound).JSON(dto.ErrorResponse{
			Error:   true,
			Message: "Config not found",
		})
	}

	return c.JSON(fiber.Map{
		"error":   false,
		"message": "Config deleted successfully",
	})
}

// SeedDefaults inserts DefaultSettings that are not present yet.
func (h *RemoteConfigHandler) SeedDefaults() error {
	for _, d := range DefaultSettings {
		var existing models.Setting
		err := h.db.Where("key = ?", d.Key).First(&existing).Error
		if err == nil {
			continue
		}
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			return err
		}
		s := d
		s.ID = uuid.New()
		if err := h.db.Create(&s).Error; err != nil {
			return fmt.Errorf("seed setting %q: %w", d.Key, err)
		}
	}
	return nil
}
