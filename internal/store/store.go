package store

import (
	"fmt"

	"gorm.io/gorm"

	"guild-relay-go/internal/model"
)

// Store implements the settings-store contract over the database: guild
// settings, rules, daily counters and the forward log.
type Store struct {
	db *gorm.DB
}

func New(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SetupNewGuild creates the default settings document for a guild. Calling it
// again for a known guild is a no-op and returns the existing settings.
func (s *Store) SetupNewGuild(guildID, guildName string) (*model.GuildSettings, error) {
	existing, err := s.GetGuildSettings(guildID)
	if err == nil {
		return existing, nil
	}
	if err != gorm.ErrRecordNotFound {
		return nil, err
	}

	settings := model.DefaultGuildSettings(guildID, guildName)
	if err := s.db.Create(settings).Error; err != nil {
		return nil, fmt.Errorf("failed to create guild settings: %w", err)
	}
	return settings, nil
}

// GetGuildSettings returns a guild's settings with its rules loaded in
// evaluation order. Returns gorm.ErrRecordNotFound for unknown guilds.
func (s *Store) GetGuildSettings(guildID string) (*model.GuildSettings, error) {
	var settings model.GuildSettings
	result := s.db.Where("guild_id = ?", guildID).First(&settings)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return nil, gorm.ErrRecordNotFound
		}
		return nil, fmt.Errorf("failed to get guild settings: %w", result.Error)
	}

	rules, err := s.ListRules(guildID)
	if err != nil {
		return nil, err
	}
	settings.Rules = rules
	return &settings, nil
}

// UpdateFeatures replaces a guild's feature flag map.
func (s *Store) UpdateFeatures(guildID string, features map[string]bool) error {
	result := s.db.Model(&model.GuildSettings{}).
		Where("guild_id = ?", guildID).
		Update("features", features)
	if result.Error != nil {
		return fmt.Errorf("failed to update features: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// ListRules returns a guild's rules ordered by evaluation priority.
func (s *Store) ListRules(guildID string) ([]model.ForwardRule, error) {
	var rules []model.ForwardRule
	result := s.db.Where("guild_id = ?", guildID).Order("position asc, created_at asc").Find(&rules)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list rules: %w", result.Error)
	}
	return rules, nil
}

// AppendRule persists a rule at the end of the guild's evaluation order.
func (s *Store) AppendRule(rule *model.ForwardRule) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		var maxPos *int
		if err := tx.Model(&model.ForwardRule{}).
			Where("guild_id = ?", rule.GuildID).
			Select("MAX(position)").Scan(&maxPos).Error; err != nil {
			return fmt.Errorf("failed to determine rule position: %w", err)
		}
		if maxPos != nil {
			rule.Position = *maxPos + 1
		}
		if err := tx.Create(rule).Error; err != nil {
			return fmt.Errorf("failed to create rule: %w", err)
		}
		return nil
	})
}

// SetRuleActive flips a rule's active flag.
func (s *Store) SetRuleActive(guildID, ruleID string, active bool) error {
	result := s.db.Model(&model.ForwardRule{}).
		Where("guild_id = ? AND rule_id = ?", guildID, ruleID).
		Update("is_active", active)
	if result.Error != nil {
		return fmt.Errorf("failed to update rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// DeleteRule removes a rule from a guild.
func (s *Store) DeleteRule(guildID, ruleID string) error {
	result := s.db.Where("guild_id = ? AND rule_id = ?", guildID, ruleID).
		Delete(&model.ForwardRule{})
	if result.Error != nil {
		return fmt.Errorf("failed to delete rule: %w", result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// GetDailyMessageCount returns the guild's forwarded-message count since the
// last reset. Unknown guilds count as zero.
func (s *Store) GetDailyMessageCount(guildID string) (int, error) {
	var counter model.DailyCounter
	result := s.db.Where("guild_id = ?", guildID).First(&counter)
	if result.Error != nil {
		if result.Error == gorm.ErrRecordNotFound {
			return 0, nil
		}
		return 0, fmt.Errorf("failed to get daily count: %w", result.Error)
	}
	return counter.Count, nil
}

// LogForwardedMessage appends a forward-log record and, on success, bumps the
// guild's daily counter in the same transaction.
func (s *Store) LogForwardedMessage(entry *model.ForwardLog) error {
	return s.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(entry).Error; err != nil {
			return fmt.Errorf("failed to log forwarded message: %w", err)
		}
		if !entry.Success {
			return nil
		}

		var counter model.DailyCounter
		err := tx.Where("guild_id = ?", entry.GuildID).First(&counter).Error
		if err == gorm.ErrRecordNotFound {
			counter = model.DailyCounter{GuildID: entry.GuildID, Count: 1}
			if err := tx.Create(&counter).Error; err != nil {
				return fmt.Errorf("failed to create daily counter: %w", err)
			}
			return nil
		}
		if err != nil {
			return fmt.Errorf("failed to load daily counter: %w", err)
		}

		if err := tx.Model(&counter).Update("count", gorm.Expr("count + 1")).Error; err != nil {
			return fmt.Errorf("failed to increment daily counter: %w", err)
		}
		return nil
	})
}

// ResetDailyCounters zeroes every guild's counter. Invoked by the scheduler
// once a day.
func (s *Store) ResetDailyCounters() (int64, error) {
	result := s.db.Model(&model.DailyCounter{}).Where("count > 0").Update("count", 0)
	if result.Error != nil {
		return 0, fmt.Errorf("failed to reset daily counters: %w", result.Error)
	}
	return result.RowsAffected, nil
}

// ListLogs returns the most recent forward-log entries for a guild.
func (s *Store) ListLogs(guildID string, limit int) ([]model.ForwardLog, error) {
	if limit <= 0 {
		limit = 50
	}
	var logs []model.ForwardLog
	result := s.db.Where("guild_id = ?", guildID).
		Order("created_at desc").Limit(limit).Find(&logs)
	if result.Error != nil {
		return nil, fmt.Errorf("failed to list logs: %w", result.Error)
	}
	return logs, nil
}
