package services

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"Hacknox/database"
	"Hacknox/dto"
	"Hacknox/models"
	"Hacknox/utils"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const publicLeaderboardTTL = time.Minute

func publicLeaderboardKey(hackathonID uint32) string {
	return fmt.Sprintf("leaderboard:%d:public", hackathonID)
}

// purgeLeaderboardCache drops every cached leaderboard view of the hackathon.
func purgeLeaderboardCache(ctx context.Context, hackathonID uint32) {
	if database.RDB == nil {
		return
	}
	keys, err := database.RDB.Keys(ctx, fmt.Sprintf("leaderboard:%d:*", hackathonID)).Result()
	if err != nil {
		log.Warn().Err(err).Uint32("hackathon_id", hackathonID).Msg("list leaderboard cache keys")
		return
	}
	if len(keys) > 0 {
		if err := database.RDB.Del(ctx, keys...).Err(); err != nil {
			log.Warn().Err(err).Uint32("hackathon_id", hackathonID).Msg("clear leaderboard cache")
			return
		}
		log.Debug().Int("keys", len(keys)).Uint32("hackathon_id", hackathonID).Msg("cleared leaderboard cache")
	}
}

// AggregateScores rebuilds TeamScore from submitted evaluations. Drafts do not
// count and teams without a submitted evaluation get no row.
func AggregateScores(ctx context.Context, hackathonID uint32) ([]models.TeamScore, error) {
	hackathon, err := GetHackathon(ctx, hackathonID)
	if err != nil {
		return nil, err
	}
	weights := hackathon.ScoringWeights.Data()

	type aggRow struct {
		TeamID          uint32
		AvgInnovation   float64
		AvgFeasibility  float64
		AvgExecution    float64
		AvgPresentation float64
		N               int
	}
	var rows []aggRow
	err = db(ctx).Model(&models.Evaluation{}).
		Select("team_id, AVG(innovation) AS avg_innovation, AVG(feasibility) AS avg_feasibility, AVG(execution) AS avg_execution, AVG(presentation) AS avg_presentation, COUNT(*) AS n").
		Where("hackathon_id = ? AND status = ?", hackathonID, models.EvaluationSubmitted).
		Group("team_id").
		Order("team_id asc").
		Scan(&rows).Error
	if err != nil {
		return nil, utils.Wrap(err, "aggregate evaluations")
	}

	scores := make([]models.TeamScore, 0, len(rows))
	for _, r := range rows {
		means := SubScoreMeans{
			Innovation:   r.AvgInnovation,
			Feasibility:  r.AvgFeasibility,
			Execution:    r.AvgExecution,
			Presentation: r.AvgPresentation,
		}
		scores = append(scores, models.TeamScore{
			HackathonID:      hackathonID,
			TeamID:           r.TeamID,
			AvgInnovation:    round4(r.AvgInnovation),
			AvgFeasibility:   round4(r.AvgFeasibility),
			AvgExecution:     round4(r.AvgExecution),
			AvgPresentation:  round4(r.AvgPresentation),
			CompositeScore:   CompositeScore(means, weights),
			EvaluationsCount: r.N,
		})
	}

	err = db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hackathon_id = ?", hackathonID).Delete(&models.TeamScore{}).Error; err != nil {
			return err
		}
		if len(scores) == 0 {
			return nil
		}
		return tx.Create(&scores).Error
	})
	if err != nil {
		return nil, utils.Wrap(err, "store team scores")
	}
	purgeLeaderboardCache(ctx, hackathonID)
	return scores, nil
}

// ComputeLeaderboard ranks the current TeamScore rows and replaces the stored leaderboard.
func ComputeLeaderboard(ctx context.Context, hackathonID uint32) ([]models.LeaderboardEntry, error) {
	type candidateRow struct {
		TeamID         uint32
		TeamName       string
		CompositeScore float64
		SubmittedAt    *time.Time
	}
	var rows []candidateRow
	err := db(ctx).Table("team_scores").
		Select("team_scores.team_id, teams.name AS team_name, team_scores.composite_score, submissions.submitted_at").
		Joins("JOIN teams ON teams.id = team_scores.team_id").
		Joins("LEFT JOIN submissions ON submissions.team_id = team_scores.team_id AND submissions.hackathon_id = team_scores.hackathon_id").
		Where("team_scores.hackathon_id = ?", hackathonID).
		Scan(&rows).Error
	if err != nil {
		return nil, utils.Wrap(err, "load team scores")
	}

	candidates := make([]RankCandidate, len(rows))
	for i, r := range rows {
		candidates[i] = RankCandidate{TeamID: r.TeamID, TeamName: r.TeamName, Composite: r.CompositeScore, SubmittedAt: r.SubmittedAt}
	}
	entries := RankTeams(hackathonID, candidates)

	err = db(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("hackathon_id = ?", hackathonID).Delete(&models.LeaderboardEntry{}).Error; err != nil {
			return err
		}
		if len(entries) == 0 {
			return nil
		}
		return tx.Create(&entries).Error
	})
	if err != nil {
		return nil, utils.Wrap(err, "store leaderboard")
	}
	purgeLeaderboardCache(ctx, hackathonID)
	return entries, nil
}

func leaderboardSetting(ctx context.Context, hackathonID uint32) (*models.LeaderboardSetting, error) {
	var setting models.LeaderboardSetting
	err := db(ctx).Where("hackathon_id = ?", hackathonID).First(&setting).Error
	if utils.IsNotFound(err) {
		return &models.LeaderboardSetting{HackathonID: hackathonID}, nil
	}
	if err != nil {
		return nil, err
	}
	return &setting, nil
}

func loadLeaderboard(ctx context.Context, hackathonID uint32) ([]dto.LeaderboardEntryResp, error) {
	var entries []models.LeaderboardEntry
	if err := db(ctx).Where("hackathon_id = ?", hackathonID).Order(clause.OrderByColumn{Column: clause.Column{Name: "rank"}}).Find(&entries).Error; err != nil {
		return nil, err
	}
	out := make([]dto.LeaderboardEntryResp, len(entries))
	for i, e := range entries {
		out[i] = dto.LeaderboardEntryResp{
			Rank:           e.Rank,
			TeamID:         e.TeamID,
			TeamName:       e.TeamName,
			CompositeScore: e.CompositeScore,
			SubmittedAt:    e.SubmittedAt,
		}
	}
	return out, nil
}

// GetLeaderboard is the admin view: always the stored rows plus the publish state.
func GetLeaderboard(ctx context.Context, hackathonID uint32) (*dto.LeaderboardResp, error) {
	setting, err := leaderboardSetting(ctx, hackathonID)
	if err != nil {
		return nil, utils.Wrap(err, "load leaderboard setting")
	}
	entries, err := loadLeaderboard(ctx, hackathonID)
	if err != nil {
		return nil, utils.Wrap(err, "load leaderboard")
	}
	return &dto.LeaderboardResp{
		HackathonID: hackathonID,
		Published:   setting.IsPublished,
		PublishedAt: setting.PublishedAt,
		Entries:     entries,
	}, nil
}

// SetLeaderboardPublished flips the public visibility flag.
func SetLeaderboardPublished(ctx context.Context, hackathonID, adminID uint32, published bool) (*models.LeaderboardSetting, error) {
	t := now()
	setting := models.LeaderboardSetting{
		HackathonID: hackathonID,
		IsPublished: published,
		PublishedBy: &adminID,
		PublishedAt: &t,
	}
	err := db(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "hackathon_id"}},
		DoUpdates: clause.AssignmentColumns([]string{"is_published", "published_by", "published_at", "updated_at"}),
	}).Create(&setting).Error
	if err != nil {
		return nil, utils.Wrap(err, "update leaderboard setting")
	}
	purgeLeaderboardCache(ctx, hackathonID)
	return &setting, nil
}

// PublicLeaderboard returns the ranked rows only while the leaderboard is
// published, otherwise an empty unpublished structure. Results are cached in Redis.
func PublicLeaderboard(ctx context.Context, hackathonID uint32) (*dto.LeaderboardResp, error) {
	key := publicLeaderboardKey(hackathonID)
	if database.RDB != nil {
		cached, err := database.RDB.Get(ctx, key).Bytes()
		if err == nil {
			var resp dto.LeaderboardResp
			if json.Unmarshal(cached, &resp) == nil {
				return &resp, nil
			}
		} else if !errors.Is(err, redis.Nil) {
			log.Warn().Err(err).Str("key", key).Msg("read leaderboard cache")
		}
	}

	if _, err := GetPublicHackathon(ctx, hackathonID); err != nil {
		return nil, err
	}
	setting, err := leaderboardSetting(ctx, hackathonID)
	if err != nil {
		return nil, utils.Wrap(err, "load leaderboard setting")
	}
	resp := &dto.LeaderboardResp{HackathonID: hackathonID, Published: setting.IsPublished, Entries: []dto.LeaderboardEntryResp{}}
	if setting.IsPublished {
		resp.PublishedAt = setting.PublishedAt
		if resp.Entries, err = loadLeaderboard(ctx, hackathonID); err != nil {
			return nil, utils.Wrap(err, "load leaderboard")
		}
	}

	if database.RDB != nil {
		if payload, err := json.Marshal(resp); err == nil {
			if err := database.RDB.Set(ctx, key, payload, publicLeaderboardTTL).Err(); err != nil {
				log.Warn().Err(err).Str("key", key).Msg("write leaderboard cache")
			}
		}
	}
	return resp, nil
}
