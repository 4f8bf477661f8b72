package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"game-hub/apperror"
	"game-hub/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const DefaultCommentRating = 5

type CommentService struct {
	DB *gorm.DB
}

func NewCommentService(db *gorm.DB) *CommentService {
	return &CommentService{DB: db}
}

type CommentInput struct {
	Content string `json:"content"`
	Rating  int    `json:"rating"`
}

// Create adds a review and refreshes the game's mean rating in the same transaction.
func (s *CommentService) Create(ctx context.Context, gameID, userID string, in CommentInput) (*models.Comment, error) {
	content := strings.TrimSpace(in.Content)
	if content == "" {
		return nil, apperror.ValidationFailed("content", "comment cannot be empty")
	}
	rating := in.Rating
	if rating == 0 {
		rating = DefaultCommentRating
	}
	if rating < 1 || rating > 5 {
		return nil, apperror.ValidationFailed("rating", "rating must be between 1 and 5")
	}

	comment := &models.Comment{
		ID:      uuid.NewString(),
		GameID:  gameID,
		UserID:  userID,
		Content: content,
		Rating:  rating,
	}

	err := s.DB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var game models.Game
		if err := tx.Select("id").First(&game, "id = ?", gameID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return apperror.NotFound("game", gameID)
			}
			return err
		}

		if err := tx.Create(comment).Error; err != nil {
			return err
		}

		var avg float64
		if err := tx.Model(&models.Comment{}).
			Where("game_id = ?", gameID).
			Select("AVG(rating)").
			Scan(&avg).Error; err != nil {
			return err
		}
		return tx.Model(&models.Game{}).Where("id = ?", gameID).UpdateColumn("rating", avg).Error
	})
	if err != nil {
		return nil, fmt.Errorf("comments.Create: %w", err)
	}
	return comment, nil
}

// ListByGame returns every comment for a game, newest first, with its author.
func (s *CommentService) ListByGame(ctx context.Context, gameID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.DB.WithContext(ctx).
		Preload("Author").
		Where("game_id = ?", gameID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("comments.ListByGame: %w", err)
	}
	return comments, nil
}

// ListByUser returns a user's comments, newest first, with the game they belong to.
func (s *CommentService) ListByUser(ctx context.Context, userID string) ([]models.Comment, error) {
	var comments []models.Comment
	err := s.DB.WithContext(ctx).
		Preload("Game", func(tx *gorm.DB) *gorm.DB {
			return tx.Select("id", "title")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").
		Find(&comments).Error
	if err != nil {
		return nil, fmt.Errorf("comments.ListByUser: %w", err)
	}
	return comments, nil
}
