// models/game.go
package models

import (
	"time"

	"gorm.io/datatypes"
)

type Category string

const (
	CategoryAction     Category = "action"
	CategoryAdventure  Category = "adventure"
	CategoryPuzzle     Category = "puzzle"
	CategoryRPG        Category = "rpg"
	CategoryStrategy   Category = "strategy"
	CategorySimulation Category = "simulation"
	CategoryArcade     Category = "arcade"

	// CategoryAll is a filter value only, never stored on a game.
	CategoryAll Category = "all"
)

var Categories = []Category{
	CategoryAction,
	CategoryAdventure,
	CategoryPuzzle,
	CategoryRPG,
	CategoryStrategy,
	CategorySimulation,
	CategoryArcade,
}

func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

type SortKey string

const (
	SortNewest    SortKey = "newest"
	SortRating    SortKey = "rating"
	SortDownloads SortKey = "downloads"
)

// ParseSort maps the accepted aliases onto a SortKey, falling back to newest.
func ParseSort(s string) SortKey {
	switch s {
	case "rating", "highest-rated":
		return SortRating
	case "downloads", "download_count", "most-downloaded":
		return SortDownloads
	default:
		return SortNewest
	}
}

type Requirements struct {
	Minimum     string `json:"minimum,omitempty"`
	Recommended string `json:"recommended,omitempty"`
}

type Game struct {
	ID          string   `json:"id" gorm:"primaryKey"`
	Title       string   `json:"title" gorm:"not null"`
	Slug        string   `json:"slug" gorm:"index"`
	Description string   `json:"description" gorm:"not null"`
	About       string   `json:"about,omitempty"`
	Category    Category `json:"category" gorm:"not null;index"`

	// Download reference: an uploaded object URL or an external link.
	FileURL string `json:"file_url" gorm:"not null"`

	ImageURL     *string                          `json:"image_url"`
	Screenshots  datatypes.JSONSlice[string]      `json:"screenshots"`
	Requirements datatypes.JSONType[Requirements] `json:"requirements"`

	DownloadCount int64   `json:"download_count" gorm:"not null;default:0"`
	Rating        float64 `json:"rating" gorm:"not null;default:0"`

	CreatedBy  string  `json:"created_by" gorm:"not null;index"`
	Creator    *Author `json:"creator,omitempty" gorm:"foreignKey:CreatedBy"`
	SteamAppID *int    `json:"steam_appid,omitempty" gorm:"index"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`
	UpdatedAt time.Time `json:"updated_at"`
}

type Comment struct {
	ID      string `json:"id" gorm:"primaryKey"`
	GameID  string `json:"game_id" gorm:"not null;index"`
	UserID  string `json:"user_id" gorm:"not null;index"`
	Content string `json:"content" gorm:"not null"`
	Rating  int    `json:"rating" gorm:"not null;check:rating >= 1 AND rating <= 5"`

	CreatedAt time.Time `json:"created_at" gorm:"index"`

	Author *Author `json:"author,omitempty" gorm:"foreignKey:UserID"`
	Game   *Game   `json:"game,omitempty" gorm:"foreignKey:GameID"`
}

// Stats is the admin dashboard summary.
type Stats struct {
	TotalGames     int64   `json:"total_games"`
	TotalUsers     int64   `json:"total_users"`
	TotalDownloads int64   `json:"total_downloads"`
	AvgRating      float64 `json:"avg_rating"`
}
