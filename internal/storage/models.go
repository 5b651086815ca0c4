package storage

import "time"

type User struct {
	ID           uint   `gorm:"primaryKey"`
	Username     string `gorm:"uniqueIndex;not null"`
	PasswordHash string `gorm:"not null"`
	CreatedAt    time.Time
}

// Recipe caches the metadata of an external recipe the first time it is favorited.
type Recipe struct {
	RecipeID  int64      `gorm:"primaryKey;autoIncrement:false" json:"recipe_id"`
	Title     string     `gorm:"not null" json:"title"`
	ImageURL  string     `json:"image_url"`
	CreatedAt time.Time  `json:"-"`
	Favorites []Favorite `gorm:"foreignKey:RecipeID;references:RecipeID;constraint:OnDelete:CASCADE" json:"-"`
}

// Favorite marks a recipe as favorited. There is no owner column: favorites
// are shared by every account.
type Favorite struct {
	ID        uint  `gorm:"primaryKey"`
	RecipeID  int64 `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time
}

// FavoriteRecipe is a favorite joined with its cached recipe metadata.
type FavoriteRecipe struct {
	RecipeID    int64     `json:"recipe_id"`
	Title       string    `json:"title"`
	ImageURL    string    `json:"image_url"`
	FavoritedAt time.Time `json:"favorited_at"`
}

// Session holds the encoded values of a server-side session.
type Session struct {
	ID        string    `gorm:"primaryKey;size:64"`
	Data      string    `gorm:"type:text;not null"`
	ExpiresAt time.Time `gorm:"index;not null"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
