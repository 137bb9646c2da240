// Package deck holds the flashcard collections in memory, applies mutations
// and mirrors every change to a Persister.
package deck

// MediaType tags how a card face is rendered.
type MediaType string

const (
	MediaText  MediaType = "text"
	MediaImage MediaType = "image"
	MediaAudio MediaType = "audio"
	MediaVideo MediaType = "video"
)

// Valid reports whether m is one of the known media types.
func (m MediaType) Valid() bool {
	switch m {
	case MediaText, MediaImage, MediaAudio, MediaVideo:
		return true
	}
	return false
}

// OrText returns m, or MediaText when m is empty or unknown.
func (m MediaType) OrText() MediaType {
	if m.Valid() {
		return m
	}
	return MediaText
}

const (
	DefaultCategoryID     = "default"
	DefaultCategoryName   = "Mes Thèmes"
	DefaultMaxLevel       = 7
	DefaultNewCardsPerDay = 10
)

// Category groups themes.
type Category struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// DefaultCategory is the category a fresh store starts with.
func DefaultCategory() Category {
	return Category{ID: DefaultCategoryID, Name: DefaultCategoryName}
}

// Theme groups cards and carries the level ceiling of its cards.
type Theme struct {
	ID             string `json:"id"`
	CategoryID     string `json:"categoryId"`
	Title          string `json:"titre"`
	MaxLevel       int    `json:"maxLevel"`
	NewCardsPerDay int    `json:"newCardsPerDay"`
}

// Card is a two-sided flashcard. NextReviewDate is a YYYY-MM-DD date.
type Card struct {
	ID             string    `json:"id"`
	ThemeID        string    `json:"themeId"`
	Recto          string    `json:"recto"`
	RectoType      MediaType `json:"rectoType"`
	RectoContent   string    `json:"rectoContent,omitempty"`
	Verso          string    `json:"verso"`
	VersoType      MediaType `json:"versoType"`
	VersoContent   string    `json:"versoContent,omitempty"`
	Level          int       `json:"niveau"`
	NextReviewDate string    `json:"nextReviewDate"`
}

// User is the local profile.
type User struct {
	Pseudo string `json:"pseudo"`
	Score  int    `json:"score"`
}

// NewCard carries the caller-supplied fields of a card to create.
type NewCard struct {
	ThemeID      string
	Recto        string
	RectoType    MediaType
	RectoContent string
	Verso        string
	VersoType    MediaType
	VersoContent string
}

// ThemePatch lists the theme fields to overwrite. Nil fields are left as is.
type ThemePatch struct {
	CategoryID     *string
	Title          *string
	MaxLevel       *int
	NewCardsPerDay *int
}

// CardPatch lists the card fields to overwrite. Nil fields are left as is.
// Level and NextReviewDate are written verbatim.
type CardPatch struct {
	ThemeID        *string
	Recto          *string
	RectoType      *MediaType
	RectoContent   *string
	Verso          *string
	VersoType      *MediaType
	VersoContent   *string
	Level          *int
	NextReviewDate *string
}

// Snapshot is a point-in-time copy of the whole store. Seed sources return
// one with a nil Categories slice when they define no categories.
type Snapshot struct {
	Categories []Category `json:"categories"`
	Themes     []Theme    `json:"themes"`
	Cards      []Card     `json:"cards"`
	User       User       `json:"user"`
}

// Progress summarises the cards of one theme, or of the whole store.
type Progress struct {
	Total     int `json:"total"`
	Memorized int `json:"memorized"`
	Due       int `json:"due"`
	Percent   int `json:"percent"`
}
