package deck

import "github.com/AdlenSouci/memory-app/internal/storage"

var (
	categoriesSchema = storage.MustCompileSchema(`{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "name"],
			"properties": {
				"id":   {"type": "string"},
				"name": {"type": "string"}
			}
		}
	}`)

	themesSchema = storage.MustCompileSchema(`{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "titre"],
			"properties": {
				"id":             {"type": "string"},
				"categoryId":     {"type": "string"},
				"titre":          {"type": "string"},
				"maxLevel":       {"type": "integer"},
				"newCardsPerDay": {"type": "integer"}
			}
		}
	}`)

	cardsSchema = storage.MustCompileSchema(`{
		"type": "array",
		"items": {
			"type": "object",
			"required": ["id", "themeId", "niveau", "nextReviewDate"],
			"properties": {
				"id":             {"type": "string"},
				"themeId":        {"type": "string"},
				"recto":          {"type": "string"},
				"rectoType":      {"type": "string"},
				"rectoContent":   {"type": "string"},
				"verso":          {"type": "string"},
				"versoType":      {"type": "string"},
				"versoContent":   {"type": "string"},
				"niveau":         {"type": "integer"},
				"nextReviewDate": {"type": "string"}
			}
		}
	}`)

	userSchema = storage.MustCompileSchema(`{
		"type": "object",
		"properties": {
			"pseudo": {"type": "string"},
			"score":  {"type": "integer"}
		}
	}`)
)
