package deck

// DefaultKeyPrefix namespaces the persisted keys.
const DefaultKeyPrefix = "memory_"

// Keys names the four persisted entries.
type Keys struct {
	Categories string
	Themes     string
	Cards      string
	User       string
}

// KeysWithPrefix builds the key set for prefix.
func KeysWithPrefix(prefix string) Keys {
	return Keys{
		Categories: prefix + "categories",
		Themes:     prefix + "themes",
		Cards:      prefix + "cards",
		User:       prefix + "user",
	}
}

// collections returns the keys rewritten together on any collection change.
func (k Keys) collections() []string {
	return []string{k.Categories, k.Themes, k.Cards}
}
