package seedfile

// SeedEntry is one bookmark to be imported.
type SeedEntry struct {
	Title string `yaml:"title"`
	URL   string `yaml:"url"`
}

// OwnerSeed groups the entries imported for one principal.
type OwnerSeed struct {
	Owner     string      `yaml:"owner"`
	Bookmarks []SeedEntry `yaml:"bookmarks"`
}

// SeedConfig is the root structure of the seed yaml file.
type SeedConfig []OwnerSeed
