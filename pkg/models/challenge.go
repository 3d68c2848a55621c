package models

import "time"

// Challenge is a coding exercise document loaded from the content directory.
type Challenge struct {
	Slug          string
	Title         string
	Summary       string
	Difficulty    string
	Category      string
	Skills        []string
	EstimatedTime string
	Draft         bool
	Order         int
	Published     time.Time

	Body   string // MDX source after the frontmatter
	Format string // yaml, toml, json
	Path   string // relative to the challenges directory
	Dir    string // absolute directory holding the document and its assets
	Extra  map[string]interface{}
}

// ChallengeSummary is the public projection served by the API.
type ChallengeSummary struct {
	Slug          string   `json:"slug"`
	Title         string   `json:"title"`
	Summary       string   `json:"summary"`
	Difficulty    string   `json:"difficulty"`
	Category      string   `json:"category"`
	Skills        []string `json:"skills"`
	EstimatedTime string   `json:"estimatedTime"`
}

func (c Challenge) Summarize() ChallengeSummary {
	skills := c.Skills
	if skills == nil {
		skills = []string{}
	}
	return ChallengeSummary{
		Slug:          c.Slug,
		Title:         c.Title,
		Summary:       c.Summary,
		Difficulty:    c.Difficulty,
		Category:      c.Category,
		Skills:        skills,
		EstimatedTime: c.EstimatedTime,
	}
}
