package classifier

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

const OtherGroup = "Other"

// Group is a coarse bucket of fine-grained category labels.
type Group struct {
	Name   string   `yaml:"name"`
	Labels []string `yaml:"labels"`
}

// Taxonomy is the candidate label set plus the label → group mapping.
type Taxonomy struct {
	Labels []string `yaml:"labels"`
	Groups []Group  `yaml:"groups"`

	groupOf map[string]string
}

func DefaultTaxonomy() *Taxonomy {
	t := &Taxonomy{
		Labels: []string{
			"Productivity", "Work", "Professional Development", "Business", "Documentation",
			"Social Media", "Communication", "Forums & Discussion", "Dating",
			"Entertainment", "Music", "Movies & TV", "Gaming", "Sports", "Humor & Memes", "Podcasts", "Streaming",
			"News", "Politics", "World Events", "Science", "Technology", "Research",
			"Education", "Online Courses", "Tutorials", "Academic", "Programming", "Self-Improvement",
			"Health & Wellness", "Fitness", "Food & Cooking", "Travel", "Hobbies", "DIY & Crafts",
			"Fashion & Beauty", "Relationships", "Parenting",
			"Finance", "Shopping", "E-commerce", "Banking", "Investing", "Cryptocurrency",
			"Reference", "Tools & Utilities", "Software", "Search",
			"Adult Content", "Violence", "Misinformation", "Harassment",
			"Other",
		},
		Groups: []Group{
			{Name: "Productive", Labels: []string{
				"Productivity", "Work", "Professional Development", "Business",
				"Documentation", "Education", "Online Courses", "Tutorials",
				"Academic", "Programming", "Research", "Reference", "Tools & Utilities",
			}},
			{Name: "Social", Labels: []string{"Social Media", "Communication", "Forums & Discussion", "Dating"}},
			{Name: "Entertainment", Labels: []string{
				"Entertainment", "Music", "Movies & TV", "Gaming", "Sports",
				"Humor & Memes", "Podcasts", "Streaming",
			}},
			{Name: "Information", Labels: []string{"News", "Politics", "World Events", "Science", "Technology"}},
			{Name: "Lifestyle", Labels: []string{
				"Health & Wellness", "Fitness", "Food & Cooking", "Travel",
				"Hobbies", "DIY & Crafts", "Fashion & Beauty", "Relationships",
				"Parenting", "Self-Improvement",
			}},
			{Name: "Commerce", Labels: []string{"Finance", "Shopping", "E-commerce", "Banking", "Investing", "Cryptocurrency"}},
			{Name: "Problematic", Labels: []string{"Adult Content", "Violence", "Misinformation", "Harassment"}},
			{Name: OtherGroup, Labels: []string{"Other", "Search", "Software"}},
		},
	}
	t.index()
	return t
}

// LoadTaxonomy reads a YAML taxonomy file. An empty label list is filled in
// from the union of the group labels.
func LoadTaxonomy(path string) (*Taxonomy, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read taxonomy: %w", err)
	}

	var t Taxonomy
	if err := yaml.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("failed to parse taxonomy: %w", err)
	}

	if len(t.Labels) == 0 {
		seen := make(map[string]bool)
		for _, g := range t.Groups {
			for _, l := range g.Labels {
				if !seen[l] {
					seen[l] = true
					t.Labels = append(t.Labels, l)
				}
			}
		}
	}
	if len(t.Labels) == 0 {
		return nil, fmt.Errorf("taxonomy %s defines no labels", path)
	}

	t.index()
	return &t, nil
}

func (t *Taxonomy) index() {
	t.groupOf = make(map[string]string)
	for _, g := range t.Groups {
		for _, l := range g.Labels {
			// first group listing a label owns it
			if _, ok := t.groupOf[l]; !ok {
				t.groupOf[l] = g.Name
			}
		}
	}
}

// GroupOf returns the group containing label, or "Other".
func (t *Taxonomy) GroupOf(label string) string {
	if g, ok := t.groupOf[label]; ok {
		return g
	}
	return OtherGroup
}
