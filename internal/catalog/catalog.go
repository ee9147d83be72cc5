// Package catalog holds the option lists the intake wizard presents:
// selectable services, page types, site features, project goals, and
// color tags. The lists load from a yaml seed file so sales can adjust
// offerings without a deploy.
package catalog

import (
	"os"

	"github.com/rotisserie/eris"
	"gopkg.in/yaml.v3"
)

// Catalog is the full set of wizard option lists.
type Catalog struct {
	OptionalServices []Service `yaml:"optional_services" json:"optional_services"`
	Pages            []string  `yaml:"pages" json:"pages"`
	Features         []string  `yaml:"features" json:"features"`
	Goals            []string  `yaml:"goals" json:"goals"`
	ColorTags        []string  `yaml:"color_tags" json:"color_tags"`
	ContactTimes     []string  `yaml:"contact_times" json:"contact_times"`
	ContactMethods   []string  `yaml:"contact_methods" json:"contact_methods"`
}

// Service is one selectable add-on offering.
type Service struct {
	Name        string `yaml:"name" json:"name"`
	Description string `yaml:"description" json:"description"`
}

// Default returns the built-in catalog used when no seed file exists.
func Default() *Catalog {
	return &Catalog{
		OptionalServices: []Service{
			{Name: "SEO", Description: "Search engine optimization and local listings"},
			{Name: "Hosting", Description: "Managed hosting with backups and monitoring"},
			{Name: "Maintenance", Description: "Monthly content updates and security patches"},
			{Name: "Branding", Description: "Logo refresh and brand guidelines"},
			{Name: "Email setup", Description: "Business email on your own domain"},
		},
		Pages: []string{
			"Home", "About", "Services", "Contact", "Gallery", "Testimonials", "Blog", "FAQ",
		},
		Features: []string{
			"Contact form", "Online booking", "Live chat", "Newsletter signup",
			"Photo gallery", "Customer reviews", "Service area map",
		},
		Goals: []string{
			"More leads", "Look professional", "Sell online",
			"Reduce phone calls", "Rank on Google",
		},
		ColorTags: []string{
			"Blue", "Green", "Red", "Neutral", "Dark", "Bright", "Earthy",
		},
		ContactTimes: []string{
			"Weekday mornings", "Weekday afternoons", "Evenings", "Weekends",
		},
		ContactMethods: []string{"Email", "Phone", "Text"},
	}
}

// Load reads a catalog from the yaml file at path. A missing file is
// not an error; the built-in defaults apply.
func Load(path string) (*Catalog, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, eris.Wrapf(err, "catalog: read %s", path)
	}

	var c Catalog
	if err := yaml.Unmarshal(data, &c); err != nil {
		return nil, eris.Wrapf(err, "catalog: parse %s", path)
	}

	// A seed file may override only some lists; fill gaps from defaults.
	def := Default()
	if len(c.OptionalServices) == 0 {
		c.OptionalServices = def.OptionalServices
	}
	if len(c.Pages) == 0 {
		c.Pages = def.Pages
	}
	if len(c.Features) == 0 {
		c.Features = def.Features
	}
	if len(c.Goals) == 0 {
		c.Goals = def.Goals
	}
	if len(c.ColorTags) == 0 {
		c.ColorTags = def.ColorTags
	}
	if len(c.ContactTimes) == 0 {
		c.ContactTimes = def.ContactTimes
	}
	if len(c.ContactMethods) == 0 {
		c.ContactMethods = def.ContactMethods
	}
	return &c, nil
}
