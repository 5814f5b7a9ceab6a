// Package generation defines the closed set of generation profiles a
// client can request. Each profile declares its own image rules, upstream
// model mapping, and credit cost, so callers select behavior by profile
// name instead of branching on request strings.
package generation

import (
	"errors"
	"fmt"
)

// Quality identifies the requested resolution tier. Not every profile
// offers a choice; profiles without tiers ignore it.
type Quality string

// Known resolution tiers.
const (
	Quality1K Quality = "1"
	Quality2K Quality = "2"
	Quality4K Quality = "4"
)

// Validation errors returned when a request does not fit its profile.
var (
	ErrUnknownProfile   = errors.New("unknown generation profile")
	ErrImagesRequired   = errors.New("profile requires at least one reference image")
	ErrImagesNotAllowed = errors.New("profile does not accept reference images")
	ErrTooManyImages    = errors.New("too many reference images for profile")
)

// Profile describes one generation mode: whether it consumes reference
// images, which upstream model it maps to, and what it costs.
type Profile struct {
	// Name is the client-facing profile selector.
	Name string

	// Model is the upstream model identifier submitted to the worker.
	Model string

	// RequiresImages marks image-to-image profiles that cannot run
	// without at least one staged reference image.
	RequiresImages bool

	// MaxImages caps the number of reference images. Zero means the
	// profile is text-only.
	MaxImages int

	// HasQualityTiers marks profiles whose cost depends on the requested
	// resolution tier.
	HasQualityTiers bool

	// cost computes the credit cost for the given tier.
	cost func(q Quality) int
}

// Cost returns the credit cost of one generation under this profile.
func (p *Profile) Cost(q Quality) int {
	return p.cost(q)
}

// ValidateImageCount checks that the number of staged reference images is
// consistent with the profile's rules.
func (p *Profile) ValidateImageCount(count int) error {
	if p.RequiresImages && count == 0 {
		return fmt.Errorf("%w: %s", ErrImagesRequired, p.Name)
	}
	if p.MaxImages == 0 && count > 0 {
		return fmt.Errorf("%w: %s", ErrImagesNotAllowed, p.Name)
	}
	if count > p.MaxImages {
		return fmt.Errorf("%w: %s accepts at most %d", ErrTooManyImages, p.Name, p.MaxImages)
	}
	return nil
}

// The profile set is fixed at build time. Pricing follows the product's
// published credit schedule: base costs 10, nano-2 charges 20/30/45 by
// tier, pro charges 45 below 4K and 60 at 4K, and image edits cost a flat
// 10 regardless of tier.
var profiles = map[string]*Profile{
	"base": {
		Name:  "base",
		Model: "google/nano-banana",
		cost:  func(Quality) int { return 10 },
	},
	"nano-2": {
		Name:            "nano-2",
		Model:           "google/nano-banana-2",
		HasQualityTiers: true,
		cost: func(q Quality) int {
			switch q {
			case Quality4K:
				return 45
			case Quality2K:
				return 30
			default:
				return 20
			}
		},
	},
	"nano-pro": {
		Name:            "nano-pro",
		Model:           "google/nano-banana-pro",
		HasQualityTiers: true,
		cost: func(q Quality) int {
			if q == Quality4K {
				return 60
			}
			return 45
		},
	},
	"edit": {
		Name:           "edit",
		Model:          "google/nano-banana-edit",
		RequiresImages: true,
		MaxImages:      8,
		cost:           func(Quality) int { return 10 },
	},
}

// aliases map legacy client selectors onto canonical profile names.
var aliases = map[string]string{
	"nano": "base",
}

// ByName looks up a profile by its client-facing name.
// Returns ErrUnknownProfile for selectors outside the closed set.
func ByName(name string) (*Profile, error) {
	if canonical, ok := aliases[name]; ok {
		name = canonical
	}
	p, ok := profiles[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownProfile, name)
	}
	return p, nil
}

// Names returns the canonical profile names. Useful for request validation
// messages and tests; order is unspecified.
func Names() []string {
	out := make([]string, 0, len(profiles))
	for name := range profiles {
		out = append(out, name)
	}
	return out
}
