package imagegen

import (
	"fmt"
	"strings"
)

// Tier is the requested output quality. Elevated tiers run on the pro image
// model and require a selected credential.
type Tier string

const (
	TierStandard Tier = "standard"
	TierHigh     Tier = "high"
	TierUltra    Tier = "ultra"
)

// ParseTier resolves a case-insensitive tier name. Resolution aliases
// ("1K", "2K", "4K") map to standard, high, and ultra.
func ParseTier(s string) (Tier, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "standard", "1k":
		return TierStandard, nil
	case "high", "2k":
		return TierHigh, nil
	case "ultra", "4k":
		return TierUltra, nil
	}
	return "", fmt.Errorf("%w: unknown quality tier %q", ErrInvalidInput, s)
}

// Elevated reports whether the tier requires a selected credential.
func (t Tier) Elevated() bool {
	return t == TierHigh || t == TierUltra
}

// ImageSize returns the output size hint sent with elevated requests.
// Standard requests carry no size hint.
func (t Tier) ImageSize() string {
	switch t {
	case TierHigh:
		return "2K"
	case TierUltra:
		return "4K"
	}
	return ""
}
