package deck

import (
	"fmt"
	"math/rand"
)

// Card is a single tile on the board. Its identity is its index in the deck.
type Card struct {
	ID        int
	FaceValue string
	Revealed  bool
	Matched   bool
}

// ConfigurationError is returned when the image identifiers handed to Build
// cannot make a valid deck for the requested pair count.
type ConfigurationError struct {
	Pairs  int
	Images int
	Reason string
}

func (e *ConfigurationError) Error() string {
	if e.Reason != "" {
		return fmt.Sprintf("invalid deck configuration: %s", e.Reason)
	}
	return fmt.Sprintf("invalid deck configuration: need %d images, got %d", e.Pairs, e.Images)
}

// Build lays out two cards per image identifier in shuffled order.
// images must hold exactly pairs unique identifiers.
func Build(images []string, pairs int, rng *rand.Rand) ([]Card, error) {
	if pairs < 1 {
		return nil, &ConfigurationError{Pairs: pairs, Images: len(images), Reason: fmt.Sprintf("pair count must be at least 1, got %d", pairs)}
	}
	if len(images) != pairs {
		return nil, &ConfigurationError{Pairs: pairs, Images: len(images)}
	}

	seen := make(map[string]bool, pairs)
	for _, img := range images {
		if seen[img] {
			return nil, &ConfigurationError{Pairs: pairs, Images: len(images), Reason: fmt.Sprintf("image %q appears more than once", img)}
		}
		seen[img] = true
	}

	faces := make([]string, 0, 2*pairs)
	faces = append(faces, images...)
	faces = append(faces, images...)

	shuffle := rand.Shuffle
	if rng != nil {
		shuffle = rng.Shuffle
	}
	shuffle(len(faces), func(i, j int) {
		faces[i], faces[j] = faces[j], faces[i]
	})

	cards := make([]Card, len(faces))
	for i, face := range faces {
		cards[i] = Card{ID: i, FaceValue: face}
	}
	return cards, nil
}
