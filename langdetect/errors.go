package langdetect

import "errors"

var (
	// ErrDuplicateLanguage is returned by Builder.AddProfile when a profile
	// for the same language has already been added.
	ErrDuplicateLanguage = errors.New("langdetect: language profile is already defined")

	// ErrNoProfilesLoaded is returned by Builder.Build when no profile was added.
	ErrNoProfilesLoaded = errors.New("langdetect: no language profiles loaded")

	// ErrInvalidNGram marks a profile entry whose length is not 1-3 runes.
	// It is only ever logged, never returned.
	ErrInvalidNGram = errors.New("langdetect: invalid n-gram in language profile")

	// ErrNoText is returned when a Detector has no usable evidence.
	ErrNoText = errors.New("langdetect: no features in text")

	// ErrCannotDetect is returned by Detect when the best candidate is below
	// the probability threshold.
	ErrCannotDetect = errors.New("langdetect: cannot detect language")
)
