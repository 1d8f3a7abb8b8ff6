package shortener

import (
	"errors"
	"net/url"
	"regexp"
)

const (
	MinCodeLength = 3
	MaxCodeLength = 20
	MaxURLLength  = 2048
)

var shortCodePattern = regexp.MustCompile(`^[A-Za-z0-9_-]{3,20}$`)

// ValidShortCode reports whether code is an acceptable short code.
func ValidShortCode(code string) bool {
	return shortCodePattern.MatchString(code)
}

func validateOwner(ownerID string) error {
	if ownerID == "" {
		return errors.New("owner is required")
	}
	return nil
}

func validateURL(rawURL string) error {
	if rawURL == "" {
		return errors.New("url cannot be empty")
	}
	if len(rawURL) > MaxURLLength {
		return errors.New("url too long (max 2048 characters)")
	}

	parsedURL, err := url.Parse(rawURL)
	if err != nil {
		return errors.New("invalid url format")
	}
	if parsedURL.Scheme == "" {
		return errors.New("url must include scheme (http or https)")
	}
	if parsedURL.Scheme != "http" && parsedURL.Scheme != "https" {
		return errors.New("url scheme must be http or https")
	}
	if parsedURL.Host == "" {
		return errors.New("url must include host")
	}
	return nil
}

func validateShortCode(code string) error {
	if len(code) < MinCodeLength {
		return errors.New("short code too short (minimum 3 characters)")
	}
	if len(code) > MaxCodeLength {
		return errors.New("short code too long (maximum 20 characters)")
	}
	if !ValidShortCode(code) {
		return errors.New("short code may only contain letters, digits, dash and underscore")
	}
	return nil
}

func validatePatch(patch LinkPatch) error {
	if patch.Empty() {
		return errors.New("nothing to update")
	}
	if patch.OriginalURL != nil {
		if err := validateURL(*patch.OriginalURL); err != nil {
			return err
		}
	}
	if patch.ShortCode != nil {
		if err := validateShortCode(*patch.ShortCode); err != nil {
			return err
		}
	}
	return nil
}
