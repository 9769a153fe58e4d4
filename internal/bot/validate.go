package bot

import (
	"fmt"
	"net/url"
	"strings"
)

// ErrValidation marks a registration input rejected before any store
// mutation.
type ErrValidation struct {
	Reason string
}

func (e *ErrValidation) Error() string {
	return e.Reason
}

// ValidateName enforces the subscription naming rules: 1-64 characters and
// no leading slash (reserved for commands).
func ValidateName(name string) error {
	name = strings.TrimSpace(name)
	if len(name) == 0 || len(name) > 64 {
		return &ErrValidation{Reason: "name must be between 1 and 64 characters"}
	}
	if strings.HasPrefix(name, "/") {
		return &ErrValidation{Reason: "name may not start with '/'"}
	}
	return nil
}

// CanonicalURL validates a search URL and normalizes it to its canonical
// form: https scheme, www host, sorted query parameters. Canonicalization
// happens once here so stored URLs compare by plain string equality.
func CanonicalURL(raw string) (string, error) {
	raw = strings.TrimSpace(raw)
	u, err := url.Parse(raw)
	if err != nil || u.Scheme == "" || u.Host == "" {
		return "", &ErrValidation{Reason: fmt.Sprintf("invalid URL %q", raw)}
	}

	switch u.Hostname() {
	case "olx.pl", "www.olx.pl", "m.olx.pl", "www.m.olx.pl":
	default:
		return "", &ErrValidation{Reason: "URL must point at olx.pl"}
	}

	u.Scheme = "https"
	u.Host = "www.olx.pl"
	u.Fragment = ""
	// url.Values.Encode emits keys in sorted order.
	u.RawQuery = u.Query().Encode()
	return u.String(), nil
}
