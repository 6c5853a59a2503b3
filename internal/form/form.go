// Package form validates user-supplied link fields before they reach the shelf.
package form

import (
	"fmt"
	"net/url"
	"reflect"
	"regexp"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/MrSnakeDoc/linkshelf/internal/domain"
)

var (
	validate *validator.Validate

	httpPrefix = regexp.MustCompile(`(?i)^https?://`)
)

func init() {
	validate = validator.New(validator.WithRequiredStructEnabled())

	// Report errors under the form names ("title", "url") instead of Go field names.
	validate.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("form"), ",")
		if name == "" || name == "-" {
			return fld.Name
		}
		return name
	})

	_ = validate.RegisterValidation("httpurl", func(fl validator.FieldLevel) bool {
		return IsHTTPURL(fl.Field().String())
	})
}

// LinkInput is the raw content of an add/edit form.
type LinkInput struct {
	Title       string `form:"title" validate:"required"`
	URL         string `form:"url" validate:"required,httpurl"`
	Description string `form:"description"`
	Icon        string `form:"icon"`
}

// ValidationError carries one message per offending field.
type ValidationError struct {
	Fields map[string]string
}

func (e *ValidationError) Error() string {
	names := make([]string, 0, len(e.Fields))
	for name := range e.Fields {
		names = append(names, name)
	}
	sort.Strings(names)

	parts := make([]string, 0, len(names))
	for _, name := range names {
		parts = append(parts, fmt.Sprintf("%s: %s", name, e.Fields[name]))
	}
	return "invalid link: " + strings.Join(parts, "; ")
}

// Validate trims the input, checks it and returns the fields to store.
// An icon that is not an http(s) URL is dropped rather than rejected.
func Validate(in LinkInput) (domain.LinkFields, error) {
	in = LinkInput{
		Title:       strings.TrimSpace(in.Title),
		URL:         strings.TrimSpace(in.URL),
		Description: strings.TrimSpace(in.Description),
		Icon:        strings.TrimSpace(in.Icon),
	}

	if err := validate.Struct(in); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return domain.LinkFields{}, fmt.Errorf("failed to validate link: %w", err)
		}
		ve := &ValidationError{Fields: make(map[string]string, len(verrs))}
		for _, fe := range verrs {
			ve.Fields[fe.Field()] = message(fe)
		}
		return domain.LinkFields{}, ve
	}

	return domain.LinkFields{
		Title:       in.Title,
		URL:         in.URL,
		Description: in.Description,
		Icon:        SafeIcon(in.Icon),
	}, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "httpurl":
		return "must start with http:// or https://"
	default:
		return "is invalid (" + fe.Tag() + ")"
	}
}

// IsHTTPURL reports whether s is an absolute http or https URL with a host.
func IsHTTPURL(s string) bool {
	s = strings.TrimSpace(s)
	if !httpPrefix.MatchString(s) {
		return false
	}
	u, err := url.Parse(s)
	return err == nil && u.Host != ""
}

// SafeIcon keeps icon only when it is an http(s) URL.
func SafeIcon(icon string) string {
	if icon != "" && IsHTTPURL(icon) {
		return icon
	}
	return ""
}

// FaviconFrom derives a favicon URL for records without an icon.
func FaviconFrom(rawURL string) string {
	u, err := url.Parse(rawURL)
	if err != nil || u.Hostname() == "" {
		return ""
	}
	return "https://www.google.com/s2/favicons?domain=" + url.QueryEscape(u.Hostname()) + "&sz=64"
}
