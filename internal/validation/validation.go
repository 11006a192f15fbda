// Package validation contains pure input validators for every request kind.
// Validators normalize missing fields to empty strings, apply the per-field
// rules, and return a field-keyed error map; they never touch persisted
// state.
package validation

import (
	"net/mail"
	"net/url"
	"strings"

	"devlink/internal/models"
)

// isEmpty reports whether a submitted field should be treated as absent.
func isEmpty(s string) bool {
	return strings.TrimSpace(s) == ""
}

// isEmail reports whether s is a plausible email address.
func isEmail(s string) bool {
	addr, err := mail.ParseAddress(s)
	if err != nil || addr.Address != s {
		return false
	}
	// Require a dotted domain; ParseAddress accepts local domains.
	at := strings.LastIndex(s, "@")
	return strings.Contains(s[at+1:], ".")
}

// isURL reports whether s is a plausible URL. A missing scheme is
// tolerated ("example.com" counts), matching the original lenient check.
func isURL(s string) bool {
	candidate := s
	if !strings.Contains(candidate, "://") {
		candidate = "https://" + candidate
	}
	u, err := url.ParseRequestURI(candidate)
	if err != nil {
		return false
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return false
	}
	return strings.Contains(u.Host, ".")
}

func lengthBetween(s string, min, max int) bool {
	n := len(s)
	return n >= min && n <= max
}

// RegisterInput is the submitted field set for registration.
type RegisterInput struct {
	Name      string `json:"name"`
	Email     string `json:"email"`
	Password  string `json:"password"`
	Password2 string `json:"password2"`
}

// ValidateRegister applies the registration rules.
func ValidateRegister(in RegisterInput) (models.FieldErrors, bool) {
	errs := models.FieldErrors{}

	if isEmpty(in.Name) {
		errs["name"] = "Name field is required"
	} else if !lengthBetween(in.Name, 2, 30) {
		errs["name"] = "Name must be between 2 and 30 characters"
	}

	if isEmpty(in.Email) {
		errs["email"] = "Email field is required"
	} else if !isEmail(in.Email) {
		errs["email"] = "Email is invalid"
	}

	if isEmpty(in.Password) {
		errs["password"] = "Password field is required"
	} else if !lengthBetween(in.Password, 6, 30) {
		errs["password"] = "Password must be between 6 and 30 characters"
	}

	if isEmpty(in.Password2) {
		errs["password2"] = "Confirm Password field is required"
	} else if in.Password != in.Password2 {
		errs["password2"] = "Passwords must match"
	}

	return errs, len(errs) == 0
}

// LoginInput is the submitted field set for login.
type LoginInput struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

// ValidateLogin applies the login rules.
func ValidateLogin(in LoginInput) (models.FieldErrors, bool) {
	errs := models.FieldErrors{}

	if isEmpty(in.Email) {
		errs["email"] = "Email field is required"
	} else if !isEmail(in.Email) {
		errs["email"] = "Email is invalid"
	}

	if isEmpty(in.Password) {
		errs["password"] = "Password field is required"
	}

	return errs, len(errs) == 0
}

// ProfileInput is the submitted field set for profile create/update.
// Skills arrives as a comma-delimited string and is split by the handler.
type ProfileInput struct {
	Handle         string `json:"handle"`
	Status         string `json:"status"`
	Skills         string `json:"skills"`
	Company        string `json:"company"`
	Website        string `json:"website"`
	Location       string `json:"location"`
	Bio            string `json:"bio"`
	GithubUsername string `json:"githubusername"`
	Youtube        string `json:"youtube"`
	Twitter        string `json:"twitter"`
	Instagram      string `json:"instagram"`
	Facebook       string `json:"facebook"`
	Linkedin       string `json:"linkedin"`
}

// ValidateProfile applies the profile rules. URL-shaped fields are checked
// only when non-empty: optional, but well-formed if present.
func ValidateProfile(in ProfileInput) (models.FieldErrors, bool) {
	errs := models.FieldErrors{}

	if isEmpty(in.Handle) {
		errs["handle"] = "Profile Handle field is required"
	} else if !lengthBetween(in.Handle, 2, 40) {
		errs["handle"] = "Handle must be between 2 and 40 characters"
	}

	if isEmpty(in.Status) {
		errs["status"] = "Status field is required"
	}

	if isEmpty(in.Skills) {
		errs["skills"] = "Skills field is required"
	}

	optionalURLs := map[string]string{
		"website":   in.Website,
		"youtube":   in.Youtube,
		"twitter":   in.Twitter,
		"instagram": in.Instagram,
		"facebook":  in.Facebook,
		"linkedin":  in.Linkedin,
	}
	for field, value := range optionalURLs {
		if !isEmpty(value) && !isURL(value) {
			errs[field] = "Not a valid URL"
		}
	}

	return errs, len(errs) == 0
}

// ExperienceInput is the submitted field set for a work history entry.
type ExperienceInput struct {
	Title       string `json:"title"`
	Company     string `json:"company"`
	Location    string `json:"location"`
	From        string `json:"from"`
	To          string `json:"to"`
	Current     bool   `json:"current"`
	Description string `json:"description"`
}

// ValidateExperience applies the experience rules.
func ValidateExperience(in ExperienceInput) (models.FieldErrors, bool) {
	errs := models.FieldErrors{}

	if isEmpty(in.Title) {
		errs["title"] = "Job title field is required"
	}
	if isEmpty(in.Company) {
		errs["company"] = "Company field is required"
	}
	if isEmpty(in.From) {
		errs["from"] = "From date field is required"
	}

	return errs, len(errs) == 0
}

// EducationInput is the submitted field set for an education entry.
type EducationInput struct {
	School       string `json:"school"`
	Degree       string `json:"degree"`
	FieldOfStudy string `json:"fieldofstudy"`
	From         string `json:"from"`
	To           string `json:"to"`
	Current      bool   `json:"current"`
	Description  string `json:"description"`
}

// ValidateEducation applies the education rules.
func ValidateEducation(in EducationInput) (models.FieldErrors, bool) {
	errs := models.FieldErrors{}

	if isEmpty(in.School) {
		errs["school"] = "School field is required"
	}
	if isEmpty(in.Degree) {
		errs["degree"] = "Degree field is required"
	}
	if isEmpty(in.FieldOfStudy) {
		errs["fieldofstudy"] = "Field of study field is required"
	}
	if isEmpty(in.From) {
		errs["from"] = "From date field is required"
	}

	return errs, len(errs) == 0
}

// PostInput is the submitted field set for posts and comments; both use
// the same rule set.
type PostInput struct {
	Text string `json:"text"`
}

// ValidatePost applies the post/comment rules.
func ValidatePost(in PostInput) (models.FieldErrors, bool) {
	errs := models.FieldErrors{}

	if isEmpty(in.Text) {
		errs["text"] = "Text field is required"
	} else if !lengthBetween(in.Text, 10, 300) {
		errs["text"] = "Post must be between 10 and 300 characters"
	}

	return errs, len(errs) == 0
}
