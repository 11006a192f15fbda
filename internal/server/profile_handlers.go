package server

import (
	"strings"

	"devlink/internal/models"
	"devlink/internal/validation"

	"github.com/gofiber/fiber/v2"
)

// noProfileErr is the field-keyed body for every profile lookup miss.
var noProfileErr = models.FieldErrors{"noProfile": "There is no profile for this user"}

// GetMyProfile handles GET /api/profile
func (s *Server) GetMyProfile(c *fiber.Ctx) error {
	profile, err := s.profileRepo.GetByUserID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, noProfileErr)
	}
	return c.JSON(profile)
}

// GetAllProfiles handles GET /api/profile/all
func (s *Server) GetAllProfiles(c *fiber.Ctx) error {
	profiles, err := s.profileRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if profiles == nil {
		profiles = []*models.Profile{}
	}
	return c.JSON(profiles)
}

// GetProfileByHandle handles GET /api/profile/handle/:handle
func (s *Server) GetProfileByHandle(c *fiber.Ctx) error {
	profile, err := s.profileRepo.GetByHandle(c.Context(), c.Params("handle"))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, noProfileErr)
	}
	return c.JSON(profile)
}

// GetProfileByUserID handles GET /api/profile/user/:userId
func (s *Server) GetProfileByUserID(c *fiber.Ctx) error {
	userID, err := s.parseID(c, "userId")
	if err != nil {
		return nil
	}

	profile, err := s.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, noProfileErr)
	}
	return c.JSON(profile)
}

// splitSkills turns the submitted comma-delimited skills string into a
// trimmed list, dropping empty segments.
func splitSkills(s string) []string {
	parts := strings.Split(s, ",")
	skills := make([]string, 0, len(parts))
	for _, p := range parts {
		if t := strings.TrimSpace(p); t != "" {
			skills = append(skills, t)
		}
	}
	return skills
}

// applyProfileInput copies the submitted fields onto the profile. Required
// fields always overwrite; optional fields overwrite only when submitted, so
// an update with an absent field preserves the stored value.
func applyProfileInput(profile *models.Profile, in validation.ProfileInput) {
	profile.Handle = in.Handle
	profile.Status = in.Status
	profile.Skills = splitSkills(in.Skills)

	if in.Company != "" {
		profile.Company = in.Company
	}
	if in.Website != "" {
		profile.Website = in.Website
	}
	if in.Location != "" {
		profile.Location = in.Location
	}
	if in.Bio != "" {
		profile.Bio = in.Bio
	}
	if in.GithubUsername != "" {
		profile.GithubUsername = in.GithubUsername
	}
	if in.Youtube != "" {
		profile.Social.Youtube = in.Youtube
	}
	if in.Twitter != "" {
		profile.Social.Twitter = in.Twitter
	}
	if in.Instagram != "" {
		profile.Social.Instagram = in.Instagram
	}
	if in.Facebook != "" {
		profile.Social.Facebook = in.Facebook
	}
	if in.Linkedin != "" {
		profile.Social.Linkedin = in.Linkedin
	}
}

// UpsertProfile handles POST /api/profile. Creates the caller's profile when
// none exists (201), otherwise applies a sparse update (200).
func (s *Server) UpsertProfile(c *fiber.Ctx) error {
	var req validation.ProfileInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if errs, ok := validation.ValidateProfile(req); !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest, errs)
	}

	userID := currentUserID(c)
	existing, err := s.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	if existing == nil {
		profile := &models.Profile{UserID: userID}
		applyProfileInput(profile, req)
		if createErr := s.profileRepo.Create(c.Context(), profile); createErr != nil {
			return respondRepoError(c, createErr)
		}
		created, err := s.profileRepo.GetByUserID(c.Context(), userID)
		if err != nil {
			return models.RespondWithError(c, fiber.StatusInternalServerError, err)
		}
		return c.Status(fiber.StatusCreated).JSON(created)
	}

	applyProfileInput(existing, req)
	if updateErr := s.profileRepo.Update(c.Context(), existing); updateErr != nil {
		return respondRepoError(c, updateErr)
	}

	updated, err := s.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(updated)
}

// AddExperience handles POST /api/profile/experience
func (s *Server) AddExperience(c *fiber.Ctx) error {
	var req validation.ExperienceInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if errs, ok := validation.ValidateExperience(req); !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest, errs)
	}

	from, err := parseDate(req.From)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.FieldErrors{"from": "From date is invalid"})
	}
	to, err := parseOptionalDate(req.To)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.FieldErrors{"to": "To date is invalid"})
	}

	userID := currentUserID(c)
	profile, err := s.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, noProfileErr)
	}

	exp := &models.Experience{
		Title:       req.Title,
		Company:     req.Company,
		Location:    req.Location,
		From:        from,
		To:          to,
		Current:     req.Current,
		Description: req.Description,
	}
	if addErr := s.profileRepo.AddExperience(c.Context(), profile, exp); addErr != nil {
		return respondRepoError(c, addErr)
	}

	return s.respondWithProfile(c, userID)
}

// DeleteExperience handles DELETE /api/profile/experience/:id
func (s *Server) DeleteExperience(c *fiber.Ctx) error {
	expID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID := currentUserID(c)
	profile, err := s.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, noProfileErr)
	}

	if rmErr := s.profileRepo.RemoveExperience(c.Context(), profile, expID); rmErr != nil {
		return respondRepoError(c, rmErr)
	}

	return s.respondWithProfile(c, userID)
}

// AddEducation handles POST /api/profile/education
func (s *Server) AddEducation(c *fiber.Ctx) error {
	var req validation.EducationInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if errs, ok := validation.ValidateEducation(req); !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest, errs)
	}

	from, err := parseDate(req.From)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.FieldErrors{"from": "From date is invalid"})
	}
	to, err := parseOptionalDate(req.To)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.FieldErrors{"to": "To date is invalid"})
	}

	userID := currentUserID(c)
	profile, err := s.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, noProfileErr)
	}

	edu := &models.Education{
		School:       req.School,
		Degree:       req.Degree,
		FieldOfStudy: req.FieldOfStudy,
		From:         from,
		To:           to,
		Current:      req.Current,
		Description:  req.Description,
	}
	if addErr := s.profileRepo.AddEducation(c.Context(), profile, edu); addErr != nil {
		return respondRepoError(c, addErr)
	}

	return s.respondWithProfile(c, userID)
}

// DeleteEducation handles DELETE /api/profile/education/:id
func (s *Server) DeleteEducation(c *fiber.Ctx) error {
	eduID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	userID := currentUserID(c)
	profile, err := s.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if profile == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, noProfileErr)
	}

	if rmErr := s.profileRepo.RemoveEducation(c.Context(), profile, eduID); rmErr != nil {
		return respondRepoError(c, rmErr)
	}

	return s.respondWithProfile(c, userID)
}

// DeleteAccount handles DELETE /api/profile. Removes the caller's profile
// and account in one transaction.
func (s *Server) DeleteAccount(c *fiber.Ctx) error {
	if err := s.profileRepo.DeleteWithUser(c.Context(), currentUserID(c)); err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(fiber.Map{"success": true})
}

// respondWithProfile re-reads the caller's profile so mutation responses
// carry the joined user and freshly ordered history lists.
func (s *Server) respondWithProfile(c *fiber.Ctx, userID uint) error {
	profile, err := s.profileRepo.GetByUserID(c.Context(), userID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(profile)
}
