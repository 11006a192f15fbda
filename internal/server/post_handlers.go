package server

import (
	"devlink/internal/models"
	"devlink/internal/validation"

	"github.com/gofiber/fiber/v2"
)

var postNotFoundErr = models.FieldErrors{"post": "Post not found"}

// GetPosts handles GET /api/posts
func (s *Server) GetPosts(c *fiber.Ctx) error {
	posts, err := s.postRepo.List(c.Context())
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if posts == nil {
		posts = []*models.Post{}
	}
	return c.JSON(posts)
}

// GetPost handles GET /api/posts/:id
func (s *Server) GetPost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, postNotFoundErr)
	}
	return c.JSON(post)
}

// CreatePost handles POST /api/posts
func (s *Server) CreatePost(c *fiber.Ctx) error {
	var req validation.PostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if errs, ok := validation.ValidatePost(req); !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest, errs)
	}

	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	// Author name and avatar are denormalized onto the post so the feed
	// renders without joining users.
	post := &models.Post{
		Text:   req.Text,
		Name:   user.Name,
		Avatar: user.Avatar,
		UserID: user.ID,
	}
	if createErr := s.postRepo.Create(c.Context(), post); createErr != nil {
		return respondRepoError(c, createErr)
	}

	return c.Status(fiber.StatusCreated).JSON(post)
}

// DeletePost handles DELETE /api/posts/:id. Only the author may delete.
func (s *Server) DeletePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, postNotFoundErr)
	}
	if post.UserID != currentUserID(c) {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.FieldErrors{"post": "User not authorized"})
	}

	if delErr := s.postRepo.Delete(c.Context(), postID); delErr != nil {
		return respondRepoError(c, delErr)
	}
	return c.JSON(fiber.Map{"success": true})
}

// LikePost handles POST /api/posts/like/:id
func (s *Server) LikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, postNotFoundErr)
	}

	liked, err := s.postRepo.IsLiked(c.Context(), userID, postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if liked {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.FieldErrors{"like": "You already liked this post."})
	}

	// A concurrent duplicate like trips the unique index inside Like and
	// comes back as the same field error.
	if likeErr := s.postRepo.Like(c.Context(), userID, postID); likeErr != nil {
		return respondRepoError(c, likeErr)
	}

	return s.respondWithPost(c, postID)
}

// UnlikePost handles POST /api/posts/unlike/:id
func (s *Server) UnlikePost(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	userID := currentUserID(c)

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, postNotFoundErr)
	}

	liked, err := s.postRepo.IsLiked(c.Context(), userID, postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if !liked {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.FieldErrors{"like": "You have not liked this post yet."})
	}

	if unlikeErr := s.postRepo.Unlike(c.Context(), userID, postID); unlikeErr != nil {
		return respondRepoError(c, unlikeErr)
	}

	return s.respondWithPost(c, postID)
}

// CreateComment handles POST /api/posts/comment/:id
func (s *Server) CreateComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}

	var req validation.PostInput
	if err := c.BodyParser(&req); err != nil {
		return models.RespondWithError(c, fiber.StatusBadRequest,
			models.NewValidationError("Invalid request body"))
	}

	if errs, ok := validation.ValidatePost(req); !ok {
		return models.RespondWithError(c, fiber.StatusBadRequest, errs)
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, postNotFoundErr)
	}

	user, err := s.userRepo.GetByID(c.Context(), currentUserID(c))
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}

	comment := &models.Comment{
		PostID: postID,
		UserID: user.ID,
		Text:   req.Text,
		Name:   user.Name,
		Avatar: user.Avatar,
	}
	if addErr := s.postRepo.AddComment(c.Context(), comment); addErr != nil {
		return respondRepoError(c, addErr)
	}

	return s.respondWithPost(c, postID)
}

// DeleteComment handles DELETE /api/posts/comment/:id/:commentId. The
// comment author and the post owner may both remove a comment.
func (s *Server) DeleteComment(c *fiber.Ctx) error {
	postID, err := s.parseID(c, "id")
	if err != nil {
		return nil
	}
	commentID, err := s.parseID(c, "commentId")
	if err != nil {
		return nil
	}

	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if post == nil {
		return models.RespondWithError(c, fiber.StatusNotFound, postNotFoundErr)
	}

	comment, err := s.postRepo.GetComment(c.Context(), postID, commentID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	if comment == nil {
		return models.RespondWithError(c, fiber.StatusNotFound,
			models.FieldErrors{"comment": "The comment does not exist"})
	}

	userID := currentUserID(c)
	if comment.UserID != userID && post.UserID != userID {
		return models.RespondWithError(c, fiber.StatusUnauthorized,
			models.FieldErrors{"comment": "User not authorized"})
	}

	if rmErr := s.postRepo.RemoveComment(c.Context(), postID, commentID); rmErr != nil {
		return respondRepoError(c, rmErr)
	}

	return s.respondWithPost(c, postID)
}

// respondWithPost re-reads the post so mutation responses carry the freshly
// ordered like and comment lists.
func (s *Server) respondWithPost(c *fiber.Ctx, postID uint) error {
	post, err := s.postRepo.GetByID(c.Context(), postID)
	if err != nil {
		return models.RespondWithError(c, fiber.StatusInternalServerError, err)
	}
	return c.JSON(post)
}
