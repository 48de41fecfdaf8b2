package handlers

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/blog-service/internal/api/dto"
	"github.com/spec-kit/blog-service/internal/auth"
	"github.com/spec-kit/blog-service/internal/service"
	"github.com/spec-kit/blog-service/pkg/response"
	apperrors "github.com/spec-kit/blog-service/pkg/util"
)

// credentials are 5-17 non-whitespace characters
var credentialPattern = regexp.MustCompile(`^\S{5,17}$`)

// UsersHandler exposes account and session endpoints.
type UsersHandler struct {
	authService  *service.AuthService
	interactions *service.InteractionService
	articles     *service.ArticleService
}

// NewUsersHandler constructs handler.
func NewUsersHandler(authService *service.AuthService, interactions *service.InteractionService, articles *service.ArticleService) *UsersHandler {
	return &UsersHandler{authService: authService, interactions: interactions, articles: articles}
}

// Register handles POST /user/register.
func (h *UsersHandler) Register(c *fiber.Ctx) error {
	var req dto.RegisterRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !credentialPattern.MatchString(req.Username) || !credentialPattern.MatchString(req.Password) {
		return apperrors.NewValidationError("username and password must be 5-17 characters", nil)
	}

	user, err := h.authService.Register(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return response.Success(c, dto.NewUserView(user))
}

// Login handles POST /user/login.
func (h *UsersHandler) Login(c *fiber.Ctx) error {
	var req dto.LoginRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !credentialPattern.MatchString(req.Username) || !credentialPattern.MatchString(req.Password) {
		return apperrors.NewValidationError("username and password must be 5-17 characters", nil)
	}

	token, expiresAt, err := h.authService.Login(c.UserContext(), req.Username, req.Password)
	if err != nil {
		return err
	}
	return response.Success(c, dto.AuthResponse{Token: token, ExpiresAt: expiresAt})
}

// UserInfo handles GET /user/info.
func (h *UsersHandler) UserInfo(c *fiber.Ctx) error {
	id, _ := auth.IdentityFromContext(c)
	user, err := h.authService.CurrentUser(c.UserContext(), id.UserID)
	if err != nil {
		return err
	}
	return response.Success(c, dto.NewUserView(user))
}

// UpdateProfile handles PUT /user/profile.
func (h *UsersHandler) UpdateProfile(c *fiber.Ctx) error {
	var req dto.UpdateProfileRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.Nickname == "" || req.Email == "" {
		return apperrors.NewValidationError("nickname and email required", nil)
	}

	id, _ := auth.IdentityFromContext(c)
	if err := h.authService.UpdateProfile(c.UserContext(), id.UserID, req.Nickname, req.Email); err != nil {
		return err
	}
	return response.Success(c, nil)
}

// UpdateAvatar handles PATCH /user/avatar.
func (h *UsersHandler) UpdateAvatar(c *fiber.Ctx) error {
	var req dto.UpdateAvatarRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if !strings.HasPrefix(req.AvatarURL, "http://") && !strings.HasPrefix(req.AvatarURL, "https://") {
		return apperrors.NewValidationError("avatar_url must be a URL", nil)
	}

	id, _ := auth.IdentityFromContext(c)
	if err := h.authService.UpdateAvatar(c.UserContext(), id.UserID, req.AvatarURL); err != nil {
		return err
	}
	return response.Success(c, nil)
}

// ChangePassword handles PATCH /user/password. The presented token is
// revoked on success, forcing a fresh login.
func (h *UsersHandler) ChangePassword(c *fiber.Ctx) error {
	var req dto.ChangePasswordRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewValidationError("invalid payload", nil)
	}
	if req.OldPassword == "" || req.NewPassword == "" || req.ConfirmPassword == "" {
		return apperrors.NewValidationError("missing required parameters", nil)
	}
	if req.NewPassword != req.ConfirmPassword {
		return apperrors.NewValidationError("new passwords do not match", nil)
	}
	if !credentialPattern.MatchString(req.NewPassword) {
		return apperrors.NewValidationError("password must be 5-17 characters", nil)
	}

	id, _ := auth.IdentityFromContext(c)
	if err := h.authService.ChangePassword(c.UserContext(), id.UserID, req.OldPassword, req.NewPassword, bearerToken(c)); err != nil {
		return err
	}
	return response.Success(c, nil)
}

// Logout handles POST /user/logout.
func (h *UsersHandler) Logout(c *fiber.Ctx) error {
	if err := h.authService.Logout(c.UserContext(), bearerToken(c)); err != nil {
		return err
	}
	return response.Success(c, nil)
}

// ToggleFollow handles POST /user/follow/:id.
func (h *UsersHandler) ToggleFollow(c *fiber.Ctx) error {
	targetID, err := strconv.ParseInt(c.Params("id"), 10, 64)
	if err != nil || targetID <= 0 {
		return apperrors.NewValidationError("invalid user id", nil)
	}

	id, _ := auth.IdentityFromContext(c)
	result, err := h.interactions.ToggleFollow(c.UserContext(), id.UserID, targetID)
	if err != nil {
		return err
	}
	return response.Success(c, fiber.Map{"following": result.Active})
}

// Following handles GET /user/following.
func (h *UsersHandler) Following(c *fiber.Ctx) error {
	id, _ := auth.IdentityFromContext(c)
	page, pageSize := pageParams(c)
	ids, err := h.interactions.FollowingIDs(c.UserContext(), id.UserID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return response.Success(c, dto.PageResponse{Total: int64(len(ids)), Page: page, PageSize: pageSize, List: ids})
}

// Followers handles GET /user/followers.
func (h *UsersHandler) Followers(c *fiber.Ctx) error {
	id, _ := auth.IdentityFromContext(c)
	page, pageSize := pageParams(c)
	ids, err := h.interactions.FollowerIDs(c.UserContext(), id.UserID, pageSize, (page-1)*pageSize)
	if err != nil {
		return err
	}
	return response.Success(c, dto.PageResponse{Total: int64(len(ids)), Page: page, PageSize: pageSize, List: ids})
}

// Collections handles GET /user/collections, the caller's collected
// articles newest first.
func (h *UsersHandler) Collections(c *fiber.Ctx) error {
	id, _ := auth.IdentityFromContext(c)
	page, pageSize := pageParams(c)
	list, total, err := h.articles.Collections(c.UserContext(), id.UserID, page, pageSize)
	if err != nil {
		return err
	}
	return response.Success(c, dto.PageResponse{Total: total, Page: page, PageSize: pageSize, List: list})
}

func bearerToken(c *fiber.Ctx) string {
	raw := strings.TrimSpace(c.Get(fiber.HeaderAuthorization))
	if len(raw) >= 7 && strings.EqualFold(raw[:7], "bearer ") {
		return strings.TrimSpace(raw[7:])
	}
	return raw
}

func pageParams(c *fiber.Ctx) (page, pageSize int) {
	page, _ = strconv.Atoi(c.Query("page", "1"))
	pageSize, _ = strconv.Atoi(c.Query("page_size", "10"))
	if page < 1 {
		page = 1
	}
	if pageSize < 1 || pageSize > 100 {
		pageSize = 10
	}
	return page, pageSize
}
