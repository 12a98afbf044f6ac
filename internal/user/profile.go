package user

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"
	"github.com/samber/lo"

	"github.com/sudo-init-do/freelancehub/internal/db"
	"github.com/sudo-init-do/freelancehub/internal/utils"
)

type UpdateProfileRequest struct {
	Name       *string  `json:"name"`
	Bio        *string  `json:"bio"`
	Skills     []string `json:"skills"`
	HourlyRate *float64 `json:"hourly_rate" validate:"omitempty,gte=0"`
	Location   *string  `json:"location"`
	Website    *string  `json:"website"`
}

// normalizeSkills trims entries and drops duplicates and blanks.
func normalizeSkills(skills []string) []string {
	trimmed := lo.FilterMap(skills, func(s string, _ int) (string, bool) {
		s = strings.TrimSpace(s)
		return s, s != ""
	})
	return lo.Uniq(trimmed)
}

// UpdateProfile applies a partial update to the caller's own record.
func UpdateProfile(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	req := new(UpdateProfileRequest)
	if err := c.Bind(req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "invalid request"})
	}
	if err := c.Validate(req); err != nil {
		return err
	}

	set := []string{"updated_at = NOW()"}
	args := []any{}
	add := func(col string, val any) {
		args = append(args, val)
		set = append(set, fmt.Sprintf("%s = $%d", col, len(args)))
	}

	if req.Name != nil && *req.Name != "" {
		add("name", *req.Name)
	}
	if req.Bio != nil {
		add("bio", *req.Bio)
	}
	if req.Skills != nil {
		add("skills", normalizeSkills(req.Skills))
	}
	if req.HourlyRate != nil {
		add("hourly_rate", *req.HourlyRate)
	}
	if req.Location != nil {
		add("location", *req.Location)
	}
	if req.Website != nil {
		add("website", *req.Website)
	}

	if len(args) == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "no fields to update"})
	}

	args = append(args, userID)
	query := fmt.Sprintf(`UPDATE users SET %s WHERE id = $%d AND is_active = TRUE`,
		strings.Join(set, ", "), len(args))

	res, err := db.Conn.Exec(context.Background(), query, args...)
	if err != nil {
		return utils.ServerError(c, "failed to update profile", err)
	}
	if res.RowsAffected() == 0 {
		return c.JSON(http.StatusNotFound, echo.Map{"message": "user not found"})
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "profile updated successfully"})
}

// UpdateAvatar stores the caller's avatar URL. The file itself lives
// elsewhere; this is an opaque reference.
func UpdateAvatar(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	var req struct {
		Avatar string `json:"avatar"`
	}
	if err := c.Bind(&req); err != nil || req.Avatar == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"message": "avatar URL is required"})
	}

	_, err := db.Conn.Exec(context.Background(),
		`UPDATE users SET avatar_url = $1, updated_at = NOW() WHERE id = $2`, req.Avatar, userID)
	if err != nil {
		return utils.ServerError(c, "failed to update avatar", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "avatar updated successfully", "avatar": req.Avatar})
}

// DeactivateAccount soft-deletes the caller's own account.
func DeactivateAccount(c echo.Context) error {
	userID, ok := c.Get("user_id").(string)
	if !ok || userID == "" {
		return c.JSON(http.StatusUnauthorized, echo.Map{"message": "unauthorized"})
	}

	_, err := db.Conn.Exec(context.Background(),
		`UPDATE users SET is_active = FALSE, updated_at = NOW() WHERE id = $1`, userID)
	if err != nil {
		return utils.ServerError(c, "failed to deactivate account", err)
	}

	return c.JSON(http.StatusOK, echo.Map{"message": "account deactivated successfully"})
}
