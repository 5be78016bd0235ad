package server

import (
	"context"
	"errors"
	"strconv"
	"strings"

	"inkwell/internal/middleware"
	"inkwell/internal/models"

	"github.com/gofiber/fiber/v2"
)

const (
	flashSuccessKey = "flash_success"
	flashErrorKey   = "flash_error"
	sessionUserID   = "userID"
	sessionUsername = "username"
)

// Flash carries one-shot messages for the next rendered page.
type Flash struct {
	Success string
	Error   string
}

// methodOverride promotes a POST carrying a _method form field to the verb
// the form could not express.
func methodOverride() fiber.Handler {
	return func(c *fiber.Ctx) error {
		if c.Method() == fiber.MethodPost {
			switch strings.ToUpper(c.FormValue("_method")) {
			case fiber.MethodPut:
				c.Method(fiber.MethodPut)
			case fiber.MethodPatch:
				c.Method(fiber.MethodPatch)
			case fiber.MethodDelete:
				c.Method(fiber.MethodDelete)
			}
		}
		return c.Next()
	}
}

// currentUser returns the logged-in user's ID and username, or (0, "") for
// guests.
func (s *Server) currentUser(c *fiber.Ctx) (uint, string) {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return 0, ""
	}
	id, ok := sess.Get(sessionUserID).(uint)
	if !ok {
		return 0, ""
	}
	name, _ := sess.Get(sessionUsername).(string)
	return id, name
}

// signIn rotates the session ID and binds it to the user. The welcome flash
// goes into the same session instance: Regenerate invalidates the old session
// ID, so a later Store.Get in the same request would resurrect it and clobber
// the login cookie.
func (s *Server) signIn(c *fiber.Ctx, userID uint, username, flashMessage string) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return models.NewInternalError("failed to open session", err)
	}
	if err := sess.Regenerate(); err != nil {
		return models.NewInternalError("failed to rotate session", err)
	}
	sess.Set(sessionUserID, userID)
	sess.Set(sessionUsername, username)
	if flashMessage != "" {
		sess.Set(flashSuccessKey, flashMessage)
	}
	if err := sess.Save(); err != nil {
		return models.NewInternalError("failed to save session", err)
	}
	return nil
}

func (s *Server) signOut(c *fiber.Ctx) error {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return nil
	}
	return sess.Destroy()
}

// flash stores a one-shot message in the session.
func (s *Server) flash(c *fiber.Ctx, key, message string) {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return
	}
	sess.Set(key, message)
	_ = sess.Save()
}

func (s *Server) flashSuccess(c *fiber.Ctx, message string) {
	s.flash(c, flashSuccessKey, message)
}

func (s *Server) flashError(c *fiber.Ctx, message string) {
	s.flash(c, flashErrorKey, message)
}

// popFlash reads and clears the pending flash messages.
func (s *Server) popFlash(c *fiber.Ctx) Flash {
	sess, err := s.sessions.Get(c)
	if err != nil {
		return Flash{}
	}
	var f Flash
	f.Success, _ = sess.Get(flashSuccessKey).(string)
	f.Error, _ = sess.Get(flashErrorKey).(string)
	if f.Success != "" || f.Error != "" {
		sess.Delete(flashSuccessKey)
		sess.Delete(flashErrorKey)
		_ = sess.Save()
	}
	return f
}

// viewData assembles the fields every page template expects.
func (s *Server) viewData(c *fiber.Ctx, title string) fiber.Map {
	userID, username := s.currentUser(c)
	return fiber.Map{
		"Title":       title,
		"LoggedIn":    userID != 0,
		"CurrentUser": username,
		"UserID":      userID,
		"Flash":       s.popFlash(c),
		"FormError":   "",
	}
}

// AuthRequired redirects guests to the login page. It also records the user
// ID in locals and the request context so logs and rate limits key on it.
func (s *Server) AuthRequired(c *fiber.Ctx) error {
	userID, _ := s.currentUser(c)
	if userID == 0 {
		s.flashError(c, "Please log in to continue.")
		return c.Redirect("/login", fiber.StatusSeeOther)
	}

	c.Locals("userID", userID)
	c.SetUserContext(context.WithValue(c.UserContext(), middleware.UserIDKey, userID))
	return c.Next()
}

// RequireGuest sends logged-in users back home from the auth pages.
func (s *Server) RequireGuest(c *fiber.Ctx) error {
	if userID, _ := s.currentUser(c); userID != 0 {
		return c.Redirect("/", fiber.StatusSeeOther)
	}
	return c.Next()
}

// parseID reads a positive integer route parameter.
func parseID(c *fiber.Ctx, param string) (uint, error) {
	id, err := strconv.ParseUint(c.Params(param), 10, 32)
	if err != nil || id == 0 {
		return 0, models.NewNotFoundError("Page", c.Params(param))
	}
	return uint(id), nil
}

// parsePage reads the page query parameter, defaulting to the first page.
func parsePage(c *fiber.Ctx) int {
	page := c.QueryInt("page", 1)
	if page < 1 {
		page = 1
	}
	return page
}

// pagination is the view model for page navigation links.
type pagination struct {
	Page       int
	TotalPages int
	HasPrev    bool
	HasNext    bool
	PrevPage   int
	NextPage   int
}

func paginate(page int, total int64, perPage int) pagination {
	totalPages := int((total + int64(perPage) - 1) / int64(perPage))
	if totalPages < 1 {
		totalPages = 1
	}
	return pagination{
		Page:       page,
		TotalPages: totalPages,
		HasPrev:    page > 1,
		HasNext:    page < totalPages,
		PrevPage:   page - 1,
		NextPage:   page + 1,
	}
}

// appErrorMessage extracts the user-facing message from an application error.
func appErrorMessage(err error) string {
	var appErr *models.AppError
	if errors.As(err, &appErr) {
		return appErr.Message
	}
	return "Something went wrong."
}

// renderError renders the shared error page.
func (s *Server) renderError(c *fiber.Ctx, status int, message string) error {
	data := s.viewData(c, "Error")
	data["Status"] = status
	data["Message"] = message
	if err := c.Status(status).Render("error", data); err != nil {
		return c.Status(status).SendString(message)
	}
	return nil
}
