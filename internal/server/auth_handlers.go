package server

import (
	"log/slog"

	"inkwell/internal/middleware"
	"inkwell/internal/models"
	"inkwell/internal/service"

	"github.com/gofiber/fiber/v2"
)

// SignupForm renders the registration page.
func (s *Server) SignupForm(c *fiber.Ctx) error {
	data := s.viewData(c, "Sign Up")
	data["FormUsername"] = ""
	data["FormEmail"] = ""
	return c.Render("auth/signup", data)
}

// Signup handles the registration form submit.
func (s *Server) Signup(c *fiber.Ctx) error {
	username := c.FormValue("username")
	email := c.FormValue("email")

	user, err := s.userService.Register(c.UserContext(), service.RegisterInput{
		Username: username,
		Email:    email,
		Password: c.FormValue("password"),
	})
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			data := s.viewData(c, "Sign Up")
			data["FormError"] = appErrorMessage(err)
			data["FormUsername"] = username
			data["FormEmail"] = email
			return c.Status(fiber.StatusUnprocessableEntity).Render("auth/signup", data)
		}
		return err
	}

	if err := s.signIn(c, user.ID, user.Username, "Welcome to Inkwell!"); err != nil {
		return err
	}
	middleware.Logger.InfoContext(c.UserContext(), "user registered",
		slog.Any("user_id", user.ID), slog.String("username", user.Username))

	return c.Redirect("/", fiber.StatusSeeOther)
}

// LoginForm renders the login page.
func (s *Server) LoginForm(c *fiber.Ctx) error {
	data := s.viewData(c, "Log In")
	data["FormEmail"] = ""
	return c.Render("auth/login", data)
}

// Login handles the login form submit.
func (s *Server) Login(c *fiber.Ctx) error {
	email := c.FormValue("email")

	user, err := s.userService.Authenticate(c.UserContext(), email, c.FormValue("password"))
	if err != nil {
		if models.HasCode(err, models.CodeValidation) {
			data := s.viewData(c, "Log In")
			data["FormError"] = appErrorMessage(err)
			data["FormEmail"] = email
			return c.Status(fiber.StatusUnprocessableEntity).Render("auth/login", data)
		}
		return err
	}

	if err := s.signIn(c, user.ID, user.Username, "Logged in successfully!"); err != nil {
		return err
	}
	middleware.Logger.InfoContext(c.UserContext(), "user logged in", slog.Any("user_id", user.ID))

	return c.Redirect("/", fiber.StatusSeeOther)
}

// Logout destroys the session.
func (s *Server) Logout(c *fiber.Ctx) error {
	_ = s.signOut(c)
	return c.Redirect("/", fiber.StatusSeeOther)
}
