package server

import (
	"errors"
	"net/http"
	"net/mail"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/verity-social/verity/models"
)

type signupRequest struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
}

type sessionResponse struct {
	Token  string `json:"token"`
	UserID uint   `json:"user_id"`
}

func (s *Server) handleSignup(c echo.Context) error {
	var req signupRequest
	if err := c.Bind(&req); err != nil {
		return &echo.HTTPError{Code: 400, Message: "invalid request body"}
	}
	if _, err := mail.ParseAddress(req.Email); err != nil {
		return &echo.HTTPError{Code: 400, Message: "invalid email"}
	}
	if len(req.Password) < 8 {
		return &echo.HTTPError{Code: 400, Message: "password too short"}
	}

	hash, err := encodePassword(req.Password)
	if err != nil {
		return err
	}

	user := models.User{
		Email:      req.Email,
		FirstName:  req.FirstName,
		LastName:   req.LastName,
		Password:   hash,
		IsActive:   true,
		DateJoined: time.Now(),
	}
	if err := s.db.Create(&user).Error; err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return &echo.HTTPError{Code: 400, Message: "email already registered"}
		}
		return err
	}

	token, err := s.createSessionToken(&user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Token: token, UserID: user.ID})
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

func (s *Server) handleLogin(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return &echo.HTTPError{Code: 400, Message: "invalid request body"}
	}

	var user models.User
	err := s.db.Where("email = ?", req.Email).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrInvalidEmailOrPassword
	}
	if err != nil {
		return err
	}
	if err := verifyPassword(user.Password, req.Password); err != nil {
		return err
	}
	if !user.IsActive {
		return &echo.HTTPError{Code: 401, Message: "account is deactivated"}
	}

	token, err := s.createSessionToken(&user)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, sessionResponse{Token: token, UserID: user.ID})
}

type submitPostRequest struct {
	Content   string `json:"content"`
	Cites     *uint  `json:"cites,omitempty"`
	RepliesTo *uint  `json:"replies_to,omitempty"`
}

func (s *Server) handleSubmitPost(c echo.Context) error {
	var req submitPostRequest
	if err := c.Bind(&req); err != nil {
		return &echo.HTTPError{Code: 400, Message: "invalid request body"}
	}
	if req.Content == "" {
		return &echo.HTTPError{Code: 400, Message: "content is required"}
	}

	user := sessionUser(c)
	receipt, err := s.net.SubmitPost(c.Request().Context(), user.ID, req.Content, req.Cites, req.RepliesTo)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, receipt)
}

type ratePostRequest struct {
	Type  string `json:"type"`
	Score int    `json:"score"`
}

func (s *Server) handleRatePost(c echo.Context) error {
	postID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return &echo.HTTPError{Code: 400, Message: "invalid post id"}
	}
	var req ratePostRequest
	if err := c.Bind(&req); err != nil {
		return &echo.HTTPError{Code: 400, Message: "invalid request body"}
	}
	if req.Type == "" {
		return &echo.HTTPError{Code: 400, Message: "rating type is required"}
	}

	user := sessionUser(c)
	res, err := s.net.RatePost(c.Request().Context(), user.ID, uint(postID), req.Type, req.Score)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func publishedParam(c echo.Context) bool {
	if v := c.QueryParam("published"); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
	}
	return true
}

func (s *Server) handleTimeline(c echo.Context) error {
	user := sessionUser(c)
	posts, err := s.net.Timeline(c.Request().Context(), user.ID, publishedParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

func (s *Server) handleSearch(c echo.Context) error {
	keyword := c.QueryParam("q")
	if keyword == "" {
		return &echo.HTTPError{Code: 400, Message: "missing query parameter q"}
	}
	posts, err := s.net.Search(c.Request().Context(), keyword, publishedParam(c))
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, posts)
}

type fameEntry struct {
	ExpertiseArea string `json:"expertise_area"`
	FameLevel     string `json:"fame_level"`
	NumericValue  int64  `json:"numeric_value"`
}

type fameResponse struct {
	User models.User `json:"user"`
	Fame []fameEntry `json:"fame"`
}

func (s *Server) handleFame(c echo.Context) error {
	userID := sessionUser(c).ID
	if v := c.QueryParam("user_id"); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return &echo.HTTPError{Code: 400, Message: "invalid user_id"}
		}
		userID = uint(id)
	}

	user, recs, err := s.net.Fame(c.Request().Context(), userID)
	if err != nil {
		return err
	}

	entries := make([]fameEntry, 0, len(recs))
	for _, rec := range recs {
		entries = append(entries, fameEntry{
			ExpertiseArea: rec.ExpertiseArea.Label,
			FameLevel:     rec.FameLevel.Name,
			NumericValue:  rec.FameLevel.NumericValue,
		})
	}
	return c.JSON(http.StatusOK, fameResponse{User: *user, Fame: entries})
}

func (s *Server) handleExperts(c echo.Context) error {
	out, err := s.net.Experts(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) handleBullshitters(c echo.Context) error {
	out, err := s.net.Bullshitters(c.Request().Context())
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, out)
}

func (s *Server) targetParam(c echo.Context) (*models.User, error) {
	targetID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return nil, &echo.HTTPError{Code: 400, Message: "invalid user id"}
	}
	var target models.User
	if err := s.db.First(&target, uint(targetID)).Error; err != nil {
		return nil, err
	}
	return &target, nil
}

func (s *Server) handleFollow(c echo.Context) error {
	target, err := s.targetParam(c)
	if err != nil {
		return err
	}
	res, err := s.net.Follow(c.Request().Context(), sessionUser(c).ID, target.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleUnfollow(c echo.Context) error {
	target, err := s.targetParam(c)
	if err != nil {
		return err
	}
	res, err := s.net.Unfollow(c.Request().Context(), sessionUser(c).ID, target.ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, res)
}

func (s *Server) handleFollows(c echo.Context) error {
	users, err := s.net.Follows(c.Request().Context(), sessionUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}

func (s *Server) handleFollowers(c echo.Context) error {
	users, err := s.net.Followers(c.Request().Context(), sessionUser(c).ID)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, users)
}
