package httpapi

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"secureshare/internal/common"
	"secureshare/internal/cryptox"
	"secureshare/internal/server/models"
)

// ---- wire DTOs ----

type userJSON struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role"`
}

func toUserJSON(u *models.User) userJSON {
	return userJSON{ID: u.ID, Name: u.Name, Email: u.Email, Role: u.Role.String()}
}

type fileJSON struct {
	ID         string    `json:"id"`
	Filename   string    `json:"filename"`
	Size       int64     `json:"size"`
	UploadDate time.Time `json:"upload_date"`
	OwnerID    string    `json:"owner_id"`
}

func toFileJSON(f *models.File) fileJSON {
	return fileJSON{ID: f.ID, Filename: f.Filename, Size: f.Size, UploadDate: f.UploadDate, OwnerID: f.OwnerID}
}

type registerRequest struct {
	Name     string `json:"name"`
	Email    string `json:"email"`
	Password string `json:"password"`
}

type loginRequest struct {
	Email    string `json:"email"`
	Password string `json:"password"`
}

type verifyRequest struct {
	VerificationID string `json:"verification_id"`
	Code           string `json:"code"`
}

type createShareRequest struct {
	FileID     string `json:"file_id"`
	GranteeID  string `json:"grantee_id"`
	Permission string `json:"permission"`
	TTLSeconds int    `json:"ttl_seconds"`
}

type shareJSON struct {
	Token      string    `json:"token"`
	FileID     string    `json:"file_id"`
	GranteeID  string    `json:"grantee_id"`
	Permission string    `json:"permission"`
	ExpiresAt  time.Time `json:"expires_at"`
}

// ---- auth ----

func (s *Server) handleRegister(c *gin.Context) {
	var req registerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}
	if req.Name == "" || req.Email == "" || req.Password == "" {
		c.JSON(http.StatusBadRequest, gin.H{"error": "name, email and password are required"})
		return
	}

	user, err := s.auth.Register(c.Request.Context(), req.Name, req.Email, []byte(req.Password))
	if err != nil {
		if errors.Is(err, common.ErrAlreadyExists) {
			c.JSON(http.StatusConflict, gin.H{"error": "email already registered"})
			return
		}
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toUserJSON(user))
}

func (s *Server) handleLogin(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	verificationID, err := s.auth.Login(c.Request.Context(), req.Email, []byte(req.Password))
	if err != nil {
		if errors.Is(err, common.ErrUnauthorized) {
			c.JSON(http.StatusUnauthorized, gin.H{"error": "invalid credentials"})
			return
		}
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"verification_id": verificationID})
}

func (s *Server) handleVerify(c *gin.Context) {
	var req verifyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	user, token, err := s.auth.Verify(c.Request.Context(), req.VerificationID, req.Code)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidCode):
			// a wrong code is a retryable 400, never a 401: the session
			// being established is not the session being used
			c.JSON(http.StatusBadRequest, gin.H{"error": "invalid verification code"})
		case errors.Is(err, common.ErrVerificationExpired):
			c.JSON(http.StatusGone, gin.H{"error": "verification window expired"})
		default:
			s.fail(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{"token": token, "user": toUserJSON(user)})
}

func (s *Server) handleLogout(c *gin.Context) {
	if err := s.auth.Logout(c.Request.Context(), bearerToken(c)); err != nil {
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

// ---- files ----

func (s *Server) handleListFiles(c *gin.Context) {
	files, err := s.files.List(c.Request.Context(), caller(c))
	if err != nil {
		s.fail(c, err)
		return
	}

	result := make([]fileJSON, 0, len(files))
	for _, f := range files {
		result = append(result, toFileJSON(f))
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleUpload(c *gin.Context) {
	env := &cryptox.Envelope{}
	if err := c.ShouldBindJSON(env); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed envelope"})
		return
	}

	file, err := s.files.Upload(c.Request.Context(), caller(c), env)
	if err != nil {
		if errors.Is(err, common.ErrValidation) {
			c.JSON(http.StatusBadRequest, gin.H{"error": "malformed envelope"})
			return
		}
		s.fail(c, err)
		return
	}

	c.JSON(http.StatusCreated, toFileJSON(file))
}

func (s *Server) handleDownload(c *gin.Context) {
	_, env, err := s.files.Download(c.Request.Context(), caller(c), c.Param("id"))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		case errors.Is(err, common.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not your file"})
		default:
			s.fail(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, env)
}

func (s *Server) handleDeleteFile(c *gin.Context) {
	if err := s.files.Delete(c.Request.Context(), caller(c), c.Param("id")); err != nil {
		switch {
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		case errors.Is(err, common.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not your file"})
		default:
			s.fail(c, err)
		}
		return
	}
	c.Status(http.StatusOK)
}

// ---- shares ----

func (s *Server) handleCreateShare(c *gin.Context) {
	var req createShareRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "malformed request body"})
		return
	}

	share, err := s.shares.Create(c.Request.Context(), caller(c),
		req.FileID, req.GranteeID, req.Permission, req.TTLSeconds)
	if err != nil {
		switch {
		case errors.Is(err, common.ErrInvalidShareTTL):
			c.JSON(http.StatusBadRequest, gin.H{"error": "ttl is not one of the allowed values"})
		case errors.Is(err, common.ErrValidation):
			c.JSON(http.StatusBadRequest, gin.H{"error": "permission must be view or download"})
		case errors.Is(err, common.ErrForbidden):
			c.JSON(http.StatusForbidden, gin.H{"error": "not your file"})
		case errors.Is(err, common.ErrNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "file not found"})
		default:
			s.fail(c, err)
		}
		return
	}

	c.JSON(http.StatusCreated, shareJSON{
		Token:      share.Token,
		FileID:     share.FileID,
		GranteeID:  share.GranteeID,
		Permission: share.Permission,
		ExpiresAt:  share.ExpiresAt,
	})
}

func (s *Server) handleResolveShare(c *gin.Context) {
	share, file, env, err := s.shares.Resolve(c.Request.Context(), c.Param("token"))
	if err != nil {
		switch {
		case errors.Is(err, common.ErrGrantNotFound):
			c.JSON(http.StatusNotFound, gin.H{"error": "share not found"})
		case errors.Is(err, common.ErrGrantExpired):
			c.JSON(http.StatusGone, gin.H{"error": "share expired"})
		default:
			s.fail(c, err)
		}
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"record":     toFileJSON(file),
		"envelope":   env,
		"permission": share.Permission,
	})
}

// ---- users ----

func (s *Server) handleListUsers(c *gin.Context) {
	users, err := s.auth.ListUsers(c.Request.Context())
	if err != nil {
		s.fail(c, err)
		return
	}

	result := make([]userJSON, 0, len(users))
	for _, u := range users {
		result = append(result, toUserJSON(u))
	}
	c.JSON(http.StatusOK, result)
}

func (s *Server) handleDeleteUser(c *gin.Context) {
	if err := s.auth.DeleteUser(c.Request.Context(), c.Param("id")); err != nil {
		if errors.Is(err, common.ErrNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "user not found"})
			return
		}
		s.fail(c, err)
		return
	}
	c.Status(http.StatusOK)
}

func (s *Server) fail(c *gin.Context, err error) {
	s.log.Error(c.Request.Context(), "request failed", "path", c.FullPath(), "error", err)
	c.JSON(http.StatusInternalServerError, gin.H{"error": "internal error"})
}
