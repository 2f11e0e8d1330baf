package handler

import (
	"errors"
	"io"
	"net/http"
	"strings"

	"anoa.com/signupform/internal/entity"
	"anoa.com/signupform/internal/middleware"
	notif "anoa.com/signupform/internal/modules/notification/service"
	"anoa.com/signupform/internal/modules/signup/dto"
	"anoa.com/signupform/internal/modules/signup/repository"
	signup "anoa.com/signupform/internal/modules/signup/service"
	"anoa.com/signupform/pkg/apperror"
	"anoa.com/signupform/pkg/preview"
	"anoa.com/signupform/pkg/response"
	"anoa.com/signupform/pkg/validator"
	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const DefaultMaxUploadBytes = 5 << 20

var acceptedImageTypes = map[string]bool{
	"image/png":  true,
	"image/jpeg": true,
}

type Options struct {
	MaxUploadBytes    int64
	ControllerOptions []signup.Option
}

type SignupHandler struct {
	sessions    repository.SessionRepository
	previews    preview.Store
	tokens      *middleware.SessionMiddleware
	redisClient *redis.Client
	logger      *zap.Logger
	opts        Options
}

func NewSignupHandler(
	sessions repository.SessionRepository,
	previews preview.Store,
	tokens *middleware.SessionMiddleware,
	redisClient *redis.Client,
	logger *zap.Logger,
	opts Options,
) *SignupHandler {
	if opts.MaxUploadBytes <= 0 {
		opts.MaxUploadBytes = DefaultMaxUploadBytes
	}
	return &SignupHandler{
		sessions:    sessions,
		previews:    previews,
		tokens:      tokens,
		redisClient: redisClient,
		logger:      logger,
		opts:        opts,
	}
}

func (h *SignupHandler) CreateSession(c *gin.Context) {
	id := uuid.New()
	inbox := notif.NewInbox(id)

	notifier := notif.Fanout{inbox, notif.NewLogNotifier(h.logger, id)}
	if h.redisClient != nil {
		notifier = append(notifier, notif.NewRedisNotifier(h.redisClient, h.logger, id))
	}

	session := &repository.Session{
		ID:         id,
		Inbox:      inbox,
		Controller: signup.NewFormController(h.previews, notifier, h.logger, h.opts.ControllerOptions...),
	}

	token, expiresAt, err := h.tokens.Issue(id)
	if err != nil {
		session.Controller.Close()
		response.ResponseError(c, apperror.New(http.StatusInternalServerError, "failed to issue session token", err))
		return
	}
	h.sessions.Create(session)

	c.JSON(http.StatusCreated, dto.SessionResponse{
		SessionID: id,
		Token:     token,
		TokenType: "Bearer",
		ExpiresIn: expiresAt.Unix(),
		Draft:     session.Controller.Snapshot(),
	})
}

func (h *SignupHandler) GetDraft(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	session.Lock()
	view := session.Controller.Snapshot()
	session.Unlock()

	c.JSON(http.StatusOK, view)
}

func (h *SignupHandler) UpdateField(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var change dto.FieldChange
	if strings.HasPrefix(c.ContentType(), "multipart/form-data") && c.PostForm("name") == entity.FieldProfilePicture {
		file, err := h.readPicture(c)
		if err != nil {
			response.ResponseError(c, err)
			return
		}
		change = dto.FieldChange{Name: entity.FieldProfilePicture, Kind: dto.KindFile, File: file}
	} else {
		var input dto.FieldChangeInput
		if err := c.ShouldBind(&input); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
			return
		}
		change = input.ToFieldChange()
	}

	session.Lock()
	applied := session.Controller.ApplyFieldChange(change)
	view := session.Controller.Snapshot()
	session.Unlock()

	c.JSON(http.StatusOK, dto.FieldChangeResponse{Applied: applied, Draft: view})
}

// readPicture returns nil, nil when the input was cleared.
func (h *SignupHandler) readPicture(c *gin.Context) (*preview.UploadedFile, error) {
	fileHeader, err := c.FormFile("file")
	if errors.Is(err, http.ErrMissingFile) {
		return nil, nil
	}
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "failed to read profile picture", apperror.ErrBadRequest)
	}

	if fileHeader.Size > h.opts.MaxUploadBytes {
		return nil, apperror.ErrPayloadTooLarge
	}

	f, err := fileHeader.Open()
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "failed to open profile picture", err)
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, h.opts.MaxUploadBytes+1))
	if err != nil {
		return nil, apperror.New(http.StatusBadRequest, "failed to read profile picture", err)
	}
	if int64(len(data)) > h.opts.MaxUploadBytes {
		return nil, apperror.ErrPayloadTooLarge
	}

	contentType := http.DetectContentType(data)
	if !acceptedImageTypes[contentType] {
		return nil, apperror.ErrUnsupportedMedia
	}

	return &preview.UploadedFile{
		Name:        fileHeader.Filename,
		ContentType: contentType,
		Data:        data,
	}, nil
}

func (h *SignupHandler) ToggleShowPassword(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	session.Lock()
	session.Controller.ToggleShowPassword()
	view := session.Controller.Snapshot()
	session.Unlock()

	c.JSON(http.StatusOK, view)
}

// Submit answers 400 while a required field is empty or the terms are not
// accepted. Otherwise it answers 200 and the outcome and notifications carry
// the result.
func (h *SignupHandler) Submit(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	session.Lock()
	if session.Controller.Closed() {
		session.Unlock()
		response.ResponseError(c, apperror.ErrSessionExpired)
		return
	}
	check := dto.NewSubmitCheck(session.Controller.Draft())
	if err := binding.Validator.ValidateStruct(&check); err != nil {
		session.Unlock()
		c.JSON(http.StatusBadRequest, gin.H{"error": validator.FormatValidationError(err)})
		return
	}
	outcome := session.Controller.Submit()
	notifications := session.Inbox.Drain()
	view := session.Controller.Snapshot()
	session.Unlock()

	c.JSON(http.StatusOK, dto.SubmitResponse{
		Outcome:       outcome,
		Notifications: notifications,
		Draft:         view,
	})
}

func (h *SignupHandler) DiscardSession(c *gin.Context) {
	sessionID, err := response.GetSessionID(c)
	if err != nil {
		response.ResponseError(c, err)
		return
	}

	if !h.sessions.Delete(sessionID) {
		response.ResponseError(c, apperror.ErrSessionExpired)
		return
	}

	c.Status(http.StatusNoContent)
}

func (h *SignupHandler) GetPreview(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	file, ok := h.previews.Open(id)
	if !ok {
		response.ResponseError(c, apperror.ErrNotFound)
		return
	}

	c.Header("Cache-Control", "private, no-store")
	c.Data(http.StatusOK, file.ContentType, file.Data)
}

func (h *SignupHandler) session(c *gin.Context) (*repository.Session, bool) {
	sessionID, err := response.GetSessionID(c)
	if err != nil {
		response.ResponseError(c, err)
		return nil, false
	}

	session, ok := h.sessions.Get(sessionID)
	if !ok {
		response.ResponseError(c, apperror.ErrSessionExpired)
		return nil, false
	}
	return session, true
}
