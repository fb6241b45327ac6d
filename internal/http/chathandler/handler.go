package chathandler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"chatrelaygo/internal/auth"
	"chatrelaygo/internal/presence"
	"chatrelaygo/internal/services/chatroom"
	"chatrelaygo/internal/services/user"
)

const tokenCookieMaxAge = 3600 // matches the JWT TTL

type Handler struct {
	users    user.IUserService
	rooms    chatroom.IChatRoomService
	presence *presence.Store
	tokens   *auth.TokenManager
}

func New(users user.IUserService, rooms chatroom.IChatRoomService,
	store *presence.Store, tokens *auth.TokenManager) *Handler {
	return &Handler{users: users, rooms: rooms, presence: store, tokens: tokens}
}

func (h *Handler) Register(r gin.IRoutes) {
	r.POST("/api/register", h.register)
	r.POST("/api/login", h.login)

	authed := AuthRequired(h.tokens)
	r.GET("/api/users/:username", authed, h.profile)
	r.PUT("/api/users/:username", authed, h.updateProfile)
	r.GET("/api/users/:username/presence", authed, h.userPresence)
	r.POST("/api/chatrooms", authed, h.createRoom)
	r.GET("/api/chatrooms", authed, h.listRooms)
}

// @Summary		Register a user
// @Description	Creates an account with a bcrypt-hashed password.
// @Tags			Auth
// @Param			body	body	RegisterBody	true	"Credentials"
// @Success		201
// @Failure		409	{object}	ErrorResponse
// @Router			/api/register [post]
func (h *Handler) register(ginCtx *gin.Context) {
	var body RegisterBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	err := h.users.Register(ginCtx.Request.Context(), body.Username, body.Email, body.Password)
	if errors.Is(err, user.ErrUserExists) {
		ginCtx.JSON(http.StatusConflict, &ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusCreated, gin.H{"message": "User created"})
}

// @Summary		Log in
// @Description	Verifies credentials, returns a JWT and sets it as an HTTP-only cookie.
// @Tags			Auth
// @Param			body	body		LoginBody	true	"Credentials"
// @Success		200		{object}	LoginResponse
// @Failure		401		{object}	ErrorResponse
// @Router			/api/login [post]
func (h *Handler) login(ginCtx *gin.Context) {
	var body LoginBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	dto, err := h.users.Authenticate(ginCtx.Request.Context(), body.Username, body.Password)
	if err != nil {
		ginCtx.JSON(http.StatusUnauthorized, &ErrorResponse{Error: "invalid credentials"})
		return
	}

	token, err := h.tokens.Issue(dto.Username)
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}

	ginCtx.SetSameSite(http.SameSiteStrictMode)
	ginCtx.SetCookie("token", token, tokenCookieMaxAge, "/", "", false, true)
	ginCtx.JSON(http.StatusOK, &LoginResponse{
		Token:    token,
		Username: dto.Username,
		Profile:  dto,
	})
}

// @Summary		Get a user profile
// @Tags			Users
// @Param			username	path		string	true	"Username"	default(alice)
// @Success		200			{object}	user.UserDTO
// @Failure		404			{object}	ErrorResponse
// @Router			/api/users/{username} [get]
func (h *Handler) profile(ginCtx *gin.Context) {
	dto, err := h.users.FindByUsername(ginCtx.Request.Context(), ginCtx.Param("username"))
	if errors.Is(err, user.ErrUserNotFound) {
		ginCtx.JSON(http.StatusNotFound, &ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, dto)
}

// @Summary		Update a user profile
// @Description	Users can only update their own bio and theme preference.
// @Tags			Users
// @Param			username	path	string				true	"Username"	default(alice)
// @Param			body		body	UpdateProfileBody	true	"Profile fields"
// @Success		200	{object}	user.UserDTO
// @Failure		403	{object}	ErrorResponse
// @Router			/api/users/{username} [put]
func (h *Handler) updateProfile(ginCtx *gin.Context) {
	username := ginCtx.Param("username")
	if username != AuthUser(ginCtx) {
		ginCtx.JSON(http.StatusForbidden, &ErrorResponse{Error: "cannot edit another user's profile"})
		return
	}

	var body UpdateProfileBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}
	if body.ThemePreference == "" {
		body.ThemePreference = "light"
	}

	dto, err := h.users.UpdateProfile(ginCtx.Request.Context(), username, body.Bio, body.ThemePreference)
	if errors.Is(err, user.ErrUserNotFound) {
		ginCtx.JSON(http.StatusNotFound, &ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, dto)
}

// @Summary		Get live presence for a user
// @Description	Serves from the in-process presence store, then the Redis mirror, then Postgres.
// @Tags			Users
// @Param			username	path		string	true	"Username"	default(alice)
// @Success		200			{object}	PresenceResponse
// @Failure		404			{object}	ErrorResponse
// @Router			/api/users/{username}/presence [get]
func (h *Handler) userPresence(ginCtx *gin.Context) {
	username := ginCtx.Param("username")

	if rec, ok := h.presence.Lookup(ginCtx.Request.Context(), username); ok {
		ginCtx.JSON(http.StatusOK, &PresenceResponse{
			Username: username,
			Online:   rec.Online,
			LastSeen: rec.LastSeen,
		})
		return
	}

	dto, err := h.users.FindByUsername(ginCtx.Request.Context(), username)
	if errors.Is(err, user.ErrUserNotFound) {
		ginCtx.JSON(http.StatusNotFound, &ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, &PresenceResponse{
		Username: username,
		Online:   dto.Online,
		LastSeen: dto.LastSeen,
	})
}

// @Summary		Create a chat room
// @Tags			ChatRooms
// @Param			body	body		CreateRoomBody	true	"Room payload"
// @Success		201		{object}	chatroom.ChatRoomDTO
// @Failure		400		{object}	ErrorResponse
// @Router			/api/chatrooms [post]
func (h *Handler) createRoom(ginCtx *gin.Context) {
	var body CreateRoomBody
	if err := ginCtx.ShouldBindJSON(&body); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	dto, err := h.rooms.Create(ginCtx.Request.Context(), body.Name, AuthUser(ginCtx), body.IsPrivate)
	if errors.Is(err, chatroom.ErrEmptyName) {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusCreated, dto)
}

// @Summary		List chat rooms
// @Tags			ChatRooms
// @Param			limit	query		int	false	"Max results (0-100)"	minimum(0)	maximum(100)	default(50)
// @Param			offset	query		int	false	"Offset for pagination"	minimum(0)	default(0)
// @Success		200		{array}		chatroom.ChatRoomDTO
// @Failure		400		{object}	ErrorResponse
// @Router			/api/chatrooms [get]
func (h *Handler) listRooms(ginCtx *gin.Context) {
	var q ListRoomsQuery
	if err := ginCtx.ShouldBindQuery(&q); err != nil {
		ginCtx.JSON(http.StatusBadRequest, &ErrorResponse{Error: err.Error()})
		return
	}

	out, err := h.rooms.List(ginCtx.Request.Context(), q.Limit, q.Offset)
	if err != nil {
		ginCtx.JSON(http.StatusInternalServerError, &ErrorResponse{Error: err.Error()})
		return
	}
	ginCtx.JSON(http.StatusOK, out)
}
