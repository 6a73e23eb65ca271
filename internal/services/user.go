package services

import (
	"context"
	"errors"
	"net/mail"
	"slices"
	"strings"

	"github.com/ggorockee/coffeemode/internal/models"
)

const (
	DefaultPageSize = 10
	MaxPageSize     = 100
)

var userRoles = []string{"user", "admin"}

type UserService struct {
	store UserStore
}

func NewUserService(store UserStore) *UserService {
	return &UserService{store: store}
}

type CreateUserRequest struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  string `json:"role,omitempty"`
}

type ListUsersResponse struct {
	Users      []models.User `json:"users"`
	TotalCount int64         `json:"totalCount"`
	Page       int           `json:"page"`
	Size       int           `json:"size"`
	TotalPages int           `json:"totalPages"`
}

// Identity is the verified caller behind a Firebase ID token
type Identity struct {
	UID   string
	Email string
	Name  string
}

func (s *UserService) Create(ctx context.Context, req *CreateUserRequest) (*models.User, error) {
	name := strings.TrimSpace(req.Name)
	email := strings.ToLower(strings.TrimSpace(req.Email))
	role := strings.TrimSpace(req.Role)
	if name == "" {
		return nil, invalidInput("name is required")
	}
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return nil, invalidInput("a valid email is required")
	}
	if role == "" {
		role = "user"
	}
	if !slices.Contains(userRoles, role) {
		return nil, invalidInput("role must be one of %s", strings.Join(userRoles, ", "))
	}
	return s.store.Create(ctx, &models.User{Name: name, Email: email, Role: role})
}

func (s *UserService) GetByID(ctx context.Context, id string) (*models.User, error) {
	return s.store.FindByID(ctx, id)
}

// List pages users in creation order. page is zero based.
func (s *UserService) List(ctx context.Context, page, size int) (*ListUsersResponse, error) {
	if page < 0 {
		return nil, invalidInput("page must not be negative")
	}
	if size <= 0 {
		size = DefaultPageSize
	}
	if size > MaxPageSize {
		return nil, invalidInput("size must not exceed %d", MaxPageSize)
	}

	users, total, err := s.store.List(ctx, page*size, size)
	if err != nil {
		return nil, err
	}
	if users == nil {
		users = []models.User{}
	}
	return &ListUsersResponse{
		Users:      users,
		TotalCount: total,
		Page:       page,
		Size:       size,
		TotalPages: int((total + int64(size) - 1) / int64(size)),
	}, nil
}

// Me returns the user bound to the caller's Firebase UID, creating it on
// first sight.
func (s *UserService) Me(ctx context.Context, id Identity) (*models.User, error) {
	if id.UID == "" {
		return nil, invalidInput("missing firebase uid")
	}
	user, err := s.store.FindByFirebaseUID(ctx, id.UID)
	if err != nil || user != nil {
		return user, err
	}

	email := strings.ToLower(strings.TrimSpace(id.Email))
	if email == "" {
		return nil, invalidInput("firebase account has no email")
	}
	name := strings.TrimSpace(id.Name)
	if name == "" {
		name, _, _ = strings.Cut(email, "@")
	}
	uid := id.UID

	created, err := s.store.Create(ctx, &models.User{FirebaseUID: &uid, Name: name, Email: email, Role: "user"})
	if errors.Is(err, ErrEmailAlreadyUsed) {
		// concurrent first request for the same uid
		if winner, findErr := s.store.FindByFirebaseUID(ctx, uid); findErr == nil && winner != nil {
			return winner, nil
		}
	}
	return created, err
}

