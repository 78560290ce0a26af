package services

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/mail"
	"strconv"
	"strings"

	"github.com/minetrack/apiserver/internal/auth"
	"github.com/minetrack/apiserver/internal/logging"
	"github.com/minetrack/apiserver/internal/storage"
	"github.com/minetrack/apiserver/internal/store"
	"github.com/minetrack/apiserver/types"
)

const (
	minPasswordLength = 6
	defaultAvatarExt  = ".jpg"
)

// RoleManagers may change roles and delete accounts.
var RoleManagers = auth.AllowList{types.RoleAdmin, types.RoleSuperadmin}

// UserRepository defines persistence operations for users.
type UserRepository interface {
	List(ctx context.Context) ([]types.User, error)
	GetByID(ctx context.Context, id int) (types.User, error)
	GetByEmail(ctx context.Context, email string) (types.User, error)
	Create(ctx context.Context, user types.User) (types.User, error)
	UpdateProfile(ctx context.Context, id int, update types.ProfileUpdate) (types.User, error)
	UpdateRole(ctx context.Context, id int, update types.RoleUpdate) (types.User, error)
	UpdateAvatarURL(ctx context.Context, id int, avatarURL string) (types.User, error)
	UpdatePassword(ctx context.Context, id int, passwordHash string) error
	Delete(ctx context.Context, id int) error
}

// AvatarStorage is the object store avatars are written to.
type AvatarStorage interface {
	Put(ctx context.Context, key string, r io.Reader, size int64, contentType string) error
	Delete(ctx context.Context, key string) error
	URL(key string) string
}

// Registration is the input of Register.
type Registration struct {
	Fullname  string  `json:"fullname"`
	Email     string  `json:"email"`
	Password  string  `json:"password"`
	AvatarURL *string `json:"avatar_url"`
	Phone     *string `json:"phone"`
	Position  *string `json:"position"`
}

// UserService encapsulates account use-cases.
type UserService struct {
	repo    UserRepository
	tokens  *auth.TokenIssuer
	avatars AvatarStorage
	log     logging.Logger
}

// NewUserService constructs a UserService. avatars may be nil, in which
// case avatar uploads fail with ErrAvatarStorageDisabled.
func NewUserService(repo UserRepository, tokens *auth.TokenIssuer, avatars AvatarStorage, log logging.Logger) *UserService {
	if log == nil {
		log = logging.Nop()
	}
	return &UserService{repo: repo, tokens: tokens, avatars: avatars, log: log}
}

func (s *UserService) GetByID(ctx context.Context, id int) (types.User, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *UserService) GetByEmail(ctx context.Context, email string) (types.User, error) {
	return s.repo.GetByEmail(ctx, strings.TrimSpace(email))
}

func (s *UserService) List(ctx context.Context) ([]types.User, error) {
	return s.repo.List(ctx)
}

// Register creates an account with the "user" role. A taken email yields
// store.ErrConflict.
func (s *UserService) Register(ctx context.Context, reg Registration) (types.User, error) {
	reg.Fullname = strings.TrimSpace(reg.Fullname)
	reg.Email = strings.TrimSpace(reg.Email)
	if reg.Fullname == "" {
		return types.User{}, validationError("fullname is required")
	}
	if err := validateEmail(reg.Email); err != nil {
		return types.User{}, err
	}
	if len(reg.Password) < minPasswordLength {
		return types.User{}, validationError("password must be at least %d characters", minPasswordLength)
	}

	if _, err := s.repo.GetByEmail(ctx, reg.Email); err == nil {
		return types.User{}, fmt.Errorf("email %s: %w", reg.Email, store.ErrConflict)
	} else if !errors.Is(err, store.ErrNotFound) {
		return types.User{}, fmt.Errorf("check email: %w", err)
	}

	hashed, err := auth.HashPassword(reg.Password)
	if err != nil {
		return types.User{}, fmt.Errorf("hash password: %w", err)
	}

	return s.repo.Create(ctx, types.User{
		Fullname:     reg.Fullname,
		Email:        reg.Email,
		PasswordHash: hashed,
		AvatarURL:    reg.AvatarURL,
		Phone:        reg.Phone,
		Position:     reg.Position,
		Role:         types.RoleUser,
	})
}

// Login checks the email/password pair and returns a signed access token.
// Unknown emails and wrong passwords fail the same way, with an error that
// matches both auth.ErrUnauthenticated and ErrInvalidCredential.
func (s *UserService) Login(ctx context.Context, email, password string) (string, error) {
	user, err := s.repo.GetByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return "", fmt.Errorf("%w: %w", auth.ErrUnauthenticated, ErrInvalidCredential)
		}
		return "", err
	}

	ok, err := auth.CheckPassword(user.PasswordHash, password)
	if err != nil {
		return "", fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return "", fmt.Errorf("%w: %w", auth.ErrUnauthenticated, ErrInvalidCredential)
	}

	return s.tokens.Issue(user.ID, user.Role)
}

// UpdateProfile applies only the supplied fields to the user's profile.
// An explicit null clears avatar_url, phone or position.
func (s *UserService) UpdateProfile(ctx context.Context, id int, update types.ProfileUpdate) (types.User, error) {
	if update.Fullname.Set && (update.Fullname.Value == nil || strings.TrimSpace(*update.Fullname.Value) == "") {
		return types.User{}, validationError("fullname must not be empty")
	}
	if update.Empty() {
		return s.repo.GetByID(ctx, id)
	}
	return s.repo.UpdateProfile(ctx, id, update)
}

// ChangePassword replaces the password after re-checking the current one.
// A wrong current password yields ErrInvalidCredential and leaves the
// stored hash untouched.
func (s *UserService) ChangePassword(ctx context.Context, id int, currentPassword, newPassword string) error {
	if len(currentPassword) < minPasswordLength || len(newPassword) < minPasswordLength {
		return validationError("passwords must be at least %d characters", minPasswordLength)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}

	ok, err := auth.CheckPassword(user.PasswordHash, currentPassword)
	if err != nil {
		return fmt.Errorf("check password: %w", err)
	}
	if !ok {
		return ErrInvalidCredential
	}

	hashed, err := auth.HashPassword(newPassword)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	return s.repo.UpdatePassword(ctx, id, hashed)
}

// UpdateRole changes the role and/or position of targetID on behalf of actor.
func (s *UserService) UpdateRole(ctx context.Context, actor types.User, targetID int, update types.RoleUpdate) (types.User, error) {
	if err := auth.Permit(RoleManagers, actor.Role); err != nil {
		return types.User{}, err
	}
	if update.Role != nil && !types.ValidRole(*update.Role) {
		return types.User{}, validationError("unknown role %q", *update.Role)
	}

	if update.Role == nil && update.Position == nil {
		return s.repo.GetByID(ctx, targetID)
	}
	return s.repo.UpdateRole(ctx, targetID, update)
}

// Delete removes targetID. Acting on your own account is rejected with
// ErrInvalidOperation regardless of role.
func (s *UserService) Delete(ctx context.Context, actor types.User, targetID int) error {
	if actor.ID == targetID {
		return fmt.Errorf("%w: cannot delete your own account", ErrInvalidOperation)
	}
	if err := auth.Permit(RoleManagers, actor.Role); err != nil {
		return err
	}

	target, err := s.repo.GetByID(ctx, targetID)
	if err != nil {
		return err
	}
	if err := s.repo.Delete(ctx, targetID); err != nil {
		return err
	}

	key, ok := s.storedAvatarKey(target)
	if !ok {
		return nil
	}
	if err := s.avatars.Delete(ctx, key); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
		return fmt.Errorf("user deleted but avatar cleanup failed: %w", err)
	}
	return nil
}

// UploadAvatar stores the image for id, replacing any previous upload, and
// points the user's avatar_url at it. The format is detected from the
// content; only JPEG, PNG, GIF and WebP are accepted.
func (s *UserService) UploadAvatar(ctx context.Context, id int, r io.Reader, size int64) (string, error) {
	if s.avatars == nil {
		return "", ErrAvatarStorageDisabled
	}

	head := make([]byte, sniffLen)
	n, err := io.ReadFull(r, head)
	if err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read avatar: %w", err)
	}
	head = head[:n]
	contentType := http.DetectContentType(head)
	ext, ok := avatarExtensions[contentType]
	if !ok {
		return "", validationError("unsupported avatar format %q", contentType)
	}

	user, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return "", err
	}

	key := AvatarKey(id, ext)
	body := io.MultiReader(bytes.NewReader(head), r)
	if err := s.avatars.Put(ctx, key, body, size, contentType); err != nil {
		return "", fmt.Errorf("store avatar: %w", err)
	}

	previous, hadPrevious := s.storedAvatarKey(user)
	url := s.avatars.URL(key)
	if _, err := s.repo.UpdateAvatarURL(ctx, id, url); err != nil {
		return "", err
	}
	if hadPrevious && previous != key {
		if err := s.avatars.Delete(ctx, previous); err != nil && !errors.Is(err, storage.ErrObjectNotFound) {
			s.log.Warn(ctx, "delete previous avatar", "user_id", id, "key", previous, "error", err)
		}
	}
	return url, nil
}

// storedAvatarKey returns the object key behind user's avatar_url when it
// points at an avatar this service uploaded.
func (s *UserService) storedAvatarKey(user types.User) (string, bool) {
	if s.avatars == nil || user.AvatarURL == nil {
		return "", false
	}
	key, ok := strings.CutPrefix(*user.AvatarURL, s.avatars.URL(""))
	if !ok || !strings.HasPrefix(key, avatarKeyPrefix) {
		return "", false
	}
	return key, true
}

const (
	avatarKeyPrefix = "avatars/user_"
	sniffLen        = 512
)

// avatarExtensions maps the accepted sniffed content types to object key
// extensions.
var avatarExtensions = map[string]string{
	"image/jpeg": ".jpg",
	"image/png":  ".png",
	"image/gif":  ".gif",
	"image/webp": ".webp",
}

// AvatarContentType returns the content type an avatar key with ext is
// served as. Extensions outside the accepted set report false.
func AvatarContentType(ext string) (string, bool) {
	ext = strings.ToLower(ext)
	for contentType, known := range avatarExtensions {
		if known == ext {
			return contentType, true
		}
	}
	return "", false
}

// AvatarKey is the object key of a user's avatar. An empty ext means ".jpg".
func AvatarKey(userID int, ext string) string {
	ext = strings.ToLower(ext)
	if ext == "" || ext == "." {
		ext = defaultAvatarExt
	}
	return avatarKeyPrefix + strconv.Itoa(userID) + ext
}

func validateEmail(email string) error {
	if email == "" {
		return validationError("email is required")
	}
	addr, err := mail.ParseAddress(email)
	if err != nil || addr.Address != email {
		return validationError("invalid email address")
	}
	return nil
}
