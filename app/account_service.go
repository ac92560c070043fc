// Package app holds the application services: accounts, the inspector
// and rendering/export. Services speak to storage through ports and
// never touch the HTTP layer.
package app

import (
	"context"
	"crypto/rand"
	"fmt"
	"log"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"
	"golang.org/x/crypto/bcrypt"

	"autoficate/internal/errors"
	"autoficate/models"
	"autoficate/ports"
)

const codeLength = 4

// maxCodeAttempts bounds the collision retry loop when generating a
// user code.
const maxCodeAttempts = 20

// MediaPurger drops everything a user keeps in blob storage plus the
// image record. Satisfied by ExportService.
type MediaPurger interface {
	PurgeMedia(ctx context.Context, userCode string)
}

type AccountService struct {
	users ports.UserRepository
	sets  ports.ItemSetRepository
	media MediaPurger
}

func NewAccountService(users ports.UserRepository, sets ports.ItemSetRepository, media MediaPurger) *AccountService {
	return &AccountService{users: users, sets: sets, media: media}
}

// NameSignup creates an account from just a name. The account gets a
// placeholder email until the user registers fully.
func (s *AccountService) NameSignup(ctx context.Context, firstName, lastName, email string) (*models.User, error) {
	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	if firstName == "" || lastName == "" {
		return nil, errors.Validation("first and last name are required")
	}

	code, err := s.generateCode(ctx)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	user := &models.User{
		ID:         uuid.New(),
		Email:      models.PlaceholderEmail(strings.TrimSpace(email), code),
		FirstName:  firstName,
		LastName:   lastName,
		Username:   fmt.Sprintf("%s-%s-%s", firstName, lastName, code),
		UniqueCode: code,
		IsActive:   true,
		CreatedAt:  now,
		UpdatedAt:  now,
	}

	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("[Account] name signup %s (%s)", user.Username, user.UniqueCode)
	return user, nil
}

// Signup completes a full registration. When userCode names the
// session's placeholder account that account is upgraded in place,
// keeping its data; otherwise a fresh verified account is created.
// Other placeholder accounts decorated with the same email are purged
// first.
func (s *AccountService) Signup(ctx context.Context, userCode, firstName, lastName, email, password string) (*models.User, error) {
	email = strings.TrimSpace(email)
	if email == "" || password == "" {
		return nil, errors.Validation("email and password are required")
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return nil, errors.WithCode(errors.CodeInternalError, err)
	}

	if err := s.purgePlaceholders(ctx, email, userCode); err != nil {
		return nil, err
	}

	if userCode != "" {
		user, err := s.users.GetUserByCode(ctx, userCode)
		if err != nil {
			return nil, err
		}
		user.Email = email
		user.PasswordHash = string(hash)
		user.IsVerified = true
		if err := s.users.UpdateUser(ctx, user); err != nil {
			return nil, err
		}
		log.Printf("[Account] upgraded %s to a registered account", user.UniqueCode)
		return user, nil
	}

	code, err := s.generateCode(ctx)
	if err != nil {
		return nil, err
	}

	firstName = strings.TrimSpace(firstName)
	lastName = strings.TrimSpace(lastName)
	now := time.Now().UTC()
	user := &models.User{
		ID:           uuid.New(),
		Email:        email,
		FirstName:    firstName,
		LastName:     lastName,
		Username:     fmt.Sprintf("%s-%s-%s", firstName, lastName, code),
		UniqueCode:   code,
		PasswordHash: string(hash),
		IsActive:     true,
		IsVerified:   true,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.users.CreateUser(ctx, user); err != nil {
		return nil, err
	}
	log.Printf("[Account] full signup %s (%s)", user.Username, user.UniqueCode)
	return user, nil
}

// Login checks credentials and returns the account.
func (s *AccountService) Login(ctx context.Context, email, password string) (*models.User, error) {
	user, err := s.users.GetUserByEmail(ctx, strings.TrimSpace(email))
	if err != nil {
		if errors.IsCode(err, errors.CodeNotFound) {
			return nil, errors.Validation("Invalid Credentials")
		}
		return nil, err
	}

	if bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)) != nil {
		return nil, errors.Validation("Invalid Credentials")
	}
	if !user.IsActive {
		return nil, errors.Validation("Your account is inactive. Please contact support.")
	}
	return user, nil
}

// GetByCode fetches the account a session points at.
func (s *AccountService) GetByCode(ctx context.Context, userCode string) (*models.User, error) {
	if userCode == "" {
		return nil, errors.SessionMissing("user_code")
	}
	return s.users.GetUserByCode(ctx, userCode)
}

// purgePlaceholders removes unregistered accounts decorated with the
// given email, along with their item sets and stored media. The
// account identified by
// keepCode survives so an in-session upgrade keeps its data.
func (s *AccountService) purgePlaceholders(ctx context.Context, email, keepCode string) error {
	placeholders, err := s.users.ListUnregisteredByEmail(ctx, email)
	if err != nil {
		return err
	}
	for _, p := range placeholders {
		if p.UniqueCode == keepCode {
			continue
		}
		if err := s.sets.DeleteAllForUser(ctx, p.UniqueCode); err != nil {
			return err
		}
		s.media.PurgeMedia(ctx, p.UniqueCode)
		if err := s.users.DeleteUser(ctx, p.ID.String()); err != nil {
			return err
		}
		log.Printf("[Account] purged placeholder account %s", p.UniqueCode)
	}
	return nil
}

// generateCode draws random codes from the alphabet until one is free.
func (s *AccountService) generateCode(ctx context.Context) (string, error) {
	for attempt := 0; attempt < maxCodeAttempts; attempt++ {
		code, err := randomCode(codeLength)
		if err != nil {
			return "", errors.WithCode(errors.CodeInternalError, err)
		}
		exists, err := s.users.CodeExists(ctx, code)
		if err != nil {
			return "", err
		}
		if !exists {
			return code, nil
		}
	}
	return "", errors.New(errors.CodeInternalError, "could not allocate a unique user code")
}

func randomCode(length int) (string, error) {
	alphabet := models.CodeAlphabet
	out := make([]byte, length)
	for i := range out {
		n, err := rand.Int(rand.Reader, big.NewInt(int64(len(alphabet))))
		if err != nil {
			return "", err
		}
		out[i] = alphabet[n.Int64()]
	}
	return string(out), nil
}
