package services

import (
	"context"
	"errors"
	"fmt"

	"mailassign-be/internal/repository"
	"mailassign-be/internal/rules"

	"go.mongodb.org/mongo-driver/mongo"
)

// DirectoryService answers the engine's team-directory questions from the
// user collection.
type DirectoryService struct {
	users *repository.UserRepository
}

var _ rules.Directory = (*DirectoryService)(nil)

func NewDirectoryService(users *repository.UserRepository) *DirectoryService {
	return &DirectoryService{users: users}
}

// ResolveDepartment maps a department to a currently-available member.
func (s *DirectoryService) ResolveDepartment(ctx context.Context, accountID, department string) (string, error) {
	user, err := s.users.FirstAvailableInDepartment(ctx, accountID, department)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return "", fmt.Errorf("department %q: %w", department, rules.ErrDepartmentNotFound)
		}
		return "", err
	}
	return user.ID.Hex(), nil
}

// IsMember reports whether the user id belongs to the account.
func (s *DirectoryService) IsMember(ctx context.Context, accountID, userID string) (bool, error) {
	return s.users.ExistsInAccount(ctx, accountID, userID)
}
