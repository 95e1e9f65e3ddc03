package db

import (
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/types"
)

// DBService interface defines the methods we need from the database
type DBService interface {
	GetUserByAddress(address string) (*types.UserProfile, error)
	GetUsersByAddresses(addresses []string) (map[string]types.UserProfile, error)
	CreateUser(address, username string) (*types.UserProfile, error)
	EnsureUser(address string) (*types.UserProfile, bool, error)
	UpdateUser(address string, update UserUpdate) (*types.UserProfile, error)
	UpdateBalance(address, balance string, updatedAt time.Time) error
	UsernameExists(username string) (bool, error)
	GetRankedUsers(limit int) ([]types.UserProfile, error)
	GetWinnersExcluding(exclude []string, limit int) ([]types.UserProfile, error)
	Close() error
}
