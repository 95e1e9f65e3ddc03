package db

import (
	"database/sql"
	stderrors "errors"
	"time"

	"github.com/SIMPLYBOYS/tachi/internal/errors"
	"github.com/SIMPLYBOYS/tachi/internal/types"
	"github.com/SIMPLYBOYS/tachi/pkg/logger"
	"github.com/lib/pq"
)

const uniqueViolation = "23505"

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanUser(row rowScanner) (*types.UserProfile, error) {
	var (
		u                types.UserProfile
		balanceUpdatedAt sql.NullTime
	)
	err := row.Scan(&u.ID, &u.WalletAddress, &u.Username, &u.Wins, &u.Losses, &u.WinRate,
		&u.MonWon, &u.Balance, &balanceUpdatedAt, &u.CreatedAt, &u.UpdatedAt)
	if err != nil {
		return nil, err
	}
	if balanceUpdatedAt.Valid {
		t := balanceUpdatedAt.Time
		u.BalanceUpdatedAt = &t
	}
	return &u, nil
}

func scanUsers(rows *sql.Rows) ([]types.UserProfile, error) {
	defer rows.Close()

	users := []types.UserProfile{}
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, &errors.DatabaseError{Operation: "scan user", Err: err}
		}
		users = append(users, *u)
	}
	if err := rows.Err(); err != nil {
		return nil, &errors.DatabaseError{Operation: "iterate users", Err: err}
	}
	return users, nil
}

// IsUniqueViolation reports whether err is a PostgreSQL unique constraint failure.
func IsUniqueViolation(err error) bool {
	var pqErr *pq.Error
	return stderrors.As(err, &pqErr) && pqErr.Code == uniqueViolation
}

func isNotFound(err error) bool {
	var nf *errors.NotFoundError
	return stderrors.As(err, &nf)
}

// GetUserByAddress retrieves a user by their wallet address
func (s *DBServiceImpl) GetUserByAddress(address string) (*types.UserProfile, error) {
	address = NormalizeAddress(address)
	u, err := scanUser(s.db.QueryRow(`SELECT `+userColumns+` FROM users WHERE wallet_address = $1`, address))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &errors.NotFoundError{Resource: "user", Identifier: address}
		}
		return nil, &errors.DatabaseError{Operation: "get user by address", Err: err}
	}
	return u, nil
}

// GetUsersByAddresses loads the profiles that exist for addresses, keyed by normalized address.
func (s *DBServiceImpl) GetUsersByAddresses(addresses []string) (map[string]types.UserProfile, error) {
	normalized := make([]string, len(addresses))
	for i, a := range addresses {
		normalized[i] = NormalizeAddress(a)
	}
	rows, err := s.db.Query(`SELECT `+userColumns+` FROM users WHERE wallet_address = ANY($1)`, pq.Array(normalized))
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "get users by addresses", Err: err}
	}
	users, err := scanUsers(rows)
	if err != nil {
		return nil, err
	}
	byAddress := make(map[string]types.UserProfile, len(users))
	for _, u := range users {
		byAddress[u.WalletAddress] = u
	}
	return byAddress, nil
}

// CreateUser creates a new user
func (s *DBServiceImpl) CreateUser(address, username string) (*types.UserProfile, error) {
	u, err := scanUser(s.db.QueryRow(`
		INSERT INTO users (wallet_address, username)
		VALUES ($1, $2)
		RETURNING `+userColumns, NormalizeAddress(address), username))
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "create user", Err: err}
	}
	return u, nil
}

// EnsureUser returns the profile for address, creating it with a generated
// username on first sight. created is false when the row already existed,
// including when a concurrent insert won the race.
func (s *DBServiceImpl) EnsureUser(address string) (*types.UserProfile, bool, error) {
	address = NormalizeAddress(address)

	existing, err := s.GetUserByAddress(address)
	if err == nil {
		return existing, false, nil
	}
	if !isNotFound(err) {
		return nil, false, err
	}

	username, err := s.usernames.GenerateUnique(s.UsernameExists)
	if err != nil {
		return nil, false, err
	}

	created, err := s.CreateUser(address, username)
	if err != nil {
		if IsUniqueViolation(err) {
			logger.Info("User %s already created concurrently, returning existing row", address)
			if existing, ferr := s.GetUserByAddress(address); ferr == nil {
				return existing, false, nil
			}
		}
		return nil, false, err
	}

	logger.Info("Created user %s with username %s", address, username)
	return created, true, nil
}

// UpdateUser applies update and recomputes the win rate whenever wins or losses change.
func (s *DBServiceImpl) UpdateUser(address string, update UserUpdate) (*types.UserProfile, error) {
	address = NormalizeAddress(address)

	tx, err := s.db.Begin()
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "begin update user", Err: err}
	}
	defer tx.Rollback()

	current, err := scanUser(tx.QueryRow(`SELECT `+userColumns+` FROM users WHERE wallet_address = $1 FOR UPDATE`, address))
	if err != nil {
		if err == sql.ErrNoRows {
			return nil, &errors.NotFoundError{Resource: "user", Identifier: address}
		}
		return nil, &errors.DatabaseError{Operation: "load user for update", Err: err}
	}
	if !update.touchesRecord() {
		return current, nil
	}

	if update.Username != nil {
		current.Username = *update.Username
	}
	if update.MonWon != nil {
		current.MonWon = *update.MonWon
	}
	if update.Wins != nil || update.Losses != nil {
		if update.Wins != nil {
			current.Wins = *update.Wins
		}
		if update.Losses != nil {
			current.Losses = *update.Losses
		}
		current.WinRate = WinRate(current.Wins, current.Losses)
	}

	updated, err := scanUser(tx.QueryRow(`
		UPDATE users
		SET username = $2, wins = $3, losses = $4, win_rate = $5, mon_won = $6, updated_at = NOW()
		WHERE wallet_address = $1
		RETURNING `+userColumns,
		address, current.Username, current.Wins, current.Losses, current.WinRate, current.MonWon))
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "update user", Err: err}
	}

	if err := tx.Commit(); err != nil {
		return nil, &errors.DatabaseError{Operation: "commit update user", Err: err}
	}
	return updated, nil
}

// UpdateBalance stores a wallet balance read from the chain.
func (s *DBServiceImpl) UpdateBalance(address, balance string, updatedAt time.Time) error {
	address = NormalizeAddress(address)
	result, err := s.db.Exec(`
		UPDATE users
		SET balance = $2, balance_updated_at = $3, updated_at = NOW()
		WHERE wallet_address = $1`, address, balance, updatedAt)
	if err != nil {
		return &errors.DatabaseError{Operation: "update balance", Err: err}
	}
	n, err := result.RowsAffected()
	if err != nil {
		return &errors.DatabaseError{Operation: "update balance", Err: err}
	}
	if n == 0 {
		return &errors.NotFoundError{Resource: "user", Identifier: address}
	}
	return nil
}

func (s *DBServiceImpl) UsernameExists(username string) (bool, error) {
	var exists bool
	err := s.db.QueryRow(`SELECT EXISTS(SELECT 1 FROM users WHERE username = $1)`, username).Scan(&exists)
	if err != nil {
		return false, &errors.DatabaseError{Operation: "check username", Err: err}
	}
	return exists, nil
}

// GetRankedUsers returns profiles with any recorded game, best first.
func (s *DBServiceImpl) GetRankedUsers(limit int) ([]types.UserProfile, error) {
	rows, err := s.db.Query(`
		SELECT `+userColumns+`
		FROM users
		WHERE wins > 0 OR losses > 0
		ORDER BY wins DESC, mon_won DESC
		LIMIT $1`, limit)
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "get ranked users", Err: err}
	}
	return scanUsers(rows)
}

// GetWinnersExcluding returns profiles with at least one win whose address is not in exclude.
func (s *DBServiceImpl) GetWinnersExcluding(exclude []string, limit int) ([]types.UserProfile, error) {
	normalized := make([]string, len(exclude))
	for i, a := range exclude {
		normalized[i] = NormalizeAddress(a)
	}
	rows, err := s.db.Query(`
		SELECT `+userColumns+`
		FROM users
		WHERE wins > 0 AND NOT (wallet_address = ANY($1))
		ORDER BY wins DESC, mon_won DESC
		LIMIT $2`, pq.Array(normalized), limit)
	if err != nil {
		return nil, &errors.DatabaseError{Operation: "get winners excluding", Err: err}
	}
	return scanUsers(rows)
}
