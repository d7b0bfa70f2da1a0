package memory

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/repository"
)

type userRepo struct {
	db *DB
}

func (r *userRepo) Create(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	if err := r.db.checkUnique("", user.Username, user.Email); err != nil {
		return err
	}
	if user.ID == "" {
		user.ID = newID()
	}
	stamp(&user.CreatedAt)
	user.UpdatedAt = user.CreatedAt
	r.db.users = append(r.db.users, *user)
	return nil
}

func (r *userRepo) Update(_ context.Context, user *domain.User) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	idx := r.db.userIndex(user.ID)
	if idx < 0 {
		return repository.ErrNotFound
	}
	if err := r.db.checkUnique(user.ID, user.Username, user.Email); err != nil {
		return err
	}
	stored := *user
	stored.CreatedAt = r.db.users[idx].CreatedAt
	if stored.UpdatedAt.Before(stored.CreatedAt) {
		stored.UpdatedAt = stored.CreatedAt
	}
	r.db.users[idx] = stored
	return nil
}

// Delete mirrors the foreign keys of the SQL schema: owned rows go with the
// user and assignments are cleared.
func (r *userRepo) Delete(_ context.Context, id string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()

	idx := r.db.userIndex(id)
	if idx < 0 {
		return repository.ErrNotFound
	}
	r.db.users = append(r.db.users[:idx], r.db.users[idx+1:]...)

	owned := map[string]bool{}
	for _, t := range r.db.tickets {
		if t.UserID == id {
			owned[t.ID] = true
		}
	}
	r.db.tickets = removeWhere(r.db.tickets, func(t domain.Ticket) bool { return owned[t.ID] })
	r.db.notes = removeWhere(r.db.notes, func(n domain.TicketNote) bool { return owned[n.TicketID] })
	for i := range r.db.tickets {
		if r.db.tickets[i].AssignedToUser(id) {
			r.db.tickets[i].AssignedTo = nil
		}
	}
	r.db.accounts = removeWhere(r.db.accounts, func(a domain.Account) bool { return a.UserID == id })
	r.db.logins = removeWhere(r.db.logins, func(l domain.LoginHistory) bool { return l.UserID == id })
	r.db.stats = removeWhere(r.db.stats, func(s domain.StatsSnapshot) bool { return s.UserID == id })
	return nil
}

func (r *userRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.ID == id })
}

func (r *userRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Email == email })
}

func (r *userRepo) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	return r.find(func(u domain.User) bool { return u.Username == username })
}

func (r *userRepo) ExistsByUsernameOrEmail(_ context.Context, username, email string) (bool, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	return r.db.checkUnique("", username, email) != nil, nil
}

func (r *userRepo) List(_ context.Context, filter repository.UserFilter) ([]domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()

	var matched []domain.User
	for _, u := range r.db.users {
		if len(filter.Roles) > 0 && !containsRole(filter.Roles, u.Role) {
			continue
		}
		if filter.BusinessType != nil && (u.BusinessType == nil || *u.BusinessType != *filter.BusinessType) {
			continue
		}
		matched = append(matched, u)
	}
	sorted := newestFirst(matched, func(u domain.User) time.Time { return u.CreatedAt })
	return limit(sorted, filter.Limit), nil
}

func (r *userRepo) find(match func(domain.User) bool) (*domain.User, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, u := range r.db.users {
		if match(u) {
			found := u
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (db *DB) userIndex(id string) int {
	for i, u := range db.users {
		if u.ID == id {
			return i
		}
	}
	return -1
}

func (db *DB) checkUnique(selfID, username, email string) error {
	for _, u := range db.users {
		if u.ID == selfID {
			continue
		}
		if u.Username == username {
			return fmt.Errorf("%w: users_username_key", repository.ErrDuplicate)
		}
		if u.Email == email {
			return fmt.Errorf("%w: users_email_key", repository.ErrDuplicate)
		}
	}
	return nil
}

func containsRole(roles []domain.Role, role domain.Role) bool {
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}

type accountRepo struct {
	db *DB
}

func (r *accountRepo) Create(_ context.Context, account *domain.Account) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for _, a := range r.db.accounts {
		if a.UserID == account.UserID {
			return fmt.Errorf("%w: accounts_user_id_key", repository.ErrDuplicate)
		}
	}
	if account.ID == "" {
		account.ID = newID()
	}
	stamp(&account.CreatedAt)
	r.db.accounts = append(r.db.accounts, *account)
	return nil
}

func (r *accountRepo) Update(_ context.Context, account *domain.Account) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	for i := range r.db.accounts {
		if r.db.accounts[i].UserID == account.UserID {
			r.db.accounts[i].ExpiryDate = account.ExpiryDate
			return nil
		}
	}
	return repository.ErrNotFound
}

func (r *accountRepo) GetByUserID(_ context.Context, userID string) (*domain.Account, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	for _, a := range r.db.accounts {
		if a.UserID == userID {
			found := a
			return &found, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *accountRepo) DeleteByUserID(_ context.Context, userID string) error {
	r.db.mu.Lock()
	defer r.db.mu.Unlock()
	before := len(r.db.accounts)
	r.db.accounts = removeWhere(r.db.accounts, func(a domain.Account) bool { return a.UserID == userID })
	if len(r.db.accounts) == before {
		return repository.ErrNotFound
	}
	return nil
}

func (r *accountRepo) List(_ context.Context) ([]domain.Account, error) {
	r.db.mu.RLock()
	defer r.db.mu.RUnlock()
	out := append([]domain.Account(nil), r.db.accounts...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].ExpiryDate.Before(out[j].ExpiryDate) })
	return out, nil
}
