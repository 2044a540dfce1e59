package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"gorm.io/gorm"

	"github.com/ctfground/ctf-service/internal/models"
	"github.com/ctfground/ctf-service/internal/repositories"
)

// fakeRepo is an in-memory Repository. It hands out copies of its rows
// the way a real scan would, so tests catch services that forget to
// persist a mutation.
type fakeRepo struct {
	mu sync.Mutex

	users         map[uint]*models.User
	problems      map[uint]*models.Problem
	confirmations map[string]*models.Confirmation
	solves        map[[2]uint]bool

	nextUserID    uint
	nextProblemID uint

	now func() time.Time
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{
		users:         make(map[uint]*models.User),
		problems:      make(map[uint]*models.Problem),
		confirmations: make(map[string]*models.Confirmation),
		solves:        make(map[[2]uint]bool),
		now:           time.Now,
	}
}

func (r *fakeRepo) User() repositories.UserRepository                 { return &fakeUserRepo{r} }
func (r *fakeRepo) Problem() repositories.ProblemRepository           { return &fakeProblemRepo{r} }
func (r *fakeRepo) Confirmation() repositories.ConfirmationRepository { return &fakeConfirmationRepo{r} }

func (r *fakeRepo) WithTransaction(ctx context.Context, fn func(repositories.Repository) error) error {
	return fn(r)
}

func (r *fakeRepo) Ping(ctx context.Context) error { return nil }
func (r *fakeRepo) Close() error                   { return nil }

func confKey(email string, option models.ConfirmationPurpose) string {
	return email + "|" + string(option)
}

func copyUser(u *models.User) *models.User {
	clone := *u
	if u.Email != nil {
		email := *u.Email
		clone.Email = &email
	}
	return &clone
}

func copyProblem(p *models.Problem) *models.Problem {
	clone := *p
	if p.Description != nil {
		d := *p.Description
		clone.Description = &d
	}
	if p.Answer != nil {
		a := *p.Answer
		clone.Answer = &a
	}
	return &clone
}

// ===== users =====

type fakeUserRepo struct{ r *fakeRepo }

func (f *fakeUserRepo) Create(ctx context.Context, user *models.User) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, existing := range f.r.users {
		if existing.Name == user.Name {
			return gorm.ErrDuplicatedKey
		}
		if user.Email != nil && existing.Email != nil && *existing.Email == *user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	f.r.nextUserID++
	user.ID = f.r.nextUserID
	f.r.users[user.ID] = copyUser(user)
	return nil
}

func (f *fakeUserRepo) GetByID(ctx context.Context, id uint) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	user, ok := f.r.users[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyUser(user), nil
}

func (f *fakeUserRepo) GetByName(ctx context.Context, name string) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, user := range f.r.users {
		if user.Name == name {
			return copyUser(user), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, user := range f.r.users {
		if user.Email != nil && *user.Email == email {
			return copyUser(user), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeUserRepo) List(ctx context.Context, filters repositories.UserFilters) ([]*models.User, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	ids := make([]uint, 0, len(f.r.users))
	for id := range f.r.users {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []*models.User
	for i, id := range ids {
		if i < filters.Offset {
			continue
		}
		if filters.Limit > 0 && len(out) >= filters.Limit {
			break
		}
		out = append(out, copyUser(f.r.users[id]))
	}
	return out, nil
}

func (f *fakeUserRepo) Update(ctx context.Context, user *models.User) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.users[user.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, existing := range f.r.users {
		if existing.ID == user.ID {
			continue
		}
		if existing.Name == user.Name {
			return gorm.ErrDuplicatedKey
		}
		if user.Email != nil && existing.Email != nil && *existing.Email == *user.Email {
			return gorm.ErrDuplicatedKey
		}
	}
	f.r.users[user.ID] = copyUser(user)
	return nil
}

func (f *fakeUserRepo) Delete(ctx context.Context, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.users[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.users, id)
	for key := range f.r.solves {
		if key[0] == id {
			delete(f.r.solves, key)
		}
	}
	return nil
}

func (f *fakeUserRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, user := range f.r.users {
		if user.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, user := range f.r.users {
		if user.Email != nil && *user.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeUserRepo) Rank(ctx context.Context, skip, limit int) ([]*models.RankEntry, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	totals := make(map[uint]int)
	for key := range f.r.solves {
		problem, ok := f.r.problems[key[1]]
		if !ok {
			continue
		}
		totals[key[0]] += problem.ScoreNow
	}
	var entries []*models.RankEntry
	for userID, total := range totals {
		user, ok := f.r.users[userID]
		if !ok {
			continue
		}
		entries = append(entries, &models.RankEntry{ID: userID, Name: user.Name, TotalScore: total})
	}
	sort.Slice(entries, func(i, j int) bool {
		if entries[i].TotalScore != entries[j].TotalScore {
			return entries[i].TotalScore > entries[j].TotalScore
		}
		return entries[i].ID < entries[j].ID
	})
	if skip > 0 {
		if skip >= len(entries) {
			return nil, nil
		}
		entries = entries[skip:]
	}
	if limit > 0 && len(entries) > limit {
		entries = entries[:limit]
	}
	return entries, nil
}

// ===== problems =====

type fakeProblemRepo struct{ r *fakeRepo }

func (f *fakeProblemRepo) Create(ctx context.Context, problem *models.Problem) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, existing := range f.r.problems {
		if existing.Name == problem.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	f.r.nextProblemID++
	problem.ID = f.r.nextProblemID
	f.r.problems[problem.ID] = copyProblem(problem)
	return nil
}

func (f *fakeProblemRepo) GetByID(ctx context.Context, id uint) (*models.Problem, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	problem, ok := f.r.problems[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return copyProblem(problem), nil
}

func (f *fakeProblemRepo) GetByIDForUpdate(ctx context.Context, id uint) (*models.Problem, error) {
	return f.GetByID(ctx, id)
}

func (f *fakeProblemRepo) GetByName(ctx context.Context, name string) (*models.Problem, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, problem := range f.r.problems {
		if problem.Name == name {
			return copyProblem(problem), nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeProblemRepo) List(ctx context.Context, filters repositories.ProblemFilters) ([]*models.Problem, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	ids := make([]uint, 0, len(f.r.problems))
	for id := range f.r.problems {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })
	var out []*models.Problem
	for i, id := range ids {
		if i < filters.Offset {
			continue
		}
		if filters.Limit > 0 && len(out) >= filters.Limit {
			break
		}
		out = append(out, copyProblem(f.r.problems[id]))
	}
	return out, nil
}

func (f *fakeProblemRepo) Update(ctx context.Context, problem *models.Problem) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.problems[problem.ID]; !ok {
		return gorm.ErrRecordNotFound
	}
	for _, existing := range f.r.problems {
		if existing.ID != problem.ID && existing.Name == problem.Name {
			return gorm.ErrDuplicatedKey
		}
	}
	f.r.problems[problem.ID] = copyProblem(problem)
	return nil
}

func (f *fakeProblemRepo) Delete(ctx context.Context, id uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	if _, ok := f.r.problems[id]; !ok {
		return gorm.ErrRecordNotFound
	}
	delete(f.r.problems, id)
	for key := range f.r.solves {
		if key[1] == id {
			delete(f.r.solves, key)
		}
	}
	return nil
}

func (f *fakeProblemRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	for _, problem := range f.r.problems {
		if problem.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (f *fakeProblemRepo) HasSolve(ctx context.Context, userID, problemID uint) (bool, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	return f.r.solves[[2]uint{userID, problemID}], nil
}

func (f *fakeProblemRepo) CreateSolve(ctx context.Context, userID, problemID uint) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	key := [2]uint{userID, problemID}
	if f.r.solves[key] {
		return gorm.ErrDuplicatedKey
	}
	f.r.solves[key] = true
	return nil
}

// ===== confirmations =====

type fakeConfirmationRepo struct{ r *fakeRepo }

func (f *fakeConfirmationRepo) Upsert(ctx context.Context, confirmation *models.Confirmation) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	clone := *confirmation
	f.r.confirmations[confKey(confirmation.Email, confirmation.Option)] = &clone
	return nil
}

func (f *fakeConfirmationRepo) GetValid(ctx context.Context, email string, option models.ConfirmationPurpose, window time.Duration) (*models.Confirmation, error) {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	confirmation, ok := f.r.confirmations[confKey(email, option)]
	if !ok || confirmation.Expired(window, f.r.now()) {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *confirmation
	return &clone, nil
}

func (f *fakeConfirmationRepo) Delete(ctx context.Context, email string, option models.ConfirmationPurpose) error {
	f.r.mu.Lock()
	defer f.r.mu.Unlock()
	delete(f.r.confirmations, confKey(email, option))
	return nil
}

func (r *fakeRepo) seedUser(name string, email *string, hash string, permission models.Permission) *models.User {
	user := &models.User{Name: name, Email: email, Password: hash, Permission: permission}
	if err := r.User().Create(context.Background(), user); err != nil {
		panic(fmt.Sprintf("seedUser: %v", err))
	}
	return user
}

func (r *fakeRepo) seedProblem(ownerID uint, name string, answer *string, scoreInitial int) *models.Problem {
	problem := &models.Problem{
		OwnerID:      ownerID,
		Name:         name,
		Answer:       answer,
		ScoreInitial: scoreInitial,
		ScoreNow:     scoreInitial,
	}
	if err := r.Problem().Create(context.Background(), problem); err != nil {
		panic(fmt.Sprintf("seedProblem: %v", err))
	}
	return problem
}

func strPtr(s string) *string { return &s }
