// Package apptest provides in-memory implementations of the persistence
// ports for use-case tests. The fakes enforce the same uniqueness and
// atomicity contracts as the postgres repositories, so tests exercise
// the contracts the real storage provides.
package apptest

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/dagbjork/verimod/internal/application/ports"
	"github.com/dagbjork/verimod/internal/domain"
	"github.com/dagbjork/verimod/internal/domain/errors"
)

// Fixture bundles fakes sharing one state.
type Fixture struct {
	state    *state
	Users    *FakeUsers
	Sessions *FakeSessions
	Projects *FakeProjects
	Accesses *FakeAccesses
	Queries  *FakeQueries
	Locks    *FakeLocks
}

type state struct {
	mu       sync.Mutex
	seq      int64
	users    map[int64]domain.User
	sessions map[int64]domain.Session
	projects map[int64]domain.Project
	accesses map[int64]domain.Access
	queries  map[int64]domain.Query
	locks    map[int64]domain.EditLock
}

func New() *Fixture {
	s := &state{
		users:    make(map[int64]domain.User),
		sessions: make(map[int64]domain.Session),
		projects: make(map[int64]domain.Project),
		accesses: make(map[int64]domain.Access),
		queries:  make(map[int64]domain.Query),
		locks:    make(map[int64]domain.EditLock),
	}
	return &Fixture{
		state:    s,
		Users:    &FakeUsers{s: s},
		Sessions: &FakeSessions{s: s},
		Projects: &FakeProjects{s: s},
		Accesses: &FakeAccesses{s: s},
		Queries:  &FakeQueries{s: s},
		Locks:    &FakeLocks{s: s},
	}
}

func (s *state) nextID() int64 {
	s.seq++
	return s.seq
}

// FakeUsers implements ports.UserRepository in memory.
type FakeUsers struct {
	s *state
}

func (f *FakeUsers) Create(_ context.Context, user domain.User) (*domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Username == user.Username {
			return nil, errors.E(errors.KindAlreadyExists, "a user with that username already exists")
		}
		if u.Email == user.Email {
			return nil, errors.E(errors.KindAlreadyExists, "a user with that email already exists")
		}
	}
	user.ID = f.s.nextID()
	f.s.users[user.ID] = user
	return &user, nil
}

func (f *FakeUsers) GetByID(_ context.Context, id int64) (*domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if u, ok := f.s.users[id]; ok {
		return &u, nil
	}
	return nil, nil
}

func (f *FakeUsers) GetByUsername(_ context.Context, username string) (*domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Username == username {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (f *FakeUsers) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, u := range f.s.users {
		if u.Email == email {
			u := u
			return &u, nil
		}
	}
	return nil, nil
}

func (f *FakeUsers) GetByIDs(_ context.Context, ids []int64) ([]domain.UserInfo, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var infos []domain.UserInfo
	for _, id := range ids {
		if u, ok := f.s.users[id]; ok {
			infos = append(infos, domain.UserInfo{ID: u.ID, Username: u.Username})
		}
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

func (f *FakeUsers) Update(_ context.Context, user domain.User) (*domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.users[user.ID]; !ok {
		return nil, errors.E(errors.KindNotFound, "no user found with given id")
	}
	for id, u := range f.s.users {
		if id == user.ID {
			continue
		}
		if u.Username == user.Username {
			return nil, errors.E(errors.KindAlreadyExists, "a user with that username already exists")
		}
		if u.Email == user.Email {
			return nil, errors.E(errors.KindAlreadyExists, "a user with that email already exists")
		}
	}
	f.s.users[user.ID] = user
	return &user, nil
}

func (f *FakeUsers) Delete(_ context.Context, id int64) (*domain.User, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	u, ok := f.s.users[id]
	if !ok {
		return nil, errors.E(errors.KindNotFound, "no user found with given id")
	}
	for pid, p := range f.s.projects {
		if p.OwnerID != id {
			continue
		}
		for qid, q := range f.s.queries {
			if q.ProjectID == pid {
				delete(f.s.queries, qid)
			}
		}
		for aid, a := range f.s.accesses {
			if a.ProjectID == pid {
				delete(f.s.accesses, aid)
			}
		}
		delete(f.s.locks, pid)
		delete(f.s.projects, pid)
	}
	for aid, a := range f.s.accesses {
		if a.UserID == id {
			delete(f.s.accesses, aid)
		}
	}
	for sid, s := range f.s.sessions {
		if s.UserID == id {
			delete(f.s.sessions, sid)
		}
	}
	delete(f.s.users, id)
	return &u, nil
}

// FakeSessions implements ports.SessionRepository in memory. DeleteErr
// and ReplaceErr, when set, force the matching method to fail.
type FakeSessions struct {
	s          *state
	DeleteErr  error
	ReplaceErr error
}

func (f *FakeSessions) Create(_ context.Context, userID int64, accessToken, refreshToken string) (*domain.Session, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	s := domain.Session{
		ID:           f.s.nextID(),
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		UpdatedAt:    time.Now(),
	}
	f.s.sessions[s.ID] = s
	return &s, nil
}

func (f *FakeSessions) GetByToken(_ context.Context, kind domain.TokenKind, token string) (*domain.Session, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, s := range f.s.sessions {
		if sessionToken(s, kind) == token {
			s := s
			return &s, nil
		}
	}
	return nil, nil
}

func (f *FakeSessions) Replace(_ context.Context, refreshToken, newAccessToken, newRefreshToken string) (*domain.Session, error) {
	if f.ReplaceErr != nil {
		return nil, f.ReplaceErr
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for id, s := range f.s.sessions {
		if s.RefreshToken == refreshToken {
			s.AccessToken = newAccessToken
			s.RefreshToken = newRefreshToken
			s.UpdatedAt = time.Now()
			f.s.sessions[id] = s
			return &s, nil
		}
	}
	return nil, errors.E(errors.KindNotFound, "no session found with given id")
}

func (f *FakeSessions) DeleteByToken(_ context.Context, kind domain.TokenKind, token string) (*domain.Session, error) {
	if f.DeleteErr != nil {
		return nil, f.DeleteErr
	}
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for id, s := range f.s.sessions {
		if sessionToken(s, kind) == token {
			delete(f.s.sessions, id)
			return &s, nil
		}
	}
	return nil, errors.E(errors.KindNotFound, "no session found with given id")
}

func (f *FakeSessions) DeleteStale(_ context.Context, cutoff time.Time) (int64, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var n int64
	for id, s := range f.s.sessions {
		if s.UpdatedAt.Before(cutoff) {
			delete(f.s.sessions, id)
			n++
		}
	}
	return n, nil
}

// Touch overrides a session's updated-at time for retention tests.
func (f *FakeSessions) Touch(refreshToken string, at time.Time) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for id, s := range f.s.sessions {
		if s.RefreshToken == refreshToken {
			s.UpdatedAt = at
			f.s.sessions[id] = s
		}
	}
}

// Count returns the number of live sessions.
func (f *FakeSessions) Count() int {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	return len(f.s.sessions)
}

func sessionToken(s domain.Session, kind domain.TokenKind) string {
	if kind == domain.TokenRefresh {
		return s.RefreshToken
	}
	return s.AccessToken
}

// FakeProjects implements ports.ProjectRepository in memory.
type FakeProjects struct {
	s *state
}

func (f *FakeProjects) Create(_ context.Context, project domain.Project, sessionID int64) (*domain.Project, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, p := range f.s.projects {
		if p.OwnerID == project.OwnerID && p.Name == project.Name {
			return nil, errors.E(errors.KindAlreadyExists, "a project with that name already exists")
		}
	}
	project.ID = f.s.nextID()
	f.s.projects[project.ID] = project
	aid := f.s.nextID()
	f.s.accesses[aid] = domain.Access{
		ID:        aid,
		Role:      domain.RoleEditor,
		UserID:    project.OwnerID,
		ProjectID: project.ID,
	}
	f.s.locks[project.ID] = domain.EditLock{
		ProjectID:      project.ID,
		SessionID:      sessionID,
		LatestActivity: time.Now(),
	}
	return &project, nil
}

func (f *FakeProjects) GetByID(_ context.Context, id int64) (*domain.Project, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if p, ok := f.s.projects[id]; ok {
		return &p, nil
	}
	return nil, nil
}

func (f *FakeProjects) ListInfoByUserID(_ context.Context, userID int64) ([]domain.ProjectInfo, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var infos []domain.ProjectInfo
	for _, a := range f.s.accesses {
		if a.UserID != userID {
			continue
		}
		p, ok := f.s.projects[a.ProjectID]
		if !ok {
			continue
		}
		infos = append(infos, domain.ProjectInfo{
			ProjectID: p.ID,
			Name:      p.Name,
			OwnerID:   p.OwnerID,
			Role:      a.Role,
		})
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ProjectID < infos[j].ProjectID })
	return infos, nil
}

func (f *FakeProjects) Update(_ context.Context, project domain.Project, invalidate bool) (*domain.Project, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if _, ok := f.s.projects[project.ID]; !ok {
		return nil, errors.E(errors.KindNotFound, "no project found with given id")
	}
	if invalidate {
		for id, q := range f.s.queries {
			if q.ProjectID == project.ID {
				q.Outdated = true
				f.s.queries[id] = q
			}
		}
	}
	f.s.projects[project.ID] = project
	return &project, nil
}

func (f *FakeProjects) Delete(_ context.Context, id int64) (*domain.Project, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	p, ok := f.s.projects[id]
	if !ok {
		return nil, errors.E(errors.KindNotFound, "no project found with given id")
	}
	for qid, q := range f.s.queries {
		if q.ProjectID == id {
			delete(f.s.queries, qid)
		}
	}
	for aid, a := range f.s.accesses {
		if a.ProjectID == id {
			delete(f.s.accesses, aid)
		}
	}
	delete(f.s.locks, id)
	delete(f.s.projects, id)
	return &p, nil
}

// FakeAccesses implements ports.AccessRepository in memory.
type FakeAccesses struct {
	s *state
}

func (f *FakeAccesses) Create(_ context.Context, access domain.Access) (*domain.Access, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, a := range f.s.accesses {
		if a.UserID == access.UserID && a.ProjectID == access.ProjectID {
			return nil, errors.E(errors.KindAlreadyExists, "user already has access to that project")
		}
	}
	access.ID = f.s.nextID()
	f.s.accesses[access.ID] = access
	return &access, nil
}

func (f *FakeAccesses) GetByID(_ context.Context, id int64) (*domain.Access, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if a, ok := f.s.accesses[id]; ok {
		return &a, nil
	}
	return nil, nil
}

func (f *FakeAccesses) GetByUserAndProject(_ context.Context, userID, projectID int64) (*domain.Access, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	for _, a := range f.s.accesses {
		if a.UserID == userID && a.ProjectID == projectID {
			a := a
			return &a, nil
		}
	}
	return nil, nil
}

func (f *FakeAccesses) ListByProject(_ context.Context, projectID int64) ([]domain.AccessInfo, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var infos []domain.AccessInfo
	for _, a := range f.s.accesses {
		if a.ProjectID != projectID {
			continue
		}
		info := domain.AccessInfo{ID: a.ID, Role: a.Role, UserID: a.UserID}
		if u, ok := f.s.users[a.UserID]; ok {
			info.Username = u.Username
		}
		infos = append(infos, info)
	}
	sort.Slice(infos, func(i, j int) bool { return infos[i].ID < infos[j].ID })
	return infos, nil
}

func (f *FakeAccesses) UpdateRole(_ context.Context, id int64, role domain.Role) (*domain.Access, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.accesses[id]
	if !ok {
		return nil, errors.E(errors.KindNotFound, "no access found with given id")
	}
	a.Role = role
	f.s.accesses[id] = a
	return &a, nil
}

func (f *FakeAccesses) Delete(_ context.Context, id int64) (*domain.Access, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	a, ok := f.s.accesses[id]
	if !ok {
		return nil, errors.E(errors.KindNotFound, "no access found with given id")
	}
	delete(f.s.accesses, id)
	return &a, nil
}

// FakeQueries implements ports.QueryRepository in memory.
type FakeQueries struct {
	s *state
}

func (f *FakeQueries) Create(_ context.Context, query domain.Query) (*domain.Query, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	query.ID = f.s.nextID()
	query.Result = nil
	query.Outdated = false
	f.s.queries[query.ID] = query
	return &query, nil
}

func (f *FakeQueries) GetByID(_ context.Context, id int64) (*domain.Query, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if q, ok := f.s.queries[id]; ok {
		return &q, nil
	}
	return nil, nil
}

func (f *FakeQueries) GetAllByProjectID(_ context.Context, projectID int64) ([]domain.Query, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	var queries []domain.Query
	for _, q := range f.s.queries {
		if q.ProjectID == projectID {
			queries = append(queries, q)
		}
	}
	sort.Slice(queries, func(i, j int) bool { return queries[i].ID < queries[j].ID })
	return queries, nil
}

func (f *FakeQueries) Update(_ context.Context, query domain.Query) (*domain.Query, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	old, ok := f.s.queries[query.ID]
	if !ok {
		return nil, errors.E(errors.KindNotFound, "no query found with given id")
	}
	query.ProjectID = old.ProjectID
	f.s.queries[query.ID] = query
	return &query, nil
}

func (f *FakeQueries) Delete(_ context.Context, id int64) (*domain.Query, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	q, ok := f.s.queries[id]
	if !ok {
		return nil, errors.E(errors.KindNotFound, "no query found with given id")
	}
	delete(f.s.queries, id)
	return &q, nil
}

// FakeLocks implements ports.EditLockRepository in memory.
type FakeLocks struct {
	s *state
}

func (f *FakeLocks) Get(_ context.Context, projectID int64) (*domain.EditLock, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	if l, ok := f.s.locks[projectID]; ok {
		return &l, nil
	}
	return nil, nil
}

func (f *FakeLocks) Update(_ context.Context, lock domain.EditLock) (*domain.EditLock, error) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.locks[lock.ProjectID] = lock
	return &lock, nil
}

// Set overwrites a lock directly, for arranging test preconditions.
func (f *FakeLocks) Set(lock domain.EditLock) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	f.s.locks[lock.ProjectID] = lock
}

// Drop removes a lock row directly, for arranging test preconditions.
func (f *FakeLocks) Drop(projectID int64) {
	f.s.mu.Lock()
	defer f.s.mu.Unlock()
	delete(f.s.locks, projectID)
}

var (
	_ ports.UserRepository     = (*FakeUsers)(nil)
	_ ports.SessionRepository  = (*FakeSessions)(nil)
	_ ports.ProjectRepository  = (*FakeProjects)(nil)
	_ ports.AccessRepository   = (*FakeAccesses)(nil)
	_ ports.QueryRepository    = (*FakeQueries)(nil)
	_ ports.EditLockRepository = (*FakeLocks)(nil)
)
