package services

import (
	"context"
	"fmt"
	"sync"

	"secureshare/internal/common"
	"secureshare/internal/server/models"
)

// In-memory repository fakes shared by the service tests.

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*models.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: map[string]*models.User{}}
}

func (r *memUserRepo) Create(ctx context.Context, user *models.User) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return nil, common.ErrAlreadyExists
		}
	}
	r.seq++
	user.ID = fmtID("u", r.seq)
	cp := *user
	r.users[user.ID] = &cp
	return user, nil
}

func (r *memUserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			cp := *u
			return &cp, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) GetByID(ctx context.Context, id string) (*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if u, ok := r.users[id]; ok {
		cp := *u
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (r *memUserRepo) List(ctx context.Context) ([]*models.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.User
	for _, u := range r.users {
		cp := *u
		result = append(result, &cp)
	}
	return result, nil
}

func (r *memUserRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.users[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.users, id)
	return nil
}

type memFileRepo struct {
	mu    sync.Mutex
	seq   int
	files map[string]*models.File
}

func newMemFileRepo() *memFileRepo {
	return &memFileRepo{files: map[string]*models.File{}}
}

func (r *memFileRepo) Create(ctx context.Context, file *models.File) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	file.ID = fmtID("f", r.seq)
	cp := *file
	r.files[file.ID] = &cp
	return file, nil
}

func (r *memFileRepo) GetByID(ctx context.Context, id string) (*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if f, ok := r.files[id]; ok {
		cp := *f
		return &cp, nil
	}
	return nil, common.ErrNotFound
}

func (r *memFileRepo) ListByOwner(ctx context.Context, ownerID string) ([]*models.File, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var result []*models.File
	for _, f := range r.files {
		if f.OwnerID == ownerID {
			cp := *f
			result = append(result, &cp)
		}
	}
	return result, nil
}

func (r *memFileRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.files[id]; !ok {
		return common.ErrNotFound
	}
	delete(r.files, id)
	return nil
}

type memShareRepo struct {
	mu     sync.Mutex
	shares map[string]*models.Share
}

func newMemShareRepo() *memShareRepo {
	return &memShareRepo{shares: map[string]*models.Share{}}
}

func (r *memShareRepo) Create(ctx context.Context, share *models.Share) (*models.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	cp := *share
	r.shares[share.Token] = &cp
	return share, nil
}

func (r *memShareRepo) GetByToken(ctx context.Context, token string) (*models.Share, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if s, ok := r.shares[token]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, common.ErrGrantNotFound
}

func (r *memShareRepo) DeleteByFileID(ctx context.Context, fileID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for token, s := range r.shares {
		if s.FileID == fileID {
			delete(r.shares, token)
		}
	}
	return nil
}

type memBlobStore struct {
	mu    sync.Mutex
	blobs map[string][]byte
}

func newMemBlobStore() *memBlobStore {
	return &memBlobStore{blobs: map[string][]byte{}}
}

func (s *memBlobStore) Put(ctx context.Context, key string, data []byte) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[key] = append([]byte(nil), data...)
	return nil
}

func (s *memBlobStore) Get(ctx context.Context, key string) ([]byte, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if data, ok := s.blobs[key]; ok {
		return append([]byte(nil), data...), nil
	}
	return nil, common.ErrNotFound
}

func (s *memBlobStore) Delete(ctx context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.blobs, key)
	return nil
}

func (s *memBlobStore) len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.blobs)
}

type recordingSender struct {
	mu    sync.Mutex
	sent  []string
	email string
}

func (s *recordingSender) Send(ctx context.Context, email, code string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.email = email
	s.sent = append(s.sent, code)
	return nil
}

func (s *recordingSender) lastCode() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	if len(s.sent) == 0 {
		return ""
	}
	return s.sent[len(s.sent)-1]
}

func fmtID(prefix string, n int) string {
	return fmt.Sprintf("%s%d", prefix, n)
}
