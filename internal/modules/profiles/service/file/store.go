package file

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"sync"
	"time"

	"signal_bot/internal/models"
	"signal_bot/internal/modules/profiles/service"

	"github.com/bytedance/sonic"
	"github.com/pkg/errors"
)

type Store struct {
	path string

	mu     sync.Mutex
	cache  map[int64]*models.Profile
	loaded bool
}

const defaultPath = "data/profiles.json"

func New(path string) *Store {
	if path == "" {
		path = defaultPath
	}
	return &Store{
		path:  path,
		cache: make(map[int64]*models.Profile),
	}
}

func (s *Store) Get(ctx context.Context, ownerID int64) (*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	v, ok := s.cache[ownerID]
	if !ok {
		return nil, service.ErrNotFound
	}
	return cloneProfile(v), nil
}

func (s *Store) List(ctx context.Context) ([]*models.Profile, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return nil, err
	}
	out := make([]*models.Profile, 0, len(s.cache))
	for _, v := range s.cache {
		out = append(out, cloneProfile(v))
	}
	sort.Slice(out, func(i, j int) bool { return out[i].OwnerID < out[j].OwnerID })
	return out, nil
}

// Save upsert.
func (s *Store) Save(ctx context.Context, p *models.Profile) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	c := cloneProfile(p)
	c.Normalize()
	s.cache[p.OwnerID] = c
	return s.saveLocked()
}

func (s *Store) Delete(ctx context.Context, ownerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	delete(s.cache, ownerID)
	return s.saveLocked()
}

func (s *Store) Update(ctx context.Context, ownerID int64, fn func(p *models.Profile) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.loadLocked(); err != nil {
		return err
	}
	cur, ok := s.cache[ownerID]
	if !ok {
		return service.ErrNotFound
	}
	next := cloneProfile(cur)
	if err := fn(next); err != nil {
		return err
	}
	next.Normalize()
	s.cache[ownerID] = next
	return s.saveLocked()
}

// ---- storage format ----

type snapshot struct {
	UpdatedAt time.Time         `json:"updated_at"`
	Profiles  []*models.Profile `json:"profiles"`
}

func (s *Store) loadLocked() error {
	if s.loaded {
		return nil
	}

	b, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			s.loaded = true
			return nil
		}
		return errors.Wrapf(err, "read %s", s.path)
	}

	var snap snapshot
	if err := sonic.Unmarshal(b, &snap); err != nil {
		return errors.Wrapf(err, "decode %s", s.path)
	}

	s.cache = make(map[int64]*models.Profile, len(snap.Profiles))
	for _, p := range snap.Profiles {
		if p == nil {
			continue
		}
		p.Normalize()
		s.cache[p.OwnerID] = p
	}

	s.loaded = true
	return nil
}

func (s *Store) saveLocked() error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return errors.Wrap(err, "mkdir store dir")
	}

	profiles := make([]*models.Profile, 0, len(s.cache))
	for _, v := range s.cache {
		profiles = append(profiles, v)
	}
	sort.Slice(profiles, func(i, j int) bool { return profiles[i].OwnerID < profiles[j].OwnerID })

	b, err := sonic.ConfigStd.MarshalIndent(&snapshot{UpdatedAt: time.Now(), Profiles: profiles}, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encode profiles")
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, b, 0o600); err != nil {
		return errors.Wrapf(err, "write %s", tmp)
	}
	// атомарно
	return errors.Wrap(os.Rename(tmp, s.path), "rename snapshot")
}

// clone чтобы никто извне не мутировал shared ptr
func cloneProfile(in *models.Profile) *models.Profile {
	if in == nil {
		return nil
	}
	b, _ := sonic.Marshal(in)
	var out models.Profile
	_ = sonic.Unmarshal(b, &out)
	out.Normalize()
	return &out
}
