package sessions

import (
	"sync"
	"time"

	"fitcenter/internal/logger"
	"fitcenter/internal/models"

	"github.com/google/uuid"
	"github.com/rif/cache2go"
	"go.uber.org/zap"
)

// Store — in-memory хранилище сессий с явным TTL.
// cache2go вытесняет записи сам, но ExpiresAt проверяем и вручную:
// истёкшая сессия не должна резолвиться даже до вытеснения.
type Store struct {
	cache *cache2go.Cache
	ttl   time.Duration
	sync.RWMutex
}

func NewStore(maxSessions int, ttl time.Duration) *Store {
	if maxSessions <= 0 {
		maxSessions = 10000
	}
	return &Store{
		cache: cache2go.New(maxSessions, ttl),
		ttl:   ttl,
	}
}

// Create регистрирует новую сессию и возвращает её вместе с session_id.
func (s *Store) Create(user models.SessionUser) *models.Session {
	s.Lock()
	defer s.Unlock()

	now := time.Now()
	session := &models.Session{
		ID:        uuid.New().String(),
		User:      user,
		CreatedAt: now,
		ExpiresAt: now.Add(s.ttl),
	}
	s.cache.Set(session.ID, session)

	logger.Log.Info("Сессия создана",
		zap.Int("user_id", user.ID), zap.String("user_type", string(user.UserType)))
	return session
}

// Get возвращает сессию по id; истёкшие сессии удаляются на месте.
func (s *Store) Get(id string) (*models.Session, bool) {
	s.RLock()
	v, ok := s.cache.Get(id)
	s.RUnlock()
	if !ok {
		return nil, false
	}

	session, ok := v.(*models.Session)
	if !ok {
		return nil, false
	}
	if time.Now().After(session.ExpiresAt) {
		s.Delete(id)
		return nil, false
	}
	return session, true
}

// Delete идемпотентен: удаление несуществующей сессии — не ошибка.
func (s *Store) Delete(id string) {
	s.Lock()
	defer s.Unlock()
	s.cache.Delete(id)
}
