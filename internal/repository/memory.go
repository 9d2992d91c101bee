package repository

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/spec-kit/course-marketplace/internal/domain"
)

// MemoryStore is an in-process store backing the memory storage adapter and
// tests. All repositories built from one store share its data under one lock,
// so every operation is atomic.
type MemoryStore struct {
	mu         sync.RWMutex
	principals map[domain.PrincipalClass]map[string]*domain.Principal // class -> email -> record
	courses    map[string]domain.Course
	purchases  []domain.Purchase
	now        func() time.Time
}

// NewMemoryStore creates an empty store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		principals: map[domain.PrincipalClass]map[string]*domain.Principal{
			domain.PrincipalUser:  {},
			domain.PrincipalAdmin: {},
		},
		courses: map[string]domain.Course{},
		now:     func() time.Time { return time.Now().UTC() },
	}
}

// Principals returns the principal repository view of the store.
func (s *MemoryStore) Principals() PrincipalRepository { return memoryPrincipals{s} }

// Courses returns the course repository view of the store.
func (s *MemoryStore) Courses() CourseRepository { return memoryCourses{s} }

// Purchases returns the purchase repository view of the store.
func (s *MemoryStore) Purchases() PurchaseRepository { return memoryPurchases{s} }

type memoryPrincipals struct{ s *MemoryStore }

func (m memoryPrincipals) Create(_ context.Context, principal *domain.Principal) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	byEmail, ok := m.s.principals[principal.Class]
	if !ok {
		_, err := tableFor(principal.Class)
		return err
	}
	if _, exists := byEmail[principal.Email]; exists {
		return ErrDuplicateEmail
	}
	principal.CreatedAt = m.s.now()
	stored := *principal
	byEmail[principal.Email] = &stored
	return nil
}

func (m memoryPrincipals) GetByID(_ context.Context, class domain.PrincipalClass, id string) (*domain.Principal, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	for _, p := range m.s.principals[class] {
		if p.ID == id {
			found := *p
			return &found, nil
		}
	}
	return nil, ErrNotFound
}

func (m memoryPrincipals) GetByEmail(_ context.Context, class domain.PrincipalClass, email string) (*domain.Principal, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	p, ok := m.s.principals[class][email]
	if !ok {
		return nil, ErrNotFound
	}
	found := *p
	return &found, nil
}

// principalExists must be called with the lock held.
func (s *MemoryStore) principalExists(class domain.PrincipalClass, id string) bool {
	for _, p := range s.principals[class] {
		if p.ID == id {
			return true
		}
	}
	return false
}

type memoryCourses struct{ s *MemoryStore }

func (m memoryCourses) Create(_ context.Context, course *domain.Course) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if !m.s.principalExists(domain.PrincipalAdmin, course.CreatorID) {
		return ErrUnknownPrincipal
	}

	now := m.s.now()
	course.CreatedAt = now
	course.UpdatedAt = now
	m.s.courses[course.ID] = *course
	return nil
}

func (m memoryCourses) UpdateOwned(_ context.Context, courseID, creatorID string, changes domain.CourseChanges) (*domain.Course, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	course, ok := m.s.courses[courseID]
	if !ok || course.CreatorID != creatorID {
		return nil, ErrNotFound
	}
	updated := changes.Apply(course)
	updated.UpdatedAt = m.s.now()
	m.s.courses[courseID] = updated
	return &updated, nil
}

func (m memoryCourses) DeleteOwned(_ context.Context, courseID, creatorID string) error {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	course, ok := m.s.courses[courseID]
	if !ok || course.CreatorID != creatorID {
		return ErrNotFound
	}
	delete(m.s.courses, courseID)
	return nil
}

func (m memoryCourses) ListByCreator(_ context.Context, creatorID string) ([]domain.Course, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	return m.s.sortedCourses(func(c domain.Course) bool { return c.CreatorID == creatorID }), nil
}

func (m memoryCourses) ListAll(_ context.Context) ([]domain.Course, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	return m.s.sortedCourses(func(domain.Course) bool { return true }), nil
}

// sortedCourses must be called with the lock held.
func (s *MemoryStore) sortedCourses(keep func(domain.Course) bool) []domain.Course {
	result := []domain.Course{}
	for _, c := range s.courses {
		if keep(c) {
			result = append(result, c)
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

type memoryPurchases struct{ s *MemoryStore }

func (m memoryPurchases) Create(_ context.Context, purchase *domain.Purchase) (bool, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	if !m.s.principalExists(domain.PrincipalUser, purchase.UserID) {
		return false, ErrUnknownPrincipal
	}

	for _, existing := range m.s.purchases {
		if existing.UserID == purchase.UserID && existing.CourseID == purchase.CourseID {
			*purchase = existing
			return false, nil
		}
	}
	purchase.CreatedAt = m.s.now()
	m.s.purchases = append(m.s.purchases, *purchase)
	return true, nil
}

func (m memoryPurchases) ListByUser(_ context.Context, userID string) ([]domain.Purchase, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	result := []domain.Purchase{}
	for _, p := range m.s.purchases {
		if p.UserID == userID {
			result = append(result, p)
		}
	}
	return result, nil
}

func (m memoryPurchases) ListCoursesByUser(_ context.Context, userID string) ([]domain.Course, error) {
	m.s.mu.RLock()
	defer m.s.mu.RUnlock()

	result := []domain.Course{}
	for _, p := range m.s.purchases {
		if p.UserID != userID {
			continue
		}
		if course, ok := m.s.courses[p.CourseID]; ok {
			result = append(result, course)
		}
	}
	return result, nil
}
