package service

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/spec-kit/course-marketplace/internal/auth"
	"github.com/spec-kit/course-marketplace/internal/cache"
	"github.com/spec-kit/course-marketplace/internal/domain"
	"github.com/spec-kit/course-marketplace/internal/events"
	"github.com/spec-kit/course-marketplace/internal/repository"
	apperrors "github.com/spec-kit/course-marketplace/pkg/util/errorutil"
)

type fixture struct {
	store      *repository.MemoryStore
	tokens     *auth.TokenManager
	auth       *AuthService
	courses    *CourseService
	purchases  *PurchaseService
	dispatcher events.Dispatcher
	redis      *miniredis.Miniredis
}

func newFixture(t *testing.T) fixture {
	t.Helper()

	store := repository.NewMemoryStore()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	catalog := cache.NewCatalogCache(client, time.Minute)
	dispatcher := events.NewInMemoryDispatcher()
	NewCatalogSubscriber(dispatcher, catalog, nil).RegisterHandlers()
	tokens := auth.NewTokenManager("user-secret", "admin-secret", 0)

	return fixture{
		store:  store,
		tokens: tokens,
		auth: NewAuthService(AuthDependencies{
			PrincipalRepo: store.Principals(),
			Hasher:        auth.NewPasswordHasher(auth.DefaultBcryptCost),
			Tokens:        tokens,
		}),
		courses: NewCourseService(CourseDependencies{
			CourseRepo: store.Courses(),
			Catalog:    catalog,
			Dispatcher: dispatcher,
		}),
		purchases: NewPurchaseService(PurchaseDependencies{
			PurchaseRepo: store.Purchases(),
			Dispatcher:   dispatcher,
		}),
		dispatcher: dispatcher,
		redis:      mr,
	}
}

func (f fixture) register(t *testing.T, class domain.PrincipalClass, email string) *domain.Principal {
	t.Helper()
	p, err := f.auth.Register(context.Background(), class, RegisterInput{
		Email:     email,
		Password:  "Passw0rd!",
		FirstName: "First",
		LastName:  "Last",
	})
	require.NoError(t, err)
	return p
}

func requireCode(t *testing.T, err error, code string) {
	t.Helper()
	require.Error(t, err)
	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de), "expected DomainError, got %v", err)
	assert.Equal(t, code, de.Code)
}

func TestAuthService_RegisterAndSignIn(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	user := f.register(t, domain.PrincipalUser, " Alice@Example.com ")
	assert.Equal(t, "alice@example.com", user.Email)
	assert.NotEqual(t, "Passw0rd!", user.PasswordHash)

	p, token, err := f.auth.SignIn(ctx, domain.PrincipalUser, "ALICE@example.com", "Passw0rd!")
	require.NoError(t, err)
	assert.Equal(t, user.ID, p.ID)

	id, err := f.tokens.Verify(token, domain.PrincipalUser)
	require.NoError(t, err)
	assert.Equal(t, user.ID, id)

	_, err = f.tokens.Verify(token, domain.PrincipalAdmin)
	assert.ErrorIs(t, err, auth.ErrInvalidToken)
}

func TestAuthService_DuplicateEmailPerClass(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	f.register(t, domain.PrincipalUser, "bob@example.com")

	_, err := f.auth.Register(ctx, domain.PrincipalUser, RegisterInput{
		Email: "BOB@example.com", Password: "Passw0rd!", FirstName: "Bob", LastName: "Other",
	})
	requireCode(t, err, apperrors.CodeDuplicateEmail)

	// The same email may exist once per class.
	f.register(t, domain.PrincipalAdmin, "bob@example.com")
}

func TestAuthService_RegisterRejectsOverlongPassword(t *testing.T) {
	f := newFixture(t)

	_, err := f.auth.Register(context.Background(), domain.PrincipalUser, RegisterInput{
		Email:     "long@example.com",
		Password:  strings.Repeat("é", 40) + "Aa1!",
		FirstName: "Long",
		LastName:  "Password",
	})
	requireCode(t, err, apperrors.CodeValidationFailed)

	var de *apperrors.DomainError
	require.True(t, errors.As(err, &de))
	assert.Contains(t, de.Details, "password")
}

func TestAuthService_ConcurrentSignupSameEmail(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	const workers = 8
	var (
		wg         sync.WaitGroup
		mu         sync.Mutex
		succeeded  int
		duplicates int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.auth.Register(ctx, domain.PrincipalAdmin, RegisterInput{
				Email: "race@example.com", Password: "Passw0rd!", FirstName: "Race", LastName: "Cond",
			})
			mu.Lock()
			defer mu.Unlock()
			if err == nil {
				succeeded++
				return
			}
			var de *apperrors.DomainError
			if errors.As(err, &de) && de.Code == apperrors.CodeDuplicateEmail {
				duplicates++
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, succeeded)
	assert.Equal(t, workers-1, duplicates)
}

func TestAuthService_CredentialFailuresAreIndistinguishable(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	f.register(t, domain.PrincipalUser, "carol@example.com")

	_, _, wrongPassword := f.auth.SignIn(ctx, domain.PrincipalUser, "carol@example.com", "Wrong0rd!")
	_, _, unknownEmail := f.auth.SignIn(ctx, domain.PrincipalUser, "nobody@example.com", "Passw0rd!")
	_, _, wrongClass := f.auth.SignIn(ctx, domain.PrincipalAdmin, "carol@example.com", "Passw0rd!")

	for _, err := range []error{wrongPassword, unknownEmail, wrongClass} {
		requireCode(t, err, apperrors.CodeInvalidCredentials)
		assert.Equal(t, wrongPassword.Error(), err.Error())
	}
}

func TestAuthService_CorruptHashIsInternal(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.Principals().Create(ctx, &domain.Principal{
		ID:           uuid.NewString(),
		Class:        domain.PrincipalUser,
		Email:        "broken@example.com",
		PasswordHash: "not-a-bcrypt-hash",
		FirstName:    "Bro",
		LastName:     "Ken",
	}))

	_, _, err := f.auth.SignIn(ctx, domain.PrincipalUser, "broken@example.com", "Passw0rd!")
	requireCode(t, err, apperrors.CodeInternal)
	assert.ErrorIs(t, err, auth.ErrCorruptCredential)
}

func TestCourseService_OwnershipIsolation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, domain.PrincipalAdmin, "owner@example.com")
	other := f.register(t, domain.PrincipalAdmin, "other@example.com")

	course, err := f.courses.Create(ctx, owner.ID, CourseInput{Title: "Go basics", Price: 10})
	require.NoError(t, err)

	title := "Hijacked"
	_, err = f.courses.Update(ctx, other.ID, course.ID, domain.CourseChanges{Title: &title})
	requireCode(t, err, apperrors.CodeForbidden)

	err = f.courses.Delete(ctx, other.ID, course.ID)
	requireCode(t, err, apperrors.CodeForbidden)

	// A course that does not exist looks the same as a foreign one.
	err = f.courses.Delete(ctx, other.ID, uuid.NewString())
	requireCode(t, err, apperrors.CodeForbidden)

	mine, err := f.courses.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, mine, 1)
	assert.Equal(t, "Go basics", mine[0].Title)

	theirs, err := f.courses.ListByOwner(ctx, other.ID)
	require.NoError(t, err)
	assert.Empty(t, theirs)

	updated, err := f.courses.Update(ctx, owner.ID, course.ID, domain.CourseChanges{Title: &title})
	require.NoError(t, err)
	assert.Equal(t, "Hijacked", updated.Title)
	assert.Equal(t, 10.0, updated.Price)

	require.NoError(t, f.courses.Delete(ctx, owner.ID, course.ID))
}

func TestCourseService_RejectsMalformedCourseID(t *testing.T) {
	f := newFixture(t)
	owner := f.register(t, domain.PrincipalAdmin, "owner@example.com")

	err := f.courses.Delete(context.Background(), owner.ID, "not-a-uuid")
	requireCode(t, err, apperrors.CodeValidationFailed)
}

func TestCourseService_CreateForDeletedAdmin(t *testing.T) {
	f := newFixture(t)

	_, err := f.courses.Create(context.Background(), uuid.NewString(), CourseInput{Title: "Orphan"})
	requireCode(t, err, apperrors.CodeUnauthenticated)
}

func TestCourseService_ConcurrentUpdatesLastWriterWins(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, domain.PrincipalAdmin, "owner@example.com")
	course, err := f.courses.Create(ctx, owner.ID, CourseInput{Title: "Original", Price: 1})
	require.NoError(t, err)

	titles := []string{"First", "Second", "Third", "Fourth"}
	var wg sync.WaitGroup
	for _, title := range titles {
		title := title
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.courses.Update(ctx, owner.ID, course.ID, domain.CourseChanges{Title: &title})
			assert.NoError(t, err)
		}()
	}
	wg.Wait()

	all, err := f.courses.ListByOwner(ctx, owner.ID)
	require.NoError(t, err)
	require.Len(t, all, 1)
	assert.Contains(t, titles, all[0].Title)
}

func TestCourseService_CatalogCacheInvalidatedOnMutation(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, domain.PrincipalAdmin, "owner@example.com")

	_, err := f.courses.Create(ctx, owner.ID, CourseInput{Title: "One"})
	require.NoError(t, err)

	list, err := f.courses.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.True(t, f.redis.Exists("catalog:preview"))

	second, err := f.courses.Create(ctx, owner.ID, CourseInput{Title: "Two"})
	require.NoError(t, err)
	assert.False(t, f.redis.Exists("catalog:preview"))

	list, err = f.courses.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 2)

	require.NoError(t, f.courses.Delete(ctx, owner.ID, second.ID))
	list, err = f.courses.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestCourseService_ListAllSurvivesCacheOutage(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	owner := f.register(t, domain.PrincipalAdmin, "owner@example.com")
	_, err := f.courses.Create(ctx, owner.ID, CourseInput{Title: "One"})
	require.NoError(t, err)

	f.redis.Close()

	list, err := f.courses.ListAll(ctx)
	require.NoError(t, err)
	assert.Len(t, list, 1)
}

func TestPurchaseService_Visibility(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	admin := f.register(t, domain.PrincipalAdmin, "admin@example.com")
	buyer := f.register(t, domain.PrincipalUser, "buyer@example.com")
	bystander := f.register(t, domain.PrincipalUser, "bystander@example.com")

	course, err := f.courses.Create(ctx, admin.ID, CourseInput{Title: "Go basics", Price: 5})
	require.NoError(t, err)

	first, err := f.purchases.Purchase(ctx, buyer.ID, course.ID)
	require.NoError(t, err)

	again, err := f.purchases.Purchase(ctx, buyer.ID, course.ID)
	require.NoError(t, err)
	assert.Equal(t, first.ID, again.ID)

	owned, err := f.purchases.OwnedCourses(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, owned, 1)
	assert.Equal(t, course.ID, owned[0].ID)

	facts, err := f.purchases.ListForUser(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Len(t, facts, 1)

	none, err := f.purchases.OwnedCourses(ctx, bystander.ID)
	require.NoError(t, err)
	assert.NotNil(t, none)
	assert.Empty(t, none)

	require.NoError(t, f.courses.Delete(ctx, admin.ID, course.ID))
	owned, err = f.purchases.OwnedCourses(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestPurchaseService_UnknownCourseIsRecorded(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.register(t, domain.PrincipalUser, "buyer@example.com")

	_, err := f.purchases.Purchase(ctx, buyer.ID, uuid.NewString())
	require.NoError(t, err)

	owned, err := f.purchases.OwnedCourses(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, owned)
}

func TestPurchaseService_Rejects(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.register(t, domain.PrincipalUser, "buyer@example.com")

	_, err := f.purchases.Purchase(ctx, buyer.ID, "bogus")
	requireCode(t, err, apperrors.CodeValidationFailed)

	_, err = f.purchases.Purchase(ctx, uuid.NewString(), uuid.NewString())
	requireCode(t, err, apperrors.CodeUnauthenticated)
}

func TestCatalogSubscriber_PublishesPurchaseEvents(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	buyer := f.register(t, domain.PrincipalUser, "buyer@example.com")
	courseID := uuid.NewString()

	var got []events.CoursePurchasedPayload
	f.dispatcher.Subscribe(events.EventCoursePurchased, func(_ context.Context, e events.Event) error {
		got = append(got, e.Payload.(events.CoursePurchasedPayload))
		return nil
	})

	_, err := f.purchases.Purchase(ctx, buyer.ID, courseID)
	require.NoError(t, err)
	_, err = f.purchases.Purchase(ctx, buyer.ID, courseID)
	require.NoError(t, err)

	require.Len(t, got, 2)
	assert.False(t, got[0].Repeat)
	assert.True(t, got[1].Repeat)
	assert.Equal(t, got[0].PurchaseID, got[1].PurchaseID)
}
