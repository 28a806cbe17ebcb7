package gigs

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/gigly/gigly-backend/pkg/auth"
	"github.com/gigly/gigly-backend/pkg/config"
	"github.com/gigly/gigly-backend/pkg/db/dbtest"
	"github.com/gigly/gigly-backend/pkg/db/models"
	pkgerrors "github.com/gigly/gigly-backend/pkg/errors"
	"github.com/gigly/gigly-backend/pkg/storage"
	"github.com/gigly/gigly-backend/pkg/storage/gcs"
)

type mapResolver map[string]string

func (m mapResolver) ResolveURL(_ context.Context, key string) (string, error) {
	url, ok := m[key]
	if !ok {
		return "", storage.ErrObjectNotFound
	}
	return url, nil
}

// favoriteTable answers favorite lookups straight from the database.
type favoriteTable struct{ db *gorm.DB }

func (f favoriteTable) IsFavorite(ctx context.Context, userID, gigID uuid.UUID) (bool, error) {
	var count int64
	err := f.db.WithContext(ctx).Model(&models.UserFavorite{}).
		Where("user_id = ? AND gig_id = ?", userID, gigID).Count(&count).Error
	return count > 0, err
}

func newService(t *testing.T, conn *gorm.DB, resolver mapResolver, cfg config.GigsConfig) Service {
	t.Helper()
	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(conn),
		Favorites: favoriteTable{db: conn},
		Resolver:  resolver,
		Config:    cfg,
	})
	require.NoError(t, err)
	return svc
}

func identityOf(u *models.User) *auth.Identity {
	return &auth.Identity{TokenIdentifier: u.TokenIdentifier, Nickname: u.Username}
}

func strPtr(s string) *string { return &s }

func TestListPublishedNewestFirst(t *testing.T) {
	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")
	older := dbtest.MustCreateGig(t, conn, seller.ID, "Older", dbtest.CreatedAt(dbtest.At(1)))
	newer := dbtest.MustCreateGig(t, conn, seller.ID, "Newer", dbtest.CreatedAt(dbtest.At(2)))
	dbtest.MustCreateGig(t, conn, seller.ID, "Draft", dbtest.Published(false), dbtest.CreatedAt(dbtest.At(3)))

	svc := newService(t, conn, mapResolver{}, config.GigsConfig{})
	views, err := svc.List(context.Background(), GigQuery{}, nil)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, newer.ID, views[0].ID)
	require.Equal(t, older.ID, views[1].ID)
	for _, v := range views {
		require.False(t, v.Favorited)
		require.NotNil(t, v.Reviews)
		require.Empty(t, v.Reviews)
		require.Nil(t, v.Offer)
		require.Nil(t, v.StorageID)
		require.Equal(t, "seller", v.Seller.Username)
	}
}

func TestListUnknownFilterIsEmpty(t *testing.T) {
	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")
	dbtest.MustCreateGig(t, conn, seller.ID, "Logo design")

	svc := newService(t, conn, mapResolver{}, config.GigsConfig{})
	views, err := svc.List(context.Background(), GigQuery{Filter: strPtr("Nope")}, nil)
	require.NoError(t, err)
	require.NotNil(t, views)
	require.Empty(t, views)
}

func TestListFilterAndSearch(t *testing.T) {
	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")
	design := dbtest.MustCreateSubcategory(t, conn, "Design")
	writing := dbtest.MustCreateSubcategory(t, conn, "Writing")
	logo := dbtest.MustCreateGig(t, conn, seller.ID, "Modern logo design", dbtest.InSubcategory(design.ID), dbtest.CreatedAt(dbtest.At(1)))
	dbtest.MustCreateGig(t, conn, seller.ID, "Blog posts", dbtest.InSubcategory(writing.ID), dbtest.CreatedAt(dbtest.At(2)))
	dbtest.MustCreateGig(t, conn, seller.ID, "Logo for blogs", dbtest.InSubcategory(writing.ID), dbtest.CreatedAt(dbtest.At(3)))

	svc := newService(t, conn, mapResolver{}, config.GigsConfig{})

	views, err := svc.List(context.Background(), GigQuery{Filter: strPtr("Design")}, nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, logo.ID, views[0].ID)

	views, err = svc.List(context.Background(), GigQuery{Search: strPtr("LOGO"), Filter: strPtr("Design")}, nil)
	require.NoError(t, err)
	require.Len(t, views, 1)
	require.Equal(t, logo.ID, views[0].ID)

	views, err = svc.List(context.Background(), GigQuery{Search: strPtr("logo")}, nil)
	require.NoError(t, err)
	require.Len(t, views, 2)
}

func TestListBlankSearchFallsBackToPublished(t *testing.T) {
	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")
	dbtest.MustCreateGig(t, conn, seller.ID, "One")
	dbtest.MustCreateGig(t, conn, seller.ID, "Two")

	svc := newService(t, conn, mapResolver{}, config.GigsConfig{})
	views, err := svc.List(context.Background(), GigQuery{Search: strPtr("   ")}, nil)
	require.NoError(t, err)
	require.Len(t, views, 2)
}

func TestListEnrichment(t *testing.T) {
	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")
	buyer := dbtest.MustCreateUser(t, conn, "buyer")
	gig := dbtest.MustCreateGig(t, conn, seller.ID, "Logo design")
	dbtest.MustCreateMedia(t, conn, gig.ID, "media/second", dbtest.At(2))
	dbtest.MustCreateMedia(t, conn, gig.ID, "media/first", dbtest.At(1))
	dbtest.MustCreateReview(t, conn, gig, buyer.ID, dbtest.At(1))
	dbtest.MustCreateReview(t, conn, gig, buyer.ID, dbtest.At(2))
	dbtest.MustCreateOffer(t, conn, gig, "10", dbtest.At(1))
	latest := dbtest.MustCreateOffer(t, conn, gig, "30", dbtest.At(3))
	dbtest.MustCreateOffer(t, conn, gig, "20", dbtest.At(2))
	dbtest.MustCreateFavorite(t, conn, buyer.ID, gig.ID)

	resolver := mapResolver{"media/first": "https://cdn.test/media/first"}
	svc := newService(t, conn, resolver, config.GigsConfig{})

	views, err := svc.List(context.Background(), GigQuery{}, identityOf(buyer))
	require.NoError(t, err)
	require.Len(t, views, 1)

	view := views[0]
	require.True(t, view.Favorited)
	require.Equal(t, "media/first", *view.StorageID)
	require.Equal(t, "https://cdn.test/media/first", *view.ImageURL)
	require.Len(t, view.Reviews, 2)
	require.Equal(t, latest.ID, view.Offer.ID)
	require.Empty(t, view.Error)

	views, err = svc.List(context.Background(), GigQuery{}, identityOf(seller))
	require.NoError(t, err)
	require.False(t, views[0].Favorited, "favorites are keyed by the viewer")
}

func TestListFavoritesKeyedBySeller(t *testing.T) {
	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")
	gig := dbtest.MustCreateGig(t, conn, seller.ID, "Logo design")
	dbtest.MustCreateFavorite(t, conn, seller.ID, gig.ID)

	svc := newService(t, conn, mapResolver{}, config.GigsConfig{FavoritesKeyMode: config.FavoritesKeySeller})

	stranger := &auth.Identity{TokenIdentifier: "https://auth.test|stranger"}
	views, err := svc.List(context.Background(), GigQuery{}, stranger)
	require.NoError(t, err)
	require.True(t, views[0].Favorited)

	views, err = svc.List(context.Background(), GigQuery{}, nil)
	require.NoError(t, err)
	require.False(t, views[0].Favorited)
}

func TestListMissingSeller(t *testing.T) {
	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")
	dbtest.MustCreateGig(t, conn, seller.ID, "Kept", dbtest.CreatedAt(dbtest.At(1)))
	orphan := dbtest.MustCreateGig(t, conn, uuid.New(), "Orphan", dbtest.CreatedAt(dbtest.At(2)))

	svc := newService(t, conn, mapResolver{}, config.GigsConfig{})
	views, err := svc.List(context.Background(), GigQuery{}, nil)
	require.NoError(t, err)
	require.Len(t, views, 2)
	require.Equal(t, orphan.ID, views[0].ID)
	require.Equal(t, "seller not found", views[0].Error)
	require.Nil(t, views[0].Seller)
	require.NotNil(t, views[1].Seller)

	strict := newService(t, conn, mapResolver{}, config.GigsConfig{StrictSeller: true})
	_, err = strict.List(context.Background(), GigQuery{}, nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
}

func TestSellerDashboard(t *testing.T) {
	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")
	buyer := dbtest.MustCreateUser(t, conn, "buyer")
	older := dbtest.MustCreateGig(t, conn, seller.ID, "Older", dbtest.CreatedAt(dbtest.At(1)))
	newer := dbtest.MustCreateGig(t, conn, seller.ID, "Newer", dbtest.Published(false), dbtest.CreatedAt(dbtest.At(2)))
	dbtest.MustCreateReview(t, conn, older, buyer.ID, dbtest.At(1))
	dbtest.MustCreateReview(t, conn, older, buyer.ID, dbtest.At(2))
	for i, price := range []string{"10", "20", "30"} {
		dbtest.MustCreateOffer(t, conn, older, price, dbtest.At(i))
	}
	for range 4 {
		dbtest.MustCreateOrder(t, conn, older.ID, buyer.ID)
	}
	dbtest.MustCreateMedia(t, conn, older.ID, "media/older", dbtest.At(1))
	dbtest.MustCreateMedia(t, conn, newer.ID, "media/gone", dbtest.At(1))

	svc := newService(t, conn, mapResolver{"media/older": "https://cdn.test/older"}, config.GigsConfig{})
	rows, err := svc.SellerDashboard(context.Background(), identityOf(seller))
	require.NoError(t, err)
	require.Len(t, rows, 2)

	require.Equal(t, newer.ID, rows[0].ID)
	require.Zero(t, rows[0].OrderAmount)
	require.True(t, rows[0].TotalRevenue.IsZero())
	require.Nil(t, rows[0].ImageURL)

	require.Equal(t, older.ID, rows[1].ID)
	require.EqualValues(t, 4, rows[1].OrderAmount)
	require.True(t, rows[1].TotalRevenue.Equal(decimal.NewFromInt(60)), "got %s", rows[1].TotalRevenue)
	require.Equal(t, "https://cdn.test/older", *rows[1].ImageURL)
}

func TestSellerDashboardRequiresKnownUser(t *testing.T) {
	conn := dbtest.Open(t)
	svc := newService(t, conn, mapResolver{}, config.GigsConfig{})

	_, err := svc.SellerDashboard(context.Background(), nil)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)

	_, err = svc.SellerDashboard(context.Background(), &auth.Identity{TokenIdentifier: "https://auth.test|ghost"})
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)
	require.Equal(t, "couldn't authenticate user", pkgerrors.As(err).Message())
}

func TestGetBySellerName(t *testing.T) {
	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")
	dbtest.MustCreateUser(t, conn, "idle")
	first := dbtest.MustCreateGig(t, conn, seller.ID, "First", dbtest.CreatedAt(dbtest.At(1)))
	second := dbtest.MustCreateGig(t, conn, seller.ID, "Second", dbtest.Published(false), dbtest.CreatedAt(dbtest.At(2)))

	svc := newService(t, conn, mapResolver{}, config.GigsConfig{})

	gigs, err := svc.GetBySellerName(context.Background(), "seller")
	require.NoError(t, err)
	require.Len(t, gigs, 2)
	require.Equal(t, first.ID, gigs[0].ID)
	require.Equal(t, second.ID, gigs[1].ID)

	gigs, err = svc.GetBySellerName(context.Background(), "idle")
	require.NoError(t, err)
	require.NotNil(t, gigs)
	require.Empty(t, gigs)

	gigs, err = svc.GetBySellerName(context.Background(), "nobody")
	require.NoError(t, err)
	require.Nil(t, gigs)
}

func TestGetGigsWithImages(t *testing.T) {
	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")
	gig := dbtest.MustCreateGig(t, conn, seller.ID, "Logo design")
	dbtest.MustCreateMedia(t, conn, gig.ID, "media/b", dbtest.At(2))
	dbtest.MustCreateMedia(t, conn, gig.ID, "media/a", dbtest.At(1))

	resolver := mapResolver{"media/a": "https://cdn.test/a", "media/b": "https://cdn.test/b"}
	svc := newService(t, conn, resolver, config.GigsConfig{})

	out, err := svc.GetGigsWithImages(context.Background(), "seller")
	require.NoError(t, err)
	require.Len(t, out, 1)
	require.Len(t, out[0].Images, 2)
	require.Equal(t, "https://cdn.test/a", out[0].Images[0].URL)
	require.Equal(t, "https://cdn.test/b", out[0].Images[1].URL)

	_, err = svc.GetGigsWithImages(context.Background(), "nobody")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
	require.Equal(t, "seller not found", pkgerrors.As(err).Message())

	delete(resolver, "media/b")
	_, err = svc.GetGigsWithImages(context.Background(), "seller")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
	require.Equal(t, "image not found", pkgerrors.As(err).Message())
}

func TestSellerDashboardFractionalRevenue(t *testing.T) {
	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")
	gig := dbtest.MustCreateGig(t, conn, seller.ID, "Proofreading")
	dbtest.MustCreateOffer(t, conn, gig, "0.10", dbtest.At(1))
	dbtest.MustCreateOffer(t, conn, gig, "0.20", dbtest.At(2))
	dbtest.MustCreateOffer(t, conn, gig, "19.99", dbtest.At(3))

	svc := newService(t, conn, mapResolver{}, config.GigsConfig{})
	rows, err := svc.SellerDashboard(context.Background(), identityOf(seller))
	require.NoError(t, err)
	require.Len(t, rows, 1)
	require.Equal(t, "20.29", rows[0].TotalRevenue.StringFixed(2))
	require.True(t, rows[0].TotalRevenue.Equal(decimal.RequireFromString("20.29")), "got %s", rows[0].TotalRevenue)
}

func TestSellerDashboardWithoutGigs(t *testing.T) {
	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")

	svc := newService(t, conn, mapResolver{}, config.GigsConfig{})
	rows, err := svc.SellerDashboard(context.Background(), identityOf(seller))
	require.NoError(t, err)
	require.NotNil(t, rows)
	require.Empty(t, rows)
}

// countingDashboardStore records every read the builder issues.
type countingDashboardStore struct {
	calls int
}

func (s *countingDashboardStore) FindUserByToken(context.Context, string) (*models.User, error) {
	s.calls++
	return &models.User{ID: uuid.New()}, nil
}

func (s *countingDashboardStore) ListBySellerRecent(context.Context, uuid.UUID) ([]models.Gig, error) {
	s.calls++
	return nil, nil
}

func (s *countingDashboardStore) OrderCounts(context.Context, []uuid.UUID) (map[uuid.UUID]int64, error) {
	s.calls++
	return nil, nil
}

func (s *countingDashboardStore) RevenueByGig(context.Context, []uuid.UUID) (map[uuid.UUID]decimal.Decimal, error) {
	s.calls++
	return nil, nil
}

func (s *countingDashboardStore) ListMedia(context.Context, []uuid.UUID) ([]models.GigMedia, error) {
	s.calls++
	return nil, nil
}

func TestSellerDashboardAnonymousSkipsReads(t *testing.T) {
	store := &countingDashboardStore{}
	builder, err := NewSellerAggregateBuilder(store, mapResolver{}, nil)
	require.NoError(t, err)

	rows, err := builder.SellerDashboard(context.Background(), nil)
	require.Nil(t, rows)
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized), "got %v", err)
	require.Zero(t, store.calls)

	_, err = builder.SellerDashboard(context.Background(), &auth.Identity{TokenIdentifier: "https://auth.test|seller"})
	require.NoError(t, err)
	require.Equal(t, 2, store.calls)
}

func TestMissingObjectsThroughPublicResolver(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/media/present" {
			w.WriteHeader(http.StatusOK)
			return
		}
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	backend, err := gcs.NewPublicResolver("", srv.URL, gcs.WithObjectCheck(srv.Client()))
	require.NoError(t, err)

	conn := dbtest.Open(t)
	seller := dbtest.MustCreateUser(t, conn, "seller")
	withImage := dbtest.MustCreateGig(t, conn, seller.ID, "With image", dbtest.CreatedAt(dbtest.At(1)))
	dangling := dbtest.MustCreateGig(t, conn, seller.ID, "Dangling", dbtest.CreatedAt(dbtest.At(2)))
	dbtest.MustCreateMedia(t, conn, withImage.ID, "media/present", dbtest.At(1))
	dbtest.MustCreateMedia(t, conn, dangling.ID, "media/deleted", dbtest.At(1))

	svc, err := NewService(ServiceParams{
		Repo:      NewRepository(conn),
		Favorites: favoriteTable{db: conn},
		Resolver:  storage.NewCachedResolver(backend, time.Minute),
	})
	require.NoError(t, err)

	rows, err := svc.SellerDashboard(context.Background(), identityOf(seller))
	require.NoError(t, err)
	require.Len(t, rows, 2)
	require.Equal(t, dangling.ID, rows[0].ID)
	require.Nil(t, rows[0].ImageURL)
	require.Equal(t, srv.URL+"/media/present", *rows[1].ImageURL)

	_, err = svc.GetGigsWithImages(context.Background(), "seller")
	require.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound), "got %v", err)
	require.Equal(t, "image not found", pkgerrors.As(err).Message())
}
