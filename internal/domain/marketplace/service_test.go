package marketplace_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/imagerepo/imagerepo-api/internal/domain/image"
	"github.com/imagerepo/imagerepo-api/internal/domain/marketplace"
	"github.com/imagerepo/imagerepo-api/internal/domain/user"
)

/* =========================
   In-memory stubs
   ========================= */

type memStore struct {
	mu       sync.Mutex
	users    map[uuid.UUID]*user.User
	byName   map[string]*user.User
	images   map[uuid.UUID]*image.Image
	listings map[uuid.UUID]*marketplace.Listing
}

func newMemStore() *memStore {
	return &memStore{
		users:    make(map[uuid.UUID]*user.User),
		byName:   make(map[string]*user.User),
		images:   make(map[uuid.UUID]*image.Image),
		listings: make(map[uuid.UUID]*marketplace.Listing),
	}
}

func (m *memStore) addUser(username, role string) *user.User {
	u := &user.User{ID: uuid.New(), Username: username, Role: user.Role(role)}
	m.users[u.ID] = u
	m.byName[username] = u
	return u
}

func (m *memStore) addImage(owner *user.User) *image.Image {
	img := &image.Image{
		ID:         uuid.New(),
		UserID:     owner.ID,
		PublicURL:  "https://cdn.test/" + uuid.New().String() + ".jpg",
		UploadedAt: time.Now(),
	}
	m.images[img.ID] = img
	return img
}

// user.Repository

type userRepoStub struct{ s *memStore }

func (r userRepoStub) Create(ctx context.Context, u *user.User) error {
	r.s.users[u.ID] = u
	r.s.byName[u.Username] = u
	return nil
}

func (r userRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return r.s.users[id], nil
}

func (r userRepoStub) GetByUsername(ctx context.Context, username string) (*user.User, error) {
	return r.s.byName[username], nil
}

func (r userRepoStub) UpdateRole(ctx context.Context, id uuid.UUID, role user.Role) error {
	u, ok := r.s.users[id]
	if !ok {
		return errors.New("no such user")
	}
	u.Role = role
	return nil
}

func (r userRepoStub) UpdateLastLogin(ctx context.Context, id uuid.UUID) error { return nil }

// image.Repository

type imageRepoStub struct{ s *memStore }

func (r imageRepoStub) Create(ctx context.Context, img *image.Image) error {
	r.s.images[img.ID] = img
	return nil
}

func (r imageRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*image.Image, error) {
	return r.s.images[id], nil
}

func (r imageRepoStub) ListByOwner(ctx context.Context, userID uuid.UUID, deleted bool) ([]*image.Image, error) {
	var out []*image.Image
	for _, img := range r.s.images {
		if img.UserID == userID && img.IsDeleted == deleted {
			out = append(out, img)
		}
	}
	return out, nil
}

func (r imageRepoStub) SoftDelete(ctx context.Context, id uuid.UUID) error {
	if img, ok := r.s.images[id]; ok {
		img.IsDeleted = true
	}
	return nil
}

func (r imageRepoStub) SetPublic(ctx context.Context, id uuid.UUID) error {
	if img, ok := r.s.images[id]; ok {
		img.IsPublic = true
	}
	return nil
}

// marketplace.Repository with the same won/lost semantics as the SQL
// conditional update: under the lock, a sold listing refuses the sale
// and nothing else is written.

type marketplaceRepoStub struct {
	s        *memStore
	execErr  error // injected mid-transaction failure
	execSeen int
}

func (r *marketplaceRepoStub) CreateListing(ctx context.Context, l *marketplace.Listing) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *l
	r.s.listings[l.ID] = &cp
	return nil
}

func (r *marketplaceRepoStub) GetByID(ctx context.Context, id uuid.UUID) (*marketplace.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	l, ok := r.s.listings[id]
	if !ok {
		return nil, nil
	}
	cp := *l
	return &cp, nil
}

func (r *marketplaceRepoStub) ListBySellerName(ctx context.Context, sellerName string) ([]marketplace.Listing, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []marketplace.Listing
	for _, l := range r.s.listings {
		if l.SellerName == sellerName {
			out = append(out, *l)
		}
	}
	return out, nil
}

func (r *marketplaceRepoStub) ExecutePurchase(ctx context.Context, p marketplace.Purchase) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	r.execSeen++

	l, ok := r.s.listings[p.ListingID]
	if !ok {
		return marketplace.ErrListingNotFound
	}
	if l.Sold {
		return marketplace.ErrAlreadySold
	}
	if r.execErr != nil {
		return r.execErr
	}

	l.Sold = true
	l.BuyerID = uuid.NullUUID{UUID: p.BuyerID, Valid: true}
	l.BuyerName.String = p.BuyerName
	l.BuyerName.Valid = true
	l.TransactionID = uuid.NullUUID{UUID: p.TransactionID, Valid: true}
	l.SoldOn.Time = p.SoldOn
	l.SoldOn.Valid = true

	r.s.users[p.BuyerID].Debit += p.Price
	r.s.users[p.SellerID].Credit += p.Price
	r.s.images[p.ImageID].UserID = p.BuyerID
	return nil
}

// storage.ObjectStore

type objectStoreStub struct {
	mu     sync.Mutex
	public []string
}

func (o *objectStoreStub) Put(ctx context.Context, key string, body io.Reader, contentType string) error {
	return nil
}

func (o *objectStoreStub) Delete(ctx context.Context, key string) error { return nil }

func (o *objectStoreStub) SetPublic(ctx context.Context, key string) error {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.public = append(o.public, key)
	return nil
}

func (o *objectStoreStub) GetURL(key string) string { return "https://cdn.test/" + key }

func (o *objectStoreStub) KeyFromURL(url string) (string, error) {
	if !strings.HasPrefix(url, "https://cdn.test/") {
		return "", fmt.Errorf("unknown url %q", url)
	}
	return strings.TrimPrefix(url, "https://cdn.test/"), nil
}

func newService(s *memStore) (*marketplace.Service, *marketplaceRepoStub, *objectStoreStub) {
	repo := &marketplaceRepoStub{s: s}
	store := &objectStoreStub{}
	svc := marketplace.NewService(repo, userRepoStub{s}, imageRepoStub{s}, store)
	return svc, repo, store
}

func totalBalance(s *memStore) int64 {
	var sum int64
	for _, u := range s.users {
		sum += u.Credit - u.Debit
	}
	return sum
}

/* =========================
   Sell
   ========================= */

func TestSellCreatesListingAndPublishesImage(t *testing.T) {
	s := newMemStore()
	svc, _, store := newService(s)

	alice := s.addUser("alice", "seller")
	img := s.addImage(alice)

	listing, err := svc.Sell(context.Background(), alice.ID, alice.Username, img.ID, 250)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}

	if listing.SellerName != "alice" || listing.SellerID != alice.ID {
		t.Errorf("seller not denormalized onto listing: %+v", listing)
	}
	if listing.Price != 250 || listing.Sold {
		t.Errorf("unexpected listing state: %+v", listing)
	}
	if listing.ImageURL != img.PublicURL {
		t.Errorf("expected listing url %q, got %q", img.PublicURL, listing.ImageURL)
	}
	if !s.images[img.ID].IsPublic {
		t.Error("listed image should be public")
	}
	if len(store.public) != 1 {
		t.Errorf("expected one public-read ACL change, got %d", len(store.public))
	}
}

func TestSellRejectsForeignUnknownAndDeletedImages(t *testing.T) {
	s := newMemStore()
	svc, _, _ := newService(s)

	alice := s.addUser("alice", "seller")
	bob := s.addUser("bob", "seller")
	img := s.addImage(alice)

	if _, err := svc.Sell(context.Background(), bob.ID, bob.Username, img.ID, 10); !errors.Is(err, marketplace.ErrNotImageOwner) {
		t.Errorf("foreign image: expected ErrNotImageOwner, got %v", err)
	}

	if _, err := svc.Sell(context.Background(), alice.ID, alice.Username, uuid.New(), 10); !errors.Is(err, marketplace.ErrImageNotFound) {
		t.Errorf("unknown image: expected ErrImageNotFound, got %v", err)
	}

	img.IsDeleted = true
	if _, err := svc.Sell(context.Background(), alice.ID, alice.Username, img.ID, 10); !errors.Is(err, marketplace.ErrImageDeleted) {
		t.Errorf("deleted image: expected ErrImageDeleted, got %v", err)
	}
}

/* =========================
   Buy
   ========================= */

func sellOne(t *testing.T, svc *marketplace.Service, s *memStore, seller *user.User, price int64) *marketplace.Listing {
	t.Helper()
	img := s.addImage(seller)
	listing, err := svc.Sell(context.Background(), seller.ID, seller.Username, img.ID, price)
	if err != nil {
		t.Fatalf("sell: %v", err)
	}
	return listing
}

func TestBuyTransfersMoneyAndOwnership(t *testing.T) {
	s := newMemStore()
	svc, _, _ := newService(s)

	alice := s.addUser("alice", "seller")
	bob := s.addUser("bob", "user")
	listing := sellOne(t, svc, s, alice, 300)

	result, err := svc.Buy(context.Background(), bob.ID, bob.Username, listing.ID)
	if err != nil {
		t.Fatalf("buy: %v", err)
	}

	if result.MarketplaceID != listing.ID {
		t.Errorf("expected marketplace id %s, got %s", listing.ID, result.MarketplaceID)
	}
	if result.TransactionID == uuid.Nil {
		t.Error("expected a transaction id")
	}

	if bob.Debit != 300 {
		t.Errorf("buyer debit: expected 300, got %d", bob.Debit)
	}
	if alice.Credit != 300 {
		t.Errorf("seller credit: expected 300, got %d", alice.Credit)
	}
	if got := totalBalance(s); got != 0 {
		t.Errorf("money not conserved: net balance %d", got)
	}

	sold, _ := svc.ListBySeller(context.Background(), "alice")
	if len(sold) != 1 || !sold[0].Sold {
		t.Fatalf("listing should be sold: %+v", sold)
	}
	if sold[0].BuyerName.String != "bob" || sold[0].BuyerID.UUID != bob.ID {
		t.Errorf("buyer not recorded: %+v", sold[0])
	}
	if !sold[0].SoldOn.Valid || !sold[0].TransactionID.Valid {
		t.Errorf("sold_on and transaction_id must be set together: %+v", sold[0])
	}

	if s.images[listing.ImageID].UserID != bob.ID {
		t.Error("image ownership should transfer to the buyer")
	}
}

func TestBuyUnknownListing(t *testing.T) {
	s := newMemStore()
	svc, _, _ := newService(s)
	bob := s.addUser("bob", "user")

	if _, err := svc.Buy(context.Background(), bob.ID, bob.Username, uuid.New()); !errors.Is(err, marketplace.ErrListingNotFound) {
		t.Fatalf("expected ErrListingNotFound, got %v", err)
	}
}

func TestBuySelfPurchaseLeavesStateUntouched(t *testing.T) {
	s := newMemStore()
	svc, repo, _ := newService(s)

	alice := s.addUser("alice", "seller")
	listing := sellOne(t, svc, s, alice, 100)

	_, err := svc.Buy(context.Background(), alice.ID, alice.Username, listing.ID)
	if !errors.Is(err, marketplace.ErrSelfPurchase) {
		t.Fatalf("expected ErrSelfPurchase, got %v", err)
	}

	if repo.execSeen != 0 {
		t.Error("self-purchase must be rejected before any write is attempted")
	}
	if alice.Credit != 0 || alice.Debit != 0 {
		t.Errorf("balances must not move: credit=%d debit=%d", alice.Credit, alice.Debit)
	}
	got, _ := repo.GetByID(context.Background(), listing.ID)
	if got.Sold {
		t.Error("listing must stay open after a rejected self-purchase")
	}
}

func TestBuyAlreadySold(t *testing.T) {
	s := newMemStore()
	svc, _, _ := newService(s)

	alice := s.addUser("alice", "seller")
	bob := s.addUser("bob", "user")
	carol := s.addUser("carol", "user")
	listing := sellOne(t, svc, s, alice, 100)

	if _, err := svc.Buy(context.Background(), bob.ID, bob.Username, listing.ID); err != nil {
		t.Fatalf("first buy: %v", err)
	}

	_, err := svc.Buy(context.Background(), carol.ID, carol.Username, listing.ID)
	if !errors.Is(err, marketplace.ErrAlreadySold) {
		t.Fatalf("expected ErrAlreadySold, got %v", err)
	}

	if carol.Debit != 0 {
		t.Errorf("losing buyer must not be debited, got %d", carol.Debit)
	}
	if alice.Credit != 100 {
		t.Errorf("seller must be credited exactly once, got %d", alice.Credit)
	}
}

func TestBuyConcurrentSingleWinner(t *testing.T) {
	s := newMemStore()
	svc, _, _ := newService(s)

	alice := s.addUser("alice", "seller")
	listing := sellOne(t, svc, s, alice, 50)

	const buyers = 10
	all := make([]*user.User, buyers)
	for i := range all {
		all[i] = s.addUser(fmt.Sprintf("buyer%d", i), "user")
	}

	var wg sync.WaitGroup
	var mu sync.Mutex
	wins := 0

	for _, buyer := range all {
		wg.Add(1)
		go func(b *user.User) {
			defer wg.Done()
			_, err := svc.Buy(context.Background(), b.ID, b.Username, listing.ID)
			if err == nil {
				mu.Lock()
				wins++
				mu.Unlock()
				return
			}
			if !errors.Is(err, marketplace.ErrAlreadySold) {
				t.Errorf("unexpected error: %v", err)
			}
		}(buyer)
	}

	wg.Wait()

	if wins != 1 {
		t.Fatalf("expected exactly one winning purchase, got %d", wins)
	}
	if alice.Credit != 50 {
		t.Fatalf("seller credited %d, want 50", alice.Credit)
	}
	if got := totalBalance(s); got != 0 {
		t.Fatalf("money not conserved: net balance %d", got)
	}
}

func TestBuyRepositoryFailureSurfacesError(t *testing.T) {
	s := newMemStore()
	svc, repo, _ := newService(s)

	alice := s.addUser("alice", "seller")
	bob := s.addUser("bob", "user")
	listing := sellOne(t, svc, s, alice, 100)

	repo.execErr = errors.New("connection reset")

	_, err := svc.Buy(context.Background(), bob.ID, bob.Username, listing.ID)
	if err == nil {
		t.Fatal("expected an error")
	}
	if bob.Debit != 0 || alice.Credit != 0 {
		t.Errorf("failed purchase must not move money: debit=%d credit=%d", bob.Debit, alice.Credit)
	}
}

/* =========================
   Seller listings & promotion
   ========================= */

func TestListBySellerIncludesSoldListings(t *testing.T) {
	s := newMemStore()
	svc, _, _ := newService(s)

	alice := s.addUser("alice", "seller")
	bob := s.addUser("bob", "user")

	first := sellOne(t, svc, s, alice, 10)
	sellOne(t, svc, s, alice, 20)

	if _, err := svc.Buy(context.Background(), bob.ID, bob.Username, first.ID); err != nil {
		t.Fatalf("buy: %v", err)
	}

	listings, err := svc.ListBySeller(context.Background(), "alice")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(listings) != 2 {
		t.Fatalf("expected 2 listings (sold included), got %d", len(listings))
	}
}

func TestListBySellerUnknownNameYieldsEmptySet(t *testing.T) {
	s := newMemStore()
	svc, _, _ := newService(s)

	listings, err := svc.ListBySeller(context.Background(), "nobody")
	if err != nil {
		t.Fatalf("unknown seller name must not be an error, got %v", err)
	}
	if len(listings) != 0 {
		t.Fatalf("expected empty set, got %d listings", len(listings))
	}
}

func TestRegisterSellerIsIdempotent(t *testing.T) {
	s := newMemStore()
	svc, _, _ := newService(s)

	bob := s.addUser("bob", "user")

	if err := svc.RegisterSeller(context.Background(), bob.ID); err != nil {
		t.Fatalf("first promotion: %v", err)
	}
	if bob.Role != user.RoleSeller {
		t.Fatalf("expected seller role, got %s", bob.Role)
	}

	if err := svc.RegisterSeller(context.Background(), bob.ID); err != nil {
		t.Fatalf("second promotion: %v", err)
	}

	admin := s.addUser("root", "admin")
	if err := svc.RegisterSeller(context.Background(), admin.ID); err != nil {
		t.Fatalf("admin promotion: %v", err)
	}
	if admin.Role != user.RoleAdmin {
		t.Fatal("promoting an admin must not downgrade the role")
	}
}

/* =========================
   Full scenario
   ========================= */

func TestMarketplaceEndToEndScenario(t *testing.T) {
	s := newMemStore()
	svc, _, _ := newService(s)

	alice := s.addUser("alice", "user")
	bob := s.addUser("bob", "user")
	carol := s.addUser("carol", "user")

	if err := svc.RegisterSeller(context.Background(), alice.ID); err != nil {
		t.Fatalf("register alice: %v", err)
	}

	listing := sellOne(t, svc, s, alice, 500)

	// alice cannot buy from herself
	if _, err := svc.Buy(context.Background(), alice.ID, alice.Username, listing.ID); !errors.Is(err, marketplace.ErrSelfPurchase) {
		t.Fatalf("expected ErrSelfPurchase, got %v", err)
	}

	// bob wins the image
	if _, err := svc.Buy(context.Background(), bob.ID, bob.Username, listing.ID); err != nil {
		t.Fatalf("bob buy: %v", err)
	}

	// carol is too late
	if _, err := svc.Buy(context.Background(), carol.ID, carol.Username, listing.ID); !errors.Is(err, marketplace.ErrAlreadySold) {
		t.Fatalf("expected ErrAlreadySold, got %v", err)
	}

	// bob now owns the image and can resell it
	if err := svc.RegisterSeller(context.Background(), bob.ID); err != nil {
		t.Fatalf("register bob: %v", err)
	}
	resale, err := svc.Sell(context.Background(), bob.ID, bob.Username, listing.ImageID, 900)
	if err != nil {
		t.Fatalf("bob resell: %v", err)
	}
	if _, err := svc.Buy(context.Background(), carol.ID, carol.Username, resale.ID); err != nil {
		t.Fatalf("carol buy resale: %v", err)
	}

	if alice.Credit != 500 || bob.Debit != 500 {
		t.Errorf("first sale ledger wrong: alice credit=%d bob debit=%d", alice.Credit, bob.Debit)
	}
	if bob.Credit != 900 || carol.Debit != 900 {
		t.Errorf("second sale ledger wrong: bob credit=%d carol debit=%d", bob.Credit, carol.Debit)
	}
	if got := totalBalance(s); got != 0 {
		t.Errorf("money not conserved across resales: net %d", got)
	}
	if s.images[listing.ImageID].UserID != carol.ID {
		t.Error("image should end up with carol")
	}
}
