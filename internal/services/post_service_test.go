package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/tbourn/go-blog-backend/internal/domain"
	"github.com/tbourn/go-blog-backend/internal/repo"
)

// ----- Fake repo -----

type fakePostRepo struct {
	posts map[primitive.ObjectID]*domain.Post

	createIn *domain.Post

	updateTitle *string
	updateText  *string

	addLikeIn  domain.Like
	addLikeOK  bool
	addLikeErr error

	removeLikeOK  bool
	removeLikeErr error

	deletedID primitive.ObjectID
}

func newFakePostRepo() *fakePostRepo {
	return &fakePostRepo{posts: map[primitive.ObjectID]*domain.Post{}}
}

func (r *fakePostRepo) add(p *domain.Post) *domain.Post {
	r.posts[p.ID] = p
	return p
}

func (r *fakePostRepo) Create(ctx context.Context, p *domain.Post) (*domain.Post, error) {
	r.createIn = p
	p.ID = primitive.NewObjectID()
	return r.add(p), nil
}

func (r *fakePostRepo) Get(ctx context.Context, id primitive.ObjectID) (*domain.Post, error) {
	if p, ok := r.posts[id]; ok {
		return p, nil
	}
	return nil, repo.ErrNotFound
}

func (r *fakePostRepo) Update(ctx context.Context, id primitive.ObjectID, title, text *string) error {
	r.updateTitle, r.updateText = title, text
	p, ok := r.posts[id]
	if !ok {
		return repo.ErrNotFound
	}
	if title != nil {
		p.Title = *title
	}
	if text != nil {
		p.Text = *text
	}
	return nil
}

func (r *fakePostRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	if _, ok := r.posts[id]; !ok {
		return repo.ErrNotFound
	}
	delete(r.posts, id)
	r.deletedID = id
	return nil
}

func (r *fakePostRepo) AddLike(ctx context.Context, postID primitive.ObjectID, like domain.Like) (bool, error) {
	r.addLikeIn = like
	if r.addLikeErr != nil {
		return false, r.addLikeErr
	}
	if r.addLikeOK {
		if p, ok := r.posts[postID]; ok {
			p.Likes = append(p.Likes, like)
		}
	}
	return r.addLikeOK, nil
}

func (r *fakePostRepo) RemoveLike(ctx context.Context, postID, userID primitive.ObjectID) (bool, error) {
	if r.removeLikeErr != nil {
		return false, r.removeLikeErr
	}
	return r.removeLikeOK, nil
}

func (r *fakePostRepo) List(ctx context.Context, params repo.ListParams) ([]domain.Post, int64, error) {
	return nil, 0, nil
}

func newPostService(r *fakePostRepo) *PostService {
	s := NewPostService(r)
	s.now = func() time.Time { return time.Date(2024, 5, 1, 15, 30, 0, 0, time.UTC) }
	return s
}

// ----- Tests -----

func TestPostCreate_InitializesLikes(t *testing.T) {
	r := newFakePostRepo()
	s := newPostService(r)
	owner := primitive.NewObjectID()

	p, err := s.Create(context.Background(), owner, "t", "x")
	if err != nil {
		t.Fatalf("Create: %v", err)
	}
	if p.Likes == nil || len(p.Likes) != 0 {
		t.Errorf("likes should start as an empty list, got %v", p.Likes)
	}
	if p.Owner != owner {
		t.Errorf("owner = %v", p.Owner)
	}
	if p.CreatedAt.IsZero() {
		t.Errorf("created_at not set")
	}
}

func TestPostGet_NotFound(t *testing.T) {
	s := newPostService(newFakePostRepo())

	if _, err := s.Get(context.Background(), primitive.NewObjectID()); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("err = %v; want ErrPostNotFound", err)
	}
}

func TestPostUpdate_OwnerOnly(t *testing.T) {
	r := newFakePostRepo()
	owner := &domain.User{ID: primitive.NewObjectID()}
	other := &domain.User{ID: primitive.NewObjectID()}
	p := r.add(&domain.Post{ID: primitive.NewObjectID(), Owner: owner.ID, Title: "old", Text: "old"})
	s := newPostService(r)

	title := "new"
	if _, err := s.Update(context.Background(), p.ID, other, &title, nil); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner update = %v; want ErrForbidden", err)
	}

	got, err := s.Update(context.Background(), p.ID, owner, &title, nil)
	if err != nil {
		t.Fatalf("owner update: %v", err)
	}
	if got.Title != "new" || got.Text != "old" {
		t.Errorf("partial update produced %q/%q", got.Title, got.Text)
	}
	if r.updateText != nil {
		t.Errorf("absent field should stay nil")
	}
}

func TestPostDelete_OwnerOnly(t *testing.T) {
	r := newFakePostRepo()
	owner := &domain.User{ID: primitive.NewObjectID()}
	other := &domain.User{ID: primitive.NewObjectID()}
	p := r.add(&domain.Post{ID: primitive.NewObjectID(), Owner: owner.ID})
	s := newPostService(r)

	if err := s.Delete(context.Background(), p.ID, other); !errors.Is(err, ErrForbidden) {
		t.Fatalf("non-owner delete = %v; want ErrForbidden", err)
	}
	if err := s.Delete(context.Background(), p.ID, owner); err != nil {
		t.Fatalf("owner delete: %v", err)
	}
	if _, err := s.Get(context.Background(), p.ID); !errors.Is(err, ErrPostNotFound) {
		t.Errorf("post still findable after delete")
	}
}

func TestLike_AppendsWithDayDate(t *testing.T) {
	r := newFakePostRepo()
	r.addLikeOK = true
	p := r.add(&domain.Post{ID: primitive.NewObjectID(), Likes: []domain.Like{}})
	s := newPostService(r)
	uid := primitive.NewObjectID()

	got, err := s.Like(context.Background(), p.ID, uid)
	if err != nil {
		t.Fatalf("Like: %v", err)
	}
	if len(got.Likes) != 1 {
		t.Fatalf("likes = %v", got.Likes)
	}
	// The stored date must be truncated to midnight UTC so the per-day
	// aggregation can group on it directly.
	want := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	if !r.addLikeIn.Date.Equal(want) {
		t.Errorf("like date = %v; want %v", r.addLikeIn.Date, want)
	}
}

func TestLike_Duplicate(t *testing.T) {
	r := newFakePostRepo()
	r.addLikeOK = false // conditional update matched nothing
	p := r.add(&domain.Post{ID: primitive.NewObjectID()})
	s := newPostService(r)

	if _, err := s.Like(context.Background(), p.ID, primitive.NewObjectID()); !errors.Is(err, ErrAlreadyLiked) {
		t.Fatalf("err = %v; want ErrAlreadyLiked", err)
	}
}

func TestLike_MissingPost(t *testing.T) {
	r := newFakePostRepo()
	r.addLikeOK = false
	s := newPostService(r)

	if _, err := s.Like(context.Background(), primitive.NewObjectID(), primitive.NewObjectID()); !errors.Is(err, ErrPostNotFound) {
		t.Fatalf("err = %v; want ErrPostNotFound", err)
	}
}

func TestUnlike_NeverLiked(t *testing.T) {
	r := newFakePostRepo()
	r.removeLikeOK = false
	p := r.add(&domain.Post{ID: primitive.NewObjectID()})
	s := newPostService(r)

	if _, err := s.Unlike(context.Background(), p.ID, primitive.NewObjectID()); !errors.Is(err, ErrLikeNotFound) {
		t.Fatalf("err = %v; want ErrLikeNotFound", err)
	}
}

func TestUnlike_Success(t *testing.T) {
	r := newFakePostRepo()
	r.removeLikeOK = true
	p := r.add(&domain.Post{ID: primitive.NewObjectID(), Likes: []domain.Like{}})
	s := newPostService(r)

	got, err := s.Unlike(context.Background(), p.ID, primitive.NewObjectID())
	if err != nil {
		t.Fatalf("Unlike: %v", err)
	}
	if len(got.Likes) != 0 {
		t.Errorf("likes = %v; want empty", got.Likes)
	}
}
