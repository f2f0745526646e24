package bot

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"

	"github.com/rs/zerolog/log"
)

// Like outcome labels recorded by the like stage.
const (
	StatusLiked    = "Liked"
	StatusCantLike = "Can't like"
)

//
// Creator capabilities (implemented by *Client, faked in tests)
//

// UserCreator registers and logs in one user remotely.
type UserCreator interface {
	CreateUser(ctx context.Context, payload UserPayload) (*UserData, error)
}

// PostCreator submits one post remotely on behalf of a user.
type PostCreator interface {
	CreatePost(ctx context.Context, user *UserData, payload PostPayload) (*Post, error)
}

// LikeCreator submits one like remotely on behalf of a user.
type LikeCreator interface {
	LikePost(ctx context.Context, user *UserData, postID string) error
}

//
// Generators
//

// UserGenerator accumulates successfully created identities. Failed creations
// are logged and skipped, so the result can be shorter than the requested
// quantity.
type UserGenerator struct {
	creator UserCreator
	source  UserSource
	users   []UserData
}

// NewUserGenerator constructs a UserGenerator from a creator and a payload
// source.
func NewUserGenerator(creator UserCreator, source UserSource) *UserGenerator {
	return &UserGenerator{creator: creator, source: source}
}

// Users returns the identities accumulated so far.
func (g *UserGenerator) Users() []UserData {
	return g.users
}

// Generate attempts to create quantity users and returns every identity
// accumulated across all calls.
func (g *UserGenerator) Generate(ctx context.Context, quantity int) []UserData {
	for i := 0; i < quantity; i++ {
		payload := g.source.NextUser()
		user, err := g.creator.CreateUser(ctx, payload)
		if err != nil {
			log.Warn().Err(err).Str("username", payload.Username).Msg("user creation failed, skipping")
			continue
		}
		g.users = append(g.users, *user)
	}
	return g.users
}

// PostGenerator accumulates successfully created posts. Titles are tagged
// with an index and the owning username.
type PostGenerator struct {
	creator PostCreator
	source  PostSource
	posts   []Post
}

// NewPostGenerator constructs a PostGenerator from a creator and a payload
// source.
func NewPostGenerator(creator PostCreator, source PostSource) *PostGenerator {
	return &PostGenerator{creator: creator, source: source}
}

// Posts returns the posts accumulated so far.
func (g *PostGenerator) Posts() []Post {
	return g.posts
}

// Generate attempts to create quantity posts for user and returns every post
// accumulated across all calls.
func (g *PostGenerator) Generate(ctx context.Context, quantity int, user *UserData) []Post {
	for i := 0; i < quantity; i++ {
		payload := g.source.NextPost(fmt.Sprintf(" #%d by %s", i, user.Username))
		post, err := g.creator.CreatePost(ctx, user, payload)
		if err != nil {
			log.Warn().Err(err).Str("username", user.Username).Msg("post creation failed, skipping")
			continue
		}
		g.posts = append(g.posts, *post)
	}
	return g.posts
}

// LikeResult records one like attempt; unlike the other stages, failures are
// kept and annotated rather than dropped.
type LikeResult struct {
	PostID   string `json:"post_id"`
	Username string `json:"username"`
	Status   string `json:"status"`
}

// LikeGenerator drives the like stage: each iteration picks a post uniformly
// at random (with replacement) from the supplied pool.
type LikeGenerator struct {
	creator LikeCreator
	pick    func(n int) int
	likes   []LikeResult
}

// NewLikeGenerator constructs a LikeGenerator. pick selects a post index in
// [0,n); nil selects uniformly at random.
func NewLikeGenerator(creator LikeCreator, pick func(n int) int) *LikeGenerator {
	if pick == nil {
		pick = rand.IntN
	}
	return &LikeGenerator{creator: creator, pick: pick}
}

// Likes returns the like results accumulated so far.
func (g *LikeGenerator) Likes() []LikeResult {
	return g.likes
}

// Generate attempts quantity likes for user against the post pool, recording
// one result per attempt. API rejections (duplicate like, missing post) are
// folded into the status; transport errors abort the stage.
func (g *LikeGenerator) Generate(ctx context.Context, quantity int, user *UserData, posts []Post) ([]LikeResult, error) {
	if len(posts) == 0 {
		return g.likes, nil
	}
	for i := 0; i < quantity; i++ {
		post := posts[g.pick(len(posts))]
		status := StatusLiked
		if err := g.creator.LikePost(ctx, user, post.ID); err != nil {
			var apiErr *APIError
			if !errors.As(err, &apiErr) {
				return g.likes, err
			}
			status = StatusCantLike
		}
		g.likes = append(g.likes, LikeResult{
			PostID:   post.ID,
			Username: user.Username,
			Status:   status,
		})
	}
	return g.likes, nil
}
