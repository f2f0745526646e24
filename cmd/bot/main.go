// Command bot populates a running blog API with synthetic users, posts, and
// likes. It reads a JSON config and runs the three generation stages
// sequentially.
package main

import (
	"context"
	"flag"
	"os"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/tbourn/go-blog-backend/internal/bot"
	"github.com/tbourn/go-blog-backend/internal/sysutil"
)

func main() {
	configFlag := flag.String("config", "", "path to the bot JSON config")
	pretty := flag.Bool("pretty", true, "pretty console logs")
	flag.Parse()

	if *pretty {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	configPath := sysutil.FirstNonEmpty(*configFlag, os.Getenv("BOT_CONFIG"), "./bot-config.json")
	cfg, err := bot.JSONConfigReader{Path: configPath}.ReadConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("bot config error")
	}
	log.Info().
		Str("api_url", cfg.APIURL).
		Int("users", cfg.NumberOfUsers).
		Int("max_posts_per_user", cfg.MaxPostsPerUser).
		Int("max_likes_per_user", cfg.MaxLikesPerUser).
		Msg("starting automated bot")

	ctx := context.Background()
	client := bot.NewClient(cfg.APIURL, nil)

	userGen := bot.NewUserGenerator(client, bot.NewTimeUserSource())
	users := userGen.Generate(ctx, cfg.NumberOfUsers)
	log.Info().Int("created", len(users)).Int("requested", cfg.NumberOfUsers).Msg("users stage done")

	postGen := bot.NewPostGenerator(client, bot.SimplePostSource{})
	for i := range users {
		postGen.Generate(ctx, cfg.MaxPostsPerUser, &users[i])
	}
	posts := postGen.Posts()
	log.Info().Int("created", len(posts)).Msg("posts stage done")

	likeGen := bot.NewLikeGenerator(client, nil)
	var liked, failed int
	for i := range users {
		if _, err := likeGen.Generate(ctx, cfg.MaxLikesPerUser, &users[i], posts); err != nil {
			log.Fatal().Err(err).Msg("likes stage aborted")
		}
	}
	for _, res := range likeGen.Likes() {
		if res.Status == bot.StatusLiked {
			liked++
		} else {
			failed++
		}
	}
	log.Info().Int("liked", liked).Int("rejected", failed).Msg("likes stage done")
}
