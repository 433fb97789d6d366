package redis

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

var Rdb *redis.Client

// RefreshChannel carries force-re-resolution commands across processes:
// publishing a screen id here makes that screen's runner re-resolve without
// waiting for the next poll. "0" refreshes every screen.
const RefreshChannel = "screens:refresh"

func InitRedis(redisAddress string, redisUsername string, redisPassword string) {
	Rdb = redis.NewClient(&redis.Options{
		Addr:     redisAddress,
		Username: redisUsername,
		Password: redisPassword,
		DB:       0,
	})
}

func playlistETagKey(playlistID int) string {
	return fmt.Sprintf("playlist:%d:etag", playlistID)
}

// PlaylistETag returns the cached ETag for a playlist's expanded content, or
// "" when none is cached.
func PlaylistETag(ctx context.Context, playlistID int) string {
	if Rdb == nil {
		return ""
	}
	val, err := Rdb.Get(ctx, playlistETagKey(playlistID)).Result()
	if err != nil {
		return ""
	}
	return val
}

// SetPlaylistETag caches the ETag so TV polls can answer 304.
func SetPlaylistETag(ctx context.Context, playlistID int, etag string, ttl time.Duration) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Set(ctx, playlistETagKey(playlistID), etag, ttl).Err(); err != nil {
		log.Warn().Err(err).Int("playlist_id", playlistID).Msg("failed to cache playlist etag")
	}
}

// InvalidatePlaylistETag drops the cached ETag so clients get fresh content
// on the next poll instead of 304 Not Modified.
func InvalidatePlaylistETag(ctx context.Context, playlistID int) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Del(ctx, playlistETagKey(playlistID)).Err(); err != nil {
		log.Warn().Err(err).Int("playlist_id", playlistID).Msg("failed to invalidate playlist etag")
	}
}

// PublishRefresh asks the playback engine to re-resolve a screen now.
// screenID 0 refreshes all screens.
func PublishRefresh(ctx context.Context, screenID int) {
	if Rdb == nil {
		return
	}
	if err := Rdb.Publish(ctx, RefreshChannel, strconv.Itoa(screenID)).Err(); err != nil {
		log.Warn().Err(err).Int("screen_id", screenID).Msg("failed to publish refresh command")
	}
}

// SubscribeRefresh delivers refresh commands to handler until ctx is done.
// Runs as a goroutine next to the playback manager.
func SubscribeRefresh(ctx context.Context, handler func(screenID int)) {
	if Rdb == nil {
		return
	}
	sub := Rdb.Subscribe(ctx, RefreshChannel)
	defer func() {
		if err := sub.Close(); err != nil {
			log.Warn().Err(err).Msg("failed to close refresh subscription")
		}
	}()

	ch := sub.Channel()
	for {
		select {
		case <-ctx.Done():
			return
		case msg, ok := <-ch:
			if !ok {
				return
			}
			screenID, err := strconv.Atoi(msg.Payload)
			if err != nil {
				log.Warn().Str("payload", msg.Payload).Msg("ignoring malformed refresh command")
				continue
			}
			handler(screenID)
		}
	}
}
