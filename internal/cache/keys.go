package cache

import (
	"context"
	"fmt"
	"time"
)

const (
	UserKeyPrefix        = "user:%d"
	UserByUsernamePrefix = "user:name:%s"
	CommentsKeyPrefix    = "comments:uni:%s"
	WSTicketPrefix       = "wsticket:%s"
)

const (
	UserTTL     = 5 * time.Minute
	CommentsTTL = 2 * time.Minute
	WSTicketTTL = 30 * time.Second
)

func UserKey(userID uint) string {
	return fmt.Sprintf(UserKeyPrefix, userID)
}

func UserByUsernameKey(username string) string {
	return fmt.Sprintf(UserByUsernamePrefix, username)
}

func CommentsKey(universityID string) string {
	return fmt.Sprintf(CommentsKeyPrefix, universityID)
}

func WSTicketKey(ticket string) string {
	return fmt.Sprintf(WSTicketPrefix, ticket)
}

func Invalidate(ctx context.Context, key string) {
	if client != nil {
		client.Del(ctx, key)
	}
}

func InvalidateUser(ctx context.Context, userID uint) {
	Invalidate(ctx, UserKey(userID))
}

func InvalidateComments(ctx context.Context, universityID string) {
	Invalidate(ctx, CommentsKey(universityID))
}
